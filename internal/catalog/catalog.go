// Package catalog asks the data catalog to re-index staged fallback data by
// starting a named Glue crawler.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/glue/types"
	"github.com/sirupsen/logrus"
)

// API is the subset of *glue.Client used here.
type API interface {
	StartCrawler(ctx context.Context, in *glue.StartCrawlerInput, optFns ...func(*glue.Options)) (*glue.StartCrawlerOutput, error)
}

// Result is the outcome of a successful trigger.
type Result int

const (
	// Started means a new crawl was accepted.
	Started Result = iota + 1
	// AlreadyRunning means a crawl was in progress; it will pick up the data.
	AlreadyRunning
)

func (r Result) String() string {
	switch r {
	case Started:
		return "started"
	case AlreadyRunning:
		return "already_running"
	default:
		return "unknown"
	}
}

// Error reports a trigger failure other than an in-progress crawl.
type Error struct {
	Job string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("start crawler %q: %v", e.Job, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Trigger starts crawlers through a Glue client.
type Trigger struct {
	api API
	log logrus.FieldLogger
}

// New returns a Trigger backed by api.
func New(api API, log logrus.FieldLogger) *Trigger {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Trigger{api: api, log: log}
}

// Trigger starts the crawler named job. Exactly one request is made.
func (t *Trigger) Trigger(ctx context.Context, job string) (Result, error) {
	if job == "" {
		return 0, &Error{Job: job, Err: errors.New("empty crawler name")}
	}
	_, err := t.api.StartCrawler(ctx, &glue.StartCrawlerInput{Name: aws.String(job)})

	var running *types.CrawlerRunningException
	switch {
	case err == nil:
		t.log.WithField("crawler", job).Info("catalog: crawler started")
		return Started, nil
	case errors.As(err, &running):
		t.log.WithField("crawler", job).Info("catalog: crawler already running")
		return AlreadyRunning, nil
	default:
		return 0, &Error{Job: job, Err: err}
	}
}
