// Package pipeline sequences one ingest run:
//
//	Extracting -> Loading -> Succeeded
//	                 |
//	                 +-> Diverting -> Reindexing -> Degraded
//	                        |
//	                        +-> FailedHard
//
// An extraction failure goes straight to FailedHard; there is nothing to
// divert. Every step runs once, synchronously, on the same dataset instance.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"ingest/internal/catalog"
	"ingest/internal/dataset"
	"ingest/internal/load"
	"ingest/internal/metrics"
	"ingest/internal/objstore"
)

// Extractor reads the source object into a dataset.
type Extractor interface {
	Extract(ctx context.Context, loc string) (*dataset.Dataset, error)
}

// Loader appends a dataset to the sink.
type Loader interface {
	Load(ctx context.Context, ds *dataset.Dataset, t load.Target) (load.Result, error)
}

// FallbackWriter stages a dataset under a date partition of base.
type FallbackWriter interface {
	Write(ctx context.Context, ds *dataset.Dataset, base objstore.Location, asOf time.Time) (objstore.Location, error)
}

// CatalogTrigger asks the catalog to re-index staged data.
type CatalogTrigger interface {
	Trigger(ctx context.Context, job string) (catalog.Result, error)
}

// Config fixes the inputs of a run.
type Config struct {
	// Job labels metrics and logs.
	Job      string
	Source   string
	Target   load.Target
	Fallback objstore.Location
	Crawler  string
}

// Outcome summarizes a finished run.
type Outcome struct {
	State State
	RunID string

	// Rows is the number of rows extracted.
	Rows     int
	Inserted int64

	// FallbackLocation is set when the dataset was staged.
	FallbackLocation string
	Trigger          catalog.Result
	// TriggerErr is set when staging succeeded but the crawler could not be
	// started. The run is still Degraded.
	TriggerErr error

	// Errors holds every step error in the order it occurred.
	Errors   []error
	Duration time.Duration
}

// Err joins the step errors, or returns nil.
func (o Outcome) Err() error { return errors.Join(o.Errors...) }

// ExitCode maps the terminal state to a process exit status.
func (o Outcome) ExitCode() int {
	switch o.State {
	case Succeeded:
		return ExitOK
	case Degraded:
		if o.TriggerErr != nil {
			return ExitDegradedTrigger
		}
		return ExitDegraded
	default:
		return ExitFailedHard
	}
}

// Orchestrator runs the state machine over injected steps.
type Orchestrator struct {
	extract  Extractor
	load     Loader
	fallback FallbackWriter
	trigger  CatalogTrigger
	cfg      Config

	now   func() time.Time
	newID func() string
	log   logrus.FieldLogger
}

// Option customizes an Orchestrator.
type Option func(*Orchestrator)

// WithClock sets the time source used for durations and the fallback
// partition date.
func WithClock(now func() time.Time) Option { return func(o *Orchestrator) { o.now = now } }

// WithRunID sets the run id generator.
func WithRunID(f func() string) Option { return func(o *Orchestrator) { o.newID = f } }

// New returns an Orchestrator for cfg.
func New(x Extractor, l Loader, w FallbackWriter, t CatalogTrigger, cfg Config, log logrus.FieldLogger, opts ...Option) *Orchestrator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if cfg.Job == "" {
		cfg.Job = "ingest"
	}
	o := &Orchestrator{
		extract:  x,
		load:     l,
		fallback: w,
		trigger:  t,
		cfg:      cfg,
		now:      time.Now,
		newID:    uuid.NewString,
		log:      log,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run executes one pass and returns its outcome. Step failures are reported
// on the Outcome, never as a panic or a returned error.
func (o *Orchestrator) Run(ctx context.Context) Outcome {
	start := o.now()
	out := Outcome{State: Extracting, RunID: o.newID()}
	log := o.log.WithFields(logrus.Fields{"run_id": out.RunID, "job": o.cfg.Job})

	o.run(ctx, &out, log)

	out.Duration = o.now().Sub(start)
	metrics.RecordOutcome(o.cfg.Job, out.State.String())
	o.report(out, log)
	return out
}

func (o *Orchestrator) run(ctx context.Context, out *Outcome, log logrus.FieldLogger) {
	var ds *dataset.Dataset
	err := o.step(log, "extract", func() (err error) {
		ds, err = o.extract.Extract(ctx, o.cfg.Source)
		return err
	})
	if err != nil {
		o.fail(out, log, FailedHard, err)
		return
	}
	out.Rows = ds.Len()
	metrics.RecordRow(o.cfg.Job, "extracted", int64(ds.Len()))

	o.transition(out, log, Loading)
	err = o.step(log, "load", func() error {
		res, err := o.load.Load(ctx, ds, o.cfg.Target)
		out.Inserted = res.Rows
		return err
	})
	if err == nil {
		metrics.RecordRow(o.cfg.Job, "inserted", out.Inserted)
		o.transition(out, log, Succeeded)
		return
	}
	o.fail(out, log, Diverting, err)

	// Staging must not be lost to a cancellation that arrived during Loading.
	ctx = context.WithoutCancel(ctx)
	err = o.step(log, "fallback", func() error {
		loc, err := o.fallback.Write(ctx, ds, o.cfg.Fallback, o.now())
		if err == nil {
			out.FallbackLocation = loc.String()
		}
		return err
	})
	if err != nil {
		o.fail(out, log, FailedHard, err)
		return
	}
	metrics.RecordRow(o.cfg.Job, "diverted", int64(ds.Len()))

	o.transition(out, log, Reindexing)
	err = o.step(log, "catalog", func() error {
		res, err := o.trigger.Trigger(ctx, o.cfg.Crawler)
		out.Trigger = res
		return err
	})
	if err != nil {
		out.TriggerErr = err
		out.Errors = append(out.Errors, err)
		log.WithError(err).Error("pipeline: catalog trigger failed")
	}
	o.transition(out, log, Degraded)
}

// step times fn and records it under name.
func (o *Orchestrator) step(log logrus.FieldLogger, name string, fn func() error) error {
	start := o.now()
	err := fn()
	d := o.now().Sub(start)
	metrics.RecordStep(o.cfg.Job, name, err, d)
	log.WithFields(logrus.Fields{"step": name, "elapsed": d.Truncate(time.Millisecond)}).Debug("pipeline: step finished")
	return err
}

func (o *Orchestrator) fail(out *Outcome, log logrus.FieldLogger, next State, err error) {
	out.Errors = append(out.Errors, err)
	log.WithError(err).WithField("state", out.State.String()).Error("pipeline: step failed")
	o.transition(out, log, next)
}

func (o *Orchestrator) transition(out *Outcome, log logrus.FieldLogger, next State) {
	log.WithFields(logrus.Fields{"from": out.State.String(), "to": next.String()}).Debug("pipeline: transition")
	out.State = next
}

func (o *Orchestrator) report(out Outcome, log logrus.FieldLogger) {
	entry := log.WithFields(logrus.Fields{
		"state":    out.State.String(),
		"rows":     out.Rows,
		"inserted": out.Inserted,
		"elapsed":  out.Duration.Truncate(time.Millisecond),
	})
	switch out.State {
	case Succeeded:
		entry.Info("pipeline: run complete")
	case Degraded:
		entry = entry.WithField("location", out.FallbackLocation)
		if out.TriggerErr != nil {
			entry = entry.WithField("trigger_error", out.TriggerErr.Error())
		} else {
			entry = entry.WithField("trigger", out.Trigger.String())
		}
		entry.Warn("data staged, load pending")
	default:
		entry.WithError(out.Err()).Error("data at risk, manual intervention required")
	}
}
