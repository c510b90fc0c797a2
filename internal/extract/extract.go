// Package extract fetches one delimited text object and parses it into a
// dataset.Dataset.
package extract

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"ingest/internal/dataset"
	"ingest/internal/objstore"
	pcsv "ingest/internal/parser/csv"
)

// Error is returned for every extraction failure: a missing object, an
// undecodable body or unparseable text. Nothing is retried.
type Error struct {
	Location string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Location, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Options configure how the object body is parsed.
type Options struct {
	Delimiter rune   // zero means ','
	Encoding  string // empty means UTF-8
}

// Extractor reads source objects through an objstore.Store.
type Extractor struct {
	store objstore.Store
	opt   Options
	log   logrus.FieldLogger
}

// New returns an Extractor reading from store.
func New(store objstore.Store, opt Options, log logrus.FieldLogger) *Extractor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Extractor{store: store, opt: opt, log: log}
}

// Extract reads the object at loc once and parses it with the first row as
// the header. loc is anything objstore.Parse accepts.
func (x *Extractor) Extract(ctx context.Context, loc string) (*dataset.Dataset, error) {
	parsed, err := objstore.Parse(loc)
	if err != nil {
		return nil, &Error{Location: loc, Err: err}
	}

	body, err := x.store.Get(ctx, parsed)
	if err != nil {
		return nil, &Error{Location: loc, Err: err}
	}
	defer body.Close()

	ds, err := pcsv.NewParser(pcsv.Options{Comma: x.opt.Delimiter, Encoding: x.opt.Encoding}).Parse(body)
	if err != nil {
		return nil, &Error{Location: loc, Err: err}
	}

	x.log.WithFields(logrus.Fields{
		"location": loc,
		"rows":     ds.Len(),
		"columns":  ds.Width(),
	}).Info("extract: dataset read")
	return ds, nil
}
