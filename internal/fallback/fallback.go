// Package fallback persists a dataset as Parquet under a date partition when
// it could not be loaded into the sink, so a catalog crawler can index it.
//
// Layout:
//
//	<base>/load_date=<YYYY-MM-DD>/part-<xxh3 of file bytes>.parquet
//
// The partition is derived from the time passed to Write, not from the start
// of the run. Several writes on the same day land in the same partition; the
// content-addressed part name makes rewriting identical data idempotent.
package fallback

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/zeebo/xxh3"

	"ingest/internal/dataset"
	"ingest/internal/objstore"
)

// PartitionKey is the Hive-style partition column name.
const PartitionKey = "load_date"

const contentType = "application/vnd.apache.parquet"

// Error reports that the dataset could not be staged. When it follows a load
// failure the data is neither in the sink nor in the fallback location.
type Error struct {
	Location string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("fallback write to %s: %v", e.Location, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Writer stages datasets through an objstore.Store.
type Writer struct {
	store objstore.Store
	log   logrus.FieldLogger
}

// New returns a Writer that puts objects into store.
func New(store objstore.Store, log logrus.FieldLogger) *Writer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Writer{store: store, log: log}
}

// Partition returns base/load_date=<asOf as YYYY-MM-DD>/. The date is taken
// in asOf's own location.
func Partition(base objstore.Location, asOf time.Time) objstore.Location {
	return base.Join(PartitionKey + "=" + asOf.Format("2006-01-02") + "/")
}

// PartName returns the object name for an encoded Parquet file.
func PartName(body []byte) string {
	return fmt.Sprintf("part-%016x.parquet", xxh3.Hash(body))
}

// Write serializes the entire dataset into the partition for asOf under base
// and returns the partition location.
func (w *Writer) Write(ctx context.Context, ds *dataset.Dataset, base objstore.Location, asOf time.Time) (objstore.Location, error) {
	part := Partition(base, asOf)

	body, err := Encode(ds)
	if err != nil {
		return objstore.Location{}, &Error{Location: part.String(), Err: err}
	}
	obj := part.Join(PartName(body))
	if err := w.store.Put(ctx, obj, body, contentType); err != nil {
		return objstore.Location{}, &Error{Location: part.String(), Err: err}
	}

	w.log.WithFields(logrus.Fields{
		"location": part.String(),
		"object":   obj.String(),
		"rows":     ds.Len(),
		"bytes":    len(body),
	}).Info("fallback: dataset staged")
	return part, nil
}
