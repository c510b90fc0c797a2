package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// CopyFn abstracts a backend's bulk insert capability. Implementations insert
// the provided rows (aligned to columns) and return the number of rows
// reported as inserted.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// BatchStats summarizes a LoadBatches call.
type BatchStats struct {
	Inserted int64
	Batches  int
}

// LoadBatches slices rows into groups of batchSize and calls copyFn for each
// group in order. The first failing batch stops the loop; rows from earlier
// batches may already be committed by the backend.
//
// Progress is logged on each successful flush with running totals and rows/sec
// since the previous flush.
func LoadBatches(
	ctx context.Context,
	columns []string,
	rows [][]any,
	batchSize int,
	copyFn CopyFn,
	log logrus.FieldLogger,
) (BatchStats, error) {
	var st BatchStats
	if batchSize <= 0 {
		return st, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return st, fmt.Errorf("copyFn must not be nil")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	start := time.Now()
	lastFlush := start
	for lo := 0; lo < len(rows); lo += batchSize {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		hi := lo + batchSize
		if hi > len(rows) {
			hi = len(rows)
		}

		n, err := copyFn(ctx, columns, rows[lo:hi])
		st.Inserted += n
		if err != nil {
			log.WithFields(logrus.Fields{
				"batch":          st.Batches + 1,
				"batch_rows":     hi - lo,
				"total_inserted": st.Inserted,
			}).WithError(err).Error("loader: batch insert failed")
			return st, err
		}
		st.Batches++

		now := time.Now()
		since := now.Sub(lastFlush)
		rps := float64(0)
		if since > 0 {
			rps = float64(n) / since.Seconds()
		}
		log.WithFields(logrus.Fields{
			"batch":          st.Batches,
			"inserted":       n,
			"total_inserted": st.Inserted,
			"rps":            fmt.Sprintf("%.0f", rps),
			"elapsed":        now.Sub(start).Truncate(time.Millisecond),
		}).Debug("loader: batch flushed")
		lastFlush = now
	}
	return st, nil
}
