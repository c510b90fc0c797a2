// Package load appends a dataset to a relational sink table in fixed-size
// batches. The sink is opened for the duration of one Load call and closed
// before it returns.
package load

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"ingest/internal/dataset"
	"ingest/internal/ddl"
	"ingest/internal/metrics"
	"ingest/internal/storage"
)

// DefaultBatchSize is the number of rows per INSERT batch when Target leaves
// BatchSize unset.
const DefaultBatchSize = 5000

// Target identifies the sink table. It is fixed for a run.
type Target struct {
	Kind     string
	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Database string
	Table    string

	// IAMAuth replaces Password with an RDS IAM token at connect time.
	IAMAuth bool
	// AutoCreate issues CREATE TABLE IF NOT EXISTS from the dataset schema
	// before the first batch.
	AutoCreate bool
	BatchSize  int
}

// String renders the target without credentials.
func (t Target) String() string {
	if t.DSN != "" || t.Host == "" {
		return fmt.Sprintf("%s:%s", t.Kind, t.Table)
	}
	return fmt.Sprintf("%s://%s/%s.%s", t.Kind, net.JoinHostPort(t.Host, strconv.Itoa(t.Port)), t.Database, t.Table)
}

// Result summarizes a successful load.
type Result struct {
	Table   string
	Rows    int64
	Batches int
}

// Error reports a failed load. The sink state is unknown afterwards: earlier
// batches may be committed, but callers must assume no effective rows.
type Error struct {
	Table string
	Rows  int // rows attempted
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("load %d rows into %s: %v", e.Rows, e.Table, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Opener opens a sink repository. storage.New is the default.
type Opener func(ctx context.Context, cfg storage.Config) (storage.Repository, error)

// EnsureFunc creates the target table. storage.EnsureTable is the default.
type EnsureFunc func(ctx context.Context, kind string, repo storage.Repository, def ddl.TableDef) error

// TokenFunc returns an IAM auth token for user at host:port.
type TokenFunc func(ctx context.Context, host string, port int, user string) (string, error)

// Loader appends datasets to a sink.
type Loader struct {
	open   Opener
	ensure EnsureFunc
	token  TokenFunc
	job    string
	log    logrus.FieldLogger
}

// Option customizes a Loader.
type Option func(*Loader)

// WithOpener replaces storage.New, typically with a fake in tests.
func WithOpener(o Opener) Option { return func(l *Loader) { l.open = o } }

// WithEnsure replaces storage.EnsureTable.
func WithEnsure(f EnsureFunc) Option { return func(l *Loader) { l.ensure = f } }

// WithTokenFunc sets the IAM token source used when Target.IAMAuth is set.
func WithTokenFunc(f TokenFunc) Option { return func(l *Loader) { l.token = f } }

// WithJob sets the job label used for metrics.
func WithJob(job string) Option { return func(l *Loader) { l.job = job } }

// New returns a Loader using the registered storage backends.
func New(log logrus.FieldLogger, opts ...Option) *Loader {
	if log == nil {
		log = logrus.StandardLogger()
	}
	l := &Loader{open: storage.New, ensure: storage.EnsureTable, job: "ingest", log: log}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Load appends every row of ds to t.Table. It never replaces or truncates;
// re-running with the same input appends the rows again. The first failing
// batch aborts the load with *Error.
func (l *Loader) Load(ctx context.Context, ds *dataset.Dataset, t Target) (Result, error) {
	fail := func(err error) (Result, error) {
		return Result{}, &Error{Table: t.Table, Rows: ds.Len(), Err: err}
	}

	batchSize := t.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	cfg := storage.Config{
		Kind:     t.Kind,
		DSN:      t.DSN,
		Host:     t.Host,
		Port:     t.Port,
		User:     t.User,
		Password: t.Password,
		Database: t.Database,
		IAMAuth:  t.IAMAuth && t.DSN == "",
		Table:    t.Table,
	}
	if cfg.IAMAuth {
		if l.token == nil {
			return fail(fmt.Errorf("IAM auth requested but no token source configured"))
		}
		tok, err := l.token(ctx, t.Host, t.Port, t.User)
		if err != nil {
			return fail(err)
		}
		cfg.Password = tok
	}

	log := l.log.WithFields(logrus.Fields{"table": t.Table, "sink": t.String()})

	start := time.Now()
	repo, err := l.open(ctx, cfg)
	if err != nil {
		return fail(fmt.Errorf("connect: %w", err))
	}
	defer repo.Close()

	if t.AutoCreate {
		def := ddl.FromDataset(t.Table, ds.Columns())
		if err := l.ensure(ctx, t.Kind, repo, def); err != nil {
			return fail(fmt.Errorf("create table: %w", err))
		}
	}

	st, err := storage.LoadBatches(ctx, ds.ColumnNames(), ds.Rows(), batchSize, repo.CopyFrom, log)
	metrics.RecordBatches(l.job, int64(st.Batches))
	if err != nil {
		return fail(err)
	}

	log.WithFields(logrus.Fields{
		"rows":    st.Inserted,
		"batches": st.Batches,
		"elapsed": time.Since(start).Truncate(time.Millisecond),
	}).Info("load: rows appended")
	return Result{Table: t.Table, Rows: st.Inserted, Batches: st.Batches}, nil
}
