// Package mysql implements a MySQL-backed storage.Repository on
// database/sql and go-sql-driver/mysql. Each batch is appended with
// multi-row INSERTs inside one transaction.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"ingest/internal/storage"
)

// dialect stays under MySQL's 65535 placeholders per prepared statement.
var dialect = storage.Dialect{
	Quote:       quoteIdent,
	Placeholder: storage.QuestionMark,
	MaxParams:   65535,
}

// Config holds MySQL repository configuration.
type Config struct {
	DSN   string // go-sql-driver DSN, e.g. "user:pass@tcp(host:3306)/db?parseTime=true"
	Table string // target table, optionally "db.table"
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg Config
}

// NewRepository opens a connection pool, pings it and returns a Repository
// plus a Close function for cleanup.
func NewRepository(ctx context.Context, cfg Config) (*Repository, func(), error) {
	if _, err := mysql.ParseDSN(cfg.DSN); err != nil {
		return nil, nil, fmt.Errorf("mysql dsn: %w", err)
	}
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("sql.Open: %w", err)
	}
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetMaxOpenConns(2)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("mysql: ping: %w", err)
	}
	closeFn := func() { _ = db.Close() }
	return &Repository{db: db, cfg: cfg}, closeFn, nil
}

// CopyFrom appends rows to the configured table. The batch is committed as a
// unit; a failure rolls it back and reports zero rows.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	n, err := storage.InsertTx(ctx, r.db, dialect, r.cfg.Table, columns, rows)
	if err != nil {
		return 0, fmt.Errorf("mysql: %w", err)
	}
	return n, nil
}

// Exec executes a SQL statement (typically DDL).
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if _, err := r.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("mysql: exec: %w", err)
	}
	return nil
}

// DB exposes the underlying pool for callers that need to query the sink.
func (r *Repository) DB() *sql.DB { return r.db }

// quoteIdent quotes a MySQL identifier with backticks, escaping embedded ones.
func quoteIdent(id string) string { return "`" + strings.ReplaceAll(id, "`", "``") + "`" }
