// Package storage contains the sink-agnostic contracts used by the loader:
// the Repository interface, a registry of backend factories keyed by kind,
// multi-row INSERT rendering shared by the SQL backends, and the batched
// load loop.
//
// Backends live in subpackages (mysql, postgres, mssql, sqlite) and register
// themselves from init. Import ingest/internal/storage/all to enable them.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Repository is a connected relational sink bound to one table.
type Repository interface {
	// CopyFrom appends rows (aligned to columns) and returns the number of
	// rows the backend reports as inserted.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)
	// Exec runs a single statement, typically DDL.
	Exec(ctx context.Context, sql string) error
	// Close releases the connection.
	Close()
}

// Config carries everything a backend needs to connect. Either DSN is set,
// or the backend assembles one from the discrete connection fields.
type Config struct {
	Kind string

	DSN      string
	Host     string
	Port     int
	User     string
	Password string
	Database string

	// IAMAuth marks Password as a short-lived RDS IAM token; backends that
	// need TLS or cleartext auth for tokens enable it.
	IAMAuth bool

	// Table is the target table, optionally schema-qualified ("schema.table").
	Table string
}

// Factory opens a Repository for cfg.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs (or replaces) the factory for kind. Backends call it
// from init.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New opens a Repository using the factory registered for cfg.Kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}

// ListKinds returns the registered kinds, sorted. The slice is a copy.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
