package storage

import (
	"context"
	"fmt"
	"sync"

	"ingest/internal/ddl"
)

// DDLBootstrapper creates the target table described by def if it does not
// exist yet, using the backend's dialect and repo.Exec.
type DDLBootstrapper func(ctx context.Context, repo Repository, def ddl.TableDef) error

// TypeMapper renders a backend column type for a ddl column kind.
type TypeMapper func(ddl.Kind) string

type ddlEntry struct {
	bootstrap DDLBootstrapper
	types     TypeMapper
}

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]ddlEntry{}
)

// RegisterDDL registers (or replaces) the DDL support for a storage kind. It
// is typically called from backend packages' init functions.
func RegisterDDL(kind string, types TypeMapper, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = ddlEntry{bootstrap: fn, types: types}
}

// EnsureTable maps def's column kinds through the backend's TypeMapper and
// invokes its bootstrapper. Callers stay backend-agnostic.
func EnsureTable(ctx context.Context, kind string, repo Repository, def ddl.TableDef) error {
	ddlMu.RLock()
	e, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("no DDL bootstrapper registered for storage.kind=%q", kind)
	}
	return e.bootstrap(ctx, repo, def.WithTypes(e.types))
}
