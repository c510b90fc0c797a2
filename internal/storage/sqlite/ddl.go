package sqlite

import (
	"context"
	"fmt"

	"ingest/internal/dataset"
	"ingest/internal/ddl"
	"ingest/internal/storage"
)

// MapType maps a dataset column type to a SQLite column type. SQLite is
// dynamically typed, so this only picks an affinity: booleans are stored as
// 0/1 and temporal values as ISO-8601 text.
func MapType(k ddl.Kind) string {
	switch k {
	case dataset.TypeInteger, dataset.TypeBoolean:
		return "INTEGER"
	case dataset.TypeReal:
		return "REAL"
	default:
		return "TEXT"
	}
}

// BuildCreateTableSQL renders CREATE TABLE IF NOT EXISTS for t.
func BuildCreateTableSQL(t ddl.TableDef) (string, error) {
	return ddl.BuildCreateTableSQL(t, quoteIdent, true)
}

// EnsureTable creates the table described by t if it does not exist.
func EnsureTable(ctx context.Context, repo storage.Repository, t ddl.TableDef) error {
	stmt, err := BuildCreateTableSQL(t)
	if err != nil {
		return err
	}
	if err := repo.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("sqlite: ensure table %s: %w", t.FQN, err)
	}
	return nil
}
