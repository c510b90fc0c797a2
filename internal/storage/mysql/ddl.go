package mysql

import (
	"context"
	"fmt"

	"ingest/internal/dataset"
	"ingest/internal/ddl"
	"ingest/internal/storage"
)

// MapType maps a dataset column type into a MySQL column type.
func MapType(k ddl.Kind) string {
	switch k {
	case dataset.TypeInteger:
		return "BIGINT"
	case dataset.TypeReal:
		return "DOUBLE"
	case dataset.TypeBoolean:
		return "BOOLEAN"
	case dataset.TypeDate:
		return "DATE"
	case dataset.TypeTimestamp:
		return "DATETIME(6)"
	default:
		return "TEXT"
	}
}

// BuildCreateTableSQL renders CREATE TABLE IF NOT EXISTS with backtick
// quoting.
func BuildCreateTableSQL(t ddl.TableDef) (string, error) {
	return ddl.BuildCreateTableSQL(t, quoteIdent, true)
}

// EnsureTable creates the target table if it does not exist.
func EnsureTable(ctx context.Context, repo storage.Repository, def ddl.TableDef) error {
	sql, err := BuildCreateTableSQL(def)
	if err != nil {
		return err
	}
	if err := repo.Exec(ctx, sql); err != nil {
		return fmt.Errorf("ensure table %s: %w", def.FQN, err)
	}
	return nil
}
