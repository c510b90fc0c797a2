package mssql

import (
	"context"
	"fmt"
	"strings"

	"ingest/internal/dataset"
	"ingest/internal/ddl"
	"ingest/internal/storage"
)

// MapType maps a dataset column type into a SQL Server type.
func MapType(k ddl.Kind) string {
	switch k {
	case dataset.TypeInteger:
		return "BIGINT"
	case dataset.TypeReal:
		return "FLOAT"
	case dataset.TypeBoolean:
		return "BIT"
	case dataset.TypeDate:
		return "DATE"
	case dataset.TypeTimestamp:
		return "DATETIME2"
	default:
		return "NVARCHAR(MAX)"
	}
}

// BuildCreateTableSQL renders a CREATE TABLE guarded by an OBJECT_ID check,
// since T-SQL has no CREATE TABLE IF NOT EXISTS.
func BuildCreateTableSQL(t ddl.TableDef) (string, error) {
	create, err := ddl.BuildCreateTableSQL(t, msIdent, false)
	if err != nil {
		return "", err
	}
	name := ddl.QuoteFQN(strings.TrimSpace(t.FQN), msIdent)
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL\n%s",
		strings.ReplaceAll(name, "'", "''"), create), nil
}

// EnsureTable creates the target SQL Server table if it does not already
// exist. It is safe to call repeatedly for the same table.
func EnsureTable(ctx context.Context, repo storage.Repository, def ddl.TableDef) error {
	sql, err := BuildCreateTableSQL(def)
	if err != nil {
		return err
	}
	if err := repo.Exec(ctx, sql); err != nil {
		return fmt.Errorf("mssql: ensure table %s: %w", def.FQN, err)
	}
	return nil
}
