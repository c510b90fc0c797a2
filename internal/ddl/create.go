// Package ddl defines a small, backend-agnostic model for SQL DDL and renders
// CREATE TABLE statements from it.
//
// Dialect differences are limited to identifier quoting and whether the
// backend understands IF NOT EXISTS; backend packages supply both. Column
// types come from each backend's type map applied through TableDef.WithTypes.
package ddl

import (
	"fmt"
	"strings"
)

// Quoter quotes a single identifier segment.
type Quoter func(ident string) string

// QuoteFQN quotes each dot-separated segment of a possibly qualified name.
func QuoteFQN(fqn string, quote Quoter) string {
	parts := strings.Split(fqn, ".")
	for i, p := range parts {
		parts[i] = quote(p)
	}
	return strings.Join(parts, ".")
}

// BuildCreateTableSQL renders a CREATE TABLE statement from a TableDef.
//
// Rules:
//
//   - t.FQN must be non-empty.
//   - Each column must have a non-empty Name and SQLType.
//   - A column renders as: <Name> <SQLType> [NOT NULL] [DEFAULT <Default>]
//   - Columns with PrimaryKey == true are collected into a trailing
//     PRIMARY KEY (...) clause.
//   - When ifNotExists is true the statement starts with
//     CREATE TABLE IF NOT EXISTS.
//
// quote may be nil, in which case identifiers are emitted verbatim.
func BuildCreateTableSQL(t TableDef, quote Quoter, ifNotExists bool) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("ddl: table FQN must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: at least one column is required")
	}
	if quote == nil {
		quote = func(s string) string { return s }
	}

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, len(t.Columns))

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("ddl: column %s missing SQLType", name)
		}

		var sb strings.Builder
		sb.WriteString(quote(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)

		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}

		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, quote(name))
		}
	}

	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	verb := "CREATE TABLE"
	if ifNotExists {
		verb = "CREATE TABLE IF NOT EXISTS"
	}
	return fmt.Sprintf(
		"%s %s (\n  %s\n)",
		verb,
		QuoteFQN(fqn, quote),
		strings.Join(cols, ",\n  "),
	), nil
}
