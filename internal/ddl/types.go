package ddl

import "ingest/internal/dataset"

// Kind is the logical column type carried from extraction into DDL.
type Kind = dataset.Type

// ColumnDef describes a single column in a table definition.
//
// Fields:
//   - Name: logical column name (unquoted; quoting happens at render time)
//   - Kind: inferred dataset type, mapped to SQLType per backend
//   - SQLType: target SQL type (e.g., TEXT, BIGINT, TIMESTAMPTZ)
//   - Nullable: whether NULL is allowed
//   - PrimaryKey: whether the column is part of the primary key
//   - Default: raw default expression (e.g., 'anon', CURRENT_TIMESTAMP)
type ColumnDef struct {
	Name       string
	Kind       Kind
	SQLType    string
	Nullable   bool
	PrimaryKey bool
	Default    string
}

// TableDef holds the table name (optionally dotted "schema.table") and an
// ordered list of columns.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}

// FromDataset derives a TableDef for table from a dataset schema. Every
// column is nullable because empty source cells load as NULL. SQLType is
// left empty until WithTypes is applied.
func FromDataset(table string, cols []dataset.Column) TableDef {
	defs := make([]ColumnDef, len(cols))
	for i, c := range cols {
		defs[i] = ColumnDef{Name: c.Name, Kind: c.Type, Nullable: true}
	}
	return TableDef{FQN: table, Columns: defs}
}

// WithTypes returns a copy of t whose SQLType is set from mapType for every
// column that does not already carry one.
func (t TableDef) WithTypes(mapType func(Kind) string) TableDef {
	out := TableDef{FQN: t.FQN, Columns: make([]ColumnDef, len(t.Columns))}
	copy(out.Columns, t.Columns)
	if mapType == nil {
		return out
	}
	for i := range out.Columns {
		if out.Columns[i].SQLType == "" {
			out.Columns[i].SQLType = mapType(out.Columns[i].Kind)
		}
	}
	return out
}
