// Package dataset holds the in-memory tabular result of an extraction.
//
// A Dataset is an ordered list of named, typed columns plus rows of scalar
// values aligned to that column order. The schema is fixed when the Dataset
// is built and cannot be changed afterwards; the loader and the fallback
// writer both read the same instance.
package dataset

import (
	"fmt"
	"strings"
)

// Type is the inferred scalar type of a column.
type Type int

const (
	// TypeText holds arbitrary strings.
	TypeText Type = iota
	// TypeInteger holds int64 values.
	TypeInteger
	// TypeReal holds float64 values.
	TypeReal
	// TypeBoolean holds bool values.
	TypeBoolean
	// TypeDate holds time.Time values at midnight UTC.
	TypeDate
	// TypeTimestamp holds time.Time values.
	TypeTimestamp
)

// String returns the lowercase name used in logs and DDL mapping.
func (t Type) String() string {
	switch t {
	case TypeInteger:
		return "integer"
	case TypeReal:
		return "real"
	case TypeBoolean:
		return "boolean"
	case TypeDate:
		return "date"
	case TypeTimestamp:
		return "timestamp"
	default:
		return "text"
	}
}

// Column describes one dataset column.
type Column struct {
	Name string
	Type Type
}

// Dataset is an immutable, column-typed table of scalar values. A nil cell
// means the source value was empty.
type Dataset struct {
	columns []Column
	rows    [][]any
}

// New builds a Dataset from a schema and rows already converted to the
// column types. Every row must have exactly len(columns) cells and column
// names must be unique.
func New(columns []Column, rows [][]any) (*Dataset, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("dataset: at least one column is required")
	}
	seen := make(map[string]struct{}, len(columns))
	for i, c := range columns {
		if strings.TrimSpace(c.Name) == "" {
			return nil, fmt.Errorf("dataset: column %d has an empty name", i)
		}
		if _, dup := seen[c.Name]; dup {
			return nil, fmt.Errorf("dataset: duplicate column %q", c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	for i, r := range rows {
		if len(r) != len(columns) {
			return nil, fmt.Errorf("dataset: row %d has %d cells, want %d", i, len(r), len(columns))
		}
	}
	cols := make([]Column, len(columns))
	copy(cols, columns)
	return &Dataset{columns: cols, rows: rows}, nil
}

// FromText infers a schema from header and raw string records and converts
// every cell to its column type.
func FromText(header []string, records [][]string) (*Dataset, error) {
	types := InferTypes(len(header), records)
	columns := make([]Column, len(header))
	for i, name := range header {
		columns[i] = Column{Name: name, Type: types[i]}
	}

	rows := make([][]any, len(records))
	for r, rec := range records {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("dataset: record %d has %d fields, want %d", r+1, len(rec), len(header))
		}
		row := make([]any, len(rec))
		for c, raw := range rec {
			v, err := Convert(raw, types[c])
			if err != nil {
				return nil, fmt.Errorf("dataset: record %d column %q: %w", r+1, header[c], err)
			}
			row[c] = v
		}
		rows[r] = row
	}
	return New(columns, rows)
}

// Columns returns a copy of the schema.
func (d *Dataset) Columns() []Column {
	out := make([]Column, len(d.columns))
	copy(out, d.columns)
	return out
}

// ColumnNames returns the column names in order.
func (d *Dataset) ColumnNames() []string {
	out := make([]string, len(d.columns))
	for i, c := range d.columns {
		out[i] = c.Name
	}
	return out
}

// Width is the number of columns.
func (d *Dataset) Width() int { return len(d.columns) }

// Len is the number of rows.
func (d *Dataset) Len() int { return len(d.rows) }

// Rows exposes the row-major cells. Callers must not modify them.
func (d *Dataset) Rows() [][]any { return d.rows }

// Row returns the i-th row.
func (d *Dataset) Row(i int) []any { return d.rows[i] }

// Values returns the cells of column i in row order.
func (d *Dataset) Values(i int) []any {
	out := make([]any, len(d.rows))
	for r, row := range d.rows {
		out[r] = row[i]
	}
	return out
}
