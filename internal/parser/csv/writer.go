package csv

import (
	"encoding/csv"
	"fmt"
	"io"

	"ingest/internal/dataset"
)

// Write serializes ds as delimited text with a header row. comma of zero
// means ','.
func Write(w io.Writer, ds *dataset.Dataset, comma rune) error {
	cw := csv.NewWriter(w)
	if comma != 0 {
		cw.Comma = comma
	}
	if err := cw.Write(ds.ColumnNames()); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	cols := ds.Columns()
	rec := make([]string, len(cols))
	for _, row := range ds.Rows() {
		for i, v := range row {
			rec[i] = dataset.Format(v, cols[i].Type)
		}
		// A lone empty field would be written as a blank line, which readers
		// skip; quote it explicitly so the row survives.
		if len(rec) == 1 && rec[0] == "" {
			cw.Flush()
			if _, err := io.WriteString(w, "\"\"\n"); err != nil {
				return fmt.Errorf("csv: write record: %w", err)
			}
			continue
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("csv: write record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
