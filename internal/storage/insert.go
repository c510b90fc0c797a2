package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"ingest/internal/ddl"
)

// Dialect captures what differs between SQL backends when rendering a
// multi-row INSERT.
type Dialect struct {
	// Quote quotes one identifier segment.
	Quote ddl.Quoter
	// Placeholder renders the n-th (1-based) bind parameter.
	Placeholder func(n int) string
	// MaxParams caps bind parameters per statement.
	MaxParams int
	// MaxRows caps VALUES tuples per statement; zero means no cap.
	MaxRows int
}

// Statement is one rendered INSERT with its arguments.
type Statement struct {
	SQL  string
	Args []any
	Rows int
}

// InsertStatements renders rows as one or more multi-row INSERT statements
// into table. Rows are split only as far as the dialect's parameter and row
// limits require.
func (d Dialect) InsertStatements(table string, columns []string, rows [][]any) ([]Statement, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("insert: columns must not be empty")
	}
	perStmt := len(rows)
	if d.MaxParams > 0 {
		perStmt = d.MaxParams / len(columns)
		if perStmt == 0 {
			return nil, fmt.Errorf("insert: %d columns exceed the %d parameter limit", len(columns), d.MaxParams)
		}
	}
	if d.MaxRows > 0 && perStmt > d.MaxRows {
		perStmt = d.MaxRows
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = d.Quote(c)
	}
	head := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", ddl.QuoteFQN(table, d.Quote), strings.Join(quoted, ", "))

	var out []Statement
	for start := 0; start < len(rows); start += perStmt {
		end := start + perStmt
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		var sb strings.Builder
		sb.WriteString(head)
		args := make([]any, 0, len(chunk)*len(columns))
		n := 0
		for i, row := range chunk {
			if len(row) != len(columns) {
				return nil, fmt.Errorf("insert: row length %d != columns length %d", len(row), len(columns))
			}
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteByte('(')
			for j, v := range row {
				if j > 0 {
					sb.WriteString(", ")
				}
				n++
				sb.WriteString(d.Placeholder(n))
				args = append(args, v)
			}
			sb.WriteByte(')')
		}
		out = append(out, Statement{SQL: sb.String(), Args: args, Rows: len(chunk)})
	}
	return out, nil
}

// QuestionMark is the "?" placeholder style used by MySQL and SQLite.
func QuestionMark(int) string { return "?" }

// InsertTx renders rows with d and executes the statements inside one
// database/sql transaction. On any error the transaction is rolled back and
// zero rows are reported.
func InsertTx(ctx context.Context, db *sql.DB, d Dialect, table string, columns []string, rows [][]any) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	stmts, err := d.InsertStatements(table, columns, rows)
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	var inserted int64
	for _, st := range stmts {
		res, err := tx.ExecContext(ctx, st.SQL, st.Args...)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("insert: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += n
		} else {
			inserted += int64(st.Rows)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return inserted, nil
}
