package storage

import (
	"fmt"
	"strings"
	"testing"
)

var testDialect = Dialect{
	Quote:       func(s string) string { return `"` + s + `"` },
	Placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	MaxParams:   6,
}

func TestInsertStatements_SplitsOnParamLimit(t *testing.T) {
	t.Parallel()

	rows := [][]any{{1, "a"}, {2, "b"}, {3, "c"}, {4, nil}}
	stmts, err := testDialect.InsertStatements("s.t", []string{"id", "v"}, rows)
	if err != nil {
		t.Fatalf("InsertStatements: %v", err)
	}
	if len(stmts) != 2 {
		t.Fatalf("statements=%d, want 2 (3 rows + 1 row)", len(stmts))
	}
	want := `INSERT INTO "s"."t" ("id", "v") VALUES ($1, $2), ($3, $4), ($5, $6)`
	if stmts[0].SQL != want {
		t.Fatalf("sql=%q\nwant %q", stmts[0].SQL, want)
	}
	if stmts[0].Rows != 3 || len(stmts[0].Args) != 6 {
		t.Fatalf("first stmt rows=%d args=%d", stmts[0].Rows, len(stmts[0].Args))
	}
	// Placeholders restart per statement.
	if !strings.HasSuffix(stmts[1].SQL, "VALUES ($1, $2)") {
		t.Fatalf("second sql=%q", stmts[1].SQL)
	}
	if stmts[1].Args[1] != nil {
		t.Fatalf("nil cell not preserved: %#v", stmts[1].Args)
	}
}

func TestInsertStatements_MaxRows(t *testing.T) {
	t.Parallel()

	d := Dialect{Quote: func(s string) string { return s }, Placeholder: QuestionMark, MaxRows: 2}
	stmts, err := d.InsertStatements("t", []string{"a"}, [][]any{{1}, {2}, {3}, {4}, {5}})
	if err != nil {
		t.Fatalf("InsertStatements: %v", err)
	}
	if len(stmts) != 3 {
		t.Fatalf("statements=%d, want 3", len(stmts))
	}
	if stmts[0].SQL != "INSERT INTO t (a) VALUES (?), (?)" {
		t.Fatalf("sql=%q", stmts[0].SQL)
	}
}

func TestInsertStatements_Errors(t *testing.T) {
	t.Parallel()

	if _, err := testDialect.InsertStatements("t", nil, [][]any{{1}}); err == nil {
		t.Fatal("expected error for no columns")
	}
	if _, err := testDialect.InsertStatements("t", []string{"a", "b"}, [][]any{{1}}); err == nil {
		t.Fatal("expected error for ragged row")
	}
	wide := Dialect{Quote: testDialect.Quote, Placeholder: QuestionMark, MaxParams: 1}
	if _, err := wide.InsertStatements("t", []string{"a", "b"}, [][]any{{1, 2}}); err == nil {
		t.Fatal("expected error when one row exceeds the parameter limit")
	}
}
