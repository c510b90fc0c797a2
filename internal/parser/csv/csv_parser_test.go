package csv_test

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	pcsv "ingest/internal/parser/csv"
)

func TestParse_HeaderAndRows(t *testing.T) {
	t.Parallel()

	p := pcsv.NewParser(pcsv.Options{})
	ds, err := p.Parse(strings.NewReader("id,amount\n1,10.5\n2,20.0\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got, want := ds.ColumnNames(), []string{"id", "amount"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("columns=%v, want %v", got, want)
	}
	if ds.Len() != 2 {
		t.Fatalf("rows=%d, want 2", ds.Len())
	}
	if v := ds.Row(1)[1]; v != 20.0 {
		t.Fatalf("amount[1]=%#v, want 20.0", v)
	}
}

func TestParse_StripsBOMAndNamesBlankHeaders(t *testing.T) {
	t.Parallel()

	p := pcsv.NewParser(pcsv.Options{})
	ds, err := p.Parse(strings.NewReader("\uFEFFid, ,Name \n1,x,y\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got, want := ds.ColumnNames(), []string{"id", "col_1", "Name"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("columns=%q, want %q", got, want)
	}

	// Spreadsheet "CSV UTF-8" exports quote the header behind the BOM.
	ds, err = p.Parse(strings.NewReader("\uFEFF\"id\",\"amount\"\n1,10.5\n2,20.0\n"))
	if err != nil {
		t.Fatalf("parse quoted header: %v", err)
	}
	if got, want := ds.ColumnNames(), []string{"id", "amount"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("columns=%q, want %q", got, want)
	}
	if ds.Len() != 2 {
		t.Fatalf("rows=%d, want 2", ds.Len())
	}
}

func TestParse_RenamesDuplicateHeaders(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input string
		want  []string
	}{
		{input: "a,a\n1,2\n", want: []string{"a", "a.1"}},
		{input: "a,a,a\n1,2,3\n", want: []string{"a", "a.1", "a.2"}},
		{input: "a,a.1,a\n1,2,3\n", want: []string{"a", "a.1", "a.2"}},
		{input: " b ,b\n1,2\n", want: []string{"b", "b.1"}},
	}
	for _, tc := range cases {
		ds, err := pcsv.NewParser(pcsv.Options{}).Parse(strings.NewReader(tc.input))
		if err != nil {
			t.Fatalf("parse %q: %v", tc.input, err)
		}
		if got := ds.ColumnNames(); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%q: columns=%q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestParse_CustomDelimiter(t *testing.T) {
	t.Parallel()

	p := pcsv.NewParser(pcsv.Options{Comma: ';'})
	ds, err := p.Parse(strings.NewReader("a;b\n1;\"x;y\"\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v := ds.Row(0)[1]; v != "x;y" {
		t.Fatalf("b=%#v, want %q", v, "x;y")
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		input string
		is    error
	}{
		{name: "empty", input: "", is: pcsv.ErrEmpty},
		{name: "invalid utf8", input: "a,b\n\xff,1\n", is: pcsv.ErrNotUTF8},
		{name: "ragged row", input: "a,b\n1,2,3\n"},
		{name: "bad quote", input: "a,b\n\"1,2\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := pcsv.NewParser(pcsv.Options{}).Parse(strings.NewReader(tc.input))
			if err == nil {
				t.Fatalf("expected error for %q", tc.input)
			}
			if tc.is != nil && !errors.Is(err, tc.is) {
				t.Fatalf("err=%v, want %v", err, tc.is)
			}
		})
	}
}

func TestParse_Windows1250(t *testing.T) {
	t.Parallel()

	// 0xE8 is "č" in windows-1250.
	input := []byte("name\n\xe8aj\n")
	ds, err := pcsv.NewParser(pcsv.Options{Encoding: "windows-1250"}).Parse(bytes.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if v := ds.Row(0)[0]; v != "čaj" {
		t.Fatalf("name=%#v, want %q", v, "čaj")
	}
}

func TestParse_UnknownEncoding(t *testing.T) {
	t.Parallel()

	_, err := pcsv.NewParser(pcsv.Options{Encoding: "klingon"}).Parse(strings.NewReader("a\n1\n"))
	if err == nil {
		t.Fatal("expected error for unknown encoding")
	}
}

// TestRoundTrip re-serializes a parsed dataset and parses it again; row count
// and column set must survive unchanged.
func TestRoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"id,amount\n1,10.5\n2,20.0\n",
		"a,b,c\n,,\nx,\"multi\nline\",3\n",
		"when,flag\n2024-01-01 10:00:00,true\n2024-01-02T00:00:00Z,false\n",
		"only_header\n",
		"single\n1\n\n2\n",
		"single\nx\n\"\"\n",
	}

	for _, in := range inputs {
		p := pcsv.NewParser(pcsv.Options{})
		first, err := p.Parse(strings.NewReader(in))
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}

		var buf bytes.Buffer
		if err := pcsv.Write(&buf, first, 0); err != nil {
			t.Fatalf("write: %v", err)
		}

		second, err := p.Parse(&buf)
		if err != nil {
			t.Fatalf("reparse %q: %v", buf.String(), err)
		}
		if first.Len() != second.Len() {
			t.Fatalf("rows %d -> %d for %q", first.Len(), second.Len(), in)
		}
		if !reflect.DeepEqual(first.ColumnNames(), second.ColumnNames()) {
			t.Fatalf("columns %v -> %v", first.ColumnNames(), second.ColumnNames())
		}
	}
}
