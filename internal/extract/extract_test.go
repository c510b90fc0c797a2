package extract

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"

	"ingest/internal/dataset"
	"ingest/internal/objstore"
	"ingest/internal/objstore/localfs"
	pcsv "ingest/internal/parser/csv"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// memStore serves fixed bodies keyed by Location.String().
type memStore struct {
	objects map[string][]byte
	gets    atomic.Int32
}

func (m *memStore) Get(_ context.Context, loc objstore.Location) (io.ReadCloser, error) {
	m.gets.Add(1)
	b, ok := m.objects[loc.String()]
	if !ok {
		return nil, objstore.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (m *memStore) Put(context.Context, objstore.Location, []byte, string) error {
	return errors.New("read-only")
}

func TestExtract_FromS3Location(t *testing.T) {
	t.Parallel()

	store := &memStore{objects: map[string][]byte{
		"s3://raw/in/data.csv": []byte("id,amount\n1,10.5\n2,20.0\n"),
	}}
	ds, err := New(store, Options{}, quietLogger()).Extract(context.Background(), "s3://raw/in/data.csv")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if n := store.gets.Load(); n != 1 {
		t.Fatalf("object read %d times, want exactly once", n)
	}
	if ds.Len() != 2 || ds.Width() != 2 {
		t.Fatalf("shape = %dx%d, want 2x2", ds.Len(), ds.Width())
	}
	cols := ds.Columns()
	if cols[0].Type != dataset.TypeInteger || cols[1].Type != dataset.TypeReal {
		t.Fatalf("types = %v/%v", cols[0].Type, cols[1].Type)
	}
}

func TestExtract_LocalFileRoundTrip(t *testing.T) {
	t.Parallel()

	src := "name;city;visits\nAda;Brno;3\nLinus;\"Hel;sinki\";\n"
	path := filepath.Join(t.TempDir(), "in.csv")
	if err := os.WriteFile(path, []byte(src), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	ds, err := New(localfs.New(), Options{Delimiter: ';'}, quietLogger()).Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	var buf bytes.Buffer
	if err := pcsv.Write(&buf, ds, ';'); err != nil {
		t.Fatalf("Write: %v", err)
	}
	again, err := pcsv.NewParser(pcsv.Options{Comma: ';'}).Parse(&buf)
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if again.Len() != ds.Len() {
		t.Fatalf("row count %d after round trip, want %d", again.Len(), ds.Len())
	}
	want, got := ds.ColumnNames(), again.ColumnNames()
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("columns = %v, want %v", got, want)
		}
	}
}

func TestExtract_Errors(t *testing.T) {
	t.Parallel()

	store := &memStore{objects: map[string][]byte{
		"s3://raw/empty.csv":  nil,
		"s3://raw/ragged.csv": []byte("a,b\n1\n"),
		"s3://raw/binary.csv": {0xff, 0xfe, 0x00},
	}}
	x := New(store, Options{}, quietLogger())

	tests := []struct {
		name   string
		loc    string
		wantIs error
	}{
		{"missing object", "s3://raw/absent.csv", objstore.ErrNotFound},
		{"empty object", "s3://raw/empty.csv", pcsv.ErrEmpty},
		{"undecodable", "s3://raw/binary.csv", pcsv.ErrNotUTF8},
		{"unparseable", "s3://raw/ragged.csv", nil},
		{"bad scheme", "gs://raw/x.csv", nil},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ds, err := x.Extract(context.Background(), tt.loc)
			if err == nil {
				t.Fatalf("Extract(%q) = %v, want error", tt.loc, ds)
			}
			var xe *Error
			if !errors.As(err, &xe) {
				t.Fatalf("error %T is not *extract.Error", err)
			}
			if xe.Location != tt.loc {
				t.Fatalf("Location = %q, want %q", xe.Location, tt.loc)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Fatalf("errors.Is(%v, %v) = false", err, tt.wantIs)
			}
		})
	}
}
