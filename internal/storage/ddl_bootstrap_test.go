package storage

import (
	"context"
	"testing"

	"ingest/internal/dataset"
	"ingest/internal/ddl"
)

// fakeRepo satisfies Repository without a database.
type fakeRepo struct{}

func (fakeRepo) CopyFrom(_ context.Context, _ []string, rows [][]any) (int64, error) {
	return int64(len(rows)), nil
}

func (fakeRepo) Exec(context.Context, string) error { return nil }

func (fakeRepo) Close() {}

func TestEnsureTable_MapsTypes(t *testing.T) {
	t.Parallel()

	var got ddl.TableDef
	RegisterDDL("ddlfake",
		func(k ddl.Kind) string {
			if k == dataset.TypeInteger {
				return "INT"
			}
			return "TXT"
		},
		func(_ context.Context, _ Repository, def ddl.TableDef) error {
			got = def
			return nil
		})

	def := ddl.FromDataset("t", []dataset.Column{
		{Name: "id", Type: dataset.TypeInteger},
		{Name: "name", Type: dataset.TypeText},
	})
	if err := EnsureTable(context.Background(), "ddlfake", &fakeRepo{}, def); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	if got.Columns[0].SQLType != "INT" || got.Columns[1].SQLType != "TXT" {
		t.Fatalf("mapped columns = %+v", got.Columns)
	}
	if def.Columns[0].SQLType != "" {
		t.Fatalf("input definition was mutated: %+v", def.Columns)
	}
}

func TestEnsureTable_UnknownKind(t *testing.T) {
	t.Parallel()

	if err := EnsureTable(context.Background(), "nope", &fakeRepo{}, ddl.TableDef{}); err == nil {
		t.Fatal("expected error for unregistered kind")
	}
}
