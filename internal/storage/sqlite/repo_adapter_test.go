package sqlite

import (
	"context"
	"testing"

	"ingest/internal/storage"
)

// TestSQLiteStorageRegistrationUsesNewRepositoryHook verifies that the
// "sqlite" storage backend registered in init() uses the newRepository hook
// and that wrappedRepo correctly delegates Close.
func TestSQLiteStorageRegistrationUsesNewRepositoryHook(t *testing.T) {
	ctx := context.Background()

	origNewRepository := newRepository
	defer func() { newRepository = origNewRepository }()

	var (
		called bool
		gotCfg Config
		closed bool

		fakeRepo = &Repository{}
	)

	newRepository = func(ctx context.Context, cfg Config) (*Repository, func(), error) {
		called = true
		gotCfg = cfg
		return fakeRepo, func() { closed = true }, nil
	}

	repo, err := storage.New(ctx, storage.Config{
		Kind:     "sqlite",
		Database: "/tmp/ingest.db",
		Table:    "events",
	})
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	if !called {
		t.Fatalf("newRepository hook was not called")
	}
	if gotCfg.DSN != "/tmp/ingest.db" {
		t.Errorf("hook cfg.DSN = %q, want database path fallback", gotCfg.DSN)
	}
	if gotCfg.Table != "events" {
		t.Errorf("hook cfg.Table = %q, want %q", gotCfg.Table, "events")
	}

	w, ok := repo.(*wrappedRepo)
	if !ok {
		t.Fatalf("storage.New() type = %T, want *wrappedRepo", repo)
	}
	if w.Repository != fakeRepo {
		t.Fatalf("wrappedRepo.Repository = %p, want %p", w.Repository, fakeRepo)
	}

	repo.Close()
	if !closed {
		t.Fatalf("wrappedRepo.Close() did not invoke closeFn")
	}
}

func TestConfigFrom_PrefersDSN(t *testing.T) {
	t.Parallel()

	got := configFrom(storage.Config{DSN: "file:a.db", Database: "b.db", Table: "t"})
	if got.DSN != "file:a.db" {
		t.Fatalf("DSN = %q, want file:a.db", got.DSN)
	}
}
