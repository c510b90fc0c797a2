// Package localfs implements objstore.Store on the local filesystem.
package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"ingest/internal/objstore"
)

// Store reads and writes files under their Location.Key path.
type Store struct{}

var _ objstore.Store = Store{}

// New returns a filesystem store.
func New() Store { return Store{} }

// Get opens loc.Key for reading.
//
// If ctx is already done the context error is returned without touching the
// filesystem. A missing file wraps both objstore.ErrNotFound and the
// underlying *PathError.
func (Store) Get(ctx context.Context, loc objstore.Location) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(loc.Key)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("open %s: %w (%w)", loc.Key, objstore.ErrNotFound, err)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", loc.Key, err)
	}
	return f, nil
}

// Put writes body to loc.Key, creating parent directories. The file is
// written to a temporary sibling and renamed so readers never see a partial
// object.
func (Store) Put(ctx context.Context, loc objstore.Location, body []byte, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(loc.Key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, loc.Key); err != nil {
		return fmt.Errorf("rename to %s: %w", loc.Key, err)
	}
	return nil
}
