// Package objstore addresses objects in S3 or on the local filesystem behind
// one small interface, so the extractor and the fallback writer do not care
// where bytes live.
package objstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned (possibly wrapped) when an object does not exist.
var ErrNotFound = errors.New("objstore: object not found")

// Location identifies an object or prefix. An empty Bucket means a local
// filesystem path held in Key.
type Location struct {
	Bucket string
	Key    string
}

// Parse accepts "s3://bucket/key", "file:///abs/path" or a plain filesystem
// path.
func Parse(raw string) (Location, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return Location{}, fmt.Errorf("objstore: empty location")
	case strings.HasPrefix(raw, "s3://"), strings.HasPrefix(raw, "s3a://"):
		rest := raw[strings.Index(raw, "://")+3:]
		bucket, key, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return Location{}, fmt.Errorf("objstore: %q has no bucket", raw)
		}
		return Location{Bucket: bucket, Key: key}, nil
	case strings.HasPrefix(raw, "file://"):
		return Location{Key: strings.TrimPrefix(raw, "file://")}, nil
	case strings.Contains(raw, "://"):
		return Location{}, fmt.Errorf("objstore: unsupported scheme in %q", raw)
	default:
		return Location{Key: raw}, nil
	}
}

// IsLocal reports whether l refers to the local filesystem.
func (l Location) IsLocal() bool { return l.Bucket == "" }

// Join appends path elements to the key. S3 keys always use forward slashes;
// a trailing slash on the last element is preserved so prefixes stay prefixes.
func (l Location) Join(elem ...string) Location {
	parts := append([]string{l.Key}, elem...)
	var key string
	if l.IsLocal() {
		key = filepath.Join(parts...)
	} else {
		key = strings.TrimPrefix(path.Join(parts...), "/")
	}
	if n := len(elem); n > 0 && strings.HasSuffix(elem[n-1], "/") && !strings.HasSuffix(key, "/") {
		key += "/"
	}
	return Location{Bucket: l.Bucket, Key: key}
}

// String renders the location in the same form Parse accepts.
func (l Location) String() string {
	if l.IsLocal() {
		return l.Key
	}
	return "s3://" + l.Bucket + "/" + l.Key
}

// Store reads and writes whole objects.
type Store interface {
	// Get opens the object for reading. Missing objects yield ErrNotFound.
	Get(ctx context.Context, loc Location) (io.ReadCloser, error)
	// Put writes body to loc, replacing any existing object.
	Put(ctx context.Context, loc Location, body []byte, contentType string) error
}

// Router dispatches to the S3 or local store by location kind. Either field
// may be nil when that kind is not configured.
type Router struct {
	S3    Store
	Local Store
}

var _ Store = Router{}

func (r Router) pick(loc Location) (Store, error) {
	if loc.IsLocal() {
		if r.Local == nil {
			return nil, fmt.Errorf("objstore: no local store configured for %s", loc)
		}
		return r.Local, nil
	}
	if r.S3 == nil {
		return nil, fmt.Errorf("objstore: no S3 store configured for %s", loc)
	}
	return r.S3, nil
}

// Get implements Store.
func (r Router) Get(ctx context.Context, loc Location) (io.ReadCloser, error) {
	s, err := r.pick(loc)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, loc)
}

// Put implements Store.
func (r Router) Put(ctx context.Context, loc Location, body []byte, contentType string) error {
	s, err := r.pick(loc)
	if err != nil {
		return err
	}
	return s.Put(ctx, loc, body, contentType)
}
