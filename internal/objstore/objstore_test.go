package objstore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in      string
		want    Location
		wantErr bool
	}{
		{in: "s3://bucket/path/to/file.csv", want: Location{Bucket: "bucket", Key: "path/to/file.csv"}},
		{in: "s3a://bucket/prefix/", want: Location{Bucket: "bucket", Key: "prefix/"}},
		{in: "s3://bucket", want: Location{Bucket: "bucket"}},
		{in: "file:///tmp/x.csv", want: Location{Key: "/tmp/x.csv"}},
		{in: "./data/x.csv", want: Location{Key: "./data/x.csv"}},
		{in: "", wantErr: true},
		{in: "s3:///key", wantErr: true},
		{in: "gs://bucket/key", wantErr: true},
	}

	for _, tc := range cases {
		got, err := Parse(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("Parse(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("Parse(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("Parse(%q)=%+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestJoin(t *testing.T) {
	t.Parallel()

	s3 := Location{Bucket: "b", Key: "fallback"}
	if got := s3.Join("load_date=2024-01-02/"); got.Key != "fallback/load_date=2024-01-02/" {
		t.Fatalf("s3 join key=%q", got.Key)
	}
	if got := s3.Join("load_date=2024-01-02", "part.parquet"); got.String() != "s3://b/fallback/load_date=2024-01-02/part.parquet" {
		t.Fatalf("s3 join=%q", got.String())
	}
	if got := (Location{Bucket: "b"}).Join("x/"); got.Key != "x/" {
		t.Fatalf("empty prefix join=%q", got.Key)
	}

	local := Location{Key: "/data/fallback"}
	if got := local.Join("load_date=2024-01-02/"); got.Key != "/data/fallback/load_date=2024-01-02/" {
		t.Fatalf("local join=%q", got.Key)
	}
}

type memStore struct {
	name string
	puts int
}

func (m *memStore) Get(context.Context, Location) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader(m.name)), nil
}

func (m *memStore) Put(context.Context, Location, []byte, string) error {
	m.puts++
	return nil
}

func TestRouter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s3, local := &memStore{name: "s3"}, &memStore{name: "local"}
	r := Router{S3: s3, Local: local}

	rc, err := r.Get(ctx, Location{Bucket: "b", Key: "k"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	if string(b) != "s3" {
		t.Fatalf("routed to %q, want s3", b)
	}
	if err := r.Put(ctx, Location{Key: "/tmp/x"}, nil, ""); err != nil {
		t.Fatalf("put: %v", err)
	}
	if local.puts != 1 || s3.puts != 0 {
		t.Fatalf("puts local=%d s3=%d", local.puts, s3.puts)
	}

	if _, err := (Router{}).Get(ctx, Location{Bucket: "b"}); err == nil {
		t.Fatal("expected error with no S3 store")
	}
	if err := (Router{}).Put(ctx, Location{Key: "x"}, nil, ""); err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("unexpected err %v", err)
	}
}
