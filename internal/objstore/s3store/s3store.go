// Package s3store implements objstore.Store on Amazon S3 (or any
// S3-compatible endpoint) using aws-sdk-go-v2.
package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"ingest/internal/objstore"
)

// API is the subset of *s3.Client used by Store. Tests substitute a fake.
type API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var _ API = (*s3.Client)(nil)

// Options tunes the client built by NewClient.
type Options struct {
	// Endpoint overrides the service endpoint (MinIO, LocalStack).
	Endpoint string
	// PathStyle forces path-style addressing, required by most S3 clones.
	PathStyle bool
}

// NewClient builds an *s3.Client from an already-loaded AWS config.
func NewClient(cfg aws.Config, opt Options) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opt.Endpoint != "" {
			o.BaseEndpoint = aws.String(opt.Endpoint)
		}
		o.UsePathStyle = opt.PathStyle
	})
}

// Store adapts an S3 API to objstore.Store.
type Store struct {
	api API
}

var _ objstore.Store = (*Store)(nil)

// New wraps api.
func New(api API) *Store { return &Store{api: api} }

// Get fetches the object body. NoSuchKey, NoSuchBucket and 404 responses map
// to objstore.ErrNotFound.
func (s *Store) Get(ctx context.Context, loc objstore.Location) (io.ReadCloser, error) {
	out, err := s.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("s3 get %s: %w (%w)", loc, objstore.ErrNotFound, err)
		}
		return nil, fmt.Errorf("s3 get %s: %w", loc, err)
	}
	return out.Body, nil
}

// Put uploads body in a single PutObject call.
func (s *Store) Put(ctx context.Context, loc objstore.Location, body []byte, contentType string) error {
	in := &s3.PutObjectInput{
		Bucket:        aws.String(loc.Bucket),
		Key:           aws.String(loc.Key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.api.PutObject(ctx, in); err != nil {
		return fmt.Errorf("s3 put %s: %w", loc, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var ae smithy.APIError
	if errors.As(err, &ae) {
		switch ae.ErrorCode() {
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			return true
		}
	}
	return false
}
