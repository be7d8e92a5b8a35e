package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/pkordes/tie-inventory/internal/domain"
)

// S3Options configures an S3Store.
type S3Options struct {
	Endpoint  string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	// PublicURL is the prefix objects are fetched from, usually
	// scheme://endpoint/bucket or a CDN in front of the bucket.
	PublicURL string
}

// S3Store keeps objects in an S3-compatible bucket.
type S3Store struct {
	client *minio.Client
	bucket string
	mapper urlMapper
}

// NewS3Store connects to the endpoint and checks that the bucket exists.
func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage.NewS3Store: client: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("storage.NewS3Store: check bucket: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("storage.NewS3Store: bucket %q does not exist", opts.Bucket)
	}

	return &S3Store{
		client: client,
		bucket: opts.Bucket,
		mapper: urlMapper{base: strings.TrimRight(opts.PublicURL, "/")},
	}, nil
}

// Put uploads the object.
func (s *S3Store) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	k, ok := cleanKey(key)
	if !ok {
		return fmt.Errorf("storage.S3Store.Put: invalid object key %q", key)
	}
	_, err := s.client.PutObject(ctx, s.bucket, k, r, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=31536000, immutable",
	})
	if err != nil {
		return fmt.Errorf("storage.S3Store.Put: %w", err)
	}
	return nil
}

// Delete removes the object. S3 deletes are idempotent, so existence is
// checked first to report domain.ErrObjectNotFound like the fs store does.
func (s *S3Store) Delete(ctx context.Context, key string) error {
	k, ok := cleanKey(key)
	if !ok {
		return fmt.Errorf("storage.S3Store.Delete: invalid object key %q", key)
	}
	if _, err := s.client.StatObject(ctx, s.bucket, k, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return fmt.Errorf("storage.S3Store.Delete: %w", domain.ErrObjectNotFound)
		}
		return fmt.Errorf("storage.S3Store.Delete: stat: %w", err)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, k, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("storage.S3Store.Delete: %w", err)
	}
	return nil
}

// URL returns the public URL of key.
func (s *S3Store) URL(key string) string {
	return s.mapper.url(key)
}

// KeyFromURL reverses URL.
func (s *S3Store) KeyFromURL(rawURL string) (string, bool) {
	return s.mapper.key(rawURL)
}
