// Package service provides infrastructure used by the graph use cases.
package service

import (
	"context"
	"fmt"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	apperrors "github.com/devkral/secretgraph/internal/errors"

	// Register the supported bucket drivers
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// BlobValueStore keeps encrypted content values in a gocloud bucket.
type BlobValueStore struct {
	bucket *blob.Bucket
}

// OpenBlobValueStore opens the bucket at bucketURL.
// Supports: file://, mem://, s3://
func OpenBlobValueStore(ctx context.Context, bucketURL string) (*BlobValueStore, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open value bucket: %w", err)
	}
	return &BlobValueStore{bucket: bucket}, nil
}

// Write stores value under ref, replacing any previous value.
func (s *BlobValueStore) Write(ctx context.Context, ref string, value []byte) error {
	if err := s.bucket.WriteAll(ctx, ref, value, &blob.WriterOptions{
		ContentType: "application/octet-stream",
	}); err != nil {
		return apperrors.Wrapf(err, "failed to write value %s", ref)
	}
	return nil
}

// Read returns the value under ref, or ErrNotFound.
func (s *BlobValueStore) Read(ctx context.Context, ref string) ([]byte, error) {
	value, err := s.bucket.ReadAll(ctx, ref)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.Wrapf(err, "failed to read value %s", ref)
	}
	return value, nil
}

// Delete removes the value under ref. Missing values are ignored.
func (s *BlobValueStore) Delete(ctx context.Context, ref string) error {
	if err := s.bucket.Delete(ctx, ref); err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return apperrors.Wrapf(err, "failed to delete value %s", ref)
	}
	return nil
}

// Close releases the bucket.
func (s *BlobValueStore) Close() error {
	return s.bucket.Close()
}
