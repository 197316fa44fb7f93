// Package storage holds document bytes behind a small BlobStore interface so
// the document registry's retrieval contract stays identical across
// backends. The default store keeps blobs in a table of the claims SQLite
// database; an S3-backed store is available for deployments that keep
// attachments in object storage.
package storage

import (
	"context"
	"errors"
)

// ErrBlobNotFound is returned when no blob exists for the requested key.
var ErrBlobNotFound = errors.New("blob not found")

// BlobStore persists and retrieves document bytes addressed by document ID.
// Get must return the exact bytes previously stored under the key.
// Implementations must be safe for concurrent use.
type BlobStore interface {
	// Put stores data under key, replacing any previous value.
	Put(ctx context.Context, key string, contentType string, data []byte) error
	// Get returns the bytes stored under key, or ErrBlobNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
}
