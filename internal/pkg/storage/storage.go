// Package storage stores uploaded objects (profile avatars) in a bucket on
// S3, Google Cloud Storage or MinIO.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned when deleting or reading a missing object.
var ErrObjectNotFound = errors.New("storage: object not found")

// Storage defines the object operations the service needs.
type Storage interface {
	io.Closer

	// PutObject stores data and returns object metadata.
	PutObject(ctx context.Context, bucket, key string, r io.Reader, opts PutOptions) (ObjectInfo, error)
	// DeleteObject removes the object. Deleting a missing object is not an error.
	DeleteObject(ctx context.Context, bucket, key string) error
}

// PutOptions configures upload behavior.
type PutOptions struct {
	// Size is the content length, or -1 when unknown. Backends that need a
	// length up front buffer the body, so unknown sizes must stay small.
	Size int64
	ContentType string
	// CacheControl is served back to clients fetching the object. Avatar keys
	// never get rewritten, so callers can mark them immutable.
	CacheControl string
	Metadata     map[string]string
}

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	Bucket      string
	Key         string
	Size        int64
	ETag        string
	ContentType string
}
