// Package storage contains object storage abstractions for S3-compatible backends.
// Implementations stream readers to the backend without buffering whole objects.
package storage

import (
	"context"
	"io"
	"time"
)

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and the
// implementation will upload in parts of PartSize bytes.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
	PartSize    uint64
	// Progress, if set, receives the cumulative number of bytes transferred.
	// It may be called from several goroutines.
	Progress func(transferred int64)
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a reusable, S3-compatible object storage client interface.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
	// URL returns the download URL recorded in file metadata.
	URL(ctx context.Context, key string) (string, error)
}
