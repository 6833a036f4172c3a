// Package storage provides durable blob storage behind a narrow interface.
package storage

import (
	"context"
	"io"
)

// BlobStore durably stores a byte stream under a folder key and returns a
// public URL for it. Object names are expected to be unique; the namespace is
// shared but conflict-free.
type BlobStore interface {
	Store(ctx context.Context, folder, name string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}
