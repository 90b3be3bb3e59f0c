package storage

import (
	"context"
	"io"
)

// Storage is the asset store behind story covers and export bundles.
type Storage interface {
	Upload(ctx context.Context, key string, body io.Reader) error
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
