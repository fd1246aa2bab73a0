package storage

import (
	"context"
	"io"
	"time"
)

// ObjectStorage is the narrow contract the services consume. Signed URLs are
// opaque strings; nothing upstream interprets them.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	Exists(ctx context.Context, key string) (bool, error)
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
