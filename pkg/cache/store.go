package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Store.Get when the key does not exist.
var ErrCacheMiss = errors.New("cache: key not found")

// Store is the key-value backend the versioned cache runs on. The only
// atomicity it must provide is that Incr never loses an increment under
// concurrent Get/Set on the same key; everything else is best-effort.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	Incr(ctx context.Context, key string) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}
