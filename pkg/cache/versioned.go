package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kadraly/kadraly-backend/internal/models"
)

const (
	// versionTTL keeps a hot event's version pointer alive well past any
	// data cached under it.
	versionTTL = 24 * time.Hour

	// DefaultTTL bounds the staleness of derived artifacts.
	DefaultTTL = 10 * time.Minute

	// StatsTTL is shorter because hosts watch these numbers during an event.
	StatsTTL = 5 * time.Minute
)

var jsonNull = []byte("null")

// Cache layers per-event versioned invalidation over a plain key-value Store.
//
// Every derived artifact of an event is cached under eventID::version::name.
// Bumping the version makes all of them unreachable at once; nothing is
// enumerated or deleted. The cache is a performance overlay only: every store
// fault is absorbed here and degrades into a miss or a lost write, never into
// an error the caller sees.
type Cache struct {
	store Store
	log   *zap.Logger
}

func New(store Store, log *zap.Logger) *Cache {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cache{store: store, log: log}
}

// Version returns the event's current version, initializing it to 1 if the
// key is absent. Never returns less than 1.
func (c *Cache) Version(ctx context.Context, eventID uint) int64 {
	key := eventVersionKey(eventID)

	if v, ok := c.readVersion(ctx, key); ok {
		return v
	}

	// Absent: initialize with SetNX so racing initializers agree on 1.
	created, err := c.store.SetNX(ctx, key, []byte("1"), versionTTL)
	if err != nil {
		c.log.Debug("version init failed", zap.Uint("event_id", eventID), zap.Error(err))
		return 1
	}
	if !created {
		// Someone beat us to it; their value wins.
		if v, ok := c.readVersion(ctx, key); ok {
			return v
		}
	}
	return 1
}

func (c *Cache) readVersion(ctx context.Context, key string) (int64, bool) {
	b, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.log.Debug("version read failed", zap.String("key", key), zap.Error(err))
		}
		return 0, false
	}
	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil || v < 1 {
		return 0, false
	}
	return v, true
}

// BumpVersion atomically increments the event version, invalidating every
// versioned artifact of the event. It never fails: if the increment cannot
// reach the store, the version is forcibly set to the current unix-nano
// timestamp, which is strictly greater than any counter value a deployment
// could have reached, so stale entries can never be addressed again. A failed
// bump that silently kept the old version would serve stale data, which is
// worse than the spurious misses the fallback causes.
func (c *Cache) BumpVersion(ctx context.Context, eventID uint) int64 {
	key := eventVersionKey(eventID)

	v, err := c.store.Incr(ctx, key)
	if err != nil {
		forced := time.Now().UnixNano()
		if serr := c.store.Set(ctx, key, []byte(strconv.FormatInt(forced, 10)), versionTTL); serr != nil {
			c.log.Warn("version bump and forced reset both failed",
				zap.Uint("event_id", eventID), zap.Error(err), zap.NamedError("set_error", serr))
		}
		return forced
	}

	// Refresh so the pointer outlives the data cached under it. Racing
	// bumpers may both refresh; that is idempotent.
	if err := c.store.Expire(ctx, key, versionTTL); err != nil {
		c.log.Debug("version ttl refresh failed", zap.Uint("event_id", eventID), zap.Error(err))
	}
	return v
}

// VersionedKey builds the composite key for an event artifact at the current
// version.
func (c *Cache) VersionedKey(ctx context.Context, eventID uint, artifact string) string {
	return fmt.Sprintf("%d::%d::%s", eventID, c.Version(ctx, eventID), artifact)
}

// Delete removes fixed aux keys. Failures are absorbed: a leftover aux entry
// expires by TTL and only costs staleness within that bound.
func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if err := c.store.Del(ctx, keys...); err != nil {
		c.log.Debug("cache delete failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

// Wrap is the read-through path: return the cached value when present and
// parseable, otherwise run the loader and populate the cache with its result.
// Store faults never prevent the loader's fresh value from being returned.
func Wrap[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, loader func() (T, error)) (T, error) {
	b, err := c.store.Get(ctx, key)
	if err == nil {
		var cached T
		if jerr := json.Unmarshal(b, &cached); jerr == nil {
			return cached, nil
		}
		// Unparseable entry: fall through and overwrite with a fresh value.
		c.log.Debug("discarding unparseable cache entry", zap.String("key", key))
	} else if !errors.Is(err, ErrCacheMiss) {
		c.log.Debug("cache read failed", zap.String("key", key), zap.Error(err))
	}

	fresh, err := loader()
	if err != nil {
		return fresh, err
	}

	if b, jerr := json.Marshal(fresh); jerr == nil && !bytes.Equal(b, jsonNull) {
		if serr := c.store.Set(ctx, key, b, ttl); serr != nil {
			c.log.Debug("cache write failed", zap.String("key", key), zap.Error(serr))
		}
	}
	return fresh, nil
}

// WrapVersioned composes VersionedKey and Wrap.
func WrapVersioned[T any](ctx context.Context, c *Cache, eventID uint, artifact string, ttl time.Duration, loader func() (T, error)) (T, error) {
	return Wrap(ctx, c, c.VersionedKey(ctx, eventID, artifact), ttl, loader)
}

// GetStats reads the cached stats for the event at its current version.
func (c *Cache) GetStats(ctx context.Context, eventID uint) (models.EventStats, bool) {
	var stats models.EventStats
	b, err := c.store.Get(ctx, c.VersionedKey(ctx, eventID, ArtifactStats))
	if err != nil {
		if !errors.Is(err, ErrCacheMiss) {
			c.log.Debug("stats read failed", zap.Uint("event_id", eventID), zap.Error(err))
		}
		return stats, false
	}
	if err := json.Unmarshal(b, &stats); err != nil {
		return models.EventStats{}, false
	}
	return stats, true
}

// SetStats writes the stats under the event's current version. Used both by
// the lazy recompute path and by the optimistic patches applied after photo
// mutations.
func (c *Cache) SetStats(ctx context.Context, eventID uint, stats models.EventStats) {
	b, err := json.Marshal(stats)
	if err != nil {
		return
	}
	key := c.VersionedKey(ctx, eventID, ArtifactStats)
	if err := c.store.Set(ctx, key, b, StatsTTL); err != nil {
		c.log.Debug("stats write failed", zap.Uint("event_id", eventID), zap.Error(err))
	}
}
