package cache

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadraly/kadraly-backend/internal/models"
)

// memStore is a minimal in-memory Store. TTLs are accepted and ignored; the
// tests never depend on expiry.
type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.data[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return b, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStore) SetNX(_ context.Context, key string, value []byte, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = value
	return true, nil
}

func (m *memStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *memStore) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, _ := strconv.ParseInt(string(m.data[key]), 10, 64)
	v++
	m.data[key] = []byte(strconv.FormatInt(v, 10))
	return v, nil
}

func (m *memStore) Expire(_ context.Context, _ string, _ time.Duration) error {
	return nil
}

// brokenStore fails every call, simulating a Redis outage.
type brokenStore struct{}

var errStoreDown = errors.New("store down")

func (brokenStore) Get(context.Context, string) ([]byte, error) { return nil, errStoreDown }
func (brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	return errStoreDown
}
func (brokenStore) SetNX(context.Context, string, []byte, time.Duration) (bool, error) {
	return false, errStoreDown
}
func (brokenStore) Del(context.Context, ...string) error { return errStoreDown }
func (brokenStore) Incr(context.Context, string) (int64, error) {
	return 0, errStoreDown
}
func (brokenStore) Expire(context.Context, string, time.Duration) error {
	return errStoreDown
}

func TestVersionInitializesToOne(t *testing.T) {
	c := New(newMemStore(), nil)
	ctx := context.Background()

	assert.EqualValues(t, 1, c.Version(ctx, 7))
	// Idempotent with no intervening bump.
	assert.EqualValues(t, 1, c.Version(ctx, 7))
}

func TestBumpVersionStrictlyIncreases(t *testing.T) {
	c := New(newMemStore(), nil)
	ctx := context.Background()

	before := c.Version(ctx, 2)
	bumped := c.BumpVersion(ctx, 2)
	assert.Greater(t, bumped, before)
	assert.EqualValues(t, bumped, c.Version(ctx, 2))
}

func TestVersionedKeyChangesAcrossBump(t *testing.T) {
	c := New(newMemStore(), nil)
	ctx := context.Background()

	require.EqualValues(t, 1, c.Version(ctx, 2))
	first := c.VersionedKey(ctx, 2, ArtifactStats)
	assert.Equal(t, "2::1::stats", first)

	c.BumpVersion(ctx, 2)
	second := c.VersionedKey(ctx, 2, ArtifactStats)
	assert.Equal(t, "2::2::stats", second)
	assert.NotEqual(t, first, second)
}

func TestWrapInvokesLoaderOncePerVersion(t *testing.T) {
	c := New(newMemStore(), nil)
	ctx := context.Background()

	calls := 0
	loader := func() ([]string, error) {
		calls++
		return []string{"a", "b"}, nil
	}

	got, err := WrapVersioned(ctx, c, 5, ArtifactPhotos, DefaultTTL, loader)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 1, calls)

	got, err = WrapVersioned(ctx, c, 5, ArtifactPhotos, DefaultTTL, loader)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 1, calls, "second read must be served from cache")

	c.BumpVersion(ctx, 5)

	_, err = WrapVersioned(ctx, c, 5, ArtifactPhotos, DefaultTTL, loader)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "bump must force a reload")
}

func TestWrapPropagatesLoaderError(t *testing.T) {
	c := New(newMemStore(), nil)
	wantErr := errors.New("db down")

	_, err := Wrap(context.Background(), c, "k", DefaultTTL, func() (int, error) {
		return 0, wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestWrapDoesNotCacheNil(t *testing.T) {
	store := newMemStore()
	c := New(store, nil)
	ctx := context.Background()

	calls := 0
	loader := func() (*models.EventStats, error) {
		calls++
		return nil, nil
	}

	got, err := Wrap(ctx, c, "k", DefaultTTL, loader)
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = Wrap(ctx, c, "k", DefaultTTL, loader)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "nil results must not be cached")
}

func TestWrapSurvivesBrokenStore(t *testing.T) {
	c := New(brokenStore{}, nil)

	got, err := Wrap(context.Background(), c, "k", DefaultTTL, func() (string, error) {
		return "fresh", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh", got)
}

func TestBumpVersionFallsBackOnBrokenStore(t *testing.T) {
	c := New(brokenStore{}, nil)

	// Must not fail, and must exceed anything a healthy counter could reach.
	forced := c.BumpVersion(context.Background(), 3)
	assert.Greater(t, forced, int64(1<<40))
}

func TestVersionFailsOpenOnBrokenStore(t *testing.T) {
	c := New(brokenStore{}, nil)
	assert.EqualValues(t, 1, c.Version(context.Background(), 3))
}

func TestStatsRoundTrip(t *testing.T) {
	c := New(newMemStore(), nil)
	ctx := context.Background()

	_, ok := c.GetStats(ctx, 9)
	assert.False(t, ok)

	now := time.Now().UTC().Truncate(time.Second)
	stats := models.EventStats{TotalPhotos: 3, ApprovedPhotos: 2, LastUploadAt: &now}
	stats.Normalize()
	c.SetStats(ctx, 9, stats)

	got, ok := c.GetStats(ctx, 9)
	require.True(t, ok)
	assert.Equal(t, stats, got)

	// Bump hides the cached stats without deleting them.
	c.BumpVersion(ctx, 9)
	_, ok = c.GetStats(ctx, 9)
	assert.False(t, ok)
}

func TestDeleteAuxKeys(t *testing.T) {
	store := newMemStore()
	c := New(store, nil)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, PhotoURLKey(4), []byte(`"https://signed"`), DefaultTTL))
	c.Delete(ctx, PhotoURLKey(4), PhotoThumbURLKey(4))

	_, err := store.Get(ctx, PhotoURLKey(4))
	assert.ErrorIs(t, err, ErrCacheMiss)
}
