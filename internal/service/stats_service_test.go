package service

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadraly/kadraly-backend/pkg/cache"
)

// fakeStore is a map-backed cache.Store; TTLs are ignored.
type fakeStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: make(map[string][]byte)}
}

func (f *fakeStore) Get(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.data[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return b, nil
}

func (f *fakeStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value
	return nil
}

func (f *fakeStore) SetNX(_ context.Context, key string, value []byte, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.data[key]; ok {
		return false, nil
	}
	f.data[key] = value
	return true, nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeStore) Incr(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, _ := strconv.ParseInt(string(f.data[key]), 10, 64)
	v++
	f.data[key] = []byte(strconv.FormatInt(v, 10))
	return v, nil
}

func (f *fakeStore) Expire(_ context.Context, _ string, _ time.Duration) error {
	return nil
}

// fakePhotoTable simulates the source of truth for photo counts.
type fakePhotoTable struct {
	photos map[uint]bool // photoID -> approved
	nextID uint
	last   *time.Time
}

func newFakePhotoTable() *fakePhotoTable {
	return &fakePhotoTable{photos: make(map[uint]bool), nextID: 1}
}

func (f *fakePhotoTable) insert(approved bool, at time.Time) uint {
	id := f.nextID
	f.nextID++
	f.photos[id] = approved
	if f.last == nil || at.After(*f.last) {
		t := at
		f.last = &t
	}
	return id
}

func (f *fakePhotoTable) approve(id uint) { f.photos[id] = true }
func (f *fakePhotoTable) remove(id uint)  { delete(f.photos, id) }
func (f *fakePhotoTable) CountByEventID(uint) (int64, error) {
	return int64(len(f.photos)), nil
}
func (f *fakePhotoTable) CountApprovedByEventID(uint) (int64, error) {
	var n int64
	for _, approved := range f.photos {
		if approved {
			n++
		}
	}
	return n, nil
}
func (f *fakePhotoTable) LastUploadAt(uint) (*time.Time, error) {
	return f.last, nil
}

func TestGetEventStatsRecomputesOnMiss(t *testing.T) {
	table := newFakePhotoTable()
	c := cache.New(newFakeStore(), nil)
	svc := NewStatsService(table, c)
	ctx := context.Background()

	// Truncate so the cached copy survives a JSON round trip intact.
	now := time.Now().UTC().Truncate(time.Second)
	table.insert(true, now)
	table.insert(false, now)

	stats, err := svc.GetEventStats(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalPhotos)
	assert.EqualValues(t, 1, stats.ApprovedPhotos)
	assert.EqualValues(t, 1, stats.PendingApprovals)

	// Second read comes from the cache and matches.
	cached, err := svc.GetEventStats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, stats, cached)
}

// The optimistic patch path and the full recompute must converge for any
// mutation sequence.
func TestOptimisticPatchesConvergeWithRecompute(t *testing.T) {
	const eventID = 1

	type step struct {
		op       string // insert-pending, insert-approved, approve, delete
		targetID uint
	}

	tests := []struct {
		name  string
		steps []step
	}{
		{
			// insert 3 unapproved, approve 1, delete 1 unapproved
			name: "moderated event",
			steps: []step{
				{op: "insert-pending"}, {op: "insert-pending"}, {op: "insert-pending"},
				{op: "approve", targetID: 1},
				{op: "delete", targetID: 2},
			},
		},
		{
			// insert approved x2 (requireApproval=false), delete 1 approved
			name: "open event",
			steps: []step{
				{op: "insert-approved"}, {op: "insert-approved"},
				{op: "delete", targetID: 1},
			},
		},
		{
			name: "approve then delete the approved photo",
			steps: []step{
				{op: "insert-pending"}, {op: "insert-pending"},
				{op: "approve", targetID: 1},
				{op: "delete", targetID: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := newFakePhotoTable()
			c := cache.New(newFakeStore(), nil)
			svc := NewStatsService(table, c)
			ctx := context.Background()

			// Seed the cache so the patch path is exercised.
			_, err := svc.GetEventStats(ctx, eventID)
			require.NoError(t, err)

			at := time.Now()
			for _, st := range tt.steps {
				at = at.Add(time.Minute)
				switch st.op {
				case "insert-pending":
					table.insert(false, at)
					svc.NoteUpload(ctx, eventID, false, at)
				case "insert-approved":
					table.insert(true, at)
					svc.NoteUpload(ctx, eventID, true, at)
				case "approve":
					wasApproved := table.photos[st.targetID]
					table.approve(st.targetID)
					if !wasApproved {
						svc.NoteApproval(ctx, eventID)
					}
				case "delete":
					wasApproved := table.photos[st.targetID]
					table.remove(st.targetID)
					svc.NoteDeletion(ctx, eventID, wasApproved)
				}
			}

			patched, ok := c.GetStats(ctx, eventID)
			require.True(t, ok, "patched stats must survive under the current version")

			recomputed, err := svc.Recompute(eventID)
			require.NoError(t, err)

			assert.Equal(t, recomputed.TotalPhotos, patched.TotalPhotos)
			assert.Equal(t, recomputed.ApprovedPhotos, patched.ApprovedPhotos)
			assert.Equal(t, recomputed.PendingApprovals, patched.PendingApprovals)
		})
	}
}

func TestNoteUploadWithoutCachedStatsOnlyBumps(t *testing.T) {
	table := newFakePhotoTable()
	c := cache.New(newFakeStore(), nil)
	svc := NewStatsService(table, c)
	ctx := context.Background()

	before := c.Version(ctx, 1)
	now := time.Now()
	table.insert(false, now)
	svc.NoteUpload(ctx, 1, false, now)

	assert.Greater(t, c.Version(ctx, 1), before, "mutation must still invalidate")

	_, ok := c.GetStats(ctx, 1)
	assert.False(t, ok, "nothing to patch; next read recomputes")

	stats, err := svc.GetEventStats(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalPhotos)
	assert.EqualValues(t, 1, stats.PendingApprovals)
}
