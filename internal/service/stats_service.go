package service

import (
	"context"
	"time"

	"github.com/kadraly/kadraly-backend/internal/models"
	"github.com/kadraly/kadraly-backend/pkg/cache"
)

// PhotoCounter is the slice of the photo repository the stats recompute
// needs.
type PhotoCounter interface {
	CountByEventID(eventID uint) (int64, error)
	CountApprovedByEventID(eventID uint) (int64, error)
	LastUploadAt(eventID uint) (*time.Time, error)
}

// StatsService maintains the per-event photo stats two ways: a lazy recompute
// from the photos table when nothing is cached, and optimistic in-place
// patches applied on single-photo mutations so the common approve/upload/
// delete paths skip the recount. Both paths normalize through the same
// formula in models.EventStats, so a full recompute always converges to what
// the patches produced. A patch lost to a concurrent writer is acceptable:
// the next recompute self-heals.
type StatsService struct {
	photos PhotoCounter
	cache  *cache.Cache
}

func NewStatsService(photos PhotoCounter, c *cache.Cache) *StatsService {
	return &StatsService{photos: photos, cache: c}
}

// GetEventStats returns cached stats, recomputing and repopulating on a miss.
func (s *StatsService) GetEventStats(ctx context.Context, eventID uint) (models.EventStats, error) {
	if stats, ok := s.cache.GetStats(ctx, eventID); ok {
		return stats, nil
	}

	stats, err := s.Recompute(eventID)
	if err != nil {
		return models.EventStats{}, err
	}
	s.cache.SetStats(ctx, eventID, stats)
	return stats, nil
}

// Recompute derives the stats from the source of truth without touching the
// cache.
func (s *StatsService) Recompute(eventID uint) (models.EventStats, error) {
	var stats models.EventStats
	var err error

	if stats.TotalPhotos, err = s.photos.CountByEventID(eventID); err != nil {
		return models.EventStats{}, err
	}
	if stats.ApprovedPhotos, err = s.photos.CountApprovedByEventID(eventID); err != nil {
		return models.EventStats{}, err
	}
	if stats.LastUploadAt, err = s.photos.LastUploadAt(eventID); err != nil {
		return models.EventStats{}, err
	}
	stats.Normalize()
	return stats, nil
}

// NoteUpload bumps the event version (invalidating every versioned artifact)
// and carries the cached stats over to the new version with the upload
// applied. The snapshot is taken before the bump so the carried value
// includes all earlier patches; when nothing was cached, the next read
// recomputes lazily.
func (s *StatsService) NoteUpload(ctx context.Context, eventID uint, approved bool, at time.Time) {
	stats, ok := s.cache.GetStats(ctx, eventID)
	s.cache.BumpVersion(ctx, eventID)
	if !ok {
		return
	}
	stats.ApplyUpload(approved, at)
	s.cache.SetStats(ctx, eventID, stats)
}

// NoteApproval is NoteUpload's counterpart for a photo moving to approved.
func (s *StatsService) NoteApproval(ctx context.Context, eventID uint) {
	stats, ok := s.cache.GetStats(ctx, eventID)
	s.cache.BumpVersion(ctx, eventID)
	if !ok {
		return
	}
	stats.ApplyApproval()
	s.cache.SetStats(ctx, eventID, stats)
}

// NoteDeletion is NoteUpload's counterpart for a removed photo.
func (s *StatsService) NoteDeletion(ctx context.Context, eventID uint, wasApproved bool) {
	stats, ok := s.cache.GetStats(ctx, eventID)
	s.cache.BumpVersion(ctx, eventID)
	if !ok {
		return
	}
	stats.ApplyDeletion(wasApproved)
	s.cache.SetStats(ctx, eventID, stats)
}
