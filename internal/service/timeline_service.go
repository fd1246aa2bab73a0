package service

import (
	"context"
	"errors"

	"github.com/kadraly/kadraly-backend/internal/models"
	"github.com/kadraly/kadraly-backend/internal/repository"
	"github.com/kadraly/kadraly-backend/pkg/cache"
)

type TimelineService struct {
	timelineRepo *repository.TimelineRepository
	cache        *cache.Cache
}

func NewTimelineService(timelineRepo *repository.TimelineRepository, c *cache.Cache) *TimelineService {
	return &TimelineService{timelineRepo: timelineRepo, cache: c}
}

func (s *TimelineService) GetTimeline(ctx context.Context, eventID uint) ([]models.TimelineEntry, error) {
	// The timeline lives under a fixed key, not the versioned namespace, so
	// unrelated photo churn does not discard it. Every mutation below
	// deletes it explicitly.
	return cache.Wrap(ctx, s.cache, cache.EventTimelineKey(eventID), cache.DefaultTTL, func() ([]models.TimelineEntry, error) {
		return s.timelineRepo.GetByEventID(eventID)
	})
}

func (s *TimelineService) CreateEntry(ctx context.Context, eventID uint, req models.TimelineEntryRequest) (*models.TimelineEntry, error) {
	entry := &models.TimelineEntry{
		EventID:     eventID,
		Time:        req.Time,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
	}

	created, err := s.timelineRepo.Create(entry)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, eventID)
	return created, nil
}

func (s *TimelineService) UpdateEntry(ctx context.Context, entryID, eventID uint, req models.UpdateTimelineEntryRequest) (*models.TimelineEntry, error) {
	entry, err := s.timelineRepo.GetByID(entryID)
	if err != nil {
		return nil, err
	}
	if entry.EventID != eventID {
		return nil, errors.New("timeline entry does not belong to this event")
	}

	if req.Time != nil {
		entry.Time = *req.Time
	}
	if req.Title != nil {
		entry.Title = *req.Title
	}
	if req.Description != nil {
		entry.Description = *req.Description
	}
	if req.Location != nil {
		entry.Location = *req.Location
	}

	if err := s.timelineRepo.Update(entry); err != nil {
		return nil, err
	}

	s.invalidate(ctx, eventID)
	return entry, nil
}

func (s *TimelineService) DeleteEntry(ctx context.Context, entryID, eventID uint) error {
	entry, err := s.timelineRepo.GetByID(entryID)
	if err != nil {
		return err
	}
	if entry.EventID != eventID {
		return errors.New("timeline entry does not belong to this event")
	}

	if err := s.timelineRepo.Delete(entryID); err != nil {
		return err
	}

	s.invalidate(ctx, eventID)
	return nil
}

// AdjustTimes shifts the whole schedule, e.g. when the venue opens late.
func (s *TimelineService) AdjustTimes(ctx context.Context, eventID uint, offsetMinutes int) ([]models.TimelineEntry, error) {
	if offsetMinutes == 0 {
		return s.timelineRepo.GetByEventID(eventID)
	}

	if err := s.timelineRepo.ShiftTimes(eventID, offsetMinutes); err != nil {
		return nil, err
	}

	s.invalidate(ctx, eventID)
	return s.timelineRepo.GetByEventID(eventID)
}

func (s *TimelineService) invalidate(ctx context.Context, eventID uint) {
	s.cache.BumpVersion(ctx, eventID)
	s.cache.Delete(ctx, cache.EventTimelineKey(eventID))
}
