package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kadraly/kadraly-backend/internal/models"
	"github.com/kadraly/kadraly-backend/internal/repository"
	"github.com/kadraly/kadraly-backend/pkg/cache"
	"github.com/kadraly/kadraly-backend/pkg/storage"
	"github.com/kadraly/kadraly-backend/pkg/utils"
)

const eventDuration = 90 * 24 * time.Hour

type EventService struct {
	eventRepo    *repository.EventRepository
	memberRepo   *repository.EventMemberRepository
	photoRepo    *repository.PhotoRepository
	timelineRepo *repository.TimelineRepository
	userRepo     *repository.UserRepository
	storage      storage.ObjectStorage
	cache        *cache.Cache
}

func NewEventService(
	eventRepo *repository.EventRepository,
	memberRepo *repository.EventMemberRepository,
	photoRepo *repository.PhotoRepository,
	timelineRepo *repository.TimelineRepository,
	userRepo *repository.UserRepository,
	store storage.ObjectStorage,
	c *cache.Cache,
) *EventService {
	return &EventService{
		eventRepo:    eventRepo,
		memberRepo:   memberRepo,
		photoRepo:    photoRepo,
		timelineRepo: timelineRepo,
		userRepo:     userRepo,
		storage:      store,
		cache:        c,
	}
}

func (s *EventService) CreateEvent(ctx context.Context, userID uint, req models.EventRequest) (*models.Event, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	count, err := s.eventRepo.CountByUserID(userID)
	if err != nil {
		return nil, err
	}
	if int(count) >= user.EventLimit {
		return nil, errors.New("event limit reached, purchase credits to create more events")
	}

	code, err := s.uniqueAccessCode()
	if err != nil {
		return nil, err
	}

	event := &models.Event{
		UserID:            userID,
		Title:             req.Title,
		Description:       req.Description,
		Location:          req.Location,
		AccessCode:        code,
		IsPublic:          req.IsPublic,
		AllowGuestUploads: req.AllowGuestUploads,
		RequireApproval:   req.RequireApproval,
		ChatEnabled:       req.ChatEnabled,
		ExpiresAt:         time.Now().Add(eventDuration),
	}

	created, err := s.eventRepo.Create(event)
	if err != nil {
		return nil, err
	}

	s.cache.Delete(ctx, cache.UserEventsKey(userID))
	return created, nil
}

func (s *EventService) GetEvent(eventID uint) (*models.Event, error) {
	return s.eventRepo.GetByID(eventID)
}

func (s *EventService) GetEventByCode(ctx context.Context, code string) (*models.Event, error) {
	return cache.Wrap(ctx, s.cache, cache.EventByCodeKey(code), cache.DefaultTTL, func() (*models.Event, error) {
		return s.eventRepo.GetByAccessCode(code)
	})
}

func (s *EventService) GetUserEvents(ctx context.Context, userID uint) ([]models.Event, error) {
	return cache.Wrap(ctx, s.cache, cache.UserEventsKey(userID), cache.DefaultTTL, func() ([]models.Event, error) {
		return s.eventRepo.GetUserEvents(userID)
	})
}

func (s *EventService) UpdateEvent(ctx context.Context, eventID uint, req models.UpdateEventRequest) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(eventID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Location != nil {
		event.Location = *req.Location
	}
	if req.IsPublic != nil {
		event.IsPublic = *req.IsPublic
	}
	if req.AllowGuestUploads != nil {
		event.AllowGuestUploads = *req.AllowGuestUploads
	}
	if req.RequireApproval != nil {
		event.RequireApproval = *req.RequireApproval
	}
	if req.ChatEnabled != nil {
		event.ChatEnabled = *req.ChatEnabled
	}

	if err := s.eventRepo.Update(event); err != nil {
		return nil, err
	}

	// Settings changes invalidate every derived artifact plus the fixed keys
	// that mirror event fields.
	s.cache.BumpVersion(ctx, eventID)
	s.cache.Delete(ctx,
		cache.EventByCodeKey(event.AccessCode),
		cache.UserEventsKey(event.UserID),
	)

	return event, nil
}

// RegenerateAccessCode issues a fresh code. The entry cached under the old
// code has to be deleted explicitly; the version bump cannot reach it because
// code lookups are keyed by the code itself, not by the event version.
func (s *EventService) RegenerateAccessCode(ctx context.Context, eventID uint) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(eventID)
	if err != nil {
		return nil, err
	}

	oldCode := event.AccessCode
	code, err := s.uniqueAccessCode()
	if err != nil {
		return nil, err
	}
	event.AccessCode = code

	if err := s.eventRepo.Update(event); err != nil {
		return nil, err
	}

	s.cache.BumpVersion(ctx, eventID)
	s.cache.Delete(ctx,
		cache.EventByCodeKey(oldCode),
		cache.UserEventsKey(event.UserID),
	)

	return event, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, eventID uint) error {
	event, err := s.eventRepo.GetByID(eventID)
	if err != nil {
		return err
	}

	// Best effort: orphaned objects cost storage, not correctness.
	_ = s.storage.DeletePrefix(ctx, fmt.Sprintf("events/%d/", eventID))

	photos, err := s.photoRepo.GetByEventID(eventID)
	if err != nil {
		return err
	}

	if err := s.photoRepo.DeleteByEventID(eventID); err != nil {
		return err
	}
	if err := s.timelineRepo.DeleteByEventID(eventID); err != nil {
		return err
	}
	if err := s.memberRepo.DeleteByEventID(eventID); err != nil {
		return err
	}
	if err := s.eventRepo.Delete(eventID); err != nil {
		return err
	}

	s.cache.BumpVersion(ctx, eventID)
	keys := []string{
		cache.EventByCodeKey(event.AccessCode),
		cache.EventTimelineKey(eventID),
		cache.UserEventsKey(event.UserID),
	}
	for _, p := range photos {
		keys = append(keys, cache.PhotoMetaKey(p.ID), cache.PhotoURLKey(p.ID), cache.PhotoThumbURLKey(p.ID))
	}
	s.cache.Delete(ctx, keys...)

	return nil
}

// ListMembers returns the delegated members of an event. The owner is not a
// member row.
func (s *EventService) ListMembers(eventID uint) ([]models.EventMemberResponse, error) {
	members, err := s.memberRepo.GetByEventID(eventID)
	if err != nil {
		return nil, err
	}

	responses := make([]models.EventMemberResponse, 0, len(members))
	for _, m := range members {
		resp := models.EventMemberResponse{UserID: m.UserID, Role: m.Role}
		if user, err := s.userRepo.GetByID(m.UserID); err == nil {
			resp.FullName = user.FullName
			resp.Email = user.Email
		}
		responses = append(responses, resp)
	}
	return responses, nil
}

// AddMember grants a role to a registered user, replacing any role they
// already hold on the event.
func (s *EventService) AddMember(eventID uint, req models.AddMemberRequest) (*models.EventMember, error) {
	event, err := s.eventRepo.GetByID(eventID)
	if err != nil {
		return nil, err
	}

	role := models.EventRole(req.Role)
	if !role.IsAssignable() {
		return nil, errors.New("invalid role")
	}

	user, err := s.userRepo.GetByEmail(req.Email)
	if err != nil {
		return nil, errors.New("no account found for that email")
	}
	if user.ID == event.UserID {
		return nil, errors.New("the owner cannot be added as a member")
	}

	member := &models.EventMember{EventID: eventID, UserID: user.ID, Role: role}
	if err := s.memberRepo.Upsert(member); err != nil {
		return nil, err
	}
	return member, nil
}

func (s *EventService) RemoveMember(eventID, userID uint) error {
	return s.memberRepo.Delete(eventID, userID)
}

// CleanupExpired removes events past their expiry, including their photos,
// storage objects, and cache entries. Returns how many were deleted.
func (s *EventService) CleanupExpired(ctx context.Context) (int, error) {
	expired, err := s.eventRepo.FindExpiredEvents(time.Now())
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, event := range expired {
		if err := s.DeleteEvent(ctx, event.ID); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

func (s *EventService) uniqueAccessCode() (string, error) {
	for i := 0; i < 5; i++ {
		code := utils.GenerateAccessCode()
		exists, err := s.eventRepo.AccessCodeExists(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("could not generate a unique access code")
}
