package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/google/uuid"

	"github.com/kadraly/kadraly-backend/internal/models"
	"github.com/kadraly/kadraly-backend/pkg/cache"
	"github.com/kadraly/kadraly-backend/pkg/storage"
)

const (
	maxPhotoSize = 10 * 1024 * 1024

	// Signed URLs live slightly longer than their cache entries so a cached
	// URL can never outlive its signature.
	signedURLLifetime = 15 * time.Minute
	signedURLCacheTTL = 12 * time.Minute
)

// PhotoStore is the slice of the photo repository the service needs.
type PhotoStore interface {
	Create(photo *models.Photo) error
	GetByID(id uint) (*models.Photo, error)
	GetByEventID(eventID uint) ([]models.Photo, error)
	GetApprovedByEventID(eventID uint) ([]models.Photo, error)
	GetPendingByEventID(eventID uint) ([]models.Photo, error)
	Approve(id uint) error
	Delete(id uint) error
	CountByEventID(eventID uint) (int64, error)
}

// EventGetter and UserGetter are the point lookups the upload checks need.
type EventGetter interface {
	GetByID(id uint) (*models.Event, error)
}

type UserGetter interface {
	GetByID(id uint) (*models.User, error)
}

type PhotoService struct {
	photoRepo PhotoStore
	events    EventGetter
	users     UserGetter
	storage   storage.ObjectStorage
	cache     *cache.Cache
	stats     *StatsService
}

func NewPhotoService(
	photoRepo PhotoStore,
	events EventGetter,
	users UserGetter,
	store storage.ObjectStorage,
	c *cache.Cache,
	stats *StatsService,
) *PhotoService {
	return &PhotoService{
		photoRepo: photoRepo,
		events:    events,
		users:     users,
		storage:   store,
		cache:     c,
		stats:     stats,
	}
}

// GuestInfo is empty for authenticated uploads.
type GuestInfo struct {
	Name  string
	Email string
}

func (s *PhotoService) UploadPhoto(ctx context.Context, eventID, userID uint, guest GuestInfo, file *multipart.FileHeader) (*models.Photo, error) {
	event, err := s.events.GetByID(eventID)
	if err != nil {
		return nil, errors.New("event not found")
	}

	if userID == 0 && !event.AllowGuestUploads {
		return nil, errors.New("guest uploads are not allowed for this event")
	}

	// The host's photo credit caps every upload to the event, guest uploads
	// included.
	owner, err := s.users.GetByID(event.UserID)
	if err != nil {
		return nil, err
	}
	count, err := s.photoRepo.CountByEventID(eventID)
	if err != nil {
		return nil, err
	}
	if int(count) >= owner.PhotoLimit {
		return nil, errors.New("photo limit reached for this event")
	}

	if !isValidImageType(file.Header.Get("Content-Type")) {
		return nil, errors.New("invalid file type")
	}
	if file.Size > maxPhotoSize {
		return nil, errors.New("file size too large")
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	key := fmt.Sprintf("events/%d/%s-%s", eventID, uuid.NewString(), file.Filename)
	if err := s.storage.Upload(ctx, key, src, file.Size, file.Header.Get("Content-Type")); err != nil {
		return nil, err
	}

	// Owner uploads and events without moderation are approved immediately.
	approved := !event.RequireApproval || userID == event.UserID
	now := time.Now()

	photo := &models.Photo{
		EventID:    eventID,
		UserID:     userID,
		GuestName:  guest.Name,
		GuestEmail: guest.Email,
		FileName:   file.Filename,
		FileSize:   file.Size,
		MimeType:   file.Header.Get("Content-Type"),
		FilePath:   models.StorageKeyPrefix + key,
		IsApproved: approved,
		UploadedAt: now,
	}

	if err := s.photoRepo.Create(photo); err != nil {
		_ = s.storage.Delete(ctx, key)
		return nil, err
	}

	// Invalidate derived artifacts and carry the stats patch forward.
	s.stats.NoteUpload(ctx, eventID, approved, now)

	return photo, nil
}

// GetEventPhotos returns the full list including pending photos; callers must
// have moderation rights on the event.
func (s *PhotoService) GetEventPhotos(ctx context.Context, eventID uint) ([]models.PhotoResponse, error) {
	return cache.WrapVersioned(ctx, s.cache, eventID, cache.ArtifactPhotos, cache.DefaultTTL, func() ([]models.PhotoResponse, error) {
		photos, err := s.photoRepo.GetByEventID(eventID)
		if err != nil {
			return nil, fmt.Errorf("failed to get photos: %w", err)
		}
		return s.toResponses(ctx, photos), nil
	})
}

// GetApprovedEventPhotos is the guest-facing gallery.
func (s *PhotoService) GetApprovedEventPhotos(ctx context.Context, eventID uint) ([]models.PhotoResponse, error) {
	return cache.WrapVersioned(ctx, s.cache, eventID, cache.ArtifactApprovedPhotos, cache.DefaultTTL, func() ([]models.PhotoResponse, error) {
		photos, err := s.photoRepo.GetApprovedByEventID(eventID)
		if err != nil {
			return nil, fmt.Errorf("failed to get photos: %w", err)
		}
		return s.toResponses(ctx, photos), nil
	})
}

// GetPendingPhotos is the moderation queue.
func (s *PhotoService) GetPendingPhotos(ctx context.Context, eventID uint) ([]models.PhotoResponse, error) {
	return cache.WrapVersioned(ctx, s.cache, eventID, cache.ArtifactPendingPhotos, cache.DefaultTTL, func() ([]models.PhotoResponse, error) {
		photos, err := s.photoRepo.GetPendingByEventID(eventID)
		if err != nil {
			return nil, fmt.Errorf("failed to get photos: %w", err)
		}
		return s.toResponses(ctx, photos), nil
	})
}

func (s *PhotoService) ApprovePhoto(ctx context.Context, photoID uint) (*models.Photo, error) {
	photo, err := s.photoRepo.GetByID(photoID)
	if err != nil {
		return nil, fmt.Errorf("photo not found: %w", err)
	}
	if photo.IsApproved {
		return photo, nil
	}

	if err := s.photoRepo.Approve(photoID); err != nil {
		return nil, err
	}
	photo.IsApproved = true

	s.stats.NoteApproval(ctx, photo.EventID)
	// The meta mirror carries the approval flag; delete it individually, the
	// bump cannot reach fixed keys.
	s.cache.Delete(ctx, cache.PhotoMetaKey(photoID))

	return photo, nil
}

func (s *PhotoService) DeletePhoto(ctx context.Context, photoID uint) error {
	photo, err := s.photoRepo.GetByID(photoID)
	if err != nil {
		return fmt.Errorf("photo not found: %w", err)
	}

	if key, ok := photo.ObjectKey(); ok {
		if err := s.storage.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to delete from storage: %w", err)
		}
		_ = s.storage.Delete(ctx, thumbKey(key))
	}

	if err := s.photoRepo.Delete(photoID); err != nil {
		return err
	}

	s.stats.NoteDeletion(ctx, photo.EventID, photo.IsApproved)
	s.cache.Delete(ctx,
		cache.PhotoMetaKey(photoID),
		cache.PhotoURLKey(photoID),
		cache.PhotoThumbURLKey(photoID),
	)

	return nil
}

// GetPhoto serves the per-photo metadata mirror.
func (s *PhotoService) GetPhoto(ctx context.Context, photoID uint) (*models.Photo, error) {
	return cache.Wrap(ctx, s.cache, cache.PhotoMetaKey(photoID), cache.DefaultTTL, func() (*models.Photo, error) {
		return s.photoRepo.GetByID(photoID)
	})
}

// SignedPhotoURL caches the presigned download URL per photo. These are
// deliberately outside the versioned namespace: minting is the expensive
// part, and one photo's deletion must not re-mint URLs for every other photo
// of the event.
func (s *PhotoService) SignedPhotoURL(ctx context.Context, photo *models.Photo) (string, error) {
	key, ok := photo.ObjectKey()
	if !ok {
		return "", nil
	}
	return cache.Wrap(ctx, s.cache, cache.PhotoURLKey(photo.ID), signedURLCacheTTL, func() (string, error) {
		return s.storage.SignedURL(ctx, key, signedURLLifetime)
	})
}

// SignedThumbnailURL presigns the resized copy under thumbs/ when one exists.
// Thumbnails are generated out of band, so until the object shows up the
// original stands in and galleries never render a dead link.
func (s *PhotoService) SignedThumbnailURL(ctx context.Context, photo *models.Photo) (string, error) {
	key, ok := photo.ObjectKey()
	if !ok {
		return "", nil
	}
	return cache.Wrap(ctx, s.cache, cache.PhotoThumbURLKey(photo.ID), signedURLCacheTTL, func() (string, error) {
		if ok, err := s.storage.Exists(ctx, thumbKey(key)); err == nil && ok {
			return s.storage.SignedURL(ctx, thumbKey(key), signedURLLifetime)
		}
		return s.storage.SignedURL(ctx, key, signedURLLifetime)
	})
}

func (s *PhotoService) toResponses(ctx context.Context, photos []models.Photo) []models.PhotoResponse {
	responses := make([]models.PhotoResponse, 0, len(photos))
	for i := range photos {
		p := &photos[i]
		url, _ := s.SignedPhotoURL(ctx, p)
		thumb, _ := s.SignedThumbnailURL(ctx, p)
		responses = append(responses, models.PhotoResponse{
			ID:           p.ID,
			EventID:      p.EventID,
			UserID:       p.UserID,
			GuestName:    p.GuestName,
			FileName:     p.FileName,
			FileSize:     p.FileSize,
			MimeType:     p.MimeType,
			IsApproved:   p.IsApproved,
			URL:          url,
			ThumbnailURL: thumb,
			UploadedAt:   p.UploadedAt,
		})
	}
	return responses
}

func thumbKey(key string) string {
	return "thumbs/" + key
}

func isValidImageType(contentType string) bool {
	validTypes := map[string]bool{
		"image/jpeg": true,
		"image/png":  true,
		"image/gif":  true,
		"image/webp": true,
	}
	return validTypes[contentType]
}
