package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/kadraly/kadraly-backend/internal/models"
)

type PhotoRepository struct {
	db *gorm.DB
}

func NewPhotoRepository(db *gorm.DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

func (r *PhotoRepository) Create(photo *models.Photo) error {
	return r.db.Create(photo).Error
}

func (r *PhotoRepository) GetByID(id uint) (*models.Photo, error) {
	var photo models.Photo
	if err := r.db.First(&photo, id).Error; err != nil {
		return nil, err
	}
	return &photo, nil
}

func (r *PhotoRepository) GetByEventID(eventID uint) ([]models.Photo, error) {
	var photos []models.Photo
	err := r.db.Where("event_id = ?", eventID).
		Order("created_at DESC").Find(&photos).Error
	return photos, err
}

func (r *PhotoRepository) GetApprovedByEventID(eventID uint) ([]models.Photo, error) {
	var photos []models.Photo
	err := r.db.Where("event_id = ? AND is_approved = ?", eventID, true).
		Order("created_at DESC").Find(&photos).Error
	return photos, err
}

func (r *PhotoRepository) GetPendingByEventID(eventID uint) ([]models.Photo, error) {
	var photos []models.Photo
	err := r.db.Where("event_id = ? AND is_approved = ?", eventID, false).
		Order("created_at ASC").Find(&photos).Error
	return photos, err
}

func (r *PhotoRepository) Approve(id uint) error {
	return r.db.Model(&models.Photo{}).Where("id = ?", id).
		Update("is_approved", true).Error
}

func (r *PhotoRepository) Delete(id uint) error {
	return r.db.Delete(&models.Photo{}, id).Error
}

func (r *PhotoRepository) DeleteByEventID(eventID uint) error {
	return r.db.Where("event_id = ?", eventID).Delete(&models.Photo{}).Error
}

func (r *PhotoRepository) CountByEventID(eventID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Photo{}).Where("event_id = ?", eventID).Count(&count).Error
	return count, err
}

func (r *PhotoRepository) CountApprovedByEventID(eventID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Photo{}).
		Where("event_id = ? AND is_approved = ?", eventID, true).Count(&count).Error
	return count, err
}

// LastUploadAt returns nil without error when the event has no photos yet.
func (r *PhotoRepository) LastUploadAt(eventID uint) (*time.Time, error) {
	var photo models.Photo
	err := r.db.Where("event_id = ?", eventID).
		Order("uploaded_at DESC").First(&photo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	t := photo.UploadedAt
	return &t, nil
}
