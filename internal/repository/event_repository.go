package repository

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/kadraly/kadraly-backend/internal/models"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(event *models.Event) (*models.Event, error) {
	if err := r.db.Create(event).Error; err != nil {
		return nil, err
	}
	return event, nil
}

func (r *EventRepository) GetByID(id uint) (*models.Event, error) {
	var event models.Event
	if err := r.db.First(&event, id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// GetByAccessCode looks up case-insensitively; codes are stored uppercase but
// older rows predate that convention.
func (r *EventRepository) GetByAccessCode(code string) (*models.Event, error) {
	var event models.Event
	code = strings.ToUpper(strings.TrimSpace(code))
	if err := r.db.Where("upper(access_code) = ?", code).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *EventRepository) AccessCodeExists(code string) (bool, error) {
	var count int64
	err := r.db.Model(&models.Event{}).
		Where("upper(access_code) = ?", strings.ToUpper(strings.TrimSpace(code))).
		Count(&count).Error
	return count > 0, err
}

func (r *EventRepository) GetUserEvents(userID uint) ([]models.Event, error) {
	var events []models.Event
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&events).Error
	return events, err
}

func (r *EventRepository) Update(event *models.Event) error {
	return r.db.Save(event).Error
}

func (r *EventRepository) Delete(id uint) error {
	return r.db.Delete(&models.Event{}, id).Error
}

func (r *EventRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Event{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *EventRepository) FindExpiredEvents(now time.Time) ([]models.Event, error) {
	var expired []models.Event
	err := r.db.Where("expires_at < ?", now).Find(&expired).Error
	return expired, err
}
