package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/kadraly/kadraly-backend/internal/models"
)

type TimelineRepository struct {
	db *gorm.DB
}

func NewTimelineRepository(db *gorm.DB) *TimelineRepository {
	return &TimelineRepository{db: db}
}

func (r *TimelineRepository) Create(entry *models.TimelineEntry) (*models.TimelineEntry, error) {
	if err := r.db.Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *TimelineRepository) GetByID(id uint) (*models.TimelineEntry, error) {
	var entry models.TimelineEntry
	if err := r.db.First(&entry, id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *TimelineRepository) GetByEventID(eventID uint) ([]models.TimelineEntry, error) {
	var entries []models.TimelineEntry
	err := r.db.Where("event_id = ?", eventID).Order("time ASC").Find(&entries).Error
	return entries, err
}

func (r *TimelineRepository) Update(entry *models.TimelineEntry) error {
	return r.db.Save(entry).Error
}

func (r *TimelineRepository) Delete(id uint) error {
	return r.db.Delete(&models.TimelineEntry{}, id).Error
}

func (r *TimelineRepository) DeleteByEventID(eventID uint) error {
	return r.db.Where("event_id = ?", eventID).Delete(&models.TimelineEntry{}).Error
}

// ShiftTimes moves every entry of the event by the given number of minutes in
// a single statement.
func (r *TimelineRepository) ShiftTimes(eventID uint, offsetMinutes int) error {
	expr := fmt.Sprintf("time + interval '%d minutes'", offsetMinutes)
	return r.db.Model(&models.TimelineEntry{}).
		Where("event_id = ?", eventID).
		Update("time", gorm.Expr(expr)).Error
}
