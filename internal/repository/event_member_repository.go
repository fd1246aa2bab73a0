package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/kadraly/kadraly-backend/internal/models"
)

type EventMemberRepository struct {
	db *gorm.DB
}

func NewEventMemberRepository(db *gorm.DB) *EventMemberRepository {
	return &EventMemberRepository{db: db}
}

// GetRole returns the empty role without error when the user holds no
// membership on the event. The access resolver depends on that distinction:
// "no row" is a normal deny, an error is a failed lookup.
func (r *EventMemberRepository) GetRole(eventID, userID uint) (models.EventRole, error) {
	var member models.EventMember
	err := r.db.Where("event_id = ? AND user_id = ?", eventID, userID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return member.Role, nil
}

func (r *EventMemberRepository) Upsert(member *models.EventMember) error {
	var existing models.EventMember
	err := r.db.Where("event_id = ? AND user_id = ?", member.EventID, member.UserID).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(member).Error
	}
	if err != nil {
		return err
	}
	existing.Role = member.Role
	return r.db.Save(&existing).Error
}

func (r *EventMemberRepository) GetByEventID(eventID uint) ([]models.EventMember, error) {
	var members []models.EventMember
	err := r.db.Where("event_id = ?", eventID).Find(&members).Error
	return members, err
}

func (r *EventMemberRepository) Delete(eventID, userID uint) error {
	return r.db.Where("event_id = ? AND user_id = ?", eventID, userID).
		Delete(&models.EventMember{}).Error
}

func (r *EventMemberRepository) DeleteByEventID(eventID uint) error {
	return r.db.Where("event_id = ?", eventID).Delete(&models.EventMember{}).Error
}
