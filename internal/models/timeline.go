package models

import (
	"time"
)

type TimelineEntry struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	EventID     uint      `json:"event_id" gorm:"not null;index"`
	Time        time.Time `json:"time" gorm:"not null"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type TimelineEntryRequest struct {
	Time        time.Time `json:"time" validate:"required"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
}

type UpdateTimelineEntryRequest struct {
	Time        *time.Time `json:"time"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
}

// AdjustTimelineRequest shifts every entry of an event by the given offset,
// e.g. when the ceremony starts half an hour late. A zero offset is a valid
// no-op.
type AdjustTimelineRequest struct {
	OffsetMinutes int `json:"offset_minutes"`
}
