package models

import (
	"time"
)

type Event struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	UserID            uint      `json:"user_id" gorm:"not null;index"`
	Title             string    `json:"title" gorm:"not null"`
	Description       string    `json:"description"`
	Location          string    `json:"location"`
	AccessCode        string    `json:"access_code" gorm:"uniqueIndex;not null"`
	IsPublic          bool      `json:"is_public" gorm:"default:false"`
	AllowGuestUploads bool      `json:"allow_guest_uploads" gorm:"default:true"`
	RequireApproval   bool      `json:"require_approval" gorm:"default:false"`
	ChatEnabled       bool      `json:"chat_enabled" gorm:"default:false"`
	ExpiresAt         time.Time `json:"expires_at"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type EventRequest struct {
	Title             string `json:"title" validate:"required"`
	Description       string `json:"description"`
	Location          string `json:"location"`
	IsPublic          bool   `json:"is_public"`
	AllowGuestUploads bool   `json:"allow_guest_uploads"`
	RequireApproval   bool   `json:"require_approval"`
	ChatEnabled       bool   `json:"chat_enabled"`
}

type UpdateEventRequest struct {
	Title             *string `json:"title"`
	Description       *string `json:"description"`
	Location          *string `json:"location"`
	IsPublic          *bool   `json:"is_public"`
	AllowGuestUploads *bool   `json:"allow_guest_uploads"`
	RequireApproval   *bool   `json:"require_approval"`
	ChatEnabled       *bool   `json:"chat_enabled"`
}

type EventResponse struct {
	ID                uint        `json:"id"`
	Title             string      `json:"title"`
	Description       string      `json:"description"`
	Location          string      `json:"location"`
	AccessCode        string      `json:"access_code,omitempty"`
	IsPublic          bool        `json:"is_public"`
	AllowGuestUploads bool        `json:"allow_guest_uploads"`
	RequireApproval   bool        `json:"require_approval"`
	ChatEnabled       bool        `json:"chat_enabled"`
	Stats             *EventStats `json:"stats,omitempty"`
	ExpiresAt         time.Time   `json:"expires_at"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// PublicView strips the access code so guest-facing endpoints can reuse the
// same response shape.
func (e *Event) PublicView() EventResponse {
	resp := e.OwnerView()
	resp.AccessCode = ""
	return resp
}

func (e *Event) OwnerView() EventResponse {
	return EventResponse{
		ID:                e.ID,
		Title:             e.Title,
		Description:       e.Description,
		Location:          e.Location,
		AccessCode:        e.AccessCode,
		IsPublic:          e.IsPublic,
		AllowGuestUploads: e.AllowGuestUploads,
		RequireApproval:   e.RequireApproval,
		ChatEnabled:       e.ChatEnabled,
		ExpiresAt:         e.ExpiresAt,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}
