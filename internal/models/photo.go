package models

import (
	"strings"
	"time"
)

// StorageKeyPrefix marks file paths that live in object storage rather than
// on local disk. Older rows may still carry bare local paths.
const StorageKeyPrefix = "s3:"

type Photo struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	EventID    uint      `json:"event_id" gorm:"not null;index"`
	UserID     uint      `json:"user_id"`
	GuestName  string    `json:"guest_name"`
	GuestEmail string    `json:"guest_email"`
	FileName   string    `json:"file_name" gorm:"not null"`
	FileSize   int64     `json:"file_size" gorm:"not null"`
	MimeType   string    `json:"mime_type" gorm:"not null"`
	FilePath   string    `json:"file_path" gorm:"not null"`
	IsApproved bool      `json:"is_approved" gorm:"default:false;index"`
	UploadedAt time.Time `json:"uploaded_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// IsGuestUpload reports whether the photo came in through an access code
// rather than an authenticated account.
func (p *Photo) IsGuestUpload() bool {
	return p.UserID == 0
}

// ObjectKey returns the object-storage key and whether the photo is stored
// remotely at all.
func (p *Photo) ObjectKey() (string, bool) {
	if strings.HasPrefix(p.FilePath, StorageKeyPrefix) {
		return strings.TrimPrefix(p.FilePath, StorageKeyPrefix), true
	}
	return "", false
}

type PhotoResponse struct {
	ID           uint      `json:"id"`
	EventID      uint      `json:"event_id"`
	UserID       uint      `json:"user_id,omitempty"`
	GuestName    string    `json:"guest_name,omitempty"`
	FileName     string    `json:"file_name"`
	FileSize     int64     `json:"file_size"`
	MimeType     string    `json:"mime_type"`
	IsApproved   bool      `json:"is_approved"`
	URL          string    `json:"url,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	UploadedAt   time.Time `json:"uploaded_at"`
}
