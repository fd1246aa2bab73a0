package models

import (
	"time"
)

// EventRole is a user's delegated relationship to an event. The event owner
// is not stored as a member row; ownership comes from Event.UserID.
type EventRole string

const (
	RoleOwner     EventRole = "owner"
	RoleManager   EventRole = "manager"
	RoleModerator EventRole = "moderator"
	RoleMember    EventRole = "member"
)

type EventMember struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	EventID   uint      `json:"event_id" gorm:"not null;uniqueIndex:idx_event_user"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_event_user"`
	Role      EventRole `json:"role" gorm:"not null;default:member"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAssignable reports whether the role can be granted to a member. Owner is
// never assignable; it is derived from Event.UserID.
func (r EventRole) IsAssignable() bool {
	return r == RoleManager || r == RoleModerator || r == RoleMember
}

type AddMemberRequest struct {
	Email string `json:"email" validate:"required,email"`
	Role  string `json:"role" validate:"required"`
}

type EventMemberResponse struct {
	UserID   uint      `json:"user_id"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
	Role     EventRole `json:"role"`
}

// CanManageTimeline reports whether the role alone (ownership aside) grants
// timeline management.
func (r EventRole) CanManageTimeline() bool {
	return r == RoleOwner || r == RoleManager
}

// CanModerate reports whether the role may approve or remove photos.
func (r EventRole) CanModerate() bool {
	return r == RoleOwner || r == RoleManager || r == RoleModerator
}
