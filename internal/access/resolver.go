// Package access centralizes every "may this caller touch this event"
// decision. Handlers ask the resolver; services assume the check already
// happened. The resolver fails closed: any lookup fault is treated as "no
// relationship", so a flaky role table can only ever deny, never leak.
package access

import (
	"strings"

	"go.uber.org/zap"

	"github.com/kadraly/kadraly-backend/internal/models"
)

// Identity is the caller's credential bundle. UserID is zero for anonymous
// callers; AccessCode is whatever the client supplied, unnormalized.
type Identity struct {
	UserID     uint
	AccessCode string
}

// EventSource provides point lookups against the source of truth. The cache
// is deliberately not involved: authorization reads must never be satisfied
// by a stale overlay.
type EventSource interface {
	GetByID(id uint) (*models.Event, error)
}

// RoleSource resolves a user's delegated role on an event. A missing
// membership is ("", nil); errors mean the lookup itself failed.
type RoleSource interface {
	GetRole(eventID, userID uint) (models.EventRole, error)
}

// UserSource is only consulted for the platform super-admin flag.
type UserSource interface {
	GetByID(id uint) (*models.User, error)
}

type Resolver struct {
	events  EventSource
	members RoleSource
	users   UserSource
	log     *zap.Logger
}

func NewResolver(events EventSource, members RoleSource, users UserSource, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{events: events, members: members, users: users, log: log}
}

// CanAccessEvent decides read access to an event and everything scoped under
// it (photos, timeline, stats).
func (r *Resolver) CanAccessEvent(eventID uint, id Identity) bool {
	event, err := r.events.GetByID(eventID)
	if err != nil {
		return false
	}

	if event.IsPublic {
		return true
	}

	if id.UserID != 0 && id.UserID == event.UserID {
		return true
	}

	if codeMatches(id.AccessCode, event.AccessCode) {
		return true
	}

	if id.UserID != 0 {
		if role, ok := r.lookupRole(eventID, id.UserID); ok && role != "" {
			return true
		}
	}

	return false
}

// CanManageTimeline gates create/update/delete/adjust on timeline entries:
// event owner, platform admin, or a role with timeline capability.
func (r *Resolver) CanManageTimeline(eventID uint, id Identity) bool {
	if id.UserID == 0 {
		return false
	}
	if r.isAdmin(id.UserID) {
		return true
	}

	event, err := r.events.GetByID(eventID)
	if err != nil {
		return false
	}
	if event.UserID == id.UserID {
		return true
	}

	role, ok := r.lookupRole(eventID, id.UserID)
	return ok && role.CanManageTimeline()
}

// CanModerate gates photo approval and admin-path photo deletion.
func (r *Resolver) CanModerate(eventID uint, id Identity) bool {
	if id.UserID == 0 {
		return false
	}
	if r.isAdmin(id.UserID) {
		return true
	}

	event, err := r.events.GetByID(eventID)
	if err != nil {
		return false
	}
	if event.UserID == id.UserID {
		return true
	}

	role, ok := r.lookupRole(eventID, id.UserID)
	return ok && role.CanModerate()
}

// IsOwner reports plain ownership, used by the settings and billing paths
// that no delegated role may touch.
func (r *Resolver) IsOwner(eventID, userID uint) bool {
	if userID == 0 {
		return false
	}
	event, err := r.events.GetByID(eventID)
	if err != nil {
		return false
	}
	return event.UserID == userID
}

func (r *Resolver) lookupRole(eventID, userID uint) (models.EventRole, bool) {
	role, err := r.members.GetRole(eventID, userID)
	if err != nil {
		// Fail closed: a broken role table means no role.
		r.log.Warn("role lookup failed, denying",
			zap.Uint("event_id", eventID), zap.Uint("user_id", userID), zap.Error(err))
		return "", false
	}
	return role, true
}

func (r *Resolver) isAdmin(userID uint) bool {
	user, err := r.users.GetByID(userID)
	if err != nil {
		return false
	}
	return user.IsAdmin
}

// codeMatches compares access codes case-insensitively with surrounding
// whitespace trimmed. An empty supplied code never grants access, even if the
// stored code is itself empty due to a data bug.
func codeMatches(supplied, stored string) bool {
	supplied = strings.TrimSpace(supplied)
	stored = strings.TrimSpace(stored)
	if supplied == "" || stored == "" {
		return false
	}
	return strings.EqualFold(supplied, stored)
}
