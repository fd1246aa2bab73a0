package models

import (
	"time"
)

// EventStats is derived data: it is always recomputable from the photos table
// and only ever lives in the cache. The optimistic patch methods below and the
// full recompute must agree, so the pending formula lives in exactly one
// place (Normalize).
type EventStats struct {
	TotalPhotos      int64      `json:"total_photos"`
	ApprovedPhotos   int64      `json:"approved_photos"`
	PendingApprovals int64      `json:"pending_approvals"`
	LastUploadAt     *time.Time `json:"last_upload_at,omitempty"`
}

// Normalize derives PendingApprovals from the two counters.
func (s *EventStats) Normalize() {
	s.PendingApprovals = s.TotalPhotos - s.ApprovedPhotos
	if s.PendingApprovals < 0 {
		s.PendingApprovals = 0
	}
}

// ApplyUpload patches the stats for a single new photo.
func (s *EventStats) ApplyUpload(approved bool, at time.Time) {
	s.TotalPhotos++
	if approved {
		s.ApprovedPhotos++
	}
	if s.LastUploadAt == nil || at.After(*s.LastUploadAt) {
		t := at
		s.LastUploadAt = &t
	}
	s.Normalize()
}

// ApplyApproval patches the stats for a single photo moving to approved.
func (s *EventStats) ApplyApproval() {
	s.ApprovedPhotos++
	if s.ApprovedPhotos > s.TotalPhotos {
		s.ApprovedPhotos = s.TotalPhotos
	}
	s.Normalize()
}

// ApplyDeletion patches the stats for a single removed photo.
func (s *EventStats) ApplyDeletion(wasApproved bool) {
	if s.TotalPhotos > 0 {
		s.TotalPhotos--
	}
	if wasApproved && s.ApprovedPhotos > 0 {
		s.ApprovedPhotos--
	}
	if s.ApprovedPhotos > s.TotalPhotos {
		s.ApprovedPhotos = s.TotalPhotos
	}
	s.Normalize()
}
