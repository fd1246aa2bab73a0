package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleCapabilities(t *testing.T) {
	tests := []struct {
		role           EventRole
		manageTimeline bool
		moderate       bool
		assignable     bool
	}{
		{RoleOwner, true, true, false},
		{RoleManager, true, true, true},
		{RoleModerator, false, true, true},
		{RoleMember, false, false, true},
		{EventRole(""), false, false, false},
		{EventRole("stranger"), false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.manageTimeline, tt.role.CanManageTimeline())
			assert.Equal(t, tt.moderate, tt.role.CanModerate())
			assert.Equal(t, tt.assignable, tt.role.IsAssignable())
		})
	}
}
