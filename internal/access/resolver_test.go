package access

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kadraly/kadraly-backend/internal/models"
)

var errNotFound = errors.New("record not found")

type fakeEvents map[uint]*models.Event

func (f fakeEvents) GetByID(id uint) (*models.Event, error) {
	if e, ok := f[id]; ok {
		return e, nil
	}
	return nil, errNotFound
}

type fakeRoles struct {
	roles map[[2]uint]models.EventRole
	err   error
}

func (f *fakeRoles) GetRole(eventID, userID uint) (models.EventRole, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.roles[[2]uint{eventID, userID}], nil
}

type fakeUsers map[uint]*models.User

func (f fakeUsers) GetByID(id uint) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, errNotFound
}

func newTestResolver(events fakeEvents, roles *fakeRoles, users fakeUsers) *Resolver {
	if roles == nil {
		roles = &fakeRoles{}
	}
	if users == nil {
		users = fakeUsers{}
	}
	return NewResolver(events, roles, users, nil)
}

func TestCanAccessEvent(t *testing.T) {
	events := fakeEvents{
		1: {ID: 1, UserID: 10, AccessCode: "AB12CD", IsPublic: false},
		2: {ID: 2, UserID: 10, AccessCode: "ZZTOP9", IsPublic: true},
		3: {ID: 3, UserID: 10, AccessCode: "", IsPublic: false},
	}

	tests := []struct {
		name    string
		eventID uint
		id      Identity
		want    bool
	}{
		{"unknown event fails closed", 99, Identity{UserID: 10}, false},
		{"public event, anonymous", 2, Identity{}, true},
		{"public event, wrong code still allowed", 2, Identity{AccessCode: "nope"}, true},
		{"owner", 1, Identity{UserID: 10}, true},
		{"stranger", 1, Identity{UserID: 11}, false},
		{"exact code", 1, Identity{AccessCode: "AB12CD"}, true},
		{"code with case and whitespace", 1, Identity{AccessCode: "  ab12cd "}, true},
		{"wrong code", 1, Identity{AccessCode: "AB12CE"}, false},
		{"empty code", 1, Identity{AccessCode: ""}, false},
		{"whitespace-only code", 1, Identity{AccessCode: "   "}, false},
		{"empty code vs empty stored code", 3, Identity{AccessCode: ""}, false},
		{"whitespace code vs empty stored code", 3, Identity{AccessCode: " "}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestResolver(events, nil, nil)
			assert.Equal(t, tt.want, r.CanAccessEvent(tt.eventID, tt.id))
		})
	}
}

func TestCanAccessEventViaRole(t *testing.T) {
	events := fakeEvents{1: {ID: 1, UserID: 10, AccessCode: "AB12CD"}}
	roles := &fakeRoles{roles: map[[2]uint]models.EventRole{
		{1, 20}: models.RoleMember,
	}}

	r := newTestResolver(events, roles, nil)
	assert.True(t, r.CanAccessEvent(1, Identity{UserID: 20}))
	assert.False(t, r.CanAccessEvent(1, Identity{UserID: 21}))
}

func TestRoleLookupFailureDenies(t *testing.T) {
	events := fakeEvents{1: {ID: 1, UserID: 10, AccessCode: "AB12CD"}}
	roles := &fakeRoles{err: errors.New("role table unavailable")}

	r := newTestResolver(events, roles, nil)
	// The fault must surface as a plain deny, never an error or a panic.
	assert.False(t, r.CanAccessEvent(1, Identity{UserID: 20}))
	assert.False(t, r.CanManageTimeline(1, Identity{UserID: 20}))
	assert.False(t, r.CanModerate(1, Identity{UserID: 20}))
}

func TestCanManageTimeline(t *testing.T) {
	events := fakeEvents{1: {ID: 1, UserID: 10}}
	roles := &fakeRoles{roles: map[[2]uint]models.EventRole{
		{1, 20}: models.RoleManager,
		{1, 21}: models.RoleModerator,
		{1, 22}: models.RoleMember,
	}}
	users := fakeUsers{
		30: {ID: 30, IsAdmin: true},
		20: {ID: 20}, 21: {ID: 21}, 22: {ID: 22}, 10: {ID: 10},
	}

	r := newTestResolver(events, roles, users)

	assert.True(t, r.CanManageTimeline(1, Identity{UserID: 10}), "owner")
	assert.True(t, r.CanManageTimeline(1, Identity{UserID: 20}), "manager")
	assert.True(t, r.CanManageTimeline(1, Identity{UserID: 30}), "platform admin")
	assert.False(t, r.CanManageTimeline(1, Identity{UserID: 21}), "moderator may not")
	assert.False(t, r.CanManageTimeline(1, Identity{UserID: 22}), "member may not")
	assert.False(t, r.CanManageTimeline(1, Identity{}), "anonymous")
	assert.False(t, r.CanManageTimeline(1, Identity{AccessCode: "AB12CD"}), "code grants read, not manage")
}

func TestCanModerate(t *testing.T) {
	events := fakeEvents{1: {ID: 1, UserID: 10}}
	roles := &fakeRoles{roles: map[[2]uint]models.EventRole{
		{1, 21}: models.RoleModerator,
		{1, 22}: models.RoleMember,
	}}
	users := fakeUsers{10: {ID: 10}, 21: {ID: 21}, 22: {ID: 22}}

	r := newTestResolver(events, roles, users)

	assert.True(t, r.CanModerate(1, Identity{UserID: 10}), "owner")
	assert.True(t, r.CanModerate(1, Identity{UserID: 21}), "moderator")
	assert.False(t, r.CanModerate(1, Identity{UserID: 22}), "member")
}

func TestIsOwner(t *testing.T) {
	events := fakeEvents{1: {ID: 1, UserID: 10}}
	r := newTestResolver(events, nil, nil)

	assert.True(t, r.IsOwner(1, 10))
	assert.False(t, r.IsOwner(1, 11))
	assert.False(t, r.IsOwner(1, 0))
	assert.False(t, r.IsOwner(9, 10))
}
