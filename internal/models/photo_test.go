package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhotoIsGuestUpload(t *testing.T) {
	guest := Photo{GuestName: "Aunt Carol"}
	assert.True(t, guest.IsGuestUpload())

	member := Photo{UserID: 42}
	assert.False(t, member.IsGuestUpload())
}

func TestPhotoObjectKey(t *testing.T) {
	remote := Photo{FilePath: StorageKeyPrefix + "events/1/a.jpg"}
	key, ok := remote.ObjectKey()
	assert.True(t, ok)
	assert.Equal(t, "events/1/a.jpg", key)

	legacy := Photo{FilePath: "/var/uploads/a.jpg"}
	_, ok = legacy.ObjectKey()
	assert.False(t, ok)
}
