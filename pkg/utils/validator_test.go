package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kadraly/kadraly-backend/internal/models"
)

func TestTimelineOffsetAcceptsZeroAndNegative(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Struct(models.AdjustTimelineRequest{OffsetMinutes: 0}),
		"a zero offset is a valid no-op")
	assert.NoError(t, v.Struct(models.AdjustTimelineRequest{OffsetMinutes: -30}))
	assert.NoError(t, v.Struct(models.AdjustTimelineRequest{OffsetMinutes: 45}))
}

func TestSupportedImageRule(t *testing.T) {
	v := NewValidator()

	type upload struct {
		MimeType string `validate:"supported_image"`
	}

	assert.NoError(t, v.Struct(upload{MimeType: "image/png"}))
	assert.Error(t, v.Struct(upload{MimeType: "application/pdf"}))
}
