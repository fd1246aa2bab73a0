package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateAccessCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := GenerateAccessCode()
		assert.Len(t, code, AccessCodeLength)
		for _, ch := range code {
			assert.Contains(t, codeCharset, string(ch))
		}
		seen[code] = true
	}
	// 100 draws from a 31^6 space colliding down to a handful would mean the
	// generator is broken.
	assert.Greater(t, len(seen), 90)
}

func TestGenerateToken(t *testing.T) {
	token := GenerateToken(32)
	assert.Len(t, token, 32)
	assert.Equal(t, token, strings.TrimSpace(token))
	assert.NotEqual(t, token, GenerateToken(32))
}
