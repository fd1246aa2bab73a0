package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// Ambiguous characters (0/O, 1/I/L) are excluded because access codes are
// read off phone screens and printed QR cards.
const codeCharset = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

const AccessCodeLength = 6

// GenerateAccessCode returns a short shareable event code.
func GenerateAccessCode() string {
	return randomString(AccessCodeLength, codeCharset)
}

func randomString(length int, charset string) string {
	var b strings.Builder
	b.Grow(length)
	max := big.NewInt(int64(len(charset)))
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken;
			// there is no useful recovery at this call depth.
			panic(err)
		}
		b.WriteByte(charset[n.Int64()])
	}
	return b.String()
}

// GenerateToken returns a longer token for password-reset links.
func GenerateToken(length int) string {
	return randomString(length, "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")
}
