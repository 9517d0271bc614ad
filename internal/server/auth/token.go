package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// tokenBytes is the entropy of a session token value: 32 bytes = 256 bits.
const tokenBytes = 32

// GenerateTokenValue creates a new opaque session token value from a
// cryptographically secure random source.
func GenerateTokenValue() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random token: %w", err)
	}

	return base64.URLEncoding.EncodeToString(buf), nil
}
