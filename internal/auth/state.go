package auth

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateState generates the CSRF state nonce for a login attempt.
// 32 random bytes, base64url without padding.
func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
