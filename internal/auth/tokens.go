package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateOpaqueToken returns a 64-hex-char random token for email
// verification and password reset links
func GenerateOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
