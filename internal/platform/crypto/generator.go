// File: internal/platform/crypto/generator.go
package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// stateBytes is the entropy behind an OAuth state value.
const stateBytes = 32

// GenerateSecureRandomString returns n random bytes encoded as unpadded base64url,
// safe to place in a query string without escaping.
func GenerateSecureRandomString(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("random string length must be positive, got %d", n)
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// NewOAuthState generates the anti-CSRF state for one federated sign-in attempt.
func NewOAuthState() (string, error) {
	state, err := GenerateSecureRandomString(stateBytes)
	if err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return state, nil
}
