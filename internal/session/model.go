// File: internal/session/model.go
package session

import (
	"time"

	"authportal/internal/shared"
)

// Credential is the proof of authentication held with the session.
// Only the auth service and the API token source look inside it.
type Credential struct {
	IDToken             string          `json:"idToken"`
	RefreshToken        string          `json:"refreshToken,omitempty"`
	ExpiresAt           time.Time       `json:"expiresAt"`
	Provider            shared.AuthType `json:"provider"`
	ProviderAccessToken string          `json:"providerAccessToken,omitempty"`
}

// ExpiresWithin reports whether the ID token is expired or expires within d of now.
// A zero ExpiresAt is treated as never expiring.
func (c Credential) ExpiresWithin(now time.Time, d time.Duration) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(d).Before(c.ExpiresAt)
}

// Session is the authenticated state of the application.
type Session struct {
	User       shared.User `json:"user"`
	Credential Credential  `json:"credential"`
}

// Clone returns a copy the caller may keep or modify.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
