// File: internal/shared/user.go
package shared

import "strings"

// AuthType records how a user signed in.
type AuthType string

const (
	AuthTypePassword AuthType = "password"
	AuthTypeGoogle   AuthType = "google"
)

// Federated reports whether the identity is owned by an external provider.
func (t AuthType) Federated() bool {
	return t != AuthTypePassword
}

// User is the signed-in user as the screens see it.
// ID and AuthType are fixed at sign-in; Avatar is never edited locally.
type User struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone,omitempty"`
	Avatar   string   `json:"avatar,omitempty"`
	AuthType AuthType `json:"authType"`
}

// Editable reports whether the profile may be changed from the profile screen.
func (u *User) Editable() bool {
	return u != nil && u.AuthType == AuthTypePassword
}

// DisplayName is the name shown on the home screen, falling back to the
// local part of the email.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if name := strings.TrimSpace(u.Name); name != "" {
		return name
	}
	if at := strings.IndexByte(u.Email, '@'); at > 0 {
		return u.Email[:at]
	}
	return u.Email
}

// UserPatch carries the mutable profile fields. Nil fields are left untouched.
type UserPatch struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Phone == nil
}

// Merge returns a copy of u with the patch applied. Identity fields are kept.
func (u User) Merge(p UserPatch) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	return u
}

// StringPtr is a small helper for building patches.
func StringPtr(s string) *string {
	return &s
}
