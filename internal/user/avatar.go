package user

import (
	"net/url"
	"strings"

	"authportal/internal/shared"
)

// DefaultAvatarPlaceholderURL renders an initial on a colored disc.
const DefaultAvatarPlaceholderURL = "https://ui-avatars.com/api/"

const avatarBackground = "B269FA"

// AvatarURL returns the user's own avatar or a placeholder built from the name.
func AvatarURL(placeholderBase string, u *shared.User) string {
	if u != nil && u.Avatar != "" {
		return u.Avatar
	}
	if placeholderBase == "" {
		placeholderBase = DefaultAvatarPlaceholderURL
	}
	name := ""
	if u != nil {
		name = u.DisplayName()
	}
	q := url.Values{}
	q.Set("name", name)
	q.Set("rounded", "true")
	q.Set("length", "1")
	q.Set("background", avatarBackground)

	sep := "?"
	if strings.Contains(placeholderBase, "?") {
		sep = "&"
	}
	return placeholderBase + sep + q.Encode()
}
