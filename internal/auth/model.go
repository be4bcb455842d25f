// File: internal/auth/model.go
package auth

import (
	"authportal/internal/form"
	"authportal/internal/shared"
	"authportal/internal/validation"
)

// SignInForm is the email/password sign-in form.
type SignInForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

var signInMessages = validation.Messages{
	"email": {
		"required": "Email is required",
		"email":    "Enter an email!",
	},
	"password": {
		"required": "Password is required",
	},
}

// SignInSchema validates SignInForm.
var SignInSchema = validation.NewSchema[SignInForm](signInMessages)

// FederatedProfile is the provider's view of the user.
type FederatedProfile struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// FederatedCredential is what a provider hands back after consent.
type FederatedCredential struct {
	Provider    shared.AuthType
	ProviderID  string // identity backend provider ID, e.g. "google.com"
	IDToken     string
	AccessToken string
	RequestURI  string
	Profile     FederatedProfile
}

// SignInState is the sign-in screen as rendered.
type SignInState struct {
	Form             form.Snapshot[SignInForm] `json:"form"`
	GoogleSubmitting bool                      `json:"googleSubmitting"`
}

// SessionResponse is the signed-in user as returned by the host API.
type SessionResponse struct {
	User     *shared.User `json:"user"`
	Editable bool         `json:"editable"`
}
