// File: internal/auth/interfaces.go
package auth

import (
	"context"

	"authportal/internal/firebase"
	"authportal/internal/shared"
)

// IdentityClient signs users in at the identity backend.
// Implemented by firebase.IdentityService.
type IdentityClient interface {
	VerifyPassword(ctx context.Context, email, password string) (*firebase.SignInResult, error)
	VerifyAssertion(ctx context.Context, assertion firebase.IdPAssertion) (*firebase.SignInResult, error)
}

// TokenRefresher renews an expiring ID token.
// Implemented by firebase.TokenRefresher.
type TokenRefresher interface {
	Refresh(ctx context.Context, refreshToken string) (*firebase.RefreshedToken, error)
}

// TokenVerifier checks an ID token's signature and revocation state.
// Implemented by firebase.FirebaseService.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (uid string, err error)
}

// FederatedProvider runs an external provider's consent flow.
type FederatedProvider interface {
	Name() shared.AuthType
	// Authenticate blocks until the user completes or abandons the flow.
	Authenticate(ctx context.Context) (*FederatedCredential, error)
	// Revoke invalidates the provider access token.
	Revoke(ctx context.Context, accessToken string) error
}
