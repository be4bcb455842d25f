// File: internal/firebase/token.go
package firebase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"authportal/internal/common"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// SecureTokenURL is the token endpoint that trades a refresh token for a new ID token.
const SecureTokenURL = "https://securetoken.googleapis.com/v1/token"

// ExpiryFromIDToken reads exp from an ID token without checking its signature.
// When the token has no readable exp, expiresIn seconds from now is used.
func ExpiryFromIDToken(idToken string, expiresIn int64, now time.Time) time.Time {
	if idToken != "" {
		claims := jwt.RegisteredClaims{}
		if _, _, err := jwt.NewParser().ParseUnverified(idToken, &claims); err == nil && claims.ExpiresAt != nil {
			return claims.ExpiresAt.Time
		}
	}
	if expiresIn > 0 {
		return now.Add(time.Duration(expiresIn) * time.Second)
	}
	return time.Time{}
}

// RefreshedToken is a renewed credential from the secure-token endpoint.
type RefreshedToken struct {
	IDToken      string
	RefreshToken string
	ExpiresAt    time.Time
}

// TokenRefresher renews ID tokens with the OAuth2 refresh-token grant.
type TokenRefresher struct {
	oauthCfg   *oauth2.Config
	httpClient *http.Client
	logger     *zap.Logger
}

// NewTokenRefresher builds a refresher for the given API key. An empty tokenURL
// uses SecureTokenURL; a nil client uses http.DefaultClient.
func NewTokenRefresher(apiKey, tokenURL string, httpClient *http.Client, logger *zap.Logger) *TokenRefresher {
	if tokenURL == "" {
		tokenURL = SecureTokenURL
	}
	u, err := url.Parse(tokenURL)
	if err == nil {
		q := u.Query()
		q.Set("key", apiKey)
		u.RawQuery = q.Encode()
		tokenURL = u.String()
	}
	return &TokenRefresher{
		oauthCfg: &oauth2.Config{
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: httpClient,
		logger:     logger.Named("securetoken"),
	}
}

// Refresh exchanges refreshToken for a new ID token. A rejected refresh token
// yields common.ErrInvalidCredentials; transport failures yield common.ErrNetwork.
func (r *TokenRefresher) Refresh(ctx context.Context, refreshToken string) (*RefreshedToken, error) {
	if refreshToken == "" {
		return nil, common.ErrInvalidCredentials.WithMessage("No refresh token is stored for this session.")
	}
	if r.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, r.httpClient)
	}

	tok, err := r.oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) && rErr.Response != nil && rErr.Response.StatusCode < http.StatusInternalServerError {
			r.logger.Info("Refresh token rejected", zap.Int("status", rErr.Response.StatusCode))
			return nil, common.ErrInvalidCredentials.WithMessage("Your session has expired. Please sign in again.").Wrap(err)
		}
		r.logger.Warn("Token refresh failed", zap.Error(err))
		return nil, common.ErrNetwork.Wrap(err)
	}

	idToken, _ := tok.Extra("id_token").(string)
	if idToken == "" {
		// securetoken also returns the ID token as access_token
		idToken = tok.AccessToken
	}
	if idToken == "" {
		return nil, fmt.Errorf("token endpoint returned no id_token")
	}

	expiresAt := ExpiryFromIDToken(idToken, 0, time.Now())
	if expiresAt.IsZero() {
		expiresAt = tok.Expiry
	}
	next := tok.RefreshToken
	if next == "" {
		next = refreshToken
	}
	return &RefreshedToken{IDToken: idToken, RefreshToken: next, ExpiresAt: expiresAt}, nil
}
