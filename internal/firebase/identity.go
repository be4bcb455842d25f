// File: internal/firebase/identity.go
package firebase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"authportal/internal/common"
	"authportal/internal/config"

	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// SignInResult is what the identity backend returns for a successful sign-in.
type SignInResult struct {
	LocalID             string
	Email               string
	DisplayName         string
	PhotoURL            string
	IDToken             string
	RefreshToken        string
	ExpiresAt           time.Time
	ProviderID          string
	ProviderAccessToken string
}

// IdPAssertion is a credential obtained from an external identity provider.
type IdPAssertion struct {
	ProviderID  string // e.g. "google.com"
	IDToken     string
	AccessToken string
	RequestURI  string
}

// Credential messages the backend uses for a rejected sign-in.
var invalidCredentialMessages = []string{
	"EMAIL_NOT_FOUND",
	"INVALID_PASSWORD",
	"INVALID_LOGIN_CREDENTIALS",
	"USER_DISABLED",
	"INVALID_EMAIL",
	"INVALID_IDP_RESPONSE",
}

// IdentityService signs users in through the Identity Toolkit relying-party API.
type IdentityService struct {
	svc    *identitytoolkit.Service
	logger *zap.Logger
}

// NewIdentityService creates the Identity Toolkit client keyed with the project's web API key.
// Extra options are appended, which is how tests point it at a local server.
func NewIdentityService(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...option.ClientOption) (*IdentityService, error) {
	logger = logger.Named("identity")
	base := []option.ClientOption{option.WithAPIKey(cfg.FirebaseAPIKey)}
	if cfg.FirebaseAPIKey == "" {
		logger.Warn("FIREBASE_API_KEY is not set; password and Google sign-in will be rejected")
		base = []option.ClientOption{option.WithoutAuthentication()}
	}
	all := append(base, opts...)
	svc, err := identitytoolkit.NewService(ctx, all...)
	if err != nil {
		return nil, fmt.Errorf("error creating identity toolkit client: %w", err)
	}
	return &IdentityService{svc: svc, logger: logger}, nil
}

// VerifyPassword signs in with email and password.
func (s *IdentityService) VerifyPassword(ctx context.Context, email, password string) (*SignInResult, error) {
	resp, err := s.svc.Relyingparty.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, s.mapError("verifyPassword", err)
	}

	s.logger.Debug("Password sign-in accepted", zap.String("local_id", resp.LocalId))
	return &SignInResult{
		LocalID:      resp.LocalId,
		Email:        resp.Email,
		DisplayName:  resp.DisplayName,
		PhotoURL:     resp.PhotoUrl,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    ExpiryFromIDToken(resp.IdToken, resp.ExpiresIn, time.Now()),
		ProviderID:   "password",
	}, nil
}

// VerifyAssertion exchanges a provider credential for a backend session.
func (s *IdentityService) VerifyAssertion(ctx context.Context, a IdPAssertion) (*SignInResult, error) {
	body := url.Values{"providerId": {a.ProviderID}}
	if a.IDToken != "" {
		body.Set("id_token", a.IDToken)
	}
	if a.AccessToken != "" {
		body.Set("access_token", a.AccessToken)
	}
	requestURI := a.RequestURI
	if requestURI == "" {
		requestURI = "http://localhost"
	}

	resp, err := s.svc.Relyingparty.VerifyAssertion(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyAssertionRequest{
		PostBody:            body.Encode(),
		RequestUri:          requestURI,
		ReturnSecureToken:   true,
		ReturnIdpCredential: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, s.mapError("verifyAssertion", err)
	}
	if resp.ErrorMessage != "" {
		return nil, common.ErrInvalidCredentials.WithMessage(resp.ErrorMessage)
	}

	displayName := resp.DisplayName
	if displayName == "" {
		displayName = resp.FullName
	}
	accessToken := resp.OauthAccessToken
	if accessToken == "" {
		accessToken = a.AccessToken
	}

	s.logger.Debug("Federated sign-in accepted", zap.String("local_id", resp.LocalId), zap.String("provider", resp.ProviderId))
	return &SignInResult{
		LocalID:             resp.LocalId,
		Email:               resp.Email,
		DisplayName:         displayName,
		PhotoURL:            resp.PhotoUrl,
		IDToken:             resp.IdToken,
		RefreshToken:        resp.RefreshToken,
		ExpiresAt:           ExpiryFromIDToken(resp.IdToken, resp.ExpiresIn, time.Now()),
		ProviderID:          a.ProviderID,
		ProviderAccessToken: accessToken,
	}, nil
}

// mapError turns a backend failure into the user-facing error taxonomy.
func (s *IdentityService) mapError(op string, err error) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		if isInvalidCredential(gErr) {
			s.logger.Info("Sign-in rejected", zap.String("op", op), zap.String("reason", gErr.Message))
			return common.ErrInvalidCredentials.Wrap(err)
		}
		s.logger.Warn("Identity backend error", zap.String("op", op), zap.Int("status", gErr.Code), zap.Error(err))
		if gErr.Code >= http.StatusInternalServerError {
			return common.ErrServiceUnavailable.Wrap(err)
		}
		return common.NewRemoteError(gErr.Code, gErr.Message).Wrap(err)
	}

	s.logger.Warn("Identity backend unreachable", zap.String("op", op), zap.Error(err))
	return common.ErrNetwork.Wrap(err)
}

func isInvalidCredential(gErr *googleapi.Error) bool {
	candidates := []string{gErr.Message}
	for _, item := range gErr.Errors {
		candidates = append(candidates, item.Message)
	}
	for _, c := range candidates {
		for _, m := range invalidCredentialMessages {
			// The backend sometimes appends detail: "TOO_MANY_ATTEMPTS_TRY_LATER : ..."
			if c == m || strings.HasPrefix(c, m+" ") {
				return true
			}
		}
	}
	return false
}
