// File: internal/auth/service.go
package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"authportal/internal/common"
	"authportal/internal/firebase"
	"authportal/internal/session"
	"authportal/internal/shared"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// DefaultFederatedTimeout bounds a whole federated sign-in, consent screen included.
const DefaultFederatedTimeout = 5 * time.Minute

// tokenSourceLeeway is how early the API token source refreshes an ID token.
const tokenSourceLeeway = time.Minute

// Service owns the session: it creates it on sign-in, keeps its credential
// fresh and destroys it on sign-out.
type Service struct {
	store            *session.Store
	identity         IdentityClient
	provider         FederatedProvider
	refresher        TokenRefresher
	verifier         TokenVerifier
	federatedTimeout time.Duration
	logger           *zap.Logger
	now              func() time.Time

	refreshMu sync.Mutex
}

// NewService creates the auth service. provider and verifier may be nil when
// federated sign-in or token verification is not configured.
func NewService(
	store *session.Store,
	identity IdentityClient,
	provider FederatedProvider,
	refresher TokenRefresher,
	verifier TokenVerifier,
	federatedTimeout time.Duration,
	logger *zap.Logger,
) *Service {
	if federatedTimeout <= 0 {
		federatedTimeout = DefaultFederatedTimeout
	}
	return &Service{
		store:            store,
		identity:         identity,
		provider:         provider,
		refresher:        refresher,
		verifier:         verifier,
		federatedTimeout: federatedTimeout,
		logger:           logger.Named("AuthService"),
		now:              time.Now,
	}
}

// Session exposes the read-only session view.
func (s *Service) Session() session.Reader {
	return s.store
}

// SignInWithPassword signs in with email and password and starts the session.
func (s *Service) SignInWithPassword(ctx context.Context, email, password string) (*shared.User, error) {
	email = strings.TrimSpace(email)
	res, err := s.identity.VerifyPassword(ctx, email, password)
	if err != nil {
		return nil, err
	}

	// The session keeps the address as typed, not the provider's normalized form.
	user := shared.User{
		ID:       res.LocalID,
		Name:     res.DisplayName,
		Email:    email,
		Avatar:   res.PhotoURL,
		AuthType: shared.AuthTypePassword,
	}
	s.startSession(ctx, user, session.Credential{
		IDToken:      res.IDToken,
		RefreshToken: res.RefreshToken,
		ExpiresAt:    res.ExpiresAt,
		Provider:     shared.AuthTypePassword,
	})

	s.logger.Info("Password sign-in successful", zap.String("userID", user.ID))
	return &user, nil
}

// SignInWithFederatedProvider runs the provider's consent flow and starts the session.
func (s *Service) SignInWithFederatedProvider(ctx context.Context) (*shared.User, error) {
	if s.provider == nil {
		return nil, common.ErrServiceUnavailable.WithMessage("Google sign-in is not configured.")
	}

	ctx, cancel := context.WithTimeout(ctx, s.federatedTimeout)
	defer cancel()

	cred, err := s.provider.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	res, err := s.identity.VerifyAssertion(ctx, firebase.IdPAssertion{
		ProviderID:  cred.ProviderID,
		IDToken:     cred.IDToken,
		AccessToken: cred.AccessToken,
		RequestURI:  cred.RequestURI,
	})
	if err != nil {
		return nil, err
	}

	user := shared.User{
		ID:       res.LocalID,
		Name:     firstNonEmpty(cred.Profile.Name, res.DisplayName),
		Email:    firstNonEmpty(cred.Profile.Email, res.Email),
		Avatar:   firstNonEmpty(cred.Profile.Picture, res.PhotoURL),
		AuthType: cred.Provider,
	}
	s.startSession(ctx, user, session.Credential{
		IDToken:             res.IDToken,
		RefreshToken:        res.RefreshToken,
		ExpiresAt:           res.ExpiresAt,
		Provider:            cred.Provider,
		ProviderAccessToken: firstNonEmpty(res.ProviderAccessToken, cred.AccessToken),
	})

	s.logger.Info("Federated sign-in successful", zap.String("userID", user.ID), zap.String("provider", string(cred.Provider)))
	return &user, nil
}

func (s *Service) startSession(ctx context.Context, user shared.User, cred session.Credential) {
	if err := s.store.Set(ctx, session.Session{User: user, Credential: cred}); err != nil {
		s.logger.Error("Signed in but failed to persist the session", zap.Error(err))
	}
}

// SignOut always ends the local session. For federated sessions it also
// revokes the provider token; a failed revocation is reported after the
// local session is gone.
func (s *Service) SignOut(ctx context.Context) error {
	current := s.store.Current()
	if err := s.store.Clear(ctx); err != nil {
		s.logger.Error("Failed to delete persisted session on sign-out", zap.Error(err))
	}
	if current == nil {
		return nil
	}
	s.logger.Info("Signed out", zap.String("userID", current.User.ID))

	cred := current.Credential
	if !cred.Provider.Federated() || cred.ProviderAccessToken == "" || s.provider == nil {
		return nil
	}
	if err := s.provider.Revoke(ctx, cred.ProviderAccessToken); err != nil {
		s.logger.Warn("Failed to revoke provider token", zap.Error(err))
		if _, ok := common.IsAPIError(err); ok {
			return err
		}
		return common.ErrNetwork.Wrap(err)
	}
	return nil
}

// UpdateUser merges patch into the session user. It never fails; a failed
// write is logged and the in-memory session keeps the change.
func (s *Service) UpdateUser(ctx context.Context, patch shared.UserPatch) {
	if patch.Empty() {
		return
	}
	changed, err := s.store.Update(ctx, func(sess *session.Session) bool {
		merged := sess.User.Merge(patch)
		if merged == sess.User {
			return false
		}
		sess.User = merged
		return true
	})
	if err != nil {
		s.logger.Error("Failed to persist updated user", zap.Error(err))
		return
	}
	if changed {
		s.logger.Debug("Session user updated")
	}
}

// CurrentUser returns the signed-in user, or nil.
func (s *Service) CurrentUser() *shared.User {
	return s.store.CurrentUser()
}

// Restore loads the persisted session at startup and checks its credential.
// A credential the backend rejects ends the session; an unreachable backend
// keeps it so the app can start offline.
func (s *Service) Restore(ctx context.Context) error {
	if err := s.store.Load(ctx); err != nil {
		return err
	}
	current := s.store.Current()
	if current == nil {
		s.logger.Debug("No persisted session")
		return nil
	}

	if current.Credential.ExpiresWithin(s.now(), 0) {
		if _, err := s.RefreshCredential(ctx, 0); err != nil {
			if errors.Is(err, common.ErrInvalidCredentials) {
				s.logger.Info("Persisted session expired and could not be renewed")
				return nil
			}
			s.logger.Warn("Could not renew persisted session, keeping it", zap.Error(err))
			return nil
		}
		current = s.store.Current()
		if current == nil {
			return nil
		}
	}

	if s.verifier != nil {
		if _, err := s.verifier.VerifyIDToken(ctx, current.Credential.IDToken); err != nil {
			if errors.Is(err, common.ErrNetwork) {
				s.logger.Warn("Could not verify persisted session, keeping it", zap.Error(err))
				return nil
			}
			s.logger.Info("Persisted session rejected", zap.Error(err))
			if clearErr := s.store.Clear(ctx); clearErr != nil {
				s.logger.Error("Failed to delete rejected session", zap.Error(clearErr))
			}
			return nil
		}
	}

	s.logger.Info("Session restored", zap.String("userID", current.User.ID))
	return nil
}

// RefreshCredential renews the ID token if it expires within leeway.
// It reports whether a refresh happened. A rejected refresh token ends the session.
func (s *Service) RefreshCredential(ctx context.Context, leeway time.Duration) (bool, error) {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	current := s.store.Current()
	if current == nil {
		return false, common.ErrNotSignedIn
	}
	if !current.Credential.ExpiresWithin(s.now(), leeway) {
		return false, nil
	}
	if s.refresher == nil {
		return false, common.ErrServiceUnavailable.WithMessage("Token refresh is not configured.")
	}

	tok, err := s.refresher.Refresh(ctx, current.Credential.RefreshToken)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			if clearErr := s.store.Clear(ctx); clearErr != nil {
				s.logger.Error("Failed to delete expired session", zap.Error(clearErr))
			}
		}
		return false, err
	}

	_, err = s.store.Update(ctx, func(sess *session.Session) bool {
		if sess.User.ID != current.User.ID {
			return false
		}
		sess.Credential.IDToken = tok.IDToken
		sess.Credential.RefreshToken = tok.RefreshToken
		sess.Credential.ExpiresAt = tok.ExpiresAt
		return true
	})
	if err != nil {
		s.logger.Error("Failed to persist refreshed credential", zap.Error(err))
	}
	s.logger.Debug("ID token refreshed", zap.Time("expiresAt", tok.ExpiresAt))
	return true, nil
}

// TokenSource yields the session's ID token as a bearer token.
func (s *Service) TokenSource() oauth2.TokenSource {
	return &sessionTokenSource{svc: s}
}

type sessionTokenSource struct {
	svc *Service
}

// Token returns common.ErrNotSignedIn when there is no session. A failed
// refresh falls back to the current token and lets the server decide.
func (ts *sessionTokenSource) Token() (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := ts.svc.RefreshCredential(ctx, tokenSourceLeeway); err != nil && !errors.Is(err, common.ErrNetwork) {
		if errors.Is(err, common.ErrNotSignedIn) || errors.Is(err, common.ErrInvalidCredentials) {
			return nil, common.ErrNotSignedIn.Wrap(err)
		}
		ts.svc.logger.Warn("Token refresh before API call failed", zap.Error(err))
	}

	current := ts.svc.store.Current()
	if current == nil || current.Credential.IDToken == "" {
		return nil, common.ErrNotSignedIn
	}
	return &oauth2.Token{
		AccessToken: current.Credential.IDToken,
		TokenType:   "Bearer",
		Expiry:      current.Credential.ExpiresAt,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
