// File: internal/auth/google.go
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"authportal/internal/common"
	"authportal/internal/config"
	"authportal/internal/platform/crypto"
	"authportal/internal/shared"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
	googleRevokeURL   = "https://oauth2.googleapis.com/revoke"
	googleProviderID  = "google.com"
)

// Opener shows the provider's consent page to the user.
type Opener interface {
	Open(authURL string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(authURL string) error

func (f OpenerFunc) Open(authURL string) error { return f(authURL) }

// BrowserOpener launches the system browser and logs the URL in case that fails.
type BrowserOpener struct {
	logger *zap.Logger
}

func NewBrowserOpener(logger *zap.Logger) *BrowserOpener {
	return &BrowserOpener{logger: logger.Named("browser")}
}

func (o *BrowserOpener) Open(authURL string) error {
	o.logger.Info("Open this URL to continue signing in", zap.String("url", authURL))
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", authURL)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", authURL)
	default:
		cmd = exec.Command("xdg-open", authURL)
	}
	if err := cmd.Start(); err != nil {
		// The URL is in the log; the user can still open it by hand.
		o.logger.Warn("Could not launch a browser", zap.Error(err))
		return nil
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// GoogleProvider signs in with Google using the authorization code flow with PKCE.
type GoogleProvider struct {
	oauthCfg    oauth2.Config
	callback    *CallbackServer
	opener      Opener
	httpClient  *http.Client
	userInfoURL string
	revokeURL   string
	logger      *zap.Logger
}

// NewGoogleProvider builds the provider from the Google OAuth client settings.
func NewGoogleProvider(cfg *config.Config, callback *CallbackServer, opener Opener, logger *zap.Logger) *GoogleProvider {
	return &GoogleProvider{
		oauthCfg: oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		callback:    callback,
		opener:      opener,
		userInfoURL: googleUserInfoURL,
		revokeURL:   googleRevokeURL,
		logger:      logger.Named("GoogleProvider"),
	}
}

// WithEndpoints points the provider at other OAuth endpoints.
func (p *GoogleProvider) WithEndpoints(endpoint oauth2.Endpoint, userInfoURL, revokeURL string, client *http.Client) *GoogleProvider {
	p.oauthCfg.Endpoint = endpoint
	p.userInfoURL = userInfoURL
	p.revokeURL = revokeURL
	p.httpClient = client
	return p
}

func (p *GoogleProvider) Name() shared.AuthType {
	return shared.AuthTypeGoogle
}

// Authenticate opens the consent page and waits for the redirect.
// Denied consent, a cancelled context and the timeout all end in ErrProviderCancelled.
func (p *GoogleProvider) Authenticate(ctx context.Context) (*FederatedCredential, error) {
	if p.oauthCfg.ClientID == "" {
		return nil, common.ErrServiceUnavailable.WithMessage("Google sign-in is not configured.")
	}
	if p.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	}

	state, err := crypto.NewOAuthState()
	if err != nil {
		p.logger.Error("Failed to generate OAuth state for Google", zap.Error(err))
		return nil, common.ErrInternalServer.WithMessage("Could not initiate Google login.")
	}
	verifier := oauth2.GenerateVerifier()

	results, forget, err := p.callback.Expect(state)
	if err != nil {
		p.logger.Error("Failed to start OAuth callback server", zap.Error(err))
		return nil, common.ErrInternalServer.WithMessage("Could not initiate Google login.").Wrap(err)
	}
	defer forget()

	oauthCfg := p.oauthCfg
	oauthCfg.RedirectURL = p.callback.RedirectURL()
	authURL := oauthCfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
		oauth2.SetAuthURLParam("prompt", "select_account"),
	)
	if err := p.opener.Open(authURL); err != nil {
		p.logger.Warn("Failed to open Google consent page", zap.Error(err))
		return nil, common.ErrProviderCancelled.WithMessage("Could not open the Google sign-in page.").Wrap(err)
	}

	var result CallbackResult
	select {
	case result = <-results:
	case <-ctx.Done():
		p.logger.Info("Google sign-in abandoned", zap.Error(ctx.Err()))
		return nil, common.ErrProviderCancelled.Wrap(ctx.Err())
	}

	if result.Error != "" {
		p.logger.Info("Google consent not granted", zap.String("error", result.Error))
		if result.Error == "access_denied" {
			return nil, common.ErrProviderCancelled
		}
		return nil, common.ErrProviderCancelled.WithMessage(
			fmt.Sprintf("Google sign-in failed: %s", firstNonEmpty(result.ErrorDescription, result.Error)))
	}
	if result.Code == "" {
		return nil, common.ErrProviderCancelled.WithMessage("Google did not return an authorization code.")
	}

	token, err := oauthCfg.Exchange(ctx, result.Code, oauth2.VerifierOption(verifier))
	if err != nil {
		p.logger.Error("Failed to exchange Google auth code for token", zap.Error(err))
		if ctx.Err() != nil {
			return nil, common.ErrProviderCancelled.Wrap(ctx.Err())
		}
		return nil, classifyOAuthError(err, "Could not exchange Google auth code.")
	}
	idToken, _ := token.Extra("id_token").(string)

	profile, err := p.fetchProfile(ctx, &oauthCfg, token)
	if err != nil {
		if ctx.Err() != nil {
			return nil, common.ErrProviderCancelled.Wrap(ctx.Err())
		}
		return nil, err
	}

	p.logger.Info("Google consent granted", zap.String("sub", profile.Subject))
	return &FederatedCredential{
		Provider:    shared.AuthTypeGoogle,
		ProviderID:  googleProviderID,
		IDToken:     idToken,
		AccessToken: token.AccessToken,
		RequestURI:  oauthCfg.RedirectURL,
		Profile:     *profile,
	}, nil
}

func (p *GoogleProvider) fetchProfile(ctx context.Context, oauthCfg *oauth2.Config, token *oauth2.Token) (*FederatedProfile, error) {
	client := oauthCfg.Client(ctx, token)
	resp, err := client.Get(p.userInfoURL)
	if err != nil {
		p.logger.Error("Failed to fetch user info from Google", zap.Error(err))
		return nil, common.ErrNetwork.Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		p.logger.Error("Google user info request failed", zap.Int("status", resp.StatusCode), zap.String("body", string(bodyBytes)))
		return nil, common.NewRemoteError(resp.StatusCode, fmt.Sprintf("Google returned status %d for user info.", resp.StatusCode))
	}

	var profile FederatedProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		p.logger.Error("Failed to decode Google user info", zap.Error(err))
		return nil, common.ErrRemote.WithMessage("Could not process Google user information.").Wrap(err)
	}
	profile.Email = strings.ToLower(profile.Email)
	return &profile, nil
}

// Revoke invalidates a Google access token.
func (p *GoogleProvider) Revoke(ctx context.Context, accessToken string) error {
	form := url.Values{"token": {accessToken}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build revoke request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := p.httpClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return common.ErrNetwork.Wrap(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return common.NewRemoteError(resp.StatusCode, "Google did not revoke the access token.")
	}
	p.logger.Debug("Google access token revoked")
	return nil
}

func classifyOAuthError(err error, message string) error {
	var rErr *oauth2.RetrieveError
	if errors.As(err, &rErr) {
		status := http.StatusBadGateway
		if rErr.Response != nil {
			status = rErr.Response.StatusCode
		}
		return common.NewRemoteError(status, message).Wrap(err)
	}
	return common.ErrNetwork.Wrap(err)
}
