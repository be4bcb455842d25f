// File: cmd/portal/providers.go
package main

import (
	"context"

	"authportal/internal/app"
	"authportal/internal/auth"
	"authportal/internal/config"
	"authportal/internal/firebase"
	"authportal/internal/nav"
	"authportal/internal/notification"
	"authportal/internal/platform/database"
	"authportal/internal/session"
	"authportal/internal/user"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Portal bundles what the terminal commands and the host need.
type Portal struct {
	Logger  *zap.Logger
	Auth    *auth.Service
	SignIn  *auth.SignInScreen
	SignUp  *user.SignUpScreen
	Profile *user.ProfileScreen
	Home    *user.HomeScreen
	Feed    *notification.Feed
	Guard   *nav.Guard
	Delayed *nav.Delayed
	Server  *app.Server
}

func newPortal(
	logger *zap.Logger,
	authService *auth.Service,
	signIn *auth.SignInScreen,
	signUp *user.SignUpScreen,
	profile *user.ProfileScreen,
	home *user.HomeScreen,
	feed *notification.Feed,
	guard *nav.Guard,
	delayed *nav.Delayed,
	server *app.Server,
) (*Portal, func()) {
	p := &Portal{
		Logger:  logger,
		Auth:    authService,
		SignIn:  signIn,
		SignUp:  signUp,
		Profile: profile,
		Home:    home,
		Feed:    feed,
		Guard:   guard,
		Delayed: delayed,
		Server:  server,
	}
	return p, func() {
		delayed.CancelAll()
		signIn.Close()
		signUp.Close()
		profile.Close()
		guard.Close()
	}
}

func provideDatabase(cfg *config.Config, logger *zap.Logger) (*gorm.DB, func(), error) {
	db, err := database.NewGORM(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { database.CloseGORMDB(db, logger) }, nil
}

func provideSessionRepository(db *gorm.DB, cfg *config.Config) (session.Repository, error) {
	return session.NewGORMRepository(db, cfg.SessionKey)
}

func provideIdentityClient(cfg *config.Config, logger *zap.Logger) (auth.IdentityClient, error) {
	return firebase.NewIdentityService(context.Background(), cfg, logger)
}

func provideTokenRefresher(cfg *config.Config, logger *zap.Logger) auth.TokenRefresher {
	return firebase.NewTokenRefresher(cfg.FirebaseAPIKey, firebase.SecureTokenURL, nil, logger)
}

// provideTokenVerifier returns a nil interface when the Admin SDK is not configured.
func provideTokenVerifier(cfg *config.Config, logger *zap.Logger) (auth.TokenVerifier, error) {
	svc, err := firebase.NewFirebaseService(cfg, logger)
	if err != nil || svc == nil {
		return nil, err
	}
	return svc, nil
}

func provideCallbackServer(cfg *config.Config, logger *zap.Logger) *auth.CallbackServer {
	return auth.NewCallbackServer(cfg.GoogleCallbackAddr, cfg.GoogleCallbackPath, cfg.FederatedTimeout, logger)
}

// provideFederatedProvider returns a nil interface when no Google client is configured.
func provideFederatedProvider(cfg *config.Config, callback *auth.CallbackServer, logger *zap.Logger) auth.FederatedProvider {
	if cfg.GoogleClientID == "" {
		logger.Info("GOOGLE_CLIENT_ID is not set; Google sign-in is disabled")
		return nil
	}
	return auth.NewGoogleProvider(cfg, callback, auth.NewBrowserOpener(logger), logger)
}

func provideAuthService(
	store *session.Store,
	identity auth.IdentityClient,
	provider auth.FederatedProvider,
	refresher auth.TokenRefresher,
	verifier auth.TokenVerifier,
	cfg *config.Config,
	logger *zap.Logger,
) *auth.Service {
	return auth.NewService(store, identity, provider, refresher, verifier, cfg.FederatedTimeout, logger)
}

func provideFeed() *notification.Feed {
	return notification.NewFeed(notification.DefaultFeedCapacity)
}

// provideNotifier fans toasts out to the feed and the log.
func provideNotifier(feed *notification.Feed, logger *zap.Logger) notification.Notifier {
	return notification.Multi{feed, notification.NewLogNotifier(logger)}
}

func provideHistory() *nav.History {
	return nav.NewHistory(nav.RouteSignIn)
}

func provideDelayed(guard *nav.Guard, cfg *config.Config, logger *zap.Logger) *nav.Delayed {
	return nav.NewDelayed(guard, nav.RealScheduler{}, cfg.NavigationDelay, logger)
}

func provideAPIClient(cfg *config.Config, authService *auth.Service, logger *zap.Logger) *user.Client {
	return user.NewClient(cfg, authService.TokenSource(), logger)
}

func provideProfileScreen(
	api user.ProfileUpdater,
	account user.Account,
	delayed *nav.Delayed,
	notifier notification.Notifier,
	cfg *config.Config,
	logger *zap.Logger,
) *user.ProfileScreen {
	return user.NewProfileScreen(api, account, delayed, notifier, cfg.AvatarPlaceholderURL, logger)
}

func provideHomeScreen(account user.Account, cfg *config.Config, logger *zap.Logger) *user.HomeScreen {
	return user.NewHomeScreen(account, cfg.AvatarPlaceholderURL, logger)
}
