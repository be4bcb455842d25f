// File: cmd/portal/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"authportal/internal/app"
	"authportal/internal/auth"
	"authportal/internal/config"
	"authportal/internal/jobs"
	"authportal/internal/nav"
	"authportal/internal/notification"
	"authportal/internal/platform/logger"
	"authportal/internal/session"
	"authportal/internal/user"

	"github.com/google/wire"
)

// initializePortal is the main Wire injector.
func initializePortal(cfg *config.Config) (*Portal, func(), error) {
	wire.Build(
		// Platform Layer
		logger.New,
		provideDatabase,

		// Session
		provideSessionRepository,
		session.NewStore,
		wire.Bind(new(session.Reader), new(*session.Store)),

		// Identity backend
		provideIdentityClient,
		provideTokenRefresher,
		provideTokenVerifier,
		provideCallbackServer,
		provideFederatedProvider,
		provideAuthService,

		// Notifications and navigation
		provideFeed,
		provideNotifier,
		provideHistory,
		nav.NewGuard,
		provideDelayed,

		// Screens
		auth.NewSignInScreen,
		provideAPIClient,
		wire.Bind(new(user.Registrar), new(*user.Client)),
		wire.Bind(new(user.ProfileUpdater), new(*user.Client)),
		wire.Bind(new(user.Account), new(*auth.Service)),
		user.NewSignUpScreen,
		provideProfileScreen,
		provideHomeScreen,

		// Handlers
		auth.NewHandler,
		user.NewHandler,
		nav.NewHandler,
		notification.NewHandler,

		// Jobs
		wire.Bind(new(jobs.CredentialRefresher), new(*auth.Service)),
		jobs.NewTokenRefreshJob,

		// Application Layer
		app.NewServer,
		newPortal,
	)
	return nil, nil, nil
}
