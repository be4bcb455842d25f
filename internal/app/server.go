// File: internal/app/server.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"authportal/internal/auth"
	"authportal/internal/common"
	"authportal/internal/config"
	"authportal/internal/jobs"
	"authportal/internal/middleware"
	"authportal/internal/nav"
	"authportal/internal/notification"
	"authportal/internal/user"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server struct holds the dependencies for the HTTP host.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	logger     *zap.Logger

	// Handlers
	authHandler         *auth.Handler
	userHandler         *user.Handler
	navHandler          *nav.Handler
	notificationHandler *notification.Handler

	// Lifecycle
	tokenRefreshJob *jobs.TokenRefreshJob
	callback        *auth.CallbackServer
	delayed         *nav.Delayed
}

// NewServer creates the host and registers every screen route.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	authService *auth.Service,
	authHandler *auth.Handler,
	userHandler *user.Handler,
	navHandler *nav.Handler,
	notificationHandler *notification.Handler,
	tokenRefreshJob *jobs.TokenRefreshJob,
	callback *auth.CallbackServer,
	delayed *nav.Delayed,
) (*Server, error) {
	gin.SetMode(ginMode(cfg.AppMode))
	router := gin.New()

	// --- Global Middleware ---
	router.Use(middleware.ZapLogger(logger, cfg))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", common.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{"Content-Length", common.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	requireSession := middleware.RequireSession(authService, logger.Named("RequireSession"))

	// --- Setup Routes ---
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "signedIn": authService.CurrentUser() != nil})
	})

	v1 := router.Group("/api/v1")
	navHandler.RegisterRoutes(v1)
	authHandler.RegisterRoutes(v1)
	userHandler.RegisterRoutes(v1, requireSession)
	notificationHandler.RegisterRoutes(v1.Group("/notifications"))

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:        addr,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		// Federated sign-in holds the request open until the browser returns.
		WriteTimeout: cfg.FederatedTimeout + 15*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer:          httpServer,
		router:              router,
		cfg:                 cfg,
		logger:              logger,
		authHandler:         authHandler,
		userHandler:         userHandler,
		navHandler:          navHandler,
		notificationHandler: notificationHandler,
		tokenRefreshJob:     tokenRefreshJob,
		callback:            callback,
		delayed:             delayed,
	}, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	if s.tokenRefreshJob != nil {
		if err := s.tokenRefreshJob.SetupAndStart(); err != nil {
			s.logger.Error("Failed to setup and start token refresh job", zap.Error(err))
		}
	}

	s.logger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("app_mode", s.cfg.AppMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.logger.Info("HTTP Server stopped")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Attempting graceful server shutdown...")
	if s.tokenRefreshJob != nil {
		s.tokenRefreshJob.Stop()
	}
	if s.delayed != nil {
		s.delayed.CancelAll()
	}
	var errs []error
	if s.callback != nil {
		if err := s.callback.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("callback server: %w", err))
		}
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func ginMode(appMode string) string {
	switch appMode {
	case gin.ReleaseMode, gin.TestMode:
		return appMode
	}
	return gin.DebugMode
}
