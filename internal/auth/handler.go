// File: internal/auth/handler.go
package auth

import (
	"authportal/internal/common"
	"authportal/internal/form"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for auth handlers.
type Handler struct {
	service *Service
	screen  *SignInScreen
	logger  *zap.Logger
}

// NewHandler creates a new auth handler.
func NewHandler(service *Service, screen *SignInScreen, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		screen:  screen,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routes for sign-in and session operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/session", h.getSession)
	router.POST("/signin", h.signIn)
	router.POST("/signin/google", h.signInWithGoogle)
	router.GET("/signin/state", h.signInState)
	router.POST("/signout", h.signOut)
}

func (h *Handler) getSession(c *gin.Context) {
	u := h.service.CurrentUser()
	if u == nil {
		common.RespondNoContent(c)
		return
	}
	common.RespondOK(c, "Session retrieved successfully.", SessionResponse{User: u, Editable: u.Editable()})
}

func (h *Handler) signIn(c *gin.Context) {
	var req SignInForm
	if err := c.ShouldBindJSON(&req); err != nil {
		common.GetLoggerFromContext(c, h.logger).Warn("SignIn: Invalid request body", zap.Error(err))
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	res := h.screen.Submit(c.Request.Context(), req)
	form.Respond(c, res, signInSuccessMessage, res.Value)
}

func (h *Handler) signInWithGoogle(c *gin.Context) {
	res := h.screen.SubmitGoogle(c.Request.Context())
	form.Respond(c, res, googleSignInSuccessMessage, res.Value)
}

func (h *Handler) signInState(c *gin.Context) {
	common.RespondOK(c, "", h.screen.State())
}

func (h *Handler) signOut(c *gin.Context) {
	if err := h.service.SignOut(c.Request.Context()); err != nil {
		// The local session is already gone; report the failed revocation only.
		common.GetLoggerFromContext(c, h.logger).Warn("SignOut: provider revocation failed", zap.Error(err))
		common.RespondOK(c, "Signed out.", gin.H{"warning": err.Error()})
		return
	}
	common.RespondOK(c, "Signed out.", nil)
}
