// File: internal/user/handler.go
package user

import (
	"authportal/internal/common"
	"authportal/internal/form"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler struct holds dependencies for the sign-up, profile and home screens.
type Handler struct {
	signUp  *SignUpScreen
	profile *ProfileScreen
	home    *HomeScreen
	logger  *zap.Logger
}

// NewHandler creates a new user handler.
func NewHandler(signUp *SignUpScreen, profile *ProfileScreen, home *HomeScreen, logger *zap.Logger) *Handler {
	return &Handler{
		signUp:  signUp,
		profile: profile,
		home:    home,
		logger:  logger,
	}
}

// RegisterRoutes sets up the screen routes. requireSession guards the
// screens that need a signed-in user.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, requireSession gin.HandlerFunc) {
	router.POST("/signup", h.submitSignUp)
	router.GET("/signup/state", h.signUpState)

	authenticated := router.Group("")
	authenticated.Use(requireSession)
	{
		authenticated.GET("/profile", h.getProfile)
		authenticated.PUT("/profile", h.submitProfile)
		authenticated.POST("/profile/avatar", h.uploadAvatar)
		authenticated.GET("/home", h.getHome)
	}
}

func (h *Handler) submitSignUp(c *gin.Context) {
	var req SignUpForm
	if err := c.ShouldBindJSON(&req); err != nil {
		common.GetLoggerFromContext(c, h.logger).Warn("SignUp: Invalid request body", zap.Error(err))
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}
	res := h.signUp.Submit(c.Request.Context(), req)
	form.Respond(c, res, signUpSuccessMessage, res.Value)
}

func (h *Handler) signUpState(c *gin.Context) {
	common.RespondOK(c, "", h.signUp.State())
}

func (h *Handler) getProfile(c *gin.Context) {
	h.profile.Load()
	common.RespondOK(c, "", h.profile.State())
}

func (h *Handler) submitProfile(c *gin.Context) {
	var req ProfileForm
	if err := c.ShouldBindJSON(&req); err != nil {
		common.GetLoggerFromContext(c, h.logger).Warn("Profile: Invalid request body", zap.Error(err))
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}
	res := h.profile.Submit(c.Request.Context(), req)
	form.Respond(c, res, profileSuccessMessage, h.profile.State())
}

func (h *Handler) uploadAvatar(c *gin.Context) {
	filename := ""
	if fh, err := c.FormFile("avatar"); err == nil {
		filename = fh.Filename
	}
	common.RespondWithError(c, h.profile.SelectAvatar(c.Request.Context(), filename))
}

func (h *Handler) getHome(c *gin.Context) {
	state, err := h.home.State()
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "", state)
}
