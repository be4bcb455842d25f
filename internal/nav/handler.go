// File: internal/nav/handler.go
package nav

import (
	"authportal/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ScreenResponse reports which screen the front end should render.
type ScreenResponse struct {
	Route    Route `json:"route"`
	Public   bool  `json:"public"`
	Depth    int   `json:"depth"`
	Pending  int   `json:"pendingRedirects"`
	SignedIn bool  `json:"signedIn"`
}

type navigateRequest struct {
	Route Route `json:"route" binding:"required"`
}

// Handler exposes the guarded history to the front end.
type Handler struct {
	guard   *Guard
	history *History
	delayed *Delayed
	logger  *zap.Logger
}

func NewHandler(guard *Guard, history *History, delayed *Delayed, logger *zap.Logger) *Handler {
	return &Handler{guard: guard, history: history, delayed: delayed, logger: logger}
}

// RegisterRoutes sets up the navigation routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/screen", h.getScreen)
	router.POST("/navigate", h.navigate)
}

func (h *Handler) getScreen(c *gin.Context) {
	common.RespondOK(c, "", h.screen())
}

func (h *Handler) navigate(c *gin.Context) {
	var req navigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}
	if !req.Route.Known() {
		common.RespondWithError(c, common.ErrNotFound.WithDetails("Unknown route: "+string(req.Route)))
		return
	}
	h.guard.Navigate(req.Route)
	common.GetLoggerFromContext(c, h.logger).Debug("Navigated", zap.String("requested", string(req.Route)), zap.String("route", string(h.history.Current())))
	common.RespondOK(c, "", h.screen())
}

func (h *Handler) screen() ScreenResponse {
	current := h.guard.Current()
	return ScreenResponse{
		Route:    current,
		Public:   current.Public(),
		Depth:    h.history.Depth(),
		Pending:  h.delayed.Pending(),
		SignedIn: h.guard.reader.Current() != nil,
	}
}
