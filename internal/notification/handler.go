package notification

import (
	"authportal/internal/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	feed   *Feed
	logger *zap.Logger
}

func NewHandler(feed *Feed, logger *zap.Logger) *Handler {
	return &Handler{
		feed:   feed,
		logger: logger,
	}
}

// RegisterRoutes sets up the routes for notification operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("", h.drainNotifications)
}

func (h *Handler) drainNotifications(c *gin.Context) {
	items := h.feed.Drain()
	common.RespondOK(c, "Notifications retrieved successfully.", items)
}
