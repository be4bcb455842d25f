// File: internal/common/context_helpers.go
package common

import (
	"authportal/internal/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GetRequestIDFromContext retrieves the request ID set by the logging middleware.
func GetRequestIDFromContext(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// GetLoggerFromContext returns the request-scoped logger, or fallback when none is set.
func GetLoggerFromContext(c *gin.Context, fallback *zap.Logger) *zap.Logger {
	val, exists := c.Get(LoggerKey)
	if !exists {
		return fallback
	}
	logger, ok := val.(*zap.Logger)
	if !ok {
		return fallback
	}
	return logger
}

// GetSessionUserFromContext retrieves the signed-in user stored by RequireSession.
func GetSessionUserFromContext(c *gin.Context) *shared.User {
	val, exists := c.Get(SessionUserKey)
	if !exists {
		return nil
	}
	user, ok := val.(*shared.User)
	if !ok {
		return nil
	}
	return user
}
