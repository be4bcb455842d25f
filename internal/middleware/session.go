// File: internal/middleware/session.go
package middleware

import (
	"authportal/internal/common"
	"authportal/internal/shared"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionSource yields the signed-in user, or nil.
type SessionSource interface {
	CurrentUser() *shared.User
}

// RequireSession rejects requests while nobody is signed in and stores the
// user under common.SessionUserKey otherwise.
func RequireSession(source SessionSource, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := source.CurrentUser()
		if u == nil {
			logger.Debug("No session for protected route", zap.String("path", c.Request.URL.Path))
			common.RespondWithError(c, common.ErrNotSignedIn)
			return
		}
		c.Set(common.SessionUserKey, u)
		c.Next()
	}
}
