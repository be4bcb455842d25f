package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"authportal/internal/common"
	"authportal/internal/config"
	"authportal/internal/shared"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticSource struct{ user *shared.User }

func (s staticSource) CurrentUser() *shared.User { return s.user }

func decodeAPIError(t *testing.T, w *httptest.ResponseRecorder) common.APIError {
	t.Helper()
	var body common.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestZapLogger_AssignsRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	router := gin.New()
	router.Use(ZapLogger(zap.New(core), &config.Config{AppMode: "debug"}))

	var seenID string
	var scoped bool
	router.GET("/ping", func(c *gin.Context) {
		seenID = common.GetRequestIDFromContext(c)
		_, scoped = c.Get(common.LoggerKey)
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.NotEmpty(t, seenID)
	assert.True(t, scoped)
	assert.Equal(t, seenID, w.Header().Get(common.RequestIDHeader))
	require.Equal(t, 1, logs.FilterMessage("Request handled").Len())
	assert.Equal(t, seenID, logs.All()[0].ContextMap()["request_id"])
}

func TestZapLogger_KeepsCallerRequestID(t *testing.T) {
	router := gin.New()
	router.Use(ZapLogger(zap.NewNop(), &config.Config{AppMode: "release"}))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(common.RequestIDHeader, "req-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-1", w.Header().Get(common.RequestIDHeader))
}

func TestErrorHandler(t *testing.T) {
	router := gin.New()
	router.Use(ErrorHandler(zap.NewNop()))
	router.GET("/api-error", func(c *gin.Context) { _ = c.Error(common.ErrEditingDisabled) })
	router.GET("/plain-error", func(c *gin.Context) { _ = c.Error(errors.New("disk full")) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api-error", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, common.CodeEditingDisabled, decodeAPIError(t, w).Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/plain-error", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", decodeAPIError(t, w).Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRequireSession(t *testing.T) {
	u := &shared.User{ID: "uid-1", Email: "a@b.com", AuthType: shared.AuthTypePassword}

	build := func(source SessionSource) *gin.Engine {
		router := gin.New()
		router.GET("/home", RequireSession(source, zap.NewNop()), func(c *gin.Context) {
			c.JSON(http.StatusOK, common.GetSessionUserFromContext(c))
		})
		return router
	}

	w := httptest.NewRecorder()
	build(staticSource{}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/home", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, common.CodeNotSignedIn, decodeAPIError(t, w).Code)

	w = httptest.NewRecorder()
	build(staticSource{user: u}).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/home", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	var got shared.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, *u, got)
}
