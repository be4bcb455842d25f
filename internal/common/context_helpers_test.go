package common

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestGetLoggerFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	fallback := zap.NewNop()

	assert.Same(t, fallback, GetLoggerFromContext(c, fallback))

	c.Set(LoggerKey, "not a logger")
	assert.Same(t, fallback, GetLoggerFromContext(c, fallback))

	scoped := zap.NewExample()
	c.Set(LoggerKey, scoped)
	assert.Same(t, scoped, GetLoggerFromContext(c, fallback))
}

func TestRespondWithError_LogsUnhandledErrorsOnScopedLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	core, logs := observer.New(zapcore.ErrorLevel)
	c.Set(LoggerKey, zap.New(core))

	RespondWithError(c, errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Unhandled internal error being wrapped", logs.All()[0].Message)
}
