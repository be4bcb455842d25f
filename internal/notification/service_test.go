package notification

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFeed_DrainEmptiesInOrder(t *testing.T) {
	feed := NewFeed(0)
	Success(feed, "Signed in successfully!")
	Error(feed, "Invalid email or password.")

	items := feed.Drain()
	require.Len(t, items, 2)
	assert.Equal(t, SeveritySuccess, items[0].Severity)
	assert.Equal(t, "Invalid email or password.", items[1].Message)
	assert.NotEqual(t, items[0].ID, items[1].ID)

	assert.Empty(t, feed.Drain())
	assert.Equal(t, 0, feed.Len())
}

func TestFeed_DropsOldestWhenFull(t *testing.T) {
	feed := NewFeed(2)
	Success(feed, "one")
	Success(feed, "two")
	Success(feed, "three")

	items := feed.Drain()
	require.Len(t, items, 2)
	assert.Equal(t, "two", items[0].Message)
	assert.Equal(t, "three", items[1].Message)
}

func TestMulti_LogsAndBuffers(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	feed := NewFeed(10)
	n := Multi{feed, NewLogNotifier(zap.New(core))}

	Error(n, "Network error")

	assert.Equal(t, 1, feed.Len())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Error notification", logs.All()[0].Message)
}

func TestHandler_Drain(t *testing.T) {
	gin.SetMode(gin.TestMode)
	feed := NewFeed(10)
	Success(feed, "Profile Updated!")

	router := gin.New()
	NewHandler(feed, zap.NewNop()).RegisterRoutes(router.Group("/api/v1/notifications"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Profile Updated!")
	assert.Equal(t, 0, feed.Len())
}
