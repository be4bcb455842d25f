package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"authportal/internal/common"
	"authportal/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, tokens oauth2.TokenSource) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&config.Config{APIBaseURL: srv.URL + "/", APITimeout: 2 * time.Second}, tokens, zap.NewNop())
}

func TestClient_RegisterAnonymous(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/user", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"username": "ann", "email": "a@b.com", "password": "secret"}, body)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"user": map[string]string{"id": "42", "username": "ann", "email": "a@b.com"},
		})
	}, nil)

	u, err := c.Register(context.Background(), RegisterRequest{Username: "ann", Email: "a@b.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "42", u.ID)
}

func TestClient_UpdateSendsBearerToken(t *testing.T) {
	tokens := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "id-token", TokenType: "Bearer"})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/user/uid-1", r.URL.Path)
		assert.Equal(t, "Bearer id-token", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "+15550100", body["phoneNumber"])

		_ = json.NewEncoder(w).Encode(map[string]string{"id": "uid-1", "username": "Anna", "phoneNumber": "+15550100"})
	}, tokens)

	u, err := c.Update(context.Background(), "uid-1", UpdateRequest{Username: "Anna", Email: "a@b.com", PhoneNumber: "+15550100"})
	require.NoError(t, err)
	assert.Equal(t, "Anna", u.Username)
}

func TestClient_RemoteErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"message", http.StatusBadRequest, `{"message":"Email already registered"}`, "Email already registered"},
		{"details", http.StatusUnprocessableEntity, `{"details":"username taken"}`, "username taken"},
		{"status text", http.StatusInternalServerError, `<html>oops</html>`, "Request failed with status 500 Internal Server Error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}, nil)
			_, err := c.Register(context.Background(), RegisterRequest{})
			assert.ErrorIs(t, err, common.ErrRemote)
			assert.Equal(t, tc.want, err.Error())
		})
	}
}

func TestClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := NewClient(&config.Config{APIBaseURL: base, APITimeout: time.Second}, nil, zap.NewNop())
	_, err := c.Update(context.Background(), "uid-1", UpdateRequest{})
	assert.ErrorIs(t, err, common.ErrNetwork)

	_, err = c.Update(context.Background(), "", UpdateRequest{})
	assert.ErrorIs(t, err, common.ErrNotSignedIn)
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(&config.Config{APIBaseURL: srv.URL, APITimeout: 50 * time.Millisecond}, nil, zap.NewNop())
	_, err := c.Register(context.Background(), RegisterRequest{})
	assert.ErrorIs(t, err, common.ErrNetwork)
}

func TestAvatarURL(t *testing.T) {
	assert.Equal(t,
		"https://ui-avatars.com/api/?background=B269FA&length=1&name=Ann+Lee&rounded=true",
		AvatarURL("", &sharedUser))
	withAvatar := sharedUser
	withAvatar.Avatar = "https://cdn/ann.png"
	assert.Equal(t, "https://cdn/ann.png", AvatarURL("", &withAvatar))
}
