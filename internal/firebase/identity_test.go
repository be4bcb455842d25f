package firebase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"authportal/internal/common"
	"authportal/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

func signedIDToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "uid-1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func writeFirebaseError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"code":    status,
			"message": message,
			"errors":  []map[string]string{{"message": message, "domain": "global", "reason": "invalid"}},
		},
	})
}

func newTestIdentityService(t *testing.T, handler http.HandlerFunc) *IdentityService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := NewIdentityService(context.Background(), &config.Config{FirebaseAPIKey: "test-key"}, zap.NewNop(),
		option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	return svc
}

func TestIdentityService_VerifyPassword(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	idToken := signedIDToken(t, exp)

	svc := newTestIdentityService(t, func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "verifyPassword"), r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a@b.com", body["email"])
		assert.Equal(t, "secret", body["password"])
		assert.Equal(t, true, body["returnSecureToken"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"localId":      "uid-1",
			"email":        "a@b.com",
			"displayName":  "Ann",
			"idToken":      idToken,
			"refreshToken": "refresh-1",
			"expiresIn":    "3600",
		})
	})

	res, err := svc.VerifyPassword(context.Background(), "a@b.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", res.LocalID)
	assert.Equal(t, "Ann", res.DisplayName)
	assert.Equal(t, "refresh-1", res.RefreshToken)
	assert.True(t, exp.Equal(res.ExpiresAt))
}

func TestIdentityService_VerifyPasswordRejected(t *testing.T) {
	for _, msg := range []string{"EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED"} {
		t.Run(msg, func(t *testing.T) {
			svc := newTestIdentityService(t, func(w http.ResponseWriter, r *http.Request) {
				writeFirebaseError(w, http.StatusBadRequest, msg)
			})
			_, err := svc.VerifyPassword(context.Background(), "a@b.com", "nope")
			assert.ErrorIs(t, err, common.ErrInvalidCredentials)
			assert.Equal(t, "Invalid email or password.", err.Error())
		})
	}
}

func TestIdentityService_OtherBackendErrors(t *testing.T) {
	svc := newTestIdentityService(t, func(w http.ResponseWriter, r *http.Request) {
		writeFirebaseError(w, http.StatusBadRequest, "TOO_MANY_ATTEMPTS_TRY_LATER")
	})
	_, err := svc.VerifyPassword(context.Background(), "a@b.com", "x")
	assert.ErrorIs(t, err, common.ErrRemote)
	assert.Contains(t, err.Error(), "TOO_MANY_ATTEMPTS_TRY_LATER")
}

func TestIdentityService_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL + "/"
	srv.Close()

	svc, err := NewIdentityService(context.Background(), &config.Config{FirebaseAPIKey: "k"}, zap.NewNop(), option.WithEndpoint(endpoint))
	require.NoError(t, err)

	_, err = svc.VerifyPassword(context.Background(), "a@b.com", "secret")
	assert.ErrorIs(t, err, common.ErrNetwork)
	var urlErr *url.Error
	assert.True(t, errors.As(err, &urlErr))
}

func TestIdentityService_VerifyAssertion(t *testing.T) {
	svc := newTestIdentityService(t, func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "verifyAssertion"), r.URL.Path)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		post, err := url.ParseQuery(body["postBody"].(string))
		require.NoError(t, err)
		assert.Equal(t, "google-id-token", post.Get("id_token"))
		assert.Equal(t, "google.com", post.Get("providerId"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"localId":      "uid-g",
			"email":        "g@example.com",
			"fullName":     "Gina",
			"photoUrl":     "https://lh3.example/photo.jpg",
			"providerId":   "google.com",
			"idToken":      "opaque",
			"refreshToken": "refresh-g",
			"expiresIn":    "3600",
		})
	})

	res, err := svc.VerifyAssertion(context.Background(), IdPAssertion{
		ProviderID:  "google.com",
		IDToken:     "google-id-token",
		AccessToken: "google-access",
	})
	require.NoError(t, err)
	assert.Equal(t, "Gina", res.DisplayName)
	assert.Equal(t, "https://lh3.example/photo.jpg", res.PhotoURL)
	assert.Equal(t, "google-access", res.ProviderAccessToken)
	assert.WithinDuration(t, time.Now().Add(time.Hour), res.ExpiresAt, time.Minute)
}
