// File: internal/user/client.go
package user

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"authportal/internal/common"
	"authportal/internal/config"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 1 << 20

// Client talks to the remote user API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     oauth2.TokenSource
	logger     *zap.Logger
}

// NewClient creates the REST client. Requests carry the session's ID token
// when tokens yields one and go out anonymously otherwise.
func NewClient(cfg *config.Config, tokens oauth2.TokenSource, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.APIBaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.APITimeout},
		tokens:     tokens,
		logger:     logger.Named("api_client"),
	}
}

// Register creates an account: POST /user.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RemoteUser, error) {
	var out RemoteUser
	if err := c.do(ctx, http.MethodPost, "/user", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update changes a profile: PUT /user/{id}.
func (c *Client) Update(ctx context.Context, id string, req UpdateRequest) (*RemoteUser, error) {
	if id == "" {
		return nil, common.ErrNotSignedIn
	}
	var out RemoteUser
	if err := c.do(ctx, http.MethodPut, "/user/"+url.PathEscape(id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode %s %s request: %w", method, path, err)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	c.authorize(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("API request failed", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return common.ErrNetwork.Wrap(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return common.ErrNetwork.Wrap(err)
	}
	c.logger.Debug("API request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return common.NewRemoteError(resp.StatusCode, remoteMessage(raw))
	}
	decodeUser(raw, out, c.logger)
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.tokens == nil {
		return
	}
	tok, err := c.tokens.Token()
	if err != nil {
		if !errors.Is(err, common.ErrNotSignedIn) {
			c.logger.Warn("Sending request without credentials", zap.Error(err))
		}
		return
	}
	tok.SetAuthHeader(req)
}

// remoteMessage picks the server's explanation out of an error body.
func remoteMessage(raw []byte) string {
	var body struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
		Details json.RawMessage `json:"details"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	for _, candidate := range []json.RawMessage{body.Details, body.Error} {
		var s string
		if len(candidate) > 0 && json.Unmarshal(candidate, &s) == nil && s != "" {
			return s
		}
	}
	return ""
}

// decodeUser accepts the user either bare or under "user" or "data".
// Bodies the client cannot read are ignored; the request itself succeeded.
func decodeUser(raw []byte, out interface{}, logger *zap.Logger) {
	dst, ok := out.(*RemoteUser)
	if !ok || len(bytes.TrimSpace(raw)) == 0 {
		return
	}
	var envelope struct {
		RemoteUser
		User *RemoteUser `json:"user"`
		Data *RemoteUser `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		logger.Debug("Ignoring unreadable API response body", zap.Error(err))
		return
	}
	switch {
	case envelope.User != nil:
		*dst = *envelope.User
	case envelope.Data != nil:
		*dst = *envelope.Data
	default:
		*dst = envelope.RemoteUser
	}
}
