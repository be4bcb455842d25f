// File: internal/auth/callback.go
package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// CallbackResult is what the provider sent to the redirect URL.
type CallbackResult struct {
	Code             string
	Error            string
	ErrorDescription string
}

const callbackPage = `<!doctype html><html><body><p>%s</p><p>You can close this window.</p></body></html>`

// CallbackServer receives OAuth redirects on a loopback address. Each pending
// attempt is keyed by its state and expires with the federated timeout.
type CallbackServer struct {
	addr   string
	path   string
	logger *zap.Logger

	pending *cache.Cache

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// NewCallbackServer prepares the server; it starts listening on the first Expect.
func NewCallbackServer(addr, path string, ttl time.Duration, logger *zap.Logger) *CallbackServer {
	if ttl <= 0 {
		ttl = DefaultFederatedTimeout
	}
	if path == "" {
		path = "/oauth/callback"
	}
	return &CallbackServer{
		addr:    addr,
		path:    path,
		logger:  logger.Named("oauth_callback"),
		pending: cache.New(ttl, ttl),
	}
}

// Expect registers state and returns the channel its redirect will arrive on.
// The returned func forgets the attempt.
func (s *CallbackServer) Expect(state string) (<-chan CallbackResult, func(), error) {
	if err := s.start(); err != nil {
		return nil, nil, err
	}
	ch := make(chan CallbackResult, 1)
	if err := s.pending.Add(state, ch, cache.DefaultExpiration); err != nil {
		return nil, nil, fmt.Errorf("duplicate oauth state: %w", err)
	}
	return ch, func() { s.pending.Delete(state) }, nil
}

// RedirectURL is the URL the provider must send the browser back to.
func (s *CallbackServer) RedirectURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	addr := s.addr
	if s.listener != nil {
		addr = s.listener.Addr().String()
	}
	return "http://" + addr + s.path
}

func (s *CallbackServer) start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen for oauth callback on %s: %w", s.addr, err)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.GET(s.path, s.handleCallback)

	s.listener = ln
	srv := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}
	s.server = srv
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("OAuth callback server stopped", zap.Error(err))
		}
	}()
	s.logger.Info("OAuth callback server listening", zap.String("addr", ln.Addr().String()))
	return nil
}

func (s *CallbackServer) handleCallback(c *gin.Context) {
	state := c.Query("state")
	item, found := s.pending.Get(state)
	if state == "" || !found {
		s.logger.Warn("OAuth callback with unknown or expired state")
		c.Data(http.StatusBadRequest, "text/html; charset=utf-8",
			[]byte(fmt.Sprintf(callbackPage, "This sign-in attempt is unknown or has expired.")))
		return
	}
	s.pending.Delete(state)

	result := CallbackResult{
		Code:             c.Query("code"),
		Error:            c.Query("error"),
		ErrorDescription: c.Query("error_description"),
	}
	ch := item.(chan CallbackResult)
	select {
	case ch <- result:
	default:
	}

	message := "Signed in."
	if result.Error != "" {
		message = "Sign-in was cancelled."
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(fmt.Sprintf(callbackPage, message)))
}

// Shutdown stops the listener if it was started.
func (s *CallbackServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.server
	s.server = nil
	s.listener = nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
