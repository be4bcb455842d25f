package nav

import (
	"authportal/internal/session"

	"go.uber.org/zap"
)

// Guard keeps the history consistent with the session: a new session on a
// public screen goes home, and signing out restarts at sign-in.
type Guard struct {
	history *History
	reader  session.Reader
	logger  *zap.Logger
	stop    func()
}

// NewGuard subscribes to reader. Call Close to stop following the session.
func NewGuard(history *History, reader session.Reader, logger *zap.Logger) *Guard {
	g := &Guard{history: history, reader: reader, logger: logger.Named("guard")}
	g.stop = reader.Subscribe(g.onSession)
	return g
}

func (g *Guard) onSession(s *session.Session) {
	current := g.history.Current()
	switch {
	case s == nil && !current.Public():
		g.logger.Debug("Session cleared, returning to sign-in")
		g.history.Reset(RouteSignIn)
	case s != nil && current.Public():
		g.logger.Debug("Session started, entering home", zap.String("user_id", s.User.ID))
		g.history.Reset(RouteHome)
	}
}

// Navigate applies the routing rules before moving.
func (g *Guard) Navigate(route Route) {
	signedIn := g.reader.Current() != nil
	if route == RouteBack {
		g.history.Navigate(RouteBack)
		if resolved := Resolve(g.history.Current(), signedIn); resolved != g.history.Current() {
			g.history.Reset(resolved)
		}
		return
	}
	g.history.Navigate(Resolve(route, signedIn))
}

// Current is the screen being shown, after the routing rules.
func (g *Guard) Current() Route {
	current := g.history.Current()
	resolved := Resolve(current, g.reader.Current() != nil)
	if resolved != current {
		g.history.Reset(resolved)
	}
	return resolved
}

// Close unsubscribes from the session.
func (g *Guard) Close() {
	if g.stop != nil {
		g.stop()
	}
}
