// Package nav holds the screen routes, the history stack, delayed redirects
// and the routing guard that follows the session.
package nav

import "sync"

// Route names a screen.
type Route string

const (
	RouteSignIn  Route = "/"
	RouteSignUp  Route = "/signUp"
	RouteHome    Route = "/home"
	RouteProfile Route = "/profile"
	// RouteBack returns to the previous screen.
	RouteBack Route = "back"
)

// Public reports whether the route is reachable without a session.
func (r Route) Public() bool {
	return r == RouteSignIn || r == RouteSignUp
}

// Known reports whether r is a real screen or the back pseudo-route.
func (r Route) Known() bool {
	switch r {
	case RouteSignIn, RouteSignUp, RouteHome, RouteProfile, RouteBack:
		return true
	}
	return false
}

// Resolve returns the screen actually shown for route given the session state.
// Protected screens require a session; public screens forward signed-in users home.
func Resolve(route Route, signedIn bool) Route {
	if !route.Known() || route == RouteBack {
		if signedIn {
			return RouteHome
		}
		return RouteSignIn
	}
	if route.Public() && signedIn {
		return RouteHome
	}
	if !route.Public() && !signedIn {
		return RouteSignIn
	}
	return route
}

// Navigator moves between screens.
type Navigator interface {
	Navigate(route Route)
}

// History is an in-memory screen stack.
type History struct {
	mu       sync.Mutex
	stack    []Route
	fallback Route
}

// NewHistory starts on initial. Going back from the first screen lands on /home.
func NewHistory(initial Route) *History {
	return &History{stack: []Route{initial}, fallback: RouteHome}
}

// Navigate pushes route, or pops for RouteBack.
func (h *History) Navigate(route Route) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if route == RouteBack {
		if len(h.stack) > 1 {
			h.stack = h.stack[:len(h.stack)-1]
		} else {
			h.stack = []Route{h.fallback}
		}
	} else if h.stack[len(h.stack)-1] != route {
		h.stack = append(h.stack, route)
	}
}

// Reset discards the history and starts over on route.
func (h *History) Reset(route Route) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stack = []Route{route}
}

// Current is the screen on top of the stack.
func (h *History) Current() Route {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stack[len(h.stack)-1]
}

// Depth is the number of screens on the stack.
func (h *History) Depth() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.stack)
}
