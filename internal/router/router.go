// Package router keeps the current screen and guards routes that need a
// signed-in user.
package router

import (
	"fmt"
	"log/slog"
	"sync"
)

// Route paths.
const (
	PathHome    = "/"
	PathLogin   = "/login"
	PathProfile = "/profile"
)

// AuthChecker reports whether a user is signed in.
type AuthChecker interface {
	IsAuthenticated() bool
}

// Router tracks navigation. It is safe for concurrent use.
type Router struct {
	auth   AuthChecker
	logger *slog.Logger

	mu        sync.Mutex
	current   string
	history   []string
	protected map[string]bool
	listeners []func(string)
}

// New creates a router positioned at the home route. The profile route is
// protected.
func New(auth AuthChecker, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		auth:      auth,
		logger:    logger,
		current:   PathHome,
		history:   []string{PathHome},
		protected: map[string]bool{PathProfile: true},
	}
}

// Navigate moves to path. A protected path without a signed-in user lands
// on the login route instead. It returns an error only for unknown paths.
func (r *Router) Navigate(path string) error {
	switch path {
	case PathHome, PathLogin, PathProfile:
	default:
		return fmt.Errorf("unknown route %q", path)
	}

	r.mu.Lock()
	if r.protected[path] && !r.auth.IsAuthenticated() {
		r.logger.Info("redirecting unauthenticated navigation", "from", path, "to", PathLogin)
		path = PathLogin
	}
	r.current = path
	r.history = append(r.history, path)
	listeners := append([]func(string){}, r.listeners...)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(path)
	}
	return nil
}

// Current returns the active route.
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// History returns every route visited, oldest first.
func (r *Router) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.history...)
}

// OnNavigate registers fn to run after every navigation with the route that
// was actually entered.
func (r *Router) OnNavigate(fn func(path string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}
