// Package server exposes upload sessions and history over HTTP.
package server

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/ukaji3/sheetchart-go/internal/logging"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/history"
	"github.com/ukaji3/sheetchart-go/pkg/sheetchart/session"
)

// SessionCookie names the cookie that identifies a browser session.
const SessionCookie = "sheetchart_session"

// Session limits used when Options leaves them unset.
const (
	DefaultSessionTTL  = 30 * time.Minute
	DefaultMaxSessions = 1000
)

// Options configures a Server.
type Options struct {
	// AuthToken is the bearer token required on /api routes. Empty disables
	// the check.
	AuthToken      string
	MaxUploadBytes int64
	Parse          sheetchart.Options
	Logger         *logging.Logger
	// SessionTTL is how long an idle session is kept.
	SessionTTL     time.Duration
	// MaxSessions caps live sessions. The least recently used one is
	// dropped to make room for a new one.
	MaxSessions    int
	// Clock returns the current time. Defaults to time.Now.
	Clock          func() time.Time
}

// client is the per-browser state: one upload view and its replay mailbox.
type client struct {
	controller *session.Controller
	handoff    *session.Handoff
	lastSeen   time.Time
}

// Server serves the HTTP API.
type Server struct {
	router  *chi.Mux
	history *history.Store
	opts    Options

	mu      sync.Mutex
	clients map[string]*client
}

// New creates a Server backed by store.
func New(store *history.Store, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = logging.New(logging.LevelInfo)
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 20 << 20
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = DefaultMaxSessions
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	s := &Server{
		router:  chi.NewRouter(),
		history: store,
		opts:    opts,
		clients: make(map[string]*client),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(s.requireAuth)

		r.Post("/upload", s.handleUpload)

		r.Get("/session", s.handleSession)
		r.Patch("/session/selection", s.handleSelection)
		r.Get("/session/chart.png", s.handleChartPNG)
		r.Get("/session/chart.pdf", s.handleChartPDF)
		r.Get("/session/original", s.handleOriginal)

		r.Get("/history", s.handleHistoryList)
		r.Delete("/history", s.handleHistoryClear)
		r.Get("/history/latest", s.handleHistoryLatest)
		r.Delete("/history/{index}", s.handleHistoryDelete)
		r.Post("/history/{index}/reload", s.handleHistoryReload)
		r.Get("/history/{index}/download", s.handleHistoryDownload)
	})
}

// IsAuthenticated reports whether r carries the configured bearer token.
func (s *Server) IsAuthenticated(r *http.Request) bool {
	if s.opts.AuthToken == "" {
		return true
	}
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, prefix) {
		return false
	}
	got := strings.TrimSpace(strings.TrimPrefix(h, prefix))
	return subtle.ConstantTimeCompare([]byte(got), []byte(s.opts.AuthToken)) == 1
}

func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.IsAuthenticated(r) {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sessionID(r *http.Request) string {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	parsed, err := uuid.Parse(c.Value)
	if err != nil {
		return ""
	}
	return parsed.String()
}

// lookupClient returns the live client bound to the request's session
// cookie. It never creates one, so read-only routes cannot grow the table.
func (s *Server) lookupClient(r *http.Request) (*client, bool) {
	id := sessionID(r)
	if id == "" {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touchLocked(id, s.opts.Clock())
}

// clientFor returns the client bound to the request's session cookie,
// creating one and setting the cookie when needed. Only routes that load
// data into a session call it.
func (s *Server) clientFor(w http.ResponseWriter, r *http.Request) *client {
	id := sessionID(r)
	now := s.opts.Clock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if cl, ok := s.touchLocked(id, now); ok {
		return cl
	}
	if id == "" {
		id = uuid.NewString()
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	s.evictLocked(now)
	cl := &client{
		controller: session.New(s.history, session.Options{Parse: s.opts.Parse, Logger: s.opts.Logger}),
		handoff:    session.NewHandoff(),
		lastSeen:   now,
	}
	s.clients[id] = cl
	s.opts.Logger.Debug("server: new session %s (%d live)", id, len(s.clients))
	return cl
}

// touchLocked returns the client for id and refreshes its last-seen time.
// An expired client is dropped instead. Callers must hold s.mu.
func (s *Server) touchLocked(id string, now time.Time) (*client, bool) {
	cl, ok := s.clients[id]
	if !ok {
		return nil, false
	}
	if now.Sub(cl.lastSeen) > s.opts.SessionTTL {
		delete(s.clients, id)
		return nil, false
	}
	cl.lastSeen = now
	return cl, true
}

// evictLocked drops expired clients, then the least recently used ones
// until a new client fits. Callers must hold s.mu.
func (s *Server) evictLocked(now time.Time) {
	for id, cl := range s.clients {
		if now.Sub(cl.lastSeen) > s.opts.SessionTTL {
			delete(s.clients, id)
		}
	}
	for len(s.clients) >= s.opts.MaxSessions {
		oldest := ""
		var oldestSeen time.Time
		for id, cl := range s.clients {
			if oldest == "" || cl.lastSeen.Before(oldestSeen) {
				oldest, oldestSeen = id, cl.lastSeen
			}
		}
		delete(s.clients, oldest)
		s.opts.Logger.Debug("server: evicted session %s", oldest)
	}
}

// SessionCount returns the number of live sessions.
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}
