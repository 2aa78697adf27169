// Package http is the JSON API in front of the ledger, goal, report and
// preference services.
package http

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"tabungan/internal/i18n"
	applog "tabungan/internal/log"
	"tabungan/internal/middleware/ratelimit"
	"tabungan/internal/middleware/trace"
	"tabungan/internal/services"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services are the application services the API exposes.
type Services struct {
	Auth    *services.AuthService
	Ledger  *services.LedgerService
	Reports *services.ReportService
	Prefs   *services.PreferenceService
	Store   Pinger
}

type Options struct {
	// AuthRateLimit is the number of /api/auth requests one client IP may
	// make per minute.
	AuthRateLimit int
	// AdminUsernames may list every account.
	AdminUsernames []string
	Logger         *applog.Logger
}

// Server is an http.Server with the API routes mounted.
type Server struct {
	http.Server

	svc          Services
	admins       map[string]bool
	authLimiter  *ratelimit.Limiter
	logger       *applog.Logger
	startedAt    time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server.
func NewServer(addr string, svc Services, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.WithComponent(applog.ComponentHTTP)
	}

	s := &Server{
		svc:         svc,
		admins:      make(map[string]bool, len(opts.AdminUsernames)),
		authLimiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.AuthRateLimit}),
		logger:      logger,
		startedAt:   time.Now(),
	}
	for _, u := range opts.AdminUsernames {
		s.admins[strings.ToLower(u)] = true
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	limited := s.authLimiter.Middleware(extractClientIP, func(w http.ResponseWriter, r *http.Request) {
		s.logger.WarnContext(r.Context(), "rate limit exceeded",
			applog.FieldClientIP, extractClientIP(r),
			applog.FieldPath, r.URL.Path,
			"hits", s.authLimiter.Hits(),
		)
		s.writeError(w, r, errRateLimited, i18n.ErrRateLimited)
	})
	mux.Handle("POST /api/auth/signup", limited(http.HandlerFunc(s.handleSignUp)))
	mux.Handle("POST /api/auth/login", limited(http.HandlerFunc(s.handleLogin)))
	mux.Handle("POST /api/auth/logout", limited(s.requireAuth(s.handleLogout)))

	mux.Handle("GET /api/profile", s.requireAuth(s.handleGetProfile))
	mux.Handle("PUT /api/profile", s.requireAuth(s.handleUpdateProfile))
	mux.Handle("GET /api/admin/users", s.requireAuth(s.handleListUsers))

	mux.Handle("GET /api/entries", s.requireAuth(s.handleListEntries))
	mux.Handle("POST /api/entries", s.requireAuth(s.handleCreateEntry))
	mux.Handle("PUT /api/entries/{id}", s.requireAuth(s.handleUpdateEntry))
	mux.Handle("DELETE /api/entries/{id}", s.requireAuth(s.handleDeleteEntry))

	mux.Handle("GET /api/goals", s.requireAuth(s.handleListGoals))
	mux.Handle("POST /api/goals", s.requireAuth(s.handleCreateGoal))
	mux.Handle("GET /api/goals/highlight", s.requireAuth(s.handleHighlight))
	mux.Handle("PUT /api/goals/{id}", s.requireAuth(s.handleUpdateGoal))
	mux.Handle("DELETE /api/goals/{id}", s.requireAuth(s.handleDeleteGoal))

	mux.Handle("GET /api/reports/summary", s.requireAuth(s.handleSummary))

	mux.Handle("GET /api/preferences/{key}", s.requireAuth(s.handleGetPreference))
	mux.Handle("PUT /api/preferences/{key}", s.requireAuth(s.handleSetPreference))

	mux.HandleFunc("POST /api/calculator", s.handleCalculator)

	var h http.Handler = mux
	h = withSecurityHeaders(h)
	h = s.recoverPanics(h)
	h = applog.RequestMiddleware(s.logger, trace.RequestID, extractClientIP)(h)
	return trace.Middleware(h)
}

// recoverPanics turns a handler panic into a 500. The panic is logged at
// error level, which also reports it to Sentry when configured.
func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				applog.FromContext(r.Context()).ErrorContext(r.Context(), "handler panic",
					"panic", v,
					applog.FieldPath, r.URL.Path,
				)
				s.writeError(w, r, errPanic, i18n.ErrServer)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"uptime": time.Since(s.startedAt).Round(time.Second).String(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if s.svc.Store != nil {
		if err := s.svc.Store.Ping(ctx); err != nil {
			applog.FromContext(ctx).WarnContext(ctx, "readiness check failed", applog.FieldError, err.Error())
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"store":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready", "store": "ok"})
}

// Shutdown gracefully shuts down the server and the rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.authLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
