// Package http serves the web UI: full pages for auth and the
// dashboard, HTMX partials for stats, history, and analytics.
package http

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"budget/internal/auth"
	"budget/internal/cache"
	"budget/internal/core"
	"budget/internal/ledger"
	applog "budget/internal/log"
	"budget/internal/middleware/ratelimit"
	"budget/internal/middleware/security"
	"budget/internal/middleware/trace"
	appweb "budget/web"
)

// Config tunes the server's cache and rate limit behaviour.
type Config struct {
	CacheTTL           time.Duration
	CacheMaxSize       int
	RateLimitPerMinute int
}

func DefaultServerConfig() Config {
	return Config{
		CacheTTL:           5 * time.Minute,
		CacheMaxSize:       256,
		RateLimitPerMinute: 60,
	}
}

type Server struct {
	http.Server

	templates *template.Template
	auth      *auth.Service
	ledger    *ledger.Service

	// Rendered partials keyed by userID + ":" + partial name,
	// invalidated on every ledger mutation.
	partialCache *cache.LRU[string]
	janitor      *cache.Janitor

	limiter *ratelimit.Limiter
	tracer  *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes, middleware, and templates, returning a
// ready-to-run http.Server.
func NewServer(addr string, authSvc *auth.Service, ledgerSvc *ledger.Service, cfg Config) *Server {
	if cfg.CacheMaxSize <= 0 {
		cfg = DefaultServerConfig()
	}

	mux := http.NewServeMux()

	s := &Server{
		auth:         authSvc,
		ledger:       ledgerSvc,
		partialCache: cache.NewLRU[string](cfg.CacheMaxSize, cfg.CacheTTL),
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: cfg.RateLimitPerMinute,
		}),
		tracer: trace.NewMiddleware(clientIP),
	}

	s.janitor = cache.NewJanitor(s.partialCache)
	s.janitor.Start(10 * time.Minute)

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Warn("Failed parsing templates", "error", err)
	}
	s.templates = t

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		slog.Warn("Failed to mount embedded static FS", "error", err)
	}

	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/login", s.handleLogin)
	mux.HandleFunc("/register", s.handleRegister)
	mux.HandleFunc("/logout", s.handleLogout)
	mux.HandleFunc("/dashboard", s.handleDashboard)
	mux.HandleFunc("/transactions", s.handleCreateTransaction)
	mux.HandleFunc("/transactions/delete", s.handleDeleteTransaction)
	mux.HandleFunc("/ui/stats", s.handleStats)
	mux.HandleFunc("/ui/transactions", s.handleTransactionList)
	mux.HandleFunc("/ui/analytics/monthly", s.handleAnalyticsMonthly)
	mux.HandleFunc("/ui/analytics/categories", s.handleAnalyticsCategories)
	mux.HandleFunc("/ui/analytics/expenses", s.handleAnalyticsExpenses)
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limitPosts := s.limiter.Middleware(clientIP, nil)
	logger := applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)

	var handler http.Handler = mux
	handler = onlyPosts(limitPosts)(handler)
	handler = headers.Middleware(handler)
	handler = applog.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	})(handler)
	handler = applog.Middleware(logger)(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// onlyPosts applies mw to POST requests and passes everything else
// through untouched. Mutating endpoints are the rate limited surface.
func onlyPosts(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		limited := mw(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPost {
				limited.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Shutdown stops the background goroutines, then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.janitor.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// currentUser resolves the active session, or redirects to /login.
func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) (core.User, bool) {
	user, ok := s.auth.Current(r.Context())
	if !ok {
		if r.Header.Get("HX-Request") == "true" {
			// Full-page redirect from inside a partial swap.
			w.Header().Set("HX-Redirect", "/login")
			w.WriteHeader(http.StatusOK)
		} else {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
		}
		return core.User{}, false
	}
	return user, true
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "template", name)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			applog.FieldError, err.Error(),
			applog.FieldPath, r.URL.Path,
			applog.FieldComponent, applog.ComponentTemplate)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) partialKey(userID, partial string) string {
	return userID + ":" + partial
}

// invalidatePartials drops every cached report partial for the user.
// Called after each ledger mutation.
func (s *Server) invalidatePartials(userID string) {
	for _, partial := range []string{"stats", "monthly", "categories", "expenses"} {
		s.partialCache.Delete(s.partialKey(userID, partial))
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// handleMetrics exposes plain-text counters for scraping.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	m := s.tracer.GetMetrics()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "http_requests_total %d\n", m.TotalRequests)
	fmt.Fprintf(w, "http_response_time_us %d\n", m.AverageResponseTime)
	fmt.Fprintf(w, "ratelimit_active_clients %d\n", s.limiter.ActiveClients())
	fmt.Fprintf(w, "partial_cache_entries %d\n", s.partialCache.Size())
}
