// Package http exposes the JSON API: auth, transaction/category/fixed-expense
// CRUD, the dashboard summary, future-expense projections and the snapshot
// stream.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"grana/internal/auth"
	"grana/internal/cache"
	applog "grana/internal/log"
	"grana/internal/projection"
	"grana/internal/services"
	"grana/internal/subscribe"
)

// Deps carries everything the server needs. The store backends never appear
// here directly; handlers go through the services and the snapshot loader.
type Deps struct {
	Tokens        *auth.TokenService
	Users         services.UserStore
	Transactions  *services.TransactionService
	FixedExpenses *services.FixedExpenseService
	Categories    *services.CategoryService
	Loader        *subscribe.Loader
	Hub           *subscribe.Hub

	// Logger scopes request logging; nil means a fresh http-component logger.
	Logger *applog.Logger

	// CacheTTL bounds how stale a cached projection may be; zero means a
	// 5 minute default.
	CacheTTL time.Duration
}

type Server struct {
	http.Server

	tokens        *auth.TokenService
	users         services.UserStore
	transactions  *services.TransactionService
	fixedExpenses *services.FixedExpenseService
	categories    *services.CategoryService
	loader        *subscribe.Loader
	hub           *subscribe.Hub

	logger      *applog.Logger
	validate    *validator.Validate
	rateLimiter *rateLimiter

	monthCache    *cache.LRUCache[[]projection.MonthProjection]
	categoryCache *cache.LRUCache[[]projection.CategoryProjection]

	stopCacheCleanup chan struct{}
	shutdownOnce     sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	ttl := deps.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	logger := deps.Logger
	if logger == nil {
		logger = applog.New(applog.Config{Component: applog.ComponentHTTP})
	}

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger:           logger,
		tokens:           deps.Tokens,
		users:            deps.Users,
		transactions:     deps.Transactions,
		fixedExpenses:    deps.FixedExpenses,
		categories:       deps.Categories,
		loader:           deps.Loader,
		hub:              deps.Hub,
		validate:         validator.New(validator.WithRequiredStructEnabled()),
		rateLimiter:      newRateLimiter(60),
		monthCache:       cache.NewLRUCache[[]projection.MonthProjection](200, ttl),
		categoryCache:    cache.NewLRUCache[[]projection.CategoryProjection](200, ttl),
		stopCacheCleanup: make(chan struct{}),
	}

	s.monthCache.StartJanitor(10*time.Minute, s.stopCacheCleanup)
	s.categoryCache.StartJanitor(10*time.Minute, s.stopCacheCleanup)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/auth/register", s.withSecurityHeaders(s.handleRegister))
	mux.HandleFunc("POST /api/auth/login", s.withSecurityHeaders(s.handleLogin))

	mux.HandleFunc("POST /api/transactions", s.protected(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions", s.protected(s.handleListTransactions))
	mux.HandleFunc("GET /api/transactions/{id}", s.protected(s.handleGetTransaction))
	mux.HandleFunc("PATCH /api/transactions/{id}", s.protected(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.protected(s.handleDeleteTransaction))

	mux.HandleFunc("POST /api/fixed-expenses", s.protected(s.handleCreateFixedExpense))
	mux.HandleFunc("GET /api/fixed-expenses", s.protected(s.handleListFixedExpenses))
	mux.HandleFunc("PATCH /api/fixed-expenses/{id}", s.protected(s.handleUpdateFixedExpense))
	mux.HandleFunc("DELETE /api/fixed-expenses/{id}", s.protected(s.handleDeleteFixedExpense))

	mux.HandleFunc("POST /api/categories", s.protected(s.handleCreateCategory))
	mux.HandleFunc("GET /api/categories", s.protected(s.handleListCategories))
	mux.HandleFunc("PATCH /api/categories/{id}", s.protected(s.handleUpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", s.protected(s.handleDeleteCategory))

	mux.HandleFunc("GET /api/dashboard", s.protected(s.handleDashboard))
	mux.HandleFunc("GET /api/projections/months", s.protected(s.handleProjectionByMonth))
	mux.HandleFunc("GET /api/projections/categories", s.protected(s.handleProjectionByCategory))
	mux.HandleFunc("GET /api/stream/snapshots", s.protected(s.handleStreamSnapshots))

	// Request ids are generated first so the context logger can carry them.
	s.Server.Handler = withRequestID(applog.Middleware(logger, requestIDFromRequest)(mux))

	return s
}

// withRequestID assigns every request a unique id for tracing.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), requestIDContextKey, generateRequestID())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestIDFromRequest(r *http.Request) string {
	if id, ok := r.Context().Value(requestIDContextKey).(string); ok {
		return id
	}
	return ""
}

// protected chains the security middleware with bearer-token authentication.
func (s *Server) protected(next http.HandlerFunc) http.HandlerFunc {
	return s.withSecurityHeaders(s.requireAuth(next))
}

// withSecurityHeaders adds security headers, rate limiting and request
// logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)

		logger := applog.FromContext(r.Context()).With(applog.FieldClientIP, clientIP)
		r = r.WithContext(applog.IntoContext(r.Context(), logger))

		logger.Info("Request started",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path)

		// Rate limit mutating requests only.
		switch r.Method {
		case http.MethodPost, http.MethodPatch, http.MethodDelete:
			if !s.rateLimiter.allow(clientIP) {
				logger.Warn("Rate limit exceeded",
					applog.FieldMethod, r.Method,
					applog.FieldPath, r.URL.Path)
				w.Header().Set("Retry-After", "60")
				respondError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
				return
			}
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		logger.Info("Request completed",
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, rw.statusCode,
			applog.FieldDuration, time.Since(start).Milliseconds())
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Flush forwards to the wrapped writer so SSE streaming works through the
// middleware chain.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

type contextKey string

const (
	requestIDContextKey contextKey = "request_id"
	ownerIDContextKey   contextKey = "owner_id"
)

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

// invalidateProjections drops every cached projection of one owner.
func (s *Server) invalidateProjections(ownerID int64) {
	prefix := ownerCachePrefix(ownerID)
	s.monthCache.DeletePrefix(prefix)
	s.categoryCache.DeletePrefix(prefix)
}

func ownerCachePrefix(ownerID int64) string {
	return fmt.Sprintf("owner:%d:", ownerID)
}

// Shutdown gracefully shuts down the server and its cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.logger.Info("HTTP server shutting down")
		close(s.stopCacheCleanup)
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
