// Package web provides the HTTP server and handlers for browsing table views.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/gridview/internal/config"
	"github.com/JonMunkholm/gridview/internal/core"
	"github.com/JonMunkholm/gridview/internal/metrics"
	webmw "github.com/JonMunkholm/gridview/internal/web/middleware"
)

// Server is the HTTP server for the table view application.
type Server struct {
	service *core.Service
	cfg     *config.Config
	metrics *metrics.Metrics
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a new Server instance. m may be nil to disable metrics.
func NewServer(service *core.Service, cfg *config.Config, m *metrics.Metrics) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		metrics: m,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(webmw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	if s.metrics != nil {
		s.router.Use(s.metrics.Middleware)
	}
	s.router.Use(webmw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	if s.cfg.Server.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.cfg.Server.RequestTimeout))
	}

	// Security hardening
	s.router.Use(s.securityHeaders)

	if s.cfg.Rate.Enabled {
		limiter := webmw.NewRateLimiter(s.cfg.Rate.RequestsPerMinute, s.cfg.Rate.Burst)
		s.router.Use(limiter.Middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	if s.metrics != nil && s.cfg.Metrics.Enabled {
		s.router.Handle("/metrics", s.metrics.Handler())
	}

	// Pages
	s.router.Get("/", s.handleDashboard)
	s.router.Get("/table/{tableKey}", s.handleTableView)

	// Exports get their own, tighter, per-IP budget.
	exportLimit := func(next http.Handler) http.Handler { return next }
	if s.cfg.Rate.Enabled {
		exportLimit = webmw.NewRateLimiter(s.cfg.Rate.ExportLimit, s.cfg.Rate.ExportLimit).Middleware
	}

	// API routes
	s.router.Route("/api", func(r chi.Router) {
		r.Use(webmw.APIKeyAuth(&s.cfg.Security))

		// Stateless views
		r.Get("/tables", s.handleListTables)
		r.Get("/tables/{tableKey}/view", s.handleQueryView)
		r.With(exportLimit).Get("/tables/{tableKey}/export", s.handleExportData)
		r.Post("/tables/{tableKey}/refresh", s.handleRefreshTable)
		r.Get("/exports", s.handleExportStatus)

		// View sessions
		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", s.handleListSessions)
			r.Post("/", s.handleOpenSession)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", s.handleSessionView)
				r.Delete("/", s.handleCloseSession)
				r.Post("/sort", s.handleSessionSort)
				r.Delete("/sort", s.handleSessionClearSort)
				r.Put("/filters/{column}", s.handleSessionFilter)
				r.Delete("/filters", s.handleSessionClearFilters)
				r.Put("/page", s.handleSessionPage)
				r.Put("/page-size", s.handleSessionPageSize)
				r.Put("/pagination", s.handleSessionPagination)
				r.With(exportLimit).Get("/export", s.handleSessionExport)
			})
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout, // 0 keeps long exports alive
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func (s *Server) securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Prevent clickjacking
		w.Header().Set("X-Frame-Options", "DENY")

		// Pages carry inline styles only; nothing else is loaded.
		if s.cfg.Security.EnableCSP {
			w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
		}

		// Control referrer information
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

// writeError writes a JSON error response for failures that have no
// underlying error value, such as a missing path parameter.
func writeError(w http.ResponseWriter, status int, message string) {
	slog.Warn("http error", "status", status, "message", message)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q}`, message)
}

// writeJSON encodes v as JSON with the given status.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
