// Package web provides the HTTP server and handlers for the quiz API.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/JonMunkholm/quizbank/internal/config"
	"github.com/JonMunkholm/quizbank/internal/core"
	mw "github.com/JonMunkholm/quizbank/internal/web/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server is the HTTP server for the quiz API.
type Server struct {
	service  *core.Service
	cfg      *config.Config
	registry *prometheus.Registry
	router   *chi.Mux
	server   *http.Server

	generalLimiter *ipLimiter
	importLimiter  *windowLimiter
}

// NewServer creates a new Server. HTTP metrics are registered with reg, which
// is also what /metrics exposes.
func NewServer(service *core.Service, cfg *config.Config, reg *prometheus.Registry) *Server {
	s := &Server{
		service:  service,
		cfg:      cfg,
		registry: reg,
		router:   chi.NewRouter(),
	}
	if cfg.Rate.Enabled {
		s.generalLimiter = newIPLimiter(cfg.Rate.RequestsPerMinute, time.Minute)
		s.importLimiter = newWindowLimiter(cfg.Rate.ImportRequests, cfg.Rate.ImportWindow)
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Security.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Retry-After", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	s.router.Use(securityHeaders)
	s.router.Use(mw.NewHTTPMetrics(s.registry).Handler)

	if s.generalLimiter != nil {
		s.router.Use(s.generalLimiter.middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/", s.handleRoot)
	s.router.Get("/healthz", s.handleHealth)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	s.router.Route("/api", func(r chi.Router) {
		// Questions
		r.Get("/questions", s.handleListQuestions)
		r.Post("/questions/add", s.handleAddQuestion)
		r.Delete("/questions/delete/{type}/{id}", s.handleDeleteQuestion)

		// Scores and students
		r.Get("/scores", s.handleListScores)
		r.Get("/students", s.handleListStudents)
		r.Get("/students/{studentID}", s.handleGetStudent)
		r.Get("/students/{studentID}/scores", s.handleStudentScores)

		// Spreadsheet imports share one per-client window
		r.Group(func(r chi.Router) {
			if s.importLimiter != nil {
				r.Use(s.importLimiter.middleware)
			}
			r.Post("/questions/import", s.handleImportQuestions)
			r.Post("/scores/import", s.handleImportScores)
		})
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", s.server.Addr)
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown gracefully stops the server and its background limiters.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Close()
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Close stops the rate limiter cleanup goroutines.
func (s *Server) Close() {
	if s.generalLimiter != nil {
		s.generalLimiter.Close()
	}
	if s.importLimiter != nil {
		s.importLimiter.Close()
	}
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		next.ServeHTTP(w, r)
	})
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

// writeError writes a JSON error body with no error code.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
