// Package api provides the HTTP server: the HTML catalog pages, the JSON
// books API and the operational endpoints.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/listenupapp/bookshelf/internal/logger"
	"github.com/listenupapp/bookshelf/internal/metrics"
	"github.com/listenupapp/bookshelf/internal/ratelimit"
)

// Options carries the HTTP-facing settings of the server.
type Options struct {
	Version            string
	CORSOrigins        []string
	RateLimitPerMinute int // 0 disables write limiting
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services *Services
	router   *chi.Mux
	api      huma.API
	limiter  *ratelimit.KeyedRateLimiter
	opts     Options
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services *Services, opts Options, logger *slog.Logger) *Server {
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	s := &Server{
		services: services,
		router:   chi.NewRouter(),
		opts:     opts,
		logger:   logger,
	}
	if opts.RateLimitPerMinute > 0 {
		s.limiter = ratelimit.PerMinute(opts.RateLimitPerMinute)
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(logger.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.GetHead)
	s.router.Use(metrics.Middleware)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// HTML pages.
	s.router.Get("/", s.handleRoot)
	s.router.Get("/library", s.handleLibrary)
	s.router.With(s.limitWrites).Post("/", s.handleCreateFromForm)
	s.router.Post("/recommend", s.handleRecommend)

	s.router.Method(http.MethodGet, "/metrics", metrics.Handler())

	// JSON API, documented at /openapi.json and /docs.
	humaConfig := huma.DefaultConfig("Bookshelf API", s.opts.Version)
	humaConfig.Info.Description = "Book catalog with tag-based recommendations."

	s.router.Group(func(r chi.Router) {
		r.Use(s.limitWrites)
		s.api = humachi.New(r, humaConfig)
	})
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerBookRoutes()
}
