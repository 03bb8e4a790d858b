// Package api provides the HTTP API server and handlers for contribution charts.
package api

import (
	"cmp"
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/contribgraph/contribgraph-server/internal/observability"
	"github.com/contribgraph/contribgraph-server/internal/ratelimit"
	"github.com/contribgraph/contribgraph-server/internal/service"
)

// Pinger reports whether a backing component is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options holds HTTP-level settings.
type Options struct {
	ChartMaxAge time.Duration
	DataMaxAge  time.Duration
	CORSOrigins []string
	// RateLimiter limits /api requests per client IP. Nil disables limiting.
	RateLimiter *ratelimit.KeyedRateLimiter
	Version     string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	charts *service.ChartService
	cache  Pinger
	opts   Options
	router *chi.Mux
	api    huma.API
	logger *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
// cache may be nil.
func NewServer(charts *service.ChartService, cache Pinger, opts Options, logger *slog.Logger) *Server {
	opts.ChartMaxAge = cmp.Or(opts.ChartMaxAge, DefaultChartMaxAge)
	opts.DataMaxAge = cmp.Or(opts.DataMaxAge, DefaultDataMaxAge)
	opts.Version = cmp.Or(opts.Version, "dev")
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	s := &Server{
		charts: charts,
		cache:  cache,
		opts:   opts,
		router: chi.NewRouter(),
		logger: logger,
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Contribution Graph API", opts.Version)
	humaConfig.Info.Description = "Renders GitHub contribution heat maps as SVG or PNG."
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	s.registerRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for tests.
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(observability.Middleware)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	if s.opts.RateLimiter != nil {
		s.router.Use(RateLimitMiddleware(s.opts.RateLimiter, "/api/", s.logger))
	}
}

// registerRoutes configures all HTTP routes.
func (s *Server) registerRoutes() {
	s.registerHealthRoutes()
	s.registerChartRoutes()
	s.registerDataRoutes()
	s.registerThemeRoutes()

	// Prometheus speaks its own exposition format.
	s.router.Handle("/metrics", observability.Handler())
}
