// Package api provides the HTTP API server and handlers for BookPrepper.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bookprepper/bookprepper-server/internal/auth"
	"github.com/bookprepper/bookprepper-server/internal/service"
)

// Version is reported in the OpenAPI document.
const Version = "1.0.0"

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services groups all business logic services used by the API server.
type Services struct {
	Book       *service.BookService
	Prep       *service.PrepService
	Genre      *service.GenreService
	Feedback   *service.FeedbackService
	Suggestion *service.SuggestionService
	Stats      *service.StatsService
	Search     *service.SearchService // nil when search is disabled
	User       *service.UserService
}

// Options holds the server's non-service dependencies.
type Options struct {
	Verifier       *auth.Verifier
	Limiter        *RateLimiter // nil disables write rate limiting
	Metrics        HTTPMetrics  // nil disables request metrics
	MetricsHandler http.Handler // served at /metrics when set
	Database       Pinger
	AllowedOrigins []string
	Logger         *slog.Logger
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services *Services
	opts     Options
	router   *chi.Mux
	api      huma.API
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services *Services, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		services: services,
		opts:     opts,
		router:   chi.NewRouter(),
		logger:   opts.Logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, mainly for OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	origins := s.opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(securityHeaders)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(metricsMiddleware(s.opts.Metrics))
	s.router.Use(RateLimitMiddleware(s.opts.Limiter, s.logger))
	s.router.Use(authMiddleware(s.opts.Verifier, s.logger))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	humaConfig := huma.DefaultConfig("BookPrepper API", Version)
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler()

	if s.opts.MetricsHandler != nil {
		s.router.Handle("/metrics", s.opts.MetricsHandler)
	}

	s.registerHealthRoutes()
	s.registerCatalogRoutes()
	s.registerFeedbackRoutes()
	s.registerSuggestionRoutes()
	s.registerAdminCatalogRoutes()
	s.registerModerationRoutes()
}
