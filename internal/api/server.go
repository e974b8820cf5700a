// Package api provides the HTTP API server and handlers for BookLens.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/booklens/booklens-server/internal/http/response"
	"github.com/booklens/booklens-server/internal/ratelimit"
	"github.com/booklens/booklens-server/internal/store"
)

// Version is reported by the root endpoint and the OpenAPI document.
const Version = "1.0.0"

// Options configures the HTTP surface.
type Options struct {
	// AllowedOrigins lists the origins CORS accepts.
	AllowedOrigins []string
	// AuthRateLimiter throttles the public auth endpoints per client IP.
	// Nil disables throttling.
	AuthRateLimiter *ratelimit.KeyedRateLimiter
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store           store.Gateway
	services        *Services
	router          *chi.Mux
	api             huma.API
	logger          *slog.Logger
	authRateLimiter *ratelimit.KeyedRateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(gw store.Gateway, services *Services, opts Options, logger *slog.Logger) *Server {
	s := &Server{
		store:           gw,
		services:        services,
		router:          chi.NewRouter(),
		logger:          logger,
		authRateLimiter: opts.AuthRateLimiter,
	}

	s.setupMiddleware(opts)

	humaConfig := huma.DefaultConfig("BookLens API", Version)
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	s.api = humachi.New(s.router, humaConfig)
	RegisterErrorHandler(logger)

	s.registerRoutes()

	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "Endpoint not found", s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w, s.logger)
	})

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware(opts Options) {
	s.router.Use(requestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if s.authRateLimiter != nil {
		s.router.Use(authRateLimit(s.authRateLimiter, s.logger))
	}
	s.router.Use(authMiddleware(s.services.Auth))
}

// registerRoutes wires every operation onto the huma API.
func (s *Server) registerRoutes() {
	s.registerRootRoutes()
	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerBookRoutes()
	s.registerReadingSessionRoutes()
	s.registerPostingRoutes()
}
