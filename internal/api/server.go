// Package api provides the HTTP API server and handlers for the Glyphkit backend.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/glyphkit/glyphkit-server/internal/config"
	"github.com/glyphkit/glyphkit-server/internal/ratelimit"
	"github.com/glyphkit/glyphkit-server/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store            store.Store
	services         *Services
	router           *chi.Mux
	api              huma.API
	logger           *slog.Logger
	loginRateLimiter *ratelimit.KeyedRateLimiter
	pluginToken      string
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(st store.Store, services *Services, cfg *config.Config, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	humaConfig := huma.DefaultConfig("Glyphkit API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
		// Static shared token presented by the Figma plugin.
		"pluginToken": {
			Type: "apiKey",
			In:   "header",
			Name: "Authorization",
		},
	}

	api := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:            st,
		services:         services,
		router:           router,
		api:              api,
		logger:           logger,
		loginRateLimiter: ratelimit.New(1, 10),
		pluginToken:      cfg.Auth.PluginAPIToken,
	}

	s.registerHealthRoutes()
	s.registerAuthRoutes()
	s.registerCategoryRoutes()
	s.registerIconRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
