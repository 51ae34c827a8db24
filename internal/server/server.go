// Package server provides the HTTP server and routing for the wellness API.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/aristath/wellness/internal/config"
	"github.com/aristath/wellness/internal/di"
	actionpackhandlers "github.com/aristath/wellness/internal/modules/actionpack/handlers"
	experimenthandlers "github.com/aristath/wellness/internal/modules/experiment/handlers"
	profilehandlers "github.com/aristath/wellness/internal/modules/profile/handlers"
	whatifhandlers "github.com/aristath/wellness/internal/modules/whatif/handlers"
)

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Config    *config.Config
	Container *di.Container
	Jobs      *di.JobInstances
}

// Server represents the HTTP server
type Server struct {
	router         *chi.Mux
	server         *http.Server
	log            zerolog.Logger
	cfg            *config.Config
	container      *di.Container
	systemHandlers *SystemHandlers
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		log:       cfg.Log.With().Str("component", "server").Logger(),
		cfg:       cfg.Config,
		container: cfg.Container,
	}
	s.systemHandlers = NewSystemHandlers(cfg.Container, cfg.Jobs, cfg.Config.RangeDays, cfg.Log)

	s.setupMiddleware(cfg.Config.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // SSE connections stay open; handlers are bounded by middleware.Timeout
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the root handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware(devMode bool) {
	// Recovery from panics
	s.router.Use(middleware.Recoverer)

	// Request ID
	s.router.Use(middleware.RequestID)

	// Real IP
	s.router.Use(middleware.RealIP)

	// Logging
	s.router.Use(s.loggingMiddleware)

	// CORS
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Compress responses
	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	c := s.container

	s.router.Get("/health", s.systemHandlers.HandleHealth)
	s.router.Handle("/metrics", promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{}))

	s.router.Route("/api", func(r chi.Router) {
		// Event stream stays outside the timeout and rate limit
		r.Get("/events/stream", NewEventsStreamHandler(c.EventBus, s.log).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))
			if s.cfg.APIRPS > 0 {
				limiter, err := NewRateLimiter(s.cfg.APIRPS, 1024)
				if err != nil {
					s.log.Error().Err(err).Msg("Failed to create rate limiter; continuing without it")
				} else {
					r.Use(limiter.Middleware)
				}
			}

			r.Route("/system", func(r chi.Router) {
				r.Get("/status", s.systemHandlers.HandleSystemStatus)
				r.Get("/jobs", s.systemHandlers.HandleListJobs)
				r.Post("/jobs/{name}", s.systemHandlers.HandleTriggerJob)
			})
			r.Get("/sources/status", s.systemHandlers.HandleSourcesStatus)

			actionpackhandlers.NewHandler(c.Synthesizer, c.Source, c.Profiles, c.Metrics, s.cfg.RangeDays, s.log).RegisterRoutes(r)
			experimenthandlers.NewHandler(c.Experiments, c.Synthesizer, c.Source, c.Profiles, s.cfg.RangeDays, s.log).RegisterRoutes(r)
			whatifhandlers.NewHandler(c.WhatIf, c.Source, c.Profiles, s.cfg.RangeDays, s.log).RegisterRoutes(r)
			profilehandlers.NewHandler(c.Profiles, c.EventManager, s.log).RegisterRoutes(r)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		s.container.Metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(ww.Status())).Inc()

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
