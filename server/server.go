// Package server wires the chi router, the middleware chain and the HTTP
// server lifecycle of the medicine info API.
package server

import (
	"context"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/kairomed/medicine-info-api/config"
	"github.com/kairomed/medicine-info-api/handlers"
	"github.com/kairomed/medicine-info-api/logging"
	"github.com/kairomed/medicine-info-api/metrics"
)

// pprofAddr serves the default mux with pprof handlers in dev only
const pprofAddr = "localhost:6060"

// Server represents the HTTP server
type Server struct {
	server  *http.Server
	router  chi.Router
	handler *handlers.MedicineHandler
	config  *config.Config
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, handler *handlers.MedicineHandler) *Server {
	router := chi.NewRouter()

	s := &Server{
		server: &http.Server{
			Handler:           router,
			Addr:              cfg.ListenAddr(),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			// The AI fallback may hold a request for up to AI_TIMEOUT
			WriteTimeout:   cfg.AITimeout + 10*time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: int(cfg.MaxHeaderSize),
		},
		router:  router,
		handler: handler,
		config:  cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures all middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(RealIPMiddleware)
	s.router.Use(logging.LoggingMiddleware(logging.Logger()))
	s.router.Use(middleware.RedirectSlashes)
	s.router.Use(middleware.Recoverer)
	s.router.Use(RequestSizeMiddleware(s.config))
	s.router.Use(metrics.Metrics)
	s.router.Use(newCORS(s.config.CORSAllowedOrigins).Handler)
}

// newCORS allows every method and header for the configured origins
func newCORS(origins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodHead,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"*"},
		MaxAge:         300,
	})
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Post("/medicine/info", s.handler.Info)
	s.router.Get("/medicine/alternatives", s.handler.Alternatives)
	s.router.Get("/health", s.handler.Health)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondWithError(w, http.StatusNotFound, "Route not found")
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		handlers.RespondWithError(w, http.StatusMethodNotAllowed, "Method not allowed on "+r.URL.Path)
	})
}

// Handler exposes the router, mostly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the server. It blocks until the server stops and returns
// http.ErrServerClosed after a graceful shutdown.
func (s *Server) Start() error {
	if s.config.Env == config.EnvDevelopment {
		s.startProfilingServer()
	}

	logging.Info("Starting server", "addr", s.server.Addr, "env", string(s.config.Env))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	if err := s.server.Shutdown(ctx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
		if err := s.server.Close(); err != nil {
			logging.Error("Server close error", "error", err)
			return err
		}
	}

	logging.Info("Server shutdown complete")
	return nil
}

// startProfilingServer starts the pprof profiling server in development mode
func (s *Server) startProfilingServer() {
	go func() {
		logging.Info("Profiling server started", "url", "http://"+pprofAddr+"/debug/pprof/")
		if err := http.ListenAndServe(pprofAddr, nil); err != nil {
			logging.Warn("Profiling server failed", "error", err)
		}
	}()
}
