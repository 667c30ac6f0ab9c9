// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/newthinker/finboard/internal/api/handler/web"
	"github.com/newthinker/finboard/internal/api/middleware"
	"github.com/newthinker/finboard/internal/api/response"
	"github.com/newthinker/finboard/internal/api/session"
	"github.com/newthinker/finboard/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server represents the HTTP server for finboard
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
	sessions   *session.Store
	metrics    *metrics.Registry
	version    string
}

// Config holds server configuration
type Config struct {
	Host         string
	Port         int
	TemplatesDir string
	MetricsPath  string // empty disables the metrics endpoint
	Version      string
}

// Dependencies are the collaborators the server wires into its handlers.
type Dependencies struct {
	Web      web.Deps
	Sessions *session.Store
	Metrics  *metrics.Registry // optional
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Sessions == nil {
		return nil, fmt.Errorf("session store required")
	}

	mux := http.NewServeMux()

	s := &Server{
		logger:   logger,
		mux:      mux,
		sessions: deps.Sessions,
		metrics:  deps.Metrics,
		version:  cfg.Version,
	}

	// Set up routes
	if err := s.setupRoutes(cfg, deps); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	var handler http.Handler = metrics.LoggingMiddleware(logger)(mux)
	if deps.Metrics != nil {
		handler = metrics.HTTPMiddleware(deps.Metrics)(handler)
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config, deps Dependencies) error {
	// Web UI routes
	if deps.Web.Logger == nil {
		deps.Web.Logger = s.logger
	}
	if deps.Web.Gauge == nil && deps.Metrics != nil {
		deps.Web.Gauge = deps.Metrics
	}
	webHandler, err := web.NewHandler(cfg.TemplatesDir, deps.Web)
	if err != nil {
		return fmt.Errorf("creating web handler: %w", err)
	}
	webHandler.Register(s.mux, middleware.Sessions(s.sessions))

	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	if deps.Metrics != nil && cfg.MetricsPath != "" {
		s.mux.Handle("GET "+cfg.MetricsPath, promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	return nil
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server and releases every session.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	err := s.httpServer.Shutdown(ctx)
	s.sessions.Close()
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{
		Status:   "ok",
		Version:  s.version,
		Sessions: s.sessions.Len(),
	})
}
