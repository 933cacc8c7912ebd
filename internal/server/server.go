// Package server hosts the HTTP surface: module routes mounted under a
// versioned API prefix, core health and module listing endpoints, and the
// shared middleware chain (sessions, metrics, rate limiting).
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/aldenmeer/gridline/internal/registry"
	"github.com/aldenmeer/gridline/internal/session"
	"github.com/aldenmeer/gridline/internal/version"
)

// Server is the main Gridline server.
type Server struct {
	httpServer *http.Server
	registry   *registry.Registry
	sessions   *session.Manager
	logger     *zap.Logger
	mux        *http.ServeMux
}

// New creates a new Server instance. rateLimit is requests per second per
// client; zero disables limiting.
func New(addr string, reg *registry.Registry, sessions *session.Manager, rateLimit float64, logger *zap.Logger) *Server {
	mux := http.NewServeMux()

	// Sessions are attached per route in mountModuleRoutes: regular routes
	// hold the session lock for the request, streaming routes do not.
	var handler http.Handler = mux
	if rateLimit > 0 {
		handler = rateLimitMiddleware(rateLimit, handler)
	}
	handler = metricsMiddleware(handler)

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		registry: reg,
		sessions: sessions,
		logger:   logger,
		mux:      mux,
	}

	s.registerCoreRoutes()
	s.mountModuleRoutes()

	return s
}

// registerCoreRoutes sets up routes that are always available.
func (s *Server) registerCoreRoutes() {
	s.mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	s.mux.HandleFunc("GET /api/v1/modules", s.handleModules)
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

// mountModuleRoutes registers all module routes under /api/v1/{module}/.
func (s *Server) mountModuleRoutes() {
	allRoutes := s.registry.AllRoutes()
	for moduleName, routes := range allRoutes {
		for _, route := range routes {
			pattern := fmt.Sprintf("%s /api/v1/%s%s", route.Method, moduleName, route.Path)
			handler := http.Handler(route.Handler)
			if route.Streaming {
				handler = s.sessions.StreamingMiddleware(handler)
			} else {
				handler = s.sessions.Middleware(handler)
			}
			s.mux.Handle(pattern, handler)
			s.logger.Debug("mounted route",
				zap.String("module", moduleName),
				zap.String("pattern", pattern),
				zap.Bool("streaming", route.Streaming),
			)
		}
	}
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the full middleware-wrapped handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// handleHealth returns the server health status, including per-module
// checks for modules that expose them.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	checks := s.registry.HealthChecks(r.Context())
	healthy := true
	for _, c := range checks {
		if !c.Healthy {
			healthy = false
			break
		}
	}

	status := "ok"
	code := http.StatusOK
	if !healthy {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Gridline-Version", version.Short())
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"status":  status,
		"service": "gridline",
		"version": version.Map(),
		"modules": checks,
	})
}

// handleModules returns the list of registered modules.
func (s *Server) handleModules(w http.ResponseWriter, r *http.Request) {
	modules := s.registry.All()
	type moduleResponse struct {
		Name        string `json:"name"`
		Version     string `json:"version"`
		Description string `json:"description"`
	}
	info := make([]moduleResponse, 0, len(modules))
	for _, m := range modules {
		mi := m.Info()
		info = append(info, moduleResponse{
			Name:        mi.Name,
			Version:     mi.Version,
			Description: mi.Description,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Gridline-Version", version.Short())
	json.NewEncoder(w).Encode(info)
}
