// Package api provides the HTTP REST API for fbcdesk.
//
// Endpoints:
//
//	GET  /health           - liveness probe
//	GET  /ready            - readiness probe (document store reachability)
//	GET  /api/datasets     - list registered data sources
//	GET  /api/documents/{name} - raw text of a registered document
//	POST /api/sessions     - create a conversation session
//	POST /api/chat         - synchronous chat (JSON request/response)
//	POST /api/chat/stream  - streaming chat (SSE - Server-Sent Events)
//
// File structure:
//   - server.go: HTTP server setup and lifecycle
//   - middleware.go: HTTP middleware (logging, recovery)
//   - health.go: health check endpoints (/health, /ready)
//   - session.go: in-memory session management
//   - chat.go: chat endpoints (sync + SSE)
//   - datasets.go: dataset listing and document viewer
//   - response.go: JSON response helpers
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/fbcdesk/fbcdesk/internal/catalog"
	"github.com/fbcdesk/fbcdesk/internal/docstore"
	"github.com/fbcdesk/fbcdesk/internal/log"
)

const (
	// DefaultAddr is the default address for the HTTP server.
	DefaultAddr = "127.0.0.1:3400"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout is the timeout for reading request headers.
	// This prevents Slowloris attacks (CWE-400).
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is the maximum duration for writing the response.
	// SSE streaming needs a generous bound.
	WriteTimeout = 2 * time.Minute

	// IdleTimeout is the maximum time to wait for the next request on
	// keep-alive connections.
	IdleTimeout = 2 * time.Minute
)

// Server is the HTTP server for fbcdesk's REST API.
type Server struct {
	mux    *http.ServeMux
	logger log.Logger

	// Handlers
	health   *HealthHandler
	sessions *SessionHandler
	chat     *ChatHandler
	datasets *DatasetHandler
}

// NewServer creates a new HTTP server with all routes registered.
func NewServer(factory SessionFactory, registry *catalog.Registry, store docstore.Store, logger log.Logger) *Server {
	mux := http.NewServeMux()
	manager := NewSessionManager(factory)

	s := &Server{
		mux:      mux,
		logger:   logger,
		health:   NewHealthHandler(registry, store, logger),
		sessions: NewSessionHandler(manager, logger),
		chat:     NewChatHandler(manager, logger),
		datasets: NewDatasetHandler(registry, store, logger),
	}

	s.health.RegisterRoutes(mux)
	s.sessions.RegisterRoutes(mux)
	s.chat.RegisterRoutes(mux)
	s.datasets.RegisterRoutes(mux)

	return s
}

// Handler returns the HTTP handler with middleware applied.
// Middleware order: recovery → logging → handler
func (s *Server) Handler() http.Handler {
	return chain(s.mux, recoveryMiddleware(s.logger), loggingMiddleware(s.logger))
}

// Run starts the HTTP server and blocks until the context is cancelled.
// It handles graceful shutdown when the context is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
