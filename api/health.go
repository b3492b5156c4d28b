package api

import (
	"errors"
	"net/http"

	"github.com/fbcdesk/fbcdesk/internal/catalog"
	"github.com/fbcdesk/fbcdesk/internal/docstore"
	"github.com/fbcdesk/fbcdesk/internal/log"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	registry *catalog.Registry
	store    docstore.Store
	logger   log.Logger
}

// NewHealthHandler creates a new health handler.
// store is the document store probed by readiness checks.
func NewHealthHandler(registry *catalog.Registry, store docstore.Store, logger log.Logger) *HealthHandler {
	return &HealthHandler{registry: registry, store: store, logger: logger}
}

// RegisterRoutes registers health routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.liveness)
	mux.HandleFunc("GET /ready", h.readiness)
}

// liveness is a liveness probe endpoint.
// Returns 200 OK if the process is alive.
func (h *HealthHandler) liveness(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// readiness is a readiness probe endpoint.
// Returns 200 OK if the document store is reachable. The probe reads the
// first registered dataset; a missing object still proves the backend
// answered, so ErrNotFound counts as ready.
func (h *HealthHandler) readiness(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		http.Error(w, "document store not configured", http.StatusServiceUnavailable)
		return
	}
	descriptors := h.registry.All()
	if len(descriptors) > 0 {
		if _, err := h.store.Read(r.Context(), descriptors[0].StoreKey); err != nil && !errors.Is(err, docstore.ErrNotFound) {
			h.logger.Error("readiness check failed", "error", err)
			http.Error(w, "document store not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
