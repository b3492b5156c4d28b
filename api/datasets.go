package api

import (
	"errors"
	"net/http"

	"github.com/fbcdesk/fbcdesk/internal/catalog"
	"github.com/fbcdesk/fbcdesk/internal/docstore"
	"github.com/fbcdesk/fbcdesk/internal/log"
)

// DatasetHandler handles dataset inspection endpoints.
//
// Endpoints:
//   - GET /api/datasets         - List registered datasets
//   - GET /api/documents/{name} - Raw content of a dataset's backing document
type DatasetHandler struct {
	registry *catalog.Registry
	store    docstore.Store
	logger   log.Logger
}

// NewDatasetHandler creates a new dataset handler.
func NewDatasetHandler(registry *catalog.Registry, store docstore.Store, logger log.Logger) *DatasetHandler {
	return &DatasetHandler{registry: registry, store: store, logger: logger}
}

// RegisterRoutes registers dataset routes on the given mux.
func (h *DatasetHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/datasets", h.handleList)
	mux.HandleFunc("GET /api/documents/{name}", h.handleDocument)
}

// DatasetInfo describes one registered dataset.
type DatasetInfo struct {
	Name     string   `json:"name"`
	Kind     string   `json:"kind"`
	Columns  []string `json:"columns,omitempty"`
	Keywords []string `json:"keywords"`
}

// DatasetListResponse is the response body for GET /api/datasets.
type DatasetListResponse struct {
	Datasets []DatasetInfo `json:"datasets"`
}

// handleList lists every dataset in registration order.
func (h *DatasetHandler) handleList(w http.ResponseWriter, _ *http.Request) {
	descriptors := h.registry.All()
	infos := make([]DatasetInfo, 0, len(descriptors))
	for _, d := range descriptors {
		infos = append(infos, DatasetInfo{
			Name:     d.Name,
			Kind:     string(d.Kind),
			Columns:  d.Columns,
			Keywords: d.Keywords,
		})
	}
	writeJSON(w, http.StatusOK, DatasetListResponse{Datasets: infos})
}

// handleDocument serves the raw backing document of a dataset as plain text.
func (h *DatasetHandler) handleDocument(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	desc, err := h.registry.Resolve(name)
	if err != nil {
		writeError(w, http.StatusNotFound, "UNKNOWN_DATASET", "dataset not found: "+name)
		return
	}

	content, err := h.store.Read(r.Context(), desc.StoreKey)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			writeError(w, http.StatusNotFound, "DOCUMENT_NOT_FOUND", "document not found for dataset: "+name)
			return
		}
		h.logger.Error("document read failed", "dataset", name, "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to read document")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}
