package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/fbcdesk/fbcdesk/internal/engine"
	"github.com/fbcdesk/fbcdesk/internal/log"
)

// ChatHandler handles chat endpoints.
//
// Endpoints:
//   - POST /api/chat        - Synchronous chat (JSON request/response)
//   - POST /api/chat/stream - Streaming chat (SSE - Server-Sent Events)
type ChatHandler struct {
	manager *SessionManager
	logger  log.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(manager *SessionManager, logger log.Logger) *ChatHandler {
	return &ChatHandler{manager: manager, logger: logger}
}

// RegisterRoutes registers chat routes on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/chat", h.handleChat)
	mux.HandleFunc("POST /api/chat/stream", h.handleStream)
}

// ChatRequest is the request body for both chat endpoints.
type ChatRequest struct {
	SessionID string `json:"sessionId"`
	Query     string `json:"query"`
}

// ChatResponse is the response body for the synchronous endpoint.
type ChatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"sessionId"`
}

// resolveSession parses and looks up the request's session.
// Writes the error response itself and returns false on failure.
func (h *ChatHandler) resolveSession(w http.ResponseWriter, req ChatRequest) (Session, bool) {
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "MISSING_SESSION_ID", "sessionId is required")
		return nil, false
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "MISSING_QUERY", "query is required")
		return nil, false
	}
	id, err := uuid.Parse(req.SessionID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_SESSION_ID", err.Error())
		return nil, false
	}
	s, ok := h.manager.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "SESSION_NOT_FOUND", "no such session")
		return nil, false
	}
	return s, true
}

// handleChat handles the synchronous chat endpoint.
func (h *ChatHandler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", fmt.Sprintf("invalid request body: %v", err))
		return
	}

	s, ok := h.resolveSession(w, req)
	if !ok {
		return
	}

	reply, err := s.SubmitStream(r.Context(), req.Query, nil)
	if err != nil {
		status, code := turnErrorStatus(err)
		writeError(w, status, code, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ChatResponse{Response: reply, SessionID: req.SessionID})
}

// turnErrorStatus maps engine errors onto HTTP status codes.
func turnErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, engine.ErrTurnInFlight):
		return http.StatusConflict, "TURN_IN_FLIGHT"
	case errors.Is(err, engine.ErrEmptyInput):
		return http.StatusBadRequest, "EMPTY_QUERY"
	case errors.Is(err, engine.ErrProvider):
		return http.StatusBadGateway, "PROVIDER_ERROR"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// SSEEvent represents a Server-Sent Event payload.
type SSEEvent struct {
	// Event type: "chunk" for partial text, "done" for final output, "error" for errors
	Event string `json:"event"`

	// Data payload - depends on event type
	Data any `json:"data"`
}

// SSEChunkData is the data for "chunk" events.
type SSEChunkData struct {
	Text string `json:"text"`
}

// SSEDoneData is the data for "done" events.
type SSEDoneData struct {
	Response  string `json:"response"`
	SessionID string `json:"sessionId"`
}

// SSEErrorData is the data for "error" events.
type SSEErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// handleStream handles the SSE streaming endpoint.
//
// Request body: {"query": "...", "sessionId": "..."}
// Response: Server-Sent Events stream
//
// Event types:
//   - chunk: Partial text chunk {"text": "..."}
//   - done:  Final response {"response": "...", "sessionId": "..."}
//   - error: Error occurred {"code": "...", "message": "..."}
func (h *ChatHandler) handleStream(w http.ResponseWriter, r *http.Request) {
	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.logger.Error("streaming not supported")
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeSSEError(w, flusher, "INVALID_REQUEST", fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.SessionID == "" {
		h.writeSSEError(w, flusher, "MISSING_SESSION_ID", "sessionId is required")
		return
	}
	if req.Query == "" {
		h.writeSSEError(w, flusher, "MISSING_QUERY", "query is required")
		return
	}

	id, err := uuid.Parse(req.SessionID)
	if err != nil {
		h.writeSSEError(w, flusher, "INVALID_SESSION_ID", err.Error())
		return
	}
	s, found := h.manager.Get(id)
	if !found {
		h.writeSSEError(w, flusher, "SESSION_NOT_FOUND", "no such session")
		return
	}

	ctx := r.Context()
	h.logger.Info("SSE stream started", "sessionId", req.SessionID)

	reply, err := s.SubmitStream(ctx, req.Query, func(ctx context.Context, chunk string) error {
		// Stop streaming when the client disconnects.
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		h.writeSSEChunk(w, flusher, chunk)
		return nil
	})
	if err != nil {
		_, code := turnErrorStatus(err)
		h.logger.Warn("SSE stream failed", "sessionId", req.SessionID, "error", err)
		h.writeSSEError(w, flusher, code, err.Error())
		return
	}

	h.writeSSE(w, flusher, SSEEvent{Event: "done", Data: SSEDoneData{
		Response:  reply,
		SessionID: req.SessionID,
	}})
}

// writeSSE serializes one event and flushes it to the client.
func (h *ChatHandler) writeSSE(w http.ResponseWriter, flusher http.Flusher, event SSEEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("marshaling SSE event", "error", err)
		return
	}
	fmt.Fprintf(w, "data: %s\n\n", payload)
	flusher.Flush()
}

func (h *ChatHandler) writeSSEChunk(w http.ResponseWriter, flusher http.Flusher, text string) {
	h.writeSSE(w, flusher, SSEEvent{Event: "chunk", Data: SSEChunkData{Text: text}})
}

func (h *ChatHandler) writeSSEError(w http.ResponseWriter, flusher http.Flusher, code, message string) {
	h.writeSSE(w, flusher, SSEEvent{Event: "error", Data: SSEErrorData{Code: code, Message: message}})
}
