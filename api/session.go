package api

import (
	"context"
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/fbcdesk/fbcdesk/internal/engine"
	"github.com/fbcdesk/fbcdesk/internal/log"
)

// Session is the API-facing view of a conversation engine.
// *engine.Engine satisfies it; tests substitute fakes.
type Session interface {
	SessionID() uuid.UUID
	History() []engine.Message
	SubmitStream(ctx context.Context, userText string, onChunk engine.StreamCallback) (string, error)
}

// SessionFactory creates a fresh session with an empty transcript.
type SessionFactory func() (Session, error)

// SessionManager tracks live sessions in memory. Sessions exist only for
// the lifetime of the process; there is no cross-restart persistence.
type SessionManager struct {
	factory SessionFactory

	mu       sync.RWMutex
	sessions map[uuid.UUID]Session
}

// NewSessionManager creates a SessionManager with the given factory.
func NewSessionManager(factory SessionFactory) *SessionManager {
	return &SessionManager{
		factory:  factory,
		sessions: make(map[uuid.UUID]Session),
	}
}

// Create builds and registers a new session.
func (m *SessionManager) Create() (Session, error) {
	s, err := m.factory()
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.sessions[s.SessionID()] = s
	m.mu.Unlock()
	return s, nil
}

// Get returns the session with the given ID.
func (m *SessionManager) Get(id uuid.UUID) (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Count returns the number of live sessions.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// SessionHandler handles session management endpoints.
type SessionHandler struct {
	manager *SessionManager
	logger  log.Logger
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(manager *SessionManager, logger log.Logger) *SessionHandler {
	return &SessionHandler{manager: manager, logger: logger}
}

// RegisterRoutes registers session routes on the given mux.
func (h *SessionHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/sessions", h.create)
	mux.HandleFunc("GET /api/sessions/{id}/messages", h.messages)
}

// SessionResponse is the payload for a created session.
type SessionResponse struct {
	SessionID string `json:"sessionId"`
}

// create starts a new conversation session.
func (h *SessionHandler) create(w http.ResponseWriter, _ *http.Request) {
	s, err := h.manager.Create()
	if err != nil {
		h.logger.Error("creating session", "error", err)
		writeError(w, http.StatusInternalServerError, "SESSION_CREATE_FAILED", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, SessionResponse{SessionID: s.SessionID().String()})
}

// messages returns the session's transcript in order.
func (h *SessionHandler) messages(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_SESSION_ID", err.Error())
		return
	}
	s, ok := h.manager.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "SESSION_NOT_FOUND", "no such session")
		return
	}
	writeJSON(w, http.StatusOK, s.History())
}
