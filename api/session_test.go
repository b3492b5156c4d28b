package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fbcdesk/fbcdesk/internal/engine"
	"github.com/fbcdesk/fbcdesk/internal/log"
)

func TestSessionManager(t *testing.T) {
	s := &fakeSession{id: uuid.New()}
	m := NewSessionManager(func() (Session, error) { return s, nil })

	assert.Equal(t, 0, m.Count())

	created, err := m.Create()
	require.NoError(t, err)
	assert.Equal(t, s.id, created.SessionID())
	assert.Equal(t, 1, m.Count())

	got, ok := m.Get(s.id)
	require.True(t, ok)
	assert.Equal(t, s.id, got.SessionID())

	_, ok = m.Get(uuid.New())
	assert.False(t, ok)
}

func TestSessionManager_FactoryError(t *testing.T) {
	m := NewSessionManager(func() (Session, error) { return nil, errors.New("boom") })

	_, err := m.Create()
	assert.Error(t, err)
	assert.Equal(t, 0, m.Count())
}

func TestSessionHandler_Create(t *testing.T) {
	logger := log.NewNop()
	s := &fakeSession{id: uuid.New()}
	m := NewSessionManager(func() (Session, error) { return s, nil })
	h := NewSessionHandler(m, logger)

	req := httptest.NewRequest(http.MethodPost, "/api/sessions", nil)
	w := httptest.NewRecorder()

	h.create(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, s.id.String(), resp.SessionID)
	assert.Equal(t, 1, m.Count())
}

func TestSessionHandler_Create_FactoryError(t *testing.T) {
	logger := log.NewNop()
	m := NewSessionManager(func() (Session, error) { return nil, errors.New("provider init failed") })
	h := NewSessionHandler(m, logger)

	req := httptest.NewRequest(http.MethodPost, "/api/sessions", nil)
	w := httptest.NewRecorder()

	h.create(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "SESSION_CREATE_FAILED")
}

func TestSessionHandler_Messages(t *testing.T) {
	logger := log.NewNop()
	s := &fakeSession{
		id: uuid.New(),
		history: []engine.Message{
			{Role: engine.RoleUser, Content: "how many locations?"},
			{Role: engine.RoleAssistant, Content: "125."},
		},
	}
	h := NewSessionHandler(newTestManager(t, s), logger)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/"+s.id.String()+"/messages", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var messages []engine.Message
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &messages))
	require.Len(t, messages, 2)
	assert.Equal(t, engine.RoleUser, messages[0].Role)
	assert.Equal(t, "125.", messages[1].Content)
}

func TestSessionHandler_Messages_Errors(t *testing.T) {
	logger := log.NewNop()
	h := NewSessionHandler(NewSessionManager(nil), logger)
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	t.Run("malformed session ID", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/sessions/not-a-uuid/messages", nil)
		w := httptest.NewRecorder()

		mux.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_SESSION_ID")
	})

	t.Run("unknown session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/sessions/"+uuid.NewString()+"/messages", nil)
		w := httptest.NewRecorder()

		mux.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "SESSION_NOT_FOUND")
	})
}
