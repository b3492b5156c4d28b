// Package engine drives one conversation session: it owns the transcript,
// routes each question to context assembly, streams the provider's reply,
// and appends both sides of the exchange.
//
// The engine processes exactly one turn at a time per session. A submission
// while a turn is in flight is rejected with ErrTurnInFlight; queueing is
// the caller's concern. There are no automatic retries: a failed turn
// leaves the user's message in the transcript and the session ready for the
// next attempt.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/fbcdesk/fbcdesk/internal/assemble"
	"github.com/fbcdesk/fbcdesk/internal/classify"
	"github.com/fbcdesk/fbcdesk/internal/log"
)

// SystemPrompt is the fixed instruction sent as the first provider message
// on every turn.
const SystemPrompt = "You are an internal assistant for FBC staff. Answer questions using the " +
	"provided document context when it is relevant. If the context does not cover the " +
	"question, say so plainly instead of guessing."

// fallbackResponse is returned when the model streams an empty reply.
const fallbackResponse = "I apologize, but I couldn't generate a response. Please try rephrasing your question."

// Sentinel errors for engine operations.
var (
	// ErrTurnInFlight indicates a submission arrived while another turn is
	// mid-flight for the same session.
	ErrTurnInFlight = errors.New("turn already in flight")

	// ErrProvider indicates the completion call failed. The turn is aborted;
	// the transcript keeps the user's message.
	ErrProvider = errors.New("provider error")

	// ErrEmptyInput indicates the submitted text was blank.
	ErrEmptyInput = errors.New("empty input")
)

// TurnState tracks where the current turn is in its lifecycle.
type TurnState int32

// Turn states. Idle is both the initial state and the terminal state
// between turns; Completed and Failed return to Idle before Submit returns.
const (
	StateIdle TurnState = iota
	StateClassifying
	StateAssembling
	StateStreaming
)

// String implements fmt.Stringer for log output.
func (s TurnState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateClassifying:
		return "classifying"
	case StateAssembling:
		return "assembling"
	case StateStreaming:
		return "streaming"
	default:
		return "unknown"
	}
}

// StreamCallback is called for each chunk of streaming response.
// The chunk contains partial content that can be immediately displayed to
// the user. Return an error to abort the stream.
type StreamCallback func(ctx context.Context, chunk string) error

// Completion streams a model reply for an ordered message sequence.
// The returned string is the full accumulated reply. Implementations must
// invoke onChunk (when non-nil) for each fragment in arrival order.
//
// Interfaces are defined by the consumer: the production implementation
// lives in internal/provider.
type Completion interface {
	Complete(ctx context.Context, messages []Message, onChunk StreamCallback) (string, error)
}

// Classifier selects the datasets relevant to a question.
type Classifier interface {
	Classify(text string) classify.Selection
}

// Assembler builds the context bundle for a selection.
type Assembler interface {
	Assemble(ctx context.Context, sel classify.Selection) assemble.Bundle
}

// Config contains all required parameters for the engine.
type Config struct {
	Completion Completion
	Classifier Classifier
	Assembler  Assembler
	Logger     log.Logger

	// RateLimiter optionally throttles provider calls (nil = use default).
	RateLimiter *rate.Limiter
}

// validate checks if all required parameters are present.
func (cfg Config) validate() error {
	if cfg.Completion == nil {
		return errors.New("completion is required")
	}
	if cfg.Classifier == nil {
		return errors.New("classifier is required")
	}
	if cfg.Assembler == nil {
		return errors.New("assembler is required")
	}
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	return nil
}

// Engine is a session-scoped conversation engine. It owns its transcript
// exclusively; sessions never share transcripts.
type Engine struct {
	sessionID  uuid.UUID
	transcript *Transcript

	completion Completion
	classifier Classifier
	assembler  Assembler
	logger     log.Logger
	limiter    *rate.Limiter

	mu       sync.Mutex
	inFlight bool
	state    TurnState
}

// New creates an Engine for a fresh session with an empty transcript.
func New(cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Default: 10 requests/sec sustained, burst of 30
	rl := cfg.RateLimiter
	if rl == nil {
		rl = rate.NewLimiter(10, 30)
	}

	id := uuid.New()
	return &Engine{
		sessionID:  id,
		transcript: NewTranscript(),
		completion: cfg.Completion,
		classifier: cfg.Classifier,
		assembler:  cfg.Assembler,
		logger:     cfg.Logger.With("session_id", id),
		limiter:    rl,
	}, nil
}

// SessionID returns the session's identifier.
func (e *Engine) SessionID() uuid.UUID {
	return e.sessionID
}

// History returns a copy of the transcript's messages.
func (e *Engine) History() []Message {
	return e.transcript.Messages()
}

// State returns the current turn state.
func (e *Engine) State() TurnState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// setState records a turn-state transition.
func (e *Engine) setState(s TurnState) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// Submit runs one turn without streaming output.
// This is a convenience wrapper around SubmitStream with nil callback.
func (e *Engine) Submit(ctx context.Context, userText string) (string, error) {
	return e.SubmitStream(ctx, userText, nil)
}

// SubmitStream runs one turn with optional streaming output.
//
// On success the transcript grows by exactly two messages (user then
// assistant) and the accumulated reply is returned. On provider failure the
// transcript grows by exactly one (the user's message), no assistant
// message is appended, and the error wraps ErrProvider so the caller can
// surface it and leave the session ready for a retry by resubmission.
func (e *Engine) SubmitStream(ctx context.Context, userText string, onChunk StreamCallback) (string, error) {
	if strings.TrimSpace(userText) == "" {
		return "", ErrEmptyInput
	}

	// Single-turn-at-a-time discipline per session.
	e.mu.Lock()
	if e.inFlight {
		e.mu.Unlock()
		return "", ErrTurnInFlight
	}
	e.inFlight = true
	e.state = StateClassifying
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.inFlight = false
		e.state = StateIdle
		e.mu.Unlock()
	}()

	// Snapshot prior history before recording the user's message: the
	// current turn is sent to the provider in context-augmented form, not
	// as stored.
	history := e.transcript.Messages()
	e.transcript.Append(Message{Role: RoleUser, Content: userText})

	sel := e.classifier.Classify(userText)

	e.setState(StateAssembling)
	bundle := e.assembler.Assemble(ctx, sel)

	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{Role: RoleSystem, Content: SystemPrompt})
	messages = append(messages, history...)
	messages = append(messages, Message{
		Role:    RoleUser,
		Content: bundle.Render() + "\n\n" + userText,
	})

	e.setState(StateStreaming)

	if err := e.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %w", ErrProvider, err)
	}

	reply, err := e.completion.Complete(ctx, messages, onChunk)
	if err != nil {
		e.logger.Warn("turn failed", "error", err, "transcript_len", e.transcript.Len())
		return "", fmt.Errorf("%w: %w", ErrProvider, err)
	}

	if strings.TrimSpace(reply) == "" {
		e.logger.Warn("model returned empty response")
		reply = fallbackResponse
	}

	e.transcript.Append(Message{Role: RoleAssistant, Content: reply})

	e.logger.Debug("turn completed",
		"datasets", len(sel.Datasets),
		"reply_len", len(reply),
		"transcript_len", e.transcript.Len(),
	)
	return reply, nil
}
