// Package provider implements the engine's Completion port on top of
// Genkit, supporting the gemini (default), openai, and ollama providers.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/compat_oai/openai"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/firebase/genkit/go/plugins/ollama"

	"github.com/fbcdesk/fbcdesk/internal/config"
	"github.com/fbcdesk/fbcdesk/internal/engine"
	"github.com/fbcdesk/fbcdesk/internal/log"
)

// Completion implements engine.Completion using a Genkit instance.
type Completion struct {
	g         *genkit.Genkit
	modelName string // provider-qualified, e.g. "googleai/gemini-2.5-flash"
	logger    log.Logger
}

// New initializes Genkit with the configured AI provider plugin and returns
// a streaming Completion bound to the configured model.
func New(ctx context.Context, cfg *config.Config, logger log.Logger) (*Completion, error) {
	var g *genkit.Genkit
	var modelName string

	switch cfg.Provider {
	case config.ProviderOllama:
		ollamaPlugin := &ollama.Ollama{ServerAddress: cfg.OllamaHost}
		g = genkit.Init(ctx, genkit.WithPlugins(ollamaPlugin))
		if g == nil {
			return nil, errors.New("initializing genkit with ollama provider")
		}
		// Ollama requires explicit model registration (no auto-discovery)
		ollamaPlugin.DefineModel(g, ollama.ModelDefinition{
			Name: cfg.ModelName,
			Type: "chat",
		}, nil)
		modelName = "ollama/" + cfg.ModelName
		logger.Info("initialized Genkit with ollama provider",
			"model", cfg.ModelName, "host", cfg.OllamaHost)

	case config.ProviderOpenAI:
		g = genkit.Init(ctx, genkit.WithPlugins(&openai.OpenAI{}))
		if g == nil {
			return nil, errors.New("initializing genkit with openai provider")
		}
		modelName = "openai/" + cfg.ModelName
		logger.Info("initialized Genkit with openai provider", "model", cfg.ModelName)

	case config.ProviderGemini:
		g = genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
		if g == nil {
			return nil, errors.New("initializing genkit with gemini provider")
		}
		modelName = "googleai/" + cfg.ModelName
		logger.Info("initialized Genkit with gemini provider", "model", cfg.ModelName)

	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidProvider, cfg.Provider)
	}

	return &Completion{g: g, modelName: modelName, logger: logger}, nil
}

// Complete sends the messages to the model and accumulates the streamed
// reply. When onChunk is non-nil it is called for each fragment in arrival
// order; the stream is finite and non-restartable, and the turn is not
// complete until Generate returns.
func (c *Completion) Complete(ctx context.Context, messages []engine.Message, onChunk engine.StreamCallback) (string, error) {
	system, history := convertMessages(messages)

	opts := []ai.GenerateOption{
		ai.WithModelName(c.modelName),
		ai.WithMessages(history...),
	}
	if system != "" {
		opts = append(opts, ai.WithSystem(system))
	}
	if onChunk != nil {
		opts = append(opts, ai.WithStreaming(func(ctx context.Context, chunk *ai.ModelResponseChunk) error {
			return onChunk(ctx, chunk.Text())
		}))
	}

	response, err := genkit.Generate(ctx, c.g, opts...)
	if err != nil {
		return "", fmt.Errorf("generating response: %w", err)
	}

	return response.Text(), nil
}

// convertMessages maps engine messages onto Genkit's message model.
// System content is returned separately: Genkit takes it via WithSystem,
// not as a transcript message.
func convertMessages(messages []engine.Message) (system string, out []*ai.Message) {
	for _, m := range messages {
		switch m.Role {
		case engine.RoleSystem:
			system = m.Content
		case engine.RoleAssistant:
			out = append(out, ai.NewModelMessage(ai.NewTextPart(m.Content)))
		default:
			out = append(out, ai.NewUserMessage(ai.NewTextPart(m.Content)))
		}
	}
	return system, out
}
