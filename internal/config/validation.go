package config

import (
	"fmt"
	"os"
	"slices"
)

// validProviders lists the AI providers the app can initialize.
var validProviders = []string{ProviderGemini, ProviderOpenAI, ProviderOllama}

// Validate validates configuration values.
// Returns sentinel errors that can be checked with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	// 1. Provider and model
	if !slices.Contains(validProviders, c.Provider) {
		return fmt.Errorf("%w: %q (valid: gemini, openai, ollama)", ErrInvalidProvider, c.Provider)
	}
	if c.ModelName == "" {
		return fmt.Errorf("%w: model_name cannot be empty", ErrInvalidModelName)
	}
	if c.Provider == ProviderOllama && c.OllamaHost == "" {
		return fmt.Errorf("%w: ollama_host cannot be empty", ErrInvalidOllamaHost)
	}

	// 2. API key (providers read their own env variable; fail early with
	// setup guidance instead of a provider error mid-turn)
	if err := c.validateAPIKey(); err != nil {
		return err
	}

	// 3. Document store
	switch c.Store.Backend {
	case StoreBackendFS:
		// DataDir defaults to "data"; an empty value would make every read fail
		if c.Store.DataDir == "" {
			return fmt.Errorf("%w: data_dir cannot be empty for the fs backend", ErrInvalidStoreBackend)
		}
	case StoreBackendS3:
		if c.Store.Bucket == "" {
			return fmt.Errorf("%w: bucket is required for the s3 backend", ErrInvalidStoreBucket)
		}
	default:
		return fmt.Errorf("%w: %q (valid: fs, s3)", ErrInvalidStoreBackend, c.Store.Backend)
	}

	// 4. Context bounds. The caps exist to keep the provider payload bounded;
	// zero or negative values would disable that guarantee.
	if c.Context.MaxTableRows < 1 || c.Context.MaxTableRows > 100 {
		return fmt.Errorf("%w: must be between 1 and 100, got %d", ErrInvalidContextRows, c.Context.MaxTableRows)
	}
	if c.Context.MaxTextChars < 100 || c.Context.MaxTextChars > 20000 {
		return fmt.Errorf("%w: must be between 100 and 20,000, got %d", ErrInvalidContextChars, c.Context.MaxTextChars)
	}

	return nil
}

// validateAPIKey checks that the selected provider's API key env variable is
// set. Ollama runs locally and needs no key.
func (c *Config) validateAPIKey() error {
	switch c.Provider {
	case ProviderGemini:
		if os.Getenv("GEMINI_API_KEY") == "" {
			return fmt.Errorf("%w: GEMINI_API_KEY environment variable is required\n"+
				"Get your API key at: https://ai.google.dev/gemini-api/docs/api-key",
				ErrMissingAPIKey)
		}
	case ProviderOpenAI:
		if os.Getenv("OPENAI_API_KEY") == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY environment variable is required",
				ErrMissingAPIKey)
		}
	}
	return nil
}
