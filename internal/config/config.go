// Package config provides application configuration management with
// multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (FBCDESK_ prefix, runtime override)
//  2. Config file (~/.fbcdesk/config.yaml)
//  3. Default values (sensible defaults for quick start)
//
// Main configuration categories:
//   - AI: provider selection and model name
//   - Store: document store backend (local filesystem or S3)
//   - Context: bounds on the assembled context payload
//   - Server: HTTP API address
//   - Observability: optional OTLP trace export
//
// Error Handling:
//   - Uses sentinel errors for Go-idiomatic error checking with errors.Is()
//   - Wrap with context using fmt.Errorf("%w: details", ErrXxx)
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingAPIKey indicates a required API key is missing.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidProvider indicates the AI provider is not supported.
	ErrInvalidProvider = errors.New("invalid provider")

	// ErrInvalidModelName indicates the model name is invalid.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidStoreBackend indicates the document store backend is unknown.
	ErrInvalidStoreBackend = errors.New("invalid store backend")

	// ErrInvalidStoreBucket indicates the S3 bucket name is missing or invalid.
	ErrInvalidStoreBucket = errors.New("invalid store bucket")

	// ErrInvalidContextRows indicates the table row cap is out of range.
	ErrInvalidContextRows = errors.New("invalid context rows")

	// ErrInvalidContextChars indicates the text character cap is out of range.
	ErrInvalidContextChars = errors.New("invalid context chars")

	// ErrInvalidOllamaHost indicates the Ollama host is invalid.
	ErrInvalidOllamaHost = errors.New("invalid Ollama host")
)

// AI provider identifiers used in Config.Provider.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// Document store backend identifiers used in Config.Store.Backend.
const (
	StoreBackendFS = "fs"
	StoreBackendS3 = "s3"
)

// StoreConfig selects and configures the document store backend.
type StoreConfig struct {
	Backend string `mapstructure:"backend" json:"backend"` // "fs" (default) or "s3"
	DataDir string `mapstructure:"data_dir" json:"data_dir"`
	Bucket  string `mapstructure:"bucket" json:"bucket"`
	Region  string `mapstructure:"region" json:"region"`
}

// ContextConfig bounds the assembled context payload per turn.
type ContextConfig struct {
	MaxTableRows int `mapstructure:"max_table_rows" json:"max_table_rows"`
	MaxTextChars int `mapstructure:"max_text_chars" json:"max_text_chars"`
}

// ServerConfig configures the HTTP API surface.
type ServerConfig struct {
	Addr string `mapstructure:"addr" json:"addr"`
}

// ObservabilityConfig configures optional OTLP trace export.
// Tracing is disabled when OTLPEndpoint is empty.
type ObservabilityConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint" json:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name" json:"service_name"`
	Environment  string `mapstructure:"environment" json:"environment"`
}

// Config stores application configuration.
type Config struct {
	// AI provider and model configuration
	Provider   string `mapstructure:"provider" json:"provider"`     // "gemini" (default), "openai", "ollama"
	ModelName  string `mapstructure:"model_name" json:"model_name"` // Model identifier (e.g., "gemini-2.5-flash", "gpt-4o-mini")
	OllamaHost string `mapstructure:"ollama_host" json:"ollama_host"`

	// Logging
	Debug   bool `mapstructure:"debug" json:"debug"`
	LogJSON bool `mapstructure:"log_json" json:"log_json"`

	Store         StoreConfig         `mapstructure:"store" json:"store"`
	Context       ContextConfig       `mapstructure:"context" json:"context"`
	Server        ServerConfig        `mapstructure:"server" json:"server"`
	Observability ObservabilityConfig `mapstructure:"observability" json:"observability"`
}

// Load reads configuration from defaults, config file, and environment.
// A missing config file is not an error; the defaults are complete enough
// to run against a local data directory.
func Load() (*Config, error) {
	configDir, err := configDirPath()
	if err != nil {
		return nil, fmt.Errorf("resolving config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".") // Also support current directory

	v.SetEnvPrefix("FBCDESK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers default values for every configurable key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", ProviderGemini)
	v.SetDefault("model_name", "gemini-2.5-flash")
	v.SetDefault("ollama_host", "http://localhost:11434")

	v.SetDefault("debug", false)
	v.SetDefault("log_json", false)

	v.SetDefault("store.backend", StoreBackendFS)
	v.SetDefault("store.data_dir", "data")
	v.SetDefault("store.bucket", "")
	v.SetDefault("store.region", "")

	v.SetDefault("context.max_table_rows", 5)
	v.SetDefault("context.max_text_chars", 1000)

	v.SetDefault("server.addr", "127.0.0.1:3400")

	v.SetDefault("observability.otlp_endpoint", "")
	v.SetDefault("observability.service_name", "fbcdesk")
	v.SetDefault("observability.environment", "")
}

// configDirPath returns ~/.fbcdesk, creating it if necessary.
func configDirPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".fbcdesk")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", err
	}
	return dir, nil
}
