// Package cmd provides CLI commands for fbcdesk.
//
// Commands:
//   - chat (default): interactive terminal conversation
//   - ask: one-shot question
//   - datasets: list registered data sources
//   - serve: HTTP API server with SSE streaming
//   - version: build information
//
// Signal handling and graceful shutdown are implemented for all
// commands via context cancellation.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fbcdesk/fbcdesk/internal/config"
	"github.com/fbcdesk/fbcdesk/internal/log"
)

var rootCmd = &cobra.Command{
	Use:   "fbcdesk",
	Short: "fbcdesk - franchise operations assistant",
	Long: `fbcdesk answers questions about franchise policy documents and
performance metrics. Running it without arguments starts an
interactive chat session.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		// No subcommand drops into chat mode
		return runChat(cmd, args)
	},
}

// Execute is the main entry point for the fbcdesk CLI application.
func Execute() error {
	// Initialize logger once at entry point. Logs go to stderr so stdout
	// stays clean for conversation output.
	slog.SetDefault(newLogger())
	return rootCmd.Execute()
}

// newLogger builds the process logger. DEBUG env enables debug level.
func newLogger() log.Logger {
	level := slog.LevelInfo
	if os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	return log.New(log.Config{Level: level})
}

// newConfigLogger builds a logger honoring the loaded configuration.
func newConfigLogger(cfg *config.Config) log.Logger {
	level := slog.LevelInfo
	if cfg.Debug || os.Getenv("DEBUG") != "" {
		level = slog.LevelDebug
	}
	return log.New(log.Config{Level: level, JSON: cfg.LogJSON})
}
