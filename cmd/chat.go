package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fbcdesk/fbcdesk/internal/app"
	"github.com/fbcdesk/fbcdesk/internal/config"
	"github.com/fbcdesk/fbcdesk/internal/engine"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Setup(ctx, cfg, newConfigLogger(cfg))
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			a.Logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	session, err := a.NewSession()
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}

	fmt.Printf("fbcdesk %s - franchise operations assistant\n", AppVersion)
	fmt.Printf("session %s\n", session.SessionID())
	fmt.Println(`Type a question, or /help for commands.`)
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			// Ctrl+D or closed stdin
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			next, done, cmdErr := handleSlashCommand(a, session, line)
			if cmdErr != nil {
				return cmdErr
			}
			if done {
				return nil
			}
			session = next
			continue
		}

		_, err := session.SubmitStream(ctx, line, func(_ context.Context, chunk string) error {
			fmt.Print(chunk)
			return nil
		})
		if err != nil {
			if ctx.Err() != nil {
				fmt.Println()
				return nil
			}
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println()
		fmt.Println()
	}
}

// handleSlashCommand dispatches interactive commands.
// Returns the session to continue with (a fresh one after /clear) and
// done=true when the loop should end.
func handleSlashCommand(a *app.App, session *engine.Engine, line string) (*engine.Engine, bool, error) {
	switch strings.Fields(line)[0] {
	case "/exit", "/quit":
		fmt.Println("bye")
		return session, true, nil
	case "/help":
		fmt.Println("Commands:")
		fmt.Println("  /help      Show available commands")
		fmt.Println("  /datasets  List registered data sources")
		fmt.Println("  /clear     Clear conversation history")
		fmt.Println("  /version   Show version")
		fmt.Println("  /exit      Exit fbcdesk")
		return session, false, nil
	case "/datasets":
		printDatasets(a)
		return session, false, nil
	case "/clear":
		fresh, err := a.NewSession()
		if err != nil {
			return session, false, fmt.Errorf("creating session: %w", err)
		}
		fmt.Printf("history cleared, new session %s\n", fresh.SessionID())
		return fresh, false, nil
	case "/version":
		fmt.Printf("fbcdesk %s (%s, %s)\n", AppVersion, GitCommit, BuildTime)
		return session, false, nil
	default:
		fmt.Printf("unknown command %q, try /help\n", line)
		return session, false, nil
	}
}

// loadConfig loads and validates configuration, printing API key setup
// guidance when the key for the selected provider is missing.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		printAPIKeyHint(cfg, err)
		return nil, err
	}
	return cfg, nil
}

func printAPIKeyHint(cfg *config.Config, err error) {
	if !strings.Contains(err.Error(), "API key") {
		return
	}
	var envVar, site string
	switch cfg.Provider {
	case config.ProviderOpenAI:
		envVar, site = "OPENAI_API_KEY", "https://platform.openai.com/api-keys"
	default:
		envVar, site = "GEMINI_API_KEY", "https://ai.google.dev/"
	}
	fmt.Fprintf(os.Stderr, "Error: %s environment variable not set\n", envVar)
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "fbcdesk needs an API key for the configured provider.")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "To set your API key:")
	fmt.Fprintf(os.Stderr, "  export %s=your-api-key\n", envVar)
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintf(os.Stderr, "Get your API key at: %s\n", site)
}
