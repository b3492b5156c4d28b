package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fbcdesk/fbcdesk/internal/config"
)

// Version information (injected at build time via ldflags)
var (
	AppVersion = "development"
	BuildTime  = "unknown"
	GitCommit  = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE:  runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(_ *cobra.Command, _ []string) error {
	fmt.Printf("fbcdesk %s\n", AppVersion)
	fmt.Printf("Build Time: %s\n", BuildTime)
	fmt.Printf("Git Commit: %s\n", GitCommit)

	cfg, err := config.Load()
	if err != nil {
		// Version output should still work with a broken config file.
		return nil
	}

	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Printf("  Provider: %s\n", cfg.Provider)
	fmt.Printf("  Model: %s\n", cfg.ModelName)
	fmt.Printf("  Store: %s\n", cfg.Store.Backend)

	key := apiKeyForProvider(cfg.Provider)
	switch {
	case cfg.Provider == config.ProviderOllama:
		fmt.Printf("  Ollama host: %s\n", cfg.OllamaHost)
	case len(key) >= 8:
		// Never print the full key
		fmt.Printf("  API key: %s...%s (configured)\n", key[:4], key[len(key)-4:])
	default:
		fmt.Println("  API key: not set")
	}

	return nil
}

func apiKeyForProvider(provider string) string {
	switch provider {
	case config.ProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	default:
		return os.Getenv("GEMINI_API_KEY")
	}
}
