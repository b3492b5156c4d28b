// Package app provides application initialization and dependency wiring.
//
// App is the container that owns the shared, session-independent
// components: configuration, logger, document store, registry, classifier,
// assembler, and the completion provider. Conversation sessions are created
// per caller via NewSession; each session owns its transcript exclusively.
package app

import (
	"context"

	"github.com/fbcdesk/fbcdesk/internal/assemble"
	"github.com/fbcdesk/fbcdesk/internal/catalog"
	"github.com/fbcdesk/fbcdesk/internal/classify"
	"github.com/fbcdesk/fbcdesk/internal/config"
	"github.com/fbcdesk/fbcdesk/internal/docstore"
	"github.com/fbcdesk/fbcdesk/internal/engine"
	"github.com/fbcdesk/fbcdesk/internal/log"
	"github.com/fbcdesk/fbcdesk/internal/provider"
	"github.com/fbcdesk/fbcdesk/internal/tabular"
)

// App is the core application container.
type App struct {
	Config   *config.Config
	Logger   log.Logger
	Registry *catalog.Registry
	Store    docstore.Store

	Classifier *classify.Classifier
	Assembler  *assemble.Assembler
	Completion engine.Completion

	otelCleanup func()
}

// Setup creates and initializes the application.
// Returns an App with embedded cleanup — call Close() to release.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (_ *App, retErr error) {
	a := &App{Config: cfg, Logger: logger}

	// On error, clean up everything already initialized
	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	a.otelCleanup = provideOtelShutdown(ctx, cfg, logger)

	store, err := provideStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.Store = store

	a.Registry = catalog.Default()
	a.Classifier = classify.New(a.Registry, logger.With("component", "classify"))
	a.Assembler = assemble.New(store, tabular.CSVLoader{}, assemble.Config{
		MaxTableRows: cfg.Context.MaxTableRows,
		MaxTextChars: cfg.Context.MaxTextChars,
	}, logger.With("component", "assemble"))

	completion, err := provider.New(ctx, cfg, logger.With("component", "provider"))
	if err != nil {
		return nil, err
	}
	a.Completion = completion

	return a, nil
}

// NewSession creates a conversation engine with a fresh, empty transcript.
func (a *App) NewSession() (*engine.Engine, error) {
	return engine.New(engine.Config{
		Completion: a.Completion,
		Classifier: a.Classifier,
		Assembler:  a.Assembler,
		Logger:     a.Logger.With("component", "engine"),
	})
}

// Close gracefully shuts down all resources.
func (a *App) Close() error {
	a.Logger.Info("shutting down application")
	if a.otelCleanup != nil {
		a.otelCleanup()
	}
	return nil
}

// provideStore selects the document store backend from configuration.
func provideStore(ctx context.Context, cfg *config.Config) (docstore.Store, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendS3:
		return docstore.NewS3(ctx, cfg.Store.Bucket, cfg.Store.Region)
	default:
		return docstore.NewFS(cfg.Store.DataDir), nil
	}
}
