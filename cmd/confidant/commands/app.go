// ABOUTME: Shared wiring for commands: config, logging, storage, model router and services
// ABOUTME: Commands open an app, use its services and close it when done
package commands

import (
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/harper/confidant/internal/config"
	"github.com/harper/confidant/internal/interpreter"
	"github.com/harper/confidant/internal/llm"
	"github.com/harper/confidant/internal/logging"
	"github.com/harper/confidant/internal/memory"
	"github.com/harper/confidant/internal/persona"
	"github.com/harper/confidant/internal/session"
	"github.com/harper/confidant/internal/storage"
)

type app struct {
	cfg         *config.Config
	store       *storage.Storage
	memory      *memory.Service
	sessions    *session.Service
	transcriber llm.Transcriber
}

// openApp loads configuration and opens storage. With withLLM set it also
// builds the model router; a missing provider is logged and every model
// call then fails with llm.ErrNoProvider.
func openApp(cmd *cobra.Command, withLLM bool) (*app, error) {
	// Load .env for API keys
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logging.Setup(logLevel(cfg), cfg.LogFormat, cmd.ErrOrStderr())

	dsn := cfg.DatabaseURL
	if dbPath != "" {
		dsn = dbPath
	}
	store, err := storage.New(dsn)
	if err != nil {
		return nil, fmt.Errorf("initializing storage: %w", err)
	}

	a := &app{cfg: cfg, store: store, memory: memory.NewService(store)}

	var router *llm.Router
	if withLLM {
		r, transcriber, err := llm.NewFromConfig(cfg)
		if err != nil {
			slog.Warn("language model unavailable", "provider", cfg.Provider, "error", err)
			r = llm.NewRouter(nil)
		}
		router, a.transcriber = r, transcriber
	}

	personas, err := persona.LoadFile(cfg.PersonasFile)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	a.sessions = session.NewService(a.memory, interpreter.New(router, personas, interpreter.NewBudget(cfg.MaxContextTokens)))

	return a, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		slog.Warn("error closing storage", "error", err)
	}
}

// user resolves the --user flag against the configured default
func (a *app) user() string {
	if userID != "" {
		return userID
	}
	return a.cfg.DefaultUserID
}

func logLevel(cfg *config.Config) string {
	switch {
	case verbose:
		return "debug"
	case quiet:
		return "error"
	}
	return cfg.LogLevel
}
