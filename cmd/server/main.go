// ABOUTME: Main entry point for the standalone confidant HTTP API server
// ABOUTME: Wires config, storage, the model router and sessions, then serves until signalled
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/harper/confidant/internal/api"
	"github.com/harper/confidant/internal/config"
	"github.com/harper/confidant/internal/interpreter"
	"github.com/harper/confidant/internal/llm"
	"github.com/harper/confidant/internal/logging"
	"github.com/harper/confidant/internal/memory"
	"github.com/harper/confidant/internal/persona"
	"github.com/harper/confidant/internal/session"
	"github.com/harper/confidant/internal/storage"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (for API keys)
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if envErr != nil {
		slog.Debug("no .env file found", "error", envErr)
	}

	store, err := storage.New(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	router, transcriber, err := llm.NewFromConfig(cfg)
	if err != nil {
		slog.Warn("language model unavailable; conversation endpoints will return 503", "error", err)
		router = llm.NewRouter(nil)
	}
	if transcriber == nil {
		slog.Warn("OPENAI_API_KEY not set; transcription disabled")
	}

	personas, err := persona.LoadFile(cfg.PersonasFile)
	if err != nil {
		slog.Error("failed to load personas", "error", err)
		os.Exit(1)
	}

	budget := interpreter.NewBudget(cfg.MaxContextTokens)
	budget.Preload()
	interp := interpreter.New(router, personas, budget)
	sessions := session.NewService(memory.NewService(store), interp)

	srv := api.New(sessions, api.Options{
		Addr:        cfg.HTTPAddr,
		DefaultUser: cfg.DefaultUserID,
		Transcriber: transcriber,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx); err != nil {
		slog.Error("server error", "error", err)
		stop()
		_ = store.Close()
		os.Exit(1)
	}
}
