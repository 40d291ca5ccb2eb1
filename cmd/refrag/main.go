// Command refrag answers questions from indexed documents.
package main

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/refrag/internal/adapters/driven/ai"
	"github.com/custodia-labs/refrag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/refrag/internal/adapters/driving/cli"
	"github.com/custodia-labs/refrag/internal/app"
	"github.com/custodia-labs/refrag/internal/core/domain"
	"github.com/custodia-labs/refrag/internal/core/services"
	"github.com/custodia-labs/refrag/internal/logger"
)

// envLogLevel sets the log level when --verbose is not given.
const envLogLevel = "REFRAG_LOG_LEVEL"

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Failed to load .env: %v", err)
	}

	if v := os.Getenv(envLogLevel); v != "" {
		level, err := logger.ParseLevel(v)
		if err != nil {
			logger.Warn("%s: %v", envLogLevel, err)
		}
		logger.SetLevel(level)
	}

	store, err := file.NewConfigStore("")
	if err != nil {
		logger.Error("failed to open configuration: %v", err)
		os.Exit(1)
	}
	configDir := filepath.Dir(store.Path())

	cli.SetSettingsService(services.NewSettingsService(store, ai.NewConfigValidator()))
	cli.SetWiring(func(ctx context.Context, settings *domain.AppSettings) (*cli.Runtime, error) {
		a, err := app.Build(ctx, settings, configDir)
		if err != nil {
			return nil, err
		}
		return runtimeFor(a), nil
	})

	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}

func runtimeFor(a *app.App) *cli.Runtime {
	ready := map[string]func(ctx context.Context) error{
		"storage": a.Ping,
	}
	if a.LLM != nil {
		ready["llm"] = a.LLM.Ping
	}
	if a.Embedding != nil {
		ready["embedding"] = a.Embedding.Ping
	}

	return &cli.Runtime{
		Answer:    a.Answer,
		Retrieval: a.Retrieval,
		Ingest:    a.Ingest,
		Users:     a.UserService,
		Prompts:   a.Prompts,
		Metrics:   a.Metrics.Handler(),
		Ready:     ready,
		Warnings:  a.Warnings,
		Close:     a.Close,
	}
}
