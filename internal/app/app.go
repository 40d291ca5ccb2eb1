// Package app assembles adapters and services from the application settings.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/custodia-labs/refrag/internal/adapters/driven/ai"
	"github.com/custodia-labs/refrag/internal/adapters/driven/auth"
	memorycache "github.com/custodia-labs/refrag/internal/adapters/driven/cache/memory"
	rediscache "github.com/custodia-labs/refrag/internal/adapters/driven/cache/redis"
	"github.com/custodia-labs/refrag/internal/adapters/driven/config/file"
	"github.com/custodia-labs/refrag/internal/adapters/driven/generator"
	"github.com/custodia-labs/refrag/internal/adapters/driven/metrics/prometheus"
	"github.com/custodia-labs/refrag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/refrag/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/refrag/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/refrag/internal/core/domain"
	"github.com/custodia-labs/refrag/internal/core/ports/driven"
	"github.com/custodia-labs/refrag/internal/core/services"
	"github.com/custodia-labs/refrag/internal/logger"
)

// Environment variables consulted when a provider key is not configured.
//
//nolint:gosec // G101: These are variable names, not credentials.
const (
	EnvGroqAPIKey      = "GROQ_API_KEY"
	EnvOpenAIAPIKey    = "OPENAI_API_KEY"
	EnvAnthropicAPIKey = "ANTHROPIC_API_KEY"
)

// App holds every wired component. Optional components that could not be
// built are nil and the reason is recorded in Warnings.
type App struct {
	Settings *domain.AppSettings
	Prompts  *file.PromptStore
	Metrics  *prometheus.Metrics

	VectorIndex driven.VectorIndex
	SideTable   driven.SideTableStore
	Users       driven.UserStore
	Embedding   driven.EmbeddingService
	LLM         driven.LLMService
	Cache       driven.EmbeddingCache

	Retrieval   *services.RetrievalService
	Resolver    *services.ReferenceResolver
	Answer      *services.AnswerService
	Ingest      *services.IngestService
	UserService *services.UserService

	// Ping checks the storage backend.
	Ping func(ctx context.Context) error

	Warnings []string

	closers []func() error
}

// Build wires the application described by settings. Prompt files live in configDir.
// Storage failures are fatal; missing AI providers are recorded as warnings.
func Build(ctx context.Context, settings *domain.AppSettings, configDir string) (*App, error) {
	ApplyEnvironment(settings)

	a := &App{Settings: settings, Metrics: prometheus.New()}

	if err := a.openStorage(ctx); err != nil {
		return nil, err
	}
	if err := a.loadSideTableCSV(ctx); err != nil {
		a.Close()
		return nil, err
	}

	prompts, err := file.NewPromptStore(configDir)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("prompt store: %w", err)
	}
	a.Prompts = prompts

	if svc, err := ai.CreateEmbeddingService(&settings.Embedding); err != nil {
		a.warn("embedding: %v", err)
	} else {
		a.Embedding = svc
		a.closers = append(a.closers, svc.Close)
	}

	if svc, err := ai.CreateLLMService(&settings.LLM); err != nil {
		a.warn("llm: %v", err)
	} else {
		a.LLM = svc
		a.closers = append(a.closers, svc.Close)
	}

	a.openCache(ctx)

	a.Retrieval = services.NewRetrievalService(a.VectorIndex, a.Embedding, settings.Retrieval)
	if a.Cache != nil {
		a.Retrieval.SetEmbeddingCache(a.Cache, settings.Cache.TTL)
	}
	a.Resolver = services.NewReferenceResolver(a.SideTable)

	gen := generator.New(a.LLM, a.Prompts, driven.ChatOptions{Temperature: settings.LLM.Temperature})
	if err := gen.Validate(); err != nil {
		a.Close()
		return nil, fmt.Errorf("prompts: %w", err)
	}
	a.Answer = services.NewAnswerService(a.Retrieval, a.Resolver, gen, settings.Retrieval.K, settings.Retrieval.Timeout)
	a.Answer.SetMetrics(a.Metrics)

	a.Ingest = services.NewIngestService(a.VectorIndex, a.SideTable, a.Embedding, settings.IngestBatchSize)
	a.UserService = services.NewUserService(a.Users, auth.NewBcryptHasher(0), ai.NewConfigValidator(), settings.LLM)

	return a, nil
}

// ApplyEnvironment fills missing provider keys from the environment.
func ApplyEnvironment(settings *domain.AppSettings) {
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = os.Getenv(envKeyFor(settings.LLM.Provider))
	}
	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = os.Getenv(envKeyFor(settings.Embedding.Provider))
	}
}

func envKeyFor(provider domain.AIProvider) string {
	switch provider {
	case domain.AIProviderGroq:
		return EnvGroqAPIKey
	case domain.AIProviderOpenAI:
		return EnvOpenAIAPIKey
	case domain.AIProviderAnthropic:
		return EnvAnthropicAPIKey
	default:
		return ""
	}
}

func (a *App) openStorage(ctx context.Context) error {
	switch a.Settings.Storage.Backend {
	case domain.StorageBackendPostgres:
		store, err := postgres.NewStore(ctx, a.Settings.Storage.PostgresDSN)
		if err != nil {
			return fmt.Errorf("postgres storage: %w", err)
		}
		a.VectorIndex = store.VectorIndex()
		a.SideTable = store.SideTableStore()
		a.Users = store.UserStore()
		a.Ping = store.Ping
		a.closers = append(a.closers, store.Close)

	case domain.StorageBackendSQLite, "":
		store, err := sqlite.NewStore(a.Settings.Storage.SQLitePath)
		if err != nil {
			return fmt.Errorf("sqlite storage: %w", err)
		}
		logger.Debug("Using sqlite database %s", store.Path())
		a.VectorIndex = store.VectorIndex()
		a.SideTable = store.SideTableStore()
		a.Users = store.UserStore()
		a.Ping = store.Ping
		a.closers = append(a.closers, store.Close)

	default:
		return fmt.Errorf("%w: storage backend %q", domain.ErrUnsupportedType, a.Settings.Storage.Backend)
	}
	return nil
}

// loadSideTableCSV replaces the backend side table with an in-memory one
// built from the configured CSV file.
func (a *App) loadSideTableCSV(ctx context.Context) error {
	path := a.Settings.Storage.SideTableCSV
	if path == "" {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: side table %s: %w", domain.ErrConfiguration, path, err)
	}
	defer f.Close()

	rows, err := services.ReadSideTableCSV(f)
	if err != nil {
		return fmt.Errorf("side table %s: %w", path, err)
	}
	store := memory.NewSideTableStore()
	if err := store.Put(ctx, rows); err != nil {
		return err
	}
	logger.Info("Loaded %d side-table rows from %s", len(rows), path)
	a.SideTable = store
	return nil
}

func (a *App) openCache(ctx context.Context) {
	switch a.Settings.Cache.Backend {
	case domain.CacheBackendRedis:
		c, err := rediscache.New(ctx, a.Settings.Cache.RedisURL)
		if err != nil {
			a.warn("cache: %v, falling back to in-memory cache", err)
			a.setCache(memorycache.New(a.Settings.Cache.TTL))
			return
		}
		a.setCache(c)
	case domain.CacheBackendMemory, "":
		a.setCache(memorycache.New(a.Settings.Cache.TTL))
	case domain.CacheBackendNone:
	default:
		a.warn("cache: unknown backend %q, caching disabled", a.Settings.Cache.Backend)
	}
}

func (a *App) setCache(c driven.EmbeddingCache) {
	a.Cache = c
	a.closers = append(a.closers, c.Close)
}

func (a *App) warn(format string, args ...any) {
	a.Warnings = append(a.Warnings, fmt.Sprintf(format, args...))
}

// Close releases every opened component in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
