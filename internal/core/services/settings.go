package services

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/custodia-labs/refrag/internal/core/domain"
	"github.com/custodia-labs/refrag/internal/core/ports/driven"
	"github.com/custodia-labs/refrag/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider   = "embedding.provider"
	keyEmbedModel      = "embedding.model"
	keyEmbedBaseURL    = "embedding.base_url"
	keyEmbedAPIKey     = "embedding.api_key"
	keyLLMProvider     = "llm.provider"
	keyLLMModel        = "llm.model"
	keyLLMBaseURL      = "llm.base_url"
	keyLLMAPIKey       = "llm.api_key"
	keyLLMTemperature  = "llm.temperature"
	keyLLMMaxRetries   = "llm.max_retries"
	keyLLMRPS          = "llm.requests_per_second"
	keyRetrievalK      = "retrieval.k"
	keyRetrievalFetchK = "retrieval.fetch_k"
	keyRetrievalLambda = "retrieval.lambda"
	keyRetrievalStrat  = "retrieval.strategy"
	keyRetrievalTTL    = "retrieval.timeout"
	keyStorageBackend  = "storage.backend"
	keyStorageSQLite   = "storage.sqlite_path"
	keyStoragePostgres = "storage.postgres_dsn"
	keyStorageCSV      = "storage.side_table_csv"
	keyCacheBackend    = "cache.backend"
	keyCacheRedisURL   = "cache.redis_url"
	keyCacheTTL        = "cache.ttl"
	keyServerAddr      = "server.addr"
	keyIngestBatch     = "ingest.batch_size"
)

// keyKinds declares the value type of every settable key.
var keyKinds = map[string]string{
	keyEmbedProvider: "provider", keyEmbedModel: "string", keyEmbedBaseURL: "string", keyEmbedAPIKey: "string",
	keyLLMProvider: "provider", keyLLMModel: "string", keyLLMBaseURL: "string", keyLLMAPIKey: "string",
	keyLLMTemperature: "float", keyLLMMaxRetries: "int", keyLLMRPS: "float",
	keyRetrievalK: "int", keyRetrievalFetchK: "int", keyRetrievalLambda: "float",
	keyRetrievalStrat: "strategy", keyRetrievalTTL: "int",
	keyStorageBackend: "storage", keyStorageSQLite: "string", keyStoragePostgres: "string", keyStorageCSV: "string",
	keyCacheBackend: "cache", keyCacheRedisURL: "string", keyCacheTTL: "int",
	keyServerAddr: "string", keyIngestBatch: "int",
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:    s.getString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider:          s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:             s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:           s.configStore.GetString(keyLLMBaseURL),
			APIKey:            s.configStore.GetString(keyLLMAPIKey),
			Temperature:       s.getFloat(keyLLMTemperature, defaults.LLM.Temperature),
			MaxRetries:        s.getInt(keyLLMMaxRetries, defaults.LLM.MaxRetries),
			RequestsPerSecond: s.getFloat(keyLLMRPS, defaults.LLM.RequestsPerSecond),
		},
		Retrieval: domain.RetrievalSettings{
			K:        s.getInt(keyRetrievalK, defaults.Retrieval.K),
			FetchK:   s.getInt(keyRetrievalFetchK, defaults.Retrieval.FetchK),
			Lambda:   s.getFloat(keyRetrievalLambda, defaults.Retrieval.Lambda),
			Strategy: domain.SearchStrategy(s.getString(keyRetrievalStrat, defaults.Retrieval.Strategy.String())),
			Timeout:  s.getSeconds(keyRetrievalTTL, defaults.Retrieval.Timeout),
		}.Normalised(),
		Storage: domain.StorageSettings{
			Backend:      domain.StorageBackend(s.getString(keyStorageBackend, string(defaults.Storage.Backend))),
			SQLitePath:   s.configStore.GetString(keyStorageSQLite),
			PostgresDSN:  s.configStore.GetString(keyStoragePostgres),
			SideTableCSV: s.configStore.GetString(keyStorageCSV),
		},
		Cache: domain.CacheSettings{
			Backend:  domain.CacheBackend(s.getString(keyCacheBackend, string(defaults.Cache.Backend))),
			RedisURL: s.configStore.GetString(keyCacheRedisURL),
			TTL:      s.getSeconds(keyCacheTTL, defaults.Cache.TTL),
		},
		Server: domain.ServerSettings{
			Addr: s.getString(keyServerAddr, defaults.Server.Addr),
		},
		IngestBatchSize: s.getInt(keyIngestBatch, defaults.IngestBatchSize),
	}

	// Model defaults follow the provider when none is stored.
	if s.configStore.GetString(keyLLMModel) == "" {
		if m, ok := domain.DefaultLLMModels()[settings.LLM.Provider]; ok {
			settings.LLM.Model = m
		}
	}
	if s.configStore.GetString(keyEmbedModel) == "" {
		if m, ok := domain.DefaultEmbeddingModels()[settings.Embedding.Provider]; ok {
			settings.Embedding.Model = m
		}
	}

	return settings, nil
}

// Set updates a single dotted configuration key and persists it.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := keyKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	var typed any
	switch kind {
	case "int":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s expects a non-negative integer", domain.ErrInvalidInput, key)
		}
		typed = n
	case "float":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s expects a non-negative number", domain.ErrInvalidInput, key)
		}
		typed = f
	case "provider":
		if !domain.AIProvider(value).IsValid() {
			return fmt.Errorf("%w: invalid provider %q", domain.ErrInvalidInput, value)
		}
		typed = value
	case "strategy":
		if !domain.SearchStrategy(value).IsValid() {
			return fmt.Errorf("%w: invalid strategy %q", domain.ErrInvalidInput, value)
		}
		typed = value
	case "storage":
		if !domain.StorageBackend(value).IsValid() {
			return fmt.Errorf("%w: invalid storage backend %q", domain.ErrInvalidInput, value)
		}
		typed = value
	case "cache":
		if !domain.CacheBackend(value).IsValid() {
			return fmt.Errorf("%w: invalid cache backend %q", domain.ErrInvalidInput, value)
		}
		typed = value
	default:
		typed = value
	}

	if err := s.configStore.Set(key, typed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// SetStrategy updates the retrieval strategy.
func (s *SettingsService) SetStrategy(strategy domain.SearchStrategy) error {
	if !strategy.IsValid() {
		return fmt.Errorf("invalid search strategy: %s", strategy)
	}
	return s.configStore.Set(keyRetrievalStrat, strategy.String())
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	if model == "" {
		model = domain.DefaultEmbeddingModels()[provider]
	}

	baseURL := ""
	if provider.IsLocal() {
		baseURL = s.getString(keyEmbedBaseURL, "http://localhost:11434")
	}

	return s.saveAll(map[string]any{
		keyEmbedProvider: provider.String(),
		keyEmbedModel:    model,
		keyEmbedBaseURL:  baseURL,
		keyEmbedAPIKey:   apiKey,
	})
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	if model == "" {
		model = domain.DefaultLLMModels()[provider]
	}

	baseURL := ""
	if provider.IsLocal() {
		baseURL = s.getString(keyLLMBaseURL, "http://localhost:11434")
	}

	return s.saveAll(map[string]any{
		keyLLMProvider: provider.String(),
		keyLLMModel:    model,
		keyLLMBaseURL:  baseURL,
		keyLLMAPIKey:   apiKey,
	})
}

// Validate checks the settings needed to answer queries.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Storage.Backend.IsValid() {
		return fmt.Errorf("%w: invalid storage backend %q", domain.ErrConfiguration, settings.Storage.Backend)
	}
	if settings.Storage.Backend == domain.StorageBackendPostgres && settings.Storage.PostgresDSN == "" {
		return fmt.Errorf("%w: storage.postgres_dsn is required for the postgres backend", domain.ErrConfiguration)
	}
	if !settings.Cache.Backend.IsValid() {
		return fmt.Errorf("%w: invalid cache backend %q", domain.ErrConfiguration, settings.Cache.Backend)
	}
	if settings.Cache.Backend == domain.CacheBackendRedis && settings.Cache.RedisURL == "" {
		return fmt.Errorf("%w: cache.redis_url is required for the redis cache", domain.ErrConfiguration)
	}
	if !settings.Embedding.IsConfigured() {
		return fmt.Errorf("%w: embedding provider %q is not configured", domain.ErrConfiguration, settings.Embedding.Provider)
	}
	if !settings.LLM.IsConfigured() {
		return fmt.Errorf("%w: LLM provider %q is not configured", domain.ErrConfiguration, settings.LLM.Provider)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateLLMConfig validates the current LLM configuration against the provider.
func (s *SettingsService) ValidateLLMConfig(ctx context.Context) error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(ctx, &settings.LLM)
}

func (s *SettingsService) saveAll(values map[string]any) error {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if err := s.configStore.Set(k, values[k]); err != nil {
			return fmt.Errorf("save %s: %w", k, err)
		}
	}
	return nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return time.Duration(val) * time.Second
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
