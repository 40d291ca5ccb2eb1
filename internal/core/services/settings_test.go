package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/refrag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/refrag/internal/core/domain"
)

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	settings, err := service.Get()

	require.NoError(t, err)
	defaults := domain.DefaultAppSettings()
	assert.Equal(t, defaults.LLM.Provider, settings.LLM.Provider)
	assert.Equal(t, defaults.LLM.Model, settings.LLM.Model)
	assert.Equal(t, defaults.Embedding.Model, settings.Embedding.Model)
	assert.Equal(t, defaults.Retrieval, settings.Retrieval)
	assert.Equal(t, defaults.Storage.Backend, settings.Storage.Backend)
	assert.Equal(t, defaults.Cache.TTL, settings.Cache.TTL)
	assert.Equal(t, ":8080", settings.Server.Addr)
	assert.Equal(t, 32, settings.IngestBatchSize)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		"llm.provider":       "ollama",
		"retrieval.k":        int64(4),
		"retrieval.fetch_k":  int64(12),
		"retrieval.lambda":   0.8,
		"retrieval.strategy": "similarity",
		"retrieval.timeout":  int64(5),
		"cache.backend":      "redis",
		"cache.redis_url":    "redis://localhost:6379/0",
	})
	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, settings.LLM.Provider)
	assert.Equal(t, "llama3.2", settings.LLM.Model, "model default follows the provider")
	assert.Equal(t, 4, settings.Retrieval.K)
	assert.Equal(t, 12, settings.Retrieval.FetchK)
	assert.InDelta(t, 0.8, settings.Retrieval.Lambda, 1e-9)
	assert.Equal(t, domain.SearchStrategySimilarity, settings.Retrieval.Strategy)
	assert.Equal(t, 5*time.Second, settings.Retrieval.Timeout)
	assert.Equal(t, domain.CacheBackendRedis, settings.Cache.Backend)
}

func TestSettingsService_Get_InvalidProviderFallsBack(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{"embedding.provider": "nope"})
	service := NewSettingsService(store, nil)

	settings, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
}

func TestSettingsService_Set(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
	}{
		{name: "int", key: "retrieval.k", value: "7"},
		{name: "negative int", key: "retrieval.k", value: "-1", wantErr: true},
		{name: "float", key: "retrieval.lambda", value: "0.3"},
		{name: "bad float", key: "llm.temperature", value: "warm", wantErr: true},
		{name: "provider", key: "llm.provider", value: "anthropic"},
		{name: "bad provider", key: "llm.provider", value: "cohere", wantErr: true},
		{name: "strategy", key: "retrieval.strategy", value: "mmr"},
		{name: "bad strategy", key: "retrieval.strategy", value: "bm25", wantErr: true},
		{name: "storage", key: "storage.backend", value: "postgres"},
		{name: "bad cache", key: "cache.backend", value: "memcached", wantErr: true},
		{name: "string", key: "server.addr", value: "127.0.0.1:9000"},
		{name: "unknown key", key: "search.mode", value: "hybrid", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memory.NewConfigStore()
			service := NewSettingsService(store, nil)

			err := service.Set(tt.key, tt.value)

			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				_, stored := store.Get(tt.key)
				assert.False(t, stored)
				return
			}
			require.NoError(t, err)
			_, stored := store.Get(tt.key)
			assert.True(t, stored)
		})
	}
}

func TestSettingsService_Set_TypedValues(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	require.NoError(t, service.Set("retrieval.k", "7"))
	require.NoError(t, service.Set("retrieval.lambda", "0.3"))

	assert.Equal(t, 7, store.GetInt("retrieval.k"))
	assert.InDelta(t, 0.3, store.GetFloat("retrieval.lambda"), 1e-9)

	settings, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, 7, settings.Retrieval.K)
	assert.InDelta(t, 0.3, settings.Retrieval.Lambda, 1e-9)
}

func TestSettingsService_SetStrategy(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store, nil)

	require.NoError(t, service.SetStrategy(domain.SearchStrategySimilarity))
	assert.Equal(t, "similarity", store.GetString("retrieval.strategy"))

	assert.Error(t, service.SetStrategy(domain.SearchStrategy("random")))
}

func TestSettingsService_SetLLMProvider(t *testing.T) {
	t.Run("cloud provider requires a key", func(t *testing.T) {
		service := NewSettingsService(memory.NewConfigStore(), nil)
		assert.Error(t, service.SetLLMProvider(domain.AIProviderGroq, "", ""))
	})

	t.Run("default model and no base URL for cloud", func(t *testing.T) {
		store := memory.NewConfigStore()
		service := NewSettingsService(store, nil)

		require.NoError(t, service.SetLLMProvider(domain.AIProviderAnthropic, "", "sk-ant-test"))

		assert.Equal(t, "anthropic", store.GetString("llm.provider"))
		assert.Equal(t, "claude-3-5-sonnet-latest", store.GetString("llm.model"))
		assert.Equal(t, "sk-ant-test", store.GetString("llm.api_key"))
		assert.Empty(t, store.GetString("llm.base_url"))
	})

	t.Run("local provider gets a base URL", func(t *testing.T) {
		store := memory.NewConfigStore()
		service := NewSettingsService(store, nil)

		require.NoError(t, service.SetLLMProvider(domain.AIProviderOllama, "mistral", ""))

		assert.Equal(t, "mistral", store.GetString("llm.model"))
		assert.Equal(t, "http://localhost:11434", store.GetString("llm.base_url"))
	})
}

func TestSettingsService_SetEmbeddingProvider(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)

	err := service.SetEmbeddingProvider(domain.AIProviderAnthropic, "", "key")
	assert.Error(t, err, "anthropic has no embeddings")

	store := memory.NewConfigStore()
	service = NewSettingsService(store, nil)
	require.NoError(t, service.SetEmbeddingProvider(domain.AIProviderOllama, "", ""))
	assert.Equal(t, "nomic-embed-text", store.GetString("embedding.model"))
}

func TestSettingsService_Validate(t *testing.T) {
	tests := []struct {
		name    string
		values  map[string]any
		wantErr bool
	}{
		{
			name: "configured",
			values: map[string]any{
				"llm.api_key":       "gsk-test",
				"embedding.api_key": "sk-test",
			},
		},
		{
			name:    "missing keys",
			values:  map[string]any{},
			wantErr: true,
		},
		{
			name: "postgres without dsn",
			values: map[string]any{
				"llm.api_key":       "gsk-test",
				"embedding.api_key": "sk-test",
				"storage.backend":   "postgres",
			},
			wantErr: true,
		},
		{
			name: "redis without url",
			values: map[string]any{
				"llm.api_key":       "gsk-test",
				"embedding.api_key": "sk-test",
				"cache.backend":     "redis",
			},
			wantErr: true,
		},
		{
			name: "local providers need no keys",
			values: map[string]any{
				"llm.provider":       "ollama",
				"embedding.provider": "ollama",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore(tt.values), nil)

			err := service.Validate()

			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrConfiguration)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSettingsService_ValidateLLMConfig(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{"llm.api_key": "gsk-test"})

	assert.NoError(t, NewSettingsService(store, nil).ValidateLLMConfig(context.Background()))

	validator := &mockValidator{llmErr: errors.New("bad key")}
	err := NewSettingsService(store, validator).ValidateLLMConfig(context.Background())

	assert.EqualError(t, err, "bad key")
	require.Len(t, validator.checked, 1)
	assert.Equal(t, "gsk-test", validator.checked[0].APIKey)
	assert.Equal(t, domain.AIProviderGroq, validator.checked[0].Provider)
}

func TestSettingsService_GetDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), nil)
	assert.Equal(t, domain.DefaultAppSettings(), service.GetDefaults())
}
