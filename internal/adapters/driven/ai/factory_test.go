package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/refrag/internal/adapters/driven/llm"
	"github.com/custodia-labs/refrag/internal/core/domain"
)

func TestCreateLLMService(t *testing.T) {
	tests := []struct {
		name     string
		settings domain.LLMSettings
		model    string
		wantErr  error
	}{
		{
			name:     "groq",
			settings: domain.LLMSettings{Provider: domain.AIProviderGroq, APIKey: "gsk", Model: "llama-3.1-8b-instant"},
			model:    "llama-3.1-8b-instant",
		},
		{
			name:     "openai",
			settings: domain.LLMSettings{Provider: domain.AIProviderOpenAI, APIKey: "sk"},
			model:    "gpt-4o-mini",
		},
		{
			name:     "anthropic",
			settings: domain.LLMSettings{Provider: domain.AIProviderAnthropic, APIKey: "sk-ant"},
			model:    "claude-3-5-sonnet-latest",
		},
		{
			name:     "ollama",
			settings: domain.LLMSettings{Provider: domain.AIProviderOllama, Model: "mistral"},
			model:    "mistral",
		},
		{
			name:     "missing key",
			settings: domain.LLMSettings{Provider: domain.AIProviderGroq},
			wantErr:  domain.ErrConfiguration,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := CreateLLMService(&tt.settings)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, &llm.Retrying{}, svc)
			assert.Equal(t, tt.model, svc.ModelName())
		})
	}
}

func TestCreateEmbeddingService(t *testing.T) {
	svc, err := CreateEmbeddingService(&domain.EmbeddingSettings{Provider: domain.AIProviderOllama})
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", svc.ModelName())

	svc, err = CreateEmbeddingService(&domain.EmbeddingSettings{Provider: domain.AIProviderOpenAI, APIKey: "sk"})
	require.NoError(t, err)
	assert.Equal(t, 3072, svc.Dimensions())

	_, err = CreateEmbeddingService(&domain.EmbeddingSettings{Provider: domain.AIProviderGroq, APIKey: "gsk"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, err = CreateEmbeddingService(nil)
	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestCreateLLMService_UnknownProvider(t *testing.T) {
	_, err := CreateLLMService(&domain.LLMSettings{Provider: domain.AIProvider("mystery"), APIKey: "k", Model: "m"})
	assert.Error(t, err)
}
