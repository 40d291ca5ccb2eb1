// Package ai builds the chat and embedding adapters named by settings.
package ai

import (
	"fmt"
	"time"

	ollamaembed "github.com/custodia-labs/refrag/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/refrag/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/refrag/internal/adapters/driven/llm"
	anthropicllm "github.com/custodia-labs/refrag/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/refrag/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/refrag/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/refrag/internal/core/domain"
	"github.com/custodia-labs/refrag/internal/core/ports/driven"
)

// validationTimeout bounds each validation round trip.
const validationTimeout = 10 * time.Second

type (
	llmBuilder       func(s *domain.LLMSettings) (driven.LLMService, error)
	embeddingBuilder func(s *domain.EmbeddingSettings) (driven.EmbeddingService, error)
)

var llmBuilders = map[domain.AIProvider]llmBuilder{
	domain.AIProviderGroq: func(s *domain.LLMSettings) (driven.LLMService, error) {
		base := s.BaseURL
		if base == "" {
			base = openaillm.GroqBaseURL
		}
		return openaillm.NewLLMService(openaillm.LLMConfig{
			Provider: string(domain.AIProviderGroq),
			APIKey:   s.APIKey,
			BaseURL:  base,
			Model:    s.Model,
		})
	},
	domain.AIProviderOpenAI: func(s *domain.LLMSettings) (driven.LLMService, error) {
		return openaillm.NewLLMService(openaillm.LLMConfig{APIKey: s.APIKey, BaseURL: s.BaseURL, Model: s.Model})
	},
	domain.AIProviderAnthropic: func(s *domain.LLMSettings) (driven.LLMService, error) {
		return anthropicllm.NewLLMService(anthropicllm.Config{APIKey: s.APIKey, BaseURL: s.BaseURL, Model: s.Model})
	},
	domain.AIProviderOllama: func(s *domain.LLMSettings) (driven.LLMService, error) {
		return ollamallm.NewLLMService(ollamallm.LLMConfig{BaseURL: s.BaseURL, Model: s.Model}), nil
	},
}

var embeddingBuilders = map[domain.AIProvider]embeddingBuilder{
	domain.AIProviderOpenAI: func(s *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
		return openaiembed.NewEmbeddingService(openaiembed.Config{APIKey: s.APIKey, BaseURL: s.BaseURL, Model: s.Model})
	},
	domain.AIProviderOllama: func(s *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{BaseURL: s.BaseURL, Model: s.Model}), nil
	},
}

// CreateEmbeddingService returns the embedding adapter for settings.Provider.
// Only providers with an embeddings endpoint are accepted.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: embedding provider is not configured", domain.ErrConfiguration)
	}
	build, ok := embeddingBuilders[settings.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no embeddings endpoint, use ollama or openai",
			domain.ErrUnsupportedType, settings.Provider)
	}
	return build(settings)
}

// CreateLLMService returns the chat adapter for settings.Provider wrapped in
// llm.Retrying, which paces calls at settings.RequestsPerSecond and retries
// throttled or transient failures up to settings.MaxRetries times.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := newLLMService(settings)
	if err != nil {
		return nil, err
	}
	return llm.NewRetrying(svc, settings.RequestsPerSecond, settings.MaxRetries), nil
}

func newLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, fmt.Errorf("%w: LLM provider is not configured", domain.ErrConfiguration)
	}
	build, ok := llmBuilders[settings.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported LLM provider %q", domain.ErrUnsupportedType, settings.Provider)
	}
	return build(settings)
}
