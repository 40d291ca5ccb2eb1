package driving

import (
	"context"

	"github.com/custodia-labs/refrag/internal/core/domain"
)

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Set updates a single dotted configuration key and persists it.
	Set(key, value string) error

	// SetLLMProvider configures the LLM provider.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetStrategy updates the retrieval strategy.
	SetStrategy(strategy domain.SearchStrategy) error

	// Validate checks the settings needed to answer queries.
	// Problems are reported as domain.ErrConfiguration.
	Validate() error

	// ValidateLLMConfig validates the current LLM configuration against the provider.
	ValidateLLMConfig(ctx context.Context) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
