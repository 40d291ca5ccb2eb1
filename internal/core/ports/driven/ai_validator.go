package driven

import (
	"context"

	"github.com/custodia-labs/refrag/internal/core/domain"
)

// AIConfigValidator checks a provider with the given settings before they
// are stored or bound to a user.
type AIConfigValidator interface {
	// ValidateEmbedding embeds a short test string.
	ValidateEmbedding(ctx context.Context, config *domain.EmbeddingSettings) error

	// ValidateLLM requests a one-token completion.
	// Rejected credentials return domain.ErrAuthInvalid.
	ValidateLLM(ctx context.Context, config *domain.LLMSettings) error
}
