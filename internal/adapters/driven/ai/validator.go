package ai

import (
	"context"
	"fmt"

	"github.com/custodia-labs/refrag/internal/core/domain"
	"github.com/custodia-labs/refrag/internal/core/ports/driven"
)

// Ensure ConfigValidator implements the interface.
var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator validates AI provider configurations against the live provider.
type ConfigValidator struct{}

// NewConfigValidator creates a new AI config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEmbedding embeds a short test string.
func (v *ConfigValidator) ValidateEmbedding(ctx context.Context, config *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(config)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(ctx, validationTimeout)
	defer cancel()
	if _, err := svc.Embed(ctx, "Hello"); err != nil {
		return fmt.Errorf("embedding check failed: %w", err)
	}
	return nil
}

// ValidateLLM sends a one-token chat so that a rejected key surfaces as domain.ErrAuthInvalid.
func (v *ConfigValidator) ValidateLLM(ctx context.Context, config *domain.LLMSettings) error {
	svc, err := newLLMService(config)
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, cancel := context.WithTimeout(ctx, validationTimeout)
	defer cancel()
	_, err = svc.Chat(ctx, []driven.ChatMessage{{Role: driven.RoleUser, Content: "Hello"}},
		driven.ChatOptions{MaxTokens: 1})
	if err != nil {
		return fmt.Errorf("LLM check failed: %w", err)
	}
	return nil
}
