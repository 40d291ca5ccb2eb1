package driven

import (
	"context"

	"github.com/custodia-labs/refrag/internal/core/domain"
)

// Generator turns a grounded context into answer text.
type Generator interface {
	// Complete renders the prompt templates around gc and returns the reply.
	Complete(ctx context.Context, gc domain.GroundedContext) (string, error)
}
