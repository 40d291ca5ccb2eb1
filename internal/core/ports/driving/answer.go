package driving

import (
	"context"

	"github.com/custodia-labs/refrag/internal/core/domain"
)

// AnswerService answers questions with grounded evidence.
type AnswerService interface {
	// Answer runs retrieval, reference resolution and generation for query.
	// It never returns a bare error: failures are carried in the result.
	Answer(ctx context.Context, query string) domain.AnswerResult
}

// RetrievalService returns the ranked chunks for a query.
type RetrievalService interface {
	// Retrieve returns up to k chunks. k <= 0 uses the configured default.
	Retrieve(ctx context.Context, query string, k int) ([]domain.Chunk, error)
}

// ReferenceResolver joins retrieved chunks against the side table.
type ReferenceResolver interface {
	// Resolve returns the tables and images referenced by chunks.
	Resolve(ctx context.Context, chunks []domain.Chunk) (domain.ResolvedEvidence, error)
}
