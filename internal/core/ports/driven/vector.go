package driven

import (
	"context"

	"github.com/custodia-labs/refrag/internal/core/domain"
)

// VectorIndex stores chunk embeddings and answers similarity queries.
// Implementations must be safe for concurrent reads.
type VectorIndex interface {
	// Add inserts chunks with their embeddings.
	// Chunks without an embedding are rejected with domain.ErrInvalidInput.
	Add(ctx context.Context, chunks []domain.Chunk) error

	// Search finds the k nearest chunks to the query vector,
	// ordered by descending similarity. Hits carry the stored embedding
	// so callers can re-rank.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Count returns the number of indexed chunks.
	Count(ctx context.Context) (int, error)

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// Chunk is the matched chunk, including its embedding.
	Chunk domain.Chunk

	// Similarity is the cosine similarity score.
	Similarity float64
}
