package driven

import (
	"context"
	"time"
)

// EmbeddingService turns text into vectors for the VectorIndex.
// Ollama and OpenAI provide implementations.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input, in input order. Adapters
	// split oversized batches to fit the provider's request limit.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the vector length, known before the first call.
	Dimensions() int
	ModelName() string

	Ping(ctx context.Context) error
	Close() error
}

// EmbeddingCache memoises query embeddings.
// A miss is reported with ok=false, never as an error.
type EmbeddingCache interface {
	Get(ctx context.Context, key string) (vec []float32, ok bool)
	// Set stores vec under key until ttl elapses.
	Set(ctx context.Context, key string, vec []float32, ttl time.Duration) error
	Close() error
}
