package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/refrag/internal/core/domain"
	"github.com/custodia-labs/refrag/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is a brute-force cosine index held in memory.
type VectorIndex struct {
	mu     sync.RWMutex
	chunks []domain.Chunk
	norms  []float64
}

// NewVectorIndex creates an empty in-memory vector index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{}
}

// Add inserts chunks with their embeddings.
func (v *VectorIndex) Add(_ context.Context, chunks []domain.Chunk) error {
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, c.ID)
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	for _, c := range chunks {
		v.chunks = append(v.chunks, c)
		v.norms = append(v.norms, norm(c.Embedding))
	}
	return nil
}

// Search finds the k nearest chunks to query.
func (v *VectorIndex) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}
	qn := norm(query)

	v.mu.RLock()
	defer v.mu.RUnlock()

	hits := make([]driven.VectorHit, 0, len(v.chunks))
	for i, c := range v.chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(c.Embedding) != len(query) {
			continue
		}
		hits = append(hits, driven.VectorHit{
			Chunk:      c,
			Similarity: dot(query, c.Embedding) / (qn * v.norms[i]),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Count returns the number of indexed chunks.
func (v *VectorIndex) Count(_ context.Context) (int, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.chunks), nil
}

// Close is a no-op.
func (v *VectorIndex) Close() error {
	return nil
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func norm(a []float32) float64 {
	n := math.Sqrt(dot(a, a))
	if n == 0 {
		// Zero vectors score 0 against everything rather than NaN.
		return math.Inf(1)
	}
	return n
}
