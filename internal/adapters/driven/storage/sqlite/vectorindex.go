package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/refrag/internal/core/domain"
	"github.com/custodia-labs/refrag/internal/core/ports/driven"
	"github.com/custodia-labs/refrag/internal/logger"
)

// vectorIndex implements driven.VectorIndex over the chunks table.
// Searches run against an in-memory copy that is loaded on first use and
// dropped whenever Add writes new rows.
type vectorIndex struct {
	store *Store

	mu     sync.RWMutex
	loaded bool
	chunks []domain.Chunk
	norms  []float64
}

var _ driven.VectorIndex = (*vectorIndex)(nil)

// Add inserts chunks with their embeddings.
func (v *vectorIndex) Add(ctx context.Context, chunks []domain.Chunk) error {
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %s has no embedding", domain.ErrInvalidInput, c.ID)
		}
	}

	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, source, chunk_index, chunk_type, content, metadata, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source = excluded.source,
			chunk_index = excluded.chunk_index,
			chunk_type = excluded.chunk_type,
			content = excluded.content,
			metadata = excluded.metadata,
			embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		metadataJSON, err := json.Marshal(c.Metadata)
		if err != nil {
			return fmt.Errorf("marshalling chunk metadata: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, c.ID, c.Metadata.Source, c.Metadata.ChunkIndex,
			c.Metadata.Type.String(), c.Content, string(metadataJSON), encodeVector(c.Embedding)); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	v.mu.Lock()
	v.loaded = false
	v.chunks, v.norms = nil, nil
	v.mu.Unlock()
	return nil
}

// Search finds the k nearest chunks to query by cosine similarity.
func (v *vectorIndex) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}
	if err := v.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	qn := vectorNorm(query)

	v.mu.RLock()
	defer v.mu.RUnlock()

	hits := make([]driven.VectorHit, 0, len(v.chunks))
	for i, c := range v.chunks {
		if len(c.Embedding) != len(query) {
			continue
		}
		var dot float64
		for j := range query {
			dot += float64(query[j]) * float64(c.Embedding[j])
		}
		sim := 0.0
		if qn > 0 && v.norms[i] > 0 {
			sim = dot / (qn * v.norms[i])
		}
		hits = append(hits, driven.VectorHit{Chunk: c, Similarity: sim})
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
func (v *vectorIndex) Count(ctx context.Context) (int, error) {
	var n int
	if err := v.store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// Close is a no-op; the owning Store closes the database.
func (v *vectorIndex) Close() error {
	return nil
}

func (v *vectorIndex) ensureLoaded(ctx context.Context) error {
	v.mu.RLock()
	loaded := v.loaded
	v.mu.RUnlock()
	if loaded {
		return nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.loaded {
		return nil
	}

	rows, err := v.store.db.QueryContext(ctx, `
		SELECT id, content, metadata, embedding FROM chunks ORDER BY rowid
	`)
	if err != nil {
		return fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	var norms []float64       //nolint:prealloc // size unknown from query
	for rows.Next() {
		var c domain.Chunk
		var metadataJSON string
		var blob []byte
		if err := rows.Scan(&c.ID, &c.Content, &metadataJSON, &blob); err != nil {
			return fmt.Errorf("scanning chunk: %w", err)
		}
		if metadataJSON != "" {
			if err := json.Unmarshal([]byte(metadataJSON), &c.Metadata); err != nil {
				return fmt.Errorf("unmarshaling chunk metadata: %w", err)
			}
		}
		c.Embedding = decodeVector(blob)
		chunks = append(chunks, c)
		norms = append(norms, vectorNorm(c.Embedding))
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating chunks: %w", err)
	}

	v.chunks, v.norms, v.loaded = chunks, norms, true
	logger.Debug("Loaded %d chunk vectors from SQLite", len(chunks))
	return nil
}

func vectorNorm(a []float32) float64 {
	var sum float64
	for _, x := range a {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
