package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/refrag/internal/core/domain"
	"github.com/custodia-labs/refrag/internal/core/ports/driven"
	"github.com/custodia-labs/refrag/internal/core/ports/driving"
	"github.com/custodia-labs/refrag/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.RetrievalService = (*RetrievalService)(nil)

// RetrievalService embeds a query and ranks chunks from the vector index.
type RetrievalService struct {
	vectorIndex      driven.VectorIndex
	embeddingService driven.EmbeddingService
	cache            driven.EmbeddingCache
	cacheTTL         time.Duration
	settings         domain.RetrievalSettings
}

// NewRetrievalService creates a retrieval service.
// Zero-valued settings fields fall back to defaults.
func NewRetrievalService(
	vectorIndex driven.VectorIndex,
	embeddingService driven.EmbeddingService,
	settings domain.RetrievalSettings,
) *RetrievalService {
	return &RetrievalService{
		vectorIndex:      vectorIndex,
		embeddingService: embeddingService,
		settings:         settings.Normalised(),
	}
}

// SetEmbeddingCache enables query embedding memoisation.
func (s *RetrievalService) SetEmbeddingCache(cache driven.EmbeddingCache, ttl time.Duration) {
	s.cache = cache
	s.cacheTTL = ttl
}

// Settings returns the effective retrieval settings.
func (s *RetrievalService) Settings() domain.RetrievalSettings {
	return s.settings
}

// Retrieve returns up to k chunks ranked by the configured strategy.
// All failures are wrapped with domain.ErrRetrieval.
func (s *RetrievalService) Retrieve(ctx context.Context, query string, k int) ([]domain.Chunk, error) {
	logger.Section("Retrieval")
	defer logger.Timed("retrieval")()

	if s.vectorIndex == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrieval, domain.ErrVectorIndexUnavailable)
	}
	if s.embeddingService == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrRetrieval, domain.ErrEmbeddingUnavailable)
	}

	if k <= 0 {
		k = s.settings.K
	}
	fetch := k
	if s.settings.Strategy == domain.SearchStrategyMMR {
		fetch = max(s.settings.FetchK, k)
	}
	logger.Debug("Strategy: %s, k=%d, fetch=%d", s.settings.Strategy, k, fetch)

	embedding, err := s.embedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrRetrieval, err)
	}

	hits, err := s.vectorIndex.Search(ctx, embedding, fetch)
	if err != nil {
		return nil, fmt.Errorf("%w: vector search: %w", domain.ErrRetrieval, err)
	}
	logger.Debug("Vector index returned %d candidates", len(hits))

	if s.settings.Strategy == domain.SearchStrategyMMR && len(hits) > 0 {
		hits = rerankMMR(embedding, hits, k, s.settings.Lambda)
	} else if len(hits) > k {
		hits = hits[:k]
	}

	chunks := make([]domain.Chunk, len(hits))
	for i, hit := range hits {
		c := hit.Chunk
		c.Rank = i
		c.Score = hit.Similarity
		chunks[i] = c
	}
	return chunks, nil
}

func (s *RetrievalService) embedQuery(ctx context.Context, query string) ([]float32, error) {
	key := ""
	if s.cache != nil {
		key = queryCacheKey(s.embeddingService.ModelName(), query)
		if vec, ok := s.cache.Get(ctx, key); ok {
			logger.Debug("Query embedding cache hit")
			return vec, nil
		}
	}

	vec, err := s.embeddingService.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, vec, s.cacheTTL); err != nil {
			logger.Warn("Failed to cache query embedding: %v", err)
		}
	}
	return vec, nil
}

func rerankMMR(query []float32, hits []driven.VectorHit, k int, lambda float64) []driven.VectorHit {
	vectors := make([][]float32, len(hits))
	for i, h := range hits {
		vectors[i] = h.Chunk.Embedding
	}
	picked := maximalMarginalRelevance(query, vectors, k, lambda)
	out := make([]driven.VectorHit, len(picked))
	for i, idx := range picked {
		out[i] = hits[idx]
	}
	return out
}

// queryCacheKey scopes cached vectors to the embedding model.
func queryCacheKey(model, query string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(query)))
	return "emb:" + model + ":" + hex.EncodeToString(sum[:])
}
