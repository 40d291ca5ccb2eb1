package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Zero(t, cosineSimilarity([]float32{1}, []float32{1, 0}))
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 0}))
}

func TestMaximalMarginalRelevance(t *testing.T) {
	query := []float32{1, 0.5}
	candidates := [][]float32{
		{1, 0.4},  // closest to the query
		{1, 0.39}, // near duplicate of the first
		{0.5, 1},  // less relevant, different direction
	}

	t.Run("pure relevance keeps similarity order", func(t *testing.T) {
		assert.Equal(t, []int{0, 1, 2}, maximalMarginalRelevance(query, candidates, 3, 1.0))
	})

	t.Run("balanced lambda skips near duplicates", func(t *testing.T) {
		assert.Equal(t, []int{0, 2}, maximalMarginalRelevance(query, candidates, 2, 0.5))
	})

	t.Run("k larger than pool", func(t *testing.T) {
		assert.Len(t, maximalMarginalRelevance(query, candidates, 10, 0.5), 3)
	})

	t.Run("empty inputs", func(t *testing.T) {
		assert.Nil(t, maximalMarginalRelevance(query, nil, 3, 0.5))
		assert.Nil(t, maximalMarginalRelevance(query, candidates, 0, 0.5))
	})
}
