package services

import (
	"math"
	"slices"
)

// maximalMarginalRelevance selects up to k candidate indices that balance
// similarity to the query against similarity to already selected candidates.
// lambda=1 is pure relevance, lambda=0 is pure diversity. The first pick is
// always the candidate most similar to the query.
func maximalMarginalRelevance(query []float32, candidates [][]float32, k int, lambda float64) []int {
	n := min(k, len(candidates))
	if n <= 0 {
		return nil
	}

	toQuery := make([]float64, len(candidates))
	for i, c := range candidates {
		toQuery[i] = cosineSimilarity(query, c)
	}

	first := 0
	for i := range toQuery {
		if toQuery[i] > toQuery[first] {
			first = i
		}
	}
	selected := []int{first}

	// maxToSelected[i] tracks the highest similarity of candidate i to any selected candidate.
	maxToSelected := make([]float64, len(candidates))
	for i := range candidates {
		maxToSelected[i] = cosineSimilarity(candidates[i], candidates[first])
	}

	for len(selected) < n {
		best, bestScore := -1, math.Inf(-1)
		for i := range candidates {
			if slices.Contains(selected, i) {
				continue
			}
			score := lambda*toQuery[i] - (1-lambda)*maxToSelected[i]
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			break
		}
		selected = append(selected, best)
		for i := range candidates {
			if s := cosineSimilarity(candidates[i], candidates[best]); s > maxToSelected[i] {
				maxToSelected[i] = s
			}
		}
	}
	return selected
}

// cosineSimilarity returns 0 for mismatched or zero-length vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
