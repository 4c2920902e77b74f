package search

import (
	"math"
	"slices"

	"github.com/poiesic/lexis/core"
)

const (
	// DisplayThreshold is the minimum score for plain result display.
	DisplayThreshold = 0.3
	// SynthesisThreshold is the minimum score for passages sent to answer synthesis.
	SynthesisThreshold = 0.25
)

// CosineSimilarity returns dot(a, b) / (|a| * |b|).
// Zero-norm vectors and vectors of different lengths score 0.
// The result is clamped into [-1, 1].
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return max(-1, min(1, score))
}

// Rank scores every vector in vectors against q and returns at most k hits
// with score strictly greater than threshold, best first. Equal scores keep
// ascending index order. k larger than len(vectors) returns everything that
// passes the threshold; k <= 0 or no vectors returns an empty slice.
func Rank(q []float32, vectors [][]float32, k int, threshold float64) []core.Hit {
	scores := make([]float64, len(vectors))
	for i, v := range vectors {
		scores[i] = CosineSimilarity(q, v)
	}
	return RankScores(scores, k, threshold)
}

// RankScores applies the Rank selection rules to precomputed scores.
func RankScores(scores []float64, k int, threshold float64) []core.Hit {
	k = min(k, len(scores))
	if k <= 0 {
		return []core.Hit{}
	}

	hits := make([]core.Hit, len(scores))
	for i, s := range scores {
		hits[i] = core.Hit{Index: i, Score: s}
	}

	slices.SortStableFunc(hits, func(a, b core.Hit) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})

	top := hits[:k]
	kept := make([]core.Hit, 0, k)
	for _, hit := range top {
		if hit.Score > threshold {
			kept = append(kept, hit)
		}
	}
	return kept
}
