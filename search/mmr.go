package search

import (
	"math"

	"github.com/poiesic/depositbot/core"
)

// selectMMR picks up to k candidates by maximal marginal relevance.
// Candidates must be ordered by relevance, highest first. Ties keep that order,
// so lambda 1.0 returns the k most relevant candidates.
func selectMMR(candidates []*core.ScoredChunk, k int, lambda float64, onSelect func(*core.ScoredChunk, float64)) []*core.ScoredChunk {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}
	k = min(k, len(candidates))

	remaining := make([]*core.ScoredChunk, len(candidates))
	copy(remaining, candidates)
	selected := make([]*core.ScoredChunk, 0, k)

	for len(selected) < k {
		best := -1
		bestScore := math.Inf(-1)
		for i, candidate := range remaining {
			score := lambda * float64(candidate.Score)
			if lambda < 1 {
				score -= (1 - lambda) * maxSimilarity(candidate, selected)
			}
			if score > bestScore {
				best = i
				bestScore = score
			}
		}
		if best < 0 {
			break
		}
		if onSelect != nil {
			onSelect(remaining[best], bestScore)
		}
		selected = append(selected, remaining[best])
		remaining = append(remaining[:best], remaining[best+1:]...)
	}
	return selected
}

func maxSimilarity(candidate *core.ScoredChunk, selected []*core.ScoredChunk) float64 {
	if len(selected) == 0 {
		return 0
	}
	maxSim := math.Inf(-1)
	for _, s := range selected {
		maxSim = math.Max(maxSim, float64(core.DotProduct(candidate.Chunk.Vector, s.Chunk.Vector)))
	}
	return maxSim
}
