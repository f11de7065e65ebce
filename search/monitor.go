package search

import "github.com/poiesic/depositbot/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string, k int)
	AfterQueryEmbedding(dimensions int)
	AfterCandidateFetch(candidates []*core.ScoredChunk)
	Selected(candidate *core.ScoredChunk, mmrScore float64)
	Finish(results []core.RetrievedChunk)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ int)                   {}
func (n *noopMonitor) AfterQueryEmbedding(_ int)               {}
func (n *noopMonitor) AfterCandidateFetch(_ []*core.ScoredChunk) {}
func (n *noopMonitor) Selected(_ *core.ScoredChunk, _ float64) {}
func (n *noopMonitor) Finish(_ []core.RetrievedChunk)          {}
