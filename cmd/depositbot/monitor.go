package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/poiesic/depositbot/core"
	"github.com/poiesic/depositbot/search"
)

// printMonitor writes each search stage as it happens.
type printMonitor struct {
	w io.Writer
}

var _ search.SearchMonitor = (*printMonitor)(nil)

func (m *printMonitor) Start(query string, k int) {
	fmt.Fprintf(m.w, "Query: %q (k=%d)\n", query, k)
}

func (m *printMonitor) AfterQueryEmbedding(dimensions int) {
	fmt.Fprintf(m.w, "Embedded query: %d dimensions\n", dimensions)
}

func (m *printMonitor) AfterCandidateFetch(candidates []*core.ScoredChunk) {
	fmt.Fprintf(m.w, "Candidates: %d\n", len(candidates))
}

func (m *printMonitor) Selected(candidate *core.ScoredChunk, mmrScore float64) {
	fmt.Fprintf(m.w, "  selected %s #%d similarity %.3f mmr %.3f\n",
		candidate.Chunk.Source, candidate.Chunk.Id, candidate.Score, mmrScore)
}

func (m *printMonitor) Finish(results []core.RetrievedChunk) {
	fmt.Fprintf(m.w, "Found %d chunks\n", len(results))
	for i, r := range results {
		fmt.Fprintf(m.w, "%d: [%s] %.3f\n%s\n\n", i, r.Source, r.Score, indent(r.Text))
	}
}

func indent(text string) string {
	return "    " + strings.ReplaceAll(text, "\n", "\n    ")
}
