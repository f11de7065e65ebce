package ingestion

import (
	"iter"

	"github.com/poiesic/depositbot/core"
)

// batches yields consecutive slices of at most size chunks.
func batches(chunks []core.Chunk, size int) iter.Seq[[]core.Chunk] {
	return func(yield func([]core.Chunk) bool) {
		for start := 0; start < len(chunks); start += size {
			end := min(start+size, len(chunks))
			if !yield(chunks[start:end]) {
				return
			}
		}
	}
}
