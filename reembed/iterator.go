// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reembed

import (
	"context"
	"slices"

	"github.com/poiesic/depositbot/core"
	"github.com/poiesic/depositbot/storage"
)

// DefaultBatchSize is the default number of chunks fetched and embedded at once
const DefaultBatchSize = 32

// ChunkIterator walks all stored chunks in id order, one batch at a time.
type ChunkIterator struct {
	repo      storage.ChunkRepository
	batchSize int
}

// NewChunkIterator creates a new chunk iterator.
// batchSize: number of chunks per batch; non-positive values use DefaultBatchSize
func NewChunkIterator(repo storage.ChunkRepository, batchSize int) *ChunkIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &ChunkIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// ForEach calls fn for each batch of chunks.
// Iteration stops on the first error from fn or when ctx is done. Only ids are
// held in memory up front; chunk bodies are loaded per batch.
func (it *ChunkIterator) ForEach(ctx context.Context, fn func([]*core.Chunk) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ids, err := it.repo.ChunkIDs(ctx)
	if err != nil {
		return err
	}

	for batch := range slices.Chunk(ids, it.batchSize) {
		chunks, err := it.repo.GetChunks(ctx, batch...)
		if err != nil {
			return err
		}
		if len(chunks) > 0 {
			if err := fn(chunks); err != nil {
				return err
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}
