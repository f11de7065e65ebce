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


package ingestion

import (
	"context"
	"log/slog"

	"github.com/poiesic/depositbot/core"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
)

// processor is an internal interface for processing batches of chunks.
type processor interface {
	// process embeds and stores one batch of chunks.
	process(ctx context.Context, batch []core.Chunk) error
}

// indexProcessor hands chunk batches to a vector store as documents.
type indexProcessor struct {
	store  vectorstores.VectorStore
	source string
	logger *slog.Logger
}

var _ processor = (*indexProcessor)(nil)

func newIndexProcessor(store vectorstores.VectorStore, sourceKey string, logger *slog.Logger) *indexProcessor {
	return &indexProcessor{
		store:  store,
		source: sourceKey,
		logger: logger.With("processor", "index"),
	}
}

func (ip *indexProcessor) process(ctx context.Context, batch []core.Chunk) error {
	docs := make([]schema.Document, len(batch))
	for i, chunk := range batch {
		docs[i] = schema.Document{
			PageContent: chunk.Text,
			Metadata:    map[string]any{ip.source: chunk.Source},
		}
	}

	ids, err := ip.store.AddDocuments(ctx, docs)
	if err != nil {
		ip.logger.Error("error indexing batch", "chunks", len(batch), "err", err)
		return err
	}
	ip.logger.Debug("batch indexed", "chunks", len(ids))
	return nil
}
