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


package depositbot

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/depositbot/ai"
	"github.com/poiesic/depositbot/ai/openai"
	"github.com/poiesic/depositbot/bot"
	"github.com/poiesic/depositbot/config"
	"github.com/poiesic/depositbot/ingestion"
	"github.com/poiesic/depositbot/rag"
	"github.com/poiesic/depositbot/reembed"
	"github.com/poiesic/depositbot/retry"
	"github.com/poiesic/depositbot/search"
	"github.com/poiesic/depositbot/session"
	"github.com/poiesic/depositbot/storage"
	"github.com/poiesic/depositbot/storage/badger"
)

// Assistant wires storage, the model provider, the vector index and the
// session manager from one configuration.
type Assistant struct {
	cfg         *config.Config
	backend     *badger.Backend
	chunkRepo   storage.ChunkRepository
	sessionRepo storage.SessionRepository
	provider    ai.AIProvider
	index       *search.Index
	sessions    *session.Manager
	logger      *slog.Logger
}

// Option configures an Assistant.
type Option func(*assistantOptions)

type assistantOptions struct {
	provider ai.AIProvider
	inMemory bool
}

// WithProvider uses the given model provider instead of the configured endpoint.
func WithProvider(provider ai.AIProvider) Option {
	return func(o *assistantOptions) {
		o.provider = provider
	}
}

// WithInMemoryStorage keeps the index and sessions in memory only.
func WithInMemoryStorage() Option {
	return func(o *assistantOptions) {
		o.inMemory = true
	}
}

// New opens storage and connects the model provider.
func New(cfg *config.Config, opts ...Option) (*Assistant, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	options := &assistantOptions{}
	for _, opt := range opts {
		opt(options)
	}

	path := cfg.Storage.Path
	if options.inMemory {
		path = ""
	}
	backend, err := badger.OpenBackend(path, options.inMemory)
	if err != nil {
		return nil, err
	}

	chunkRepo, err := badger.NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	sessionRepo, err := badger.NewSessionRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(cfg.AIConfig())
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	a := &Assistant{
		cfg:         cfg,
		backend:     backend,
		chunkRepo:   chunkRepo,
		sessionRepo: sessionRepo,
		provider:    provider,
		logger:      slog.Default(),
	}

	a.index, err = search.NewIndex(chunkRepo, provider.Embedder(),
		search.WithMode(cfg.SearchMode()),
		search.WithLambda(cfg.Index.Lambda),
		search.WithFetchK(cfg.Index.FetchK),
		search.WithScoreThreshold(cfg.Index.ScoreThreshold),
	)
	if err != nil {
		a.Close()
		return nil, err
	}

	if _, err := a.NewChain(); err != nil {
		a.Close()
		return nil, err
	}
	a.sessions, err = session.NewManager(sessionRepo, a.NewChain,
		session.WithIdleTimeout(cfg.Storage.SessionIdleTimeout),
	)
	if err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// Close releases the provider and the storage backend.
func (a *Assistant) Close() error {
	if err := a.provider.Close(); err != nil {
		a.logger.Error("error closing AI provider", "err", err)
	}
	if err := a.sessionRepo.Close(); err != nil {
		a.logger.Error("error closing session repository", "err", err)
		return err
	}
	if err := a.chunkRepo.Close(); err != nil {
		a.logger.Error("error closing chunk repository", "err", err)
		return err
	}
	if err := a.backend.Close(); err != nil {
		a.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Config returns the configuration the assistant was built from.
func (a *Assistant) Config() *config.Config {
	return a.cfg
}

// Index returns the vector index shared by every session.
func (a *Assistant) Index() *search.Index {
	return a.index
}

// Sessions returns the session manager.
func (a *Assistant) Sessions() *session.Manager {
	return a.sessions
}

// ChunkRepository returns the chunk store behind the index.
func (a *Assistant) ChunkRepository() storage.ChunkRepository {
	return a.chunkRepo
}

// NewChain builds the answer chain for one session: a retrieval pipeline, or
// a router over one pipeline per destination when routing is enabled.
func (a *Assistant) NewChain() (rag.Chain, error) {
	retriever := rag.NewRetriever(a.index, a.cfg.Index.K)
	chat := a.provider.ChatModel()

	def, err := rag.NewPipeline(retriever, chat, rag.WithPersona(a.cfg.Persona))
	if err != nil {
		return nil, err
	}
	if !a.cfg.Router.Enabled {
		return def, nil
	}

	destinations := make([]rag.Destination, 0, len(a.cfg.Router.Destinations))
	for _, d := range a.cfg.Router.Destinations {
		persona := d.Persona
		if persona == "" {
			persona = a.cfg.Persona
		}
		p, err := rag.NewPipeline(retriever, chat, rag.WithPersona(persona))
		if err != nil {
			return nil, err
		}
		destinations = append(destinations, rag.Destination{Name: d.Name, Description: d.Description, Chain: p})
	}
	return rag.NewRouter(chat, def, destinations)
}

// NewIngestionPipeline creates a pipeline loading documents into the index
// with the configured chunking.
func (a *Assistant) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	loader, err := ingestion.NewLoader(ingestion.WithChunking(a.cfg.Index.ChunkSize, a.cfg.Index.ChunkOverlap))
	if err != nil {
		return nil, err
	}

	base := []ingestion.Option{ingestion.WithBatchSize(a.cfg.Index.BatchSize)}
	if a.cfg.Index.Workers > 0 {
		base = append(base, ingestion.WithPoolSize(a.cfg.Index.Workers))
	}
	return ingestion.NewPipeline(loader, a.index, append(base, opts...)...)
}

// BuildIndexIfEmpty ingests the configured document directory when the index
// holds no chunks.
func (a *Assistant) BuildIndexIfEmpty(ctx context.Context) (ingestion.Stats, bool, error) {
	pipeline, err := a.NewIngestionPipeline()
	if err != nil {
		return ingestion.Stats{}, false, err
	}
	defer pipeline.Release()

	stats, built, err := pipeline.IngestIfEmpty(ctx, a.cfg.Index.Docs)
	if err != nil {
		return stats, false, fmt.Errorf("build index from %s: %w", a.cfg.Index.Docs, err)
	}
	return stats, built, nil
}

// NewReembedder creates a reembedder over the chunk store using the
// provider's embedder.
func (a *Assistant) NewReembedder(progress io.Writer, cfg *reembed.Config) (*reembed.Reembedder, error) {
	return reembed.NewReembedder(a.chunkRepo, a.provider.Embedder(), cfg, progress)
}

// NewHandler creates a bot handler replying through sender.
func (a *Assistant) NewHandler(sender bot.Sender, opts ...bot.HandlerOption) (*bot.Handler, error) {
	policy := &retry.Policy{MaxAttempts: a.cfg.Retry.MaxAttempts}
	return bot.NewHandler(a.sessions, sender, append([]bot.HandlerOption{bot.WithPolicy(policy)}, opts...)...)
}
