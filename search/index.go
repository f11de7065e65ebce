package search

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/poiesic/depositbot/ai"
	"github.com/poiesic/depositbot/core"
	"github.com/poiesic/depositbot/storage"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
)

// Mode selects how candidates are turned into results.
type Mode int

const (
	// ModeMMR selects by maximal marginal relevance.
	ModeMMR Mode = iota
	// ModeSimilarityThreshold returns candidates at or above the score threshold.
	ModeSimilarityThreshold
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeMMR:
		return "mmr"
	case ModeSimilarityThreshold:
		return "similarity_score_threshold"
	default:
		return "unknown"
	}
}

// ParseMode converts a configuration name to a Mode.
func ParseMode(name string) (Mode, error) {
	switch name {
	case "", "mmr":
		return ModeMMR, nil
	case "similarity_score_threshold", "threshold":
		return ModeSimilarityThreshold, nil
	default:
		return 0, fmt.Errorf("%w: unknown search mode %q", ErrInvalidOption, name)
	}
}

const (
	// DefaultLambda weighs relevance only.
	DefaultLambda = 1.0
	// DefaultFetchK is the MMR candidate pool size.
	DefaultFetchK = 20
	// DefaultScoreThreshold is the minimum similarity in threshold mode.
	DefaultScoreThreshold float32 = 0.9

	// MetadataSource is the document metadata key holding the source label.
	MetadataSource = "source"
	// MetadataID is the document metadata key holding the chunk id.
	MetadataID = "id"
)

// Index is a vector store over stored document chunks.
type Index struct {
	repository     storage.ChunkRepository
	embedder       ai.Embedder
	mode           Mode
	lambda         float64
	fetchK         int
	scoreThreshold float32
	logger         *slog.Logger
}

var _ vectorstores.VectorStore = (*Index)(nil)

// Option configures an Index.
type Option func(*Index) error

// WithMode sets the selection mode.
// Default is ModeMMR.
func WithMode(mode Mode) Option {
	return func(i *Index) error {
		if mode != ModeMMR && mode != ModeSimilarityThreshold {
			return fmt.Errorf("%w: mode %d", ErrInvalidOption, mode)
		}
		i.mode = mode
		return nil
	}
}

// WithLambda sets the MMR relevance weight in [0, 1].
// Default is DefaultLambda.
func WithLambda(lambda float64) Option {
	return func(i *Index) error {
		if lambda < 0 || lambda > 1 {
			return fmt.Errorf("%w: lambda %v", ErrInvalidOption, lambda)
		}
		i.lambda = lambda
		return nil
	}
}

// WithFetchK sets how many candidates MMR considers.
// Default is DefaultFetchK.
func WithFetchK(fetchK int) Option {
	return func(i *Index) error {
		if fetchK <= 0 {
			return fmt.Errorf("%w: fetch k %d", ErrInvalidOption, fetchK)
		}
		i.fetchK = fetchK
		return nil
	}
}

// WithScoreThreshold sets the minimum similarity for threshold mode.
// Default is DefaultScoreThreshold.
func WithScoreThreshold(threshold float32) Option {
	return func(i *Index) error {
		if threshold < -1 || threshold > 1 {
			return fmt.Errorf("%w: score threshold %v", ErrInvalidOption, threshold)
		}
		i.scoreThreshold = threshold
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(i *Index) error {
		if logger == nil {
			logger = slog.Default()
		}
		i.logger = logger
		return nil
	}
}

// NewIndex creates a new index over the repository.
func NewIndex(repository storage.ChunkRepository, embedder ai.Embedder, opts ...Option) (*Index, error) {
	if repository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	i := &Index{
		repository:     repository,
		embedder:       embedder,
		mode:           ModeMMR,
		lambda:         DefaultLambda,
		fetchK:         DefaultFetchK,
		scoreThreshold: DefaultScoreThreshold,
		logger:         slog.Default().With("component", "search"),
	}

	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, err
		}
	}

	return i, nil
}

// Mode returns the configured selection mode.
func (i *Index) Mode() Mode {
	return i.mode
}

// AddDocuments embeds and stores documents. Each document must carry a
// string "source" metadata value. Returns the chunk ids of all accepted
// documents, including ones that were already stored.
func (i *Index) AddDocuments(ctx context.Context, docs []schema.Document, options ...vectorstores.Option) ([]string, error) {
	opts := vectorstores.Options{}
	for _, opt := range options {
		opt(&opts)
	}

	chunks := make([]*core.Chunk, 0, len(docs))
	texts := make([]string, 0, len(docs))
	for n, doc := range docs {
		if opts.Deduplicater != nil && opts.Deduplicater(ctx, doc) {
			continue
		}
		source, _ := doc.Metadata[MetadataSource].(string)
		if source == "" {
			return nil, fmt.Errorf("%w: document %d", ErrMissingSource, n)
		}
		chunk := &core.Chunk{Text: doc.PageContent, Source: source}
		if err := core.ValidateChunk(chunk); err != nil {
			return nil, fmt.Errorf("document %d: %w", n, err)
		}
		chunks = append(chunks, chunk)
		texts = append(texts, doc.PageContent)
	}
	if len(chunks) == 0 {
		return []string{}, nil
	}

	vectors, err := i.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		i.logger.Error("error embedding documents", "count", len(texts), "err", err)
		return nil, err
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("%w: %d texts, %d vectors", ErrEmbeddingMismatch, len(chunks), len(vectors))
	}
	for n, chunk := range chunks {
		chunk.Vector = core.NormalizeVector(vectors[n])
	}

	added, err := i.repository.AddChunks(ctx, chunks...)
	if err != nil {
		i.logger.Error("error storing chunks", "count", len(chunks), "err", err)
		return nil, err
	}
	i.logger.Debug("documents added", "submitted", len(chunks), "stored", len(added))

	ids := make([]string, len(chunks))
	for n, chunk := range chunks {
		ids[n] = formatID(chunk.Id)
	}
	return ids, nil
}

// SimilaritySearch returns up to numDocuments documents for the query.
// vectorstores.WithScoreThreshold overrides the configured threshold and,
// in MMR mode, filters the candidate pool.
func (i *Index) SimilaritySearch(ctx context.Context, query string, numDocuments int, options ...vectorstores.Option) ([]schema.Document, error) {
	opts := vectorstores.Options{}
	for _, opt := range options {
		opt(&opts)
	}

	selected, err := i.search(ctx, query, numDocuments, opts.ScoreThreshold, nil)
	if err != nil {
		return nil, err
	}

	docs := make([]schema.Document, len(selected))
	for n, s := range selected {
		docs[n] = schema.Document{
			PageContent: s.Chunk.Text,
			Metadata: map[string]any{
				MetadataSource: s.Chunk.Source,
				MetadataID:     formatID(s.Chunk.Id),
			},
			Score: s.Score,
		}
	}
	return docs, nil
}

// Search returns up to k chunks relevant to the query.
func (i *Index) Search(ctx context.Context, query string, k int) ([]core.RetrievedChunk, error) {
	return i.SearchWithMonitor(ctx, query, k, nil)
}

// SearchWithMonitor is Search with callbacks at each stage of the search process.
func (i *Index) SearchWithMonitor(ctx context.Context, query string, k int, monitor SearchMonitor) ([]core.RetrievedChunk, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(query, k)

	selected, err := i.search(ctx, query, k, 0, monitor)
	if err != nil {
		return nil, err
	}

	results := make([]core.RetrievedChunk, len(selected))
	for n, s := range selected {
		results[n] = core.RetrievedChunk{
			Text:   s.Chunk.Text,
			Source: s.Chunk.Source,
			Score:  s.Score,
		}
	}
	monitor.Finish(results)
	return results, nil
}

// Count returns the number of chunks in the index.
func (i *Index) Count(ctx context.Context) (int, error) {
	return i.repository.Count(ctx)
}

// RemoveSource deletes every chunk that came from source.
func (i *Index) RemoveSource(ctx context.Context, source string) (int, error) {
	removed, err := i.repository.DeleteChunksBySource(ctx, source)
	if err != nil {
		return 0, err
	}
	i.logger.Debug("source removed", "source", source, "chunks", removed)
	return removed, nil
}

func (i *Index) search(ctx context.Context, query string, k int, threshold float32, monitor SearchMonitor) ([]*core.ScoredChunk, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	count, err := i.repository.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrEmptyIndex
	}
	if k <= 0 {
		return []*core.ScoredChunk{}, nil
	}

	embedding, err := i.embedder.EmbedText(ctx, query)
	if err != nil {
		i.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	embedding = core.NormalizeVector(embedding)
	monitor.AfterQueryEmbedding(len(embedding))

	switch i.mode {
	case ModeSimilarityThreshold:
		if threshold == 0 {
			threshold = i.scoreThreshold
		}
		matches, err := i.repository.FindSimilar(ctx, embedding, threshold, k)
		if err != nil {
			i.logger.Error("error querying for similar chunks", "err", err)
			return nil, err
		}
		monitor.AfterCandidateFetch(matches)
		for _, m := range matches {
			monitor.Selected(m, float64(m.Score))
		}
		return matches, nil

	default:
		minSimilarity := float32(-1)
		if threshold != 0 {
			minSimilarity = threshold
		}
		candidates, err := i.repository.FindSimilar(ctx, embedding, minSimilarity, max(i.fetchK, k))
		if err != nil {
			i.logger.Error("error querying for similar chunks", "err", err)
			return nil, err
		}
		monitor.AfterCandidateFetch(candidates)
		return selectMMR(candidates, k, i.lambda, monitor.Selected), nil
	}
}

func formatID(id core.ID) string {
	return strconv.FormatUint(uint64(id), 16)
}
