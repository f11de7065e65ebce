package openai

import (
	"context"
	"log/slog"
	"time"

	"github.com/poiesic/depositbot/ai"
	"github.com/poiesic/depositbot/retry"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	// embedBatchSize caps texts per embedding request.
	embedBatchSize = 16

	embedAttempts   = 3
	embedRetryDelay = 500 * time.Millisecond
)

// Embedder implements ai.Embedder using OpenAI-compatible embedding APIs.
type Embedder struct {
	embedder embeddings.Embedder
	logger   *slog.Logger
}

// newEmbedder is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newEmbedder(config *ai.Config) (*Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	httpClient, err := newHTTPClient(config)
	if err != nil {
		return nil, err
	}

	// Create OpenAI client configured for embeddings
	client, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken(config.Token),
		openai.WithEmbeddingModel(config.EmbeddingModel),
		openai.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, err
	}

	// Wrap in langchaingo embedder; chunks keep their line structure
	embedder, err := embeddings.NewEmbedder(client,
		embeddings.WithStripNewLines(false),
		embeddings.WithBatchSize(embedBatchSize),
	)
	if err != nil {
		return nil, err
	}

	return &Embedder{
		embedder: embedder,
		logger:   slog.Default().With("component", "openai-embedder"),
	}, nil
}

// NewEmbedder creates a new embedder using the provided configuration.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}

// EmbedText generates a vector embedding for a single text string.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	e.logger.Debug("generating embedding for single text", "length", len(text))

	vector, err := e.embedder.EmbedQuery(ctx, text)
	if err != nil {
		e.logger.Error("failed to generate embedding", "err", err)
		return nil, err
	}

	if len(vector) == 0 {
		e.logger.Warn("embedder returned empty result")
	}

	return vector, nil
}

// EmbedTexts generates vector embeddings for multiple text strings in a batch.
// Transient failures are retried with backoff.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	e.logger.Debug("generating embeddings for texts", "count", len(texts))

	var embeddings [][]float32
	err := retry.WithBackoff(ctx, func() error {
		var err error
		embeddings, err = e.embedder.EmbedDocuments(ctx, texts)
		return err
	}, embedAttempts, embedRetryDelay)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, err
	}

	return embeddings, nil
}
