package reembed

import "errors"

var (
	// ErrChunkRepositoryRequired is returned when no chunk repository is provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository required")

	// ErrEmbedderRequired is returned when no embedder is provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrEmbeddingCountMismatch is returned when the embedder returns the wrong number of vectors.
	ErrEmbeddingCountMismatch = errors.New("embedding count mismatch")
)
