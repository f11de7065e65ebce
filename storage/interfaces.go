package storage

import (
	"context"

	"github.com/poiesic/depositbot/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close releases resources held by the repository.
	// The shared backend is closed separately by its owner.
	Close() error
}

// VectorSearcher finds stored chunks close to a query vector.
type VectorSearcher interface {
	// FindSimilar returns chunks with similarity >= minSimilarity, up to limit results.
	// Results are ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ScoredChunk, error)
}

// ChunkRepository stores the document chunks that back the vector index.
type ChunkRepository interface {
	Repository
	VectorSearcher

	// AddChunks stores chunks keyed by IDFromContent of their text.
	// Chunks whose text is already stored are skipped.
	// Sets InsertedAt if not already set and returns the chunks that were written.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// UpdateChunks overwrites existing chunks, typically with new vectors.
	// Returns ErrNotFound if any chunk doesn't exist.
	UpdateChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// GetChunk retrieves a single chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error)

	// GetChunks retrieves multiple chunks by their IDs.
	// Returns only the chunks that exist (no error for missing chunks).
	GetChunks(ctx context.Context, ids ...core.ID) ([]*core.Chunk, error)

	// ChunkIDs returns the IDs of all stored chunks in key order.
	ChunkIDs(ctx context.Context) ([]core.ID, error)

	// DeleteChunksBySource removes every chunk produced from the given source.
	// Returns the number of chunks removed.
	DeleteChunksBySource(ctx context.Context, source string) (int, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)
}

// SessionRepository persists per-chat conversation state in primitive form.
// Stored values are trees of map[string]any, []any, string, bool, int64 and float64.
type SessionRepository interface {
	Repository

	// SaveSession stores the primitive state for a chat, replacing any previous value.
	SaveSession(ctx context.Context, chatID int64, state any) error

	// LoadSession returns the stored primitive state for a chat.
	// Returns ErrNotFound if nothing is stored.
	LoadSession(ctx context.Context, chatID int64) (any, error)

	// DeleteSession removes the stored state for a chat.
	// Deleting a missing session is not an error.
	DeleteSession(ctx context.Context, chatID int64) error

	// ChatIDs lists chats with stored state.
	ChatIDs(ctx context.Context) ([]int64, error)
}
