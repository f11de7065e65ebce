package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/depositbot/core"
	"github.com/poiesic/depositbot/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend *Backend
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) (*ChunkRepository, error) {
	if backend == nil {
		return nil, errors.New("backend is required")
	}
	return &ChunkRepository{backend: backend}, nil
}

// Close is a no-op; the backend is closed by its owner.
func (r *ChunkRepository) Close() error {
	return nil
}

// FindSimilar delegates to the backend.
func (r *ChunkRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*core.ScoredChunk, error) {
	return r.backend.FindSimilar(ctx, vector, minSimilarity, limit)
}

// WithTransaction delegates to the backend.
func (r *ChunkRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddChunks stores chunks that are not already present.
func (r *ChunkRepository) AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error) {
	var added []*core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			if err := core.ValidateChunk(chunk); err != nil {
				return err
			}
			chunk.Id = core.IDFromContent(chunk.Text)

			key := makeChunkKey(chunk.Id)
			existing, err := r.readChunk(tx, key)
			if err != nil {
				return err
			}
			if existing != nil {
				continue
			}

			if chunk.InsertedAt.IsZero() {
				chunk.InsertedAt = time.Now().UTC()
			}
			chunk.InsertedAt = storedTime(chunk.InsertedAt)

			if err := tx.Set(key, storage.MarshalChunk(chunk)); err != nil {
				return err
			}
			if err := tx.Set(makeChunkSourceKey(chunk.Source, chunk.Id), storage.MarshalID(chunk.Id)); err != nil {
				return err
			}
			added = append(added, chunk)
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return added, nil
}

// UpdateChunks overwrites existing chunks.
func (r *ChunkRepository) UpdateChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, chunk := range chunks {
			key := makeChunkKey(chunk.Id)
			old, err := r.readChunk(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			// Source index entry follows the source label
			if old.Source != chunk.Source {
				if err := tx.Delete(makeChunkSourceKey(old.Source, old.Id)); err != nil {
					return err
				}
				if err := tx.Set(makeChunkSourceKey(chunk.Source, chunk.Id), storage.MarshalID(chunk.Id)); err != nil {
					return err
				}
			}
			if chunk.InsertedAt.IsZero() {
				chunk.InsertedAt = old.InsertedAt
			}
			chunk.InsertedAt = storedTime(chunk.InsertedAt)

			if err := tx.Set(key, storage.MarshalChunk(chunk)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return chunks, err
}

// GetChunk retrieves a single chunk by ID.
func (r *ChunkRepository) GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error) {
	var result *core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readChunk(tx, makeChunkKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetChunks retrieves multiple chunks by their IDs.
func (r *ChunkRepository) GetChunks(ctx context.Context, ids ...core.ID) ([]*core.Chunk, error) {
	var result []*core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			chunk, err := r.readChunk(tx, makeChunkKey(id))
			if err != nil {
				return err
			}
			if chunk != nil {
				result = append(result, chunk)
			}
		}
		return nil
	}, false)
	return result, err
}

// ChunkIDs returns the IDs of all stored chunks in key order.
func (r *ChunkRepository) ChunkIDs(ctx context.Context) ([]core.ID, error) {
	var ids []core.ID
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if id, ok := chunkIDFromKey(iter.Item().Key()); ok {
				ids = append(ids, id)
			}
		}
		return nil
	}, false)
	return ids, err
}

// DeleteChunksBySource removes every chunk indexed under source.
func (r *ChunkRepository) DeleteChunksBySource(ctx context.Context, source string) (int, error) {
	removed := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialChunkSourceKey(source)
		iter := tx.NewIterator(opts)

		var ids []core.ID
		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := iter.Item().Value(func(val []byte) error {
				id, err := storage.UnmarshalID(val)
				if err != nil {
					return err
				}
				ids = append(ids, id)
				return nil
			}); err != nil {
				iter.Close()
				return err
			}
		}
		iter.Close()

		for _, id := range ids {
			if err := tx.Delete(makeChunkKey(id)); err != nil {
				return err
			}
			if err := tx.Delete(makeChunkSourceKey(source, id)); err != nil {
				return err
			}
			removed++
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// Count returns the number of stored chunks.
func (r *ChunkRepository) Count(ctx context.Context) (int, error) {
	ids, err := r.ChunkIDs(ctx)
	return len(ids), err
}

// readChunk reads a chunk from the given key.
// Returns nil if the key doesn't exist.
func (r *ChunkRepository) readChunk(tx *badger.Txn, key []byte) (*core.Chunk, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var chunk *core.Chunk
	err = item.Value(func(val []byte) error {
		var err error
		chunk, err = storage.UnmarshalChunk(val)
		return err
	})
	return chunk, err
}

// storedTime truncates t to the microsecond precision the chunk codec keeps.
func storedTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
