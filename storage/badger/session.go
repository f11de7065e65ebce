package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/depositbot/storage"
)

// SessionRepository implements storage.SessionRepository for BadgerDB.
type SessionRepository struct {
	backend *Backend
}

var _ storage.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(backend *Backend) (*SessionRepository, error) {
	if backend == nil {
		return nil, errors.New("backend is required")
	}
	return &SessionRepository{backend: backend}, nil
}

// Close is a no-op; the backend is closed by its owner.
func (r *SessionRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *SessionRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// SaveSession encodes state and stores it under the chat's key.
func (r *SessionRepository) SaveSession(ctx context.Context, chatID int64, state any) error {
	value, err := storage.MarshalPrimitive(state)
	if err != nil {
		return err
	}
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeSessionKey(chatID), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// LoadSession returns the decoded state stored for the chat.
func (r *SessionRepository) LoadSession(ctx context.Context, chatID int64) (any, error) {
	var state any
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeSessionKey(chatID))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			state, err = storage.UnmarshalPrimitive(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return state, nil
}

// DeleteSession removes the chat's stored state.
func (r *SessionRepository) DeleteSession(ctx context.Context, chatID int64) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeSessionKey(chatID)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// ChatIDs lists chats with stored state in ascending key order.
func (r *SessionRepository) ChatIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(sessionPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if id, ok := chatIDFromKey(iter.Item().Key()); ok {
				ids = append(ids, id)
			}
		}
		return nil
	}, false)
	return ids, err
}
