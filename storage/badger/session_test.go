package badger

import (
	"context"
	"testing"

	"github.com/poiesic/depositbot/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository_SaveLoad(t *testing.T) {
	_, repo, _ := newTestRepos(t)
	ctx := context.Background()

	state := map[string]any{
		"memory_key": "history",
		"input_key":  "question",
		"chat_memory": map[string]any{
			"messages": []any{
				map[string]any{"type": "human", "content": "Привет"},
			},
		},
	}

	require.NoError(t, repo.SaveSession(ctx, 42, state))

	loaded, err := repo.LoadSession(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, state, loaded)

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, repo.SaveSession(ctx, 42, []any{}))
		loaded, err := repo.LoadSession(ctx, 42)
		require.NoError(t, err)
		assert.Equal(t, []any{}, loaded)
	})
}

func TestSessionRepository_Missing(t *testing.T) {
	_, repo, _ := newTestRepos(t)

	_, err := repo.LoadSession(context.Background(), 7)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.NoError(t, repo.DeleteSession(context.Background(), 7))
}

func TestSessionRepository_RejectsUnsupported(t *testing.T) {
	_, repo, _ := newTestRepos(t)

	err := repo.SaveSession(context.Background(), 1, map[string]any{"bad": struct{}{}})
	assert.ErrorIs(t, err, storage.ErrUnsupportedValue)
}

func TestSessionRepository_ChatIDsAndDelete(t *testing.T) {
	_, repo, _ := newTestRepos(t)
	ctx := context.Background()

	for _, id := range []int64{3, 1, 2} {
		require.NoError(t, repo.SaveSession(ctx, id, map[string]any{"n": id}))
	}

	ids, err := repo.ChatIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, ids)

	require.NoError(t, repo.DeleteSession(ctx, 2))
	ids, err = repo.ChatIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids)
}

func TestSessionRepository_SharesBackendWithChunks(t *testing.T) {
	chunkRepo, sessionRepo, _ := newTestRepos(t)
	ctx := context.Background()

	require.NoError(t, sessionRepo.SaveSession(ctx, 5, "state"))

	count, err := chunkRepo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
