package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/depositbot/core"
	"github.com/poiesic/depositbot/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkRepository_AddAndGet(t *testing.T) {
	repo, _, _ := newTestRepos(t)
	ctx := context.Background()

	chunk := &core.Chunk{Text: "Вклады\nСтавка 18%", Source: "Вклады", Vector: []float32{0.6, 0.8}}
	added, err := repo.AddChunks(ctx, chunk)
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.Equal(t, core.IDFromContent(chunk.Text), added[0].Id)
	assert.False(t, added[0].InsertedAt.IsZero())

	got, err := repo.GetChunk(ctx, added[0].Id)
	require.NoError(t, err)
	assert.Equal(t, chunk.Text, got.Text)
	assert.Equal(t, chunk.Source, got.Source)
	assert.Equal(t, chunk.Vector, got.Vector)
}

func TestChunkRepository_InsertedAtMatchesStored(t *testing.T) {
	repo, _, _ := newTestRepos(t)
	ctx := context.Background()

	supplied := time.Date(2025, 3, 1, 12, 0, 0, 123456789, time.UTC)
	added, err := repo.AddChunks(ctx,
		&core.Chunk{Text: "generated", Source: "a"},
		&core.Chunk{Text: "supplied", Source: "a", InsertedAt: supplied},
	)
	require.NoError(t, err)
	require.Len(t, added, 2)

	for _, chunk := range added {
		got, err := repo.GetChunk(ctx, chunk.Id)
		require.NoError(t, err)
		assert.True(t, chunk.InsertedAt.Equal(got.InsertedAt), "%s: %v != %v", chunk.Text, chunk.InsertedAt, got.InsertedAt)
		assert.Zero(t, chunk.InsertedAt.Nanosecond()%int(time.Microsecond))
	}
	assert.True(t, added[1].InsertedAt.Equal(supplied.Truncate(time.Microsecond)))

	added[1].InsertedAt = supplied
	updated, err := repo.UpdateChunks(ctx, added[1])
	require.NoError(t, err)
	got, err := repo.GetChunk(ctx, added[1].Id)
	require.NoError(t, err)
	assert.True(t, updated[0].InsertedAt.Equal(got.InsertedAt))
}

func TestChunkRepository_AddIsIdempotent(t *testing.T) {
	repo, _, _ := newTestRepos(t)
	ctx := context.Background()

	_, err := repo.AddChunks(ctx, &core.Chunk{Text: "same", Source: "a"})
	require.NoError(t, err)

	added, err := repo.AddChunks(ctx,
		&core.Chunk{Text: "same", Source: "a"},
		&core.Chunk{Text: "new", Source: "a"},
	)
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.Equal(t, "new", added[0].Text)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestChunkRepository_AddInvalid(t *testing.T) {
	repo, _, _ := newTestRepos(t)

	_, err := repo.AddChunks(context.Background(), &core.Chunk{Text: "no source"})
	assert.ErrorIs(t, err, core.ErrInvalidChunk)

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestChunkRepository_GetMissing(t *testing.T) {
	repo, _, _ := newTestRepos(t)
	ctx := context.Background()

	_, err := repo.GetChunk(ctx, core.ID(12345))
	assert.ErrorIs(t, err, storage.ErrNotFound)

	chunks, err := repo.GetChunks(ctx, core.ID(1), core.ID(2))
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestChunkRepository_Update(t *testing.T) {
	repo, _, _ := newTestRepos(t)
	ctx := context.Background()

	added, err := repo.AddChunks(ctx, &core.Chunk{Text: "text", Source: "old"})
	require.NoError(t, err)
	chunk := added[0]
	inserted := chunk.InsertedAt

	chunk.Vector = []float32{1, 0}
	chunk.Source = "new"
	_, err = repo.UpdateChunks(ctx, chunk)
	require.NoError(t, err)

	got, err := repo.GetChunk(ctx, chunk.Id)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, got.Vector)
	assert.True(t, inserted.Equal(got.InsertedAt))

	removed, err := repo.DeleteChunksBySource(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	removed, err = repo.DeleteChunksBySource(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	t.Run("missing chunk", func(t *testing.T) {
		_, err := repo.UpdateChunks(ctx, &core.Chunk{Id: 99, Text: "x", Source: "y"})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestChunkRepository_DeleteBySource(t *testing.T) {
	repo, _, _ := newTestRepos(t)
	ctx := context.Background()

	_, err := repo.AddChunks(ctx,
		&core.Chunk{Text: "a1", Source: "a"},
		&core.Chunk{Text: "a2", Source: "a"},
		&core.Chunk{Text: "ab1", Source: "ab"},
	)
	require.NoError(t, err)

	removed, err := repo.DeleteChunksBySource(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	ids, err := repo.ChunkIDs(ctx)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, core.IDFromContent("ab1"), ids[0])
}
