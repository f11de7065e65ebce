package ingestion

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/poiesic/depositbot/ai/mock"
	"github.com/poiesic/depositbot/core"
	"github.com/poiesic/depositbot/search"
	"github.com/poiesic/depositbot/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
)

func newTestIndex(t *testing.T, embedder *mock.MockEmbedder) *search.Index {
	t.Helper()
	chunkRepo, sessionRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		sessionRepo.Close()
		chunkRepo.Close()
		backend.Close()
	})

	index, err := search.NewIndex(chunkRepo, embedder)
	require.NoError(t, err)
	return index
}

func writeCorpus(t *testing.T, files int) string {
	t.Helper()
	dir := t.TempDir()
	for i := 0; i < files; i++ {
		writeFile(t, dir, fmt.Sprintf("doc%02d.txt", i), fmt.Sprintf("Документ %d\nВклад номер %d", i, i))
	}
	return dir
}

func TestNewPipeline(t *testing.T) {
	loader, err := NewLoader()
	require.NoError(t, err)
	index := newTestIndex(t, mock.NewMockEmbedder())

	t.Run("valid configuration", func(t *testing.T) {
		p, err := NewPipeline(loader, index, WithPoolSize(2), WithBatchSize(4), WithLogger(nil))
		require.NoError(t, err)
		defer p.Release()
		assert.Equal(t, 4, p.batchSize)
	})

	t.Run("nil loader", func(t *testing.T) {
		_, err := NewPipeline(nil, index)
		assert.Equal(t, ErrLoaderRequired, err)
	})

	t.Run("nil index", func(t *testing.T) {
		_, err := NewPipeline(loader, nil)
		assert.Equal(t, ErrIndexRequired, err)
	})
}

func TestPipeline_Ingest(t *testing.T) {
	ctx := context.Background()
	loader, err := NewLoader()
	require.NoError(t, err)

	embedder := mock.NewMockEmbedder()
	index := newTestIndex(t, embedder)

	p, err := NewPipeline(loader, index, WithPoolSize(3), WithBatchSize(4))
	require.NoError(t, err)
	defer p.Release()

	stats, err := p.Ingest(ctx, writeCorpus(t, 10))
	require.NoError(t, err)
	assert.Equal(t, 10, stats.Files)
	assert.Equal(t, 10, stats.Chunks)
	assert.Equal(t, 3, stats.Batches)
	assert.Equal(t, 0, stats.FailedBatches)
	assert.Equal(t, 3, embedder.CallCount())

	count, err := index.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, count)

	results, err := index.Search(ctx, "doc03\nДокумент 3\nВклад номер 3", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "doc03", results[0].Source)
}

func TestPipeline_IngestIfEmpty(t *testing.T) {
	ctx := context.Background()
	loader, err := NewLoader()
	require.NoError(t, err)
	index := newTestIndex(t, mock.NewMockEmbedder())

	p, err := NewPipeline(loader, index)
	require.NoError(t, err)
	defer p.Release()

	dir := writeCorpus(t, 2)

	stats, ran, err := p.IngestIfEmpty(ctx, dir)
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, 2, stats.Chunks)

	_, ran, err = p.IngestIfEmpty(ctx, dir)
	require.NoError(t, err)
	assert.False(t, ran)
}

func TestPipeline_Replace(t *testing.T) {
	ctx := context.Background()
	loader, err := NewLoader()
	require.NoError(t, err)
	index := newTestIndex(t, mock.NewMockEmbedder())

	p, err := NewPipeline(loader, index, WithReplace(true))
	require.NoError(t, err)
	defer p.Release()

	dir := t.TempDir()
	writeFile(t, dir, "rates.txt", "Ставка 18%")
	_, err = p.Ingest(ctx, dir)
	require.NoError(t, err)

	writeFile(t, dir, "rates.txt", "Ставка 17%")
	_, err = p.Ingest(ctx, dir)
	require.NoError(t, err)

	results, err := index.Search(ctx, "ставка", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "rates\nСтавка 17%", results[0].Text)
}

// flakyIndex fails every other AddDocuments call.
type flakyIndex struct {
	mu    sync.Mutex
	calls int
}

func (f *flakyIndex) AddDocuments(_ context.Context, docs []schema.Document, _ ...vectorstores.Option) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls%2 == 0 {
		return nil, errors.New("embedding service unavailable")
	}
	return make([]string, len(docs)), nil
}

func (f *flakyIndex) SimilaritySearch(context.Context, string, int, ...vectorstores.Option) ([]schema.Document, error) {
	return nil, nil
}

func (f *flakyIndex) Count(context.Context) (int, error) { return 0, nil }

func (f *flakyIndex) RemoveSource(context.Context, string) (int, error) { return 0, nil }

func TestPipeline_FailedBatches(t *testing.T) {
	loader, err := NewLoader()
	require.NoError(t, err)

	p, err := NewPipeline(loader, &flakyIndex{}, WithPoolSize(1), WithBatchSize(1))
	require.NoError(t, err)
	defer p.Release()

	stats, err := p.Ingest(context.Background(), writeCorpus(t, 4))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIngestFailed)
	assert.Equal(t, 4, stats.Batches)
	assert.Equal(t, 2, stats.FailedBatches)
}

func TestBatches(t *testing.T) {
	chunks := make([]core.Chunk, 7)
	var sizes []int
	for batch := range batches(chunks, 3) {
		sizes = append(sizes, len(batch))
	}
	assert.Equal(t, []int{3, 3, 1}, sizes)

	for range batches(nil, 3) {
		t.Fatal("no batches expected")
	}
}
