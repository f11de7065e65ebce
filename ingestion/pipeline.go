package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/depositbot/core"
	"github.com/tmc/langchaingo/vectorstores"
)

// DefaultBatchSize is the number of chunks embedded per request.
const DefaultBatchSize = 32

// Index is the vector store the pipeline fills.
type Index interface {
	vectorstores.VectorStore

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// RemoveSource deletes every chunk of a source.
	RemoveSource(ctx context.Context, source string) (int, error)
}

// Stats summarizes one ingestion run.
type Stats struct {
	Files         int
	Chunks        int
	Batches       int
	FailedBatches int
	Duration      time.Duration
}

// Pipeline loads a document directory and indexes its chunks.
// Batches are embedded concurrently on a worker pool.
type Pipeline struct {
	loader    *Loader
	index     Index
	pool      *ants.Pool
	proc      processor
	batchSize int
	replace   bool
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithBatchSize sets how many chunks go into one embedding request.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.batchSize = size
		return nil
	}
}

// WithReplace removes the stored chunks of every loaded source before
// indexing, so edited documents do not leave stale chunks behind.
func WithReplace(replace bool) Option {
	return func(p *Pipeline) error {
		p.replace = replace
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(loader *Loader, index Index, opts ...Option) (*Pipeline, error) {
	if loader == nil {
		return nil, ErrLoaderRequired
	}
	if index == nil {
		return nil, ErrIndexRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		loader:    loader,
		index:     index,
		pool:      pool,
		batchSize: DefaultBatchSize,
		logger:    slog.Default().With("component", "ingestion"),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	p.proc = newIndexProcessor(index, "source", p.logger)
	return p, nil
}

// Ingest loads every document under dir and indexes the chunks.
// Failed batches are logged and reported together as ErrIngestFailed;
// batches that succeeded stay indexed.
func (p *Pipeline) Ingest(ctx context.Context, dir string) (Stats, error) {
	start := time.Now()

	chunks, files, err := p.loader.load(ctx, dir)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{Files: files, Chunks: len(chunks)}

	if p.replace {
		if err := p.removeSources(ctx, chunks); err != nil {
			return stats, err
		}
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		errs   []error
		failed int
	)
	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		failed++
		errs = append(errs, err)
	}
	for batch := range batches(chunks, p.batchSize) {
		stats.Batches++
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			if err := ctx.Err(); err != nil {
				fail(err)
				return
			}
			if err := p.proc.process(ctx, batch); err != nil {
				fail(err)
			}
		})
		if submitErr != nil {
			wg.Done()
			fail(submitErr)
		}
	}
	wg.Wait()

	stats.FailedBatches = failed
	stats.Duration = time.Since(start)
	p.logger.Info("ingestion finished",
		"dir", dir,
		"files", stats.Files,
		"chunks", stats.Chunks,
		"batches", stats.Batches,
		"failed", stats.FailedBatches,
		"duration", stats.Duration)

	if len(errs) > 0 {
		return stats, fmt.Errorf("%w: %d of %d batches: %w", ErrIngestFailed, failed, stats.Batches, errors.Join(errs...))
	}
	return stats, nil
}

// IngestIfEmpty runs Ingest only when the index holds no chunks.
// The boolean reports whether ingestion ran.
func (p *Pipeline) IngestIfEmpty(ctx context.Context, dir string) (Stats, bool, error) {
	count, err := p.index.Count(ctx)
	if err != nil {
		return Stats{}, false, err
	}
	if count > 0 {
		p.logger.Debug("index already populated", "chunks", count)
		return Stats{}, false, nil
	}
	stats, err := p.Ingest(ctx, dir)
	return stats, true, err
}

func (p *Pipeline) removeSources(ctx context.Context, chunks []core.Chunk) error {
	seen := make(map[string]bool)
	for _, chunk := range chunks {
		if seen[chunk.Source] {
			continue
		}
		seen[chunk.Source] = true
		removed, err := p.index.RemoveSource(ctx, chunk.Source)
		if err != nil {
			return err
		}
		if removed > 0 {
			p.logger.Debug("replaced source", "source", chunk.Source, "removed", removed)
		}
	}
	return nil
}

// Release releases resources including worker pools.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
