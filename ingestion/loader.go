package ingestion

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/depositbot/core"
	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/textsplitter"
)

const (
	// DefaultChunkSize is the maximum chunk length in characters.
	DefaultChunkSize = 1400
	// DefaultChunkOverlap is the overlap between neighbouring chunks in characters.
	DefaultChunkOverlap = 70
)

// DefaultSeparators are tried in order when splitting a document.
var DefaultSeparators = []string{"\n\n\n", "\n\n", "\n"}

// Loader walks a directory of knowledge-base documents and turns them into
// normalized chunks ready for embedding.
type Loader struct {
	splitter textsplitter.TextSplitter
	logger   *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*loaderOptions)

type loaderOptions struct {
	chunkSize    int
	chunkOverlap int
	separators   []string
	logger       *slog.Logger
}

// WithChunking overrides chunk size and overlap.
func WithChunking(size, overlap int) LoaderOption {
	return func(o *loaderOptions) {
		o.chunkSize = size
		o.chunkOverlap = overlap
	}
}

// WithSeparators overrides the split separators.
func WithSeparators(separators ...string) LoaderOption {
	return func(o *loaderOptions) {
		o.separators = separators
	}
}

// WithLoaderLogger sets a custom logger.
// Default is slog.Default().
func WithLoaderLogger(logger *slog.Logger) LoaderOption {
	return func(o *loaderOptions) {
		o.logger = logger
	}
}

// NewLoader creates a loader with the recursive character splitter.
func NewLoader(opts ...LoaderOption) (*Loader, error) {
	o := loaderOptions{
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		separators:   DefaultSeparators,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.chunkSize <= 0 || o.chunkOverlap < 0 || o.chunkOverlap >= o.chunkSize {
		return nil, fmt.Errorf("%w: size %d overlap %d", ErrInvalidChunking, o.chunkSize, o.chunkOverlap)
	}
	if len(o.separators) == 0 {
		return nil, fmt.Errorf("%w: no separators", ErrInvalidChunking)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	return &Loader{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(o.chunkSize),
			textsplitter.WithChunkOverlap(o.chunkOverlap),
			textsplitter.WithSeparators(o.separators),
			textsplitter.WithKeepSeparator(false),
		),
		logger: o.logger.With("component", "loader"),
	}, nil
}

// Supported reports whether a file name has a loadable extension.
func Supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case ext == ".txt", ext == ".json", ext == ".pdf", ext == ".html", ext == ".htm":
		return true
	case strings.HasPrefix(ext, ".doc"):
		return true
	default:
		return false
	}
}

// SourceLabel returns the label chunks of a file are tagged with: its base
// name without extension.
func SourceLabel(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load reads every supported file under dir and returns its chunks.
// Files are visited in lexical order. Unsupported files are skipped.
func (l *Loader) Load(ctx context.Context, dir string) ([]core.Chunk, error) {
	chunks, _, err := l.load(ctx, dir)
	return chunks, err
}

func (l *Loader) load(ctx context.Context, dir string) ([]core.Chunk, int, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, 0, err
	}
	if !info.IsDir() {
		return nil, 0, fmt.Errorf("%w: %s", ErrNotADirectory, dir)
	}

	var chunks []core.Chunk
	files := 0
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !Supported(path) {
			return nil
		}

		fileChunks, err := l.LoadFile(ctx, path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		files++
		chunks = append(chunks, fileChunks...)
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	l.logger.Debug("documents loaded", "dir", dir, "files", files, "chunks", len(chunks))
	return chunks, files, nil
}

// LoadFile loads, normalizes and splits a single file.
func (l *Loader) LoadFile(ctx context.Context, path string) ([]core.Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	loader, err := newDocumentLoader(f)
	if err != nil {
		return nil, err
	}

	docs, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		docs[i].PageContent = NormalizeDocument(docs[i].PageContent)
	}

	split, err := textsplitter.SplitDocuments(l.splitter, docs)
	if err != nil {
		return nil, err
	}

	source := SourceLabel(path)
	chunks := make([]core.Chunk, 0, len(split))
	for _, doc := range split {
		if isBlank(doc.PageContent) {
			continue
		}
		chunks = append(chunks, core.Chunk{
			Text:   NormalizeChunk(doc.PageContent, source),
			Source: source,
		})
	}
	l.logger.Debug("file loaded", "path", path, "chunks", len(chunks))
	return chunks, nil
}

func newDocumentLoader(f *os.File) (documentloaders.Loader, error) {
	ext := strings.ToLower(filepath.Ext(f.Name()))
	switch {
	case ext == ".txt", ext == ".json":
		return documentloaders.NewText(f), nil
	case ext == ".html", ext == ".htm":
		return documentloaders.NewHTML(f), nil
	case ext == ".pdf":
		info, err := f.Stat()
		if err != nil {
			return nil, err
		}
		return documentloaders.NewPDF(f, info.Size()), nil
	case strings.HasPrefix(ext, ".doc"):
		info, err := f.Stat()
		if err != nil {
			return nil, err
		}
		return newDocx(f, info.Size()), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}
