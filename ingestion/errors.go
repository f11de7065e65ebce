package ingestion

import "errors"

var (
	// ErrIndexRequired is returned when a vector store is not provided.
	ErrIndexRequired = errors.New("vector index required")

	// ErrLoaderRequired is returned when a loader is not provided.
	ErrLoaderRequired = errors.New("loader required")

	// ErrNotADirectory is returned when the document path is not a directory.
	ErrNotADirectory = errors.New("not a directory")

	// ErrUnsupportedFormat is returned for files no loader can read.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrUnreadableDocument is returned when a document's contents cannot be parsed.
	ErrUnreadableDocument = errors.New("unreadable document")

	// ErrInvalidChunking is returned for impossible chunk size or overlap settings.
	ErrInvalidChunking = errors.New("invalid chunking configuration")

	// ErrIngestFailed is returned when one or more batches could not be indexed.
	ErrIngestFailed = errors.New("ingestion failed")
)
