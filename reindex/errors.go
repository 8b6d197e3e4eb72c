package reindex

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrDocumentRepositoryRequired indicates a nil document repository was
	// passed to NewReindexer.
	ErrDocumentRepositoryRequired = errors.New("document repository is required")

	// ErrChunkRepositoryRequired indicates a nil chunk repository was passed
	// to NewReindexer.
	ErrChunkRepositoryRequired = errors.New("chunk repository is required")

	// ErrEmbedderRequired indicates a nil embedder was passed to
	// NewReindexer.
	ErrEmbedderRequired = errors.New("embedder is required")
)
