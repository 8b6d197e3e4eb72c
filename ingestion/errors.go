package ingestion

import "errors"

var (
	// ErrDocumentRepositoryRequired is returned when a document repository is not provided.
	ErrDocumentRepositoryRequired = errors.New("document repository required")

	// ErrChunkRepositoryRequired is returned when a chunk repository is not provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrInvalidChunkSize is returned when a chunker is configured with a
	// chunk size below one character.
	ErrInvalidChunkSize = errors.New("chunk size must be at least one character")

	// ErrInvalidOverlap is returned when a chunker's overlap is negative or
	// not smaller than its chunk size.
	ErrInvalidOverlap = errors.New("overlap must be non-negative and smaller than the chunk size")

	// ErrEmptyUpload is returned when an upload carries no file bytes.
	ErrEmptyUpload = errors.New("no file data provided")

	// ErrSourceUnavailable is returned when reprocessing is requested but no
	// source bytes are retained for the document.
	ErrSourceUnavailable = errors.New("original file bytes are not retained; re-upload the document to reprocess it")

	// ErrSourceCorrupted is returned when retained source bytes no longer
	// match the document's fingerprint.
	ErrSourceCorrupted = errors.New("retained file bytes do not match the document fingerprint; re-upload the document")
)
