package answer

import "errors"

var (
	// ErrSearcherRequired indicates a nil searcher was passed to NewSynthesizer.
	ErrSearcherRequired = errors.New("searcher is required")

	// ErrChatRepositoryRequired indicates a nil chat repository was passed to
	// NewSynthesizer.
	ErrChatRepositoryRequired = errors.New("chat repository is required")

	// ErrAIProviderRequired indicates a nil AI provider was passed to
	// NewSynthesizer.
	ErrAIProviderRequired = errors.New("AI provider is required")
)
