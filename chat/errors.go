package chat

import "errors"

var (
	// ErrChatRepositoryRequired indicates a nil chat repository was passed to
	// NewManager.
	ErrChatRepositoryRequired = errors.New("chat repository is required")

	// ErrSynthesizerRequired indicates a nil synthesizer was passed to
	// NewManager.
	ErrSynthesizerRequired = errors.New("synthesizer is required")

	// ErrSessionNotFound indicates the session token does not resolve for
	// this owner. Unknown tokens and tokens belonging to someone else are
	// indistinguishable on purpose.
	ErrSessionNotFound = errors.New("chat session not found")

	// ErrEmptyQuery indicates the question was blank.
	ErrEmptyQuery = errors.New("query is empty")
)
