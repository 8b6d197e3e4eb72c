package storage

import (
	"context"

	"github.com/poiesic/docquery/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close releases resources held by the repository.
	Close() error
}

// DocumentRepository provides operations for managing documents and their
// retained source bytes.
type DocumentRepository interface {
	Repository

	// AddDocument adds a document to storage.
	// For documents with ID=0, generates a new ID from sequence.
	// Sets UploadedAt and UpdatedAt timestamps if not already set.
	// Returns the document with generated ID and timestamps populated.
	AddDocument(ctx context.Context, doc *core.Document) (*core.Document, error)

	// GetDocument retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetDocument(ctx context.Context, id core.ID) (*core.Document, error)

	// GetDocumentsByOwner retrieves all documents uploaded by an owner,
	// ordered by ID ascending (upload order).
	GetDocumentsByOwner(ctx context.Context, ownerId string) ([]*core.Document, error)

	// ListDocuments retrieves every stored document, ordered by ID ascending.
	ListDocuments(ctx context.Context) ([]*core.Document, error)

	// UpdateDocument replaces an existing document record.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if the document doesn't exist.
	UpdateDocument(ctx context.Context, doc *core.Document) (*core.Document, error)

	// DeleteDocument removes a document, its chunks, its chunk index entries
	// and any retained source bytes in one transaction.
	// Returns ErrNotFound if the document doesn't exist.
	DeleteDocument(ctx context.Context, id core.ID) error

	// PutDocumentData stores the raw uploaded bytes for a document, keyed by
	// document ID. Retained bytes make reprocessing possible.
	PutDocumentData(ctx context.Context, id core.ID, data []byte) error

	// GetDocumentData retrieves the retained source bytes for a document.
	// Returns (nil, nil) when no bytes are retained; absence is an expected
	// state, not an error.
	GetDocumentData(ctx context.Context, id core.ID) ([]byte, error)
}

// ChunkRepository provides operations for managing text chunks.
type ChunkRepository interface {
	Repository

	// AddChunks adds one or more chunks to storage.
	// For chunks with ID=0, generates new IDs from sequence.
	// Sets InsertedAt and UpdatedAt timestamps.
	// Returns the chunks with generated IDs and timestamps populated.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// UpdateChunks updates existing chunks, typically to backfill embeddings.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any chunk doesn't exist.
	UpdateChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// GetChunk retrieves a single chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error)

	// GetChunksByDocument retrieves all chunks of a document, ordered by
	// chunk index ascending.
	GetChunksByDocument(ctx context.Context, documentId core.ID) ([]*core.Chunk, error)

	// DeleteChunksByDocument removes all chunks of a document and their
	// index entries. Deleting chunks of a document that has none is a no-op.
	DeleteChunksByDocument(ctx context.Context, documentId core.ID) error
}

// ChatRepository provides operations for managing chat sessions and their
// append-only messages.
type ChatRepository interface {
	Repository

	// AddSession adds a chat session to storage.
	// For sessions with ID=0, generates a new ID from sequence.
	// Sets CreatedAt and UpdatedAt timestamps.
	// Returns ErrDuplicateKey if the token is already in use.
	AddSession(ctx context.Context, session *core.ChatSession) (*core.ChatSession, error)

	// GetSession retrieves a single session by ID.
	// Returns ErrNotFound if the session doesn't exist.
	GetSession(ctx context.Context, id core.ID) (*core.ChatSession, error)

	// GetSessionByToken retrieves a session by its public token.
	// Returns ErrNotFound if no session carries the token.
	GetSessionByToken(ctx context.Context, token string) (*core.ChatSession, error)

	// GetSessionsByOwner retrieves all sessions of an owner, ordered by ID
	// ascending (creation order).
	GetSessionsByOwner(ctx context.Context, ownerId string) ([]*core.ChatSession, error)

	// DeleteSession removes a session and all its messages in one
	// transaction. Returns ErrNotFound if the session doesn't exist.
	DeleteSession(ctx context.Context, id core.ID) error

	// AddMessages appends one or more messages to their sessions.
	// Generates IDs from sequence, stamps CreatedAt, and bumps the
	// UpdatedAt of each touched session.
	// Returns the messages with generated IDs and timestamps populated.
	AddMessages(ctx context.Context, messages ...*core.ChatMessage) ([]*core.ChatMessage, error)

	// GetMessagesBySession retrieves all messages of a session in
	// chronological order.
	GetMessagesBySession(ctx context.Context, sessionId core.ID) ([]*core.ChatMessage, error)

	// GetRecentMessages retrieves up to limit messages of a session, most
	// recent first. Returns ErrInvalidQuery when limit is not positive.
	GetRecentMessages(ctx context.Context, sessionId core.ID, limit int) ([]*core.ChatMessage, error)
}
