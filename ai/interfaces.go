package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Completer generates answer text from a system prompt and a user prompt.
// Implementations must be thread-safe for concurrent use.
type Completer interface {
	// Complete generates a completion for the given prompts, bounded by
	// maxTokens. The system prompt carries behavioral instructions; the user
	// prompt carries the question and any retrieved context.
	// Returns an error if the completion fails or the backend returns nothing.
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error)

	// Name identifies the backend for logging and answer attribution.
	Name() string
}

// AIProvider aggregates AI services for convenient initialization and lifecycle
// management. A provider holds one embedder and a set of completers keyed by
// capability tier.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// CompleterFor returns the completion backend for the given tier,
	// degrading to the general backend when the tier has none configured.
	// Returns nil when no completer is configured at all.
	CompleterFor(tier Tier) Completer

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
