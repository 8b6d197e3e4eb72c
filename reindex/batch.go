package reindex

import (
	"context"
	"fmt"
	"time"

	"github.com/poiesic/docquery/ai"
	"github.com/poiesic/docquery/core"
	"github.com/poiesic/docquery/storage"
)

// BatchProcessor reembeds one document's chunks. Embedding calls go out
// in batches of batchSize, but the chunk records are written back in a
// single update: either the whole document gets new vectors or it keeps
// its old ones.
type BatchProcessor struct {
	chunkRepository storage.ChunkRepository
	embedder        ai.Embedder
	batchSize       int
	maxRetries      int
	retryBaseDelay  time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of attempts per embedding call
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(chunkRepository storage.ChunkRepository, embedder ai.Embedder, batchSize, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &BatchProcessor{
		chunkRepository: chunkRepository,
		embedder:        embedder,
		batchSize:       batchSize,
		maxRetries:      maxRetries,
		retryBaseDelay:  retryBaseDelay,
	}
}

// Process reembeds all chunks and persists them. Vectors are normalized
// to unit length so cosine comparisons stay well conditioned.
func (bp *BatchProcessor) Process(ctx context.Context, chunks []*core.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	embeddings := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += bp.batchSize {
		end := start + bp.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		batch, err := bp.embedBatch(ctx, chunks[start:end])
		if err != nil {
			return err
		}
		embeddings = append(embeddings, batch...)
	}

	for i := range chunks {
		chunks[i].Embedding = NormalizeVector(embeddings[i])
	}

	if _, err := bp.chunkRepository.UpdateChunks(ctx, chunks...); err != nil {
		return fmt.Errorf("updating chunks: %w", err)
	}
	return nil
}

func (bp *BatchProcessor) embedBatch(ctx context.Context, chunks []*core.Chunk) ([][]float32, error) {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)

	if err != nil {
		return nil, fmt.Errorf("generating embeddings after %d attempts: %w", bp.maxRetries, err)
	}
	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunks), len(embeddings))
	}
	return embeddings, nil
}
