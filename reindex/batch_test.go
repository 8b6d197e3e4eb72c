package reindex

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/docquery/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockEmbedder for testing
type mockEmbedder struct {
	embedTextFunc  func(ctx context.Context, text string) ([]float32, error)
	embedTextsFunc func(ctx context.Context, texts []string) ([][]float32, error)
}

func (m *mockEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if m.embedTextFunc != nil {
		return m.embedTextFunc(ctx, text)
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (m *mockEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if m.embedTextsFunc != nil {
		return m.embedTextsFunc(ctx, texts)
	}
	// Default: return unnormalized vectors for each text
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = []float32{1.0, 2.0, 2.0} // magnitude = 3.0
	}
	return result, nil
}

func TestBatchProcessor_Process(t *testing.T) {
	documentRepository, chunkRepository, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	doc := addTestDocument(t, documentRepository, chunkRepository, core.StatusReady, "first passage", "second passage")

	chunks, err := chunkRepository.GetChunksByDocument(ctx, doc.Id)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	embedder := &mockEmbedder{}
	processor := NewBatchProcessor(chunkRepository, embedder, 100, 3, 10*time.Millisecond)

	err = processor.Process(ctx, chunks)
	require.NoError(t, err)

	updated, err := chunkRepository.GetChunksByDocument(ctx, doc.Id)
	require.NoError(t, err)
	require.Len(t, updated, 2)

	for _, chunk := range updated {
		require.NotEmpty(t, chunk.Embedding, "chunk %d should have an embedding", chunk.Id)
		var magnitude float32
		for _, v := range chunk.Embedding {
			magnitude += v * v
		}
		assert.InDelta(t, 1.0, magnitude, 0.01, "vector should be normalized")
	}
}

func TestBatchProcessor_EmptyBatch(t *testing.T) {
	_, chunkRepository, cleanup := setupTestDB(t)
	defer cleanup()

	embedder := &mockEmbedder{}
	processor := NewBatchProcessor(chunkRepository, embedder, 100, 3, 10*time.Millisecond)

	err := processor.Process(context.Background(), []*core.Chunk{})
	require.NoError(t, err, "empty batch should not error")
}

func TestBatchProcessor_SplitsEmbeddingCalls(t *testing.T) {
	documentRepository, chunkRepository, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	doc := addTestDocument(t, documentRepository, chunkRepository, core.StatusReady, "a", "b", "c", "d", "e")

	chunks, err := chunkRepository.GetChunksByDocument(ctx, doc.Id)
	require.NoError(t, err)

	var callSizes []int
	embedder := &mockEmbedder{
		embedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			callSizes = append(callSizes, len(texts))
			result := make([][]float32, len(texts))
			for i := range result {
				result[i] = []float32{1.0, 0.0, 0.0}
			}
			return result, nil
		},
	}
	processor := NewBatchProcessor(chunkRepository, embedder, 2, 3, 10*time.Millisecond)

	err = processor.Process(ctx, chunks)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 1}, callSizes, "should embed in batches of at most batchSize")
}

func TestBatchProcessor_EmbeddingError(t *testing.T) {
	documentRepository, chunkRepository, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	doc := addTestDocument(t, documentRepository, chunkRepository, core.StatusReady, "passage")

	chunks, err := chunkRepository.GetChunksByDocument(ctx, doc.Id)
	require.NoError(t, err)

	expectedErr := errors.New("embedding error")
	embedder := &mockEmbedder{
		embedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, expectedErr
		},
	}
	processor := NewBatchProcessor(chunkRepository, embedder, 100, 2, 10*time.Millisecond)

	err = processor.Process(ctx, chunks)
	require.ErrorIs(t, err, expectedErr)
	assert.Contains(t, err.Error(), "generating embeddings")
}

func TestBatchProcessor_Retry(t *testing.T) {
	documentRepository, chunkRepository, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	doc := addTestDocument(t, documentRepository, chunkRepository, core.StatusReady, "passage")

	chunks, err := chunkRepository.GetChunksByDocument(ctx, doc.Id)
	require.NoError(t, err)

	attempts := 0
	embedder := &mockEmbedder{
		embedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			attempts++
			if attempts < 2 {
				return nil, errors.New("temporary error")
			}
			result := make([][]float32, len(texts))
			for i := range texts {
				result[i] = []float32{1.0, 0.0, 0.0}
			}
			return result, nil
		},
	}
	processor := NewBatchProcessor(chunkRepository, embedder, 100, 3, 10*time.Millisecond)

	err = processor.Process(ctx, chunks)
	require.NoError(t, err)
	assert.Equal(t, 2, attempts, "should retry on failure")

	updated, err := chunkRepository.GetChunksByDocument(ctx, doc.Id)
	require.NoError(t, err)
	require.Len(t, updated, 1)
	assert.Equal(t, []float32{1.0, 0.0, 0.0}, updated[0].Embedding)
}

func TestBatchProcessor_CountMismatch(t *testing.T) {
	documentRepository, chunkRepository, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	doc := addTestDocument(t, documentRepository, chunkRepository, core.StatusReady, "first", "second")

	chunks, err := chunkRepository.GetChunksByDocument(ctx, doc.Id)
	require.NoError(t, err)

	embedder := &mockEmbedder{
		embedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			return [][]float32{{1.0, 0.0, 0.0}}, nil // one vector short
		},
	}
	processor := NewBatchProcessor(chunkRepository, embedder, 100, 1, 10*time.Millisecond)

	err = processor.Process(ctx, chunks)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "embedding count mismatch")
}

func TestBatchProcessor_FailureKeepsOldVectors(t *testing.T) {
	documentRepository, chunkRepository, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	doc := addTestDocument(t, documentRepository, chunkRepository, core.StatusReady, "first", "second")

	chunks, err := chunkRepository.GetChunksByDocument(ctx, doc.Id)
	require.NoError(t, err)

	// First batch embeds fine, second batch fails: nothing may be written.
	calls := 0
	embedder := &mockEmbedder{
		embedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			calls++
			if calls > 1 {
				return nil, errors.New("model unavailable")
			}
			return [][]float32{{1.0, 0.0, 0.0}}, nil
		},
	}
	processor := NewBatchProcessor(chunkRepository, embedder, 1, 1, 10*time.Millisecond)

	err = processor.Process(ctx, chunks)
	require.Error(t, err)

	stored, err := chunkRepository.GetChunksByDocument(ctx, doc.Id)
	require.NoError(t, err)
	for _, chunk := range stored {
		assert.Equal(t, []float32{2.0, 0.0, 0.0}, chunk.Embedding, "old vectors must survive a failed run")
	}
}

func TestBatchProcessor_ContextCancellation(t *testing.T) {
	documentRepository, chunkRepository, cleanup := setupTestDB(t)
	defer cleanup()

	doc := addTestDocument(t, documentRepository, chunkRepository, core.StatusReady, "passage")

	chunks, err := chunkRepository.GetChunksByDocument(context.Background(), doc.Id)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	embedder := &mockEmbedder{
		embedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			cancel() // Cancel during embedding
			return nil, errors.New("error")
		},
	}
	processor := NewBatchProcessor(chunkRepository, embedder, 100, 3, 10*time.Millisecond)

	err = processor.Process(ctx, chunks)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBatchProcessor_VectorNormalization(t *testing.T) {
	documentRepository, chunkRepository, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	doc := addTestDocument(t, documentRepository, chunkRepository, core.StatusReady, "passage")

	chunks, err := chunkRepository.GetChunksByDocument(ctx, doc.Id)
	require.NoError(t, err)

	embedder := &mockEmbedder{
		embedTextsFunc: func(ctx context.Context, texts []string) ([][]float32, error) {
			// Vector (3, 4) has magnitude 5
			return [][]float32{{3.0, 4.0}}, nil
		},
	}
	processor := NewBatchProcessor(chunkRepository, embedder, 100, 3, 10*time.Millisecond)

	err = processor.Process(ctx, chunks)
	require.NoError(t, err)

	updated, err := chunkRepository.GetChunksByDocument(ctx, doc.Id)
	require.NoError(t, err)
	require.Len(t, updated, 1)

	vec := updated[0].Embedding
	require.Len(t, vec, 2)
	assert.InDelta(t, 0.6, vec[0], 0.001)
	assert.InDelta(t, 0.8, vec[1], 0.001)
}
