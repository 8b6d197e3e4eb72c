package search

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/poiesic/docquery/ai/mock"
	"github.com/poiesic/docquery/core"
	"github.com/poiesic/docquery/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSearcher(t *testing.T) {
	documentRepo, chunkRepo, chatRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		chatRepo.Close()
		chunkRepo.Close()
		documentRepo.Close()
		backend.Close()
	}()

	provider := mock.NewMockProvider()

	t.Run("valid configuration", func(t *testing.T) {
		searcher, err := NewSearcher(documentRepo, chunkRepo, provider)
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with custom logger", func(t *testing.T) {
		logger := slog.Default()
		searcher, err := NewSearcher(documentRepo, chunkRepo, provider, WithLogger(logger))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		searcher, err := NewSearcher(documentRepo, chunkRepo, provider, WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("nil document repository", func(t *testing.T) {
		_, err := NewSearcher(nil, chunkRepo, provider)
		assert.Equal(t, ErrDocumentRepositoryRequired, err)
	})

	t.Run("nil chunk repository", func(t *testing.T) {
		_, err := NewSearcher(documentRepo, nil, provider)
		assert.Equal(t, ErrChunkRepositoryRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewSearcher(documentRepo, chunkRepo, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})
}

func TestLoadCorpus(t *testing.T) {
	documentRepo, chunkRepo, chatRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		chatRepo.Close()
		chunkRepo.Close()
		documentRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	// One ready document, one still processing, one belonging to another owner
	ready := &core.Document{OwnerId: "alice", Filename: "ready.txt", MimeType: "text/plain", Status: core.StatusReady}
	ready, err = documentRepo.AddDocument(ctx, ready)
	require.NoError(t, err)

	processing := &core.Document{OwnerId: "alice", Filename: "pending.txt", MimeType: "text/plain", Status: core.StatusProcessing}
	processing, err = documentRepo.AddDocument(ctx, processing)
	require.NoError(t, err)

	foreign := &core.Document{OwnerId: "bob", Filename: "other.txt", MimeType: "text/plain", Status: core.StatusReady}
	foreign, err = documentRepo.AddDocument(ctx, foreign)
	require.NoError(t, err)

	chunks := []*core.Chunk{
		{DocumentId: ready.Id, Index: 0, Content: "embedded chunk", CharStart: 0, CharEnd: 14, Embedding: []float32{0.1, 0.2}},
		{DocumentId: ready.Id, Index: 1, Content: "pending chunk", CharStart: 10, CharEnd: 23},
		{DocumentId: processing.Id, Index: 0, Content: "invisible", CharStart: 0, CharEnd: 9, Embedding: []float32{0.3, 0.4}},
		{DocumentId: foreign.Id, Index: 0, Content: "someone else's", CharStart: 0, CharEnd: 14, Embedding: []float32{0.5, 0.6}},
	}
	_, err = chunkRepo.AddChunks(ctx, chunks...)
	require.NoError(t, err)

	searcher, err := NewSearcher(documentRepo, chunkRepo, mock.NewMockProvider())
	require.NoError(t, err)

	corpus, err := searcher.LoadCorpus(ctx, "alice")
	require.NoError(t, err)

	// Only the ready document contributes
	require.Len(t, corpus.Documents, 1)
	assert.Contains(t, corpus.Documents, ready.Id)

	// Both of its chunks are candidates, embedded or not
	require.Len(t, corpus.Candidates, 2)
	assert.Equal(t, 1, corpus.EmbeddedCount())
}

func TestLoadCorpus_NoDocuments(t *testing.T) {
	documentRepo, chunkRepo, chatRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		chatRepo.Close()
		chunkRepo.Close()
		documentRepo.Close()
		backend.Close()
	}()

	searcher, err := NewSearcher(documentRepo, chunkRepo, mock.NewMockProvider())
	require.NoError(t, err)

	corpus, err := searcher.LoadCorpus(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, corpus.Documents)
	assert.Empty(t, corpus.Candidates)
	assert.Zero(t, corpus.EmbeddedCount())
}

func TestSearch_RanksExactMatchFirst(t *testing.T) {
	documentRepo, chunkRepo, chatRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		chatRepo.Close()
		chunkRepo.Close()
		documentRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	// Candidates embedded with the same deterministic embedder the
	// searcher will use for the query
	embedder := mock.NewMockEmbedder()
	contents := []string{
		"the quarterly revenue grew twelve percent",
		"employee onboarding checklist",
		"server maintenance schedule",
	}
	candidates := make([]Candidate, len(contents))
	for i, content := range contents {
		embedding, err := embedder.EmbedText(ctx, content)
		require.NoError(t, err)
		candidates[i] = Candidate{
			Id:         core.ID(i + 1),
			DocumentId: 1,
			Content:    content,
			Embedding:  embedding,
		}
	}

	searcher, err := NewSearcher(documentRepo, chunkRepo, mock.NewMockProvider())
	require.NoError(t, err)

	hits, err := searcher.Search(ctx, "employee onboarding checklist", candidates, 10)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	// The verbatim match embeds to an identical vector
	assert.Equal(t, core.ID(2), hits[0].Id)
	assert.InDelta(t, 1.0, hits[0].Similarity, 0.0001)
}

func TestSearch_WithMonitor(t *testing.T) {
	documentRepo, chunkRepo, chatRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		chatRepo.Close()
		chunkRepo.Close()
		documentRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	embedder := mock.NewMockEmbedder()
	embedding, err := embedder.EmbedText(ctx, "ranked")
	require.NoError(t, err)

	candidates := []Candidate{
		{Id: 1, DocumentId: 1, Content: "ranked", Embedding: embedding},
		{Id: 2, DocumentId: 1, Content: "skipped", Embedding: nil},
	}

	searcher, err := NewSearcher(documentRepo, chunkRepo, mock.NewMockProvider())
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	hits, err := searcher.SearchWithMonitor(ctx, "ranked", candidates, 5, monitor)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	assert.Equal(t, "ranked", monitor.query)
	assert.Equal(t, 2, monitor.candidateCount)
	assert.Equal(t, 384, monitor.dimensions)
	require.Len(t, monitor.skipped, 1)
	assert.Equal(t, core.ID(2), monitor.skipped[0].Id)
	require.Len(t, monitor.finished, 1)
}

func TestSearch_DimensionMismatch(t *testing.T) {
	documentRepo, chunkRepo, chatRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		chatRepo.Close()
		chunkRepo.Close()
		documentRepo.Close()
		backend.Close()
	}()

	searcher, err := NewSearcher(documentRepo, chunkRepo, mock.NewMockProvider())
	require.NoError(t, err)

	// The mock embedder produces 384 dimensions; this candidate disagrees
	candidates := []Candidate{
		{Id: 1, DocumentId: 1, Content: "stale", Embedding: []float32{0.1, 0.2}},
	}

	_, err = searcher.Search(context.Background(), "query", candidates, 5)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDimensionMismatch))
}

// recordingMonitor captures every monitor callback for assertions.
type recordingMonitor struct {
	query          string
	candidateCount int
	dimensions     int
	skipped        []Candidate
	finished       []Hit
}

var _ SearchMonitor = (*recordingMonitor)(nil)

func (m *recordingMonitor) Start(query string, candidateCount int) {
	m.query = query
	m.candidateCount = candidateCount
}

func (m *recordingMonitor) AfterQueryEmbedding(dimensions int) {
	m.dimensions = dimensions
}

func (m *recordingMonitor) SkippedCandidate(candidate Candidate) {
	m.skipped = append(m.skipped, candidate)
}

func (m *recordingMonitor) Finish(hits []Hit) {
	m.finished = hits
}
