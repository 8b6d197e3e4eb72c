package search

import (
	"context"
	"log/slog"

	"github.com/poiesic/docquery/ai"
	"github.com/poiesic/docquery/core"
	"github.com/poiesic/docquery/storage"
)

// DefaultMaxHits is the number of hits returned when callers have no
// reason to choose otherwise.
const DefaultMaxHits = 5

// Searcher embeds query text and ranks chunk candidates against it.
type Searcher struct {
	documentRepository storage.DocumentRepository
	chunkRepository    storage.ChunkRepository
	embedder           ai.Embedder
	logger             *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	documentRepository storage.DocumentRepository,
	chunkRepository storage.ChunkRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Searcher, error) {
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		documentRepository: documentRepository,
		chunkRepository:    chunkRepository,
		embedder:           provider.Embedder(),
		logger:             slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Corpus is the searchable material of one owner: every chunk belonging
// to a ready document. Chunks still awaiting embeddings are included as
// candidates and skipped at ranking time.
type Corpus struct {
	Documents  map[core.ID]*core.Document
	Candidates []Candidate
}

// EmbeddedCount reports how many candidates carry embeddings.
func (c *Corpus) EmbeddedCount() int {
	count := 0
	for _, candidate := range c.Candidates {
		if candidate.Embedding != nil {
			count++
		}
	}
	return count
}

// LoadCorpus gathers the chunks of an owner's ready documents.
// Documents still processing or failed contribute nothing.
func (s *Searcher) LoadCorpus(ctx context.Context, ownerId string) (*Corpus, error) {
	docs, err := s.documentRepository.GetDocumentsByOwner(ctx, ownerId)
	if err != nil {
		s.logger.Error("error loading documents for owner", "ownerId", ownerId, "err", err)
		return nil, err
	}

	corpus := &Corpus{Documents: make(map[core.ID]*core.Document)}
	for _, doc := range docs {
		if doc.Status != core.StatusReady {
			continue
		}
		corpus.Documents[doc.Id] = doc

		chunks, err := s.chunkRepository.GetChunksByDocument(ctx, doc.Id)
		if err != nil {
			s.logger.Error("error loading chunks for document", "documentId", doc.Id, "err", err)
			return nil, err
		}
		corpus.Candidates = append(corpus.Candidates, CandidatesFromChunks(chunks)...)
	}

	return corpus, nil
}

// Search embeds the query and ranks the candidates by cosine similarity.
// Returns up to maxHits results, highest similarity first.
func (s *Searcher) Search(ctx context.Context, query string, candidates []Candidate, maxHits int) ([]Hit, error) {
	return s.SearchWithMonitor(ctx, query, candidates, maxHits, nil)
}

// SearchWithMonitor searches with monitoring. The monitor receives
// callbacks at each stage of the search process.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, candidates []Candidate, maxHits int, monitor SearchMonitor) ([]Hit, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query, len(candidates))

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	monitor.AfterQueryEmbedding(len(embedding))

	for _, candidate := range candidates {
		if candidate.Embedding == nil {
			monitor.SkippedCandidate(candidate)
		}
	}

	hits, err := Rank(embedding, candidates, maxHits)
	if err != nil {
		s.logger.Error("error ranking candidates", "query", query, "err", err)
		return nil, err
	}

	monitor.Finish(hits)
	return hits, nil
}
