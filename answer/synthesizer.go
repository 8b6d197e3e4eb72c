// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package answer

import (
	"context"
	"log/slog"
	"math"

	"github.com/poiesic/docquery/ai"
	"github.com/poiesic/docquery/core"
	"github.com/poiesic/docquery/search"
	"github.com/poiesic/docquery/storage"
)

const (
	// DefaultMaxTokens caps the completion length requested from backends.
	DefaultMaxTokens = 1024

	// previewLength is the rune budget for source previews.
	previewLength = 200
)

// Answer is one assistant reply with the passages that ground it.
// Sources are ordered by rank; bracket references in Content count from
// [1] and line up with Sources positions.
type Answer struct {
	Content string
	Sources []core.Source
	Backend string  // Backend that produced Content; empty for canned replies
	Tier    ai.Tier // Routed tier; zero for canned replies
}

// Synthesizer answers questions from the requester's document corpus.
type Synthesizer struct {
	searcher       *search.Searcher
	chatRepository storage.ChatRepository
	provider       ai.AIProvider
	router         Router
	maxTokens      int
	minSimilarity  float64
	logger         *slog.Logger
}

// Option configures a Synthesizer.
type Option func(*Synthesizer) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synthesizer) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithRouter replaces the default keyword router.
func WithRouter(router Router) Option {
	return func(s *Synthesizer) error {
		if router != nil {
			s.router = router
		}
		return nil
	}
}

// WithMaxTokens sets the completion length cap.
func WithMaxTokens(maxTokens int) Option {
	return func(s *Synthesizer) error {
		if maxTokens > 0 {
			s.maxTokens = maxTokens
		}
		return nil
	}
}

// WithMinSimilarity drops ranked passages below the floor before they
// reach the prompt. Zero, the default, keeps every ranked passage.
func WithMinSimilarity(minSimilarity float64) Option {
	return func(s *Synthesizer) error {
		s.minSimilarity = minSimilarity
		return nil
	}
}

// NewSynthesizer creates a new synthesizer.
func NewSynthesizer(
	searcher *search.Searcher,
	chatRepository storage.ChatRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Synthesizer, error) {
	if searcher == nil {
		return nil, ErrSearcherRequired
	}
	if chatRepository == nil {
		return nil, ErrChatRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Synthesizer{
		searcher:       searcher,
		chatRepository: chatRepository,
		provider:       provider,
		router:         NewKeywordRouter(),
		maxTokens:      DefaultMaxTokens,
		logger:         slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Answer produces a grounded reply to the query from ownerId's ready
// documents and appends the turn to the session transcript. Backend
// trouble degrades the reply instead of failing the call; only storage
// and ranking errors are returned.
func (s *Synthesizer) Answer(ctx context.Context, ownerId string, sessionId core.ID, query string) (*Answer, error) {
	corpus, err := s.searcher.LoadCorpus(ctx, ownerId)
	if err != nil {
		return nil, err
	}

	// Short-circuit before any embedding or completion call.
	if len(corpus.Documents) == 0 {
		return s.finish(ctx, sessionId, query, &Answer{Content: NoDocumentsAnswer})
	}
	if corpus.EmbeddedCount() == 0 {
		return s.finish(ctx, sessionId, query, &Answer{Content: StillProcessingAnswer})
	}

	hits, err := s.searcher.Search(ctx, query, corpus.Candidates, search.DefaultMaxHits)
	if err != nil {
		return nil, err
	}
	if s.minSimilarity > 0 {
		hits = search.FilterBySimilarity(hits, s.minSimilarity)
	}
	if len(hits) == 0 {
		return s.finish(ctx, sessionId, query, &Answer{Content: NoMatchesAnswer})
	}

	reply := s.complete(ctx, query, hits)
	if reply.Content != ApologyAnswer {
		reply.Sources = s.sources(corpus, hits)
	}

	return s.finish(ctx, sessionId, query, reply)
}

// complete routes the query to a backend and runs the completion,
// trying at most one alternate backend on failure.
func (s *Synthesizer) complete(ctx context.Context, query string, hits []search.Hit) *Answer {
	tier := s.router.Route(query)
	userPrompt := buildUserPrompt(query, hits)

	completer := s.provider.CompleterFor(tier)
	if completer == nil {
		s.logger.Warn("no completion backend configured", "tier", tier)
		return &Answer{Content: ApologyAnswer}
	}

	content, err := completer.Complete(ctx, systemPrompt, userPrompt, s.maxTokens)
	if err == nil {
		return &Answer{Content: content, Backend: completer.Name(), Tier: tier}
	}
	s.logger.Warn("completion backend failed",
		"tier", tier, "backend", completer.Name(), "err", err)

	alternate := s.alternateFor(tier, completer)
	if alternate == nil {
		return &Answer{Content: ApologyAnswer}
	}

	content, err = alternate.Complete(ctx, systemPrompt, userPrompt, s.maxTokens)
	if err != nil {
		s.logger.Warn("alternate backend failed", "backend", alternate.Name(), "err", err)
		return &Answer{Content: ApologyAnswer}
	}
	return &Answer{Content: content, Backend: alternate.Name(), Tier: tier}
}

// alternateFor finds one configured backend distinct from the failed one.
func (s *Synthesizer) alternateFor(tier ai.Tier, failed ai.Completer) ai.Completer {
	for _, candidate := range []ai.Tier{ai.TierGeneral, ai.TierReasoning, ai.TierFast} {
		if candidate == tier {
			continue
		}
		if completer := s.provider.CompleterFor(candidate); completer != nil && completer != failed {
			return completer
		}
	}
	return nil
}

// sources maps ranked hits to citation records, in rank order.
func (s *Synthesizer) sources(corpus *search.Corpus, hits []search.Hit) []core.Source {
	sources := make([]core.Source, 0, len(hits))
	for _, hit := range hits {
		title := ""
		if doc, ok := corpus.Documents[hit.DocumentId]; ok {
			title = doc.Title
		}
		sources = append(sources, core.Source{
			DocumentId:    hit.DocumentId,
			DocumentTitle: title,
			ChunkId:       hit.Id,
			Preview:       contentPreview(hit.Content),
			Confidence:    confidencePercent(hit.Similarity),
		})
	}
	return sources
}

// finish persists the turn, then returns the reply. The transcript write
// happens before the caller sees the answer so a read of the session
// always includes it.
func (s *Synthesizer) finish(ctx context.Context, sessionId core.ID, query string, reply *Answer) (*Answer, error) {
	_, err := s.chatRepository.AddMessages(ctx,
		&core.ChatMessage{SessionId: sessionId, Role: core.RoleUser, Content: query},
		&core.ChatMessage{SessionId: sessionId, Role: core.RoleAssistant, Content: reply.Content, Sources: reply.Sources},
	)
	if err != nil {
		s.logger.Error("error persisting chat turn", "sessionId", sessionId, "err", err)
		return nil, err
	}
	return reply, nil
}

// contentPreview truncates chunk content for display.
func contentPreview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewLength {
		return content
	}
	return string(runes[:previewLength]) + "..."
}

// confidencePercent converts a similarity to a percentage in [0, 100].
func confidencePercent(similarity float64) int {
	percent := int(math.Round(similarity * 100))
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}
