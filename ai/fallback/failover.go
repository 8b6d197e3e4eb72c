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


package fallback

import (
	"context"
	"log/slog"

	"github.com/poiesic/docquery/ai"
)

// FailoverEmbedder delegates to a primary embedder and falls back to
// deterministic hash embeddings when the primary fails. Inputs are truncated
// to the configured limit before either path runs. The methods never return
// an error.
type FailoverEmbedder struct {
	primary  ai.Embedder
	fallback ai.Embedder
	maxChars int
	logger   *slog.Logger
}

// NewFailoverEmbedder wraps primary with deterministic failover. A nil
// primary is valid and routes everything to the deterministic embedder.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewFailoverEmbedder(primary ai.Embedder, config *ai.Config) ai.Embedder {
	return &FailoverEmbedder{
		primary:  primary,
		fallback: NewDeterministicEmbedder(config.EmbeddingDimensions),
		maxChars: config.MaxEmbedChars,
		logger:   slog.Default().With("component", "failover-embedder"),
	}
}

// EmbedText generates an embedding for the text, falling back to a
// deterministic vector when the primary embedder fails.
func (e *FailoverEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	text = e.truncate(text)

	if e.primary != nil {
		vector, err := e.primary.EmbedText(ctx, text)
		if err == nil && len(vector) > 0 {
			return vector, nil
		}
		e.logger.Warn("primary embedder failed, using deterministic fallback", "err", err)
	}

	return e.fallback.EmbedText(ctx, text)
}

// EmbedTexts generates embeddings for all texts, falling back to
// deterministic vectors when the primary embedder fails. The whole batch
// falls back together so the vectors stay mutually comparable.
func (e *FailoverEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	truncated := make([]string, len(texts))
	for i, text := range texts {
		truncated[i] = e.truncate(text)
	}

	if e.primary != nil {
		vectors, err := e.primary.EmbedTexts(ctx, truncated)
		if err == nil && len(vectors) == len(truncated) {
			return vectors, nil
		}
		e.logger.Warn("primary embedder failed for batch, using deterministic fallback",
			"count", len(truncated),
			"err", err)
	}

	return e.fallback.EmbedTexts(ctx, truncated)
}

func (e *FailoverEmbedder) truncate(text string) string {
	if e.maxChars < 1 || len(text) <= e.maxChars {
		return text
	}
	runes := []rune(text)
	if len(runes) <= e.maxChars {
		return text
	}
	return string(runes[:e.maxChars])
}
