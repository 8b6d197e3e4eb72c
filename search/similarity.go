package search

import (
	"fmt"
	"math"
	"slices"

	"github.com/poiesic/docquery/core"
)

// Candidate is a chunk offered for ranking. A nil Embedding is allowed;
// such candidates are skipped during ranking.
type Candidate struct {
	Id         core.ID
	DocumentId core.ID
	Content    string
	Embedding  []float32
}

// Hit is a ranked candidate. The embedding is deliberately omitted so hits
// can be passed around without dragging large vectors along.
type Hit struct {
	Id         core.ID
	DocumentId core.ID
	Content    string
	Similarity float64
}

// CandidatesFromChunks converts stored chunks into ranking candidates.
func CandidatesFromChunks(chunks []*core.Chunk) []Candidate {
	candidates := make([]Candidate, 0, len(chunks))
	for _, chunk := range chunks {
		candidates = append(candidates, Candidate{
			Id:         chunk.Id,
			DocumentId: chunk.DocumentId,
			Content:    chunk.Content,
			Embedding:  chunk.Embedding,
		})
	}
	return candidates
}

// CosineSimilarity computes dot(a,b) / (||a|| * ||b||).
// Vectors of mismatched length are rejected with ErrDimensionMismatch.
// If either vector has zero magnitude the similarity is 0.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Rank scores every embedded candidate against the query embedding and
// returns up to maxHits results sorted by similarity descending.
// Candidates without embeddings are skipped. A candidate whose embedding
// length differs from the query's is a hard error.
func Rank(queryEmbedding []float32, candidates []Candidate, maxHits int) ([]Hit, error) {
	hits := make([]Hit, 0, len(candidates))

	for _, candidate := range candidates {
		if candidate.Embedding == nil {
			continue
		}

		similarity, err := CosineSimilarity(queryEmbedding, candidate.Embedding)
		if err != nil {
			return nil, fmt.Errorf("ranking chunk %d: %w", candidate.Id, err)
		}

		hits = append(hits, Hit{
			Id:         candidate.Id,
			DocumentId: candidate.DocumentId,
			Content:    candidate.Content,
			Similarity: similarity,
		})
	}

	slices.SortFunc(hits, func(a, b Hit) int {
		if a.Similarity > b.Similarity {
			return -1
		}
		if a.Similarity < b.Similarity {
			return 1
		}
		return 0
	})

	if maxHits > 0 && len(hits) > maxHits {
		hits = hits[:maxHits]
	}

	return hits, nil
}

// FilterBySimilarity drops hits below min. Ranking itself enforces no
// floor; this is the opt-in quality gate for callers that want one.
func FilterBySimilarity(hits []Hit, min float64) []Hit {
	filtered := make([]Hit, 0, len(hits))
	for _, hit := range hits {
		if hit.Similarity >= min {
			filtered = append(filtered, hit)
		}
	}
	return filtered
}
