package fallback

import (
	"context"
	"encoding/binary"
	"math"

	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/docquery/ai"
)

// DeterministicEmbedder generates embeddings from a hash of the text.
// The same text always produces the same vector, so exact duplicates still
// rank as perfect matches even though the vectors carry no semantics.
type DeterministicEmbedder struct {
	dimensions int
}

// NewDeterministicEmbedder creates an embedder producing unit vectors of the
// given width. The width should match the remote embedding model so stored
// vectors stay comparable.
//
// Returns ai.Embedder interface to enforce abstraction.
func NewDeterministicEmbedder(dimensions int) ai.Embedder {
	if dimensions < 1 {
		dimensions = 1536
	}
	return &DeterministicEmbedder{dimensions: dimensions}
}

// EmbedText generates a deterministic vector for the text. It never fails.
func (e *DeterministicEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return e.vector(text), nil
}

// EmbedTexts generates deterministic vectors for all texts. It never fails.
func (e *DeterministicEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = e.vector(text)
	}
	return vectors, nil
}

func (e *DeterministicEmbedder) vector(text string) []float32 {
	h, _ := blake2b.New(8, nil)
	h.Write([]byte(text))
	seed := binary.LittleEndian.Uint64(h.Sum(nil))

	// Map the seed into a small positive frequency. The offset keeps the
	// frequency nonzero so the vector never collapses to all zeros.
	frequency := float64(seed%1000000)/1000000.0 + 0.1

	vector := make([]float32, e.dimensions)
	var sumSquares float64
	for i := range vector {
		value := math.Sin(frequency * float64(i+1))
		vector[i] = float32(value)
		sumSquares += value * value
	}

	// Normalize to unit length
	norm := math.Sqrt(sumSquares)
	if norm > 0 {
		for i := range vector {
			vector[i] = float32(float64(vector[i]) / norm)
		}
	}

	return vector
}
