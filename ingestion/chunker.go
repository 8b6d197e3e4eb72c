package ingestion

import (
	"strings"

	"github.com/poiesic/docquery/core"
)

// DefaultChunkSize is the default chunk window in characters.
const DefaultChunkSize = 500

// DefaultOverlap is the default number of characters shared between
// successive chunks.
const DefaultOverlap = 50

// Chunker splits extracted text into fixed-size overlapping windows.
// Offsets are measured in runes so multibyte text chunks cleanly.
type Chunker struct {
	chunkSize int
	overlap   int
}

// ChunkerOption configures a Chunker.
type ChunkerOption func(*Chunker)

// WithChunkSize sets the chunk window in characters.
func WithChunkSize(size int) ChunkerOption {
	return func(c *Chunker) {
		c.chunkSize = size
	}
}

// WithOverlap sets the overlap between successive chunks in characters.
func WithOverlap(overlap int) ChunkerOption {
	return func(c *Chunker) {
		c.overlap = overlap
	}
}

// NewChunker creates a chunker. The overlap must be smaller than the
// chunk size.
func NewChunker(opts ...ChunkerOption) (*Chunker, error) {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.chunkSize < 1 {
		return nil, ErrInvalidChunkSize
	}
	if c.overlap < 0 || c.overlap >= c.chunkSize {
		return nil, ErrInvalidOverlap
	}

	return c, nil
}

// Chunk splits text into windows of chunkSize runes, each window starting
// chunkSize-overlap runes after the previous one. Chunk content is
// trimmed; windows that trim to nothing are not emitted, though their
// span still advances. Empty input yields no chunks. Pure function.
func (c *Chunker) Chunk(text string) []*core.Chunk {
	if text == "" {
		return nil
	}

	runes := []rune(text)
	total := len(runes)
	step := c.chunkSize - c.overlap

	chunks := make([]*core.Chunk, 0, total/step+1)
	index := 0

	for start := 0; start < total; start += step {
		end := start + c.chunkSize
		if end > total {
			end = total
		}

		content := strings.TrimSpace(string(runes[start:end]))
		if content != "" {
			chunks = append(chunks, &core.Chunk{
				Index:     index,
				Content:   content,
				CharStart: start,
				CharEnd:   end,
			})
			index++
		}

		if end == total {
			break
		}
	}

	return chunks
}

// ChunkSize reports the configured window size.
func (c *Chunker) ChunkSize() int {
	return c.chunkSize
}

// Overlap reports the configured overlap.
func (c *Chunker) Overlap() int {
	return c.overlap
}
