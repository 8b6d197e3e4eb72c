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


package reindex

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/docquery/ai"
	"github.com/poiesic/docquery/core"
	"github.com/poiesic/docquery/storage"
)

const (
	DefaultBatchSize      = 100
	DefaultReportInterval = 10
	DefaultMaxRetries     = 3
	DefaultRetryDelay     = 1 * time.Second
)

// Config holds configuration for the reindexing operation.
type Config struct {
	// BatchSize is the number of chunks sent per embedding call
	BatchSize int

	// ReportInterval is how often to report progress (number of documents)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: DefaultReportInterval,
		MaxRetries:     DefaultMaxRetries,
		RetryDelay:     DefaultRetryDelay,
	}
}

// Summary reports what a reindex run covered.
type Summary struct {
	// Documents is the number of ready documents whose chunks were
	// successfully reembedded.
	Documents int

	// FailedDocuments is the number of ready documents left with their
	// previous vectors after exhausting retries.
	FailedDocuments int

	// Chunks is the total number of chunks that received new vectors.
	Chunks int
}

// Reindexer orchestrates the reembedding of every ready document's chunks.
// It must be given the primary embedder directly, never a failover chain:
// a corpus silently rebuilt on fallback vectors would be worse than one
// left on its old vectors.
type Reindexer struct {
	documentRepository storage.DocumentRepository
	config             *Config
	progress           io.Writer
	processor          *BatchProcessor
	iterator           *DocumentIterator
}

// NewReindexer creates a new reindexer.
// progress: where to write progress output (typically os.Stderr)
func NewReindexer(documentRepository storage.DocumentRepository, chunkRepository storage.ChunkRepository, embedder ai.Embedder, config *Config, progress io.Writer) (*Reindexer, error) {
	if documentRepository == nil {
		return nil, ErrDocumentRepositoryRequired
	}
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if progress == nil {
		progress = io.Discard
	}

	processor := NewBatchProcessor(chunkRepository, embedder, config.BatchSize, config.MaxRetries, config.RetryDelay)
	iterator := NewDocumentIterator(documentRepository, chunkRepository)

	return &Reindexer{
		documentRepository: documentRepository,
		config:             config,
		progress:           progress,
		processor:          processor,
		iterator:           iterator,
	}, nil
}

// Run executes the reindexing operation.
// Every ready document's chunks are reembedded with the configured embedder
// and written back atomically per document. A document whose embedding fails
// keeps its previous vectors and is counted in the summary; the run carries
// on to the next document. Progress is reported to the configured writer.
func (r *Reindexer) Run(ctx context.Context) (*Summary, error) {
	// First, count ready documents
	documents, err := r.documentRepository.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	total := 0
	for _, document := range documents {
		if document.Status == core.StatusReady {
			total++
		}
	}

	summary := &Summary{}
	if total == 0 {
		fmt.Fprintf(r.progress, "No ready documents found (0 documents)\n")
		return summary, nil
	}

	fmt.Fprintf(r.progress, "Starting reindex of %d documents (batch size: %d)\n",
		total, r.config.BatchSize)

	// Initialize progress tracker
	tracker := NewProgressTracker(r.progress, total, r.config.ReportInterval)
	tracker.Start()

	processed := 0

	err = r.iterator.ForEach(ctx, func(document *core.Document, chunks []*core.Chunk) error {
		if err := r.processor.Process(ctx, chunks); err != nil {
			if ctx.Err() != nil {
				return err
			}
			fmt.Fprintf(r.progress, "\ndocument %d failed: %v\n", document.Id, err)
			summary.FailedDocuments++
		} else {
			summary.Documents++
			summary.Chunks += len(chunks)
		}

		processed++
		tracker.Update(processed)

		return nil
	})

	if err != nil {
		return summary, err
	}

	// Finish progress tracking
	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reindex complete. Processed %d documents (%d failed) in %v (%.1f docs/sec)\n",
		processed, summary.FailedDocuments, elapsed.Round(time.Second), float64(processed)/elapsed.Seconds())

	return summary, nil
}
