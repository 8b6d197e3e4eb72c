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


package ingestion

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/poiesic/docquery/ai"
	"github.com/poiesic/docquery/core"
	"github.com/poiesic/docquery/extract"
	"github.com/poiesic/docquery/storage"
)

// processor drives one document through extraction, chunking and
// embedding. All public entry points serialize per document ID, so a
// reprocess requested while initial processing runs simply waits its
// turn instead of racing it.
type processor struct {
	documentRepository storage.DocumentRepository
	chunkRepository    storage.ChunkRepository
	registry           *extract.Registry
	chunker            *Chunker
	embedder           ai.Embedder
	embedTimeout       time.Duration
	locks              documentLocks
	logger             *slog.Logger
}

func newProcessor(
	documentRepository storage.DocumentRepository,
	chunkRepository storage.ChunkRepository,
	registry *extract.Registry,
	chunker *Chunker,
	embedder ai.Embedder,
	embedTimeout time.Duration,
	logger *slog.Logger,
) *processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &processor{
		documentRepository: documentRepository,
		chunkRepository:    chunkRepository,
		registry:           registry,
		chunker:            chunker,
		embedder:           embedder,
		embedTimeout:       embedTimeout,
		logger:             logger.With("component", "processor"),
	}
}

// Process runs the full pipeline for one document. Failures are recorded
// on the document record; the returned error mirrors what was recorded so
// callers can log it. The document never stays in the processing state.
func (p *processor) Process(ctx context.Context, documentId core.ID, data []byte) error {
	unlock := p.locks.acquire(documentId)
	defer unlock()
	return p.process(ctx, documentId, data)
}

// Reprocess deletes the document's chunks, then runs processing again
// from the retained source bytes. Without retained bytes the document is
// failed with a message instructing re-upload; it never silently
// succeeds.
func (p *processor) Reprocess(ctx context.Context, documentId core.ID) error {
	unlock := p.locks.acquire(documentId)
	defer unlock()

	doc, err := p.documentRepository.GetDocument(ctx, documentId)
	if err != nil {
		return err
	}

	// Stale chunks must never survive a reprocess
	if err := p.chunkRepository.DeleteChunksByDocument(ctx, documentId); err != nil {
		return err
	}

	data, err := p.documentRepository.GetDocumentData(ctx, documentId)
	if err != nil {
		return err
	}
	if data == nil {
		p.logger.Warn("reprocess requested without retained source bytes", "documentId", documentId)
		return p.fail(ctx, doc, ErrSourceUnavailable)
	}
	if doc.Fingerprint != 0 && core.IDFromContent(data) != doc.Fingerprint {
		p.logger.Warn("retained source bytes fail fingerprint check", "documentId", documentId)
		return p.fail(ctx, doc, ErrSourceCorrupted)
	}

	return p.process(ctx, documentId, data)
}

// process assumes the caller holds the document's lock.
func (p *processor) process(ctx context.Context, documentId core.ID, data []byte) error {
	doc, err := p.documentRepository.GetDocument(ctx, documentId)
	if err != nil {
		return err
	}

	doc.Status = core.StatusProcessing
	doc.ErrorMessage = ""
	doc.ProcessedAt = time.Now().UTC()
	if _, err := p.documentRepository.UpdateDocument(ctx, doc); err != nil {
		return err
	}

	if err := p.run(ctx, doc, data); err != nil {
		p.logger.Error("document processing failed",
			"documentId", doc.Id, "filename", doc.Filename, "err", err)
		return p.fail(ctx, doc, err)
	}

	return nil
}

// run performs extraction through embedding. Any error it returns becomes
// the document's recorded failure reason.
func (p *processor) run(ctx context.Context, doc *core.Document, data []byte) error {
	text, err := p.registry.Extract(doc.MimeType, data)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return extract.ErrEmptyDocument
	}

	doc.ExtractedText = text
	if _, err := p.documentRepository.UpdateDocument(ctx, doc); err != nil {
		return err
	}

	chunks := p.chunker.Chunk(text)
	for _, chunk := range chunks {
		chunk.DocumentId = doc.Id
	}
	p.logger.Debug("chunked document",
		"documentId", doc.Id, "chunks", len(chunks), "textLength", len(text))

	p.embed(ctx, chunks)

	if _, err := p.chunkRepository.AddChunks(ctx, chunks...); err != nil {
		return err
	}

	doc.Status = core.StatusReady
	doc.ErrorMessage = ""
	if _, err := p.documentRepository.UpdateDocument(ctx, doc); err != nil {
		return err
	}

	p.logger.Info("document ready",
		"documentId", doc.Id, "filename", doc.Filename, "chunks", len(chunks))
	return nil
}

// embed fills in chunk embeddings as a single batch. Embedding trouble
// never fails the document: chunks are persisted without vectors and can
// be backfilled by a reindex later.
func (p *processor) embed(ctx context.Context, chunks []*core.Chunk) {
	if len(chunks) == 0 {
		return
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	embedCtx, cancel := context.WithTimeout(ctx, p.embedTimeout)
	defer cancel()

	embeddings, err := p.embedder.EmbedTexts(embedCtx, texts)
	if err != nil {
		p.logger.Warn("embedding batch failed; storing chunks without vectors", "err", err)
		return
	}
	if len(embeddings) != len(chunks) {
		p.logger.Warn("embedding result mismatch; storing chunks without vectors",
			"expected", len(chunks), "received", len(embeddings))
		return
	}

	for i := range chunks {
		chunks[i].Embedding = embeddings[i]
	}
}

// fail records the failure reason and moves the document to failed.
func (p *processor) fail(ctx context.Context, doc *core.Document, cause error) error {
	doc.Status = core.StatusFailed
	doc.ErrorMessage = cause.Error()
	if _, err := p.documentRepository.UpdateDocument(ctx, doc); err != nil {
		p.logger.Error("error recording document failure", "documentId", doc.Id, "err", err)
		return errors.Join(cause, err)
	}
	return cause
}

// documentLocks hands out one mutex per document ID.
type documentLocks struct {
	mu    sync.Mutex
	locks map[core.ID]*sync.Mutex
}

// acquire blocks until the document's lock is held and returns the
// release function.
func (d *documentLocks) acquire(id core.ID) func() {
	d.mu.Lock()
	if d.locks == nil {
		d.locks = make(map[core.ID]*sync.Mutex)
	}
	lock, ok := d.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		d.locks[id] = lock
	}
	d.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
