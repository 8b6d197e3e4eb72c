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

	"github.com/poiesic/docquery/core"
	"github.com/poiesic/docquery/storage"
)

// DocumentIterator walks every ready document together with its chunks.
// Documents that are processing or failed are skipped; their embeddings
// are the ingestion pipeline's business.
type DocumentIterator struct {
	documentRepository storage.DocumentRepository
	chunkRepository    storage.ChunkRepository
}

// NewDocumentIterator creates a new iterator.
func NewDocumentIterator(documentRepository storage.DocumentRepository, chunkRepository storage.ChunkRepository) *DocumentIterator {
	return &DocumentIterator{
		documentRepository: documentRepository,
		chunkRepository:    chunkRepository,
	}
}

// ForEach calls fn once per ready document with all of its chunks.
// Iteration stops on the first error from fn. Context cancellation is
// checked between documents.
func (it *DocumentIterator) ForEach(ctx context.Context, fn func(doc *core.Document, chunks []*core.Chunk) error) error {
	docs, err := it.documentRepository.ListDocuments(ctx)
	if err != nil {
		return err
	}

	for _, doc := range docs {
		if doc.Status != core.StatusReady {
			continue
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		chunks, err := it.chunkRepository.GetChunksByDocument(ctx, doc.Id)
		if err != nil {
			return err
		}

		if err := fn(doc, chunks); err != nil {
			return err
		}
	}

	return nil
}
