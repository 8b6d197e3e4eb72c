package badger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/poiesic/docquery/core"
	"github.com/poiesic/docquery/storage"
)

func TestDocumentBasics(t *testing.T) {
	// Create in-memory repositories
	documentRepo, chunkRepo, chatRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() {
		chatRepo.Close()
		chunkRepo.Close()
		documentRepo.Close()
		backend.Close()
	}()

	ctx := context.Background()

	// Test adding a document
	doc := &core.Document{
		OwnerId:  "user-1",
		Title:    "Quarterly Report",
		Filename: "report.pdf",
		MimeType: "application/pdf",
		Size:     2048,
		Status:   core.StatusProcessing,
	}

	added, err := documentRepo.AddDocument(ctx, doc)
	if err != nil {
		t.Fatalf("Failed to add document: %v", err)
	}

	if added.Id == 0 {
		t.Fatal("Expected non-zero ID")
	}
	if added.UploadedAt.IsZero() {
		t.Fatal("Expected UploadedAt to be stamped")
	}
	if added.UpdatedAt.IsZero() {
		t.Fatal("Expected UpdatedAt to be stamped")
	}

	// Test retrieving the document
	retrieved, err := documentRepo.GetDocument(ctx, added.Id)
	if err != nil {
		t.Fatalf("Failed to get document: %v", err)
	}

	if retrieved.Filename != "report.pdf" {
		t.Fatalf("Expected 'report.pdf', got '%s'", retrieved.Filename)
	}
	if retrieved.OwnerId != "user-1" {
		t.Fatalf("Expected 'user-1', got '%s'", retrieved.OwnerId)
	}
	if retrieved.Status != core.StatusProcessing {
		t.Fatalf("Expected processing status, got %s", retrieved.Status)
	}
}

func TestGetDocument_NotFound(t *testing.T) {
	documentRepo, chunkRepo, chatRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { chatRepo.Close(); chunkRepo.Close(); documentRepo.Close(); backend.Close() }()

	ctx := context.Background()

	_, err = documentRepo.GetDocument(ctx, 12345)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestGetDocumentsByOwner(t *testing.T) {
	documentRepo, chunkRepo, chatRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { chatRepo.Close(); chunkRepo.Close(); documentRepo.Close(); backend.Close() }()

	ctx := context.Background()

	// Add documents for two owners
	docs := []*core.Document{
		{OwnerId: "alice", Filename: "a1.txt", MimeType: "text/plain", Status: core.StatusProcessing},
		{OwnerId: "bob", Filename: "b1.txt", MimeType: "text/plain", Status: core.StatusProcessing},
		{OwnerId: "alice", Filename: "a2.txt", MimeType: "text/plain", Status: core.StatusProcessing},
	}
	for _, doc := range docs {
		if _, err := documentRepo.AddDocument(ctx, doc); err != nil {
			t.Fatalf("Failed to add document: %v", err)
		}
	}

	// Owner scan must return only alice's documents, in upload order
	results, err := documentRepo.GetDocumentsByOwner(ctx, "alice")
	if err != nil {
		t.Fatalf("Failed to get documents by owner: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(results))
	}
	if results[0].Filename != "a1.txt" {
		t.Errorf("Expected 'a1.txt' first, got '%s'", results[0].Filename)
	}
	if results[1].Filename != "a2.txt" {
		t.Errorf("Expected 'a2.txt' second, got '%s'", results[1].Filename)
	}

	// Unknown owner returns empty, not an error
	empty, err := documentRepo.GetDocumentsByOwner(ctx, "nobody")
	if err != nil {
		t.Fatalf("Failed to query unknown owner: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("Expected 0 documents for unknown owner, got %d", len(empty))
	}
}

func TestListDocuments(t *testing.T) {
	documentRepo, chunkRepo, chatRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { chatRepo.Close(); chunkRepo.Close(); documentRepo.Close(); backend.Close() }()

	ctx := context.Background()

	for _, name := range []string{"one.txt", "two.txt", "three.txt"} {
		doc := &core.Document{OwnerId: "user-1", Filename: name, MimeType: "text/plain", Status: core.StatusProcessing}
		if _, err := documentRepo.AddDocument(ctx, doc); err != nil {
			t.Fatalf("Failed to add document: %v", err)
		}
	}

	results, err := documentRepo.ListDocuments(ctx)
	if err != nil {
		t.Fatalf("Failed to list documents: %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("Expected 3 documents, got %d", len(results))
	}

	// Results must be sorted by ID ascending
	for i := 0; i < len(results)-1; i++ {
		if results[i].Id >= results[i+1].Id {
			t.Fatalf("Expected ascending IDs, got %d before %d", results[i].Id, results[i+1].Id)
		}
	}
}

func TestUpdateDocument(t *testing.T) {
	documentRepo, chunkRepo, chatRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { chatRepo.Close(); chunkRepo.Close(); documentRepo.Close(); backend.Close() }()

	ctx := context.Background()

	doc := &core.Document{
		OwnerId:  "user-1",
		Filename: "notes.txt",
		MimeType: "text/plain",
		Status:   core.StatusProcessing,
	}
	added, err := documentRepo.AddDocument(ctx, doc)
	if err != nil {
		t.Fatalf("Failed to add document: %v", err)
	}

	// Simulate the processing pipeline completing
	added.Status = core.StatusReady
	added.ExtractedText = "The extracted contents."
	if _, err := documentRepo.UpdateDocument(ctx, added); err != nil {
		t.Fatalf("Failed to update document: %v", err)
	}

	retrieved, err := documentRepo.GetDocument(ctx, added.Id)
	if err != nil {
		t.Fatalf("Failed to get document: %v", err)
	}

	if retrieved.Status != core.StatusReady {
		t.Fatalf("Expected ready status, got %s", retrieved.Status)
	}
	if retrieved.ExtractedText != "The extracted contents." {
		t.Fatalf("Expected extracted text to persist, got '%s'", retrieved.ExtractedText)
	}
}

func TestUpdateDocument_NotFound(t *testing.T) {
	documentRepo, chunkRepo, chatRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { chatRepo.Close(); chunkRepo.Close(); documentRepo.Close(); backend.Close() }()

	ctx := context.Background()

	doc := &core.Document{
		Id:       999,
		OwnerId:  "user-1",
		Filename: "ghost.txt",
		MimeType: "text/plain",
		Status:   core.StatusReady,
	}
	_, err = documentRepo.UpdateDocument(ctx, doc)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestUpdateDocument_OwnerReindex(t *testing.T) {
	documentRepo, chunkRepo, chatRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { chatRepo.Close(); chunkRepo.Close(); documentRepo.Close(); backend.Close() }()

	ctx := context.Background()

	doc := &core.Document{OwnerId: "alice", Filename: "shared.txt", MimeType: "text/plain", Status: core.StatusReady}
	added, err := documentRepo.AddDocument(ctx, doc)
	if err != nil {
		t.Fatalf("Failed to add document: %v", err)
	}

	// Transfer ownership
	added.OwnerId = "bob"
	if _, err := documentRepo.UpdateDocument(ctx, added); err != nil {
		t.Fatalf("Failed to update document: %v", err)
	}

	aliceDocs, err := documentRepo.GetDocumentsByOwner(ctx, "alice")
	if err != nil {
		t.Fatalf("Failed to query alice: %v", err)
	}
	if len(aliceDocs) != 0 {
		t.Fatalf("Expected 0 documents for alice after transfer, got %d", len(aliceDocs))
	}

	bobDocs, err := documentRepo.GetDocumentsByOwner(ctx, "bob")
	if err != nil {
		t.Fatalf("Failed to query bob: %v", err)
	}
	if len(bobDocs) != 1 {
		t.Fatalf("Expected 1 document for bob after transfer, got %d", len(bobDocs))
	}
}

func TestDocumentData(t *testing.T) {
	documentRepo, chunkRepo, chatRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { chatRepo.Close(); chunkRepo.Close(); documentRepo.Close(); backend.Close() }()

	ctx := context.Background()

	doc := &core.Document{OwnerId: "user-1", Filename: "raw.bin", MimeType: "text/plain", Status: core.StatusProcessing}
	added, err := documentRepo.AddDocument(ctx, doc)
	if err != nil {
		t.Fatalf("Failed to add document: %v", err)
	}

	raw := []byte{0x25, 0x50, 0x44, 0x46, 0x00, 0xFF}
	if err := documentRepo.PutDocumentData(ctx, added.Id, raw); err != nil {
		t.Fatalf("Failed to put document data: %v", err)
	}

	data, err := documentRepo.GetDocumentData(ctx, added.Id)
	if err != nil {
		t.Fatalf("Failed to get document data: %v", err)
	}
	if !bytes.Equal(data, raw) {
		t.Fatalf("Expected stored bytes to round trip, got %v", data)
	}

	// Absent data is (nil, nil), not an error
	missing, err := documentRepo.GetDocumentData(ctx, 424242)
	if err != nil {
		t.Fatalf("Expected no error for absent data, got %v", err)
	}
	if missing != nil {
		t.Fatalf("Expected nil bytes for absent data, got %v", missing)
	}
}

func TestDeleteDocument_Cascades(t *testing.T) {
	documentRepo, chunkRepo, chatRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { chatRepo.Close(); chunkRepo.Close(); documentRepo.Close(); backend.Close() }()

	ctx := context.Background()

	doc := &core.Document{OwnerId: "user-1", Filename: "doomed.txt", MimeType: "text/plain", Status: core.StatusReady}
	added, err := documentRepo.AddDocument(ctx, doc)
	if err != nil {
		t.Fatalf("Failed to add document: %v", err)
	}

	if err := documentRepo.PutDocumentData(ctx, added.Id, []byte("source bytes")); err != nil {
		t.Fatalf("Failed to put document data: %v", err)
	}

	chunks := []*core.Chunk{
		{DocumentId: added.Id, Index: 0, Content: "first", CharStart: 0, CharEnd: 5},
		{DocumentId: added.Id, Index: 1, Content: "second", CharStart: 5, CharEnd: 11},
	}
	if _, err := chunkRepo.AddChunks(ctx, chunks...); err != nil {
		t.Fatalf("Failed to add chunks: %v", err)
	}

	// Delete the document
	if err := documentRepo.DeleteDocument(ctx, added.Id); err != nil {
		t.Fatalf("Failed to delete document: %v", err)
	}

	// Verify the record is gone
	_, err = documentRepo.GetDocument(ctx, added.Id)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound after delete, got %v", err)
	}

	// Verify the chunks are gone
	remaining, err := chunkRepo.GetChunksByDocument(ctx, added.Id)
	if err != nil {
		t.Fatalf("Failed to query chunks: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("Expected 0 chunks after cascade, got %d", len(remaining))
	}

	// Verify the retained bytes are gone
	data, err := documentRepo.GetDocumentData(ctx, added.Id)
	if err != nil {
		t.Fatalf("Failed to query document data: %v", err)
	}
	if data != nil {
		t.Fatal("Expected retained bytes to be deleted")
	}

	// Verify the owner index no longer lists it
	owned, err := documentRepo.GetDocumentsByOwner(ctx, "user-1")
	if err != nil {
		t.Fatalf("Failed to query owner: %v", err)
	}
	if len(owned) != 0 {
		t.Fatalf("Expected 0 documents for owner after delete, got %d", len(owned))
	}
}

func TestDeleteDocument_NotFound(t *testing.T) {
	documentRepo, chunkRepo, chatRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { chatRepo.Close(); chunkRepo.Close(); documentRepo.Close(); backend.Close() }()

	ctx := context.Background()

	err = documentRepo.DeleteDocument(ctx, 31337)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}
