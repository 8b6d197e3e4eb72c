package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docquery/core"
	"github.com/poiesic/docquery/storage"
)

func TestChatSessionBasics(t *testing.T) {
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

	// Test adding a session
	session := &core.ChatSession{
		Token:   "tok-abc",
		OwnerId: "user-1",
		Title:   "Questions about the report",
	}

	added, err := chatRepo.AddSession(ctx, session)
	if err != nil {
		t.Fatalf("Failed to add session: %v", err)
	}

	if added.Id == 0 {
		t.Fatal("Expected non-zero ID")
	}
	if added.CreatedAt.IsZero() {
		t.Fatal("Expected CreatedAt to be stamped")
	}

	// Test retrieving the session
	retrieved, err := chatRepo.GetSession(ctx, added.Id)
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if retrieved.Token != "tok-abc" {
		t.Fatalf("Expected 'tok-abc', got '%s'", retrieved.Token)
	}
	if retrieved.Title != "Questions about the report" {
		t.Fatalf("Expected title to persist, got '%s'", retrieved.Title)
	}
}

func TestAddSession_DuplicateToken(t *testing.T) {
	documentRepo, chunkRepo, chatRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { chatRepo.Close(); chunkRepo.Close(); documentRepo.Close(); backend.Close() }()

	ctx := context.Background()

	first := &core.ChatSession{Token: "tok-dup", OwnerId: "user-1"}
	if _, err := chatRepo.AddSession(ctx, first); err != nil {
		t.Fatalf("Failed to add first session: %v", err)
	}

	second := &core.ChatSession{Token: "tok-dup", OwnerId: "user-2"}
	_, err = chatRepo.AddSession(ctx, second)
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestGetSessionByToken(t *testing.T) {
	documentRepo, chunkRepo, chatRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { chatRepo.Close(); chunkRepo.Close(); documentRepo.Close(); backend.Close() }()

	ctx := context.Background()

	session := &core.ChatSession{Token: "tok-lookup", OwnerId: "user-1"}
	added, err := chatRepo.AddSession(ctx, session)
	if err != nil {
		t.Fatalf("Failed to add session: %v", err)
	}

	retrieved, err := chatRepo.GetSessionByToken(ctx, "tok-lookup")
	if err != nil {
		t.Fatalf("Failed to get session by token: %v", err)
	}
	if retrieved.Id != added.Id {
		t.Fatalf("Expected ID %d, got %d", added.Id, retrieved.Id)
	}

	// Unknown token is ErrNotFound
	_, err = chatRepo.GetSessionByToken(ctx, "tok-unknown")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestGetSessionsByOwner(t *testing.T) {
	documentRepo, chunkRepo, chatRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { chatRepo.Close(); chunkRepo.Close(); documentRepo.Close(); backend.Close() }()

	ctx := context.Background()

	sessions := []*core.ChatSession{
		{Token: "tok-1", OwnerId: "alice"},
		{Token: "tok-2", OwnerId: "bob"},
		{Token: "tok-3", OwnerId: "alice"},
	}
	for _, session := range sessions {
		if _, err := chatRepo.AddSession(ctx, session); err != nil {
			t.Fatalf("Failed to add session: %v", err)
		}
	}

	results, err := chatRepo.GetSessionsByOwner(ctx, "alice")
	if err != nil {
		t.Fatalf("Failed to get sessions by owner: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(results))
	}
	if results[0].Token != "tok-1" {
		t.Errorf("Expected 'tok-1' first, got '%s'", results[0].Token)
	}
	if results[1].Token != "tok-3" {
		t.Errorf("Expected 'tok-3' second, got '%s'", results[1].Token)
	}
}

func TestChatMessageAppendOrder(t *testing.T) {
	documentRepo, chunkRepo, chatRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { chatRepo.Close(); chunkRepo.Close(); documentRepo.Close(); backend.Close() }()

	ctx := context.Background()

	session := &core.ChatSession{Token: "tok-conv", OwnerId: "user-1"}
	added, err := chatRepo.AddSession(ctx, session)
	if err != nil {
		t.Fatalf("Failed to add session: %v", err)
	}

	messages := []*core.ChatMessage{
		{SessionId: added.Id, Role: core.RoleUser, Content: "What is in the report?"},
		{SessionId: added.Id, Role: core.RoleAssistant, Content: "The report covers Q3 revenue."},
		{SessionId: added.Id, Role: core.RoleUser, Content: "And expenses?"},
	}

	stored, err := chatRepo.AddMessages(ctx, messages...)
	if err != nil {
		t.Fatalf("Failed to add messages: %v", err)
	}
	for i, message := range stored {
		if message.Id == 0 {
			t.Fatalf("Expected non-zero ID for message %d", i)
		}
		if message.CreatedAt.IsZero() {
			t.Fatalf("Expected CreatedAt to be stamped for message %d", i)
		}
	}

	// Retrieval preserves append order
	results, err := chatRepo.GetMessagesBySession(ctx, added.Id)
	if err != nil {
		t.Fatalf("Failed to get messages: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(results))
	}
	if results[0].Content != "What is in the report?" {
		t.Errorf("Expected user question first, got '%s'", results[0].Content)
	}
	if results[1].Role != core.RoleAssistant {
		t.Errorf("Expected assistant role second, got %s", results[1].Role)
	}
	if results[2].Content != "And expenses?" {
		t.Errorf("Expected follow-up last, got '%s'", results[2].Content)
	}
}

func TestAddMessages_WithSources(t *testing.T) {
	documentRepo, chunkRepo, chatRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { chatRepo.Close(); chunkRepo.Close(); documentRepo.Close(); backend.Close() }()

	ctx := context.Background()

	session := &core.ChatSession{Token: "tok-src", OwnerId: "user-1"}
	added, err := chatRepo.AddSession(ctx, session)
	if err != nil {
		t.Fatalf("Failed to add session: %v", err)
	}

	message := &core.ChatMessage{
		SessionId: added.Id,
		Role:      core.RoleAssistant,
		Content:   "Revenue grew 12% [1].",
		Sources: []core.Source{
			{DocumentId: 4, DocumentTitle: "Q3 Report", ChunkId: 17, Preview: "Revenue grew 12%...", Confidence: 87},
		},
	}
	stored, err := chatRepo.AddMessages(ctx, message)
	if err != nil {
		t.Fatalf("Failed to add message: %v", err)
	}

	results, err := chatRepo.GetMessagesBySession(ctx, added.Id)
	if err != nil {
		t.Fatalf("Failed to get messages: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(results))
	}
	if results[0].Id != stored[0].Id {
		t.Fatalf("Expected ID %d, got %d", stored[0].Id, results[0].Id)
	}
	if len(results[0].Sources) != 1 {
		t.Fatalf("Expected 1 source, got %d", len(results[0].Sources))
	}
	if results[0].Sources[0].Confidence != 87 {
		t.Fatalf("Expected confidence 87, got %d", results[0].Sources[0].Confidence)
	}
	if results[0].Sources[0].DocumentTitle != "Q3 Report" {
		t.Fatalf("Expected document title to persist, got '%s'", results[0].Sources[0].DocumentTitle)
	}
}

func TestAddMessages_BumpsSessionUpdatedAt(t *testing.T) {
	documentRepo, chunkRepo, chatRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { chatRepo.Close(); chunkRepo.Close(); documentRepo.Close(); backend.Close() }()

	ctx := context.Background()

	session := &core.ChatSession{Token: "tok-bump", OwnerId: "user-1"}
	added, err := chatRepo.AddSession(ctx, session)
	if err != nil {
		t.Fatalf("Failed to add session: %v", err)
	}
	createdAt := added.CreatedAt

	// Ensure the clock moves past microsecond storage resolution
	time.Sleep(5 * time.Millisecond)

	message := &core.ChatMessage{SessionId: added.Id, Role: core.RoleUser, Content: "ping"}
	if _, err := chatRepo.AddMessages(ctx, message); err != nil {
		t.Fatalf("Failed to add message: %v", err)
	}

	retrieved, err := chatRepo.GetSession(ctx, added.Id)
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if !retrieved.UpdatedAt.After(createdAt) {
		t.Fatalf("Expected UpdatedAt %v to be after CreatedAt %v", retrieved.UpdatedAt, createdAt)
	}
}

func TestGetRecentMessages(t *testing.T) {
	documentRepo, chunkRepo, chatRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { chatRepo.Close(); chunkRepo.Close(); documentRepo.Close(); backend.Close() }()

	ctx := context.Background()

	session := &core.ChatSession{Token: "tok-recent", OwnerId: "user-1"}
	added, err := chatRepo.AddSession(ctx, session)
	if err != nil {
		t.Fatalf("Failed to add session: %v", err)
	}

	for _, content := range []string{"Message 1", "Message 2", "Message 3", "Message 4", "Message 5"} {
		message := &core.ChatMessage{SessionId: added.Id, Role: core.RoleUser, Content: content}
		if _, err := chatRepo.AddMessages(ctx, message); err != nil {
			t.Fatalf("Failed to add message: %v", err)
		}
	}

	// Test: Get last 3 messages
	results, err := chatRepo.GetRecentMessages(ctx, added.Id, 3)
	if err != nil {
		t.Fatalf("Failed to get recent messages: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(results))
	}

	// Verify order: most recent first
	if results[0].Content != "Message 5" {
		t.Errorf("Expected 'Message 5' first, got '%s'", results[0].Content)
	}
	if results[1].Content != "Message 4" {
		t.Errorf("Expected 'Message 4' second, got '%s'", results[1].Content)
	}
	if results[2].Content != "Message 3" {
		t.Errorf("Expected 'Message 3' third, got '%s'", results[2].Content)
	}

	// Test: Limit higher than message count
	allResults, err := chatRepo.GetRecentMessages(ctx, added.Id, 50)
	if err != nil {
		t.Fatalf("Failed to get all messages: %v", err)
	}
	if len(allResults) != 5 {
		t.Fatalf("Expected 5 messages, got %d", len(allResults))
	}

	// Test: Non-positive limit is rejected
	_, err = chatRepo.GetRecentMessages(ctx, added.Id, 0)
	if !errors.Is(err, storage.ErrInvalidQuery) {
		t.Fatalf("Expected ErrInvalidQuery, got %v", err)
	}
}

func TestDeleteSession_CascadesMessages(t *testing.T) {
	documentRepo, chunkRepo, chatRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { chatRepo.Close(); chunkRepo.Close(); documentRepo.Close(); backend.Close() }()

	ctx := context.Background()

	session := &core.ChatSession{Token: "tok-gone", OwnerId: "user-1"}
	added, err := chatRepo.AddSession(ctx, session)
	if err != nil {
		t.Fatalf("Failed to add session: %v", err)
	}

	messages := []*core.ChatMessage{
		{SessionId: added.Id, Role: core.RoleUser, Content: "Hello"},
		{SessionId: added.Id, Role: core.RoleAssistant, Content: "Hi"},
	}
	stored, err := chatRepo.AddMessages(ctx, messages...)
	if err != nil {
		t.Fatalf("Failed to add messages: %v", err)
	}

	// Delete the session
	if err := chatRepo.DeleteSession(ctx, added.Id); err != nil {
		t.Fatalf("Failed to delete session: %v", err)
	}

	// Verify the session is gone
	_, err = chatRepo.GetSession(ctx, added.Id)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound for session, got %v", err)
	}

	// Verify the messages are gone
	remaining, err := chatRepo.GetMessagesBySession(ctx, added.Id)
	if err != nil {
		t.Fatalf("Failed to query messages: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("Expected 0 messages after cascade, got %d", len(remaining))
	}
	for _, message := range stored {
		_, err := getMessageByID(ctx, chatRepo, message.Id)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("Expected message %d to be deleted, got %v", message.Id, err)
		}
	}

	// The token is free for reuse
	reused := &core.ChatSession{Token: "tok-gone", OwnerId: "user-2"}
	if _, err := chatRepo.AddSession(ctx, reused); err != nil {
		t.Fatalf("Expected token to be reusable after delete, got %v", err)
	}
}

func TestDeleteSession_NotFound(t *testing.T) {
	documentRepo, chunkRepo, chatRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { chatRepo.Close(); chunkRepo.Close(); documentRepo.Close(); backend.Close() }()

	ctx := context.Background()

	err = chatRepo.DeleteSession(ctx, 77777)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

// getMessageByID reads a message record directly, bypassing the session index.
func getMessageByID(ctx context.Context, repo storage.ChatRepository, id core.ID) (*core.ChatMessage, error) {
	chatRepo, ok := repo.(*ChatRepository)
	if !ok {
		return nil, storage.ErrNotFound
	}

	var result *core.ChatMessage
	err := chatRepo.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readMessage(tx, makeMessageKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}
