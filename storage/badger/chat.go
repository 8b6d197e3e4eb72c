package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docquery/core"
	"github.com/poiesic/docquery/storage"
)

// ChatRepository implements storage.ChatRepository for BadgerDB.
type ChatRepository struct {
	backend    *Backend
	sessionSeq *badger.Sequence
	messageSeq *badger.Sequence
}

var _ storage.ChatRepository = (*ChatRepository)(nil)

// NewChatRepository creates a new ChatRepository.
func NewChatRepository(backend *Backend) (*ChatRepository, error) {
	sessionSeq, err := backend.GetSequence(sessionIDSeq)
	if err != nil {
		return nil, err
	}

	messageSeq, err := backend.GetSequence(messageIDSeq)
	if err != nil {
		sessionSeq.Release()
		return nil, err
	}

	return &ChatRepository{
		backend:    backend,
		sessionSeq: sessionSeq,
		messageSeq: messageSeq,
	}, nil
}

// Close releases the ID sequences.
func (r *ChatRepository) Close() error {
	if err := r.sessionSeq.Release(); err != nil {
		r.messageSeq.Release()
		return err
	}
	return r.messageSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *ChatRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddSession adds a chat session to storage.
func (r *ChatRepository) AddSession(ctx context.Context, session *core.ChatSession) (*core.ChatSession, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Reject token reuse
		tokenKey := makeSessionTokenKey(session.Token)
		if _, err := tx.Get(tokenKey); err == nil {
			return storage.ErrDuplicateKey
		} else if err != badger.ErrKeyNotFound {
			return err
		}

		if session.Id == 0 {
			nextID, err := nextSequenceID(r.sessionSeq)
			if err != nil {
				return err
			}
			session.Id = nextID
		}

		now := time.Now().UTC()
		session.CreatedAt = now
		session.UpdatedAt = now

		// Store primary record
		if err := tx.Set(makeSessionKey(session.Id), storage.MarshalChatSession(session)); err != nil {
			return err
		}

		// Update token index
		if err := tx.Set(tokenKey, storage.MarshalID(session.Id)); err != nil {
			return err
		}

		// Update owner index
		ownerKey := makeSessionOwnerKey(session.OwnerId, session.Id)
		if err := tx.Set(ownerKey, storage.MarshalID(session.Id)); err != nil {
			return err
		}

		return tx.Commit()
	}, true)

	return session, err
}

// GetSession retrieves a single session by ID.
func (r *ChatRepository) GetSession(ctx context.Context, id core.ID) (*core.ChatSession, error) {
	var result *core.ChatSession
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readSession(tx, makeSessionKey(id))
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

// GetSessionByToken retrieves a session by its public token.
func (r *ChatRepository) GetSessionByToken(ctx context.Context, token string) (*core.ChatSession, error) {
	var result *core.ChatSession
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeSessionTokenKey(token))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var sessionID core.ID
		if err := item.Value(func(val []byte) error {
			var err error
			sessionID, err = storage.UnmarshalID(val)
			return err
		}); err != nil {
			return err
		}

		result, err = readSession(tx, makeSessionKey(sessionID))
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

// GetSessionsByOwner retrieves all sessions of an owner.
func (r *ChatRepository) GetSessionsByOwner(ctx context.Context, ownerId string) ([]*core.ChatSession, error) {
	var results []*core.ChatSession
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialSessionOwnerKey(ownerId)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(startKey) || slices.Compare(key[:len(startKey)], startKey) != 0 {
				break
			}

			var sessionID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				sessionID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			session, err := readSession(tx, makeSessionKey(sessionID))
			if err != nil {
				return err
			}
			if session != nil {
				results = append(results, session)
			}
		}
		return nil
	}, false)

	return results, err
}

// DeleteSession removes a session and all its messages in one transaction.
func (r *ChatRepository) DeleteSession(ctx context.Context, id core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		session, err := readSession(tx, makeSessionKey(id))
		if err != nil {
			return err
		}
		if session == nil {
			return storage.ErrNotFound
		}

		// Cascade to messages
		startKey := makePartialMessageSessionKey(id)
		var indexKeys [][]byte
		var messageIDs []core.ID

		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(startKey) || slices.Compare(key[:len(startKey)], startKey) != 0 {
				break
			}

			var messageID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				messageID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				iter.Close()
				return err
			}

			indexKeys = append(indexKeys, iter.Item().KeyCopy(nil))
			messageIDs = append(messageIDs, messageID)
		}
		iter.Close()

		for _, key := range indexKeys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		for _, messageID := range messageIDs {
			if err := tx.Delete(makeMessageKey(messageID)); err != nil {
				return err
			}
		}

		// Delete indexes and primary record
		if err := tx.Delete(makeSessionTokenKey(session.Token)); err != nil {
			return err
		}
		if err := tx.Delete(makeSessionOwnerKey(session.OwnerId, session.Id)); err != nil {
			return err
		}
		if err := tx.Delete(makeSessionKey(id)); err != nil {
			return err
		}

		return tx.Commit()
	}, true)
}

// AddMessages appends one or more messages to their sessions.
func (r *ChatRepository) AddMessages(ctx context.Context, messages ...*core.ChatMessage) ([]*core.ChatMessage, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		touched := make(map[core.ID]bool)

		for _, message := range messages {
			if message.Id == 0 {
				nextID, err := nextSequenceID(r.messageSeq)
				if err != nil {
					return err
				}
				message.Id = nextID
			}

			message.CreatedAt = time.Now().UTC()

			// Store primary record
			if err := tx.Set(makeMessageKey(message.Id), storage.MarshalChatMessage(message)); err != nil {
				return err
			}

			// Update session index
			indexKey := makeMessageSessionKey(message.SessionId, message.Id)
			if err := tx.Set(indexKey, storage.MarshalID(message.Id)); err != nil {
				return err
			}

			touched[message.SessionId] = true
		}

		// Bump UpdatedAt on every touched session
		for sessionID := range touched {
			session, err := readSession(tx, makeSessionKey(sessionID))
			if err != nil {
				return err
			}
			if session == nil {
				return storage.ErrNotFound
			}
			session.UpdatedAt = time.Now().UTC()
			if err := tx.Set(makeSessionKey(sessionID), storage.MarshalChatSession(session)); err != nil {
				return err
			}
		}

		return tx.Commit()
	}, true)

	return messages, err
}

// GetMessagesBySession retrieves all messages of a session in chronological
// order.
func (r *ChatRepository) GetMessagesBySession(ctx context.Context, sessionId core.ID) ([]*core.ChatMessage, error) {
	var results []*core.ChatMessage
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		startKey := makePartialMessageSessionKey(sessionId)
		iter := tx.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()

		for iter.Seek(startKey); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(startKey) || slices.Compare(key[:len(startKey)], startKey) != 0 {
				break
			}

			var messageID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				messageID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			message, err := readMessage(tx, makeMessageKey(messageID))
			if err != nil {
				return err
			}
			if message != nil {
				results = append(results, message)
			}
		}
		return nil
	}, false)

	return results, err
}

// GetRecentMessages retrieves up to limit messages of a session, most recent
// first.
func (r *ChatRepository) GetRecentMessages(ctx context.Context, sessionId core.ID, limit int) ([]*core.ChatMessage, error) {
	if limit < 1 {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.ChatMessage
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Use reverse iterator to get most recent messages first
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		// Seek to the last possible key within this session's index
		prefix := makePartialMessageSessionKey(sessionId)
		startKey := makeMessageSessionKey(sessionId, core.ID(^uint64(0)))

		count := 0
		for iter.Seek(startKey); iter.Valid() && count < limit; iter.Next() {
			key := iter.Item().Key()
			if len(key) < len(prefix) || slices.Compare(key[:len(prefix)], prefix) != 0 {
				break
			}

			var messageID core.ID
			if err := iter.Item().Value(func(val []byte) error {
				var err error
				messageID, err = storage.UnmarshalID(val)
				return err
			}); err != nil {
				return err
			}

			message, err := readMessage(tx, makeMessageKey(messageID))
			if err != nil {
				return err
			}
			if message != nil {
				results = append(results, message)
				count++
			}
		}
		return nil
	}, false)

	return results, err
}

// Helper methods

// readSession reads a chat session from the transaction.
// Returns (nil, nil) when the key does not exist.
func readSession(tx *badger.Txn, key []byte) (*core.ChatSession, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var session *core.ChatSession
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		session, unmarshalErr = storage.UnmarshalChatSession(val)
		return unmarshalErr
	})
	return session, err
}

// readMessage reads a chat message from the transaction.
// Returns (nil, nil) when the key does not exist.
func readMessage(tx *badger.Txn, key []byte) (*core.ChatMessage, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var message *core.ChatMessage
	err = item.Value(func(val []byte) error {
		var unmarshalErr error
		message, unmarshalErr = storage.UnmarshalChatMessage(val)
		return unmarshalErr
	})
	return message, err
}
