package chat

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/poiesic/docquery/answer"
	"github.com/poiesic/docquery/core"
	"github.com/poiesic/docquery/storage"
)

// titleLength is the rune budget for session titles derived from the
// first question.
const titleLength = 60

// Response carries one answered turn and the session it belongs to.
// SessionToken identifies the session for follow-up questions; it is
// freshly minted when the ask carried no token.
type Response struct {
	SessionToken string
	Answer       *answer.Answer
}

// Manager resolves chat sessions and delegates questions to the
// synthesizer.
type Manager struct {
	chatRepository storage.ChatRepository
	synthesizer    *answer.Synthesizer
	logger         *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger
		return nil
	}
}

// NewManager creates a new chat manager.
func NewManager(
	chatRepository storage.ChatRepository,
	synthesizer *answer.Synthesizer,
	opts ...Option,
) (*Manager, error) {
	if chatRepository == nil {
		return nil, ErrChatRepositoryRequired
	}
	if synthesizer == nil {
		return nil, ErrSynthesizerRequired
	}

	m := &Manager{
		chatRepository: chatRepository,
		synthesizer:    synthesizer,
		logger:         slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Ask answers a question within a session. An empty sessionToken starts
// a new session titled after the question; a non-empty token must
// resolve to a session owned by ownerId.
func (m *Manager) Ask(ctx context.Context, ownerId, sessionToken, query string) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	session, err := m.resolveSession(ctx, ownerId, sessionToken, query)
	if err != nil {
		return nil, err
	}

	reply, err := m.synthesizer.Answer(ctx, ownerId, session.Id, query)
	if err != nil {
		return nil, err
	}

	return &Response{SessionToken: session.Token, Answer: reply}, nil
}

// History returns the full transcript of a session, oldest first.
func (m *Manager) History(ctx context.Context, ownerId, sessionToken string) ([]*core.ChatMessage, error) {
	session, err := m.lookupSession(ctx, ownerId, sessionToken)
	if err != nil {
		return nil, err
	}
	return m.chatRepository.GetMessagesBySession(ctx, session.Id)
}

// Recent returns up to limit messages of a session, most recent first.
func (m *Manager) Recent(ctx context.Context, ownerId, sessionToken string, limit int) ([]*core.ChatMessage, error) {
	session, err := m.lookupSession(ctx, ownerId, sessionToken)
	if err != nil {
		return nil, err
	}
	return m.chatRepository.GetRecentMessages(ctx, session.Id, limit)
}

// Sessions lists an owner's sessions.
func (m *Manager) Sessions(ctx context.Context, ownerId string) ([]*core.ChatSession, error) {
	return m.chatRepository.GetSessionsByOwner(ctx, ownerId)
}

// resolveSession looks up the token or lazily creates a session when the
// token is empty.
func (m *Manager) resolveSession(ctx context.Context, ownerId, sessionToken, query string) (*core.ChatSession, error) {
	if sessionToken == "" {
		session, err := m.chatRepository.AddSession(ctx, &core.ChatSession{
			Token:   uuid.NewString(),
			OwnerId: ownerId,
			Title:   sessionTitle(query),
		})
		if err != nil {
			m.logger.Error("error creating chat session", "ownerId", ownerId, "err", err)
			return nil, err
		}
		return session, nil
	}

	return m.lookupSession(ctx, ownerId, sessionToken)
}

// lookupSession resolves a token for one owner. Tokens that are unknown
// or owned by someone else both come back as ErrSessionNotFound.
func (m *Manager) lookupSession(ctx context.Context, ownerId, sessionToken string) (*core.ChatSession, error) {
	session, err := m.chatRepository.GetSessionByToken(ctx, sessionToken)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.OwnerId != ownerId {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// sessionTitle derives a session title from the first question.
func sessionTitle(query string) string {
	runes := []rune(query)
	if len(runes) <= titleLength {
		return query
	}
	return strings.TrimSpace(string(runes[:titleLength])) + "..."
}
