package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/smartsupport/backend/internal/conversation"
	"github.com/smartsupport/backend/internal/domain"
	"github.com/smartsupport/backend/internal/llm"
)

// FallbackReply is persisted as the assistant message whenever the
// completion gateway fails or times out; the append still succeeds.
const FallbackReply = "Je rencontre une difficulté technique. Pouvez-vous reformuler ?"

// CompletionGateway is the contract the manager relies on. The concrete
// implementation lives in internal/llm.
type CompletionGateway interface {
	Generate(ctx context.Context, message string, history []conversation.Entry) (string, error)
	Classify(ctx context.Context, history []conversation.Entry) (*llm.ClassificationResult, error)
}

// SessionManager owns the session lifecycle: creation, message exchange
// with the completion gateway, termination and classification. It holds
// no state of its own; everything is read fresh from the repositories.
type SessionManager struct {
	sessionRepo        domain.SessionRepository
	messageRepo        domain.MessageRepository
	classificationRepo domain.ClassificationRepository
	gateway            CompletionGateway
}

// NewSessionManager creates a new session manager
func NewSessionManager(
	sessionRepo domain.SessionRepository,
	messageRepo domain.MessageRepository,
	classificationRepo domain.ClassificationRepository,
	gateway CompletionGateway,
) *SessionManager {
	return &SessionManager{
		sessionRepo:        sessionRepo,
		messageRepo:        messageRepo,
		classificationRepo: classificationRepo,
		gateway:            gateway,
	}
}

// CreateSession opens a new active session for userID.
func (m *SessionManager) CreateSession(ctx context.Context, userID uuid.UUID, title string) (*domain.Session, error) {
	if title == "" {
		title = domain.DefaultSessionTitle
	}
	session := &domain.Session{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		IsActive:  true,
		CreatedAt: time.Now(),
	}
	if err := m.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// ListSessions returns the user's sessions, newest first.
func (m *SessionManager) ListSessions(ctx context.Context, userID uuid.UUID) ([]domain.Session, error) {
	return m.sessionRepo.ListByUser(ctx, userID)
}

// SearchSessions returns the user's sessions containing a message that
// matches the query.
func (m *SessionManager) SearchSessions(ctx context.Context, userID uuid.UUID, query string) ([]domain.Session, error) {
	return m.sessionRepo.SearchByUser(ctx, userID, query)
}

// GetSessionWithMessages returns an owned session together with its
// chronological messages.
func (m *SessionManager) GetSessionWithMessages(ctx context.Context, sessionID, userID uuid.UUID) (*domain.SessionWithMessages, error) {
	session, err := m.sessionRepo.GetOwned(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}

	messages, err := m.messageRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	return &domain.SessionWithMessages{Session: *session, Messages: messages}, nil
}

// ListMessages returns the chronological messages of an owned session.
func (m *SessionManager) ListMessages(ctx context.Context, sessionID, userID uuid.UUID) ([]domain.Message, error) {
	if _, err := m.sessionRepo.GetOwned(ctx, sessionID, userID); err != nil {
		return nil, err
	}
	return m.messageRepo.ListBySession(ctx, sessionID)
}

// AppendMessage persists an incoming message on an active session. For
// user messages it synchronously obtains an assistant reply from the
// gateway and stores both turns atomically; gateway failures degrade to
// a fixed fallback reply instead of failing the append. The first user
// message also derives the session title. Returns the persisted
// incoming message.
func (m *SessionManager) AppendMessage(ctx context.Context, sessionID, userID uuid.UUID, role domain.MessageRole, content string) (*domain.Message, error) {
	session, err := m.sessionRepo.GetOwned(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if !session.IsActive {
		return nil, domain.ErrSessionInactive
	}
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, fmt.Errorf("invalid message role: %s", role)
	}

	message := &domain.Message{
		ID:        uuid.New(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}

	if role != domain.RoleUser {
		if err := m.messageRepo.Create(ctx, message); err != nil {
			return nil, fmt.Errorf("failed to create message: %w", err)
		}
		return message, nil
	}

	// History is read before the writes so the gateway sees only the
	// prior conversation, not the message being answered.
	prior, err := m.messageRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}
	history := conversation.HistoryFromMessages(prior)

	reply, err := m.gateway.Generate(ctx, content, history)
	if err != nil {
		log.Error().Err(err).
			Str("session_id", sessionID.String()).
			Msg("completion gateway failed, using fallback reply")
		reply = FallbackReply
	}

	assistant := &domain.Message{
		ID:        uuid.New(),
		SessionID: sessionID,
		Role:      domain.RoleAssistant,
		Content:   reply,
		Timestamp: time.Now(),
	}
	// One transaction for both turns: a conversation never holds a user
	// message without its reply.
	if err := m.messageRepo.CreatePair(ctx, message, assistant); err != nil {
		return nil, fmt.Errorf("failed to store message exchange: %w", err)
	}

	if session.Title == "" || session.Title == domain.DefaultSessionTitle {
		title := conversation.GenerateTitle(content)
		if err := m.sessionRepo.UpdateTitle(ctx, sessionID, title); err != nil {
			log.Error().Err(err).
				Str("session_id", sessionID.String()).
				Msg("failed to update session title")
		}
	}

	return message, nil
}

// EndSession terminates an active session owned by userID and triggers
// classification as a best-effort side effect. Classification failure
// never fails the termination.
func (m *SessionManager) EndSession(ctx context.Context, sessionID, userID uuid.UUID) error {
	ended, err := m.sessionRepo.End(ctx, sessionID, userID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	if !ended {
		return domain.ErrSessionNotFound
	}

	if _, err := m.ClassifySession(ctx, sessionID); err != nil {
		log.Error().Err(err).
			Str("session_id", sessionID.String()).
			Msg("classification after session end failed")
	}
	return nil
}

// ListClassifications returns every classification with its session's
// creation time, for the agent dashboard.
func (m *SessionManager) ListClassifications(ctx context.Context) ([]domain.ClassificationRecord, error) {
	return m.classificationRepo.ListAll(ctx)
}

// DeleteSession removes an owned session and everything attached to it.
func (m *SessionManager) DeleteSession(ctx context.Context, sessionID, userID uuid.UUID) error {
	if _, err := m.sessionRepo.GetOwned(ctx, sessionID, userID); err != nil {
		return err
	}
	return m.sessionRepo.Delete(ctx, sessionID)
}

// SessionMessageStats summarizes one conversation for its owner.
type SessionMessageStats struct {
	conversation.MessageStats
	AverageResponseMinutes float64 `json:"average_response_minutes"`
}

// MessageStats computes per-session message counters and the average
// assistant response latency.
func (m *SessionManager) MessageStats(ctx context.Context, sessionID, userID uuid.UUID) (*SessionMessageStats, error) {
	messages, err := m.ListMessages(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	return &SessionMessageStats{
		MessageStats:           conversation.ComputeMessageStats(messages),
		AverageResponseMinutes: conversation.AverageResponseTime(conversation.HistoryFromMessages(messages)),
	}, nil
}

// Transcript renders an owned session as plain "role: content" lines.
func (m *SessionManager) Transcript(ctx context.Context, sessionID, userID uuid.UUID) (string, error) {
	messages, err := m.ListMessages(ctx, sessionID, userID)
	if err != nil {
		return "", err
	}
	return conversation.RenderTranscript(conversation.HistoryFromMessages(messages)), nil
}
