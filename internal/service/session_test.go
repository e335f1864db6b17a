package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/smartsupport/backend/internal/domain"
	"github.com/smartsupport/backend/internal/llm"
)

func newTestManager() (*SessionManager, *MockSessionRepository, *MockMessageRepository, *MockClassificationRepository, *MockGateway) {
	sessions := new(MockSessionRepository)
	messages := new(MockMessageRepository)
	classifications := new(MockClassificationRepository)
	gateway := new(MockGateway)
	return NewSessionManager(sessions, messages, classifications, gateway), sessions, messages, classifications, gateway
}

func TestCreateSession_DefaultTitle(t *testing.T) {
	manager, sessions, _, _, _ := newTestManager()
	userID := uuid.New()

	sessions.On("Create", mock.Anything, mock.MatchedBy(func(s *domain.Session) bool {
		return s.Title == domain.DefaultSessionTitle && s.IsActive && s.UserID == userID
	})).Return(nil)

	session, err := manager.CreateSession(context.Background(), userID, "")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSessionTitle, session.Title)
	assert.True(t, session.IsActive)
	sessions.AssertExpectations(t)
}

func TestCreateSession_ExplicitTitle(t *testing.T) {
	manager, sessions, _, _, _ := newTestManager()

	sessions.On("Create", mock.Anything, mock.Anything).Return(nil)

	session, err := manager.CreateSession(context.Background(), uuid.New(), "Panne imprimante")
	require.NoError(t, err)
	assert.Equal(t, "Panne imprimante", session.Title)
}

func TestAppendMessage_InactiveSession(t *testing.T) {
	manager, sessions, messages, _, gateway := newTestManager()
	sessionID := uuid.New()
	userID := uuid.New()

	sessions.On("GetOwned", mock.Anything, sessionID, userID).Return(&domain.Session{
		ID:       sessionID,
		UserID:   userID,
		IsActive: false,
	}, nil)

	_, err := manager.AppendMessage(context.Background(), sessionID, userID, domain.RoleUser, "Bonjour")
	assert.ErrorIs(t, err, domain.ErrSessionInactive)
	messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	gateway.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestAppendMessage_SessionNotFound(t *testing.T) {
	manager, sessions, _, _, _ := newTestManager()
	sessionID := uuid.New()
	userID := uuid.New()

	sessions.On("GetOwned", mock.Anything, sessionID, userID).Return(nil, domain.ErrSessionNotFound)

	_, err := manager.AppendMessage(context.Background(), sessionID, userID, domain.RoleUser, "Bonjour")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestAppendMessage_UserMessageGetsReply(t *testing.T) {
	manager, sessions, messages, _, gateway := newTestManager()
	sessionID := uuid.New()
	userID := uuid.New()

	sessions.On("GetOwned", mock.Anything, sessionID, userID).Return(&domain.Session{
		ID:       sessionID,
		UserID:   userID,
		Title:    domain.DefaultSessionTitle,
		IsActive: true,
	}, nil)
	messages.On("ListBySession", mock.Anything, sessionID).Return([]domain.Message{}, nil)
	gateway.On("Generate", mock.Anything, "Mon imprimante ne répond plus", mock.Anything).
		Return("Avez-vous vérifié le câble USB ?", nil)
	messages.On("CreatePair", mock.Anything,
		mock.MatchedBy(func(m *domain.Message) bool {
			return m.Role == domain.RoleUser && m.Content == "Mon imprimante ne répond plus"
		}),
		mock.MatchedBy(func(m *domain.Message) bool {
			return m.Role == domain.RoleAssistant && m.Content == "Avez-vous vérifié le câble USB ?"
		}),
	).Return(nil).Once()
	sessions.On("UpdateTitle", mock.Anything, sessionID, "Mon imprimante ne répond plus").Return(nil)

	message, err := manager.AppendMessage(context.Background(), sessionID, userID, domain.RoleUser, "Mon imprimante ne répond plus")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, message.Role)
	sessions.AssertExpectations(t)
	messages.AssertExpectations(t)
	gateway.AssertExpectations(t)
	messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAppendMessage_GatewayFailureFallsBack(t *testing.T) {
	manager, sessions, messages, _, gateway := newTestManager()
	sessionID := uuid.New()
	userID := uuid.New()

	sessions.On("GetOwned", mock.Anything, sessionID, userID).Return(&domain.Session{
		ID:       sessionID,
		UserID:   userID,
		Title:    "Panne réseau",
		IsActive: true,
	}, nil)
	messages.On("ListBySession", mock.Anything, sessionID).Return([]domain.Message{}, nil)
	gateway.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("gateway unreachable"))

	var assistantContent string
	messages.On("CreatePair", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			assistantContent = args.Get(2).(*domain.Message).Content
		}).Return(nil).Once()

	_, err := manager.AppendMessage(context.Background(), sessionID, userID, domain.RoleUser, "Toujours rien")
	require.NoError(t, err)
	assert.Equal(t, FallbackReply, assistantContent)
	sessions.AssertNotCalled(t, "UpdateTitle", mock.Anything, mock.Anything, mock.Anything)
}

func TestAppendMessage_FailedExchangeLeavesNoPartialWrite(t *testing.T) {
	manager, sessions, messages, _, gateway := newTestManager()
	sessionID := uuid.New()
	userID := uuid.New()

	sessions.On("GetOwned", mock.Anything, sessionID, userID).Return(&domain.Session{
		ID:       sessionID,
		UserID:   userID,
		Title:    domain.DefaultSessionTitle,
		IsActive: true,
	}, nil)
	messages.On("ListBySession", mock.Anything, sessionID).Return([]domain.Message{}, nil)
	gateway.On("Generate", mock.Anything, mock.Anything, mock.Anything).
		Return("Essayez de redémarrer la box.", nil)
	messages.On("CreatePair", mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("connection reset")).Once()

	_, err := manager.AppendMessage(context.Background(), sessionID, userID, domain.RoleUser, "Plus de connexion")
	assert.Error(t, err)
	// Both turns go through the single pair write, so a failure cannot
	// strand a user message without its reply.
	messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	sessions.AssertNotCalled(t, "UpdateTitle", mock.Anything, mock.Anything, mock.Anything)
}

func TestAppendMessage_AssistantRoleSkipsGateway(t *testing.T) {
	manager, sessions, messages, _, gateway := newTestManager()
	sessionID := uuid.New()
	userID := uuid.New()

	sessions.On("GetOwned", mock.Anything, sessionID, userID).Return(&domain.Session{
		ID:       sessionID,
		UserID:   userID,
		IsActive: true,
	}, nil)
	messages.On("Create", mock.Anything, mock.Anything).Return(nil).Once()

	message, err := manager.AppendMessage(context.Background(), sessionID, userID, domain.RoleAssistant, "Note interne")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAssistant, message.Role)
	gateway.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
	messages.AssertNumberOfCalls(t, "Create", 1)
	messages.AssertNotCalled(t, "CreatePair", mock.Anything, mock.Anything, mock.Anything)
}

func TestAppendMessage_InvalidRole(t *testing.T) {
	manager, sessions, _, _, _ := newTestManager()
	sessionID := uuid.New()
	userID := uuid.New()

	sessions.On("GetOwned", mock.Anything, sessionID, userID).Return(&domain.Session{
		ID:       sessionID,
		UserID:   userID,
		IsActive: true,
	}, nil)

	_, err := manager.AppendMessage(context.Background(), sessionID, userID, domain.MessageRole("system"), "x")
	assert.Error(t, err)
}

func TestEndSession_AlreadyEnded(t *testing.T) {
	manager, sessions, _, classifications, gateway := newTestManager()
	sessionID := uuid.New()
	userID := uuid.New()

	sessions.On("End", mock.Anything, sessionID, userID, mock.Anything).Return(false, nil)

	err := manager.EndSession(context.Background(), sessionID, userID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	classifications.AssertNotCalled(t, "GetBySession", mock.Anything, mock.Anything)
	gateway.AssertNotCalled(t, "Classify", mock.Anything, mock.Anything)
}

func TestEndSession_TriggersClassification(t *testing.T) {
	manager, sessions, messages, classifications, gateway := newTestManager()
	sessionID := uuid.New()
	userID := uuid.New()

	sessions.On("End", mock.Anything, sessionID, userID, mock.Anything).Return(true, nil)
	classifications.On("GetBySession", mock.Anything, sessionID).Return(nil, nil)
	messages.On("ListBySession", mock.Anything, sessionID).Return([]domain.Message{
		{Role: domain.RoleUser, Content: "Je n'arrive plus à me connecter"},
		{Role: domain.RoleAssistant, Content: "Avez-vous réinitialisé votre mot de passe ?"},
	}, nil)
	gateway.On("Classify", mock.Anything, mock.Anything).Return(&llm.ClassificationResult{
		Category: "Problème technique",
		Urgency:  "Urgent",
		Summary:  "Client bloqué à la connexion",
		Keywords: []string{"connexion", "mot de passe"},
	}, nil)
	classifications.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Classification) bool {
		return c.Category == "Problème technique" && c.Urgency == "Urgent"
	})).Return(nil)

	err := manager.EndSession(context.Background(), sessionID, userID)
	require.NoError(t, err)
	classifications.AssertExpectations(t)
	gateway.AssertExpectations(t)
}

func TestEndSession_ClassificationFailureIsSwallowed(t *testing.T) {
	manager, sessions, _, classifications, _ := newTestManager()
	sessionID := uuid.New()
	userID := uuid.New()

	sessions.On("End", mock.Anything, sessionID, userID, mock.Anything).Return(true, nil)
	classifications.On("GetBySession", mock.Anything, sessionID).
		Return(nil, errors.New("database down"))

	err := manager.EndSession(context.Background(), sessionID, userID)
	assert.NoError(t, err)
}

func TestMessageStats(t *testing.T) {
	manager, sessions, messages, _, _ := newTestManager()
	sessionID := uuid.New()
	userID := uuid.New()

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	sessions.On("GetOwned", mock.Anything, sessionID, userID).Return(&domain.Session{
		ID:     sessionID,
		UserID: userID,
	}, nil)
	messages.On("ListBySession", mock.Anything, sessionID).Return([]domain.Message{
		{Role: domain.RoleUser, Content: "Bonjour", Timestamp: base},
		{Role: domain.RoleAssistant, Content: "Bonjour, comment puis-je aider ?", Timestamp: base.Add(3 * time.Minute)},
	}, nil)

	stats, err := manager.MessageStats(context.Background(), sessionID, userID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.UserMessages)
	assert.Equal(t, 1, stats.AssistantMessages)
	assert.Equal(t, 3.0, stats.AverageResponseMinutes)
}

func TestTranscript(t *testing.T) {
	manager, sessions, messages, _, _ := newTestManager()
	sessionID := uuid.New()
	userID := uuid.New()

	sessions.On("GetOwned", mock.Anything, sessionID, userID).Return(&domain.Session{
		ID:     sessionID,
		UserID: userID,
	}, nil)
	messages.On("ListBySession", mock.Anything, sessionID).Return([]domain.Message{
		{Role: domain.RoleUser, Content: "Bonjour"},
		{Role: domain.RoleAssistant, Content: "Comment puis-je aider ?"},
	}, nil)

	transcript, err := manager.Transcript(context.Background(), sessionID, userID)
	require.NoError(t, err)
	assert.Equal(t, "user: Bonjour\nassistant: Comment puis-je aider ?", transcript)
}

func TestDeleteSession_ChecksOwnership(t *testing.T) {
	manager, sessions, _, _, _ := newTestManager()
	sessionID := uuid.New()
	userID := uuid.New()

	sessions.On("GetOwned", mock.Anything, sessionID, userID).Return(nil, domain.ErrSessionNotFound)

	err := manager.DeleteSession(context.Background(), sessionID, userID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	sessions.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}
