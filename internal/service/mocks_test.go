package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/smartsupport/backend/internal/conversation"
	"github.com/smartsupport/backend/internal/domain"
	"github.com/smartsupport/backend/internal/llm"
)

// MockSessionRepository mocks the SessionRepository interface
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetOwned(ctx context.Context, id, userID uuid.UUID) (*domain.Session, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockSessionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Session, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Session), args.Error(1)
}

func (m *MockSessionRepository) SearchByUser(ctx context.Context, userID uuid.UUID, query string) ([]domain.Session, error) {
	args := m.Called(ctx, userID, query)
	return args.Get(0).([]domain.Session), args.Error(1)
}

func (m *MockSessionRepository) UpdateTitle(ctx context.Context, id uuid.UUID, title string) error {
	args := m.Called(ctx, id, title)
	return args.Error(0)
}

func (m *MockSessionRepository) End(ctx context.Context, id, userID uuid.UUID, endedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, userID, endedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSessionRepository) CountActive(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockSessionRepository) CountAll(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockMessageRepository mocks the MessageRepository interface
type MockMessageRepository struct {
	mock.Mock
}

func (m *MockMessageRepository) Create(ctx context.Context, message *domain.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockMessageRepository) CreatePair(ctx context.Context, user, assistant *domain.Message) error {
	args := m.Called(ctx, user, assistant)
	return args.Error(0)
}

func (m *MockMessageRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.Message, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).([]domain.Message), args.Error(1)
}

func (m *MockMessageRepository) CountAll(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// MockClassificationRepository mocks the ClassificationRepository interface
type MockClassificationRepository struct {
	mock.Mock
}

func (m *MockClassificationRepository) Create(ctx context.Context, classification *domain.Classification) error {
	args := m.Called(ctx, classification)
	return args.Error(0)
}

func (m *MockClassificationRepository) GetBySession(ctx context.Context, sessionID uuid.UUID) (*domain.Classification, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Classification), args.Error(1)
}

func (m *MockClassificationRepository) ListAll(ctx context.Context) ([]domain.ClassificationRecord, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.ClassificationRecord), args.Error(1)
}

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// MockGateway mocks the CompletionGateway interface
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Generate(ctx context.Context, message string, history []conversation.Entry) (string, error) {
	args := m.Called(ctx, message, history)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) Classify(ctx context.Context, history []conversation.Entry) (*llm.ClassificationResult, error) {
	args := m.Called(ctx, history)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*llm.ClassificationResult), args.Error(1)
}
