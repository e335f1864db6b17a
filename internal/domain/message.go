package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MessageRole represents the sender of a message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Valid reports whether the role is one of the two accepted values.
func (r MessageRole) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is one turn of a conversation. Messages are immutable once
// written; Timestamp defines the conversation order.
type Message struct {
	ID        uuid.UUID   `json:"id"`
	SessionID uuid.UUID   `json:"session_id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// MessageRepository defines the interface for message storage
type MessageRepository interface {
	Create(ctx context.Context, message *Message) error
	// CreatePair stores a user message and its assistant reply
	// atomically: either both turns land or neither does.
	CreatePair(ctx context.Context, user, assistant *Message) error
	// ListBySession returns the session's messages in chronological order.
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]Message, error)
	CountAll(ctx context.Context) (int, error)
}
