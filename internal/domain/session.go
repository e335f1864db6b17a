package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultSessionTitle is used until the first user message provides a
// better one.
const DefaultSessionTitle = "Nouvelle conversation"

// Session represents a support conversation owned by a single user.
// EndedAt is set exactly when IsActive flips to false; an ended session
// never becomes active again.
type Session struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"user_id"`
	Title     string     `json:"title"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
}

// SessionCreate represents session creation data
type SessionCreate struct {
	Title string `json:"title" validate:"max=200"`
}

// SessionWithMessages bundles a session with its chronological messages
type SessionWithMessages struct {
	Session
	Messages []Message `json:"messages"`
}

// SessionRepository defines the interface for session storage.
// Delete removes the session's messages and classification along with
// the session itself; callers must not rely on database-side cascades.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error
	GetOwned(ctx context.Context, id, userID uuid.UUID) (*Session, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Session, error)
	SearchByUser(ctx context.Context, userID uuid.UUID, query string) ([]Session, error)
	UpdateTitle(ctx context.Context, id uuid.UUID, title string) error
	// End marks the session inactive and stamps ended_at. It reports
	// false when the session does not exist, is not owned by userID,
	// or has already ended.
	End(ctx context.Context, id, userID uuid.UUID, endedAt time.Time) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountActive(ctx context.Context) (int, error)
	CountAll(ctx context.Context) (int, error)
}
