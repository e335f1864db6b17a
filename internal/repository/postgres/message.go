package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smartsupport/backend/internal/domain"
)

// MessageRepository implements domain.MessageRepository
type MessageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository creates a new message repository
func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

const insertMessageQuery = `
	INSERT INTO messages (id, session_id, role, content, timestamp)
	VALUES ($1, $2, $3, $4, $5)
`

// Create inserts a new message
func (r *MessageRepository) Create(ctx context.Context, message *domain.Message) error {
	_, err := r.pool.Exec(ctx, insertMessageQuery,
		message.ID,
		message.SessionID,
		message.Role,
		message.Content,
		message.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// CreatePair inserts a user message and its assistant reply in one
// transaction, so a failed reply insert never strands a lone user turn.
func (r *MessageRepository) CreatePair(ctx context.Context, user, assistant *domain.Message) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, m := range []*domain.Message{user, assistant} {
		if _, err := tx.Exec(ctx, insertMessageQuery,
			m.ID, m.SessionID, m.Role, m.Content, m.Timestamp,
		); err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit messages: %w", err)
	}
	return nil
}

// ListBySession retrieves a session's messages in chronological order
func (r *MessageRepository) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]domain.Message, error) {
	query := `
		SELECT id, session_id, role, content, timestamp
		FROM messages
		WHERE session_id = $1
		ORDER BY timestamp
	`
	rows, err := r.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var m domain.Message
		var roleStr string
		if err := rows.Scan(
			&m.ID,
			&m.SessionID,
			&roleStr,
			&m.Content,
			&m.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Role = domain.MessageRole(roleStr)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// CountAll counts every stored message
func (r *MessageRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM messages`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}
