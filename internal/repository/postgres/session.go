package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smartsupport/backend/internal/domain"
)

// SessionRepository implements domain.SessionRepository
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

const sessionColumns = `id, user_id, title, is_active, created_at, ended_at`

func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, title, is_active, created_at, ended_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.pool.Exec(ctx, query,
		session.ID,
		session.UserID,
		session.Title,
		session.IsActive,
		session.CreatedAt,
		session.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetOwned(ctx context.Context, id, userID uuid.UUID) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1 AND user_id = $2`
	return r.scanSession(r.pool.QueryRow(ctx, query, id, userID))
}

func (r *SessionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	return r.collectSessions(rows)
}

func (r *SessionRepository) SearchByUser(ctx context.Context, userID uuid.UUID, search string) ([]domain.Session, error) {
	query := `
		SELECT DISTINCT s.id, s.user_id, s.title, s.is_active, s.created_at, s.ended_at
		FROM sessions s
		LEFT JOIN messages m ON m.session_id = s.id
		WHERE s.user_id = $1
		  AND (s.title ILIKE '%' || $2 || '%' OR m.content ILIKE '%' || $2 || '%')
		ORDER BY s.created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, userID, search)
	if err != nil {
		return nil, fmt.Errorf("failed to search sessions: %w", err)
	}
	defer rows.Close()

	return r.collectSessions(rows)
}

func (r *SessionRepository) UpdateTitle(ctx context.Context, id uuid.UUID, title string) error {
	query := `UPDATE sessions SET title = $1 WHERE id = $2`
	_, err := r.pool.Exec(ctx, query, title, id)
	if err != nil {
		return fmt.Errorf("failed to update session title: %w", err)
	}
	return nil
}

// End flips is_active and stamps ended_at in one statement, so a second
// call against the same session changes no rows.
func (r *SessionRepository) End(ctx context.Context, id, userID uuid.UUID, endedAt time.Time) (bool, error) {
	query := `
		UPDATE sessions
		SET is_active = FALSE, ended_at = $1
		WHERE id = $2 AND user_id = $3 AND is_active
	`
	tag, err := r.pool.Exec(ctx, query, endedAt, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to end session: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete removes the session together with its messages and
// classification inside one transaction.
func (r *SessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM classifications WHERE session_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete classification: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM messages WHERE session_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

func (r *SessionRepository) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sessions WHERE is_active`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active sessions: %w", err)
	}
	return count, nil
}

func (r *SessionRepository) CountAll(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

func (r *SessionRepository) scanSession(row pgx.Row) (*domain.Session, error) {
	var s domain.Session
	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.Title,
		&s.IsActive,
		&s.CreatedAt,
		&s.EndedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

func (r *SessionRepository) collectSessions(rows pgx.Rows) ([]domain.Session, error) {
	var sessions []domain.Session
	for rows.Next() {
		var s domain.Session
		if err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.Title,
			&s.IsActive,
			&s.CreatedAt,
			&s.EndedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
