package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/smartsupport/backend/internal/domain"
)

// ClassificationRepository implements domain.ClassificationRepository
type ClassificationRepository struct {
	pool *pgxpool.Pool
}

// NewClassificationRepository creates a new classification repository
func NewClassificationRepository(pool *pgxpool.Pool) *ClassificationRepository {
	return &ClassificationRepository{pool: pool}
}

// Create inserts a new classification. The unique constraint on
// session_id rejects a second classification for the same session.
func (r *ClassificationRepository) Create(ctx context.Context, c *domain.Classification) error {
	keywords, err := json.Marshal(c.Keywords)
	if err != nil {
		return fmt.Errorf("failed to marshal keywords: %w", err)
	}

	query := `
		INSERT INTO classifications (id, session_id, category, urgency, summary, keywords, classified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.pool.Exec(ctx, query,
		c.ID,
		c.SessionID,
		c.Category,
		c.Urgency,
		c.Summary,
		keywords,
		c.ClassifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create classification: %w", err)
	}
	return nil
}

// GetBySession returns the session's classification, or nil when none
// exists yet.
func (r *ClassificationRepository) GetBySession(ctx context.Context, sessionID uuid.UUID) (*domain.Classification, error) {
	query := `
		SELECT id, session_id, category, urgency, summary, keywords, classified_at
		FROM classifications
		WHERE session_id = $1
	`
	var c domain.Classification
	var keywords []byte
	err := r.pool.QueryRow(ctx, query, sessionID).Scan(
		&c.ID,
		&c.SessionID,
		&c.Category,
		&c.Urgency,
		&c.Summary,
		&keywords,
		&c.ClassifiedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get classification: %w", err)
	}

	if err := json.Unmarshal(keywords, &c.Keywords); err != nil {
		return nil, fmt.Errorf("failed to unmarshal keywords: %w", err)
	}
	return &c, nil
}

// ListAll returns every classification joined with its session's
// creation time, newest first.
func (r *ClassificationRepository) ListAll(ctx context.Context) ([]domain.ClassificationRecord, error) {
	query := `
		SELECT c.id, c.session_id, c.category, c.urgency, c.summary, c.keywords, c.classified_at, s.created_at
		FROM classifications c
		JOIN sessions s ON s.id = c.session_id
		ORDER BY c.classified_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list classifications: %w", err)
	}
	defer rows.Close()

	var records []domain.ClassificationRecord
	for rows.Next() {
		var rec domain.ClassificationRecord
		var keywords []byte
		if err := rows.Scan(
			&rec.ID,
			&rec.SessionID,
			&rec.Category,
			&rec.Urgency,
			&rec.Summary,
			&keywords,
			&rec.ClassifiedAt,
			&rec.SessionCreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan classification: %w", err)
		}
		if err := json.Unmarshal(keywords, &rec.Keywords); err != nil {
			return nil, fmt.Errorf("failed to unmarshal keywords: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
