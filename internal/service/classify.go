package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/smartsupport/backend/internal/conversation"
	"github.com/smartsupport/backend/internal/domain"
	"github.com/smartsupport/backend/internal/llm"
)

const (
	maxSummaryLen  = 500
	maxKeywords    = 5
	defaultSummary = "Résumé non disponible"
)

// ClassifySession runs the classification pipeline for a session. It
// returns (nil, nil) when there is nothing to classify or when the
// gateway misbehaves; a conversation that cannot be classified is never
// an error for the caller. If a classification already exists it is
// returned as-is.
func (m *SessionManager) ClassifySession(ctx context.Context, sessionID uuid.UUID) (*domain.Classification, error) {
	existing, err := m.classificationRepo.GetBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing classification: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	messages, err := m.messageRepo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch history: %w", err)
	}
	if len(messages) == 0 {
		return nil, nil
	}

	history := conversation.HistoryFromMessages(messages)
	result, err := m.gateway.Classify(ctx, history)
	if err != nil {
		log.Error().Err(err).
			Str("session_id", sessionID.String()).
			Msg("classification gateway call failed")
		return nil, nil
	}

	classification := &domain.Classification{
		ID:           uuid.New(),
		SessionID:    sessionID,
		Category:     coerceCategory(result.Category),
		Urgency:      coerceUrgency(result.Urgency),
		Summary:      sanitizeSummary(result.Summary),
		Keywords:     truncateKeywords(result.Keywords),
		ClassifiedAt: time.Now(),
	}
	if err := m.classificationRepo.Create(ctx, classification); err != nil {
		return nil, fmt.Errorf("failed to store classification: %w", err)
	}
	return classification, nil
}

func coerceCategory(category string) string {
	if domain.ValidCategory(category) {
		return category
	}
	return domain.DefaultCategory
}

func coerceUrgency(urgency string) string {
	if domain.ValidUrgency(urgency) {
		return urgency
	}
	return domain.DefaultUrgency
}

// sanitizeSummary collapses whitespace and caps the length; an empty
// summary gets a placeholder.
func sanitizeSummary(summary string) string {
	collapsed := strings.Join(strings.Fields(summary), " ")
	if collapsed == "" {
		return defaultSummary
	}
	if runes := []rune(collapsed); len(runes) > maxSummaryLen {
		return string(runes[:maxSummaryLen])
	}
	return collapsed
}

func truncateKeywords(keywords []string) []string {
	if keywords == nil {
		return []string{}
	}
	if len(keywords) > maxKeywords {
		return keywords[:maxKeywords]
	}
	return keywords
}

var _ CompletionGateway = (*llm.Client)(nil)
