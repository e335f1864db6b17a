package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Default values applied when the gateway returns a category or urgency
// outside the closed vocabularies.
const (
	DefaultCategory = "Support général"
	DefaultUrgency  = "Moyen"
)

// Categories is the closed vocabulary for classification categories.
var Categories = []string{
	"Problème technique",
	"Demande d'information",
	"Facturation",
	"Gestion de compte",
	"Livraison",
	"Réclamation",
	"Autre",
	DefaultCategory,
}

// Urgencies is the closed vocabulary for classification urgencies.
var Urgencies = []string{"Faible", DefaultUrgency, "Urgent"}

// ValidCategory reports whether s belongs to the category vocabulary.
func ValidCategory(s string) bool {
	for _, c := range Categories {
		if c == s {
			return true
		}
	}
	return false
}

// ValidUrgency reports whether s belongs to the urgency vocabulary.
func ValidUrgency(s string) bool {
	for _, u := range Urgencies {
		if u == s {
			return true
		}
	}
	return false
}

// Classification is the analytics record attached to an ended session.
// At most one exists per session; it is immutable once created.
type Classification struct {
	ID           uuid.UUID `json:"id"`
	SessionID    uuid.UUID `json:"session_id"`
	Category     string    `json:"category"`
	Urgency      string    `json:"urgency"`
	Summary      string    `json:"summary"`
	Keywords     []string  `json:"keywords"`
	ClassifiedAt time.Time `json:"classified_at"`
}

// ClassificationRecord is a classification joined with its session's
// creation time, as consumed by the dashboard.
type ClassificationRecord struct {
	Classification
	SessionCreatedAt time.Time `json:"created_at"`
}

// ClassificationRepository defines the interface for classification storage
type ClassificationRepository interface {
	Create(ctx context.Context, classification *Classification) error
	GetBySession(ctx context.Context, sessionID uuid.UUID) (*Classification, error)
	ListAll(ctx context.Context) ([]ClassificationRecord, error)
}
