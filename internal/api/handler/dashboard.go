package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/smartsupport/backend/internal/api/response"
	"github.com/smartsupport/backend/internal/service"
)

// DashboardHandler exposes the agent-facing analytics endpoints
type DashboardHandler struct {
	sessions *service.SessionManager
	stats    *service.StatsService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(sessions *service.SessionManager, stats *service.StatsService) *DashboardHandler {
	return &DashboardHandler{sessions: sessions, stats: stats}
}

// ListClassifications returns every stored classification with its
// session creation time, newest first
func (h *DashboardHandler) ListClassifications(w http.ResponseWriter, r *http.Request) {
	records, err := h.sessions.ListClassifications(r.Context())
	if err != nil {
		response.InternalError(w, "failed to list classifications")
		return
	}

	response.OK(w, records)
}

// Classify triggers the classification pipeline for a session. On an
// already-classified session the existing record comes back unchanged;
// an unclassifiable conversation yields an empty result.
func (h *DashboardHandler) Classify(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		response.BadRequest(w, "invalid session ID")
		return
	}

	classification, err := h.sessions.ClassifySession(r.Context(), sessionID)
	if err != nil {
		response.InternalError(w, "failed to classify session")
		return
	}
	if classification != nil {
		h.stats.InvalidateCache(r.Context())
	}

	response.OK(w, classification)
}

// Stats returns the aggregated dashboard counters and frequency tables
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.DashboardStats(r.Context())
	if err != nil {
		response.InternalError(w, "failed to compute stats")
		return
	}

	response.OK(w, stats)
}
