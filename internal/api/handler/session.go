package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/smartsupport/backend/internal/api/middleware"
	"github.com/smartsupport/backend/internal/api/response"
	"github.com/smartsupport/backend/internal/domain"
	"github.com/smartsupport/backend/internal/service"
)

// SessionHandler handles session lifecycle endpoints
type SessionHandler struct {
	sessions *service.SessionManager
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *service.SessionManager) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Create opens a new support session
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	// Body is optional: an empty body opens an untitled session.
	var req domain.SessionCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, validationErrors(err))
		return
	}

	session, err := h.sessions.CreateSession(r.Context(), userID, req.Title)
	if err != nil {
		response.InternalError(w, "failed to create session")
		return
	}

	response.Created(w, session)
}

// List returns all sessions of the authenticated user. An optional
// ?q= parameter filters by title or message content.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	var (
		sessions []domain.Session
		err      error
	)
	if query := r.URL.Query().Get("q"); query != "" {
		sessions, err = h.sessions.SearchSessions(r.Context(), userID, query)
	} else {
		sessions, err = h.sessions.ListSessions(r.Context(), userID)
	}
	if err != nil {
		response.InternalError(w, "failed to list sessions")
		return
	}

	response.OK(w, sessions)
}

// Get returns one session with its full message history
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		response.BadRequest(w, "invalid session ID")
		return
	}

	session, err := h.sessions.GetSessionWithMessages(r.Context(), sessionID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			response.NotFound(w, "session not found")
			return
		}
		response.InternalError(w, "failed to fetch session")
		return
	}

	response.OK(w, session)
}

// End terminates a session and triggers its classification
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		response.BadRequest(w, "invalid session ID")
		return
	}

	if err := h.sessions.EndSession(r.Context(), sessionID, userID); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			response.NotFound(w, "session not found or already ended")
			return
		}
		response.InternalError(w, "failed to end session")
		return
	}

	response.OK(w, map[string]string{"message": "session ended"})
}

// Stats returns message counters and response latency for one session
func (h *SessionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		response.BadRequest(w, "invalid session ID")
		return
	}

	stats, err := h.sessions.MessageStats(r.Context(), sessionID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			response.NotFound(w, "session not found")
			return
		}
		response.InternalError(w, "failed to compute session stats")
		return
	}

	response.OK(w, stats)
}

// Transcript returns the conversation as plain text
func (h *SessionHandler) Transcript(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		response.BadRequest(w, "invalid session ID")
		return
	}

	transcript, err := h.sessions.Transcript(r.Context(), sessionID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			response.NotFound(w, "session not found")
			return
		}
		response.InternalError(w, "failed to render transcript")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(transcript))
}

// Delete removes a session and everything attached to it
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		response.BadRequest(w, "invalid session ID")
		return
	}

	if err := h.sessions.DeleteSession(r.Context(), sessionID, userID); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			response.NotFound(w, "session not found")
			return
		}
		response.InternalError(w, "failed to delete session")
		return
	}

	response.NoContent(w)
}
