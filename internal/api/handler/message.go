package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/smartsupport/backend/internal/api/middleware"
	"github.com/smartsupport/backend/internal/api/response"
	"github.com/smartsupport/backend/internal/domain"
	"github.com/smartsupport/backend/internal/service"
)

// MessageHandler handles message endpoints within a session
type MessageHandler struct {
	sessions *service.SessionManager
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(sessions *service.SessionManager) *MessageHandler {
	return &MessageHandler{sessions: sessions}
}

type messageRequest struct {
	Content string `json:"content" validate:"required,min=1,max=4000"`
	Role    string `json:"role" validate:"omitempty,oneof=user assistant"`
}

// Create appends a message to a session. User messages receive a
// synchronous assistant reply, so the response carries the refreshed
// message list.
func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, validationErrors(err))
		return
	}

	_, err = h.sessions.AppendMessage(r.Context(), sessionID, userID, domain.MessageRole(req.Role), req.Content)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			response.NotFound(w, "session not found")
		case errors.Is(err, domain.ErrSessionInactive):
			response.BadRequest(w, "session is no longer active")
		default:
			response.InternalError(w, "failed to send message")
		}
		return
	}

	messages, err := h.sessions.ListMessages(r.Context(), sessionID, userID)
	if err != nil {
		response.InternalError(w, "failed to fetch messages")
		return
	}

	response.Created(w, messages)
}

// List returns all messages of a session in chronological order
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
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

	messages, err := h.sessions.ListMessages(r.Context(), sessionID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			response.NotFound(w, "session not found")
			return
		}
		response.InternalError(w, "failed to fetch messages")
		return
	}

	response.OK(w, messages)
}
