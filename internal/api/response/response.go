// Package response writes API responses in the service's wire format:
// success bodies are the payload itself, failures carry a single
// "detail" field holding either a message or a field->message map.
package response

import (
	"encoding/json"
	"net/http"
)

type errorBody struct {
	Detail any `json:"detail"`
}

// JSON writes payload as the response body with the given status
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// OK sends a 200 OK response with payload
func OK(w http.ResponseWriter, payload any) {
	JSON(w, http.StatusOK, payload)
}

// Created sends a 201 Created response with payload
func Created(w http.ResponseWriter, payload any) {
	JSON(w, http.StatusCreated, payload)
}

// NoContent sends an empty 204 No Content response
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error sends {"detail": detail} with the given status
func Error(w http.ResponseWriter, status int, detail any) {
	JSON(w, status, errorBody{Detail: detail})
}

// BadRequest sends a 400 Bad Request error
func BadRequest(w http.ResponseWriter, detail any) {
	Error(w, http.StatusBadRequest, detail)
}

// Unauthorized sends a 401 Unauthorized error
func Unauthorized(w http.ResponseWriter, detail any) {
	Error(w, http.StatusUnauthorized, detail)
}

// Forbidden sends a 403 Forbidden error
func Forbidden(w http.ResponseWriter, detail any) {
	Error(w, http.StatusForbidden, detail)
}

// NotFound sends a 404 Not Found error
func NotFound(w http.ResponseWriter, detail any) {
	Error(w, http.StatusNotFound, detail)
}

// InternalError sends a 500 Internal Server Error
func InternalError(w http.ResponseWriter, detail any) {
	Error(w, http.StatusInternalServerError, detail)
}
