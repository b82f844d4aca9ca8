// Package response writes the API's JSON bodies. Success responses carry the
// resource representation directly; errors carry a message, optional field
// details, and (outside production) an internal error string.
package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	Error   string `json:"error,omitempty"` // development-mode internal detail
}

// JSON writes a JSON response with the given status code and payload.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// NoContent writes a 204 No Content response.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Err writes an error JSON response.
func Err(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Message: message})
}

// ErrWithDetails writes an error JSON response with per-field details.
func ErrWithDetails(w http.ResponseWriter, status int, message string, details any) {
	JSON(w, status, ErrorBody{Message: message, Details: details})
}

// ErrInternal writes a 500 response. The underlying error is included in the
// body only when dev is set; it is never exposed in production.
func ErrInternal(w http.ResponseWriter, message string, err error, dev bool) {
	body := ErrorBody{Message: message}
	if dev && err != nil {
		body.Error = err.Error()
	}
	JSON(w, http.StatusInternalServerError, body)
}
