package utilities

import (
	"encoding/json"
	"net/http"

	"github.com/inkwell-labs/blog-core/internal/apperr"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// StatusForError maps an error classification to an HTTP status code.
// Duplicate registrations answer 400, not 409; clients of the original
// API depend on that.
func StatusForError(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindConflict:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes the uniform failure envelope {success:false, error}.
// Internal errors are sanitized before leaving the process.
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, StatusForError(err), map[string]any{
		"success": false,
		"error":   apperr.ClientMessage(err),
	})
}

// WriteBareError writes the registration-style failure envelope {error},
// without the success key.
func WriteBareError(w http.ResponseWriter, err error) {
	WriteJSON(w, StatusForError(err), map[string]any{
		"error": apperr.ClientMessage(err),
	})
}
