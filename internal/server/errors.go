package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sha1n/docshelf/internal/doctree"
	"github.com/sha1n/docshelf/internal/library"
	"github.com/sha1n/docshelf/internal/search"
)

// Plain-text bodies for file errors.
const (
	msgInvalidPath = "Invalid path"
	msgNotFound    = "Not found"
	msgListFailed  = "Unable to read directory"
)

// statusFor maps an error to its HTTP status code.
// Directory read failures and anything unexpected are 500s.
func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case doctree.IsRejected(err):
		return http.StatusBadRequest
	case errors.Is(err, doctree.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, search.ErrEmptyQuery), errors.Is(err, search.ErrInvalidFormat):
		return http.StatusBadRequest
	case errors.Is(err, library.ErrSearchDisabled):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// errorBody is the JSON error payload.
type errorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("Failed to write response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string, err error) {
	body := errorBody{Error: message}
	if err != nil {
		body.Details = err.Error()
	}
	writeJSON(w, status, body)
}

func writeText(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(message))
}
