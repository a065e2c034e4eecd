// Package render writes JSON responses.
package render

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
)

// MaxBodyBytes bounds request bodies read by [DecodeObject].
const MaxBodyBytes = 1 << 20

// ErrNotObject is returned by [DecodeObject] for a body that is missing,
// oversized or not a JSON object.
var ErrNotObject = errors.New("request body must be a JSON object")

// DecodeObject reads the body as a JSON object, keeping raw values so callers
// can tell absent keys from empty ones.
func DecodeObject(w http.ResponseWriter, r *http.Request) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes)).Decode(&fields); err != nil || fields == nil {
		return nil, ErrNotObject
	}
	return fields, nil
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Warn("write response", slog.Any("error", err))
	}
}

// Error writes {"error": msg} with the given status code.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"error": msg})
}

// NoContent writes 204 with an empty body.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// InternalError logs err and answers 500 with a generic message.
func InternalError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, msg string, err error) {
	logger.ErrorContext(r.Context(), msg,
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	Error(w, http.StatusInternalServerError, "internal server error")
}
