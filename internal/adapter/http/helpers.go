// Package http implements the REST API surface.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/promptana/promptana/internal/domain"
	"github.com/promptana/promptana/internal/logger"
)

const maxRequestBodySize = 1 << 20 // 1 MB

// errorEnvelope is the single error response shape. Services raise
// *domain.Error; anything else collapses to 500 INTERNAL_ERROR here.
type errorEnvelope struct {
	Error *domain.Error `json:"error"`
}

// readJSON decodes a JSON request body with a size limit.
func readJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		if err.Error() == "http: request body too large" {
			writeServiceError(w, r, &domain.Error{
				Status:  http.StatusRequestEntityTooLarge,
				Code:    domain.CodeBadRequest,
				Message: "request body too large",
			})
		} else {
			writeServiceError(w, r, domain.BadRequest("invalid request body"))
		}
		return v, false
	}
	return v, true
}

// readOptionalJSON is readJSON for endpoints where an empty body is a valid
// request, like restore.
func readOptionalJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil && !errors.Is(err, io.EOF) {
		writeServiceError(w, r, domain.BadRequest("invalid request body"))
		return v, false
	}
	return v, true
}

// urlParam is a short alias for chi.URLParam.
func urlParam(r *http.Request, name string) string {
	return chi.URLParam(r, name)
}

// queryInt parses an integer query parameter, falling back on absence or
// garbage. Range clamping happens in the service layer.
func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("write json response", "error", err)
	}
}

// writeServiceError translates any error into the response envelope.
// Unknown errors are logged with their cause and returned as a generic 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		logger.FromContext(r.Context()).Error("request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		derr = domain.Internal()
	}
	writeJSON(w, derr.Status, errorEnvelope{Error: derr})
}
