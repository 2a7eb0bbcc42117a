package http

import (
	"net/http"

	"github.com/promptana/promptana/internal/domain/run"
	"github.com/promptana/promptana/internal/middleware"
)

// ExecuteRun handles POST /api/v1/prompts/{id}/runs
func (h *Handlers) ExecuteRun(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[run.ExecuteRequest](w, r)
	if !ok {
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	res, err := h.Runs.Execute(r.Context(), userID, urlParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// ListRuns handles GET /api/v1/prompts/{id}/runs
func (h *Handlers) ListRuns(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 0)

	pg, err := h.Runs.List(r.Context(), userID, urlParam(r, "id"), page, pageSize)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pg)
}

// GetRun handles GET /api/v1/runs/{id}
func (h *Handlers) GetRun(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	res, err := h.Runs.Get(r.Context(), userID, urlParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ImprovePrompt handles POST /api/v1/prompts/{id}/improve
func (h *Handlers) ImprovePrompt(w http.ResponseWriter, r *http.Request) {
	req, ok := readOptionalJSON[run.ImproveRequest](w, r)
	if !ok {
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	res, err := h.Improve.Improve(r.Context(), userID, urlParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ListModels handles GET /api/v1/models
func (h *Handlers) ListModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"models": h.Runs.AllowedModels()})
}
