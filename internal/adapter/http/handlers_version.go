package http

import (
	"net/http"

	"github.com/promptana/promptana/internal/domain/prompt"
	"github.com/promptana/promptana/internal/middleware"
)

// ListVersions handles GET /api/v1/prompts/{id}/versions
func (h *Handlers) ListVersions(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 0)

	pg, err := h.Versions.List(r.Context(), userID, urlParam(r, "id"), page, pageSize)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pg)
}

// GetVersion handles GET /api/v1/prompts/{id}/versions/{versionId}
func (h *Handlers) GetVersion(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	v, err := h.Versions.Get(r.Context(), userID, urlParam(r, "id"), urlParam(r, "versionId"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// CreateVersion handles POST /api/v1/prompts/{id}/versions
func (h *Handlers) CreateVersion(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[prompt.CreateVersionRequest](w, r)
	if !ok {
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	res, err := h.Versions.Create(r.Context(), userID, urlParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// RestoreVersion handles POST /api/v1/prompts/{id}/versions/{versionId}/restore
func (h *Handlers) RestoreVersion(w http.ResponseWriter, r *http.Request) {
	req, ok := readOptionalJSON[prompt.RestoreRequest](w, r)
	if !ok {
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	res, err := h.Versions.Restore(r.Context(), userID, urlParam(r, "id"), urlParam(r, "versionId"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}
