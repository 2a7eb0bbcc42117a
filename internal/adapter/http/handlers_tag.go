package http

import (
	"net/http"

	"github.com/promptana/promptana/internal/domain/tag"
	"github.com/promptana/promptana/internal/middleware"
)

// ListTags handles GET /api/v1/tags
func (h *Handlers) ListTags(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 0)
	search := r.URL.Query().Get("search")

	pg, err := h.Tags.List(r.Context(), userID, page, pageSize, search)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pg)
}

// GetTag handles GET /api/v1/tags/{id}
func (h *Handlers) GetTag(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	t, err := h.Tags.Get(r.Context(), userID, urlParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// CreateTag handles POST /api/v1/tags
func (h *Handlers) CreateTag(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[tag.CreateRequest](w, r)
	if !ok {
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	t, err := h.Tags.Create(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// UpdateTag handles PATCH /api/v1/tags/{id}
func (h *Handlers) UpdateTag(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[tag.UpdateRequest](w, r)
	if !ok {
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	t, err := h.Tags.Update(r.Context(), userID, urlParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// DeleteTag handles DELETE /api/v1/tags/{id}
func (h *Handlers) DeleteTag(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if err := h.Tags.Delete(r.Context(), userID, urlParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
