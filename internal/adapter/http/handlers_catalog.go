package http

import (
	"net/http"

	"github.com/promptana/promptana/internal/domain/catalog"
	"github.com/promptana/promptana/internal/middleware"
)

// ListCatalogs handles GET /api/v1/catalogs
func (h *Handlers) ListCatalogs(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "page_size", 0)
	search := r.URL.Query().Get("search")

	pg, err := h.Catalogs.List(r.Context(), userID, page, pageSize, search)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pg)
}

// GetCatalog handles GET /api/v1/catalogs/{id}
func (h *Handlers) GetCatalog(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	c, err := h.Catalogs.Get(r.Context(), userID, urlParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CreateCatalog handles POST /api/v1/catalogs
func (h *Handlers) CreateCatalog(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[catalog.CreateRequest](w, r)
	if !ok {
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	c, err := h.Catalogs.Create(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// UpdateCatalog handles PATCH /api/v1/catalogs/{id}
func (h *Handlers) UpdateCatalog(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[catalog.UpdateRequest](w, r)
	if !ok {
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	c, err := h.Catalogs.Update(r.Context(), userID, urlParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteCatalog handles DELETE /api/v1/catalogs/{id}
func (h *Handlers) DeleteCatalog(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if err := h.Catalogs.Delete(r.Context(), userID, urlParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
