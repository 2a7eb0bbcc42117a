package http

import (
	"net/http"

	"github.com/promptana/promptana/internal/domain/prompt"
	"github.com/promptana/promptana/internal/middleware"
)

func promptListParams(r *http.Request) prompt.ListParams {
	q := r.URL.Query()
	return prompt.ListParams{
		Page:      queryInt(r, "page", 1),
		PageSize:  queryInt(r, "page_size", 0),
		Search:    q.Get("search"),
		TagID:     q.Get("tag_id"),
		CatalogID: q.Get("catalog_id"),
		Sort:      prompt.SortKey(q.Get("sort")),
	}
}

// ListPrompts handles GET /api/v1/prompts
func (h *Handlers) ListPrompts(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	pg, err := h.Prompts.List(r.Context(), userID, promptListParams(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pg)
}

// SearchPrompts handles GET /api/v1/search/prompts. The q parameter carries
// the full-text query; results default to relevance order.
func (h *Handlers) SearchPrompts(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	params := promptListParams(r)
	params.Search = r.URL.Query().Get("q")
	if params.Sort == "" {
		params.Sort = prompt.SortRelevance
	}

	pg, err := h.Prompts.List(r.Context(), userID, params)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pg)
}

// GetPrompt handles GET /api/v1/prompts/{id}
func (h *Handlers) GetPrompt(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	d, err := h.Prompts.Get(r.Context(), userID, urlParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// CreatePrompt handles POST /api/v1/prompts
func (h *Handlers) CreatePrompt(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[prompt.CreateRequest](w, r)
	if !ok {
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	res, err := h.Prompts.Create(r.Context(), userID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// UpdatePrompt handles PATCH /api/v1/prompts/{id}
func (h *Handlers) UpdatePrompt(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[prompt.UpdateRequest](w, r)
	if !ok {
		return
	}

	userID := middleware.UserIDFromContext(r.Context())
	d, err := h.Prompts.Update(r.Context(), userID, urlParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// DeletePrompt handles DELETE /api/v1/prompts/{id}
func (h *Handlers) DeletePrompt(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if err := h.Prompts.Delete(r.Context(), userID, urlParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
