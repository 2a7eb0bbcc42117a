package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes registers all API routes on the given chi router. The auth
// middleware is applied by the caller; /health and the signup/login/refresh
// endpoints are on its public-path list.
func MountRoutes(r chi.Router, h *Handlers) {
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Auth
		r.Post("/auth/signup", h.Signup)
		r.Post("/auth/login", h.Login)
		r.Post("/auth/refresh", h.Refresh)
		r.Post("/auth/signout", h.Signout)
		r.Get("/me", h.Me)

		// Settings
		r.Get("/settings", h.GetSettings)
		r.Put("/settings", h.UpdateSettings)

		// Prompts
		r.Get("/prompts", h.ListPrompts)
		r.Post("/prompts", h.CreatePrompt)
		r.Get("/prompts/{id}", h.GetPrompt)
		r.Patch("/prompts/{id}", h.UpdatePrompt)
		r.Delete("/prompts/{id}", h.DeletePrompt)

		// Versions (nested under prompts)
		r.Get("/prompts/{id}/versions", h.ListVersions)
		r.Post("/prompts/{id}/versions", h.CreateVersion)
		r.Get("/prompts/{id}/versions/{versionId}", h.GetVersion)
		r.Post("/prompts/{id}/versions/{versionId}/restore", h.RestoreVersion)

		// Runs
		r.Get("/prompts/{id}/runs", h.ListRuns)
		r.Post("/prompts/{id}/runs", h.ExecuteRun)
		r.Get("/runs/{id}", h.GetRun)

		// Improve
		r.Post("/prompts/{id}/improve", h.ImprovePrompt)

		// Search
		r.Get("/search/prompts", h.SearchPrompts)

		// Models allow-list
		r.Get("/models", h.ListModels)

		// Catalogs
		r.Get("/catalogs", h.ListCatalogs)
		r.Post("/catalogs", h.CreateCatalog)
		r.Get("/catalogs/{id}", h.GetCatalog)
		r.Patch("/catalogs/{id}", h.UpdateCatalog)
		r.Delete("/catalogs/{id}", h.DeleteCatalog)

		// Tags
		r.Get("/tags", h.ListTags)
		r.Post("/tags", h.CreateTag)
		r.Get("/tags/{id}", h.GetTag)
		r.Patch("/tags/{id}", h.UpdateTag)
		r.Delete("/tags/{id}", h.DeleteTag)
	})
}
