package http

import (
	"github.com/promptana/promptana/internal/service"
)

// Handlers holds the HTTP handler dependencies.
type Handlers struct {
	Auth     *service.AuthService
	Catalogs *service.CatalogService
	Tags     *service.TagService
	Prompts  *service.PromptService
	Versions *service.VersionService
	Runs     *service.RunService
	Improve  *service.ImproveService
	Settings *service.SettingsService
}

// NewHandlers wires the services into the HTTP layer.
func NewHandlers(
	auth *service.AuthService,
	catalogs *service.CatalogService,
	tags *service.TagService,
	prompts *service.PromptService,
	versions *service.VersionService,
	runs *service.RunService,
	improve *service.ImproveService,
	settings *service.SettingsService,
) *Handlers {
	return &Handlers{
		Auth:     auth,
		Catalogs: catalogs,
		Tags:     tags,
		Prompts:  prompts,
		Versions: versions,
		Runs:     runs,
		Improve:  improve,
		Settings: settings,
	}
}
