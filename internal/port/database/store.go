// Package database defines the database store port (interface).
//
// Every method takes the owning user id explicitly. Ownership is re-verified
// at the point of use on every call; no method trusts a previously validated
// reference.
package database

import (
	"context"

	"github.com/promptana/promptana/internal/domain/catalog"
	"github.com/promptana/promptana/internal/domain/prompt"
	"github.com/promptana/promptana/internal/domain/run"
	"github.com/promptana/promptana/internal/domain/settings"
	"github.com/promptana/promptana/internal/domain/tag"
	"github.com/promptana/promptana/internal/domain/user"
)

// Store is the port interface for database operations.
type Store interface {
	// Catalogs
	ListCatalogs(ctx context.Context, userID string, page, pageSize int, search string) ([]catalog.Catalog, int64, error)
	GetCatalog(ctx context.Context, userID, id string) (*catalog.Catalog, error)
	FindCatalogByName(ctx context.Context, userID, name string) (*catalog.Catalog, error)
	CreateCatalog(ctx context.Context, c *catalog.Catalog) error
	UpdateCatalog(ctx context.Context, c *catalog.Catalog) error
	// DeleteCatalog unassigns the catalog from all owned prompts before
	// deleting; prompts are never cascaded.
	DeleteCatalog(ctx context.Context, userID, id string) error

	// Tags
	ListTags(ctx context.Context, userID string, page, pageSize int, search string) ([]tag.Tag, int64, error)
	GetTag(ctx context.Context, userID, id string) (*tag.Tag, error)
	FindTagByName(ctx context.Context, userID, name string) (*tag.Tag, error)
	CreateTag(ctx context.Context, t *tag.Tag) error
	UpdateTag(ctx context.Context, t *tag.Tag) error
	DeleteTag(ctx context.Context, userID, id string) error
	// CountTagsOwned returns how many of the given tag ids exist and belong
	// to the user. Used to fail whole writes when any tag is foreign.
	CountTagsOwned(ctx context.Context, userID string, ids []string) (int, error)
	ListTagsForPrompt(ctx context.Context, userID, promptID string) ([]tag.Tag, error)

	// Prompts
	ListPrompts(ctx context.Context, userID string, params prompt.ListParams) ([]prompt.ListItem, int64, error)
	GetPrompt(ctx context.Context, userID, id string) (*prompt.Prompt, error)
	// CreatePrompt inserts the prompt, its initial version, the tag
	// associations, and repoints current_version_id, all in one transaction.
	CreatePrompt(ctx context.Context, p *prompt.Prompt, initial *prompt.Version, tagIDs []string) error
	UpdatePrompt(ctx context.Context, p *prompt.Prompt, tagIDs *[]string) error
	// DeletePrompt removes the prompt and, when event is non-nil, records the
	// audit event in the same transaction.
	DeletePrompt(ctx context.Context, userID, id string, event *run.Event) error
	// ListPromptSnapshots returns recent title/content pairs for duplicate
	// detection.
	ListPromptSnapshots(ctx context.Context, userID string, limit int) ([]prompt.Snapshot, error)

	// Versions (insert-only; no update or delete exists)
	ListVersions(ctx context.Context, userID, promptID string, page, pageSize int) ([]prompt.Version, int64, error)
	GetVersion(ctx context.Context, userID, promptID, versionID string) (*prompt.Version, error)
	// CreateVersion inserts the version, repoints the prompt's
	// current-version pointer, bumps updated_at, and, when event is non-nil,
	// stamps new_version_id into its payload and records it, all in one
	// transaction.
	CreateVersion(ctx context.Context, userID string, v *prompt.Version, event *run.Event) (*prompt.Prompt, error)

	// Runs (insert-only)
	// CreateRun inserts the run, updates the prompt's last-run pointer, and,
	// when event is non-nil, records the audit event in one transaction.
	CreateRun(ctx context.Context, r *run.Run, event *run.Event) error
	GetRun(ctx context.Context, userID, id string) (*run.Run, error)
	ListRuns(ctx context.Context, userID, promptID string, page, pageSize int) ([]run.Run, int64, error)

	// Run events (append-only)
	CreateEvent(ctx context.Context, ev *run.Event) error

	// Settings
	GetOrCreateSettings(ctx context.Context, userID string) (*settings.UserSettings, error)
	UpdateSettings(ctx context.Context, userID string, retention settings.RetentionPolicy) (*settings.UserSettings, error)

	// Users and refresh tokens
	CreateUser(ctx context.Context, u *user.User) error
	GetUser(ctx context.Context, id string) (*user.User, error)
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
	CreateRefreshToken(ctx context.Context, rt *user.RefreshToken) error
	GetRefreshTokenByHash(ctx context.Context, hash string) (*user.RefreshToken, error)
	RotateRefreshToken(ctx context.Context, oldID string, newRT *user.RefreshToken) error
	DeleteRefreshToken(ctx context.Context, id string) error
	DeleteRefreshTokensByUser(ctx context.Context, userID string) error
}
