package service

import (
	"context"

	"github.com/promptana/promptana/internal/domain"
	"github.com/promptana/promptana/internal/domain/catalog"
	"github.com/promptana/promptana/internal/domain/prompt"
	"github.com/promptana/promptana/internal/domain/run"
	"github.com/promptana/promptana/internal/domain/settings"
	"github.com/promptana/promptana/internal/domain/tag"
	"github.com/promptana/promptana/internal/domain/user"
)

// mockStore implements database.Store with overridable funcs. Methods without
// an override return ErrNotFound or empty results.
type mockStore struct {
	listCatalogsFn      func(ctx context.Context, userID string, page, pageSize int, search string) ([]catalog.Catalog, int64, error)
	getCatalogFn        func(ctx context.Context, userID, id string) (*catalog.Catalog, error)
	findCatalogByNameFn func(ctx context.Context, userID, name string) (*catalog.Catalog, error)
	createCatalogFn     func(ctx context.Context, c *catalog.Catalog) error
	updateCatalogFn     func(ctx context.Context, c *catalog.Catalog) error
	deleteCatalogFn     func(ctx context.Context, userID, id string) error

	listTagsFn          func(ctx context.Context, userID string, page, pageSize int, search string) ([]tag.Tag, int64, error)
	getTagFn            func(ctx context.Context, userID, id string) (*tag.Tag, error)
	findTagByNameFn     func(ctx context.Context, userID, name string) (*tag.Tag, error)
	createTagFn         func(ctx context.Context, t *tag.Tag) error
	updateTagFn         func(ctx context.Context, t *tag.Tag) error
	deleteTagFn         func(ctx context.Context, userID, id string) error
	countTagsOwnedFn    func(ctx context.Context, userID string, ids []string) (int, error)
	listTagsForPromptFn func(ctx context.Context, userID, promptID string) ([]tag.Tag, error)

	listPromptsFn         func(ctx context.Context, userID string, params prompt.ListParams) ([]prompt.ListItem, int64, error)
	getPromptFn           func(ctx context.Context, userID, id string) (*prompt.Prompt, error)
	createPromptFn        func(ctx context.Context, p *prompt.Prompt, initial *prompt.Version, tagIDs []string) error
	updatePromptFn        func(ctx context.Context, p *prompt.Prompt, tagIDs *[]string) error
	deletePromptFn        func(ctx context.Context, userID, id string, event *run.Event) error
	listPromptSnapshotsFn func(ctx context.Context, userID string, limit int) ([]prompt.Snapshot, error)

	listVersionsFn  func(ctx context.Context, userID, promptID string, page, pageSize int) ([]prompt.Version, int64, error)
	getVersionFn    func(ctx context.Context, userID, promptID, versionID string) (*prompt.Version, error)
	createVersionFn func(ctx context.Context, userID string, v *prompt.Version, event *run.Event) (*prompt.Prompt, error)

	createRunFn func(ctx context.Context, r *run.Run, event *run.Event) error
	getRunFn    func(ctx context.Context, userID, id string) (*run.Run, error)
	listRunsFn  func(ctx context.Context, userID, promptID string, page, pageSize int) ([]run.Run, int64, error)

	createEventFn func(ctx context.Context, ev *run.Event) error

	getOrCreateSettingsFn func(ctx context.Context, userID string) (*settings.UserSettings, error)
	updateSettingsFn      func(ctx context.Context, userID string, retention settings.RetentionPolicy) (*settings.UserSettings, error)

	createUserFn                func(ctx context.Context, u *user.User) error
	getUserFn                   func(ctx context.Context, id string) (*user.User, error)
	getUserByEmailFn            func(ctx context.Context, email string) (*user.User, error)
	createRefreshTokenFn        func(ctx context.Context, rt *user.RefreshToken) error
	getRefreshTokenByHashFn     func(ctx context.Context, hash string) (*user.RefreshToken, error)
	rotateRefreshTokenFn        func(ctx context.Context, oldID string, newRT *user.RefreshToken) error
	deleteRefreshTokenFn        func(ctx context.Context, id string) error
	deleteRefreshTokensByUserFn func(ctx context.Context, userID string) error
}

func (m *mockStore) ListCatalogs(ctx context.Context, userID string, page, pageSize int, search string) ([]catalog.Catalog, int64, error) {
	if m.listCatalogsFn != nil {
		return m.listCatalogsFn(ctx, userID, page, pageSize, search)
	}
	return nil, 0, nil
}

func (m *mockStore) GetCatalog(ctx context.Context, userID, id string) (*catalog.Catalog, error) {
	if m.getCatalogFn != nil {
		return m.getCatalogFn(ctx, userID, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) FindCatalogByName(ctx context.Context, userID, name string) (*catalog.Catalog, error) {
	if m.findCatalogByNameFn != nil {
		return m.findCatalogByNameFn(ctx, userID, name)
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateCatalog(ctx context.Context, c *catalog.Catalog) error {
	if m.createCatalogFn != nil {
		return m.createCatalogFn(ctx, c)
	}
	c.ID = "catalog-1"
	return nil
}

func (m *mockStore) UpdateCatalog(ctx context.Context, c *catalog.Catalog) error {
	if m.updateCatalogFn != nil {
		return m.updateCatalogFn(ctx, c)
	}
	return nil
}

func (m *mockStore) DeleteCatalog(ctx context.Context, userID, id string) error {
	if m.deleteCatalogFn != nil {
		return m.deleteCatalogFn(ctx, userID, id)
	}
	return domain.ErrNotFound
}

func (m *mockStore) ListTags(ctx context.Context, userID string, page, pageSize int, search string) ([]tag.Tag, int64, error) {
	if m.listTagsFn != nil {
		return m.listTagsFn(ctx, userID, page, pageSize, search)
	}
	return nil, 0, nil
}

func (m *mockStore) GetTag(ctx context.Context, userID, id string) (*tag.Tag, error) {
	if m.getTagFn != nil {
		return m.getTagFn(ctx, userID, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) FindTagByName(ctx context.Context, userID, name string) (*tag.Tag, error) {
	if m.findTagByNameFn != nil {
		return m.findTagByNameFn(ctx, userID, name)
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateTag(ctx context.Context, t *tag.Tag) error {
	if m.createTagFn != nil {
		return m.createTagFn(ctx, t)
	}
	t.ID = "tag-1"
	return nil
}

func (m *mockStore) UpdateTag(ctx context.Context, t *tag.Tag) error {
	if m.updateTagFn != nil {
		return m.updateTagFn(ctx, t)
	}
	return nil
}

func (m *mockStore) DeleteTag(ctx context.Context, userID, id string) error {
	if m.deleteTagFn != nil {
		return m.deleteTagFn(ctx, userID, id)
	}
	return domain.ErrNotFound
}

func (m *mockStore) CountTagsOwned(ctx context.Context, userID string, ids []string) (int, error) {
	if m.countTagsOwnedFn != nil {
		return m.countTagsOwnedFn(ctx, userID, ids)
	}
	return len(ids), nil
}

func (m *mockStore) ListTagsForPrompt(ctx context.Context, userID, promptID string) ([]tag.Tag, error) {
	if m.listTagsForPromptFn != nil {
		return m.listTagsForPromptFn(ctx, userID, promptID)
	}
	return nil, nil
}

func (m *mockStore) ListPrompts(ctx context.Context, userID string, params prompt.ListParams) ([]prompt.ListItem, int64, error) {
	if m.listPromptsFn != nil {
		return m.listPromptsFn(ctx, userID, params)
	}
	return nil, 0, nil
}

func (m *mockStore) GetPrompt(ctx context.Context, userID, id string) (*prompt.Prompt, error) {
	if m.getPromptFn != nil {
		return m.getPromptFn(ctx, userID, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreatePrompt(ctx context.Context, p *prompt.Prompt, initial *prompt.Version, tagIDs []string) error {
	if m.createPromptFn != nil {
		return m.createPromptFn(ctx, p, initial, tagIDs)
	}
	p.ID = "prompt-1"
	initial.ID = "version-1"
	initial.PromptID = p.ID
	p.CurrentVersionID = &initial.ID
	return nil
}

func (m *mockStore) UpdatePrompt(ctx context.Context, p *prompt.Prompt, tagIDs *[]string) error {
	if m.updatePromptFn != nil {
		return m.updatePromptFn(ctx, p, tagIDs)
	}
	return nil
}

func (m *mockStore) DeletePrompt(ctx context.Context, userID, id string, event *run.Event) error {
	if m.deletePromptFn != nil {
		return m.deletePromptFn(ctx, userID, id, event)
	}
	return domain.ErrNotFound
}

func (m *mockStore) ListPromptSnapshots(ctx context.Context, userID string, limit int) ([]prompt.Snapshot, error) {
	if m.listPromptSnapshotsFn != nil {
		return m.listPromptSnapshotsFn(ctx, userID, limit)
	}
	return nil, nil
}

func (m *mockStore) ListVersions(ctx context.Context, userID, promptID string, page, pageSize int) ([]prompt.Version, int64, error) {
	if m.listVersionsFn != nil {
		return m.listVersionsFn(ctx, userID, promptID, page, pageSize)
	}
	return nil, 0, nil
}

func (m *mockStore) GetVersion(ctx context.Context, userID, promptID, versionID string) (*prompt.Version, error) {
	if m.getVersionFn != nil {
		return m.getVersionFn(ctx, userID, promptID, versionID)
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateVersion(ctx context.Context, userID string, v *prompt.Version, event *run.Event) (*prompt.Prompt, error) {
	if m.createVersionFn != nil {
		return m.createVersionFn(ctx, userID, v, event)
	}
	v.ID = "version-2"
	if event != nil {
		event.SetPayloadField("new_version_id", v.ID)
	}
	return &prompt.Prompt{ID: v.PromptID, UserID: userID, Title: v.Title, CurrentVersionID: &v.ID}, nil
}

func (m *mockStore) CreateRun(ctx context.Context, r *run.Run, event *run.Event) error {
	if m.createRunFn != nil {
		return m.createRunFn(ctx, r, event)
	}
	r.ID = "run-1"
	return nil
}

func (m *mockStore) GetRun(ctx context.Context, userID, id string) (*run.Run, error) {
	if m.getRunFn != nil {
		return m.getRunFn(ctx, userID, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) ListRuns(ctx context.Context, userID, promptID string, page, pageSize int) ([]run.Run, int64, error) {
	if m.listRunsFn != nil {
		return m.listRunsFn(ctx, userID, promptID, page, pageSize)
	}
	return nil, 0, nil
}

func (m *mockStore) CreateEvent(ctx context.Context, ev *run.Event) error {
	if m.createEventFn != nil {
		return m.createEventFn(ctx, ev)
	}
	ev.ID = "event-1"
	return nil
}

func (m *mockStore) GetOrCreateSettings(ctx context.Context, userID string) (*settings.UserSettings, error) {
	if m.getOrCreateSettingsFn != nil {
		return m.getOrCreateSettingsFn(ctx, userID)
	}
	return &settings.UserSettings{UserID: userID, Retention: settings.DefaultRetention}, nil
}

func (m *mockStore) UpdateSettings(ctx context.Context, userID string, retention settings.RetentionPolicy) (*settings.UserSettings, error) {
	if m.updateSettingsFn != nil {
		return m.updateSettingsFn(ctx, userID, retention)
	}
	return &settings.UserSettings{UserID: userID, Retention: retention}, nil
}

func (m *mockStore) CreateUser(ctx context.Context, u *user.User) error {
	if m.createUserFn != nil {
		return m.createUserFn(ctx, u)
	}
	u.ID = "user-1"
	return nil
}

func (m *mockStore) GetUser(ctx context.Context, id string) (*user.User, error) {
	if m.getUserFn != nil {
		return m.getUserFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	if m.getUserByEmailFn != nil {
		return m.getUserByEmailFn(ctx, email)
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) CreateRefreshToken(ctx context.Context, rt *user.RefreshToken) error {
	if m.createRefreshTokenFn != nil {
		return m.createRefreshTokenFn(ctx, rt)
	}
	rt.ID = "rt-1"
	return nil
}

func (m *mockStore) GetRefreshTokenByHash(ctx context.Context, hash string) (*user.RefreshToken, error) {
	if m.getRefreshTokenByHashFn != nil {
		return m.getRefreshTokenByHashFn(ctx, hash)
	}
	return nil, domain.ErrNotFound
}

func (m *mockStore) RotateRefreshToken(ctx context.Context, oldID string, newRT *user.RefreshToken) error {
	if m.rotateRefreshTokenFn != nil {
		return m.rotateRefreshTokenFn(ctx, oldID, newRT)
	}
	newRT.ID = "rt-2"
	return nil
}

func (m *mockStore) DeleteRefreshToken(ctx context.Context, id string) error {
	if m.deleteRefreshTokenFn != nil {
		return m.deleteRefreshTokenFn(ctx, id)
	}
	return nil
}

func (m *mockStore) DeleteRefreshTokensByUser(ctx context.Context, userID string) error {
	if m.deleteRefreshTokensByUserFn != nil {
		return m.deleteRefreshTokensByUserFn(ctx, userID)
	}
	return nil
}
