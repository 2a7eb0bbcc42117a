package http_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/promptana/promptana/internal/domain"
	"github.com/promptana/promptana/internal/domain/catalog"
	"github.com/promptana/promptana/internal/domain/prompt"
	"github.com/promptana/promptana/internal/domain/run"
	"github.com/promptana/promptana/internal/domain/settings"
	"github.com/promptana/promptana/internal/domain/tag"
	"github.com/promptana/promptana/internal/domain/user"
)

// memStore is an in-memory database.Store for handler tests.
type memStore struct {
	mu         sync.Mutex
	seq        int
	users      map[string]*user.User
	refresh    map[string]*user.RefreshToken // keyed by token hash
	catalogs   map[string]*catalog.Catalog
	tags       map[string]*tag.Tag
	prompts    map[string]*prompt.Prompt
	versions   map[string]*prompt.Version
	promptTags map[string][]string
	runs       map[string]*run.Run
	events     []run.Event
	settings   map[string]*settings.UserSettings
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[string]*user.User{},
		refresh:    map[string]*user.RefreshToken{},
		catalogs:   map[string]*catalog.Catalog{},
		tags:       map[string]*tag.Tag{},
		prompts:    map[string]*prompt.Prompt{},
		versions:   map[string]*prompt.Version{},
		promptTags: map[string][]string{},
		runs:       map[string]*run.Run{},
		settings:   map[string]*settings.UserSettings{},
	}
}

func (m *memStore) nextID(prefix string) string {
	m.seq++
	return fmt.Sprintf("%s-%d", prefix, m.seq)
}

func paginate[T any](items []T, page, pageSize int) []T {
	start := (page - 1) * pageSize
	if start >= len(items) {
		return nil
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// --- users ---

func (m *memStore) CreateUser(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	email := strings.ToLower(u.Email)
	for _, ex := range m.users {
		if ex.Email == email {
			return domain.ErrConflict
		}
	}
	u.ID = m.nextID("user")
	u.Email = email
	u.CreatedAt = time.Now()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memStore) GetUser(_ context.Context, id string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == strings.ToLower(email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) CreateRefreshToken(_ context.Context, rt *user.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rt.ID = m.nextID("rt")
	cp := *rt
	m.refresh[rt.TokenHash] = &cp
	return nil
}

func (m *memStore) GetRefreshTokenByHash(_ context.Context, hash string) (*user.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rt, ok := m.refresh[hash]
	if !ok || rt.ExpiresAt.Before(time.Now()) {
		return nil, domain.ErrNotFound
	}
	cp := *rt
	return &cp, nil
}

func (m *memStore) RotateRefreshToken(_ context.Context, oldID string, newRT *user.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var oldHash string
	for hash, rt := range m.refresh {
		if rt.ID == oldID {
			oldHash = hash
			break
		}
	}
	if oldHash == "" {
		return domain.ErrNotFound
	}
	delete(m.refresh, oldHash)
	newRT.ID = m.nextID("rt")
	cp := *newRT
	m.refresh[newRT.TokenHash] = &cp
	return nil
}

func (m *memStore) DeleteRefreshToken(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for hash, rt := range m.refresh {
		if rt.ID == id {
			delete(m.refresh, hash)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (m *memStore) DeleteRefreshTokensByUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for hash, rt := range m.refresh {
		if rt.UserID == userID {
			delete(m.refresh, hash)
		}
	}
	return nil
}

// --- catalogs ---

func (m *memStore) ListCatalogs(_ context.Context, userID string, page, pageSize int, search string) ([]catalog.Catalog, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []catalog.Catalog
	for _, c := range m.catalogs {
		if c.UserID != userID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(search)) {
			continue
		}
		all = append(all, *c)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	return paginate(all, page, pageSize), int64(len(all)), nil
}

func (m *memStore) GetCatalog(_ context.Context, userID, id string) (*catalog.Catalog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.catalogs[id]
	if !ok || c.UserID != userID {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) FindCatalogByName(_ context.Context, userID, name string) (*catalog.Catalog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.catalogs {
		if c.UserID == userID && strings.EqualFold(c.Name, name) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) CreateCatalog(_ context.Context, c *catalog.Catalog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.nextID("catalog")
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	cp := *c
	m.catalogs[c.ID] = &cp
	return nil
}

func (m *memStore) UpdateCatalog(_ context.Context, c *catalog.Catalog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ex, ok := m.catalogs[c.ID]
	if !ok || ex.UserID != c.UserID {
		return domain.ErrNotFound
	}
	c.UpdatedAt = time.Now()
	cp := *c
	m.catalogs[c.ID] = &cp
	return nil
}

func (m *memStore) DeleteCatalog(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.catalogs[id]
	if !ok || c.UserID != userID {
		return domain.ErrNotFound
	}
	for _, p := range m.prompts {
		if p.CatalogID != nil && *p.CatalogID == id {
			p.CatalogID = nil
		}
	}
	delete(m.catalogs, id)
	return nil
}

// --- tags ---

func (m *memStore) ListTags(_ context.Context, userID string, page, pageSize int, search string) ([]tag.Tag, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []tag.Tag
	for _, t := range m.tags {
		if t.UserID != userID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Name), strings.ToLower(search)) {
			continue
		}
		all = append(all, *t)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID > all[j].ID
	})
	return paginate(all, page, pageSize), int64(len(all)), nil
}

func (m *memStore) GetTag(_ context.Context, userID, id string) (*tag.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tags[id]
	if !ok || t.UserID != userID {
		return nil, domain.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memStore) FindTagByName(_ context.Context, userID, name string) (*tag.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tags {
		if t.UserID == userID && strings.EqualFold(t.Name, name) {
			cp := *t
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memStore) CreateTag(_ context.Context, t *tag.Tag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = m.nextID("tag")
	t.CreatedAt = time.Now()
	cp := *t
	m.tags[t.ID] = &cp
	return nil
}

func (m *memStore) UpdateTag(_ context.Context, t *tag.Tag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ex, ok := m.tags[t.ID]
	if !ok || ex.UserID != t.UserID {
		return domain.ErrNotFound
	}
	cp := *t
	m.tags[t.ID] = &cp
	return nil
}

func (m *memStore) DeleteTag(_ context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tags[id]
	if !ok || t.UserID != userID {
		return domain.ErrNotFound
	}
	delete(m.tags, id)
	for pid, ids := range m.promptTags {
		var kept []string
		for _, tid := range ids {
			if tid != id {
				kept = append(kept, tid)
			}
		}
		m.promptTags[pid] = kept
	}
	return nil
}

func (m *memStore) CountTagsOwned(_ context.Context, userID string, ids []string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, id := range ids {
		if t, ok := m.tags[id]; ok && t.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *memStore) ListTagsForPrompt(_ context.Context, userID, promptID string) ([]tag.Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tagsForPromptLocked(userID, promptID), nil
}

func (m *memStore) tagsForPromptLocked(userID, promptID string) []tag.Tag {
	var out []tag.Tag
	for _, tid := range m.promptTags[promptID] {
		if t, ok := m.tags[tid]; ok && t.UserID == userID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// --- prompts ---

func (m *memStore) ListPrompts(_ context.Context, userID string, params prompt.ListParams) ([]prompt.ListItem, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []prompt.ListItem
	for _, p := range m.prompts {
		if p.UserID != userID {
			continue
		}
		if params.CatalogID != "" && (p.CatalogID == nil || *p.CatalogID != params.CatalogID) {
			continue
		}
		if params.TagID != "" {
			found := false
			for _, tid := range m.promptTags[p.ID] {
				if tid == params.TagID {
					found = true
				}
			}
			if !found {
				continue
			}
		}
		if params.Search != "" {
			text := strings.ToLower(p.Title)
			if p.CurrentVersionID != nil {
				if v, ok := m.versions[*p.CurrentVersionID]; ok {
					text += " " + strings.ToLower(v.Content)
				}
			}
			match := true
			for _, word := range strings.Fields(strings.ToLower(params.Search)) {
				if !strings.Contains(text, word) {
					match = false
				}
			}
			if !match {
				continue
			}
		}
		item := prompt.ListItem{Prompt: *p, Tags: m.tagsForPromptLocked(userID, p.ID)}
		if p.LastRunID != nil {
			if r, ok := m.runs[*p.LastRunID]; ok {
				item.LastRun = &prompt.LastRunSummary{
					RunID:     r.ID,
					Status:    string(r.Status),
					Model:     r.Model,
					LatencyMS: r.LatencyMS,
					CreatedAt: r.CreatedAt,
				}
			}
		}
		all = append(all, item)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UpdatedAt.After(all[j].UpdatedAt) })
	return paginate(all, params.Page, params.PageSize), int64(len(all)), nil
}

func (m *memStore) GetPrompt(_ context.Context, userID, id string) (*prompt.Prompt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.prompts[id]
	if !ok || p.UserID != userID {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) CreatePrompt(_ context.Context, p *prompt.Prompt, initial *prompt.Version, tagIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = m.nextID("prompt")
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	initial.ID = m.nextID("version")
	initial.PromptID = p.ID
	initial.CreatedAt = time.Now()
	p.CurrentVersionID = &initial.ID

	pc := *p
	vc := *initial
	m.prompts[p.ID] = &pc
	m.versions[initial.ID] = &vc
	m.promptTags[p.ID] = append([]string(nil), tagIDs...)
	return nil
}

func (m *memStore) UpdatePrompt(_ context.Context, p *prompt.Prompt, tagIDs *[]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	ex, ok := m.prompts[p.ID]
	if !ok || ex.UserID != p.UserID {
		return domain.ErrNotFound
	}
	p.UpdatedAt = time.Now()
	cp := *p
	m.prompts[p.ID] = &cp
	if tagIDs != nil {
		m.promptTags[p.ID] = append([]string(nil), (*tagIDs)...)
	}
	return nil
}

func (m *memStore) DeletePrompt(_ context.Context, userID, id string, event *run.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.prompts[id]
	if !ok || p.UserID != userID {
		return domain.ErrNotFound
	}
	delete(m.prompts, id)
	delete(m.promptTags, id)
	for vid, v := range m.versions {
		if v.PromptID == id {
			delete(m.versions, vid)
		}
	}
	for rid, r := range m.runs {
		if r.PromptID == id {
			delete(m.runs, rid)
		}
	}
	if event != nil {
		m.appendEventLocked(event)
	}
	return nil
}

func (m *memStore) ListPromptSnapshots(_ context.Context, userID string, limit int) ([]prompt.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []prompt.Snapshot
	for _, p := range m.prompts {
		if p.UserID != userID || p.CurrentVersionID == nil || len(out) >= limit {
			continue
		}
		if v, ok := m.versions[*p.CurrentVersionID]; ok {
			out = append(out, prompt.Snapshot{ID: p.ID, Title: p.Title, Content: v.Content})
		}
	}
	return out, nil
}

// --- versions ---

func (m *memStore) ListVersions(_ context.Context, userID, promptID string, page, pageSize int) ([]prompt.Version, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.prompts[promptID]; !ok || p.UserID != userID {
		return nil, 0, nil
	}
	var all []prompt.Version
	for _, v := range m.versions {
		if v.PromptID == promptID {
			all = append(all, *v)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return paginate(all, page, pageSize), int64(len(all)), nil
}

func (m *memStore) GetVersion(_ context.Context, userID, promptID, versionID string) (*prompt.Version, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.prompts[promptID]
	if !ok || p.UserID != userID {
		return nil, domain.ErrNotFound
	}
	v, ok := m.versions[versionID]
	if !ok || v.PromptID != promptID {
		return nil, domain.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (m *memStore) CreateVersion(_ context.Context, userID string, v *prompt.Version, event *run.Event) (*prompt.Prompt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.prompts[v.PromptID]
	if !ok || p.UserID != userID {
		return nil, domain.ErrNotFound
	}
	v.ID = m.nextID("version")
	v.CreatedAt = time.Now()
	vc := *v
	m.versions[v.ID] = &vc

	p.CurrentVersionID = &v.ID
	p.Title = v.Title
	p.UpdatedAt = time.Now()

	if event != nil {
		event.SetPayloadField("new_version_id", v.ID)
		m.appendEventLocked(event)
	}
	cp := *p
	return &cp, nil
}

// --- runs and events ---

func (m *memStore) CreateRun(_ context.Context, r *run.Run, event *run.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.prompts[r.PromptID]
	if !ok || p.UserID != r.UserID {
		return domain.ErrNotFound
	}
	r.ID = m.nextID("run")
	r.CreatedAt = time.Now()
	rc := *r
	m.runs[r.ID] = &rc
	p.LastRunID = &r.ID
	if event != nil {
		m.appendEventLocked(event)
	}
	return nil
}

func (m *memStore) GetRun(_ context.Context, userID, id string) (*run.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	if !ok || r.UserID != userID {
		return nil, domain.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) ListRuns(_ context.Context, userID, promptID string, page, pageSize int) ([]run.Run, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []run.Run
	for _, r := range m.runs {
		if r.UserID == userID && r.PromptID == promptID {
			all = append(all, *r)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return paginate(all, page, pageSize), int64(len(all)), nil
}

func (m *memStore) CreateEvent(_ context.Context, ev *run.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.appendEventLocked(ev)
	return nil
}

func (m *memStore) appendEventLocked(ev *run.Event) {
	ev.ID = m.nextID("event")
	ev.CreatedAt = time.Now()
	m.events = append(m.events, *ev)
}

// --- settings ---

func (m *memStore) GetOrCreateSettings(_ context.Context, userID string) (*settings.UserSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.settings[userID]; ok {
		cp := *s
		return &cp, nil
	}
	s := &settings.UserSettings{
		UserID:    userID,
		Retention: settings.DefaultRetention,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	m.settings[userID] = s
	cp := *s
	return &cp, nil
}

func (m *memStore) UpdateSettings(_ context.Context, userID string, retention settings.RetentionPolicy) (*settings.UserSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.settings[userID]
	if !ok {
		s = &settings.UserSettings{UserID: userID, CreatedAt: time.Now()}
		m.settings[userID] = s
	}
	s.Retention = retention
	s.UpdatedAt = time.Now()
	cp := *s
	return &cp, nil
}
