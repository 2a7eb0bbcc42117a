package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/promptana/promptana/internal/domain"
	"github.com/promptana/promptana/internal/domain/tag"
	"github.com/promptana/promptana/internal/port/database"
)

// TagService provides CRUD operations for tags.
type TagService struct {
	store database.Store
}

// NewTagService creates a new TagService.
func NewTagService(store database.Store) *TagService {
	return &TagService{store: store}
}

// List returns a page of the user's tags.
func (s *TagService) List(ctx context.Context, userID string, page, pageSize int, search string) (domain.Page[tag.Tag], error) {
	page, pageSize = domain.NormalizePage(page, pageSize)
	items, total, err := s.store.ListTags(ctx, userID, page, pageSize, search)
	if err != nil {
		return domain.Page[tag.Tag]{}, fmt.Errorf("list tags: %w", err)
	}
	return domain.NewPage(items, page, pageSize, total), nil
}

// Get returns one tag by id.
func (s *TagService) Get(ctx context.Context, userID, id string) (*tag.Tag, error) {
	t, err := s.store.GetTag(ctx, userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("tag not found")
		}
		return nil, err
	}
	return t, nil
}

// Create adds a tag. Names are unique per user, case-insensitively.
func (s *TagService) Create(ctx context.Context, userID string, req tag.CreateRequest) (*tag.Tag, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.store.FindTagByName(ctx, userID, req.Name); err == nil {
		return nil, domain.Conflict(fmt.Sprintf("a tag named %q already exists", req.Name))
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	t := &tag.Tag{UserID: userID, Name: req.Name}
	if err := s.store.CreateTag(ctx, t); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.Conflict(fmt.Sprintf("a tag named %q already exists", req.Name))
		}
		return nil, fmt.Errorf("create tag: %w", err)
	}
	return t, nil
}

// Update renames a tag. The uniqueness check is skipped when the name is
// unchanged.
func (s *TagService) Update(ctx context.Context, userID, id string, req tag.UpdateRequest) (*tag.Tag, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	t, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != t.Name {
		if existing, err := s.store.FindTagByName(ctx, userID, req.Name); err == nil && existing.ID != id {
			return nil, domain.Conflict(fmt.Sprintf("a tag named %q already exists", req.Name))
		} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		t.Name = req.Name
	}

	if err := s.store.UpdateTag(ctx, t); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.Conflict("a tag with this name already exists")
		}
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("tag not found")
		}
		return nil, fmt.Errorf("update tag: %w", err)
	}
	return t, nil
}

// Delete removes a tag and its prompt associations.
func (s *TagService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteTag(ctx, userID, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NotFound("tag not found")
		}
		return fmt.Errorf("delete tag: %w", err)
	}
	return nil
}
