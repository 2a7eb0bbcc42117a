package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/promptana/promptana/internal/domain"
	"github.com/promptana/promptana/internal/domain/catalog"
	"github.com/promptana/promptana/internal/port/database"
)

// CatalogService provides CRUD operations for catalogs.
type CatalogService struct {
	store database.Store
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(store database.Store) *CatalogService {
	return &CatalogService{store: store}
}

// List returns a page of the user's catalogs.
func (s *CatalogService) List(ctx context.Context, userID string, page, pageSize int, search string) (domain.Page[catalog.Catalog], error) {
	page, pageSize = domain.NormalizePage(page, pageSize)
	items, total, err := s.store.ListCatalogs(ctx, userID, page, pageSize, search)
	if err != nil {
		return domain.Page[catalog.Catalog]{}, fmt.Errorf("list catalogs: %w", err)
	}
	return domain.NewPage(items, page, pageSize, total), nil
}

// Get returns one catalog by id.
func (s *CatalogService) Get(ctx context.Context, userID, id string) (*catalog.Catalog, error) {
	c, err := s.store.GetCatalog(ctx, userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("catalog not found")
		}
		return nil, err
	}
	return c, nil
}

// Create adds a catalog. Names are unique per user, case-insensitively; the
// pre-check gives a friendly error and the database constraint has the final
// word under concurrency.
func (s *CatalogService) Create(ctx context.Context, userID string, req catalog.CreateRequest) (*catalog.Catalog, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.store.FindCatalogByName(ctx, userID, req.Name); err == nil {
		return nil, domain.Conflict(fmt.Sprintf("a catalog named %q already exists", req.Name))
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	c := &catalog.Catalog{
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.store.CreateCatalog(ctx, c); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.Conflict(fmt.Sprintf("a catalog named %q already exists", req.Name))
		}
		return nil, fmt.Errorf("create catalog: %w", err)
	}
	return c, nil
}

// Update renames a catalog or changes its description. The name uniqueness
// check is skipped when the name is unchanged, so saving a catalog without
// renaming never conflicts with itself.
func (s *CatalogService) Update(ctx context.Context, userID, id string, req catalog.UpdateRequest) (*catalog.Catalog, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	c, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != c.Name {
		if existing, err := s.store.FindCatalogByName(ctx, userID, *req.Name); err == nil && existing.ID != id {
			return nil, domain.Conflict(fmt.Sprintf("a catalog named %q already exists", *req.Name))
		} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		c.Name = *req.Name
	}
	if req.Description != nil {
		c.Description = req.Description
	}

	if err := s.store.UpdateCatalog(ctx, c); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.Conflict("a catalog with this name already exists")
		}
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("catalog not found")
		}
		return nil, fmt.Errorf("update catalog: %w", err)
	}
	return c, nil
}

// Delete removes a catalog. Prompts assigned to it are unassigned, never
// deleted.
func (s *CatalogService) Delete(ctx context.Context, userID, id string) error {
	if err := s.store.DeleteCatalog(ctx, userID, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NotFound("catalog not found")
		}
		return fmt.Errorf("delete catalog: %w", err)
	}
	return nil
}
