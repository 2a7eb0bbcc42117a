package service

import (
	"context"
	"errors"
	"testing"

	"github.com/promptana/promptana/internal/domain"
	"github.com/promptana/promptana/internal/domain/catalog"
	"github.com/promptana/promptana/internal/domain/tag"
)

func strPtr(s string) *string { return &s }

func TestCatalogCreateDuplicateName(t *testing.T) {
	store := &mockStore{
		findCatalogByNameFn: func(_ context.Context, _, name string) (*catalog.Catalog, error) {
			if name == "Taken" {
				return &catalog.Catalog{ID: "catalog-9", Name: "Taken"}, nil
			}
			return nil, domain.ErrNotFound
		},
	}
	svc := NewCatalogService(store)

	_, err := svc.Create(context.Background(), "user-1", catalog.CreateRequest{Name: "Taken"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("want conflict, got %v", err)
	}

	c, err := svc.Create(context.Background(), "user-1", catalog.CreateRequest{Name: "Fresh"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.ID == "" || c.Name != "Fresh" {
		t.Fatalf("catalog = %+v", c)
	}
}

func TestCatalogUpdateSameNameNoConflict(t *testing.T) {
	store := &mockStore{
		getCatalogFn: func(_ context.Context, _, id string) (*catalog.Catalog, error) {
			return &catalog.Catalog{ID: id, Name: "Work"}, nil
		},
		findCatalogByNameFn: func(context.Context, string, string) (*catalog.Catalog, error) {
			t.Fatal("uniqueness check must be skipped when name is unchanged")
			return nil, nil
		},
	}
	svc := NewCatalogService(store)

	c, err := svc.Update(context.Background(), "user-1", "catalog-1", catalog.UpdateRequest{
		Name:        strPtr("Work"),
		Description: strPtr("updated"),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if c.Description == nil || *c.Description != "updated" {
		t.Fatalf("description = %v", c.Description)
	}
}

func TestCatalogUpdateRenameConflict(t *testing.T) {
	store := &mockStore{
		getCatalogFn: func(_ context.Context, _, id string) (*catalog.Catalog, error) {
			return &catalog.Catalog{ID: id, Name: "Work"}, nil
		},
		findCatalogByNameFn: func(_ context.Context, _, name string) (*catalog.Catalog, error) {
			return &catalog.Catalog{ID: "catalog-other", Name: name}, nil
		},
	}
	svc := NewCatalogService(store)

	_, err := svc.Update(context.Background(), "user-1", "catalog-1", catalog.UpdateRequest{Name: strPtr("Personal")})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("want conflict, got %v", err)
	}
}

func TestCatalogGetNotFound(t *testing.T) {
	svc := NewCatalogService(&mockStore{})

	_, err := svc.Get(context.Background(), "user-1", "missing")
	var derr *domain.Error
	if !errors.As(err, &derr) || derr.Code != domain.CodeNotFound {
		t.Fatalf("want not found, got %v", err)
	}
}

func TestCatalogListNormalizesPaging(t *testing.T) {
	var gotPage, gotSize int
	store := &mockStore{
		listCatalogsFn: func(_ context.Context, _ string, page, pageSize int, _ string) ([]catalog.Catalog, int64, error) {
			gotPage, gotSize = page, pageSize
			return []catalog.Catalog{{ID: "catalog-1"}}, 1, nil
		},
	}
	svc := NewCatalogService(store)

	pg, err := svc.List(context.Background(), "user-1", -3, 9999, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if gotPage != 1 {
		t.Fatalf("page = %d", gotPage)
	}
	if gotSize > 100 {
		t.Fatalf("pageSize = %d, not clamped", gotSize)
	}
	if pg.Total != 1 || len(pg.Items) != 1 {
		t.Fatalf("page = %+v", pg)
	}
}

func TestTagUpdateRenameConflict(t *testing.T) {
	store := &mockStore{
		getTagFn: func(_ context.Context, _, id string) (*tag.Tag, error) {
			return &tag.Tag{ID: id, Name: "draft"}, nil
		},
		findTagByNameFn: func(_ context.Context, _, name string) (*tag.Tag, error) {
			return &tag.Tag{ID: "tag-other", Name: name}, nil
		},
	}
	svc := NewTagService(store)

	_, err := svc.Update(context.Background(), "user-1", "tag-1", tag.UpdateRequest{Name: "final"})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("want conflict, got %v", err)
	}
}

func TestTagDeleteNotFound(t *testing.T) {
	svc := NewTagService(&mockStore{})

	err := svc.Delete(context.Background(), "user-1", "missing")
	var derr *domain.Error
	if !errors.As(err, &derr) || derr.Code != domain.CodeNotFound {
		t.Fatalf("want not found, got %v", err)
	}
}
