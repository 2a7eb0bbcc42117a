package postgres

import (
	"context"
	"fmt"

	"github.com/promptana/promptana/internal/domain/catalog"
)

func (s *Store) ListCatalogs(ctx context.Context, userID string, page, pageSize int, search string) ([]catalog.Catalog, int64, error) {
	where := `WHERE user_id = $1`
	args := []any{userID}
	if search != "" {
		where += ` AND name ILIKE '%' || $2 || '%'`
		args = append(args, search)
	}

	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM catalogs `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count catalogs: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT id, user_id, name, description, created_at, updated_at
		 FROM catalogs %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		where, pageSize, (page-1)*pageSize)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list catalogs: %w", err)
	}
	defer rows.Close()

	var catalogs []catalog.Catalog
	for rows.Next() {
		c, err := scanCatalog(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan catalog: %w", err)
		}
		catalogs = append(catalogs, c)
	}
	return catalogs, total, rows.Err()
}

func (s *Store) GetCatalog(ctx context.Context, userID, id string) (*catalog.Catalog, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, user_id, name, description, created_at, updated_at
		 FROM catalogs WHERE id = $1 AND user_id = $2`, id, userID)

	c, err := scanCatalog(row)
	if err != nil {
		return nil, notFoundWrap(err, "get catalog %s", id)
	}
	return &c, nil
}

func (s *Store) FindCatalogByName(ctx context.Context, userID, name string) (*catalog.Catalog, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, user_id, name, description, created_at, updated_at
		 FROM catalogs WHERE user_id = $1 AND lower(name) = lower($2)`, userID, name)

	c, err := scanCatalog(row)
	if err != nil {
		return nil, notFoundWrap(err, "find catalog %q", name)
	}
	return &c, nil
}

func (s *Store) CreateCatalog(ctx context.Context, c *catalog.Catalog) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO catalogs (user_id, name, description)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		c.UserID, c.Name, c.Description,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return conflictWrap(err, "create catalog %q", c.Name)
	}
	return nil
}

func (s *Store) UpdateCatalog(ctx context.Context, c *catalog.Catalog) error {
	err := s.pool.QueryRow(ctx,
		`UPDATE catalogs SET name = $3, description = $4, updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING updated_at`,
		c.ID, c.UserID, c.Name, c.Description,
	).Scan(&c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return conflictWrap(err, "update catalog %s", c.ID)
		}
		return notFoundWrap(err, "update catalog %s", c.ID)
	}
	return nil
}

// DeleteCatalog unassigns the catalog from every owned prompt, then deletes
// the catalog row. Prompts survive catalog deletion.
func (s *Store) DeleteCatalog(ctx context.Context, userID, id string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if _, err := tx.Exec(ctx,
		`UPDATE prompts SET catalog_id = NULL, updated_at = now()
		 WHERE catalog_id = $1 AND user_id = $2`, id, userID); err != nil {
		return fmt.Errorf("unassign catalog %s: %w", id, err)
	}

	ct, err := tx.Exec(ctx, `DELETE FROM catalogs WHERE id = $1 AND user_id = $2`, id, userID)
	if err := execExpectOne(ct, err, "delete catalog %s", id); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func scanCatalog(row scannable) (catalog.Catalog, error) {
	var c catalog.Catalog
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
