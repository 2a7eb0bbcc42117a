package postgres

import (
	"context"
	"fmt"

	"github.com/promptana/promptana/internal/domain/tag"
)

func (s *Store) ListTags(ctx context.Context, userID string, page, pageSize int, search string) ([]tag.Tag, int64, error) {
	where := `WHERE user_id = $1`
	args := []any{userID}
	if search != "" {
		where += ` AND name ILIKE '%' || $2 || '%'`
		args = append(args, search)
	}

	var total int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM tags `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tags: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT id, user_id, name, created_at
		 FROM tags %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		where, pageSize, (page-1)*pageSize)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []tag.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, total, rows.Err()
}

func (s *Store) GetTag(ctx context.Context, userID, id string) (*tag.Tag, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, user_id, name, created_at
		 FROM tags WHERE id = $1 AND user_id = $2`, id, userID)

	t, err := scanTag(row)
	if err != nil {
		return nil, notFoundWrap(err, "get tag %s", id)
	}
	return &t, nil
}

func (s *Store) FindTagByName(ctx context.Context, userID, name string) (*tag.Tag, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, user_id, name, created_at
		 FROM tags WHERE user_id = $1 AND lower(name) = lower($2)`, userID, name)

	t, err := scanTag(row)
	if err != nil {
		return nil, notFoundWrap(err, "find tag %q", name)
	}
	return &t, nil
}

func (s *Store) CreateTag(ctx context.Context, t *tag.Tag) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO tags (user_id, name) VALUES ($1, $2)
		 RETURNING id, created_at`,
		t.UserID, t.Name,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return conflictWrap(err, "create tag %q", t.Name)
	}
	return nil
}

func (s *Store) UpdateTag(ctx context.Context, t *tag.Tag) error {
	ct, err := s.pool.Exec(ctx,
		`UPDATE tags SET name = $3 WHERE id = $1 AND user_id = $2`,
		t.ID, t.UserID, t.Name)
	if isUniqueViolation(err) {
		return conflictWrap(err, "update tag %s", t.ID)
	}
	return execExpectOne(ct, err, "update tag %s", t.ID)
}

// DeleteTag removes the tag; prompt associations go with it via CASCADE.
func (s *Store) DeleteTag(ctx context.Context, userID, id string) error {
	ct, err := s.pool.Exec(ctx, `DELETE FROM tags WHERE id = $1 AND user_id = $2`, id, userID)
	return execExpectOne(ct, err, "delete tag %s", id)
}

func (s *Store) CountTagsOwned(ctx context.Context, userID string, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM tags WHERE user_id = $1 AND id = ANY($2)`,
		userID, ids,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count owned tags: %w", err)
	}
	return n, nil
}

func (s *Store) ListTagsForPrompt(ctx context.Context, userID, promptID string) ([]tag.Tag, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT t.id, t.user_id, t.name, t.created_at
		 FROM tags t
		 JOIN prompt_tags pt ON pt.tag_id = t.id
		 WHERE pt.prompt_id = $1 AND t.user_id = $2
		 ORDER BY t.name ASC`, promptID, userID)
	if err != nil {
		return nil, fmt.Errorf("list tags for prompt %s: %w", promptID, err)
	}
	defer rows.Close()

	var tags []tag.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

func scanTag(row scannable) (tag.Tag, error) {
	var t tag.Tag
	err := row.Scan(&t.ID, &t.UserID, &t.Name, &t.CreatedAt)
	return t, err
}
