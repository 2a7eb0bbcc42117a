package postgres

import (
	"context"
	"fmt"

	"github.com/promptana/promptana/internal/domain/prompt"
	"github.com/promptana/promptana/internal/domain/run"
)

func (s *Store) ListVersions(ctx context.Context, userID, promptID string, page, pageSize int) ([]prompt.Version, int64, error) {
	var total int64
	err := s.pool.QueryRow(ctx,
		`SELECT count(*)
		 FROM prompt_versions v
		 JOIN prompts p ON p.id = v.prompt_id
		 WHERE v.prompt_id = $1 AND p.user_id = $2`, promptID, userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count versions: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT v.id, v.prompt_id, v.title, v.content, v.summary, v.created_by, v.created_at
		 FROM prompt_versions v
		 JOIN prompts p ON p.id = v.prompt_id
		 WHERE v.prompt_id = $1 AND p.user_id = $2
		 ORDER BY v.created_at DESC
		 LIMIT %d OFFSET %d`, pageSize, (page-1)*pageSize)
	rows, err := s.pool.Query(ctx, query, promptID, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var versions []prompt.Version
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan version: %w", err)
		}
		versions = append(versions, v)
	}
	return versions, total, rows.Err()
}

func (s *Store) GetVersion(ctx context.Context, userID, promptID, versionID string) (*prompt.Version, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT v.id, v.prompt_id, v.title, v.content, v.summary, v.created_by, v.created_at
		 FROM prompt_versions v
		 JOIN prompts p ON p.id = v.prompt_id
		 WHERE v.id = $1 AND v.prompt_id = $2 AND p.user_id = $3`, versionID, promptID, userID)

	v, err := scanVersion(row)
	if err != nil {
		return nil, notFoundWrap(err, "get version %s", versionID)
	}
	return &v, nil
}

// CreateVersion inserts an immutable version row, repoints the prompt's
// current-version pointer, bumps updated_at, and records the audit event when
// one is given, all in one transaction. Returns the updated prompt.
func (s *Store) CreateVersion(ctx context.Context, userID string, v *prompt.Version, event *run.Event) (*prompt.Prompt, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	// Ownership gate. Row-locks the prompt so concurrent edits serialize on
	// the current-version pointer.
	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT true FROM prompts WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		v.PromptID, userID,
	).Scan(&exists)
	if err != nil {
		return nil, notFoundWrap(err, "create version for prompt %s", v.PromptID)
	}

	err = tx.QueryRow(ctx,
		`INSERT INTO prompt_versions (prompt_id, title, content, summary, created_by)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		v.PromptID, v.Title, v.Content, v.Summary, v.CreatedBy,
	).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert version: %w", err)
	}

	row := tx.QueryRow(ctx,
		`UPDATE prompts SET current_version_id = $2, title = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING id, user_id, title, catalog_id, current_version_id, last_run_id, created_at, updated_at`,
		v.PromptID, v.ID, v.Title)
	p, err := scanPrompt(row)
	if err != nil {
		return nil, fmt.Errorf("repoint prompt %s: %w", v.PromptID, err)
	}

	if event != nil {
		event.SetPayloadField("new_version_id", v.ID)
		if err := insertEvent(ctx, tx, event); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit version: %w", err)
	}
	return &p, nil
}

func scanVersion(row scannable) (prompt.Version, error) {
	var v prompt.Version
	err := row.Scan(&v.ID, &v.PromptID, &v.Title, &v.Content, &v.Summary, &v.CreatedBy, &v.CreatedAt)
	return v, err
}
