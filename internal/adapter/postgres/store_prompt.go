package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/promptana/promptana/internal/domain/prompt"
	"github.com/promptana/promptana/internal/domain/run"
	"github.com/promptana/promptana/internal/domain/tag"
)

// ListPrompts filters, sorts, and paginates the user's prompts. Full-text
// search matches against the current version's title and content; relevance
// ordering uses ts_rank and only applies when a search term is present.
func (s *Store) ListPrompts(ctx context.Context, userID string, params prompt.ListParams) ([]prompt.ListItem, int64, error) {
	var (
		conds = []string{"p.user_id = $1"}
		args  = []any{userID}
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	searching := strings.TrimSpace(params.Search) != ""
	if searching {
		conds = append(conds,
			fmt.Sprintf("v.search_vector @@ websearch_to_tsquery('english', %s)", arg(params.Search)))
	}
	if params.TagID != "" {
		conds = append(conds,
			fmt.Sprintf("EXISTS (SELECT 1 FROM prompt_tags pt WHERE pt.prompt_id = p.id AND pt.tag_id = %s)", arg(params.TagID)))
	}
	if params.CatalogID != "" {
		conds = append(conds, fmt.Sprintf("p.catalog_id = %s", arg(params.CatalogID)))
	}

	from := `FROM prompts p
		 LEFT JOIN prompt_versions v ON v.id = p.current_version_id`
	where := "WHERE " + strings.Join(conds, " AND ")

	var total int64
	if err := s.pool.QueryRow(ctx, "SELECT count(*) "+from+" "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count prompts: %w", err)
	}

	orderBy := orderClause(params.Sort, searching, len(args))
	if params.Sort == prompt.SortRelevance && searching {
		// ts_rank needs the query text again as its own argument.
		args = append(args, params.Search)
	}

	query := fmt.Sprintf(
		`SELECT p.id, p.user_id, p.title, p.catalog_id, p.current_version_id, p.last_run_id,
		        p.created_at, p.updated_at,
		        r.id, r.status, r.model, r.latency_ms, r.created_at
		 %s
		 LEFT JOIN runs r ON r.id = p.last_run_id
		 %s
		 ORDER BY %s
		 LIMIT %d OFFSET %d`,
		from, where, orderBy, params.PageSize, (params.Page-1)*params.PageSize)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list prompts: %w", err)
	}
	defer rows.Close()

	var items []prompt.ListItem
	for rows.Next() {
		var (
			it        prompt.ListItem
			runID     *string
			runStatus *string
			runModel  *string
			latencyMS *int64
			runAt     *time.Time
		)
		err := rows.Scan(
			&it.ID, &it.UserID, &it.Title, &it.CatalogID, &it.CurrentVersionID, &it.LastRunID,
			&it.CreatedAt, &it.UpdatedAt,
			&runID, &runStatus, &runModel, &latencyMS, &runAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan prompt: %w", err)
		}
		if runID != nil {
			it.LastRun = &prompt.LastRunSummary{
				RunID:     *runID,
				Status:    *runStatus,
				Model:     *runModel,
				LatencyMS: *latencyMS,
				CreatedAt: *runAt,
			}
		}
		it.Tags = []tag.Tag{}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	if err := s.attachTags(ctx, userID, items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// orderClause maps a sort key to an ORDER BY expression. nArgs is the current
// argument count; relevance appends the search text as the next argument.
func orderClause(sort prompt.SortKey, searching bool, nArgs int) string {
	switch sort {
	case prompt.SortCreatedDesc:
		return "p.created_at DESC"
	case prompt.SortTitleAsc:
		return "lower(p.title) ASC"
	case prompt.SortLastRunDesc:
		return "r.created_at DESC NULLS LAST, p.updated_at DESC"
	case prompt.SortRelevance:
		if searching {
			return fmt.Sprintf("ts_rank(v.search_vector, websearch_to_tsquery('english', $%d)) DESC, p.updated_at DESC", nArgs+1)
		}
		return "p.updated_at DESC"
	default:
		return "p.updated_at DESC"
	}
}

// attachTags loads the tag sets for a page of prompts in one query.
func (s *Store) attachTags(ctx context.Context, userID string, items []prompt.ListItem) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]string, len(items))
	byID := make(map[string]*prompt.ListItem, len(items))
	for i := range items {
		ids[i] = items[i].ID
		byID[items[i].ID] = &items[i]
	}

	rows, err := s.pool.Query(ctx,
		`SELECT pt.prompt_id, t.id, t.user_id, t.name, t.created_at
		 FROM prompt_tags pt
		 JOIN tags t ON t.id = pt.tag_id
		 WHERE pt.prompt_id = ANY($1) AND t.user_id = $2
		 ORDER BY t.name ASC`, ids, userID)
	if err != nil {
		return fmt.Errorf("load prompt tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var promptID string
		var t tag.Tag
		if err := rows.Scan(&promptID, &t.ID, &t.UserID, &t.Name, &t.CreatedAt); err != nil {
			return fmt.Errorf("scan prompt tag: %w", err)
		}
		if it := byID[promptID]; it != nil {
			it.Tags = append(it.Tags, t)
		}
	}
	return rows.Err()
}

func (s *Store) GetPrompt(ctx context.Context, userID, id string) (*prompt.Prompt, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, user_id, title, catalog_id, current_version_id, last_run_id, created_at, updated_at
		 FROM prompts WHERE id = $1 AND user_id = $2`, id, userID)

	p, err := scanPrompt(row)
	if err != nil {
		return nil, notFoundWrap(err, "get prompt %s", id)
	}
	return &p, nil
}

// CreatePrompt inserts the prompt row, its initial version, the tag
// associations, and repoints current_version_id, all in one transaction.
func (s *Store) CreatePrompt(ctx context.Context, p *prompt.Prompt, initial *prompt.Version, tagIDs []string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	err = tx.QueryRow(ctx,
		`INSERT INTO prompts (user_id, title, catalog_id)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		p.UserID, p.Title, p.CatalogID,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert prompt: %w", err)
	}

	initial.PromptID = p.ID
	err = tx.QueryRow(ctx,
		`INSERT INTO prompt_versions (prompt_id, title, content, summary, created_by)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		initial.PromptID, initial.Title, initial.Content, initial.Summary, initial.CreatedBy,
	).Scan(&initial.ID, &initial.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert initial version: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE prompts SET current_version_id = $2 WHERE id = $1`,
		p.ID, initial.ID); err != nil {
		return fmt.Errorf("set current version: %w", err)
	}
	p.CurrentVersionID = &initial.ID

	for _, tagID := range tagIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO prompt_tags (prompt_id, tag_id) VALUES ($1, $2)`,
			p.ID, tagID); err != nil {
			return fmt.Errorf("attach tag %s: %w", tagID, err)
		}
	}

	return tx.Commit(ctx)
}

// UpdatePrompt writes title and catalog assignment. When tagIDs is non-nil the
// tag set is replaced wholesale inside the same transaction.
func (s *Store) UpdatePrompt(ctx context.Context, p *prompt.Prompt, tagIDs *[]string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	err = tx.QueryRow(ctx,
		`UPDATE prompts SET title = $3, catalog_id = $4, updated_at = now()
		 WHERE id = $1 AND user_id = $2
		 RETURNING updated_at`,
		p.ID, p.UserID, p.Title, p.CatalogID,
	).Scan(&p.UpdatedAt)
	if err != nil {
		return notFoundWrap(err, "update prompt %s", p.ID)
	}

	if tagIDs != nil {
		if _, err := tx.Exec(ctx,
			`DELETE FROM prompt_tags WHERE prompt_id = $1`, p.ID); err != nil {
			return fmt.Errorf("clear prompt tags: %w", err)
		}
		for _, tagID := range *tagIDs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO prompt_tags (prompt_id, tag_id) VALUES ($1, $2)`,
				p.ID, tagID); err != nil {
				return fmt.Errorf("attach tag %s: %w", tagID, err)
			}
		}
	}

	return tx.Commit(ctx)
}

// DeletePrompt removes the prompt (versions and runs cascade) and records the
// audit event in the same transaction when event is non-nil.
func (s *Store) DeletePrompt(ctx context.Context, userID, id string, event *run.Event) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	ct, err := tx.Exec(ctx, `DELETE FROM prompts WHERE id = $1 AND user_id = $2`, id, userID)
	if err := execExpectOne(ct, err, "delete prompt %s", id); err != nil {
		return err
	}

	if event != nil {
		if err := insertEvent(ctx, tx, event); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *Store) ListPromptSnapshots(ctx context.Context, userID string, limit int) ([]prompt.Snapshot, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT p.id, v.title, v.content
		 FROM prompts p
		 JOIN prompt_versions v ON v.id = p.current_version_id
		 WHERE p.user_id = $1
		 ORDER BY p.updated_at DESC
		 LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list prompt snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []prompt.Snapshot
	for rows.Next() {
		var sn prompt.Snapshot
		if err := rows.Scan(&sn.ID, &sn.Title, &sn.Content); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snaps = append(snaps, sn)
	}
	return snaps, rows.Err()
}

func scanPrompt(row scannable) (prompt.Prompt, error) {
	var p prompt.Prompt
	err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.CatalogID, &p.CurrentVersionID, &p.LastRunID, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
