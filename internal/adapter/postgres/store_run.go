package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/promptana/promptana/internal/domain/run"
)

// CreateRun inserts the run, updates the prompt's last-run pointer, and
// records the audit event when one is given, all in one transaction. Failed
// runs go through the same path so they are never lost.
func (s *Store) CreateRun(ctx context.Context, r *run.Run, event *run.Event) error {
	inputJSON, err := json.Marshal(r.Input)
	if err != nil {
		return fmt.Errorf("marshal run input: %w", err)
	}
	var usageJSON []byte
	if r.Usage != nil {
		usageJSON, err = json.Marshal(r.Usage)
		if err != nil {
			return fmt.Errorf("marshal run usage: %w", err)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	err = tx.QueryRow(ctx,
		`INSERT INTO runs (user_id, prompt_id, model, status, input, output, metadata, usage, latency_ms, error)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING id, created_at`,
		r.UserID, r.PromptID, r.Model, string(r.Status), inputJSON, r.Output,
		[]byte(r.Metadata), usageJSON, r.LatencyMS, r.Error,
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	ct, err := tx.Exec(ctx,
		`UPDATE prompts SET last_run_id = $2 WHERE id = $1 AND user_id = $3`,
		r.PromptID, r.ID, r.UserID)
	if err := execExpectOne(ct, err, "point last run for prompt %s", r.PromptID); err != nil {
		return err
	}

	if event != nil {
		if err := insertEvent(ctx, tx, event); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *Store) GetRun(ctx context.Context, userID, id string) (*run.Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, user_id, prompt_id, model, status, input, output, metadata, usage, latency_ms, error, created_at
		 FROM runs WHERE id = $1 AND user_id = $2`, id, userID)

	r, err := scanRun(row)
	if err != nil {
		return nil, notFoundWrap(err, "get run %s", id)
	}
	return &r, nil
}

func (s *Store) ListRuns(ctx context.Context, userID, promptID string, page, pageSize int) ([]run.Run, int64, error) {
	var total int64
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM runs WHERE prompt_id = $1 AND user_id = $2`,
		promptID, userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count runs: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT id, user_id, prompt_id, model, status, input, output, metadata, usage, latency_ms, error, created_at
		 FROM runs WHERE prompt_id = $1 AND user_id = $2
		 ORDER BY created_at DESC
		 LIMIT %d OFFSET %d`, pageSize, (page-1)*pageSize)
	rows, err := s.pool.Query(ctx, query, promptID, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []run.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, total, rows.Err()
}

// CreateEvent appends a run-event row outside of any other transaction.
func (s *Store) CreateEvent(ctx context.Context, ev *run.Event) error {
	return insertEvent(ctx, s.pool, ev)
}

// execQuerier is satisfied by *pgxpool.Pool and pgx.Tx, letting event inserts
// join an enclosing transaction or run standalone.
type execQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertEvent(ctx context.Context, q execQuerier, ev *run.Event) error {
	payload := []byte(ev.Payload)
	if payload == nil {
		payload = []byte(`{}`)
	}
	err := q.QueryRow(ctx,
		`INSERT INTO run_events (user_id, event_type, prompt_id, payload)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		ev.UserID, string(ev.Type), ev.PromptID, payload,
	).Scan(&ev.ID, &ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert run event: %w", err)
	}
	return nil
}

func scanRun(row scannable) (run.Run, error) {
	var r run.Run
	var inputJSON, metadataJSON, usageJSON []byte
	err := row.Scan(&r.ID, &r.UserID, &r.PromptID, &r.Model, &r.Status, &inputJSON,
		&r.Output, &metadataJSON, &usageJSON, &r.LatencyMS, &r.Error, &r.CreatedAt)
	if err != nil {
		return r, err
	}
	if inputJSON != nil {
		if err := json.Unmarshal(inputJSON, &r.Input); err != nil {
			return r, fmt.Errorf("unmarshal run input: %w", err)
		}
	}
	r.Metadata = metadataJSON
	if usageJSON != nil {
		var u run.Usage
		if err := json.Unmarshal(usageJSON, &u); err != nil {
			return r, fmt.Errorf("unmarshal run usage: %w", err)
		}
		r.Usage = &u
	}
	return r, nil
}
