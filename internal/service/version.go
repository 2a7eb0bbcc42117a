package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/promptana/promptana/internal/domain"
	"github.com/promptana/promptana/internal/domain/prompt"
	"github.com/promptana/promptana/internal/domain/run"
	"github.com/promptana/promptana/internal/port/database"
)

// VersionService manages the append-only version history of prompts.
type VersionService struct {
	store database.Store
}

// NewVersionService creates a new VersionService.
func NewVersionService(store database.Store) *VersionService {
	return &VersionService{store: store}
}

// List returns a page of a prompt's versions, newest first.
func (s *VersionService) List(ctx context.Context, userID, promptID string, page, pageSize int) (domain.Page[prompt.Version], error) {
	page, pageSize = domain.NormalizePage(page, pageSize)

	if _, err := s.store.GetPrompt(ctx, userID, promptID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Page[prompt.Version]{}, domain.NotFound("prompt not found")
		}
		return domain.Page[prompt.Version]{}, err
	}

	items, total, err := s.store.ListVersions(ctx, userID, promptID, page, pageSize)
	if err != nil {
		return domain.Page[prompt.Version]{}, fmt.Errorf("list versions: %w", err)
	}
	return domain.NewPage(items, page, pageSize, total), nil
}

// Get returns one version of a prompt.
func (s *VersionService) Get(ctx context.Context, userID, promptID, versionID string) (*prompt.Version, error) {
	v, err := s.store.GetVersion(ctx, userID, promptID, versionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("version not found")
		}
		return nil, err
	}
	return v, nil
}

// Create appends a new version and advances the prompt's current-version
// pointer; both come back so callers see the repointed state. A version
// sourced from "improve" additionally records an improve_saved audit event in
// the same transaction. BaseVersionID, when given, must reference an existing
// version of this prompt; it is provenance metadata only.
func (s *VersionService) Create(ctx context.Context, userID, promptID string, req prompt.CreateVersionRequest) (*prompt.VersionResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.store.GetPrompt(ctx, userID, promptID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("prompt not found")
		}
		return nil, err
	}

	if req.BaseVersionID != nil {
		if _, err := s.store.GetVersion(ctx, userID, promptID, *req.BaseVersionID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ValidationFailed(map[string]string{
					"base_version_id": "must reference an existing version of this prompt",
				})
			}
			return nil, err
		}
	}

	v := &prompt.Version{
		PromptID:  promptID,
		Title:     req.Title,
		Content:   req.Content,
		Summary:   req.Summary,
		CreatedBy: string(req.Source),
	}

	var ev *run.Event
	if req.Source == prompt.SourceImprove {
		payload, _ := json.Marshal(map[string]any{
			"base_version_id": req.BaseVersionID,
		})
		ev = &run.Event{
			UserID:   userID,
			Type:     run.EventImproveSaved,
			PromptID: &promptID,
			Payload:  payload,
		}
	}

	p, err := s.store.CreateVersion(ctx, userID, v, ev)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("prompt not found")
		}
		return nil, fmt.Errorf("create version: %w", err)
	}
	return &prompt.VersionResult{Version: v, Prompt: p}, nil
}

// Restore makes an older version current by copying it into a brand-new
// version. History is never rewritten; the restored-from version stays
// untouched, and a restore audit event is recorded.
func (s *VersionService) Restore(ctx context.Context, userID, promptID, versionID string, req prompt.RestoreRequest) (*prompt.VersionResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	src, err := s.store.GetVersion(ctx, userID, promptID, versionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("version not found")
		}
		return nil, err
	}

	summary := fmt.Sprintf("Restored from version %s", versionID)
	if req.Summary != nil {
		summary = *req.Summary
	}

	v := &prompt.Version{
		PromptID:  promptID,
		Title:     src.Title,
		Content:   src.Content,
		Summary:   &summary,
		CreatedBy: string(prompt.SourceManual),
	}

	payload, _ := json.Marshal(map[string]string{
		"restored_from_version_id": versionID,
	})
	ev := &run.Event{
		UserID:   userID,
		Type:     run.EventRestore,
		PromptID: &promptID,
		Payload:  payload,
	}

	p, err := s.store.CreateVersion(ctx, userID, v, ev)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("prompt not found")
		}
		return nil, fmt.Errorf("restore version: %w", err)
	}
	return &prompt.VersionResult{Version: v, Prompt: p}, nil
}
