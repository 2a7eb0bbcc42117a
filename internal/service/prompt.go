package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/promptana/promptana/internal/domain"
	"github.com/promptana/promptana/internal/domain/prompt"
	"github.com/promptana/promptana/internal/domain/run"
	"github.com/promptana/promptana/internal/domain/tag"
	"github.com/promptana/promptana/internal/port/database"
)

// PromptService manages prompts, their tag sets, and catalog assignment.
type PromptService struct {
	store database.Store
}

// NewPromptService creates a new PromptService.
func NewPromptService(store database.Store) *PromptService {
	return &PromptService{store: store}
}

// CreateResult is the create-prompt response: the new detail plus any
// near-duplicate warnings.
type CreateResult struct {
	Detail   prompt.Detail      `json:"prompt"`
	Warnings []DuplicateWarning `json:"warnings,omitempty"`
}

// List returns a filtered, sorted page of the user's prompts.
func (s *PromptService) List(ctx context.Context, userID string, params prompt.ListParams) (domain.Page[prompt.ListItem], error) {
	params.Page, params.PageSize = domain.NormalizePage(params.Page, params.PageSize)
	if params.Sort == "" {
		params.Sort = prompt.SortUpdatedDesc
	}
	if !prompt.ValidSortKeys[params.Sort] {
		return domain.Page[prompt.ListItem]{}, domain.ValidationFailed(map[string]string{
			"sort": fmt.Sprintf("unknown sort key %q", params.Sort),
		})
	}

	items, total, err := s.store.ListPrompts(ctx, userID, params)
	if err != nil {
		return domain.Page[prompt.ListItem]{}, fmt.Errorf("list prompts: %w", err)
	}
	return domain.NewPage(items, params.Page, params.PageSize, total), nil
}

// Get returns the prompt detail: the row, its current version, and its tags.
func (s *PromptService) Get(ctx context.Context, userID, id string) (*prompt.Detail, error) {
	p, err := s.store.GetPrompt(ctx, userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("prompt not found")
		}
		return nil, err
	}
	return s.detail(ctx, userID, p)
}

// Create validates the request, verifies tag and catalog ownership, creates
// the prompt with its initial version atomically, and reports near-duplicate
// warnings without blocking the write.
func (s *PromptService) Create(ctx context.Context, userID string, req prompt.CreateRequest) (*CreateResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkTagOwnership(ctx, userID, req.TagIDs); err != nil {
		return nil, err
	}
	if req.CatalogID != nil {
		if _, err := s.store.GetCatalog(ctx, userID, *req.CatalogID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ValidationFailed(map[string]string{"catalog_id": "catalog does not exist"})
			}
			return nil, err
		}
	}

	warnings, err := s.findDuplicates(ctx, userID, req.Title, req.Content)
	if err != nil {
		// Advisory only; a failed scan must not block creation.
		slog.WarnContext(ctx, "duplicate scan failed", "error", err)
	}

	p := &prompt.Prompt{
		UserID:    userID,
		Title:     req.Title,
		CatalogID: req.CatalogID,
	}
	initial := &prompt.Version{
		Title:     req.Title,
		Content:   req.Content,
		Summary:   req.Summary,
		CreatedBy: string(prompt.SourceManual),
	}
	if err := s.store.CreatePrompt(ctx, p, initial, req.TagIDs); err != nil {
		return nil, fmt.Errorf("create prompt: %w", err)
	}

	tags, err := s.store.ListTagsForPrompt(ctx, userID, p.ID)
	if err != nil {
		return nil, fmt.Errorf("load prompt tags: %w", err)
	}
	return &CreateResult{
		Detail: prompt.Detail{
			Prompt:         *p,
			CurrentVersion: initial,
			Tags:           orEmptyTags(tags),
		},
		Warnings: warnings,
	}, nil
}

// Update applies a partial update. Changing content is not possible here;
// that always goes through version creation.
func (s *PromptService) Update(ctx context.Context, userID, id string, req prompt.UpdateRequest) (*prompt.Detail, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.store.GetPrompt(ctx, userID, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("prompt not found")
		}
		return nil, err
	}

	if req.TagIDs != nil {
		if err := s.checkTagOwnership(ctx, userID, *req.TagIDs); err != nil {
			return nil, err
		}
	}
	if req.CatalogID != nil && *req.CatalogID != "" {
		if _, err := s.store.GetCatalog(ctx, userID, *req.CatalogID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, domain.ValidationFailed(map[string]string{"catalog_id": "catalog does not exist"})
			}
			return nil, err
		}
	}

	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.CatalogID != nil {
		if *req.CatalogID == "" {
			p.CatalogID = nil
		} else {
			p.CatalogID = req.CatalogID
		}
	}

	if err := s.store.UpdatePrompt(ctx, p, req.TagIDs); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NotFound("prompt not found")
		}
		return nil, fmt.Errorf("update prompt: %w", err)
	}
	return s.detail(ctx, userID, p)
}

// Delete removes a prompt with its versions and runs, and appends a delete
// audit event in the same transaction.
func (s *PromptService) Delete(ctx context.Context, userID, id string) error {
	ev := &run.Event{
		UserID:   userID,
		Type:     run.EventDelete,
		PromptID: &id,
	}
	if err := s.store.DeletePrompt(ctx, userID, id, ev); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NotFound("prompt not found")
		}
		return fmt.Errorf("delete prompt: %w", err)
	}
	return nil
}

// checkTagOwnership fails the whole write when any referenced tag does not
// exist or belongs to another user.
func (s *PromptService) checkTagOwnership(ctx context.Context, userID string, tagIDs []string) error {
	if len(tagIDs) == 0 {
		return nil
	}
	n, err := s.store.CountTagsOwned(ctx, userID, tagIDs)
	if err != nil {
		return fmt.Errorf("verify tag ownership: %w", err)
	}
	if n != len(tagIDs) {
		return domain.ValidationFailed(map[string]string{
			"tag_ids": "one or more tags do not exist",
		})
	}
	return nil
}

// findDuplicates compares the candidate against recent prompts and returns
// warnings for close matches.
func (s *PromptService) findDuplicates(ctx context.Context, userID, title, content string) ([]DuplicateWarning, error) {
	snaps, err := s.store.ListPromptSnapshots(ctx, userID, duplicateScanLimit)
	if err != nil {
		return nil, err
	}

	candidate := tokenSet(title + " " + content)
	var warnings []DuplicateWarning
	for _, sn := range snaps {
		sim := jaccard(candidate, tokenSet(sn.Title+" "+sn.Content))
		if sim >= duplicateThreshold {
			warnings = append(warnings, DuplicateWarning{
				PromptID:   sn.ID,
				Title:      sn.Title,
				Similarity: sim,
			})
		}
	}
	return warnings, nil
}

func (s *PromptService) detail(ctx context.Context, userID string, p *prompt.Prompt) (*prompt.Detail, error) {
	d := &prompt.Detail{Prompt: *p, Tags: []tag.Tag{}}

	if p.CurrentVersionID != nil {
		v, err := s.store.GetVersion(ctx, userID, p.ID, *p.CurrentVersionID)
		if err != nil {
			return nil, fmt.Errorf("load current version: %w", err)
		}
		d.CurrentVersion = v
	}

	tags, err := s.store.ListTagsForPrompt(ctx, userID, p.ID)
	if err != nil {
		return nil, fmt.Errorf("load prompt tags: %w", err)
	}
	d.Tags = orEmptyTags(tags)
	return d, nil
}

func orEmptyTags(tags []tag.Tag) []tag.Tag {
	if tags == nil {
		return []tag.Tag{}
	}
	return tags
}
