package prompt

import (
	"fmt"
	"strings"

	"github.com/promptana/promptana/internal/domain"
)

// CreateRequest holds the fields needed to create a prompt with its initial
// version.
type CreateRequest struct {
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Summary   *string  `json:"summary,omitempty"`
	CatalogID *string  `json:"catalog_id,omitempty"`
	TagIDs    []string `json:"tag_ids,omitempty"`
}

// Validate collects every offending field instead of failing fast.
func (r *CreateRequest) Validate() error {
	details := map[string]string{}
	validateTitle(details, r.Title)
	validateContent(details, r.Content)
	validateSummary(details, r.Summary)
	if len(r.TagIDs) > MaxTags {
		details["tag_ids"] = fmt.Sprintf("at most %d tags per prompt", MaxTags)
	}
	if len(details) > 0 {
		return domain.ValidationFailed(details)
	}
	return nil
}

// UpdateRequest holds a partial prompt update. Nil fields are left unchanged;
// TagIDs, when present, replaces the full tag set.
type UpdateRequest struct {
	Title     *string   `json:"title,omitempty"`
	CatalogID *string   `json:"catalog_id,omitempty"`
	TagIDs    *[]string `json:"tag_ids,omitempty"`
}

// Validate collects every offending field instead of failing fast.
func (r *UpdateRequest) Validate() error {
	details := map[string]string{}
	if r.Title != nil {
		validateTitle(details, *r.Title)
	}
	if r.TagIDs != nil && len(*r.TagIDs) > MaxTags {
		details["tag_ids"] = fmt.Sprintf("at most %d tags per prompt", MaxTags)
	}
	if len(details) > 0 {
		return domain.ValidationFailed(details)
	}
	return nil
}

// CreateVersionRequest holds the fields needed to create a new version and
// advance the prompt's current-version pointer.
type CreateVersionRequest struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Summary *string `json:"summary,omitempty"`
	Source  Source  `json:"source"`
	// BaseVersionID is provenance metadata only: it must reference an
	// existing version of the same prompt, but is never used for merging.
	BaseVersionID *string `json:"base_version_id,omitempty"`
}

// Validate collects every offending field instead of failing fast.
func (r *CreateVersionRequest) Validate() error {
	details := map[string]string{}
	validateTitle(details, r.Title)
	validateContent(details, r.Content)
	validateSummary(details, r.Summary)
	if r.Source == "" {
		r.Source = SourceManual
	}
	if r.Source != SourceManual && r.Source != SourceImprove {
		details["source"] = `must be "manual" or "improve"`
	}
	if len(details) > 0 {
		return domain.ValidationFailed(details)
	}
	return nil
}

// RestoreRequest optionally overrides the default restore summary.
type RestoreRequest struct {
	Summary *string `json:"summary,omitempty"`
}

// Validate collects every offending field instead of failing fast.
func (r *RestoreRequest) Validate() error {
	details := map[string]string{}
	validateSummary(details, r.Summary)
	if len(details) > 0 {
		return domain.ValidationFailed(details)
	}
	return nil
}

func validateTitle(details map[string]string, title string) {
	trimmed := strings.TrimSpace(title)
	switch {
	case trimmed == "":
		details["title"] = "must not be empty"
	case len(trimmed) > MaxTitleLen:
		details["title"] = fmt.Sprintf("must be at most %d characters", MaxTitleLen)
	}
}

func validateContent(details map[string]string, content string) {
	switch {
	case strings.TrimSpace(content) == "":
		details["content"] = "must not be empty"
	case len(content) > MaxContentLen:
		details["content"] = fmt.Sprintf("must be at most %d characters", MaxContentLen)
	}
}

func validateSummary(details map[string]string, summary *string) {
	if summary != nil && len(*summary) > MaxSummaryLen {
		details["summary"] = fmt.Sprintf("must be at most %d characters", MaxSummaryLen)
	}
}
