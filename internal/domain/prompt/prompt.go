// Package prompt defines the Prompt and Version domain entities.
//
// A prompt's content at any point in time is whatever its current-version
// pointer references. Versions are immutable once created: editing a prompt
// always inserts a new version row and repoints the prompt, giving an
// append-only history.
package prompt

import (
	"time"

	"github.com/promptana/promptana/internal/domain/tag"
)

// Validation bounds.
const (
	MaxTitleLen   = 200
	MaxContentLen = 50000
	MaxSummaryLen = 1000
	MaxTags       = 10
)

// Source records how a version came to be.
type Source string

const (
	SourceManual  Source = "manual"
	SourceImprove Source = "improve"
)

// SortKey orders prompt listings.
type SortKey string

const (
	SortUpdatedDesc SortKey = "updatedAtDesc"
	SortCreatedDesc SortKey = "createdAtDesc"
	SortTitleAsc    SortKey = "titleAsc"
	SortLastRunDesc SortKey = "lastRunDesc"
	SortRelevance   SortKey = "relevance"
)

// ValidSortKeys is the allow-list for the sort query parameter.
var ValidSortKeys = map[SortKey]bool{
	SortUpdatedDesc: true,
	SortCreatedDesc: true,
	SortTitleAsc:    true,
	SortLastRunDesc: true,
	SortRelevance:   true,
}

// Prompt is the owning row; its current-version pointer is the single source
// of truth for "what content does this prompt have right now".
type Prompt struct {
	ID               string    `json:"id"`
	UserID           string    `json:"-"`
	Title            string    `json:"title"`
	CatalogID        *string   `json:"catalog_id,omitempty"`
	CurrentVersionID *string   `json:"current_version_id,omitempty"`
	LastRunID        *string   `json:"last_run_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Version is an immutable snapshot of prompt content. No update or delete
// operation exists for versions anywhere in the service or store layer.
type Version struct {
	ID        string    `json:"id"`
	PromptID  string    `json:"prompt_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Summary   *string   `json:"summary,omitempty"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// LastRunSummary surfaces run status on list items without loading the run body.
type LastRunSummary struct {
	RunID     string    `json:"run_id"`
	Status    string    `json:"status"`
	Model     string    `json:"model"`
	LatencyMS int64     `json:"latency_ms"`
	CreatedAt time.Time `json:"created_at"`
}

// ListItem is the prompt list DTO.
type ListItem struct {
	Prompt
	Tags    []tag.Tag       `json:"tags"`
	LastRun *LastRunSummary `json:"last_run,omitempty"`
}

// Detail is the prompt detail DTO: the prompt plus its resolved current
// version and tag set.
type Detail struct {
	Prompt
	CurrentVersion *Version  `json:"current_version,omitempty"`
	Tags           []tag.Tag `json:"tags"`
}

// VersionResult pairs a newly created version with the prompt whose
// current-version pointer it advanced.
type VersionResult struct {
	Version *Version `json:"version"`
	Prompt  *Prompt  `json:"prompt"`
}

// Snapshot is a minimal title/content pair used by duplicate detection.
type Snapshot struct {
	ID      string
	Title   string
	Content string
}

// ListParams filters and orders a prompt listing.
type ListParams struct {
	Page      int
	PageSize  int
	Search    string
	TagID     string
	CatalogID string
	Sort      SortKey
}
