package run

import (
	"fmt"

	"github.com/promptana/promptana/internal/domain"
)

// Improve request bounds.
const (
	MinSuggestions     = 1
	MaxSuggestions     = 5
	DefaultSuggestions = 3
	MaxGoalsLen        = 2000
	MaxConstraintsLen  = 2000
)

// ExecuteRequest starts one run of a prompt against a model.
type ExecuteRequest struct {
	Model string `json:"model"`
	Input Input  `json:"input"`
}

// Validate checks the request against the given model allow-list, collecting
// every offending field.
func (r *ExecuteRequest) Validate(allowedModels map[string]bool) error {
	details := map[string]string{}
	if r.Model == "" {
		details["model"] = "must not be empty"
	} else if !allowedModels[r.Model] {
		details["model"] = fmt.Sprintf("model %q is not in the allow-list", r.Model)
	}
	if len(r.Input.ContentOverride) > 50000 {
		details["input.content_override"] = "must be at most 50000 characters"
	}
	if len(details) > 0 {
		return domain.ValidationFailed(details)
	}
	return nil
}

// ImproveRequest asks the model for revised-prompt suggestions. Nothing is
// persisted as a version until the caller separately creates one with
// source "improve".
type ImproveRequest struct {
	Goals       string `json:"goals,omitempty"`
	Constraints string `json:"constraints,omitempty"`
	Count       int    `json:"count,omitempty"`
}

// Validate applies defaults and collects every offending field.
func (r *ImproveRequest) Validate() error {
	details := map[string]string{}
	if r.Count == 0 {
		r.Count = DefaultSuggestions
	}
	if r.Count < MinSuggestions || r.Count > MaxSuggestions {
		details["count"] = fmt.Sprintf("must be between %d and %d", MinSuggestions, MaxSuggestions)
	}
	if len(r.Goals) > MaxGoalsLen {
		details["goals"] = fmt.Sprintf("must be at most %d characters", MaxGoalsLen)
	}
	if len(r.Constraints) > MaxConstraintsLen {
		details["constraints"] = fmt.Sprintf("must be at most %d characters", MaxConstraintsLen)
	}
	if len(details) > 0 {
		return domain.ValidationFailed(details)
	}
	return nil
}

// Suggestion is one candidate revision returned by the improve workflow.
type Suggestion struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	Rationale string `json:"rationale,omitempty"`
}

// ImproveResult is the improve response DTO.
type ImproveResult struct {
	Suggestions []Suggestion `json:"suggestions"`
	Model       string       `json:"model"`
	LatencyMS   int64        `json:"latency_ms"`
	// Fallback is true when the model response was not parseable JSON and
	// the raw text was wrapped as a single suggestion.
	Fallback bool `json:"fallback"`
}
