// Package catalog defines the Catalog domain entity.
package catalog

import (
	"strings"
	"time"

	"github.com/promptana/promptana/internal/domain"
)

// MaxNameLen bounds catalog names; descriptions are capped at MaxDescriptionLen.
const (
	MaxNameLen        = 64
	MaxDescriptionLen = 500
)

// Catalog groups prompts for one user. Names are unique per user under
// case-insensitive comparison.
type Catalog struct {
	ID          string    `json:"id"`
	UserID      string    `json:"-"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateRequest holds the fields needed to create a catalog.
type CreateRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// Validate collects every offending field instead of failing fast.
func (r *CreateRequest) Validate() error {
	details := map[string]string{}
	validateName(details, r.Name)
	if r.Description != nil && len(*r.Description) > MaxDescriptionLen {
		details["description"] = "must be at most 500 characters"
	}
	if len(details) > 0 {
		return domain.ValidationFailed(details)
	}
	return nil
}

// UpdateRequest holds a partial catalog update. Nil fields are left unchanged.
type UpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Validate collects every offending field instead of failing fast.
func (r *UpdateRequest) Validate() error {
	details := map[string]string{}
	if r.Name != nil {
		validateName(details, *r.Name)
	}
	if r.Description != nil && len(*r.Description) > MaxDescriptionLen {
		details["description"] = "must be at most 500 characters"
	}
	if len(details) > 0 {
		return domain.ValidationFailed(details)
	}
	return nil
}

func validateName(details map[string]string, name string) {
	trimmed := strings.TrimSpace(name)
	switch {
	case trimmed == "":
		details["name"] = "must not be empty"
	case len(trimmed) > MaxNameLen:
		details["name"] = "must be at most 64 characters"
	}
}
