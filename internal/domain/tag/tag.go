// Package tag defines the Tag domain entity.
package tag

import (
	"strings"
	"time"

	"github.com/promptana/promptana/internal/domain"
)

// MaxNameLen bounds tag names.
const MaxNameLen = 64

// Tag labels prompts for one user. Names are unique per user under
// case-insensitive comparison; deleting a tag cascades its associations.
type Tag struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateRequest holds the fields needed to create a tag.
type CreateRequest struct {
	Name string `json:"name"`
}

// Validate collects every offending field instead of failing fast.
func (r *CreateRequest) Validate() error {
	details := map[string]string{}
	validateName(details, r.Name)
	if len(details) > 0 {
		return domain.ValidationFailed(details)
	}
	return nil
}

// UpdateRequest renames a tag.
type UpdateRequest struct {
	Name string `json:"name"`
}

// Validate collects every offending field instead of failing fast.
func (r *UpdateRequest) Validate() error {
	details := map[string]string{}
	validateName(details, r.Name)
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
