// Package settings defines per-user settings.
package settings

import (
	"time"

	"github.com/promptana/promptana/internal/domain"
)

// RetentionPolicy governs how long run data is kept. Enforcement happens
// elsewhere; this is the stored preference.
type RetentionPolicy string

const (
	RetentionFourteenDays RetentionPolicy = "fourteen_days"
	RetentionThirtyDays   RetentionPolicy = "thirty_days"
	RetentionAlways       RetentionPolicy = "always"
)

// DefaultRetention is applied when the row is lazily created on first access.
const DefaultRetention = RetentionThirtyDays

// ValidPolicies is the allow-list for the retention field.
var ValidPolicies = map[RetentionPolicy]bool{
	RetentionFourteenDays: true,
	RetentionThirtyDays:   true,
	RetentionAlways:       true,
}

// UserSettings is the one-row-per-user settings record.
type UserSettings struct {
	UserID    string          `json:"-"`
	Retention RetentionPolicy `json:"retention"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// UpdateRequest replaces the retention policy.
type UpdateRequest struct {
	Retention RetentionPolicy `json:"retention"`
}

// Validate checks the retention enum.
func (r *UpdateRequest) Validate() error {
	if !ValidPolicies[r.Retention] {
		return domain.ValidationFailed(map[string]string{
			"retention": `must be one of "fourteen_days", "thirty_days", "always"`,
		})
	}
	return nil
}
