package postgres

import (
	"context"
	"fmt"

	"github.com/promptana/promptana/internal/domain/settings"
)

// GetOrCreateSettings returns the user's settings row, lazily creating it
// with defaults on first access.
func (s *Store) GetOrCreateSettings(ctx context.Context, userID string) (*settings.UserSettings, error) {
	var us settings.UserSettings
	err := s.pool.QueryRow(ctx,
		`INSERT INTO user_settings (user_id, retention)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		 RETURNING user_id, retention, created_at, updated_at`,
		userID, string(settings.DefaultRetention),
	).Scan(&us.UserID, &us.Retention, &us.CreatedAt, &us.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get settings for user %s: %w", userID, err)
	}
	return &us, nil
}

func (s *Store) UpdateSettings(ctx context.Context, userID string, retention settings.RetentionPolicy) (*settings.UserSettings, error) {
	var us settings.UserSettings
	err := s.pool.QueryRow(ctx,
		`INSERT INTO user_settings (user_id, retention)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE SET retention = EXCLUDED.retention, updated_at = now()
		 RETURNING user_id, retention, created_at, updated_at`,
		userID, string(retention),
	).Scan(&us.UserID, &us.Retention, &us.CreatedAt, &us.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update settings for user %s: %w", userID, err)
	}
	return &us, nil
}
