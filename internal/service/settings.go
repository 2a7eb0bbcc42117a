package service

import (
	"context"
	"fmt"

	"github.com/promptana/promptana/internal/domain/settings"
	"github.com/promptana/promptana/internal/port/database"
)

// SettingsService manages per-user settings.
type SettingsService struct {
	store database.Store
}

// NewSettingsService creates a new SettingsService.
func NewSettingsService(store database.Store) *SettingsService {
	return &SettingsService{store: store}
}

// Get returns the user's settings, creating the row with defaults on first
// access.
func (s *SettingsService) Get(ctx context.Context, userID string) (*settings.UserSettings, error) {
	us, err := s.store.GetOrCreateSettings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return us, nil
}

// Update replaces the retention policy.
func (s *SettingsService) Update(ctx context.Context, userID string, req settings.UpdateRequest) (*settings.UserSettings, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	us, err := s.store.UpdateSettings(ctx, userID, req.Retention)
	if err != nil {
		return nil, fmt.Errorf("update settings: %w", err)
	}
	return us, nil
}
