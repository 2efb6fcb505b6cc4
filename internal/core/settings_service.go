package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/dailywhisker/internal/db"
	"github.com/example/dailywhisker/internal/models"
)

var ErrInvalidSetting = errors.New("invalid setting")

type settingsService struct {
	settingsRepo db.SettingsRepository
	now          func() time.Time
}

// NewSettingsService creates a SettingsService.
func NewSettingsService(settingsRepo db.SettingsRepository) SettingsService {
	return &settingsService{settingsRepo: settingsRepo, now: time.Now}
}

// SaveSettings merges the provided fields into the stored document and stamps updatedAt.
func (s *settingsService) SaveSettings(ctx context.Context, userID string, patch models.SettingsPatch) (*models.Settings, error) {
	if patch.Empty() {
		return nil, fmt.Errorf("%w: no settings provided", ErrInvalidSetting)
	}

	current, _, err := s.LoadSettings(ctx, userID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if patch.CatBorder != nil {
		if !patch.CatBorder.Valid() {
			return nil, fmt.Errorf("%w: catBorder '%s'", ErrInvalidSetting, *patch.CatBorder)
		}
		fields["catBorder"] = string(*patch.CatBorder)
		current.CatBorder = *patch.CatBorder
	}
	if patch.CatBackground != nil {
		if !patch.CatBackground.Valid() {
			return nil, fmt.Errorf("%w: catBackground '%s'", ErrInvalidSetting, *patch.CatBackground)
		}
		fields["catBackground"] = string(*patch.CatBackground)
		current.CatBackground = *patch.CatBackground
	}
	if patch.AppTheme != nil {
		if !patch.AppTheme.Valid() {
			return nil, fmt.Errorf("%w: appTheme '%s'", ErrInvalidSetting, *patch.AppTheme)
		}
		fields["appTheme"] = string(*patch.AppTheme)
		current.AppTheme = *patch.AppTheme
	}

	current.UpdatedAt = s.now().UnixMilli()
	fields["updatedAt"] = current.UpdatedAt

	if err := s.settingsRepo.Merge(ctx, userID, fields); err != nil {
		return nil, err
	}
	return &current, nil
}

// LoadSettings never persists the defaults it fills in.
func (s *settingsService) LoadSettings(ctx context.Context, userID string) (models.Settings, bool, error) {
	stored, err := s.settingsRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return models.DefaultSettings(), false, nil
		}
		return models.Settings{}, false, err
	}
	return stored.WithDefaults(), true, nil
}

// ExportSettings serializes the current settings with a fresh updatedAt.
func (s *settingsService) ExportSettings(ctx context.Context, userID string, format SettingsFormat) ([]byte, error) {
	current, _, err := s.LoadSettings(ctx, userID)
	if err != nil {
		return nil, err
	}
	current.UpdatedAt = s.now().UnixMilli()
	return EncodeSettings(current, format)
}

// ImportSettings parses a settings file without saving it.
func (s *settingsService) ImportSettings(data []byte, format SettingsFormat) (models.Settings, error) {
	if format == "" {
		detected, err := DetectSettingsFormat(data)
		if err != nil {
			return models.Settings{}, err
		}
		format = detected
	}
	return DecodeSettings(data, format)
}
