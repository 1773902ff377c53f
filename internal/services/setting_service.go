package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/repositories"
)

var ErrSettingsValidation = errors.New("settings validation error")

type UpdateSettingsRequest struct {
	GymName               *string  `json:"gym_name"`
	GracePeriodDays       *int     `json:"grace_period_days"`
	WalkInFee             *float64 `json:"walk_in_fee"`
	TimezoneOffsetMinutes *int     `json:"timezone_offset_minutes"`
	Currency              *string  `json:"currency"`
}

// --- SettingService Interface ---
type SettingService interface {
	GetSettings() (*models.Settings, error)
	UpdateSettings(req UpdateSettingsRequest) (*models.Settings, error)
}

type settingService struct {
	settingRepo repositories.SettingRepository
	db          *sql.DB
}

// NewSettingService creates a new instance of SettingService.
func NewSettingService(sr repositories.SettingRepository, db *sql.DB) SettingService {
	return &settingService{settingRepo: sr, db: db}
}

func (s *settingService) GetSettings() (*models.Settings, error) {
	settings, err := s.settingRepo.GetSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}
	return settings, nil
}

func (s *settingService) UpdateSettings(req UpdateSettingsRequest) (*models.Settings, error) {
	settings, err := s.GetSettings()
	if err != nil {
		return nil, err
	}

	if req.GymName != nil {
		name := strings.TrimSpace(*req.GymName)
		if name == "" {
			return nil, fmt.Errorf("%w: gym name cannot be empty", ErrSettingsValidation)
		}
		settings.GymName = name
	}
	if req.GracePeriodDays != nil {
		if *req.GracePeriodDays < 0 {
			return nil, fmt.Errorf("%w: grace period cannot be negative", ErrSettingsValidation)
		}
		settings.GracePeriodDays = *req.GracePeriodDays
	}
	if req.WalkInFee != nil {
		if *req.WalkInFee < 0 {
			return nil, fmt.Errorf("%w: walk-in fee cannot be negative", ErrSettingsValidation)
		}
		settings.WalkInFee = *req.WalkInFee
	}
	if req.TimezoneOffsetMinutes != nil {
		// Real-world UTC offsets span -12:00 to +14:00.
		if *req.TimezoneOffsetMinutes < -12*60 || *req.TimezoneOffsetMinutes > 14*60 {
			return nil, fmt.Errorf("%w: timezone offset out of range", ErrSettingsValidation)
		}
		settings.TimezoneOffsetMinutes = *req.TimezoneOffsetMinutes
	}
	if req.Currency != nil {
		currency := strings.ToUpper(strings.TrimSpace(*req.Currency))
		if len(currency) != 3 {
			return nil, fmt.Errorf("%w: currency must be a 3-letter code", ErrSettingsValidation)
		}
		settings.Currency = currency
	}

	if err := s.settingRepo.UpdateSettings(s.db, settings); err != nil {
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}
	return settings, nil
}
