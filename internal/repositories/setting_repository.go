package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gym_crm_backend/internal/models"
)

// SettingRepository defines access to the singleton settings row.
type SettingRepository interface {
	GetSettings() (*models.Settings, error)
	UpdateSettings(executor SQLExecutor, settings *models.Settings) error
}

type settingRepository struct {
	db *sql.DB
}

// NewSettingRepository creates a new instance of SettingRepository.
func NewSettingRepository(db *sql.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) GetSettings() (*models.Settings, error) {
	var s models.Settings
	query := `SELECT gym_name, grace_period_days, walk_in_fee, timezone_offset_minutes, currency, updated_at
	          FROM settings WHERE id = 1`
	err := r.db.QueryRow(query).Scan(
		&s.GymName, &s.GracePeriodDays, &s.WalkInFee,
		&s.TimezoneOffsetMinutes, &s.Currency, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting settings: %v", ErrDatabaseError, err)
	}
	return &s, nil
}

// UpdateSettings upserts the single settings row.
func (r *settingRepository) UpdateSettings(executor SQLExecutor, settings *models.Settings) error {
	query := `INSERT INTO settings (id, gym_name, grace_period_days, walk_in_fee, timezone_offset_minutes, currency, updated_at)
	          VALUES (1, $1, $2, $3, $4, $5, $6)
	          ON CONFLICT (id) DO UPDATE SET
	            gym_name = EXCLUDED.gym_name,
	            grace_period_days = EXCLUDED.grace_period_days,
	            walk_in_fee = EXCLUDED.walk_in_fee,
	            timezone_offset_minutes = EXCLUDED.timezone_offset_minutes,
	            currency = EXCLUDED.currency,
	            updated_at = EXCLUDED.updated_at`

	settings.UpdatedAt = time.Now()
	_, err := executor.Exec(query,
		settings.GymName, settings.GracePeriodDays, settings.WalkInFee,
		settings.TimezoneOffsetMinutes, settings.Currency, settings.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: updating settings: %v", ErrDatabaseError, err)
	}
	return nil
}
