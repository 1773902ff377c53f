package models

import "time"

// Settings is the singleton configuration row.
type Settings struct {
	GymName               string    `json:"gym_name" db:"gym_name"`
	GracePeriodDays       int       `json:"grace_period_days" db:"grace_period_days"`
	WalkInFee             float64   `json:"walk_in_fee" db:"walk_in_fee"`
	TimezoneOffsetMinutes int       `json:"timezone_offset_minutes" db:"timezone_offset_minutes"`
	Currency              string    `json:"currency" db:"currency"`
	UpdatedAt             time.Time `json:"updated_at" db:"updated_at"`
}
