package services

import (
	"testing"
	"time"

	"gym_crm_backend/internal/models"
)

func TestDeriveStatus(t *testing.T) {
	expiry := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		currentStatus string
		expiry        time.Time
		graceDays     int
		now           time.Time
		want          string
	}{
		{
			name:          "before expiry is active",
			currentStatus: models.StatusActive,
			expiry:        expiry,
			graceDays:     7,
			now:           time.Date(2025, 1, 9, 23, 59, 0, 0, time.UTC),
			want:          models.StatusActive,
		},
		{
			name:          "inside grace window",
			currentStatus: models.StatusActive,
			expiry:        expiry,
			graceDays:     7,
			now:           time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC),
			want:          models.StatusGrace,
		},
		{
			name:          "last grace moment",
			currentStatus: models.StatusActive,
			expiry:        expiry,
			graceDays:     7,
			now:           time.Date(2025, 1, 16, 23, 59, 59, 0, time.UTC),
			want:          models.StatusGrace,
		},
		{
			name:          "grace window end is expired",
			currentStatus: models.StatusActive,
			expiry:        expiry,
			graceDays:     7,
			now:           time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC),
			want:          models.StatusExpired,
		},
		{
			name:          "well past grace",
			currentStatus: models.StatusGrace,
			expiry:        expiry,
			graceDays:     7,
			now:           time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
			want:          models.StatusExpired,
		},
		{
			name:          "zero grace goes straight to expired",
			currentStatus: models.StatusActive,
			expiry:        expiry,
			graceDays:     0,
			now:           expiry,
			want:          models.StatusExpired,
		},
		{
			name:          "exactly at expiry enters grace",
			currentStatus: models.StatusActive,
			expiry:        expiry,
			graceDays:     7,
			now:           expiry,
			want:          models.StatusGrace,
		},
		{
			name:          "suspended is sticky before expiry",
			currentStatus: models.StatusSuspended,
			expiry:        expiry,
			graceDays:     7,
			now:           time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
			want:          models.StatusSuspended,
		},
		{
			name:          "suspended is sticky after expiry",
			currentStatus: models.StatusSuspended,
			expiry:        expiry,
			graceDays:     7,
			now:           time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			want:          models.StatusSuspended,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveStatus(tt.currentStatus, tt.expiry, tt.graceDays, tt.now)
			if got != tt.want {
				t.Errorf("DeriveStatus(%q, %v, %d, %v) = %q, want %q",
					tt.currentStatus, tt.expiry, tt.graceDays, tt.now, got, tt.want)
			}
		})
	}
}
