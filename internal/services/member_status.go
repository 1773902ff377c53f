package services

import (
	"time"

	"gym_crm_backend/internal/models"
)

// DeriveStatus computes a member's status from their expiry date and the
// configured grace period. Suspension is sticky: a suspended member stays
// suspended until explicitly reinstated, regardless of expiry.
//
// The three-way comparison:
//
//	now <  expiry                      -> active
//	now <  expiry + grace_period_days  -> grace
//	otherwise                          -> expired
func DeriveStatus(currentStatus string, expiryDate time.Time, gracePeriodDays int, now time.Time) string {
	if currentStatus == models.StatusSuspended {
		return models.StatusSuspended
	}
	if now.Before(expiryDate) {
		return models.StatusActive
	}
	graceEnd := expiryDate.AddDate(0, 0, gracePeriodDays)
	if now.Before(graceEnd) {
		return models.StatusGrace
	}
	return models.StatusExpired
}
