package models

import "time"

// Device request statuses.
const (
	DeviceStatusPending  = "pending"
	DeviceStatusApproved = "approved"
	DeviceStatusDenied   = "denied"
)

// DeviceRequest is a device-fingerprint record gating login on new devices.
type DeviceRequest struct {
	ID          int64      `json:"id" db:"id"`
	Token       string     `json:"token" db:"token"`
	Fingerprint string     `json:"fingerprint" db:"fingerprint"`
	Username    *string    `json:"username,omitempty" db:"username"`
	Status      string     `json:"status" db:"status"`
	RequestedAt time.Time  `json:"requested_at" db:"requested_at"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty" db:"resolved_at"`
	ResolvedBy  *int64     `json:"resolved_by,omitempty" db:"resolved_by"`
}
