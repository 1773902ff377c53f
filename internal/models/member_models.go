package models

import "time"

// Membership status values. Suspended is sticky and set explicitly; the other
// three are derived from expiry_date and the configured grace period.
const (
	StatusActive    = "active"
	StatusGrace     = "grace"
	StatusExpired   = "expired"
	StatusSuspended = "suspended"
)

// Member types.
const (
	MemberTypeAdult = "adult"
	MemberTypeYouth = "youth"
)

// Member represents a gym member.
type Member struct {
	ID         int64     `json:"id" db:"id"`
	MemberID   string    `json:"member_id" db:"member_id"`
	FullName   string    `json:"full_name" db:"full_name"`
	NRIC       string    `json:"nric" db:"nric"`
	Phone      *string   `json:"phone,omitempty" db:"phone"`
	Email      *string   `json:"email,omitempty" db:"email"`
	MemberType string    `json:"member_type" db:"member_type"`
	PlanID     *int64    `json:"plan_id,omitempty" db:"plan_id"`
	Status     string    `json:"status" db:"status"`
	ExpiryDate time.Time `json:"expiry_date" db:"expiry_date"`
	Notes      *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// MembershipPlan is configuration data describing a purchasable membership.
type MembershipPlan struct {
	ID              int64     `json:"id" db:"id"`
	Name            string    `json:"name" db:"name"`
	MemberType      string    `json:"member_type" db:"member_type"`
	Price           float64   `json:"price" db:"price"`
	DurationMonths  int       `json:"duration_months" db:"duration_months"`
	FreeMonths      int       `json:"free_months" db:"free_months"`
	RegistrationFee float64   `json:"registration_fee" db:"registration_fee"`
	IsActive        bool      `json:"is_active" db:"is_active"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}
