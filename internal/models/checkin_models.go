package models

import "time"

// CheckIn records a member entering the gym. The member's derived status at
// the moment of check-in is kept for reporting.
type CheckIn struct {
	ID              int64     `json:"id" db:"id"`
	MemberID        int64     `json:"member_id" db:"member_id"`
	StatusAtCheckin string    `json:"status_at_checkin" db:"status_at_checkin"`
	CheckedInAt     time.Time `json:"checked_in_at" db:"checked_in_at"`

	MemberName *string `json:"member_name,omitempty" db:"-"`
}
