package models

import "time"

// Payment types, the revenue category of a ledger row.
const (
	PaymentTypeRegistration    = "registration"
	PaymentTypeRenewal         = "renewal"
	PaymentTypeWalkIn          = "walk_in"
	PaymentTypePOS             = "pos"
	PaymentTypeCoupon          = "coupon"
	PaymentTypeGraceSettlement = "grace_settlement"
)

// Payment methods.
const (
	MethodCash         = "cash"
	MethodQR           = "qr"
	MethodBankTransfer = "bank_transfer"
)

// Payment is one append-only ledger row.
type Payment struct {
	ID            int64     `json:"id" db:"id"`
	ReceiptNo     string    `json:"receipt_no" db:"receipt_no"`
	Amount        float64   `json:"amount" db:"amount"`
	PaymentType   string    `json:"payment_type" db:"payment_type"`
	PaymentMethod string    `json:"payment_method" db:"payment_method"`
	MemberID      *int64    `json:"member_id,omitempty" db:"member_id"`
	ShiftID       *int64    `json:"shift_id,omitempty" db:"shift_id"`
	CouponID      *int64    `json:"coupon_id,omitempty" db:"coupon_id"`
	Notes         *string   `json:"notes,omitempty" db:"notes"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`

	// MemberName is populated on list queries joining members.
	MemberName *string `json:"member_name,omitempty" db:"-"`
}

// PaymentFilters narrows payment list queries.
type PaymentFilters struct {
	DateFrom      *time.Time
	DateTo        *time.Time
	PaymentType   *string
	PaymentMethod *string
	MemberID      *int64
	ShiftID       *int64
	Page          int
	PageSize      int
}
