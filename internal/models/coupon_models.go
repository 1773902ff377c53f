package models

import "time"

// Coupon is a prepaid code redeemable up to a usage cap.
type Coupon struct {
	ID         int64      `json:"id" db:"id"`
	Code       string     `json:"code" db:"code"`
	Value      float64    `json:"value" db:"value"`
	MaxUses    int        `json:"max_uses" db:"max_uses"`
	Uses       int        `json:"uses" db:"uses"`
	ExpiryDate *time.Time `json:"expiry_date,omitempty" db:"expiry_date"`
	IsActive   bool       `json:"is_active" db:"is_active"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// RemainingUses reports how many redemptions are left on the coupon.
func (c Coupon) RemainingUses() int {
	remaining := c.MaxUses - c.Uses
	if remaining < 0 {
		return 0
	}
	return remaining
}

// CouponUse records a single redemption of a coupon.
type CouponUse struct {
	ID        int64     `json:"id" db:"id"`
	CouponID  int64     `json:"coupon_id" db:"coupon_id"`
	MemberID  *int64    `json:"member_id,omitempty" db:"member_id"`
	PaymentID *int64    `json:"payment_id,omitempty" db:"payment_id"`
	UsedAt    time.Time `json:"used_at" db:"used_at"`

	// Populated by usage-search joins.
	CouponCode *string `json:"coupon_code,omitempty" db:"-"`
	MemberName *string `json:"member_name,omitempty" db:"-"`
}
