package models

import "time"

// Shift is one cashier session. System totals, manual counts and variances are
// filled in exactly once when the shift is closed.
type Shift struct {
	ID            int64      `json:"id" db:"id"`
	CashierID     int64      `json:"cashier_id" db:"cashier_id"`
	OpeningFloat  float64    `json:"opening_float" db:"opening_float"`
	StartedAt     time.Time  `json:"started_at" db:"started_at"`
	EndedAt       *time.Time `json:"ended_at,omitempty" db:"ended_at"`
	SystemCash    *float64   `json:"system_cash,omitempty" db:"system_cash"`
	SystemQR      *float64   `json:"system_qr,omitempty" db:"system_qr"`
	SystemBank    *float64   `json:"system_bank,omitempty" db:"system_bank"`
	ManualCash    *float64   `json:"manual_cash,omitempty" db:"manual_cash"`
	ManualQR      *float64   `json:"manual_qr,omitempty" db:"manual_qr"`
	ManualBank    *float64   `json:"manual_bank,omitempty" db:"manual_bank"`
	VarianceCash  *float64   `json:"variance_cash,omitempty" db:"variance_cash"`
	VarianceQR    *float64   `json:"variance_qr,omitempty" db:"variance_qr"`
	VarianceBank  *float64   `json:"variance_bank,omitempty" db:"variance_bank"`
	TotalVariance *float64   `json:"total_variance,omitempty" db:"total_variance"`
	Notes         *string    `json:"notes,omitempty" db:"notes"`

	// CashierName is populated on list queries joining users.
	CashierName *string `json:"cashier_name,omitempty" db:"-"`
}

// ShiftStockCount is a closing stock count captured when a shift ends.
type ShiftStockCount struct {
	ID         int64     `json:"id" db:"id"`
	ShiftID    int64     `json:"shift_id" db:"shift_id"`
	ProductID  int64     `json:"product_id" db:"product_id"`
	CountedQty int       `json:"counted_qty" db:"counted_qty"`
	SystemQty  int       `json:"system_qty" db:"system_qty"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
