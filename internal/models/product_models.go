package models

import "time"

// Stock history reasons.
const (
	StockReasonSale       = "sale"
	StockReasonAdjustment = "adjustment"
	StockReasonShiftCount = "shift_count"
	StockReasonRestock    = "restock"
)

// Product is a POS inventory item.
type Product struct {
	ID                int64     `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	SKU               *string   `json:"sku,omitempty" db:"sku"`
	Price             float64   `json:"price" db:"price"`
	Stock             int       `json:"stock" db:"stock"`
	LowStockThreshold *int      `json:"low_stock_threshold,omitempty" db:"low_stock_threshold"`
	IsActive          bool      `json:"is_active" db:"is_active"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// StockHistory is one append-only stock adjustment row.
type StockHistory struct {
	ID         int64     `json:"id" db:"id"`
	ProductID  int64     `json:"product_id" db:"product_id"`
	Change     int       `json:"change" db:"change"`
	Reason     string    `json:"reason" db:"reason"`
	Reference  *string   `json:"reference,omitempty" db:"reference"`
	RecordedBy *int64    `json:"recorded_by,omitempty" db:"recorded_by"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
