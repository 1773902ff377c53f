package models

import "time"

// DashboardSummary is the aggregate snapshot shown on the admin dashboard.
type DashboardSummary struct {
	ActiveMembers   int     `json:"active_members"`
	GraceMembers    int     `json:"grace_members"`
	ExpiredMembers  int     `json:"expired_members"`
	SuspendedMembers int    `json:"suspended_members"`
	RevenueToday    float64 `json:"revenue_today"`
	RevenueByType   map[string]float64 `json:"revenue_today_by_type"`
	OpenShifts      int     `json:"open_shifts"`
	LowStockCount   int     `json:"low_stock_count"`
	CheckInsToday   int     `json:"check_ins_today"`
}

// RevenueBucket is one calendar bucket of the revenue report.
type RevenueBucket struct {
	Label    string             `json:"label"`
	Start    time.Time          `json:"start"`
	Total    float64            `json:"total"`
	ByType   map[string]float64 `json:"by_type"`
	ByMethod map[string]float64 `json:"by_method"`
}

// RevenueReport is the full bucketed report over a date range.
type RevenueReport struct {
	Granularity string          `json:"granularity"`
	From        time.Time       `json:"from"`
	To          time.Time       `json:"to"`
	Total       float64         `json:"total"`
	Buckets     []RevenueBucket `json:"buckets"`
}
