package services

import (
	"testing"
	"time"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/repositories"
)

func row(ts time.Time, pType, method string, amount float64) repositories.RevenueRow {
	return repositories.RevenueRow{CreatedAt: ts, PaymentType: pType, PaymentMethod: method, Amount: amount}
}

func TestBucketRevenueDaily(t *testing.T) {
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)

	rows := []repositories.RevenueRow{
		row(time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC), models.PaymentTypeRegistration, models.MethodCash, 100),
		row(time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC), models.PaymentTypePOS, models.MethodQR, 15.50),
		row(time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC), models.PaymentTypeRenewal, models.MethodCash, 80),
	}

	report := BucketRevenue(rows, GranularityDaily, 0, from, to)

	if len(report.Buckets) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(report.Buckets))
	}
	if report.Total != 195.50 {
		t.Errorf("report total = %v, want 195.50", report.Total)
	}

	first := report.Buckets[0]
	if first.Label != "2025-03-01" {
		t.Errorf("first bucket label = %q, want 2025-03-01", first.Label)
	}
	if first.Total != 115.50 {
		t.Errorf("first bucket total = %v, want 115.50", first.Total)
	}
	if first.ByType[models.PaymentTypeRegistration] != 100 {
		t.Errorf("registration total = %v, want 100", first.ByType[models.PaymentTypeRegistration])
	}
	if first.ByMethod[models.MethodQR] != 15.50 {
		t.Errorf("qr total = %v, want 15.50", first.ByMethod[models.MethodQR])
	}

	// day with no payments stays present with zero totals
	if report.Buckets[1].Total != 0 {
		t.Errorf("empty day total = %v, want 0", report.Buckets[1].Total)
	}
	if report.Buckets[2].Total != 80 {
		t.Errorf("third bucket total = %v, want 80", report.Buckets[2].Total)
	}
}

func TestBucketRevenueWeeklyStartsMonday(t *testing.T) {
	// 2025-03-05 is a Wednesday; its week starts Monday 2025-03-03.
	from := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)

	rows := []repositories.RevenueRow{
		row(time.Date(2025, 3, 6, 10, 0, 0, 0, time.UTC), models.PaymentTypeWalkIn, models.MethodCash, 10),
		row(time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC), models.PaymentTypeWalkIn, models.MethodCash, 10),
	}

	report := BucketRevenue(rows, GranularityWeekly, 0, from, to)

	if len(report.Buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(report.Buckets))
	}
	if report.Buckets[0].Label != "2025-03-03" {
		t.Errorf("first week label = %q, want 2025-03-03", report.Buckets[0].Label)
	}
	if report.Buckets[1].Label != "2025-03-10" {
		t.Errorf("second week label = %q, want 2025-03-10", report.Buckets[1].Label)
	}
	if report.Buckets[0].Total != 10 || report.Buckets[1].Total != 10 {
		t.Errorf("week totals = %v / %v, want 10 / 10", report.Buckets[0].Total, report.Buckets[1].Total)
	}
}

func TestBucketRevenueMonthly(t *testing.T) {
	from := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	rows := []repositories.RevenueRow{
		row(time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC), models.PaymentTypeRenewal, models.MethodBankTransfer, 200),
		row(time.Date(2025, 3, 31, 23, 0, 0, 0, time.UTC), models.PaymentTypePOS, models.MethodCash, 5),
	}

	report := BucketRevenue(rows, GranularityMonthly, 0, from, to)

	if len(report.Buckets) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(report.Buckets))
	}
	wantLabels := []string{"2025-01", "2025-02", "2025-03"}
	for i, want := range wantLabels {
		if report.Buckets[i].Label != want {
			t.Errorf("bucket %d label = %q, want %q", i, report.Buckets[i].Label, want)
		}
	}
	if report.Buckets[1].Total != 0 {
		t.Errorf("february total = %v, want 0", report.Buckets[1].Total)
	}
}

func TestBucketRevenueTimezoneOffset(t *testing.T) {
	// 2025-03-01 23:30 UTC is already 2025-03-02 in UTC+8.
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.FixedZone("report", 8*3600))
	to := time.Date(2025, 3, 3, 0, 0, 0, 0, time.FixedZone("report", 8*3600))

	rows := []repositories.RevenueRow{
		row(time.Date(2025, 3, 1, 23, 30, 0, 0, time.UTC), models.PaymentTypeWalkIn, models.MethodCash, 10),
	}

	report := BucketRevenue(rows, GranularityDaily, 480, from, to)

	if len(report.Buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(report.Buckets))
	}
	if report.Buckets[0].Total != 0 {
		t.Errorf("first day total = %v, want 0", report.Buckets[0].Total)
	}
	if report.Buckets[1].Total != 10 {
		t.Errorf("second day total = %v, want 10", report.Buckets[1].Total)
	}
}

func TestBucketRevenueEmptyRange(t *testing.T) {
	at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	report := BucketRevenue(nil, GranularityDaily, 0, at, at)
	if len(report.Buckets) != 0 {
		t.Errorf("expected no buckets for empty range, got %d", len(report.Buckets))
	}
	if report.Total != 0 {
		t.Errorf("total = %v, want 0", report.Total)
	}
}
