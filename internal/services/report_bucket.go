package services

import (
	"time"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/repositories"
)

// Report granularities.
const (
	GranularityDaily   = "daily"
	GranularityWeekly  = "weekly"
	GranularityMonthly = "monthly"
)

// bucketStart truncates t to the start of its calendar bucket in the given
// location. Weeks start on Monday.
func bucketStart(t time.Time, granularity string, loc *time.Location) time.Time {
	t = t.In(loc)
	switch granularity {
	case GranularityWeekly:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case GranularityMonthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
	default:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	}
}

// nextBucket advances a bucket start to the following bucket.
func nextBucket(start time.Time, granularity string) time.Time {
	switch granularity {
	case GranularityWeekly:
		return start.AddDate(0, 0, 7)
	case GranularityMonthly:
		return start.AddDate(0, 1, 0)
	default:
		return start.AddDate(0, 0, 1)
	}
}

func bucketLabel(start time.Time, granularity string) string {
	if granularity == GranularityMonthly {
		return start.Format("2006-01")
	}
	return start.Format("2006-01-02")
}

// BucketRevenue aggregates payment rows into contiguous calendar buckets
// between from and to, computed in a fixed timezone offset. Buckets with no
// payments are still emitted with zero totals so charts have no gaps.
func BucketRevenue(rows []repositories.RevenueRow, granularity string, offsetMinutes int, from, to time.Time) models.RevenueReport {
	loc := time.FixedZone("report", offsetMinutes*60)

	report := models.RevenueReport{
		Granularity: granularity,
		From:        from,
		To:          to,
	}
	if !from.Before(to) {
		return report
	}

	index := map[int64]int{}
	for start := bucketStart(from, granularity, loc); start.Before(to); start = nextBucket(start, granularity) {
		index[start.Unix()] = len(report.Buckets)
		report.Buckets = append(report.Buckets, models.RevenueBucket{
			Label:    bucketLabel(start, granularity),
			Start:    start,
			ByType:   map[string]float64{},
			ByMethod: map[string]float64{},
		})
	}

	for _, row := range rows {
		start := bucketStart(row.CreatedAt, granularity, loc)
		i, ok := index[start.Unix()]
		if !ok {
			continue
		}
		bucket := &report.Buckets[i]
		bucket.Total += row.Amount
		bucket.ByType[row.PaymentType] += row.Amount
		bucket.ByMethod[row.PaymentMethod] += row.Amount
		report.Total += row.Amount
	}
	return report
}
