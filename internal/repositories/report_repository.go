package repositories

import (
	"database/sql"
	"fmt"
	"time"
)

// RevenueRow is one payment projected for report aggregation.
type RevenueRow struct {
	CreatedAt     time.Time
	PaymentType   string
	PaymentMethod string
	Amount        float64
}

// ReportRepository defines the read queries backing reports. Bucketing and
// totalling happen in the service layer so they stay pure and testable.
type ReportRepository interface {
	GetRevenueRows(from, to time.Time) ([]RevenueRow, error)
	SumRevenueByType(from, to time.Time) (map[string]float64, error)
}

type reportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new instance of ReportRepository.
func NewReportRepository(db *sql.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) GetRevenueRows(from, to time.Time) ([]RevenueRow, error) {
	rows, err := r.db.Query(
		`SELECT created_at, payment_type, payment_method, amount
		 FROM payments WHERE created_at >= $1 AND created_at < $2
		 ORDER BY created_at ASC`, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: querying revenue rows: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var result []RevenueRow
	for rows.Next() {
		var row RevenueRow
		if err := rows.Scan(&row.CreatedAt, &row.PaymentType, &row.PaymentMethod, &row.Amount); err != nil {
			return nil, fmt.Errorf("%w: scanning revenue row: %v", ErrDatabaseError, err)
		}
		result = append(result, row)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating revenue rows: %v", ErrDatabaseError, err)
	}
	return result, nil
}

func (r *reportRepository) SumRevenueByType(from, to time.Time) (map[string]float64, error) {
	sums := map[string]float64{}
	rows, err := r.db.Query(
		`SELECT payment_type, COALESCE(SUM(amount), 0)
		 FROM payments WHERE created_at >= $1 AND created_at < $2
		 GROUP BY payment_type`, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: summing revenue by type: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var paymentType string
		var total float64
		if err := rows.Scan(&paymentType, &total); err != nil {
			return nil, fmt.Errorf("%w: scanning revenue sum: %v", ErrDatabaseError, err)
		}
		sums[paymentType] = total
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating revenue sums: %v", ErrDatabaseError, err)
	}
	return sums, nil
}
