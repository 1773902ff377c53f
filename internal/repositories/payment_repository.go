package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gym_crm_backend/internal/models"

	"github.com/lib/pq"
)

// PaymentRepository defines the append-only payment ledger.
type PaymentRepository interface {
	CreatePayment(executor SQLExecutor, payment *models.Payment) (int64, error)
	GetPaymentByID(id int64) (*models.Payment, error)
	GetPayments(filters models.PaymentFilters) ([]models.Payment, int, error)
	SumByMethodSince(shiftID int64, since time.Time) (map[string]float64, error)
	SumByTypeSince(shiftID int64, since time.Time) (map[string]float64, error)
}

type paymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository creates a new instance of PaymentRepository.
func NewPaymentRepository(db *sql.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) CreatePayment(executor SQLExecutor, payment *models.Payment) (int64, error) {
	query := `INSERT INTO payments (receipt_no, amount, payment_type, payment_method, member_id, shift_id, coupon_id, notes, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id`

	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now()
	}

	err := executor.QueryRow(query,
		payment.ReceiptNo, payment.Amount, payment.PaymentType, payment.PaymentMethod,
		payment.MemberID, payment.ShiftID, payment.CouponID, payment.Notes, payment.CreatedAt,
	).Scan(&payment.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code.Name() == "unique_violation" {
				return 0, fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
			}
			if pqErr.Code.Name() == "foreign_key_violation" {
				return 0, fmt.Errorf("%w: payment references missing record (constraint: %s)", ErrNotFound, pqErr.Constraint)
			}
		}
		return 0, fmt.Errorf("%w: creating payment: %v", ErrDatabaseError, err)
	}
	return payment.ID, nil
}

func (r *paymentRepository) GetPaymentByID(id int64) (*models.Payment, error) {
	var p models.Payment
	query := `SELECT p.id, p.receipt_no, p.amount, p.payment_type, p.payment_method,
	                 p.member_id, p.shift_id, p.coupon_id, p.notes, p.created_at, m.full_name
	          FROM payments p
	          LEFT JOIN members m ON p.member_id = m.id
	          WHERE p.id = $1`
	err := r.db.QueryRow(query, id).Scan(
		&p.ID, &p.ReceiptNo, &p.Amount, &p.PaymentType, &p.PaymentMethod,
		&p.MemberID, &p.ShiftID, &p.CouponID, &p.Notes, &p.CreatedAt, &p.MemberName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: getting payment by ID %d: %v", ErrDatabaseError, id, err)
	}
	return &p, nil
}

func (r *paymentRepository) GetPayments(filters models.PaymentFilters) ([]models.Payment, int, error) {
	payments := []models.Payment{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT p.id, p.receipt_no, p.amount, p.payment_type, p.payment_method,
	    p.member_id, p.shift_id, p.coupon_id, p.notes, p.created_at, m.full_name,
	    COUNT(*) OVER() as total_count
	  FROM payments p
	  LEFT JOIN members m ON p.member_id = m.id`)

	var conditions []string
	var args []interface{}
	argCount := 1

	addCondition := func(cond string, value interface{}) {
		conditions = append(conditions, fmt.Sprintf(cond, argCount))
		args = append(args, value)
		argCount++
	}

	if filters.DateFrom != nil {
		addCondition("p.created_at >= $%d", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		addCondition("p.created_at < $%d", *filters.DateTo)
	}
	if filters.PaymentType != nil && *filters.PaymentType != "" {
		addCondition("p.payment_type = $%d", *filters.PaymentType)
	}
	if filters.PaymentMethod != nil && *filters.PaymentMethod != "" {
		addCondition("p.payment_method = $%d", *filters.PaymentMethod)
	}
	if filters.MemberID != nil {
		addCondition("p.member_id = $%d", *filters.MemberID)
	}
	if filters.ShiftID != nil {
		addCondition("p.shift_id = $%d", *filters.ShiftID)
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY p.created_at DESC")

	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCount))
		args = append(args, filters.PageSize)
		argCount++
		if filters.Page > 0 {
			offset := (filters.Page - 1) * filters.PageSize
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCount))
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying payments: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(
			&p.ID, &p.ReceiptNo, &p.Amount, &p.PaymentType, &p.PaymentMethod,
			&p.MemberID, &p.ShiftID, &p.CouponID, &p.Notes, &p.CreatedAt,
			&p.MemberName, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning payment: %v", ErrDatabaseError, err)
		}
		payments = append(payments, p)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating payment rows: %v", ErrDatabaseError, err)
	}
	return payments, totalCount, nil
}

// SumByMethodSince totals payments on a shift since its start, grouped by method.
func (r *paymentRepository) SumByMethodSince(shiftID int64, since time.Time) (map[string]float64, error) {
	return r.sumGrouped(`payment_method`, shiftID, since)
}

// SumByTypeSince totals payments on a shift since its start, grouped by revenue category.
func (r *paymentRepository) SumByTypeSince(shiftID int64, since time.Time) (map[string]float64, error) {
	return r.sumGrouped(`payment_type`, shiftID, since)
}

func (r *paymentRepository) sumGrouped(column string, shiftID int64, since time.Time) (map[string]float64, error) {
	// column is one of two compile-time constants, never user input.
	query := fmt.Sprintf(
		`SELECT %s, COALESCE(SUM(amount), 0) FROM payments WHERE shift_id = $1 AND created_at >= $2 GROUP BY %s`,
		column, column)

	sums := map[string]float64{}
	rows, err := r.db.Query(query, shiftID, since)
	if err != nil {
		return nil, fmt.Errorf("%w: summing payments for shift %d: %v", ErrDatabaseError, shiftID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		var total float64
		if err := rows.Scan(&key, &total); err != nil {
			return nil, fmt.Errorf("%w: scanning payment sum: %v", ErrDatabaseError, err)
		}
		sums[key] = total
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating payment sums: %v", ErrDatabaseError, err)
	}
	return sums, nil
}
