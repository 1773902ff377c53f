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

// ShiftClose carries the terminal reconciliation values written when a shift ends.
type ShiftClose struct {
	SystemCash    float64
	SystemQR      float64
	SystemBank    float64
	ManualCash    float64
	ManualQR      float64
	ManualBank    float64
	VarianceCash  float64
	VarianceQR    float64
	VarianceBank  float64
	TotalVariance float64
	Notes         *string
	EndedAt       time.Time
}

// ShiftRepository defines cashier shift persistence.
type ShiftRepository interface {
	CreateShift(executor SQLExecutor, shift *models.Shift) (int64, error)
	GetShiftByID(id int64) (*models.Shift, error)
	GetOpenShiftByCashier(cashierID int64) (*models.Shift, error)
	GetShifts(cashierID *int64, from, to *time.Time, page, pageSize int) ([]models.Shift, int, error)
	CloseShift(executor SQLExecutor, shiftID int64, close ShiftClose) error
	InsertStockCount(executor SQLExecutor, count *models.ShiftStockCount) error
	CountOpenShifts() (int, error)
}

type shiftRepository struct {
	db *sql.DB
}

// NewShiftRepository creates a new instance of ShiftRepository.
func NewShiftRepository(db *sql.DB) ShiftRepository {
	return &shiftRepository{db: db}
}

const shiftColumns = `s.id, s.cashier_id, s.opening_float, s.started_at, s.ended_at,
	s.system_cash, s.system_qr, s.system_bank,
	s.manual_cash, s.manual_qr, s.manual_bank,
	s.variance_cash, s.variance_qr, s.variance_bank, s.total_variance, s.notes`

func (r *shiftRepository) CreateShift(executor SQLExecutor, shift *models.Shift) (int64, error) {
	query := `INSERT INTO shifts (cashier_id, opening_float, started_at)
	          VALUES ($1, $2, $3)
	          RETURNING id`

	if shift.StartedAt.IsZero() {
		shift.StartedAt = time.Now()
	}

	err := executor.QueryRow(query, shift.CashierID, shift.OpeningFloat, shift.StartedAt).Scan(&shift.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			// Partial unique index: one open shift per cashier.
			if pqErr.Code.Name() == "unique_violation" && pqErr.Constraint == "idx_shifts_one_open_per_cashier" {
				return 0, fmt.Errorf("%w: cashier %d already has an open shift", ErrDuplicateKey, shift.CashierID)
			}
			if pqErr.Code.Name() == "foreign_key_violation" {
				return 0, fmt.Errorf("%w: cashier %d not found", ErrNotFound, shift.CashierID)
			}
		}
		return 0, fmt.Errorf("%w: creating shift: %v", ErrDatabaseError, err)
	}
	return shift.ID, nil
}

func scanShiftRow(row scanner, withCashierName bool, totalCount *int) (*models.Shift, error) {
	var s models.Shift
	dest := []interface{}{
		&s.ID, &s.CashierID, &s.OpeningFloat, &s.StartedAt, &s.EndedAt,
		&s.SystemCash, &s.SystemQR, &s.SystemBank,
		&s.ManualCash, &s.ManualQR, &s.ManualBank,
		&s.VarianceCash, &s.VarianceQR, &s.VarianceBank, &s.TotalVariance, &s.Notes,
	}
	if withCashierName {
		dest = append(dest, &s.CashierName)
	}
	if totalCount != nil {
		dest = append(dest, totalCount)
	}
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning shift: %v", ErrDatabaseError, err)
	}
	return &s, nil
}

func (r *shiftRepository) GetShiftByID(id int64) (*models.Shift, error) {
	query := `SELECT ` + shiftColumns + `, u.full_name
	          FROM shifts s LEFT JOIN users u ON s.cashier_id = u.id
	          WHERE s.id = $1`
	return scanShiftRow(r.db.QueryRow(query, id), true, nil)
}

func (r *shiftRepository) GetOpenShiftByCashier(cashierID int64) (*models.Shift, error) {
	query := `SELECT ` + shiftColumns + ` FROM shifts s WHERE s.cashier_id = $1 AND s.ended_at IS NULL`
	return scanShiftRow(r.db.QueryRow(query, cashierID), false, nil)
}

func (r *shiftRepository) GetShifts(cashierID *int64, from, to *time.Time, page, pageSize int) ([]models.Shift, int, error) {
	shifts := []models.Shift{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + shiftColumns + `, u.full_name, COUNT(*) OVER() as total_count
	  FROM shifts s LEFT JOIN users u ON s.cashier_id = u.id`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if cashierID != nil {
		conditions = append(conditions, fmt.Sprintf("s.cashier_id = $%d", argCount))
		args = append(args, *cashierID)
		argCount++
	}
	if from != nil {
		conditions = append(conditions, fmt.Sprintf("s.started_at >= $%d", argCount))
		args = append(args, *from)
		argCount++
	}
	if to != nil {
		conditions = append(conditions, fmt.Sprintf("s.started_at < $%d", argCount))
		args = append(args, *to)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY s.started_at DESC")

	if pageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCount))
		args = append(args, pageSize)
		argCount++
		if page > 0 {
			offset := (page - 1) * pageSize
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCount))
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying shifts: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		shift, err := scanShiftRow(rows, true, &totalCount)
		if err != nil {
			return nil, 0, err
		}
		shifts = append(shifts, *shift)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating shift rows: %v", ErrDatabaseError, err)
	}
	return shifts, totalCount, nil
}

// CloseShift performs the terminal reconciliation update. The ended_at IS NULL
// guard makes closing an already-closed shift a no-op reported as ErrGuardFailed.
func (r *shiftRepository) CloseShift(executor SQLExecutor, shiftID int64, close ShiftClose) error {
	query := `UPDATE shifts SET
	            system_cash = $1, system_qr = $2, system_bank = $3,
	            manual_cash = $4, manual_qr = $5, manual_bank = $6,
	            variance_cash = $7, variance_qr = $8, variance_bank = $9,
	            total_variance = $10, notes = $11, ended_at = $12
	          WHERE id = $13 AND ended_at IS NULL`

	result, err := executor.Exec(query,
		close.SystemCash, close.SystemQR, close.SystemBank,
		close.ManualCash, close.ManualQR, close.ManualBank,
		close.VarianceCash, close.VarianceQR, close.VarianceBank,
		close.TotalVariance, close.Notes, close.EndedAt, shiftID,
	)
	if err != nil {
		return fmt.Errorf("%w: closing shift %d: %v", ErrDatabaseError, shiftID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected for closing shift %d: %v", ErrDatabaseError, shiftID, err)
	}
	if rowsAffected == 0 {
		return ErrGuardFailed
	}
	return nil
}

func (r *shiftRepository) InsertStockCount(executor SQLExecutor, count *models.ShiftStockCount) error {
	query := `INSERT INTO shift_stock_counts (shift_id, product_id, counted_qty, system_qty, created_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`

	count.CreatedAt = time.Now()
	err := executor.QueryRow(query,
		count.ShiftID, count.ProductID, count.CountedQty, count.SystemQty, count.CreatedAt,
	).Scan(&count.ID)
	if err != nil {
		return fmt.Errorf("%w: inserting shift stock count: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *shiftRepository) CountOpenShifts() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM shifts WHERE ended_at IS NULL`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: counting open shifts: %v", ErrDatabaseError, err)
	}
	return count, nil
}
