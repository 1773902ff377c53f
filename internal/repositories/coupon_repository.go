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

// CouponUsageFilters narrows coupon usage searches.
type CouponUsageFilters struct {
	Code     *string
	MemberID *int64
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	PageSize int
}

// CouponRepository defines coupon persistence.
type CouponRepository interface {
	CreateCoupon(executor SQLExecutor, coupon *models.Coupon) (int64, error)
	GetCouponByID(id int64) (*models.Coupon, error)
	GetCouponByCode(code string) (*models.Coupon, error)
	GetCoupons(page, pageSize int, activeOnly bool) ([]models.Coupon, int, error)
	UpdateCoupon(executor SQLExecutor, coupon *models.Coupon) error
	// IncrementUses bumps the use counter, guarded by the max-uses cap.
	IncrementUses(executor SQLExecutor, couponID int64, now time.Time) error
	InsertUse(executor SQLExecutor, use *models.CouponUse) error
	SearchUsage(filters CouponUsageFilters) ([]models.CouponUse, int, error)
}

type couponRepository struct {
	db *sql.DB
}

// NewCouponRepository creates a new instance of CouponRepository.
func NewCouponRepository(db *sql.DB) CouponRepository {
	return &couponRepository{db: db}
}

const couponColumns = `id, code, value, max_uses, uses, expiry_date, is_active, created_at, updated_at`

func (r *couponRepository) CreateCoupon(executor SQLExecutor, coupon *models.Coupon) (int64, error) {
	query := `INSERT INTO coupons (code, value, max_uses, uses, expiry_date, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`

	now := time.Now()
	coupon.CreatedAt = now
	coupon.UpdatedAt = now

	err := executor.QueryRow(query,
		coupon.Code, coupon.Value, coupon.MaxUses, coupon.Uses,
		coupon.ExpiryDate, coupon.IsActive, coupon.CreatedAt, coupon.UpdatedAt,
	).Scan(&coupon.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: coupon code %s already exists", ErrDuplicateKey, coupon.Code)
		}
		return 0, fmt.Errorf("%w: creating coupon: %v", ErrDatabaseError, err)
	}
	return coupon.ID, nil
}

func scanCouponRow(row scanner) (*models.Coupon, error) {
	var c models.Coupon
	err := row.Scan(
		&c.ID, &c.Code, &c.Value, &c.MaxUses, &c.Uses,
		&c.ExpiryDate, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning coupon: %v", ErrDatabaseError, err)
	}
	return &c, nil
}

func (r *couponRepository) GetCouponByID(id int64) (*models.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1`
	return scanCouponRow(r.db.QueryRow(query, id))
}

func (r *couponRepository) GetCouponByCode(code string) (*models.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE code = $1`
	return scanCouponRow(r.db.QueryRow(query, code))
}

func (r *couponRepository) GetCoupons(page, pageSize int, activeOnly bool) ([]models.Coupon, int, error) {
	coupons := []models.Coupon{}
	totalCount := 0

	query := `SELECT ` + couponColumns + `, COUNT(*) OVER() as total_count FROM coupons`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	offset := (page - 1) * pageSize

	rows, err := r.db.Query(query, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying coupons: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.Coupon
		if err := rows.Scan(
			&c.ID, &c.Code, &c.Value, &c.MaxUses, &c.Uses,
			&c.ExpiryDate, &c.IsActive, &c.CreatedAt, &c.UpdatedAt, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning coupon: %v", ErrDatabaseError, err)
		}
		coupons = append(coupons, c)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating coupon rows: %v", ErrDatabaseError, err)
	}
	return coupons, totalCount, nil
}

func (r *couponRepository) UpdateCoupon(executor SQLExecutor, coupon *models.Coupon) error {
	query := `UPDATE coupons SET
	            code = $1, value = $2, max_uses = $3, expiry_date = $4, is_active = $5, updated_at = $6
	          WHERE id = $7`

	coupon.UpdatedAt = time.Now()
	result, err := executor.Exec(query,
		coupon.Code, coupon.Value, coupon.MaxUses, coupon.ExpiryDate,
		coupon.IsActive, coupon.UpdatedAt, coupon.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: coupon code %s already exists", ErrDuplicateKey, coupon.Code)
		}
		return fmt.Errorf("%w: updating coupon ID %d: %v", ErrDatabaseError, coupon.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected for coupon ID %d: %v", ErrDatabaseError, coupon.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementUses enforces the usage cap, activity and expiry server-side in a
// single guarded UPDATE. Zero rows affected means the coupon is not redeemable.
func (r *couponRepository) IncrementUses(executor SQLExecutor, couponID int64, now time.Time) error {
	query := `UPDATE coupons SET uses = uses + 1, updated_at = $1
	          WHERE id = $2
	            AND uses < max_uses
	            AND is_active = TRUE
	            AND (expiry_date IS NULL OR expiry_date >= $3)`

	result, err := executor.Exec(query, now, couponID, now)
	if err != nil {
		return fmt.Errorf("%w: incrementing uses for coupon %d: %v", ErrDatabaseError, couponID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected for coupon %d: %v", ErrDatabaseError, couponID, err)
	}
	if rowsAffected == 0 {
		return ErrGuardFailed
	}
	return nil
}

func (r *couponRepository) InsertUse(executor SQLExecutor, use *models.CouponUse) error {
	query := `INSERT INTO coupon_uses (coupon_id, member_id, payment_id, used_at)
	          VALUES ($1, $2, $3, $4)
	          RETURNING id`

	if use.UsedAt.IsZero() {
		use.UsedAt = time.Now()
	}
	err := executor.QueryRow(query, use.CouponID, use.MemberID, use.PaymentID, use.UsedAt).Scan(&use.ID)
	if err != nil {
		return fmt.Errorf("%w: inserting coupon use: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *couponRepository) SearchUsage(filters CouponUsageFilters) ([]models.CouponUse, int, error) {
	uses := []models.CouponUse{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT cu.id, cu.coupon_id, cu.member_id, cu.payment_id, cu.used_at,
	    c.code, m.full_name, COUNT(*) OVER() as total_count
	  FROM coupon_uses cu
	  JOIN coupons c ON cu.coupon_id = c.id
	  LEFT JOIN members m ON cu.member_id = m.id`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Code != nil && *filters.Code != "" {
		conditions = append(conditions, fmt.Sprintf("c.code = $%d", argCount))
		args = append(args, strings.ToUpper(*filters.Code))
		argCount++
	}
	if filters.MemberID != nil {
		conditions = append(conditions, fmt.Sprintf("cu.member_id = $%d", argCount))
		args = append(args, *filters.MemberID)
		argCount++
	}
	if filters.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("cu.used_at >= $%d", argCount))
		args = append(args, *filters.DateFrom)
		argCount++
	}
	if filters.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("cu.used_at < $%d", argCount))
		args = append(args, *filters.DateTo)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY cu.used_at DESC")

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
		return nil, 0, fmt.Errorf("%w: searching coupon usage: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var u models.CouponUse
		if err := rows.Scan(
			&u.ID, &u.CouponID, &u.MemberID, &u.PaymentID, &u.UsedAt,
			&u.CouponCode, &u.MemberName, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning coupon use: %v", ErrDatabaseError, err)
		}
		uses = append(uses, u)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating coupon use rows: %v", ErrDatabaseError, err)
	}
	return uses, totalCount, nil
}
