package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gym_crm_backend/internal/models"

	"github.com/lib/pq"
)

// PlanRepository defines membership plan persistence.
type PlanRepository interface {
	CreatePlan(executor SQLExecutor, plan *models.MembershipPlan) (int64, error)
	GetPlanByID(id int64) (*models.MembershipPlan, error)
	GetPlans(activeOnly bool) ([]models.MembershipPlan, error)
	UpdatePlan(executor SQLExecutor, plan *models.MembershipPlan) error
	DeletePlan(executor SQLExecutor, id int64) error
}

type planRepository struct {
	db *sql.DB
}

// NewPlanRepository creates a new instance of PlanRepository.
func NewPlanRepository(db *sql.DB) PlanRepository {
	return &planRepository{db: db}
}

const planColumns = `id, name, member_type, price, duration_months, free_months, registration_fee, is_active, created_at, updated_at`

func (r *planRepository) CreatePlan(executor SQLExecutor, plan *models.MembershipPlan) (int64, error) {
	query := `INSERT INTO membership_plans (name, member_type, price, duration_months, free_months, registration_fee, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING id`

	now := time.Now()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	err := executor.QueryRow(query,
		plan.Name, plan.MemberType, plan.Price, plan.DurationMonths,
		plan.FreeMonths, plan.RegistrationFee, plan.IsActive,
		plan.CreatedAt, plan.UpdatedAt,
	).Scan(&plan.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating membership plan: %v", ErrDatabaseError, err)
	}
	return plan.ID, nil
}

func scanPlanRow(row scanner) (*models.MembershipPlan, error) {
	var p models.MembershipPlan
	err := row.Scan(
		&p.ID, &p.Name, &p.MemberType, &p.Price, &p.DurationMonths,
		&p.FreeMonths, &p.RegistrationFee, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning membership plan: %v", ErrDatabaseError, err)
	}
	return &p, nil
}

func (r *planRepository) GetPlanByID(id int64) (*models.MembershipPlan, error) {
	query := `SELECT ` + planColumns + ` FROM membership_plans WHERE id = $1`
	return scanPlanRow(r.db.QueryRow(query, id))
}

func (r *planRepository) GetPlans(activeOnly bool) ([]models.MembershipPlan, error) {
	plans := []models.MembershipPlan{}

	query := `SELECT ` + planColumns + ` FROM membership_plans`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY member_type, price ASC`

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying membership plans: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.MembershipPlan
		if err := rows.Scan(
			&p.ID, &p.Name, &p.MemberType, &p.Price, &p.DurationMonths,
			&p.FreeMonths, &p.RegistrationFee, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("%w: scanning membership plan: %v", ErrDatabaseError, err)
		}
		plans = append(plans, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating membership plan rows: %v", ErrDatabaseError, err)
	}
	return plans, nil
}

func (r *planRepository) UpdatePlan(executor SQLExecutor, plan *models.MembershipPlan) error {
	query := `UPDATE membership_plans SET
	            name = $1, member_type = $2, price = $3, duration_months = $4,
	            free_months = $5, registration_fee = $6, is_active = $7, updated_at = $8
	          WHERE id = $9`

	plan.UpdatedAt = time.Now()
	result, err := executor.Exec(query,
		plan.Name, plan.MemberType, plan.Price, plan.DurationMonths,
		plan.FreeMonths, plan.RegistrationFee, plan.IsActive, plan.UpdatedAt, plan.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating membership plan ID %d: %v", ErrDatabaseError, plan.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected for plan ID %d: %v", ErrDatabaseError, plan.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *planRepository) DeletePlan(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM membership_plans WHERE id = $1`, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return fmt.Errorf("%w: plan ID %d is referenced by members (constraint: %s)", ErrDatabaseError, id, pqErr.Constraint)
		}
		return fmt.Errorf("%w: deleting plan ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected for deleting plan ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
