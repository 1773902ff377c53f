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

// MemberRepository defines member persistence.
type MemberRepository interface {
	CreateMember(executor SQLExecutor, member *models.Member) (int64, error)
	GetMemberByID(id int64) (*models.Member, error)
	GetMemberByMemberID(memberID string) (*models.Member, error)
	GetMemberByNRIC(nric string) (*models.Member, error)
	GetMembers(page, pageSize int, searchTerm *string, status *string, graceDays int, now time.Time) ([]models.Member, int, error)
	UpdateMember(executor SQLExecutor, member *models.Member) error
	UpdateMemberStatus(executor SQLExecutor, id int64, status string) error
	UpdateMemberExpiry(executor SQLExecutor, id int64, expiry time.Time, planID int64) error
	DeleteMember(executor SQLExecutor, id int64) error
	NextMemberSequence() (int64, error)
	CountMembersByStatus() (map[string]int, error)
}

type memberRepository struct {
	db *sql.DB
}

// NewMemberRepository creates a new instance of MemberRepository.
func NewMemberRepository(db *sql.DB) MemberRepository {
	return &memberRepository{db: db}
}

const memberColumns = `id, member_id, full_name, nric, phone, email, member_type, plan_id, status, expiry_date, notes, created_at, updated_at`

func (r *memberRepository) CreateMember(executor SQLExecutor, member *models.Member) (int64, error) {
	query := `INSERT INTO members (member_id, full_name, nric, phone, email, member_type, plan_id, status, expiry_date, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	          RETURNING id`

	now := time.Now()
	member.CreatedAt = now
	member.UpdatedAt = now

	err := executor.QueryRow(query,
		member.MemberID, member.FullName, member.NRIC, member.Phone, member.Email,
		member.MemberType, member.PlanID, member.Status, member.ExpiryDate,
		member.Notes, member.CreatedAt, member.UpdatedAt,
	).Scan(&member.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code.Name() == "unique_violation" {
				return 0, fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
			}
			if pqErr.Code.Name() == "foreign_key_violation" {
				return 0, fmt.Errorf("%w: membership plan not found", ErrNotFound)
			}
		}
		return 0, fmt.Errorf("%w: creating member: %v", ErrDatabaseError, err)
	}
	return member.ID, nil
}

func scanMemberRow(row scanner) (*models.Member, error) {
	var m models.Member
	err := row.Scan(
		&m.ID, &m.MemberID, &m.FullName, &m.NRIC, &m.Phone, &m.Email,
		&m.MemberType, &m.PlanID, &m.Status, &m.ExpiryDate, &m.Notes,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning member: %v", ErrDatabaseError, err)
	}
	return &m, nil
}

func (r *memberRepository) GetMemberByID(id int64) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE id = $1`
	return scanMemberRow(r.db.QueryRow(query, id))
}

func (r *memberRepository) GetMemberByMemberID(memberID string) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE member_id = $1`
	return scanMemberRow(r.db.QueryRow(query, memberID))
}

func (r *memberRepository) GetMemberByNRIC(nric string) (*models.Member, error) {
	query := `SELECT ` + memberColumns + ` FROM members WHERE nric = $1`
	return scanMemberRow(r.db.QueryRow(query, nric))
}

// GetMembers filters on the status derived from the expiry date and grace
// period, not the stored column, so listings agree with the statuses the rows
// are returned with even when the stored value is stale.
func (r *memberRepository) GetMembers(page, pageSize int, searchTerm *string, status *string, graceDays int, now time.Time) ([]models.Member, int, error) {
	members := []models.Member{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + memberColumns + `, COUNT(*) OVER() as total_count FROM members`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if searchTerm != nil && *searchTerm != "" {
		searchPattern := "%" + strings.ToLower(*searchTerm) + "%"
		conditions = append(conditions, fmt.Sprintf(
			"(LOWER(full_name) ILIKE $%d OR LOWER(member_id) ILIKE $%d OR LOWER(nric) ILIKE $%d OR LOWER(COALESCE(phone, '')) ILIKE $%d)",
			argCount, argCount, argCount, argCount))
		args = append(args, searchPattern)
		argCount++
	}
	if status != nil && *status != "" {
		conditions = append(conditions, fmt.Sprintf(
			`(CASE WHEN status = '%s' THEN status
			       WHEN expiry_date > $%d THEN '%s'
			       WHEN expiry_date + make_interval(days => $%d) > $%d THEN '%s'
			       ELSE '%s' END) = $%d`,
			models.StatusSuspended,
			argCount, models.StatusActive,
			argCount+1, argCount+2, models.StatusGrace,
			models.StatusExpired,
			argCount+3))
		args = append(args, now, graceDays, now, *status)
		argCount += 4
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY full_name ASC")

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
		return nil, 0, fmt.Errorf("%w: querying members: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.Member
		if err := rows.Scan(
			&m.ID, &m.MemberID, &m.FullName, &m.NRIC, &m.Phone, &m.Email,
			&m.MemberType, &m.PlanID, &m.Status, &m.ExpiryDate, &m.Notes,
			&m.CreatedAt, &m.UpdatedAt, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning member: %v", ErrDatabaseError, err)
		}
		members = append(members, m)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating member rows: %v", ErrDatabaseError, err)
	}
	return members, totalCount, nil
}

func (r *memberRepository) UpdateMember(executor SQLExecutor, member *models.Member) error {
	query := `UPDATE members SET
	            full_name = $1, nric = $2, phone = $3, email = $4, member_type = $5,
	            plan_id = $6, status = $7, expiry_date = $8, notes = $9, updated_at = $10
	          WHERE id = $11`

	member.UpdatedAt = time.Now()
	result, err := executor.Exec(query,
		member.FullName, member.NRIC, member.Phone, member.Email, member.MemberType,
		member.PlanID, member.Status, member.ExpiryDate, member.Notes,
		member.UpdatedAt, member.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		}
		return fmt.Errorf("%w: updating member ID %d: %v", ErrDatabaseError, member.ID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected for member ID %d: %v", ErrDatabaseError, member.ID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateMemberStatus persists an opportunistically recomputed status.
func (r *memberRepository) UpdateMemberStatus(executor SQLExecutor, id int64, status string) error {
	result, err := executor.Exec(
		`UPDATE members SET status = $1, updated_at = $2 WHERE id = $3`,
		status, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("%w: updating member %d status: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected for member %d status: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *memberRepository) UpdateMemberExpiry(executor SQLExecutor, id int64, expiry time.Time, planID int64) error {
	result, err := executor.Exec(
		`UPDATE members SET expiry_date = $1, plan_id = $2, status = $3, updated_at = $4 WHERE id = $5`,
		expiry, planID, models.StatusActive, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("%w: updating member %d expiry: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected for member %d expiry: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *memberRepository) DeleteMember(executor SQLExecutor, id int64) error {
	result, err := executor.Exec(`DELETE FROM members WHERE id = $1`, id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "foreign_key_violation" {
			return fmt.Errorf("%w: member ID %d is referenced by other records (constraint: %s)", ErrDatabaseError, id, pqErr.Constraint)
		}
		return fmt.Errorf("%w: deleting member ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected for deleting member ID %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// NextMemberSequence returns the next value for generated GM-<seq> member IDs.
func (r *memberRepository) NextMemberSequence() (int64, error) {
	var next int64
	err := r.db.QueryRow(`SELECT COALESCE(MAX(id), 0) + 1 FROM members`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("%w: fetching next member sequence: %v", ErrDatabaseError, err)
	}
	return next, nil
}

func (r *memberRepository) CountMembersByStatus() (map[string]int, error) {
	counts := map[string]int{}
	rows, err := r.db.Query(`SELECT status, COUNT(*) FROM members GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("%w: counting members by status: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("%w: scanning member status count: %v", ErrDatabaseError, err)
		}
		counts[status] = count
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating member status counts: %v", ErrDatabaseError, err)
	}
	return counts, nil
}
