package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"gym_crm_backend/internal/models"
)

// CheckInRepository defines check-in persistence.
type CheckInRepository interface {
	CreateCheckIn(executor SQLExecutor, checkIn *models.CheckIn) (int64, error)
	CountCheckIns(from, to time.Time) (int, error)
	GetCheckIns(memberID *int64, from, to *time.Time, page, pageSize int) ([]models.CheckIn, int, error)
}

type checkInRepository struct {
	db *sql.DB
}

// NewCheckInRepository creates a new instance of CheckInRepository.
func NewCheckInRepository(db *sql.DB) CheckInRepository {
	return &checkInRepository{db: db}
}

func (r *checkInRepository) CreateCheckIn(executor SQLExecutor, checkIn *models.CheckIn) (int64, error) {
	query := `INSERT INTO check_ins (member_id, status_at_checkin, checked_in_at)
	          VALUES ($1, $2, $3)
	          RETURNING id`

	if checkIn.CheckedInAt.IsZero() {
		checkIn.CheckedInAt = time.Now()
	}
	err := executor.QueryRow(query, checkIn.MemberID, checkIn.StatusAtCheckin, checkIn.CheckedInAt).Scan(&checkIn.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating check-in: %v", ErrDatabaseError, err)
	}
	return checkIn.ID, nil
}

func (r *checkInRepository) CountCheckIns(from, to time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM check_ins WHERE checked_in_at >= $1 AND checked_in_at < $2`
	if err := r.db.QueryRow(query, from, to).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: counting check-ins: %v", ErrDatabaseError, err)
	}
	return count, nil
}

func (r *checkInRepository) GetCheckIns(memberID *int64, from, to *time.Time, page, pageSize int) ([]models.CheckIn, int, error) {
	checkIns := []models.CheckIn{}
	totalCount := 0

	query := `SELECT ci.id, ci.member_id, ci.status_at_checkin, ci.checked_in_at, m.full_name,
	                 COUNT(*) OVER() as total_count
	          FROM check_ins ci
	          JOIN members m ON ci.member_id = m.id`
	var args []interface{}
	argCount := 1
	where := ""

	appendCond := func(cond string, v interface{}) {
		if where == "" {
			where = " WHERE "
		} else {
			where += " AND "
		}
		where += fmt.Sprintf(cond, argCount)
		args = append(args, v)
		argCount++
	}

	if memberID != nil {
		appendCond("ci.member_id = $%d", *memberID)
	}
	if from != nil {
		appendCond("ci.checked_in_at >= $%d", *from)
	}
	if to != nil {
		appendCond("ci.checked_in_at < $%d", *to)
	}

	query += where + fmt.Sprintf(" ORDER BY ci.checked_in_at DESC LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying check-ins: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var ci models.CheckIn
		if err := rows.Scan(
			&ci.ID, &ci.MemberID, &ci.StatusAtCheckin, &ci.CheckedInAt,
			&ci.MemberName, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning check-in: %v", ErrDatabaseError, err)
		}
		checkIns = append(checkIns, ci)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating check-in rows: %v", ErrDatabaseError, err)
	}
	return checkIns, totalCount, nil
}
