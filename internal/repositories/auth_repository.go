package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gym_crm_backend/internal/models"

	"github.com/lib/pq"
)

// AuthRepository defines user account persistence.
type AuthRepository interface {
	CreateUser(executor SQLExecutor, user *models.User) (int64, error)
	FindUserByID(id int64) (*models.User, error)
	FindUserByUsername(username string) (*models.User, error)
	GetUsers(page, pageSize int) ([]models.User, int, error)
	SetUserActive(executor SQLExecutor, id int64, active bool) error
	CountUsers() (int, error)
}

type authRepository struct {
	db *sql.DB
}

// NewAuthRepository creates a new instance of AuthRepository.
func NewAuthRepository(db *sql.DB) AuthRepository {
	return &authRepository{db: db}
}

func (r *authRepository) CreateUser(executor SQLExecutor, user *models.User) (int64, error) {
	query := `INSERT INTO users (username, password_hash, email, full_name, role, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id`

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	err := executor.QueryRow(query,
		user.Username, user.PasswordHash, user.Email, user.FullName,
		user.Role, user.IsActive, user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, fmt.Errorf("%w: %s (constraint: %s)", ErrDuplicateKey, pqErr.Message, pqErr.Constraint)
		}
		return 0, fmt.Errorf("%w: creating user: %v", ErrDatabaseError, err)
	}
	return user.ID, nil
}

func scanUserRow(row scanner) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Username, &user.PasswordHash, &user.Email, &user.FullName,
		&user.Role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning user: %v", ErrDatabaseError, err)
	}
	return &user, nil
}

const userColumns = `id, username, password_hash, email, full_name, role, is_active, created_at, updated_at`

func (r *authRepository) FindUserByID(id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUserRow(r.db.QueryRow(query, id))
}

func (r *authRepository) FindUserByUsername(username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUserRow(r.db.QueryRow(query, username))
}

func (r *authRepository) GetUsers(page, pageSize int) ([]models.User, int, error) {
	users := []models.User{}
	totalCount := 0

	query := `SELECT ` + userColumns + `, COUNT(*) OVER() as total_count
	          FROM users ORDER BY username ASC LIMIT $1 OFFSET $2`
	offset := (page - 1) * pageSize

	rows, err := r.db.Query(query, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying users: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var user models.User
		if err := rows.Scan(
			&user.ID, &user.Username, &user.PasswordHash, &user.Email, &user.FullName,
			&user.Role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning user: %v", ErrDatabaseError, err)
		}
		user.PasswordHash = ""
		users = append(users, user)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating user rows: %v", ErrDatabaseError, err)
	}
	return users, totalCount, nil
}

func (r *authRepository) CountUsers() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: counting users: %v", ErrDatabaseError, err)
	}
	return count, nil
}

func (r *authRepository) SetUserActive(executor SQLExecutor, id int64, active bool) error {
	result, err := executor.Exec(`UPDATE users SET is_active = $1, updated_at = $2 WHERE id = $3`, active, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: updating user %d active flag: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected for user %d: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
