package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gym_crm_backend/internal/models"
)

// DeviceRepository defines device authorization persistence.
type DeviceRepository interface {
	CreateRequest(executor SQLExecutor, request *models.DeviceRequest) (int64, error)
	GetRequestByToken(token string) (*models.DeviceRequest, error)
	GetRequests(status *string, page, pageSize int) ([]models.DeviceRequest, int, error)
	// ResolveRequest transitions a pending request to approved or denied.
	ResolveRequest(executor SQLExecutor, token string, status string, resolvedBy int64) error
	IsFingerprintApproved(fingerprint string) (bool, error)
	HasPendingRequest(fingerprint string) (*models.DeviceRequest, error)
	CountApproved() (int, error)
}

type deviceRepository struct {
	db *sql.DB
}

// NewDeviceRepository creates a new instance of DeviceRepository.
func NewDeviceRepository(db *sql.DB) DeviceRepository {
	return &deviceRepository{db: db}
}

const deviceColumns = `id, token, fingerprint, username, status, requested_at, resolved_at, resolved_by`

func (r *deviceRepository) CreateRequest(executor SQLExecutor, request *models.DeviceRequest) (int64, error) {
	query := `INSERT INTO device_requests (token, fingerprint, username, status, requested_at)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING id`

	request.RequestedAt = time.Now()
	err := executor.QueryRow(query,
		request.Token, request.Fingerprint, request.Username, request.Status, request.RequestedAt,
	).Scan(&request.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: creating device request: %v", ErrDatabaseError, err)
	}
	return request.ID, nil
}

func scanDeviceRow(row scanner) (*models.DeviceRequest, error) {
	var d models.DeviceRequest
	err := row.Scan(
		&d.ID, &d.Token, &d.Fingerprint, &d.Username, &d.Status,
		&d.RequestedAt, &d.ResolvedAt, &d.ResolvedBy,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning device request: %v", ErrDatabaseError, err)
	}
	return &d, nil
}

func (r *deviceRepository) GetRequestByToken(token string) (*models.DeviceRequest, error) {
	query := `SELECT ` + deviceColumns + ` FROM device_requests WHERE token = $1`
	return scanDeviceRow(r.db.QueryRow(query, token))
}

func (r *deviceRepository) GetRequests(status *string, page, pageSize int) ([]models.DeviceRequest, int, error) {
	requests := []models.DeviceRequest{}
	totalCount := 0

	query := `SELECT ` + deviceColumns + `, COUNT(*) OVER() as total_count FROM device_requests`
	var args []interface{}
	argCount := 1

	if status != nil && *status != "" {
		query += fmt.Sprintf(" WHERE status = $%d", argCount)
		args = append(args, *status)
		argCount++
	}
	query += fmt.Sprintf(" ORDER BY requested_at DESC LIMIT $%d OFFSET $%d", argCount, argCount+1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying device requests: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var d models.DeviceRequest
		if err := rows.Scan(
			&d.ID, &d.Token, &d.Fingerprint, &d.Username, &d.Status,
			&d.RequestedAt, &d.ResolvedAt, &d.ResolvedBy, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning device request: %v", ErrDatabaseError, err)
		}
		requests = append(requests, d)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating device request rows: %v", ErrDatabaseError, err)
	}
	return requests, totalCount, nil
}

// ResolveRequest is guarded on pending status so a request is resolved exactly once.
func (r *deviceRepository) ResolveRequest(executor SQLExecutor, token string, status string, resolvedBy int64) error {
	query := `UPDATE device_requests SET status = $1, resolved_at = $2, resolved_by = $3
	          WHERE token = $4 AND status = $5`

	result, err := executor.Exec(query, status, time.Now(), resolvedBy, token, models.DeviceStatusPending)
	if err != nil {
		return fmt.Errorf("%w: resolving device request %s: %v", ErrDatabaseError, token, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected for device request %s: %v", ErrDatabaseError, token, err)
	}
	if rowsAffected == 0 {
		return ErrGuardFailed
	}
	return nil
}

func (r *deviceRepository) IsFingerprintApproved(fingerprint string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM device_requests WHERE fingerprint = $1 AND status = $2)`
	if err := r.db.QueryRow(query, fingerprint, models.DeviceStatusApproved).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: checking device fingerprint: %v", ErrDatabaseError, err)
	}
	return exists, nil
}

// CountApproved reports how many device fingerprints have ever been approved.
// Zero means the install has not been bootstrapped yet.
func (r *deviceRepository) CountApproved() (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM device_requests WHERE status = $1`
	if err := r.db.QueryRow(query, models.DeviceStatusApproved).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: counting approved devices: %v", ErrDatabaseError, err)
	}
	return count, nil
}

func (r *deviceRepository) HasPendingRequest(fingerprint string) (*models.DeviceRequest, error) {
	query := `SELECT ` + deviceColumns + ` FROM device_requests
	          WHERE fingerprint = $1 AND status = $2
	          ORDER BY requested_at DESC LIMIT 1`
	return scanDeviceRow(r.db.QueryRow(query, fingerprint, models.DeviceStatusPending))
}
