package services

import (
	"database/sql"
	"errors"
	"fmt"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/repositories"
)

var (
	ErrDeviceRequestNotFound = errors.New("device request not found")
	ErrDeviceRequestResolved = errors.New("device request is already resolved")
	ErrDeviceValidation      = errors.New("device request validation error")
)

// --- DeviceService Interface ---
type DeviceService interface {
	GetRequests(status *string, page, pageSize int) ([]models.DeviceRequest, int, error)
	GetRequestByToken(token string) (*models.DeviceRequest, error)
	ApproveRequest(token string, adminID int64) (*models.DeviceRequest, error)
	DenyRequest(token string, adminID int64) (*models.DeviceRequest, error)
}

type deviceService struct {
	deviceRepo repositories.DeviceRepository
	db         *sql.DB
}

// NewDeviceService creates a new instance of DeviceService.
func NewDeviceService(dr repositories.DeviceRepository, db *sql.DB) DeviceService {
	return &deviceService{deviceRepo: dr, db: db}
}

func (s *deviceService) GetRequests(status *string, page, pageSize int) ([]models.DeviceRequest, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if status != nil && *status != "" {
		switch *status {
		case models.DeviceStatusPending, models.DeviceStatusApproved, models.DeviceStatusDenied:
		default:
			return nil, 0, fmt.Errorf("%w: unknown status %s", ErrDeviceValidation, *status)
		}
	}
	requests, totalCount, err := s.deviceRepo.GetRequests(status, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get device requests: %w", err)
	}
	return requests, totalCount, nil
}

func (s *deviceService) GetRequestByToken(token string) (*models.DeviceRequest, error) {
	request, err := s.deviceRepo.GetRequestByToken(token)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrDeviceRequestNotFound
		}
		return nil, fmt.Errorf("failed to get device request: %w", err)
	}
	return request, nil
}

func (s *deviceService) ApproveRequest(token string, adminID int64) (*models.DeviceRequest, error) {
	return s.resolve(token, models.DeviceStatusApproved, adminID)
}

func (s *deviceService) DenyRequest(token string, adminID int64) (*models.DeviceRequest, error) {
	return s.resolve(token, models.DeviceStatusDenied, adminID)
}

// resolve transitions a pending request. The repository guard makes the
// transition one-shot, so a second resolve attempt surfaces as already
// resolved rather than silently overwriting the first decision.
func (s *deviceService) resolve(token string, status string, adminID int64) (*models.DeviceRequest, error) {
	if _, err := s.GetRequestByToken(token); err != nil {
		return nil, err
	}

	if err := s.deviceRepo.ResolveRequest(s.db, token, status, adminID); err != nil {
		if errors.Is(err, repositories.ErrGuardFailed) {
			return nil, ErrDeviceRequestResolved
		}
		return nil, fmt.Errorf("failed to resolve device request: %w", err)
	}
	return s.GetRequestByToken(token)
}
