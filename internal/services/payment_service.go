package services

import (
	"database/sql"
	"errors"
	"fmt"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/repositories"

	"github.com/google/uuid"
)

var (
	ErrPaymentNotFound   = errors.New("payment not found")
	ErrPaymentValidation = errors.New("payment data validation error")
)

// --- Payment DTOs ---

type WalkInRequest struct {
	PaymentMethod string  `json:"payment_method" binding:"required"`
	Notes         *string `json:"notes"`
}

type GraceSettlementRequest struct {
	MemberID      int64   `json:"member_id" binding:"required"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method" binding:"required"`
	Notes         *string `json:"notes"`
}

// --- PaymentService Interface ---
type PaymentService interface {
	GetPaymentByID(id int64) (*models.Payment, error)
	GetPayments(filters models.PaymentFilters) ([]models.Payment, int, error)
	RecordWalkIn(req WalkInRequest, cashierID int64) (*models.Payment, error)
	RecordGraceSettlement(req GraceSettlementRequest, cashierID int64) (*models.Payment, error)
}

type paymentService struct {
	paymentRepo repositories.PaymentRepository
	memberRepo  repositories.MemberRepository
	shiftRepo   repositories.ShiftRepository
	settingRepo repositories.SettingRepository
	db          *sql.DB
}

// NewPaymentService creates a new instance of PaymentService.
func NewPaymentService(
	pr repositories.PaymentRepository,
	mr repositories.MemberRepository,
	sr repositories.ShiftRepository,
	str repositories.SettingRepository,
	db *sql.DB,
) PaymentService {
	return &paymentService{
		paymentRepo: pr,
		memberRepo:  mr,
		shiftRepo:   sr,
		settingRepo: str,
		db:          db,
	}
}

func (s *paymentService) openShiftID(cashierID int64) *int64 {
	shift, err := s.shiftRepo.GetOpenShiftByCashier(cashierID)
	if err != nil {
		return nil
	}
	return &shift.ID
}

func (s *paymentService) GetPaymentByID(id int64) (*models.Payment, error) {
	payment, err := s.paymentRepo.GetPaymentByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return payment, nil
}

func (s *paymentService) GetPayments(filters models.PaymentFilters) ([]models.Payment, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 20
	}
	payments, totalCount, err := s.paymentRepo.GetPayments(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get payments: %w", err)
	}
	return payments, totalCount, nil
}

// RecordWalkIn records a one-time visit fee for a non-member at the configured
// walk-in rate.
func (s *paymentService) RecordWalkIn(req WalkInRequest, cashierID int64) (*models.Payment, error) {
	if !validPaymentMethod(req.PaymentMethod) {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrPaymentValidation, req.PaymentMethod)
	}

	settings, err := s.settingRepo.GetSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load settings for walk-in fee: %w", err)
	}

	payment := &models.Payment{
		ReceiptNo:     uuid.NewString(),
		Amount:        settings.WalkInFee,
		PaymentType:   models.PaymentTypeWalkIn,
		PaymentMethod: req.PaymentMethod,
		ShiftID:       s.openShiftID(cashierID),
		Notes:         req.Notes,
	}
	if _, err := s.paymentRepo.CreatePayment(s.db, payment); err != nil {
		return nil, fmt.Errorf("failed to record walk-in payment: %w", err)
	}
	return payment, nil
}

// RecordGraceSettlement records a payment settling a member's grace-period days.
func (s *paymentService) RecordGraceSettlement(req GraceSettlementRequest, cashierID int64) (*models.Payment, error) {
	if !validPaymentMethod(req.PaymentMethod) {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrPaymentValidation, req.PaymentMethod)
	}
	if req.Amount < 0 {
		return nil, fmt.Errorf("%w: amount cannot be negative", ErrPaymentValidation)
	}

	if _, err := s.memberRepo.GetMemberByID(req.MemberID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find member for grace settlement: %w", err)
	}

	payment := &models.Payment{
		ReceiptNo:     uuid.NewString(),
		Amount:        req.Amount,
		PaymentType:   models.PaymentTypeGraceSettlement,
		PaymentMethod: req.PaymentMethod,
		MemberID:      &req.MemberID,
		ShiftID:       s.openShiftID(cashierID),
		Notes:         req.Notes,
	}
	if _, err := s.paymentRepo.CreatePayment(s.db, payment); err != nil {
		return nil, fmt.Errorf("failed to record grace settlement: %w", err)
	}
	return payment, nil
}
