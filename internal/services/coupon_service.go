package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/repositories"

	"github.com/google/uuid"
)

var (
	ErrCouponNotFound      = errors.New("coupon not found")
	ErrCouponCodeExists    = errors.New("coupon code already exists")
	ErrCouponValidation    = errors.New("coupon data validation error")
	ErrCouponNotRedeemable = errors.New("coupon is exhausted, inactive or expired")
)

// --- Coupon DTOs ---

type CreateCouponRequest struct {
	Code       string  `json:"code" binding:"required"`
	Value      float64 `json:"value" binding:"required"`
	MaxUses    int     `json:"max_uses" binding:"required"`
	ExpiryDate *string `json:"expiry_date"` // YYYY-MM-DD
	IsActive   *bool   `json:"is_active"`
}

type UpdateCouponRequest struct {
	Code       *string  `json:"code"`
	Value      *float64 `json:"value"`
	MaxUses    *int     `json:"max_uses"`
	ExpiryDate *string  `json:"expiry_date"`
	IsActive   *bool    `json:"is_active"`
}

type RedeemCouponRequest struct {
	Code     string `json:"code" binding:"required"`
	MemberID *int64 `json:"member_id"`
}

// RedeemCouponResponse bundles the redemption result.
type RedeemCouponResponse struct {
	Coupon  *models.Coupon  `json:"coupon"`
	Payment *models.Payment `json:"payment"`
}

// --- CouponService Interface ---
type CouponService interface {
	CreateCoupon(req CreateCouponRequest) (*models.Coupon, error)
	GetCouponByID(id int64) (*models.Coupon, error)
	GetCouponByCode(code string) (*models.Coupon, error)
	GetCoupons(page, pageSize int, activeOnly bool) ([]models.Coupon, int, error)
	UpdateCoupon(id int64, req UpdateCouponRequest) (*models.Coupon, error)
	RedeemCoupon(req RedeemCouponRequest, cashierID int64) (*RedeemCouponResponse, error)
	SearchUsage(filters repositories.CouponUsageFilters) ([]models.CouponUse, int, error)
}

type couponService struct {
	couponRepo  repositories.CouponRepository
	memberRepo  repositories.MemberRepository
	paymentRepo repositories.PaymentRepository
	shiftRepo   repositories.ShiftRepository
	db          *sql.DB
}

// NewCouponService creates a new instance of CouponService.
func NewCouponService(
	cr repositories.CouponRepository,
	mr repositories.MemberRepository,
	pr repositories.PaymentRepository,
	sr repositories.ShiftRepository,
	db *sql.DB,
) CouponService {
	return &couponService{
		couponRepo:  cr,
		memberRepo:  mr,
		paymentRepo: pr,
		shiftRepo:   sr,
		db:          db,
	}
}

func parseCouponExpiry(expiry *string) (*time.Time, error) {
	if expiry == nil || strings.TrimSpace(*expiry) == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", *expiry)
	if err != nil {
		return nil, ErrDateFormat
	}
	return &parsed, nil
}

func (s *couponService) CreateCoupon(req CreateCouponRequest) (*models.Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if code == "" {
		return nil, fmt.Errorf("%w: code cannot be empty", ErrCouponValidation)
	}
	if req.Value < 0 {
		return nil, fmt.Errorf("%w: value cannot be negative", ErrCouponValidation)
	}
	if req.MaxUses <= 0 {
		return nil, fmt.Errorf("%w: max uses must be positive", ErrCouponValidation)
	}

	expiry, err := parseCouponExpiry(req.ExpiryDate)
	if err != nil {
		return nil, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	coupon := &models.Coupon{
		Code:       code,
		Value:      req.Value,
		MaxUses:    req.MaxUses,
		Uses:       0,
		ExpiryDate: expiry,
		IsActive:   isActive,
	}
	if _, err := s.couponRepo.CreateCoupon(s.db, coupon); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrCouponCodeExists
		}
		return nil, fmt.Errorf("failed to create coupon: %w", err)
	}
	return coupon, nil
}

func (s *couponService) GetCouponByID(id int64) (*models.Coupon, error) {
	coupon, err := s.couponRepo.GetCouponByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	return coupon, nil
}

func (s *couponService) GetCouponByCode(code string) (*models.Coupon, error) {
	coupon, err := s.couponRepo.GetCouponByCode(strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("failed to get coupon by code: %w", err)
	}
	return coupon, nil
}

func (s *couponService) GetCoupons(page, pageSize int, activeOnly bool) ([]models.Coupon, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	coupons, totalCount, err := s.couponRepo.GetCoupons(page, pageSize, activeOnly)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get coupons: %w", err)
	}
	return coupons, totalCount, nil
}

func (s *couponService) UpdateCoupon(id int64, req UpdateCouponRequest) (*models.Coupon, error) {
	coupon, err := s.couponRepo.GetCouponByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("failed to find coupon for update: %w", err)
	}

	if req.Code != nil {
		code := strings.ToUpper(strings.TrimSpace(*req.Code))
		if code == "" {
			return nil, fmt.Errorf("%w: code cannot be empty", ErrCouponValidation)
		}
		coupon.Code = code
	}
	if req.Value != nil {
		if *req.Value < 0 {
			return nil, fmt.Errorf("%w: value cannot be negative", ErrCouponValidation)
		}
		coupon.Value = *req.Value
	}
	if req.MaxUses != nil {
		if *req.MaxUses < coupon.Uses {
			return nil, fmt.Errorf("%w: max uses cannot fall below recorded uses (%d)", ErrCouponValidation, coupon.Uses)
		}
		coupon.MaxUses = *req.MaxUses
	}
	if req.ExpiryDate != nil {
		expiry, perr := parseCouponExpiry(req.ExpiryDate)
		if perr != nil {
			return nil, perr
		}
		coupon.ExpiryDate = expiry
	}
	if req.IsActive != nil {
		coupon.IsActive = *req.IsActive
	}

	if err := s.couponRepo.UpdateCoupon(s.db, coupon); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrCouponCodeExists
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("failed to update coupon: %w", err)
	}
	return coupon, nil
}

// RedeemCoupon increments the coupon's use counter, guarded server-side by the
// max-uses cap, and records the redemption plus its ledger row in one
// transaction.
func (s *couponService) RedeemCoupon(req RedeemCouponRequest, cashierID int64) (*RedeemCouponResponse, error) {
	coupon, err := s.GetCouponByCode(req.Code)
	if err != nil {
		return nil, err
	}

	if req.MemberID != nil {
		if _, merr := s.memberRepo.GetMemberByID(*req.MemberID); merr != nil {
			if errors.Is(merr, repositories.ErrNotFound) {
				return nil, ErrMemberNotFound
			}
			return nil, fmt.Errorf("failed to find member for redemption: %w", merr)
		}
	}

	var shiftID *int64
	if shift, serr := s.shiftRepo.GetOpenShiftByCashier(cashierID); serr == nil {
		shiftID = &shift.ID
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.couponRepo.IncrementUses(tx, coupon.ID, time.Now()); err != nil {
		if errors.Is(err, repositories.ErrGuardFailed) {
			return nil, ErrCouponNotRedeemable
		}
		return nil, fmt.Errorf("failed to redeem coupon: %w", err)
	}

	payment := &models.Payment{
		ReceiptNo:     uuid.NewString(),
		Amount:        coupon.Value,
		PaymentType:   models.PaymentTypeCoupon,
		PaymentMethod: models.MethodCash,
		MemberID:      req.MemberID,
		ShiftID:       shiftID,
		CouponID:      &coupon.ID,
	}
	if _, err := s.paymentRepo.CreatePayment(tx, payment); err != nil {
		return nil, fmt.Errorf("failed to record coupon payment: %w", err)
	}

	use := &models.CouponUse{
		CouponID:  coupon.ID,
		MemberID:  req.MemberID,
		PaymentID: &payment.ID,
	}
	if err := s.couponRepo.InsertUse(tx, use); err != nil {
		return nil, fmt.Errorf("failed to record coupon use: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit coupon redemption: %w", err)
	}

	coupon.Uses++
	return &RedeemCouponResponse{Coupon: coupon, Payment: payment}, nil
}

func (s *couponService) SearchUsage(filters repositories.CouponUsageFilters) ([]models.CouponUse, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 20
	}
	uses, totalCount, err := s.couponRepo.SearchUsage(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to search coupon usage: %w", err)
	}
	return uses, totalCount, nil
}
