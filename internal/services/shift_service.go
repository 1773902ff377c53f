package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/repositories"
	"gym_crm_backend/pkg/utils"
)

var (
	ErrShiftNotFound      = errors.New("shift not found")
	ErrShiftAlreadyOpen   = errors.New("cashier already has an open shift")
	ErrNoOpenShift        = errors.New("no open shift for cashier")
	ErrShiftAlreadyClosed = errors.New("shift is already closed")
	ErrShiftValidation    = errors.New("shift data validation error")
)

// --- Shift DTOs ---

type StartShiftRequest struct {
	OpeningFloat float64 `json:"opening_float"`
}

// ManualCounts are the cashier-entered totals at end of shift.
type ManualCounts struct {
	Cash float64 `json:"cash"`
	QR   float64 `json:"qr"`
	Bank float64 `json:"bank_transfer"`
}

type ClosingStockCount struct {
	ProductID  int64 `json:"product_id" binding:"required"`
	CountedQty int   `json:"counted_qty"`
}

type EndShiftRequest struct {
	Manual      ManualCounts        `json:"manual_counts"`
	Notes       *string             `json:"notes"`
	StockCounts []ClosingStockCount `json:"stock_counts"`
}

// ShiftSummary is the reconciliation view of an open shift.
type ShiftSummary struct {
	Shift        *models.Shift      `json:"shift"`
	ByMethod     map[string]float64 `json:"totals_by_method"`
	ByCategory   map[string]float64 `json:"totals_by_category"`
	SystemTotal  float64            `json:"system_total"`
	PaymentCount int                `json:"-"`
}

// EndShiftResponse reports the closed shift plus any best-effort stock count
// failures that were logged but not rolled back.
type EndShiftResponse struct {
	Shift            *models.Shift `json:"shift"`
	StockCountErrors []string      `json:"stock_count_errors,omitempty"`
}

// MethodTotals groups money by payment method.
type MethodTotals struct {
	Cash float64
	QR   float64
	Bank float64
}

// VarianceResult carries per-method variances and their sum.
type VarianceResult struct {
	Cash  float64
	QR    float64
	Bank  float64
	Total float64
}

// ComputeVariance returns system minus manual for each payment method and
// the total across methods.
func ComputeVariance(system MethodTotals, manual ManualCounts) VarianceResult {
	v := VarianceResult{
		Cash: system.Cash - manual.Cash,
		QR:   system.QR - manual.QR,
		Bank: system.Bank - manual.Bank,
	}
	v.Total = v.Cash + v.QR + v.Bank
	return v
}

// --- ShiftService Interface ---
type ShiftService interface {
	StartShift(cashierID int64, req StartShiftRequest) (*models.Shift, error)
	GetActiveShift(cashierID int64) (*ShiftSummary, error)
	GetShiftByID(shiftID int64) (*models.Shift, error)
	GetShifts(cashierID *int64, from, to *time.Time, page, pageSize int) ([]models.Shift, int, error)
	EndShift(cashierID int64, req EndShiftRequest) (*EndShiftResponse, error)
}

type shiftService struct {
	shiftRepo   repositories.ShiftRepository
	paymentRepo repositories.PaymentRepository
	productRepo repositories.ProductRepository
	db          *sql.DB
}

// NewShiftService creates a new instance of ShiftService.
func NewShiftService(
	sr repositories.ShiftRepository,
	pr repositories.PaymentRepository,
	prod repositories.ProductRepository,
	db *sql.DB,
) ShiftService {
	return &shiftService{shiftRepo: sr, paymentRepo: pr, productRepo: prod, db: db}
}

func (s *shiftService) StartShift(cashierID int64, req StartShiftRequest) (*models.Shift, error) {
	if req.OpeningFloat < 0 {
		return nil, fmt.Errorf("%w: opening float cannot be negative", ErrShiftValidation)
	}

	shift := &models.Shift{
		CashierID:    cashierID,
		OpeningFloat: req.OpeningFloat,
		StartedAt:    time.Now(),
	}
	if _, err := s.shiftRepo.CreateShift(s.db, shift); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrShiftAlreadyOpen
		}
		return nil, fmt.Errorf("failed to start shift: %w", err)
	}
	return shift, nil
}

func (s *shiftService) summarize(shift *models.Shift) (*ShiftSummary, error) {
	byMethod, err := s.paymentRepo.SumByMethodSince(shift.ID, shift.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to total payments by method: %w", err)
	}
	byCategory, err := s.paymentRepo.SumByTypeSince(shift.ID, shift.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to total payments by category: %w", err)
	}

	var systemTotal float64
	for _, amount := range byMethod {
		systemTotal += amount
	}
	return &ShiftSummary{
		Shift:       shift,
		ByMethod:    byMethod,
		ByCategory:  byCategory,
		SystemTotal: systemTotal,
	}, nil
}

func (s *shiftService) GetActiveShift(cashierID int64) (*ShiftSummary, error) {
	shift, err := s.shiftRepo.GetOpenShiftByCashier(cashierID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNoOpenShift
		}
		return nil, fmt.Errorf("failed to find open shift: %w", err)
	}
	return s.summarize(shift)
}

func (s *shiftService) GetShiftByID(shiftID int64) (*models.Shift, error) {
	shift, err := s.shiftRepo.GetShiftByID(shiftID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to get shift: %w", err)
	}
	return shift, nil
}

func (s *shiftService) GetShifts(cashierID *int64, from, to *time.Time, page, pageSize int) ([]models.Shift, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	shifts, totalCount, err := s.shiftRepo.GetShifts(cashierID, from, to, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get shifts: %w", err)
	}
	return shifts, totalCount, nil
}

// EndShift reconciles and terminally closes the cashier's open shift: system
// totals are summed from the ledger since the shift started, variances are
// system minus manual per method, and the close is a single guarded update.
// Closing stock counts are inserted afterwards best-effort; a failed insert is
// reported back but never rolls back the close.
func (s *shiftService) EndShift(cashierID int64, req EndShiftRequest) (*EndShiftResponse, error) {
	shift, err := s.shiftRepo.GetOpenShiftByCashier(cashierID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNoOpenShift
		}
		return nil, fmt.Errorf("failed to find open shift: %w", err)
	}

	summary, err := s.summarize(shift)
	if err != nil {
		return nil, err
	}

	system := MethodTotals{
		Cash: summary.ByMethod[models.MethodCash],
		QR:   summary.ByMethod[models.MethodQR],
		Bank: summary.ByMethod[models.MethodBankTransfer],
	}
	variance := ComputeVariance(system, req.Manual)

	close := repositories.ShiftClose{
		SystemCash:    system.Cash,
		SystemQR:      system.QR,
		SystemBank:    system.Bank,
		ManualCash:    req.Manual.Cash,
		ManualQR:      req.Manual.QR,
		ManualBank:    req.Manual.Bank,
		VarianceCash:  variance.Cash,
		VarianceQR:    variance.QR,
		VarianceBank:  variance.Bank,
		TotalVariance: variance.Total,
		Notes:         req.Notes,
		EndedAt:       time.Now(),
	}
	if err := s.shiftRepo.CloseShift(s.db, shift.ID, close); err != nil {
		if errors.Is(err, repositories.ErrGuardFailed) {
			return nil, ErrShiftAlreadyClosed
		}
		return nil, fmt.Errorf("failed to close shift: %w", err)
	}

	var stockErrors []string
	for _, count := range req.StockCounts {
		product, perr := s.productRepo.GetProductByID(count.ProductID)
		if perr != nil {
			msg := fmt.Sprintf("product %d: %v", count.ProductID, perr)
			utils.LogWarn(perr, "shift closing stock count skipped")
			stockErrors = append(stockErrors, msg)
			continue
		}
		entry := &models.ShiftStockCount{
			ShiftID:    shift.ID,
			ProductID:  count.ProductID,
			CountedQty: count.CountedQty,
			SystemQty:  product.Stock,
		}
		if ierr := s.shiftRepo.InsertStockCount(s.db, entry); ierr != nil {
			msg := fmt.Sprintf("product %d: %v", count.ProductID, ierr)
			utils.LogWarn(ierr, "shift closing stock count insert failed")
			stockErrors = append(stockErrors, msg)
		}
	}

	closed, err := s.shiftRepo.GetShiftByID(shift.ID)
	if err != nil {
		return nil, fmt.Errorf("shift closed but failed to reload it: %w", err)
	}
	return &EndShiftResponse{Shift: closed, StockCountErrors: stockErrors}, nil
}
