package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/repositories"
	"gym_crm_backend/pkg/utils"

	"github.com/google/uuid"
)

// --- Custom Service Errors for Member ---
var (
	ErrMemberNotFound     = errors.New("member not found")
	ErrMemberIDExists     = errors.New("member ID already exists")
	ErrNRICExists         = errors.New("NRIC already registered")
	ErrMemberValidation   = errors.New("member data validation error")
	ErrInvalidNRIC        = errors.New("invalid NRIC format")
	ErrDateFormat         = errors.New("invalid date format, please use YYYY-MM-DD")
	ErrMemberInUse        = errors.New("member cannot be deleted as they are referenced in other records")
	ErrPlanNotFound       = errors.New("membership plan not found")
	ErrMemberNotSuspended = errors.New("member is not suspended")
)

// --- Member DTOs ---

type RegisterMemberRequest struct {
	MemberID      string  `json:"member_id"`
	FullName      string  `json:"full_name" binding:"required"`
	NRIC          string  `json:"nric" binding:"required"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	PlanID        int64   `json:"plan_id" binding:"required"`
	PaymentMethod string  `json:"payment_method" binding:"required"`
	Notes         *string `json:"notes"`
}

type UpdateMemberRequest struct {
	FullName *string `json:"full_name"`
	NRIC     *string `json:"nric"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email"`
	Notes    *string `json:"notes"`
}

type RenewMemberRequest struct {
	PlanID        int64  `json:"plan_id" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required"`
}

// RegisterMemberResponse bundles the created member with its registration payment.
type RegisterMemberResponse struct {
	Member  *models.Member  `json:"member"`
	Payment *models.Payment `json:"payment"`
}

// --- MemberService Interface ---
type MemberService interface {
	RegisterMember(req RegisterMemberRequest, cashierID int64) (*RegisterMemberResponse, error)
	GetMemberByID(memberID int64) (*models.Member, error)
	GetMembers(page, pageSize int, searchTerm *string, status *string) ([]models.Member, int, error)
	UpdateMember(memberID int64, req UpdateMemberRequest) (*models.Member, error)
	DeleteMember(memberID int64) error
	RenewMember(memberID int64, req RenewMemberRequest, cashierID int64) (*RegisterMemberResponse, error)
	SuspendMember(memberID int64) (*models.Member, error)
	UnsuspendMember(memberID int64) (*models.Member, error)
}

type memberService struct {
	memberRepo  repositories.MemberRepository
	planRepo    repositories.PlanRepository
	paymentRepo repositories.PaymentRepository
	shiftRepo   repositories.ShiftRepository
	settingRepo repositories.SettingRepository
	db          *sql.DB
}

// NewMemberService creates a new instance of MemberService.
func NewMemberService(
	mr repositories.MemberRepository,
	pr repositories.PlanRepository,
	payr repositories.PaymentRepository,
	sr repositories.ShiftRepository,
	str repositories.SettingRepository,
	db *sql.DB,
) MemberService {
	return &memberService{
		memberRepo:  mr,
		planRepo:    pr,
		paymentRepo: payr,
		shiftRepo:   sr,
		settingRepo: str,
		db:          db,
	}
}

func validPaymentMethod(method string) bool {
	switch method {
	case models.MethodCash, models.MethodQR, models.MethodBankTransfer:
		return true
	}
	return false
}

// openShiftID returns the acting cashier's open shift ID, or nil when no shift
// is open. Payments made outside a shift are simply unattributed.
func (s *memberService) openShiftID(cashierID int64) *int64 {
	shift, err := s.shiftRepo.GetOpenShiftByCashier(cashierID)
	if err != nil {
		return nil
	}
	return &shift.ID
}

// refreshStatus recomputes the stored status opportunistically on read.
// Persistence failures are logged, not surfaced: the derived value is returned
// either way.
func (s *memberService) refreshStatus(member *models.Member) *models.Member {
	settings, err := s.settingRepo.GetSettings()
	graceDays := 7
	if err == nil {
		graceDays = settings.GracePeriodDays
	}

	derived := DeriveStatus(member.Status, member.ExpiryDate, graceDays, time.Now())
	if derived != member.Status {
		if err := s.memberRepo.UpdateMemberStatus(s.db, member.ID, derived); err != nil {
			utils.LogWarn(err, "failed to persist recomputed member status")
		}
		member.Status = derived
	}
	return member
}

func (s *memberService) RegisterMember(req RegisterMemberRequest, cashierID int64) (*RegisterMemberResponse, error) {
	if strings.TrimSpace(req.FullName) == "" {
		return nil, fmt.Errorf("%w: full name cannot be empty", ErrMemberValidation)
	}
	if !utils.IsValidNRIC(req.NRIC) {
		return nil, ErrInvalidNRIC
	}
	if !validPaymentMethod(req.PaymentMethod) {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrMemberValidation, req.PaymentMethod)
	}
	if req.Email != nil && *req.Email != "" && !utils.IsValidEmail(*req.Email) {
		return nil, fmt.Errorf("%w: email format is invalid", ErrMemberValidation)
	}

	plan, err := s.planRepo.GetPlanByID(req.PlanID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to fetch membership plan: %w", err)
	}

	memberID := strings.TrimSpace(req.MemberID)
	if memberID == "" {
		seq, seqErr := s.memberRepo.NextMemberSequence()
		if seqErr != nil {
			return nil, fmt.Errorf("failed to generate member ID: %w", seqErr)
		}
		memberID = fmt.Sprintf("GM-%05d", seq)
	}

	now := time.Now()
	expiry := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, plan.DurationMonths+plan.FreeMonths, 0)

	member := &models.Member{
		MemberID:   memberID,
		FullName:   req.FullName,
		NRIC:       utils.NormalizeNRIC(req.NRIC),
		Phone:      req.Phone,
		Email:      req.Email,
		MemberType: plan.MemberType,
		PlanID:     &plan.ID,
		Status:     models.StatusActive,
		ExpiryDate: expiry,
		Notes:      req.Notes,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := s.memberRepo.CreateMember(tx, member)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			if strings.Contains(err.Error(), "members_member_id_key") {
				return nil, ErrMemberIDExists
			}
			if strings.Contains(err.Error(), "members_nric_key") {
				return nil, ErrNRICExists
			}
			return nil, fmt.Errorf("failed to register member due to duplicate data: %w", err)
		}
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	payment := &models.Payment{
		ReceiptNo:     uuid.NewString(),
		Amount:        plan.Price + plan.RegistrationFee,
		PaymentType:   models.PaymentTypeRegistration,
		PaymentMethod: req.PaymentMethod,
		MemberID:      &id,
		ShiftID:       s.openShiftID(cashierID),
	}
	if _, err := s.paymentRepo.CreatePayment(tx, payment); err != nil {
		return nil, fmt.Errorf("failed to record registration payment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit member registration: %w", err)
	}

	member.ID = id
	return &RegisterMemberResponse{Member: member, Payment: payment}, nil
}

func (s *memberService) GetMemberByID(memberID int64) (*models.Member, error) {
	member, err := s.memberRepo.GetMemberByID(memberID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to get member by ID: %w", err)
	}
	return s.refreshStatus(member), nil
}

func (s *memberService) GetMembers(page, pageSize int, searchTerm *string, status *string) ([]models.Member, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	settings, err := s.settingRepo.GetSettings()
	graceDays := 7
	if err == nil {
		graceDays = settings.GracePeriodDays
	}
	now := time.Now()

	members, totalCount, err := s.memberRepo.GetMembers(page, pageSize, searchTerm, status, graceDays, now)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get members: %w", err)
	}

	for i := range members {
		members[i].Status = DeriveStatus(members[i].Status, members[i].ExpiryDate, graceDays, now)
	}
	return members, totalCount, nil
}

func (s *memberService) UpdateMember(memberID int64, req UpdateMemberRequest) (*models.Member, error) {
	member, err := s.memberRepo.GetMemberByID(memberID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find member for update: %w", err)
	}

	if req.FullName != nil {
		if strings.TrimSpace(*req.FullName) == "" {
			return nil, fmt.Errorf("%w: full name cannot be empty", ErrMemberValidation)
		}
		member.FullName = *req.FullName
	}
	if req.NRIC != nil {
		if !utils.IsValidNRIC(*req.NRIC) {
			return nil, ErrInvalidNRIC
		}
		member.NRIC = utils.NormalizeNRIC(*req.NRIC)
	}
	if req.Email != nil {
		if *req.Email != "" && !utils.IsValidEmail(*req.Email) {
			return nil, fmt.Errorf("%w: email format is invalid", ErrMemberValidation)
		}
		member.Email = req.Email
	}
	if req.Phone != nil {
		member.Phone = req.Phone
	}
	if req.Notes != nil {
		member.Notes = req.Notes
	}

	if err := s.memberRepo.UpdateMember(s.db, member); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			if strings.Contains(err.Error(), "members_nric_key") {
				return nil, ErrNRICExists
			}
			return nil, fmt.Errorf("failed to update member due to duplicate data: %w", err)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to update member: %w", err)
	}
	return s.GetMemberByID(memberID)
}

func (s *memberService) DeleteMember(memberID int64) error {
	if _, err := s.memberRepo.GetMemberByID(memberID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("failed to find member for deletion: %w", err)
	}

	if err := s.memberRepo.DeleteMember(s.db, memberID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrMemberNotFound
		}
		if strings.Contains(err.Error(), "referenced by other records") {
			return ErrMemberInUse
		}
		return fmt.Errorf("failed to delete member: %w", err)
	}
	return nil
}

// RenewMember extends the membership by the plan's paid plus free months,
// counted from the later of the current expiry and today, and records a
// renewal payment. A member renewing inside the grace window additionally
// settles the grace period, which is recorded as its own ledger row.
func (s *memberService) RenewMember(memberID int64, req RenewMemberRequest, cashierID int64) (*RegisterMemberResponse, error) {
	if !validPaymentMethod(req.PaymentMethod) {
		return nil, fmt.Errorf("%w: unknown payment method %q", ErrMemberValidation, req.PaymentMethod)
	}

	member, err := s.memberRepo.GetMemberByID(memberID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find member for renewal: %w", err)
	}
	// Suspension is lifted only through the explicit unsuspend operation, so a
	// suspended member cannot renew their way back in.
	if member.Status == models.StatusSuspended {
		return nil, ErrMemberSuspended
	}

	plan, err := s.planRepo.GetPlanByID(req.PlanID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to fetch membership plan: %w", err)
	}

	settings, err := s.settingRepo.GetSettings()
	graceDays := 7
	if err == nil {
		graceDays = settings.GracePeriodDays
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	base := member.ExpiryDate
	if today.After(base) {
		base = today
	}
	newExpiry := base.AddDate(0, plan.DurationMonths+plan.FreeMonths, 0)

	wasInGrace := DeriveStatus(member.Status, member.ExpiryDate, graceDays, now) == models.StatusGrace

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.memberRepo.UpdateMemberExpiry(tx, memberID, newExpiry, plan.ID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to extend membership: %w", err)
	}

	shiftID := s.openShiftID(cashierID)
	payment := &models.Payment{
		ReceiptNo:     uuid.NewString(),
		Amount:        plan.Price,
		PaymentType:   models.PaymentTypeRenewal,
		PaymentMethod: req.PaymentMethod,
		MemberID:      &memberID,
		ShiftID:       shiftID,
	}
	if _, err := s.paymentRepo.CreatePayment(tx, payment); err != nil {
		return nil, fmt.Errorf("failed to record renewal payment: %w", err)
	}

	if wasInGrace {
		note := "grace period settled on renewal"
		settlement := &models.Payment{
			ReceiptNo:     uuid.NewString(),
			Amount:        0,
			PaymentType:   models.PaymentTypeGraceSettlement,
			PaymentMethod: req.PaymentMethod,
			MemberID:      &memberID,
			ShiftID:       shiftID,
			Notes:         &note,
		}
		if _, err := s.paymentRepo.CreatePayment(tx, settlement); err != nil {
			return nil, fmt.Errorf("failed to record grace settlement: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit renewal: %w", err)
	}

	member.ExpiryDate = newExpiry
	member.PlanID = &plan.ID
	member.Status = models.StatusActive
	return &RegisterMemberResponse{Member: member, Payment: payment}, nil
}

func (s *memberService) SuspendMember(memberID int64) (*models.Member, error) {
	member, err := s.memberRepo.GetMemberByID(memberID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find member for suspension: %w", err)
	}

	if err := s.memberRepo.UpdateMemberStatus(s.db, memberID, models.StatusSuspended); err != nil {
		return nil, fmt.Errorf("failed to suspend member: %w", err)
	}
	member.Status = models.StatusSuspended
	return member, nil
}

// UnsuspendMember lifts a suspension; the stored status reverts to the value
// derived from the expiry date.
func (s *memberService) UnsuspendMember(memberID int64) (*models.Member, error) {
	member, err := s.memberRepo.GetMemberByID(memberID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find member: %w", err)
	}
	if member.Status != models.StatusSuspended {
		return nil, ErrMemberNotSuspended
	}

	settings, err := s.settingRepo.GetSettings()
	graceDays := 7
	if err == nil {
		graceDays = settings.GracePeriodDays
	}
	derived := DeriveStatus(models.StatusActive, member.ExpiryDate, graceDays, time.Now())

	if err := s.memberRepo.UpdateMemberStatus(s.db, memberID, derived); err != nil {
		return nil, fmt.Errorf("failed to reinstate member: %w", err)
	}
	member.Status = derived
	return member, nil
}
