package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/repositories"
)

var (
	ErrMemberExpired   = errors.New("membership has expired")
	ErrMemberSuspended = errors.New("member is suspended")
)

// CheckInResponse reports the admission decision. GraceWarning is set when the
// member was admitted inside the grace window and should be prompted to renew.
type CheckInResponse struct {
	CheckIn      *models.CheckIn `json:"check_in"`
	Member       *models.Member  `json:"member"`
	GraceWarning bool            `json:"grace_warning"`
}

// --- CheckInService Interface ---
type CheckInService interface {
	CheckInMember(memberID int64) (*CheckInResponse, error)
	GetCheckIns(memberID *int64, from, to *time.Time, page, pageSize int) ([]models.CheckIn, int, error)
	CountCheckIns(from, to time.Time) (int, error)
}

type checkInService struct {
	checkInRepo repositories.CheckInRepository
	memberRepo  repositories.MemberRepository
	settingRepo repositories.SettingRepository
	db          *sql.DB
}

// NewCheckInService creates a new instance of CheckInService.
func NewCheckInService(
	cr repositories.CheckInRepository,
	mr repositories.MemberRepository,
	str repositories.SettingRepository,
	db *sql.DB,
) CheckInService {
	return &checkInService{
		checkInRepo: cr,
		memberRepo:  mr,
		settingRepo: str,
		db:          db,
	}
}

// CheckInMember admits active and grace members and refuses the rest. The
// status recorded on the check-in row is the status at the moment of admission.
func (s *checkInService) CheckInMember(memberID int64) (*CheckInResponse, error) {
	member, err := s.memberRepo.GetMemberByID(memberID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find member for check-in: %w", err)
	}

	settings, err := s.settingRepo.GetSettings()
	graceDays := 7
	if err == nil {
		graceDays = settings.GracePeriodDays
	}
	status := DeriveStatus(member.Status, member.ExpiryDate, graceDays, time.Now())
	member.Status = status

	switch status {
	case models.StatusSuspended:
		return nil, ErrMemberSuspended
	case models.StatusExpired:
		return nil, ErrMemberExpired
	}

	checkIn := &models.CheckIn{
		MemberID:        memberID,
		StatusAtCheckin: status,
	}
	if _, err := s.checkInRepo.CreateCheckIn(s.db, checkIn); err != nil {
		return nil, fmt.Errorf("failed to record check-in: %w", err)
	}

	return &CheckInResponse{
		CheckIn:      checkIn,
		Member:       member,
		GraceWarning: status == models.StatusGrace,
	}, nil
}

func (s *checkInService) CountCheckIns(from, to time.Time) (int, error) {
	count, err := s.checkInRepo.CountCheckIns(from, to)
	if err != nil {
		return 0, fmt.Errorf("failed to count check-ins: %w", err)
	}
	return count, nil
}

func (s *checkInService) GetCheckIns(memberID *int64, from, to *time.Time, page, pageSize int) ([]models.CheckIn, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	checkIns, totalCount, err := s.checkInRepo.GetCheckIns(memberID, from, to, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get check-ins: %w", err)
	}
	return checkIns, totalCount, nil
}
