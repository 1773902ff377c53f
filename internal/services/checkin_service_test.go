package services

import (
	"errors"
	"testing"
	"time"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/repositories"
)

type fakeMemberRepo struct {
	repositories.MemberRepository
	member *models.Member
	err    error
}

func (f fakeMemberRepo) GetMemberByID(id int64) (*models.Member, error) {
	if f.err != nil {
		return nil, f.err
	}
	m := *f.member
	return &m, nil
}

type fakeSettingRepo struct {
	repositories.SettingRepository
	settings *models.Settings
}

func (f fakeSettingRepo) GetSettings() (*models.Settings, error) {
	if f.settings == nil {
		return nil, repositories.ErrNotFound
	}
	return f.settings, nil
}

type fakeCheckInRepo struct {
	repositories.CheckInRepository
	created *models.CheckIn
}

func (f *fakeCheckInRepo) CreateCheckIn(executor repositories.SQLExecutor, checkIn *models.CheckIn) (int64, error) {
	f.created = checkIn
	checkIn.ID = 1
	return 1, nil
}

func TestCheckInMember(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name         string
		member       models.Member
		graceDays    int
		wantErr      error
		wantStatus   string
		graceWarning bool
	}{
		{
			name:       "active member admitted",
			member:     models.Member{ID: 1, Status: models.StatusActive, ExpiryDate: now.AddDate(0, 1, 0)},
			graceDays:  7,
			wantStatus: models.StatusActive,
		},
		{
			name:         "grace member admitted with warning",
			member:       models.Member{ID: 2, Status: models.StatusActive, ExpiryDate: now.AddDate(0, 0, -2)},
			graceDays:    7,
			wantStatus:   models.StatusGrace,
			graceWarning: true,
		},
		{
			name:      "expired member refused",
			member:    models.Member{ID: 3, Status: models.StatusActive, ExpiryDate: now.AddDate(0, 0, -30)},
			graceDays: 7,
			wantErr:   ErrMemberExpired,
		},
		{
			name:      "suspended member refused even before expiry",
			member:    models.Member{ID: 4, Status: models.StatusSuspended, ExpiryDate: now.AddDate(0, 1, 0)},
			graceDays: 7,
			wantErr:   ErrMemberSuspended,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkInRepo := &fakeCheckInRepo{}
			svc := NewCheckInService(
				checkInRepo,
				fakeMemberRepo{member: &tt.member},
				fakeSettingRepo{settings: &models.Settings{GracePeriodDays: tt.graceDays}},
				nil,
			)

			resp, err := svc.CheckInMember(tt.member.ID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CheckInMember error = %v, want %v", err, tt.wantErr)
				}
				if checkInRepo.created != nil {
					t.Error("refused check-in must not be recorded")
				}
				return
			}
			if err != nil {
				t.Fatalf("CheckInMember: %v", err)
			}
			if resp.CheckIn.StatusAtCheckin != tt.wantStatus {
				t.Errorf("status at check-in = %q, want %q", resp.CheckIn.StatusAtCheckin, tt.wantStatus)
			}
			if resp.GraceWarning != tt.graceWarning {
				t.Errorf("grace warning = %v, want %v", resp.GraceWarning, tt.graceWarning)
			}
			if checkInRepo.created == nil {
				t.Error("admitted check-in was not recorded")
			}
		})
	}
}

func TestCheckInMemberNotFound(t *testing.T) {
	svc := NewCheckInService(
		&fakeCheckInRepo{},
		fakeMemberRepo{err: repositories.ErrNotFound},
		fakeSettingRepo{},
		nil,
	)
	_, err := svc.CheckInMember(99)
	if !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("error = %v, want ErrMemberNotFound", err)
	}
}
