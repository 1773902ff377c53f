package services

import (
	"errors"
	"testing"
	"time"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/repositories"
)

type listingMemberRepo struct {
	repositories.MemberRepository
	members      []models.Member
	gotStatus    *string
	gotGraceDays int
	gotNow       time.Time
}

func (f *listingMemberRepo) GetMembers(page, pageSize int, searchTerm *string, status *string, graceDays int, now time.Time) ([]models.Member, int, error) {
	f.gotStatus = status
	f.gotGraceDays = graceDays
	f.gotNow = now
	return f.members, len(f.members), nil
}

func TestRenewMemberRejectsSuspended(t *testing.T) {
	member := models.Member{
		ID:         7,
		Status:     models.StatusSuspended,
		ExpiryDate: time.Now().AddDate(0, 1, 0),
	}
	svc := NewMemberService(
		fakeMemberRepo{member: &member},
		nil, nil, nil,
		fakeSettingRepo{settings: &models.Settings{GracePeriodDays: 7}},
		nil,
	)

	_, err := svc.RenewMember(7, RenewMemberRequest{PlanID: 1, PaymentMethod: models.MethodCash}, 1)
	if !errors.Is(err, ErrMemberSuspended) {
		t.Fatalf("RenewMember error = %v, want ErrMemberSuspended", err)
	}
}

func TestGetMembersFiltersOnDerivedStatus(t *testing.T) {
	stale := models.Member{
		ID:         1,
		Status:     models.StatusActive, // stored value never refreshed
		ExpiryDate: time.Now().AddDate(0, 0, -30),
	}
	repo := &listingMemberRepo{members: []models.Member{stale}}
	svc := NewMemberService(
		repo,
		nil, nil, nil,
		fakeSettingRepo{settings: &models.Settings{GracePeriodDays: 10}},
		nil,
	)

	status := models.StatusExpired
	members, _, err := svc.GetMembers(1, 20, nil, &status)
	if err != nil {
		t.Fatalf("GetMembers: %v", err)
	}

	if repo.gotStatus == nil || *repo.gotStatus != models.StatusExpired {
		t.Errorf("repository status filter = %v, want expired", repo.gotStatus)
	}
	if repo.gotGraceDays != 10 {
		t.Errorf("repository grace days = %d, want the configured 10", repo.gotGraceDays)
	}
	if repo.gotNow.IsZero() {
		t.Error("repository did not receive the derivation instant")
	}
	if len(members) != 1 || members[0].Status != models.StatusExpired {
		t.Errorf("returned status = %q, want the derived expired", members[0].Status)
	}
}
