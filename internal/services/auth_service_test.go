package services

import (
	"errors"
	"testing"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/repositories"
	"gym_crm_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

type fakeAuthRepo struct {
	repositories.AuthRepository
	user      *models.User
	userCount int
	created   *models.User
}

func (f *fakeAuthRepo) FindUserByUsername(username string) (*models.User, error) {
	if f.user == nil || f.user.Username != username {
		return nil, repositories.ErrNotFound
	}
	u := *f.user
	return &u, nil
}

func (f *fakeAuthRepo) CountUsers() (int, error) {
	return f.userCount, nil
}

func (f *fakeAuthRepo) CreateUser(executor repositories.SQLExecutor, user *models.User) (int64, error) {
	f.created = user
	user.ID = 1
	return 1, nil
}

type fakeDeviceRepo struct {
	repositories.DeviceRepository
	approvedFingerprints map[string]bool
	approvedCount        int
	pending              *models.DeviceRequest
	created              *models.DeviceRequest
}

func (f *fakeDeviceRepo) IsFingerprintApproved(fingerprint string) (bool, error) {
	return f.approvedFingerprints[fingerprint], nil
}

func (f *fakeDeviceRepo) CountApproved() (int, error) {
	return f.approvedCount, nil
}

func (f *fakeDeviceRepo) HasPendingRequest(fingerprint string) (*models.DeviceRequest, error) {
	if f.pending == nil || f.pending.Fingerprint != fingerprint {
		return nil, repositories.ErrNotFound
	}
	return f.pending, nil
}

func (f *fakeDeviceRepo) CreateRequest(executor repositories.SQLExecutor, request *models.DeviceRequest) (int64, error) {
	f.created = request
	request.ID = 1
	return 1, nil
}

func testUser(t *testing.T, username, password, role string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing test password: %v", err)
	}
	return &models.User{
		ID:           1,
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	}
}

func TestLoginUnknownDeviceCreatesPendingRequest(t *testing.T) {
	utils.SetJWTSecret("test-secret")

	deviceRepo := &fakeDeviceRepo{approvedCount: 1}
	svc := NewAuthService(
		&fakeAuthRepo{user: testUser(t, "front-desk", "password123", models.RoleCashier)},
		deviceRepo,
		nil,
	)

	_, err := svc.Login(LoginRequest{
		Username:          "front-desk",
		Password:          "password123",
		DeviceFingerprint: "fp-new-terminal",
	})

	var deviceErr *ErrDeviceNotAuthorized
	if !errors.As(err, &deviceErr) {
		t.Fatalf("Login error = %v, want ErrDeviceNotAuthorized", err)
	}
	if deviceRepo.created == nil {
		t.Fatal("no device request was recorded")
	}
	if deviceRepo.created.Status != models.DeviceStatusPending {
		t.Errorf("request status = %q, want pending", deviceRepo.created.Status)
	}
	if deviceRepo.created.Username == nil || *deviceRepo.created.Username != "front-desk" {
		t.Errorf("request username = %v, want front-desk", deviceRepo.created.Username)
	}
	if deviceErr.RequestToken != deviceRepo.created.Token {
		t.Errorf("returned token %q does not match recorded request %q", deviceErr.RequestToken, deviceRepo.created.Token)
	}
}

func TestLoginReusesPendingRequest(t *testing.T) {
	deviceRepo := &fakeDeviceRepo{
		approvedCount: 1,
		pending:       &models.DeviceRequest{Token: "tok-existing", Fingerprint: "fp-new-terminal", Status: models.DeviceStatusPending},
	}
	svc := NewAuthService(
		&fakeAuthRepo{user: testUser(t, "front-desk", "password123", models.RoleCashier)},
		deviceRepo,
		nil,
	)

	_, err := svc.Login(LoginRequest{
		Username:          "front-desk",
		Password:          "password123",
		DeviceFingerprint: "fp-new-terminal",
	})

	var deviceErr *ErrDeviceNotAuthorized
	if !errors.As(err, &deviceErr) {
		t.Fatalf("Login error = %v, want ErrDeviceNotAuthorized", err)
	}
	if deviceErr.RequestToken != "tok-existing" {
		t.Errorf("token = %q, want the existing pending token", deviceErr.RequestToken)
	}
	if deviceRepo.created != nil {
		t.Error("a duplicate request was recorded for a device with one pending")
	}
}

func TestLoginFirstAdminDeviceIsTrusted(t *testing.T) {
	utils.SetJWTSecret("test-secret")

	deviceRepo := &fakeDeviceRepo{approvedCount: 0}
	svc := NewAuthService(
		&fakeAuthRepo{user: testUser(t, "admin", "password123", models.RoleAdmin)},
		deviceRepo,
		nil,
	)

	resp, err := svc.Login(LoginRequest{
		Username:          "admin",
		Password:          "password123",
		DeviceFingerprint: "fp-first-device",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("expected tokens from bootstrap login")
	}
	if deviceRepo.created == nil {
		t.Fatal("bootstrap device was not recorded")
	}
	if deviceRepo.created.Status != models.DeviceStatusApproved {
		t.Errorf("bootstrap device status = %q, want approved", deviceRepo.created.Status)
	}
}

func TestLoginCashierIsNotBootstrapped(t *testing.T) {
	deviceRepo := &fakeDeviceRepo{approvedCount: 0}
	svc := NewAuthService(
		&fakeAuthRepo{user: testUser(t, "front-desk", "password123", models.RoleCashier)},
		deviceRepo,
		nil,
	)

	_, err := svc.Login(LoginRequest{
		Username:          "front-desk",
		Password:          "password123",
		DeviceFingerprint: "fp-first-device",
	})

	var deviceErr *ErrDeviceNotAuthorized
	if !errors.As(err, &deviceErr) {
		t.Fatalf("Login error = %v, want ErrDeviceNotAuthorized", err)
	}
	if deviceRepo.created == nil || deviceRepo.created.Status != models.DeviceStatusPending {
		t.Error("cashier's first device must go through the approval queue")
	}
}

func TestBootstrapAdmin(t *testing.T) {
	t.Run("empty users table seeds the admin", func(t *testing.T) {
		authRepo := &fakeAuthRepo{userCount: 0}
		svc := NewAuthService(authRepo, &fakeDeviceRepo{}, nil)

		if err := svc.BootstrapAdmin("admin", "ChangeMe#2025"); err != nil {
			t.Fatalf("BootstrapAdmin: %v", err)
		}
		if authRepo.created == nil {
			t.Fatal("no user was created")
		}
		if authRepo.created.Role != models.RoleAdmin {
			t.Errorf("seed role = %q, want admin", authRepo.created.Role)
		}
	})

	t.Run("existing users skip seeding", func(t *testing.T) {
		authRepo := &fakeAuthRepo{userCount: 3}
		svc := NewAuthService(authRepo, &fakeDeviceRepo{}, nil)

		if err := svc.BootstrapAdmin("admin", "ChangeMe#2025"); err != nil {
			t.Fatalf("BootstrapAdmin: %v", err)
		}
		if authRepo.created != nil {
			t.Error("seed admin must not be created when users exist")
		}
	})

	t.Run("blank password skips seeding", func(t *testing.T) {
		authRepo := &fakeAuthRepo{userCount: 0}
		svc := NewAuthService(authRepo, &fakeDeviceRepo{}, nil)

		if err := svc.BootstrapAdmin("admin", ""); err != nil {
			t.Fatalf("BootstrapAdmin: %v", err)
		}
		if authRepo.created != nil {
			t.Error("seed admin must not be created without a configured password")
		}
	})
}
