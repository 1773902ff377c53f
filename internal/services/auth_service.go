package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/repositories"
	"gym_crm_backend/pkg/utils"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrUsernameExists      = errors.New("username already exists")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrUserInactive        = errors.New("user account is disabled")
	ErrUserValidation      = errors.New("user data validation error")
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

// ErrDeviceNotAuthorized carries the pending request token so the client can
// show it to an administrator.
type ErrDeviceNotAuthorized struct {
	RequestToken string
}

func (e *ErrDeviceNotAuthorized) Error() string {
	return fmt.Sprintf("device not authorized, approval request %s is pending", e.RequestToken)
}

// --- Auth DTOs ---

type RegisterUserRequest struct {
	Username string  `json:"username" binding:"required"`
	Password string  `json:"password" binding:"required"`
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
	Role     string  `json:"role" binding:"required"`
}

type LoginRequest struct {
	Username          string `json:"username" binding:"required"`
	Password          string `json:"password" binding:"required"`
	DeviceFingerprint string `json:"device_fingerprint" binding:"required"`
}

type LoginResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         *models.User `json:"user"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type RefreshTokenResponse struct {
	AccessToken string `json:"access_token"`
}

// --- AuthService Interface ---
type AuthService interface {
	RegisterUser(req RegisterUserRequest) (*models.User, error)
	BootstrapAdmin(username, password string) error
	Login(req LoginRequest) (*LoginResponse, error)
	RefreshToken(req RefreshTokenRequest) (*RefreshTokenResponse, error)
	GetUserProfile(userID int64) (*models.User, error)
	GetUsers(page, pageSize int) ([]models.User, int, error)
	SetUserActive(userID int64, active bool) error
}

type authService struct {
	authRepo   repositories.AuthRepository
	deviceRepo repositories.DeviceRepository
	db         *sql.DB
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(ar repositories.AuthRepository, dr repositories.DeviceRepository, db *sql.DB) AuthService {
	return &authService{authRepo: ar, deviceRepo: dr, db: db}
}

func (s *authService) RegisterUser(req RegisterUserRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, fmt.Errorf("%w: username cannot be empty", ErrUserValidation)
	}
	if len(req.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrUserValidation)
	}
	if req.Role != models.RoleAdmin && req.Role != models.RoleCashier {
		return nil, fmt.Errorf("%w: role must be %s or %s", ErrUserValidation, models.RoleAdmin, models.RoleCashier)
	}
	if req.Email != nil && *req.Email != "" && !utils.IsValidEmail(*req.Email) {
		return nil, fmt.Errorf("%w: invalid email format", ErrUserValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		Email:        req.Email,
		FullName:     req.FullName,
		Role:         req.Role,
		IsActive:     true,
	}
	if _, err := s.authRepo.CreateUser(s.db, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrUsernameExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user.PasswordHash = ""
	return user, nil
}

// BootstrapAdmin seeds the configured administrator account when the users
// table is empty, so a fresh install has someone who can log in and create the
// rest of the staff. It is a no-op once any user exists.
func (s *authService) BootstrapAdmin(username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil
	}
	count, err := s.authRepo.CountUsers()
	if err != nil {
		return fmt.Errorf("failed to count users for bootstrap: %w", err)
	}
	if count > 0 {
		return nil
	}

	if _, err := s.RegisterUser(RegisterUserRequest{
		Username: username,
		Password: password,
		Role:     models.RoleAdmin,
	}); err != nil {
		// Lost a race against a concurrent bootstrap; the account exists.
		if errors.Is(err, ErrUsernameExists) {
			return nil
		}
		return fmt.Errorf("failed to create bootstrap admin: %w", err)
	}
	utils.LogInfo("Bootstrap admin account created", map[string]interface{}{"username": username})
	return nil
}

// Login verifies credentials and then gates on device authorization. An unknown
// fingerprint produces a pending approval request instead of a session, and the
// login fails until an administrator approves it.
func (s *authService) Login(req LoginRequest) (*LoginResponse, error) {
	user, err := s.authRepo.FindUserByUsername(strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	fingerprint := strings.TrimSpace(req.DeviceFingerprint)
	approved, err := s.deviceRepo.IsFingerprintApproved(fingerprint)
	if err != nil {
		return nil, fmt.Errorf("failed to check device authorization: %w", err)
	}
	if !approved {
		bootstrapped, berr := s.bootstrapFirstDevice(user, fingerprint)
		if berr != nil {
			return nil, berr
		}
		if !bootstrapped {
			// Reuse an existing pending request so repeated logins from the same
			// device do not flood the approval queue.
			if pending, perr := s.deviceRepo.HasPendingRequest(fingerprint); perr == nil {
				return nil, &ErrDeviceNotAuthorized{RequestToken: pending.Token}
			} else if !errors.Is(perr, repositories.ErrNotFound) {
				return nil, fmt.Errorf("failed to check pending device request: %w", perr)
			}

			request := &models.DeviceRequest{
				Token:       uuid.NewString(),
				Fingerprint: fingerprint,
				Username:    &user.Username,
				Status:      models.DeviceStatusPending,
			}
			if _, cerr := s.deviceRepo.CreateRequest(s.db, request); cerr != nil {
				return nil, fmt.Errorf("failed to create device request: %w", cerr)
			}
			return nil, &ErrDeviceNotAuthorized{RequestToken: request.Token}
		}
	}

	accessToken, err := utils.GenerateAccessToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refreshToken, err := utils.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	user.PasswordHash = ""
	return &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
	}, nil
}

// bootstrapFirstDevice trusts an administrator's device on a fresh install.
// Before any device has ever been approved there is no way to reach the
// approval endpoints, so the first admin login records its fingerprint as
// approved directly. Once one approved device exists every other device goes
// through the normal request flow.
func (s *authService) bootstrapFirstDevice(user *models.User, fingerprint string) (bool, error) {
	if user.Role != models.RoleAdmin {
		return false, nil
	}
	approvedCount, err := s.deviceRepo.CountApproved()
	if err != nil {
		return false, fmt.Errorf("failed to count approved devices: %w", err)
	}
	if approvedCount > 0 {
		return false, nil
	}

	request := &models.DeviceRequest{
		Token:       uuid.NewString(),
		Fingerprint: fingerprint,
		Username:    &user.Username,
		Status:      models.DeviceStatusApproved,
	}
	if _, err := s.deviceRepo.CreateRequest(s.db, request); err != nil {
		return false, fmt.Errorf("failed to record bootstrap device: %w", err)
	}
	utils.LogInfo("First admin device trusted on bootstrap", map[string]interface{}{
		"username": user.Username, "fingerprint": fingerprint,
	})
	return true, nil
}

func (s *authService) RefreshToken(req RefreshTokenRequest) (*RefreshTokenResponse, error) {
	claims, err := utils.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.authRepo.FindUserByID(claims.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to look up user for refresh: %w", err)
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}

	accessToken, err := utils.GenerateAccessToken(user.ID, user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	return &RefreshTokenResponse{AccessToken: accessToken}, nil
}

func (s *authService) GetUserProfile(userID int64) (*models.User, error) {
	user, err := s.authRepo.FindUserByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *authService) GetUsers(page, pageSize int) ([]models.User, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	users, totalCount, err := s.authRepo.GetUsers(page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get users: %w", err)
	}
	return users, totalCount, nil
}

func (s *authService) SetUserActive(userID int64, active bool) error {
	if err := s.authRepo.SetUserActive(s.db, userID, active); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update user active flag: %w", err)
	}
	return nil
}
