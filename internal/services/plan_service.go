package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/repositories"
)

var (
	ErrPlanValidation = errors.New("membership plan validation error")
	ErrPlanInUse      = errors.New("membership plan is referenced by members")
)

type CreatePlanRequest struct {
	Name            string  `json:"name" binding:"required"`
	MemberType      string  `json:"member_type" binding:"required"`
	Price           float64 `json:"price" binding:"required"`
	DurationMonths  int     `json:"duration_months" binding:"required"`
	FreeMonths      int     `json:"free_months"`
	RegistrationFee float64 `json:"registration_fee"`
	IsActive        *bool   `json:"is_active"`
}

type UpdatePlanRequest struct {
	Name            *string  `json:"name"`
	MemberType      *string  `json:"member_type"`
	Price           *float64 `json:"price"`
	DurationMonths  *int     `json:"duration_months"`
	FreeMonths      *int     `json:"free_months"`
	RegistrationFee *float64 `json:"registration_fee"`
	IsActive        *bool    `json:"is_active"`
}

// PlanService manages membership plan configuration.
type PlanService interface {
	CreatePlan(req CreatePlanRequest) (*models.MembershipPlan, error)
	GetPlanByID(id int64) (*models.MembershipPlan, error)
	GetPlans(activeOnly bool) ([]models.MembershipPlan, error)
	UpdatePlan(id int64, req UpdatePlanRequest) (*models.MembershipPlan, error)
	DeletePlan(id int64) error
}

type planService struct {
	planRepo repositories.PlanRepository
	db       *sql.DB
}

// NewPlanService creates a new instance of PlanService.
func NewPlanService(pr repositories.PlanRepository, db *sql.DB) PlanService {
	return &planService{planRepo: pr, db: db}
}

func validMemberType(t string) bool {
	return t == models.MemberTypeAdult || t == models.MemberTypeYouth
}

func (s *planService) CreatePlan(req CreatePlanRequest) (*models.MembershipPlan, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrPlanValidation)
	}
	if !validMemberType(req.MemberType) {
		return nil, fmt.Errorf("%w: member type must be adult or youth", ErrPlanValidation)
	}
	if req.Price < 0 || req.RegistrationFee < 0 {
		return nil, fmt.Errorf("%w: price and registration fee cannot be negative", ErrPlanValidation)
	}
	if req.DurationMonths <= 0 {
		return nil, fmt.Errorf("%w: duration must be at least one month", ErrPlanValidation)
	}
	if req.FreeMonths < 0 {
		return nil, fmt.Errorf("%w: free months cannot be negative", ErrPlanValidation)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	plan := &models.MembershipPlan{
		Name:            req.Name,
		MemberType:      req.MemberType,
		Price:           req.Price,
		DurationMonths:  req.DurationMonths,
		FreeMonths:      req.FreeMonths,
		RegistrationFee: req.RegistrationFee,
		IsActive:        isActive,
	}

	id, err := s.planRepo.CreatePlan(s.db, plan)
	if err != nil {
		return nil, fmt.Errorf("failed to create membership plan: %w", err)
	}
	return s.planRepo.GetPlanByID(id)
}

func (s *planService) GetPlanByID(id int64) (*models.MembershipPlan, error) {
	plan, err := s.planRepo.GetPlanByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to get membership plan: %w", err)
	}
	return plan, nil
}

func (s *planService) GetPlans(activeOnly bool) ([]models.MembershipPlan, error) {
	plans, err := s.planRepo.GetPlans(activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to get membership plans: %w", err)
	}
	return plans, nil
}

func (s *planService) UpdatePlan(id int64, req UpdatePlanRequest) (*models.MembershipPlan, error) {
	plan, err := s.planRepo.GetPlanByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to find plan for update: %w", err)
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrPlanValidation)
		}
		plan.Name = *req.Name
	}
	if req.MemberType != nil {
		if !validMemberType(*req.MemberType) {
			return nil, fmt.Errorf("%w: member type must be adult or youth", ErrPlanValidation)
		}
		plan.MemberType = *req.MemberType
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, fmt.Errorf("%w: price cannot be negative", ErrPlanValidation)
		}
		plan.Price = *req.Price
	}
	if req.DurationMonths != nil {
		if *req.DurationMonths <= 0 {
			return nil, fmt.Errorf("%w: duration must be at least one month", ErrPlanValidation)
		}
		plan.DurationMonths = *req.DurationMonths
	}
	if req.FreeMonths != nil {
		if *req.FreeMonths < 0 {
			return nil, fmt.Errorf("%w: free months cannot be negative", ErrPlanValidation)
		}
		plan.FreeMonths = *req.FreeMonths
	}
	if req.RegistrationFee != nil {
		if *req.RegistrationFee < 0 {
			return nil, fmt.Errorf("%w: registration fee cannot be negative", ErrPlanValidation)
		}
		plan.RegistrationFee = *req.RegistrationFee
	}
	if req.IsActive != nil {
		plan.IsActive = *req.IsActive
	}

	if err := s.planRepo.UpdatePlan(s.db, plan); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("failed to update membership plan: %w", err)
	}
	return s.planRepo.GetPlanByID(id)
}

func (s *planService) DeletePlan(id int64) error {
	if _, err := s.planRepo.GetPlanByID(id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPlanNotFound
		}
		return fmt.Errorf("failed to find plan for deletion: %w", err)
	}

	if err := s.planRepo.DeletePlan(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrPlanNotFound
		}
		if strings.Contains(err.Error(), "referenced by members") {
			return ErrPlanInUse
		}
		return fmt.Errorf("failed to delete membership plan: %w", err)
	}
	return nil
}
