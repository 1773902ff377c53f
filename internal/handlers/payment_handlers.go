package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/services"
	"gym_crm_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// PaymentHandler holds the payment service.
type PaymentHandler struct {
	paymentService services.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(ps services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: ps}
}

// paymentFiltersFromQuery parses the ledger list filters from query params.
func paymentFiltersFromQuery(c *gin.Context) (models.PaymentFilters, error) {
	var filters models.PaymentFilters
	filters.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filters.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	if v := c.Query("date_from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filters, err
		}
		filters.DateFrom = &t
	}
	if v := c.Query("date_to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			return filters, err
		}
		// date_to is inclusive on the calendar day.
		end := t.AddDate(0, 0, 1)
		filters.DateTo = &end
	}
	if v := c.Query("payment_type"); v != "" {
		filters.PaymentType = &v
	}
	if v := c.Query("payment_method"); v != "" {
		filters.PaymentMethod = &v
	}
	if v := c.Query("member_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filters, err
		}
		filters.MemberID = &id
	}
	if v := c.Query("shift_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filters, err
		}
		filters.ShiftID = &id
	}
	return filters, nil
}

// GetPayments handles listing the payment ledger with filters.
func (h *PaymentHandler) GetPayments(c *gin.Context) {
	filters, err := paymentFiltersFromQuery(c)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid filter parameters.", err.Error()))
		return
	}

	payments, totalCount, err := h.paymentService.GetPayments(filters)
	if err != nil {
		utils.LogError(err, "GetPayments: Error from paymentService.GetPayments")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch payments.", "Internal error"))
		return
	}

	if payments == nil {
		payments = []models.Payment{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      payments,
		"total":     totalCount,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}

// GetPaymentByID handles fetching a single ledger row.
func (h *PaymentHandler) GetPaymentByID(c *gin.Context) {
	idStr := c.Param("id")
	paymentID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid payment ID format.", err.Error()))
		return
	}

	payment, err := h.paymentService.GetPaymentByID(paymentID)
	if err != nil {
		utils.LogError(err, "GetPaymentByID: Error from paymentService.GetPaymentByID for ID "+idStr)
		if errors.Is(err, services.ErrPaymentNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Payment not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch payment.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, payment)
}

// RecordWalkIn handles charging a walk-in visitor at the configured fee.
func (h *PaymentHandler) RecordWalkIn(c *gin.Context) {
	var req services.WalkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "RecordWalkIn: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	cashierID, _ := GetUserIDFromContext(c)
	payment, err := h.paymentService.RecordWalkIn(req, cashierID)
	if err != nil {
		utils.LogError(err, "RecordWalkIn: Error from paymentService.RecordWalkIn")
		if errors.Is(err, services.ErrPaymentValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to record walk-in.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, payment)
}

// RecordGraceSettlement handles settling a member's grace period without renewal.
func (h *PaymentHandler) RecordGraceSettlement(c *gin.Context) {
	var req services.GraceSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "RecordGraceSettlement: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	cashierID, _ := GetUserIDFromContext(c)
	payment, err := h.paymentService.RecordGraceSettlement(req, cashierID)
	if err != nil {
		utils.LogError(err, "RecordGraceSettlement: Error from paymentService.RecordGraceSettlement")
		if errors.Is(err, services.ErrMemberNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Member not found.", err.Error()))
		} else if errors.Is(err, services.ErrPaymentValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to record grace settlement.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, payment)
}
