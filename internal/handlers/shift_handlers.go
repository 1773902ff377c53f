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

// ShiftHandler holds the shift service.
type ShiftHandler struct {
	shiftService services.ShiftService
}

// NewShiftHandler creates a new ShiftHandler.
func NewShiftHandler(ss services.ShiftService) *ShiftHandler {
	return &ShiftHandler{shiftService: ss}
}

// StartShift handles opening a cashier shift.
func (h *ShiftHandler) StartShift(c *gin.Context) {
	var req services.StartShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "StartShift: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	cashierID, _ := GetUserIDFromContext(c)
	shift, err := h.shiftService.StartShift(cashierID, req)
	if err != nil {
		utils.LogError(err, "StartShift: Error from shiftService.StartShift")
		if errors.Is(err, services.ErrShiftAlreadyOpen) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "An open shift already exists for this cashier.", err.Error()))
		} else if errors.Is(err, services.ErrShiftValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to start shift.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, shift)
}

// GetActiveShift returns the caller's open shift with running totals.
func (h *ShiftHandler) GetActiveShift(c *gin.Context) {
	cashierID, _ := GetUserIDFromContext(c)
	summary, err := h.shiftService.GetActiveShift(cashierID)
	if err != nil {
		if errors.Is(err, services.ErrNoOpenShift) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "No open shift.", err.Error()))
			return
		}
		utils.LogError(err, "GetActiveShift: Error from shiftService.GetActiveShift")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch active shift.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetShifts handles listing shifts with filters.
func (h *ShiftHandler) GetShifts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	var cashierID *int64
	if v := c.Query("cashier_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid cashier ID format.", err.Error()))
			return
		}
		cashierID = &id
	}

	var from, to *time.Time
	if v := c.Query("date_from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid date_from format.", err.Error()))
			return
		}
		from = &t
	}
	if v := c.Query("date_to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid date_to format.", err.Error()))
			return
		}
		end := t.AddDate(0, 0, 1)
		to = &end
	}

	shifts, totalCount, err := h.shiftService.GetShifts(cashierID, from, to, page, pageSize)
	if err != nil {
		utils.LogError(err, "GetShifts: Error from shiftService.GetShifts")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch shifts.", "Internal error"))
		return
	}

	if shifts == nil {
		shifts = []models.Shift{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      shifts,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetShiftByID handles fetching a single shift.
func (h *ShiftHandler) GetShiftByID(c *gin.Context) {
	idStr := c.Param("id")
	shiftID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid shift ID format.", err.Error()))
		return
	}

	shift, err := h.shiftService.GetShiftByID(shiftID)
	if err != nil {
		utils.LogError(err, "GetShiftByID: Error from shiftService.GetShiftByID for ID "+idStr)
		if errors.Is(err, services.ErrShiftNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Shift not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch shift.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, shift)
}

// EndShift handles closing the caller's open shift with cash reconciliation.
func (h *ShiftHandler) EndShift(c *gin.Context) {
	var req services.EndShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "EndShift: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	cashierID, _ := GetUserIDFromContext(c)
	resp, err := h.shiftService.EndShift(cashierID, req)
	if err != nil {
		utils.LogError(err, "EndShift: Error from shiftService.EndShift")
		if errors.Is(err, services.ErrNoOpenShift) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "No open shift to close.", err.Error()))
		} else if errors.Is(err, services.ErrShiftAlreadyClosed) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Shift is already closed.", err.Error()))
		} else if errors.Is(err, services.ErrShiftValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to end shift.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, resp)
}
