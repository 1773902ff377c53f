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

// CheckInHandler holds the check-in service.
type CheckInHandler struct {
	checkInService services.CheckInService
}

// NewCheckInHandler creates a new CheckInHandler.
func NewCheckInHandler(cs services.CheckInService) *CheckInHandler {
	return &CheckInHandler{checkInService: cs}
}

// CheckInMember handles admitting a member at the front desk.
func (h *CheckInHandler) CheckInMember(c *gin.Context) {
	var req struct {
		MemberID int64 `json:"member_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	resp, err := h.checkInService.CheckInMember(req.MemberID)
	if err != nil {
		utils.LogError(err, "CheckInMember: Error from checkInService.CheckInMember")
		if errors.Is(err, services.ErrMemberNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Member not found.", err.Error()))
		} else if errors.Is(err, services.ErrMemberExpired) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "Membership has expired.", err.Error()))
		} else if errors.Is(err, services.ErrMemberSuspended) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "Member is suspended.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to record check-in.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// GetCheckInCount handles counting check-ins over a date range.
func (h *CheckInHandler) GetCheckInCount(c *gin.Context) {
	fromStr := c.Query("date_from")
	toStr := c.Query("date_to")
	if fromStr == "" || toStr == "" {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "date_from and date_to are required.", "missing date range"))
		return
	}

	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid date_from format.", err.Error()))
		return
	}
	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid date_to format.", err.Error()))
		return
	}

	count, err := h.checkInService.CountCheckIns(from, to.AddDate(0, 0, 1))
	if err != nil {
		utils.LogError(err, "GetCheckInCount: Error from checkInService.CountCheckIns")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to count check-ins.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count, "date_from": fromStr, "date_to": toStr})
}

// GetCheckIns handles listing check-in history.
func (h *CheckInHandler) GetCheckIns(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	var memberID *int64
	if v := c.Query("member_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid member ID format.", err.Error()))
			return
		}
		memberID = &id
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

	checkIns, totalCount, err := h.checkInService.GetCheckIns(memberID, from, to, page, pageSize)
	if err != nil {
		utils.LogError(err, "GetCheckIns: Error from checkInService.GetCheckIns")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch check-ins.", "Internal error"))
		return
	}

	if checkIns == nil {
		checkIns = []models.CheckIn{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      checkIns,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}
