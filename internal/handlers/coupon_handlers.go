package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/repositories"
	"gym_crm_backend/internal/services"
	"gym_crm_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CouponHandler holds the coupon service.
type CouponHandler struct {
	couponService services.CouponService
}

// NewCouponHandler creates a new CouponHandler.
func NewCouponHandler(cs services.CouponService) *CouponHandler {
	return &CouponHandler{couponService: cs}
}

// CreateCoupon handles creating a coupon.
func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	var req services.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateCoupon: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	coupon, err := h.couponService.CreateCoupon(req)
	if err != nil {
		utils.LogError(err, "CreateCoupon: Error from couponService.CreateCoupon")
		if errors.Is(err, services.ErrCouponCodeExists) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Coupon code already exists.", err.Error()))
		} else if errors.Is(err, services.ErrCouponValidation) || errors.Is(err, services.ErrDateFormat) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create coupon.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, coupon)
}

// GetCoupons handles listing coupons.
func (h *CouponHandler) GetCoupons(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	activeOnly := c.DefaultQuery("active_only", "false") == "true"

	coupons, totalCount, err := h.couponService.GetCoupons(page, pageSize, activeOnly)
	if err != nil {
		utils.LogError(err, "GetCoupons: Error from couponService.GetCoupons")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch coupons.", "Internal error"))
		return
	}

	if coupons == nil {
		coupons = []models.Coupon{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      coupons,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetCouponByCode handles looking up a coupon before redemption.
func (h *CouponHandler) GetCouponByCode(c *gin.Context) {
	code := c.Param("code")

	coupon, err := h.couponService.GetCouponByCode(code)
	if err != nil {
		if errors.Is(err, services.ErrCouponNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Coupon not found.", err.Error()))
			return
		}
		utils.LogError(err, "GetCouponByCode: Error from couponService.GetCouponByCode for code "+code)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch coupon.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, coupon)
}

// UpdateCoupon handles updating a coupon.
func (h *CouponHandler) UpdateCoupon(c *gin.Context) {
	idStr := c.Param("id")
	couponID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid coupon ID format.", err.Error()))
		return
	}

	var req services.UpdateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateCoupon: Failed to bind JSON for ID "+idStr)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	coupon, err := h.couponService.UpdateCoupon(couponID, req)
	if err != nil {
		utils.LogError(err, "UpdateCoupon: Error from couponService.UpdateCoupon for ID "+idStr)
		if errors.Is(err, services.ErrCouponNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Coupon not found to update.", err.Error()))
		} else if errors.Is(err, services.ErrCouponCodeExists) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Coupon code already exists.", err.Error()))
		} else if errors.Is(err, services.ErrCouponValidation) || errors.Is(err, services.ErrDateFormat) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update coupon.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, coupon)
}

// RedeemCoupon handles applying a coupon, guarded by its max-uses cap.
func (h *CouponHandler) RedeemCoupon(c *gin.Context) {
	var req services.RedeemCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "RedeemCoupon: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	cashierID, _ := GetUserIDFromContext(c)
	resp, err := h.couponService.RedeemCoupon(req, cashierID)
	if err != nil {
		utils.LogError(err, "RedeemCoupon: Error from couponService.RedeemCoupon")
		if errors.Is(err, services.ErrCouponNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Coupon not found.", err.Error()))
		} else if errors.Is(err, services.ErrMemberNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Member not found.", err.Error()))
		} else if errors.Is(err, services.ErrCouponNotRedeemable) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Coupon cannot be redeemed.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to redeem coupon.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SearchCouponUsage handles searching redemption history.
func (h *CouponHandler) SearchCouponUsage(c *gin.Context) {
	var filters repositories.CouponUsageFilters
	filters.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filters.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	if v := c.Query("code"); v != "" {
		filters.Code = &v
	}
	if v := c.Query("member_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid member ID format.", err.Error()))
			return
		}
		filters.MemberID = &id
	}
	if v := c.Query("date_from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid date_from format.", err.Error()))
			return
		}
		filters.DateFrom = &t
	}
	if v := c.Query("date_to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid date_to format.", err.Error()))
			return
		}
		end := t.AddDate(0, 0, 1)
		filters.DateTo = &end
	}

	uses, totalCount, err := h.couponService.SearchUsage(filters)
	if err != nil {
		utils.LogError(err, "SearchCouponUsage: Error from couponService.SearchUsage")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to search coupon usage.", "Internal error"))
		return
	}

	if uses == nil {
		uses = []models.CouponUse{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      uses,
		"total":     totalCount,
		"page":      filters.Page,
		"page_size": filters.PageSize,
	})
}
