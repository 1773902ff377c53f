package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"gym_crm_backend/internal/models"
	"gym_crm_backend/internal/services"
	"gym_crm_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// DeviceHandler holds the device service.
type DeviceHandler struct {
	deviceService services.DeviceService
}

// NewDeviceHandler creates a new DeviceHandler.
func NewDeviceHandler(ds services.DeviceService) *DeviceHandler {
	return &DeviceHandler{deviceService: ds}
}

// GetDeviceRequests handles listing device authorization requests.
func (h *DeviceHandler) GetDeviceRequests(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	status := c.Query("status")

	var pStatus *string
	if status != "" {
		pStatus = &status
	}

	requests, totalCount, err := h.deviceService.GetRequests(pStatus, page, pageSize)
	if err != nil {
		if errors.Is(err, services.ErrDeviceValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
			return
		}
		utils.LogError(err, "GetDeviceRequests: Error from deviceService.GetRequests")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch device requests.", "Internal error"))
		return
	}

	if requests == nil {
		requests = []models.DeviceRequest{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      requests,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetDeviceRequest handles looking up a request by its token.
func (h *DeviceHandler) GetDeviceRequest(c *gin.Context) {
	token := c.Param("token")

	request, err := h.deviceService.GetRequestByToken(token)
	if err != nil {
		if errors.Is(err, services.ErrDeviceRequestNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Device request not found.", err.Error()))
			return
		}
		utils.LogError(err, "GetDeviceRequest: Error from deviceService.GetRequestByToken")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch device request.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, request)
}

// ApproveDeviceRequest handles approving a pending device.
func (h *DeviceHandler) ApproveDeviceRequest(c *gin.Context) {
	h.resolve(c, true)
}

// DenyDeviceRequest handles denying a pending device.
func (h *DeviceHandler) DenyDeviceRequest(c *gin.Context) {
	h.resolve(c, false)
}

func (h *DeviceHandler) resolve(c *gin.Context, approve bool) {
	token := c.Param("token")
	adminID, _ := GetUserIDFromContext(c)

	var request *models.DeviceRequest
	var err error
	if approve {
		request, err = h.deviceService.ApproveRequest(token, adminID)
	} else {
		request, err = h.deviceService.DenyRequest(token, adminID)
	}
	if err != nil {
		utils.LogError(err, "ResolveDeviceRequest: Error from deviceService for token "+token)
		if errors.Is(err, services.ErrDeviceRequestNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Device request not found.", err.Error()))
		} else if errors.Is(err, services.ErrDeviceRequestResolved) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Device request is already resolved.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to resolve device request.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, request)
}
