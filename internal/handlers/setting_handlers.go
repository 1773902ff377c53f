package handlers

import (
	"errors"
	"net/http"

	"gym_crm_backend/internal/services"
	"gym_crm_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// SettingHandler holds the settings service.
type SettingHandler struct {
	settingService services.SettingService
}

// NewSettingHandler creates a new SettingHandler.
func NewSettingHandler(ss services.SettingService) *SettingHandler {
	return &SettingHandler{settingService: ss}
}

// GetSettings returns the singleton settings row.
func (h *SettingHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingService.GetSettings()
	if err != nil {
		utils.LogError(err, "GetSettings: Error from settingService.GetSettings")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch settings.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings applies a partial update to the settings row.
func (h *SettingHandler) UpdateSettings(c *gin.Context) {
	var req services.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateSettings: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	settings, err := h.settingService.UpdateSettings(req)
	if err != nil {
		utils.LogError(err, "UpdateSettings: Error from settingService.UpdateSettings")
		if errors.Is(err, services.ErrSettingsValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update settings.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, settings)
}
