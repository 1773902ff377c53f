package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gym_crm_backend/internal/services"
	"gym_crm_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ReportHandler holds the report service.
type ReportHandler struct {
	reportService services.ReportService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(rs services.ReportService) *ReportHandler {
	return &ReportHandler{reportService: rs}
}

// GetDashboardSummary returns the aggregate dashboard snapshot.
func (h *ReportHandler) GetDashboardSummary(c *gin.Context) {
	summary, err := h.reportService.GetDashboardSummary()
	if err != nil {
		utils.LogError(err, "GetDashboardSummary: Error from reportService.GetDashboardSummary")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to build dashboard summary.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, summary)
}

// reportRange parses the from/to query params. to is inclusive on the day.
func reportRange(c *gin.Context) (time.Time, time.Time, error) {
	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return time.Time{}, time.Time{}, errors.New("from and to query parameters are required")
	}
	from, err := time.Parse("2006-01-02", fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid from date: %w", err)
	}
	to, err := time.Parse("2006-01-02", toStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid to date: %w", err)
	}
	return from, to.AddDate(0, 0, 1), nil
}

// GetRevenueReport returns the bucketed revenue report.
func (h *ReportHandler) GetRevenueReport(c *gin.Context) {
	from, to, err := reportRange(c)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid report range.", err.Error()))
		return
	}
	granularity := c.DefaultQuery("granularity", services.GranularityDaily)

	report, err := h.reportService.GetRevenueReport(from, to, granularity)
	if err != nil {
		if errors.Is(err, services.ErrReportValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
			return
		}
		utils.LogError(err, "GetRevenueReport: Error from reportService.GetRevenueReport")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to build revenue report.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, report)
}

// ExportRevenueReportXLSX streams the revenue report as a spreadsheet download.
func (h *ReportHandler) ExportRevenueReportXLSX(c *gin.Context) {
	from, to, err := reportRange(c)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid report range.", err.Error()))
		return
	}
	granularity := c.DefaultQuery("granularity", services.GranularityDaily)

	data, fileName, err := h.reportService.ExportRevenueReportXLSX(from, to, granularity)
	if err != nil {
		if errors.Is(err, services.ErrReportValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Validation failed: "+err.Error(), err.Error()))
			return
		}
		utils.LogError(err, "ExportRevenueReportXLSX: Error from reportService.ExportRevenueReportXLSX")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to export revenue report.", "Internal error"))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// ExportMembersCSV streams the member list as CSV.
func (h *ReportHandler) ExportMembersCSV(c *gin.Context) {
	searchTerm := c.Query("search")
	status := c.Query("status")

	var pSearchTerm, pStatus *string
	if searchTerm != "" {
		pSearchTerm = &searchTerm
	}
	if status != "" {
		pStatus = &status
	}

	var buf bytes.Buffer
	if err := h.reportService.ExportMembersCSV(&buf, pSearchTerm, pStatus); err != nil {
		utils.LogError(err, "ExportMembersCSV: Error from reportService.ExportMembersCSV")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to export members.", "Internal error"))
		return
	}

	fileName := "members_" + time.Now().Format("20060102_150405") + ".csv"
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// ExportPaymentsCSV streams the payment ledger as CSV.
func (h *ReportHandler) ExportPaymentsCSV(c *gin.Context) {
	filters, err := paymentFiltersFromQuery(c)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid filter parameters.", err.Error()))
		return
	}

	var buf bytes.Buffer
	if err := h.reportService.ExportPaymentsCSV(&buf, filters); err != nil {
		utils.LogError(err, "ExportPaymentsCSV: Error from reportService.ExportPaymentsCSV")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to export payments.", "Internal error"))
		return
	}

	fileName := "payments_" + time.Now().Format("20060102_150405") + ".csv"
	c.Header("Content-Disposition", `attachment; filename="`+fileName+`"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}
