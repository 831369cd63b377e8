package handlers

import (
	"net/http"
	"strconv"
	"time"

	"cafe_pos_backend/internal/services"
	"cafe_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ReportHandler holds the reporting service.
type ReportHandler struct {
	reportingService services.ReportingService
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(rs services.ReportingService) *ReportHandler {
	return &ReportHandler{reportingService: rs}
}

// GetDashboard returns the live figures for the current business day.
func (h *ReportHandler) GetDashboard(c *gin.Context) {
	stats, err := h.reportingService.GetDashboardStats()
	if err != nil {
		utils.LogError(err, "GetDashboard: service error")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to compute dashboard.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetExpectedTotals returns the system-side figures for the pending
// Z-report window.
func (h *ReportHandler) GetExpectedTotals(c *gin.Context) {
	totals, err := h.reportingService.GetExpectedTotals()
	if err != nil {
		utils.LogError(err, "GetExpectedTotals: service error")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to compute expected totals.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, totals)
}

// GetDailySummaries lists past Z-reports, newest first.
func (h *ReportHandler) GetDailySummaries(c *gin.Context) {
	var start, end time.Time
	if startStr := c.Query("start_date"); startStr != "" {
		parsed, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			utils.RespondValidationFailed(c, "start_date must be YYYY-MM-DD")
			return
		}
		start = parsed
	}
	if endStr := c.Query("end_date"); endStr != "" {
		parsed, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			utils.RespondValidationFailed(c, "end_date must be YYYY-MM-DD")
			return
		}
		end = parsed
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "31"))

	summaries, err := h.reportingService.GetDailySummaries(start, end, limit)
	if err != nil {
		utils.LogError(err, "GetDailySummaries: service error")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch daily summaries.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, summaries)
}

// GetMonthlyReports lists the month aggregates, newest first.
func (h *ReportHandler) GetMonthlyReports(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))
	reports, err := h.reportingService.GetMonthlyReports(limit)
	if err != nil {
		utils.LogError(err, "GetMonthlyReports: service error")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch monthly reports.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, reports)
}

// GetRevenueTrend returns a per-day revenue series for the chart.
func (h *ReportHandler) GetRevenueTrend(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))
	trend, err := h.reportingService.GetRevenueTrend(days)
	if err != nil {
		utils.LogError(err, "GetRevenueTrend: service error")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to compute revenue trend.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, trend)
}
