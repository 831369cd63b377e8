package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"cafe_pos_backend/internal/models"
	"cafe_pos_backend/internal/services"
	"cafe_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// AdminHandler holds the admin and activity log services.
type AdminHandler struct {
	adminService services.AdminService
	logService   services.ActivityLogService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(as services.AdminService, ls services.ActivityLogService) *AdminHandler {
	return &AdminHandler{adminService: as, logService: ls}
}

type unlockRequest struct {
	Pin string `json:"pin"`
}

type resetPinRequest struct {
	Answer string `json:"answer" binding:"required"`
	NewPin string `json:"new_pin" binding:"required"`
}

// GetStatus tells the client whether the admin area needs a PIN.
func (h *AdminHandler) GetStatus(c *gin.Context) {
	status, err := h.adminService.GetStatus()
	if err != nil {
		utils.LogError(err, "GetStatus: service error")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to read admin status.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, status)
}

// Unlock verifies the PIN and issues a session token.
func (h *AdminHandler) Unlock(c *gin.Context) {
	var req unlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	token, err := h.adminService.Unlock(req.Pin)
	if err != nil {
		if errors.Is(err, services.ErrPinIncorrect) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Incorrect PIN.", err.Error()))
			return
		}
		utils.LogError(err, "Unlock: service error")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to unlock.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// SetPin changes or clears the admin PIN and rescue question.
func (h *AdminHandler) SetPin(c *gin.Context) {
	var req services.SetPinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	if err := h.adminService.SetPin(req); err != nil {
		switch {
		case errors.Is(err, services.ErrPinIncorrect):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Current PIN is incorrect.", err.Error()))
		case errors.Is(err, services.ErrPinTooShort):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "PIN must be at least 4 digits.", err.Error()))
		default:
			utils.LogError(err, "SetPin: service error")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update PIN.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "PIN updated successfully"})
}

// ResetPin is the rescue path via the security question.
func (h *AdminHandler) ResetPin(c *gin.Context) {
	var req resetPinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	token, err := h.adminService.ResetPinWithAnswer(req.Answer, req.NewPin)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoRescueConfigured):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "No security question is configured.", err.Error()))
		case errors.Is(err, services.ErrAnswerIncorrect):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Incorrect security answer.", err.Error()))
		case errors.Is(err, services.ErrPinTooShort):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "PIN must be at least 4 digits.", err.Error()))
		default:
			utils.LogError(err, "ResetPin: service error")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to reset PIN.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// GetActivityLogs pages through the audit trail.
func (h *AdminHandler) GetActivityLogs(c *gin.Context) {
	var filters models.LogFilters
	if action := c.Query("action"); action != "" {
		filters.Action = &action
	}
	filters.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filters.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "50"))

	logs, totalCount, err := h.logService.GetLogs(filters)
	if err != nil {
		utils.LogError(err, "GetActivityLogs: service error")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch activity logs.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":        logs,
		"total_count": totalCount,
	})
}
