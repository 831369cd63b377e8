package handlers

import (
	"errors"
	"net/http"

	"cafe_pos_backend/internal/endofday"
	"cafe_pos_backend/internal/services"
	"cafe_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// MaintenanceHandler exposes the end-of-day workflow and the manual
// housekeeping operations.
type MaintenanceHandler struct {
	maintenanceService services.MaintenanceService
	workflow           *endofday.Workflow
}

// NewMaintenanceHandler creates a new MaintenanceHandler.
func NewMaintenanceHandler(ms services.MaintenanceService, workflow *endofday.Workflow) *MaintenanceHandler {
	return &MaintenanceHandler{maintenanceService: ms, workflow: workflow}
}

// GetEndOfDayState returns the current workflow snapshot.
func (h *MaintenanceHandler) GetEndOfDayState(c *gin.Context) {
	c.JSON(http.StatusOK, h.workflow.Snapshot())
}

// DispatchEndOfDayEvent advances the closing workflow by one operator
// action.
func (h *MaintenanceHandler) DispatchEndOfDayEvent(c *gin.Context) {
	var event endofday.Event
	if err := c.ShouldBindJSON(&event); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	snapshot, err := h.workflow.Dispatch(event)
	if err != nil {
		if errors.Is(err, endofday.ErrInvalidTransition) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Event not allowed in the current state.", err.Error()))
			return
		}
		utils.LogError(err, "DispatchEndOfDayEvent: workflow error")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to advance workflow.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// CheckEndOfDay runs the open-tables precondition check directly,
// without touching the workflow state.
func (h *MaintenanceHandler) CheckEndOfDay(c *gin.Context) {
	result, err := h.maintenanceService.CheckEndOfDay()
	if err != nil {
		utils.LogError(err, "CheckEndOfDay: service error")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to check end of day.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, result)
}

// BackupDatabase triggers an on-demand backup.
func (h *MaintenanceHandler) BackupDatabase(c *gin.Context) {
	path, err := h.maintenanceService.BackupDatabase()
	if err != nil {
		utils.LogError(err, "BackupDatabase: service error")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Backup failed.", err.Error()))
		return
	}
	c.JSON(http.StatusOK, gin.H{"backup_path": path})
}

// ArchiveOldData prunes records past the retention horizon.
func (h *MaintenanceHandler) ArchiveOldData(c *gin.Context) {
	result, err := h.maintenanceService.ArchiveOldData()
	if err != nil {
		utils.LogError(err, "ArchiveOldData: service error")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Archive pass failed.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetHealth reports database liveness.
func (h *MaintenanceHandler) GetHealth(c *gin.Context) {
	healthy, err := h.maintenanceService.CheckDatabaseHealth()
	if err != nil || !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"healthy": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"healthy": true})
}
