package handlers

import (
	"errors"
	"net/http"

	"cafe_pos_backend/internal/services"
	"cafe_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// TableHandler holds the table service.
type TableHandler struct {
	tableService services.TableService
}

// NewTableHandler creates a new TableHandler.
func NewTableHandler(ts services.TableService) *TableHandler {
	return &TableHandler{tableService: ts}
}

type createTableRequest struct {
	Name string `json:"name" binding:"required"`
}

type moveOrderRequest struct {
	FromTableID string `json:"from_table_id" binding:"required"`
	ToTableID   string `json:"to_table_id" binding:"required"`
}

// CreateTable adds a table to the floor plan.
func (h *TableHandler) CreateTable(c *gin.Context) {
	var req createTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	table, err := h.tableService.CreateTable(req.Name)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTableNameEmpty):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Table name cannot be empty.", err.Error()))
		case errors.Is(err, services.ErrTableNameExists):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "A table with this name already exists.", err.Error()))
		default:
			utils.LogError(err, "CreateTable: service error")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create table.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, table)
}

// GetTables lists the floor plan with occupancy flags.
func (h *TableHandler) GetTables(c *gin.Context) {
	tables, err := h.tableService.GetTables()
	if err != nil {
		utils.LogError(err, "GetTables: service error")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch tables.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, tables)
}

// DeleteTable removes a table without an open bill.
func (h *TableHandler) DeleteTable(c *gin.Context) {
	err := h.tableService.DeleteTable(c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTableNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Table not found.", err.Error()))
		case errors.Is(err, services.ErrTableHasOpenBill):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Table has an open order and cannot be deleted.", err.Error()))
		default:
			utils.LogError(err, "DeleteTable: service error")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete table.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Table deleted successfully"})
}

// TransferOrder moves an open bill to an empty table.
func (h *TableHandler) TransferOrder(c *gin.Context) {
	var req moveOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	err := h.tableService.TransferOrder(req.FromTableID, req.ToTableID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSameTable):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Source and target tables must differ.", err.Error()))
		case errors.Is(err, services.ErrTableNotFound), errors.Is(err, services.ErrOrderNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Table or open order not found.", err.Error()))
		case errors.Is(err, services.ErrTargetOccupied):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Target table already has an open order.", err.Error()))
		default:
			utils.LogError(err, "TransferOrder: service error")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to transfer order.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order transferred successfully"})
}

// MergeTables folds one table's bill into another's.
func (h *TableHandler) MergeTables(c *gin.Context) {
	var req moveOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	err := h.tableService.MergeTables(req.FromTableID, req.ToTableID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSameTable):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Source and target tables must differ.", err.Error()))
		case errors.Is(err, services.ErrTableNotFound), errors.Is(err, services.ErrOrderNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Table or open order not found.", err.Error()))
		default:
			utils.LogError(err, "MergeTables: service error")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to merge tables.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Tables merged successfully"})
}
