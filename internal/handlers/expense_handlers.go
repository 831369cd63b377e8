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

// ExpenseHandler holds the expense service.
type ExpenseHandler struct {
	expenseService services.ExpenseService
}

// NewExpenseHandler creates a new ExpenseHandler.
func NewExpenseHandler(es services.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{expenseService: es}
}

func (h *ExpenseHandler) CreateExpense(c *gin.Context) {
	var req services.CreateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	expense, err := h.expenseService.CreateExpense(req)
	if err != nil {
		h.respondExpenseError(c, err, "CreateExpense")
		return
	}
	c.JSON(http.StatusCreated, expense)
}

func (h *ExpenseHandler) GetExpenses(c *gin.Context) {
	var filters models.ExpenseFilters
	if search := c.Query("search"); search != "" {
		filters.Search = &search
	}
	if category := c.Query("category"); category != "" {
		filters.Category = &category
	}
	if startDate := c.Query("start_date"); startDate != "" {
		filters.StartDate = &startDate
	}
	if endDate := c.Query("end_date"); endDate != "" {
		filters.EndDate = &endDate
	}
	filters.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	filters.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	expenses, totalCount, err := h.expenseService.GetExpenses(filters)
	if err != nil {
		utils.LogError(err, "GetExpenses: service error")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch expenses.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":        expenses,
		"total_count": totalCount,
	})
}

func (h *ExpenseHandler) UpdateExpense(c *gin.Context) {
	var req services.UpdateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	expense, err := h.expenseService.UpdateExpense(c.Param("id"), req)
	if err != nil {
		h.respondExpenseError(c, err, "UpdateExpense")
		return
	}
	c.JSON(http.StatusOK, expense)
}

func (h *ExpenseHandler) DeleteExpense(c *gin.Context) {
	if err := h.expenseService.DeleteExpense(c.Param("id")); err != nil {
		h.respondExpenseError(c, err, "DeleteExpense")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Expense deleted successfully"})
}

func (h *ExpenseHandler) GetExpenseStats(c *gin.Context) {
	stats, err := h.expenseService.GetExpenseStats()
	if err != nil {
		utils.LogError(err, "GetExpenseStats: service error")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to compute expense stats.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *ExpenseHandler) respondExpenseError(c *gin.Context, err error, operation string) {
	switch {
	case errors.Is(err, services.ErrExpenseNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Expense not found.", err.Error()))
	case errors.Is(err, services.ErrExpenseAmountInvalid),
		errors.Is(err, services.ErrDescriptionEmpty),
		errors.Is(err, services.ErrUnknownPaymentMethod):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid expense input.", err.Error()))
	default:
		utils.LogError(err, operation+": service error")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Operation failed.", "Internal error"))
	}
}
