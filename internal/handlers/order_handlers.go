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

// OrderHandler holds the order service.
type OrderHandler struct {
	orderService services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(os services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: os}
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type lockRequest struct {
	Locked bool `json:"locked"`
}

// GetOrders lists orders with optional table, status and date filters.
func (h *OrderHandler) GetOrders(c *gin.Context) {
	var filters models.OrderFilters

	if tableID := c.Query("table_id"); tableID != "" {
		filters.TableID = &tableID
	}
	if status := c.Query("status"); status != "" {
		filters.Status = &status
	}
	if date := c.Query("date"); date != "" {
		filters.Date = &date
	}
	filters.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filters.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	orders, totalCount, err := h.orderService.GetOrders(filters)
	if err != nil {
		utils.LogError(err, "GetOrders: service error")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch orders.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":        orders,
		"total_count": totalCount,
		"page":        filters.Page,
		"page_size":   filters.PageSize,
	})
}

// GetOrderByID returns one order with lines, payments and balance.
func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	details, err := h.orderService.GetOrderDetails(c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Order not found.", err.Error()))
			return
		}
		utils.LogError(err, "GetOrderByID: service error")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch order.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, details)
}

// GetOrderByTable returns the open order of a table, creating one when
// the table is free.
func (h *OrderHandler) GetOrderByTable(c *gin.Context) {
	tableID := c.Param("id")
	order, err := h.orderService.GetOrCreateOrder(tableID)
	if err != nil {
		if errors.Is(err, services.ErrTableNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Table not found.", err.Error()))
			return
		}
		utils.LogError(err, "GetOrderByTable: service error")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to open order.", "Internal error"))
		return
	}
	details, err := h.orderService.GetOrderDetails(order.ID)
	if err != nil {
		utils.LogError(err, "GetOrderByTable: failed to assemble details")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch order.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, details)
}

// AddOrderItem adds product units to a table's open order.
func (h *OrderHandler) AddOrderItem(c *gin.Context) {
	var req services.AddOrderItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	details, err := h.orderService.AddOrderItem(req)
	if err != nil {
		h.respondOrderMutationError(c, err, "AddOrderItem")
		return
	}
	c.JSON(http.StatusCreated, details)
}

// UpdateOrderItem changes an unpaid line's quantity. Zero removes it.
func (h *OrderHandler) UpdateOrderItem(c *gin.Context) {
	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	details, err := h.orderService.UpdateOrderItemQuantity(c.Param("itemId"), req.Quantity)
	if err != nil {
		h.respondOrderMutationError(c, err, "UpdateOrderItem")
		return
	}
	c.JSON(http.StatusOK, details)
}

// DeleteOrderItem removes an unpaid line.
func (h *OrderHandler) DeleteOrderItem(c *gin.Context) {
	details, err := h.orderService.RemoveOrderItem(c.Param("itemId"))
	if err != nil {
		h.respondOrderMutationError(c, err, "DeleteOrderItem")
		return
	}
	c.JSON(http.StatusOK, details)
}

// SetOrderLock flags an order as being handled by a payment screen.
func (h *OrderHandler) SetOrderLock(c *gin.Context) {
	var req lockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	if err := h.orderService.SetOrderLocked(c.Param("id"), req.Locked); err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Order not found.", err.Error()))
			return
		}
		utils.LogError(err, "SetOrderLock: service error")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update lock.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"locked": req.Locked})
}

// CancelOrder voids an open order.
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	if err := h.orderService.CancelOrder(c.Param("id")); err != nil {
		switch {
		case errors.Is(err, services.ErrOrderNotFound):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Order not found.", err.Error()))
		case errors.Is(err, services.ErrOrderClosed):
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Closed orders cannot be cancelled.", err.Error()))
		default:
			utils.LogError(err, "CancelOrder: service error")
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to cancel order.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled successfully"})
}

func (h *OrderHandler) respondOrderMutationError(c *gin.Context, err error, operation string) {
	switch {
	case errors.Is(err, services.ErrTableNotFound),
		errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrOrderItemNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Referenced resource not found.", err.Error()))
	case errors.Is(err, services.ErrOrderClosed):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Order is already closed.", err.Error()))
	case errors.Is(err, services.ErrOrderLocked):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Order is locked by an active payment screen.", err.Error()))
	case errors.Is(err, services.ErrPaidItemImmutable):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Paid items cannot be modified.", err.Error()))
	case errors.Is(err, services.ErrQuantityInvalid):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Quantity must be positive.", err.Error()))
	default:
		utils.LogError(err, operation+": service error")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Operation failed.", "Internal error"))
	}
}
