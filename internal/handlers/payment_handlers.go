package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"cafe_pos_backend/internal/services"
	"cafe_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// PaymentHandler holds the payment service.
type PaymentHandler struct {
	paymentService services.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(ps services.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: ps}
}

// ProcessPayment records one tender in full, split or items mode.
func (h *PaymentHandler) ProcessPayment(c *gin.Context) {
	var req services.ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	result, err := h.paymentService.ProcessPayment(req)
	if err != nil {
		h.respondPaymentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

// GetRemaining returns the live balance of an order.
func (h *PaymentHandler) GetRemaining(c *gin.Context) {
	remaining, err := h.paymentService.GetRemainingAmount(c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrOrderNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Order not found.", err.Error()))
			return
		}
		utils.LogError(err, "GetRemaining: service error")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to compute balance.", "Internal error"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"remaining_amount": remaining,
		"formatted":        utils.FormatCurrency(remaining),
	})
}

// GetSplitShare previews one share of an even split.
func (h *PaymentHandler) GetSplitShare(c *gin.Context) {
	splitCount, err := strconv.Atoi(c.DefaultQuery("split_count", "2"))
	if err != nil {
		utils.RespondValidationFailed(c, "split_count must be an integer")
		return
	}

	share, err := h.paymentService.GetSplitShare(c.Param("id"), splitCount)
	if err != nil {
		h.respondPaymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"split_count": splitCount,
		"share":       share,
		"formatted":   utils.FormatCurrency(share),
	})
}

func (h *PaymentHandler) respondPaymentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrOrderNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Order not found.", err.Error()))
	case errors.Is(err, services.ErrOrderClosed),
		errors.Is(err, services.ErrNothingToPay):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Order has no outstanding balance.", err.Error()))
	case errors.Is(err, services.ErrCardExceedsRemaining):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Card payments cannot exceed the remaining balance.", err.Error()))
	case errors.Is(err, services.ErrItemsPartialPayment):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Item payments must cover the selected items.", err.Error()))
	case errors.Is(err, services.ErrPaymentNotPositive),
		errors.Is(err, services.ErrSplitCountInvalid),
		errors.Is(err, services.ErrItemNotPayable),
		errors.Is(err, services.ErrItemQuantityInvalid),
		errors.Is(err, services.ErrUnknownPaymentMethod),
		errors.Is(err, services.ErrPaymentMode):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid payment request.", err.Error()))
	default:
		utils.LogError(err, "ProcessPayment: service error")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to process payment.", "Internal error"))
	}
}
