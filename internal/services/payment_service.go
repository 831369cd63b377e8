package services

import (
	"database/sql"
	"errors"
	"fmt"

	"cafe_pos_backend/internal/models"
	"cafe_pos_backend/internal/repositories"
	"cafe_pos_backend/pkg/utils"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrOrderClosed   = errors.New("order is already closed")
	ErrPaymentMode   = errors.New("unknown payment mode")
)

// Payment modes accepted by ProcessPayment.
const (
	PaymentModeFull  = "full"
	PaymentModeSplit = "split"
	PaymentModeItems = "items"
)

// ProcessPaymentRequest is one tender against an open order.
type ProcessPaymentRequest struct {
	OrderID    string          `json:"order_id" binding:"required"`
	Mode       string          `json:"mode" binding:"required"`
	Method     string          `json:"method" binding:"required"`
	Amount     int64           `json:"amount"`
	SplitCount int             `json:"split_count"`
	Items      []ItemSelection `json:"items"`
}

// ProcessPaymentResult reports what was recorded and what is left.
type ProcessPaymentResult struct {
	Payment         *models.Payment `json:"payment"`
	Change          int64           `json:"change"`
	RemainingAmount int64           `json:"remaining_amount"`
	OrderClosed     bool            `json:"order_closed"`
}

// PaymentService processes tenders and keeps order state consistent
// with what has been paid.
type PaymentService interface {
	ProcessPayment(req ProcessPaymentRequest) (*ProcessPaymentResult, error)
	GetRemainingAmount(orderID string) (int64, error)
	GetSplitShare(orderID string, splitCount int) (int64, error)
}

type paymentService struct {
	orderRepo   repositories.OrderRepository
	paymentRepo repositories.PaymentRepository
	logRepo     repositories.ActivityLogRepository
	db          *sql.DB
}

func NewPaymentService(
	orderRepo repositories.OrderRepository,
	paymentRepo repositories.PaymentRepository,
	logRepo repositories.ActivityLogRepository,
	db *sql.DB,
) PaymentService {
	return &paymentService{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
		logRepo:     logRepo,
		db:          db,
	}
}

func (s *paymentService) ProcessPayment(req ProcessPaymentRequest) (*ProcessPaymentResult, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	order, err := s.orderRepo.GetOrderForUpdate(tx, req.OrderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.Status != models.OrderStatusOpen {
		return nil, ErrOrderClosed
	}

	items, err := s.orderRepo.GetOrderItemsByOrderID(tx, order.ID)
	if err != nil {
		return nil, err
	}
	total := ComputeOrderTotal(items)
	alreadyPaid, err := s.paymentRepo.SumPaymentsByOrderID(tx, order.ID)
	if err != nil {
		return nil, err
	}

	var plan *PaymentPlan
	switch req.Mode {
	case PaymentModeFull:
		plan, err = PlanFullPayment(total, alreadyPaid, req.Amount, req.Method)
	case PaymentModeSplit:
		plan, err = PlanSplitPayment(total, alreadyPaid, req.Amount, req.SplitCount, req.Method)
	case PaymentModeItems:
		plan, err = PlanItemsPayment(total, alreadyPaid, req.Amount, req.Method, items, req.Items)
	default:
		err = fmt.Errorf("%w: %q", ErrPaymentMode, req.Mode)
	}
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		OrderID: order.ID,
		Amount:  plan.Amount,
		Method:  req.Method,
	}
	if _, err := s.paymentRepo.CreatePayment(tx, payment); err != nil {
		return nil, err
	}

	if err := s.applyItemAllocations(tx, plan.Items); err != nil {
		return nil, err
	}

	if plan.CompletesOrder {
		if err := s.orderRepo.MarkAllOrderItemsPaid(tx, order.ID); err != nil {
			return nil, err
		}
		if err := s.orderRepo.UpdateOrderStatus(tx, order.ID, models.OrderStatusClosed); err != nil {
			return nil, err
		}
	}

	details := fmt.Sprintf("order=%s mode=%s method=%s amount=%s",
		order.ID, req.Mode, req.Method, utils.CentsToInputString(plan.Amount))
	logEntry := &models.ActivityLog{Action: "payment.processed", Details: &details}
	if err := s.logRepo.CreateLog(tx, logEntry); err != nil {
		utils.LogError(err, "failed to write payment activity log")
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit payment: %w", err)
	}

	return &ProcessPaymentResult{
		Payment:         payment,
		Change:          plan.Change,
		RemainingAmount: ComputeRemainingAmount(total, alreadyPaid+plan.Amount),
		OrderClosed:     plan.CompletesOrder,
	}, nil
}

// applyItemAllocations settles the selected lines. A partial quantity
// splits the line: the original row shrinks to the unpaid remainder and
// a new row carries the paid units.
func (s *paymentService) applyItemAllocations(tx *sql.Tx, allocations []ItemAllocation) error {
	var fullyPaid []string
	for _, alloc := range allocations {
		if alloc.RemainderQuantity == 0 {
			fullyPaid = append(fullyPaid, alloc.ItemID)
			continue
		}
		if err := s.orderRepo.UpdateOrderItemQuantity(tx, alloc.ItemID, alloc.RemainderQuantity); err != nil {
			return err
		}
		original, err := s.orderRepo.GetOrderItemByID(tx, alloc.ItemID)
		if err != nil {
			return err
		}
		paidRow := &models.OrderItem{
			OrderID:   original.OrderID,
			ProductID: original.ProductID,
			Quantity:  alloc.PayQuantity,
			UnitPrice: alloc.UnitPrice,
			IsPaid:    true,
		}
		if _, err := s.orderRepo.CreateOrderItem(tx, paidRow); err != nil {
			return err
		}
	}
	return s.orderRepo.MarkOrderItemsPaid(tx, fullyPaid)
}

// orderBalance reads an order's live total and paid sum outside any
// transaction.
func (s *paymentService) orderBalance(orderID string) (total, paid int64, err error) {
	order, err := s.orderRepo.GetOrderByID(nil, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return 0, 0, ErrOrderNotFound
		}
		return 0, 0, err
	}
	items, err := s.orderRepo.GetOrderItemsByOrderID(nil, order.ID)
	if err != nil {
		return 0, 0, err
	}
	paid, err = s.paymentRepo.SumPaymentsByOrderID(nil, order.ID)
	if err != nil {
		return 0, 0, err
	}
	return ComputeOrderTotal(items), paid, nil
}

func (s *paymentService) GetRemainingAmount(orderID string) (int64, error) {
	total, paid, err := s.orderBalance(orderID)
	if err != nil {
		return 0, err
	}
	return ComputeRemainingAmount(total, paid), nil
}

// GetSplitShare previews what the next payer of an even split owes
// without recording anything.
func (s *paymentService) GetSplitShare(orderID string, splitCount int) (int64, error) {
	total, paid, err := s.orderBalance(orderID)
	if err != nil {
		return 0, err
	}
	share, err := SplitShare(total, splitCount)
	if err != nil {
		return 0, err
	}
	remaining := ComputeRemainingAmount(total, paid)
	if remaining <= 0 {
		return 0, ErrNothingToPay
	}
	if share > remaining {
		share = remaining
	}
	return share, nil
}
