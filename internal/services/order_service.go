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
	ErrProductNotFound   = errors.New("product not found or deleted")
	ErrOrderLocked       = errors.New("order is locked by an active payment screen")
	ErrOrderItemNotFound = errors.New("order item not found")
	ErrPaidItemImmutable = errors.New("paid items cannot be modified")
	ErrQuantityInvalid   = errors.New("quantity must be positive")
)

// OrderDetails is an order with its lines, its payments and the live
// remaining balance.
type OrderDetails struct {
	Order           *models.Order      `json:"order"`
	Items           []models.OrderItem `json:"items"`
	Payments        []models.Payment   `json:"payments"`
	PaidAmount      int64              `json:"paid_amount"`
	RemainingAmount int64              `json:"remaining_amount"`
}

// AddOrderItemRequest adds product units to a table's open order,
// creating the order on first use.
type AddOrderItemRequest struct {
	TableID   string `json:"table_id" binding:"required"`
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

// OrderService manages open orders and their lines. Totals are stored
// on the order row and kept in sync with the lines inside one
// transaction per mutation.
type OrderService interface {
	GetOrCreateOrder(tableID string) (*models.Order, error)
	GetOrderDetails(orderID string) (*OrderDetails, error)
	GetOrders(filters models.OrderFilters) ([]models.Order, int, error)
	AddOrderItem(req AddOrderItemRequest) (*OrderDetails, error)
	UpdateOrderItemQuantity(itemID string, quantity int) (*OrderDetails, error)
	RemoveOrderItem(itemID string) (*OrderDetails, error)
	SetOrderLocked(orderID string, locked bool) error
	CancelOrder(orderID string) error
}

type orderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	paymentRepo repositories.PaymentRepository
	logRepo     repositories.ActivityLogRepository
	db          *sql.DB
}

func NewOrderService(
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepository,
	paymentRepo repositories.PaymentRepository,
	logRepo repositories.ActivityLogRepository,
	db *sql.DB,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		paymentRepo: paymentRepo,
		logRepo:     logRepo,
		db:          db,
	}
}

func (s *orderService) GetOrCreateOrder(tableID string) (*models.Order, error) {
	order, err := s.orderRepo.GetOpenOrderByTableID(tableID)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}
	order, err = s.orderRepo.CreateOrder(nil, tableID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, err
	}
	return order, nil
}

func (s *orderService) GetOrderDetails(orderID string) (*OrderDetails, error) {
	order, err := s.orderRepo.GetOrderByID(nil, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return s.assembleDetails(nil, order)
}

func (s *orderService) assembleDetails(executor repositories.SQLExecutor, order *models.Order) (*OrderDetails, error) {
	items, err := s.orderRepo.GetOrderItemsByOrderID(executor, order.ID)
	if err != nil {
		return nil, err
	}
	payments, err := s.paymentRepo.GetPaymentsByOrderID(executor, order.ID)
	if err != nil {
		return nil, err
	}
	var paid int64
	for _, p := range payments {
		paid += p.Amount
	}
	total := ComputeOrderTotal(items)
	return &OrderDetails{
		Order:           order,
		Items:           items,
		Payments:        payments,
		PaidAmount:      paid,
		RemainingAmount: ComputeRemainingAmount(total, paid),
	}, nil
}

func (s *orderService) GetOrders(filters models.OrderFilters) ([]models.Order, int, error) {
	return s.orderRepo.GetOrders(filters)
}

// AddOrderItem appends product units at the product's current price.
// Repeated adds of the same product at the same price merge into the
// existing unpaid line.
func (s *orderService) AddOrderItem(req AddOrderItemRequest) (*OrderDetails, error) {
	if req.Quantity <= 0 {
		return nil, ErrQuantityInvalid
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	product, err := s.productRepo.GetProductByID(tx, req.ProductID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if product.IsDeleted {
		return nil, ErrProductNotFound
	}

	order, err := s.orderRepo.GetOpenOrderByTableID(req.TableID)
	if errors.Is(err, repositories.ErrNotFound) {
		order, err = s.orderRepo.CreateOrder(tx, req.TableID)
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTableNotFound
		}
	}
	if err != nil {
		return nil, err
	}
	order, err = s.orderRepo.GetOrderForUpdate(tx, order.ID)
	if err != nil {
		return nil, err
	}
	if err := s.requireEditable(order); err != nil {
		return nil, err
	}

	existing, err := s.orderRepo.FindUnpaidItem(tx, order.ID, product.ID, product.Price)
	switch {
	case err == nil:
		err = s.orderRepo.UpdateOrderItemQuantity(tx, existing.ID, existing.Quantity+req.Quantity)
		if err != nil {
			return nil, err
		}
	case errors.Is(err, repositories.ErrNotFound):
		item := &models.OrderItem{
			OrderID:   order.ID,
			ProductID: product.ID,
			Quantity:  req.Quantity,
			UnitPrice: product.Price,
		}
		if _, err := s.orderRepo.CreateOrderItem(tx, item); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if err := s.reconcileOrder(tx, order.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order item: %w", err)
	}
	return s.GetOrderDetails(order.ID)
}

// UpdateOrderItemQuantity changes an unpaid line's quantity. A zero or
// negative quantity removes the line.
func (s *orderService) UpdateOrderItemQuantity(itemID string, quantity int) (*OrderDetails, error) {
	if quantity <= 0 {
		return s.RemoveOrderItem(itemID)
	}
	return s.mutateItem(itemID, func(tx *sql.Tx, item *models.OrderItem) error {
		return s.orderRepo.UpdateOrderItemQuantity(tx, item.ID, quantity)
	})
}

func (s *orderService) RemoveOrderItem(itemID string) (*OrderDetails, error) {
	return s.mutateItem(itemID, func(tx *sql.Tx, item *models.OrderItem) error {
		return s.orderRepo.DeleteOrderItem(tx, item.ID)
	})
}

// mutateItem wraps one unpaid-line mutation with the shared guards and
// the total/auto-close reconciliation.
func (s *orderService) mutateItem(itemID string, mutate func(tx *sql.Tx, item *models.OrderItem) error) (*OrderDetails, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	item, err := s.orderRepo.GetOrderItemByID(tx, itemID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderItemNotFound
		}
		return nil, err
	}
	if item.IsPaid {
		return nil, ErrPaidItemImmutable
	}

	order, err := s.orderRepo.GetOrderForUpdate(tx, item.OrderID)
	if err != nil {
		return nil, err
	}
	if err := s.requireEditable(order); err != nil {
		return nil, err
	}

	if err := mutate(tx, item); err != nil {
		return nil, err
	}
	if err := s.reconcileOrder(tx, order.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit order item change: %w", err)
	}
	return s.GetOrderDetails(order.ID)
}

func (s *orderService) requireEditable(order *models.Order) error {
	if order.Status != models.OrderStatusOpen {
		return ErrOrderClosed
	}
	if order.IsLocked {
		return ErrOrderLocked
	}
	return nil
}

// reconcileOrder recomputes the stored total from the lines and closes
// the order when payments already cover it. Editing lines downward can
// make an earlier partial payment sufficient.
func (s *orderService) reconcileOrder(tx *sql.Tx, orderID string) error {
	items, err := s.orderRepo.GetOrderItemsByOrderID(tx, orderID)
	if err != nil {
		return err
	}
	total := ComputeOrderTotal(items)
	if err := s.orderRepo.SetOrderTotal(tx, orderID, total); err != nil {
		return err
	}

	paid, err := s.paymentRepo.SumPaymentsByOrderID(tx, orderID)
	if err != nil {
		return err
	}
	if total > 0 && paid >= total {
		if err := s.orderRepo.MarkAllOrderItemsPaid(tx, orderID); err != nil {
			return err
		}
		if err := s.orderRepo.UpdateOrderStatus(tx, orderID, models.OrderStatusClosed); err != nil {
			return err
		}
	}
	return nil
}

func (s *orderService) SetOrderLocked(orderID string, locked bool) error {
	err := s.orderRepo.SetOrderLocked(nil, orderID, locked)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrOrderNotFound
	}
	return err
}

// CancelOrder voids an open order and everything on it. The cancel is
// logged so the Z-report can count voided bills.
func (s *orderService) CancelOrder(orderID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	order, err := s.orderRepo.GetOrderForUpdate(tx, orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	if order.Status != models.OrderStatusOpen {
		return ErrOrderClosed
	}

	if _, err := s.paymentRepo.DeletePaymentsByOrderID(tx, orderID); err != nil {
		return err
	}
	if _, err := s.orderRepo.DeleteOrderItemsByOrderID(tx, orderID); err != nil {
		return err
	}
	if err := s.orderRepo.DeleteOrder(tx, orderID); err != nil {
		return err
	}

	details := fmt.Sprintf("order=%s table=%s total=%s",
		order.ID, order.TableID, utils.CentsToInputString(order.TotalAmount))
	logEntry := &models.ActivityLog{Action: ActionOrderCancelled, Details: &details}
	if err := s.logRepo.CreateLog(tx, logEntry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order cancel: %w", err)
	}
	return nil
}
