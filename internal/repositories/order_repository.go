package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"cafe_pos_backend/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// OrderRepository defines the interface for order and order-item
// database operations.
type OrderRepository interface {
	// Order methods
	CreateOrder(executor SQLExecutor, tableID string) (*models.Order, error)
	GetOrderByID(executor SQLExecutor, orderID string) (*models.Order, error)
	GetOrderForUpdate(executor SQLExecutor, orderID string) (*models.Order, error)
	GetOpenOrderByTableID(tableID string) (*models.Order, error)
	GetOpenOrders() ([]models.Order, error)
	GetOrders(filters models.OrderFilters) ([]models.Order, int, error)
	UpdateOrderStatus(executor SQLExecutor, orderID string, newStatus string) error
	SetOrderTotal(executor SQLExecutor, orderID string, totalCents int64) error
	SetOrderLocked(executor SQLExecutor, orderID string, locked bool) error
	SetOrderTable(executor SQLExecutor, orderID string, tableID string) error
	DeleteOrder(executor SQLExecutor, orderID string) error
	DeleteOrdersByTableID(executor SQLExecutor, tableID string) (int64, error)
	CountClosedOrdersBetween(start, end time.Time) (int, error)
	CountOpenNonEmptyOrders() (int, error)
	DeleteClosedOrdersBefore(executor SQLExecutor, cutoff time.Time) (int64, error)

	// OrderItem methods
	CreateOrderItem(executor SQLExecutor, item *models.OrderItem) (string, error)
	GetOrderItemByID(executor SQLExecutor, itemID string) (*models.OrderItem, error)
	GetOrderItemsByOrderID(executor SQLExecutor, orderID string) ([]models.OrderItem, error)
	FindUnpaidItem(executor SQLExecutor, orderID, productID string, unitPrice int64) (*models.OrderItem, error)
	UpdateOrderItemQuantity(executor SQLExecutor, itemID string, quantity int) error
	SetOrderItemsOrder(executor SQLExecutor, itemIDs []string, orderID string) error
	MarkOrderItemsPaid(executor SQLExecutor, itemIDs []string) error
	MarkAllOrderItemsPaid(executor SQLExecutor, orderID string) error
	DeleteOrderItem(executor SQLExecutor, itemID string) error
	DeleteOrderItemsByOrderID(executor SQLExecutor, orderID string) (int64, error)
	DeleteItemsOfClosedOrdersBefore(executor SQLExecutor, cutoff time.Time) (int64, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository.
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// executorOrDB lets read methods run either inside a caller transaction
// or directly on the pool.
func (r *orderRepository) executorOrDB(executor SQLExecutor) SQLExecutor {
	if executor != nil {
		return executor
	}
	return r.db
}

// --- Order Methods ---

func (r *orderRepository) CreateOrder(executor SQLExecutor, tableID string) (*models.Order, error) {
	now := time.Now()
	order := &models.Order{
		ID:          uuid.New().String(),
		TableID:     tableID,
		Status:      models.OrderStatusOpen,
		TotalAmount: 0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	query := `INSERT INTO orders (id, table_id, status, total_amount, is_locked, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.executorOrDB(executor).Exec(query,
		order.ID, order.TableID, order.Status, order.TotalAmount, order.IsLocked,
		order.CreatedAt, order.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return nil, fmt.Errorf("%w: table %s", ErrNotFound, tableID)
		}
		return nil, fmt.Errorf("%w: creating order: %v", ErrDatabaseError, err)
	}
	return order, nil
}

const orderColumns = `id, table_id, status, total_amount, is_locked, created_at, updated_at`

func (r *orderRepository) scanOrder(row scanner) (*models.Order, error) {
	order := &models.Order{}
	err := row.Scan(&order.ID, &order.TableID, &order.Status, &order.TotalAmount,
		&order.IsLocked, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning order: %v", ErrDatabaseError, err)
	}
	return order, nil
}

func (r *orderRepository) GetOrderByID(executor SQLExecutor, orderID string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.scanOrder(r.executorOrDB(executor).QueryRow(query, orderID))
}

// GetOrderForUpdate locks the order row for the duration of the caller's
// transaction so concurrent payments against the same order serialize.
func (r *orderRepository) GetOrderForUpdate(executor SQLExecutor, orderID string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1 FOR UPDATE`
	return r.scanOrder(executor.QueryRow(query, orderID))
}

func (r *orderRepository) GetOpenOrderByTableID(tableID string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE table_id = $1 AND status = $2`
	return r.scanOrder(r.db.QueryRow(query, tableID, models.OrderStatusOpen))
}

// GetOpenOrders returns every OPEN order joined with its table name, in
// the shape the end-of-day check needs.
func (r *orderRepository) GetOpenOrders() ([]models.Order, error) {
	orders := []models.Order{}
	query := `
		SELECT o.id, o.table_id, o.status, o.total_amount, o.is_locked, o.created_at, o.updated_at,
		       t.name AS table_name
		FROM orders o
		JOIN tables t ON o.table_id = t.id
		WHERE o.status = $1
		ORDER BY t.name`
	rows, err := r.db.Query(query, models.OrderStatusOpen)
	if err != nil {
		return nil, fmt.Errorf("%w: querying open orders: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var o models.Order
		var tableName string
		err := rows.Scan(&o.ID, &o.TableID, &o.Status, &o.TotalAmount, &o.IsLocked,
			&o.CreatedAt, &o.UpdatedAt, &tableName)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning open order: %v", ErrDatabaseError, err)
		}
		o.Table = &models.Table{ID: o.TableID, Name: tableName}
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating open order rows: %v", ErrDatabaseError, err)
	}
	return orders, nil
}

func (r *orderRepository) GetOrders(filters models.OrderFilters) ([]models.Order, int, error) {
	orders := []models.Order{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
		SELECT o.id, o.table_id, o.status, o.total_amount, o.is_locked, o.created_at, o.updated_at,
		       t.name AS table_name,
		       COUNT(*) OVER() AS total_count
		FROM orders o
		JOIN tables t ON o.table_id = t.id`)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if filters.TableID != nil {
		conditions = append(conditions, fmt.Sprintf("o.table_id = $%d", argCounter))
		args = append(args, *filters.TableID)
		argCounter++
	}
	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("o.status = $%d", argCounter))
		args = append(args, *filters.Status)
		argCounter++
	}
	if filters.Date != nil && *filters.Date != "" {
		parsedDate, err := time.Parse("2006-01-02", *filters.Date)
		if err == nil {
			startOfDay := time.Date(parsedDate.Year(), parsedDate.Month(), parsedDate.Day(), 0, 0, 0, 0, time.Local)
			endOfDay := startOfDay.AddDate(0, 0, 1).Add(-time.Nanosecond)
			conditions = append(conditions, fmt.Sprintf("o.created_at BETWEEN $%d AND $%d", argCounter, argCounter+1))
			args = append(args, startOfDay, endOfDay)
			argCounter += 2
		}
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY o.created_at DESC")

	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCounter))
		args = append(args, filters.PageSize)
		argCounter++
		if filters.Page > 0 {
			offset := (filters.Page - 1) * filters.PageSize
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCounter))
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying orders: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var o models.Order
		var tableName string
		err := rows.Scan(&o.ID, &o.TableID, &o.Status, &o.TotalAmount, &o.IsLocked,
			&o.CreatedAt, &o.UpdatedAt, &tableName, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning order: %v", ErrDatabaseError, err)
		}
		o.Table = &models.Table{ID: o.TableID, Name: tableName}
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating order rows: %v", ErrDatabaseError, err)
	}
	return orders, totalCount, nil
}

func (r *orderRepository) UpdateOrderStatus(executor SQLExecutor, orderID string, newStatus string) error {
	query := `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := r.executorOrDB(executor).Exec(query, newStatus, time.Now(), orderID)
	if err != nil {
		return fmt.Errorf("%w: updating order status for %s: %v", ErrDatabaseError, orderID, err)
	}
	return requireRowsAffected(result, orderID)
}

func (r *orderRepository) SetOrderTotal(executor SQLExecutor, orderID string, totalCents int64) error {
	query := `UPDATE orders SET total_amount = $1, updated_at = $2 WHERE id = $3`
	result, err := r.executorOrDB(executor).Exec(query, totalCents, time.Now(), orderID)
	if err != nil {
		return fmt.Errorf("%w: setting total for order %s: %v", ErrDatabaseError, orderID, err)
	}
	return requireRowsAffected(result, orderID)
}

func (r *orderRepository) SetOrderLocked(executor SQLExecutor, orderID string, locked bool) error {
	query := `UPDATE orders SET is_locked = $1, updated_at = $2 WHERE id = $3`
	result, err := r.executorOrDB(executor).Exec(query, locked, time.Now(), orderID)
	if err != nil {
		return fmt.Errorf("%w: setting lock for order %s: %v", ErrDatabaseError, orderID, err)
	}
	return requireRowsAffected(result, orderID)
}

func (r *orderRepository) SetOrderTable(executor SQLExecutor, orderID string, tableID string) error {
	query := `UPDATE orders SET table_id = $1, updated_at = $2 WHERE id = $3`
	result, err := r.executorOrDB(executor).Exec(query, tableID, time.Now(), orderID)
	if err != nil {
		return fmt.Errorf("%w: moving order %s to table %s: %v", ErrDatabaseError, orderID, tableID, err)
	}
	return requireRowsAffected(result, orderID)
}

func (r *orderRepository) DeleteOrder(executor SQLExecutor, orderID string) error {
	result, err := r.executorOrDB(executor).Exec(`DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("%w: deleting order %s: %v", ErrDatabaseError, orderID, err)
	}
	return requireRowsAffected(result, orderID)
}

func (r *orderRepository) DeleteOrdersByTableID(executor SQLExecutor, tableID string) (int64, error) {
	result, err := r.executorOrDB(executor).Exec(`DELETE FROM orders WHERE table_id = $1`, tableID)
	if err != nil {
		return 0, fmt.Errorf("%w: deleting orders for table %s: %v", ErrDatabaseError, tableID, err)
	}
	return result.RowsAffected()
}

func (r *orderRepository) CountClosedOrdersBetween(start, end time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM orders WHERE status = $1 AND created_at > $2 AND created_at <= $3`
	err := r.db.QueryRow(query, models.OrderStatusClosed, start, end).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: counting closed orders: %v", ErrDatabaseError, err)
	}
	return count, nil
}

// CountOpenNonEmptyOrders counts OPEN orders that have at least one item,
// i.e. bills still being served.
func (r *orderRepository) CountOpenNonEmptyOrders() (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM orders o
	          WHERE o.status = $1 AND EXISTS (SELECT 1 FROM order_items oi WHERE oi.order_id = o.id)`
	err := r.db.QueryRow(query, models.OrderStatusOpen).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("%w: counting pending orders: %v", ErrDatabaseError, err)
	}
	return count, nil
}

func (r *orderRepository) DeleteClosedOrdersBefore(executor SQLExecutor, cutoff time.Time) (int64, error) {
	query := `DELETE FROM orders WHERE status = $1 AND created_at < $2`
	result, err := r.executorOrDB(executor).Exec(query, models.OrderStatusClosed, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w: archiving closed orders: %v", ErrDatabaseError, err)
	}
	return result.RowsAffected()
}

// --- OrderItem Methods ---

func (r *orderRepository) CreateOrderItem(executor SQLExecutor, item *models.OrderItem) (string, error) {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	query := `INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, is_paid, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.executorOrDB(executor).Exec(query,
		item.ID, item.OrderID, item.ProductID, item.Quantity, item.UnitPrice, item.IsPaid, item.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return "", fmt.Errorf("%w: creating order item (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
		}
		return "", fmt.Errorf("%w: creating order item: %v", ErrDatabaseError, err)
	}
	return item.ID, nil
}

const orderItemSelect = `
	SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.unit_price, oi.is_paid, oi.created_at,
	       p.name, p.price, p.category_id, p.is_favorite
	FROM order_items oi
	JOIN products p ON oi.product_id = p.id`

func scanOrderItem(row scanner) (*models.OrderItem, error) {
	var item models.OrderItem
	var product models.Product
	err := row.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.UnitPrice,
		&item.IsPaid, &item.CreatedAt,
		&product.Name, &product.Price, &product.CategoryID, &product.IsFavorite)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning order item: %v", ErrDatabaseError, err)
	}
	product.ID = item.ProductID
	item.Product = &product
	return &item, nil
}

func (r *orderRepository) GetOrderItemByID(executor SQLExecutor, itemID string) (*models.OrderItem, error) {
	query := orderItemSelect + ` WHERE oi.id = $1`
	return scanOrderItem(r.executorOrDB(executor).QueryRow(query, itemID))
}

func (r *orderRepository) GetOrderItemsByOrderID(executor SQLExecutor, orderID string) ([]models.OrderItem, error) {
	items := []models.OrderItem{}
	query := orderItemSelect + ` WHERE oi.order_id = $1 ORDER BY oi.created_at, oi.id`
	rows, err := r.executorOrDB(executor).Query(query, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying order items for order %s: %v", ErrDatabaseError, orderID, err)
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating order item rows for order %s: %v", ErrDatabaseError, orderID, err)
	}
	return items, nil
}

// FindUnpaidItem looks for an unpaid line of the same product at the same
// unit price, so repeated adds merge into one line.
func (r *orderRepository) FindUnpaidItem(executor SQLExecutor, orderID, productID string, unitPrice int64) (*models.OrderItem, error) {
	query := orderItemSelect + `
	 WHERE oi.order_id = $1 AND oi.product_id = $2 AND oi.unit_price = $3 AND oi.is_paid = FALSE
	 LIMIT 1`
	return scanOrderItem(r.executorOrDB(executor).QueryRow(query, orderID, productID, unitPrice))
}

func (r *orderRepository) UpdateOrderItemQuantity(executor SQLExecutor, itemID string, quantity int) error {
	result, err := r.executorOrDB(executor).Exec(
		`UPDATE order_items SET quantity = $1 WHERE id = $2`, quantity, itemID)
	if err != nil {
		return fmt.Errorf("%w: updating quantity for item %s: %v", ErrDatabaseError, itemID, err)
	}
	return requireRowsAffected(result, itemID)
}

func (r *orderRepository) SetOrderItemsOrder(executor SQLExecutor, itemIDs []string, orderID string) error {
	if len(itemIDs) == 0 {
		return nil
	}
	_, err := r.executorOrDB(executor).Exec(
		`UPDATE order_items SET order_id = $1 WHERE id = ANY($2)`, orderID, pq.Array(itemIDs))
	if err != nil {
		return fmt.Errorf("%w: moving order items: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *orderRepository) MarkOrderItemsPaid(executor SQLExecutor, itemIDs []string) error {
	if len(itemIDs) == 0 {
		return nil
	}
	_, err := r.executorOrDB(executor).Exec(
		`UPDATE order_items SET is_paid = TRUE WHERE id = ANY($1)`, pq.Array(itemIDs))
	if err != nil {
		return fmt.Errorf("%w: marking items paid: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *orderRepository) MarkAllOrderItemsPaid(executor SQLExecutor, orderID string) error {
	_, err := r.executorOrDB(executor).Exec(
		`UPDATE order_items SET is_paid = TRUE WHERE order_id = $1 AND is_paid = FALSE`, orderID)
	if err != nil {
		return fmt.Errorf("%w: marking order %s items paid: %v", ErrDatabaseError, orderID, err)
	}
	return nil
}

func (r *orderRepository) DeleteOrderItem(executor SQLExecutor, itemID string) error {
	result, err := r.executorOrDB(executor).Exec(`DELETE FROM order_items WHERE id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("%w: deleting order item %s: %v", ErrDatabaseError, itemID, err)
	}
	return requireRowsAffected(result, itemID)
}

func (r *orderRepository) DeleteOrderItemsByOrderID(executor SQLExecutor, orderID string) (int64, error) {
	result, err := r.executorOrDB(executor).Exec(`DELETE FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		return 0, fmt.Errorf("%w: deleting order items for order %s: %v", ErrDatabaseError, orderID, err)
	}
	return result.RowsAffected()
}

func (r *orderRepository) DeleteItemsOfClosedOrdersBefore(executor SQLExecutor, cutoff time.Time) (int64, error) {
	query := `DELETE FROM order_items WHERE order_id IN
	            (SELECT id FROM orders WHERE status = $1 AND created_at < $2)`
	result, err := r.executorOrDB(executor).Exec(query, models.OrderStatusClosed, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w: archiving order items: %v", ErrDatabaseError, err)
	}
	return result.RowsAffected()
}

// requireRowsAffected maps a zero-row write to ErrNotFound.
func requireRowsAffected(result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for %s: %v", ErrDatabaseError, id, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
