package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cafe_pos_backend/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// PaymentRepository defines the interface for payment database operations.
type PaymentRepository interface {
	CreatePayment(executor SQLExecutor, payment *models.Payment) (string, error)
	GetPaymentsByOrderID(executor SQLExecutor, orderID string) ([]models.Payment, error)
	SumPaymentsByOrderID(executor SQLExecutor, orderID string) (int64, error)
	SetPaymentsOrder(executor SQLExecutor, fromOrderID, toOrderID string) error
	DeletePaymentsByOrderID(executor SQLExecutor, orderID string) (int64, error)
	SumPaymentsByMethodBetween(start, end time.Time, method string) (int64, error)
	GetMethodBreakdownBetween(start, end time.Time) (models.PaymentMethodBreakdown, error)
	GetHourlyActivityBetween(start, end time.Time) ([]models.HourlyActivity, error)
	DeletePaymentsOfClosedOrdersBefore(executor SQLExecutor, cutoff time.Time) (int64, error)
}

type paymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository creates a new instance of PaymentRepository.
func NewPaymentRepository(db *sql.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) executorOrDB(executor SQLExecutor) SQLExecutor {
	if executor != nil {
		return executor
	}
	return r.db
}

func (r *paymentRepository) CreatePayment(executor SQLExecutor, payment *models.Payment) (string, error) {
	if payment.ID == "" {
		payment.ID = uuid.New().String()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now()
	}
	query := `INSERT INTO payments (id, order_id, amount, method, created_at)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := r.executorOrDB(executor).Exec(query,
		payment.ID, payment.OrderID, payment.Amount, payment.Method, payment.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return "", fmt.Errorf("%w: order %s", ErrNotFound, payment.OrderID)
		}
		return "", fmt.Errorf("%w: creating payment: %v", ErrDatabaseError, err)
	}
	return payment.ID, nil
}

func (r *paymentRepository) GetPaymentsByOrderID(executor SQLExecutor, orderID string) ([]models.Payment, error) {
	payments := []models.Payment{}
	query := `SELECT id, order_id, amount, method, created_at FROM payments
	          WHERE order_id = $1 ORDER BY created_at`
	rows, err := r.executorOrDB(executor).Query(query, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying payments for order %s: %v", ErrDatabaseError, orderID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Payment
		err := rows.Scan(&p.ID, &p.OrderID, &p.Amount, &p.Method, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning payment: %v", ErrDatabaseError, err)
		}
		payments = append(payments, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating payment rows: %v", ErrDatabaseError, err)
	}
	return payments, nil
}

// SumPaymentsByOrderID returns the total amount already tendered against
// an order. Runs inside the caller's transaction when one is provided.
func (r *paymentRepository) SumPaymentsByOrderID(executor SQLExecutor, orderID string) (int64, error) {
	var total int64
	query := `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE order_id = $1`
	err := r.executorOrDB(executor).QueryRow(query, orderID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("%w: summing payments for order %s: %v", ErrDatabaseError, orderID, err)
	}
	return total, nil
}

// SetPaymentsOrder reassigns all payments of one order to another. Used
// when merging tables.
func (r *paymentRepository) SetPaymentsOrder(executor SQLExecutor, fromOrderID, toOrderID string) error {
	_, err := r.executorOrDB(executor).Exec(
		`UPDATE payments SET order_id = $1 WHERE order_id = $2`, toOrderID, fromOrderID)
	if err != nil {
		return fmt.Errorf("%w: reassigning payments from order %s to %s: %v", ErrDatabaseError, fromOrderID, toOrderID, err)
	}
	return nil
}

func (r *paymentRepository) DeletePaymentsByOrderID(executor SQLExecutor, orderID string) (int64, error) {
	result, err := r.executorOrDB(executor).Exec(`DELETE FROM payments WHERE order_id = $1`, orderID)
	if err != nil {
		return 0, fmt.Errorf("%w: deleting payments for order %s: %v", ErrDatabaseError, orderID, err)
	}
	return result.RowsAffected()
}

func (r *paymentRepository) SumPaymentsByMethodBetween(start, end time.Time, method string) (int64, error) {
	var total int64
	query := `SELECT COALESCE(SUM(amount), 0) FROM payments
	          WHERE method = $1 AND created_at > $2 AND created_at <= $3`
	err := r.db.QueryRow(query, method, start, end).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("%w: summing %s payments: %v", ErrDatabaseError, method, err)
	}
	return total, nil
}

func (r *paymentRepository) GetMethodBreakdownBetween(start, end time.Time) (models.PaymentMethodBreakdown, error) {
	var breakdown models.PaymentMethodBreakdown
	query := `SELECT method, COALESCE(SUM(amount), 0)
	          FROM payments WHERE created_at > $1 AND created_at <= $2
	          GROUP BY method`
	rows, err := r.db.Query(query, start, end)
	if err != nil {
		return breakdown, fmt.Errorf("%w: querying payment breakdown: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var method string
		var total int64
		if err := rows.Scan(&method, &total); err != nil {
			return breakdown, fmt.Errorf("%w: scanning payment breakdown: %v", ErrDatabaseError, err)
		}
		switch method {
		case models.PaymentMethodCash:
			breakdown.Cash = total
		case models.PaymentMethodCard:
			breakdown.Card = total
		}
	}
	if err = rows.Err(); err != nil {
		return breakdown, fmt.Errorf("%w: iterating payment breakdown rows: %v", ErrDatabaseError, err)
	}
	return breakdown, nil
}

// GetHourlyActivityBetween buckets payment revenue by hour of day for the
// dashboard activity chart.
func (r *paymentRepository) GetHourlyActivityBetween(start, end time.Time) ([]models.HourlyActivity, error) {
	activity := []models.HourlyActivity{}
	query := `SELECT EXTRACT(HOUR FROM created_at)::int AS hour, COALESCE(SUM(amount), 0), COUNT(DISTINCT order_id)
	          FROM payments WHERE created_at > $1 AND created_at <= $2
	          GROUP BY hour ORDER BY hour`
	rows, err := r.db.Query(query, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: querying hourly activity: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var hour int
		var h models.HourlyActivity
		err := rows.Scan(&hour, &h.Revenue, &h.OrderCount)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning hourly activity: %v", ErrDatabaseError, err)
		}
		h.Hour = fmt.Sprintf("%02d:00", hour)
		activity = append(activity, h)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating hourly activity rows: %v", ErrDatabaseError, err)
	}
	return activity, nil
}

func (r *paymentRepository) DeletePaymentsOfClosedOrdersBefore(executor SQLExecutor, cutoff time.Time) (int64, error) {
	query := `DELETE FROM payments WHERE order_id IN
	            (SELECT id FROM orders WHERE status = $1 AND created_at < $2)`
	result, err := r.executorOrDB(executor).Exec(query, models.OrderStatusClosed, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w: archiving payments: %v", ErrDatabaseError, err)
	}
	return result.RowsAffected()
}
