package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"cafe_pos_backend/internal/models"

	"github.com/google/uuid"
)

// ExpenseRepository defines the interface for expense database operations.
type ExpenseRepository interface {
	CreateExpense(executor SQLExecutor, expense *models.Expense) (string, error)
	GetExpenseByID(expenseID string) (*models.Expense, error)
	GetExpenses(filters models.ExpenseFilters) ([]models.Expense, int, error)
	UpdateExpense(executor SQLExecutor, expense *models.Expense) error
	DeleteExpense(executor SQLExecutor, expenseID string) error
	SumExpensesBetween(start, end time.Time) (int64, error)
	GetCategoryTotalsBetween(start, end time.Time) ([]models.CategoryExpense, error)
	DeleteExpensesBefore(executor SQLExecutor, cutoff time.Time) (int64, error)
}

type expenseRepository struct {
	db *sql.DB
}

// NewExpenseRepository creates a new instance of ExpenseRepository.
func NewExpenseRepository(db *sql.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) executorOrDB(executor SQLExecutor) SQLExecutor {
	if executor != nil {
		return executor
	}
	return r.db
}

const expenseColumns = `id, description, amount, category, payment_method, created_at`

func scanExpense(row scanner) (*models.Expense, error) {
	var e models.Expense
	err := row.Scan(&e.ID, &e.Description, &e.Amount, &e.Category, &e.PaymentMethod, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning expense: %v", ErrDatabaseError, err)
	}
	return &e, nil
}

func (r *expenseRepository) CreateExpense(executor SQLExecutor, expense *models.Expense) (string, error) {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = time.Now()
	}
	query := `INSERT INTO expenses (id, description, amount, category, payment_method, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.executorOrDB(executor).Exec(query,
		expense.ID, expense.Description, expense.Amount, expense.Category,
		expense.PaymentMethod, expense.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("%w: creating expense: %v", ErrDatabaseError, err)
	}
	return expense.ID, nil
}

func (r *expenseRepository) GetExpenseByID(expenseID string) (*models.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1`
	return scanExpense(r.db.QueryRow(query, expenseID))
}

func (r *expenseRepository) GetExpenses(filters models.ExpenseFilters) ([]models.Expense, int, error) {
	expenses := []models.Expense{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + expenseColumns + `, COUNT(*) OVER() AS total_count FROM expenses`)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if filters.Search != nil && *filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("description ILIKE $%d", argCounter))
		args = append(args, "%"+*filters.Search+"%")
		argCounter++
	}
	if filters.Category != nil && *filters.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argCounter))
		args = append(args, *filters.Category)
		argCounter++
	}
	if filters.StartDate != nil && *filters.StartDate != "" {
		if parsed, err := time.Parse("2006-01-02", *filters.StartDate); err == nil {
			conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argCounter))
			args = append(args, parsed)
			argCounter++
		}
	}
	if filters.EndDate != nil && *filters.EndDate != "" {
		if parsed, err := time.Parse("2006-01-02", *filters.EndDate); err == nil {
			conditions = append(conditions, fmt.Sprintf("created_at < $%d", argCounter))
			args = append(args, parsed.AddDate(0, 0, 1))
			argCounter++
		}
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC")

	if filters.Limit > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCounter))
		args = append(args, filters.Limit)
		argCounter++
		if filters.Offset > 0 {
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCounter))
			args = append(args, filters.Offset)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying expenses: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var e models.Expense
		err := rows.Scan(&e.ID, &e.Description, &e.Amount, &e.Category, &e.PaymentMethod,
			&e.CreatedAt, &totalCount)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: scanning expense: %v", ErrDatabaseError, err)
		}
		expenses = append(expenses, e)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating expense rows: %v", ErrDatabaseError, err)
	}
	return expenses, totalCount, nil
}

func (r *expenseRepository) UpdateExpense(executor SQLExecutor, expense *models.Expense) error {
	query := `UPDATE expenses SET description = $1, amount = $2, category = $3, payment_method = $4
	          WHERE id = $5`
	result, err := r.executorOrDB(executor).Exec(query,
		expense.Description, expense.Amount, expense.Category, expense.PaymentMethod, expense.ID)
	if err != nil {
		return fmt.Errorf("%w: updating expense %s: %v", ErrDatabaseError, expense.ID, err)
	}
	return requireRowsAffected(result, expense.ID)
}

func (r *expenseRepository) DeleteExpense(executor SQLExecutor, expenseID string) error {
	result, err := r.executorOrDB(executor).Exec(`DELETE FROM expenses WHERE id = $1`, expenseID)
	if err != nil {
		return fmt.Errorf("%w: deleting expense %s: %v", ErrDatabaseError, expenseID, err)
	}
	return requireRowsAffected(result, expenseID)
}

func (r *expenseRepository) SumExpensesBetween(start, end time.Time) (int64, error) {
	var total int64
	query := `SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE created_at > $1 AND created_at <= $2`
	err := r.db.QueryRow(query, start, end).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("%w: summing expenses: %v", ErrDatabaseError, err)
	}
	return total, nil
}

func (r *expenseRepository) GetCategoryTotalsBetween(start, end time.Time) ([]models.CategoryExpense, error) {
	totals := []models.CategoryExpense{}
	query := `SELECT COALESCE(category, 'Diğer'), COALESCE(SUM(amount), 0)
	          FROM expenses WHERE created_at > $1 AND created_at <= $2
	          GROUP BY category ORDER BY SUM(amount) DESC`
	rows, err := r.db.Query(query, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: querying expense category totals: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var t models.CategoryExpense
		err := rows.Scan(&t.Name, &t.Total)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning expense category total: %v", ErrDatabaseError, err)
		}
		totals = append(totals, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating expense category rows: %v", ErrDatabaseError, err)
	}
	return totals, nil
}

func (r *expenseRepository) DeleteExpensesBefore(executor SQLExecutor, cutoff time.Time) (int64, error) {
	result, err := r.executorOrDB(executor).Exec(`DELETE FROM expenses WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w: deleting expenses before %s: %v", ErrDatabaseError, cutoff.Format(time.RFC3339), err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: reading affected rows: %v", ErrDatabaseError, err)
	}
	return affected, nil
}
