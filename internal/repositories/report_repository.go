package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cafe_pos_backend/internal/models"

	"github.com/google/uuid"
)

// ReportRepository defines the interface for daily summaries, monthly
// reports and the sales aggregates behind the dashboard.
type ReportRepository interface {
	// Daily summary (Z-report) methods
	GetLatestDailySummary() (*models.DailySummary, error)
	UpsertDailySummary(executor SQLExecutor, summary *models.DailySummary) (*models.DailySummary, error)
	GetDailySummaries(start, end time.Time, limit int) ([]models.DailySummary, error)
	DeleteDailySummariesBefore(executor SQLExecutor, cutoff time.Time) (int64, error)

	// Monthly report methods
	UpsertMonthlyReport(executor SQLExecutor, report *models.MonthlyReport) (*models.MonthlyReport, error)
	GetMonthlyReports(limit int) ([]models.MonthlyReport, error)

	// Sales aggregates
	GetProductSalesBetween(start, end time.Time, limit int, ascending bool) ([]models.ProductSales, error)
	GetCategorySalesBetween(start, end time.Time) ([]models.CategorySales, error)
	GetRevenueTrend(start, end time.Time) ([]models.RevenueTrendItem, error)
}

type reportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new instance of ReportRepository.
func NewReportRepository(db *sql.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) executorOrDB(executor SQLExecutor) SQLExecutor {
	if executor != nil {
		return executor
	}
	return r.db
}

const dailySummaryColumns = `id, date, total_cash, actual_cash, total_card, total_expenses,
	net_profit, total_vat, order_count, cancel_count, total_revenue, created_at`

func scanDailySummary(row scanner) (*models.DailySummary, error) {
	var s models.DailySummary
	err := row.Scan(&s.ID, &s.Date, &s.TotalCash, &s.ActualCash, &s.TotalCard, &s.TotalExpenses,
		&s.NetProfit, &s.TotalVat, &s.OrderCount, &s.CancelCount, &s.TotalRevenue, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning daily summary: %v", ErrDatabaseError, err)
	}
	return &s, nil
}

// GetLatestDailySummary returns the most recently created Z-report. Its
// created_at marks where the next reporting window starts.
func (r *reportRepository) GetLatestDailySummary() (*models.DailySummary, error) {
	query := `SELECT ` + dailySummaryColumns + ` FROM daily_summaries
	          ORDER BY created_at DESC LIMIT 1`
	return scanDailySummary(r.db.QueryRow(query))
}

// UpsertDailySummary inserts the Z-report for its business day, or
// replaces the figures when the day was already closed once.
func (r *reportRepository) UpsertDailySummary(executor SQLExecutor, summary *models.DailySummary) (*models.DailySummary, error) {
	if summary.ID == "" {
		summary.ID = uuid.New().String()
	}
	if summary.CreatedAt.IsZero() {
		summary.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO daily_summaries (` + dailySummaryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (date) DO UPDATE SET
			total_cash = EXCLUDED.total_cash,
			actual_cash = EXCLUDED.actual_cash,
			total_card = EXCLUDED.total_card,
			total_expenses = EXCLUDED.total_expenses,
			net_profit = EXCLUDED.net_profit,
			total_vat = EXCLUDED.total_vat,
			order_count = EXCLUDED.order_count,
			cancel_count = EXCLUDED.cancel_count,
			total_revenue = EXCLUDED.total_revenue,
			created_at = EXCLUDED.created_at
		RETURNING ` + dailySummaryColumns
	row := r.executorOrDB(executor).QueryRow(query,
		summary.ID, summary.Date, summary.TotalCash, summary.ActualCash, summary.TotalCard,
		summary.TotalExpenses, summary.NetProfit, summary.TotalVat, summary.OrderCount,
		summary.CancelCount, summary.TotalRevenue, summary.CreatedAt)
	return scanDailySummary(row)
}

func (r *reportRepository) GetDailySummaries(start, end time.Time, limit int) ([]models.DailySummary, error) {
	summaries := []models.DailySummary{}
	query := `SELECT ` + dailySummaryColumns + ` FROM daily_summaries
	          WHERE date >= $1 AND date <= $2 ORDER BY date DESC`
	args := []interface{}{start, end}
	if limit > 0 {
		query += ` LIMIT $3`
		args = append(args, limit)
	}
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying daily summaries: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		summary, err := scanDailySummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating daily summary rows: %v", ErrDatabaseError, err)
	}
	return summaries, nil
}

func (r *reportRepository) DeleteDailySummariesBefore(executor SQLExecutor, cutoff time.Time) (int64, error) {
	result, err := r.executorOrDB(executor).Exec(
		`DELETE FROM daily_summaries WHERE date < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w: archiving daily summaries: %v", ErrDatabaseError, err)
	}
	return result.RowsAffected()
}

// --- Monthly Report Methods ---

const monthlyReportColumns = `id, month_date, total_revenue, total_expenses, net_profit, order_count, updated_at`

func scanMonthlyReport(row scanner) (*models.MonthlyReport, error) {
	var m models.MonthlyReport
	err := row.Scan(&m.ID, &m.MonthDate, &m.TotalRevenue, &m.TotalExpenses, &m.NetProfit,
		&m.OrderCount, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning monthly report: %v", ErrDatabaseError, err)
	}
	return &m, nil
}

// UpsertMonthlyReport accumulates one closed day into the month row
// keyed by the UTC month start.
func (r *reportRepository) UpsertMonthlyReport(executor SQLExecutor, report *models.MonthlyReport) (*models.MonthlyReport, error) {
	if report.ID == "" {
		report.ID = uuid.New().String()
	}
	query := `
		INSERT INTO monthly_reports (` + monthlyReportColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (month_date) DO UPDATE SET
			total_revenue = monthly_reports.total_revenue + EXCLUDED.total_revenue,
			total_expenses = monthly_reports.total_expenses + EXCLUDED.total_expenses,
			net_profit = monthly_reports.net_profit + EXCLUDED.net_profit,
			order_count = monthly_reports.order_count + EXCLUDED.order_count,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + monthlyReportColumns
	row := r.executorOrDB(executor).QueryRow(query,
		report.ID, report.MonthDate, report.TotalRevenue, report.TotalExpenses,
		report.NetProfit, report.OrderCount, time.Now())
	return scanMonthlyReport(row)
}

func (r *reportRepository) GetMonthlyReports(limit int) ([]models.MonthlyReport, error) {
	reports := []models.MonthlyReport{}
	query := `SELECT ` + monthlyReportColumns + ` FROM monthly_reports ORDER BY month_date DESC`
	args := []interface{}{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying monthly reports: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		report, err := scanMonthlyReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *report)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating monthly report rows: %v", ErrDatabaseError, err)
	}
	return reports, nil
}

// --- Sales Aggregates ---

// GetProductSalesBetween ranks products by quantity sold in the window.
// ascending=true returns the worst sellers first.
func (r *reportRepository) GetProductSalesBetween(start, end time.Time, limit int, ascending bool) ([]models.ProductSales, error) {
	sales := []models.ProductSales{}
	direction := "DESC"
	if ascending {
		direction = "ASC"
	}
	query := `
		SELECT p.id, p.name, COALESCE(SUM(oi.quantity), 0)::int AS sold
		FROM order_items oi
		JOIN products p ON oi.product_id = p.id
		WHERE oi.created_at > $1 AND oi.created_at <= $2
		GROUP BY p.id, p.name
		ORDER BY sold ` + direction + `, p.name
		LIMIT $3`
	rows, err := r.db.Query(query, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: querying product sales: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.ProductSales
		err := rows.Scan(&s.ProductID, &s.ProductName, &s.Quantity)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning product sales: %v", ErrDatabaseError, err)
		}
		sales = append(sales, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating product sales rows: %v", ErrDatabaseError, err)
	}
	return sales, nil
}

func (r *reportRepository) GetCategorySalesBetween(start, end time.Time) ([]models.CategorySales, error) {
	sales := []models.CategorySales{}
	query := `
		SELECT c.name, COALESCE(SUM(oi.quantity * oi.unit_price), 0), COALESCE(SUM(oi.quantity), 0)::int
		FROM order_items oi
		JOIN products p ON oi.product_id = p.id
		JOIN categories c ON p.category_id = c.id
		WHERE oi.created_at > $1 AND oi.created_at <= $2
		GROUP BY c.name
		ORDER BY SUM(oi.quantity * oi.unit_price) DESC`
	rows, err := r.db.Query(query, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: querying category sales: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var s models.CategorySales
		err := rows.Scan(&s.CategoryName, &s.Revenue, &s.Quantity)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning category sales: %v", ErrDatabaseError, err)
		}
		sales = append(sales, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating category sales rows: %v", ErrDatabaseError, err)
	}
	return sales, nil
}

// GetRevenueTrend returns per-day payment revenue over the window.
func (r *reportRepository) GetRevenueTrend(start, end time.Time) ([]models.RevenueTrendItem, error) {
	trend := []models.RevenueTrendItem{}
	query := `
		SELECT date_trunc('day', created_at) AS day, COALESCE(SUM(amount), 0), COUNT(DISTINCT order_id)::int
		FROM payments
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY day
		ORDER BY day`
	rows, err := r.db.Query(query, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: querying revenue trend: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.RevenueTrendItem
		err := rows.Scan(&item.Date, &item.Revenue, &item.OrderCount)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning revenue trend: %v", ErrDatabaseError, err)
		}
		trend = append(trend, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating revenue trend rows: %v", ErrDatabaseError, err)
	}
	return trend, nil
}
