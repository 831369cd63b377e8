package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cafe_pos_backend/internal/models"
	"cafe_pos_backend/internal/repositories"
	"cafe_pos_backend/pkg/utils"
)

var ErrActualCashNegative = errors.New("counted cash cannot be negative")

// vatRate is applied to gross revenue when the Z-report is cut.
const vatRate = 0.10

// ReportingService produces the Z-report figures and the dashboard
// aggregates. The reporting window always runs from the previous
// Z-report's creation time to now, so nothing is ever counted twice and
// nothing falls between two reports.
type ReportingService interface {
	GetExpectedTotals() (*models.ExpectedDailyTotals, error)
	CreateZReport(actualCash int64) (*models.DailySummary, error)
	GetDailySummaries(start, end time.Time, limit int) ([]models.DailySummary, error)
	GetMonthlyReports(limit int) ([]models.MonthlyReport, error)
	GetDashboardStats() (*models.DashboardStats, error)
	GetRevenueTrend(days int) ([]models.RevenueTrendItem, error)
}

type reportingService struct {
	reportRepo  repositories.ReportRepository
	paymentRepo repositories.PaymentRepository
	expenseRepo repositories.ExpenseRepository
	orderRepo   repositories.OrderRepository
	logRepo     repositories.ActivityLogRepository
	db          *sql.DB
}

func NewReportingService(
	reportRepo repositories.ReportRepository,
	paymentRepo repositories.PaymentRepository,
	expenseRepo repositories.ExpenseRepository,
	orderRepo repositories.OrderRepository,
	logRepo repositories.ActivityLogRepository,
	db *sql.DB,
) ReportingService {
	return &reportingService{
		reportRepo:  reportRepo,
		paymentRepo: paymentRepo,
		expenseRepo: expenseRepo,
		orderRepo:   orderRepo,
		logRepo:     logRepo,
		db:          db,
	}
}

// reportingWindow returns the half-open interval (start, now] covered
// by the next Z-report. Before the first report the window starts at
// the epoch so early history is still captured.
func (s *reportingService) reportingWindow() (time.Time, time.Time, error) {
	now := time.Now()
	latest, err := s.reportRepo.GetLatestDailySummary()
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return time.Unix(0, 0), now, nil
		}
		return time.Time{}, time.Time{}, err
	}
	return latest.CreatedAt, now, nil
}

func (s *reportingService) GetExpectedTotals() (*models.ExpectedDailyTotals, error) {
	start, end, err := s.reportingWindow()
	if err != nil {
		return nil, err
	}
	cash, err := s.paymentRepo.SumPaymentsByMethodBetween(start, end, models.PaymentMethodCash)
	if err != nil {
		return nil, err
	}
	card, err := s.paymentRepo.SumPaymentsByMethodBetween(start, end, models.PaymentMethodCard)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.SumExpensesBetween(start, end)
	if err != nil {
		return nil, err
	}
	netCash := cash - expenses
	if netCash < 0 {
		netCash = 0
	}
	return &models.ExpectedDailyTotals{
		Revenue:         cash + card,
		Cash:            cash,
		Card:            card,
		Expenses:        expenses,
		NetExpectedCash: netCash,
	}, nil
}

// CreateZReport freezes the current reporting window into a daily
// summary and rolls the figures into the month. Closing the same
// business day twice replaces the earlier summary.
func (s *reportingService) CreateZReport(actualCash int64) (*models.DailySummary, error) {
	if actualCash < 0 {
		return nil, ErrActualCashNegative
	}

	start, end, err := s.reportingWindow()
	if err != nil {
		return nil, err
	}
	cash, err := s.paymentRepo.SumPaymentsByMethodBetween(start, end, models.PaymentMethodCash)
	if err != nil {
		return nil, err
	}
	card, err := s.paymentRepo.SumPaymentsByMethodBetween(start, end, models.PaymentMethodCard)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.SumExpensesBetween(start, end)
	if err != nil {
		return nil, err
	}
	orderCount, err := s.orderRepo.CountClosedOrdersBetween(start, end)
	if err != nil {
		return nil, err
	}
	cancelCount, err := s.logRepo.CountLogsByActionBetween(ActionOrderCancelled, start, end)
	if err != nil {
		return nil, err
	}

	revenue := cash + card
	summary := &models.DailySummary{
		Date:          utils.BusinessDayStart(end),
		TotalCash:     cash,
		ActualCash:    actualCash,
		TotalCard:     card,
		TotalExpenses: expenses,
		NetProfit:     revenue - expenses,
		TotalVat:      roundVat(revenue),
		OrderCount:    orderCount,
		CancelCount:   cancelCount,
		TotalRevenue:  revenue,
		CreatedAt:     end,
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	saved, err := s.reportRepo.UpsertDailySummary(tx, summary)
	if err != nil {
		return nil, err
	}

	monthStart := time.Date(saved.Date.Year(), saved.Date.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthly := &models.MonthlyReport{
		MonthDate:     monthStart,
		TotalRevenue:  saved.TotalRevenue,
		TotalExpenses: saved.TotalExpenses,
		NetProfit:     saved.NetProfit,
		OrderCount:    saved.OrderCount,
	}
	if _, err := s.reportRepo.UpsertMonthlyReport(tx, monthly); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit z-report: %w", err)
	}
	return saved, nil
}

// roundVat rounds to the nearest cent, halves away from zero.
func roundVat(revenue int64) int64 {
	scaled := float64(revenue) * vatRate
	if scaled >= 0 {
		return int64(scaled + 0.5)
	}
	return int64(scaled - 0.5)
}

func (s *reportingService) GetDailySummaries(start, end time.Time, limit int) ([]models.DailySummary, error) {
	if end.IsZero() {
		end = time.Now()
	}
	if start.IsZero() {
		start = end.AddDate(0, -1, 0)
	}
	return s.reportRepo.GetDailySummaries(start, end, limit)
}

func (s *reportingService) GetMonthlyReports(limit int) ([]models.MonthlyReport, error) {
	return s.reportRepo.GetMonthlyReports(limit)
}

// GetDashboardStats aggregates the current business day for the live
// dashboard. Unlike the Z-report window this always starts at the
// 05:00 shift boundary.
func (s *reportingService) GetDashboardStats() (*models.DashboardStats, error) {
	now := time.Now()
	start := utils.BusinessShiftStart(now)

	breakdown, err := s.paymentRepo.GetMethodBreakdownBetween(start, now)
	if err != nil {
		return nil, err
	}
	orderCount, err := s.orderRepo.CountClosedOrdersBetween(start, now)
	if err != nil {
		return nil, err
	}
	topProducts, err := s.reportRepo.GetProductSalesBetween(start, now, 5, false)
	if err != nil {
		return nil, err
	}
	bottomProducts, err := s.reportRepo.GetProductSalesBetween(start, now, 5, true)
	if err != nil {
		return nil, err
	}
	categorySales, err := s.reportRepo.GetCategorySalesBetween(start, now)
	if err != nil {
		return nil, err
	}
	expenses, err := s.expenseRepo.SumExpensesBetween(start, now)
	if err != nil {
		return nil, err
	}
	openOrders, err := s.orderRepo.GetOpenOrders()
	if err != nil {
		return nil, err
	}
	pending, err := s.orderRepo.CountOpenNonEmptyOrders()
	if err != nil {
		return nil, err
	}
	hourly, err := s.paymentRepo.GetHourlyActivityBetween(start, now)
	if err != nil {
		return nil, err
	}

	return &models.DashboardStats{
		DailyRevenue:   breakdown.Cash + breakdown.Card,
		TotalOrders:    orderCount,
		Breakdown:      breakdown,
		TopProducts:    topProducts,
		BottomProducts: bottomProducts,
		CategorySales:  categorySales,
		DailyExpenses:  expenses,
		OpenTables:     len(openOrders),
		PendingOrders:  pending,
		HourlyActivity: hourly,
	}, nil
}

func (s *reportingService) GetRevenueTrend(days int) ([]models.RevenueTrendItem, error) {
	if days <= 0 {
		days = 7
	}
	now := time.Now()
	end := utils.BusinessShiftEnd(now).Add(time.Nanosecond)
	start := utils.BusinessShiftStart(now).AddDate(0, 0, -(days - 1))
	return s.reportRepo.GetRevenueTrend(start, end)
}
