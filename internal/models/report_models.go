package models

import "time"

// DailySummary is the Z-report: the immutable end-of-day record for one
// business day. Date is midnight of the business day (05:00 boundary).
type DailySummary struct {
	ID            string    `json:"id" db:"id"`
	Date          time.Time `json:"date" db:"date"`
	TotalCash     int64     `json:"total_cash" db:"total_cash"`
	ActualCash    int64     `json:"actual_cash" db:"actual_cash"`
	TotalCard     int64     `json:"total_card" db:"total_card"`
	TotalExpenses int64     `json:"total_expenses" db:"total_expenses"`
	NetProfit     int64     `json:"net_profit" db:"net_profit"`
	TotalVat      int64     `json:"total_vat" db:"total_vat"`
	OrderCount    int       `json:"order_count" db:"order_count"`
	CancelCount   int       `json:"cancel_count" db:"cancel_count"`
	TotalRevenue  int64     `json:"total_revenue" db:"total_revenue"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// CashDifference is the "kasa farkı": counted cash minus the expected
// net cash. Negative means the drawer is short.
func (s *DailySummary) CashDifference() int64 {
	expectedNet := s.TotalCash - s.TotalExpenses
	if expectedNet < 0 {
		expectedNet = 0
	}
	return s.ActualCash - expectedNet
}

// MonthlyReport aggregates revenue for a calendar month. MonthDate is
// the UTC start of the month.
type MonthlyReport struct {
	ID            string    `json:"id" db:"id"`
	MonthDate     time.Time `json:"month_date" db:"month_date"`
	TotalRevenue  int64     `json:"total_revenue" db:"total_revenue"`
	TotalExpenses int64     `json:"total_expenses" db:"total_expenses"`
	NetProfit     int64     `json:"net_profit" db:"net_profit"`
	OrderCount    int       `json:"order_count" db:"order_count"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// OpenTableInfo identifies a table blocking end-of-day closing.
type OpenTableInfo struct {
	TableID     string `json:"table_id"`
	TableName   string `json:"table_name"`
	OrderID     string `json:"order_id"`
	TotalAmount int64  `json:"total_amount"`
}

// EndOfDayCheckResult is the open-tables precondition check.
type EndOfDayCheckResult struct {
	CanProceed bool            `json:"can_proceed"`
	OpenTables []OpenTableInfo `json:"open_tables"`
}

// ExpectedDailyTotals are the system-side figures shown to the operator
// before cash reconciliation, scoped to the current business day.
// NetExpectedCash is what the drawer should physically hold: cash
// revenue minus cash spent, floored at zero.
type ExpectedDailyTotals struct {
	Revenue         int64 `json:"revenue"`
	Cash            int64 `json:"cash"`
	Card            int64 `json:"card"`
	Expenses        int64 `json:"expenses"`
	NetExpectedCash int64 `json:"net_expected_cash"`
}

// EndOfDayResult is the outcome of a successful end-of-day execution.
type EndOfDayResult struct {
	ZReport        *DailySummary `json:"z_report"`
	BackupPath     string        `json:"backup_path"`
	DeletedBackups int           `json:"deleted_backups"`
	DeletedLogs    int           `json:"deleted_logs"`
	DBHealthy      bool          `json:"db_healthy"`
	VacuumSuccess  bool          `json:"vacuum_success"`
}

// ProductSales ranks a product by quantity sold.
type ProductSales struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

// CategorySales aggregates revenue per category.
type CategorySales struct {
	CategoryName string `json:"category_name"`
	Revenue      int64  `json:"revenue"`
	Quantity     int    `json:"quantity"`
}

// PaymentMethodBreakdown splits revenue by payment method.
type PaymentMethodBreakdown struct {
	Cash int64 `json:"cash"`
	Card int64 `json:"card"`
}

// HourlyActivity is revenue and order count for one hour of the day.
type HourlyActivity struct {
	Hour       string `json:"hour"` // "HH:00"
	Revenue    int64  `json:"revenue"`
	OrderCount int    `json:"order_count"`
}

// DashboardStats is the extended dashboard payload for the current
// business day.
type DashboardStats struct {
	DailyRevenue    int64                  `json:"daily_revenue"`
	TotalOrders     int                    `json:"total_orders"`
	Breakdown       PaymentMethodBreakdown `json:"payment_method_breakdown"`
	TopProducts     []ProductSales         `json:"top_products"`
	BottomProducts  []ProductSales         `json:"bottom_products"`
	CategorySales   []CategorySales        `json:"category_breakdown"`
	DailyExpenses   int64                  `json:"daily_expenses"`
	OpenTables      int                    `json:"open_tables"`
	PendingOrders   int                    `json:"pending_orders"`
	HourlyActivity  []HourlyActivity       `json:"hourly_activity"`
}

// RevenueTrendItem is one day in the revenue trend series.
type RevenueTrendItem struct {
	Date       time.Time `json:"date"`
	Revenue    int64     `json:"revenue"`
	OrderCount int       `json:"order_count"`
}

// ExpenseStats summarizes expenses for the sidebar cards.
type ExpenseStats struct {
	TodayTotal  int64            `json:"today_total"`
	MonthTotal  int64            `json:"month_total"`
	TopCategory *CategoryExpense `json:"top_category,omitempty"`
}

// CategoryExpense is an expense total for one category.
type CategoryExpense struct {
	Name  string `json:"name"`
	Total int64  `json:"total"`
}

// ArchiveDataResult counts the rows removed by the yearly archive pass.
type ArchiveDataResult struct {
	DeletedOrders    int `json:"deleted_orders"`
	DeletedItems     int `json:"deleted_items"`
	DeletedPayments  int `json:"deleted_payments"`
	DeletedExpenses  int `json:"deleted_expenses"`
	DeletedSummaries int `json:"deleted_summaries"`
}
