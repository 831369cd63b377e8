package models

// OrderFilters defines the available filters for querying order history.
// Used by both the service and repository layers.
type OrderFilters struct {
	TableID  *string `form:"table_id"`
	Status   *string `form:"status"`
	Date     *string `form:"date"` // Expected format YYYY-MM-DD
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}

// ExpenseFilters defines the available filters for querying expenses.
type ExpenseFilters struct {
	Search    *string `form:"search"`
	Category  *string `form:"category"`
	StartDate *string `form:"start_date"` // YYYY-MM-DD
	EndDate   *string `form:"end_date"`   // YYYY-MM-DD
	Limit     int     `form:"limit"`
	Offset    int     `form:"offset"`
}

// LogFilters defines pagination for the activity log listing.
type LogFilters struct {
	Action   *string `form:"action"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}
