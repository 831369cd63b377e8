package router

import (
	"cafe_pos_backend/internal/handlers"
	"cafe_pos_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupTableRoutes sets up the table routes.
func SetupTableRoutes(apiGroup *gin.RouterGroup, tableHandler *handlers.TableHandler) {
	tableRoutes := apiGroup.Group("/tables")
	{
		tableRoutes.POST("", tableHandler.CreateTable)
		tableRoutes.GET("", tableHandler.GetTables)
		tableRoutes.DELETE("/:id", tableHandler.DeleteTable)
		tableRoutes.POST("/transfer", tableHandler.TransferOrder)
		tableRoutes.POST("/merge", tableHandler.MergeTables)
	}
}

// SetupOrderRoutes sets up the order and order item routes. The
// payment previews live here too because they are addressed by order.
func SetupOrderRoutes(apiGroup *gin.RouterGroup, orderHandler *handlers.OrderHandler, paymentHandler *handlers.PaymentHandler) {
	orderRoutes := apiGroup.Group("/orders")
	{
		orderRoutes.GET("", orderHandler.GetOrders)
		orderRoutes.GET("/table/:id", orderHandler.GetOrderByTable)
		orderRoutes.GET("/:id", orderHandler.GetOrderByID)
		orderRoutes.PATCH("/:id/lock", orderHandler.SetOrderLock)
		orderRoutes.DELETE("/:id", orderHandler.CancelOrder)
		orderRoutes.GET("/:id/remaining", paymentHandler.GetRemaining)
		orderRoutes.GET("/:id/split-share", paymentHandler.GetSplitShare)

		orderRoutes.POST("/items", orderHandler.AddOrderItem)
		orderRoutes.PATCH("/items/:itemId", orderHandler.UpdateOrderItem)
		orderRoutes.DELETE("/items/:itemId", orderHandler.DeleteOrderItem)
	}
}

// SetupPaymentRoutes sets up the payment routes.
func SetupPaymentRoutes(apiGroup *gin.RouterGroup, paymentHandler *handlers.PaymentHandler) {
	paymentRoutes := apiGroup.Group("/payments")
	{
		paymentRoutes.POST("", paymentHandler.ProcessPayment)
	}
}

// SetupProductRoutes sets up the menu category and product routes.
func SetupProductRoutes(apiGroup *gin.RouterGroup, productHandler *handlers.ProductHandler) {
	categoryRoutes := apiGroup.Group("/categories")
	{
		categoryRoutes.POST("", productHandler.CreateCategory)
		categoryRoutes.GET("", productHandler.GetCategories)
		categoryRoutes.PUT("/:id", productHandler.UpdateCategory)
		categoryRoutes.DELETE("/:id", productHandler.DeleteCategory)
	}

	productRoutes := apiGroup.Group("/products")
	{
		productRoutes.POST("", productHandler.CreateProduct)
		productRoutes.GET("", productHandler.GetProducts)
		productRoutes.PUT("/:id", productHandler.UpdateProduct)
		productRoutes.PATCH("/:id/favorite", productHandler.ToggleFavorite)
		productRoutes.DELETE("/:id", productHandler.DeleteProduct)
	}
}

// SetupExpenseRoutes sets up the expense routes.
func SetupExpenseRoutes(apiGroup *gin.RouterGroup, expenseHandler *handlers.ExpenseHandler) {
	expenseRoutes := apiGroup.Group("/expenses")
	{
		expenseRoutes.POST("", expenseHandler.CreateExpense)
		expenseRoutes.GET("", expenseHandler.GetExpenses)
		expenseRoutes.GET("/stats", expenseHandler.GetExpenseStats)
		expenseRoutes.PUT("/:id", expenseHandler.UpdateExpense)
		expenseRoutes.DELETE("/:id", expenseHandler.DeleteExpense)
	}
}

// SetupReportRoutes sets up the report routes.
func SetupReportRoutes(apiGroup *gin.RouterGroup, reportHandler *handlers.ReportHandler) {
	reportRoutes := apiGroup.Group("/reports")
	{
		reportRoutes.GET("/dashboard", reportHandler.GetDashboard)
		reportRoutes.GET("/expected-totals", reportHandler.GetExpectedTotals)
		reportRoutes.GET("/daily", reportHandler.GetDailySummaries)
		reportRoutes.GET("/monthly", reportHandler.GetMonthlyReports)
		reportRoutes.GET("/revenue-trend", reportHandler.GetRevenueTrend)
	}
}

// SetupAdminRoutes sets up the admin routes. Status, unlock and the
// PIN rescue path are public so a locked-out operator can get back in;
// everything else requires an unlocked session token.
func SetupAdminRoutes(apiGroup *gin.RouterGroup, adminHandler *handlers.AdminHandler) {
	adminRoutes := apiGroup.Group("/admin")
	{
		adminRoutes.GET("/status", adminHandler.GetStatus)
		adminRoutes.POST("/unlock", adminHandler.Unlock)
		adminRoutes.POST("/reset-pin", adminHandler.ResetPin)

		guarded := adminRoutes.Group("")
		guarded.Use(middleware.AdminAuthMiddleware())
		{
			guarded.PUT("/pin", adminHandler.SetPin)
			guarded.GET("/logs", adminHandler.GetActivityLogs)
		}
	}
}

// SetupMaintenanceRoutes sets up the end-of-day and maintenance
// routes. All of them require an unlocked admin session.
func SetupMaintenanceRoutes(apiGroup *gin.RouterGroup, maintenanceHandler *handlers.MaintenanceHandler) {
	maintenanceRoutes := apiGroup.Group("/maintenance")
	maintenanceRoutes.Use(middleware.AdminAuthMiddleware())
	{
		maintenanceRoutes.GET("/end-of-day", maintenanceHandler.GetEndOfDayState)
		maintenanceRoutes.POST("/end-of-day/events", maintenanceHandler.DispatchEndOfDayEvent)
		maintenanceRoutes.GET("/end-of-day/check", maintenanceHandler.CheckEndOfDay)
		maintenanceRoutes.POST("/backup", maintenanceHandler.BackupDatabase)
		maintenanceRoutes.POST("/archive", maintenanceHandler.ArchiveOldData)
	}
}
