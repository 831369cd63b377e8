package router

import (
	"database/sql"

	"cafe_pos_backend/internal/endofday"
	"cafe_pos_backend/internal/handlers"
	"cafe_pos_backend/internal/repositories"
	"cafe_pos_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application. It returns the
// maintenance service so the caller can schedule background jobs on it.
func Setup(engine *gin.Engine, db *sql.DB) services.MaintenanceService {
	// Initialize Repositories
	tableRepo := repositories.NewTableRepository(db)
	orderRepo := repositories.NewOrderRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	productRepo := repositories.NewProductRepository(db)
	expenseRepo := repositories.NewExpenseRepository(db)
	reportRepo := repositories.NewReportRepository(db)
	logRepo := repositories.NewActivityLogRepository(db)
	settingsRepo := repositories.NewSettingsRepository(db)

	// Initialize Services
	logService := services.NewActivityLogService(logRepo)
	tableService := services.NewTableService(tableRepo, orderRepo, paymentRepo, logRepo, db)
	orderService := services.NewOrderService(orderRepo, productRepo, paymentRepo, logRepo, db)
	paymentService := services.NewPaymentService(orderRepo, paymentRepo, logRepo, db)
	productService := services.NewProductService(productRepo)
	expenseService := services.NewExpenseService(expenseRepo)
	reportingService := services.NewReportingService(reportRepo, paymentRepo, expenseRepo, orderRepo, logRepo, db)
	adminService := services.NewAdminService(settingsRepo, logService)
	maintenanceService := services.NewMaintenanceService(
		services.DefaultMaintenanceConfig(),
		reportingService,
		orderRepo,
		paymentRepo,
		expenseRepo,
		reportRepo,
		logRepo,
		db,
	)

	// The end-of-day workflow is a single shared state machine so every
	// connected screen sees the same closing progress.
	workflow := endofday.NewWorkflow(maintenanceService, reportingService, maintenanceService)

	// Initialize Handlers
	tableHandler := handlers.NewTableHandler(tableService)
	orderHandler := handlers.NewOrderHandler(orderService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	productHandler := handlers.NewProductHandler(productService)
	expenseHandler := handlers.NewExpenseHandler(expenseService)
	reportHandler := handlers.NewReportHandler(reportingService)
	adminHandler := handlers.NewAdminHandler(adminService, logService)
	maintenanceHandler := handlers.NewMaintenanceHandler(maintenanceService, workflow)

	apiV1 := engine.Group("/api/v1")

	// Floor operations stay open: the terminal is shared hardware and
	// waiters must not be interrupted by a login screen.
	SetupTableRoutes(apiV1, tableHandler)
	SetupOrderRoutes(apiV1, orderHandler, paymentHandler)
	SetupPaymentRoutes(apiV1, paymentHandler)
	SetupProductRoutes(apiV1, productHandler)
	SetupExpenseRoutes(apiV1, expenseHandler)
	SetupReportRoutes(apiV1, reportHandler)
	SetupAdminRoutes(apiV1, adminHandler)
	SetupMaintenanceRoutes(apiV1, maintenanceHandler)

	apiV1.GET("/health", maintenanceHandler.GetHealth)

	return maintenanceService
}
