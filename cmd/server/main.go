package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cafe_pos_backend/internal/database"
	"cafe_pos_backend/internal/router"
	"cafe_pos_backend/internal/services"
	"cafe_pos_backend/pkg/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	utils.InitLogger()
	utils.SetJWTSecret(os.Getenv("ADMIN_JWT_SECRET"))

	dbHost := utils.Getenv("DB_HOST", "localhost")
	dbPort := utils.Getenv("DB_PORT", "5432")
	dbUser := utils.Getenv("DB_USER", "cafe_pos_user")
	dbPassword := utils.Getenv("DB_PASSWORD", "cafe_pos_password")
	dbName := utils.Getenv("DB_NAME", "cafe_pos_db")
	dbSSLMode := utils.Getenv("DB_SSLMODE", "disable")
	dbSchemaPath := utils.Getenv("DB_SCHEMA_PATH", "db_schema.sql")

	if err := database.InitDB(dbHost, dbPort, dbUser, dbPassword, dbName, dbSSLMode, dbSchemaPath); err != nil {
		utils.LogError(err, "Database initialization failed")
		os.Exit(1)
	}

	engine := gin.Default()
	engine.Use(utils.GinLogger())

	// CORS configuration
	corsAllowedOriginsEnv := os.Getenv("CORS_ALLOWED_ORIGINS")
	var allowedOrigins []string
	if corsAllowedOriginsEnv != "" {
		allowedOrigins = strings.Split(corsAllowedOriginsEnv, ",")
	} else {
		allowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	config := cors.DefaultConfig()
	config.AllowOrigins = allowedOrigins
	config.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	config.AllowCredentials = true
	engine.Use(cors.New(config))

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	maintenanceService := router.Setup(engine, database.GetDB())

	scheduler := startScheduler(maintenanceService)

	port := utils.Getenv("PORT", "8080")
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: engine,
	}

	go func() {
		utils.LogInfo("Server starting", map[string]interface{}{"port": port})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			utils.LogError(err, "Failed to start server")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	utils.LogInfo("Shutting down server")
	scheduler.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		utils.LogError(err, "Server forced to shutdown")
	}
}

// startScheduler runs the unattended housekeeping. It is a safety net
// for days when nobody runs the closing procedure: backups still
// happen and old logs still get pruned. The archive pass runs monthly
// and only touches rows older than the retention window.
func startScheduler(ms services.MaintenanceService) *cron.Cron {
	scheduler := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	// Nightly at 04:30, just before the business day boundary.
	scheduler.AddFunc("30 4 * * *", func() {
		if path, err := ms.BackupDatabase(); err != nil {
			utils.LogError(err, "Scheduled backup failed")
		} else {
			utils.LogInfo("Scheduled backup written", map[string]interface{}{"path": path})
		}
		if deleted, err := ms.RotateBackups(); err != nil {
			utils.LogError(err, "Backup rotation failed")
		} else if deleted > 0 {
			utils.LogInfo("Old backups removed", map[string]interface{}{"count": deleted})
		}
		if pruned, err := ms.PruneActivityLogs(); err != nil {
			utils.LogError(err, "Activity log pruning failed")
		} else if pruned > 0 {
			utils.LogInfo("Activity logs pruned", map[string]interface{}{"count": pruned})
		}
	})

	// Monthly archive pass on the 1st at 05:30.
	scheduler.AddFunc("30 5 1 * *", func() {
		result, err := ms.ArchiveOldData()
		if err != nil {
			utils.LogError(err, "Archive pass failed")
			return
		}
		utils.LogInfo("Archive pass finished", map[string]interface{}{
			"orders":    result.DeletedOrders,
			"payments":  result.DeletedPayments,
			"expenses":  result.DeletedExpenses,
			"summaries": result.DeletedSummaries,
		})
	})

	scheduler.Start()
	return scheduler
}
