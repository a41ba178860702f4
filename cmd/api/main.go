package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/evozago/financeiro/internal/config"
	"github.com/evozago/financeiro/internal/database"
	"github.com/evozago/financeiro/internal/handlers"
	"github.com/evozago/financeiro/internal/logger"
	"github.com/evozago/financeiro/internal/middleware"
	"github.com/evozago/financeiro/internal/services"
	"github.com/evozago/financeiro/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Financeiro API
// @version         1.0
// @description     Supplier payables tracking with bank statement and payment receipt reconciliation.

// @host      localhost:8080
// @BasePath  /api/v1

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom binding validators
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	supplierService := services.NewSupplierService(db)
	categoryService := services.NewExpenseCategoryService(db)
	payableService := services.NewPayableService(db)
	reconciliationService := services.NewReconciliationService(db, payableService)
	transactionService := services.NewTransactionService(db, reconciliationService)

	// Initialize handlers
	supplierHandler := handlers.NewSupplierHandler(supplierService)
	categoryHandler := handlers.NewExpenseCategoryHandler(categoryService)
	payableHandler := handlers.NewPayableHandler(payableService)
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	reconciliationHandler := handlers.NewReconciliationHandler(reconciliationService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Supplier routes
	suppliers := v1.Group("/suppliers")
	suppliers.POST("", supplierHandler.CreateSupplier)
	suppliers.GET("", supplierHandler.ListSuppliers)
	suppliers.GET("/:id", supplierHandler.GetSupplier)

	// Expense category routes
	categories := v1.Group("/expense-categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.ListCategories)
	categories.GET("/:id", categoryHandler.GetCategory)

	// Payable routes
	payables := v1.Group("/payables")
	payables.POST("", payableHandler.CreatePayable)
	payables.GET("", payableHandler.ListPayables)
	payables.GET("/dashboard", payableHandler.PayableDashboard)
	payables.GET("/:id", payableHandler.GetPayable)
	payables.PUT("/:id", payableHandler.UpdatePayable)
	payables.DELETE("/:id", payableHandler.DeletePayable)
	payables.POST("/:id/pay", payableHandler.PayPayable)

	// Statement import and receipt routes
	v1.POST("/statements/import", transactionHandler.ImportStatement)
	v1.POST("/receipts", transactionHandler.SubmitReceipt)

	// Transaction routes
	transactions := v1.Group("/transactions")
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)
	transactions.GET("/:id/candidates", reconciliationHandler.ListCandidates)

	// Reconciliation routes
	reconciliations := v1.Group("/reconciliations")
	reconciliations.POST("", reconciliationHandler.ConfirmManual)
	reconciliations.GET("", reconciliationHandler.ListReconciliations)
	reconciliations.GET("/dashboard", reconciliationHandler.ReconciliationDashboard)
	reconciliations.DELETE("/:id", reconciliationHandler.UndoReconciliation)

	log.Infof("Starting financeiro backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
