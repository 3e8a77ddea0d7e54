package main

import (
	"fmt"
	"kopeika/internal/config"
	"kopeika/internal/database"
	"kopeika/internal/handlers"
	"kopeika/internal/logger"
	"kopeika/internal/middleware"
	"kopeika/internal/services"
	"kopeika/internal/validator"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "kopeika/internal/docs" // Import swagger docs
)

// @title           Kopeika API
// @version         1.0
// @description     Kopeika is a personal finance tracker that ingests bank CSV exports and reports hierarchical spending totals per calendar month.
// @termsOfService  http://swagger.io/terms/

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

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	monthService := services.NewMonthService(db)
	categoryService := services.NewCategoryService(db)
	mappingService := services.NewTitleMappingService(db)
	transactionService := services.NewTransactionService(db, monthService)
	ingestService := services.NewIngestService(db, monthService, categoryService, mappingService)
	totalsService := services.NewTotalsService(db)

	// Initialize handlers
	categoryHandler := handlers.NewCategoryHandler(categoryService)
	monthHandler := handlers.NewMonthHandler(monthService)
	mappingHandler := handlers.NewTitleMappingHandler(mappingService)
	transactionHandler := handlers.NewTransactionHandler(transactionService, monthService)
	importHandler := handlers.NewImportHandler(ingestService)
	totalsHandler := handlers.NewTotalsHandler(totalsService, monthService)

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

	// Category routes
	categories := v1.Group("/categories")
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.ListCategories)
	categories.GET("/:id", categoryHandler.GetCategoryByID)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	// Month routes
	months := v1.Group("/months")
	months.GET("", monthHandler.ListMonths)
	months.DELETE("/:id", monthHandler.DeleteMonth)

	// Title mapping routes
	mappings := v1.Group("/title-mappings")
	mappings.POST("", mappingHandler.CreateMapping)
	mappings.GET("", mappingHandler.ListMappings)
	mappings.DELETE("/:id", mappingHandler.DeleteMapping)

	// Transaction routes
	transactions := v1.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.GET("/titles", transactionHandler.ListTitles)
	transactions.GET("/copy", transactionHandler.PreviewCopy)
	transactions.POST("/copy", transactionHandler.CopyTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// CSV import routes
	imports := v1.Group("/imports")
	imports.POST("", importHandler.UploadCSV)
	imports.GET("", importHandler.ListImports)

	// Totals routes
	totals := v1.Group("/totals")
	totals.GET("", totalsHandler.GetTotals)
	totals.GET("/running", totalsHandler.GetRunningTotals)

	log.Infof("Starting Kopeika backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
