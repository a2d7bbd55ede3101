package main

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "fuelrecon/docs"
	"fuelrecon/internal/aggregate"
	"fuelrecon/internal/calculator"
	"fuelrecon/internal/config"
	"fuelrecon/internal/handler"
	"fuelrecon/internal/metrics"
	"fuelrecon/internal/middleware"
	"fuelrecon/internal/notify"
	"fuelrecon/internal/repository"
	"fuelrecon/internal/service"
	"fuelrecon/internal/station"
	"fuelrecon/pkg/logger"
)

// @title Fuel Station Reconciliation API
// @version 1.0
// @description Daily reconciliation of system-calculated sales against attendant cash reports

// @contact.name API Support

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Init(cfg.App.LogLevel)
	logger.GetLogger().Info("Starting Fuel Station Reconciliation Service")

	// Connect to database
	db, err := connectDB(cfg.Database)
	if err != nil {
		logger.GetLogger().WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	logger.GetLogger().Info("Database connection established")

	m := metrics.New()

	// Repositories and upstream adapters
	reconRepo := repository.NewReconciliationRepository(db)
	stations := station.NewPostgresDirectory(db)
	reader := aggregate.NewBreakerReader(aggregate.NewPostgresReader(db))

	calc := calculator.New(calculator.Thresholds{
		OKBelow:    cfg.Recon.ToleranceOK,
		CriticalAt: cfg.Recon.ToleranceCritical,
	})

	var notifier notify.Notifier = notify.NewLogNotifier()
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaNotifier := notify.NewKafkaNotifier(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafkaNotifier.Close()
		notifier = kafkaNotifier
		logger.GetLogger().WithField("topic", cfg.Kafka.Topic).Info("Publishing day-closed events to Kafka")
	}

	// Initialize service
	reconService := service.NewReconciliationService(reconRepo, reader, stations, calc, notifier, m, service.Options{
		WindowDays:           cfg.Recon.WindowDays,
		DashboardConcurrency: cfg.Recon.DashboardConcurrency,
	})

	// Initialize handlers
	reconHandler := handler.NewReconciliationHandler(reconService)

	// Setup router
	router := setupRouter(reconHandler, m)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.GetLogger().WithField("address", addr).Info("Server starting")

	if err := router.Run(addr); err != nil {
		logger.GetLogger().WithError(err).Fatal("Failed to start server")
	}
}

func connectDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func setupRouter(reconHandler *handler.ReconciliationHandler, m *metrics.Metrics) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())
	router.Use(m.Middleware())
	router.Use(gin.Recovery())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	// Prometheus scrape endpoint
	router.GET("/metrics", gin.WrapH(m.Handler()))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		reconciliation := v1.Group("/reconciliation")
		{
			reconciliation.GET("/summary", reconHandler.GetSummary)
			reconciliation.POST("/close", reconHandler.CloseDay)
			reconciliation.GET("/dashboard", reconHandler.GetDashboard)
			reconciliation.POST("/cash-reports", reconHandler.SaveCashReport)
			reconciliation.GET("/records", reconHandler.ListRecords)
			reconciliation.GET("/analytics", reconHandler.GetAnalytics)
			reconciliation.GET("/open", reconHandler.ListOpenDays)
		}
	}

	return router
}
