package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/epeers/portfolio-optimizer/config"
	_ "github.com/epeers/portfolio-optimizer/docs"
	"github.com/epeers/portfolio-optimizer/internal/alphavantage"
	"github.com/epeers/portfolio-optimizer/internal/cache"
	"github.com/epeers/portfolio-optimizer/internal/database"
	"github.com/epeers/portfolio-optimizer/internal/handlers"
	"github.com/epeers/portfolio-optimizer/internal/middleware"
	"github.com/epeers/portfolio-optimizer/internal/quant"
	"github.com/epeers/portfolio-optimizer/internal/repository"
	"github.com/epeers/portfolio-optimizer/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Portfolio Optimizer API
// @version 1.0
// @description Risk-tolerance based reweighting of stock portfolios from historical closing prices.
// @BasePath /
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	configureLogging(cfg.LogLevel, cfg.LogFormat)

	// Create context for initialization
	ctx := context.Background()

	store, closeStore, err := openPriceStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s price store: %v", cfg.PriceStore, err)
	}
	defer closeStore()

	// Initialize AlphaVantage client
	avClient := alphavantage.NewClient(cfg.AVKey, cfg.AVRequestsPerMinute)
	if cfg.AVBaseURL != "" {
		avClient = alphavantage.NewClientWithBaseURL(cfg.AVKey, cfg.AVBaseURL, cfg.AVRequestsPerMinute)
	}

	// Initialize caches
	memCache := cache.NewMemoryCache(5 * time.Minute)

	// Initialize services
	opts := quant.DefaultOptions()
	opts.Samples = cfg.OptimizerSamples
	opts.RiskFreeRate = cfg.RiskFreeRate
	opts.PeriodsPerYear = cfg.PeriodsPerYear

	pricingSvc := services.NewPricingService(memCache, store, avClient)
	optimizationSvc := services.NewOptimizationService(pricingSvc, services.OptimizerDefaults{
		Options: opts,
		Period:  cfg.DefaultPeriod,
	})

	// Initialize handlers
	optimizeHandler := handlers.NewOptimizeHandler(optimizationSvc)
	priceHandler := handlers.NewPriceHandler(pricingSvc, cfg.DefaultPeriod)

	// Setup Gin router
	router := gin.Default()

	// Apply global middleware
	router.Use(middleware.RequestID(), middleware.Metrics())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "price_store": cfg.PriceStore})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.POST("/portfolios/optimize", optimizeHandler.Optimize)
	router.GET("/prices", priceHandler.GetPrices)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Infof("Starting server on port %s (price store: %s)", cfg.Port, cfg.PriceStore)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Give outstanding requests 5 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	fmt.Println("Server exited")
}

func configureLogging(level, format string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("Unknown LOG_LEVEL %q, using info", level)
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
	if format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}

// openPriceStore opens the configured backend. The returned func releases it.
func openPriceStore(ctx context.Context, cfg *config.Config) (repository.PriceStore, func(), error) {
	switch cfg.PriceStore {
	case config.StoreSQLite:
		store, err := repository.OpenSQLitePriceStore(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() { _ = store.Close() }, nil
	case config.StoreMemory:
		log.Warn("Using the in-memory price store; prices are lost on restart")
		return repository.NewMemoryPriceStore(), func() {}, nil
	default:
		db, err := database.New(ctx, cfg.PGURL)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewPostgresPriceStore(db.Pool), db.Close, nil
	}
}
