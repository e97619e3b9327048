package main

import (
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"flea-scout/config"
	"flea-scout/handlers"
	"flea-scout/routes"
	"flea-scout/scraper/ebay"
	"flea-scout/services"
	"flea-scout/storage"
	"flea-scout/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()

	logger.Info("=== Flea Scout starting ===")
	logger.Info("Config — port: %s | concurrency: %d | rate: %dms | scout timeout: %ds | limit each: %d",
		cfg.Port, cfg.MaxConcurrency, cfg.RateLimitMs, cfg.ScoutTimeoutSec, cfg.LimitEach)

	var store storage.Store
	connect := &utils.RetryConfig{
		MaxAttempts: cfg.MaxRetries,
		BaseDelay:   2 * time.Second,
		Logger:      logger,
	}
	err := connect.Do("postgres-connect", func() error {
		var err error
		store, err = storage.NewPostgresStore(cfg.DSN())
		return err
	})
	if err != nil {
		logger.Error("Failed to connect to PostgreSQL: %v", err)
		logger.Error("Make sure Docker is running: docker compose up -d")
		os.Exit(1)
	}
	defer store.Close()

	fetcher, err := ebay.NewChromeFetcher(cfg.ChromeBin)
	if err != nil {
		logger.Error("Failed to start headless Chrome: %v", err)
		os.Exit(1)
	}
	defer fetcher.Close()

	scout := ebay.NewScout(fetcher, logger, ebay.Options{
		SessionTimeout: time.Duration(cfg.ScoutTimeoutSec) * time.Second,
		LimitEach:      cfg.LimitEach,
		MaxConcurrency: cfg.MaxConcurrency,
		RateLimitMs:    cfg.RateLimitMs,
	})

	analyzer := services.NewAnalyzer(scout, logger, cfg.FeesPct, cfg.TargetROI)
	limits := services.NewLimitService(store, logger)
	emailer := services.NewEmailer(cfg.ResendAPIKey, cfg.FromEmail, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           86400,
	}))

	router.Use(requestLogger(logger))

	api := router.Group("/api")
	{
		routes.SetupAnalyzeRoutes(api, &handlers.AnalyzeHandler{
			Analyzer: analyzer,
			Limits:   limits,
			Logger:   logger,
		})
		routes.SetupLicenseRoutes(api, &handlers.LicenseHandler{
			Store:         store,
			Emailer:       emailer,
			Logger:        logger,
			WebhookSecret: cfg.StripeWebhookSecret,
			ProductName:   cfg.ProductName,
		})
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	logger.Info("Server listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed: %v", err)
		os.Exit(1)
	}
}

// requestLogger tags every request with an id and logs method, path, status
// and duration.
func requestLogger(logger *utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := uuid.NewString()
		c.Set("request_id", reqID)
		c.Header("X-Request-ID", reqID)

		start := time.Now()
		c.Next()

		logger.Info("[api] %s %s %s — %d (%v)",
			reqID[:8], c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
