package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	apperp "github.com/markethub/backend/internal/application/erp"
	"github.com/markethub/backend/internal/infrastructure/cache"
	"github.com/markethub/backend/internal/infrastructure/config"
	"github.com/markethub/backend/internal/infrastructure/erp/ecount"
	"github.com/markethub/backend/internal/infrastructure/logger"
	"github.com/markethub/backend/internal/infrastructure/persistence"
	"github.com/markethub/backend/internal/interfaces/http/handler"
	"github.com/markethub/backend/internal/interfaces/http/middleware"
	"github.com/markethub/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting MarketHub Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection
	gormLogLevel := gormlogger.Warn
	if cfg.Log.Level == "debug" {
		gormLogLevel = gormlogger.Info
	}
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogLevel)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	if err := db.Migrate(); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database connected and migrated")

	// Counts cache is best effort; the service falls back to counting in
	// the database when Redis is unavailable.
	var countsCache apperp.CountsCache
	redisCache, err := cache.NewRedisCountsCache(cache.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, cfg.ECount.CountsCacheTTL)
	if err != nil {
		log.Warn("Redis unavailable, document counts will not be cached", zap.Error(err))
	} else {
		countsCache = redisCache
		defer func() {
			_ = redisCache.Close()
		}()
	}

	// Initialize repositories
	documentRepo := persistence.NewGormDocumentRepository(db.DB)
	templateRepo := persistence.NewGormTemplateRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	connectionRepo := persistence.NewGormConnectionRepository(db.DB)

	// ERP sender; per-tenant credentials come from the connection
	// repository at send time.
	sender := ecount.NewAdapter(ecount.Options{
		ZoneURL:       cfg.ECount.ZoneURL,
		APIBaseFormat: cfg.ECount.APIBaseFormat,
		Timeout:       cfg.ECount.Timeout,
	}, connectionRepo, log)

	// Initialize application services
	documentService := apperp.NewDocumentService(documentRepo, templateRepo, orderRepo, sender, countsCache, log)
	templateService := apperp.NewTemplateService(templateRepo, log)

	// Setup HTTP engine
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
		log.Fatal("Failed to set trusted proxies", zap.Error(err))
	}

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(log),
		middleware.CORSWithConfig(corsConfig),
	)

	engine.GET("/health", healthHandler(db))

	// Register routes
	r := router.NewRouter(engine)
	r.Register(handler.NewErpDocumentHandler(documentService)).
		Register(handler.NewErpTemplateHandler(templateService))
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
