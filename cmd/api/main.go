package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SergeiKhy/qrlink/internal/config"
	"github.com/SergeiKhy/qrlink/internal/geo"
	"github.com/SergeiKhy/qrlink/internal/handler"
	"github.com/SergeiKhy/qrlink/internal/middleware"
	"github.com/SergeiKhy/qrlink/internal/repository"
	"github.com/SergeiKhy/qrlink/internal/service"
	"github.com/SergeiKhy/qrlink/internal/tracing"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const serviceName = "qr-redirect"

func main() {
	// Загрузка конфига
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	gin.SetMode(gin.ReleaseMode)

	shutdownTracing, err := tracing.Init(context.Background(), cfg.Tracing, serviceName, logger)
	if err != nil {
		logger.Fatal("Failed to init tracing", zap.Error(err))
	}

	// Миграции до открытия пула
	if cfg.DB.Migrate {
		if err := repository.Migrate(cfg.DB); err != nil {
			logger.Fatal("Failed to apply migrations", zap.Error(err))
		}
		logger.Info("Migrations applied")
	}

	// Подключение к БД (postgres)
	db, err := repository.NewPostgresDB(cfg.DB)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL")

	// Подключение к Redis
	redis, err := repository.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redis.Close()
	logger.Info("Connected to Redis")

	// Геолокация
	resolver, geoCloser, err := geo.New(cfg.Geo, redis.Client, logger)
	if err != nil {
		logger.Fatal("Failed to init geo resolver", zap.Error(err))
	}
	defer geoCloser.Close()
	logger.Info("Geo resolver ready", zap.String("provider", cfg.Geo.Provider))

	// Инициализация репозиториев
	linkRepo := repository.NewLinkRepository(db)
	cacheRepo := repository.NewCacheRepository(redis)
	scanRepo := repository.NewScanRepository(db)

	// Инициализация сервисов
	linkService := service.NewLinkService(linkRepo, cacheRepo, service.LinkServiceConfig{
		BaseURL:  cfg.App.BaseURL,
		CacheTTL: cfg.App.LinkCacheTTL,
	}, logger)

	// Запись сканов (Worker Pool)
	recorder := service.NewScanRecorder(scanRepo, service.ScanRecorderConfig{
		Workers:    cfg.Scan.Workers,
		Buffer:     cfg.Scan.Buffer,
		MaxRetries: cfg.Scan.MaxRetries,
	}, logger)
	recorder.Start()

	dispatcher := service.NewDispatcher(linkService, resolver, recorder, service.DispatcherConfig{
		GeoTimeout: cfg.Geo.Timeout,
	}, logger)

	// Инициализация middleware
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.BurstSize,
		CleanupInterval:   time.Minute,
	})
	defer rateLimiter.Stop()

	apiKey := middleware.NewAPIKey(cfg.Auth.APIKeys)
	if apiKey.Enabled() {
		logger.Info("API key authentication enabled", zap.Int("keys_count", len(cfg.Auth.APIKeys)))
	}

	// Настройка роутера
	router := handler.NewRouter(handler.Dependencies{
		Redirect: handler.NewRedirectHandler(dispatcher, logger),
		Links:    handler.NewLinkHandler(linkService, logger),
		Health: handler.NewHealthHandler(map[string]handler.Pinger{
			"postgres": db,
			"redis":    redis,
		}, recorder),
		RateLimiter: rateLimiter,
		APIKey:      apiKey,
		Logger:      logger,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запуск в горутине
	go func() {
		logger.Info("Server starting", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()

	// Сначала перестаём принимать запросы, затем дописываем очередь сканов
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := recorder.Stop(ctx); err != nil {
		logger.Error("Scan queue not fully drained", zap.Error(err))
	}
	if err := shutdownTracing(ctx); err != nil {
		logger.Warn("Failed to flush traces", zap.Error(err))
	}

	logger.Info("Server exited")
}
