package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/diabetes-triage/backend/internal/api/handlers"
	"github.com/diabetes-triage/backend/internal/cache/redis"
	"github.com/diabetes-triage/backend/internal/metrics"
	"github.com/diabetes-triage/backend/internal/middleware/ratelimit"
	"github.com/diabetes-triage/backend/internal/middleware/security"
	"github.com/diabetes-triage/backend/internal/middleware/validation"
	"github.com/diabetes-triage/backend/internal/storage/sqlite"
	"github.com/diabetes-triage/backend/internal/triage"
	"github.com/diabetes-triage/backend/pkg/config"
	appLogger "github.com/diabetes-triage/backend/pkg/logger"
	"github.com/diabetes-triage/backend/pkg/retry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Diabetes Triage API Server")

	metrics.Init()

	opts := triage.Options{
		ModelPath:    cfg.Model.Path,
		MetadataPath: cfg.Model.MetadataPath,
		FallbackStub: cfg.Model.FallbackStub,
		CacheTTL:     time.Duration(cfg.Cache.TTLSec) * time.Second,
	}

	var historyClient *sqlite.Client
	if cfg.History.Enabled {
		historyClient, err = sqlite.NewClient(cfg.History.Path)
		if err != nil {
			appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
		}
		defer historyClient.Close()

		if err := historyClient.InitSchema(); err != nil {
			appLogger.Fatal("Failed to initialize schema", zap.Error(err))
		}
		opts.History = historyClient
	}

	if cfg.Cache.Enabled {
		var cacheClient *redis.Client
		retryCfg := retry.DefaultConfig()
		retryCfg.Logger = appLogger.Log
		err = retry.Do(context.Background(), retryCfg, func() error {
			var connErr error
			cacheClient, connErr = redis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
			return connErr
		})
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer cacheClient.Close()
		opts.Cache = cacheClient
	}

	svc := triage.NewService(opts)
	if !svc.ModelLoaded() {
		appLogger.Warn("No model artifact available, prediction endpoints are degraded",
			zap.String("model_path", cfg.Model.Path),
		)
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))
	app.Use(validation.Middleware(validation.Config{}))

	if cfg.RateLimit.Enabled {
		limiter := ratelimit.New(ratelimit.Config{
			MaxRequestsPerMinute: cfg.RateLimit.MaxRequestsPerMinute,
			Logger:               appLogger.Log,
		})
		defer limiter.Stop()
		app.Use(limiter.Middleware())
	}

	healthHandler := handlers.NewHealthHandler(svc)
	predictHandler := handlers.NewPredictHandler(svc, historyReader(historyClient))

	app.Get("/health", healthHandler.HandleHealth)
	app.Post("/predict", predictHandler.HandlePredict)
	app.Post("/predict/batch", predictHandler.HandleBatchPredict)
	app.Get("/predictions", predictHandler.HandleHistory)
	app.Get("/predictions/stats", predictHandler.HandleStats)
	app.Get("/metrics", metrics.MetricsHandler())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}

// historyReader keeps a disabled store as a true nil interface instead of a
// typed nil *sqlite.Client.
func historyReader(c *sqlite.Client) handlers.HistoryReader {
	if c == nil {
		return nil
	}
	return c
}
