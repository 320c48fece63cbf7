package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/officina-pos/officina/internal/app"
	"github.com/officina-pos/officina/internal/catalog/devices"
	"github.com/officina-pos/officina/internal/catalog/medicaments"
	"github.com/officina-pos/officina/internal/loyalty"
	"github.com/officina-pos/officina/internal/platform/cache"
	"github.com/officina-pos/officina/internal/platform/db"
	"github.com/officina-pos/officina/internal/pos"
	"github.com/officina-pos/officina/internal/shelf"
	"github.com/officina-pos/officina/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	medicamentRepo := medicaments.NewRepository(pool)
	medicamentService := medicaments.NewService(medicamentRepo, redisClient, cfg.CatalogCacheTTL, logger)
	medicamentHandler := medicaments.NewHandler(logger, medicamentService)

	deviceRepo := devices.NewRepository(pool)
	deviceService := devices.NewService(deviceRepo)
	deviceHandler := devices.NewHandler(logger, deviceService)

	loyaltyRepo := loyalty.NewRepository(pool)
	loyaltyService := loyalty.NewService(loyaltyRepo)
	loyaltyHandler := loyalty.NewHandler(logger, loyaltyService)

	shelfManager := shelf.NewManager()
	shelfHandler := shelf.NewHandler(logger, shelfManager, medicamentService)

	posRepo := pos.NewRepository(pool)
	posService := pos.NewService(posRepo, logger)
	posHandler := pos.NewHandler(logger, posService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsClient := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(jobs.HandlerConfig{
		Inspector:    inspector,
		Client:       jobsClient,
		WindowMonths: cfg.ExpiryWindowMonths,
		Percent:      cfg.ExpiryMarkdownPercent,
		Logger:       logger,
	})

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		MedicamentHandler: medicamentHandler,
		DeviceHandler:     deviceHandler,
		LoyaltyHandler:    loyaltyHandler,
		ShelfHandler:      shelfHandler,
		POSHandler:        posHandler,
		JobsHandler:       jobsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
