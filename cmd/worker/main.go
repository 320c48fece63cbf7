package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/officina-pos/officina/internal/app"
	"github.com/officina-pos/officina/internal/catalog/medicaments"
	"github.com/officina-pos/officina/internal/platform/cache"
	"github.com/officina-pos/officina/internal/platform/db"
	"github.com/officina-pos/officina/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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
	markdownJob := jobs.NewExpiryMarkdownJob(medicamentService, logger)

	markdownTask, err := jobs.NewExpiryMarkdownTask(cfg.ExpiryWindowMonths, cfg.ExpiryMarkdownPercent)
	if err != nil {
		logger.Error("build markdown task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskExpiryMarkdown, Handler: markdownJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.ExpiryMarkdownCron, Task: markdownTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("build worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("starting worker", slog.String("cron", cfg.ExpiryMarkdownCron))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
}
