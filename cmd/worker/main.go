package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/propcortex/propcortex/internal/answer"
	"github.com/propcortex/propcortex/internal/app"
	"github.com/propcortex/propcortex/internal/dispatch"
	"github.com/propcortex/propcortex/internal/ledger"
	"github.com/propcortex/propcortex/jobs"
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

	store, cleanup, err := loadStore(ctx, cfg)
	if err != nil {
		logger.Error("load ledger dataset", slog.Any("error", err))
		os.Exit(1)
	}
	defer cleanup()

	handle := ledger.NewHandle(store)
	machine := dispatch.NewMachine(handle, cfg.FuzzyThreshold, logger)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

	cache := answer.NewCache(redisClient, cfg.AnswerCacheTTL)
	renderer := answer.NewRenderer()

	scanner := jobs.NewIntegrityScanner(handle, logger)
	warmup := jobs.NewAnswerWarmup(handle, machine, renderer, cache, logger)

	integrityTask, err := jobs.NewLedgerIntegrityTask(jobs.IntegrityPayload{})
	if err != nil {
		logger.Error("build integrity task", slog.Any("error", err))
		os.Exit(1)
	}
	warmupTask, err := jobs.NewAnswerWarmupTask(jobs.WarmupPayload{})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskLedgerIntegrity, Handler: scanner.Handle},
			{Type: jobs.TaskAnswerWarmup, Handler: warmup.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 * * * *", Task: integrityTask},
			{Spec: "15 * * * *", Task: warmupTask},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker started")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker shutdown complete")
}

func loadStore(ctx context.Context, cfg *app.Config) (*ledger.Store, func(), error) {
	if cfg.LedgerSource == "postgres" {
		pool, err := pgxpool.New(ctx, cfg.PGDSN)
		if err != nil {
			return nil, func() {}, err
		}
		store, err := ledger.NewPGSource(pool, cfg.LedgerTable).Load(ctx)
		if err != nil {
			pool.Close()
			return nil, func() {}, err
		}
		return store, pool.Close, nil
	}
	store, err := ledger.LoadCSVFile(cfg.DataFile)
	return store, func() {}, err
}
