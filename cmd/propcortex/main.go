package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/propcortex/propcortex/internal/answer"
	"github.com/propcortex/propcortex/internal/app"
	assisthttp "github.com/propcortex/propcortex/internal/assist/http"
	"github.com/propcortex/propcortex/internal/classify"
	"github.com/propcortex/propcortex/internal/dispatch"
	"github.com/propcortex/propcortex/internal/ledger"
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

	loader, cleanup, err := buildLoader(ctx, cfg)
	if err != nil {
		logger.Error("configure ledger source", slog.Any("error", err))
		os.Exit(1)
	}
	defer cleanup()

	store, err := loader(ctx)
	if err != nil {
		logger.Error("load ledger dataset", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("ledger dataset loaded",
		slog.Int("rows", store.Len()),
		slog.Int("properties", len(store.CanonicalProperties())),
		slog.Int("tenants", len(store.CanonicalTenants())),
		slog.Int("inconsistent_rows", store.Inconsistencies()))

	handle := ledger.NewHandle(store)
	machine := dispatch.NewMachine(handle, cfg.FuzzyThreshold, logger)

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	var classifier assisthttp.Classifier
	if cfg.ClassifierConfigured() {
		classifier = classify.NewRouter(cfg.OpenAIAPIKey, cfg.OpenAIModel, logger)
	} else {
		logger.Warn("no OpenAI key configured, /v1/ask disabled")
	}

	handler := assisthttp.NewHandler(assisthttp.HandlerParams{
		Logger:     logger,
		Machine:    machine,
		Handle:     handle,
		Classifier: classifier,
		Renderer:   answer.NewRenderer(),
		Cache:      answer.NewCache(redisClient, cfg.AnswerCacheTTL),
		Loader:     loader,
	})

	router := app.NewRouter(app.RouterParams{
		Logger:        logger,
		Config:        cfg,
		AssistHandler: handler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      http.TimeoutHandler(router, cfg.AppRequestTimeout, "request timed out"),
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

// buildLoader returns a reusable store loader for the configured row source
// and a cleanup for any held resources.
func buildLoader(ctx context.Context, cfg *app.Config) (assisthttp.Loader, func(), error) {
	if cfg.LedgerSource == "postgres" {
		pool, err := pgxpool.New(ctx, cfg.PGDSN)
		if err != nil {
			return nil, func() {}, err
		}
		source := ledger.NewPGSource(pool, cfg.LedgerTable)
		return source.Load, pool.Close, nil
	}
	path := cfg.DataFile
	return func(context.Context) (*ledger.Store, error) {
		return ledger.LoadCSVFile(path)
	}, func() {}, nil
}
