package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hszk-dev/clipstore/internal/config"
	"github.com/hszk-dev/clipstore/internal/domain/model"
	"github.com/hszk-dev/clipstore/internal/domain/repository"
	"github.com/hszk-dev/clipstore/internal/infrastructure/fetch"
	"github.com/hszk-dev/clipstore/internal/infrastructure/postgres"
	"github.com/hszk-dev/clipstore/internal/infrastructure/queue"
	"github.com/hszk-dev/clipstore/internal/infrastructure/store"
	"github.com/hszk-dev/clipstore/internal/usecase"
)

// protectionRefreshInterval is how often the worker re-derives the
// eviction-exempt set from cart contents. The worker triggers sweeps through
// its own warm-up inserts, so it must track cart changes made via the API.
const protectionRefreshInterval = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	assetStore, err := buildAssetStore(ctx, cfg)
	if err != nil {
		return err
	}
	logger.Info("asset store ready", slog.String("backend", cfg.Cache.Store))

	origin, err := buildOrigin(cfg)
	if err != nil {
		return err
	}
	logger.Info("origin fetcher ready", slog.String("mode", cfg.Origin.Mode))

	pgClient, err := postgres.NewClient(ctx, postgres.DefaultClientConfig(cfg.Database.DSN()))
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer pgClient.Close()
	logger.Info("connected to PostgreSQL")

	queueClient, err := queue.NewClient(ctx, queue.DefaultClientConfig(cfg.RabbitMQ.URL()))
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer queueClient.Close()
	logger.Info("connected to RabbitMQ")

	assetCache := usecase.NewAssetCacheService(assetStore, origin, usecase.AssetCacheServiceConfig{
		Budget: cfg.Cache.BudgetBytes,
	})

	cartRepo := postgres.NewCartRepository(pgClient.Pool())
	refreshProtection(ctx, cartRepo, assetCache, logger)

	go func() {
		ticker := time.NewTicker(protectionRefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				refreshProtection(ctx, cartRepo, assetCache, logger)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting worker, consuming prefetch tasks")
		err := queueClient.ConsumePrefetchTasks(ctx, func(task repository.PrefetchTask) error {
			wg.Add(1)
			defer wg.Done()

			handle := assetCache.Resolve(ctx, task.ClipURL)

			switch handle.Source {
			case model.SourceCache:
				logger.Info("clip already cached", slog.String("clip_url", handle.URL))
			case model.SourceNetwork:
				logger.Info("clip warmed",
					slog.String("clip_url", handle.URL),
					slog.Int64("declared_size", handle.Size),
				)
			default:
				return fmt.Errorf("warm-up did not cache %s (source %s)", task.ClipURL, handle.Source)
			}
			return nil
		})
		if err != nil && ctx.Err() == nil {
			errCh <- fmt.Errorf("consumer error: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down worker", slog.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Worker.ShutdownTimeout)
	defer shutdownCancel()

	// Cancel the main context to stop consuming new messages
	cancel()

	// Wait for in-flight warm-ups to complete (or timeout)
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("all in-flight warm-ups completed")
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timeout exceeded, some warm-ups may not have completed")
	}

	logger.Info("worker stopped")
	return nil
}

// buildAssetStore selects the cache backend. A worker warming an in-memory
// store only benefits its own process; Redis is the useful mode here.
func buildAssetStore(ctx context.Context, cfg *config.Config) (repository.AssetStore, error) {
	switch cfg.Cache.Store {
	case "memory":
		return store.NewMemory(), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		return store.NewRedis(client), nil
	default:
		return nil, fmt.Errorf("unknown cache store backend: %q", cfg.Cache.Store)
	}
}

func buildOrigin(cfg *config.Config) (repository.Origin, error) {
	switch cfg.Origin.Mode {
	case "http":
		return fetch.NewHTTP(fetch.HTTPConfig{
			Timeout:        cfg.Origin.FetchTimeout,
			FailureMemoTTL: cfg.Origin.FailureMemoTTL,
		}), nil
	case "s3":
		return fetch.NewS3(fetch.S3Config{
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			UseSSL:    cfg.S3.UseSSL,
		}), nil
	default:
		return nil, fmt.Errorf("unknown origin mode: %q", cfg.Origin.Mode)
	}
}

// refreshProtection replaces the cache's eviction-exempt set with the clip
// URLs currently carted. On failure the previous set stays in force.
func refreshProtection(ctx context.Context, cartRepo repository.CartRepository, cache usecase.AssetCache, logger *slog.Logger) {
	urls, err := cartRepo.ListClipURLs(ctx)
	if err != nil {
		logger.Warn("failed to refresh protected set", slog.String("error", err.Error()))
		return
	}
	cache.SetProtected(urls)
}
