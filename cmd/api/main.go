package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/hszk-dev/clipstore/internal/api/handler"
	"github.com/hszk-dev/clipstore/internal/api/middleware"
	"github.com/hszk-dev/clipstore/internal/config"
	"github.com/hszk-dev/clipstore/internal/domain/repository"
	"github.com/hszk-dev/clipstore/internal/infrastructure/fetch"
	"github.com/hszk-dev/clipstore/internal/infrastructure/postgres"
	"github.com/hszk-dev/clipstore/internal/infrastructure/queue"
	"github.com/hszk-dev/clipstore/internal/infrastructure/store"
	"github.com/hszk-dev/clipstore/internal/usecase"
)

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

	readiness := map[string]handler.PingFunc{}

	assetStore, err := buildAssetStore(ctx, cfg, readiness)
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
	readiness["postgres"] = pgClient.Ping
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
	cartSvc := usecase.NewCartService(cartRepo, queueClient, assetCache)

	seedProtectedSet(ctx, cartRepo, assetCache, logger)

	r := setupRouter(logger, assetCache, cartSvc, readiness)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("shutting down server", slog.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// buildAssetStore selects the cache backend. The in-memory store is for
// single-replica deployments and local development; Redis lets replicas
// share one bounded cache.
func buildAssetStore(ctx context.Context, cfg *config.Config, readiness map[string]handler.PingFunc) (repository.AssetStore, error) {
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
		readiness["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
		return store.NewRedis(client), nil
	default:
		return nil, fmt.Errorf("unknown cache store backend: %q", cfg.Cache.Store)
	}
}

// buildOrigin selects the origin fetcher. Plain HTTPS suits public buckets;
// the S3 mode signs requests with application-key credentials for private
// ones.
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

// seedProtectedSet derives the initial eviction-exempt set from clips
// already carted before this process started. Failure leaves the set empty;
// the first cart change repairs it.
func seedProtectedSet(ctx context.Context, cartRepo repository.CartRepository, cache usecase.AssetCache, logger *slog.Logger) {
	urls, err := cartRepo.ListClipURLs(ctx)
	if err != nil {
		logger.Warn("failed to seed protected set from carts", slog.String("error", err.Error()))
		return
	}
	cache.SetProtected(urls)
	logger.Info("seeded protected set", slog.Int("urls", len(urls)))
}

func setupRouter(
	logger *slog.Logger,
	assetCache usecase.AssetCache,
	cartSvc usecase.CartService,
	readiness map[string]handler.PingFunc,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	r.Get("/health", handler.Health)
	r.Get("/ready", handler.Ready(readiness))
	r.Handle("/metrics", promhttp.Handler())

	assetHandler := handler.NewAssetHandler(assetCache)
	cartHandler := handler.NewCartHandler(cartSvc)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/assets/resolve", assetHandler.Resolve)
		r.Put("/cache/protected", assetHandler.SetProtected)

		r.Post("/cart/items", cartHandler.Add)
		r.Delete("/cart/items/{id}", cartHandler.Remove)
		r.Get("/cart/items", cartHandler.List)
	})

	return r
}
