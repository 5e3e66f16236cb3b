package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/hszk-dev/clipstore/internal/asseturl"
	"github.com/hszk-dev/clipstore/internal/domain/model"
	"github.com/hszk-dev/clipstore/internal/domain/repository"
	"github.com/hszk-dev/clipstore/internal/infrastructure/metrics"
)

// AssetCache defines the consumer-facing surface of the bounded asset cache.
type AssetCache interface {
	// Resolve returns a handle for the clip at rawURL: cached bytes on a
	// hit, freshly fetched bytes on a miss, or a direct reference to the
	// canonical URL when fetching or storing fails. It never returns an
	// error; degraded outcomes are visible in Handle.Source.
	Resolve(ctx context.Context, rawURL string) model.Handle

	// SetProtected replaces the entire set of eviction-exempt URLs.
	// Not additive; synchronous; no I/O.
	SetProtected(urls []string)
}

// AssetCacheServiceConfig holds configuration for the asset cache service.
type AssetCacheServiceConfig struct {
	// Budget is the byte ceiling total declared sizes must not exceed
	// after a sweep, protected entries aside.
	Budget int64
}

// DefaultAssetCacheServiceConfig returns the default configuration.
func DefaultAssetCacheServiceConfig() AssetCacheServiceConfig {
	return AssetCacheServiceConfig{
		Budget: 400 << 20, // 400 MiB
	}
}

// assetCacheService implements AssetCache over an AssetStore and an Origin.
//
// Policy: the cache only ever improves on the no-cache baseline. Every
// failure on the cached path degrades to direct-URL streaming and is logged,
// never surfaced. Protected entries (cart contents) are exempt from
// eviction even when that leaves the budget exceeded; not losing a carted
// clip outranks the size guarantee.
type assetCacheService struct {
	store  repository.AssetStore
	origin repository.Origin

	sfGroup singleflight.Group
	budget  int64

	mu        sync.RWMutex
	protected map[string]struct{}

	// afterInsert runs after each successful store write. Defaults to a
	// detached sweep; tests swap in a synchronous call.
	afterInsert func()
}

// NewAssetCacheService creates the application's asset cache. One instance
// owns the store for the process lifetime; construct it in the composition
// root rather than sharing hidden globals.
func NewAssetCacheService(
	store repository.AssetStore,
	origin repository.Origin,
	cfg AssetCacheServiceConfig,
) AssetCache {
	s := &assetCacheService{
		store:     store,
		origin:    origin,
		budget:    cfg.Budget,
		protected: make(map[string]struct{}),
	}
	s.afterInsert = s.scheduleSweep
	return s
}

// fetchResult carries a singleflight outcome to every coalesced caller.
type fetchResult struct {
	data []byte
	size int64
}

func (s *assetCacheService) Resolve(ctx context.Context, rawURL string) model.Handle {
	if rawURL == "" {
		return model.Handle{Source: model.SourceEmpty}
	}

	key := asseturl.Normalize(rawURL)

	stored, err := s.store.Get(ctx, key)
	if err != nil {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusError).Inc()
		slog.Warn("asset store get failed, degrading to direct streaming",
			"url", key,
			"error", err,
		)
		return model.Handle{URL: key, Source: model.SourceDirect}
	}

	if stored != nil {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusHit).Inc()
		return model.Handle{
			URL:    key,
			Data:   stored.Data,
			Size:   stored.DeclaredSize,
			Source: model.SourceCache,
		}
	}
	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusMiss).Inc()

	// Coalesce concurrent misses for the same canonical URL into one origin
	// fetch; every waiter shares the payload.
	result, err, shared := s.sfGroup.Do(key, func() (any, error) {
		return s.fetchAndStore(ctx, key)
	})
	if shared {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightShared).Inc()
	} else {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightInitiated).Inc()
	}

	if err != nil {
		if errors.Is(err, repository.ErrObjectNotFound) {
			metrics.OriginFetchesTotal.WithLabelValues(metrics.FetchStatusNotFound).Inc()
		} else {
			metrics.OriginFetchesTotal.WithLabelValues(metrics.FetchStatusError).Inc()
		}
		slog.Warn("origin fetch failed, degrading to direct streaming",
			"url", key,
			"error", err,
		)
		return model.Handle{URL: key, Source: model.SourceDirect}
	}

	metrics.OriginFetchesTotal.WithLabelValues(metrics.FetchStatusSuccess).Inc()
	res := result.(fetchResult)
	return model.Handle{
		URL:    key,
		Data:   res.data,
		Size:   res.size,
		Source: model.SourceNetwork,
	}
}

// fetchAndStore pulls the payload from the origin and inserts it. A failed
// insert is logged and the bytes are still served; the entry is simply not
// cached this time.
func (s *assetCacheService) fetchAndStore(ctx context.Context, key string) (fetchResult, error) {
	data, size, err := s.origin.Fetch(ctx, key)
	if err != nil {
		return fetchResult{}, err
	}

	if err := s.store.Put(ctx, key, data, size); err != nil {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpPut, metrics.CacheStatusError).Inc()
		slog.Warn("asset store put failed, serving fetched bytes uncached",
			"url", key,
			"error", err,
		)
	} else {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpPut, metrics.CacheStatusSuccess).Inc()
		s.afterInsert()
	}

	return fetchResult{data: data, size: size}, nil
}

func (s *assetCacheService) SetProtected(urls []string) {
	next := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		if u == "" {
			continue
		}
		next[asseturl.Normalize(u)] = struct{}{}
	}

	s.mu.Lock()
	s.protected = next
	s.mu.Unlock()
}

// scheduleSweep runs a budget sweep detached from the inserting call. The
// caller's handle returns without waiting; a fresh context keeps caller
// cancellation from aborting bookkeeping.
func (s *assetCacheService) scheduleSweep() {
	go func() {
		if err := s.sweep(context.Background()); err != nil {
			slog.Warn("cache sweep failed", "error", err)
		}
	}()
}

// sweep re-enumerates the whole store and deletes the oldest unprotected
// entries until the total declared size fits the budget or only protected
// entries remain. Re-enumerating each pass makes concurrent sweeps
// convergent rather than destructive: deleting an already-absent key is a
// no-op.
func (s *assetCacheService) sweep(ctx context.Context) error {
	entries, err := s.store.Entries(ctx)
	if err != nil {
		return fmt.Errorf("enumerate cache entries: %w", err)
	}

	var total int64
	for _, e := range entries {
		total += e.DeclaredSize
	}
	if total <= s.budget {
		metrics.CacheBytes.Set(float64(total))
		return nil
	}

	protected := s.protectedSnapshot()
	for _, e := range entries {
		if total <= s.budget {
			break
		}
		if _, ok := protected[e.Key]; ok {
			continue
		}
		if err := s.store.Delete(ctx, e.Key); err != nil {
			slog.Warn("failed to evict cache entry",
				"url", e.Key,
				"error", err,
			)
			continue
		}
		total -= e.DeclaredSize
		metrics.EvictionsTotal.Inc()
		slog.Info("evicted cache entry",
			"url", e.Key,
			"declared_size", e.DeclaredSize,
		)
	}

	// Total may still exceed the budget here when everything left is
	// protected. That is the intended outcome, not a failure.
	metrics.CacheBytes.Set(float64(total))
	return nil
}

// protectedSnapshot copies the protected set so an in-flight sweep works
// against a point-in-time view while SetProtected stays non-blocking.
func (s *assetCacheService) protectedSnapshot() map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make(map[string]struct{}, len(s.protected))
	for k := range s.protected {
		snapshot[k] = struct{}{}
	}
	return snapshot
}
