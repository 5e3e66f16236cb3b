// Package metrics provides Prometheus metrics for observability.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "clipstore"

var (
	// CacheOperationsTotal tracks asset cache lookups and writes.
	// Labels:
	//   - operation: get, put
	//   - status: hit, miss, success, error
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_operations_total",
			Help:      "Total number of asset cache operations",
		},
		[]string{"operation", "status"},
	)

	// OriginFetchesTotal tracks origin fetches by outcome.
	// Labels:
	//   - status: success, not_found, error
	OriginFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "origin_fetches_total",
			Help:      "Total number of origin fetches",
		},
		[]string{"status"},
	)

	// EvictionsTotal counts entries removed by budget sweeps.
	EvictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evictions_total",
			Help:      "Total number of entries evicted by budget sweeps",
		},
	)

	// CacheBytes reports the total declared bytes stored after the most
	// recent sweep.
	CacheBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_bytes",
			Help:      "Declared bytes currently stored in the asset cache",
		},
	)

	// SingleflightRequestsTotal tracks miss-coalescing behavior.
	// Labels:
	//   - result: initiated (new fetch), shared (reused in-flight result)
	SingleflightRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "singleflight_requests_total",
			Help:      "Total number of singleflight requests",
		},
		[]string{"result"},
	)
)

// Cache operation status constants.
const (
	CacheStatusHit     = "hit"
	CacheStatusMiss    = "miss"
	CacheStatusSuccess = "success"
	CacheStatusError   = "error"
)

// Cache operation type constants.
const (
	CacheOpGet = "get"
	CacheOpPut = "put"
)

// Origin fetch status constants.
const (
	FetchStatusSuccess  = "success"
	FetchStatusNotFound = "not_found"
	FetchStatusError    = "error"
)

// Singleflight result constants.
const (
	SingleflightInitiated = "initiated"
	SingleflightShared    = "shared"
)
