package cache

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Sternrassler/history-gogo-client/pkg/metrics"
)

var (
	// CacheHits tracks cache hits by record kind
	CacheHits = metrics.Factory().NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Name:      "cache_hits_total",
			Help:      "Total number of response cache hits",
		},
		[]string{"kind"},
	)

	// CacheMisses tracks cache misses by record kind
	CacheMisses = metrics.Factory().NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Name:      "cache_misses_total",
			Help:      "Total number of response cache misses",
		},
		[]string{"kind"},
	)

	// CacheSize tracks bytes written to the cache
	CacheSize = metrics.Factory().NewGauge(
		prometheus.GaugeOpts{
			Namespace: metrics.Namespace,
			Name:      "cache_size_bytes",
			Help:      "Bytes written to the response cache",
		},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = metrics.Factory().NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Name:      "cache_errors_total",
			Help:      "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete", "purge"
	)
)
