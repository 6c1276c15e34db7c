// Package metrics holds the Prometheus registerer shared by the history client.
// Metrics are defined in the packages that record them (client, ratelimit,
// cache, pagination, search) and registered through Factory, so a host
// application that wants them on a private registry swaps Registry before
// importing those packages' constructors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric name.
const Namespace = "history"

// Registry is the registerer used by Factory.
var Registry prometheus.Registerer = prometheus.DefaultRegisterer

// Factory returns a promauto factory bound to Registry.
func Factory() promauto.Factory {
	return promauto.With(Registry)
}

// Metrics Documentation
//
// Transport (pkg/client):
//   - history_requests_total{endpoint, status} (Counter): requests by endpoint and HTTP status
//   - history_request_duration_seconds{endpoint} (Histogram): request latency
//   - history_errors_total{kind} (Counter): classified failures (transport, decode, server, ...)
//   - history_retries_total (Counter): opt-in retry attempts
//   - history_retry_backoff_seconds (Histogram): opt-in retry backoff
//   - history_retry_exhausted_total (Counter): requests that used every retry attempt
//
// Rate limiting (pkg/ratelimit):
//   - history_rate_limit_wait_seconds (Histogram): time spent waiting for a token
//   - history_rate_limit_throttles_total (Counter): requests that had to wait
//
// Cache (pkg/cache):
//   - history_cache_hits_total{kind} (Counter)
//   - history_cache_misses_total{kind} (Counter)
//   - history_cache_errors_total{operation} (Counter)
//
// Lists and search (pkg/pagination, pkg/search):
//   - history_page_loads_total{kind, outcome} (Counter): outcome is ok, empty, error or stale
//   - history_search_branches_total{branch, outcome} (Counter)
//
// Example Prometheus Queries:
//
//   # Decode failures (server contract drift)
//   rate(history_errors_total{kind="decode"}[5m])
//
//   # P95 request latency per endpoint
//   histogram_quantile(0.95, sum by (le, endpoint) (rate(history_request_duration_seconds_bucket[5m])))
//
//   # Cache hit rate
//   sum(rate(history_cache_hits_total[5m])) /
//   (sum(rate(history_cache_hits_total[5m])) + sum(rate(history_cache_misses_total[5m])))
