package ratelimit

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/Sternrassler/history-gogo-client/pkg/metrics"
)

// Prometheus metrics for client-side rate limiting.
var (
	rateLimitWaitSeconds = metrics.Factory().NewHistogram(prometheus.HistogramOpts{
		Namespace: metrics.Namespace,
		Name:      "rate_limit_wait_seconds",
		Help:      "Time spent waiting for a rate limit token",
		Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})

	rateLimitThrottlesTotal = metrics.Factory().NewCounter(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Name:      "rate_limit_throttles_total",
		Help:      "Total number of requests that had to wait for a token",
	})
)

// Config configures a Limiter.
type Config struct {
	// RequestsPerSecond is the sustained rate. Zero or negative disables limiting.
	RequestsPerSecond float64

	// Burst is the bucket size. Values below 1 are raised to 1.
	Burst int
}

// DefaultConfig returns the default pacing.
func DefaultConfig() Config {
	return Config{
		RequestsPerSecond: DefaultRequestsPerSecond,
		Burst:             DefaultBurst,
	}
}

// Limiter gates requests through a token bucket.
type Limiter struct {
	limiter  *rate.Limiter
	config   Config
	logger   zerolog.Logger
	waits    atomic.Uint64
	lastWait atomic.Int64
}

// NewLimiter creates a limiter from cfg.
func NewLimiter(cfg Config, logger zerolog.Logger) *Limiter {
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Limiter{
		limiter: rate.NewLimiter(limit, cfg.Burst),
		config:  cfg,
		logger:  logger,
	}
}

// Wait blocks until a token is available or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	if l.limiter.Allow() {
		return nil
	}

	start := time.Now()
	if err := l.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for rate limit token: %w", err)
	}
	waited := time.Since(start)

	l.waits.Add(1)
	l.lastWait.Store(int64(waited))
	rateLimitThrottlesTotal.Inc()
	rateLimitWaitSeconds.Observe(waited.Seconds())

	l.logger.Debug().
		Dur("waited", waited).
		Float64("limit", l.config.RequestsPerSecond).
		Msg("Request throttled by rate limiter")

	return nil
}

// State returns a snapshot of the limiter.
func (l *Limiter) State() State {
	limit := l.config.RequestsPerSecond
	if limit < 0 {
		limit = 0
	}
	return State{
		Limit:           limit,
		Burst:           l.config.Burst,
		TokensAvailable: l.limiter.Tokens(),
		Waits:           l.waits.Load(),
		LastWait:        time.Duration(l.lastWait.Load()),
		CapturedAt:      time.Now(),
	}
}
