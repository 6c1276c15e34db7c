package client

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/history-gogo-client/pkg/metrics"
)

// Prometheus metrics for retry operations.
var (
	retriesTotal = metrics.Factory().NewCounter(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Name:      "retries_total",
		Help:      "Total number of transport retry attempts",
	})

	retryBackoffSeconds = metrics.Factory().NewHistogram(prometheus.HistogramOpts{
		Namespace: metrics.Namespace,
		Name:      "retry_backoff_seconds",
		Help:      "Backoff duration before a transport retry",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	retryExhaustedTotal = metrics.Factory().NewCounter(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Name:      "retry_exhausted_total",
		Help:      "Total number of requests that used every retry attempt",
	})
)

// ErrRetryExhausted is wrapped into the last transport error when all retry
// attempts fail.
var ErrRetryExhausted = errors.New("retry attempts exhausted")

// RetryConfig holds the configuration for the opt-in retry policy.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts (including the initial request).
	MaxAttempts int

	// InitialBackoff is the initial backoff duration.
	InitialBackoff time.Duration

	// MaxBackoff is the maximum backoff duration.
	MaxBackoff time.Duration

	// BackoffMultiplier is the multiplier for exponential backoff.
	BackoffMultiplier float64
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    500 * time.Millisecond,
		MaxBackoff:        5 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

func (rc RetryConfig) validate() error {
	if rc.MaxAttempts < 1 {
		return fmt.Errorf("retry max_attempts must be >= 1 (got %d)", rc.MaxAttempts)
	}
	if rc.InitialBackoff < 0 || rc.MaxBackoff < rc.InitialBackoff {
		return fmt.Errorf("retry backoff must satisfy 0 <= initial <= max (got %s, %s)",
			rc.InitialBackoff, rc.MaxBackoff)
	}
	if rc.BackoffMultiplier < 1 {
		return fmt.Errorf("retry backoff_multiplier must be >= 1 (got %g)", rc.BackoffMultiplier)
	}
	return nil
}

// retryTransport retries idempotent requests that failed before a response
// arrived. Any response, whatever its status, is returned unchanged.
type retryTransport struct {
	next   http.RoundTripper
	config RetryConfig
	logger zerolog.Logger
}

func newRetryTransport(next http.RoundTripper, cfg RetryConfig, logger zerolog.Logger) *retryTransport {
	return &retryTransport{next: next, config: cfg, logger: logger}
}

// RoundTrip implements http.RoundTripper.
func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !isIdempotent(req.Method) || req.Body != nil && req.Body != http.NoBody {
		return t.next.RoundTrip(req)
	}

	ctx := req.Context()
	backoff := t.config.InitialBackoff

	var lastErr error
	for attempt := 1; attempt <= t.config.MaxAttempts; attempt++ {
		resp, err := t.next.RoundTrip(req)
		if err == nil {
			if attempt > 1 {
				t.logger.Info().
					Int("attempt", attempt).
					Str("path", req.URL.Path).
					Msg("Request succeeded after retry")
			}
			return resp, nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt >= t.config.MaxAttempts {
			break
		}

		retriesTotal.Inc()

		// ±20% jitter
		jitter := time.Duration(float64(backoff) * (0.8 + rand.Float64()*0.4))
		retryBackoffSeconds.Observe(jitter.Seconds())

		t.logger.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("backoff", jitter).
			Str("path", req.URL.Path).
			Msg("Retrying request after transport failure")

		if err := sleepContext(ctx, jitter); err != nil {
			return nil, err
		}

		backoff = time.Duration(float64(backoff) * t.config.BackoffMultiplier)
		if backoff > t.config.MaxBackoff {
			backoff = t.config.MaxBackoff
		}
	}

	if ctx.Err() != nil {
		return nil, lastErr
	}

	retryExhaustedTotal.Inc()
	t.logger.Warn().
		Int("max_attempts", t.config.MaxAttempts).
		Str("path", req.URL.Path).
		Msg("Retry attempts exhausted")

	return nil, fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, t.config.MaxAttempts, lastErr)
}

func isIdempotent(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
