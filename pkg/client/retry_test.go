package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/history-gogo-client/pkg/apierr"
)

var errConnReset = errors.New("connection reset by peer")

// flakyTransport fails the first failures round trips, then answers with status.
type flakyTransport struct {
	failures int32
	status   int
	calls    atomic.Int32
}

func (f *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	n := f.calls.Add(1)
	if n <= f.failures {
		return nil, errConnReset
	}
	return &http.Response{
		StatusCode: f.status,
		Body:       io.NopCloser(strings.NewReader(`{"code":500,"message":"boom"}`)),
		Header:     make(http.Header),
		Request:    req,
	}, nil
}

func fastRetryConfig(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:       attempts,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()

	if err := cfg.validate(); err != nil {
		t.Fatalf("validate() error = %v", err)
	}
	if cfg.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.MaxAttempts)
	}
	if cfg.BackoffMultiplier != 2.0 {
		t.Errorf("BackoffMultiplier = %v, want 2.0", cfg.BackoffMultiplier)
	}
}

func TestRetryConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  RetryConfig
		wantErr bool
	}{
		{"valid", fastRetryConfig(3), false},
		{"zero attempts", RetryConfig{MaxAttempts: 0, BackoffMultiplier: 2}, true},
		{"max below initial", RetryConfig{MaxAttempts: 2, InitialBackoff: time.Second, MaxBackoff: time.Millisecond, BackoffMultiplier: 2}, true},
		{"shrinking multiplier", RetryConfig{MaxAttempts: 2, BackoffMultiplier: 0.5}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.validate(); (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryTransport_SucceedsAfterTransientFailure(t *testing.T) {
	ft := &flakyTransport{failures: 2, status: http.StatusOK}
	rt := newRetryTransport(ft, fastRetryConfig(3), zerolog.Nop())

	req, _ := http.NewRequest(http.MethodGet, "http://history.test/api/v1/dynasties", nil)
	resp, err := rt.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip() error = %v", err)
	}
	resp.Body.Close()

	if got := ft.calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestRetryTransport_Exhausted(t *testing.T) {
	ft := &flakyTransport{failures: 10, status: http.StatusOK}
	rt := newRetryTransport(ft, fastRetryConfig(3), zerolog.Nop())

	req, _ := http.NewRequest(http.MethodGet, "http://history.test/api/v1/dynasties", nil)
	_, err := rt.RoundTrip(req)

	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("RoundTrip() error = %v, want ErrRetryExhausted", err)
	}
	if !errors.Is(err, errConnReset) {
		t.Errorf("RoundTrip() error = %v, want wrapped cause", err)
	}
	if got := ft.calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestRetryTransport_ServerStatusNotRetried(t *testing.T) {
	ft := &flakyTransport{status: http.StatusInternalServerError}
	rt := newRetryTransport(ft, fastRetryConfig(3), zerolog.Nop())

	req, _ := http.NewRequest(http.MethodGet, "http://history.test/api/v1/dynasties", nil)
	resp, err := rt.RoundTrip(req)
	if err != nil {
		t.Fatalf("RoundTrip() error = %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", resp.StatusCode)
	}
	if got := ft.calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestRetryTransport_PostNotRetried(t *testing.T) {
	ft := &flakyTransport{failures: 1, status: http.StatusOK}
	rt := newRetryTransport(ft, fastRetryConfig(3), zerolog.Nop())

	req, _ := http.NewRequest(http.MethodPost, "http://history.test/api/v1/search", strings.NewReader("{}"))
	if _, err := rt.RoundTrip(req); !errors.Is(err, errConnReset) {
		t.Errorf("RoundTrip() error = %v, want connection reset", err)
	}
	if got := ft.calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestRetryTransport_ContextCancelledDuringBackoff(t *testing.T) {
	ft := &flakyTransport{failures: 10, status: http.StatusOK}
	cfg := RetryConfig{MaxAttempts: 5, InitialBackoff: time.Second, MaxBackoff: time.Second, BackoffMultiplier: 1}
	rt := newRetryTransport(ft, cfg, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, "http://history.test/api/v1/dynasties", nil)

	start := time.Now()
	_, err := rt.RoundTrip(req)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("RoundTrip() error = %v, want DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("RoundTrip() took %v, want prompt return on cancel", elapsed)
	}
}

func TestClient_RetryOptIn(t *testing.T) {
	ft := &flakyTransport{failures: 1, status: http.StatusOK}

	// Body is an error envelope with status 200, so decoding into a struct succeeds.
	c := newTestClient(t, "http://history.test/api/v1", func(cfg *Config) {
		cfg.Transport = ft
		rc := fastRetryConfig(2)
		cfg.Retry = &rc
	})

	var out map[string]any
	if err := c.Get(context.Background(), "/dynasties", nil, &out); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got := ft.calls.Load(); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestClient_NoRetryByDefault(t *testing.T) {
	ft := &flakyTransport{failures: 1, status: http.StatusOK}
	c := newTestClient(t, "http://history.test/api/v1", func(cfg *Config) { cfg.Transport = ft })

	err := c.Get(context.Background(), "/dynasties", nil, nil)
	if !errors.Is(err, apierr.ErrTransport) {
		t.Errorf("Get() error = %v, want TransportFailure", err)
	}
	if got := ft.calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}
