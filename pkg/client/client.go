// Package client provides the HTTP transport for the history API with
// bounded timeouts, client-side rate limiting and typed error classification.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/history-gogo-client/pkg/apierr"
	"github.com/Sternrassler/history-gogo-client/pkg/logging"
	"github.com/Sternrassler/history-gogo-client/pkg/metrics"
	"github.com/Sternrassler/history-gogo-client/pkg/ratelimit"
)

// Prometheus metrics for transport operations.
var (
	requestsTotal = metrics.Factory().NewCounterVec(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Name:      "requests_total",
		Help:      "Total history API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	requestDuration = metrics.Factory().NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metrics.Namespace,
		Name:      "request_duration_seconds",
		Help:      "History API request duration in seconds by endpoint",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	}, []string{"endpoint"})

	errorsTotal = metrics.Factory().NewCounterVec(prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Name:      "errors_total",
		Help:      "Total classified request failures by kind",
	}, []string{"kind"})
)

// Header names sent with every request.
const (
	HeaderRequestID = "X-Request-ID"
	HeaderUserAgent = "User-Agent"
	HeaderAccept    = "Accept"
)

// Client is the history API transport. It is safe for concurrent use and
// holds no per-request state.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	limiter    *ratelimit.Limiter
	config     Config
	logger     zerolog.Logger
}

// Config holds the transport configuration.
type Config struct {
	// BaseURL is the origin plus API prefix, e.g. "https://history.example.com/api/v1".
	BaseURL string

	// UserAgent is sent on every request.
	UserAgent string

	// RequestTimeout bounds dialing, the TLS handshake and waiting for
	// response headers.
	RequestTimeout time.Duration

	// ResourceTimeout bounds the whole exchange including the body transfer.
	// Must be >= RequestTimeout.
	ResourceTimeout time.Duration

	// MaxBodyBytes caps the response body read. Zero means unlimited.
	MaxBodyBytes int64

	// RateLimit paces outgoing requests.
	RateLimit ratelimit.Config

	// Retry enables transport-level retries for idempotent requests.
	// Nil disables retrying.
	Retry *RetryConfig

	// Transport overrides the underlying round tripper (tests, proxies).
	Transport http.RoundTripper

	// Logger overrides the component logger.
	Logger *zerolog.Logger
}

// DefaultConfig returns a safe default configuration for baseURL.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:         baseURL,
		UserAgent:       "history-gogo-client/1.0",
		RequestTimeout:  30 * time.Second,
		ResourceTimeout: 60 * time.Second,
		MaxBodyBytes:    10 << 20,
		RateLimit:       ratelimit.DefaultConfig(),
	}
}

// New creates a new transport.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Host == "" || (base.Scheme != "http" && base.Scheme != "https") {
		return nil, apierr.InvalidTarget(cfg.BaseURL, err)
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.RequestTimeout <= 0 {
		return nil, fmt.Errorf("request_timeout must be > 0 (got %s)", cfg.RequestTimeout)
	}

	if cfg.ResourceTimeout < cfg.RequestTimeout {
		return nil, fmt.Errorf("resource_timeout must be >= request_timeout (got %s < %s)",
			cfg.ResourceTimeout, cfg.RequestTimeout)
	}

	if cfg.MaxBodyBytes < 0 {
		return nil, fmt.Errorf("max_body_bytes must be >= 0 (got %d)", cfg.MaxBodyBytes)
	}

	if cfg.Retry != nil {
		if err := cfg.Retry.validate(); err != nil {
			return nil, err
		}
	}

	logger := logging.NewLogger("history-client")
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	rt := cfg.Transport
	if rt == nil {
		dialer := &net.Dialer{
			Timeout:   cfg.RequestTimeout,
			KeepAlive: 30 * time.Second,
		}
		rt = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			TLSHandshakeTimeout:   cfg.RequestTimeout,
			ResponseHeaderTimeout: cfg.RequestTimeout,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
		}
	}
	if cfg.Retry != nil {
		rt = newRetryTransport(rt, *cfg.Retry, logger)
	}

	logger.Info().
		Str("base_url", base.String()).
		Bool("retry", cfg.Retry != nil).
		Float64("rate_limit", cfg.RateLimit.RequestsPerSecond).
		Msg("History client created")

	return &Client{
		httpClient: &http.Client{
			Transport: rt,
			Timeout:   cfg.ResourceTimeout,
		},
		baseURL: base,
		limiter: ratelimit.NewLimiter(cfg.RateLimit, logger),
		config:  cfg,
		logger:  logger,
	}, nil
}

// BaseURL returns the normalized base address.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// URL builds the absolute target for path and query.
func (c *Client) URL(path string, query Query) (*url.URL, error) {
	raw := c.baseURL.String() + path
	u, err := url.Parse(raw)
	if err != nil {
		return nil, apierr.InvalidTarget(raw, err)
	}
	if u.Host != c.baseURL.Host {
		return nil, apierr.InvalidTarget(raw, nil)
	}
	u.RawQuery = query.Encode()
	return u, nil
}

// Do sends req after waiting for a rate limit token. Transport faults are
// returned as apierr TransportFailure; the response is returned as-is for
// any status.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	endpoint := c.endpointLabel(req.URL.Path)

	if err := c.limiter.Wait(ctx); err != nil {
		c.recordFailure(endpoint, "rate_limited", apierr.KindTransport)
		return nil, apierr.Transport(err)
	}

	if req.Header.Get(HeaderRequestID) == "" {
		req.Header.Set(HeaderRequestID, uuid.NewString())
	}
	req.Header.Set(HeaderUserAgent, c.config.UserAgent)
	req.Header.Set(HeaderAccept, "application/json")

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Str("request_id", req.Header.Get(HeaderRequestID)).
		Msg("Executing history request")

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	requestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	if err != nil {
		c.recordFailure(endpoint, "network_error", apierr.KindTransport)
		c.logger.Error().
			Err(err).
			Str("endpoint", endpoint).
			Str("request_id", req.Header.Get(HeaderRequestID)).
			Str("error_kind", string(apierr.KindTransport)).
			Msg("HTTP request failed")
		return nil, apierr.Transport(err)
	}

	requestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
	return resp, nil
}

// Get fetches path with query and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, query Query, out any) error {
	return c.send(ctx, http.MethodGet, path, query, nil, out)
}

// Post sends body as JSON to path and decodes the JSON response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return apierr.Unknown(fmt.Errorf("encode request body: %w", err))
		}
		payload = data
	}
	return c.send(ctx, http.MethodPost, path, nil, payload, out)
}

func (c *Client) send(ctx context.Context, method, path string, query Query, payload []byte, out any) error {
	u, err := c.URL(path, query)
	if err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return apierr.InvalidTarget(u.String(), err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	endpoint := c.endpointLabel(u.Path)

	data, err := c.readBody(resp.Body)
	if err != nil {
		errorsTotal.WithLabelValues(string(apierr.KindOf(err))).Inc()
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serverErr := decodeServerError(resp.StatusCode, data)
		errorsTotal.WithLabelValues(string(apierr.KindServer)).Inc()
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Str("error_kind", string(apierr.KindServer)).
			Str("request_id", req.Header.Get(HeaderRequestID)).
			Msg(serverErr.Message)
		return serverErr
	}

	if out == nil {
		return nil
	}

	if err := decodeBody(data, out); err != nil {
		errorsTotal.WithLabelValues(string(apierr.KindDecode)).Inc()
		c.logger.Error().
			Err(err).
			Str("endpoint", endpoint).
			Str("error_kind", string(apierr.KindDecode)).
			Str("request_id", req.Header.Get(HeaderRequestID)).
			Msg("Response decode failed")
		return err
	}

	return nil
}

func (c *Client) readBody(r io.Reader) ([]byte, error) {
	if c.config.MaxBodyBytes <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, apierr.Transport(fmt.Errorf("read response body: %w", err))
		}
		return data, nil
	}

	data, err := io.ReadAll(io.LimitReader(r, c.config.MaxBodyBytes+1))
	if err != nil {
		return nil, apierr.Transport(fmt.Errorf("read response body: %w", err))
	}
	if int64(len(data)) > c.config.MaxBodyBytes {
		return nil, apierr.Decode(fmt.Errorf("response body exceeds %d bytes", c.config.MaxBodyBytes))
	}
	return data, nil
}

func (c *Client) recordFailure(endpoint, status string, kind apierr.Kind) {
	requestsTotal.WithLabelValues(endpoint, status).Inc()
	errorsTotal.WithLabelValues(string(kind)).Inc()
}

// endpointLabel reduces a request path to its first segment below the base
// path so metric cardinality stays bounded ("/api/v1/emperors/x" -> "emperors").
func (c *Client) endpointLabel(path string) string {
	rel := strings.TrimPrefix(path, c.baseURL.Path)
	rel = strings.TrimPrefix(rel, "/")
	if i := strings.IndexByte(rel, '/'); i >= 0 {
		rel = rel[:i]
	}
	if rel == "" {
		return "root"
	}
	return rel
}

// Limiter returns the request limiter.
func (c *Client) Limiter() *ratelimit.Limiter {
	return c.limiter
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func decodeBody(data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		var apiErr *apierr.Error
		if errors.As(err, &apiErr) {
			return apiErr
		}
		return apierr.Decode(err)
	}
	return nil
}
