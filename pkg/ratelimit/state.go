// Package ratelimit paces outgoing history API requests on the client side.
// A Limiter wraps a token bucket; every request waits for a token before it
// is sent, so bursts of list and search traffic cannot flood the server.
package ratelimit

import (
	"time"
)

// Defaults for Config.
const (
	// DefaultRequestsPerSecond is the sustained request rate.
	DefaultRequestsPerSecond = 10.0

	// DefaultBurst allows a search in "all" mode plus a page load to go out at once.
	DefaultBurst = 5
)

// State is a point-in-time snapshot of a Limiter.
type State struct {
	// Limit is the sustained rate in requests per second. Zero means unlimited.
	Limit float64 `json:"limit"`

	// Burst is the bucket size.
	Burst int `json:"burst"`

	// TokensAvailable is the number of requests that can go out without waiting.
	TokensAvailable float64 `json:"tokens_available"`

	// Waits counts requests that had to wait for a token.
	Waits uint64 `json:"waits"`

	// LastWait is how long the most recent throttled request waited.
	LastWait time.Duration `json:"last_wait"`

	// CapturedAt is when the snapshot was taken.
	CapturedAt time.Time `json:"captured_at"`
}

// Unlimited reports whether the limiter lets every request through.
func (s State) Unlimited() bool {
	return s.Limit <= 0
}

// NeedsThrottling reports whether the next request will have to wait.
func (s State) NeedsThrottling() bool {
	return !s.Unlimited() && s.TokensAvailable < 1
}

// IsStale returns true if the snapshot is older than maxAge.
func (s State) IsStale(maxAge time.Duration) bool {
	return time.Since(s.CapturedAt) > maxAge
}

// TimeUntilToken estimates how long the next request would wait.
func (s State) TimeUntilToken() time.Duration {
	if !s.NeedsThrottling() {
		return 0
	}
	missing := 1 - s.TokensAvailable
	return time.Duration(missing / s.Limit * float64(time.Second))
}
