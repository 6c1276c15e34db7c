package ratelimit

import (
	"testing"
	"time"
)

func TestState_IsStale(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		maxAge   time.Duration
		expected bool
	}{
		{
			name:     "fresh state",
			state:    State{CapturedAt: time.Now()},
			maxAge:   5 * time.Second,
			expected: false,
		},
		{
			name:     "stale state",
			state:    State{CapturedAt: time.Now().Add(-10 * time.Second)},
			maxAge:   5 * time.Second,
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsStale(tt.maxAge); got != tt.expected {
				t.Errorf("IsStale() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_NeedsThrottling(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected bool
	}{
		{"unlimited", State{Limit: 0, TokensAvailable: 0}, false},
		{"tokens available", State{Limit: 10, TokensAvailable: 3}, false},
		{"exactly one token", State{Limit: 10, TokensAvailable: 1}, false},
		{"bucket drained", State{Limit: 10, TokensAvailable: 0.2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.NeedsThrottling(); got != tt.expected {
				t.Errorf("NeedsThrottling() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_TimeUntilToken(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		expected time.Duration
	}{
		{"not throttled", State{Limit: 10, TokensAvailable: 2}, 0},
		{"unlimited", State{Limit: 0}, 0},
		{"half token at 10 rps", State{Limit: 10, TokensAvailable: 0.5}, 50 * time.Millisecond},
		{"empty bucket at 2 rps", State{Limit: 2, TokensAvailable: 0}, 500 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.state.TimeUntilToken()
			diff := got - tt.expected
			if diff < -time.Millisecond || diff > time.Millisecond {
				t.Errorf("TimeUntilToken() = %v, want %v", got, tt.expected)
			}
		})
	}
}
