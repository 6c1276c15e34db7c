package config

import (
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/history-gogo-client/pkg/client"
	"github.com/Sternrassler/history-gogo-client/pkg/logging"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.BaseURL != "http://localhost:8000/api/v1" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", cfg.RequestTimeout)
	}
	if cfg.ResourceTimeout != 60*time.Second {
		t.Errorf("ResourceTimeout = %v, want 60s", cfg.ResourceTimeout)
	}
	if cfg.PageSize != 20 {
		t.Errorf("PageSize = %d, want 20", cfg.PageSize)
	}
	if cfg.SearchDisplayLimit != 5 {
		t.Errorf("SearchDisplayLimit = %d, want 5", cfg.SearchDisplayLimit)
	}
	if cfg.RetryEnabled || cfg.CacheEnabled {
		t.Error("retry and cache should be off by default")
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"HISTORY_BASE_URL":           "https://history.example.com/api/v1",
		"HISTORY_REQUEST_TIMEOUT":    "5s",
		"HISTORY_RESOURCE_TIMEOUT":   "10s",
		"HISTORY_RATE_LIMIT_RPS":     "0",
		"HISTORY_RETRY_ENABLED":      "true",
		"HISTORY_RETRY_MAX_ATTEMPTS": "4",
		"HISTORY_LOG_LEVEL":          "debug",
		"HISTORY_CACHE_ENABLED":      "true",
		"HISTORY_REDIS_ADDR":         "redis:6379",
		"HISTORY_REDIS_DB":           "2",
		"BASE_URL":                   "http://ignored.example.com",
	})
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.BaseURL != "https://history.example.com/api/v1" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}

	cc := cfg.Client(nil)
	if cc.RequestTimeout != 5*time.Second || cc.ResourceTimeout != 10*time.Second {
		t.Errorf("timeouts = %v/%v, want 5s/10s", cc.RequestTimeout, cc.ResourceTimeout)
	}
	if cc.RateLimit.RequestsPerSecond != 0 {
		t.Errorf("RateLimit.RequestsPerSecond = %v, want 0", cc.RateLimit.RequestsPerSecond)
	}
	if cc.Retry == nil || cc.Retry.MaxAttempts != 4 {
		t.Errorf("Retry = %+v, want 4 attempts", cc.Retry)
	}
	if _, err := client.New(cc); err != nil {
		t.Errorf("client.New(cfg.Client()) error = %v", err)
	}

	if got := cfg.Logging().Level; got != logging.LevelDebug {
		t.Errorf("Logging().Level = %q, want debug", got)
	}

	opts := cfg.Redis()
	if opts == nil || opts.Addr != "redis:6379" || opts.DB != 2 {
		t.Errorf("Redis() = %+v", opts)
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		vars    map[string]string
		wantMsg string
	}{
		{
			name:    "resource below request timeout",
			vars:    map[string]string{"HISTORY_REQUEST_TIMEOUT": "30s", "HISTORY_RESOURCE_TIMEOUT": "10s"},
			wantMsg: "HISTORY_RESOURCE_TIMEOUT",
		},
		{
			name:    "bad url",
			vars:    map[string]string{"HISTORY_BASE_URL": "not a url"},
			wantMsg: "HISTORY_BASE_URL",
		},
		{
			name:    "page size above max",
			vars:    map[string]string{"HISTORY_PAGE_SIZE": "101"},
			wantMsg: "HISTORY_PAGE_SIZE",
		},
		{
			name:    "unknown log level",
			vars:    map[string]string{"HISTORY_LOG_LEVEL": "verbose"},
			wantMsg: "HISTORY_LOG_LEVEL",
		},
		{
			name:    "unparseable duration",
			vars:    map[string]string{"HISTORY_REQUEST_TIMEOUT": "soon"},
			wantMsg: "parse environment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFrom(tt.vars)
			if err == nil {
				t.Fatal("LoadFrom() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("LoadFrom() error = %v, want mention of %s", err, tt.wantMsg)
			}
		})
	}
}

func TestConfig_CacheDisabled(t *testing.T) {
	cfg, err := LoadFrom(nil)
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.Redis() != nil {
		t.Error("Redis() should be nil when the cache is disabled")
	}
}

func TestConfig_SearchAndLists(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"HISTORY_PAGE_SIZE":            "50",
		"HISTORY_SEARCH_DISPLAY_LIMIT": "8",
	})
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if got := cfg.Search(nil).DisplayLimit; got != 8 {
		t.Errorf("Search().DisplayLimit = %d, want 8", got)
	}
	if got := len(cfg.ListOptions()); got != 1 {
		t.Errorf("ListOptions() = %d options, want 1", got)
	}
}
