// Package config loads the client settings from HISTORY_* environment
// variables and turns them into the per-package configs.
//
// Usage:
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal().Err(err).Msg("Invalid configuration")
//	}
//	logger := logging.Setup(cfg.Logging())
//	transport, err := client.New(cfg.Client(&logger))
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/history-gogo-client/pkg/cache"
	"github.com/Sternrassler/history-gogo-client/pkg/client"
	"github.com/Sternrassler/history-gogo-client/pkg/logging"
	"github.com/Sternrassler/history-gogo-client/pkg/pagination"
	"github.com/Sternrassler/history-gogo-client/pkg/ratelimit"
	"github.com/Sternrassler/history-gogo-client/pkg/search"
)

// Prefix is prepended to every variable name.
const Prefix = "HISTORY_"

// Config is the environment view of the client settings.
type Config struct {
	// Transport
	BaseURL         string        `env:"BASE_URL"         envDefault:"http://localhost:8000/api/v1" validate:"required,url"`
	UserAgent       string        `env:"USER_AGENT"       envDefault:"history-gogo-client/1.0"      validate:"required"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT"  envDefault:"30s"                          validate:"gt=0"`
	ResourceTimeout time.Duration `env:"RESOURCE_TIMEOUT" envDefault:"60s"                          validate:"gtefield=RequestTimeout"`
	MaxBodyBytes    int64         `env:"MAX_BODY_BYTES"   envDefault:"10485760"                     validate:"gte=0"`

	// Client-side rate limit; 0 disables it.
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS"   envDefault:"10" validate:"gte=0"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"5"  validate:"gte=1"`

	// Opt-in retry of transport faults on GET.
	RetryEnabled     bool `env:"RETRY_ENABLED"      envDefault:"false"`
	RetryMaxAttempts int  `env:"RETRY_MAX_ATTEMPTS" envDefault:"3" validate:"gte=1,lte=10"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info" validate:"oneof=debug info warn warning error disabled off"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`

	// Response cache
	CacheEnabled bool   `env:"CACHE_ENABLED" envDefault:"false"`
	RedisAddr    string `env:"REDIS_ADDR"    envDefault:"localhost:6379" validate:"required,hostname_port"`
	RedisDB      int    `env:"REDIS_DB"      envDefault:"0"              validate:"gte=0,lte=15"`

	// Lists and search
	PageSize           int `env:"PAGE_SIZE"            envDefault:"20" validate:"gte=1,lte=100"`
	SearchDisplayLimit int `env:"SEARCH_DISPLAY_LIMIT" envDefault:"5"  validate:"gte=1,lte=100"`

	// Fixture server
	ListenAddr           string        `env:"LISTEN_ADDR"            envDefault:":8000"  validate:"required"`
	FixtureDelay         time.Duration `env:"FIXTURE_DELAY"          envDefault:"500ms"  validate:"gte=0"`
	FixtureTimelineDelay time.Duration `env:"FIXTURE_TIMELINE_DELAY" envDefault:"1s"     validate:"gte=0"`
}

// Load reads the process environment.
func Load() (Config, error) {
	return parse(env.Options{Prefix: Prefix})
}

// LoadFrom reads vars instead of the process environment. Keys carry the
// prefix ("HISTORY_BASE_URL").
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Prefix: Prefix, Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("config: parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report variable names instead of field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("env"), ",")
		if name == "" {
			return fld.Name
		}
		return Prefix + name
	})
	return v
}

// Validate checks every field and reports all failures at once.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config: validate: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag())
		if fe.Param() != "" {
			msg += fmt.Sprintf(" (%s)", fe.Param())
		}
		msgs = append(msgs, msg)
	}
	return fmt.Errorf("config: invalid settings: %s", strings.Join(msgs, "; "))
}

// Logging returns the logger configuration.
func (c Config) Logging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.LogLevel(c.LogLevel)
	cfg.Pretty = c.LogPretty
	return cfg
}

// RateLimit returns the limiter configuration.
func (c Config) RateLimit() ratelimit.Config {
	return ratelimit.Config{
		RequestsPerSecond: c.RateLimitRPS,
		Burst:             c.RateLimitBurst,
	}
}

// Client returns the transport configuration. A nil logger keeps the
// transport's default.
func (c Config) Client(logger *zerolog.Logger) client.Config {
	cfg := client.DefaultConfig(c.BaseURL)
	cfg.UserAgent = c.UserAgent
	cfg.RequestTimeout = c.RequestTimeout
	cfg.ResourceTimeout = c.ResourceTimeout
	cfg.MaxBodyBytes = c.MaxBodyBytes
	cfg.RateLimit = c.RateLimit()
	cfg.Logger = logger
	if c.RetryEnabled {
		rc := client.DefaultRetryConfig()
		rc.MaxAttempts = c.RetryMaxAttempts
		cfg.Retry = &rc
	}
	return cfg
}

// Redis returns the cache connection options, or nil when the cache is off.
func (c Config) Redis() *redis.Options {
	if !c.CacheEnabled {
		return nil
	}
	return &redis.Options{
		Addr: c.RedisAddr,
		DB:   c.RedisDB,
	}
}

// CacheTTL returns the entry lifetimes for the response cache.
func (c Config) CacheTTL() cache.TTLPolicy {
	return cache.DefaultTTLPolicy()
}

// Search returns the search aggregator configuration.
func (c Config) Search(logger *zerolog.Logger) search.Config {
	cfg := search.DefaultConfig()
	cfg.DisplayLimit = c.SearchDisplayLimit
	cfg.Logger = logger
	return cfg
}

// ListOptions returns the options shared by every paginated list.
func (c Config) ListOptions() []pagination.Option {
	return []pagination.Option{pagination.WithPageSize(c.PageSize)}
}
