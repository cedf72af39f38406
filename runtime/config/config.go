// Package config holds the Grok client configuration and loads it from
// defaults, the environment and YAML files.
//
// Environment variables:
//
//	XAI_API_KEY   - API key (required)
//	XAI_ENDPOINT  - service URL (default: "https://api.x.ai")
//	XAI_MODEL     - default chat model (default: "grok-code-fast-1")
//	XAI_TIMEOUT   - per-call timeout, a Go duration or whole seconds (default: "60s")
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/grokrpc/grok-go/runtime/grokerr"
	"github.com/grokrpc/grok-go/runtime/model"
	"github.com/grokrpc/grok-go/runtime/transport"
)

// Environment variable names read by FromEnv.
const (
	EnvAPIKey   = "XAI_API_KEY"
	EnvEndpoint = "XAI_ENDPOINT"
	EnvModel    = "XAI_MODEL"
	EnvTimeout  = "XAI_TIMEOUT"
)

// Defaults.
const (
	DefaultModel            = "grok-code-fast-1"
	DefaultTimeout          = 60 * time.Second
	DefaultDeferredInterval = 2 * time.Second
	DefaultDeferredTimeout  = 10 * time.Minute
)

type (
	// Config configures a Client.
	Config struct {
		// Endpoint is the service URL.
		Endpoint string `yaml:"endpoint"`
		// APIKey authenticates every call. It never renders in output.
		APIKey model.APIKey `yaml:"api_key"`
		// DefaultModel is used when a request names no model.
		DefaultModel string `yaml:"default_model"`
		// Timeout bounds each unary call.
		Timeout time.Duration `yaml:"timeout"`
		// UserAgent is prepended to the gRPC user agent.
		UserAgent string `yaml:"user_agent"`
		// Debug enables per-call gRPC logging.
		Debug bool `yaml:"debug"`
		// KeepaliveTime enables client keepalive pings when positive.
		KeepaliveTime time.Duration `yaml:"keepalive_time"`
		// Deferred configures WaitForDeferred defaults.
		Deferred DeferredConfig `yaml:"deferred"`
		// RateLimit configures the optional adaptive limiter.
		RateLimit RateLimitConfig `yaml:"rate_limit"`
	}

	// DeferredConfig holds deferred completion polling defaults.
	DeferredConfig struct {
		Interval time.Duration `yaml:"interval"`
		Timeout  time.Duration `yaml:"timeout"`
		// Jitter randomizes each interval by up to this fraction.
		Jitter float64 `yaml:"jitter"`
	}

	// RateLimitConfig configures the tokens-per-minute limiter. The limiter
	// is disabled when InitialTPM is zero.
	RateLimitConfig struct {
		InitialTPM float64 `yaml:"initial_tpm"`
		MaxTPM     float64 `yaml:"max_tpm"`
		// RedisURL, when set, shares the budget across processes.
		RedisURL string `yaml:"redis_url"`
		// Key names the shared budget.
		Key string `yaml:"key"`
	}
)

// Default returns the configuration used when nothing is overridden. The
// API key is left empty.
func Default() Config {
	return Config{
		Endpoint:     transport.DefaultEndpoint,
		DefaultModel: DefaultModel,
		Timeout:      DefaultTimeout,
		Deferred: DeferredConfig{
			Interval: DefaultDeferredInterval,
			Timeout:  DefaultDeferredTimeout,
		},
	}
}

// FromEnv returns Default overridden by the XAI_* environment variables.
// It fails when XAI_API_KEY is unset or a value cannot be parsed.
func FromEnv() (Config, error) {
	cfg := Default()
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads a YAML file over Default, then applies the environment. Values
// from the environment win over the file.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, grokerr.InvalidRequestf("parse config %s: %v", path, err)
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports configuration errors. A missing key is an Auth error;
// anything else is InvalidRequest.
func (c Config) Validate() error {
	if c.APIKey.IsZero() {
		return grokerr.Auth(EnvAPIKey + " is not set")
	}
	if strings.TrimSpace(c.Endpoint) == "" {
		return grokerr.InvalidRequest("endpoint is required")
	}
	if c.Timeout < 0 {
		return grokerr.InvalidRequestf("timeout must not be negative, got %s", c.Timeout)
	}
	if c.Deferred.Interval < 0 || c.Deferred.Timeout < 0 {
		return grokerr.InvalidRequest("deferred interval and timeout must not be negative")
	}
	if c.Deferred.Jitter < 0 || c.Deferred.Jitter > 1 {
		return grokerr.InvalidRequestf("deferred jitter must be within [0, 1], got %g", c.Deferred.Jitter)
	}
	if c.RateLimit.InitialTPM < 0 || c.RateLimit.MaxTPM < 0 {
		return grokerr.InvalidRequest("rate limit budgets must not be negative")
	}
	if c.RateLimit.MaxTPM > 0 && c.RateLimit.InitialTPM > c.RateLimit.MaxTPM {
		return grokerr.InvalidRequestf("rate limit initial_tpm %.0f exceeds max_tpm %.0f", c.RateLimit.InitialTPM, c.RateLimit.MaxTPM)
	}
	return nil
}

// TransportOptions returns the dial options for c.
func (c Config) TransportOptions() transport.Options {
	return transport.Options{
		Endpoint:      c.Endpoint,
		APIKey:        c.APIKey,
		Timeout:       c.Timeout,
		UserAgent:     c.UserAgent,
		Debug:         c.Debug,
		KeepaliveTime: c.KeepaliveTime,
	}
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.APIKey = model.NewAPIKey(v)
	}
	c.Endpoint = envOr(EnvEndpoint, c.Endpoint)
	c.DefaultModel = envOr(EnvModel, c.DefaultModel)
	timeout, err := envDurationOr(EnvTimeout, c.Timeout)
	if err != nil {
		return err
	}
	c.Timeout = timeout
	return nil
}

// envOr returns the environment variable value or a default.
func envOr(key, defaultVal string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return defaultVal
}

// envDurationOr parses the environment variable as a duration. Bare
// integers are seconds.
func envDurationOr(key string, defaultVal time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultVal, nil
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, grokerr.InvalidRequestf("%s: invalid duration %q", key, v)
	}
	return d, nil
}
