package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"
)

const (
	EnvUpstreamBaseURL            = "DECLINE_UPSTREAM_BASE_URL"
	EnvUpstreamTimeout            = "DECLINE_UPSTREAM_TIMEOUT"
	EnvUpstreamBreakerMaxRequests = "DECLINE_UPSTREAM_BREAKER_MAX_REQUESTS"
	EnvUpstreamBreakerInterval    = "DECLINE_UPSTREAM_BREAKER_INTERVAL"
	EnvUpstreamBreakerTimeout     = "DECLINE_UPSTREAM_BREAKER_TIMEOUT"
	EnvUpstreamBreakerFailures    = "DECLINE_UPSTREAM_BREAKER_FAILURES"
)

// UpstreamConfig describes the recipient API that performs rejections.
type UpstreamConfig struct {
	BaseURL            string `toml:"base_url"`
	Timeout            string `toml:"timeout"`
	BreakerMaxRequests uint32 `toml:"breaker_max_requests"`
	BreakerInterval    string `toml:"breaker_interval"`
	BreakerTimeout     string `toml:"breaker_timeout"`
	BreakerFailures    uint32 `toml:"breaker_failures"`
}

func (c *UpstreamConfig) TimeoutDuration() time.Duration {
	return parseDuration(c.Timeout)
}

func (c *UpstreamConfig) BreakerIntervalDuration() time.Duration {
	return parseDuration(c.BreakerInterval)
}

func (c *UpstreamConfig) BreakerTimeoutDuration() time.Duration {
	return parseDuration(c.BreakerTimeout)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *UpstreamConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *UpstreamConfig) Merge(overlay *UpstreamConfig) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.BreakerMaxRequests != 0 {
		c.BreakerMaxRequests = overlay.BreakerMaxRequests
	}
	if overlay.BreakerInterval != "" {
		c.BreakerInterval = overlay.BreakerInterval
	}
	if overlay.BreakerTimeout != "" {
		c.BreakerTimeout = overlay.BreakerTimeout
	}
	if overlay.BreakerFailures != 0 {
		c.BreakerFailures = overlay.BreakerFailures
	}
}

func (c *UpstreamConfig) loadDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:3000"
	}
	if c.Timeout == "" {
		c.Timeout = "15s"
	}
	if c.BreakerMaxRequests == 0 {
		c.BreakerMaxRequests = 3
	}
	if c.BreakerInterval == "" {
		c.BreakerInterval = "30s"
	}
	if c.BreakerTimeout == "" {
		c.BreakerTimeout = "30s"
	}
	if c.BreakerFailures == 0 {
		c.BreakerFailures = 5
	}
}

func (c *UpstreamConfig) loadEnv() {
	if v := os.Getenv(EnvUpstreamBaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(EnvUpstreamTimeout); v != "" {
		c.Timeout = v
	}
	if v := os.Getenv(EnvUpstreamBreakerMaxRequests); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			c.BreakerMaxRequests = uint32(n)
		}
	}
	if v := os.Getenv(EnvUpstreamBreakerInterval); v != "" {
		c.BreakerInterval = v
	}
	if v := os.Getenv(EnvUpstreamBreakerTimeout); v != "" {
		c.BreakerTimeout = v
	}
	if v := os.Getenv(EnvUpstreamBreakerFailures); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			c.BreakerFailures = uint32(n)
		}
	}
}

func (c *UpstreamConfig) validate() error {
	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base_url: %s", c.BaseURL)
	}
	if d, err := time.ParseDuration(c.Timeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid timeout: %s", c.Timeout)
	}
	if _, err := time.ParseDuration(c.BreakerInterval); err != nil {
		return fmt.Errorf("invalid breaker_interval: %w", err)
	}
	if _, err := time.ParseDuration(c.BreakerTimeout); err != nil {
		return fmt.Errorf("invalid breaker_timeout: %w", err)
	}
	return nil
}
