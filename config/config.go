// Package config holds the service configuration for the wizard: where the
// project and dataset APIs live, where the optimization WebSocket endpoint
// lives, and client-side timeouts. Values come from the environment (with an
// optional .env file) and can be overridden through functional options.
package config

import (
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/weave-labs/promptwizard/utils"
)

type Config struct {
	// APIBase is the HTTP base URL of the wizard backend (project creation
	// and dataset endpoints).
	APIBase string `env:"WIZARD_API_BASE" envDefault:"http://localhost:8000"`

	// WSBase is the WebSocket base URL for optimization streams. When empty
	// it is derived from APIBase by swapping the scheme.
	WSBase string `env:"WIZARD_WS_BASE"`

	RequestTimeout   time.Duration `env:"WIZARD_REQUEST_TIMEOUT" envDefault:"30s"`
	UploadTimeout    time.Duration `env:"WIZARD_UPLOAD_TIMEOUT" envDefault:"2m"`
	HandshakeTimeout time.Duration `env:"WIZARD_WS_HANDSHAKE_TIMEOUT" envDefault:"10s"`

	// SubmitInterval is the minimum spacing between project submissions,
	// enforced client-side by the submission client's rate limiter.
	SubmitInterval time.Duration `env:"WIZARD_SUBMIT_INTERVAL" envDefault:"2s"`

	LogLevel utils.LogLevel `env:"WIZARD_LOG_LEVEL" envDefault:"WARN"`
}

// LoadConfig reads configuration from the environment, loading a .env file
// first when one is present.
func LoadConfig() (*Config, error) {
	// Missing .env is the normal case, not an error.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewConfig returns a Config with defaults, bypassing the environment.
func NewConfig() *Config {
	return &Config{
		APIBase:          "http://localhost:8000",
		RequestTimeout:   30 * time.Second,
		UploadTimeout:    2 * time.Minute,
		HandshakeTimeout: 10 * time.Second,
		SubmitInterval:   2 * time.Second,
		LogLevel:         utils.LogLevelWarn,
	}
}

// WebSocketBase returns the base URL for WebSocket connections, deriving one
// from APIBase when WSBase is not set.
func (c *Config) WebSocketBase() string {
	if c.WSBase != "" {
		return strings.TrimSuffix(c.WSBase, "/")
	}
	base := strings.TrimSuffix(c.APIBase, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		return "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		return "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base
}

type ConfigOption func(*Config)

func SetAPIBase(base string) ConfigOption {
	return func(c *Config) {
		c.APIBase = base
	}
}

func SetWSBase(base string) ConfigOption {
	return func(c *Config) {
		c.WSBase = base
	}
}

func SetRequestTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.RequestTimeout = timeout
	}
}

func SetUploadTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.UploadTimeout = timeout
	}
}

func SetHandshakeTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.HandshakeTimeout = timeout
	}
}

func SetSubmitInterval(interval time.Duration) ConfigOption {
	return func(c *Config) {
		c.SubmitInterval = interval
	}
}

func SetLogLevel(level utils.LogLevel) ConfigOption {
	return func(c *Config) {
		c.LogLevel = level
	}
}
