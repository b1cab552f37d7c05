package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config represents the application configuration structure.
// It contains settings for the environment, the local status HTTP server, the
// two upstream endpoints, request pacing, and session persistence.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`

	// HTTP contains the local status server configuration. An empty Addr
	// disables the server entirely.
	HTTP struct {
		// Addr is the address and port the status server will listen on
		Addr string `env:"HTTP_ADDR" env-default:"127.0.0.1:8422" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"2m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout is the maximum time allowed for processing a single request
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"10s" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
	} `yaml:"http"`

	// EA configures the EA registration-status endpoint.
	EA struct {
		// BaseURL is the scheme and host of the EA sign-in service
		BaseURL string `env:"EA_BASE_URL" env-default:"https://signin.ea.com" yaml:"baseUrl"`
		// Timeout bounds each request to the endpoint
		Timeout time.Duration `env:"EA_TIMEOUT" env-default:"20s" yaml:"timeout"`
	} `yaml:"ea"`

	// Microsoft configures the signup-availability endpoint.
	Microsoft struct {
		// BaseURL is the scheme and host of the Microsoft signup service
		BaseURL string `env:"MICROSOFT_BASE_URL" env-default:"https://signup.live.com" yaml:"baseUrl"`
		// Timeout bounds each request to the endpoint
		Timeout time.Duration `env:"MICROSOFT_TIMEOUT" env-default:"25s" yaml:"timeout"`
	} `yaml:"microsoft"`

	// Client configures the identity presented to both endpoints.
	Client struct {
		// UserAgent is the browser profile sent with every request
		UserAgent string `env:"CLIENT_USER_AGENT" env-default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/143.0.0.0 Safari/537.36" yaml:"userAgent"` //nolint: lll
	} `yaml:"client"`

	// Pacing configures per-endpoint request spacing and the retry policy.
	Pacing struct {
		// BaseDelay is the minimum spacing between requests to one endpoint
		BaseDelay time.Duration `env:"PACING_BASE_DELAY" env-default:"3s" yaml:"baseDelay"`
		// MaxRetries is how many times a retryable failure is reattempted;
		// the total attempt count per check is MaxRetries+1
		MaxRetries int `env:"PACING_MAX_RETRIES" env-default:"2" yaml:"maxRetries"`
		// Multiplier grows the backoff delay after each failed attempt
		Multiplier float64 `env:"PACING_MULTIPLIER" env-default:"2.0" yaml:"multiplier"`
		// Jitter is the randomization factor applied to backoff delays
		Jitter float64 `env:"PACING_JITTER" env-default:"0.4" yaml:"jitter"`
		// MaxDelay caps a single backoff wait, including server-advised ones
		MaxDelay time.Duration `env:"PACING_MAX_DELAY" env-default:"2m" yaml:"maxDelay"`
	} `yaml:"pacing"`

	// Session configures where scan progress is persisted.
	Session struct {
		// Path is the session document location
		Path string `env:"SESSION_PATH" env-default:"session.json" yaml:"path"`
		// SaveEvery persists the session after every N processed addresses
		SaveEvery int `env:"SESSION_SAVE_EVERY" env-default:"1" yaml:"saveEvery"`
	} `yaml:"session"`

	// Artifacts configures optional per-address result documents.
	Artifacts struct {
		// Dir is the root directory for per-address result documents; empty
		// disables writing them
		Dir string `env:"ARTIFACTS_DIR" env-default:"" yaml:"dir"`
	} `yaml:"artifacts"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for yaml config file and returns a filled Config
// struct. A missing file is not an error: the tool is routinely run without
// one, so defaults and environment variables apply instead.
func Load(configPath string) (*Config, error) {
	var cfg Config

	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("could not read environment: %w", err)
		}

		return &cfg, nil
	}

	err := cleanenv.ReadConfig(configPath, &cfg)
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	return &cfg, nil
}
