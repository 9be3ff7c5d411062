// Package config loads the layered tooling configuration: defaults, then the
// YAML config file, then a .env file, then process environment variables.
// Command-line flags are applied on top by the CLI layer.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults for everything except the two required settings.
const (
	DefaultBatchSize   = 500
	DefaultMaxAttempts = 3
	DefaultRetryDelay  = 500 * time.Millisecond
	DefaultHTTPTimeout = 30 * time.Second
	DefaultLogLevel    = "info"
)

// Environment variable names. The same settings can come from the config
// file; environment wins.
const (
	EnvAPIURL      = "ORDEROPS_API_URL"
	EnvServiceKey  = "ORDEROPS_SERVICE_KEY"
	EnvBatchSize   = "ORDEROPS_BATCH_SIZE"
	EnvMaxAttempts = "ORDEROPS_MAX_ATTEMPTS"
	EnvRetryDelay  = "ORDEROPS_RETRY_DELAY"
	EnvHTTPTimeout = "ORDEROPS_HTTP_TIMEOUT"
	EnvLogLevel    = "ORDEROPS_LOG_LEVEL"
	EnvConfigPath  = "ORDEROPS_CONFIG"
)

const (
	defaultConfigDir  = ".orderops"
	defaultConfigFile = "config.yaml"
	dotEnvFile        = ".env"
)

var (
	// ErrAPIURLRequired indicates the backend base URL is missing.
	ErrAPIURLRequired = errors.New("backend API URL is required (set " + EnvAPIURL + " or api_url in the config file)")
	// ErrServiceKeyRequired indicates the service credential is missing.
	ErrServiceKeyRequired = errors.New("service key is required (set " + EnvServiceKey + " or service_key in the config file)")
)

// Config holds the resolved settings for one invocation.
type Config struct {
	// APIURL is the backend base URL, without a trailing slash. Required.
	APIURL string

	// ServiceKey is the service-level credential sent with every request. Required.
	ServiceKey string

	// BatchSize bounds one bulk approval batch.
	BatchSize int

	// MaxAttempts bounds transition attempts per batch, including the first.
	MaxAttempts int

	// RetryDelay is the base backoff delay between transition attempts.
	RetryDelay time.Duration

	// HTTPTimeout bounds each backend request.
	HTTPTimeout time.Duration

	// LogLevel is the zerolog level name.
	LogLevel string
}

// fileConfig is the YAML shape of the config file. Durations are strings so
// the file can say "750ms" or "2s"; pointers distinguish absent from zero.
type fileConfig struct {
	APIURL      string `yaml:"api_url"`
	ServiceKey  string `yaml:"service_key"`
	BatchSize   *int   `yaml:"batch_size"`
	MaxAttempts *int   `yaml:"max_attempts"`
	RetryDelay  string `yaml:"retry_delay"`
	HTTPTimeout string `yaml:"http_timeout"`
	LogLevel    string `yaml:"log_level"`
}

// Default returns a Config with every optional setting at its default and
// the required settings empty.
func Default() *Config {
	return &Config{
		BatchSize:   DefaultBatchSize,
		MaxAttempts: DefaultMaxAttempts,
		RetryDelay:  DefaultRetryDelay,
		HTTPTimeout: DefaultHTTPTimeout,
		LogLevel:    DefaultLogLevel,
	}
}

// Load resolves the configuration from all sources. A missing config file or
// .env file is not an error; a malformed one is. Load does not require the
// mandatory settings to be present: call Validate before using the config
// for backend access.
func Load() (*Config, error) {
	cfg := Default()

	if err := mergeFile(cfg, configPath()); err != nil {
		return nil, err
	}

	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	cfg.ServiceKey = strings.TrimSpace(cfg.ServiceKey)

	return cfg, nil
}

// Validate checks the resolved configuration. The required settings missing
// is a fatal startup condition reported before any network call.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return ErrAPIURLRequired
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("backend API URL must be an http(s) URL, got %q", c.APIURL)
	}

	if c.ServiceKey == "" {
		return ErrServiceKeyRequired
	}

	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.RetryDelay <= 0 {
		return fmt.Errorf("retry delay must be positive, got %s", c.RetryDelay)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive, got %s", c.HTTPTimeout)
	}

	return nil
}

// configPath returns the config file location: ORDEROPS_CONFIG when set,
// otherwise ~/.orderops/config.yaml.
func configPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, defaultConfigDir, defaultConfigFile)
}

// mergeFile applies settings from the YAML file at path onto cfg.
// A missing file means "no file settings".
func mergeFile(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if fc.APIURL != "" {
		cfg.APIURL = fc.APIURL
	}
	if fc.ServiceKey != "" {
		cfg.ServiceKey = fc.ServiceKey
	}
	if fc.BatchSize != nil {
		cfg.BatchSize = *fc.BatchSize
	}
	if fc.MaxAttempts != nil {
		cfg.MaxAttempts = *fc.MaxAttempts
	}
	if fc.RetryDelay != "" {
		d, err := time.ParseDuration(fc.RetryDelay)
		if err != nil {
			return fmt.Errorf("parsing retry_delay in %s: %w", path, err)
		}
		cfg.RetryDelay = d
	}
	if fc.HTTPTimeout != "" {
		d, err := time.ParseDuration(fc.HTTPTimeout)
		if err != nil {
			return fmt.Errorf("parsing http_timeout in %s: %w", path, err)
		}
		cfg.HTTPTimeout = d
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}

	return nil
}

// loadDotEnv loads a .env file from the working directory into the process
// environment. godotenv never overrides variables that are already set, so
// real environment wins over .env values.
func loadDotEnv() error {
	if _, err := os.Stat(dotEnvFile); err != nil {
		return nil
	}
	if err := godotenv.Load(); err != nil {
		return fmt.Errorf("loading %s: %w", dotEnvFile, err)
	}
	return nil
}

// applyEnv applies environment variables onto cfg.
func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvAPIURL); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv(EnvServiceKey); v != "" {
		cfg.ServiceKey = v
	}
	if v := os.Getenv(EnvBatchSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvBatchSize, err)
		}
		cfg.BatchSize = n
	}
	if v := os.Getenv(EnvMaxAttempts); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvMaxAttempts, err)
		}
		cfg.MaxAttempts = n
	}
	if v := os.Getenv(EnvRetryDelay); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvRetryDelay, err)
		}
		cfg.RetryDelay = d
	}
	if v := os.Getenv(EnvHTTPTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvHTTPTimeout, err)
		}
		cfg.HTTPTimeout = d
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	return nil
}
