package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pointConfigAt redirects the config file lookup and clears every setting
// variable so tests start from a clean environment.
func pointConfigAt(t *testing.T, path string) {
	t.Helper()
	t.Setenv(EnvConfigPath, path)
	for _, key := range []string{
		EnvAPIURL, EnvServiceKey, EnvBatchSize, EnvMaxAttempts,
		EnvRetryDelay, EnvHTTPTimeout, EnvLogLevel,
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	pointConfigAt(t, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultBatchSize, cfg.BatchSize)
	assert.Equal(t, DefaultMaxAttempts, cfg.MaxAttempts)
	assert.Equal(t, DefaultRetryDelay, cfg.RetryDelay)
	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Empty(t, cfg.APIURL)
	assert.Empty(t, cfg.ServiceKey)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_url: https://db.example.com/
service_key: file-key
batch_size: 250
retry_delay: 750ms
log_level: debug
`), 0o600))
	pointConfigAt(t, path)

	cfg, err := Load()
	require.NoError(t, err)

	// Trailing slash is normalized away.
	assert.Equal(t, "https://db.example.com", cfg.APIURL)
	assert.Equal(t, "file-key", cfg.ServiceKey)
	assert.Equal(t, 250, cfg.BatchSize)
	assert.Equal(t, 750*time.Millisecond, cfg.RetryDelay)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Settings the file omits keep their defaults.
	assert.Equal(t, DefaultMaxAttempts, cfg.MaxAttempts)
}

func TestLoadEnvironmentWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
api_url: https://from-file.example.com
batch_size: 100
`), 0o600))
	pointConfigAt(t, path)
	t.Setenv(EnvAPIURL, "https://from-env.example.com")
	t.Setenv(EnvBatchSize, "42")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://from-env.example.com", cfg.APIURL)
	assert.Equal(t, 42, cfg.BatchSize)
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Run("bad yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("batch_size: [not an int"), 0o600))
		pointConfigAt(t, path)

		_, err := Load()
		assert.ErrorContains(t, err, "parsing config file")
	})

	t.Run("bad duration in file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("retry_delay: soon"), 0o600))
		pointConfigAt(t, path)

		_, err := Load()
		assert.ErrorContains(t, err, "retry_delay")
	})

	t.Run("bad int in environment", func(t *testing.T) {
		pointConfigAt(t, filepath.Join(t.TempDir(), "missing.yaml"))
		t.Setenv(EnvBatchSize, "many")

		_, err := Load()
		assert.ErrorContains(t, err, EnvBatchSize)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.APIURL = "https://db.example.com"
		cfg.ServiceKey = "key"
		return cfg
	}

	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("missing api url", func(t *testing.T) {
		cfg := valid()
		cfg.APIURL = ""
		assert.ErrorIs(t, cfg.Validate(), ErrAPIURLRequired)
	})

	t.Run("missing service key", func(t *testing.T) {
		cfg := valid()
		cfg.ServiceKey = ""
		assert.ErrorIs(t, cfg.Validate(), ErrServiceKeyRequired)
	})

	t.Run("non-http url", func(t *testing.T) {
		cfg := valid()
		cfg.APIURL = "ftp://db.example.com"
		assert.ErrorContains(t, cfg.Validate(), "http(s)")
	})

	t.Run("bounds", func(t *testing.T) {
		cfg := valid()
		cfg.BatchSize = 0
		assert.ErrorContains(t, cfg.Validate(), "batch size")

		cfg = valid()
		cfg.MaxAttempts = 0
		assert.ErrorContains(t, cfg.Validate(), "max attempts")

		cfg = valid()
		cfg.RetryDelay = 0
		assert.ErrorContains(t, cfg.Validate(), "retry delay")

		cfg = valid()
		cfg.HTTPTimeout = -time.Second
		assert.ErrorContains(t, cfg.Validate(), "http timeout")
	})
}
