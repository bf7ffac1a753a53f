package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_JSON(t *testing.T) {
	path := writeTempFile(t, "config.json", `{
		"store": {"dsn": "exchanges.db"},
		"logging": {"level": "debug", "format": "text"},
		"http": {"insecure_hosts": ["localhost"], "request_timeout": 5000000000}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "exchanges.db", cfg.Store.DSN)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, []string{"localhost"}, cfg.HTTP.InsecureHosts)
	assert.Equal(t, 5*time.Second, cfg.HTTP.RequestTimeout)
}

func TestLoad_YAML(t *testing.T) {
	path := writeTempFile(t, "config.yaml", `
store:
  dsn: exchanges.db
logging:
  level: warn
http:
  insecure_hosts:
    - localhost
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, []string{"localhost"}, cfg.HTTP.InsecureHosts)
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	path := writeTempFile(t, "config.toml", "dsn = 'x'")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_NonExistentFile(t *testing.T) {
	_, err := Load("/tmp/does-not-exist-slumberctl-config.json")
	assert.Error(t, err)
}

func TestLoad_InvalidatesBadLoggingLevel(t *testing.T) {
	path := writeTempFile(t, "config.json", `{"logging": {"level": "verbose"}}`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate_NegativeTimeoutRejected(t *testing.T) {
	err := Validate(Config{HTTP: HTTPConfig{RequestTimeout: -1}})
	assert.Error(t, err)
}

func TestValidate_ZeroValueIsValid(t *testing.T) {
	assert.NoError(t, Validate(Config{}))
}
