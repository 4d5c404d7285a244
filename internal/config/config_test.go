package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8051", cfg.Relay.URL)
	assert.Equal(t, 30*time.Second, cfg.Relay.Timeout)
	assert.True(t, cfg.Relay.RetryReads)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8051", cfg.Relay.URL)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
relay:
  url: http://host.docker.internal:8051
  timeout: 10s
  retry_reads: false
redis:
  address: localhost:6379
`), 0o644))

	t.Setenv("VISIO_RELAY_TIMEOUT", "5s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://host.docker.internal:8051", cfg.Relay.URL)
	// Environment wins over the file.
	assert.Equal(t, 5*time.Second, cfg.Relay.Timeout)
	assert.False(t, cfg.Relay.RetryReads)
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("relay: [broken"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
