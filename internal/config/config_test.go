package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every DRIVEMUX_ env var that Load() reads.
var allConfigKeys = []string{
	"DRIVEMUX_LISTEN_ADDR",
	"DRIVEMUX_DB_PATH",
	"DRIVEMUX_SECRET_KEY",
	"DRIVEMUX_CACHE_TTL",
	"DRIVEMUX_CACHE_SIZE",
	"DRIVEMUX_CHUNK_SIZE",
	"DRIVEMUX_STREAM_TIMEOUT",
}

// isolateConfigEnv saves and unsets all DRIVEMUX_ env vars so tests don't
// inherit values from the host environment (e.g. a running dev server).
// t.Cleanup restores original values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.ListenAddr)
	assert.Equal(t, "drivemux.db", cfg.DBPath)
	assert.Nil(t, cfg.SecretKey)
	assert.Equal(t, 3*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 128, cfg.CacheSize)
	assert.Equal(t, int64(10*1024*1024), cfg.ChunkSize)
	assert.Equal(t, 30*time.Second, cfg.StreamTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("DRIVEMUX_LISTEN_ADDR", "0.0.0.0:9090")
	t.Setenv("DRIVEMUX_DB_PATH", "/tmp/test.db")
	t.Setenv("DRIVEMUX_CACHE_TTL", "10m")
	t.Setenv("DRIVEMUX_CACHE_SIZE", "32")
	t.Setenv("DRIVEMUX_CHUNK_SIZE", "1048576")
	t.Setenv("DRIVEMUX_STREAM_TIMEOUT", "1m")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9090", cfg.ListenAddr)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 32, cfg.CacheSize)
	assert.Equal(t, int64(1048576), cfg.ChunkSize)
	assert.Equal(t, time.Minute, cfg.StreamTimeout)
}

func TestLoad_SecretKeyIsDerivedTo32Bytes(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("DRIVEMUX_SECRET_KEY", "correct horse battery staple")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Len(t, cfg.SecretKey, 32)

	// The same passphrase always yields the same key.
	again, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg.SecretKey, again.SecretKey)
}

func TestLoad_EmptySecretKeyDisablesEncryption(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("DRIVEMUX_SECRET_KEY", "")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Nil(t, cfg.SecretKey)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "malformed cache ttl", key: "DRIVEMUX_CACHE_TTL", value: "soon"},
		{name: "negative cache ttl", key: "DRIVEMUX_CACHE_TTL", value: "-1m"},
		{name: "malformed cache size", key: "DRIVEMUX_CACHE_SIZE", value: "lots"},
		{name: "zero cache size", key: "DRIVEMUX_CACHE_SIZE", value: "0"},
		{name: "malformed chunk size", key: "DRIVEMUX_CHUNK_SIZE", value: "10MB"},
		{name: "negative chunk size", key: "DRIVEMUX_CHUNK_SIZE", value: "-1"},
		{name: "malformed stream timeout", key: "DRIVEMUX_STREAM_TIMEOUT", value: "never"},
		{name: "zero stream timeout", key: "DRIVEMUX_STREAM_TIMEOUT", value: "0s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateConfigEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
