// Package config loads application configuration from environment variables.
package config

import (
	"crypto/sha256"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Default tuning values, matching the reference deployment.
const (
	DefaultCacheTTL      = 3 * time.Minute
	DefaultCacheSize     = 128
	DefaultChunkSize     = 10 * 1024 * 1024 // 10 MiB initial/open-ended stream window
	DefaultStreamTimeout = 30 * time.Second
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr    string
	DBPath        string
	SecretKey     []byte // 32-byte key for at-rest credential encryption; nil disables it.
	CacheTTL      time.Duration
	CacheSize     int
	ChunkSize     int64
	StreamTimeout time.Duration
}

// Load reads configuration from environment variables and returns a validated
// Config. All variables are optional: DRIVEMUX_LISTEN_ADDR (127.0.0.1:8080),
// DRIVEMUX_DB_PATH (drivemux.db), DRIVEMUX_SECRET_KEY (empty disables at-rest
// encryption), DRIVEMUX_CACHE_TTL (3m), DRIVEMUX_CACHE_SIZE (128),
// DRIVEMUX_CHUNK_SIZE (10485760), DRIVEMUX_STREAM_TIMEOUT (30s).
func Load() (*Config, error) {
	cfg := &Config{
		ListenAddr:    "127.0.0.1:8080",
		DBPath:        "drivemux.db",
		CacheTTL:      DefaultCacheTTL,
		CacheSize:     DefaultCacheSize,
		ChunkSize:     DefaultChunkSize,
		StreamTimeout: DefaultStreamTimeout,
	}

	if v, ok := os.LookupEnv("DRIVEMUX_LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}
	if v, ok := os.LookupEnv("DRIVEMUX_DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := os.LookupEnv("DRIVEMUX_SECRET_KEY"); ok && v != "" {
		// Derive a fixed-length AES-256 key from whatever passphrase was set.
		key := sha256.Sum256([]byte(v))
		cfg.SecretKey = key[:]
	}

	if v, ok := os.LookupEnv("DRIVEMUX_CACHE_TTL"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("DRIVEMUX_CACHE_TTL has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("DRIVEMUX_CACHE_TTL must be positive, got %q", v)
		}
		cfg.CacheTTL = parsed
	}

	if v, ok := os.LookupEnv("DRIVEMUX_CACHE_SIZE"); ok {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("DRIVEMUX_CACHE_SIZE must be a positive integer, got %q", v)
		}
		cfg.CacheSize = parsed
	}

	if v, ok := os.LookupEnv("DRIVEMUX_CHUNK_SIZE"); ok {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("DRIVEMUX_CHUNK_SIZE must be a positive integer, got %q", v)
		}
		cfg.ChunkSize = parsed
	}

	if v, ok := os.LookupEnv("DRIVEMUX_STREAM_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("DRIVEMUX_STREAM_TIMEOUT has invalid duration %q: %w", v, err)
		}
		if parsed <= 0 {
			return nil, fmt.Errorf("DRIVEMUX_STREAM_TIMEOUT must be positive, got %q", v)
		}
		cfg.StreamTimeout = parsed
	}

	return cfg, nil
}
