// Package ggconfig hydrates gg's runtime configuration: the cache backend,
// extra binary search paths, and logging/metrics knobs a coordinator or
// worker process reads before it does anything else. None of it is part of
// the wire contract with the back-end — every default reproduces the
// library's unconfigured behavior exactly.
package ggconfig

import "fmt"

// Config is the fully-resolved, validated configuration for one gg process.
type Config struct {
	Cache   CacheConfig
	BinPath string
	Logging LoggingConfig
	Metrics MetricsConfig
}

// CacheConfig controls internal/ggcache's hash memoization backend.
type CacheConfig struct {
	// Backend is "memory", "redis", or "" (memoization disabled).
	Backend string
	Redis   RedisConfig
}

// RedisConfig addresses a valkey-go (Redis-protocol) backend.
type RedisConfig struct {
	Address  string
	Username string
	Password string
	DB       int
}

// LoggingConfig controls internal/gglog.
type LoggingConfig struct {
	Level  string
	Format string
}

// MetricsConfig controls internal/ggmetrics.
type MetricsConfig struct {
	// TextfilePath, when non-empty, is where a Prometheus text-exposition
	// file is written at process exit (node_exporter textfile-collector
	// convention). Empty disables metrics entirely.
	TextfilePath string
}

// DefaultConfig reproduces gg's unconfigured behavior: no memoization
// cache, no extra binary search path, info/text logging to stderr, no
// metrics file.
func DefaultConfig() Config {
	return Config{
		Cache:   CacheConfig{Backend: ""},
		BinPath: "",
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Metrics: MetricsConfig{TextfilePath: ""},
	}
}

// Validate rejects configurations the rest of the library can't act on.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case "", "memory", "redis":
	default:
		return fmt.Errorf("ggconfig: unsupported cache backend %q", c.Cache.Backend)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("ggconfig: unsupported log level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("ggconfig: unsupported log format %q", c.Logging.Format)
	}
	return nil
}
