package ggcache

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	valkey "github.com/valkey-io/valkey-go"
)

// RedisTLSConfig configures TLS for a redis-backed MemoCache.
type RedisTLSConfig struct {
	Enabled bool
	CAFile  string
}

// RedisConfig addresses a valkey-go (Redis-protocol) backend.
type RedisConfig struct {
	Address  string
	Username string
	Password string
	DB       int
	TLS      RedisTLSConfig
}

type redisCache struct {
	client valkey.Client
}

// NewRedis dials a Redis-protocol backend and returns a Cache over it.
// Entries never expire: a hash keyed on (path, size, mtime) is content-stable
// by construction, so there is no staleness window to bound with a TTL the
// way the teacher's decision cache needs one.
func NewRedis(cfg RedisConfig) (Cache, error) {
	if cfg.Address == "" {
		return nil, errors.New("ggcache: redis address required")
	}

	option := valkey.ClientOption{
		InitAddress:       []string{cfg.Address},
		Username:          cfg.Username,
		Password:          cfg.Password,
		SelectDB:          cfg.DB,
		AlwaysRESP2:       true,
		ForceSingleClient: true,
		DisableCache:      true,
	}

	if cfg.TLS.Enabled {
		tlsConfig := &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
		if cfg.TLS.CAFile != "" {
			caData, err := os.ReadFile(cfg.TLS.CAFile)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return nil, fmt.Errorf("ggcache: read redis ca file: %w", err)
				}
				return nil, fmt.Errorf("ggcache: read redis ca file: %w", err)
			}
			pool := x509.NewCertPool()
			if !pool.AppendCertsFromPEM(caData) {
				return nil, errors.New("ggcache: redis ca file contains no certificates")
			}
			tlsConfig.RootCAs = pool
		}
		option.TLSConfig = tlsConfig
	}

	client, err := valkey.NewClient(option)
	if err != nil {
		return nil, fmt.Errorf("ggcache: redis client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ggcache: redis ping: %w", err)
	}

	return &redisCache{client: client}, nil
}

// Get implements Cache. A miss (including a connection error) is reported
// as "not found": memoization is an optimization, so a cache that's down
// just means every lookup falls back to gg-hash-static.
func (c *redisCache) Get(path string, size int64, modTimeUnixNano int64) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	resp := c.client.Do(ctx, c.client.B().Get().Key(key(path, size, modTimeUnixNano)).Build())
	if err := resp.Error(); err != nil {
		return "", false
	}
	s, err := resp.ToString()
	if err != nil {
		return "", false
	}
	return s, true
}

// Put implements Cache, swallowing write failures for the same reason Get
// treats a miss as silent: a memoization cache is never load-bearing.
func (c *redisCache) Put(path string, size int64, modTimeUnixNano int64, hash string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	cmd := c.client.B().Set().Key(key(path, size, modTimeUnixNano)).Value(hash).Build()
	_ = c.client.Do(ctx, cmd).Error()
}

// Close releases the underlying client connection.
func (c *redisCache) Close() {
	c.client.Close()
}
