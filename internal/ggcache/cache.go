package ggcache

import (
	"fmt"

	"github.com/alex-ozdemir/gg/internal/ggconfig"
)

// New builds the Cache cfg selects. An empty backend disables memoization
// entirely (New returns a nil Cache, which the caller treats as "always
// miss").
func New(cfg ggconfig.CacheConfig) (Cache, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "memory":
		return NewMemory(), nil
	case "redis":
		return NewRedis(RedisConfig{
			Address:  cfg.Redis.Address,
			Username: cfg.Redis.Username,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	default:
		return nil, fmt.Errorf("ggcache: unsupported cache backend %q", cfg.Backend)
	}
}
