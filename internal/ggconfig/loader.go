package ggconfig

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Loader hydrates Config while respecting env (GG_*) > file > default
// precedence, the same contract the rest of this corpus's config loaders use.
type Loader struct {
	envPrefix string
	files     []string
}

// NewLoader prepares a config hydrator. files is optional: gg normally runs
// unconfigured, driven entirely by GG_* environment variables.
func NewLoader(envPrefix string, files ...string) *Loader {
	return &Loader{envPrefix: envPrefix, files: files}
}

// Load assembles the effective configuration.
func (l *Loader) Load() (Config, error) {
	def := DefaultConfig()
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(structToMap(def), "."), nil); err != nil {
		return Config{}, fmt.Errorf("ggconfig: load defaults: %w", err)
	}

	for _, path := range l.files {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return Config{}, fmt.Errorf("ggconfig: file %s not found", path)
			}
			return Config{}, fmt.Errorf("ggconfig: stat %s: %w", path, err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("ggconfig: load file %s: %w", path, err)
		}
	}

	if l.envPrefix != "" {
		// canonical maps an env var's underscore-joined, lowercased suffix (the
		// form produced below before any dotting) to its dotted koanf key. Every
		// nested field gg.Config exposes over the environment needs an entry
		// here, since splitting on "_" alone is ambiguous (cache_backend could
		// mean cache.backend or a top-level cachebackend field).
		canonical := map[string]string{
			"cache_backend":        "cache.backend",
			"cache_redis_address":  "cache.redis.address",
			"cache_redis_username": "cache.redis.username",
			"cache_redis_password": "cache.redis.password",
			"cache_redis_db":       "cache.redis.db",
			"binpath":              "binPath",
			"logging_level":        "logging.level",
			"logging_format":       "logging.format",
			"metrics_textfilepath": "metrics.textfilePath",
		}
		transform := func(s string) string {
			key := strings.ToLower(strings.TrimPrefix(s, l.envPrefix+"_"))
			if mapped, ok := canonical[key]; ok {
				return mapped
			}
			return key
		}
		if err := k.Load(env.Provider(l.envPrefix+"_", ".", transform), nil); err != nil {
			return Config{}, fmt.Errorf("ggconfig: load env: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("ggconfig: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func structToMap(cfg Config) map[string]any {
	return map[string]any{
		"cache": map[string]any{
			"backend": cfg.Cache.Backend,
			"redis": map[string]any{
				"address":  cfg.Cache.Redis.Address,
				"username": cfg.Cache.Redis.Username,
				"password": cfg.Cache.Redis.Password,
				"db":       cfg.Cache.Redis.DB,
			},
		},
		"binPath": cfg.BinPath,
		"logging": map[string]any{
			"level":  cfg.Logging.Level,
			"format": cfg.Logging.Format,
		},
		"metrics": map[string]any{
			"textfilePath": cfg.Metrics.TextfilePath,
		},
	}
}
