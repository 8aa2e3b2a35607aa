package ggconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoader(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) []string
		wantErr bool
		assert  func(t *testing.T, cfg Config)
	}{
		{
			name:  "returns defaults when no overrides",
			setup: func(t *testing.T) []string { return nil },
			assert: func(t *testing.T, cfg Config) {
				require.Equal(t, "", cfg.Cache.Backend)
				require.Equal(t, "info", cfg.Logging.Level)
			},
		},
		{
			name: "merges file overrides",
			setup: func(t *testing.T) []string {
				dir := t.TempDir()
				path := filepath.Join(dir, "gg.yaml")
				require.NoError(t, os.WriteFile(path, []byte("cache:\n  backend: memory\n"), 0o600))
				return []string{path}
			},
			assert: func(t *testing.T, cfg Config) {
				require.Equal(t, "memory", cfg.Cache.Backend)
			},
		},
		{
			name: "prefers env overrides",
			setup: func(t *testing.T) []string {
				dir := t.TempDir()
				path := filepath.Join(dir, "gg.yaml")
				require.NoError(t, os.WriteFile(path, []byte("cache:\n  backend: memory\n"), 0o600))
				t.Setenv("GG_CACHE_BACKEND", "redis")
				return []string{path}
			},
			assert: func(t *testing.T, cfg Config) {
				require.Equal(t, "redis", cfg.Cache.Backend)
			},
		},
		{
			name: "rejects unsupported cache backend",
			setup: func(t *testing.T) []string {
				t.Setenv("GG_CACHE_BACKEND", "sqlite")
				return nil
			},
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			files := tc.setup(t)
			cfg, err := NewLoader("GG", files...).Load()
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tc.assert(t, cfg)
		})
	}
}
