package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/storefront/internal/client/simulate"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseFile_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"storage":    "redis",
		"redis_addr": "cache:6379",
		"redis_db":   2,
		"token_ttl":  "2h",
		"fault_rate": 0.1,
		"latency": map[string]any{
			"auth":   "50ms",
			"mutate": 1000000,
		},
	})

	t.Run("loads JSON from flags", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseFile(cfg)

		assert.Equal(t, "redis", cfg.Storage)
		assert.Equal(t, "cache:6379", cfg.RedisAddr)
		assert.Equal(t, 2, cfg.RedisDB)
		assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
		assert.InDelta(t, 0.1, cfg.FaultRate, 1e-9)
		assert.Equal(t, 50*time.Millisecond, cfg.Latency.Auth)
		assert.Equal(t, time.Millisecond, cfg.Latency.Mutate)
		assert.Equal(t, simulate.DefaultLatency().Read, cfg.Latency.Read, "absent keys keep defaults")
		assert.Equal(t, "slog", cfg.LogBackend)
	})

	t.Run("loads YAML by extension", func(t *testing.T) {
		path := filepath.Join(dir, "cfg.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
storage: sqlite
db_path: /data/shop.db
log_backend: zap
latency:
  read: 0s
  catalog_list: 2s
`), 0o600))
		os.Args = []string{"testbin", "-c", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseFile(cfg)

		assert.Equal(t, "/data/shop.db", cfg.DBPath)
		assert.Equal(t, "zap", cfg.LogBackend)
		assert.Zero(t, cfg.Latency.Read)
		assert.Equal(t, 2*time.Second, cfg.Latency.CatalogList)
		assert.Equal(t, time.Second, cfg.Latency.Auth)
	})

	t.Run("no config flag → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{Storage: "defaults", TokenTTL: 42 * time.Second}
		parseFile(cfg)

		assert.Equal(t, "defaults", cfg.Storage)
		assert.Equal(t, 42*time.Second, cfg.TokenTTL)
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseFile(cfg) })
	})

	t.Run("missing file → panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(dir, "absent.json")}
		require.Panics(t, func() { parseFile(&Config{}) })
	})
}
