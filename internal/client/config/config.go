package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/storefront/internal/client/simulate"
	"github.com/dmitrijs2005/storefront/internal/logging"
)

// Storage backends.
const (
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
)

// Config holds runtime settings for the storefront CLI.
//
// Units: TokenTTL and the Latency fields are time.Duration values.
type Config struct {
	Storage   string
	DBPath    string
	RedisAddr string
	RedisDB   int

	TokenSecret string
	TokenTTL    time.Duration

	Latency   simulate.Latency
	FaultRate float64

	LogBackend string
	LogLevel   string
}

// DefaultDBPath is storefront.db under the user config directory, or in the
// working directory when that cannot be determined.
func DefaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "storefront.db"
	}
	return filepath.Join(dir, "storefront", "storefront.db")
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Storage = StorageSQLite
	c.DBPath = DefaultDBPath()
	c.RedisAddr = "127.0.0.1:6379"
	c.RedisDB = 0
	c.TokenSecret = ""
	c.TokenTTL = 24 * time.Hour
	c.Latency = simulate.DefaultLatency()
	c.FaultRate = 0
	c.LogBackend = logging.BackendSlog
	c.LogLevel = "warn"
}

// Validate reports settings that cannot be used.
func (c *Config) Validate() error {
	switch c.Storage {
	case StorageSQLite:
		if c.DBPath == "" {
			return fmt.Errorf("db path is required for %s storage", c.Storage)
		}
	case StorageRedis:
		if c.RedisAddr == "" {
			return fmt.Errorf("redis address is required for %s storage", c.Storage)
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage)
	}
	if c.FaultRate < 0 || c.FaultRate > 1 {
		return fmt.Errorf("fault rate must be within [0, 1], got %v", c.FaultRate)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive, got %s", c.TokenTTL)
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// a JSON or YAML file (if given) and command-line flags (if present). Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)
	parseFlags(cfg)
	return cfg
}
