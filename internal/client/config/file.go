package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/storefront/internal/flagx"
	"github.com/dmitrijs2005/storefront/internal/timex"
)

// FileConfig is a DTO used exclusively for decoding config files. Absent
// fields leave the corresponding Config value untouched.
type FileConfig struct {
	Storage   string `json:"storage" yaml:"storage"`
	DBPath    string `json:"db_path" yaml:"db_path"`
	RedisAddr string `json:"redis_addr" yaml:"redis_addr"`
	RedisDB   *int   `json:"redis_db" yaml:"redis_db"`

	TokenSecret string          `json:"token_secret" yaml:"token_secret"`
	TokenTTL    *timex.Duration `json:"token_ttl" yaml:"token_ttl"`

	Latency   *LatencyConfig `json:"latency" yaml:"latency"`
	FaultRate *float64       `json:"fault_rate" yaml:"fault_rate"`

	LogBackend string `json:"log_backend" yaml:"log_backend"`
	LogLevel   string `json:"log_level" yaml:"log_level"`
}

// LatencyConfig overrides individual simulated delays.
type LatencyConfig struct {
	Auth         *timex.Duration `json:"auth" yaml:"auth"`
	Read         *timex.Duration `json:"read" yaml:"read"`
	Mutate       *timex.Duration `json:"mutate" yaml:"mutate"`
	Remove       *timex.Duration `json:"remove" yaml:"remove"`
	CatalogGet   *timex.Duration `json:"catalog_get" yaml:"catalog_get"`
	CatalogList  *timex.Duration `json:"catalog_list" yaml:"catalog_list"`
	CatalogWrite *timex.Duration `json:"catalog_write" yaml:"catalog_write"`
}

// parseFile overlays cfg with the file named by -c/-config. Files ending in
// .yaml or .yml are decoded as YAML, everything else as JSON. Read or decode
// errors panic; the caller is expected to treat them as fatal.
func parseFile(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		panic(err)
	}

	fc.apply(cfg)
}

func (fc *FileConfig) apply(cfg *Config) {
	setString(&cfg.Storage, fc.Storage)
	setString(&cfg.DBPath, fc.DBPath)
	setString(&cfg.RedisAddr, fc.RedisAddr)
	if fc.RedisDB != nil {
		cfg.RedisDB = *fc.RedisDB
	}
	setString(&cfg.TokenSecret, fc.TokenSecret)
	if fc.TokenTTL != nil {
		cfg.TokenTTL = fc.TokenTTL.Duration
	}
	if fc.FaultRate != nil {
		cfg.FaultRate = *fc.FaultRate
	}
	setString(&cfg.LogBackend, fc.LogBackend)
	setString(&cfg.LogLevel, fc.LogLevel)

	if l := fc.Latency; l != nil {
		setDuration(&cfg.Latency.Auth, l.Auth)
		setDuration(&cfg.Latency.Read, l.Read)
		setDuration(&cfg.Latency.Mutate, l.Mutate)
		setDuration(&cfg.Latency.Remove, l.Remove)
		setDuration(&cfg.Latency.CatalogGet, l.CatalogGet)
		setDuration(&cfg.Latency.CatalogList, l.CatalogList)
		setDuration(&cfg.Latency.CatalogWrite, l.CatalogWrite)
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = v.Duration
	}
}
