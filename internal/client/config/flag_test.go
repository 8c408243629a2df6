package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/storefront/internal/client/simulate"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	defaults := func() *Config {
		c := &Config{}
		c.LoadDefaults()
		return c
	}

	tests := []struct {
		expected    func() *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{
			name: "redis backend",
			args: []string{"cmd", "-s", "redis", "-r", "10.0.0.5:6380", "-rdb", "3"},
			expected: func() *Config {
				c := defaults()
				c.Storage, c.RedisAddr, c.RedisDB = "redis", "10.0.0.5:6380", 3
				return c
			},
		},
		{
			name: "logging, ttl and faults",
			args: []string{"cmd", "-log=zap", "-level", "debug", "-ttl", "90m", "-faults", "0.25", "-secret", "s3"},
			expected: func() *Config {
				c := defaults()
				c.LogBackend, c.LogLevel = "zap", "debug"
				c.TokenTTL = 90 * time.Minute
				c.FaultRate = 0.25
				c.TokenSecret = "s3"
				return c
			},
		},
		{
			name: "nodelay zeroes latency",
			args: []string{"cmd", "-nodelay", "-d", "/tmp/x.db"},
			expected: func() *Config {
				c := defaults()
				c.Latency = simulate.Latency{}
				c.DBPath = "/tmp/x.db"
				return c
			},
		},
		{
			name:     "config file flag is ignored",
			args:     []string{"cmd", "-c", "cfg.json"},
			expected: defaults,
		},
		{name: "bad ttl", args: []string{"cmd", "-ttl", "soon"}, expectPanic: true},
		{name: "bad redis db", args: []string{"cmd", "-rdb", "abc"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			config := defaults()

			if tt.expectPanic {
				require.Panics(t, func() { parseFlags(config) })
				return
			}
			require.NotPanics(t, func() { parseFlags(config) })
			assert.Empty(t, cmp.Diff(tt.expected(), config))
		})
	}
}
