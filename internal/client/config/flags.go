package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/storefront/internal/client/simulate"
	"github.com/dmitrijs2005/storefront/internal/flagx"
)

var knownFlags = []string{
	"-s", "-d", "-r", "-rdb", "-secret", "-ttl", "-nodelay", "-faults", "-log", "-level",
}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-s string      storage backend: sqlite or redis
//	-d string      SQLite database path
//	-r string      Redis address (host:port)
//	-rdb int       Redis logical database
//	-secret string session token signing secret
//	-ttl duration  session lifetime, e.g. 12h
//	-nodelay       disable simulated latency
//	-faults float  probability of a simulated remote failure per call
//	-log string    log backend: slog or zap
//	-level string  log level: debug, info, warn or error
//
// The function filters os.Args to the flags it knows about, using
// flagx.FilterArgs, so -c/-config and unknown arguments do not interfere.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.Storage, "s", cfg.Storage, "storage backend (sqlite|redis)")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "Redis address")
	fs.IntVar(&cfg.RedisDB, "rdb", cfg.RedisDB, "Redis database number")
	fs.StringVar(&cfg.TokenSecret, "secret", cfg.TokenSecret, "session token secret")
	fs.DurationVar(&cfg.TokenTTL, "ttl", cfg.TokenTTL, "session lifetime")
	noDelay := fs.Bool("nodelay", false, "disable simulated latency")
	fs.Float64Var(&cfg.FaultRate, "faults", cfg.FaultRate, "simulated failure rate (0..1)")
	fs.StringVar(&cfg.LogBackend, "log", cfg.LogBackend, "log backend (slog|zap)")
	fs.StringVar(&cfg.LogLevel, "level", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	if *noDelay {
		cfg.Latency = simulate.Latency{}
	}
}
