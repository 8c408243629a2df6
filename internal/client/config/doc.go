// Package config loads runtime configuration for the storefront CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON or YAML file selected via -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # File schema
//
// Durations use timex.Duration, so values can be strings like "300ms" or
// integer nanoseconds. Omitted keys keep their defaults:
//
//	{
//	  "storage": "sqlite",
//	  "db_path": "/var/lib/storefront/storefront.db",
//	  "token_ttl": "12h",
//	  "latency": {"auth": "1s", "mutate": "300ms"},
//	  "log_backend": "zap",
//	  "log_level": "debug"
//	}
//
// The same keys are accepted in YAML when the file ends in .yaml or .yml.
//
// Note: This package does not read environment variables directly.
package config
