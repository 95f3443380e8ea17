// Package config provides configuration types, defaults, and persistence
// for assetdb.
package config

import (
	"fmt"
	"time"

	"github.com/softglow/assetdb/internal/tracing"
)

// Source kinds accepted in configuration.
const (
	SourceManifest = "manifest"
	SourceSQLite   = "sqlite"
)

// SourceConfig selects and configures the asset source.
type SourceConfig struct {
	// Kind is "manifest" or "sqlite".
	Kind string `mapstructure:"kind"`

	// ManifestPath is the assets.yaml path for the manifest source.
	ManifestPath string `mapstructure:"manifest_path"`

	// DBPath is the database path for the sqlite source.
	DBPath string `mapstructure:"db_path"`

	// DecodeCache controls whether decoded assets are shared between
	// registries reading the same manifest.
	DecodeCache bool `mapstructure:"decode_cache"`

	// DecodeCacheTTL bounds how long a decoded asset stays shared.
	DecodeCacheTTL time.Duration `mapstructure:"decode_cache_ttl"`
}

// WatchConfig configures the manifest watcher used by `assetdb watch`.
type WatchConfig struct {
	// Debounce coalesces bursts of file events into one rebuild.
	Debounce time.Duration `mapstructure:"debounce"`
}

// Config holds all configuration options for assetdb.
type Config struct {
	Source  SourceConfig   `mapstructure:"source"`
	Watch   WatchConfig    `mapstructure:"watch"`
	Tracing tracing.Config `mapstructure:"tracing"`

	// Debug enables the structured debug log.
	Debug bool `mapstructure:"debug"`

	// DebugLogPath is where the debug log is written.
	DebugLogPath string `mapstructure:"debug_log_path"`
}

// Defaults returns the default configuration.
func Defaults() Config {
	return Config{
		Source: SourceConfig{
			Kind:           SourceManifest,
			ManifestPath:   "assets.yaml",
			DBPath:         "assets.db",
			DecodeCache:    true,
			DecodeCacheTTL: 10 * time.Minute,
		},
		Watch: WatchConfig{
			Debounce: time.Second,
		},
		Tracing:      tracing.DefaultConfig(),
		Debug:        false,
		DebugLogPath: "assetdb.log",
	}
}

// Validate checks the configuration for contradictions.
func Validate(cfg Config) error {
	switch cfg.Source.Kind {
	case SourceManifest:
		if cfg.Source.ManifestPath == "" {
			return fmt.Errorf("source.manifest_path is required for the manifest source")
		}
	case SourceSQLite:
		if cfg.Source.DBPath == "" {
			return fmt.Errorf("source.db_path is required for the sqlite source")
		}
	default:
		return fmt.Errorf("unknown source.kind %q (want %q or %q)",
			cfg.Source.Kind, SourceManifest, SourceSQLite)
	}

	if cfg.Source.DecodeCacheTTL < 0 {
		return fmt.Errorf("source.decode_cache_ttl cannot be negative")
	}
	if cfg.Watch.Debounce <= 0 {
		return fmt.Errorf("watch.debounce must be positive")
	}
	return nil
}
