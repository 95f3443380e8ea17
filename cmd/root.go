package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/softglow/assetdb/internal/app"
	"github.com/softglow/assetdb/internal/builtin"
	"github.com/softglow/assetdb/internal/config"
)

var (
	version = "dev"
	cfgFile string
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "assetdb",
	Short: "A typed, label-scoped asset registry",
	Long: `assetdb groups assets under labels, loads each label once, and
indexes every asset under the 64-bit type key of its concrete type and
each declared ancestor type. Assets come from a YAML manifest or a
SQLite database, selected in the configuration.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/assetdb/config.yaml)")
	rootCmd.PersistentFlags().StringP("manifest", "m", "",
		"path to the assets.yaml manifest (implies the manifest source)")
	rootCmd.PersistentFlags().String("db", "",
		"path to the sqlite database (implies the sqlite source)")
	rootCmd.PersistentFlags().Bool("debug", false,
		"write the structured debug log")

	_ = viper.BindPFlag("source.manifest_path", rootCmd.PersistentFlags().Lookup("manifest"))
	_ = viper.BindPFlag("source.db_path", rootCmd.PersistentFlags().Lookup("db"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("source.kind", defaults.Source.Kind)
	viper.SetDefault("source.manifest_path", defaults.Source.ManifestPath)
	viper.SetDefault("source.db_path", defaults.Source.DBPath)
	viper.SetDefault("source.decode_cache", defaults.Source.DecodeCache)
	viper.SetDefault("source.decode_cache_ttl", defaults.Source.DecodeCacheTTL)
	viper.SetDefault("watch.debounce", defaults.Watch.Debounce)
	viper.SetDefault("tracing.enabled", defaults.Tracing.Enabled)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.service_name", defaults.Tracing.ServiceName)
	viper.SetDefault("debug", defaults.Debug)
	viper.SetDefault("debug_log_path", defaults.DebugLogPath)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .assetdb/config.yaml (current directory)
		// 2. ~/.config/assetdb/config.yaml (user config)
		if _, err := os.Stat(".assetdb/config.yaml"); err == nil {
			viper.SetConfigFile(".assetdb/config.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "assetdb"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		// No config file found anywhere - create default at .assetdb/config.yaml
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			defaultPath := ".assetdb/config.yaml"
			if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
				viper.SetConfigFile(defaultPath)
				_ = viper.ReadInConfig()
			}
			// If write fails, just continue with defaults (no config file)
		}
	}

	_ = viper.Unmarshal(&cfg)

	// An explicit --db picks the sqlite source; --manifest picks the
	// manifest source. Flags win over the configured kind.
	if rootCmd.PersistentFlags().Changed("db") {
		cfg.Source.Kind = config.SourceSQLite
	} else if rootCmd.PersistentFlags().Changed("manifest") {
		cfg.Source.Kind = config.SourceManifest
	}
}

// newApp builds the application from the resolved configuration with
// the built-in asset kinds.
func newApp() (*app.App, error) {
	return app.New(cfg, builtin.Kinds())
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
