package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// defaultConfigTemplate is written verbatim so a fresh config file keeps
// its explanatory comments.
const defaultConfigTemplate = `# assetdb configuration
source:
  # "manifest" reads assets.yaml; "sqlite" reads an asset database.
  kind: manifest
  manifest_path: assets.yaml
  db_path: assets.db
  decode_cache: true
  decode_cache_ttl: 10m

watch:
  debounce: 1s

tracing:
  enabled: false
  exporter: file
  sample_rate: 1.0
  service_name: assetdb

debug: false
debug_log_path: assetdb.log
`

// WriteDefaultConfig creates a commented default config file at path,
// creating parent directories as needed. Existing files are left alone.
func WriteDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
