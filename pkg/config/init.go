package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// configTemplate is the commented YAML scaffold written by InitConfig /
// InitConfigToPath — enough to start a single-process cluster against a
// local Postgres instance, with every section a new deployment needs to
// review before going further than a laptop.
const configTemplate = `# Megaflow Configuration File
#
# This file configures the worker cluster, the control ingestion service,
# and the ambient stack (logging, telemetry, metrics).

logging:
  level: INFO
  format: text
  output: stdout

telemetry:
  enabled: false
  endpoint: localhost:4317
  insecure: true
  sample_rate: 1.0

shutdown_timeout: 30s

cluster:
  workers: 4
  bin_bits: 8

control_ingestion:
  enabled: true
  port: 8080
  read_timeout: 10s
  write_timeout: 10s
  idle_timeout: 60s

database:
  host: localhost
  port: 5432
  database: megaflow
  user: megaflow
  password: ""
  sslmode: disable

metrics:
  enabled: false
  port: 9090
`

// InitConfig writes the default configuration template to the default
// config path ($XDG_CONFIG_HOME/megaflow/config.yaml), refusing to
// overwrite an existing file unless force is set. Returns the path written.
func InitConfig(force bool) (string, error) {
	path := GetDefaultConfigPath()
	if err := InitConfigToPath(path, force); err != nil {
		return "", err
	}
	return path, nil
}

// InitConfigToPath writes the default configuration template to path,
// creating parent directories as needed. Refuses to overwrite an existing
// file unless force is set.
func InitConfigToPath(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
