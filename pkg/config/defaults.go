package config

import (
	"strings"
	"time"

	"github.com/streamshard/megaflow/pkg/controlplane/api"
	"github.com/streamshard/megaflow/pkg/controlplane/store"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	applyClusterDefaults(&cfg.Cluster)
	applyControlIngestionDefaults(&cfg.ControlIngestion)
	applyMetricsDefaults(&cfg.Metrics)
	cfg.Database.ApplyDefaults()

	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyTelemetryDefaults sets OpenTelemetry defaults.
func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}
}

// applyClusterDefaults sets worker cluster defaults.
func applyClusterDefaults(cfg *ClusterConfig) {
	if cfg.Workers == 0 {
		cfg.Workers = 4
	}
	if cfg.BinBits == 0 {
		cfg.BinBits = 8
	}
}

// applyControlIngestionDefaults sets control ingestion HTTP server defaults.
func applyControlIngestionDefaults(cfg *api.APIConfig) {
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
}

// applyMetricsDefaults sets metrics defaults.
func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Enabled && cfg.Port == 0 {
		cfg.Port = 9090
	}
}

// GetDefaultConfig returns a Config struct with all default values applied.
// Useful for generating sample configuration files and as the zero-config
// fallback when no config file is found.
func GetDefaultConfig() *Config {
	cfg := &Config{
		Cluster: ClusterConfig{
			Workers: 4,
			BinBits: 8,
		},
		ControlIngestion: api.APIConfig{
			Enabled: true,
		},
		Database: defaultDatabaseConfig(),
	}
	ApplyDefaults(cfg)
	return cfg
}

// defaultDatabaseConfig returns connection settings suitable for a local
// development PostgreSQL instance.
func defaultDatabaseConfig() store.Config {
	return store.Config{
		Host:     "localhost",
		Port:     5432,
		Database: "megaflow",
		User:     "megaflow",
		SSLMode:  "disable",
	}
}
