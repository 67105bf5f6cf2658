package config

import (
	"testing"
	"time"
)

func TestApplyDefaults_Logging(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Logging.Level != "INFO" {
		t.Errorf("Expected default log level 'INFO', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default log format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "stdout" {
		t.Errorf("Expected default log output 'stdout', got %q", cfg.Logging.Output)
	}
}

func TestApplyDefaults_ShutdownTimeout(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown timeout 30s, got %v", cfg.ShutdownTimeout)
	}
}

func TestApplyDefaults_ControlIngestion(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.ControlIngestion.Port != 8080 {
		t.Errorf("Expected default control ingestion port 8080, got %d", cfg.ControlIngestion.Port)
	}
	if cfg.ControlIngestion.ReadTimeout != 10*time.Second {
		t.Errorf("Expected default read timeout 10s, got %v", cfg.ControlIngestion.ReadTimeout)
	}
	if cfg.ControlIngestion.WriteTimeout != 10*time.Second {
		t.Errorf("Expected default write timeout 10s, got %v", cfg.ControlIngestion.WriteTimeout)
	}
	if cfg.ControlIngestion.IdleTimeout != 60*time.Second {
		t.Errorf("Expected default idle timeout 60s, got %v", cfg.ControlIngestion.IdleTimeout)
	}
}

func TestApplyDefaults_Cluster(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Cluster.Workers != 4 {
		t.Errorf("Expected default worker count 4, got %d", cfg.Cluster.Workers)
	}
	if cfg.Cluster.BinBits != 8 {
		t.Errorf("Expected default bin bits 8, got %d", cfg.Cluster.BinBits)
	}
}

func TestApplyDefaults_Database(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	if cfg.Database.Port != 5432 {
		t.Errorf("Expected default postgres port 5432, got %d", cfg.Database.Port)
	}
	if cfg.Database.SSLMode != "disable" {
		t.Errorf("Expected default sslmode 'disable', got %q", cfg.Database.SSLMode)
	}
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Logging: LoggingConfig{
			Level:  "DEBUG",
			Format: "json",
			Output: "/var/log/megaflow.log",
		},
		ShutdownTimeout: 60 * time.Second,
		Cluster: ClusterConfig{
			Workers: 16,
			BinBits: 10,
		},
	}

	ApplyDefaults(cfg)

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected explicit level 'DEBUG' to be preserved, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Expected explicit format 'json' to be preserved, got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Output != "/var/log/megaflow.log" {
		t.Errorf("Expected explicit output to be preserved, got %q", cfg.Logging.Output)
	}
	if cfg.ShutdownTimeout != 60*time.Second {
		t.Errorf("Expected explicit timeout 60s to be preserved, got %v", cfg.ShutdownTimeout)
	}
	if cfg.Cluster.Workers != 16 {
		t.Errorf("Expected explicit worker count 16 to be preserved, got %d", cfg.Cluster.Workers)
	}
	if cfg.Cluster.BinBits != 10 {
		t.Errorf("Expected explicit bin bits 10 to be preserved, got %d", cfg.Cluster.BinBits)
	}
}

func TestGetDefaultConfig_IsValid(t *testing.T) {
	cfg := GetDefaultConfig()

	if err := Validate(cfg); err != nil {
		t.Errorf("Default config should be valid, got error: %v", err)
	}
}

func TestGetDefaultConfig_HasRequiredFields(t *testing.T) {
	cfg := GetDefaultConfig()

	if cfg.Logging.Level == "" {
		t.Error("Default config missing logging level")
	}
	if cfg.ControlIngestion.Port == 0 {
		t.Error("Default config missing control ingestion port")
	}
	if cfg.Cluster.Workers == 0 {
		t.Error("Default config missing cluster worker count")
	}
	if cfg.Database.Database == "" {
		t.Error("Default config missing database name")
	}
}
