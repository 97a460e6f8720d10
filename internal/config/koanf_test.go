// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	// Server defaults
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Server.Timeout != 30*time.Second {
		t.Errorf("Server.Timeout = %v, want 30s", cfg.Server.Timeout)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "*" {
		t.Errorf("Server.CORSOrigins = %v, want [*]", cfg.Server.CORSOrigins)
	}
	if cfg.Server.RateLimitReqs != 100 {
		t.Errorf("Server.RateLimitReqs = %d, want 100", cfg.Server.RateLimitReqs)
	}

	// Database defaults
	if cfg.Database.Path != "/data/carbonlog.duckdb" {
		t.Errorf("Database.Path = %q, want /data/carbonlog.duckdb", cfg.Database.Path)
	}
	if cfg.Database.MaxMemory != "1GB" {
		t.Errorf("Database.MaxMemory = %q, want 1GB", cfg.Database.MaxMemory)
	}
	if cfg.Database.Threads != 0 {
		t.Errorf("Database.Threads = %d, want 0", cfg.Database.Threads)
	}

	// Catalog defaults
	if cfg.Catalog.Path != "/data/catalog" {
		t.Errorf("Catalog.Path = %q, want /data/catalog", cfg.Catalog.Path)
	}

	// Backup defaults
	if cfg.Backup.Dir != "/data/backups" {
		t.Errorf("Backup.Dir = %q, want /data/backups", cfg.Backup.Dir)
	}
	if !cfg.Backup.CompressionEnabled {
		t.Errorf("Backup.CompressionEnabled should be true by default")
	}
	if cfg.Backup.CompressionLevel != -1 {
		t.Errorf("Backup.CompressionLevel = %d, want -1", cfg.Backup.CompressionLevel)
	}
	if cfg.Backup.Retention.MaxAgeDays != 90 {
		t.Errorf("Backup.Retention.MaxAgeDays = %d, want 90", cfg.Backup.Retention.MaxAgeDays)
	}
	if cfg.Backup.Retention.MaxCount != 20 {
		t.Errorf("Backup.Retention.MaxCount = %d, want 20", cfg.Backup.Retention.MaxCount)
	}
	if cfg.Backup.Schedule.Enabled {
		t.Errorf("Backup.Schedule.Enabled should be false by default")
	}
	if cfg.Backup.Schedule.Interval != 24*time.Hour {
		t.Errorf("Backup.Schedule.Interval = %v, want 24h", cfg.Backup.Schedule.Interval)
	}
	if cfg.Backup.Schedule.PreferredHour != 2 {
		t.Errorf("Backup.Schedule.PreferredHour = %d, want 2", cfg.Backup.Schedule.PreferredHour)
	}
	if cfg.Backup.Schedule.BackupType != "full" {
		t.Errorf("Backup.Schedule.BackupType = %q, want full", cfg.Backup.Schedule.BackupType)
	}

	// API defaults
	if cfg.API.DefaultPageSize != 50 {
		t.Errorf("API.DefaultPageSize = %d, want 50", cfg.API.DefaultPageSize)
	}
	if cfg.API.MaxPageSize != 500 {
		t.Errorf("API.MaxPageSize = %d, want 500", cfg.API.MaxPageSize)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want json", cfg.Logging.Format)
	}

	// Defaults must validate on their own
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config failed validation: %v", err)
	}
}

// TestEnvTransformFunc verifies environment variable name transformations
func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// Server
		{"CARBONLOG_HTTP_PORT", "server.port"},
		{"CARBONLOG_HTTP_HOST", "server.host"},
		{"CARBONLOG_HTTP_TIMEOUT", "server.timeout"},
		{"CARBONLOG_CORS_ORIGINS", "server.cors_origins"},
		{"CARBONLOG_RATE_LIMIT_REQUESTS", "server.rate_limit_reqs"},
		{"CARBONLOG_DISABLE_RATE_LIMIT", "server.rate_limit_disabled"},

		// Database
		{"CARBONLOG_DB_PATH", "database.path"},
		{"CARBONLOG_DB_MAX_MEMORY", "database.max_memory"},
		{"CARBONLOG_DB_THREADS", "database.threads"},

		// Catalog and backup
		{"CARBONLOG_CATALOG_PATH", "catalog.path"},
		{"CARBONLOG_BACKUP_DIR", "backup.dir"},
		{"CARBONLOG_BACKUP_COMPRESSION", "backup.compression_enabled"},
		{"CARBONLOG_RETENTION_MAX_AGE_DAYS", "backup.retention.max_age_days"},
		{"CARBONLOG_RETENTION_MAX_COUNT", "backup.retention.max_count"},
		{"CARBONLOG_SCHEDULE_ENABLED", "backup.schedule.enabled"},
		{"CARBONLOG_SCHEDULE_INTERVAL", "backup.schedule.interval"},
		{"CARBONLOG_SCHEDULE_PREFERRED_HOUR", "backup.schedule.preferred_hour"},
		{"CARBONLOG_SCHEDULE_BACKUP_TYPE", "backup.schedule.backup_type"},

		// API
		{"CARBONLOG_API_DEFAULT_PAGE_SIZE", "api.default_page_size"},
		{"CARBONLOG_API_MAX_PAGE_SIZE", "api.max_page_size"},

		// Logging
		{"CARBONLOG_LOG_LEVEL", "logging.level"},
		{"CARBONLOG_LOG_FORMAT", "logging.format"},

		// Unknown (should return empty)
		{"CARBONLOG_RANDOM_VAR", ""},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := envTransformFunc(tt.input)
			if result != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

// TestFindConfigFile verifies config file discovery
func TestFindConfigFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	defer func() {
		if err := os.Chdir(origDir); err != nil {
			t.Errorf("Failed to restore working directory: %v", err)
		}
	}()

	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change to temp directory: %v", err)
	}

	t.Run("no config file exists", func(t *testing.T) {
		os.Unsetenv(ConfigPathEnvVar)
		result := findConfigFile()
		if result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})

	t.Run("config.yaml exists", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, "config.yaml")
		if err := os.WriteFile(configPath, []byte("test: true"), 0644); err != nil {
			t.Fatalf("Failed to create config file: %v", err)
		}
		defer os.Remove(configPath)

		os.Unsetenv(ConfigPathEnvVar)
		result := findConfigFile()
		if result != "config.yaml" {
			t.Errorf("findConfigFile() = %q, want config.yaml", result)
		}
	})

	t.Run("CONFIG_PATH env var takes precedence", func(t *testing.T) {
		customPath := filepath.Join(tmpDir, "custom_config.yaml")
		if err := os.WriteFile(customPath, []byte("test: true"), 0644); err != nil {
			t.Fatalf("Failed to create custom config file: %v", err)
		}
		defer os.Remove(customPath)

		os.Setenv(ConfigPathEnvVar, customPath)
		defer os.Unsetenv(ConfigPathEnvVar)

		result := findConfigFile()
		if result != customPath {
			t.Errorf("findConfigFile() = %q, want %q", result, customPath)
		}
	})

	t.Run("CONFIG_PATH env var with non-existent file", func(t *testing.T) {
		os.Setenv(ConfigPathEnvVar, "/non/existent/config.yaml")
		defer os.Unsetenv(ConfigPathEnvVar)

		result := findConfigFile()
		if result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})
}

// TestLoadWithKoanfEnvVars tests loading configuration from environment variables
func TestLoadWithKoanfEnvVars(t *testing.T) {
	os.Clearenv()

	os.Setenv("CARBONLOG_HTTP_PORT", "9000")
	os.Setenv("CARBONLOG_LOG_LEVEL", "debug")
	os.Setenv("CARBONLOG_BACKUP_DIR", "/tmp/backups")
	os.Setenv("CARBONLOG_RETENTION_MAX_COUNT", "5")
	os.Setenv("CARBONLOG_CORS_ORIGINS", "http://localhost:3000, http://tracker.local")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	// Verify overrides
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Backup.Dir != "/tmp/backups" {
		t.Errorf("Backup.Dir = %q, want /tmp/backups", cfg.Backup.Dir)
	}
	if cfg.Backup.Retention.MaxCount != 5 {
		t.Errorf("Backup.Retention.MaxCount = %d, want 5", cfg.Backup.Retention.MaxCount)
	}

	// Comma-separated origins become a trimmed slice
	wantOrigins := []string{"http://localhost:3000", "http://tracker.local"}
	if len(cfg.Server.CORSOrigins) != len(wantOrigins) {
		t.Fatalf("Server.CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, wantOrigins)
	}
	for i, want := range wantOrigins {
		if cfg.Server.CORSOrigins[i] != want {
			t.Errorf("Server.CORSOrigins[%d] = %q, want %q", i, cfg.Server.CORSOrigins[i], want)
		}
	}

	// Verify defaults are still applied for unset values
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0 (default)", cfg.Server.Host)
	}
	if cfg.Database.MaxMemory != "1GB" {
		t.Errorf("Database.MaxMemory = %q, want 1GB (default)", cfg.Database.MaxMemory)
	}
	if cfg.Backup.Retention.MaxAgeDays != 90 {
		t.Errorf("Backup.Retention.MaxAgeDays = %d, want 90 (default)", cfg.Backup.Retention.MaxAgeDays)
	}
}

// TestLoadWithKoanfConfigFile tests loading configuration from a YAML file
func TestLoadWithKoanfConfigFile(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	configContent := `
server:
  port: 8888
  host: "127.0.0.1"

backup:
  dir: "/var/lib/carbonlog/backups"
  retention:
    max_age_days: 30
    max_count: 10

logging:
  level: "warn"
`
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}

	os.Clearenv()
	os.Setenv(ConfigPathEnvVar, configPath)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 8888 {
		t.Errorf("Server.Port = %d, want 8888", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want 127.0.0.1", cfg.Server.Host)
	}
	if cfg.Backup.Dir != "/var/lib/carbonlog/backups" {
		t.Errorf("Backup.Dir = %q, want /var/lib/carbonlog/backups", cfg.Backup.Dir)
	}
	if cfg.Backup.Retention.MaxAgeDays != 30 {
		t.Errorf("Backup.Retention.MaxAgeDays = %d, want 30", cfg.Backup.Retention.MaxAgeDays)
	}
	if cfg.Backup.Retention.MaxCount != 10 {
		t.Errorf("Backup.Retention.MaxCount = %d, want 10", cfg.Backup.Retention.MaxCount)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}

	// Unset values fall through to defaults
	if cfg.Database.Path != "/data/carbonlog.duckdb" {
		t.Errorf("Database.Path = %q, want default", cfg.Database.Path)
	}
}

// TestLoadWithKoanfPrecedence verifies env vars override the config file
func TestLoadWithKoanfPrecedence(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	configContent := `
server:
  port: 7000
logging:
  level: "error"
`
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}

	os.Clearenv()
	os.Setenv(ConfigPathEnvVar, configPath)
	os.Setenv("CARBONLOG_HTTP_PORT", "7001")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	// Env wins over file
	if cfg.Server.Port != 7001 {
		t.Errorf("Server.Port = %d, want 7001 (env overrides file)", cfg.Server.Port)
	}
	// File wins over default
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, want error (file overrides default)", cfg.Logging.Level)
	}
}

// TestLoadWithKoanfInvalidConfig verifies validation failures surface
func TestLoadWithKoanfInvalidConfig(t *testing.T) {
	os.Clearenv()
	os.Setenv("CARBONLOG_HTTP_PORT", "99999")

	if _, err := LoadWithKoanf(); err == nil {
		t.Error("LoadWithKoanf() should fail with out-of-range port")
	}
}
