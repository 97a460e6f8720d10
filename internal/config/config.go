// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

package config

import (
	"time"
)

// Config holds all application configuration loaded from defaults, an
// optional YAML config file, and CARBONLOG_-prefixed environment
// variables. See the package documentation for the full variable list.
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access
// from multiple goroutines.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Backup   BackupConfig   `koanf:"backup"`
	API      APIConfig      `koanf:"api"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host              string        `koanf:"host"`
	Port              int           `koanf:"port"`
	Timeout           time.Duration `koanf:"timeout"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// DatabaseConfig holds DuckDB settings for the activity store.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // Number of DuckDB threads (0 = use NumCPU)
}

// CatalogConfig holds the Badger backup catalog location.
type CatalogConfig struct {
	// Path is the directory for the Badger key-value store. Empty
	// selects an in-memory catalog, which is only useful for tests.
	Path string `koanf:"path"`
}

// BackupConfig holds backup archive, retention and schedule settings.
type BackupConfig struct {
	// Dir is the directory where backup archives are written.
	Dir string `koanf:"dir"`

	// CompressionEnabled gzips archive payloads. Archives record their
	// own compression so mixed directories restore correctly.
	CompressionEnabled bool `koanf:"compression_enabled"`

	// CompressionLevel is the gzip level, -2 (huffman only) to 9
	// (best compression). -1 selects the gzip default.
	CompressionLevel int `koanf:"compression_level"`

	Retention RetentionConfig `koanf:"retention"`
	Schedule  ScheduleConfig  `koanf:"schedule"`
}

// RetentionConfig bounds how many backups are kept and for how long.
type RetentionConfig struct {
	// MaxAgeDays expires backups older than this many days.
	MaxAgeDays int `koanf:"max_age_days"`

	// MaxCount caps the number of retained non-expired backups.
	MaxCount int `koanf:"max_count"`
}

// ScheduleConfig controls the automatic backup scheduler.
type ScheduleConfig struct {
	Enabled bool `koanf:"enabled"`

	// Interval is the minimum time between automatic backups.
	Interval time.Duration `koanf:"interval"`

	// PreferredHour aligns automatic backups to an hour of day (0-23)
	// when the interval is a day or longer.
	PreferredHour int `koanf:"preferred_hour"`

	// BackupType is the type of automatic backups: full, incremental
	// or differential.
	BackupType string `koanf:"backup_type"`
}

// APIConfig holds API pagination and response settings.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// LoggingConfig holds logging settings for zerolog.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// JSON is recommended for production (structured, machine-parseable).
	// Console is human-readable for development.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Adds slight performance overhead.
	// Default: false
	Caller bool `koanf:"caller"`
}

// Load reads configuration from all sources with the following precedence
// (highest to lowest):
//  1. Environment variables
//  2. Config file (config.yaml if it exists, or the CONFIG_PATH path)
//  3. Built-in defaults
//
// See LoadWithKoanf() for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
