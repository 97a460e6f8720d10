// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

package config

import (
	"compress/gzip"
	"fmt"
	"time"
)

// Retention bound constants
const (
	retentionMinAgeDays = 1
	retentionMinCount   = 1
	retentionMaxCount   = 1000
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateDatabase(); err != nil {
		return err
	}

	if err := c.validateBackup(); err != nil {
		return err
	}

	if err := c.validateAPI(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateServer validates HTTP server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("CARBONLOG_HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("CARBONLOG_HTTP_TIMEOUT must be positive")
	}
	if !c.Server.RateLimitDisabled {
		if c.Server.RateLimitReqs < 1 {
			return fmt.Errorf("CARBONLOG_RATE_LIMIT_REQUESTS must be at least 1")
		}
		if c.Server.RateLimitWindow <= 0 {
			return fmt.Errorf("CARBONLOG_RATE_LIMIT_WINDOW must be positive")
		}
	}
	return nil
}

// validateDatabase validates activity database configuration
func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("CARBONLOG_DB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("CARBONLOG_DB_THREADS must not be negative")
	}
	return nil
}

// validateBackup validates backup, retention and schedule configuration
func (c *Config) validateBackup() error {
	if c.Backup.Dir == "" {
		return fmt.Errorf("CARBONLOG_BACKUP_DIR is required")
	}
	if c.Backup.CompressionLevel < gzip.HuffmanOnly || c.Backup.CompressionLevel > gzip.BestCompression {
		return fmt.Errorf("CARBONLOG_BACKUP_COMPRESSION_LEVEL must be between %d and %d",
			gzip.HuffmanOnly, gzip.BestCompression)
	}

	if err := c.validateRetention(); err != nil {
		return err
	}
	return c.validateSchedule()
}

// validateRetention validates retention bounds
func (c *Config) validateRetention() error {
	r := c.Backup.Retention
	if r.MaxAgeDays < retentionMinAgeDays {
		return fmt.Errorf("CARBONLOG_RETENTION_MAX_AGE_DAYS must be at least %d", retentionMinAgeDays)
	}
	if r.MaxCount < retentionMinCount || r.MaxCount > retentionMaxCount {
		return fmt.Errorf("CARBONLOG_RETENTION_MAX_COUNT must be between %d and %d",
			retentionMinCount, retentionMaxCount)
	}
	return nil
}

// validBackupTypes defines the backup types the scheduler may produce
var validBackupTypes = map[string]bool{
	"full":         true,
	"incremental":  true,
	"differential": true,
}

// validateSchedule validates scheduler configuration (only if enabled)
func (c *Config) validateSchedule() error {
	s := c.Backup.Schedule
	if !s.Enabled {
		return nil
	}

	if s.Interval < time.Minute {
		return fmt.Errorf("CARBONLOG_SCHEDULE_INTERVAL must be at least 1m")
	}
	if s.PreferredHour < 0 || s.PreferredHour > 23 {
		return fmt.Errorf("CARBONLOG_SCHEDULE_PREFERRED_HOUR must be between 0 and 23")
	}
	if !validBackupTypes[s.BackupType] {
		return fmt.Errorf("CARBONLOG_SCHEDULE_BACKUP_TYPE must be one of: full, incremental, differential")
	}
	return nil
}

// validateAPI validates pagination configuration
func (c *Config) validateAPI() error {
	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("CARBONLOG_API_DEFAULT_PAGE_SIZE must be at least 1")
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("CARBONLOG_API_MAX_PAGE_SIZE must not be smaller than the default page size")
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("CARBONLOG_LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("CARBONLOG_LOG_FORMAT must be one of: json, console")
	}
	return nil
}
