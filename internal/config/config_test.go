// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

package config

import (
	"strings"
	"testing"
	"time"
)

// TestValidate exercises validation of each configuration group
func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "valid defaults",
			mutate:  func(c *Config) {},
			wantErr: "",
		},
		{
			name:    "port too low",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: "CARBONLOG_HTTP_PORT",
		},
		{
			name:    "port too high",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "CARBONLOG_HTTP_PORT",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Server.Timeout = 0 },
			wantErr: "CARBONLOG_HTTP_TIMEOUT",
		},
		{
			name:    "zero rate limit",
			mutate:  func(c *Config) { c.Server.RateLimitReqs = 0 },
			wantErr: "CARBONLOG_RATE_LIMIT_REQUESTS",
		},
		{
			name: "zero rate limit allowed when disabled",
			mutate: func(c *Config) {
				c.Server.RateLimitReqs = 0
				c.Server.RateLimitDisabled = true
			},
			wantErr: "",
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantErr: "CARBONLOG_DB_PATH",
		},
		{
			name:    "negative database threads",
			mutate:  func(c *Config) { c.Database.Threads = -1 },
			wantErr: "CARBONLOG_DB_THREADS",
		},
		{
			name:    "missing backup dir",
			mutate:  func(c *Config) { c.Backup.Dir = "" },
			wantErr: "CARBONLOG_BACKUP_DIR",
		},
		{
			name:    "compression level too high",
			mutate:  func(c *Config) { c.Backup.CompressionLevel = 10 },
			wantErr: "CARBONLOG_BACKUP_COMPRESSION_LEVEL",
		},
		{
			name:    "compression level too low",
			mutate:  func(c *Config) { c.Backup.CompressionLevel = -3 },
			wantErr: "CARBONLOG_BACKUP_COMPRESSION_LEVEL",
		},
		{
			name:    "zero retention age",
			mutate:  func(c *Config) { c.Backup.Retention.MaxAgeDays = 0 },
			wantErr: "CARBONLOG_RETENTION_MAX_AGE_DAYS",
		},
		{
			name:    "zero retention count",
			mutate:  func(c *Config) { c.Backup.Retention.MaxCount = 0 },
			wantErr: "CARBONLOG_RETENTION_MAX_COUNT",
		},
		{
			name:    "retention count over cap",
			mutate:  func(c *Config) { c.Backup.Retention.MaxCount = 1001 },
			wantErr: "CARBONLOG_RETENTION_MAX_COUNT",
		},
		{
			name: "schedule interval too short",
			mutate: func(c *Config) {
				c.Backup.Schedule.Enabled = true
				c.Backup.Schedule.Interval = 30 * time.Second
			},
			wantErr: "CARBONLOG_SCHEDULE_INTERVAL",
		},
		{
			name: "schedule preferred hour out of range",
			mutate: func(c *Config) {
				c.Backup.Schedule.Enabled = true
				c.Backup.Schedule.PreferredHour = 24
			},
			wantErr: "CARBONLOG_SCHEDULE_PREFERRED_HOUR",
		},
		{
			name: "schedule unknown backup type",
			mutate: func(c *Config) {
				c.Backup.Schedule.Enabled = true
				c.Backup.Schedule.BackupType = "hourly"
			},
			wantErr: "CARBONLOG_SCHEDULE_BACKUP_TYPE",
		},
		{
			name: "disabled schedule skips schedule validation",
			mutate: func(c *Config) {
				c.Backup.Schedule.Enabled = false
				c.Backup.Schedule.Interval = 0
				c.Backup.Schedule.BackupType = "bogus"
			},
			wantErr: "",
		},
		{
			name:    "zero default page size",
			mutate:  func(c *Config) { c.API.DefaultPageSize = 0 },
			wantErr: "CARBONLOG_API_DEFAULT_PAGE_SIZE",
		},
		{
			name: "max page smaller than default",
			mutate: func(c *Config) {
				c.API.DefaultPageSize = 100
				c.API.MaxPageSize = 50
			},
			wantErr: "CARBONLOG_API_MAX_PAGE_SIZE",
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "CARBONLOG_LOG_LEVEL",
		},
		{
			name:    "invalid log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: "CARBONLOG_LOG_FORMAT",
		},
		{
			name:    "empty log format allowed",
			mutate:  func(c *Config) { c.Logging.Format = "" },
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

// TestValidateGzipLevels verifies the full accepted compression range
func TestValidateGzipLevels(t *testing.T) {
	for level := -2; level <= 9; level++ {
		cfg := defaultConfig()
		cfg.Backup.CompressionLevel = level
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() with compression level %d: %v", level, err)
		}
	}
}
