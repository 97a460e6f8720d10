// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

/*
Package config provides centralized configuration management for carbonlog.

Configuration is loaded with Koanf v2 from three layered sources, later
layers overriding earlier ones:

 1. Built-in defaults
 2. Optional YAML config file (config.yaml, or CONFIG_PATH)
 3. CARBONLOG_-prefixed environment variables

# Configuration Structure

Configuration is organized into logical groups:

  - ServerConfig: HTTP server settings (host, port, CORS, rate limits)
  - DatabaseConfig: DuckDB activity store tuning (path, memory, threads)
  - CatalogConfig: Badger backup catalog location
  - BackupConfig: Backup directory, compression, retention and schedule
  - APIConfig: Pagination limits
  - LoggingConfig: Log level and output format

# Environment Variables

All environment variables carry the CARBONLOG_ prefix:

HTTP Server:
  - CARBONLOG_HTTP_HOST: Bind address (default: 0.0.0.0)
  - CARBONLOG_HTTP_PORT: Listen port (default: 8080)
  - CARBONLOG_HTTP_TIMEOUT: Request timeout (default: 30s)
  - CARBONLOG_CORS_ORIGINS: Comma-separated allowed origins (default: *)
  - CARBONLOG_RATE_LIMIT_REQUESTS: Requests per window (default: 100)
  - CARBONLOG_RATE_LIMIT_WINDOW: Rate limit window (default: 1m)
  - CARBONLOG_DISABLE_RATE_LIMIT: Disable rate limiting (default: false)

Activity database:
  - CARBONLOG_DB_PATH: DuckDB file path (default: /data/carbonlog.duckdb)
  - CARBONLOG_DB_MAX_MEMORY: DuckDB memory limit (default: 1GB)
  - CARBONLOG_DB_THREADS: DuckDB threads, 0 = NumCPU (default: 0)

Backup subsystem:
  - CARBONLOG_CATALOG_PATH: Badger catalog directory (default: /data/catalog)
  - CARBONLOG_BACKUP_DIR: Backup archive directory (default: /data/backups)
  - CARBONLOG_BACKUP_COMPRESSION: Enable gzip compression (default: true)
  - CARBONLOG_BACKUP_COMPRESSION_LEVEL: gzip level -2..9 (default: -1)
  - CARBONLOG_RETENTION_MAX_AGE_DAYS: Expire backups older than N days (default: 90)
  - CARBONLOG_RETENTION_MAX_COUNT: Keep at most N backups (default: 20)
  - CARBONLOG_SCHEDULE_ENABLED: Enable automatic backups (default: false)
  - CARBONLOG_SCHEDULE_INTERVAL: Interval between automatic backups (default: 24h)
  - CARBONLOG_SCHEDULE_PREFERRED_HOUR: Preferred hour of day 0-23 (default: 2)
  - CARBONLOG_SCHEDULE_BACKUP_TYPE: full, incremental or differential (default: full)

API:
  - CARBONLOG_API_DEFAULT_PAGE_SIZE: Default page size (default: 50)
  - CARBONLOG_API_MAX_PAGE_SIZE: Maximum page size (default: 500)

Logging:
  - CARBONLOG_LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - CARBONLOG_LOG_FORMAT: json or console (default: json)
  - CARBONLOG_LOG_CALLER: Include caller file:line (default: false)

# Usage

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal("Failed to load config:", err)
	}
	db, err := record.New(&cfg.Database)

Config is immutable after Load() and safe for concurrent reads.
*/
package config
