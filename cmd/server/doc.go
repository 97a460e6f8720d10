// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

/*
Package main is the entry point for the carbonlog server application.

carbonlog is a self-hosted personal carbon footprint tracker. Users record
everyday activities (transport, energy, food, goods, services) with their CO2e
cost, review summaries over time, and rely on a versioned backup subsystem to
keep years of personal data safe across device moves and bad restores.

# Application Architecture

The server implements a layered architecture with Suture v4 process supervision:

	RootSupervisor ("carbonlog")
	├── DataSupervisor ("data-layer")
	│   └── Backup scheduler (if the backup schedule is enabled)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (REST API)

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Activity database: DuckDB storing activity records
 4. Backup catalog: BadgerDB storing backup metadata, versioned per entry
 5. Blob store: filesystem directory holding backup archives
 6. Backup service: create, verify, restore, retention
 7. Supervisor tree: Suture v4 process supervision
 8. HTTP server: Chi router with middleware stack

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest priority wins):

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	# Server
	CARBONLOG_HTTP_PORT=8080          # HTTP server port
	CARBONLOG_LOG_LEVEL=info          # trace, debug, info, warn, error
	CARBONLOG_LOG_FORMAT=json         # json or console

	# Storage
	CARBONLOG_DB_PATH=/data/carbonlog.duckdb
	CARBONLOG_CATALOG_PATH=/data/catalog   # empty = in-memory catalog
	CARBONLOG_BACKUP_DIR=/data/backups

	# Backups
	CARBONLOG_BACKUP_COMPRESSION=true
	CARBONLOG_RETENTION_MAX_AGE_DAYS=90
	CARBONLOG_RETENTION_MAX_COUNT=20

	# Schedule (opt-in)
	CARBONLOG_SCHEDULE_ENABLED=false
	CARBONLOG_SCHEDULE_INTERVAL=24h
	CARBONLOG_SCHEDULE_PREFERRED_HOUR=2
	CARBONLOG_SCHEDULE_BACKUP_TYPE=full    # full, incremental, differential

A YAML config file is read from config.yaml, /etc/carbonlog/config.yaml, or
the path named by CONFIG_PATH.

# Signal Handling

The server handles graceful shutdown on SIGINT and SIGTERM:

 1. Stops accepting new HTTP connections
 2. Waits for in-flight requests (10s timeout)
 3. Stops the backup scheduler
 4. Closes the backup catalog and the activity database
 5. Reports any services that failed to stop

# Usage Examples

Development:

	export CARBONLOG_LOG_FORMAT=console
	export CARBONLOG_DB_PATH=./carbonlog.duckdb
	export CARBONLOG_CATALOG_PATH=./catalog
	export CARBONLOG_BACKUP_DIR=./backups
	go run ./cmd/server

Production with nightly backups:

	export CARBONLOG_SCHEDULE_ENABLED=true
	export CARBONLOG_SCHEDULE_INTERVAL=24h
	export CARBONLOG_SCHEDULE_PREFERRED_HOUR=2
	./carbonlog

Docker:

	docker run -d \
	  -v carbonlog-data:/data \
	  -e CARBONLOG_SCHEDULE_ENABLED=true \
	  -p 8080:8080 \
	  ghcr.io/mkerring/carbonlog

# See Also

  - internal/config: Configuration management
  - internal/supervisor: Process supervision
  - internal/api: HTTP handlers and routing
  - internal/backup: Backup creation, verification, restore, retention
  - internal/record: DuckDB activity store
*/
package main
