// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package implements application instrumentation using the Prometheus client
library, exposing metrics for monitoring performance, errors, and system health.

# Overview

The package provides metrics for:
  - HTTP API latency and throughput
  - DuckDB query performance
  - Backup and restore operations
  - Retention enforcement
  - Backup catalog size and verification results

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: Requests currently in flight (gauge)
  - api_rate_limit_hits_total: Requests rejected by the rate limiter (counter)
    Labels: endpoint

Database Metrics:
  - duckdb_query_duration_seconds: Query execution time (histogram)
    Labels: operation, table
  - duckdb_query_errors_total: Failed queries (counter)
    Labels: operation, table, error_type

Backup Metrics:
  - backup_operations_total: Completed backup attempts (counter)
    Labels: type (full, incremental, differential), status (completed, failed)
  - backup_duration_seconds: Backup creation time (histogram)
    Labels: type
  - backup_size_bytes: Size of written backup archives (histogram)
    Labels: type
  - backup_records: Records captured per backup (histogram)
    Labels: type
  - backup_catalog_entries: Backups currently cataloged (gauge)
  - backup_verifications_total: Integrity verification outcomes (counter)
    Labels: result (valid, corrupt, missing)
  - backup_scheduled_runs_total: Scheduler-triggered backup runs (counter)
    Labels: status

Restore Metrics:
  - restore_operations_total: Completed restore attempts (counter)
    Labels: strategy, status
  - restore_duration_seconds: Restore processing time (histogram)
    Labels: strategy
  - restore_records_total: Per-record restore outcomes (counter)
    Labels: strategy, outcome (restored, skipped, error)

Retention Metrics:
  - retention_runs_total: Retention policy evaluations (counter)
  - retention_deletions_total: Backups removed by retention (counter)
    Labels: reason (expired, pruned)

Activity Metrics:
  - activities_logged_total: Activities recorded through the API (counter)
    Labels: category

# Usage Example

Basic setup in main.go:

	import (
	    "github.com/mkerring/carbonlog/internal/metrics"
	    "github.com/prometheus/client_golang/prometheus/promhttp"
	)

	func main() {
	    http.Handle("/metrics", promhttp.Handler())

	    metrics.RecordAPIRequest("GET", "/api/v1/activities", "200", 23*time.Millisecond)
	    metrics.RecordDBQuery("select", "activities", 5*time.Millisecond, nil)
	}

# Thread Safety

All metric recording functions are safe for concurrent use from multiple
goroutines. The Prometheus client library handles synchronization internally.

# Cardinality Management

To prevent high cardinality issues:

  - Endpoint labels use route patterns, never raw URLs with IDs
  - Error types are truncated to a bounded length
  - Backup identifiers are never used as labels

# See Also

  - internal/api: HTTP handlers recording request metrics
  - internal/backup: Backup lifecycle metrics recording
  - https://prometheus.io/docs/practices/naming/: Metric naming conventions
*/
package metrics
