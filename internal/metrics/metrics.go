// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus Metrics Integration for Production Observability
// This package provides instrumentation for:
// - Database query performance (DuckDB)
// - API endpoint latency and throughput
// - Backup and restore operations
// - Retention enforcement and catalog health

var (
	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets, // 0.005s, 0.01s, 0.025s, 0.05s, 0.1s, 0.25s, 0.5s, 1s, 2.5s, 5s, 10s
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// Backup Metrics
	BackupOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backup_operations_total",
			Help: "Total number of backup attempts by type and final status",
		},
		[]string{"type", "status"}, // type: "full", "incremental", "differential"
	)

	BackupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backup_duration_seconds",
			Help:    "Time taken to create a backup archive in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		},
		[]string{"type"},
	)

	BackupSizeBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backup_size_bytes",
			Help:    "Size of written backup archives in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10), // 1KiB to ~256MiB
		},
		[]string{"type"},
	)

	BackupRecords = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backup_records",
			Help:    "Number of activity records captured per backup",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
		[]string{"type"},
	)

	BackupCatalogEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "backup_catalog_entries",
			Help: "Current number of backups tracked in the catalog",
		},
	)

	BackupVerificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backup_verifications_total",
			Help: "Total number of backup integrity verifications by result",
		},
		[]string{"result"}, // "valid", "corrupt", "missing"
	)

	BackupScheduledRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backup_scheduled_runs_total",
			Help: "Total number of scheduler-triggered backup runs",
		},
		[]string{"status"},
	)

	// Restore Metrics
	RestoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "restore_operations_total",
			Help: "Total number of restore attempts by strategy and final status",
		},
		[]string{"strategy", "status"},
	)

	RestoreDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "restore_duration_seconds",
			Help:    "Time taken to restore a backup in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		},
		[]string{"strategy"},
	)

	RestoreRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "restore_records_total",
			Help: "Total number of per-record restore outcomes",
		},
		[]string{"strategy", "outcome"}, // outcome: "restored", "skipped", "error"
	)

	// Retention Metrics
	RetentionRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "retention_runs_total",
			Help: "Total number of retention policy evaluations",
		},
	)

	RetentionDeletionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "retention_deletions_total",
			Help: "Total number of backups removed by retention enforcement",
		},
		[]string{"reason"}, // "expired", "pruned"
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of API requests being processed",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"endpoint"},
	)

	// Activity Metrics
	ActivitiesLoggedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activities_logged_total",
			Help: "Total number of activities recorded through the API",
		},
		[]string{"category"},
	)
)

// RecordDBQuery records database query metrics
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordBackupOperation records the outcome of a backup creation attempt.
// Size and record histograms are only observed for successful backups so
// failed attempts do not skew the distributions.
func RecordBackupOperation(backupType, status string, duration time.Duration, sizeBytes int64, records int) {
	BackupOperationsTotal.WithLabelValues(backupType, status).Inc()
	BackupDuration.WithLabelValues(backupType).Observe(duration.Seconds())
	if status == "completed" {
		BackupSizeBytes.WithLabelValues(backupType).Observe(float64(sizeBytes))
		BackupRecords.WithLabelValues(backupType).Observe(float64(records))
	}
}

// RecordRestoreOperation records the outcome of a restore attempt including
// per-record counts for each outcome class.
func RecordRestoreOperation(strategy, status string, duration time.Duration, restored, skipped, failed int) {
	RestoreOperationsTotal.WithLabelValues(strategy, status).Inc()
	RestoreDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	if restored > 0 {
		RestoreRecordsTotal.WithLabelValues(strategy, "restored").Add(float64(restored))
	}
	if skipped > 0 {
		RestoreRecordsTotal.WithLabelValues(strategy, "skipped").Add(float64(skipped))
	}
	if failed > 0 {
		RestoreRecordsTotal.WithLabelValues(strategy, "error").Add(float64(failed))
	}
}

// RecordRetentionRun records one retention enforcement pass
func RecordRetentionRun(expired, pruned int) {
	RetentionRunsTotal.Inc()
	if expired > 0 {
		RetentionDeletionsTotal.WithLabelValues("expired").Add(float64(expired))
	}
	if pruned > 0 {
		RetentionDeletionsTotal.WithLabelValues("pruned").Add(float64(pruned))
	}
}

// UpdateCatalogEntries sets the current catalog size gauge
func UpdateCatalogEntries(count int) {
	BackupCatalogEntries.Set(float64(count))
}

// RecordVerification records a backup integrity verification result.
// Result should be one of "valid", "corrupt" or "missing".
func RecordVerification(result string) {
	BackupVerificationsTotal.WithLabelValues(result).Inc()
}

// RecordScheduledBackup records a scheduler-triggered backup run
func RecordScheduledBackup(success bool) {
	status := "completed"
	if !success {
		status = "failed"
	}
	BackupScheduledRunsTotal.WithLabelValues(status).Inc()
}

// RecordAPIRequest records API request metrics
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments/decrements active request gauge
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit records a request rejected by the rate limiter
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordActivityLogged records an activity accepted through the API
func RecordActivityLogged(category string) {
	ActivitiesLoggedTotal.WithLabelValues(category).Inc()
}
