// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

package api

import (
	"net/http"
	"time"

	"github.com/mkerring/carbonlog/internal/models"
)

// HandleHealth reports component connectivity and store counts.
//
// The endpoint always responds 200; status is "degraded" when either the
// activity store or the backup catalog is unreachable, so dashboards and
// container healthchecks read the body rather than the status code.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	recordsConnected := h.records != nil && h.records.Ping(ctx) == nil

	catalogConnected := false
	var backupCount int
	var lastBackup *time.Time
	if h.service != nil {
		if stats, err := h.service.Stats(ctx); err == nil {
			catalogConnected = true
			backupCount = stats.TotalBackups
			lastBackup = stats.LastBackupDate
		}
	}

	activityCount := 0
	if recordsConnected {
		if count, err := h.records.Count(ctx); err == nil {
			activityCount = count
		}
	}

	status := "healthy"
	if !recordsConnected || !catalogConnected {
		status = "degraded"
	}

	cacheStats := h.CacheStats()
	hitRate := 0.0
	if h.cache != nil {
		hitRate = h.cache.HitRate()
	}

	health := map[string]interface{}{
		"status":            status,
		"version":           "1.0.0",
		"records_connected": recordsConnected,
		"catalog_connected": catalogConnected,
		"activity_count":    activityCount,
		"backup_count":      backupCount,
		"uptime":            time.Since(h.startTime).Seconds(),
		"cache": map[string]interface{}{
			"keys":     cacheStats.TotalKeys,
			"hit_rate": hitRate,
		},
	}
	if lastBackup != nil {
		health["last_backup"] = lastBackup.Format(time.RFC3339)
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   health,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
