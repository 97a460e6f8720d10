// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/mkerring/carbonlog/internal/backup"
	"github.com/mkerring/carbonlog/internal/logging"
	"github.com/mkerring/carbonlog/internal/models"
)

// createBackupRequest is the request body for POST /api/v1/backups.
type createBackupRequest struct {
	Name           string            `json:"name" validate:"omitempty,max=120"`
	Type           string            `json:"type" validate:"required,oneof=full incremental differential"`
	ParentBackupID string            `json:"parent_backup_id" validate:"omitempty,uuid"`
	Metadata       map[string]string `json:"metadata" validate:"omitempty,max=16"`
}

// restoreBackupRequest is the request body for POST /api/v1/backups/{id}/restore.
type restoreBackupRequest struct {
	Strategy string `json:"strategy" validate:"required,oneof=replace_all merge_with_existing restore_only_missing"`
}

// HandleCreateBackup creates a new backup snapshot.
//
// The type field is required; parent_backup_id is only meaningful for
// incremental and differential backups and defaults to the chain base
// resolved by the service when omitted.
func (h *Handler) HandleCreateBackup(w http.ResponseWriter, r *http.Request) {
	var req createBackupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", err)
		return
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	start := time.Now()
	meta, err := h.service.CreateBackup(r.Context(), backup.CreateOptions{
		Name:           req.Name,
		Type:           backup.Type(req.Type),
		ParentBackupID: req.ParentBackupID,
		Metadata:       req.Metadata,
	})
	if err != nil {
		respondServiceError(w, "Failed to create backup", err)
		return
	}

	logging.Info().
		Str("backup_id", meta.ID).
		Str("type", string(meta.Type)).
		Int("records", meta.RecordCount).
		Msg("Backup created via API")

	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Status: "success",
		Data:   meta,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// HandleListBackups returns all backup metadata, newest first.
func (h *Handler) HandleListBackups(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	backups, err := h.service.ListBackups(r.Context())
	if err != nil {
		respondServiceError(w, "Failed to list backups", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"count":   len(backups),
			"backups": backups,
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// HandleGetBackup returns metadata for a single backup.
func (h *Handler) HandleGetBackup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	meta, err := h.service.GetBackup(r.Context(), id)
	if err != nil {
		respondServiceError(w, "Failed to get backup", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   meta,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HandleDeleteBackup removes a backup's metadata and payload.
func (h *Handler) HandleDeleteBackup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteBackup(r.Context(), id); err != nil {
		respondServiceError(w, "Failed to delete backup", err)
		return
	}

	logging.Info().Str("backup_id", id).Msg("Backup deleted via API")

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"backup_id": id,
			"deleted":   true,
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HandleVerifyBackup checks a backup's payload against its recorded
// checksum. A missing or corrupt payload is reported as valid=false
// with a 200 status; only a missing catalog entry is an error.
func (h *Handler) HandleVerifyBackup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	start := time.Now()
	valid, err := h.service.VerifyBackup(r.Context(), id)
	if err != nil {
		respondServiceError(w, "Failed to verify backup", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"backup_id": id,
			"valid":     valid,
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// HandleRestoreBackup restores activity data from a backup using the
// requested strategy. A completed restore with per-record failures still
// returns 200; the result body carries success=false and the error list.
func (h *Handler) HandleRestoreBackup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req restoreBackupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", err)
		return
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	start := time.Now()
	result, err := h.service.RestoreBackup(r.Context(), backup.RestoreOptions{
		BackupID: id,
		Strategy: backup.Strategy(req.Strategy),
	})
	if err != nil {
		respondServiceError(w, "Failed to restore backup", err)
		return
	}

	// Restored rows changed the activity data under any strategy.
	h.ClearCache()

	logging.Info().
		Str("backup_id", id).
		Str("strategy", req.Strategy).
		Int("restored", result.RestoredRecords).
		Int("skipped", result.SkippedRecords).
		Int("errors", result.ErrorRecords).
		Msg("Backup restored via API")

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   result,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// HandleBackupStats returns aggregate statistics over all backups.
func (h *Handler) HandleBackupStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		respondServiceError(w, "Failed to compute backup stats", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   stats,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// HandleRetentionPreview reports which backups the retention policy
// would remove, without deleting anything.
func (h *Handler) HandleRetentionPreview(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	preview, err := h.service.PreviewRetention(r.Context())
	if err != nil {
		respondServiceError(w, "Failed to preview retention", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   preview,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// HandleApplyRetention enforces the retention policy now. Deletion
// failures do not abort the pass: the report covers what was removed and
// complete=false flags that some candidates survived.
func (h *Handler) HandleApplyRetention(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	report, err := h.service.ApplyRetention(r.Context())
	if err != nil && report == nil {
		respondServiceError(w, "Failed to apply retention", err)
		return
	}
	if err != nil {
		logging.Warn().Err(err).Msg("Retention pass completed with failures")
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"report":   report,
			"complete": err == nil,
		},
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// HandleDownloadBackup streams the raw backup payload. The payload is
// served exactly as stored: gzip-compressed backups download as .json.gz,
// uncompressed ones as .json.
func (h *Handler) HandleDownloadBackup(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	data, meta, err := h.service.ReadBlob(r.Context(), id)
	if err != nil {
		respondServiceError(w, "Failed to download backup", err)
		return
	}

	filename := fmt.Sprintf("carbonlog-backup-%s-%s.json", meta.ID, meta.CreatedAt.Format("20060102-150405"))
	contentType := "application/json"
	if meta.Compressed {
		filename += ".gz"
		contentType = "application/gzip"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("X-Backup-ID", meta.ID)
	w.Header().Set("X-Backup-Type", string(meta.Type))
	w.Header().Set("X-Backup-Checksum", meta.Checksum)

	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck // client disconnects are not actionable
}
