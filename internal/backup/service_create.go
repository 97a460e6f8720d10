// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

/*
service_create.go - Backup Creation

This file implements snapshot building: resolving the record set for the
requested backup type, encoding the envelope, writing the blob and
registering the catalog row.

Creation Flow:
 1. Validate options (type, parent requirements)
 2. Resolve the selection cutoff from the parent chain
 3. Collect records from the record store
 4. Encode the envelope (goccy JSON, optional gzip)
 5. Write the blob and fingerprint the written bytes
 6. Insert the catalog row with status completed
 7. Apply the retention policy

Record Selection:
  - full:         every stored activity
  - incremental:  activities logged strictly after the parent's creation
  - differential: activities logged strictly after the chain base's
    creation, where the base is the most distant resolvable ancestor

Failure Semantics:
The catalog row is the final step; any earlier failure leaves the catalog
untouched and removes the partial blob best-effort. Failures surface
wrapped in ErrIO, except parent resolution which is ErrInvalidState.
*/

//nolint:staticcheck // File documentation, not package doc
package backup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mkerring/carbonlog/internal/logging"
	"github.com/mkerring/carbonlog/internal/metrics"
	"github.com/mkerring/carbonlog/internal/record"
)

// CreateBackup builds a snapshot of the record store and registers it in
// the catalog. Chained types (incremental, differential) require
// ParentBackupID. The returned metadata has status completed.
func (s *Service) CreateBackup(ctx context.Context, opts CreateOptions) (*Metadata, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	start := time.Now()

	if !opts.Type.Valid() {
		return nil, fmt.Errorf("%w: unsupported backup type %q", ErrInvalidState, opts.Type)
	}

	reportProgress(opts.OnProgress, 0.1, "resolving parent")

	cutoff, err := s.resolveCutoff(ctx, opts.Type, opts.ParentBackupID)
	if err != nil {
		return nil, err
	}

	createdAt := time.Now().UTC()
	meta := &Metadata{
		ID:             newBackupID(),
		Name:           opts.Name,
		Type:           opts.Type,
		Status:         StatusCreated,
		CreatedAt:      createdAt,
		ParentBackupID: opts.ParentBackupID,
		FormatVersion:  FormatVersion,
		Compressed:     s.cfg.Compression,
		Metadata:       opts.Metadata,
	}
	if meta.Name == "" {
		meta.Name = defaultBackupName(opts.Type, createdAt)
	}

	reportProgress(opts.OnProgress, 0.3, "collecting records")
	meta.Status = StatusInProgress

	records, err := s.collectRecords(ctx, opts.Type, cutoff)
	if err != nil {
		return s.failCreate(ctx, meta, start, fmt.Errorf("%w: collecting records: %v", ErrIO, err))
	}
	meta.RecordCount = len(records)

	reportProgress(opts.OnProgress, 0.6, "encoding")

	env := &Envelope{
		FormatVersion:  FormatVersion,
		BackupID:       meta.ID,
		Name:           meta.Name,
		Type:           meta.Type,
		CreatedAt:      meta.CreatedAt,
		ParentBackupID: meta.ParentBackupID,
		RecordCount:    len(records),
		Records:        records,
		Metadata:       opts.Metadata,
	}
	data, err := EncodeEnvelope(env, s.cfg.Compression, s.cfg.CompressionLevel)
	if err != nil {
		return s.failCreate(ctx, meta, start, fmt.Errorf("%w: encoding envelope: %v", ErrIO, err))
	}

	reportProgress(opts.OnProgress, 0.8, "writing blob")

	meta.BlobRef = s.blobRefFor(meta.Type, meta.CreatedAt, meta.ID)
	if err := s.blobs.Write(ctx, meta.BlobRef, data); err != nil {
		return s.failCreate(ctx, meta, start, fmt.Errorf("%w: writing blob %s: %v", ErrIO, meta.BlobRef, err))
	}
	meta.Checksum = Fingerprint(data)
	meta.SizeBytes = int64(len(data))

	reportProgress(opts.OnProgress, 1.0, "registering")

	meta.Status = StatusCompleted
	if err := s.catalog.Insert(ctx, meta); err != nil {
		return s.failCreate(ctx, meta, start, fmt.Errorf("%w: registering backup %s: %v", ErrIO, meta.ID, err))
	}

	metrics.RecordBackupOperation(string(meta.Type), "completed", time.Since(start), meta.SizeBytes, meta.RecordCount)
	s.updateCatalogGauge(ctx)

	logging.Info().
		Str("backup_id", meta.ID).
		Str("type", string(meta.Type)).
		Int("record_count", meta.RecordCount).
		Int64("size_bytes", meta.SizeBytes).
		Dur("duration", time.Since(start)).
		Msg("Backup created")

	if report, err := s.applyRetentionLocked(ctx); err != nil {
		logging.Warn().Err(err).Msg("Retention after backup failed")
	} else if report.Expired+report.Pruned > 0 {
		logging.Info().
			Int("expired", report.Expired).
			Int("pruned", report.Pruned).
			Msg("Retention applied after backup")
	}

	return meta, nil
}

// resolveCutoff determines the record selection cutoff for chained
// backup types. Full backups have no cutoff. See the file comment for
// the incremental vs differential distinction.
func (s *Service) resolveCutoff(ctx context.Context, backupType Type, parentID string) (time.Time, error) {
	if backupType == TypeFull {
		if parentID != "" {
			return time.Time{}, fmt.Errorf("%w: full backup does not take a parent", ErrInvalidState)
		}
		return time.Time{}, nil
	}

	if parentID == "" {
		return time.Time{}, fmt.Errorf("%w: %s backup requires a parent backup id", ErrInvalidState, backupType)
	}

	parent, err := s.catalog.Get(ctx, parentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return time.Time{}, fmt.Errorf("%w: parent backup %s not found", ErrInvalidState, parentID)
		}
		return time.Time{}, fmt.Errorf("%w: resolving parent %s: %v", ErrIO, parentID, err)
	}

	if backupType == TypeIncremental {
		return parent.CreatedAt, nil
	}
	return s.resolveChainBase(ctx, parent)
}

// resolveChainBase walks parent links from the named parent to the most
// distant resolvable ancestor, conventionally the originating full
// backup. A pruned ancestor stops the walk at the oldest resolvable
// survivor, whose creation time becomes the cutoff.
func (s *Service) resolveChainBase(ctx context.Context, parent *Metadata) (time.Time, error) {
	base := parent
	seen := map[string]bool{base.ID: true}

	for base.ParentBackupID != "" {
		// Corrupt parent links must not loop forever
		if seen[base.ParentBackupID] {
			return time.Time{}, fmt.Errorf("%w: parent cycle detected at backup %s", ErrInvalidState, base.ParentBackupID)
		}

		ancestor, err := s.catalog.Get(ctx, base.ParentBackupID)
		if errors.Is(err, ErrNotFound) {
			logging.Debug().
				Str("backup_id", base.ID).
				Str("missing_ancestor", base.ParentBackupID).
				Msg("Chain ancestor pruned, using oldest resolvable backup as base")
			break
		}
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: resolving ancestor %s: %v", ErrIO, base.ParentBackupID, err)
		}

		seen[ancestor.ID] = true
		base = ancestor
	}

	return base.CreatedAt, nil
}

// collectRecords loads the record set for the backup
func (s *Service) collectRecords(ctx context.Context, backupType Type, cutoff time.Time) ([]record.Activity, error) {
	if backupType == TypeFull {
		return s.records.ListAll(ctx)
	}
	return s.records.ListSince(ctx, cutoff)
}

// failCreate marks the in-memory metadata failed, removes any partially
// written blob and surfaces the error. Nothing is persisted: failed
// builds never reach the catalog.
func (s *Service) failCreate(ctx context.Context, meta *Metadata, start time.Time, err error) (*Metadata, error) {
	meta.Status = StatusFailed

	if meta.BlobRef != "" {
		if exists, exErr := s.blobs.Exists(ctx, meta.BlobRef); exErr == nil && exists {
			if delErr := s.blobs.Delete(ctx, meta.BlobRef); delErr != nil {
				logging.Debug().Err(delErr).Str("blob_ref", meta.BlobRef).Msg("Partial blob cleanup failed")
			}
		}
	}

	metrics.RecordBackupOperation(string(meta.Type), "failed", time.Since(start), 0, 0)
	logging.Error().Err(err).
		Str("backup_id", meta.ID).
		Str("type", string(meta.Type)).
		Msg("Backup failed")

	return nil, err
}

// defaultBackupName labels unnamed backups by type and creation time
func defaultBackupName(backupType Type, createdAt time.Time) string {
	return fmt.Sprintf("%s-backup-%s", backupType, createdAt.Format("20060102-150405"))
}

// updateCatalogGauge refreshes the catalog size metric, best-effort
func (s *Service) updateCatalogGauge(ctx context.Context) {
	if count, err := s.catalog.Count(ctx); err == nil {
		metrics.UpdateCatalogEntries(count)
	}
}
