// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

/*
service_restore.go - Restore Engine

This file implements restoration of a cataloged backup into the record
store under one of three reconciliation strategies:

  - replace_all:          clear the store, insert every envelope record
  - merge_with_existing:  insert records whose identity is absent, probing
    the store per record
  - restore_only_missing: insert records whose identity is absent against
    an identity set computed once up front

Failure Semantics:
Structural failures (unknown backup, integrity mismatch, undecodable
envelope, failed store clear) abort with an error before any record
mutation survives. Per-record reconciliation failures never abort: they
are counted and collected on the RestoreResult, and the backup still
transitions to restored. Success means zero per-record failures.
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

// RestoreBackup verifies a backup's integrity and applies its records to
// the record store using the requested strategy.
func (s *Service) RestoreBackup(ctx context.Context, opts RestoreOptions) (*RestoreResult, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	start := time.Now()

	if !opts.Strategy.Valid() {
		return nil, fmt.Errorf("%w: unsupported restore strategy %q", ErrInvalidState, opts.Strategy)
	}

	meta, err := s.catalog.Get(ctx, opts.BackupID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: loading backup %s: %v", ErrIO, opts.BackupID, err)
	}

	if !meta.Status.CanTransitionTo(StatusRestored) {
		return nil, fmt.Errorf("%w: backup %s in status %s cannot be restored", ErrInvalidState, meta.ID, meta.Status)
	}

	reportProgress(opts.OnProgress, 0.1, "verifying")

	env, err := s.loadVerifiedEnvelope(ctx, meta)
	if err != nil {
		return s.failRestore(meta.ID, opts.Strategy, start, err)
	}

	reportProgress(opts.OnProgress, 0.3, "decoding")

	result := &RestoreResult{
		BackupID: meta.ID,
		Strategy: opts.Strategy,
	}

	switch opts.Strategy {
	case StrategyReplaceAll:
		err = s.restoreReplaceAll(ctx, env.Records, result, opts.OnProgress)
	case StrategyMergeWithExisting:
		s.restoreMerge(ctx, env.Records, result, opts.OnProgress)
	case StrategyRestoreOnlyMissing:
		err = s.restoreMissingOnly(ctx, env.Records, result, opts.OnProgress)
	}
	if err != nil {
		return s.failRestore(meta.ID, opts.Strategy, start, err)
	}

	reportProgress(opts.OnProgress, 1.0, "finalizing")

	// The backup transitions to restored even with per-record failures;
	// the result carries the reconciliation detail. A failed status
	// update must not fail a restore whose records are already applied.
	restoredAt := time.Now().UTC()
	meta.Status = StatusRestored
	meta.RestoredAt = &restoredAt
	if err := s.catalog.Update(ctx, meta); err != nil {
		logging.Error().Err(err).Str("backup_id", meta.ID).Msg("Failed to record restored status")
	}

	result.Success = result.ErrorRecords == 0
	result.ProcessingTime = time.Since(start)

	metrics.RecordRestoreOperation(string(opts.Strategy), "completed", result.ProcessingTime,
		result.RestoredRecords, result.SkippedRecords, result.ErrorRecords)

	logging.Info().
		Str("backup_id", meta.ID).
		Str("strategy", string(opts.Strategy)).
		Int("restored", result.RestoredRecords).
		Int("skipped", result.SkippedRecords).
		Int("errors", result.ErrorRecords).
		Dur("duration", result.ProcessingTime).
		Msg("Restore completed")

	return result, nil
}

// loadVerifiedEnvelope reads the blob, checks its fingerprint against
// the cataloged checksum and decodes the envelope. The record store is
// untouched until this has succeeded.
func (s *Service) loadVerifiedEnvelope(ctx context.Context, meta *Metadata) (*Envelope, error) {
	exists, err := s.blobs.Exists(ctx, meta.BlobRef)
	if err != nil {
		return nil, fmt.Errorf("%w: checking blob %s: %v", ErrIO, meta.BlobRef, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: blob %s missing for backup %s", ErrIntegrityFailure, meta.BlobRef, meta.ID)
	}

	data, err := s.blobs.Read(ctx, meta.BlobRef)
	if err != nil {
		return nil, fmt.Errorf("%w: reading blob %s: %v", ErrIO, meta.BlobRef, err)
	}

	if Fingerprint(data) != meta.Checksum {
		return nil, fmt.Errorf("%w: checksum mismatch for backup %s", ErrIntegrityFailure, meta.ID)
	}

	return DecodeEnvelope(data)
}

// restoreReplaceAll clears the store and inserts every envelope record.
// Insert failures after the clear are isolated per record: aborting
// cannot bring the deleted data back.
func (s *Service) restoreReplaceAll(ctx context.Context, records []record.Activity, result *RestoreResult, onProgress ProgressFunc) error {
	if err := s.records.DeleteAll(ctx); err != nil {
		return fmt.Errorf("%w: clearing record store: %v", ErrIO, err)
	}

	for i, a := range records {
		if err := s.records.Insert(ctx, a); err != nil {
			recordFailure(result, a.ID, err)
		} else {
			result.RestoredRecords++
		}
		reportRecordProgress(onProgress, i+1, len(records))
	}
	return nil
}

// restoreMerge inserts records whose identity is absent, probing the
// store for each record. Probe and insert failures are both isolated.
func (s *Service) restoreMerge(ctx context.Context, records []record.Activity, result *RestoreResult, onProgress ProgressFunc) {
	for i, a := range records {
		exists, err := s.records.Exists(ctx, a.ID)
		if err != nil {
			recordFailure(result, a.ID, err)
			reportRecordProgress(onProgress, i+1, len(records))
			continue
		}
		if exists {
			result.SkippedRecords++
		} else if err := s.records.Insert(ctx, a); err != nil {
			recordFailure(result, a.ID, err)
		} else {
			result.RestoredRecords++
		}
		reportRecordProgress(onProgress, i+1, len(records))
	}
}

// restoreMissingOnly inserts records absent from an identity set
// computed once before reconciliation starts.
func (s *Service) restoreMissingOnly(ctx context.Context, records []record.Activity, result *RestoreResult, onProgress ProgressFunc) error {
	ids, err := s.records.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("%w: listing record identities: %v", ErrIO, err)
	}
	existing := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		existing[id] = struct{}{}
	}

	for i, a := range records {
		if _, ok := existing[a.ID]; ok {
			result.SkippedRecords++
		} else if err := s.records.Insert(ctx, a); err != nil {
			recordFailure(result, a.ID, err)
		} else {
			existing[a.ID] = struct{}{}
			result.RestoredRecords++
		}
		reportRecordProgress(onProgress, i+1, len(records))
	}
	return nil
}

// recordFailure counts one per-record failure on the result
func recordFailure(result *RestoreResult, recordID string, err error) {
	result.ErrorRecords++
	result.Errors = append(result.Errors, fmt.Sprintf("record %s: %v", recordID, err))
}

// reportRecordProgress maps per-record completion onto the 0.3 to 0.95
// fraction band of the restore
func reportRecordProgress(cb ProgressFunc, done, total int) {
	if cb == nil || total == 0 {
		return
	}
	reportProgress(cb, 0.3+0.65*float64(done)/float64(total), "restoring records")
}

// failRestore records metrics and logs for a structurally failed restore
func (s *Service) failRestore(backupID string, strategy Strategy, start time.Time, err error) (*RestoreResult, error) {
	metrics.RecordRestoreOperation(string(strategy), "failed", time.Since(start), 0, 0, 0)
	logging.Error().Err(err).
		Str("backup_id", backupID).
		Str("strategy", string(strategy)).
		Msg("Restore failed")
	return nil, err
}
