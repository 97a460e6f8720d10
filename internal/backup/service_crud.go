// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

/*
service_crud.go - Backup Listing, Retrieval, Deletion and Verification

Read operations (list, get, verify) take no operation lock; the catalog
is safe for concurrent reads. Deletion holds the operation mutex and
removes the blob before the catalog row, so a failed blob deletion
leaves a retryable row rather than an unreferenced blob.
*/

//nolint:staticcheck // File documentation, not package doc
package backup

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkerring/carbonlog/internal/logging"
	"github.com/mkerring/carbonlog/internal/metrics"
)

// ListBackups returns all cataloged backups, newest first
func (s *Service) ListBackups(ctx context.Context) ([]*Metadata, error) {
	entries, err := s.catalog.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing backups: %v", ErrIO, err)
	}
	return entries, nil
}

// GetBackup returns one backup's metadata by id
func (s *Service) GetBackup(ctx context.Context, id string) (*Metadata, error) {
	meta, err := s.catalog.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: loading backup %s: %v", ErrIO, id, err)
	}
	return meta, nil
}

// DeleteBackup removes a backup's blob and catalog row together
func (s *Service) DeleteBackup(ctx context.Context, id string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	meta, err := s.catalog.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: loading backup %s: %v", ErrIO, id, err)
	}

	if err := s.deleteBlobIfPresent(ctx, meta); err != nil {
		return err
	}

	if err := s.catalog.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: deleting backup %s: %v", ErrIO, id, err)
	}

	s.updateCatalogGauge(ctx)
	logging.Info().Str("backup_id", id).Msg("Backup deleted")
	return nil
}

// deleteBlobIfPresent removes the backup's blob when it still exists.
// An already-missing blob is not an error: the row can outlive its blob
// after a partial manual cleanup, and deletion must still succeed then.
func (s *Service) deleteBlobIfPresent(ctx context.Context, meta *Metadata) error {
	exists, err := s.blobs.Exists(ctx, meta.BlobRef)
	if err != nil {
		return fmt.Errorf("%w: checking blob %s: %v", ErrIO, meta.BlobRef, err)
	}
	if !exists {
		return nil
	}
	if err := s.blobs.Delete(ctx, meta.BlobRef); err != nil {
		return fmt.Errorf("%w: deleting blob %s: %v", ErrIO, meta.BlobRef, err)
	}
	return nil
}

// VerifyBackup re-reads the backup's blob and compares its fingerprint
// against the cataloged checksum. A missing blob is (false, nil), a
// mismatch is (false, nil); errors indicate the verification itself
// could not run.
func (s *Service) VerifyBackup(ctx context.Context, id string) (bool, error) {
	meta, err := s.catalog.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, err
		}
		return false, fmt.Errorf("%w: loading backup %s: %v", ErrIO, id, err)
	}

	exists, err := s.blobs.Exists(ctx, meta.BlobRef)
	if err != nil {
		return false, fmt.Errorf("%w: checking blob %s: %v", ErrIO, meta.BlobRef, err)
	}
	if !exists {
		metrics.RecordVerification("missing")
		logging.Warn().Str("backup_id", id).Str("blob_ref", meta.BlobRef).Msg("Backup blob missing")
		return false, nil
	}

	data, err := s.blobs.Read(ctx, meta.BlobRef)
	if err != nil {
		return false, fmt.Errorf("%w: reading blob %s: %v", ErrIO, meta.BlobRef, err)
	}

	if Fingerprint(data) != meta.Checksum {
		metrics.RecordVerification("corrupt")
		logging.Warn().Str("backup_id", id).Msg("Backup checksum mismatch")
		return false, nil
	}

	metrics.RecordVerification("valid")
	return true, nil
}

// ReadBlob returns the raw encoded envelope for a backup, used by the
// download endpoint. The bytes are returned as stored, compressed when
// the backup was written compressed.
func (s *Service) ReadBlob(ctx context.Context, id string) ([]byte, *Metadata, error) {
	meta, err := s.catalog.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: loading backup %s: %v", ErrIO, id, err)
	}

	data, err := s.blobs.Read(ctx, meta.BlobRef)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading blob %s: %v", ErrIO, meta.BlobRef, err)
	}
	return data, meta, nil
}
