// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

/*
service.go - Backup Service Facade

This file contains the caller-facing Service struct and its constructor.
The Service orchestrates backup creation, restoration, verification,
deletion and retention against three injected collaborators:

  - record.Store: the activity store being backed up and restored
  - blob.Store:   durable storage for encoded backup envelopes
  - Catalog:      metadata persistence (one row per backup)

Thread Safety:
All mutating operations (create, restore, delete, retention) are
serialized by a single operation mutex. Chained backups must observe a
settled catalog, and a replace_all restore must never interleave with a
snapshot of the half-cleared record store. Read operations (list, get,
verify, stats) take no lock; the catalog is safe for concurrent reads.
*/

//nolint:staticcheck // File documentation, not package doc
package backup

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mkerring/carbonlog/internal/blob"
	"github.com/mkerring/carbonlog/internal/record"
)

// Service handles backup and restore operations
type Service struct {
	records record.Store
	blobs   blob.Store
	catalog Catalog
	cfg     Config

	// opMu is the single-flight guard: at most one mutating operation
	// (create, restore, delete, retention) runs at a time.
	opMu sync.Mutex
}

// NewService creates a backup service with explicit collaborators.
// The configuration is used verbatim; callers wanting defaults start
// from DefaultConfig.
func NewService(records record.Store, blobs blob.Store, catalog Catalog, cfg Config) (*Service, error) {
	if records == nil {
		return nil, fmt.Errorf("record store is required")
	}
	if blobs == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}

	return &Service{
		records: records,
		blobs:   blobs,
		catalog: catalog,
		cfg:     cfg,
	}, nil
}

// newBackupID returns a generation-ordered (v7) identifier. UUIDv7
// generation only fails when the random source does, in which case the
// random v4 fallback keeps ids unique.
func newBackupID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// blobRefFor generates the blob reference for a backup. The full id is
// part of the name: v7 ids share their leading characters when created
// within the same millisecond, so no prefix is collision-free.
func (s *Service) blobRefFor(backupType Type, createdAt time.Time, id string) string {
	timestamp := createdAt.UTC().Format("20060102-150405")
	ref := fmt.Sprintf("backup-%s-%s-%s", backupType, timestamp, id)
	if s.cfg.Compression {
		return ref + ".json.gz"
	}
	return ref + ".json"
}

// reportProgress invokes the callback when one is set. Callbacks are
// synchronous and never part of control flow.
func reportProgress(cb ProgressFunc, fraction float64, stage string) {
	if cb != nil {
		cb(fraction, stage)
	}
}
