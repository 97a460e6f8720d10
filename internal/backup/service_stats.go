// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

package backup

import (
	"context"
	"fmt"
)

// Stats aggregates the catalog into totals, a per-type distribution and
// the newest/oldest creation times. An empty catalog yields zero totals
// with nil dates.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	entries, err := s.catalog.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing backups: %v", ErrIO, err)
	}

	stats := &Stats{
		TotalBackups:     len(entries),
		TypeDistribution: make(map[Type]int),
	}

	for _, meta := range entries {
		stats.TotalSizeBytes += meta.SizeBytes
		stats.TotalRecords += meta.RecordCount
		stats.TypeDistribution[meta.Type]++

		if stats.LastBackupDate == nil || meta.CreatedAt.After(*stats.LastBackupDate) {
			createdAt := meta.CreatedAt
			stats.LastBackupDate = &createdAt
		}
		if stats.OldestBackupDate == nil || meta.CreatedAt.Before(*stats.OldestBackupDate) {
			createdAt := meta.CreatedAt
			stats.OldestBackupDate = &createdAt
		}
	}

	return stats, nil
}
