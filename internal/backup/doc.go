// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

// Package backup provides versioned backup and restore for the activity log.
//
// The package implements a chain-aware snapshot system with:
//   - Full, incremental and differential backups
//   - Self-contained gzip-compressed JSON envelopes
//   - SHA-256 integrity verification of stored archives
//   - Three restore strategies (replace all, merge, missing only)
//   - Retention by age and count with parent-aware pruning
//   - Automatic scheduled backups
//
// Backup Types:
//
//	Full:         every activity in the record store
//	Incremental:  activities logged strictly after the parent backup
//	Differential: activities logged strictly after the chain's base backup
//
// Architecture:
//
//	┌───────────┐     ┌──────────┐     ┌──────────────┐
//	│ Scheduler │────▶│  Service │────▶│ record.Store │
//	└───────────┘     └──────────┘     └──────────────┘
//	                    │       │
//	                    ▼       ▼
//	             ┌─────────┐ ┌────────────┐
//	             │ Catalog │ │ blob.Store │
//	             │ (badger)│ │ (archives) │
//	             └─────────┘ └────────────┘
//
// Every envelope carries its full record payload, so any backup restores on
// its own even when older links of its chain have been pruned.
//
// Usage:
//
//	svc := backup.NewService(records, blobs, catalog, cfg)
//
//	meta, err := svc.CreateBackup(ctx, backup.CreateOptions{
//	    Name: "before-import",
//	    Type: backup.TypeFull,
//	})
//
//	result, err := svc.RestoreBackup(ctx, backup.RestoreOptions{
//	    BackupID: meta.ID,
//	    Strategy: backup.StrategyMergeWithExisting,
//	})
//
// The Service serializes create, restore, delete and retention internally;
// callers may invoke it from any goroutine.
package backup
