// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

package backup

import (
	"time"
)

// FormatVersion is the envelope format written by this build. Decoding
// rejects versions newer than this.
const FormatVersion = 1

// Type defines the kind of backup to create
type Type string

const (
	// TypeFull captures every activity in the record store
	TypeFull Type = "full"

	// TypeIncremental captures activities logged strictly after the
	// parent backup was created
	TypeIncremental Type = "incremental"

	// TypeDifferential captures activities logged strictly after the
	// base of the parent's chain was created
	TypeDifferential Type = "differential"
)

// Valid reports whether t is a known backup type.
func (t Type) Valid() bool {
	switch t {
	case TypeFull, TypeIncremental, TypeDifferential:
		return true
	}
	return false
}

// Status represents the lifecycle state of a backup
type Status string

const (
	// StatusCreated indicates the backup has been initialized but no
	// records were collected yet
	StatusCreated Status = "created"

	// StatusInProgress indicates the backup is being built
	StatusInProgress Status = "in_progress"

	// StatusCompleted indicates the archive is durably written and
	// registered in the catalog
	StatusCompleted Status = "completed"

	// StatusFailed indicates the backup could not be completed
	StatusFailed Status = "failed"

	// StatusRestored indicates the backup has been restored at least once
	StatusRestored Status = "restored"
)

// statusRank orders the forward-only lifecycle. Failed and restored are
// terminal.
var statusRank = map[Status]int{
	StatusCreated:    0,
	StatusInProgress: 1,
	StatusCompleted:  2,
	StatusRestored:   3,
}

// CanTransitionTo reports whether the lifecycle permits moving from s
// to next. Transitions only advance forward (created, in_progress,
// completed, restored); any non-terminal state may fail. Nothing leaves
// failed or restored except restored, which may restore again.
func (s Status) CanTransitionTo(next Status) bool {
	if s == StatusFailed {
		return false
	}
	if next == StatusFailed {
		return s != StatusRestored
	}
	cur, ok := statusRank[s]
	if !ok {
		return false
	}
	nxt, ok := statusRank[next]
	if !ok {
		return false
	}
	if s == StatusRestored && next == StatusRestored {
		return true
	}
	return nxt > cur
}

// Strategy selects how restored records reconcile with the live store
type Strategy string

const (
	// StrategyReplaceAll deletes every stored activity, then inserts
	// the full envelope content
	StrategyReplaceAll Strategy = "replace_all"

	// StrategyMergeWithExisting inserts envelope records whose identity
	// is absent, probing the store per record; existing records are
	// never touched
	StrategyMergeWithExisting Strategy = "merge_with_existing"

	// StrategyRestoreOnlyMissing inserts envelope records absent from a
	// precomputed identity snapshot; existing records are never touched
	StrategyRestoreOnlyMissing Strategy = "restore_only_missing"
)

// Valid reports whether s is a known restore strategy.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyReplaceAll, StrategyMergeWithExisting, StrategyRestoreOnlyMissing:
		return true
	}
	return false
}

// Metadata is one catalog row describing a backup
type Metadata struct {
	// Unique generation-ordered identifier (UUIDv7)
	ID string `json:"id"`

	// User-provided label, defaulted when empty
	Name string `json:"name"`

	// Type of backup (full, incremental, differential)
	Type Type `json:"type"`

	// Current lifecycle status
	Status Status `json:"status"`

	// When the backup was created (UTC)
	CreatedAt time.Time `json:"created_at"`

	// When the backup was last restored
	RestoredAt *time.Time `json:"restored_at,omitempty"`

	// Number of activity records in the envelope
	RecordCount int `json:"record_count"`

	// Blob store reference of the archive
	BlobRef string `json:"blob_ref"`

	// Hex SHA-256 of the written archive bytes
	Checksum string `json:"checksum"`

	// Size of the written archive in bytes
	SizeBytes int64 `json:"size_bytes"`

	// Parent backup for incremental and differential chains
	ParentBackupID string `json:"parent_backup_id,omitempty"`

	// Envelope format version
	FormatVersion int `json:"format_version"`

	// Whether the archive payload is gzip-compressed
	Compressed bool `json:"compressed"`

	// Free-form key/value annotations
	Metadata map[string]string `json:"metadata,omitempty"`
}

// ProgressFunc receives build or restore progress. Callbacks run
// synchronously and must not block; they are never part of control flow.
type ProgressFunc func(fraction float64, stage string)

// CreateOptions configures a backup creation
type CreateOptions struct {
	// User label for the backup
	Name string `json:"name"`

	// Backup type; required
	Type Type `json:"type"`

	// Parent backup id; required for incremental and differential
	ParentBackupID string `json:"parent_backup_id,omitempty"`

	// Free-form annotations copied into the metadata row
	Metadata map[string]string `json:"metadata,omitempty"`

	// Optional progress callback
	OnProgress ProgressFunc `json:"-"`
}

// RestoreOptions configures a restore
type RestoreOptions struct {
	// Backup to restore; required
	BackupID string `json:"backup_id"`

	// Reconciliation strategy; required
	Strategy Strategy `json:"strategy"`

	// Optional progress callback
	OnProgress ProgressFunc `json:"-"`
}

// RestoreResult reports the outcome of a restore operation
type RestoreResult struct {
	// Success is true when no per-record failures occurred
	Success bool `json:"success"`

	// The backup that was restored
	BackupID string `json:"backup_id"`

	// Strategy that was applied
	Strategy Strategy `json:"strategy"`

	// Records inserted into the store
	RestoredRecords int `json:"restored_records"`

	// Records skipped because their identity already existed
	SkippedRecords int `json:"skipped_records"`

	// Records that failed to insert
	ErrorRecords int `json:"error_records"`

	// Per-record failure messages
	Errors []string `json:"errors,omitempty"`

	// Wall-clock duration of the restore
	ProcessingTime time.Duration `json:"processing_time"`
}

// Stats summarizes the backup catalog
type Stats struct {
	// Total number of catalog entries
	TotalBackups int `json:"total_backups"`

	// Sum of archive sizes in bytes
	TotalSizeBytes int64 `json:"total_size_bytes"`

	// Sum of envelope record counts
	TotalRecords int `json:"total_records"`

	// Count of backups per type
	TypeDistribution map[Type]int `json:"type_distribution"`

	// Creation time of the newest backup
	LastBackupDate *time.Time `json:"last_backup_date,omitempty"`

	// Creation time of the oldest backup
	OldestBackupDate *time.Time `json:"oldest_backup_date,omitempty"`
}

// RetentionPolicy defines how backups are retained
type RetentionPolicy struct {
	// MaxAgeDays expires backups older than this many days
	MaxAgeDays int `json:"max_age_days"`

	// MaxCount caps the number of retained non-expired backups
	MaxCount int `json:"max_count"`
}

// DefaultRetentionPolicy returns the standard retention policy.
func DefaultRetentionPolicy() RetentionPolicy {
	return RetentionPolicy{
		MaxAgeDays: 90,
		MaxCount:   20,
	}
}

// RetentionReport summarizes one retention pass
type RetentionReport struct {
	// Entries deleted for exceeding the age limit
	Expired int `json:"expired"`

	// Entries deleted for exceeding the count cap
	Pruned int `json:"pruned"`

	// Referenced parents spared by victim selection
	Protected int `json:"protected"`

	// Entries remaining after the pass
	Remaining int `json:"remaining"`
}

// RetentionPreview lists what a retention pass would delete, without
// deleting anything
type RetentionPreview struct {
	// Entries that would be deleted for age
	ExpiredIDs []string `json:"expired_ids"`

	// Entries that would be deleted for the count cap
	PruneIDs []string `json:"prune_ids"`

	// Referenced parents victim selection would spare
	ProtectedIDs []string `json:"protected_ids"`

	// Entries that would remain
	Remaining int `json:"remaining"`
}

// ScheduleConfig defines when automatic backups run
type ScheduleConfig struct {
	// Enable automatic scheduled backups
	Enabled bool `json:"enabled"`

	// Backup interval (e.g. 24h for daily)
	Interval time.Duration `json:"interval"`

	// Time of day to run backups (hour in 24h format, 0-23).
	// Only used if Interval >= 24h.
	PreferredHour int `json:"preferred_hour"`

	// Type of backup to create on schedule
	BackupType Type `json:"backup_type"`
}

// DefaultScheduleConfig returns the standard schedule configuration.
func DefaultScheduleConfig() ScheduleConfig {
	return ScheduleConfig{
		Enabled:       false,
		Interval:      24 * time.Hour,
		PreferredHour: 2, // 2 AM
		BackupType:    TypeFull,
	}
}

// Config holds backup subsystem settings. The cmd wiring maps the
// application config onto this; the package never reads the environment
// itself.
type Config struct {
	// Compression toggles gzip for archive payloads
	Compression bool

	// CompressionLevel is the gzip level (-2..9, -1 = default)
	CompressionLevel int

	// Retention policy applied after successful creations
	Retention RetentionPolicy

	// Schedule for automatic backups
	Schedule ScheduleConfig
}

// DefaultConfig returns the standard backup configuration.
func DefaultConfig() Config {
	return Config{
		Compression:      true,
		CompressionLevel: -1,
		Retention:        DefaultRetentionPolicy(),
		Schedule:         DefaultScheduleConfig(),
	}
}
