// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

/*
scheduler.go - Automatic Backup Scheduling

The scheduler creates backups at a configured interval without manual
intervention and applies retention after every run.

Timer Logic:
  - Intervals >= 24h run at the preferred hour, scheduling the next
    occurrence (today if still ahead, otherwise tomorrow, plus whole
    days for multi-day intervals)
  - Shorter intervals simply add the interval to the current time

Chained Schedules:
A scheduled incremental parents on the newest cataloged backup, a
scheduled differential on the newest full backup. When no suitable
parent exists yet the run falls back to a full backup, which then
seeds the chain.

The scheduler runs as a suture service: Serve blocks until the context
is canceled and never returns an error for failed backup runs, which
are logged and retried at the next tick.
*/

//nolint:staticcheck // File documentation, not package doc
package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/mkerring/carbonlog/internal/logging"
	"github.com/mkerring/carbonlog/internal/metrics"
)

// Scheduler triggers automatic backups at a fixed interval
type Scheduler struct {
	service *Service
	cfg     ScheduleConfig
}

// NewScheduler creates a scheduler driving the given service. The
// caller decides whether to run it; a disabled schedule is simply never
// added to the supervision tree.
func NewScheduler(service *Service, cfg ScheduleConfig) *Scheduler {
	// Config validation enforces a positive interval when the schedule
	// is enabled; the guard keeps a zero value from busy-looping.
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if !cfg.BackupType.Valid() {
		cfg.BackupType = TypeFull
	}
	return &Scheduler{
		service: service,
		cfg:     cfg,
	}
}

// String names the scheduler in supervisor logs
func (sc *Scheduler) String() string {
	return "backup-scheduler"
}

// Serve implements suture.Service. It blocks until the context is
// canceled, creating a backup at every tick.
func (sc *Scheduler) Serve(ctx context.Context) error {
	next := calculateNextRun(sc.cfg, time.Now())
	logging.Info().
		Str("backup_type", string(sc.cfg.BackupType)).
		Dur("interval", sc.cfg.Interval).
		Time("next_backup", next).
		Msg("Backup scheduler started")

	timer := time.NewTimer(time.Until(next))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("Backup scheduler stopped")
			return nil
		case <-timer.C:
			sc.runOnce(ctx)

			next = calculateNextRun(sc.cfg, time.Now())
			timer.Reset(time.Until(next))
			logging.Debug().Time("next_backup", next).Msg("Next scheduled backup planned")
		}
	}
}

// runOnce creates one scheduled backup and applies retention. Failures
// are logged, never fatal; the next tick tries again.
func (sc *Scheduler) runOnce(ctx context.Context) {
	opts, err := sc.scheduledOptions(ctx)
	if err != nil {
		metrics.RecordScheduledBackup(false)
		logging.Error().Err(err).Msg("Scheduled backup failed")
		return
	}

	meta, err := sc.service.CreateBackup(ctx, opts)
	if err != nil {
		metrics.RecordScheduledBackup(false)
		logging.Error().Err(err).Msg("Scheduled backup failed")
	} else {
		metrics.RecordScheduledBackup(true)
		logging.Info().
			Str("backup_id", meta.ID).
			Str("type", string(meta.Type)).
			Int("record_count", meta.RecordCount).
			Msg("Scheduled backup completed")
	}

	// CreateBackup applies retention after success; this pass also
	// covers failed runs so expiry keeps moving on a broken schedule.
	if _, err := sc.service.ApplyRetention(ctx); err != nil {
		logging.Error().Err(err).Msg("Scheduled retention failed")
	}
}

// scheduledOptions resolves the creation options for one scheduled run,
// picking a parent for chained types and falling back to full when the
// catalog has no suitable parent yet.
func (sc *Scheduler) scheduledOptions(ctx context.Context) (CreateOptions, error) {
	opts := CreateOptions{
		Type:     sc.cfg.BackupType,
		Metadata: map[string]string{"trigger": "scheduled"},
	}

	if opts.Type != TypeFull {
		parentID, err := sc.resolveScheduledParent(ctx, opts.Type)
		if err != nil {
			return CreateOptions{}, err
		}
		if parentID == "" {
			logging.Info().
				Str("backup_type", string(opts.Type)).
				Msg("No parent available for chained schedule, creating full backup")
			opts.Type = TypeFull
		}
		opts.ParentBackupID = parentID
	}

	opts.Name = fmt.Sprintf("scheduled-%s-%s", opts.Type, time.Now().UTC().Format("20060102-150405"))
	return opts, nil
}

// resolveScheduledParent returns the newest cataloged backup for an
// incremental run, or the newest full backup for a differential run.
// Empty means no suitable parent exists.
func (sc *Scheduler) resolveScheduledParent(ctx context.Context, backupType Type) (string, error) {
	entries, err := sc.service.ListBackups(ctx)
	if err != nil {
		return "", err
	}

	for _, meta := range entries {
		if backupType == TypeDifferential && meta.Type != TypeFull {
			continue
		}
		return meta.ID, nil
	}
	return "", nil
}

// calculateNextRun determines when the next scheduled backup should run
func calculateNextRun(cfg ScheduleConfig, now time.Time) time.Time {
	interval := cfg.Interval

	if interval >= 24*time.Hour {
		// Daily or longer - use preferred hour
		next := time.Date(now.Year(), now.Month(), now.Day(),
			cfg.PreferredHour, 0, 0, 0, now.Location())

		// If we've already passed the preferred hour today, schedule for tomorrow
		if next.Before(now) {
			next = next.Add(24 * time.Hour)
		}

		// Add additional days if interval is more than 24h
		if interval > 24*time.Hour {
			days := int(interval.Hours() / 24)
			next = next.Add(time.Duration(days-1) * 24 * time.Hour)
		}

		return next
	}

	// Shorter interval - just add interval to now
	return now.Add(interval)
}
