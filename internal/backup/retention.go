// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

/*
retention.go - Retention Policy Enforcement

Two absolute rules, applied in order:

 1. Age: every backup older than MaxAgeDays is deleted, regardless of
    how many backups remain.
 2. Count: when more than MaxCount non-expired backups remain, the
    oldest excess entries are deleted until the cap holds.

Victim Selection (count rule):
The newest MaxCount entries form the initial keep set. Chain ancestors
referenced by kept entries are pulled into the keep set when an older
entry outside their chain can be traded for them, so surviving chains
keep their base where possible. When no trade is possible the ancestor
is deleted anyway with a warning; its children remain restorable
because envelopes are self-contained, only whole-chain reconstruction
is lost. Everything outside the final keep set is deleted oldest first.

Setting MaxAgeDays or MaxCount to zero disables the respective rule.
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

// retentionPlan is the outcome of evaluating the policy against a
// catalog snapshot, before anything is deleted
type retentionPlan struct {
	expired   []*Metadata
	pruned    []*Metadata
	protected []string
	remaining int
}

// ApplyRetention evaluates the retention policy and deletes every
// expired and excess backup, blob and catalog row together. The report
// reflects the work actually done; when some deletions fail the report
// is returned alongside an ErrIO summarizing the failures.
func (s *Service) ApplyRetention(ctx context.Context) (*RetentionReport, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.applyRetentionLocked(ctx)
}

// applyRetentionLocked runs one retention pass. Callers hold opMu; the
// create path runs this directly after a successful backup.
func (s *Service) applyRetentionLocked(ctx context.Context) (*RetentionReport, error) {
	entries, err := s.catalog.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing backups for retention: %v", ErrIO, err)
	}

	plan := planRetention(entries, s.cfg.Retention, time.Now().UTC())
	report := &RetentionReport{
		Protected: len(plan.protected),
		Remaining: len(entries),
	}

	failures := 0
	for _, meta := range plan.expired {
		if s.deleteForRetention(ctx, meta, "age limit") {
			report.Expired++
			report.Remaining--
		} else {
			failures++
		}
	}
	for _, meta := range plan.pruned {
		if s.deleteForRetention(ctx, meta, "count cap") {
			report.Pruned++
			report.Remaining--
		} else {
			failures++
		}
	}

	metrics.RecordRetentionRun(report.Expired, report.Pruned)
	s.updateCatalogGauge(ctx)

	if report.Expired+report.Pruned > 0 {
		logging.Info().
			Int("expired", report.Expired).
			Int("pruned", report.Pruned).
			Int("protected", report.Protected).
			Int("remaining", report.Remaining).
			Msg("Retention policy applied")
	}

	if failures > 0 {
		return report, fmt.Errorf("%w: %d retention deletions failed", ErrIO, failures)
	}
	return report, nil
}

// PreviewRetention reports what a retention pass would delete without
// deleting anything.
func (s *Service) PreviewRetention(ctx context.Context) (*RetentionPreview, error) {
	entries, err := s.catalog.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: listing backups for retention: %v", ErrIO, err)
	}

	plan := planRetention(entries, s.cfg.Retention, time.Now().UTC())

	preview := &RetentionPreview{
		ExpiredIDs:   make([]string, 0, len(plan.expired)),
		PruneIDs:     make([]string, 0, len(plan.pruned)),
		ProtectedIDs: plan.protected,
		Remaining:    plan.remaining,
	}
	for _, meta := range plan.expired {
		preview.ExpiredIDs = append(preview.ExpiredIDs, meta.ID)
	}
	for _, meta := range plan.pruned {
		preview.PruneIDs = append(preview.PruneIDs, meta.ID)
	}
	if preview.ProtectedIDs == nil {
		preview.ProtectedIDs = make([]string, 0)
	}
	return preview, nil
}

// deleteForRetention removes one backup's row, then its blob. A blob
// that fails to delete after its row is gone is logged and written off:
// the catalog no longer references it.
func (s *Service) deleteForRetention(ctx context.Context, meta *Metadata, reason string) bool {
	if err := s.catalog.Delete(ctx, meta.ID); err != nil {
		logging.Warn().Err(err).Str("backup_id", meta.ID).Msg("Retention failed to delete catalog row")
		return false
	}

	if err := s.deleteBlobIfPresent(ctx, meta); err != nil {
		logging.Warn().Err(err).Str("backup_id", meta.ID).Msg("Retention failed to delete blob for removed row")
	}

	logging.Debug().
		Str("backup_id", meta.ID).
		Str("reason", reason).
		Time("created_at", meta.CreatedAt).
		Msg("Backup removed by retention")
	return true
}

// planRetention evaluates both rules against a catalog snapshot
func planRetention(entries []*Metadata, policy RetentionPolicy, now time.Time) *retentionPlan {
	plan := &retentionPlan{}

	var survivors []*Metadata
	for _, meta := range entries {
		if expiredByAge(meta, policy, now) {
			plan.expired = append(plan.expired, meta)
		} else {
			survivors = append(survivors, meta)
		}
	}

	plan.pruned, plan.protected = selectPruneVictims(survivors, policy.MaxCount)
	plan.remaining = len(entries) - len(plan.expired) - len(plan.pruned)
	return plan
}

// expiredByAge reports whether a backup exceeds the age limit
func expiredByAge(meta *Metadata, policy RetentionPolicy, now time.Time) bool {
	if policy.MaxAgeDays <= 0 {
		return false
	}
	cutoff := now.AddDate(0, 0, -policy.MaxAgeDays)
	return meta.CreatedAt.Before(cutoff)
}

// selectPruneVictims picks count-cap victims. The newest maxCount
// entries are kept; chain ancestors of kept entries are pulled into the
// keep set when an entry outside their chain can be traded for them.
// Everything else is a victim, returned oldest first. Protected lists
// the ancestors that were pulled in.
func selectPruneVictims(survivors []*Metadata, maxCount int) (victims []*Metadata, protected []string) {
	if maxCount <= 0 || len(survivors) <= maxCount {
		return nil, nil
	}

	byID := make(map[string]*Metadata, len(survivors))
	for _, meta := range survivors {
		byID[meta.ID] = meta
	}

	sorted := make([]*Metadata, len(survivors))
	copy(sorted, survivors)
	sortNewestFirst(sorted)

	keep := make(map[string]bool, maxCount)
	queue := make([]*Metadata, 0, maxCount)
	for i := 0; i < maxCount; i++ {
		keep[sorted[i].ID] = true
		queue = append(queue, sorted[i])
	}

	// Pull surviving chain ancestors of kept entries into the keep set.
	// Newly admitted ancestors join the queue so their own chains are
	// walked too. Entries traded away after queuing are skipped.
	for qi := 0; qi < len(queue); qi++ {
		if !keep[queue[qi].ID] {
			continue
		}
		admitted := pullChainAncestors(queue[qi], byID, keep, sorted)
		for _, parent := range admitted {
			protected = append(protected, parent.ID)
			queue = append(queue, parent)
		}
	}

	for _, meta := range sorted {
		if !keep[meta.ID] {
			victims = append(victims, meta)
		}
	}
	sortOldestFirst(victims)

	warnOrphanedChains(victims, sorted, keep)
	return victims, protected
}

// pullChainAncestors walks the parent links of one kept entry and
// trades keep-set slots for ancestors that would otherwise be pruned.
// The chain between the entry and the ancestor can never be traded
// away for it.
func pullChainAncestors(meta *Metadata, byID map[string]*Metadata, keep map[string]bool, sorted []*Metadata) []*Metadata {
	var admitted []*Metadata
	chain := map[string]bool{meta.ID: true}

	parentID := meta.ParentBackupID
	for parentID != "" {
		// Corrupt parent links must not loop forever
		if chain[parentID] {
			break
		}

		parent, ok := byID[parentID]
		if !ok {
			break
		}
		chain[parent.ID] = true

		if !keep[parent.ID] {
			trade := oldestTradeable(sorted, keep, chain)
			if trade == nil {
				break
			}
			delete(keep, trade.ID)
			keep[parent.ID] = true
			admitted = append(admitted, parent)
			logging.Debug().
				Str("kept_parent", parent.ID).
				Str("traded", trade.ID).
				Msg("Retention keeping referenced chain ancestor")
		}

		parentID = parent.ParentBackupID
	}
	return admitted
}

// oldestTradeable returns the oldest kept entry that is chain-isolated
// within the keep set: no kept entry references it, its own parent link
// does not point at a kept entry, and it is not part of the chain being
// preserved. The newest backup is never traded away, so a creation can
// never be undone by the retention pass it triggers. Nil means the keep
// set has no slack for a trade.
func oldestTradeable(sorted []*Metadata, keep map[string]bool, chain map[string]bool) *Metadata {
	referenced := make(map[string]bool)
	for _, meta := range sorted {
		if keep[meta.ID] && meta.ParentBackupID != "" {
			referenced[meta.ParentBackupID] = true
		}
	}

	var oldest *Metadata
	for _, meta := range sorted[1:] {
		if !keep[meta.ID] || chain[meta.ID] || referenced[meta.ID] {
			continue
		}
		if meta.ParentBackupID != "" && keep[meta.ParentBackupID] {
			continue
		}
		if oldest == nil || meta.CreatedAt.Before(oldest.CreatedAt) {
			oldest = meta
		}
	}
	return oldest
}

// warnOrphanedChains logs each victim that a kept entry still
// references as a parent; its dependent chains lose their base.
func warnOrphanedChains(victims []*Metadata, sorted []*Metadata, keep map[string]bool) {
	referenced := make(map[string]bool)
	for _, meta := range sorted {
		if keep[meta.ID] && meta.ParentBackupID != "" {
			referenced[meta.ParentBackupID] = true
		}
	}

	for _, meta := range victims {
		if referenced[meta.ID] {
			logging.Warn().
				Str("backup_id", meta.ID).
				Msg("Pruning backup still referenced as a parent; dependent chains lose their base")
		}
	}
}
