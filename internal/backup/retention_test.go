// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

package backup

import (
	"context"
	"errors"
	"testing"
	"time"
)

func retainedIDs(t *testing.T, env *testEnv) []string {
	t.Helper()
	entries, err := env.catalog.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	ids := make([]string, 0, len(entries))
	for _, meta := range entries {
		ids = append(ids, meta.ID)
	}
	return ids
}

// TestApplyRetentionAgeLimit tests that backups beyond the age limit
// are deleted regardless of count
func TestApplyRetentionAgeLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Retention = RetentionPolicy{MaxAgeDays: 90}
	env := newTestEnv(t, cfg)

	now := time.Now().UTC()
	catalogEntry(t, env, "old-1", now.AddDate(0, 0, -100), TypeFull, "")
	catalogEntry(t, env, "old-2", now.AddDate(0, 0, -95), TypeFull, "")
	catalogEntry(t, env, "recent-1", now.AddDate(0, 0, -10), TypeFull, "")
	catalogEntry(t, env, "recent-2", now.Add(-time.Hour), TypeFull, "")

	report, err := env.svc.ApplyRetention(context.Background())
	if err != nil {
		t.Fatalf("ApplyRetention failed: %v", err)
	}

	if report.Expired != 2 {
		t.Errorf("Expired = %d, want 2", report.Expired)
	}
	if report.Pruned != 0 {
		t.Errorf("Pruned = %d, want 0", report.Pruned)
	}
	if report.Remaining != 2 {
		t.Errorf("Remaining = %d, want 2", report.Remaining)
	}

	mustSameIDs(t, retainedIDs(t, env), []string{"recent-1", "recent-2"})
	if env.blobs.count() != 2 {
		t.Errorf("blob store has %d blobs, want 2", env.blobs.count())
	}
}

// TestApplyRetentionCountCap tests that excess backups are pruned
// oldest first
func TestApplyRetentionCountCap(t *testing.T) {
	cfg := testConfig()
	cfg.Retention = RetentionPolicy{MaxCount: 3}
	env := newTestEnv(t, cfg)

	for i, id := range []string{"cap-1", "cap-2", "cap-3", "cap-4", "cap-5"} {
		catalogEntry(t, env, id, activityBase.Add(time.Duration(i)*time.Hour), TypeFull, "")
	}

	report, err := env.svc.ApplyRetention(context.Background())
	if err != nil {
		t.Fatalf("ApplyRetention failed: %v", err)
	}

	if report.Pruned != 2 {
		t.Errorf("Pruned = %d, want 2", report.Pruned)
	}
	if report.Expired != 0 {
		t.Errorf("Expired = %d, want 0", report.Expired)
	}
	if report.Remaining != 3 {
		t.Errorf("Remaining = %d, want 3", report.Remaining)
	}

	mustSameIDs(t, retainedIDs(t, env), []string{"cap-3", "cap-4", "cap-5"})
}

// TestApplyRetentionBothRules tests the interaction of expiry and the
// count cap
func TestApplyRetentionBothRules(t *testing.T) {
	t.Run("expiry wins under the cap", func(t *testing.T) {
		cfg := testConfig()
		cfg.Retention = RetentionPolicy{MaxAgeDays: 90, MaxCount: 3}
		env := newTestEnv(t, cfg)

		now := time.Now().UTC()
		for i, id := range []string{"old-1", "old-2", "old-3", "old-4"} {
			catalogEntry(t, env, id, now.AddDate(0, 0, -100-i), TypeFull, "")
		}
		catalogEntry(t, env, "recent-1", now.AddDate(0, 0, -5), TypeFull, "")
		catalogEntry(t, env, "recent-2", now.AddDate(0, 0, -3), TypeFull, "")

		report, err := env.svc.ApplyRetention(context.Background())
		if err != nil {
			t.Fatalf("ApplyRetention failed: %v", err)
		}

		// All four expire even though only one exceeds the cap
		if report.Expired != 4 {
			t.Errorf("Expired = %d, want 4", report.Expired)
		}
		if report.Pruned != 0 {
			t.Errorf("Pruned = %d, want 0", report.Pruned)
		}
		mustSameIDs(t, retainedIDs(t, env), []string{"recent-1", "recent-2"})
	})

	t.Run("cap applies to non-expired entries", func(t *testing.T) {
		cfg := testConfig()
		cfg.Retention = RetentionPolicy{MaxAgeDays: 90, MaxCount: 3}
		env := newTestEnv(t, cfg)

		now := time.Now().UTC()
		catalogEntry(t, env, "old-1", now.AddDate(0, 0, -120), TypeFull, "")
		catalogEntry(t, env, "old-2", now.AddDate(0, 0, -110), TypeFull, "")
		for i, id := range []string{"r-1", "r-2", "r-3", "r-4", "r-5"} {
			catalogEntry(t, env, id, now.AddDate(0, 0, -20+i), TypeFull, "")
		}

		report, err := env.svc.ApplyRetention(context.Background())
		if err != nil {
			t.Fatalf("ApplyRetention failed: %v", err)
		}

		if report.Expired != 2 {
			t.Errorf("Expired = %d, want 2", report.Expired)
		}
		if report.Pruned != 2 {
			t.Errorf("Pruned = %d, want 2", report.Pruned)
		}
		if report.Remaining != 3 {
			t.Errorf("Remaining = %d, want 3", report.Remaining)
		}
		mustSameIDs(t, retainedIDs(t, env), []string{"r-3", "r-4", "r-5"})
	})
}

// TestApplyRetentionProtectsChainAncestor tests that a referenced chain
// base is traded into the keep set instead of an unrelated entry
func TestApplyRetentionProtectsChainAncestor(t *testing.T) {
	cfg := testConfig()
	cfg.Retention = RetentionPolicy{MaxCount: 2}
	env := newTestEnv(t, cfg)

	t0 := activityBase
	catalogEntry(t, env, "base", t0, TypeFull, "")
	catalogEntry(t, env, "solo-1", t0.Add(time.Hour), TypeFull, "")
	catalogEntry(t, env, "solo-2", t0.Add(2*time.Hour), TypeFull, "")
	catalogEntry(t, env, "leaf", t0.Add(3*time.Hour), TypeIncremental, "base")

	report, err := env.svc.ApplyRetention(context.Background())
	if err != nil {
		t.Fatalf("ApplyRetention failed: %v", err)
	}

	// The leaf keeps its base; the standalone entries are the victims
	if report.Pruned != 2 {
		t.Errorf("Pruned = %d, want 2", report.Pruned)
	}
	if report.Protected != 1 {
		t.Errorf("Protected = %d, want 1", report.Protected)
	}
	mustSameIDs(t, retainedIDs(t, env), []string{"base", "leaf"})
}

// TestApplyRetentionPureChain tests pruning inside a single chain where
// no trade can protect the base
func TestApplyRetentionPureChain(t *testing.T) {
	cfg := testConfig()
	cfg.Retention = RetentionPolicy{MaxCount: 2}
	env := newTestEnv(t, cfg)

	t0 := activityBase
	catalogEntry(t, env, "chain-a", t0, TypeFull, "")
	catalogEntry(t, env, "chain-b", t0.Add(time.Hour), TypeIncremental, "chain-a")
	catalogEntry(t, env, "chain-c", t0.Add(2*time.Hour), TypeIncremental, "chain-b")
	catalogEntry(t, env, "chain-d", t0.Add(3*time.Hour), TypeIncremental, "chain-c")

	report, err := env.svc.ApplyRetention(context.Background())
	if err != nil {
		t.Fatalf("ApplyRetention failed: %v", err)
	}

	// Every survivor is part of the one chain, so the oldest links go
	if report.Pruned != 2 {
		t.Errorf("Pruned = %d, want 2", report.Pruned)
	}
	if report.Protected != 0 {
		t.Errorf("Protected = %d, want 0", report.Protected)
	}
	mustSameIDs(t, retainedIDs(t, env), []string{"chain-c", "chain-d"})
}

// TestApplyRetentionNeverTradesNewest tests that chain protection stops
// before sacrificing the newest backup
func TestApplyRetentionNeverTradesNewest(t *testing.T) {
	cfg := testConfig()
	cfg.Retention = RetentionPolicy{MaxCount: 3}
	env := newTestEnv(t, cfg)

	t0 := activityBase
	catalogEntry(t, env, "deep-base", t0, TypeFull, "")
	catalogEntry(t, env, "deep-mid", t0.Add(time.Hour), TypeIncremental, "deep-base")
	catalogEntry(t, env, "solo-old", t0.Add(2*time.Hour), TypeFull, "")
	catalogEntry(t, env, "deep-leaf", t0.Add(3*time.Hour), TypeIncremental, "deep-mid")
	catalogEntry(t, env, "newest", t0.Add(4*time.Hour), TypeFull, "")

	report, err := env.svc.ApplyRetention(context.Background())
	if err != nil {
		t.Fatalf("ApplyRetention failed: %v", err)
	}

	// The leaf trades solo-old for its immediate parent, but the chain
	// base cannot claim the newest backup and is pruned with a warning
	if report.Pruned != 2 {
		t.Errorf("Pruned = %d, want 2", report.Pruned)
	}
	if report.Protected != 1 {
		t.Errorf("Protected = %d, want 1", report.Protected)
	}
	mustSameIDs(t, retainedIDs(t, env), []string{"newest", "deep-leaf", "deep-mid"})
}

// TestApplyRetentionDisabled tests that zeroed rules delete nothing
func TestApplyRetentionDisabled(t *testing.T) {
	env := newTestEnv(t, testConfig())

	now := time.Now().UTC()
	catalogEntry(t, env, "ancient", now.AddDate(-2, 0, 0), TypeFull, "")
	for i, id := range []string{"n-1", "n-2", "n-3", "n-4"} {
		catalogEntry(t, env, id, now.Add(time.Duration(-i)*time.Hour), TypeFull, "")
	}

	report, err := env.svc.ApplyRetention(context.Background())
	if err != nil {
		t.Fatalf("ApplyRetention failed: %v", err)
	}

	if report.Expired != 0 || report.Pruned != 0 {
		t.Errorf("deletions = %d/%d, want none", report.Expired, report.Pruned)
	}
	if report.Remaining != 5 {
		t.Errorf("Remaining = %d, want 5", report.Remaining)
	}

	count, _ := env.catalog.Count(context.Background())
	if count != 5 {
		t.Errorf("catalog has %d rows, want 5", count)
	}
}

// TestApplyRetentionAtCap tests that a catalog exactly at the cap is
// left alone
func TestApplyRetentionAtCap(t *testing.T) {
	cfg := testConfig()
	cfg.Retention = RetentionPolicy{MaxCount: 3}
	env := newTestEnv(t, cfg)

	for i, id := range []string{"at-1", "at-2", "at-3"} {
		catalogEntry(t, env, id, activityBase.Add(time.Duration(i)*time.Hour), TypeFull, "")
	}

	report, err := env.svc.ApplyRetention(context.Background())
	if err != nil {
		t.Fatalf("ApplyRetention failed: %v", err)
	}
	if report.Pruned != 0 {
		t.Errorf("Pruned = %d, want 0", report.Pruned)
	}
	if report.Remaining != 3 {
		t.Errorf("Remaining = %d, want 3", report.Remaining)
	}
}

// TestApplyRetentionEmptyCatalog tests a pass over nothing
func TestApplyRetentionEmptyCatalog(t *testing.T) {
	cfg := testConfig()
	cfg.Retention = DefaultRetentionPolicy()
	env := newTestEnv(t, cfg)

	report, err := env.svc.ApplyRetention(context.Background())
	if err != nil {
		t.Fatalf("ApplyRetention failed: %v", err)
	}
	if report.Expired != 0 || report.Pruned != 0 || report.Remaining != 0 {
		t.Errorf("report = %+v, want zeros", report)
	}
}

// TestApplyRetentionDeleteFailure tests that failed deletions surface
// alongside the partial report
func TestApplyRetentionDeleteFailure(t *testing.T) {
	cfg := testConfig()
	cfg.Retention = RetentionPolicy{MaxCount: 2}
	env := newTestEnv(t, cfg)

	for i, id := range []string{"f-1", "f-2", "f-3", "f-4"} {
		catalogEntry(t, env, id, activityBase.Add(time.Duration(i)*time.Hour), TypeFull, "")
	}
	env.catalog.deleteErr = errors.New("catalog offline")

	report, err := env.svc.ApplyRetention(context.Background())
	mustErrorIs(t, err, ErrIO)
	if report == nil {
		t.Fatal("report is nil, want partial report alongside the error")
	}
	if report.Pruned != 0 {
		t.Errorf("Pruned = %d, want 0", report.Pruned)
	}
	if report.Remaining != 4 {
		t.Errorf("Remaining = %d, want 4", report.Remaining)
	}

	count, _ := env.catalog.Count(context.Background())
	if count != 4 {
		t.Errorf("catalog has %d rows, want 4", count)
	}
}

// TestPreviewRetention tests that the preview matches what a pass would
// delete without deleting anything
func TestPreviewRetention(t *testing.T) {
	cfg := testConfig()
	cfg.Retention = RetentionPolicy{MaxCount: 2}
	env := newTestEnv(t, cfg)
	ctx := context.Background()

	t0 := activityBase
	catalogEntry(t, env, "base", t0, TypeFull, "")
	catalogEntry(t, env, "solo-1", t0.Add(time.Hour), TypeFull, "")
	catalogEntry(t, env, "solo-2", t0.Add(2*time.Hour), TypeFull, "")
	catalogEntry(t, env, "leaf", t0.Add(3*time.Hour), TypeIncremental, "base")

	preview, err := env.svc.PreviewRetention(ctx)
	if err != nil {
		t.Fatalf("PreviewRetention failed: %v", err)
	}

	if len(preview.ExpiredIDs) != 0 {
		t.Errorf("ExpiredIDs = %v, want none", preview.ExpiredIDs)
	}
	mustSameIDs(t, preview.PruneIDs, []string{"solo-1", "solo-2"})
	mustSameIDs(t, preview.ProtectedIDs, []string{"base"})
	if preview.Remaining != 2 {
		t.Errorf("Remaining = %d, want 2", preview.Remaining)
	}

	// Preview must not delete
	count, _ := env.catalog.Count(ctx)
	if count != 4 {
		t.Errorf("catalog has %d rows after preview, want 4", count)
	}

	// The pass does what the preview said
	report, err := env.svc.ApplyRetention(ctx)
	if err != nil {
		t.Fatalf("ApplyRetention failed: %v", err)
	}
	if report.Pruned != len(preview.PruneIDs) {
		t.Errorf("Pruned = %d, preview said %d", report.Pruned, len(preview.PruneIDs))
	}
	mustSameIDs(t, retainedIDs(t, env), []string{"base", "leaf"})
}

// TestPreviewRetentionEmptyLists tests that previews never return nil
// slices
func TestPreviewRetentionEmptyLists(t *testing.T) {
	cfg := testConfig()
	cfg.Retention = DefaultRetentionPolicy()
	env := newTestEnv(t, cfg)

	preview, err := env.svc.PreviewRetention(context.Background())
	if err != nil {
		t.Fatalf("PreviewRetention failed: %v", err)
	}
	if preview.ExpiredIDs == nil || preview.PruneIDs == nil || preview.ProtectedIDs == nil {
		t.Error("preview lists must be empty, not nil")
	}
}
