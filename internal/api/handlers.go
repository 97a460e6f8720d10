// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

package api

import (
	"context"
	"time"

	"github.com/mkerring/carbonlog/internal/backup"
	"github.com/mkerring/carbonlog/internal/cache"
	"github.com/mkerring/carbonlog/internal/config"
	"github.com/mkerring/carbonlog/internal/logging"
	"github.com/mkerring/carbonlog/internal/record"
)

// BackupService is the surface of the backup subsystem consumed by HTTP
// handlers. The concrete implementation is *backup.Service; the interface
// exists so handler tests can substitute a mock.
type BackupService interface {
	CreateBackup(ctx context.Context, opts backup.CreateOptions) (*backup.Metadata, error)
	ListBackups(ctx context.Context) ([]*backup.Metadata, error)
	GetBackup(ctx context.Context, id string) (*backup.Metadata, error)
	DeleteBackup(ctx context.Context, id string) error
	VerifyBackup(ctx context.Context, id string) (bool, error)
	RestoreBackup(ctx context.Context, opts backup.RestoreOptions) (*backup.RestoreResult, error)
	ReadBlob(ctx context.Context, id string) ([]byte, *backup.Metadata, error)
	Stats(ctx context.Context) (*backup.Stats, error)
	PreviewRetention(ctx context.Context) (*backup.RetentionPreview, error)
	ApplyRetention(ctx context.Context) (*backup.RetentionReport, error)
}

// ActivityStore is the surface of the activity store consumed by HTTP
// handlers. The concrete implementation is *record.DB.
type ActivityStore interface {
	Insert(ctx context.Context, a record.Activity) error
	ListPage(ctx context.Context, limit, offset int, category string) ([]record.Activity, error)
	Count(ctx context.Context) (int, error)
	Summarize(ctx context.Context) (*record.Summary, error)
	Ping(ctx context.Context) error
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across multiple files:
//   - handlers.go: Handler struct and constructor (this file)
//   - response.go: Shared response and validation helpers
//   - handlers_health.go: Health endpoint
//   - handlers_activities.go: Activity logging and query endpoints
//   - handlers_backup.go: Backup, restore and retention endpoints
type Handler struct {
	records   ActivityStore
	service   BackupService
	config    *config.Config
	cache     *cache.Cache
	startTime time.Time
}

// NewHandler creates an API handler with all required dependencies.
//
// The handler initializes with a 60-second TTL cache for the read-heavy
// activity endpoints, matching the Cache-Control max-age the responses
// advertise.
func NewHandler(records ActivityStore, service BackupService, cfg *config.Config) *Handler {
	return &Handler{
		records:   records,
		service:   service,
		config:    cfg,
		cache:     cache.New(60 * time.Second),
		startTime: time.Now(),
	}
}

// ClearCache invalidates all cached activity data. Called after writes
// that change activity rows so clients never poll stale aggregates.
func (h *Handler) ClearCache() {
	if h.cache != nil {
		h.cache.Clear()
		logging.Debug().Msg("Activity cache cleared")
	}
}

// CacheStats returns cache performance counters for the health endpoint.
func (h *Handler) CacheStats() cache.Stats {
	if h.cache != nil {
		return h.cache.GetStats()
	}
	return cache.Stats{}
}
