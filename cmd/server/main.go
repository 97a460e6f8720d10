// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mkerring/carbonlog/internal/api"
	"github.com/mkerring/carbonlog/internal/backup"
	"github.com/mkerring/carbonlog/internal/blob"
	"github.com/mkerring/carbonlog/internal/config"
	"github.com/mkerring/carbonlog/internal/logging"
	"github.com/mkerring/carbonlog/internal/record"
	"github.com/mkerring/carbonlog/internal/supervisor"
	"github.com/mkerring/carbonlog/internal/supervisor/services"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting carbonlog with supervisor tree")

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("backup_dir", cfg.Backup.Dir).
		Bool("schedule_enabled", cfg.Backup.Schedule.Enabled).
		Msg("Configuration loaded")

	if cfg.Server.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (CARBONLOG_DISABLE_RATE_LIMIT=true) - do not expose this instance to untrusted networks")
	}

	// Initialize the activity database
	db, err := record.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize activity database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing activity database")
		}
	}()
	logging.Info().Msg("Activity database initialized successfully")

	// Open the backup catalog. An empty path selects Badger's in-memory
	// mode, which keeps metadata only for the lifetime of the process.
	catalog, err := backup.NewBadgerCatalog(cfg.Catalog.Path)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open backup catalog")
	}
	defer func() {
		if err := catalog.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing backup catalog")
		}
	}()
	if cfg.Catalog.Path == "" {
		logging.Warn().Msg("Backup catalog running in-memory (CARBONLOG_CATALOG_PATH not set) - catalog entries are lost on restart")
	} else {
		logging.Info().Str("path", cfg.Catalog.Path).Msg("Backup catalog opened")
	}

	// Filesystem blob store for backup archives
	blobs, err := blob.NewFS(cfg.Backup.Dir)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize backup blob store")
	}

	// Map the application config onto the backup package config
	backupCfg := backup.Config{
		Compression:      cfg.Backup.CompressionEnabled,
		CompressionLevel: cfg.Backup.CompressionLevel,
		Retention: backup.RetentionPolicy{
			MaxAgeDays: cfg.Backup.Retention.MaxAgeDays,
			MaxCount:   cfg.Backup.Retention.MaxCount,
		},
		Schedule: backup.ScheduleConfig{
			Enabled:       cfg.Backup.Schedule.Enabled,
			Interval:      cfg.Backup.Schedule.Interval,
			PreferredHour: cfg.Backup.Schedule.PreferredHour,
			BackupType:    backup.Type(cfg.Backup.Schedule.BackupType),
		},
	}

	svc, err := backup.NewService(db, blobs, catalog, backupCfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize backup service")
	}
	logging.Info().
		Str("dir", cfg.Backup.Dir).
		Bool("compression", cfg.Backup.CompressionEnabled).
		Int("retention_max_age_days", cfg.Backup.Retention.MaxAgeDays).
		Int("retention_max_count", cfg.Backup.Retention.MaxCount).
		Msg("Backup service initialized")

	handler := api.NewHandler(db, svc, cfg)
	router := api.NewRouter(handler, api.NewChiMiddlewareFromServer(cfg.Server))

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Create structured logger for supervisor using our slog adapter
	// This bridges zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	// Create supervisor tree
	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// Data layer services
	if cfg.Backup.Schedule.Enabled {
		scheduler := backup.NewScheduler(svc, backupCfg.Schedule)
		tree.AddDataService(scheduler)
		logging.Info().
			Dur("interval", cfg.Backup.Schedule.Interval).
			Int("preferred_hour", cfg.Backup.Schedule.PreferredHour).
			Str("type", cfg.Backup.Schedule.BackupType).
			Msg("Backup scheduler added to supervisor tree")
	} else {
		logging.Info().Msg("Scheduled backups disabled (CARBONLOG_SCHEDULE_ENABLED=false)")
	}

	// API layer services
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
