// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

/*
Package api provides the HTTP REST API layer for carbonlog.

This package implements the endpoints for logging activities, browsing the
activity history, and driving the backup subsystem: creating, listing,
verifying, restoring, downloading, and pruning backups. It is the only
interface between HTTP clients and the backend services.

Key Components:

  - Router: HTTP route configuration and middleware stack integration
  - Handler: Request handlers for all API endpoints
  - Response formatting: Standardized JSON responses with metadata
  - Error handling: Consistent error responses with appropriate HTTP status codes
  - Rate limiting: Per-IP limits with a stricter shared bucket for write endpoints
  - CORS: Cross-Origin Resource Sharing for browser clients

API Surface:

1. Health (/api/v1/health):
  - Liveness plus readiness of the record store and backup catalog

2. Activities (/api/v1/activities):
  - Log a carbon-emitting activity (validated category, CO2 amount)
  - List activities with limit/offset pagination and category filter
  - Lifetime totals and per-category CO2 breakdown (activities/stats)

3. Backups (/api/v1/backups):
  - Create full, incremental, or differential backups
  - List, fetch, delete, and verify backups
  - Restore with replace_all, merge_with_existing, or restore_only_missing
  - Statistics, retention preview, manual retention run
  - Download the raw envelope blob (backups/{id}/download)

4. Observability (/metrics):
  - Prometheus metrics endpoint

Usage Example:

	import (
	    "github.com/mkerring/carbonlog/internal/api"
	    "github.com/mkerring/carbonlog/internal/backup"
	    "github.com/mkerring/carbonlog/internal/record"
	)

	// Create dependencies
	db, _ := record.New(&cfg.Database)
	service, _ := backup.NewService(db, blobs, catalog, backupCfg)

	// Create handler and router
	handler := api.NewHandler(db, service, cfg)
	router := api.NewRouter(handler, api.NewChiMiddlewareFromServer(cfg.Server))

	// Setup routes and start server
	http.ListenAndServe(":8080", router.Setup())

Error Model:

Service errors map onto HTTP statuses through their sentinel types:
ErrNotFound becomes 404 NOT_FOUND, ErrInvalidState 409 INVALID_STATE,
ErrIntegrityFailure 422 INTEGRITY_FAILURE, and ErrIO 500 IO_ERROR. A restore
that completes with per-record errors is not a transport failure: it returns
200 with success=false in the result body.

Thread Safety:

All handlers are thread-safe and designed for concurrent request handling.
Shared resources (record store, backup catalog, response cache) are protected
by their respective synchronization primitives.

See Also:

  - internal/backup: Backup creation, restore, verification, retention
  - internal/record: Activity store
  - internal/models: Request/response data structures
  - internal/middleware: HTTP middleware components
*/
package api
