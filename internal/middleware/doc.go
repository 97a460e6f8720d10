// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

/*
Package middleware provides Prometheus instrumentation middleware for the
HTTP API.

The router composes this with chi's stock middleware (RealIP, Recoverer,
Compress) and the API-specific middleware in internal/api (CORS, rate
limiting, security headers, request ID logging). This package carries only
the pieces that talk to the metrics registry.

Key Components:

  - PrometheusMetrics: per-request instrumentation recording method,
    endpoint, status code, and duration, plus an in-flight request gauge

Usage Example:

	import "github.com/mkerring/carbonlog/internal/middleware"

	r := chi.NewRouter()
	r.Use(middleware.PrometheusMetrics())

Endpoint labels use the chi route pattern ("/api/v1/backups/{id}") rather
than the raw URL path, keeping metric cardinality bounded no matter how
many backup IDs pass through. Requests that never match a route fall back
to the raw path.

Thread Safety:

PrometheusMetrics is safe for concurrent use; the underlying collectors
in internal/metrics handle synchronization.

See Also:

  - internal/api: router and API-specific middleware
  - internal/metrics: Prometheus metrics definitions
*/
package middleware
