// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mkerring/carbonlog/internal/metrics"
)

// PrometheusMetrics creates middleware for recording Prometheus metrics.
// Comprehensive API request instrumentation: active request gauge, per-endpoint
// request counters, and latency histograms.
func PrometheusMetrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Track active requests
			metrics.TrackActiveRequest(true)
			defer metrics.TrackActiveRequest(false)

			// Record start time
			start := time.Now()

			// Wrap ResponseWriter to capture status code
			wrapper := &metricsResponseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			// Call next handler
			next.ServeHTTP(wrapper, r)

			// Calculate duration
			duration := time.Since(start)

			// Record metrics
			metrics.RecordAPIRequest(
				r.Method,
				endpointLabel(r),
				strconv.Itoa(wrapper.statusCode),
				duration,
			)
		})
	}
}

// endpointLabel returns the Chi route pattern for the request, falling back to
// the raw URL path when no pattern matched. Patterns keep label cardinality
// bounded: /api/v1/backups/{id}/verify is one series, not one per backup.
func endpointLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// metricsResponseWriter wraps http.ResponseWriter to capture status code
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

// WriteHeader captures the status code
func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
