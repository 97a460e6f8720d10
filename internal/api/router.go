// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mkerring/carbonlog/internal/middleware"
)

// Router wires handlers and middleware into the HTTP route tree.
type Router struct {
	handler *Handler
	chiMw   *ChiMiddleware
}

// NewRouter creates a new router with all routes configured
func NewRouter(handler *Handler, chiMw *ChiMiddleware) *Router {
	return &Router{
		handler: handler,
		chiMw:   chiMw,
	}
}

// Setup configures all HTTP routes using Chi router.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	// Applied to ALL routes in order
	r.Use(RequestIDWithLogging())     // Add X-Request-ID header with logging context
	r.Use(chimiddleware.RealIP)       // Extract real IP from X-Forwarded-For
	r.Use(chimiddleware.Recoverer)    // Recover from panics
	r.Use(chimiddleware.Compress(5))  // Gzip JSON responses; gzip blobs pass through untouched
	r.Use(router.chiMw.CORS())        // CORS must be global to handle OPTIONS preflight

	// ========================
	// Health Endpoints
	// ========================
	// Permissive rate limiting (1000/min) allows frequent monitoring probes
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMw.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/", router.handler.HandleHealth)
	})

	// ========================
	// Core API Endpoints
	// ========================
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMw.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics())

		// Write endpoints share a single stricter bucket so a burst of
		// backup creations also throttles restores from the same client.
		write := router.chiMw.RateLimitWrite()

		r.Get("/activities", router.handler.HandleListActivities)
		r.With(write).Post("/activities", router.handler.HandleLogActivity)
		r.Get("/activities/stats", router.handler.HandleActivitySummary)

		r.Route("/backups", func(r chi.Router) {
			r.With(write).Post("/", router.handler.HandleCreateBackup)
			r.Get("/", router.handler.HandleListBackups)
			r.Get("/stats", router.handler.HandleBackupStats)
			r.Get("/retention/preview", router.handler.HandleRetentionPreview)
			r.With(write).Post("/retention/apply", router.handler.HandleApplyRetention)
			r.Get("/{id}", router.handler.HandleGetBackup)
			r.Delete("/{id}", router.handler.HandleDeleteBackup)
			r.Post("/{id}/verify", router.handler.HandleVerifyBackup)
			r.With(write).Post("/{id}/restore", router.handler.HandleRestoreBackup)
			r.Get("/{id}/download", router.handler.HandleDownloadBackup)
		})
	})

	// ========================
	// Observability
	// ========================
	r.Handle("/metrics", promhttp.Handler())

	return r
}
