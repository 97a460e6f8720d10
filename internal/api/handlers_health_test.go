// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mkerring/carbonlog/internal/backup"
	"github.com/mkerring/carbonlog/internal/cache"
	"github.com/mkerring/carbonlog/internal/config"
)

func setupHealthTestHandler(t *testing.T, store ActivityStore, svc BackupService) *Handler {
	t.Helper()
	return &Handler{
		records: store,
		service: svc,
		config: &config.Config{
			API: config.APIConfig{DefaultPageSize: 100, MaxPageSize: 1000},
		},
		cache:     cache.New(5 * time.Minute),
		startTime: time.Now().Add(-90 * time.Second),
	}
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()

	t.Run("healthy", func(t *testing.T) {
		last := time.Date(2026, 8, 25, 2, 0, 0, 0, time.UTC)
		store := &mockActivityStore{
			countFunc: func(ctx context.Context) (int, error) { return 321, nil },
		}
		svc := &mockBackupService{
			statsFunc: func(ctx context.Context) (*backup.Stats, error) {
				return &backup.Stats{TotalBackups: 4, LastBackupDate: &last}, nil
			},
		}
		handler := setupHealthTestHandler(t, store, svc)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
		w := httptest.NewRecorder()
		handler.HandleHealth(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		resp := decodeResponse(t, w)
		data, _ := resp.Data.(map[string]interface{})
		if data["status"] != "healthy" {
			t.Errorf("expected healthy, got %v", data["status"])
		}
		if data["records_connected"] != true || data["catalog_connected"] != true {
			t.Errorf("expected both components connected: %v", data)
		}
		if count, _ := data["activity_count"].(float64); count != 321 {
			t.Errorf("expected 321 activities, got %v", data["activity_count"])
		}
		if count, _ := data["backup_count"].(float64); count != 4 {
			t.Errorf("expected 4 backups, got %v", data["backup_count"])
		}
		if data["last_backup"] != "2026-08-25T02:00:00Z" {
			t.Errorf("unexpected last_backup: %v", data["last_backup"])
		}
		if uptime, _ := data["uptime"].(float64); uptime < 90 {
			t.Errorf("expected uptime >= 90s, got %v", data["uptime"])
		}
	})

	t.Run("degraded when store unreachable", func(t *testing.T) {
		store := &mockActivityStore{
			pingFunc: func(ctx context.Context) error { return errors.New("connection refused") },
		}
		svc := &mockBackupService{
			statsFunc: func(ctx context.Context) (*backup.Stats, error) {
				return &backup.Stats{}, nil
			},
		}
		handler := setupHealthTestHandler(t, store, svc)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
		w := httptest.NewRecorder()
		handler.HandleHealth(w, req)

		// Degradation is reported in the body, not the status code.
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		resp := decodeResponse(t, w)
		data, _ := resp.Data.(map[string]interface{})
		if data["status"] != "degraded" {
			t.Errorf("expected degraded, got %v", data["status"])
		}
		if data["records_connected"] != false {
			t.Errorf("expected records_connected=false, got %v", data["records_connected"])
		}
	})

	t.Run("degraded when catalog unreachable", func(t *testing.T) {
		store := &mockActivityStore{}
		svc := &mockBackupService{
			statsFunc: func(ctx context.Context) (*backup.Stats, error) {
				return nil, fmt.Errorf("iterate catalog: %w", backup.ErrIO)
			},
		}
		handler := setupHealthTestHandler(t, store, svc)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
		w := httptest.NewRecorder()
		handler.HandleHealth(w, req)

		resp := decodeResponse(t, w)
		data, _ := resp.Data.(map[string]interface{})
		if data["status"] != "degraded" {
			t.Errorf("expected degraded, got %v", data["status"])
		}
		if data["catalog_connected"] != false {
			t.Errorf("expected catalog_connected=false, got %v", data["catalog_connected"])
		}
		if _, present := data["last_backup"]; present {
			t.Error("last_backup must be absent when catalog is unreachable")
		}
	})

	t.Run("reports cache stats", func(t *testing.T) {
		handler := setupHealthTestHandler(t, &mockActivityStore{}, &mockBackupService{
			statsFunc: func(ctx context.Context) (*backup.Stats, error) {
				return &backup.Stats{}, nil
			},
		})
		handler.cache.Set("k1", "v1")
		handler.cache.Get("k1")
		handler.cache.Get("k2")

		req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
		w := httptest.NewRecorder()
		handler.HandleHealth(w, req)

		resp := decodeResponse(t, w)
		data, _ := resp.Data.(map[string]interface{})
		cacheData, _ := data["cache"].(map[string]interface{})
		if keys, _ := cacheData["keys"].(float64); keys != 1 {
			t.Errorf("expected 1 cache key, got %v", cacheData["keys"])
		}
		if rate, _ := cacheData["hit_rate"].(float64); rate != 50 {
			t.Errorf("expected 50%% hit rate, got %v", cacheData["hit_rate"])
		}
	})
}
