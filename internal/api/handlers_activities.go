// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/mkerring/carbonlog/internal/cache"
	"github.com/mkerring/carbonlog/internal/logging"
	"github.com/mkerring/carbonlog/internal/metrics"
	"github.com/mkerring/carbonlog/internal/models"
	"github.com/mkerring/carbonlog/internal/record"
)

// logActivityRequest is the request body for POST /api/v1/activities.
//
// occurred_at is optional and defaults to the server time; clients use it
// to backfill activities logged after the fact.
type logActivityRequest struct {
	Category    string  `json:"category" validate:"required,oneof=transport food energy purchase waste other"`
	Description string  `json:"description" validate:"omitempty,max=500"`
	CO2Kg       float64 `json:"co2_kg" validate:"gte=0,lte=100000"`
	OccurredAt  string  `json:"occurred_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// listActivitiesRequest holds the query parameters for GET /api/v1/activities.
type listActivitiesRequest struct {
	Limit    int    `json:"limit" validate:"min=1,max=1000"`
	Offset   int    `json:"offset" validate:"min=0"`
	Category string `json:"category" validate:"omitempty,oneof=transport food energy purchase waste other"`
}

// HandleLogActivity records a single carbon-emitting activity.
func (h *Handler) HandleLogActivity(w http.ResponseWriter, r *http.Request) {
	var req logActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid JSON body", err)
		return
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	now := time.Now().UTC()
	occurredAt := now
	if req.OccurredAt != "" {
		// Format already checked by the datetime validation tag.
		parsed, err := time.Parse(time.RFC3339, req.OccurredAt)
		if err != nil {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "occurred_at must be RFC3339", err)
			return
		}
		occurredAt = parsed.UTC()
	}

	activity := record.Activity{
		ID:          uuid.NewString(),
		Category:    req.Category,
		Description: req.Description,
		CO2Kg:       req.CO2Kg,
		OccurredAt:  occurredAt,
		LoggedAt:    now,
	}

	if err := h.records.Insert(r.Context(), activity); err != nil {
		respondError(w, http.StatusInternalServerError, "IO_ERROR", "Failed to log activity", err)
		return
	}

	metrics.RecordActivityLogged(activity.Category)
	h.ClearCache()

	logging.Debug().
		Str("activity_id", activity.ID).
		Str("category", activity.Category).
		Float64("co2_kg", activity.CO2Kg).
		Msg("Activity logged via API")

	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Status: "success",
		Data:   activity,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HandleListActivities returns a page of activities, newest first,
// optionally filtered by category. Pages are cached until the next write.
func (h *Handler) HandleListActivities(w http.ResponseWriter, r *http.Request) {
	req := listActivitiesRequest{
		Limit:    getIntParam(r, "limit", h.config.API.DefaultPageSize),
		Offset:   getIntParam(r, "offset", 0),
		Category: r.URL.Query().Get("category"),
	}

	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	if req.Limit > h.config.API.MaxPageSize {
		req.Limit = h.config.API.MaxPageSize
	}

	start := time.Now()
	cacheKey := cache.GenerateKey("activities_list", req)
	if cached, found := h.cache.Get(cacheKey); found {
		if data, ok := cached.(map[string]interface{}); ok {
			respondJSON(w, http.StatusOK, &models.APIResponse{
				Status: "success",
				Data:   data,
				Metadata: models.Metadata{
					Timestamp: time.Now(),
					Cached:    true,
				},
			})
			return
		}
	}

	activities, err := h.records.ListPage(r.Context(), req.Limit, req.Offset, req.Category)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "IO_ERROR", "Failed to list activities", err)
		return
	}

	data := map[string]interface{}{
		"count":      len(activities),
		"limit":      req.Limit,
		"offset":     req.Offset,
		"activities": activities,
	}
	if req.Category != "" {
		data["category"] = req.Category
	}
	h.cache.Set(cacheKey, data)

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// HandleActivitySummary returns lifetime totals and the per-category
// CO2 breakdown. The summary is cached until the next write.
func (h *Handler) HandleActivitySummary(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	cacheKey := cache.GenerateKey("activity_summary", nil)
	if cached, found := h.cache.Get(cacheKey); found {
		if summary, ok := cached.(*record.Summary); ok {
			respondJSON(w, http.StatusOK, &models.APIResponse{
				Status: "success",
				Data:   summary,
				Metadata: models.Metadata{
					Timestamp: time.Now(),
					Cached:    true,
				},
			})
			return
		}
	}

	summary, err := h.records.Summarize(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "IO_ERROR", "Failed to summarize activities", err)
		return
	}
	h.cache.Set(cacheKey, summary)

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   summary,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}
