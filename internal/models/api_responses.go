// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

package models

import (
	"time"
)

// APIResponse represents a standardized API response wrapper used by all HTTP endpoints.
// It provides consistent structure for both successful and error responses, with metadata
// for observability and caching information.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Fields:
//   - Status: Response status ("success" or "error")
//   - Data: Response payload (any JSON-serializable type)
//   - Metadata: Query execution metadata (timing, caching, timestamp)
//   - Error: Error details (populated only when Status is "error")
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"count": 12, "backups": [...]},
//	  "metadata": {
//	    "timestamp": "2026-08-26T12:00:00Z",
//	    "query_time_ms": 8,
//	    "cached": false
//	  }
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "NOT_FOUND",
//	    "message": "Backup not found",
//	    "details": {"backup_id": "0190d8a3-3f6e-7cc1-9a44-2b6f0c8d1e55"}
//	  },
//	  "metadata": {"timestamp": "2026-08-26T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability and performance tracking.
// All API responses include this metadata for monitoring query performance and
// cache effectiveness.
//
// Fields:
//   - Timestamp: Server time when response was generated (RFC3339 format)
//   - QueryTimeMS: Handler execution time in milliseconds (0 if below 1ms)
//   - Cached: Whether response was served from the in-memory cache (omitted if false)
//
// Query time tracking:
//   - Cached responses: QueryTimeMS reflects cache lookup time, Cached is true
//   - Fresh queries: QueryTimeMS shows actual DuckDB or catalog execution time
//
// Example cache hit:
//
//	{
//	  "timestamp": "2026-08-26T12:00:00Z",
//	  "cached": true
//	}
//
// Example cache miss:
//
//	{
//	  "timestamp": "2026-08-26T12:00:00Z",
//	  "query_time_ms": 23
//	}
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
}

// APIError represents an error response with structured error details.
// Provides consistent error format across all API endpoints for better client handling.
//
// Fields:
//   - Code: Machine-readable error code (e.g., "VALIDATION_ERROR", "NOT_FOUND")
//   - Message: Human-readable error message
//   - Details: Additional context (field names, constraints, etc.)
//
// Common error codes:
//   - VALIDATION_ERROR: Invalid input parameters
//   - NOT_FOUND: Resource doesn't exist
//   - INVALID_STATE: Operation conflicts with resource lifecycle state
//   - INTEGRITY_FAILURE: Stored data failed checksum or format verification
//   - IO_ERROR: Storage read/write failure
//   - RATE_LIMIT_EXCEEDED: Too many requests
//   - INTERNAL_ERROR: Unclassified server failure
//
// Example:
//
//	{
//	  "code": "VALIDATION_ERROR",
//	  "message": "Type must be one of: full incremental differential",
//	  "details": {
//	    "field": "Type",
//	    "tag": "oneof",
//	    "value": "weekly"
//	  }
//	}
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
