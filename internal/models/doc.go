// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

/*
Package models defines the shared API response structures for carbonlog.

Every HTTP endpoint wraps its payload in the same envelope so clients can
handle success and failure uniformly. Domain types (activities, backup
metadata, retention reports) live next to the code that owns them in
internal/record and internal/backup; this package holds only the transport
wrapper shared across handlers.

Key Components:

  - APIResponse: Standardized response wrapper for all endpoints
  - Metadata: Response metadata (timestamp, query time, cache status)
  - APIError: Structured error details with machine-readable codes

Usage Example - Success Response:

	import "github.com/mkerring/carbonlog/internal/models"

	response := models.APIResponse{
	    Status: "success",
	    Data: map[string]interface{}{
	        "count":   len(backups),
	        "backups": backups,
	    },
	    Metadata: models.Metadata{
	        Timestamp:   time.Now(),
	        QueryTimeMS: 8,
	    },
	}

	json.NewEncoder(w).Encode(response)

Usage Example - Error Response:

	errorResponse := models.APIResponse{
	    Status: "error",
	    Error: &models.APIError{
	        Code:    "INVALID_STATE",
	        Message: "Backup is not in a restorable state",
	        Details: map[string]interface{}{
	            "backup_id": id,
	            "status":    "failed",
	        },
	    },
	}

Thread Safety:

All models are plain data structures. They carry no internal state and are
safe for concurrent read access once constructed.

JSON Marshaling:

All models use snake_case struct tags with omitempty on optional fields.
time.Time values serialize in RFC3339 format.

See Also:

  - internal/api: HTTP handlers producing these envelopes
  - internal/validation: Request validation feeding APIError details
*/
package models
