// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

/*
Package cache provides thread-safe in-memory caching with TTL support.

This package implements a small caching layer for read-heavy API
responses, reducing DuckDB load when a dashboard polls the activity
list and summary endpoints faster than the underlying data changes.

# Overview

The cache provides:
  - Thread-safe concurrent access (sync.RWMutex)
  - Time-to-live (TTL) expiration with a background sweep
  - Lazy expiration checking on Get operations
  - Hit/miss/eviction counters surfaced by the health endpoint

# Use Cases

  - Activity list pages, keyed by pagination and filter parameters
  - Activity summary aggregates (total CO2, per-category breakdown)

Write paths invalidate the whole cache: logging an activity or restoring
a backup calls Clear, so cached aggregates are stale for at most one
in-flight request. Backup endpoints are not cached; catalog reads are
cheap and scheduled backups would bypass handler invalidation anyway.

# Usage Example

API handler caching pattern:

	key := cache.GenerateKey("activity_summary", nil)

	if cached, ok := h.cache.Get(key); ok {
	    if summary, valid := cached.(*record.Summary); valid {
	        respondJSON(w, http.StatusOK, cachedResponse(summary))
	        return
	    }
	}

	summary, err := h.records.Summarize(r.Context())
	if err != nil {
	    respondError(w, http.StatusInternalServerError, "IO_ERROR", "Failed to summarize activities", err)
	    return
	}
	h.cache.Set(key, summary)

# Thread Safety

All methods are safe for concurrent use. Counters are tracked under a
separate lock so stats reads never contend with the entry map.

See Also:

  - internal/api: Handlers consuming the cache
*/
package cache
