// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

package backup

import (
	"context"
	"sort"
)

// Catalog persists backup metadata rows. Implementations hold no
// business logic; chain resolution, retention and lifecycle rules live
// in the Service.
type Catalog interface {
	// Insert stores a new row. Inserting an existing id is an error.
	Insert(ctx context.Context, meta *Metadata) error

	// Update replaces an existing row. A missing id is ErrNotFound.
	Update(ctx context.Context, meta *Metadata) error

	// Get returns one row by id, or ErrNotFound.
	Get(ctx context.Context, id string) (*Metadata, error)

	// ListAll returns every row ordered by created_at descending.
	ListAll(ctx context.Context) ([]*Metadata, error)

	// Delete removes a row by id, or ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Count returns the number of rows.
	Count(ctx context.Context) (int, error)

	// Close releases the underlying store.
	Close() error
}

// sortNewestFirst orders metadata by created_at descending with id as a
// tiebreak, the catalog listing order.
func sortNewestFirst(entries []*Metadata) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID > entries[j].ID
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
}

// sortOldestFirst orders metadata by created_at ascending with id as a
// tiebreak, the retention scan order.
func sortOldestFirst(entries []*Metadata) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
}
