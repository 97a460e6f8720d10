// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

package record

import (
	"context"
	"time"
)

// Activity categories. The UI groups entries by these; the store does
// not enforce the set so older data survives category renames.
const (
	CategoryTransport = "transport"
	CategoryFood      = "food"
	CategoryEnergy    = "energy"
	CategoryPurchase  = "purchase"
	CategoryWaste     = "waste"
	CategoryOther     = "other"
)

// Activity is one logged carbon-emitting event.
type Activity struct {
	// ID is the activity's unique identifier (UUID).
	ID string `json:"id"`
	// Category groups the activity (transport, food, energy, ...).
	Category string `json:"category"`
	// Description is the user-entered label.
	Description string `json:"description"`
	// CO2Kg is the estimated emission in kilograms of CO2 equivalent.
	CO2Kg float64 `json:"co2_kg"`
	// OccurredAt is when the activity happened.
	OccurredAt time.Time `json:"occurred_at"`
	// LoggedAt is when the activity entered the store. Chained backups
	// select records with LoggedAt strictly after the parent backup's
	// creation time.
	LoggedAt time.Time `json:"logged_at"`
}

// Store is the record-store surface the backup subsystem consumes.
// Implementations must treat activity identity (ID) as caller-owned:
// the store never assigns or rewrites IDs.
type Store interface {
	// ListAll returns every activity, ordered by LoggedAt ascending.
	ListAll(ctx context.Context) ([]Activity, error)

	// ListSince returns activities with LoggedAt strictly after t,
	// ordered by LoggedAt ascending.
	ListSince(ctx context.Context, t time.Time) ([]Activity, error)

	// ListIDs returns the identity set of all stored activities.
	ListIDs(ctx context.Context) ([]string, error)

	// Exists reports whether an activity with the given ID is stored.
	Exists(ctx context.Context, id string) (bool, error)

	// Insert stores one activity. Inserting an existing ID is an error.
	Insert(ctx context.Context, a Activity) error

	// DeleteAll removes every activity.
	DeleteAll(ctx context.Context) error

	// Count returns the number of stored activities.
	Count(ctx context.Context) (int, error)
}

// Summary aggregates the stored activities for the dashboard.
type Summary struct {
	// TotalCount is the number of stored activities.
	TotalCount int `json:"total_count"`
	// TotalCO2Kg is the summed emission across all activities.
	TotalCO2Kg float64 `json:"total_co2_kg"`
	// ByCategory maps category to summed emission.
	ByCategory map[string]float64 `json:"by_category"`
}
