// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

// Package record stores carbon activity entries in an embedded DuckDB
// database and exposes the Store interface the backup subsystem reads
// and restores through.
//
// An activity is one logged carbon-emitting event: a category, a
// description, the estimated CO2 mass in kilograms, when it happened
// (occurred_at) and when it entered the store (logged_at). logged_at is
// the timestamp chained backups select against.
package record
