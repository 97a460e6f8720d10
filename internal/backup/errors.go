// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

package backup

import "errors"

// Error taxonomy for backup operations. Callers classify failures with
// errors.Is; every returned error wraps exactly one of these sentinels
// plus a human-readable message.
var (
	// ErrNotFound indicates a referenced backup does not exist in the
	// catalog.
	ErrNotFound = errors.New("backup not found")

	// ErrInvalidState indicates an operation was requested in a state
	// that cannot support it, such as an incremental backup naming a
	// missing parent.
	ErrInvalidState = errors.New("invalid backup state")

	// ErrIntegrityFailure indicates the stored archive does not match
	// its recorded checksum or cannot be decoded.
	ErrIntegrityFailure = errors.New("backup integrity failure")

	// ErrIO indicates an unrecoverable storage failure (blob or catalog).
	ErrIO = errors.New("backup storage failure")
)
