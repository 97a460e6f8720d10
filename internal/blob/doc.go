// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

// Package blob stores backup archive payloads as opaque byte blobs.
//
// The filesystem implementation keeps each blob as a single file in a
// flat directory, addressed by reference. References are plain file
// names chosen by the backup layer; the store rejects anything that
// could escape the directory.
package blob
