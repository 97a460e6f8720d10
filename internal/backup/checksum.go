// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

package backup

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint computes the hex SHA-256 checksum of archive bytes. The
// checksum covers the exact bytes written to the blob store, after
// compression, so any on-disk corruption is detectable.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
