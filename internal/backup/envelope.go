// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

package backup

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"time"

	json "github.com/goccy/go-json"

	"github.com/mkerring/carbonlog/internal/record"
)

// Envelope is the self-contained archive document. Every envelope
// carries full record payloads, never deltas against other archives, so
// a backup restores even when the rest of its chain is gone.
type Envelope struct {
	// Format version of this document
	FormatVersion int `json:"format_version"`

	// ID of the backup this envelope belongs to
	BackupID string `json:"backup_id"`

	// User label of the backup
	Name string `json:"name"`

	// Backup type
	Type Type `json:"type"`

	// When the backup was created (UTC)
	CreatedAt time.Time `json:"created_at"`

	// Parent backup for chained types
	ParentBackupID string `json:"parent_backup_id,omitempty"`

	// Number of records; must equal len(Records)
	RecordCount int `json:"record_count"`

	// Full activity payloads
	Records []record.Activity `json:"records"`

	// Free-form annotations
	Metadata map[string]string `json:"metadata,omitempty"`
}

// gzipMagic is the two-byte gzip stream header. Archives declare their
// own compression through it, so mixed directories decode correctly.
var gzipMagic = []byte{0x1f, 0x8b}

// EncodeEnvelope serializes an envelope to JSON, gzip-compressed when
// compress is set. level is a gzip level (-2..9).
func EncodeEnvelope(env *Envelope, compress bool, level int) ([]byte, error) {
	raw, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("failed to encode envelope: %w", err)
	}

	if !compress {
		return raw, nil
	}

	var buf bytes.Buffer
	gz, err := gzip.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip writer: %w", err)
	}
	if _, err := gz.Write(raw); err != nil {
		gz.Close() //nolint:errcheck // Write already failed
		return nil, fmt.Errorf("failed to compress envelope: %w", err)
	}
	if err := gz.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize gzip stream: %w", err)
	}

	return buf.Bytes(), nil
}

// DecodeEnvelope parses archive bytes back into an envelope. Compression
// is detected from the payload itself. Malformed payloads, unsupported
// format versions and record count mismatches all wrap
// ErrIntegrityFailure.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	raw := data
	if bytes.HasPrefix(data, gzipMagic) {
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: corrupt gzip stream: %v", ErrIntegrityFailure, err)
		}
		raw, err = io.ReadAll(gz)
		closeErr := gz.Close()
		if err != nil {
			return nil, fmt.Errorf("%w: truncated gzip stream: %v", ErrIntegrityFailure, err)
		}
		if closeErr != nil {
			return nil, fmt.Errorf("%w: corrupt gzip stream: %v", ErrIntegrityFailure, closeErr)
		}
	}

	env := &Envelope{}
	if err := json.Unmarshal(raw, env); err != nil {
		return nil, fmt.Errorf("%w: malformed envelope: %v", ErrIntegrityFailure, err)
	}

	if env.FormatVersion < 1 || env.FormatVersion > FormatVersion {
		return nil, fmt.Errorf("%w: unsupported envelope format version %d", ErrIntegrityFailure, env.FormatVersion)
	}
	if env.RecordCount != len(env.Records) {
		return nil, fmt.Errorf("%w: envelope declares %d records but carries %d",
			ErrIntegrityFailure, env.RecordCount, len(env.Records))
	}

	return env, nil
}
