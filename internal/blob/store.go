// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

package blob

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mkerring/carbonlog/internal/logging"
)

// ErrInvalidRef is returned for references that are empty or would
// escape the blob directory.
var ErrInvalidRef = errors.New("invalid blob reference")

// Store persists backup payloads addressed by reference.
type Store interface {
	// Write stores data under ref, replacing any existing blob.
	Write(ctx context.Context, ref string, data []byte) error

	// Read returns the full blob content.
	Read(ctx context.Context, ref string) ([]byte, error)

	// Exists reports whether a blob is present.
	Exists(ctx context.Context, ref string) (bool, error)

	// Delete removes a blob. Deleting a missing blob is an error.
	Delete(ctx context.Context, ref string) error

	// Size returns the stored size in bytes.
	Size(ctx context.Context, ref string) (int64, error)
}

// FS is a filesystem-backed Store keeping blobs in a flat directory.
type FS struct {
	dir string
}

var _ Store = (*FS)(nil)

// NewFS creates the blob directory if needed and returns a store
// rooted at dir.
func NewFS(dir string) (*FS, error) {
	if dir == "" {
		return nil, fmt.Errorf("blob directory is required")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create blob directory %s: %w", dir, err)
	}

	logging.Debug().Str("dir", dir).Msg("Blob store ready")
	return &FS{dir: dir}, nil
}

// Dir returns the directory the store writes into.
func (s *FS) Dir() string {
	return s.dir
}

// path validates ref and resolves it inside the blob directory.
// References carrying separators or parent markers are rejected.
func (s *FS) path(ref string) (string, error) {
	if ref == "" {
		return "", ErrInvalidRef
	}
	if strings.ContainsAny(ref, `/\`) || strings.Contains(ref, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	return filepath.Join(s.dir, ref), nil
}

// Write stores data under ref with restricted permissions. On a partial
// write the file is removed so no truncated blob is left behind.
func (s *FS) Write(_ context.Context, ref string, data []byte) error {
	path, err := s.path(ref)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o640); err != nil { //nolint:gosec // Backup payloads are group-readable on purpose
		os.Remove(path) //nolint:errcheck // Best effort cleanup on error
		return fmt.Errorf("failed to write blob %s: %w", ref, err)
	}
	return nil
}

// Read returns the full blob content.
func (s *FS) Read(_ context.Context, ref string) ([]byte, error) {
	path, err := s.path(ref)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path is validated by s.path
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %s: %w", ref, err)
	}
	return data, nil
}

// Exists reports whether a blob is present.
func (s *FS) Exists(_ context.Context, ref string) (bool, error) {
	path, err := s.path(ref)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat blob %s: %w", ref, err)
}

// Delete removes a blob.
func (s *FS) Delete(_ context.Context, ref string) error {
	path, err := s.path(ref)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete blob %s: %w", ref, err)
	}
	return nil
}

// Size returns the stored size in bytes.
func (s *FS) Size(_ context.Context, ref string) (int64, error) {
	path, err := s.path(ref)
	if err != nil {
		return 0, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat blob %s: %w", ref, err)
	}
	return info.Size(), nil
}
