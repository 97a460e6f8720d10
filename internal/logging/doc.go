// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

// Package logging provides centralized zerolog-based structured logging
// for carbonlog.
//
// All application code logs through this package rather than holding
// logger instances, giving one place to configure level, format, and
// output. Production runs emit JSON; development runs can switch to
// zerolog's console writer.
//
// # Quick Start
//
//	import "github.com/mkerring/carbonlog/internal/logging"
//
//	// Initialize at application startup
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	// Log messages with structured fields
//	logging.Info().Str("backup_id", id).Msg("Backup created")
//	logging.Error().Err(err).Msg("Restore failed")
//
//	// Context-aware logging (request and correlation IDs)
//	logging.Ctx(ctx).Info().Msg("Processing request")
//
// # Notes
//
// Always terminate log chains with .Msg() or .Send(); an unterminated
// chain emits nothing. Prefer structured fields over Msgf formatting.
//
// The slog adapter (NewSlogLogger) exists for libraries that speak
// log/slog, such as sutureslog.
package logging
