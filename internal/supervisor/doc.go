// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

/*
Package supervisor provides process supervision for carbonlog using suture v4.

This package implements a hierarchical supervisor tree that manages the lifecycle
of the long-running services in the application. It provides Erlang/OTP-style
supervision with automatic restart, failure isolation, and graceful shutdown.

# Overview

The supervisor tree organizes services into two layers for failure isolation:

	RootSupervisor ("carbonlog")
	├── DataSupervisor ("data-layer")
	│   └── backup.Scheduler (if the backup schedule is enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

This hierarchy ensures that:
  - A crashing scheduler restarts on its own while the API keeps serving
  - Repeated scheduler failures back off without touching HTTP traffic
  - Each layer has independent failure counting

# Key Features

Automatic Restart:
  - Crashed services are automatically restarted
  - Exponential backoff prevents restart storms
  - Configurable failure thresholds and decay rates

Graceful Shutdown:
  - Context cancellation triggers orderly shutdown
  - Configurable shutdown timeout per service
  - UnstoppedServiceReport for debugging hangs

Structured Logging:
  - Integration with slog for structured events
  - Logs service starts, stops, failures, and restarts
  - Event hooks via sutureslog adapter

# Usage Example

Basic setup in main.go:

	import (
	    "github.com/mkerring/carbonlog/internal/logging"
	    "github.com/mkerring/carbonlog/internal/supervisor"
	    "github.com/mkerring/carbonlog/internal/supervisor/services"
	)

	func main() {
	    logger := logging.NewSlogLogger()
	    config := supervisor.DefaultTreeConfig()

	    tree, err := supervisor.NewSupervisorTree(logger, config)
	    if err != nil {
	        log.Fatal(err)
	    }

	    // Add services to appropriate layers
	    tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	    if cfg.Backup.Schedule.Enabled {
	        tree.AddDataService(scheduler)
	    }

	    // Start the tree (blocks until context canceled)
	    if err := tree.Serve(ctx); err != nil {
	        log.Printf("Supervisor stopped: %v", err)
	    }
	}

# Configuration

The TreeConfig controls restart behavior:

	config := supervisor.TreeConfig{
	    FailureThreshold: 5.0,              // Failures before backoff
	    FailureDecay:     30.0,             // Seconds for failures to decay
	    FailureBackoff:   15 * time.Second, // Backoff duration
	    ShutdownTimeout:  10 * time.Second, // Per-service shutdown timeout
	}

Default values match suture's production-ready defaults:
  - FailureThreshold: 5 failures
  - FailureDecay: 30 seconds
  - FailureBackoff: 15 seconds
  - ShutdownTimeout: 10 seconds

# Service Interface

All services must implement suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Return behavior:
  - Return nil: Service stopped cleanly, will not be restarted
  - Return error: Service crashed, will be restarted
  - Context canceled: Shutdown requested, return promptly

The backup.Scheduler implements this interface directly, so it is added
to the tree without a wrapper. The HTTP server needs the adapter in
internal/supervisor/services because net/http predates context-based
lifecycles.

# What Is NOT Supervised

DuckDB and Badger are intentionally not supervised:
  - They are embedded libraries, not long-running services
  - Their handles are owned by the record and backup packages
  - A crash inside either would require a process restart anyway

# Debugging Shutdown Issues

If services don't stop within the timeout:

	// Get report of unstopped services
	report, err := tree.UnstoppedServiceReport()
	for _, svc := range report {
	    log.Printf("Service didn't stop: %v", svc)
	}

Common causes:
  - Goroutines not respecting context cancellation
  - Blocked network I/O without deadlines

# Thread Safety

The SupervisorTree is safe for concurrent use:
  - Services can be added from any goroutine
  - Remove operations are synchronized

# See Also

  - internal/supervisor/services: HTTP server wrapper
  - internal/backup: Scheduler (supervised directly)
  - github.com/thejerf/suture/v4: Underlying library
*/
package supervisor
