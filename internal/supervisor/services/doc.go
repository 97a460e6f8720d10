// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

/*
Package services provides suture.Service wrappers for carbonlog components.

This package adapts components with foreign lifecycles to the suture v4
supervision model, translating their patterns into suture's context-aware
Serve pattern. Components that already implement suture.Service, such as
backup.Scheduler, are added to the tree directly and need no wrapper here.

# Overview

Each wrapper implements the suture.Service interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

The wrappers handle:
  - Lifecycle translation to the Serve pattern
  - Graceful shutdown via context cancellation
  - Error propagation for supervisor restart decisions
  - Service identification via fmt.Stringer

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Converts the blocking ListenAndServe pattern to Serve
  - Configurable shutdown timeout for draining connections

# Usage Example

Creating and registering the service:

	import (
	    "net/http"
	    "time"

	    "github.com/mkerring/carbonlog/internal/supervisor"
	    "github.com/mkerring/carbonlog/internal/supervisor/services"
	)

	func setupSupervisor(server *http.Server) {
	    tree, _ := supervisor.NewSupervisorTree(logger, config)

	    // HTTP server with 30s shutdown timeout
	    httpSvc := services.NewHTTPServerService(server, 30*time.Second)
	    tree.AddAPIService(httpSvc)

	    // Start supervision
	    tree.Serve(ctx)
	}

# Error Handling

Return values determine supervisor behavior:

	nil         -> Service stopped cleanly, will not restart
	error       -> Service crashed, supervisor will restart
	ctx.Err()   -> Shutdown requested, normal termination

# Service Identification

All services implement fmt.Stringer for logging:

	func (s *HTTPServerService) String() string {
	    return "http-server"
	}

Suture uses this for log messages:

	INFO http-server: starting
	INFO http-server: stopped
	ERROR http-server: restarting after failure

# Thread Safety

Service wrappers are safe for concurrent use, but multiple simultaneous
Serve calls on one wrapper are not supported.

# See Also

  - internal/supervisor: SupervisorTree that manages these services
  - internal/backup: Scheduler, which implements suture.Service directly
  - github.com/thejerf/suture/v4: Underlying supervision library
*/
package services
