// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestGenerateCorrelationID(t *testing.T) {
	t.Parallel()

	id1 := GenerateCorrelationID()
	id2 := GenerateCorrelationID()

	if id1 == "" {
		t.Error("expected non-empty correlation ID")
	}
	if len(id1) != 8 {
		t.Errorf("expected 8-character correlation ID, got %d", len(id1))
	}
	if id1 == id2 {
		t.Error("expected unique correlation IDs")
	}
}

func TestGenerateRequestID(t *testing.T) {
	t.Parallel()

	id1 := GenerateRequestID()
	id2 := GenerateRequestID()

	if id1 == "" {
		t.Error("expected non-empty request ID")
	}
	if len(id1) != 36 { // UUID format
		t.Errorf("expected 36-character request ID, got %d", len(id1))
	}
	if id1 == id2 {
		t.Error("expected unique request IDs")
	}
}

func TestCorrelationIDContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	if id := CorrelationIDFromContext(ctx); id != "" {
		t.Errorf("expected empty correlation ID, got %s", id)
	}

	ctx = ContextWithCorrelationID(ctx, "test-123")
	if id := CorrelationIDFromContext(ctx); id != "test-123" {
		t.Errorf("expected 'test-123', got '%s'", id)
	}
}

func TestContextWithNewCorrelationID(t *testing.T) {
	t.Parallel()

	ctx := ContextWithNewCorrelationID(context.Background())

	id := CorrelationIDFromContext(ctx)
	if id == "" {
		t.Error("expected correlation ID to be generated")
	}
	if len(id) != 8 {
		t.Errorf("expected 8-character correlation ID, got %d", len(id))
	}
}

func TestRequestIDContext(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	if id := RequestIDFromContext(ctx); id != "" {
		t.Errorf("expected empty request ID, got %s", id)
	}

	ctx = ContextWithRequestID(ctx, "req-456")
	if id := RequestIDFromContext(ctx); id != "req-456" {
		t.Errorf("expected 'req-456', got '%s'", id)
	}
}

func TestCtxAddsIDs(t *testing.T) {
	var buf bytes.Buffer

	SetLogger(zerolog.New(&buf))
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	ctx := ContextWithCorrelationID(context.Background(), "corr-abc")
	ctx = ContextWithRequestID(ctx, "req-xyz")

	Ctx(ctx).Info().Msg("with ids")

	output := buf.String()
	if !strings.Contains(output, "corr-abc") {
		t.Errorf("expected correlation_id in output: %s", output)
	}
	if !strings.Contains(output, "req-xyz") {
		t.Errorf("expected request_id in output: %s", output)
	}
}

func TestCtxWithoutIDs(t *testing.T) {
	var buf bytes.Buffer

	SetLogger(zerolog.New(&buf))
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	Ctx(context.Background()).Info().Msg("plain")

	output := buf.String()
	if strings.Contains(output, "correlation_id") {
		t.Errorf("did not expect correlation_id in output: %s", output)
	}
	if strings.Contains(output, "request_id") {
		t.Errorf("did not expect request_id in output: %s", output)
	}
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer

	stored := zerolog.New(&buf).With().Str("source", "stored").Logger()
	ctx := ContextWithLogger(context.Background(), stored)

	got := LoggerFromContext(ctx)
	got.Info().Msg("from context")

	if !strings.Contains(buf.String(), "stored") {
		t.Errorf("expected stored logger to be used: %s", buf.String())
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer

	SetLogger(zerolog.New(&buf))
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	logger := WithComponent("retention")
	logger.Info().Msg("component log")

	output := buf.String()
	if !strings.Contains(output, `"component":"retention"`) {
		t.Errorf("expected component field in output: %s", output)
	}
}
