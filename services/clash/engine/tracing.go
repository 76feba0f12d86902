// Copyright (C) 2026 Kestrel Steel (engineering@kestrelsteel.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package engine

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer for clash engine operations.
var tracer = otel.Tracer("kestrel.clash")

// startRunSpan creates the span covering one engine run.
func startRunSpan(ctx context.Context, modelName string) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Engine.Run",
		trace.WithAttributes(
			attribute.String("clash.model", modelName),
		),
	)
}

// startPassSpan creates a span for one detection or correction pass.
func startPassSpan(ctx context.Context, name string, iteration int) (context.Context, trace.Span) {
	return tracer.Start(ctx, name,
		trace.WithAttributes(
			attribute.Int("clash.iteration", iteration),
		),
	)
}

// setPassSpanCount records the clash count of one pass.
func setPassSpanCount(span trace.Span, count int) {
	span.SetAttributes(attribute.Int("clash.count", count))
}

// setRunSpanResult sets the terminal attributes on a run span.
func setRunSpanResult(span trace.Span, state RunState, iterations, detected, corrected int) {
	span.SetAttributes(
		attribute.String("clash.final_state", state.String()),
		attribute.Int("clash.iterations", iterations),
		attribute.Int("clash.detected", detected),
		attribute.Int("clash.corrected", corrected),
	)
}
