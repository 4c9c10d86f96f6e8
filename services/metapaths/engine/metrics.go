// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for pipeline operations.
var (
	tracer = otel.Tracer("metapath.engine")
	meter  = otel.Meter("metapath.engine")
)

// Metrics for pipeline phases.
var (
	phaseLatency metric.Float64Histogram
	phaseTotal   metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		phaseLatency, err = meter.Float64Histogram(
			"engine_phase_duration_seconds",
			metric.WithDescription("Duration of pipeline phases"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		phaseTotal, err = meter.Int64Counter(
			"engine_phase_total",
			metric.WithDescription("Total number of pipeline phase executions"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordPhase records metrics for one pipeline phase.
func recordPhase(ctx context.Context, phase string, duration time.Duration, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("phase", phase),
		attribute.Bool("success", success),
	)

	phaseLatency.Record(ctx, duration.Seconds(), attrs)
	phaseTotal.Add(ctx, 1, attrs)
}

// startPhaseSpan creates a span for a pipeline phase.
func startPhaseSpan(ctx context.Context, name, runID string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("run_id", runID),
	))
}

// spanError marks the span failed and passes the error through.
func spanError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}
