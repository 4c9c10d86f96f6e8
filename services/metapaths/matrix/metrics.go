// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package matrix

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for matrix operations.
var (
	tracer = otel.Tracer("metapath.matrix")
	meter  = otel.Meter("metapath.matrix")
)

// Metrics for matrix building operations.
var (
	buildLatency      metric.Float64Histogram
	buildTotal        metric.Int64Counter
	relationsCreated  metric.Int64Histogram
	edgesDroppedTotal metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		buildLatency, err = meter.Float64Histogram(
			"matrix_build_duration_seconds",
			metric.WithDescription("Duration of relation matrix build operations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		buildTotal, err = meter.Int64Counter(
			"matrix_build_total",
			metric.WithDescription("Total number of relation matrix build operations"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		relationsCreated, err = meter.Int64Histogram(
			"matrix_relations_created",
			metric.WithDescription("Number of relation keys registered per build"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		edgesDroppedTotal, err = meter.Int64Counter(
			"matrix_edges_dropped_total",
			metric.WithDescription("Edges discarded because an endpoint type could not be resolved"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordBuildMetrics records metrics for one build operation.
func recordBuildMetrics(ctx context.Context, duration time.Duration, stats BuildStats, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(attribute.Bool("success", success))

	buildLatency.Record(ctx, duration.Seconds(), attrs)
	buildTotal.Add(ctx, 1, attrs)

	if success {
		relationsCreated.Record(ctx, int64(stats.Relations))
		if stats.EdgesDropped > 0 {
			edgesDroppedTotal.Add(ctx, int64(stats.EdgesDropped))
		}
	}
}

// startBuildSpan creates a span for a build operation.
func startBuildSpan(ctx context.Context) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Builder.Build")
}

// setBuildSpanResult sets the result attributes on a build span.
func setBuildSpanResult(span trace.Span, stats BuildStats) {
	span.SetAttributes(
		attribute.Int("matrix.edges_read", stats.EdgesRead),
		attribute.Int("matrix.edges_dropped", stats.EdgesDropped),
		attribute.Int("matrix.types", stats.Types),
		attribute.Int("matrix.relations", stats.Relations),
		attribute.Int("matrix.nnz", stats.NNZ),
	)
}
