// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package catalog

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for catalog operations.
var (
	tracer = otel.Tracer("metapath.catalog")
	meter  = otel.Meter("metapath.catalog")
)

// Metrics for catalog building operations.
var (
	buildLatency      metric.Float64Histogram
	nodesResolved     metric.Int64Histogram
	nodesDroppedTotal metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		buildLatency, err = meter.Float64Histogram(
			"catalog_build_duration_seconds",
			metric.WithDescription("Duration of type catalog build operations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		nodesResolved, err = meter.Int64Histogram(
			"catalog_nodes_resolved",
			metric.WithDescription("Number of nodes resolved per catalog build"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		nodesDroppedTotal, err = meter.Int64Counter(
			"catalog_nodes_dropped_total",
			metric.WithDescription("Nodes dropped because no class could be resolved"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordBuildMetrics records metrics for one catalog build.
func recordBuildMetrics(ctx context.Context, duration time.Duration, c *Catalog, success bool) {
	if err := initMetrics(); err != nil {
		return
	}

	buildLatency.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.Bool("success", success)))

	if success {
		nodesResolved.Record(ctx, int64(c.Len()))
		if c.Dropped() > 0 {
			nodesDroppedTotal.Add(ctx, int64(c.Dropped()))
		}
	}
}

// startBuildSpan creates a span for a catalog build.
func startBuildSpan(ctx context.Context) (context.Context, trace.Span) {
	return tracer.Start(ctx, "Catalog.Build")
}

// setBuildSpanResult sets the result attributes on a build span.
func setBuildSpanResult(span trace.Span, c *Catalog) {
	span.SetAttributes(
		attribute.Int("catalog.nodes", c.Len()),
		attribute.Int("catalog.dropped", c.Dropped()),
		attribute.Int("catalog.types", len(c.Types())),
	)
}
