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
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/MetapathFOSS/services/metapaths/estimate"
	"github.com/AleutianAI/MetapathFOSS/services/metapaths/matrix"
	"github.com/AleutianAI/MetapathFOSS/services/metapaths/output"
)

// GenerateSamples draws a stratified benchmark sample and writes the
// samples table.
//
// Description:
//
//	Scans every (e1, e2) intermediate to bucket the chain population
//	by size, then draws per-bucket minimums plus a proportional fill
//	up to total, reproducibly for a given seed. The draw is
//	bucket-stratified because uniform sampling would almost never pick
//	the rare huge chains that dominate total runtime.
func (e *Engine) GenerateSamples(ctx context.Context, store *matrix.Store, total int, out io.Writer, opts ...estimate.SamplerOption) (int, error) {
	ctx, span := startPhaseSpan(ctx, "Engine.GenerateSamples", e.runID)
	defer span.End()
	start := time.Now()

	n, err := e.generateSamples(ctx, store, total, out, opts...)
	if err != nil {
		recordPhase(ctx, "generate_samples", time.Since(start), false)
		return n, spanError(span, err)
	}

	recordPhase(ctx, "generate_samples", time.Since(start), true)
	span.SetAttributes(attribute.Int("samples.written", n))
	e.log.Info("samples generated",
		"written", n,
		"requested", total,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return n, nil
}

func (e *Engine) generateSamples(ctx context.Context, store *matrix.Store, total int, out io.Writer, opts ...estimate.SamplerOption) (int, error) {
	if out == nil {
		return 0, fmt.Errorf("%w: samples table", ErrNilSink)
	}

	samples, err := estimate.GenerateSamples(ctx, store, total, opts...)
	if err != nil {
		return 0, err
	}
	if err := estimate.WriteSamples(out, samples); err != nil {
		return 0, err
	}
	return len(samples), nil
}

// RunSamples benchmarks a previously generated samples table and
// streams the results table.
func (e *Engine) RunSamples(ctx context.Context, store *matrix.Store, samplesPath string, out io.Writer) (estimate.RunStats, error) {
	ctx, span := startPhaseSpan(ctx, "Engine.RunSamples", e.runID)
	defer span.End()
	start := time.Now()

	stats, err := e.runSamples(ctx, store, samplesPath, out)
	if err != nil {
		recordPhase(ctx, "run_samples", time.Since(start), false)
		return stats, spanError(span, err)
	}

	recordPhase(ctx, "run_samples", time.Since(start), true)
	span.SetAttributes(
		attribute.Int("samples.measured", stats.Measured),
		attribute.Int("samples.skipped", stats.Skipped),
	)
	e.log.Info("sample benchmark complete",
		"measured", stats.Measured,
		"skipped", stats.Skipped,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return stats, nil
}

func (e *Engine) runSamples(ctx context.Context, store *matrix.Store, samplesPath string, out io.Writer) (estimate.RunStats, error) {
	if out == nil {
		return estimate.RunStats{}, fmt.Errorf("%w: benchmark results table", ErrNilSink)
	}

	samples, err := estimate.LoadSamples(samplesPath, e.skipRow("samples"))
	if err != nil {
		return estimate.RunStats{}, err
	}

	table, err := output.NewTableWriter(out, output.MeasurementColumns(),
		output.WithFlushEvery(output.BenchmarkFlushEvery))
	if err != nil {
		return estimate.RunStats{}, err
	}

	runner := estimate.NewRunner(store, func(sample int, reason string) {
		e.log.Warn("sample skipped", "sample", sample, "reason", reason)
	})
	measured := 0
	stats, err := runner.Run(ctx, samples, func(m estimate.Measurement) error {
		measured++
		e.progress("benchmark", measured)
		return table.WriteRow(output.MeasurementRow(m))
	})
	if err != nil {
		return stats, err
	}
	return stats, table.Flush()
}

// EstimateConfig steers EstimateRuntime.
type EstimateConfig struct {
	// SampleBudget is how many chains to sample and measure when no
	// existing benchmark file is supplied.
	SampleBudget int

	// BenchmarkPath, when set, reuses an existing benchmark results
	// table instead of measuring.
	BenchmarkPath string

	// SamplerOptions tune the draw when measuring.
	SamplerOptions []estimate.SamplerOption
}

// EstimateRuntime projects the full enumeration's cost and writes the
// runtime estimate table.
//
// Description:
//
//	Censuses every chain by intermediate size, obtains per-bucket
//	timings either from an existing benchmark file or by sampling and
//	measuring under SampleBudget, then scales each bucket's average by
//	its population. Populated buckets without measurements are
//	reported unknown, never interpolated, so the known total is an
//	honest lower bound.
func (e *Engine) EstimateRuntime(ctx context.Context, store *matrix.Store, cfg EstimateConfig, out io.Writer) (estimate.Projection, error) {
	ctx, span := startPhaseSpan(ctx, "Engine.EstimateRuntime", e.runID)
	defer span.End()
	start := time.Now()

	projection, err := e.estimateRuntime(ctx, store, cfg, out)
	if err != nil {
		recordPhase(ctx, "estimate_runtime", time.Since(start), false)
		return projection, spanError(span, err)
	}

	recordPhase(ctx, "estimate_runtime", time.Since(start), true)
	span.SetAttributes(
		attribute.Int64("estimate.total_chains", projection.TotalChains),
		attribute.Float64("estimate.known_seconds", projection.KnownSeconds),
		attribute.Int("estimate.unknown_buckets", projection.UnknownBuckets),
	)
	e.log.Info("runtime estimated",
		"total_chains", projection.TotalChains,
		"known_seconds", projection.KnownSeconds,
		"unknown_buckets", projection.UnknownBuckets,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return projection, nil
}

func (e *Engine) estimateRuntime(ctx context.Context, store *matrix.Store, cfg EstimateConfig, out io.Writer) (estimate.Projection, error) {
	if out == nil {
		return estimate.Projection{}, fmt.Errorf("%w: runtime estimate table", ErrNilSink)
	}

	census, err := estimate.TakeCensus(ctx, store)
	if err != nil {
		return estimate.Projection{}, err
	}

	var measurements []estimate.Measurement
	if cfg.BenchmarkPath != "" {
		measurements, err = estimate.LoadMeasurements(cfg.BenchmarkPath, e.skipRow("benchmark results"))
		if err != nil {
			return estimate.Projection{}, err
		}
	} else {
		samples, err := estimate.GenerateSamples(ctx, store, cfg.SampleBudget, cfg.SamplerOptions...)
		if err != nil {
			return estimate.Projection{}, err
		}
		runner := estimate.NewRunner(store, func(sample int, reason string) {
			e.log.Warn("sample skipped", "sample", sample, "reason", reason)
		})
		_, err = runner.Run(ctx, samples, func(m estimate.Measurement) error {
			measurements = append(measurements, m)
			e.progress("benchmark", len(measurements))
			return nil
		})
		if err != nil {
			return estimate.Projection{}, err
		}
	}

	projection := estimate.Project(census, measurements)

	table, err := output.NewTableWriter(out, output.RuntimeEstimateColumns(),
		output.WithFlushEvery(output.BenchmarkFlushEvery))
	if err != nil {
		return projection, err
	}
	for _, b := range projection.Buckets {
		if err := table.WriteRow(output.RuntimeEstimateRow(b)); err != nil {
			return projection, err
		}
	}
	return projection, table.Flush()
}
