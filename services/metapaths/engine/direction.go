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

	"github.com/AleutianAI/MetapathFOSS/services/metapaths/compose"
	"github.com/AleutianAI/MetapathFOSS/services/metapaths/direction"
	"github.com/AleutianAI/MetapathFOSS/services/metapaths/matrix"
	"github.com/AleutianAI/MetapathFOSS/services/metapaths/output"
)

// DirectionSinks names the writers RunDirection fills. Benchmark is
// required; Headroom adds the per-budget fit table.
type DirectionSinks struct {
	Benchmark io.Writer
	Headroom  io.Writer
}

// RunDirection profiles forward versus reverse evaluation order.
//
// Description:
//
//	Takes the first maxChains chains in enumeration order (all of them
//	when maxChains <= 0), profiles both evaluation orders per the
//	profiler options, writes one benchmark row per chain, and returns
//	the aggregate report. Chains whose first stage is empty still
//	produce a row; their second stage is skipped.
//
// Errors:
//
//	Missing relations, probe failures, and cancellation abort the run.
func (e *Engine) RunDirection(ctx context.Context, store *matrix.Store, maxChains int, sinks DirectionSinks, opts ...direction.Option) (direction.Report, error) {
	ctx, span := startPhaseSpan(ctx, "Engine.RunDirection", e.runID)
	defer span.End()
	start := time.Now()

	report, err := e.runDirection(ctx, store, maxChains, sinks, opts...)
	if err != nil {
		recordPhase(ctx, "direction", time.Since(start), false)
		return report, spanError(span, err)
	}

	recordPhase(ctx, "direction", time.Since(start), true)
	span.SetAttributes(
		attribute.Int("direction.samples", report.Samples),
		attribute.Int("direction.forward_better", report.ForwardBetter),
		attribute.Int("direction.reverse_better", report.ReverseBetter),
	)
	e.log.Info("direction profiling complete",
		"samples", report.Samples,
		"forward_better", report.ForwardBetter,
		"reverse_better", report.ReverseBetter,
		"equal", report.Equal,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return report, nil
}

func (e *Engine) runDirection(ctx context.Context, store *matrix.Store, maxChains int, sinks DirectionSinks, opts ...direction.Option) (direction.Report, error) {
	if sinks.Benchmark == nil {
		return direction.Report{}, fmt.Errorf("%w: benchmark table", ErrNilSink)
	}

	var chains []compose.Metapath
	err := compose.Enumerate(ctx, store, func(mp compose.Metapath) error {
		chains = append(chains, mp)
		if maxChains > 0 && len(chains) >= maxChains {
			return compose.ErrStopEnumeration
		}
		return nil
	})
	if err != nil {
		return direction.Report{}, err
	}

	profiler := direction.NewProfiler(store, opts...)
	results, err := profiler.ProfileAll(ctx, chains)
	if err != nil {
		return direction.Report{}, err
	}

	table, err := output.NewTableWriter(sinks.Benchmark, output.DirectionColumns(),
		output.WithFlushEvery(output.BenchmarkFlushEvery))
	if err != nil {
		return direction.Report{}, err
	}
	for i, r := range results {
		if err := table.WriteRow(output.DirectionRow(r)); err != nil {
			return direction.Report{}, err
		}
		e.progress("direction", i+1)
	}
	if err := table.Flush(); err != nil {
		return direction.Report{}, err
	}

	report := profiler.Report(results)
	if sinks.Headroom != nil {
		headroom, err := output.NewTableWriter(sinks.Headroom, output.HeadroomColumns(),
			output.WithFlushEvery(output.BenchmarkFlushEvery))
		if err != nil {
			return report, err
		}
		for _, h := range report.Headroom {
			if err := headroom.WriteRow(output.HeadroomRow(h)); err != nil {
				return report, err
			}
		}
		if err := headroom.Flush(); err != nil {
			return report, err
		}
	}
	return report, nil
}
