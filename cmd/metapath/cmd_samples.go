// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/MetapathFOSS/pkg/ux"
	"github.com/AleutianAI/MetapathFOSS/services/metapaths/estimate"
)

// runSamplesGenerate draws a size-stratified chain sample for later
// benchmarking. A pinned --seed makes the draw reproducible across
// machines with the same graph.
func runSamplesGenerate(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()

	if samplesTotal < 1 {
		failUsage("--total-samples must be at least 1")
	}
	confirmOverwrite(samplesGenOutput)

	seed := resolveSeed(samplesSeed)

	spin := startSpinner("loading knowledge graph")
	eng := newEngine(spin)
	log := cliLogger.With("run_id", eng.RunID())
	log.Info("sample generation starting", "total", samplesTotal, "seed", seed)

	store, err := eng.Load(ctx, graphInputs())
	if err != nil {
		stopSpinnerErr(spin, "failed to load the knowledge graph")
		fail("failed to load the knowledge graph", err)
	}

	out := mustCreate(samplesGenOutput)
	n, err := eng.GenerateSamples(ctx, store, samplesTotal, out, estimate.WithSeed(seed))
	if err != nil {
		stopSpinnerErr(spin, "sample generation failed")
		fail("sample generation failed", err)
	}
	mustClose(out)
	stopSpinnerOK(spin, "sample generation complete")

	ux.FileStatus(samplesGenOutput, ux.IconSuccess, fmt.Sprintf("%d samples", n))
	if n < samplesTotal {
		ux.Warning(fmt.Sprintf("drew %d of %d requested samples: some size buckets are underpopulated", n, samplesTotal))
	}
}

// runSamplesRun measures every sampled chain against the loaded graph
// and writes the benchmark results table.
func runSamplesRun(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()

	if _, err := os.Stat(samplesInput); err != nil {
		failUsage(fmt.Sprintf("sample table %s is not readable: run 'metapath samples generate' first", samplesInput))
	}
	confirmOverwrite(samplesRunOutput)

	spin := startSpinner("loading knowledge graph")
	eng := newEngine(spin)
	log := cliLogger.With("run_id", eng.RunID())
	log.Info("benchmark run starting", "samples", samplesInput)

	store, err := eng.Load(ctx, graphInputs())
	if err != nil {
		stopSpinnerErr(spin, "failed to load the knowledge graph")
		fail("failed to load the knowledge graph", err)
	}

	out := mustCreate(samplesRunOutput)
	stats, err := eng.RunSamples(ctx, store, samplesInput, out)
	if err != nil {
		stopSpinnerErr(spin, "benchmark run failed")
		fail("benchmark run failed", err)
	}
	mustClose(out)
	stopSpinnerOK(spin, "benchmark run complete")

	ux.FileStatus(samplesRunOutput, ux.IconSuccess, fmt.Sprintf("%d measurements", stats.Measured))
	ux.Summary(stats.Measured, stats.Skipped, stats.Measured+stats.Skipped)
}
