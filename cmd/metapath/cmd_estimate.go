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
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/MetapathFOSS/pkg/ux"
	"github.com/AleutianAI/MetapathFOSS/services/metapaths/engine"
)

// runEstimate projects the full enumeration's wall time.
//
// Description:
//
//	Censuses every chain by intermediate size bucket, then scales each
//	bucket's population by a measured per-chain average. Timings come
//	either from an existing benchmark results table (--benchmark) or
//	from a fresh in-process measurement of --sample-budget chains.
func runEstimate(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()

	if (estimateBudget > 0) == (benchmarkResults != "") {
		failUsage("exactly one of --sample-budget or --benchmark is required")
	}
	confirmOverwrite(estimateOutput)

	spin := startSpinner("loading knowledge graph")
	eng := newEngine(spin)
	log := cliLogger.With("run_id", eng.RunID())
	log.Info("runtime estimation starting",
		"sample_budget", estimateBudget,
		"benchmark", benchmarkResults)

	store, err := eng.Load(ctx, graphInputs())
	if err != nil {
		stopSpinnerErr(spin, "failed to load the knowledge graph")
		fail("failed to load the knowledge graph", err)
	}

	out := mustCreate(estimateOutput)
	projection, err := eng.EstimateRuntime(ctx, store, engine.EstimateConfig{
		SampleBudget:  estimateBudget,
		BenchmarkPath: benchmarkResults,
	}, out)
	if err != nil {
		stopSpinnerErr(spin, "runtime estimation failed")
		fail("runtime estimation failed", err)
	}
	mustClose(out)
	stopSpinnerOK(spin, "runtime estimation complete")

	known := time.Duration(projection.KnownSeconds * float64(time.Second)).Round(time.Second)
	content := fmt.Sprintf("total chains: %d\nestimated time: %s (%.1f hours)",
		projection.TotalChains, known, known.Hours())
	if projection.UnknownBuckets > 0 {
		content += fmt.Sprintf("\nunmeasured buckets: %d (estimate is a lower bound)", projection.UnknownBuckets)
	}
	ux.FileStatus(estimateOutput, ux.IconSuccess, fmt.Sprintf("%d buckets", len(projection.Buckets)))
	ux.Box("Runtime Projection", content)
}
