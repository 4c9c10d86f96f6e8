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

	"github.com/spf13/cobra"

	"github.com/AleutianAI/MetapathFOSS/cmd/metapath/config"
	"github.com/AleutianAI/MetapathFOSS/pkg/ux"
	"github.com/AleutianAI/MetapathFOSS/services/metapaths/direction"
	"github.com/AleutianAI/MetapathFOSS/services/metapaths/engine"
)

// runDirection profiles forward vs reverse composition order.
func runDirection(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()

	strategy, err := direction.ParseStrategy(resolveStrategy())
	if err != nil {
		failUsage(fmt.Sprintf("invalid --strategy: %v", err))
	}
	confirmOverwrite(directionOutput, headroomOutput)

	spin := startSpinner("loading knowledge graph")
	eng := newEngine(spin)
	log := cliLogger.With("run_id", eng.RunID())
	log.Info("direction benchmark starting",
		"max_samples", resolveMaxSamples(),
		"strategy", strategy.String())

	store, err := eng.Load(ctx, graphInputs())
	if err != nil {
		stopSpinnerErr(spin, "failed to load the knowledge graph")
		fail("failed to load the knowledge graph", err)
	}

	benchFile := mustCreate(directionOutput)
	headroomFile := mustCreate(headroomOutput)

	opts := []direction.Option{direction.WithStrategy(strategy)}
	if budgets := config.Global.Direction.BudgetsMB; len(budgets) > 0 {
		opts = append(opts, direction.WithBudgetsMB(budgets))
	}

	report, err := eng.RunDirection(ctx, store, resolveMaxSamples(),
		engine.DirectionSinks{Benchmark: benchFile, Headroom: headroomFile}, opts...)
	if err != nil {
		stopSpinnerErr(spin, "direction benchmark failed")
		fail("direction benchmark failed", err)
	}
	mustClose(benchFile)
	mustClose(headroomFile)
	stopSpinnerOK(spin, "direction benchmark complete")

	ux.FileStatus(directionOutput, ux.IconSuccess, fmt.Sprintf("%d samples", report.Samples))
	ux.FileStatus(headroomOutput, ux.IconSuccess, fmt.Sprintf("%d budgets", len(report.Headroom)))
	ux.Box("Direction Verdicts", fmt.Sprintf(
		"forward better: %d\nreverse better: %d\nequal: %d\nmedian forward memory: %.1f MB\nmedian reverse memory: %.1f MB",
		report.ForwardBetter,
		report.ReverseBetter,
		report.Equal,
		report.ForwardMemoryMB.Median,
		report.ReverseMemoryMB.Median))
}
