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
	"github.com/AleutianAI/MetapathFOSS/services/metapaths/engine"
)

// runOverlap executes the full three-hop enumeration.
//
// Description:
//
//	Loads the graph, enumerates every composable (e1, e2, e3) chain,
//	and writes one overlap row per chain/one-hop comparison. With
//	--classify the classification tables are produced in the same
//	pass, saving a re-read of the overlap table.
func runOverlap(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()

	outputs := []string{overlapOutput}
	if overlapClassify {
		outputs = append(outputs, classifiedOutput, aggregateOutput)
	}
	confirmOverwrite(outputs...)

	spin := startSpinner("loading knowledge graph")
	eng := newEngine(spin)
	log := cliLogger.With("run_id", eng.RunID())
	log.Info("overlap analysis starting",
		"nodes", nodesPath,
		"edges", edgesPath,
		"classify", overlapClassify)

	store, err := eng.Load(ctx, graphInputs())
	if err != nil {
		stopSpinnerErr(spin, "failed to load the knowledge graph")
		fail("failed to load the knowledge graph", err)
	}

	overlapFile := mustCreate(overlapOutput)
	sinks := engine.OverlapSinks{Overlap: overlapFile}
	var classFile, aggFile *os.File
	if overlapClassify {
		classFile = mustCreate(classifiedOutput)
		aggFile = mustCreate(aggregateOutput)
		sinks.Classification = classFile
		sinks.Aggregate = aggFile
	}

	stats, err := eng.RunOverlap(ctx, store, sinks)
	if err != nil {
		stopSpinnerErr(spin, "overlap analysis failed")
		fail("overlap analysis failed", err)
	}
	mustClose(overlapFile)
	if overlapClassify {
		mustClose(classFile)
		mustClose(aggFile)
	}
	stopSpinnerOK(spin, "overlap analysis complete")

	ux.FileStatus(overlapOutput, ux.IconSuccess, fmt.Sprintf("%d rows", stats.Rows))
	if overlapClassify {
		ux.FileStatus(classifiedOutput, ux.IconSuccess, "classification metrics")
		ux.FileStatus(aggregateOutput, ux.IconSuccess, "per-chain aggregates")
	}
	ux.Summary(stats.Evaluated, stats.Skipped, stats.Chains)
}
