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
)

// runClassify scores an already-written overlap table. No graph load
// happens here, so re-scoring after a metric change is cheap.
func runClassify(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()

	if _, err := os.Stat(overlapTable); err != nil {
		failUsage(fmt.Sprintf("overlap table %s is not readable: run 'metapath overlap' first", overlapTable))
	}
	confirmOverwrite(classifiedOutput, aggregateOutput)

	eng := newEngine(nil)
	log := cliLogger.With("run_id", eng.RunID())
	log.Info("classification starting", "overlap_table", overlapTable)

	classFile := mustCreate(classifiedOutput)
	aggFile := mustCreate(aggregateOutput)

	rows, err := eng.Classify(ctx, overlapTable, classFile, aggFile)
	if err != nil {
		fail("classification failed", err)
	}
	mustClose(classFile)
	mustClose(aggFile)

	ux.FileStatus(classifiedOutput, ux.IconSuccess, fmt.Sprintf("%d rows", rows))
	ux.FileStatus(aggregateOutput, ux.IconSuccess, "per-chain aggregates")
	ux.Success(fmt.Sprintf("classified %d comparisons", rows))
}
