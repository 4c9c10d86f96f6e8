// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package output

import (
	"math"
	"strconv"
	"time"

	"github.com/AleutianAI/MetapathFOSS/services/metapaths/classify"
	"github.com/AleutianAI/MetapathFOSS/services/metapaths/direction"
	"github.com/AleutianAI/MetapathFOSS/services/metapaths/estimate"
	"github.com/AleutianAI/MetapathFOSS/services/metapaths/overlap"
)

// unknownField marks runtime-estimate cells for buckets that were never
// measured. Unknown buckets are reported, not interpolated.
const unknownField = "unknown"

func formatFloat(v float64, prec int) string {
	if math.IsInf(v, 1) {
		return "inf"
	}
	if math.IsInf(v, -1) {
		return "-inf"
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', 6, 64)
}

// ===== OVERLAP =====

// OverlapColumns is the header of the three-hop versus one-hop overlap
// table.
func OverlapColumns() []string {
	return []string{
		"3hop_metapath", "3hop_count",
		"1hop_metapath", "1hop_count",
		"overlap", "total_possible",
	}
}

// OverlapRow renders one overlap comparison.
func OverlapRow(c overlap.Comparison) []string {
	return []string{
		c.Metapath,
		strconv.FormatInt(c.ThreeHopCount, 10),
		c.OneHopLabel,
		strconv.FormatInt(c.OneHopCount, 10),
		strconv.FormatInt(c.Overlap, 10),
		strconv.FormatInt(c.TotalPossible, 10),
	}
}

// ===== CLASSIFICATION =====

// ClassificationColumns is the header of the per-pair prediction
// metrics table.
func ClassificationColumns() []string {
	return []string{
		"3hop_metapath", "1hop_metapath",
		"3hop_unique_pairs", "1hop_unique_pairs",
		"overlap", "total_possible_pairs",
		"TP", "FP", "FN", "TN", "Total",
		"Precision", "Recall", "Specificity", "NPV", "Accuracy",
		"Balanced_Accuracy", "F1", "MCC",
		"TPR", "FPR", "FNR", "PLR", "NLR",
	}
}

// ClassificationRow renders one scored (three-hop, one-hop) pair.
// Ratios print with six decimals; infinite likelihood ratios print as
// "inf".
func ClassificationRow(r classify.Result) []string {
	return []string{
		r.Metapath,
		r.OneHopLabel,
		strconv.FormatInt(r.ThreeHopPairs, 10),
		strconv.FormatInt(r.OneHopPairs, 10),
		strconv.FormatInt(r.Overlap, 10),
		strconv.FormatInt(r.TotalPossible, 10),
		strconv.FormatInt(r.TP, 10),
		strconv.FormatInt(r.FP, 10),
		strconv.FormatInt(r.FN, 10),
		strconv.FormatInt(r.TN, 10),
		strconv.FormatInt(r.Total(), 10),
		formatFloat(r.Precision, 6),
		formatFloat(r.Recall, 6),
		formatFloat(r.Specificity, 6),
		formatFloat(r.NPV, 6),
		formatFloat(r.Accuracy, 6),
		formatFloat(r.BalancedAccuracy, 6),
		formatFloat(r.F1, 6),
		formatFloat(r.MCC, 6),
		formatFloat(r.TPR, 6),
		formatFloat(r.FPR, 6),
		formatFloat(r.FNR, 6),
		formatFloat(r.PLR, 6),
		formatFloat(r.NLR, 6),
	}
}

// AggregateColumns is the header of the per-metapath mean metrics
// table.
func AggregateColumns() []string {
	return []string{
		"3hop_metapath",
		"Precision", "Recall", "F1", "MCC", "Balanced_Accuracy",
		"num_1hop_tested",
	}
}

// AggregateRow renders one per-metapath aggregate.
func AggregateRow(r classify.AggregateRow) []string {
	return []string{
		r.Metapath,
		formatFloat(r.Precision, 6),
		formatFloat(r.Recall, 6),
		formatFloat(r.F1, 6),
		formatFloat(r.MCC, 6),
		formatFloat(r.BalancedAccuracy, 6),
		strconv.Itoa(r.NumOneHopTested),
	}
}

// ===== DIRECTION =====

// DirectionColumns is the header of the direction benchmark table. The
// first three forward columns and their reverse counterparts keep the
// historical order; the stage timings follow each side's memory column.
func DirectionColumns() []string {
	return []string{
		"forward_metapath", "forward_intermediate_edges", "forward_memory_mb",
		"forward_first_stage_time", "forward_second_stage_time", "forward_total_time",
		"reverse_metapath", "reverse_intermediate_edges", "reverse_memory_mb",
		"reverse_first_stage_time", "reverse_second_stage_time", "reverse_total_time",
		"better_direction", "memory_ratio",
	}
}

// DirectionRow renders one profiled chain. Memory and ratio print with
// three decimals, timings with six.
func DirectionRow(r direction.Result) []string {
	return []string{
		r.Forward,
		strconv.Itoa(r.ForwardCost.IntermediateNNZ),
		formatFloat(r.ForwardCost.IntermediateMB(), 3),
		formatSeconds(r.ForwardCost.FirstStage),
		formatSeconds(r.ForwardCost.SecondStage),
		formatSeconds(r.ForwardCost.Total),
		r.Reverse,
		strconv.Itoa(r.ReverseCost.IntermediateNNZ),
		formatFloat(r.ReverseCost.IntermediateMB(), 3),
		formatSeconds(r.ReverseCost.FirstStage),
		formatSeconds(r.ReverseCost.SecondStage),
		formatSeconds(r.ReverseCost.Total),
		r.Better.String(),
		formatFloat(r.MemoryRatio, 3),
	}
}

// HeadroomColumns is the header of the memory headroom table.
func HeadroomColumns() []string {
	return []string{"budget_mb", "forward_fits", "reverse_fits", "better_direction"}
}

// HeadroomRow renders one budget tier.
func HeadroomRow(h direction.Headroom) []string {
	return []string{
		strconv.Itoa(h.BudgetMB),
		strconv.Itoa(h.ForwardFits),
		strconv.Itoa(h.ReverseFits),
		h.Better.String(),
	}
}

// ===== RUNTIME ESTIMATE =====

// RuntimeEstimateColumns is the header of the projected runtime table.
func RuntimeEstimateColumns() []string {
	return []string{"bucket", "iterations", "avg_time", "est_total"}
}

// RuntimeEstimateRow renders one bucket projection. Buckets with
// population but no measurements print "unknown" for both time cells.
func RuntimeEstimateRow(b estimate.BucketEstimate) []string {
	avg := unknownField
	total := unknownField
	if b.Known {
		avg = formatFloat(b.AvgSeconds, 6)
		total = formatFloat(b.ProjectedSeconds, 6)
	}
	return []string{
		b.Bucket.String(),
		strconv.FormatInt(b.Population, 10),
		avg,
		total,
	}
}

// ===== BENCHMARK RESULTS =====

// MeasurementColumns is the header of the benchmark results table. It
// must stay loadable by estimate.LoadMeasurements.
func MeasurementColumns() []string {
	return []string{
		"bucket", "metapath",
		"ab_edges", "abc_edges", "num_comparisons",
		"ab_time", "abc_time", "comparison_time", "total_time",
	}
}

// MeasurementRow renders one benchmarked chain with timings in seconds.
func MeasurementRow(m estimate.Measurement) []string {
	return []string{
		m.Bucket.String(),
		m.Metapath,
		strconv.Itoa(m.ABEdges),
		strconv.Itoa(m.ABCEdges),
		strconv.Itoa(m.NumComparisons),
		formatSeconds(m.ABTime),
		formatSeconds(m.ABCTime),
		formatSeconds(m.ComparisonTime),
		formatSeconds(m.TotalTime),
	}
}
