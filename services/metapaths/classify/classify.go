// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package classify treats three-hop metapaths as binary predictors of
// one-hop relations and scores them with confusion-matrix metrics.
//
// Each overlap comparison becomes one confusion matrix over the node pair
// space of the type pair: pairs connected by both paths are true positives,
// pairs connected by neither are true negatives. Ratios with an empty
// denominator are 0 rather than NaN; the likelihood ratios alone go to +Inf,
// and only when their numerator is nonzero. NaN never appears in results.
package classify

import (
	"math"
	"sort"

	"github.com/AleutianAI/MetapathFOSS/services/metapaths/overlap"
)

// Counts is the confusion matrix derived from one overlap comparison.
type Counts struct {
	// TP counts pairs connected by both the three-hop and the one-hop.
	TP int64

	// FP counts pairs connected by the three-hop only.
	FP int64

	// FN counts pairs connected by the one-hop only.
	FN int64

	// TN counts pairs connected by neither.
	TN int64
}

// Total returns the size of the classified pair space.
func (c Counts) Total() int64 {
	return c.TP + c.FP + c.FN + c.TN
}

// CountsFromComparison derives the confusion matrix by inclusion-exclusion.
//
// Inconsistent inputs (an overlap exceeding either count) clamp the derived
// cells at zero instead of going negative, so downstream ratios stay in
// range.
func CountsFromComparison(c overlap.Comparison) Counts {
	return Counts{
		TP: c.Overlap,
		FP: clampNonNegative(c.ThreeHopCount - c.Overlap),
		FN: clampNonNegative(c.OneHopCount - c.Overlap),
		TN: clampNonNegative(c.TotalPossible - c.ThreeHopCount - c.OneHopCount + c.Overlap),
	}
}

func clampNonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}

// Metrics holds the ratio metrics computed from a confusion matrix.
type Metrics struct {
	Precision        float64
	Recall           float64
	Specificity      float64
	NPV              float64
	Accuracy         float64
	BalancedAccuracy float64
	F1               float64
	MCC              float64
	TPR              float64
	FPR              float64
	FNR              float64
	PLR              float64
	NLR              float64
}

// ComputeMetrics derives all ratios from a confusion matrix.
//
// Description:
//
//	Ratios with a zero denominator are 0.0 with two exceptions: the
//	positive likelihood ratio TPR/FPR and the negative likelihood ratio
//	FNR/specificity are +Inf when the denominator is zero and the
//	numerator is not. A zero-over-zero likelihood ratio is 0.0, so no
//	metric is ever NaN.
func ComputeMetrics(c Counts) Metrics {
	tp, fp, fn, tn := float64(c.TP), float64(c.FP), float64(c.FN), float64(c.TN)
	total := tp + fp + fn + tn

	m := Metrics{
		Precision:   ratio(tp, tp+fp),
		Recall:      ratio(tp, tp+fn),
		Specificity: ratio(tn, tn+fp),
		NPV:         ratio(tn, tn+fn),
		Accuracy:    ratio(tp+tn, total),
		FPR:         ratio(fp, fp+tn),
		FNR:         ratio(fn, fn+tp),
	}
	m.TPR = m.Recall
	m.BalancedAccuracy = (m.TPR + m.Specificity) / 2
	m.F1 = ratio(2*m.Precision*m.Recall, m.Precision+m.Recall)

	mccDenom := math.Sqrt((tp + fp) * (tp + fn) * (tn + fp) * (tn + fn))
	if mccDenom > 0 {
		m.MCC = (tp*tn - fp*fn) / mccDenom
	}

	m.PLR = likelihoodRatio(m.TPR, m.FPR)
	m.NLR = likelihoodRatio(m.FNR, m.Specificity)
	return m
}

// ratio divides with a zero-denominator result of 0.0.
func ratio(num, denom float64) float64 {
	if denom > 0 {
		return num / denom
	}
	return 0.0
}

// likelihoodRatio divides with the infinity convention of diagnostic
// likelihood ratios: a positive numerator over a zero denominator is +Inf,
// zero over zero is 0.0.
func likelihoodRatio(num, denom float64) float64 {
	if denom > 0 {
		return num / denom
	}
	if num != 0 {
		return math.Inf(1)
	}
	return 0.0
}

// Result scores one (three-hop, one-hop) pair.
type Result struct {
	// Metapath is the ten-token label of the three-hop predictor.
	Metapath string

	// OneHopLabel is the predicted relation, or the ANY aggregate.
	OneHopLabel string

	// ThreeHopPairs, OneHopPairs, Overlap, and TotalPossible carry the
	// underlying overlap measurement through to the output.
	ThreeHopPairs int64
	OneHopPairs   int64
	Overlap       int64
	TotalPossible int64

	Counts
	Metrics
}

// Evaluate scores every comparison and returns results sorted by F1
// descending. Ties keep their comparison order, so output is deterministic.
func Evaluate(comparisons []overlap.Comparison) []Result {
	results := make([]Result, 0, len(comparisons))
	for _, c := range comparisons {
		counts := CountsFromComparison(c)
		results = append(results, Result{
			Metapath:      c.Metapath,
			OneHopLabel:   c.OneHopLabel,
			ThreeHopPairs: c.ThreeHopCount,
			OneHopPairs:   c.OneHopCount,
			Overlap:       c.Overlap,
			TotalPossible: c.TotalPossible,
			Counts:        counts,
			Metrics:       ComputeMetrics(counts),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].F1 > results[j].F1
	})
	return results
}

// AggregateRow averages a three-hop metapath's scores over every one-hop
// relation it was tested against.
type AggregateRow struct {
	Metapath         string
	Precision        float64
	Recall           float64
	F1               float64
	MCC              float64
	BalancedAccuracy float64
	NumOneHopTested  int
}

// Aggregate groups results by metapath and returns per-metapath means,
// sorted by mean F1 descending with ties broken by label.
func Aggregate(results []Result) []AggregateRow {
	type accumulator struct {
		precision, recall, f1, mcc, balanced float64
		n                                    int
	}
	groups := make(map[string]*accumulator)
	order := make([]string, 0)
	for _, r := range results {
		acc := groups[r.Metapath]
		if acc == nil {
			acc = &accumulator{}
			groups[r.Metapath] = acc
			order = append(order, r.Metapath)
		}
		acc.precision += r.Precision
		acc.recall += r.Recall
		acc.f1 += r.F1
		acc.mcc += r.MCC
		acc.balanced += r.BalancedAccuracy
		acc.n++
	}

	rows := make([]AggregateRow, 0, len(groups))
	for _, label := range order {
		acc := groups[label]
		n := float64(acc.n)
		rows = append(rows, AggregateRow{
			Metapath:         label,
			Precision:        acc.precision / n,
			Recall:           acc.recall / n,
			F1:               acc.f1 / n,
			MCC:              acc.mcc / n,
			BalancedAccuracy: acc.balanced / n,
			NumOneHopTested:  acc.n,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].F1 != rows[j].F1 {
			return rows[i].F1 > rows[j].F1
		}
		return rows[i].Metapath < rows[j].Metapath
	})
	return rows
}
