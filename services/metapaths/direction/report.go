// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package direction

import "sort"

// DefaultBudgetsMB returns the per-worker memory budgets the headroom
// report evaluates.
func DefaultBudgetsMB() []int {
	return []int{100, 500, 1000, 2000, 4000}
}

// Summary is a percentile sketch of one sample distribution.
type Summary struct {
	Count  int
	Min    float64
	P25    float64
	Median float64
	Mean   float64
	P75    float64
	P90    float64
	P95    float64
	P99    float64
	Max    float64
}

// Summarize computes the sketch. Percentiles interpolate linearly between
// the two nearest ranks. An empty input yields a zero Summary.
func Summarize(samples []float64) Summary {
	if len(samples) == 0 {
		return Summary{}
	}
	sorted := append([]float64(nil), samples...)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}

	return Summary{
		Count:  len(sorted),
		Min:    sorted[0],
		P25:    percentile(sorted, 25),
		Median: percentile(sorted, 50),
		Mean:   sum / float64(len(sorted)),
		P75:    percentile(sorted, 75),
		P90:    percentile(sorted, 90),
		P95:    percentile(sorted, 95),
		P99:    percentile(sorted, 99),
		Max:    sorted[len(sorted)-1],
	}
}

func percentile(sorted []float64, p float64) float64 {
	k := float64(len(sorted)-1) * p / 100
	f := int(k)
	c := f + 1
	if c >= len(sorted) {
		c = f
	}
	if f == c {
		return sorted[f]
	}
	return sorted[f]*(float64(c)-k) + sorted[c]*(k-float64(f))
}

// Headroom counts chains whose intermediate estimate fits one per-worker
// budget. A higher fit count means more chains can run concurrently on
// workers of that size.
type Headroom struct {
	BudgetMB    int
	ForwardFits int
	ReverseFits int
	Better      Verdict
}

// Report summarizes a profiling run.
type Report struct {
	// Samples is the number of profiled chains.
	Samples int

	// ForwardBetter, ReverseBetter, and Equal count per-chain verdicts.
	ForwardBetter int
	ReverseBetter int
	Equal         int

	// ForwardMemoryMB and ReverseMemoryMB sketch intermediate footprints.
	ForwardMemoryMB Summary
	ReverseMemoryMB Summary

	// ForwardSeconds and ReverseSeconds sketch total wall times. Zero
	// sketches under the Estimate strategy are expected since only first
	// stages run.
	ForwardSeconds Summary
	ReverseSeconds Summary

	// Headroom has one row per budget, in the given budget order.
	Headroom []Headroom
}

// BuildReport aggregates per-chain results against the given budgets.
func BuildReport(results []Result, budgetsMB []int) Report {
	report := Report{Samples: len(results)}

	forwardMB := make([]float64, 0, len(results))
	reverseMB := make([]float64, 0, len(results))
	forwardSec := make([]float64, 0, len(results))
	reverseSec := make([]float64, 0, len(results))

	for _, r := range results {
		switch r.Better {
		case BetterForward:
			report.ForwardBetter++
		case BetterReverse:
			report.ReverseBetter++
		default:
			report.Equal++
		}
		forwardMB = append(forwardMB, r.ForwardCost.IntermediateMB())
		reverseMB = append(reverseMB, r.ReverseCost.IntermediateMB())
		forwardSec = append(forwardSec, r.ForwardCost.Total.Seconds())
		reverseSec = append(reverseSec, r.ReverseCost.Total.Seconds())
	}

	report.ForwardMemoryMB = Summarize(forwardMB)
	report.ReverseMemoryMB = Summarize(reverseMB)
	report.ForwardSeconds = Summarize(forwardSec)
	report.ReverseSeconds = Summarize(reverseSec)

	for _, budget := range budgetsMB {
		h := Headroom{BudgetMB: budget}
		limit := float64(budget)
		for i := range results {
			if forwardMB[i] <= limit {
				h.ForwardFits++
			}
			if reverseMB[i] <= limit {
				h.ReverseFits++
			}
		}
		switch {
		case h.ForwardFits > h.ReverseFits:
			h.Better = BetterForward
		case h.ReverseFits > h.ForwardFits:
			h.Better = BetterReverse
		default:
			h.Better = BetterEqual
		}
		report.Headroom = append(report.Headroom, h)
	}
	return report
}
