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

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/MetapathFOSS/services/metapaths/compose"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{4, 1, 3, 2})
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 4.0, s.Max)
	assert.InDelta(t, 2.5, s.Median, 1e-9)
	assert.InDelta(t, 2.5, s.Mean, 1e-9)
	assert.InDelta(t, 1.75, s.P25, 1e-9)
	assert.InDelta(t, 3.25, s.P75, 1e-9)
	assert.InDelta(t, 3.7, s.P90, 1e-9)
	assert.InDelta(t, 3.97, s.P99, 1e-9)
}

func TestSummarize_SingleSample(t *testing.T) {
	s := Summarize([]float64{7})
	assert.Equal(t, 1, s.Count)
	assert.Equal(t, 7.0, s.Min)
	assert.Equal(t, 7.0, s.P25)
	assert.Equal(t, 7.0, s.Median)
	assert.Equal(t, 7.0, s.Mean)
	assert.Equal(t, 7.0, s.P99)
	assert.Equal(t, 7.0, s.Max)
}

func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestSummarize_DoesNotMutateInput(t *testing.T) {
	samples := []float64{3, 1, 2}
	Summarize(samples)
	assert.Equal(t, []float64{3, 1, 2}, samples)
}

func TestBuildReport(t *testing.T) {
	const mb = 1 << 20
	results := []Result{
		{
			ForwardCost: Cost{IntermediateBytes: mb / 2, Total: time.Millisecond},
			ReverseCost: Cost{IntermediateBytes: 3 * mb, Total: 4 * time.Millisecond},
			Better:      BetterForward,
		},
		{
			ForwardCost: Cost{IntermediateBytes: 2 * mb, Total: 2 * time.Millisecond},
			ReverseCost: Cost{IntermediateBytes: mb, Total: time.Millisecond},
			Better:      BetterReverse,
		},
		{
			ForwardCost: Cost{IntermediateBytes: mb / 2, Total: time.Millisecond},
			ReverseCost: Cost{IntermediateBytes: mb / 2, Total: time.Millisecond},
			Better:      BetterEqual,
		},
	}

	report := BuildReport(results, []int{1, 2, 4})
	assert.Equal(t, 3, report.Samples)
	assert.Equal(t, 1, report.ForwardBetter)
	assert.Equal(t, 1, report.ReverseBetter)
	assert.Equal(t, 1, report.Equal)

	assert.Equal(t, 3, report.ForwardMemoryMB.Count)
	assert.InDelta(t, 0.5, report.ForwardMemoryMB.Min, 1e-9)
	assert.InDelta(t, 2.0, report.ForwardMemoryMB.Max, 1e-9)
	assert.InDelta(t, 3.0, report.ReverseMemoryMB.Max, 1e-9)
	assert.InDelta(t, 0.004, report.ReverseSeconds.Max, 1e-9)

	require.Len(t, report.Headroom, 3)

	// At 1 MB each side fits two of three; at 2 MB forward pulls ahead.
	assert.Equal(t, 1, report.Headroom[0].BudgetMB)
	assert.Equal(t, 2, report.Headroom[0].ForwardFits)
	assert.Equal(t, 2, report.Headroom[0].ReverseFits)
	assert.Equal(t, BetterEqual, report.Headroom[0].Better)

	assert.Equal(t, 2, report.Headroom[1].BudgetMB)
	assert.Equal(t, 3, report.Headroom[1].ForwardFits)
	assert.Equal(t, 2, report.Headroom[1].ReverseFits)
	assert.Equal(t, BetterForward, report.Headroom[1].Better)

	assert.Equal(t, 4, report.Headroom[2].BudgetMB)
	assert.Equal(t, 3, report.Headroom[2].ForwardFits)
	assert.Equal(t, 3, report.Headroom[2].ReverseFits)
	assert.Equal(t, BetterEqual, report.Headroom[2].Better)
}

func TestBuildReport_Empty(t *testing.T) {
	report := BuildReport(nil, DefaultBudgetsMB())
	assert.Zero(t, report.Samples)
	assert.Equal(t, Summary{}, report.ForwardMemoryMB)
	require.Len(t, report.Headroom, 5)
	assert.Zero(t, report.Headroom[0].ForwardFits)
	assert.Equal(t, BetterEqual, report.Headroom[0].Better)
}

func TestDefaultBudgetsMB(t *testing.T) {
	assert.Equal(t, []int{100, 500, 1000, 2000, 4000}, DefaultBudgetsMB())
}

func TestProfiler_Report(t *testing.T) {
	store := testStore(t)
	p := NewProfiler(store, WithStrategy(Estimate), WithBudgetsMB([]int{100}))

	results, err := p.ProfileAll(context.Background(), []compose.Metapath{testChain(t)})
	require.NoError(t, err)

	report := p.Report(results)
	assert.Equal(t, 1, report.Samples)
	assert.Equal(t, 1, report.ForwardBetter)
	require.Len(t, report.Headroom, 1)
	assert.Equal(t, 100, report.Headroom[0].BudgetMB)
	assert.Equal(t, 1, report.Headroom[0].ForwardFits)
	assert.Equal(t, 1, report.Headroom[0].ReverseFits)
}
