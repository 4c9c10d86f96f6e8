// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package estimate

import (
	"context"
	"fmt"
	"time"

	"github.com/AleutianAI/MetapathFOSS/services/metapaths/matrix"
	"github.com/AleutianAI/MetapathFOSS/services/metapaths/overlap"
)

// Measurement times the full pipeline for one sampled chain: both
// composition stages plus every one-hop overlap comparison.
type Measurement struct {
	Bucket         SizeBucket
	Metapath       string
	ABEdges        int
	ABCEdges       int
	NumComparisons int
	ABTime         time.Duration
	ABCTime        time.Duration
	ComparisonTime time.Duration
	TotalTime      time.Duration
}

// RunStats counts benchmark outcomes.
type RunStats struct {
	// Measured counts chains that produced a Measurement.
	Measured int

	// Skipped counts chains dropped for missing relations, dimension
	// drift, or empty products.
	Skipped int
}

// Runner benchmarks sampled chains against one relation store. Timings
// run strictly serially so measurements do not contend with each other.
type Runner struct {
	store     *matrix.Store
	evaluator *overlap.Evaluator
	warn      func(sample int, reason string)
}

// NewRunner creates a Runner. warn, when non-nil, receives the sample
// index and reason each time a chain is skipped for cause.
func NewRunner(store *matrix.Store, warn func(sample int, reason string)) *Runner {
	return &Runner{
		store:     store,
		evaluator: overlap.NewEvaluator(store),
		warn:      warn,
	}
}

// Run benchmarks each sample in order.
//
// Description:
//
//	Per chain: resolve the three relations, time the first composition,
//	time the second, then time one overlap pass of the final product
//	against every stored one-hop for the chain's boundary types. Chains
//	referencing relations absent from the store are skipped with a
//	warning; chains whose first or second stage comes up empty are
//	skipped silently, mirroring the pipeline's own short-circuit.
//
// Outputs:
//
//	Each Measurement streams through emit as it completes, so the caller
//	can flush rows periodically. The returned stats count both outcomes.
//
// Errors:
//
//	ErrRunCancelled on context cancellation; emit errors propagate.
func (r *Runner) Run(ctx context.Context, samples []Sample, emit func(Measurement) error) (RunStats, error) {
	var stats RunStats
	for i, sample := range samples {
		if err := ctx.Err(); err != nil {
			return stats, fmt.Errorf("%w: %v", ErrRunCancelled, err)
		}

		m, ok := r.measure(i, sample)
		if !ok {
			stats.Skipped++
			continue
		}
		stats.Measured++
		if emit != nil {
			if err := emit(m); err != nil {
				return stats, err
			}
		}
	}
	return stats, nil
}

func (r *Runner) measure(index int, sample Sample) (Measurement, bool) {
	mp := sample.Metapath
	m1, ok := r.store.Get(mp.E1)
	if !ok {
		r.skip(index, fmt.Sprintf("relation %s not in store", mp.E1))
		return Measurement{}, false
	}
	m2, ok := r.store.Get(mp.E2)
	if !ok {
		r.skip(index, fmt.Sprintf("relation %s not in store", mp.E2))
		return Measurement{}, false
	}
	m3, ok := r.store.Get(mp.E3)
	if !ok {
		r.skip(index, fmt.Sprintf("relation %s not in store", mp.E3))
		return Measurement{}, false
	}

	abStart := time.Now()
	ab, err := m1.Mul(m2)
	abTime := time.Since(abStart)
	if err != nil {
		r.skip(index, fmt.Sprintf("first stage: %v", err))
		return Measurement{}, false
	}
	if ab.IsEmpty() {
		return Measurement{}, false
	}

	abcStart := time.Now()
	abc, err := ab.Mul(m3)
	abcTime := time.Since(abcStart)
	if err != nil {
		r.skip(index, fmt.Sprintf("second stage: %v", err))
		return Measurement{}, false
	}
	if abc.IsEmpty() {
		return Measurement{}, false
	}

	cmpStart := time.Now()
	comparisons := r.evaluator.Compare(mp, abc)
	cmpTime := time.Since(cmpStart)

	return Measurement{
		Bucket:         sample.Bucket,
		Metapath:       mp.String(),
		ABEdges:        ab.NNZ(),
		ABCEdges:       abc.NNZ(),
		NumComparisons: len(comparisons),
		ABTime:         abTime,
		ABCTime:        abcTime,
		ComparisonTime: cmpTime,
		TotalTime:      abTime + abcTime + cmpTime,
	}, true
}

func (r *Runner) skip(index int, reason string) {
	if r.warn != nil {
		r.warn(index, reason)
	}
}
