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
	"math/rand"

	"github.com/AleutianAI/MetapathFOSS/services/metapaths/compose"
	"github.com/AleutianAI/MetapathFOSS/services/metapaths/matrix"
)

// Sample is one drawn chain together with its measured first-stage size.
type Sample struct {
	Bucket   SizeBucket
	Metapath compose.Metapath

	// ABEdges is the first-stage intermediate's nonzero count, recorded
	// at draw time so the benchmark runner can sanity-check drift.
	ABEdges int
}

// SamplerOptions configures stratified drawing.
type SamplerOptions struct {
	// Seed feeds the deterministic source used for shuffling each
	// bucket's pool.
	Seed int64

	// Minimums are the per-bucket sample floors, honored before the
	// remaining budget spreads proportionally.
	Minimums map[SizeBucket]int
}

// DefaultSamplerOptions returns the baseline sampler configuration.
func DefaultSamplerOptions() SamplerOptions {
	return SamplerOptions{Seed: 1, Minimums: DefaultMinimums()}
}

// SamplerOption overrides one SamplerOptions field.
type SamplerOption func(*SamplerOptions)

// WithSeed fixes the shuffle seed.
func WithSeed(seed int64) SamplerOption {
	return func(o *SamplerOptions) { o.Seed = seed }
}

// WithMinimums overrides the per-bucket sample floors.
func WithMinimums(minimums map[SizeBucket]int) SamplerOption {
	return func(o *SamplerOptions) { o.Minimums = minimums }
}

// GenerateSamples draws a stratified set of chains for benchmarking.
//
// Description:
//
//	Sweeps every valid (e1, e2) pair, pools each pair's chains under its
//	intermediate's bucket, then draws without replacement in two passes:
//	first each bucket's minimum (capped by availability and budget, in
//	ladder order), then the remaining budget split proportionally to
//	bucket populations. Chains whose intermediate is empty never enter
//	the pool since the benchmark pipeline short-circuits them. A chain is
//	drawn at most once; undersized buckets simply yield what they have.
//
// Outputs:
//
//	Samples grouped by bucket in ladder order. Draw order within a
//	bucket is the seeded shuffle order, so a fixed seed reproduces the
//	exact sample set.
func GenerateSamples(ctx context.Context, store *matrix.Store, total int, opts ...SamplerOption) ([]Sample, error) {
	o := DefaultSamplerOptions()
	for _, opt := range opts {
		opt(&o)
	}

	var pool [numBuckets][]Sample
	var population int64
	err := scanPairs(ctx, store, func(e1, e2 matrix.Key, abNNZ int, e3s []matrix.Key) error {
		if abNNZ == 0 {
			return nil
		}
		bucket := BucketFor(abNNZ)
		for _, e3 := range e3s {
			mp, err := compose.NewMetapath(e1, e2, e3)
			if err != nil {
				return err
			}
			pool[bucket] = append(pool[bucket], Sample{
				Bucket:   bucket,
				Metapath: mp,
				ABEdges:  abNNZ,
			})
			population++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if population == 0 || total <= 0 {
		return nil, nil
	}

	rng := rand.New(rand.NewSource(o.Seed))
	for _, b := range Buckets() {
		chains := pool[b]
		rng.Shuffle(len(chains), func(i, j int) {
			chains[i], chains[j] = chains[j], chains[i]
		})
	}

	// First pass: bucket minimums. taken[b] marks how far into the
	// shuffled pool each bucket has been consumed, which is what makes
	// the second pass draw fresh chains only.
	var taken [numBuckets]int
	remaining := total
	for _, b := range Buckets() {
		available := len(pool[b])
		if available == 0 || remaining == 0 {
			continue
		}
		allocated := min(o.Minimums[b], available, remaining)
		taken[b] = allocated
		remaining -= allocated
	}

	// Second pass: spread what is left proportionally to population.
	if remaining > 0 {
		for _, b := range Buckets() {
			available := len(pool[b])
			if available == 0 {
				continue
			}
			extra := int(float64(remaining) * float64(available) / float64(population))
			if headroom := available - taken[b]; extra > headroom {
				extra = headroom
			}
			taken[b] += extra
		}
	}

	samples := make([]Sample, 0, total)
	for _, b := range Buckets() {
		samples = append(samples, pool[b][:taken[b]]...)
	}
	return samples, nil
}
