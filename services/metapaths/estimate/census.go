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

	"github.com/AleutianAI/MetapathFOSS/services/metapaths/matrix"
)

// Census holds per-bucket counts of full chains, keyed by the size bucket
// of each chain's first-stage intermediate.
type Census struct {
	counts [numBuckets]int64
	total  int64
}

// Population returns the chain count for one bucket.
func (c *Census) Population(b SizeBucket) int64 {
	if int(b) >= numBuckets {
		return 0
	}
	return c.counts[b]
}

// Total returns the chain count across all buckets. It equals the number
// of chains a full enumeration would visit.
func (c *Census) Total() int64 {
	return c.total
}

func (c *Census) add(b SizeBucket, chains int64) {
	c.counts[b] += chains
	c.total += chains
}

// TakeCensus sweeps every valid (e1, e2) pair once.
//
// Description:
//
//	Composes each pair's intermediate, buckets its nonzero count, and
//	credits the bucket with the number of e3 relations that would consume
//	the intermediate. The third hop is never composed, so the sweep costs
//	one composition per pair instead of one full pipeline per chain.
//	Pairs with an empty intermediate land in the tiny bucket; their
//	chains still count toward the population.
//
// Errors:
//
//	ErrCensusCancelled on context cancellation, composition errors
//	otherwise.
func TakeCensus(ctx context.Context, store *matrix.Store) (*Census, error) {
	census := &Census{}
	err := scanPairs(ctx, store, func(_, _ matrix.Key, abNNZ int, e3s []matrix.Key) error {
		census.add(BucketFor(abNNZ), int64(len(e3s)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return census, nil
}

// scanPairs drives one first-stage sweep, invoking visit once per valid
// (e1, e2) pair with the intermediate's nonzero count and the available
// third hops.
func scanPairs(ctx context.Context, store *matrix.Store, visit func(e1, e2 matrix.Key, abNNZ int, e3s []matrix.Key) error) error {
	for _, e1 := range store.Keys() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrCensusCancelled, err)
		}
		m1, ok := store.Get(e1)
		if !ok {
			continue
		}
		for _, e2 := range store.BySourceType(e1.TargetType) {
			m2, ok := store.Get(e2)
			if !ok {
				continue
			}
			ab, err := m1.Mul(m2)
			if err != nil {
				return fmt.Errorf("intermediate %s * %s: %w", e1, e2, err)
			}
			e3s := store.BySourceType(e2.TargetType)
			if err := visit(e1, e2, ab.NNZ(), e3s); err != nil {
				return err
			}
		}
	}
	return nil
}
