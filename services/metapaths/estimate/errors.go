// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package estimate projects the wall-clock cost of exhaustive three-hop
// evaluation from a cheap census and a small measured sample.
//
// Exhaustive evaluation is combinatorially large, so estimation runs two
// tracks. The census computes every valid first-stage product once, buckets
// its nonzero count on the SizeBucket ladder, and counts how many third-hop
// choices would consume it; no third hop is ever composed. The sampler
// draws a stratified set of full chains, the runner measures the real
// pipeline on each, and the projection multiplies per-bucket average times
// by per-bucket populations. Buckets with population but no measurements
// are reported unknown rather than interpolated.
package estimate

import "errors"

var (
	// ErrUnknownBucket is returned by ParseBucket for names outside the
	// ladder.
	ErrUnknownBucket = errors.New("unknown size bucket")

	// ErrCensusCancelled is returned when a census or sample-pool sweep
	// is cancelled via context.
	ErrCensusCancelled = errors.New("intermediate census cancelled")

	// ErrRunCancelled is returned when a benchmark run is cancelled via
	// context.
	ErrRunCancelled = errors.New("benchmark run cancelled")
)
