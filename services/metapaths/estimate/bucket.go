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

import "fmt"

// SizeBucket classifies a first-stage intermediate by nonzero count. The
// ladder spans decades because composition cost tracks intermediate size
// far more than operand size.
type SizeBucket uint8

const (
	Tiny SizeBucket = iota // < 1e3
	Small                  // < 1e4
	Medium                 // < 1e5
	Large                  // < 1e6
	XLarge                 // < 1e7
	XXLarge                // < 1e8
	Huge                   // >= 1e8

	numBuckets = 7
)

var bucketNames = [numBuckets]string{
	"tiny", "small", "medium", "large", "xlarge", "xxlarge", "huge",
}

var bucketCeilings = [numBuckets - 1]int{
	1_000, 10_000, 100_000, 1_000_000, 10_000_000, 100_000_000,
}

// BucketFor classifies a nonzero count.
func BucketFor(nnz int) SizeBucket {
	for i, ceiling := range bucketCeilings {
		if nnz < ceiling {
			return SizeBucket(i)
		}
	}
	return Huge
}

func (b SizeBucket) String() string {
	if int(b) < len(bucketNames) {
		return bucketNames[b]
	}
	return fmt.Sprintf("SizeBucket(%d)", uint8(b))
}

// ParseBucket maps a ladder name back to its bucket.
func ParseBucket(name string) (SizeBucket, error) {
	for i, n := range bucketNames {
		if n == name {
			return SizeBucket(i), nil
		}
	}
	return Tiny, fmt.Errorf("%w: %q", ErrUnknownBucket, name)
}

// Buckets returns the ladder smallest to largest.
func Buckets() []SizeBucket {
	ladder := make([]SizeBucket, numBuckets)
	for i := range ladder {
		ladder[i] = SizeBucket(i)
	}
	return ladder
}

// DefaultMinimums returns the per-bucket minimum sample counts. Small
// buckets get more draws because their timings are noisier relative to
// their magnitude; huge intermediates are expensive enough that a handful
// of measurements suffices.
func DefaultMinimums() map[SizeBucket]int {
	return map[SizeBucket]int{
		Tiny:    400,
		Small:   200,
		Medium:  150,
		Large:   100,
		XLarge:  75,
		XXLarge: 50,
		Huge:    25,
	}
}
