// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package matrix provides boolean sparse relation matrices for typed graphs.
//
// One BoolMat represents edge existence between two type-indexed node sets:
// rows are source-type-local indices, columns target-type-local indices. The
// Builder groups edges by (sourceType, predicate, targetType), assigns dense
// per-type node indices in two passes, and registers one frozen matrix per
// group in a Store keyed by TypedRelationKey.
//
// # Ownership Model
//
// Matrices registered in a Store are owned by that Store for the lifetime of
// the run. Callers receive shared pointers and MUST NOT mutate them; Set
// rejects writes after Freeze.
//
// # Thread Safety
//
// BoolMat is single-writer during building. After Freeze() it is safe for
// concurrent reads, including T(), which materializes the shared transpose
// exactly once. Store is immutable after Build returns.
//
// # Lifecycle
//
//  1. Build with NewBuilder(resolver) and Build(ctx, provider)
//  2. Query the returned Store with Get(), Keys(), ByTypePair()
//  3. Compose and intersect matrices via Mul, And, Or
package matrix

import "errors"

// Sentinel errors for matrix operations.
var (
	// ErrMatrixFrozen is returned when attempting to set bits on a frozen
	// matrix. Matrices freeze when building completes and never thaw.
	ErrMatrixFrozen = errors.New("matrix is frozen and cannot be modified")

	// ErrIndexOutOfRange is returned when a row or column index falls
	// outside the matrix shape.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrShapeMismatch is returned by entrywise operations (And, Or) when
	// the two operands do not share the same shape.
	ErrShapeMismatch = errors.New("matrix shapes do not match")

	// ErrDimensionMismatch is returned by Mul when the left operand's
	// column count does not equal the right operand's row count.
	ErrDimensionMismatch = errors.New("inner matrix dimensions do not match")

	// ErrBuildCancelled is returned when a build pass is cancelled via context.
	ErrBuildCancelled = errors.New("matrix build cancelled")

	// ErrRelationNotFound is returned when a Store lookup misses.
	ErrRelationNotFound = errors.New("relation not found")
)
