// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package direction profiles forward versus reverse evaluation order for
// three-hop metapath chains.
//
// A chain (e1, e2, e3) can be evaluated as (e1*e2)*e3 or, using transposes,
// as (e3T*e2T)*e1T. Both orders produce the same final nonzero pattern up to
// transposition, but their intermediate products can differ by orders of
// magnitude. The profiler evaluates both orders per chain and reports which
// was cheaper, plus memory headroom statistics that bound how many chains
// could run in parallel under a per-worker budget.
//
// # Thread Safety
//
// A Profiler is safe for concurrent use. ProfileAll fans chains out across
// a bounded worker group; each chain's measurement touches only frozen
// matrices and its own result slot.
package direction

import "errors"

var (
	// ErrProfileCancelled is returned when profiling is cancelled via
	// context.
	ErrProfileCancelled = errors.New("direction profiling cancelled")

	// ErrUnknownStrategy is returned by ParseStrategy for names other
	// than "measure" and "estimate".
	ErrUnknownStrategy = errors.New("unknown profiling strategy")
)
