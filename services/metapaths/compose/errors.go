// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package compose builds multi-hop relation products and enumerates the
// three-hop metapaths a relation store admits.
//
// Composition is existential: a source connects to a target through a chain
// when at least one intermediate witness exists. Counts never survive, so
// products of boolean relation matrices stay boolean. Dimension mismatches
// signal API misuse; enumeration itself joins relations by type and cannot
// produce them.
package compose

import "errors"

// Sentinel errors for composition operations.
var (
	// ErrDiscontinuous is returned when adjacent metapath segments do not
	// share a type: segment n must end on the type segment n+1 starts on.
	ErrDiscontinuous = errors.New("metapath segments do not chain")

	// ErrStopEnumeration stops Enumerate early without reporting an error,
	// in the manner of fs.SkipAll.
	ErrStopEnumeration = errors.New("stop enumeration")

	// ErrEnumerationCancelled is returned when Enumerate is cancelled via
	// context.
	ErrEnumerationCancelled = errors.New("metapath enumeration cancelled")
)
