// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package compose

import (
	"context"
	"errors"
	"fmt"

	"github.com/AleutianAI/MetapathFOSS/services/metapaths/matrix"
)

// ctxCheckMask throttles context cancellation checks during enumeration.
const ctxCheckMask = 0x3FF

// Enumerate visits every three-hop metapath the store admits, in the sorted
// key order of the store.
//
// Description:
//
//	The walk is a type-keyed nested join: the second segment is drawn from
//	relations starting on the first segment's target type, the third from
//	relations starting on the second segment's target type. Segments chain
//	by construction, so no dimension checks are repeated per triple.
//
// Inputs:
//
//	ctx   - cancels enumeration between visits
//	store - the relation store to walk
//	visit - called once per metapath; returning ErrStopEnumeration ends the
//	        walk cleanly, any other error aborts and propagates
//
// Errors:
//
//	ErrEnumerationCancelled on context cancellation, otherwise the first
//	error returned by visit.
func Enumerate(ctx context.Context, store *matrix.Store, visit func(Metapath) error) error {
	n := 0
	for _, e1 := range store.Keys() {
		for _, e2 := range store.BySourceType(e1.TargetType) {
			for _, e3 := range store.BySourceType(e2.TargetType) {
				if n&ctxCheckMask == 0 {
					select {
					case <-ctx.Done():
						return fmt.Errorf("%w: %v", ErrEnumerationCancelled, ctx.Err())
					default:
					}
				}
				n++
				err := visit(Metapath{E1: e1, E2: e2, E3: e3})
				if errors.Is(err, ErrStopEnumeration) {
					return nil
				}
				if err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Count returns the number of metapaths Enumerate would visit, without
// visiting them. Used to size runs and to cross-check sampled populations.
func Count(store *matrix.Store) int {
	perSource := make(map[string]int)
	for _, k := range store.Keys() {
		perSource[k.SourceType]++
	}
	total := 0
	for _, e1 := range store.Keys() {
		for _, e2 := range store.BySourceType(e1.TargetType) {
			total += perSource[e2.TargetType]
		}
	}
	return total
}
