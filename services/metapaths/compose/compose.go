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
	"fmt"
	"strings"

	"github.com/AleutianAI/MetapathFOSS/services/metapaths/matrix"
)

// Pair returns the boolean product of two relation matrices.
//
// Cell (i, j) is set iff some intermediate k connects i to k in a and k to j
// in b. Valid iff a.Cols() == b.Rows(); anything else is caller error and
// returns matrix.ErrDimensionMismatch.
func Pair(a, b *matrix.BoolMat) (*matrix.BoolMat, error) {
	return a.Mul(b)
}

// TripleResult holds both stages of a three-hop composition.
type TripleResult struct {
	// AB is the two-hop intermediate product.
	AB *matrix.BoolMat

	// ABC is the full three-hop product. When AB is empty, ABC is the
	// correctly shaped empty matrix; the second multiply never runs a
	// row loop against an empty operand.
	ABC *matrix.BoolMat
}

// Triple composes a three-hop chain in two stages.
//
// The intermediate product is returned alongside the final one because both
// edge counts feed performance analysis. An empty intermediate short-circuits
// the final stage to a shape-only result.
func Triple(a, b, c *matrix.BoolMat) (*TripleResult, error) {
	ab, err := a.Mul(b)
	if err != nil {
		return nil, fmt.Errorf("first stage: %w", err)
	}
	abc, err := ab.Mul(c)
	if err != nil {
		return nil, fmt.Errorf("second stage: %w", err)
	}
	return &TripleResult{AB: ab, ABC: abc}, nil
}

// Metapath is a chain of three typed relation segments.
//
// Adjacent segments share a type: E1 ends on the type E2 starts on, and E2
// ends on the type E3 starts on. The zero value is not a valid metapath; use
// NewMetapath or Enumerate to obtain one.
type Metapath struct {
	E1 matrix.Key
	E2 matrix.Key
	E3 matrix.Key
}

// NewMetapath validates segment continuity and returns the metapath.
func NewMetapath(e1, e2, e3 matrix.Key) (Metapath, error) {
	if e2.SourceType != e1.TargetType || e3.SourceType != e2.TargetType {
		return Metapath{}, fmt.Errorf("%w: %s -> %s -> %s", ErrDiscontinuous, e1, e2, e3)
	}
	return Metapath{E1: e1, E2: e2, E3: e3}, nil
}

// SourceType returns the type the metapath starts on.
func (m Metapath) SourceType() string { return m.E1.SourceType }

// TargetType returns the type the metapath ends on.
func (m Metapath) TargetType() string { return m.E3.TargetType }

// String renders the ten-token metapath label, for example
// "Gene|interacts_with|F|Gene|affects|F|Disease|treats|R|ChemicalEntity".
func (m Metapath) String() string {
	var b strings.Builder
	b.WriteString(m.E1.String())
	b.WriteByte('|')
	b.WriteString(m.E2.Predicate)
	b.WriteByte('|')
	b.WriteString(m.E2.Direction.String())
	b.WriteByte('|')
	b.WriteString(m.E3.String())
	return b.String()
}

// Reversed returns the metapath walked from target to source. Segment order
// reverses and every direction flips; the reversed label of a reversed
// metapath is the original.
func (m Metapath) Reversed() Metapath {
	return Metapath{
		E1: m.E3.Reversed(),
		E2: m.E2.Reversed(),
		E3: m.E1.Reversed(),
	}
}

// ParseMetapath parses a ten-token label produced by Metapath.String.
func ParseMetapath(s string) (Metapath, error) {
	parts := strings.Split(s, "|")
	if len(parts) != 10 {
		return Metapath{}, fmt.Errorf("invalid metapath %q: want 10 segments, got %d", s, len(parts))
	}
	e1, err := matrix.ParseKey(strings.Join(parts[0:4], "|"))
	if err != nil {
		return Metapath{}, fmt.Errorf("invalid metapath %q: %w", s, err)
	}
	e2, err := matrix.ParseKey(strings.Join(parts[3:7], "|"))
	if err != nil {
		return Metapath{}, fmt.Errorf("invalid metapath %q: %w", s, err)
	}
	e3, err := matrix.ParseKey(strings.Join(parts[6:10], "|"))
	if err != nil {
		return Metapath{}, fmt.Errorf("invalid metapath %q: %w", s, err)
	}
	return NewMetapath(e1, e2, e3)
}
