// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package matrix

import (
	"fmt"
	"strings"
)

// Direction indicates whether a relation matrix is read along the stored
// edge orientation or against it.
type Direction uint8

const (
	// Forward reads the matrix as stored: rows are the edge subjects.
	Forward Direction = iota

	// Reverse reads the transpose: rows are the edge objects.
	Reverse
)

// String returns the single-letter token used in metapath labels.
func (d Direction) String() string {
	if d == Reverse {
		return "R"
	}
	return "F"
}

// Flip returns the opposite direction.
func (d Direction) Flip() Direction {
	if d == Reverse {
		return Forward
	}
	return Reverse
}

// ParseDirection converts a metapath direction token back to a Direction.
//
// Accepts "F" and "R". Anything else is an error; the aggregate token "A"
// never names a stored relation.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "F":
		return Forward, nil
	case "R":
		return Reverse, nil
	default:
		return Forward, fmt.Errorf("invalid direction token %q", s)
	}
}

// Key identifies one typed relation matrix.
//
// A Key names the group of edges sharing (SourceType, Predicate, TargetType)
// together with the read direction. Reverse keys resolve to the transpose of
// the forward matrix; the Store materializes that transpose lazily and shares
// it across all readers.
type Key struct {
	SourceType string
	Predicate  string
	TargetType string
	Direction  Direction
}

// String renders the key as a one-hop metapath segment,
// e.g. "Gene|interacts_with|F|ChemicalEntity".
func (k Key) String() string {
	var b strings.Builder
	b.Grow(len(k.SourceType) + len(k.Predicate) + len(k.TargetType) + 6)
	b.WriteString(k.SourceType)
	b.WriteByte('|')
	b.WriteString(k.Predicate)
	b.WriteByte('|')
	b.WriteString(k.Direction.String())
	b.WriteByte('|')
	b.WriteString(k.TargetType)
	return b.String()
}

// Reversed returns the key naming the transposed relation. Source and target
// types swap and the direction flips; the predicate is unchanged.
func (k Key) Reversed() Key {
	return Key{
		SourceType: k.TargetType,
		Predicate:  k.Predicate,
		TargetType: k.SourceType,
		Direction:  k.Direction.Flip(),
	}
}

// ParseKey parses a one-hop metapath segment produced by Key.String.
func ParseKey(s string) (Key, error) {
	parts := strings.Split(s, "|")
	if len(parts) != 4 {
		return Key{}, fmt.Errorf("invalid relation key %q: want 4 segments, got %d", s, len(parts))
	}
	dir, err := ParseDirection(parts[2])
	if err != nil {
		return Key{}, fmt.Errorf("invalid relation key %q: %w", s, err)
	}
	for i, p := range parts {
		if i == 2 {
			continue
		}
		if p == "" {
			return Key{}, fmt.Errorf("invalid relation key %q: empty segment", s)
		}
	}
	return Key{
		SourceType: parts[0],
		Predicate:  parts[1],
		TargetType: parts[3],
		Direction:  dir,
	}, nil
}

// compareKeys orders keys by source type, predicate, target type, direction.
// Store.Keys() uses this ordering so enumeration is deterministic run to run.
func compareKeys(a, b Key) int {
	if c := strings.Compare(a.SourceType, b.SourceType); c != 0 {
		return c
	}
	if c := strings.Compare(a.Predicate, b.Predicate); c != 0 {
		return c
	}
	if c := strings.Compare(a.TargetType, b.TargetType); c != 0 {
		return c
	}
	return int(a.Direction) - int(b.Direction)
}
