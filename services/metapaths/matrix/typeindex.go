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

import "sort"

// TypeIndex assigns dense contiguous indices to the node IDs of one type.
//
// Indices are assigned once, after the full node population of the type is
// known, so every matrix over the type agrees on row and column meaning.
// IDs are ordered lexicographically, which keeps index assignment stable
// across runs over the same input.
//
// Thread Safety:
//
//	Immutable after construction; safe for concurrent reads.
type TypeIndex struct {
	label string
	ids   []string
	index map[string]int
}

// newTypeIndex builds an index over the given distinct IDs. The caller owns
// deduplication; ids are sorted in place.
func newTypeIndex(label string, ids []string) *TypeIndex {
	sort.Strings(ids)
	index := make(map[string]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}
	return &TypeIndex{label: label, ids: ids, index: index}
}

// Label returns the node type this index covers.
func (t *TypeIndex) Label() string { return t.label }

// Size returns the number of indexed nodes.
func (t *TypeIndex) Size() int { return len(t.ids) }

// IndexOf returns the dense index of a node ID.
func (t *TypeIndex) IndexOf(id string) (int, bool) {
	i, ok := t.index[id]
	return i, ok
}

// IDAt returns the node ID at a dense index.
func (t *TypeIndex) IDAt(i int) (string, bool) {
	if i < 0 || i >= len(t.ids) {
		return "", false
	}
	return t.ids[i], true
}

// IDs returns a copy of the indexed node IDs in index order.
func (t *TypeIndex) IDs() []string {
	out := make([]string, len(t.ids))
	copy(out, t.ids)
	return out
}
