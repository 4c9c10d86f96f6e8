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

// typePair keys the source/target type lookup index.
type typePair struct {
	src string
	tgt string
}

// relationEntry resolves a Key to its matrix. Reverse entries share the
// forward matrix and materialize its transpose on first access.
type relationEntry struct {
	mat      *BoolMat
	reversed bool
}

// BuildStats summarizes one Build run.
type BuildStats struct {
	// EdgesRead is the number of edge records consumed per pass.
	EdgesRead int

	// EdgesSkipped counts edges excluded by predicate (hierarchy edges
	// such as subclass_of).
	EdgesSkipped int

	// EdgesDropped counts edges discarded because an endpoint had no
	// resolvable node type.
	EdgesDropped int

	// DuplicateEdges counts repeated (subject, predicate, object) cells.
	// Duplicates are harmless; the matrices store existence only.
	DuplicateEdges int

	// Types is the number of node types with at least one indexed node.
	Types int

	// NodesIndexed is the total node count across all type indices.
	NodesIndexed int

	// Relations is the number of registered relation keys, reverse keys
	// included.
	Relations int

	// NNZ is the total set-cell count across all forward matrices.
	NNZ int
}

// Store holds the relation matrices produced by one Build run.
//
// Lookups by key, by source type, and by (source, target) type pair are all
// precomputed. Reverse keys resolve to the shared transpose of their forward
// matrix; the transpose is materialized lazily, once, on first Get.
//
// Thread Safety:
//
//	Immutable after Build returns; safe for concurrent use.
type Store struct {
	relations map[Key]relationEntry
	keys      []Key
	types     map[string]*TypeIndex
	bySource  map[string][]Key
	byPair    map[typePair][]Key
	stats     BuildStats
}

func newStore(relations map[Key]relationEntry, types map[string]*TypeIndex, stats BuildStats) *Store {
	s := &Store{
		relations: relations,
		keys:      make([]Key, 0, len(relations)),
		types:     types,
		bySource:  make(map[string][]Key),
		byPair:    make(map[typePair][]Key),
	}
	for k := range relations {
		s.keys = append(s.keys, k)
	}
	sort.Slice(s.keys, func(i, j int) bool {
		return compareKeys(s.keys[i], s.keys[j]) < 0
	})
	for _, k := range s.keys {
		s.bySource[k.SourceType] = append(s.bySource[k.SourceType], k)
		s.byPair[typePair{k.SourceType, k.TargetType}] = append(s.byPair[typePair{k.SourceType, k.TargetType}], k)
	}
	stats.Relations = len(s.keys)
	s.stats = stats
	return s
}

// Get returns the matrix for a relation key.
//
// Reverse keys return the transpose of the forward matrix. The transpose is
// built on first access and cached, so repeated lookups share one allocation.
func (s *Store) Get(key Key) (*BoolMat, bool) {
	entry, ok := s.relations[key]
	if !ok {
		return nil, false
	}
	if entry.reversed {
		return entry.mat.T(), true
	}
	return entry.mat, true
}

// Len returns the number of registered relation keys.
func (s *Store) Len() int { return len(s.keys) }

// Keys returns all relation keys ordered by source type, predicate, target
// type, direction. The returned slice is a copy.
func (s *Store) Keys() []Key {
	out := make([]Key, len(s.keys))
	copy(out, s.keys)
	return out
}

// BySourceType returns the keys whose source type matches, in sorted order.
func (s *Store) BySourceType(sourceType string) []Key {
	keys := s.bySource[sourceType]
	out := make([]Key, len(keys))
	copy(out, keys)
	return out
}

// ByTypePair returns the keys connecting sourceType to targetType, in sorted
// order. This is the lookup behind one-hop overlap comparisons.
func (s *Store) ByTypePair(sourceType, targetType string) []Key {
	keys := s.byPair[typePair{sourceType, targetType}]
	out := make([]Key, len(keys))
	copy(out, keys)
	return out
}

// TypeSize returns the number of indexed nodes of a type, or 0 when the type
// was never seen.
func (s *Store) TypeSize(label string) int {
	if idx, ok := s.types[label]; ok {
		return idx.Size()
	}
	return 0
}

// TypeIndexFor returns the node index of a type.
func (s *Store) TypeIndexFor(label string) (*TypeIndex, bool) {
	idx, ok := s.types[label]
	return idx, ok
}

// TypeLabels returns all indexed type labels in sorted order.
func (s *Store) TypeLabels() []string {
	out := make([]string, 0, len(s.types))
	for label := range s.types {
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

// Stats returns the build statistics recorded when the store was created.
func (s *Store) Stats() BuildStats { return s.stats }
