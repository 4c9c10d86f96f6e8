// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package catalog resolves node IDs to their most specific biolink class.
//
// A Catalog is built once from a KGX node stream and an ontology hierarchy,
// then queried read-only during matrix building. Nodes whose categories
// cannot be resolved are dropped and counted rather than failing the build;
// a knowledge graph dump routinely carries stray classes.
//
// # Ownership Model
//
// The Catalog owns its internal maps. HierarchyOracle implementations are
// shared and must be safe for concurrent use.
//
// # Thread Safety
//
// Catalog is immutable after Build returns and safe for concurrent reads.
// YAMLHierarchy serves concurrent MostSpecific calls; memoization is guarded
// internally.
//
// # Lifecycle
//
//  1. Load a hierarchy with LoadHierarchy or NewHierarchy
//  2. Build the catalog with Build(ctx, source, oracle)
//  3. Query with ResolveType(), TypeCounts(), Dropped()
package catalog

import "errors"

// Sentinel errors for catalog operations.
var (
	// ErrUnknownClass is returned by a HierarchyOracle when none of a
	// node's categories name a known class.
	ErrUnknownClass = errors.New("no known class among categories")

	// ErrHierarchyCycle is returned when the class hierarchy contains a
	// parent cycle.
	ErrHierarchyCycle = errors.New("class hierarchy contains a cycle")

	// ErrMissingParent is returned when a class names a parent that is
	// not itself defined.
	ErrMissingParent = errors.New("class references an undefined parent")

	// ErrBuildCancelled is returned when a catalog build is cancelled via
	// context.
	ErrBuildCancelled = errors.New("catalog build cancelled")
)
