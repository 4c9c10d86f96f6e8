// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package catalog

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"
)

// HierarchyOracle picks the most specific class among a node's categories.
//
// Implementations must be safe for concurrent use. Returning ErrUnknownClass
// marks the node as unresolvable; any other error aborts the catalog build.
type HierarchyOracle interface {
	MostSpecific(ctx context.Context, categories []string) (string, error)
}

// FirstCategory is the oracle for files that follow the KGX convention of
// listing the most specific category first. It needs no hierarchy file.
type FirstCategory struct{}

// MostSpecific returns the first non-empty category.
func (FirstCategory) MostSpecific(_ context.Context, categories []string) (string, error) {
	for _, c := range categories {
		if c != "" {
			return c, nil
		}
	}
	return "", ErrUnknownClass
}

// hierarchyFile is the on-disk shape of a class hierarchy: each class maps
// to its parent, roots map to the empty string.
type hierarchyFile struct {
	Classes map[string]string `yaml:"classes"`
}

// memoEntry caches one MostSpecific outcome, unknown combinations included.
type memoEntry struct {
	class string
	err   error
}

// YAMLHierarchy resolves specificity by depth in a class tree loaded from a
// YAML file. Deeper classes are more specific; depth ties go to the category
// listed first.
//
// Category lists repeat heavily across a node file, so outcomes are memoized
// per distinct list. Concurrent first lookups of the same list collapse into
// one computation.
type YAMLHierarchy struct {
	depths map[string]int

	mu    sync.RWMutex
	memo  map[string]memoEntry
	group singleflight.Group
}

// LoadHierarchy reads a class hierarchy from a YAML file.
//
// The expected shape is a single "classes" mapping of class name to parent
// class name, with roots mapped to an empty value:
//
//	classes:
//	  NamedThing:
//	  BiologicalEntity: NamedThing
//	  Gene: BiologicalEntity
func LoadHierarchy(path string) (*YAMLHierarchy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading hierarchy file: %w", err)
	}
	var file hierarchyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing hierarchy file %s: %w", path, err)
	}
	h, err := NewHierarchy(file.Classes)
	if err != nil {
		return nil, fmt.Errorf("hierarchy file %s: %w", path, err)
	}
	return h, nil
}

// NewHierarchy builds a hierarchy from an in-memory class-to-parent mapping.
//
// Errors:
//
//	ErrMissingParent when a class names an undefined parent.
//	ErrHierarchyCycle when following parents never reaches a root.
func NewHierarchy(parents map[string]string) (*YAMLHierarchy, error) {
	depths := make(map[string]int, len(parents))
	for class := range parents {
		if _, err := classDepth(class, parents, depths, nil); err != nil {
			return nil, err
		}
	}
	return &YAMLHierarchy{
		depths: depths,
		memo:   make(map[string]memoEntry),
	}, nil
}

// classDepth resolves the depth of one class, memoizing into depths.
func classDepth(class string, parents map[string]string, depths map[string]int, trail map[string]bool) (int, error) {
	if d, ok := depths[class]; ok {
		return d, nil
	}
	if trail[class] {
		return 0, fmt.Errorf("%w: %s", ErrHierarchyCycle, class)
	}
	parent, ok := parents[class]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrMissingParent, class)
	}
	if parent == "" {
		depths[class] = 0
		return 0, nil
	}
	if trail == nil {
		trail = make(map[string]bool)
	}
	trail[class] = true
	pd, err := classDepth(parent, parents, depths, trail)
	if err != nil {
		return 0, err
	}
	delete(trail, class)
	depths[class] = pd + 1
	return pd + 1, nil
}

// Depth returns the depth of a class, with 0 for roots.
func (h *YAMLHierarchy) Depth(class string) (int, bool) {
	d, ok := h.depths[class]
	return d, ok
}

// Len returns the number of known classes.
func (h *YAMLHierarchy) Len() int { return len(h.depths) }

// MostSpecific returns the deepest known class among the categories.
//
// Unknown categories are ignored; when none are known the result is
// ErrUnknownClass. Ties on depth go to the earlier category, which keeps
// resolution deterministic for KGX files that lead with the specific class.
func (h *YAMLHierarchy) MostSpecific(ctx context.Context, categories []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(categories) == 0 {
		return "", ErrUnknownClass
	}

	key := strings.Join(categories, "|")
	h.mu.RLock()
	entry, ok := h.memo[key]
	h.mu.RUnlock()
	if ok {
		return entry.class, entry.err
	}

	v, err, _ := h.group.Do(key, func() (interface{}, error) {
		best, bestDepth := "", -1
		for _, c := range categories {
			d, known := h.depths[c]
			if known && d > bestDepth {
				best, bestDepth = c, d
			}
		}
		if bestDepth < 0 {
			return "", ErrUnknownClass
		}
		return best, nil
	})

	class, _ := v.(string)
	h.mu.Lock()
	h.memo[key] = memoEntry{class: class, err: err}
	h.mu.Unlock()
	return class, err
}
