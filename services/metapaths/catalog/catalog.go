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
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/AleutianAI/MetapathFOSS/services/metapaths/kgx"
)

// ctxCheckMask throttles context cancellation checks in the node loop.
const ctxCheckMask = 0x1FFF

// NodeSource yields node records one at a time. Next returns io.EOF after
// the last record. kgx.NodeReader satisfies this.
type NodeSource interface {
	Next() (kgx.Node, error)
}

// Options configures catalog building.
type Options struct {
	// Progress, when non-nil, is called every ProgressInterval records.
	Progress func(processed int)

	// ProgressInterval is the record spacing between progress reports.
	// Default: 100,000
	ProgressInterval int
}

// Option is a functional option for configuring Build.
type Option func(*Options)

// WithProgress registers a progress callback.
func WithProgress(fn func(processed int)) Option {
	return func(o *Options) {
		o.Progress = fn
	}
}

// WithProgressInterval sets the record spacing between progress reports.
func WithProgressInterval(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.ProgressInterval = n
		}
	}
}

// Catalog maps node IDs to their resolved type label.
//
// Thread Safety:
//
//	Immutable after Build returns; safe for concurrent use.
type Catalog struct {
	types   map[string]string
	counts  map[string]int
	dropped int
}

// Build streams node records and resolves each to its most specific class.
//
// Inputs:
//
//	ctx    - cancels the build between records
//	source - the node record stream, typically a kgx.NodeReader
//	oracle - picks the most specific class among a node's categories
//
// Outputs:
//
//	The immutable Catalog. Nodes the oracle cannot place are dropped and
//	counted, never fatal.
//
// Errors:
//
//	ErrBuildCancelled on context cancellation; otherwise source errors or
//	oracle errors other than ErrUnknownClass.
func Build(ctx context.Context, source NodeSource, oracle HierarchyOracle, opts ...Option) (*Catalog, error) {
	options := Options{ProgressInterval: 100000}
	for _, opt := range opts {
		opt(&options)
	}

	ctx, span := startBuildSpan(ctx)
	defer span.End()
	start := time.Now()

	c := &Catalog{
		types:  make(map[string]string),
		counts: make(map[string]int),
	}

	n := 0
	for {
		if n&ctxCheckMask == 0 {
			select {
			case <-ctx.Done():
				recordBuildMetrics(ctx, time.Since(start), c, false)
				return nil, fmt.Errorf("%w: %v", ErrBuildCancelled, ctx.Err())
			default:
			}
		}
		node, err := source.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			recordBuildMetrics(ctx, time.Since(start), c, false)
			span.RecordError(err)
			return nil, fmt.Errorf("reading nodes: %w", err)
		}
		n++
		if options.Progress != nil && n%options.ProgressInterval == 0 {
			options.Progress(n)
		}

		class, err := oracle.MostSpecific(ctx, node.Categories)
		if errors.Is(err, ErrUnknownClass) {
			c.dropped++
			continue
		}
		if err != nil {
			recordBuildMetrics(ctx, time.Since(start), c, false)
			span.RecordError(err)
			return nil, fmt.Errorf("resolving class for %s: %w", node.ID, err)
		}
		if prev, seen := c.types[node.ID]; seen {
			c.counts[prev]--
		}
		c.types[node.ID] = class
		c.counts[class]++
	}

	recordBuildMetrics(ctx, time.Since(start), c, true)
	setBuildSpanResult(span, c)
	return c, nil
}

// ResolveType returns the type label of a node ID.
func (c *Catalog) ResolveType(id string) (string, bool) {
	label, ok := c.types[id]
	return label, ok
}

// Len returns the number of resolved nodes.
func (c *Catalog) Len() int { return len(c.types) }

// Dropped returns the number of nodes no class could be resolved for.
func (c *Catalog) Dropped() int { return c.dropped }

// TypeCounts returns a copy of the node count per resolved type.
func (c *Catalog) TypeCounts() map[string]int {
	out := make(map[string]int, len(c.counts))
	for label, count := range c.counts {
		if count > 0 {
			out[label] = count
		}
	}
	return out
}

// Types returns the resolved type labels in sorted order.
func (c *Catalog) Types() []string {
	out := make([]string, 0, len(c.counts))
	for label, count := range c.counts {
		if count > 0 {
			out = append(out, label)
		}
	}
	sort.Strings(out)
	return out
}
