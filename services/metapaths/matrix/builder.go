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
	"context"
	"fmt"
	"io"
	"time"
)

// =============================================================================
// EDGE INPUT
// =============================================================================

// Edge is one subject-predicate-object record from the graph edge file.
// Predicates are expected with any ontology prefix already stripped.
type Edge struct {
	Subject   string
	Predicate string
	Object    string
}

// EdgeSource yields edges one at a time. Next returns io.EOF after the last
// edge. Sources that also implement io.Closer are closed when a pass ends.
type EdgeSource interface {
	Next() (Edge, error)
}

// EdgeProvider opens a fresh pass over the edge records. Build calls it
// twice: once to collect the node population per type, once to populate the
// matrices. File-backed providers simply reopen the file.
type EdgeProvider func() (EdgeSource, error)

// TypeResolver maps a node ID to its resolved type label. Edges whose
// endpoints do not resolve are dropped and counted, never fatal.
type TypeResolver interface {
	ResolveType(id string) (string, bool)
}

// =============================================================================
// OPTIONS
// =============================================================================

// DefaultSkipPredicates lists predicates excluded from matrix building.
// Hierarchy edges describe the ontology, not node-to-node relations.
func DefaultSkipPredicates() []string {
	return []string{"subclass_of"}
}

// DefaultSymmetricPredicates lists biolink predicates whose reverse reading
// is the same relation. Symmetric relations register a Forward key only;
// a Reverse key would duplicate the same comparisons under another name.
func DefaultSymmetricPredicates() []string {
	return []string{
		"interacts_with",
		"coexists_with",
		"correlated_with",
		"associated_with",
		"related_to",
		"similar_to",
		"homologous_to",
		"orthologous_to",
		"paralogous_to",
		"xenologous_to",
	}
}

// BuildPhase identifies which stage of Build a progress report refers to.
type BuildPhase int

const (
	// PhaseCollectNodes is the first pass: distinct node IDs per type.
	PhaseCollectNodes BuildPhase = iota

	// PhaseIndexNodes assigns dense indices to the collected nodes.
	PhaseIndexNodes

	// PhasePopulate is the second pass: setting matrix cells.
	PhasePopulate

	// PhaseRegister freezes matrices and registers relation keys.
	PhaseRegister
)

// buildPhaseNames maps phases to human-readable names.
var buildPhaseNames = map[BuildPhase]string{
	PhaseCollectNodes: "collect_nodes",
	PhaseIndexNodes:   "index_nodes",
	PhasePopulate:     "populate",
	PhaseRegister:     "register",
}

// String returns the string representation of the BuildPhase.
func (p BuildPhase) String() string {
	if name, ok := buildPhaseNames[p]; ok {
		return name
	}
	return "unknown"
}

// Progress is one build progress report.
type Progress struct {
	// Phase is the build stage being reported.
	Phase BuildPhase

	// Processed is the number of records handled so far in this phase.
	Processed int
}

// ProgressFunc receives periodic progress reports during Build. It is called
// from the build goroutine and must not block.
type ProgressFunc func(Progress)

// BuilderOptions configures Builder behavior.
type BuilderOptions struct {
	// SymmetricPredicates suppresses Reverse key registration for the
	// listed predicates. Default: DefaultSymmetricPredicates().
	SymmetricPredicates []string

	// SkipPredicates excludes edges with the listed predicates entirely.
	// Default: DefaultSkipPredicates().
	SkipPredicates []string

	// Progress, when non-nil, receives a report every ProgressInterval
	// records and once per phase change.
	Progress ProgressFunc

	// ProgressInterval is the record spacing between progress reports.
	// Default: 100,000
	ProgressInterval int
}

// DefaultBuilderOptions returns sensible defaults for builder configuration.
func DefaultBuilderOptions() BuilderOptions {
	return BuilderOptions{
		SymmetricPredicates: DefaultSymmetricPredicates(),
		SkipPredicates:      DefaultSkipPredicates(),
		ProgressInterval:    100000,
	}
}

// BuilderOption is a functional option for configuring Builder.
type BuilderOption func(*BuilderOptions)

// WithSymmetricPredicates replaces the symmetric predicate set.
func WithSymmetricPredicates(predicates []string) BuilderOption {
	return func(o *BuilderOptions) {
		o.SymmetricPredicates = predicates
	}
}

// WithSkipPredicates replaces the skipped predicate set.
func WithSkipPredicates(predicates []string) BuilderOption {
	return func(o *BuilderOptions) {
		o.SkipPredicates = predicates
	}
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) BuilderOption {
	return func(o *BuilderOptions) {
		o.Progress = fn
	}
}

// WithProgressInterval sets the record spacing between progress reports.
func WithProgressInterval(n int) BuilderOption {
	return func(o *BuilderOptions) {
		if n > 0 {
			o.ProgressInterval = n
		}
	}
}

// =============================================================================
// BUILDER
// =============================================================================

// ctxCheckMask throttles context cancellation checks in the edge loops.
const ctxCheckMask = 0x1FFF

// groupKey identifies one (sourceType, predicate, targetType) edge group
// during building, before direction enters the picture.
type groupKey struct {
	src  string
	pred string
	tgt  string
}

// Builder constructs a Store from an edge stream in two passes.
//
// Description:
//
//	Pass one resolves endpoint types and collects the distinct node IDs of
//	each type, so dense indices can be assigned over the complete node
//	population. Pass two re-reads the edges and sets one matrix cell per
//	edge in the matrix of its (sourceType, predicate, targetType) group.
//	Matrices are frozen before registration; each non-symmetric group also
//	registers a Reverse key resolving to the shared transpose.
//
// Thread Safety:
//
//	A Builder is single-use and single-goroutine. The Store it returns is
//	immutable and safe for concurrent use.
type Builder struct {
	resolver  TypeResolver
	opts      BuilderOptions
	symmetric map[string]struct{}
	skip      map[string]struct{}
}

// NewBuilder creates a Builder over the given type resolver.
func NewBuilder(resolver TypeResolver, opts ...BuilderOption) *Builder {
	options := DefaultBuilderOptions()
	for _, opt := range opts {
		opt(&options)
	}
	b := &Builder{
		resolver:  resolver,
		opts:      options,
		symmetric: make(map[string]struct{}, len(options.SymmetricPredicates)),
		skip:      make(map[string]struct{}, len(options.SkipPredicates)),
	}
	for _, p := range options.SymmetricPredicates {
		b.symmetric[p] = struct{}{}
	}
	for _, p := range options.SkipPredicates {
		b.skip[p] = struct{}{}
	}
	return b
}

// Build runs both passes and returns the populated Store.
//
// Inputs:
//
//	ctx      - cancels the build between records
//	provider - opens a fresh edge pass; called exactly twice
//
// Outputs:
//
//	The immutable Store with all relation matrices frozen and registered.
//
// Errors:
//
//	ErrBuildCancelled when ctx is cancelled, otherwise wrapped provider or
//	source errors. Unresolvable endpoints and skipped predicates are
//	counted in BuildStats, never returned as errors.
func (b *Builder) Build(ctx context.Context, provider EdgeProvider) (*Store, error) {
	ctx, span := startBuildSpan(ctx)
	defer span.End()
	start := time.Now()

	store, err := b.build(ctx, provider)
	if err != nil {
		recordBuildMetrics(ctx, time.Since(start), BuildStats{}, false)
		span.RecordError(err)
		return nil, err
	}

	recordBuildMetrics(ctx, time.Since(start), store.Stats(), true)
	setBuildSpanResult(span, store.Stats())
	return store, nil
}

func (b *Builder) build(ctx context.Context, provider EdgeProvider) (*Store, error) {
	var stats BuildStats

	// Pass 1: collect the distinct node IDs of every resolvable type.
	nodeSets := make(map[string]map[string]struct{})
	err := b.forEachEdge(ctx, provider, PhaseCollectNodes, func(e Edge, srcType, tgtType string) {
		set := nodeSets[srcType]
		if set == nil {
			set = make(map[string]struct{})
			nodeSets[srcType] = set
		}
		set[e.Subject] = struct{}{}
		set = nodeSets[tgtType]
		if set == nil {
			set = make(map[string]struct{})
			nodeSets[tgtType] = set
		}
		set[e.Object] = struct{}{}
	}, &stats)
	if err != nil {
		return nil, err
	}

	// Assign dense indices now that each type's population is complete.
	b.report(Progress{Phase: PhaseIndexNodes})
	types := make(map[string]*TypeIndex, len(nodeSets))
	for label, set := range nodeSets {
		ids := make([]string, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		types[label] = newTypeIndex(label, ids)
		stats.NodesIndexed += len(ids)
	}
	stats.Types = len(types)
	nodeSets = nil

	// Pass 2: populate one matrix per (sourceType, predicate, targetType).
	mats := make(map[groupKey]*BoolMat)
	err = b.forEachEdge(ctx, provider, PhasePopulate, func(e Edge, srcType, tgtType string) {
		gk := groupKey{src: srcType, pred: e.Predicate, tgt: tgtType}
		mat := mats[gk]
		if mat == nil {
			mat = NewBoolMat(types[srcType].Size(), types[tgtType].Size())
			mats[gk] = mat
		}
		i, _ := types[srcType].IndexOf(e.Subject)
		j, _ := types[tgtType].IndexOf(e.Object)
		if mat.Get(i, j) {
			stats.DuplicateEdges++
			return
		}
		// Set cannot fail: both indices came from the pass-1 population
		// and the matrix is not yet frozen.
		_ = mat.Set(i, j)
	}, nil)
	if err != nil {
		return nil, err
	}

	// Freeze and register. Reverse keys share the forward matrix and
	// resolve to its transpose on first use.
	b.report(Progress{Phase: PhaseRegister})
	relations := make(map[Key]relationEntry, 2*len(mats))
	for gk, mat := range mats {
		mat.Freeze()
		stats.NNZ += mat.NNZ()
		relations[Key{SourceType: gk.src, Predicate: gk.pred, TargetType: gk.tgt, Direction: Forward}] =
			relationEntry{mat: mat}
		if _, sym := b.symmetric[gk.pred]; !sym {
			relations[Key{SourceType: gk.tgt, Predicate: gk.pred, TargetType: gk.src, Direction: Reverse}] =
				relationEntry{mat: mat, reversed: true}
		}
	}

	return newStore(relations, types, stats), nil
}

// forEachEdge runs one pass over the provider, resolving endpoint types and
// invoking fn for every usable edge. When stats is non-nil, skip and drop
// counters are recorded; the second pass passes nil to avoid double counting.
func (b *Builder) forEachEdge(
	ctx context.Context,
	provider EdgeProvider,
	phase BuildPhase,
	fn func(e Edge, srcType, tgtType string),
	stats *BuildStats,
) error {
	src, err := provider()
	if err != nil {
		return fmt.Errorf("opening edge pass %s: %w", phase, err)
	}
	defer closeSource(src)

	n := 0
	for {
		if n&ctxCheckMask == 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w during %s: %v", ErrBuildCancelled, phase, ctx.Err())
			default:
			}
		}
		e, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading edges during %s: %w", phase, err)
		}
		n++
		if stats != nil {
			stats.EdgesRead++
		}
		if b.opts.Progress != nil && n%b.opts.ProgressInterval == 0 {
			b.report(Progress{Phase: phase, Processed: n})
		}

		if _, skipped := b.skip[e.Predicate]; skipped {
			if stats != nil {
				stats.EdgesSkipped++
			}
			continue
		}
		srcType, ok := b.resolver.ResolveType(e.Subject)
		if !ok {
			if stats != nil {
				stats.EdgesDropped++
			}
			continue
		}
		tgtType, ok := b.resolver.ResolveType(e.Object)
		if !ok {
			if stats != nil {
				stats.EdgesDropped++
			}
			continue
		}
		fn(e, srcType, tgtType)
	}
	return nil
}

func (b *Builder) report(p Progress) {
	if b.opts.Progress != nil {
		b.opts.Progress(p)
	}
}

func closeSource(src EdgeSource) {
	if c, ok := src.(io.Closer); ok {
		_ = c.Close()
	}
}
