// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/MetapathFOSS/pkg/logging"
	"github.com/AleutianAI/MetapathFOSS/services/metapaths/catalog"
	"github.com/AleutianAI/MetapathFOSS/services/metapaths/kgx"
	"github.com/AleutianAI/MetapathFOSS/services/metapaths/matrix"
	"github.com/AleutianAI/MetapathFOSS/services/metapaths/output"
)

// DefaultProgressEvery spaces progress callbacks so multi-hour runs do
// not flood the terminal or the log file.
const DefaultProgressEvery = time.Second

// Progress is one throttled status report.
type Progress struct {
	// Phase names the running stage, e.g. "catalog" or "overlap".
	Phase string

	// Processed counts units handled so far in this phase. The unit is
	// phase-specific: records for ingestion, chains for analyses.
	Processed int
}

// ProgressFunc receives throttled progress reports. It is called from
// the pipeline goroutine and must not block.
type ProgressFunc func(Progress)

// Options configures an Engine.
type Options struct {
	// Logger receives run logs. Default: logging.Default().
	Logger *logging.Logger

	// Progress, when non-nil, receives throttled status reports.
	Progress ProgressFunc

	// ProgressEvery is the minimum spacing between progress reports.
	// Default: DefaultProgressEvery.
	ProgressEvery time.Duration

	// FlushEvery is the row cadence for the high-volume tables.
	// Benchmark tables always flush every output.BenchmarkFlushEvery
	// rows. Default: output.DefaultFlushEvery.
	FlushEvery int
}

// DefaultOptions returns the default engine configuration.
func DefaultOptions() Options {
	return Options{
		ProgressEvery: DefaultProgressEvery,
		FlushEvery:    output.DefaultFlushEvery,
	}
}

// Option is a functional option for configuring an Engine.
type Option func(*Options)

// WithLogger sets the run logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(o *Options) {
		o.Progress = fn
	}
}

// WithProgressEvery sets the minimum spacing between progress reports.
func WithProgressEvery(d time.Duration) Option {
	return func(o *Options) {
		if d > 0 {
			o.ProgressEvery = d
		}
	}
}

// WithFlushEvery sets the row cadence for the high-volume tables.
func WithFlushEvery(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.FlushEvery = n
		}
	}
}

// Inputs names the graph files one run consumes.
type Inputs struct {
	// NodesPath is the KGX nodes JSONL file, gzipped or plain.
	NodesPath string

	// EdgesPath is the KGX edges JSONL file, gzipped or plain.
	EdgesPath string

	// HierarchyPath is the optional class hierarchy YAML. When empty,
	// type resolution falls back to each node's first category.
	HierarchyPath string
}

func (in Inputs) validate() error {
	if in.NodesPath == "" {
		return ErrNoNodes
	}
	if in.EdgesPath == "" {
		return ErrNoEdges
	}
	return nil
}

// Engine drives the pipeline phases and owns their shared plumbing:
// the run ID, the logger, and progress throttling.
type Engine struct {
	opts    Options
	runID   string
	log     *logging.Logger
	limiter *rate.Limiter
}

// New creates an Engine with a fresh run ID.
func New(opts ...Option) *Engine {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = logging.Default()
	}

	runID := uuid.NewString()
	return &Engine{
		opts:    o,
		runID:   runID,
		log:     o.Logger.With("run_id", runID),
		limiter: rate.NewLimiter(rate.Every(o.ProgressEvery), 1),
	}
}

// RunID returns the identifier attached to this engine's logs and
// spans.
func (e *Engine) RunID() string {
	return e.runID
}

// progress forwards a throttled report to the configured callback.
func (e *Engine) progress(phase string, processed int) {
	if e.opts.Progress == nil {
		return
	}
	if !e.limiter.Allow() {
		return
	}
	e.opts.Progress(Progress{Phase: phase, Processed: processed})
}

// skipLine logs one malformed input line at debug level. Real KGX dumps
// carry enough stray lines that warning per line would drown the log.
func (e *Engine) skipLine(file string) kgx.WarnFunc {
	return func(line int, reason string) {
		e.log.Debug("skipped malformed line", "file", file, "line", line, "reason", reason)
	}
}

// skipRow logs one malformed table row. These tables are small and
// hand-editable, so each skip is worth a warning.
func (e *Engine) skipRow(table string) func(line int, reason string) {
	return func(line int, reason string) {
		e.log.Warn("skipped malformed row", "table", table, "line", line, "reason", reason)
	}
}

// ===== CATALOG =====

// BuildCatalog resolves every node to its most specific type label.
//
// Description:
//
//	Streams the nodes file once. When a hierarchy file is configured
//	each node's categories are ranked by ancestry depth; otherwise the
//	first listed category wins. Nodes that resolve to nothing are
//	dropped and counted.
//
// Errors:
//
//	Unreadable inputs and hierarchy cycles are fatal; malformed node
//	lines are skipped.
func (e *Engine) BuildCatalog(ctx context.Context, in Inputs) (*catalog.Catalog, error) {
	ctx, span := startPhaseSpan(ctx, "Engine.BuildCatalog", e.runID)
	defer span.End()
	start := time.Now()

	cat, err := e.buildCatalog(ctx, in)
	if err != nil {
		recordPhase(ctx, "build_catalog", time.Since(start), false)
		return nil, spanError(span, err)
	}

	recordPhase(ctx, "build_catalog", time.Since(start), true)
	span.SetAttributes(
		attribute.Int("catalog.nodes", cat.Len()),
		attribute.Int("catalog.dropped", cat.Dropped()),
		attribute.Int("catalog.types", len(cat.Types())),
	)
	e.log.Info("catalog built",
		"nodes", cat.Len(),
		"dropped", cat.Dropped(),
		"types", len(cat.Types()),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return cat, nil
}

func (e *Engine) buildCatalog(ctx context.Context, in Inputs) (*catalog.Catalog, error) {
	if in.NodesPath == "" {
		return nil, ErrNoNodes
	}

	var oracle catalog.HierarchyOracle = catalog.FirstCategory{}
	if in.HierarchyPath != "" {
		h, err := catalog.LoadHierarchy(in.HierarchyPath)
		if err != nil {
			return nil, fmt.Errorf("loading hierarchy: %w", err)
		}
		oracle = h
		e.log.Info("hierarchy loaded", "classes", h.Len(), "path", in.HierarchyPath)
	}

	nodes, err := kgx.OpenNodes(in.NodesPath, kgx.WithWarnFunc(e.skipLine("nodes")))
	if err != nil {
		return nil, fmt.Errorf("opening nodes: %w", err)
	}
	defer nodes.Close()

	return catalog.Build(ctx, nodes, oracle, catalog.WithProgress(func(processed int) {
		e.progress("catalog", processed)
	}))
}

// ===== MATRICES =====

// edgeSource adapts a kgx edge stream to the builder's input.
type edgeSource struct {
	r *kgx.EdgeReader
}

func (s *edgeSource) Next() (matrix.Edge, error) {
	edge, err := s.r.Next()
	if err != nil {
		return matrix.Edge{}, err
	}
	return matrix.Edge{
		Subject:   edge.Subject,
		Predicate: edge.Predicate,
		Object:    edge.Object,
	}, nil
}

func (s *edgeSource) Close() error {
	return s.r.Close()
}

// BuildMatrices runs both edge passes and returns the relation store.
//
// Description:
//
//	The first pass collects the node population of every resolved
//	type, the second fills the boolean matrices. The edges file is
//	therefore opened twice; gzip input keeps this affordable on
//	multi-hundred-gigabyte dumps.
func (e *Engine) BuildMatrices(ctx context.Context, cat *catalog.Catalog, in Inputs) (*matrix.Store, error) {
	ctx, span := startPhaseSpan(ctx, "Engine.BuildMatrices", e.runID)
	defer span.End()
	start := time.Now()

	store, err := e.buildMatrices(ctx, cat, in)
	if err != nil {
		recordPhase(ctx, "build_matrices", time.Since(start), false)
		return nil, spanError(span, err)
	}

	stats := store.Stats()
	recordPhase(ctx, "build_matrices", time.Since(start), true)
	span.SetAttributes(
		attribute.Int("matrix.relations", store.Len()),
		attribute.Int("matrix.types", stats.Types),
		attribute.Int("matrix.nnz", stats.NNZ),
		attribute.Int("matrix.edges_dropped", stats.EdgesDropped),
	)
	e.log.Info("matrices built",
		"relations", store.Len(),
		"types", stats.Types,
		"nnz", stats.NNZ,
		"edges_read", stats.EdgesRead,
		"edges_dropped", stats.EdgesDropped,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return store, nil
}

func (e *Engine) buildMatrices(ctx context.Context, cat *catalog.Catalog, in Inputs) (*matrix.Store, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	provider := func() (matrix.EdgeSource, error) {
		r, err := kgx.OpenEdges(in.EdgesPath, kgx.WithWarnFunc(e.skipLine("edges")))
		if err != nil {
			return nil, fmt.Errorf("opening edges: %w", err)
		}
		return &edgeSource{r: r}, nil
	}

	builder := matrix.NewBuilder(cat, matrix.WithProgress(func(p matrix.Progress) {
		e.progress(p.Phase.String(), p.Processed)
	}))
	return builder.Build(ctx, provider)
}

// Load is the common front half of every analysis command: catalog,
// then matrices.
func (e *Engine) Load(ctx context.Context, in Inputs) (*matrix.Store, error) {
	cat, err := e.BuildCatalog(ctx, in)
	if err != nil {
		return nil, err
	}
	return e.BuildMatrices(ctx, cat, in)
}
