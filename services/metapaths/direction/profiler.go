// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package direction

import (
	"context"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/MetapathFOSS/services/metapaths/compose"
	"github.com/AleutianAI/MetapathFOSS/services/metapaths/matrix"
)

// BytesPerEntry estimates the footprint of one sparse boolean entry: two
// 8-byte indices plus the value byte.
const BytesPerEntry = 17

// ===== STRATEGY =====

// Strategy selects how a chain's two evaluation orders are costed.
type Strategy uint8

const (
	// Measure times real compositions of both stages in both orders and
	// probes resident memory after each. The faster total wall time wins.
	Measure Strategy = iota

	// Estimate composes only the first stage of each order and ranks by
	// intermediate nonzero count. No second stage runs, so it is cheap
	// enough for wide sweeps.
	Estimate
)

func (s Strategy) String() string {
	switch s {
	case Measure:
		return "measure"
	case Estimate:
		return "estimate"
	default:
		return fmt.Sprintf("Strategy(%d)", uint8(s))
	}
}

// ParseStrategy maps a flag value to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "measure":
		return Measure, nil
	case "estimate":
		return Estimate, nil
	default:
		return Measure, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// ===== VERDICT =====

// Verdict names the cheaper evaluation order for a profiled chain.
type Verdict uint8

const (
	BetterEqual Verdict = iota
	BetterForward
	BetterReverse
)

func (v Verdict) String() string {
	switch v {
	case BetterForward:
		return "forward"
	case BetterReverse:
		return "reverse"
	default:
		return "equal"
	}
}

// ===== COST =====

// Cost is one evaluation order's outcome for a single chain.
type Cost struct {
	// Skipped reports that the first-stage intermediate was empty. The
	// second stage never runs for a skipped order since the final product
	// is known empty.
	Skipped bool

	// IntermediateNNZ and FinalNNZ count nonzeros after each stage.
	// FinalNNZ stays zero under the Estimate strategy and for skipped
	// orders.
	IntermediateNNZ int
	FinalNNZ        int

	// IntermediateBytes is IntermediateNNZ scaled by BytesPerEntry.
	IntermediateBytes uint64

	// FirstStage, SecondStage, and Total are wall times for the stages
	// that actually ran.
	FirstStage  time.Duration
	SecondStage time.Duration
	Total       time.Duration

	// ResidentBytes is the probe reading taken after this order finished.
	// Zero under the Estimate strategy.
	ResidentBytes uint64
}

// IntermediateMB converts the intermediate estimate to megabytes.
func (c Cost) IntermediateMB() float64 {
	return float64(c.IntermediateBytes) / (1 << 20)
}

// ===== RESULT =====

// Result compares both evaluation orders for one chain.
type Result struct {
	// Forward and Reverse are the metapath labels of the two orders. The
	// reverse label flips every hop direction and reverses token order.
	Forward string
	Reverse string

	ForwardCost Cost
	ReverseCost Cost

	// Better names the cheaper order under the profiler's strategy.
	Better Verdict

	// MemoryRatio divides the forward intermediate footprint by the
	// reverse one. +Inf when only the reverse intermediate is empty, 1.0
	// when both are.
	MemoryRatio float64
}

// ===== PROFILER =====

// Options configures a Profiler.
type Options struct {
	// Strategy selects Measure or Estimate costing. Defaults to Measure.
	Strategy Strategy

	// Probe supplies resident-memory readings under Measure. Defaults to
	// RusageProbe.
	Probe MemoryProbe

	// Workers bounds ProfileAll concurrency. Defaults to 1; timing noise
	// grows with parallelism, so raise it only for Estimate sweeps or
	// when throughput matters more than clean comparisons.
	Workers int

	// BudgetsMB are the per-worker budgets for the headroom report.
	BudgetsMB []int
}

// DefaultOptions returns the baseline profiler configuration.
func DefaultOptions() Options {
	return Options{
		Strategy:  Measure,
		Probe:     RusageProbe{},
		Workers:   1,
		BudgetsMB: DefaultBudgetsMB(),
	}
}

// Option overrides one Options field.
type Option func(*Options)

// WithStrategy selects Measure or Estimate costing.
func WithStrategy(s Strategy) Option {
	return func(o *Options) { o.Strategy = s }
}

// WithProbe injects a MemoryProbe.
func WithProbe(p MemoryProbe) Option {
	return func(o *Options) { o.Probe = p }
}

// WithWorkers bounds ProfileAll concurrency. Values below one clamp to one.
func WithWorkers(n int) Option {
	return func(o *Options) {
		if n < 1 {
			n = 1
		}
		o.Workers = n
	}
}

// WithBudgetsMB overrides the headroom budgets.
func WithBudgetsMB(budgets []int) Option {
	return func(o *Options) { o.BudgetsMB = budgets }
}

// Profiler evaluates chains in both orders against one relation store.
type Profiler struct {
	store *matrix.Store
	opts  Options
}

// NewProfiler creates a Profiler over a built relation store.
func NewProfiler(store *matrix.Store, opts ...Option) *Profiler {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Profiler{store: store, opts: o}
}

// Profile evaluates one chain in both orders.
//
// Description:
//
//	Resolves the chain's three relations, composes the forward order
//	(e1*e2)*e3 and the reverse order (e3T*e2T)*e1T, and compares their
//	cost under the configured strategy. The reverse order reuses the
//	forward matrices through shared transpose views, so no store lookup
//	of reversed keys happens and symmetric predicates need no reverse
//	registration.
//
// Outputs:
//
//	A Result with both costs, the verdict, and the memory ratio.
//
// Errors:
//
//	matrix.ErrRelationNotFound when a hop is absent from the store,
//	ErrProfileCancelled on context cancellation, probe failures under
//	Measure, and composition errors otherwise.
func (p *Profiler) Profile(ctx context.Context, mp compose.Metapath) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrProfileCancelled, err)
	}

	m1, m2, m3, err := p.resolve(mp)
	if err != nil {
		return Result{}, err
	}

	fwd, err := p.evaluate(m1, m2, m3)
	if err != nil {
		return Result{}, fmt.Errorf("forward %s: %w", mp, err)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrProfileCancelled, err)
	}
	rev, err := p.evaluate(m3.T(), m2.T(), m1.T())
	if err != nil {
		return Result{}, fmt.Errorf("reverse %s: %w", mp, err)
	}

	return Result{
		Forward:     mp.String(),
		Reverse:     mp.Reversed().String(),
		ForwardCost: fwd,
		ReverseCost: rev,
		Better:      p.verdict(fwd, rev),
		MemoryRatio: memoryRatio(fwd, rev),
	}, nil
}

// ProfileAll profiles chains across a bounded worker group, preserving
// input order in the returned slice.
func (p *Profiler) ProfileAll(ctx context.Context, chains []compose.Metapath) ([]Result, error) {
	results := make([]Result, len(chains))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i, mp := range chains {
		g.Go(func() error {
			r, err := p.Profile(ctx, mp)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Report aggregates results against the profiler's configured budgets.
func (p *Profiler) Report(results []Result) Report {
	return BuildReport(results, p.opts.BudgetsMB)
}

// resolve looks up the chain's three relations.
func (p *Profiler) resolve(mp compose.Metapath) (m1, m2, m3 *matrix.BoolMat, err error) {
	var ok bool
	if m1, ok = p.store.Get(mp.E1); !ok {
		return nil, nil, nil, fmt.Errorf("%s: %w", mp.E1, matrix.ErrRelationNotFound)
	}
	if m2, ok = p.store.Get(mp.E2); !ok {
		return nil, nil, nil, fmt.Errorf("%s: %w", mp.E2, matrix.ErrRelationNotFound)
	}
	if m3, ok = p.store.Get(mp.E3); !ok {
		return nil, nil, nil, fmt.Errorf("%s: %w", mp.E3, matrix.ErrRelationNotFound)
	}
	return m1, m2, m3, nil
}

// evaluate runs one order's staged composition under the strategy.
func (p *Profiler) evaluate(a, b, c *matrix.BoolMat) (Cost, error) {
	var cost Cost

	start := time.Now()
	ab, err := a.Mul(b)
	cost.FirstStage = time.Since(start)
	if err != nil {
		return Cost{}, fmt.Errorf("first stage: %w", err)
	}
	cost.IntermediateNNZ = ab.NNZ()
	cost.IntermediateBytes = uint64(ab.NNZ()) * BytesPerEntry
	cost.Total = cost.FirstStage

	if ab.IsEmpty() {
		cost.Skipped = true
		return p.probed(cost)
	}
	if p.opts.Strategy == Estimate {
		return cost, nil
	}

	start = time.Now()
	abc, err := ab.Mul(c)
	cost.SecondStage = time.Since(start)
	if err != nil {
		return Cost{}, fmt.Errorf("second stage: %w", err)
	}
	cost.FinalNNZ = abc.NNZ()
	cost.Total = cost.FirstStage + cost.SecondStage
	return p.probed(cost)
}

// probed attaches a resident-memory reading under the Measure strategy.
func (p *Profiler) probed(cost Cost) (Cost, error) {
	if p.opts.Strategy != Measure || p.opts.Probe == nil {
		return cost, nil
	}
	resident, err := p.opts.Probe.ResidentBytes()
	if err != nil {
		return Cost{}, fmt.Errorf("memory probe: %w", err)
	}
	cost.ResidentBytes = resident
	return cost, nil
}

// verdict compares two costs under the strategy. Only strict inequality
// names a winner.
func (p *Profiler) verdict(fwd, rev Cost) Verdict {
	if p.opts.Strategy == Estimate {
		switch {
		case fwd.IntermediateNNZ < rev.IntermediateNNZ:
			return BetterForward
		case rev.IntermediateNNZ < fwd.IntermediateNNZ:
			return BetterReverse
		default:
			return BetterEqual
		}
	}
	switch {
	case fwd.Total < rev.Total:
		return BetterForward
	case rev.Total < fwd.Total:
		return BetterReverse
	default:
		return BetterEqual
	}
}

// memoryRatio divides the forward intermediate footprint by the reverse
// one, with +Inf when only the reverse is empty and 1.0 when both are.
func memoryRatio(fwd, rev Cost) float64 {
	f := fwd.IntermediateMB()
	r := rev.IntermediateMB()
	switch {
	case r > 0:
		return f / r
	case f > 0:
		return math.Inf(1)
	default:
		return 1.0
	}
}
