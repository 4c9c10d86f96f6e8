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
	"io"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/MetapathFOSS/services/metapaths/classify"
	"github.com/AleutianAI/MetapathFOSS/services/metapaths/compose"
	"github.com/AleutianAI/MetapathFOSS/services/metapaths/matrix"
	"github.com/AleutianAI/MetapathFOSS/services/metapaths/output"
	"github.com/AleutianAI/MetapathFOSS/services/metapaths/overlap"
)

// OverlapSinks names the writers RunOverlap fills. Overlap is required;
// the other two enable classification in the same pass.
type OverlapSinks struct {
	Overlap        io.Writer
	Classification io.Writer
	Aggregate      io.Writer
}

// OverlapStats summarizes one enumeration run.
type OverlapStats struct {
	// Chains counts every enumerated (e1, e2, e3) triple.
	Chains int

	// Skipped counts chains short-circuited on an empty or invalid
	// product.
	Skipped int

	// Evaluated counts chains whose final product was compared.
	Evaluated int

	// Rows counts written comparison rows.
	Rows int
}

// RunOverlap enumerates every three-hop chain and writes the overlap
// table.
//
// Description:
//
//	Per chain: compose the two stages, short-circuit on empty
//	products, then compare the final product against every stored
//	one-hop relation over the chain's boundary types plus the ANY
//	aggregate. When Classification or Aggregate sinks are present the
//	comparisons are retained and scored after the enumeration, exactly
//	as if the classify command had been run on the fresh table.
//
// Outputs:
//
//	One overlap row per comparison, flushed every FlushEvery rows.
//
// Errors:
//
//	Write errors and cancellation abort the run; empty products and
//	dimension drift are counted, never returned.
func (e *Engine) RunOverlap(ctx context.Context, store *matrix.Store, sinks OverlapSinks) (OverlapStats, error) {
	ctx, span := startPhaseSpan(ctx, "Engine.RunOverlap", e.runID)
	defer span.End()
	start := time.Now()

	stats, err := e.runOverlap(ctx, store, sinks)
	if err != nil {
		recordPhase(ctx, "overlap", time.Since(start), false)
		return stats, spanError(span, err)
	}

	recordPhase(ctx, "overlap", time.Since(start), true)
	span.SetAttributes(
		attribute.Int("overlap.chains", stats.Chains),
		attribute.Int("overlap.evaluated", stats.Evaluated),
		attribute.Int("overlap.rows", stats.Rows),
	)
	e.log.Info("overlap run complete",
		"chains", stats.Chains,
		"evaluated", stats.Evaluated,
		"skipped", stats.Skipped,
		"rows", stats.Rows,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return stats, nil
}

func (e *Engine) runOverlap(ctx context.Context, store *matrix.Store, sinks OverlapSinks) (OverlapStats, error) {
	var stats OverlapStats
	if sinks.Overlap == nil {
		return stats, fmt.Errorf("%w: overlap table", ErrNilSink)
	}

	table, err := output.NewTableWriter(sinks.Overlap, output.OverlapColumns(),
		output.WithFlushEvery(e.opts.FlushEvery))
	if err != nil {
		return stats, err
	}

	evaluator := overlap.NewEvaluator(store)
	classifying := sinks.Classification != nil || sinks.Aggregate != nil
	var collected []overlap.Comparison

	err = compose.Enumerate(ctx, store, func(mp compose.Metapath) error {
		stats.Chains++
		e.progress("overlap", stats.Chains)

		m1, _ := store.Get(mp.E1)
		m2, _ := store.Get(mp.E2)
		m3, _ := store.Get(mp.E3)

		ab, err := m1.Mul(m2)
		if err != nil {
			stats.Skipped++
			return nil
		}
		if ab.IsEmpty() {
			stats.Skipped++
			return nil
		}
		abc, err := ab.Mul(m3)
		if err != nil {
			stats.Skipped++
			return nil
		}
		if abc.IsEmpty() {
			stats.Skipped++
			return nil
		}

		stats.Evaluated++
		comparisons := evaluator.Compare(mp, abc)
		for _, c := range comparisons {
			if err := table.WriteRow(output.OverlapRow(c)); err != nil {
				return err
			}
			stats.Rows++
		}
		if classifying {
			collected = append(collected, comparisons...)
		}
		return nil
	})
	if err != nil {
		return stats, err
	}
	if err := table.Flush(); err != nil {
		return stats, err
	}

	if classifying {
		if err := e.writeClassification(collected, sinks.Classification, sinks.Aggregate); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// Classify rescores a previously written overlap table.
//
// Description:
//
//	Loads the table, derives confusion counts and the ratio suite per
//	row, and writes the classification table sorted by F1 descending,
//	plus the per-metapath aggregate when requested. Reuses the overlap
//	table rather than recomposing the graph, which keeps re-scoring
//	after metric changes to minutes instead of hours.
func (e *Engine) Classify(ctx context.Context, overlapPath string, classification, aggregate io.Writer) (int, error) {
	ctx, span := startPhaseSpan(ctx, "Engine.Classify", e.runID)
	defer span.End()
	start := time.Now()

	rows, err := e.classify(ctx, overlapPath, classification, aggregate)
	if err != nil {
		recordPhase(ctx, "classify", time.Since(start), false)
		return rows, spanError(span, err)
	}

	recordPhase(ctx, "classify", time.Since(start), true)
	span.SetAttributes(attribute.Int("classify.rows", rows))
	e.log.Info("classification complete",
		"rows", rows,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return rows, nil
}

func (e *Engine) classify(ctx context.Context, overlapPath string, classification, aggregate io.Writer) (int, error) {
	if classification == nil && aggregate == nil {
		return 0, fmt.Errorf("%w: classification or aggregate table", ErrNilSink)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	comparisons, err := overlap.LoadComparisons(overlapPath, e.skipRow("overlap"))
	if err != nil {
		return 0, err
	}
	if err := e.writeClassification(comparisons, classification, aggregate); err != nil {
		return 0, err
	}
	return len(comparisons), nil
}

func (e *Engine) writeClassification(comparisons []overlap.Comparison, classification, aggregate io.Writer) error {
	results := classify.Evaluate(comparisons)

	if classification != nil {
		table, err := output.NewTableWriter(classification, output.ClassificationColumns(),
			output.WithFlushEvery(e.opts.FlushEvery))
		if err != nil {
			return err
		}
		for _, r := range results {
			if err := table.WriteRow(output.ClassificationRow(r)); err != nil {
				return err
			}
		}
		if err := table.Flush(); err != nil {
			return err
		}
	}

	if aggregate != nil {
		rows := classify.Aggregate(results)
		table, err := output.NewTableWriter(aggregate, output.AggregateColumns(),
			output.WithFlushEvery(e.opts.FlushEvery))
		if err != nil {
			return err
		}
		for _, r := range rows {
			if err := table.WriteRow(output.AggregateRow(r)); err != nil {
				return err
			}
		}
		if err := table.Flush(); err != nil {
			return err
		}
	}
	return nil
}
