// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package overlap compares composed three-hop products against the one-hop
// relations connecting the same type pair.
//
// For a product over (T0, T3), every registered one-hop relation from T0 to
// T3 yields one comparison, and the union of all of them yields one more
// under the "ANY" pseudo-predicate. Zero overlap is a result, not an error;
// only empty products produce no comparisons at all.
package overlap

import (
	"sync"

	"github.com/AleutianAI/MetapathFOSS/services/metapaths/compose"
	"github.com/AleutianAI/MetapathFOSS/services/metapaths/matrix"
)

// AnyDirectionToken is the direction token of aggregate labels, standing in
// for both forward and reverse.
const AnyDirectionToken = "A"

// AnyLabel renders the aggregate pseudo-relation label for a type pair,
// for example "Gene|ANY|A|Disease".
func AnyLabel(src, tgt string) string {
	return src + "|ANY|" + AnyDirectionToken + "|" + tgt
}

// Comparison is one overlap measurement between a three-hop product and a
// one-hop relation (or the ANY aggregate) over the same type pair.
type Comparison struct {
	// Metapath is the ten-token label of the composed three-hop path.
	Metapath string

	// ThreeHopCount is the number of (source, target) pairs the product
	// connects.
	ThreeHopCount int64

	// OneHopLabel is the four-token label of the compared relation, or
	// the ANY aggregate label.
	OneHopLabel string

	// OneHopCount is the number of pairs the one-hop relation connects.
	OneHopCount int64

	// Overlap is the number of pairs present in both.
	Overlap int64

	// TotalPossible is the full pair space: |T0| * |T3|.
	TotalPossible int64
}

// typePair keys the aggregate cache.
type typePair struct {
	src string
	tgt string
}

// Evaluator compares composed products against a store's one-hop relations.
//
// Thread Safety:
//
//	Safe for concurrent use. The aggregate cache is guarded; underlying
//	matrices are frozen and shared.
type Evaluator struct {
	store *matrix.Store

	mu       sync.Mutex
	anyCache map[typePair]*matrix.BoolMat
	skipped  int
}

// NewEvaluator creates an Evaluator over a relation store.
func NewEvaluator(store *matrix.Store) *Evaluator {
	return &Evaluator{
		store:    store,
		anyCache: make(map[typePair]*matrix.BoolMat),
	}
}

// Compare measures one composed product against every one-hop relation over
// its (source, target) type pair, then against their union.
//
// Description:
//
//	Each one-hop comparison intersects the product with the relation and
//	counts surviving pairs. The ANY aggregate row comes last, mirroring
//	the per-predicate rows it summarizes. An empty product returns no
//	comparisons; shape-inconsistent relations are skipped and counted via
//	SkippedComparisons rather than failing the run.
//
// Outputs:
//
//	One Comparison per matching one-hop key, plus one for the aggregate
//	when the pair has any one-hop relations at all. Nil when the product
//	is empty or no one-hop relation connects the pair.
func (e *Evaluator) Compare(mp compose.Metapath, abc *matrix.BoolMat) []Comparison {
	if abc == nil || abc.IsEmpty() {
		return nil
	}

	src, tgt := mp.SourceType(), mp.TargetType()
	keys := e.store.ByTypePair(src, tgt)
	if len(keys) == 0 {
		return nil
	}

	label := mp.String()
	total := int64(abc.Rows()) * int64(abc.Cols())
	out := make([]Comparison, 0, len(keys)+1)

	for _, key := range keys {
		onehop, ok := e.store.Get(key)
		if !ok {
			continue
		}
		if onehop.Rows() != abc.Rows() || onehop.Cols() != abc.Cols() {
			e.recordSkip()
			continue
		}
		inter, err := abc.And(onehop)
		if err != nil {
			e.recordSkip()
			continue
		}
		out = append(out, Comparison{
			Metapath:      label,
			ThreeHopCount: int64(abc.NNZ()),
			OneHopLabel:   key.String(),
			OneHopCount:   int64(onehop.NNZ()),
			Overlap:       int64(inter.NNZ()),
			TotalPossible: total,
		})
	}

	if agg, ok := e.Aggregate(src, tgt); ok {
		if agg.Rows() == abc.Rows() && agg.Cols() == abc.Cols() {
			inter, err := abc.And(agg)
			if err == nil {
				out = append(out, Comparison{
					Metapath:      label,
					ThreeHopCount: int64(abc.NNZ()),
					OneHopLabel:   AnyLabel(src, tgt),
					OneHopCount:   int64(agg.NNZ()),
					Overlap:       int64(inter.NNZ()),
					TotalPossible: total,
				})
			} else {
				e.recordSkip()
			}
		} else {
			e.recordSkip()
		}
	}

	return out
}

// Aggregate returns the union of every one-hop relation connecting the type
// pair, reverse readings included. Built on first request per pair, cached
// after.
func (e *Evaluator) Aggregate(src, tgt string) (*matrix.BoolMat, bool) {
	pair := typePair{src: src, tgt: tgt}

	e.mu.Lock()
	defer e.mu.Unlock()
	if agg, ok := e.anyCache[pair]; ok {
		return agg, agg != nil
	}

	var agg *matrix.BoolMat
	for _, key := range e.store.ByTypePair(src, tgt) {
		m, ok := e.store.Get(key)
		if !ok {
			continue
		}
		if agg == nil {
			agg = m
			continue
		}
		union, err := agg.Or(m)
		if err != nil {
			e.skipped++
			continue
		}
		agg = union
	}

	// Negative results are cached too; a pair with no relations stays
	// empty for the whole run.
	e.anyCache[pair] = agg
	return agg, agg != nil
}

// SkippedComparisons returns how many comparisons were skipped because of
// inconsistent matrix shapes.
func (e *Evaluator) SkippedComparisons() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.skipped
}

func (e *Evaluator) recordSkip() {
	e.mu.Lock()
	e.skipped++
	e.mu.Unlock()
}
