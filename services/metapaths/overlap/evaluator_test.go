// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package overlap

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/MetapathFOSS/services/metapaths/compose"
	"github.com/AleutianAI/MetapathFOSS/services/metapaths/matrix"
)

type mapResolver map[string]string

func (r mapResolver) ResolveType(id string) (string, bool) {
	label, ok := r[id]
	return label, ok
}

type sliceSource struct {
	edges []matrix.Edge
	pos   int
}

func (s *sliceSource) Next() (matrix.Edge, error) {
	if s.pos >= len(s.edges) {
		return matrix.Edge{}, io.EOF
	}
	e := s.edges[s.pos]
	s.pos++
	return e, nil
}

// testStore wires a four-type graph:
//
//	G0 -affects-> P0, G0 -affects-> P1
//	P0 -affects-> D0, P1 -affects-> D0
//	P0 -associated_with-> D0
//	S0 -treats-> D0
//	G0 -interacts_with-> S0, G1 -interacts_with-> S1
//
// The three-hop chain Gene->Protein->Disease->SmallMolecule lands exactly on
// (G0, S0), and the one-hop Gene->SmallMolecule relation carries two pairs.
func testStore(t *testing.T) *matrix.Store {
	t.Helper()
	resolver := mapResolver{
		"G0": "Gene", "G1": "Gene",
		"P0": "Protein", "P1": "Protein",
		"D0": "Disease",
		"S0": "SmallMolecule", "S1": "SmallMolecule",
	}
	edges := []matrix.Edge{
		{Subject: "G0", Predicate: "affects", Object: "P0"},
		{Subject: "G0", Predicate: "affects", Object: "P1"},
		{Subject: "P0", Predicate: "affects", Object: "D0"},
		{Subject: "P1", Predicate: "affects", Object: "D0"},
		{Subject: "P0", Predicate: "associated_with", Object: "D0"},
		{Subject: "S0", Predicate: "treats", Object: "D0"},
		{Subject: "G0", Predicate: "interacts_with", Object: "S0"},
		{Subject: "G1", Predicate: "interacts_with", Object: "S1"},
	}
	provider := func() (matrix.EdgeSource, error) {
		return &sliceSource{edges: edges}, nil
	}
	store, err := matrix.NewBuilder(resolver).Build(context.Background(), provider)
	require.NoError(t, err)
	return store
}

// testMetapath chains Gene->Protein->Disease->SmallMolecule, reading the
// treats relation in reverse for the final hop.
func testMetapath(t *testing.T) compose.Metapath {
	t.Helper()
	mp, err := compose.NewMetapath(
		matrix.Key{SourceType: "Gene", Predicate: "affects", TargetType: "Protein", Direction: matrix.Forward},
		matrix.Key{SourceType: "Protein", Predicate: "affects", TargetType: "Disease", Direction: matrix.Forward},
		matrix.Key{SourceType: "Disease", Predicate: "treats", TargetType: "SmallMolecule", Direction: matrix.Reverse},
	)
	require.NoError(t, err)
	return mp
}

// composeTestProduct multiplies the three store matrices of testMetapath.
func composeTestProduct(t *testing.T, store *matrix.Store, mp compose.Metapath) *matrix.BoolMat {
	t.Helper()
	m1, ok := store.Get(mp.E1)
	require.True(t, ok)
	m2, ok := store.Get(mp.E2)
	require.True(t, ok)
	m3, ok := store.Get(mp.E3)
	require.True(t, ok)

	result, err := compose.Triple(m1, m2, m3)
	require.NoError(t, err)
	return result.ABC
}

func TestEvaluator_Compare(t *testing.T) {
	store := testStore(t)
	mp := testMetapath(t)
	abc := composeTestProduct(t, store, mp)
	require.Equal(t, 1, abc.NNZ())

	e := NewEvaluator(store)
	comparisons := e.Compare(mp, abc)
	require.Len(t, comparisons, 2)

	onehop := comparisons[0]
	assert.Equal(t, mp.String(), onehop.Metapath)
	assert.Equal(t, "Gene|interacts_with|F|SmallMolecule", onehop.OneHopLabel)
	assert.Equal(t, int64(1), onehop.ThreeHopCount)
	assert.Equal(t, int64(2), onehop.OneHopCount)
	assert.Equal(t, int64(1), onehop.Overlap)
	assert.Equal(t, int64(4), onehop.TotalPossible)

	// The aggregate row comes last and covers the same pair space.
	agg := comparisons[1]
	assert.Equal(t, AnyLabel("Gene", "SmallMolecule"), agg.OneHopLabel)
	assert.Equal(t, int64(2), agg.OneHopCount)
	assert.Equal(t, int64(1), agg.Overlap)
	assert.Equal(t, int64(4), agg.TotalPossible)

	assert.Equal(t, 0, e.SkippedComparisons())
}

func TestEvaluator_Compare_ZeroOverlapStillReported(t *testing.T) {
	store := testStore(t)
	mp := testMetapath(t)

	// A product landing on (G1, S0) shares nothing with the one-hop
	// relation {(G0,S0), (G1,S1)}.
	abc := matrix.NewBoolMat(2, 2)
	require.NoError(t, abc.Set(1, 0))
	abc.Freeze()

	e := NewEvaluator(store)
	comparisons := e.Compare(mp, abc)
	require.Len(t, comparisons, 2)
	assert.Equal(t, int64(0), comparisons[0].Overlap)
	assert.Equal(t, int64(0), comparisons[1].Overlap)
}

func TestEvaluator_Compare_EmptyProduct(t *testing.T) {
	store := testStore(t)
	mp := testMetapath(t)

	empty := matrix.NewBoolMat(2, 2)
	empty.Freeze()

	e := NewEvaluator(store)
	assert.Nil(t, e.Compare(mp, empty))
	assert.Nil(t, e.Compare(mp, nil))
}

func TestEvaluator_Compare_NoOneHopForPair(t *testing.T) {
	store := testStore(t)

	// No one-hop relation connects SmallMolecule to Protein.
	mp, err := compose.NewMetapath(
		matrix.Key{SourceType: "SmallMolecule", Predicate: "treats", TargetType: "Disease", Direction: matrix.Forward},
		matrix.Key{SourceType: "Disease", Predicate: "affects", TargetType: "Protein", Direction: matrix.Reverse},
		matrix.Key{SourceType: "Protein", Predicate: "associated_with", TargetType: "Protein", Direction: matrix.Forward},
	)
	require.NoError(t, err)

	abc := matrix.NewBoolMat(2, 2)
	require.NoError(t, abc.Set(0, 0))
	abc.Freeze()

	e := NewEvaluator(store)
	assert.Nil(t, e.Compare(mp, abc))
}

func TestEvaluator_Compare_ShapeMismatchSkipped(t *testing.T) {
	store := testStore(t)
	mp := testMetapath(t)

	// A product with the wrong shape cannot be compared to anything.
	abc := matrix.NewBoolMat(3, 2)
	require.NoError(t, abc.Set(0, 0))
	abc.Freeze()

	e := NewEvaluator(store)
	assert.Empty(t, e.Compare(mp, abc))
	assert.Equal(t, 2, e.SkippedComparisons())
}

func TestEvaluator_Aggregate(t *testing.T) {
	store := testStore(t)
	e := NewEvaluator(store)

	// Protein->Disease has two predicates; their union keeps two cells
	// because both relations share (P0, D0).
	agg, ok := e.Aggregate("Protein", "Disease")
	require.True(t, ok)
	assert.Equal(t, 2, agg.NNZ())
	assert.True(t, agg.Get(0, 0))
	assert.True(t, agg.Get(1, 0))

	// Cached: the same matrix comes back.
	again, ok := e.Aggregate("Protein", "Disease")
	require.True(t, ok)
	assert.Same(t, agg, again)

	// Reverse readings participate in aggregates.
	rev, ok := e.Aggregate("Disease", "Protein")
	require.True(t, ok)
	assert.Equal(t, 2, rev.NNZ())
	assert.True(t, rev.Get(0, 0))
	assert.True(t, rev.Get(0, 1))

	// Pairs with no relations are a cached miss.
	_, ok = e.Aggregate("SmallMolecule", "Protein")
	assert.False(t, ok)
	_, ok = e.Aggregate("SmallMolecule", "Protein")
	assert.False(t, ok)
}

func TestAnyLabel(t *testing.T) {
	assert.Equal(t, "Gene|ANY|A|Disease", AnyLabel("Gene", "Disease"))
}
