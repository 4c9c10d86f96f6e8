// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package estimate

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

// testStore includes one relation pair whose intermediate is empty (the
// regulates hop reaches only P2, which affects nothing), so the census and
// the sample pool legitimately disagree.
func testStore(t *testing.T) *matrix.Store {
	t.Helper()
	resolver := mapResolver{
		"G0": "Gene", "G1": "Gene",
		"P0": "Protein", "P1": "Protein", "P2": "Protein",
		"D0": "Disease",
		"S0": "SmallMolecule", "S1": "SmallMolecule",
	}
	edges := []matrix.Edge{
		{Subject: "G0", Predicate: "affects", Object: "P0"},
		{Subject: "G0", Predicate: "affects", Object: "P1"},
		{Subject: "G1", Predicate: "affects", Object: "P0"},
		{Subject: "P0", Predicate: "affects", Object: "D0"},
		{Subject: "P1", Predicate: "affects", Object: "D0"},
		{Subject: "S0", Predicate: "treats", Object: "D0"},
		{Subject: "S1", Predicate: "treats", Object: "D0"},
		{Subject: "G1", Predicate: "regulates", Object: "P2"},
		{Subject: "G0", Predicate: "interacts_with", Object: "S0"},
	}
	provider := func() (matrix.EdgeSource, error) {
		return &sliceSource{edges: edges}, nil
	}
	store, err := matrix.NewBuilder(resolver).Build(context.Background(), provider)
	require.NoError(t, err)
	return store
}

func TestTakeCensus_MatchesEnumerationCount(t *testing.T) {
	store := testStore(t)

	census, err := TakeCensus(context.Background(), store)
	require.NoError(t, err)

	// The census must account for every chain a full enumeration visits,
	// including chains whose intermediate is empty.
	assert.Equal(t, int64(compose.Count(store)), census.Total())
	assert.Greater(t, census.Total(), int64(0))

	// Every intermediate in this graph is far below a thousand nonzeros.
	assert.Equal(t, census.Total(), census.Population(Tiny))
	for _, b := range Buckets()[1:] {
		assert.Zero(t, census.Population(b), "bucket %s", b)
	}
}

func TestTakeCensus_Cancelled(t *testing.T) {
	store := testStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := TakeCensus(ctx, store)
	assert.ErrorIs(t, err, ErrCensusCancelled)
}
