// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package compose

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

// testStore builds a small store with two genes, two diseases, and one
// chemical: five relation keys once reverses are registered.
func testStore(t *testing.T) *matrix.Store {
	t.Helper()
	resolver := mapResolver{
		"G0": "Gene", "G1": "Gene",
		"D0": "Disease", "D1": "Disease",
		"C0": "ChemicalEntity",
	}
	edges := []matrix.Edge{
		{Subject: "G0", Predicate: "affects", Object: "D0"},
		{Subject: "G1", Predicate: "affects", Object: "D1"},
		{Subject: "C0", Predicate: "treats", Object: "D0"},
		{Subject: "G0", Predicate: "interacts_with", Object: "G1"},
	}
	provider := func() (matrix.EdgeSource, error) {
		return &sliceSource{edges: edges}, nil
	}
	store, err := matrix.NewBuilder(resolver).Build(context.Background(), provider)
	require.NoError(t, err)
	require.Equal(t, 5, store.Len())
	return store
}

func TestEnumerate(t *testing.T) {
	store := testStore(t)

	var visited []Metapath
	err := Enumerate(context.Background(), store, func(m Metapath) error {
		visited = append(visited, m)
		return nil
	})
	require.NoError(t, err)

	// The visit count matches the closed-form count.
	assert.Equal(t, Count(store), len(visited))
	assert.Equal(t, 16, len(visited))

	// Every visited metapath chains by type.
	for _, m := range visited {
		assert.Equal(t, m.E1.TargetType, m.E2.SourceType, "metapath %s", m)
		assert.Equal(t, m.E2.TargetType, m.E3.SourceType, "metapath %s", m)
	}

	// Sorted key order makes enumeration deterministic; the first segment
	// of the first metapath is the lexicographically first key.
	first := visited[0]
	assert.Equal(t, "ChemicalEntity|treats|F|Disease", first.E1.String())
}

func TestEnumerate_Deterministic(t *testing.T) {
	store := testStore(t)

	collect := func() []string {
		var labels []string
		err := Enumerate(context.Background(), store, func(m Metapath) error {
			labels = append(labels, m.String())
			return nil
		})
		require.NoError(t, err)
		return labels
	}

	assert.Equal(t, collect(), collect())
}

func TestEnumerate_Stop(t *testing.T) {
	store := testStore(t)

	count := 0
	err := Enumerate(context.Background(), store, func(Metapath) error {
		count++
		if count == 3 {
			return ErrStopEnumeration
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestEnumerate_VisitError(t *testing.T) {
	store := testStore(t)

	wantErr := errors.New("writer failed")
	err := Enumerate(context.Background(), store, func(Metapath) error {
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestEnumerate_Cancelled(t *testing.T) {
	store := testStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Enumerate(ctx, store, func(Metapath) error { return nil })
	assert.ErrorIs(t, err, ErrEnumerationCancelled)
}

func TestCount_EmptyStore(t *testing.T) {
	resolver := mapResolver{}
	provider := func() (matrix.EdgeSource, error) {
		return &sliceSource{}, nil
	}
	store, err := matrix.NewBuilder(resolver).Build(context.Background(), provider)
	require.NoError(t, err)

	assert.Equal(t, 0, Count(store))
	err = Enumerate(context.Background(), store, func(Metapath) error {
		t.Fatal("empty store should visit nothing")
		return nil
	})
	require.NoError(t, err)
}
