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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/MetapathFOSS/services/metapaths/matrix"
)

// Helper to build a frozen matrix from explicit cells.
func buildMat(t *testing.T, rows, cols int, cells [][2]int) *matrix.BoolMat {
	t.Helper()
	m := matrix.NewBoolMat(rows, cols)
	for _, c := range cells {
		require.NoError(t, m.Set(c[0], c[1]))
	}
	m.Freeze()
	return m
}

func TestPair(t *testing.T) {
	// Two sources and two middles: A0-B0, A0-B1, B0-C0, B1-C0. Both
	// witnesses collapse into the single pair (A0, C0).
	ab := buildMat(t, 2, 2, [][2]int{{0, 0}, {0, 1}})
	bc := buildMat(t, 2, 1, [][2]int{{0, 0}, {1, 0}})

	ac, err := Pair(ab, bc)
	require.NoError(t, err)
	assert.Equal(t, 1, ac.NNZ())
	assert.True(t, ac.Get(0, 0))
	assert.False(t, ac.Get(1, 0))
}

func TestPair_DimensionMismatch(t *testing.T) {
	a := buildMat(t, 2, 3, nil)
	b := buildMat(t, 2, 3, nil)

	_, err := Pair(a, b)
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func TestTriple(t *testing.T) {
	a := buildMat(t, 2, 2, [][2]int{{0, 0}, {0, 1}})
	b := buildMat(t, 2, 3, [][2]int{{0, 0}, {1, 2}})
	c := buildMat(t, 3, 2, [][2]int{{0, 1}, {2, 1}})

	result, err := Triple(a, b, c)
	require.NoError(t, err)

	assert.Equal(t, 2, result.AB.NNZ())
	assert.True(t, result.AB.Get(0, 0))
	assert.True(t, result.AB.Get(0, 2))

	assert.Equal(t, 1, result.ABC.NNZ())
	assert.True(t, result.ABC.Get(0, 1))
	assert.Equal(t, 2, result.ABC.Rows())
	assert.Equal(t, 2, result.ABC.Cols())
}

func TestTriple_EmptyIntermediate(t *testing.T) {
	// No A row reaches a B column that C departs from.
	a := buildMat(t, 2, 2, nil)
	b := buildMat(t, 2, 3, [][2]int{{0, 0}})
	c := buildMat(t, 3, 2, [][2]int{{0, 0}})

	result, err := Triple(a, b, c)
	require.NoError(t, err)
	assert.Equal(t, 0, result.AB.NNZ())
	assert.Equal(t, 0, result.ABC.NNZ())
	assert.Equal(t, 2, result.ABC.Rows())
	assert.Equal(t, 2, result.ABC.Cols())
}

func TestTriple_DimensionMismatch(t *testing.T) {
	a := buildMat(t, 2, 2, nil)
	b := buildMat(t, 3, 3, nil)
	c := buildMat(t, 3, 2, nil)

	_, err := Triple(a, b, c)
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)

	b2 := buildMat(t, 2, 4, nil)
	_, err = Triple(a, b2, c)
	assert.ErrorIs(t, err, matrix.ErrDimensionMismatch)
}

func testMetapath(t *testing.T) Metapath {
	t.Helper()
	m, err := NewMetapath(
		matrix.Key{SourceType: "Gene", Predicate: "affects", TargetType: "Disease", Direction: matrix.Forward},
		matrix.Key{SourceType: "Disease", Predicate: "treats", TargetType: "ChemicalEntity", Direction: matrix.Reverse},
		matrix.Key{SourceType: "ChemicalEntity", Predicate: "interacts_with", TargetType: "Gene", Direction: matrix.Forward},
	)
	require.NoError(t, err)
	return m
}

func TestMetapath_String(t *testing.T) {
	m := testMetapath(t)
	assert.Equal(t,
		"Gene|affects|F|Disease|treats|R|ChemicalEntity|interacts_with|F|Gene",
		m.String())
	assert.Equal(t, "Gene", m.SourceType())
	assert.Equal(t, "Gene", m.TargetType())
}

func TestMetapath_Reversed(t *testing.T) {
	m := testMetapath(t)
	r := m.Reversed()

	// Segment order reverses and every direction flips.
	assert.Equal(t,
		"Gene|interacts_with|R|ChemicalEntity|treats|F|Disease|affects|R|Gene",
		r.String())
	assert.Equal(t, m, r.Reversed())
}

func TestNewMetapath_Discontinuous(t *testing.T) {
	_, err := NewMetapath(
		matrix.Key{SourceType: "Gene", Predicate: "affects", TargetType: "Disease", Direction: matrix.Forward},
		matrix.Key{SourceType: "Gene", Predicate: "affects", TargetType: "Disease", Direction: matrix.Forward},
		matrix.Key{SourceType: "Disease", Predicate: "treats", TargetType: "Gene", Direction: matrix.Reverse},
	)
	assert.ErrorIs(t, err, ErrDiscontinuous)
}

func TestParseMetapath(t *testing.T) {
	original := testMetapath(t)

	parsed, err := ParseMetapath(original.String())
	require.NoError(t, err)
	assert.Equal(t, original, parsed)
}

func TestParseMetapath_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"too short", "Gene|affects|F|Disease"},
		{"bad direction", "Gene|affects|X|Disease|treats|R|ChemicalEntity|interacts_with|F|Gene"},
		{"discontinuous", "Gene|affects|F|Disease|treats|R|ChemicalEntity|interacts_with|F|Gene|extra"},
		{"empty", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseMetapath(tc.input)
			assert.Error(t, err)
		})
	}
}
