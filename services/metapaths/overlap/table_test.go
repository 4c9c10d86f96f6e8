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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadComparisons(t *testing.T) {
	good := "Gene|affects|F|Protein|affects|F|Disease|treats|R|SmallMolecule\t2\tGene|interacts_with|F|SmallMolecule\t1\t1\t4"
	rows := []string{
		"3hop_metapath\t3hop_count\t1hop_metapath\t1hop_count\toverlap\ttotal_possible",
		good,
		// short row
		"Gene|affects|F|Protein\t2",
		// bad count
		strings.Replace(good, "\t4", "\tfour", 1),
		"",
	}
	path := filepath.Join(t.TempDir(), "overlap.tsv")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(rows, "\n")), 0o644))

	var warned []int
	loaded, err := LoadComparisons(path, func(line int, reason string) {
		warned = append(warned, line)
		assert.NotEmpty(t, reason)
	})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 4}, warned)

	require.Len(t, loaded, 1)
	assert.Equal(t, Comparison{
		Metapath:      "Gene|affects|F|Protein|affects|F|Disease|treats|R|SmallMolecule",
		ThreeHopCount: 2,
		OneHopLabel:   "Gene|interacts_with|F|SmallMolecule",
		OneHopCount:   1,
		Overlap:       1,
		TotalPossible: 4,
	}, loaded[0])
}

func TestLoadComparisons_MissingFile(t *testing.T) {
	_, err := LoadComparisons(filepath.Join(t.TempDir(), "absent.tsv"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening overlap table")
}
