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
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const tableFields = 6

// LoadComparisons reads an overlap table written by an earlier run, so
// classification can rescore it without recomposing the graph. The
// header row is discarded; malformed rows are skipped, with warn (when
// non-nil) receiving the line number and reason.
func LoadComparisons(path string, warn func(line int, reason string)) ([]Comparison, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening overlap table: %w", err)
	}
	defer f.Close()

	skip := func(line int, reason string) {
		if warn != nil {
			warn(line, reason)
		}
	}

	var comparisons []Comparison
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		if line == 1 {
			continue
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		c, reason := parseComparisonRow(text)
		if reason != "" {
			skip(line, reason)
			continue
		}
		comparisons = append(comparisons, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading overlap table: %w", err)
	}
	return comparisons, nil
}

func parseComparisonRow(text string) (Comparison, string) {
	parts := strings.Split(text, "\t")
	if len(parts) != tableFields {
		return Comparison{}, fmt.Sprintf("expected %d fields, got %d", tableFields, len(parts))
	}

	counts := make([]int64, 4)
	for i, field := range []string{parts[1], parts[3], parts[4], parts[5]} {
		v, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return Comparison{}, fmt.Sprintf("bad count %q", field)
		}
		counts[i] = v
	}

	return Comparison{
		Metapath:      parts[0],
		ThreeHopCount: counts[0],
		OneHopLabel:   parts[2],
		OneHopCount:   counts[1],
		Overlap:       counts[2],
		TotalPossible: counts[3],
	}, ""
}
