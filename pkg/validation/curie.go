// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation utilities for identifiers
// read from knowledge-graph files.
//
// Node identifiers and type labels flow from user-supplied JSONL straight
// into output file paths, metapath strings, and log lines. Validating them
// at the boundary keeps malformed records from corrupting the tab-separated
// outputs (embedded tabs, newlines) and catches file-format mixups early.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// curiePattern matches a compact URI: PREFIX:ID with exactly one colon.
// The prefix must start with a letter; both parts allow alphanumerics,
// dots, underscores, and hyphens. Covers MONDO:0004979, NCBIGene:3815,
// CHEBI:15377, UniProtKB:P04637 and the like.
var curiePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9._-]*:[A-Za-z0-9._-]+$`)

// labelPattern matches a bare type or predicate label after CURIE-prefix
// stripping: "Gene", "ChemicalEntity", "affects", "interacts_with".
var labelPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// ValidateCURIE validates a node identifier of the PREFIX:ID form.
//
// Valid CURIEs:
//   - exactly one colon separating a non-empty prefix and a non-empty ID
//   - prefix starts with a letter
//   - both parts restricted to alphanumerics, dots, underscores, hyphens
//
// Returns an error describing the failure, or nil.
//
// Example:
//
//	if err := validation.ValidateCURIE(node.ID); err != nil {
//	    return fmt.Errorf("bad node id: %w", err)
//	}
func ValidateCURIE(curie string) error {
	if curie == "" {
		return fmt.Errorf("identifier cannot be empty")
	}

	if strings.Count(curie, ":") != 1 {
		return fmt.Errorf("invalid identifier %q: must contain exactly one colon", curie)
	}

	if !curiePattern.MatchString(curie) {
		return fmt.Errorf("invalid identifier format: %q", curie)
	}

	return nil
}

// ValidateLabel validates a type or predicate label (post prefix stripping).
//
// Labels appear verbatim inside metapath strings and TSV columns, so
// anything beyond letters, digits, and underscores is rejected.
func ValidateLabel(label string) error {
	if label == "" {
		return fmt.Errorf("label cannot be empty")
	}

	if !labelPattern.MatchString(label) {
		return fmt.Errorf("invalid label format: %q (letters, digits, underscores only)", label)
	}

	return nil
}

// ValidateLabels validates multiple labels, returning an error that lists
// every invalid one if any fail.
func ValidateLabels(labels []string) error {
	var invalid []string
	for _, l := range labels {
		if err := ValidateLabel(l); err != nil {
			invalid = append(invalid, l)
		}
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid labels: %v", invalid)
	}
	return nil
}

// SanitizeLabel trims surrounding whitespace and validates the result.
// Returns the cleaned label if valid, or an error.
//
//	safe, err := validation.SanitizeLabel(rawCategory)
//	if err != nil {
//	    return err
//	}
func SanitizeLabel(label string) (string, error) {
	trimmed := strings.TrimSpace(label)
	if err := ValidateLabel(trimmed); err != nil {
		return "", err
	}
	return trimmed, nil
}
