// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package kgx

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// Helper to write a fixture file, gzipping when the name ends in .gz.
func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("creating fixture: %v", err)
	}
	defer f.Close()

	var w io.Writer = f
	if strings.HasSuffix(name, ".gz") {
		gz := gzip.NewWriter(f)
		defer gz.Close()
		w = gz
	}
	if _, err := io.WriteString(w, content); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

// drainNodes reads every node until EOF.
func drainNodes(t *testing.T, r *NodeReader) []Node {
	t.Helper()
	var nodes []Node
	for {
		n, err := r.Next()
		if err == io.EOF {
			return nodes
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		nodes = append(nodes, n)
	}
}

// drainEdges reads every edge until EOF.
func drainEdges(t *testing.T, r *EdgeReader) []Edge {
	t.Helper()
	var edges []Edge
	for {
		e, err := r.Next()
		if err == io.EOF {
			return edges
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		edges = append(edges, e)
	}
}

func TestTrimBiolink(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"biolink:Disease", "Disease"},
		{"biolink:interacts_with", "interacts_with"},
		{"MONDO:0005148", "MONDO:0005148"},
		{"Disease", "Disease"},
		{"", ""},
	}

	for _, tc := range tests {
		if got := TrimBiolink(tc.input); got != tc.expected {
			t.Errorf("TrimBiolink(%q) = %q, expected %q", tc.input, got, tc.expected)
		}
	}
}

func TestNodeReader(t *testing.T) {
	content := `{"id":"MONDO:0005148","name":"type 2 diabetes","category":["biolink:Disease","biolink:DiseaseOrPhenotypicFeature"]}

{"id":"NCBIGene:3815","category":["biolink:Gene"]}
not json at all
{"name":"orphan without id"}
{"id":"CHEBI:15365"}
`
	path := writeFixture(t, "nodes.jsonl", content)
	r, err := OpenNodes(path)
	if err != nil {
		t.Fatalf("OpenNodes failed: %v", err)
	}
	defer r.Close()

	nodes := drainNodes(t, r)
	if len(nodes) != 3 {
		t.Fatalf("got %d nodes, expected 3", len(nodes))
	}

	want := Node{
		ID:         "MONDO:0005148",
		Name:       "type 2 diabetes",
		Categories: []string{"Disease", "DiseaseOrPhenotypicFeature"},
	}
	if !reflect.DeepEqual(nodes[0], want) {
		t.Errorf("first node = %+v, expected %+v", nodes[0], want)
	}
	if len(nodes[2].Categories) != 0 {
		t.Errorf("node without category should have empty Categories, got %v", nodes[2].Categories)
	}

	// One invalid JSON line plus one record without an id.
	if r.Skipped() != 2 {
		t.Errorf("Skipped = %d, expected 2", r.Skipped())
	}
}

func TestNodeReader_Gzip(t *testing.T) {
	content := `{"id":"MONDO:0005148","category":["biolink:Disease"]}
{"id":"NCBIGene:3815","category":["biolink:Gene"]}
`
	path := writeFixture(t, "nodes.jsonl.gz", content)
	r, err := OpenNodes(path)
	if err != nil {
		t.Fatalf("OpenNodes failed: %v", err)
	}
	defer r.Close()

	nodes := drainNodes(t, r)
	if len(nodes) != 2 {
		t.Fatalf("got %d nodes, expected 2", len(nodes))
	}
	if nodes[1].Categories[0] != "Gene" {
		t.Errorf("category = %q, expected Gene", nodes[1].Categories[0])
	}
}

func TestEdgeReader(t *testing.T) {
	content := `{"subject":"NCBIGene:3815","predicate":"biolink:interacts_with","object":"CHEBI:15365"}
{"subject":"NCBIGene:3815","object":"MONDO:0005148"}
{"subject":"","predicate":"biolink:affects","object":"MONDO:0005148"}
broken
{"subject":"CHEBI:15365","predicate":"biolink:treats","object":"MONDO:0005148"}
`
	path := writeFixture(t, "edges.jsonl", content)

	var warnings []string
	r, err := OpenEdges(path, WithWarnFunc(func(line int, reason string) {
		warnings = append(warnings, reason)
	}))
	if err != nil {
		t.Fatalf("OpenEdges failed: %v", err)
	}
	defer r.Close()

	edges := drainEdges(t, r)
	expected := []Edge{
		{Subject: "NCBIGene:3815", Predicate: "interacts_with", Object: "CHEBI:15365"},
		{Subject: "CHEBI:15365", Predicate: "treats", Object: "MONDO:0005148"},
	}
	if !reflect.DeepEqual(edges, expected) {
		t.Errorf("edges = %+v, expected %+v", edges, expected)
	}

	if r.Skipped() != 3 {
		t.Errorf("Skipped = %d, expected 3", r.Skipped())
	}
	if len(warnings) != 3 {
		t.Errorf("warn callback fired %d times, expected 3", len(warnings))
	}
}

func TestNodeReader_InvalidIDs(t *testing.T) {
	content := `{"id":"MONDO:0005148:extra","category":["biolink:Disease"]}
{"id":"bad id\twith tab"}
{"id":"NCBIGene:3815","category":["biolink:Gene"]}
`
	path := writeFixture(t, "nodes.jsonl", content)

	var warnings []string
	r, err := OpenNodes(path, WithWarnFunc(func(line int, reason string) {
		warnings = append(warnings, reason)
	}))
	if err != nil {
		t.Fatalf("OpenNodes failed: %v", err)
	}
	defer r.Close()

	nodes := drainNodes(t, r)
	if len(nodes) != 1 || nodes[0].ID != "NCBIGene:3815" {
		t.Fatalf("nodes = %+v, expected only the well-formed record", nodes)
	}
	if r.Skipped() != 2 {
		t.Errorf("Skipped = %d, expected 2", r.Skipped())
	}
	for _, w := range warnings {
		if !strings.HasPrefix(w, "node id:") {
			t.Errorf("warning %q should name the offending field", w)
		}
	}
}

func TestEdgeReader_InvalidIdentifiers(t *testing.T) {
	content := `{"subject":"NCBIGene:3815","predicate":"biolink:affects","object":"MONDO:0005148:extra"}
{"subject":"gene one","predicate":"biolink:affects","object":"MONDO:0005148"}
{"subject":"NCBIGene:3815","predicate":"biolink:has|pipe","object":"MONDO:0005148"}
{"subject":"NCBIGene:3815","predicate":"biolink:affects","object":"MONDO:0005148"}
`
	path := writeFixture(t, "edges.jsonl", content)
	r, err := OpenEdges(path)
	if err != nil {
		t.Fatalf("OpenEdges failed: %v", err)
	}
	defer r.Close()

	edges := drainEdges(t, r)
	expected := []Edge{
		{Subject: "NCBIGene:3815", Predicate: "affects", Object: "MONDO:0005148"},
	}
	if !reflect.DeepEqual(edges, expected) {
		t.Errorf("edges = %+v, expected %+v", edges, expected)
	}
	if r.Skipped() != 3 {
		t.Errorf("Skipped = %d, expected 3", r.Skipped())
	}
}

func TestOpenNodes_MissingFile(t *testing.T) {
	if _, err := OpenNodes(filepath.Join(t.TempDir(), "absent.jsonl")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestOpenEdges_CorruptGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edges.jsonl.gz")
	if err := os.WriteFile(path, []byte("not gzip data"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if _, err := OpenEdges(path); err == nil {
		t.Error("expected error for corrupt gzip file")
	}
}
