// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package kgx reads KGX-format knowledge graph files.
//
// KGX ships nodes and edges as JSON Lines, optionally gzip-compressed. The
// readers here stream one record at a time, strip the "biolink:" prefix from
// predicates and categories, and skip malformed lines instead of failing the
// run. Skips are counted and optionally reported through a warn callback;
// only an unreadable file or a corrupt stream is fatal.
package kgx

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AleutianAI/MetapathFOSS/pkg/validation"
)

// maxLineBytes bounds a single JSONL record. Dense node records with long
// synonym lists stay well under this.
const maxLineBytes = 16 << 20

// biolinkPrefix is the CURIE prefix the biolink model uses for its own
// classes and predicates.
const biolinkPrefix = "biolink:"

// TrimBiolink removes the "biolink:" prefix when present. Node CURIEs such
// as "MONDO:0005148" pass through untouched.
func TrimBiolink(s string) string {
	return strings.TrimPrefix(s, biolinkPrefix)
}

// validateID checks a node identifier. KGX files carry CURIEs, but synthetic
// fixtures use bare labels, so both shapes are accepted; anything else would
// leak tabs or separators into the output tables downstream.
func validateID(id string) error {
	if strings.Contains(id, ":") {
		return validation.ValidateCURIE(id)
	}
	return validation.ValidateLabel(id)
}

// Node is one KGX node record. Categories arrive most specific first in
// well-formed files, but no ordering is assumed downstream.
type Node struct {
	ID         string   `json:"id"`
	Name       string   `json:"name,omitempty"`
	Categories []string `json:"category,omitempty"`
}

// Edge is one KGX edge record.
type Edge struct {
	Subject   string `json:"subject"`
	Predicate string `json:"predicate"`
	Object    string `json:"object"`
}

// WarnFunc receives one report per skipped line. Implementations must not
// block; readers call it inline.
type WarnFunc func(line int, reason string)

// Option configures a reader.
type Option func(*lineReader)

// WithWarnFunc registers a callback invoked for every skipped line.
func WithWarnFunc(fn WarnFunc) Option {
	return func(r *lineReader) {
		r.warn = fn
	}
}

// lineReader streams trimmed, non-blank lines from a possibly gzipped file.
type lineReader struct {
	path    string
	file    *os.File
	gz      *gzip.Reader
	scanner *bufio.Scanner
	line    int
	skipped int
	warn    WarnFunc
}

func openLineReader(path string, opts ...Option) (*lineReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	r := &lineReader{path: path, file: f}
	var src io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("opening gzip stream %s: %w", path, err)
		}
		r.gz = gz
		src = gz
	}
	r.scanner = bufio.NewScanner(src)
	r.scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// nextLine returns the next non-blank line, or io.EOF.
func (r *lineReader) nextLine() ([]byte, error) {
	for r.scanner.Scan() {
		r.line++
		data := bytes.TrimSpace(r.scanner.Bytes())
		if len(data) == 0 {
			continue
		}
		return data, nil
	}
	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s at line %d: %w", r.path, r.line, err)
	}
	return nil, io.EOF
}

func (r *lineReader) skip(reason string) {
	r.skipped++
	if r.warn != nil {
		r.warn(r.line, reason)
	}
}

// Skipped returns the number of malformed lines skipped so far.
func (r *lineReader) Skipped() int { return r.skipped }

// Close releases the underlying file and gzip stream.
func (r *lineReader) Close() error {
	var gzErr error
	if r.gz != nil {
		gzErr = r.gz.Close()
	}
	if err := r.file.Close(); err != nil {
		return err
	}
	return gzErr
}

// =============================================================================
// NODE READER
// =============================================================================

// NodeReader streams node records from a KGX nodes file.
type NodeReader struct {
	*lineReader
}

// OpenNodes opens a KGX nodes JSONL file, gzipped or plain.
func OpenNodes(path string, opts ...Option) (*NodeReader, error) {
	lr, err := openLineReader(path, opts...)
	if err != nil {
		return nil, err
	}
	return &NodeReader{lineReader: lr}, nil
}

// Next returns the next well-formed node record.
//
// Malformed JSON and records whose id fails identifier validation are
// skipped and counted. Category entries are returned with the "biolink:"
// prefix stripped. Returns io.EOF when the file is exhausted.
func (r *NodeReader) Next() (Node, error) {
	for {
		data, err := r.nextLine()
		if err != nil {
			return Node{}, err
		}
		var n Node
		if err := json.Unmarshal(data, &n); err != nil {
			r.skip(fmt.Sprintf("invalid JSON: %v", err))
			continue
		}
		if err := validateID(n.ID); err != nil {
			r.skip(fmt.Sprintf("node id: %v", err))
			continue
		}
		for i, c := range n.Categories {
			n.Categories[i] = TrimBiolink(c)
		}
		return n, nil
	}
}

// =============================================================================
// EDGE READER
// =============================================================================

// EdgeReader streams edge records from a KGX edges file.
type EdgeReader struct {
	*lineReader
}

// OpenEdges opens a KGX edges JSONL file, gzipped or plain.
func OpenEdges(path string, opts ...Option) (*EdgeReader, error) {
	lr, err := openLineReader(path, opts...)
	if err != nil {
		return nil, err
	}
	return &EdgeReader{lineReader: lr}, nil
}

// Next returns the next well-formed edge record.
//
// Records whose subject or object fails identifier validation, or whose
// predicate is not a valid label, are skipped and counted. The predicate is
// returned with the "biolink:" prefix stripped. Returns io.EOF when the
// file is exhausted.
func (r *EdgeReader) Next() (Edge, error) {
	for {
		data, err := r.nextLine()
		if err != nil {
			return Edge{}, err
		}
		var e Edge
		if err := json.Unmarshal(data, &e); err != nil {
			r.skip(fmt.Sprintf("invalid JSON: %v", err))
			continue
		}
		if err := validateID(e.Subject); err != nil {
			r.skip(fmt.Sprintf("subject: %v", err))
			continue
		}
		if err := validateID(e.Object); err != nil {
			r.skip(fmt.Sprintf("object: %v", err))
			continue
		}
		e.Predicate = TrimBiolink(e.Predicate)
		if err := validation.ValidateLabel(e.Predicate); err != nil {
			r.skip(fmt.Sprintf("predicate: %v", err))
			continue
		}
		return e, nil
	}
}
