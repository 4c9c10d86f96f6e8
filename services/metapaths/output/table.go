// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// DefaultFlushEvery suits the high-volume overlap and classification
// tables.
const DefaultFlushEvery = 10000

// BenchmarkFlushEvery suits the benchmark tables, where rows arrive
// slowly and a crash should lose little work.
const BenchmarkFlushEvery = 100

// Option adjusts TableWriter construction.
type Option func(*TableWriter)

// WithFlushEvery sets how many rows accumulate between flushes. Values
// below one flush after every row.
func WithFlushEvery(n int) Option {
	return func(t *TableWriter) {
		if n < 1 {
			n = 1
		}
		t.flushEvery = n
	}
}

// TableWriter appends tab-separated rows beneath a fixed header.
//
// # Description
//
// The header is written at construction and every row is validated
// against its width, so a table can never silently drift out of shape
// mid-file. Rows buffer in memory and flush to the underlying writer
// every flushEvery rows; callers must Flush once after the final row.
// The writer does not own the underlying io.Writer and never closes it.
//
// # Thread Safety
//
// NOT safe for concurrent use. The pipeline appends rows from a single
// writer.
type TableWriter struct {
	w          *bufio.Writer
	width      int
	flushEvery int
	pending    int
	rows       int
}

// NewTableWriter writes the header row and returns a writer bound to
// that column set.
func NewTableWriter(w io.Writer, columns []string, opts ...Option) (*TableWriter, error) {
	t := &TableWriter{
		w:          bufio.NewWriter(w),
		width:      len(columns),
		flushEvery: DefaultFlushEvery,
	}
	for _, opt := range opts {
		opt(t)
	}
	if _, err := t.w.WriteString(strings.Join(columns, "\t") + "\n"); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}
	return t, nil
}

// WriteRow appends one row.
//
// Errors:
//
//	ErrColumnMismatch when the field count differs from the header;
//	underlying write errors otherwise.
func (t *TableWriter) WriteRow(fields []string) error {
	if len(fields) != t.width {
		return fmt.Errorf("%w: expected %d fields, got %d", ErrColumnMismatch, t.width, len(fields))
	}
	if _, err := t.w.WriteString(strings.Join(fields, "\t") + "\n"); err != nil {
		return fmt.Errorf("writing row %d: %w", t.rows+1, err)
	}
	t.rows++
	t.pending++
	if t.pending >= t.flushEvery {
		t.pending = 0
		if err := t.w.Flush(); err != nil {
			return fmt.Errorf("flushing after row %d: %w", t.rows, err)
		}
	}
	return nil
}

// Rows reports how many data rows have been written, excluding the
// header.
func (t *TableWriter) Rows() int {
	return t.rows
}

// Flush drains any buffered rows to the underlying writer.
func (t *TableWriter) Flush() error {
	t.pending = 0
	return t.w.Flush()
}
