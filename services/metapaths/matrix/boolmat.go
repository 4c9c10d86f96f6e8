// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package matrix

import (
	"math/bits"
	"sync"
	"sync/atomic"
)

const wordBits = 64

// BoolMat is a boolean sparse matrix with bitset rows.
//
// Rows are stored as packed uint64 words and allocated lazily: a row with no
// set bits costs one nil pointer. Only existence is tracked, so setting the
// same cell twice is idempotent and multiplicity is never stored.
//
// Thread Safety:
//
//	BoolMat is NOT safe for concurrent use during building. It is designed
//	for single-writer access during build, then read-only after Freeze().
//	After Freeze() the matrix can be read from multiple goroutines, and T()
//	materializes the shared transpose exactly once.
//
// Lifecycle:
//
//  1. Create with NewBoolMat(rows, cols)
//  2. Populate with Set() calls
//  3. Call Freeze() to finalize
//  4. Query with Get(), Mul(), And(), Or(), T()
type BoolMat struct {
	rows  int
	cols  int
	words int // uint64 words per row: ceil(cols / 64)

	// data holds one bitset per row. A nil entry is an empty row.
	data [][]uint64

	// nnz counts set cells. Maintained by Set during build and computed
	// once for derived matrices.
	nnz int

	frozen atomic.Bool

	// tOnce guards transpose materialization. The transpose points back at
	// this matrix, so chains of T() never allocate twice.
	tOnce     sync.Once
	transpose *BoolMat
}

// NewBoolMat creates an empty rows x cols boolean matrix.
//
// Both dimensions may be zero; such matrices are valid operands and always
// empty. Negative dimensions are clamped to zero.
func NewBoolMat(rows, cols int) *BoolMat {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	return &BoolMat{
		rows:  rows,
		cols:  cols,
		words: (cols + wordBits - 1) / wordBits,
		data:  make([][]uint64, rows),
	}
}

// Rows returns the row count.
func (m *BoolMat) Rows() int { return m.rows }

// Cols returns the column count.
func (m *BoolMat) Cols() int { return m.cols }

// NNZ returns the number of set cells.
func (m *BoolMat) NNZ() int { return m.nnz }

// IsEmpty reports whether the matrix has no set cells.
func (m *BoolMat) IsEmpty() bool { return m.nnz == 0 }

// IsFrozen reports whether the matrix is in read-only mode.
func (m *BoolMat) IsFrozen() bool { return m.frozen.Load() }

// Set marks cell (i, j) as present.
//
// Returns ErrMatrixFrozen after Freeze() and ErrIndexOutOfRange when the
// indices fall outside the matrix shape. Setting an already-set cell is a
// no-op.
func (m *BoolMat) Set(i, j int) error {
	if m.frozen.Load() {
		return ErrMatrixFrozen
	}
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		return ErrIndexOutOfRange
	}
	row := m.data[i]
	if row == nil {
		row = make([]uint64, m.words)
		m.data[i] = row
	}
	w, mask := j/wordBits, uint64(1)<<(j%wordBits)
	if row[w]&mask == 0 {
		row[w] |= mask
		m.nnz++
	}
	return nil
}

// Get reports whether cell (i, j) is present. Out-of-range indices are
// reported as absent rather than errors so read loops stay branch-light.
func (m *BoolMat) Get(i, j int) bool {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		return false
	}
	row := m.data[i]
	if row == nil {
		return false
	}
	return row[j/wordBits]&(uint64(1)<<(j%wordBits)) != 0
}

// Freeze transitions the matrix to read-only mode.
//
// After Freeze() returns, Set will return ErrMatrixFrozen and the matrix can
// be read from multiple goroutines concurrently. Freeze is idempotent.
func (m *BoolMat) Freeze() {
	m.frozen.Store(true)
}

// T returns the transpose.
//
// Description:
//
//	The transpose is materialized on first call and cached, so every reader
//	of the reverse relation shares one allocation. The returned matrix is
//	frozen and its own T() returns the original, making T(T(m)) == m by
//	pointer identity.
//
// Thread Safety:
//
//	Safe for concurrent use. T() freezes the matrix first; callers must be
//	done writing before the first T() call.
func (m *BoolMat) T() *BoolMat {
	m.Freeze()
	m.tOnce.Do(func() {
		t := NewBoolMat(m.cols, m.rows)
		for i, row := range m.data {
			if row == nil {
				continue
			}
			forEachBit(row, m.cols, func(j int) {
				// Set cannot fail here: indices are in range by
				// construction and t is not yet frozen.
				_ = t.Set(j, i)
			})
		}
		t.Freeze()
		t.transpose = m
		t.tOnce.Do(func() {})
		m.transpose = t
	})
	return m.transpose
}

// Mul computes the boolean product m x other.
//
// Description:
//
//	Cell (i, j) of the result is set iff some k exists with m[i,k] and
//	other[k,j] both set. Multiplicity is discarded; the result only records
//	existence. The result is frozen.
//
// Errors:
//
//	ErrDimensionMismatch when m.Cols() != other.Rows().
//
// Complexity:
//
//	O(nnz(m) * words(other)) word operations: each set cell of m ORs one
//	row of other into the accumulator row.
func (m *BoolMat) Mul(other *BoolMat) (*BoolMat, error) {
	if other == nil || m.cols != other.rows {
		return nil, ErrDimensionMismatch
	}
	out := NewBoolMat(m.rows, other.cols)
	if m.nnz == 0 || other.nnz == 0 {
		out.Freeze()
		return out, nil
	}
	for i, row := range m.data {
		if row == nil {
			continue
		}
		var acc []uint64
		forEachBit(row, m.cols, func(k int) {
			src := other.data[k]
			if src == nil {
				return
			}
			if acc == nil {
				acc = make([]uint64, out.words)
			}
			for w, word := range src {
				acc[w] |= word
			}
		})
		if acc == nil {
			continue
		}
		count := popcount(acc)
		if count == 0 {
			continue
		}
		out.data[i] = acc
		out.nnz += count
	}
	out.Freeze()
	return out, nil
}

// And computes the entrywise intersection of two same-shaped matrices.
//
// Errors:
//
//	ErrShapeMismatch when the shapes differ.
func (m *BoolMat) And(other *BoolMat) (*BoolMat, error) {
	if other == nil || m.rows != other.rows || m.cols != other.cols {
		return nil, ErrShapeMismatch
	}
	out := NewBoolMat(m.rows, m.cols)
	for i, row := range m.data {
		if row == nil || other.data[i] == nil {
			continue
		}
		var acc []uint64
		count := 0
		for w, word := range row {
			v := word & other.data[i][w]
			if v != 0 {
				if acc == nil {
					acc = make([]uint64, m.words)
				}
				acc[w] = v
				count += bits.OnesCount64(v)
			}
		}
		if count > 0 {
			out.data[i] = acc
			out.nnz += count
		}
	}
	out.Freeze()
	return out, nil
}

// Or computes the entrywise union of two same-shaped matrices.
//
// Errors:
//
//	ErrShapeMismatch when the shapes differ.
func (m *BoolMat) Or(other *BoolMat) (*BoolMat, error) {
	if other == nil || m.rows != other.rows || m.cols != other.cols {
		return nil, ErrShapeMismatch
	}
	out := NewBoolMat(m.rows, m.cols)
	for i := 0; i < m.rows; i++ {
		a, b := m.data[i], other.data[i]
		if a == nil && b == nil {
			continue
		}
		acc := make([]uint64, m.words)
		if a != nil {
			copy(acc, a)
		}
		if b != nil {
			for w, word := range b {
				acc[w] |= word
			}
		}
		count := popcount(acc)
		if count > 0 {
			out.data[i] = acc
			out.nnz += count
		}
	}
	out.Freeze()
	return out, nil
}

// EqualPattern reports whether two matrices have the same shape and the same
// set of nonzero cells. Nil and all-zero rows compare equal.
func (m *BoolMat) EqualPattern(other *BoolMat) bool {
	if other == nil || m.rows != other.rows || m.cols != other.cols {
		return false
	}
	if m.nnz != other.nnz {
		return false
	}
	for i := 0; i < m.rows; i++ {
		a, b := m.data[i], other.data[i]
		if a == nil && b == nil {
			continue
		}
		for w := 0; w < m.words; w++ {
			var av, bv uint64
			if a != nil {
				av = a[w]
			}
			if b != nil {
				bv = b[w]
			}
			if av != bv {
				return false
			}
		}
	}
	return true
}

// ForEach visits every set cell in row-major order. Iteration stops early
// when visit returns false.
func (m *BoolMat) ForEach(visit func(i, j int) bool) {
	for i, row := range m.data {
		if row == nil {
			continue
		}
		stopped := false
		forEachBit(row, m.cols, func(j int) {
			if stopped {
				return
			}
			if !visit(i, j) {
				stopped = true
			}
		})
		if stopped {
			return
		}
	}
}

// RowNNZ returns the number of set cells in row i, or 0 when out of range.
func (m *BoolMat) RowNNZ(i int) int {
	if i < 0 || i >= m.rows || m.data[i] == nil {
		return 0
	}
	return popcount(m.data[i])
}

// forEachBit calls fn with the index of every set bit in the packed row,
// masking off bits at or beyond the logical width.
func forEachBit(row []uint64, width int, fn func(j int)) {
	for w, word := range row {
		if word == 0 {
			continue
		}
		base := w * wordBits
		for word != 0 {
			tz := bits.TrailingZeros64(word)
			j := base + tz
			if j >= width {
				return
			}
			fn(j)
			word &^= 1 << uint(tz)
		}
	}
}

// popcount sums set bits across the packed words of a row.
func popcount(row []uint64) int {
	total := 0
	for _, word := range row {
		total += bits.OnesCount64(word)
	}
	return total
}
