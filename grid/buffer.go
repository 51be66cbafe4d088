// Copyright © 2025 Neoview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: grid/buffer.go
// Summary: Per-grid cell buffer with run-length writes and dirty tracking.

package grid

import "github.com/framegrace/neoview/protocol"

// Buffer owns the row-major cell array for one grid surface plus its dirty
// region. All cell access is bounds-checked against the current geometry;
// stale positions racing a resize degrade to no-ops.
type Buffer struct {
	rows, cols int
	cells      [][]Cell
	dirty      DirtyRegion
}

// NewBuffer allocates an empty rows x cols buffer, fully dirty.
func NewBuffer(rows, cols int) *Buffer {
	b := &Buffer{}
	b.Resize(rows, cols)
	return b
}

// Resize reallocates to empty cells. Prior contents are discarded and the
// whole grid is invalidated; the caller re-derives pixel size and signals
// collaborators.
func (b *Buffer) Resize(rows, cols int) {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	b.rows, b.cols = rows, cols
	b.cells = make([][]Cell, rows)
	for i := range b.cells {
		b.cells[i] = make([]Cell, cols)
	}
	b.dirty.MarkAll(rows, cols)
}

// Clear empties every cell and invalidates the whole grid without changing
// geometry.
func (b *Buffer) Clear() {
	for i := range b.cells {
		for j := range b.cells[i] {
			b.cells[i][j] = Cell{}
		}
	}
	b.dirty.MarkAll(b.rows, b.cols)
}

// Rows returns the row count.
func (b *Buffer) Rows() int { return b.rows }

// Cols returns the column count.
func (b *Buffer) Cols() int { return b.cols }

// CellAt returns the cell at row/col, or ok=false outside bounds.
func (b *Buffer) CellAt(row, col int) (Cell, bool) {
	if row < 0 || row >= b.rows || col < 0 || col >= b.cols {
		return Cell{}, false
	}
	return b.cells[row][col], true
}

// Dirty exposes the buffer's dirty region for the renderer.
func (b *Buffer) Dirty() *DirtyRegion {
	return &b.dirty
}

// WriteRun applies a grid-line command segment: a contiguous run of cells
// starting at colStart on row. Runs inherit the previous run's highlight id
// once one has appeared, and a zero repeat covers a single cell. Returns the
// written column span [start, end) after dirty-extension, or ok=false when
// the row is out of bounds.
//
// Two dirty extensions are applied before the span is recorded:
//   - the trailing edge grows by one cell (clamped) to catch glyph bleed at
//     scroll and redraw boundaries;
//   - the leading edge walks backwards over cells that are italic or match
//     SymbolPredicate, so partially overdrawn ligatures repaint whole.
func (b *Buffer) WriteRun(row, colStart int, runs []protocol.CellRun, table *HighlightTable) (start, end int, ok bool) {
	if row < 0 || row >= b.rows || colStart < 0 || colStart >= b.cols {
		return 0, 0, false
	}

	col := colStart
	hl := 0
	for _, run := range runs {
		if run.HlID != protocol.HlInherit {
			hl = run.HlID
		}
		repeat := run.Repeat
		if repeat <= 0 {
			repeat = 1
		}
		clusters := Graphemes(run.Text)
		if len(clusters) == 0 {
			clusters = []string{""}
		}
		for r := 0; r < repeat; r++ {
			for _, cluster := range clusters {
				if col >= b.cols {
					break
				}
				b.cells[row][col] = Cell{Text: cluster, HlID: hl}
				col++
			}
		}
	}

	start, end = colStart, col
	if end < b.cols {
		end++ // trailing glyph-bleed cell
	}
	for start > 0 {
		prev := b.cells[row][start-1]
		if !table.IsItalic(prev.HlID) && !SymbolPredicate(prev.Text) {
			break
		}
		start--
	}
	b.dirty.Union(Rect{Row: row, Col: start, Height: 1, Width: end - start})
	return start, end, true
}
