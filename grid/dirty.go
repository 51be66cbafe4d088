// Copyright © 2025 Neoview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: grid/dirty.go
// Summary: Dirty-region tracker consumed by the renderer.

package grid

// Rect is a cell-space rectangle.
type Rect struct {
	Row    int
	Col    int
	Height int
	Width  int
}

// Empty reports whether the rectangle covers no cells.
func (r Rect) Empty() bool {
	return r.Height <= 0 || r.Width <= 0
}

// contains reports whether r fully covers other.
func (r Rect) contains(other Rect) bool {
	return other.Row >= r.Row &&
		other.Col >= r.Col &&
		other.Row+other.Height <= r.Row+r.Height &&
		other.Col+other.Width <= r.Col+r.Width
}

// Covers reports whether the cell at row/col lies inside the rectangle.
func (r Rect) Covers(row, col int) bool {
	return row >= r.Row && row < r.Row+r.Height &&
		col >= r.Col && col < r.Col+r.Width
}

// DirtyRegion accumulates rectangles needing repaint. Coverage is the set
// union of all rectangles added since the last Clear; rectangles may overlap
// and union order does not affect coverage. The region never under-reports:
// a contained rectangle may be dropped, an overlapping one is kept whole.
type DirtyRegion struct {
	rects []Rect
}

// Union merges a rectangle into the region.
func (d *DirtyRegion) Union(r Rect) {
	if r.Empty() {
		return
	}
	kept := d.rects[:0]
	for _, existing := range d.rects {
		if existing.contains(r) {
			return
		}
		if !r.contains(existing) {
			kept = append(kept, existing)
		}
	}
	d.rects = append(kept, r)
}

// MarkAll replaces the region with a single rectangle covering the whole
// grid.
func (d *DirtyRegion) MarkAll(rows, cols int) {
	d.rects = d.rects[:0]
	d.Union(Rect{Row: 0, Col: 0, Height: rows, Width: cols})
}

// Clear empties the region. Called by the renderer after consuming it.
func (d *DirtyRegion) Clear() {
	d.rects = d.rects[:0]
}

// Rects returns the current covering rectangles for enumeration.
func (d *DirtyRegion) Rects() []Rect {
	return d.rects
}

// IsEmpty reports whether nothing needs repainting.
func (d *DirtyRegion) IsEmpty() bool {
	return len(d.rects) == 0
}

// Covers reports whether the given cell is inside the tracked region.
func (d *DirtyRegion) Covers(row, col int) bool {
	for _, r := range d.rects {
		if r.Covers(row, col) {
			return true
		}
	}
	return false
}
