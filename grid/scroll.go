// Copyright © 2025 Neoview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: grid/scroll.go
// Summary: Scroll-region blit over the cell buffer.

package grid

// Scroll shifts the region [top,bot) x [left,right) vertically by rowDelta.
// Positive rowDelta scrolls content up (rows move towards top), negative
// scrolls down. Only the [left,right) column span of each row is copied, and
// each destination row is marked dirty. Iteration order follows the copy
// direction so overlapping source and destination bands never corrupt data.
// Returns the clamped region actually touched, or ok=false for a no-op.
func (b *Buffer) Scroll(top, bot, left, right, rowDelta int) (region Rect, ok bool) {
	if rowDelta == 0 {
		return Rect{}, false
	}
	if top < 0 {
		top = 0
	}
	if bot > b.rows {
		bot = b.rows
	}
	if left < 0 {
		left = 0
	}
	if right > b.cols {
		right = b.cols
	}
	if top >= bot || left >= right {
		return Rect{}, false
	}

	blit := func(dst, src int) {
		copy(b.cells[dst][left:right], b.cells[src][left:right])
		b.dirty.Union(Rect{Row: dst, Col: left, Height: 1, Width: right - left})
	}

	if rowDelta > 0 {
		// Content moves up: walk top to bottom.
		for src := top + rowDelta; src < bot; src++ {
			blit(src-rowDelta, src)
		}
	} else {
		// Content moves down: walk bottom to top.
		for src := bot + rowDelta - 1; src >= top; src-- {
			blit(src-rowDelta, src)
		}
	}

	return Rect{Row: top, Col: left, Height: bot - top, Width: right - left}, true
}
