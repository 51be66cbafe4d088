// Copyright © 2025 Neoview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: grid/popup.go
// Summary: Completion popup placement and selection state.

package grid

import (
	"github.com/rivo/uniseg"

	"github.com/framegrace/neoview/protocol"
)

// maxPopupRows bounds the popup height before it scrolls.
const maxPopupRows = 10

// popupPadding is the horizontal padding inside the popup box.
const popupPadding = 1

// PopupMenu holds the completion list, its selection, and the box placement
// computed against the owning grid's geometry.
type PopupMenu struct {
	Items    []protocol.PopupItem
	Selected int
	Visible  bool

	AnchorRow int
	AnchorCol int

	bounds Rect
	scroll int // first visible item index
}

// Show installs a new item list anchored below a grid cell and computes the
// box placement. The box is clamped to the grid and flips above the anchor
// when there is more room there than below.
func (p *PopupMenu) Show(items []protocol.PopupItem, selected, row, col, gridRows, gridCols int, width func(string) int) {
	p.Items = items
	p.Selected = selected
	p.Visible = true
	p.AnchorRow = row
	p.AnchorCol = col
	p.scroll = 0

	boxW := 0
	for _, item := range items {
		if w := width(item.Word); w > boxW {
			boxW = w
		}
	}
	boxW += 2 * popupPadding
	if boxW > gridCols {
		boxW = gridCols
	}

	boxH := len(items)
	if boxH > maxPopupRows {
		boxH = maxPopupRows
	}
	below := gridRows - row - 1
	above := row
	boxRow := row + 1
	if boxH > below && above > below {
		if boxH > above {
			boxH = above
		}
		boxRow = row - boxH
	} else if boxH > below {
		boxH = below
	}
	if boxH < 1 {
		boxH = 1
		boxRow = clampInt(row, 0, gridRows-1)
	}

	boxCol := clampInt(col, 0, gridCols-boxW)
	if boxCol < 0 {
		boxCol = 0
	}

	p.bounds = Rect{Row: boxRow, Col: boxCol, Height: boxH, Width: boxW}
	p.ensureSelectionVisible()
}

// Select moves the selection; -1 clears it. The visible window follows the
// selection.
func (p *PopupMenu) Select(selected int) {
	if !p.Visible {
		return
	}
	if selected < -1 || selected >= len(p.Items) {
		selected = -1
	}
	p.Selected = selected
	p.ensureSelectionVisible()
}

// Hide dismisses the popup.
func (p *PopupMenu) Hide() {
	p.Visible = false
	p.Items = nil
	p.Selected = -1
	p.scroll = 0
}

// Bounds returns the computed box rectangle.
func (p *PopupMenu) Bounds() Rect {
	return p.bounds
}

// Window returns the half-open index range of items currently visible.
func (p *PopupMenu) Window() (start, end int) {
	start = p.scroll
	end = start + p.bounds.Height
	if end > len(p.Items) {
		end = len(p.Items)
	}
	return start, end
}

// Overflows reports whether the list is taller than the box, i.e. whether a
// scrollbar is needed.
func (p *PopupMenu) Overflows() bool {
	return len(p.Items) > p.bounds.Height
}

func (p *PopupMenu) ensureSelectionVisible() {
	if p.Selected < 0 || p.bounds.Height <= 0 {
		return
	}
	if p.Selected < p.scroll {
		p.scroll = p.Selected
	}
	if p.Selected >= p.scroll+p.bounds.Height {
		p.scroll = p.Selected - p.bounds.Height + 1
	}
}

// TruncateToWidth cuts a label at grapheme-cluster boundaries so it fits the
// given display width.
func TruncateToWidth(s string, max int, width func(string) int) string {
	if width(s) <= max {
		return s
	}
	var out []byte
	used := 0
	state := -1
	rest := s
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		w := width(cluster)
		if used+w > max {
			break
		}
		out = append(out, cluster...)
		used += w
	}
	return string(out)
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
