// Copyright © 2025 Neoview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: render/renderer.go
// Summary: Reference tcell painter consuming the grid engine's dirty regions.
// Usage: Subscribe the renderer to the manager's dispatcher; call Tick on a
//        fixed timer for flush pacing, blink, and bell flash expiry.

package render

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/neoview/grid"
)

// flashDuration is how long the visual-bell inversion stays on screen.
const flashDuration = 120 * time.Millisecond

// Options configures the renderer.
type Options struct {
	// FlushInterval caps paint frequency; held paints release on Tick.
	// Zero paints on every flush.
	FlushInterval time.Duration

	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// Renderer paints the grid hierarchy onto a tcell screen. Only the rects in
// each grid's dirty region are repainted; the region is consumed and cleared
// in the same pass. The renderer runs on the caller's goroutine: events and
// Tick must come from the same loop that applies batches.
type Renderer struct {
	screen  tcell.Screen
	mgr     *grid.Manager
	limiter grid.FlushLimiter
	clock   func() time.Time

	flashUntil time.Time
	blinkPhase grid.BlinkPhase
	blinkAt    time.Time

	// Last cell the cursor overlay was drawn on, grid-local. Invalidated at
	// the start of every paint so motion and blink-off never leave a ghost.
	lastCursorGrid int
	lastCursorRect grid.Rect
	hasLastCursor  bool
}

// New builds a renderer and subscribes it to the manager's events.
func New(screen tcell.Screen, mgr *grid.Manager, opts Options) *Renderer {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	r := &Renderer{
		screen:  screen,
		mgr:     mgr,
		limiter: grid.NewFlushLimiter(opts.FlushInterval),
		clock:   clock,
	}
	mgr.Events().Subscribe(r)
	return r
}

// OnEvent reacts to engine events: flushes trigger a (rate-limited) paint,
// visual bells start a flash, hierarchy and appearance changes force a full
// repaint of the affected area.
func (r *Renderer) OnEvent(ev grid.Event) {
	now := r.clock()
	switch ev.Type {
	case grid.EventFlush:
		if r.limiter.Request(now) {
			r.Paint()
		}

	case grid.EventVisualBell:
		r.flashUntil = now.Add(flashDuration)
		r.invalidateAll()
		r.Paint()

	case grid.EventGridCreated, grid.EventGridDestroyed, grid.EventBackgroundChanged:
		// Child geometry changed or the backdrop did: the root must repaint
		// the cells it no longer shares with a child.
		r.invalidateAll()

	case grid.EventFontChanged, grid.EventPixelSizeChanged:
		// Cell geometry is the terminal's own; nothing to remeasure here.
	}
}

// Tick drives time-based behavior: held paints, coalesced invalidations,
// flash expiry, and cursor blink. Call it on a fixed interval.
func (r *Renderer) Tick() {
	now := r.clock()
	paint := r.limiter.Drain(now)
	if r.mgr.Tick(now) {
		paint = true
	}
	if !r.flashUntil.IsZero() && !now.Before(r.flashUntil) {
		r.flashUntil = time.Time{}
		r.invalidateAll()
		paint = true
	}
	if r.advanceBlink(now) {
		paint = true
	}
	if paint {
		r.Paint()
	}
}

func (r *Renderer) invalidateAll() {
	for _, id := range r.mgr.GridIDs() {
		g := r.mgr.Grid(id)
		g.Buffer().Dirty().MarkAll(g.Buffer().Rows(), g.Buffer().Cols())
	}
}

func (r *Renderer) advanceBlink(now time.Time) bool {
	cursor := r.cursorGrid().Cursor()
	if !cursor.Blinking() {
		if r.blinkPhase != grid.BlinkSteady {
			r.blinkPhase = grid.BlinkSteady
			return true
		}
		return false
	}
	if r.blinkPhase == grid.BlinkSteady || !now.Before(r.blinkAt) {
		next, delay := cursor.NextBlink(r.blinkPhase)
		r.blinkPhase = next
		r.blinkAt = now.Add(delay)
		return true
	}
	return false
}

func (r *Renderer) cursorGrid() *grid.Grid {
	if g := r.mgr.CursorGrid(); g != nil {
		return g
	}
	return r.mgr.Root()
}

// Paint repaints every dirty rect of every grid, root first so children
// overlay it, then the popup and the cursor, and shows the result.
func (r *Renderer) Paint() {
	r.invalidateLastCursor()
	flash := !r.flashUntil.IsZero()
	for _, id := range r.mgr.GridIDs() {
		g := r.mgr.Grid(id)
		offRow, offCol := 0, 0
		if id != grid.RootGridID {
			offRow, offCol = g.Position()
		}
		r.paintGrid(g, offRow, offCol, flash)
	}
	r.paintPopup()
	r.paintCursor()
	r.screen.Show()
}

func (r *Renderer) paintGrid(g *grid.Grid, offRow, offCol int, flash bool) {
	dirty := g.Buffer().Dirty()
	rects := append([]grid.Rect(nil), dirty.Rects()...)
	dirty.Clear()

	for _, rect := range rects {
		for row := rect.Row; row < rect.Row+rect.Height; row++ {
			skip := false
			for col := rect.Col; col < rect.Col+rect.Width; col++ {
				if skip {
					skip = false
					continue
				}
				skip = r.paintCell(g, row, col, offRow, offCol, flash)
			}
		}
	}
}

// paintCell draws one cell and reports whether the following cell is the
// second half of a wide glyph and must be skipped.
func (r *Renderer) paintCell(g *grid.Grid, row, col, offRow, offCol int, flash bool) bool {
	cell, ok := g.Buffer().CellAt(row, col)
	if !ok {
		return false
	}
	attrs := g.Highlights().Resolve(cell.HlID)
	style := styleFor(attrs, flash)

	primary, combining := splitCluster(cell.Text)
	r.screen.SetContent(offCol+col, offRow+row, primary, combining, style)

	if g.DisplayWidth(cell.Text) > 1 {
		next, ok := g.Buffer().CellAt(row, col+1)
		return ok && next.Text == ""
	}
	return false
}

func (r *Renderer) paintPopup() {
	for _, id := range r.mgr.GridIDs() {
		g := r.mgr.Grid(id)
		p := g.Popup()
		if !p.Visible {
			continue
		}
		offRow, offCol := 0, 0
		if id != grid.RootGridID {
			offRow, offCol = g.Position()
		}
		r.paintPopupBox(g, offRow, offCol)
	}
}

func (r *Renderer) paintPopupBox(g *grid.Grid, offRow, offCol int) {
	p := g.Popup()
	bounds := p.Bounds()
	table := g.Highlights()
	normal := styleFor(table.GroupAttr("Pmenu"), false)
	selected := styleFor(table.GroupAttr("PmenuSel"), false)
	if !table.HasGroup("PmenuSel") {
		// Without a mapped selection group, invert the normal colors.
		attrs := table.GroupAttr("Pmenu")
		attrs.Fg, attrs.Bg = attrs.Fg.ReverseVideo(), attrs.Bg.ReverseVideo()
		selected = styleFor(attrs, false)
	}

	start, end := p.Window()
	textWidth := bounds.Width - 2*popupTextInset
	for line := 0; line < bounds.Height; line++ {
		style := normal
		label := ""
		if idx := start + line; idx < end {
			if idx == p.Selected {
				style = selected
			}
			label = grid.TruncateToWidth(p.Items[idx].Word, textWidth, g.DisplayWidth)
		}
		r.paintPopupLine(offRow+bounds.Row+line, offCol+bounds.Col, bounds.Width, label, style, g)
	}
}

// popupTextInset is the horizontal padding drawn inside the popup box.
const popupTextInset = 1

func (r *Renderer) paintPopupLine(y, x, width int, label string, style tcell.Style, g *grid.Grid) {
	col := 0
	for ; col < popupTextInset && col < width; col++ {
		r.screen.SetContent(x+col, y, ' ', nil, style)
	}
	for _, cluster := range clusters(label) {
		w := g.DisplayWidth(cluster)
		if col+w > width-popupTextInset {
			break
		}
		primary, combining := splitCluster(cluster)
		r.screen.SetContent(x+col, y, primary, combining, style)
		col += w
	}
	for ; col < width; col++ {
		r.screen.SetContent(x+col, y, ' ', nil, style)
	}
}

func (r *Renderer) paintCursor() {
	g := r.cursorGrid()
	c := g.Cursor()
	if !c.Visible || r.blinkPhase == grid.BlinkHidden {
		return
	}
	cell, ok := g.Buffer().CellAt(c.Row, c.Col)
	if !ok {
		return
	}
	offRow, offCol := 0, 0
	if g.ID() != grid.RootGridID {
		offRow, offCol = g.Position()
	}

	style := tcell.StyleDefault.
		Foreground(toTcell(c.Fg)).
		Background(toTcell(c.Bg))
	if c.Shape != grid.CursorBlock {
		// Terminal cells cannot draw partial bars; fall back to underlining
		// the cell for non-block shapes.
		style = styleFor(g.Highlights().Resolve(cell.HlID), false).Underline(true)
	}
	primary, combining := splitCluster(cell.Text)
	r.screen.SetContent(offCol+c.Col, offRow+c.Row, primary, combining, style)

	width := g.DisplayWidth(cell.Text)
	if width < 1 {
		width = 1
	}
	r.lastCursorGrid = g.ID()
	r.lastCursorRect = grid.Rect{Row: c.Row, Col: c.Col, Height: 1, Width: width}
	r.hasLastCursor = true
}

// invalidateLastCursor dirties the cell the cursor overlay last covered so
// the regular grid pass repaints it before a new overlay is drawn.
func (r *Renderer) invalidateLastCursor() {
	if !r.hasLastCursor {
		return
	}
	if g := r.mgr.Grid(r.lastCursorGrid); g != nil {
		g.Buffer().Dirty().Union(r.lastCursorRect)
	}
	r.hasLastCursor = false
}

// styleFor translates resolved highlight attributes into a tcell style. The
// flash flag inverts colors for the visual bell.
func styleFor(attrs grid.ResolvedAttr, flash bool) tcell.Style {
	fg, bg := attrs.Fg, attrs.Bg
	if flash {
		fg, bg = fg.ReverseVideo(), bg.ReverseVideo()
	}
	style := tcell.StyleDefault.
		Foreground(toTcell(fg)).
		Background(toTcell(bg)).
		Bold(attrs.Bold).
		Italic(attrs.Italic).
		StrikeThrough(attrs.Strikethrough)
	if attrs.Undercurl {
		style = style.Underline(tcell.UnderlineStyleCurly, toTcell(attrs.Sp))
	} else if attrs.Underline {
		style = style.Underline(true)
	}
	return style
}

func toTcell(c grid.Color) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

func splitCluster(s string) (rune, []rune) {
	if s == "" {
		return ' ', nil
	}
	runes := []rune(s)
	if len(runes) == 1 {
		return runes[0], nil
	}
	return runes[0], runes[1:]
}

func clusters(s string) []string {
	return grid.Graphemes(s)
}
