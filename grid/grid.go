// Copyright © 2025 Neoview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: grid/grid.go
// Summary: One grid surface and its redraw-command handler.
// Usage: The manager routes decoded commands here; each instance filters by
//        its own grid id and mutates only its own state.

package grid

import (
	"log"
	"time"

	runewidth "github.com/mattn/go-runewidth"

	"github.com/framegrace/neoview/font"
	"github.com/framegrace/neoview/protocol"
)

// RootGridID is the id of the root "editor" grid.
const RootGridID = 1

// Options configures a grid instance.
type Options struct {
	Font          font.Options
	AmbiguousWide bool

	// CursorBlink supplies blink timings for modes that define none.
	CursorBlink BlinkTimings

	// InvalidateWindow is the quiet window for coalescing highlight-table
	// full invalidations. Zero applies them at the next flush.
	InvalidateWindow time.Duration

	// Clock overrides time.Now, for tests.
	Clock func() time.Time
}

// Grid is one rectangular character-cell surface: the root editor area or a
// child window/float. All state here is owned exclusively by this instance;
// batches are applied by a single logical writer.
type Grid struct {
	id       int
	parentID int
	winRow   int
	winCol   int

	buf   *Buffer
	hl    *HighlightTable
	popup PopupMenu

	modes              []ModeInfo
	modeIdx            int
	cursorStyleEnabled bool
	busy               bool
	mouseEnabled       bool

	cursorRow int
	cursorCol int
	cursor    CursorState

	fontOpts      font.Options
	metrics       font.Metrics
	cond          *runewidth.Condition
	blinkDefaults BlinkTimings

	invalidate Coalescer
	renderTick uint64

	events *EventDispatcher
	clock  func() time.Time
}

// NewGrid builds a standalone grid with a fresh highlight table. Children
// inside a hierarchy are created by the Manager with a table snapshot
// instead.
func NewGrid(id, rows, cols int, opts Options, events *EventDispatcher) *Grid {
	return newGrid(id, rows, cols, opts, events, NewHighlightTable())
}

func newGrid(id, rows, cols int, opts Options, events *EventDispatcher, table *HighlightTable) *Grid {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	if events == nil {
		events = NewEventDispatcher()
	}
	g := &Grid{
		id:                 id,
		buf:                NewBuffer(rows, cols),
		hl:                 table,
		modeIdx:            -1,
		cursorStyleEnabled: true,
		fontOpts:           opts.Font,
		cond:               font.NewCondition(opts.AmbiguousWide),
		blinkDefaults:      opts.CursorBlink,
		invalidate:         NewCoalescer(opts.InvalidateWindow),
		events:             events,
		clock:              clock,
	}
	g.metrics = font.Measure("W", g.fontOpts)
	g.popup.Selected = -1
	return g
}

// ID returns the grid id.
func (g *Grid) ID() int { return g.id }

// ParentID returns the owning grid's id, or zero for the root.
func (g *Grid) ParentID() int { return g.parentID }

// Position returns the grid's cell offset within its parent.
func (g *Grid) Position() (row, col int) { return g.winRow, g.winCol }

// Buffer exposes the cell buffer for the renderer.
func (g *Grid) Buffer() *Buffer { return g.buf }

// Highlights exposes the highlight table for read-time color resolution.
func (g *Grid) Highlights() *HighlightTable { return g.hl }

// Popup exposes the completion popup state.
func (g *Grid) Popup() *PopupMenu { return &g.popup }

// Cursor returns the derived cursor state.
func (g *Grid) Cursor() CursorState { return g.cursor }

// MouseEnabled reports whether mouse reporting is on.
func (g *Grid) MouseEnabled() bool { return g.mouseEnabled }

// Metrics returns the current glyph cell metrics.
func (g *Grid) Metrics() font.Metrics { return g.metrics }

// RenderTick returns the flush counter; it increments exactly once per
// flush command.
func (g *Grid) RenderTick() uint64 { return g.renderTick }

// PixelSize returns the grid's surface size in pixels.
func (g *Grid) PixelSize() (w, h int) {
	return g.buf.Cols() * g.metrics.Width, g.buf.Rows() * g.metrics.Height
}

// DisplayWidth measures a string in cells under the grid's ambiguous-width
// profile.
func (g *Grid) DisplayWidth(s string) int {
	return g.cond.StringWidth(s)
}

// HandleCommand applies one decoded redraw command. Commands addressed to a
// different grid id are ignored; hierarchy and notification commands are
// owned by the Manager and skipped here. Unknown commands are logged and
// dropped, never fatal.
func (g *Grid) HandleCommand(cmd protocol.Command) {
	switch c := cmd.(type) {
	case protocol.HighlightDefine:
		g.hl.Define(c.ID, AttrFromCommand(c))
		g.invalidate.Request(g.clock())
		if c.ID == 0 && g.id == RootGridID {
			g.events.Broadcast(Event{Type: EventBackgroundChanged, Grid: g.id})
		}
		g.recomputeCursor()

	case protocol.SemanticGroupSet:
		g.hl.SetGroup(c.Name, c.ID)

	case protocol.DefaultColorsSet:
		fg, bg, sp := g.hl.Defaults()
		if col, ok := ColorFromPacked(c.Fg); ok {
			fg = col
		}
		if col, ok := ColorFromPacked(c.Bg); ok {
			bg = col
		}
		if col, ok := ColorFromPacked(c.Sp); ok {
			sp = col
		}
		g.hl.SetDefaults(fg, bg, sp)
		g.invalidate.Request(g.clock())
		if g.id == RootGridID {
			g.events.Broadcast(Event{Type: EventBackgroundChanged, Grid: g.id})
		}
		g.recomputeCursor()

	case protocol.ModeInfoSet:
		g.cursorStyleEnabled = c.CursorStyleEnabled
		g.modes = g.modes[:0]
		for _, m := range c.Modes {
			g.modes = append(g.modes, modeFromCommand(m))
		}
		g.cursor.Visible = g.cursorStyleEnabled && !g.busy
		g.recomputeCursor()

	case protocol.ModeChange:
		g.modeIdx = c.Index
		g.recomputeCursor()

	case protocol.GridResize:
		if c.Grid != g.id {
			return
		}
		g.buf.Resize(c.Rows, c.Cols)
		g.emitPixelSize()
		g.recomputeCursor()

	case protocol.GridClear:
		if c.Grid != g.id {
			return
		}
		g.buf.Clear()

	case protocol.GridLine:
		if c.Grid != g.id {
			return
		}
		start, end, ok := g.buf.WriteRun(c.Row, c.ColStart, c.Cells, g.hl)
		if ok && g.cursorRow == c.Row && g.cursorCol >= start && g.cursorCol < end {
			g.recomputeCursor()
		}

	case protocol.GridCursorGoto:
		if c.Grid != g.id {
			return
		}
		g.cursorRow, g.cursorCol = c.Row, c.Col
		g.recomputeCursor()

	case protocol.GridScroll:
		if c.Grid != g.id {
			return
		}
		if c.Cols != 0 {
			log.Printf("grid %d: ignoring scroll with nonzero column delta %d", g.id, c.Cols)
			return
		}
		region, ok := g.buf.Scroll(c.Top, c.Bot, c.Left, c.Right, c.Rows)
		if ok && region.Covers(g.cursorRow, g.cursorCol) {
			g.recomputeCursor()
		}

	case protocol.BusySet:
		g.busy = c.Busy
		g.cursor.Visible = g.cursorStyleEnabled && !g.busy

	case protocol.OptionSet:
		g.handleOption(c)

	case protocol.MouseEnableSet:
		g.mouseEnabled = c.Enabled

	case protocol.PopupMenuShow:
		if c.Grid != g.id {
			return
		}
		g.popup.Show(c.Items, c.Selected, c.Row, c.Col, g.buf.Rows(), g.buf.Cols(), g.DisplayWidth)
		g.buf.Dirty().Union(g.popup.Bounds())

	case protocol.PopupMenuSelect:
		if !g.popup.Visible {
			return
		}
		g.popup.Select(c.Selected)
		g.buf.Dirty().Union(g.popup.Bounds())

	case protocol.PopupMenuHide:
		if !g.popup.Visible {
			return
		}
		stale := g.popup.Bounds()
		g.popup.Hide()
		g.buf.Dirty().Union(stale)

	case protocol.Flush, protocol.Bell, protocol.TitleSet, protocol.IconSet,
		protocol.GridDestroy, protocol.WindowPosSet:
		// Hierarchy and notification commands are handled by the Manager.

	case protocol.Unknown:
		log.Printf("grid %d: ignoring unknown redraw command %q", g.id, c.Name)

	default:
		log.Printf("grid %d: ignoring unhandled command %T", g.id, cmd)
	}
}

func (g *Grid) handleOption(c protocol.OptionSet) {
	value, isString := c.Value.(string)
	switch c.Name {
	case "guifont":
		if !isString {
			log.Printf("grid %d: ignoring non-string guifont value %v", g.id, c.Value)
			return
		}
		if next, ok := font.ApplySizeDelta(g.fontOpts.Size, value); ok {
			g.fontOpts.Size = next
		} else if name, size, ok := font.ParseGuifont(value); ok {
			g.fontOpts.Name = name
			if size > 0 {
				g.fontOpts.Size = size
			}
		} else {
			return
		}
		g.reconfigureFont()
	case "guifontwide":
		if !isString {
			return
		}
		if name, _, ok := font.ParseGuifont(value); ok {
			g.fontOpts.WideName = name
			g.reconfigureFont()
		}
	case "ambiwidth":
		if !isString {
			return
		}
		g.cond = font.NewCondition(value == "double")
		g.recomputeCursor()
	default:
		log.Printf("grid %d: ignoring option %q", g.id, c.Name)
	}
}

// reconfigureFont remeasures the glyph cell and invalidates everything so
// the renderer repaints at the new geometry.
func (g *Grid) reconfigureFont() {
	g.metrics = font.Measure("W", g.fontOpts)
	g.buf.Dirty().MarkAll(g.buf.Rows(), g.buf.Cols())
	g.events.Broadcast(Event{Type: EventFontChanged, Grid: g.id, Payload: g.metrics})
	g.emitPixelSize()
	g.recomputeCursor()
}

func (g *Grid) emitPixelSize() {
	w, h := g.PixelSize()
	g.events.Broadcast(Event{Type: EventPixelSizeChanged, Grid: g.id, Payload: PixelSize{Width: w, Height: h}})
}

func (g *Grid) setWindowPos(row, col int) {
	g.winRow, g.winCol = row, col
}

// finishBatch runs at every flush: applies a due coalesced invalidation and
// advances the render tick.
func (g *Grid) finishBatch(now time.Time) {
	g.applyDueInvalidate(now)
	g.renderTick++
}

func (g *Grid) applyDueInvalidate(now time.Time) bool {
	if !g.invalidate.Due(now) {
		return false
	}
	g.buf.Dirty().MarkAll(g.buf.Rows(), g.buf.Cols())
	return true
}

// recomputeCursor rebuilds the derived cursor state from the active mode,
// the highlight table, and the cell under the cursor. It is a no-op while
// the mode table is empty, the index is unset, or the position is outside
// the buffer (a stale command racing a resize).
func (g *Grid) recomputeCursor() {
	if len(g.modes) == 0 || g.modeIdx < 0 || g.modeIdx >= len(g.modes) {
		return
	}
	cell, ok := g.buf.CellAt(g.cursorRow, g.cursorCol)
	if !ok {
		return
	}
	mode := g.modes[g.modeIdx]

	hlID := mode.AttrID
	if hlID == 0 {
		hlID = cell.HlID
	}
	attrs := g.hl.Resolve(hlID)
	fg, bg, sp := attrs.Fg, attrs.Bg, attrs.Sp
	if hlID == 0 {
		// No mode-specific override: reverse so the cursor stays visible
		// against default-colored text.
		fg = fg.ReverseVideo()
		bg = bg.ReverseVideo()
		sp = sp.ReverseVideo()
	}

	width := g.cond.StringWidth(cell.Text)
	if width < 1 {
		width = 1
	}

	blink := BlinkTimings{On: mode.BlinkOn, Off: mode.BlinkOff, Wait: mode.BlinkWait}
	if blink.On == 0 && blink.Off == 0 {
		blink = g.blinkDefaults
	}

	g.cursor = CursorState{
		GridID:         g.id,
		Row:            g.cursorRow,
		Col:            g.cursorCol,
		Shape:          mode.Shape,
		CellPercentage: mode.CellPercentage,
		Fg:             fg,
		Bg:             bg,
		Sp:             sp,
		BlinkOn:        blink.On,
		BlinkOff:       blink.Off,
		BlinkWait:      blink.Wait,
		Width:          width * g.metrics.Width,
		Visible:        g.cursorStyleEnabled && !g.busy,
	}
}
