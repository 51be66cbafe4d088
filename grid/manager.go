// Copyright © 2025 Neoview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: grid/manager.go
// Summary: Grid hierarchy arena and batch-level command routing.
//
// The manager owns the tree of grids as an arena addressed by integer id:
// the root editor grid is id 1 and every other grid records its parent id,
// avoiding back-pointers. Batches are applied sequentially in full command
// order; the renderer only observes state between batches.

package grid

import (
	"log"
	"sort"
	"strings"
	"time"

	"github.com/framegrace/neoview/protocol"
)

// Manager routes redraw batches to grid instances and owns grid lifecycle.
type Manager struct {
	opts   Options
	events *EventDispatcher
	clock  func() time.Time

	grids   map[int]*Grid
	parents map[int]int

	cursorGridID int

	title string
	icon  string
}

// NewManager creates a hierarchy with a root grid of the given geometry.
func NewManager(rows, cols int, opts Options) *Manager {
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	events := NewEventDispatcher()
	m := &Manager{
		opts:         opts,
		events:       events,
		clock:        clock,
		grids:        make(map[int]*Grid),
		parents:      make(map[int]int),
		cursorGridID: RootGridID,
	}
	m.grids[RootGridID] = newGrid(RootGridID, rows, cols, opts, events, NewHighlightTable())
	return m
}

// Events returns the dispatcher collaborators subscribe to.
func (m *Manager) Events() *EventDispatcher { return m.events }

// Root returns the editor grid.
func (m *Manager) Root() *Grid { return m.grids[RootGridID] }

// Grid returns the grid with the given id, or nil.
func (m *Manager) Grid(id int) *Grid { return m.grids[id] }

// GridIDs returns all live grid ids in ascending order, root first.
func (m *Manager) GridIDs() []int {
	ids := make([]int, 0, len(m.grids))
	for id := range m.grids {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Title returns the forwarded window title.
func (m *Manager) Title() string { return m.title }

// Icon returns the forwarded icon title.
func (m *Manager) Icon() string { return m.icon }

// RenderTick returns the root grid's flush counter.
func (m *Manager) RenderTick() uint64 { return m.Root().renderTick }

// CursorGrid returns the grid the last cursor-goto addressed.
func (m *Manager) CursorGrid() *Grid { return m.grids[m.cursorGridID] }

// Apply applies one redraw batch in command order. Hierarchy and
// notification commands are handled here; everything else is routed to each
// grid instance, which filters by its own id.
func (m *Manager) Apply(batch []protocol.Command) {
	now := m.clock()
	for _, cmd := range batch {
		switch c := cmd.(type) {
		case protocol.GridResize:
			m.ensure(c.Grid, c.Rows, c.Cols)
			m.route(cmd)

		case protocol.WindowPosSet:
			// Only the root processes window placement; it creates the child
			// on first sight and repositions (never recreates) afterwards.
			if c.Grid == RootGridID {
				log.Printf("grid: ignoring window position for root grid")
				break
			}
			g := m.ensure(c.Grid, c.Rows, c.Cols)
			g.setWindowPos(c.StartRow, c.StartCol)
			if g.buf.Rows() != c.Rows || g.buf.Cols() != c.Cols {
				g.buf.Resize(c.Rows, c.Cols)
				g.emitPixelSize()
				g.recomputeCursor()
			}

		case protocol.GridCursorGoto:
			// The last goto designates the cursor-owning grid globally.
			if _, ok := m.grids[c.Grid]; ok {
				m.cursorGridID = c.Grid
			}
			m.route(cmd)

		case protocol.GridDestroy:
			m.destroy(c.Grid)

		case protocol.TitleSet:
			m.title = c.Title
			m.events.Broadcast(Event{Type: EventTitleChanged, Payload: c.Title})

		case protocol.IconSet:
			m.icon = c.Icon
			m.events.Broadcast(Event{Type: EventIconChanged, Payload: c.Icon})

		case protocol.Bell:
			t := EventBell
			if c.Visual {
				t = EventVisualBell
			}
			m.events.Broadcast(Event{Type: t})

		case protocol.Flush:
			for _, id := range m.GridIDs() {
				m.grids[id].finishBatch(now)
			}
			m.events.Broadcast(Event{Type: EventFlush, Grid: RootGridID, Payload: m.RenderTick()})

		default:
			m.route(cmd)
		}
	}
}

func (m *Manager) route(cmd protocol.Command) {
	if target, ok := gridTarget(cmd); ok {
		if _, live := m.grids[target]; !live {
			log.Printf("grid: dropping %T for unknown grid %d", cmd, target)
			return
		}
	}
	for _, id := range m.GridIDs() {
		m.grids[id].HandleCommand(cmd)
	}
}

// gridTarget extracts the addressed grid id from grid-targeted commands.
// Commands without an id (mode table, highlights, options) route everywhere.
func gridTarget(cmd protocol.Command) (int, bool) {
	switch c := cmd.(type) {
	case protocol.GridLine:
		return c.Grid, true
	case protocol.GridClear:
		return c.Grid, true
	case protocol.GridScroll:
		return c.Grid, true
	case protocol.GridCursorGoto:
		return c.Grid, true
	case protocol.PopupMenuShow:
		return c.Grid, true
	}
	return 0, false
}

// ensure returns the grid with the given id, creating it as a child of the
// root on first sight. Children start from a snapshot of the root's current
// highlight table and font; later root-level table updates reach them
// because table commands are routed to every instance (see DESIGN.md).
func (m *Manager) ensure(id, rows, cols int) *Grid {
	if g, ok := m.grids[id]; ok {
		return g
	}
	root := m.Root()
	opts := m.opts
	opts.Font = root.fontOpts
	g := newGrid(id, rows, cols, opts, m.events, root.hl.Clone())
	g.parentID = RootGridID
	g.modes = append([]ModeInfo(nil), root.modes...)
	g.modeIdx = root.modeIdx
	g.cursorStyleEnabled = root.cursorStyleEnabled
	m.grids[id] = g
	m.parents[id] = RootGridID
	m.events.Broadcast(Event{Type: EventGridCreated, Grid: id})
	return g
}

func (m *Manager) destroy(id int) {
	if id == RootGridID {
		log.Printf("grid: ignoring destroy for root grid")
		return
	}
	if _, ok := m.grids[id]; !ok {
		log.Printf("grid: ignoring destroy for unknown grid %d", id)
		return
	}
	delete(m.grids, id)
	delete(m.parents, id)
	if m.cursorGridID == id {
		m.cursorGridID = RootGridID
	}
	m.events.Broadcast(Event{Type: EventGridDestroyed, Grid: id})
}

// Tick applies any due coalesced invalidations outside a batch. Returns
// true when something was invalidated and a repaint is warranted.
func (m *Manager) Tick(now time.Time) bool {
	applied := false
	for _, id := range m.GridIDs() {
		if m.grids[id].applyDueInvalidate(now) {
			applied = true
		}
	}
	return applied
}

// GridSnapshot captures one grid's geometry and text for persistence.
type GridSnapshot struct {
	GridID   int
	ParentID int
	Row      int
	Col      int
	Rows     int
	Cols     int
	Lines    []string
}

// Snapshot captures all live grids, root first. Cell highlights are not
// persisted; restored content renders with default colors until the editor
// repaints it.
func (m *Manager) Snapshot() []GridSnapshot {
	var out []GridSnapshot
	for _, id := range m.GridIDs() {
		g := m.grids[id]
		snap := GridSnapshot{
			GridID:   id,
			ParentID: g.parentID,
			Row:      g.winRow,
			Col:      g.winCol,
			Rows:     g.buf.Rows(),
			Cols:     g.buf.Cols(),
		}
		for row := 0; row < g.buf.Rows(); row++ {
			var line strings.Builder
			for col := 0; col < g.buf.Cols(); col++ {
				cell, _ := g.buf.CellAt(row, col)
				if cell.Text == "" {
					line.WriteByte(' ')
				} else {
					line.WriteString(cell.Text)
				}
			}
			snap.Lines = append(snap.Lines, strings.TrimRight(line.String(), " "))
		}
		out = append(out, snap)
	}
	return out
}

// Restore replays persisted snapshots into the hierarchy. Every restored
// grid is fully invalidated so the first paint is complete.
func (m *Manager) Restore(snaps []GridSnapshot) {
	for _, snap := range snaps {
		var g *Grid
		if snap.GridID == RootGridID {
			g = m.Root()
			g.buf.Resize(snap.Rows, snap.Cols)
		} else {
			g = m.ensure(snap.GridID, snap.Rows, snap.Cols)
			g.setWindowPos(snap.Row, snap.Col)
		}
		for row, line := range snap.Lines {
			if row >= g.buf.Rows() {
				break
			}
			col := 0
			for _, cluster := range Graphemes(line) {
				if col >= g.buf.Cols() {
					break
				}
				g.buf.cells[row][col] = Cell{Text: cluster}
				col++
			}
		}
		g.buf.Dirty().MarkAll(g.buf.Rows(), g.buf.Cols())
	}
}
