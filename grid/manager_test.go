package grid

import (
	"testing"
	"time"

	"github.com/framegrace/neoview/protocol"
)

type recordingListener struct {
	events []Event
}

func (l *recordingListener) OnEvent(ev Event) {
	l.events = append(l.events, ev)
}

func (l *recordingListener) count(t EventType) int {
	n := 0
	for _, ev := range l.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

func TestApplyBatchEndToEnd(t *testing.T) {
	m := NewManager(24, 80, Options{})
	root := m.Root()
	root.Buffer().Dirty().Clear()
	tickBefore := m.RenderTick()

	m.Apply([]protocol.Command{
		protocol.DefaultColorsSet{Fg: 0xffffff, Bg: 0x000000, Sp: 0xff0000},
		protocol.GridResize{Grid: 1, Rows: 5, Cols: 5},
		protocol.GridLine{Grid: 1, Row: 0, ColStart: 0, Cells: []protocol.CellRun{
			{Text: "H", HlID: 1},
			{Text: "i", HlID: protocol.HlInherit},
		}},
		protocol.Flush{},
	})

	want := []string{"H", "i", "", "", ""}
	for col, text := range want {
		cell, ok := root.Buffer().CellAt(0, col)
		if !ok {
			t.Fatalf("cell 0,%d out of bounds", col)
		}
		if cell.Text != text {
			t.Fatalf("cell 0,%d: %q, want %q", col, cell.Text, text)
		}
	}
	if cell, _ := root.Buffer().CellAt(0, 1); cell.HlID != 1 {
		t.Fatalf("inherited hl lost: %#v", cell)
	}
	if !root.Buffer().Dirty().Covers(0, 0) || !root.Buffer().Dirty().Covers(0, 1) {
		t.Fatalf("written cells not dirty")
	}
	if got := m.RenderTick(); got != tickBefore+1 {
		t.Fatalf("render tick %d, want %d", got, tickBefore+1)
	}

	fg, bg, sp := root.Highlights().Defaults()
	if fg != (Color{0xff, 0xff, 0xff}) || bg != (Color{0, 0, 0}) || sp != (Color{0xff, 0, 0}) {
		t.Fatalf("defaults not applied: %s %s %s", fg.Hex(), bg.Hex(), sp.Hex())
	}
}

func TestFlushBroadcastsOnce(t *testing.T) {
	m := NewManager(10, 10, Options{})
	var l recordingListener
	m.Events().Subscribe(&l)

	m.Apply([]protocol.Command{
		protocol.WindowPosSet{Grid: 2, StartRow: 1, StartCol: 1, Rows: 4, Cols: 4},
		protocol.Flush{},
	})

	if got := l.count(EventFlush); got != 1 {
		t.Fatalf("flush broadcast %d times with two grids live, want 1", got)
	}
}

func TestWindowPosCreatesAndRepositionsChild(t *testing.T) {
	m := NewManager(24, 80, Options{})
	var l recordingListener
	m.Events().Subscribe(&l)

	m.Apply([]protocol.Command{
		protocol.WindowPosSet{Grid: 3, StartRow: 2, StartCol: 4, Rows: 10, Cols: 30},
	})
	child := m.Grid(3)
	if child == nil {
		t.Fatalf("child grid not created")
	}
	if child.ParentID() != RootGridID {
		t.Fatalf("child parent %d, want root", child.ParentID())
	}
	if row, col := child.Position(); row != 2 || col != 4 {
		t.Fatalf("child at %d,%d, want 2,4", row, col)
	}
	if child.Buffer().Rows() != 10 || child.Buffer().Cols() != 30 {
		t.Fatalf("child geometry %dx%d", child.Buffer().Rows(), child.Buffer().Cols())
	}
	if l.count(EventGridCreated) != 1 {
		t.Fatalf("grid-created not broadcast")
	}

	// Reposition with identical geometry must not recreate or resize.
	child.Buffer().WriteRun(0, 0, []protocol.CellRun{{Text: "x", HlID: 0}}, child.Highlights())
	m.Apply([]protocol.Command{
		protocol.WindowPosSet{Grid: 3, StartRow: 5, StartCol: 6, Rows: 10, Cols: 30},
	})
	if m.Grid(3) != child {
		t.Fatalf("reposition recreated the grid")
	}
	if row, col := child.Position(); row != 5 || col != 6 {
		t.Fatalf("reposition not applied: %d,%d", row, col)
	}
	if cell, _ := child.Buffer().CellAt(0, 0); cell.Text != "x" {
		t.Fatalf("reposition discarded content")
	}
	if l.count(EventGridCreated) != 1 {
		t.Fatalf("reposition broadcast a second creation")
	}
}

func TestWindowPosForRootIgnored(t *testing.T) {
	m := NewManager(24, 80, Options{})
	m.Apply([]protocol.Command{
		protocol.WindowPosSet{Grid: RootGridID, StartRow: 3, StartCol: 3, Rows: 5, Cols: 5},
	})
	if row, col := m.Root().Position(); row != 0 || col != 0 {
		t.Fatalf("root moved: %d,%d", row, col)
	}
	if m.Root().Buffer().Rows() != 24 {
		t.Fatalf("root resized by window position")
	}
}

func TestGridDestroy(t *testing.T) {
	m := NewManager(10, 10, Options{})
	var l recordingListener
	m.Events().Subscribe(&l)

	m.Apply([]protocol.Command{
		protocol.WindowPosSet{Grid: 4, StartRow: 0, StartCol: 0, Rows: 3, Cols: 3},
		protocol.GridDestroy{Grid: 4},
	})
	if m.Grid(4) != nil {
		t.Fatalf("destroyed grid still live")
	}
	if l.count(EventGridDestroyed) != 1 {
		t.Fatalf("grid-destroyed not broadcast")
	}

	// Root is protected; later commands for the dead id are dropped.
	m.Apply([]protocol.Command{
		protocol.GridDestroy{Grid: RootGridID},
		protocol.GridLine{Grid: 4, Row: 0, ColStart: 0, Cells: []protocol.CellRun{{Text: "x", HlID: 0}}},
	})
	if m.Root() == nil {
		t.Fatalf("root destroyed")
	}
	if m.Grid(4) != nil {
		t.Fatalf("dead grid resurrected by a line command")
	}
}

func TestCommandsForUnknownGridDropped(t *testing.T) {
	m := NewManager(4, 8, Options{})
	m.Root().Buffer().Dirty().Clear()

	m.Apply([]protocol.Command{
		protocol.GridLine{Grid: 7, Row: 0, ColStart: 0, Cells: []protocol.CellRun{{Text: "x", HlID: 0}}},
		protocol.GridScroll{Grid: 7, Top: 0, Bot: 4, Left: 0, Right: 8, Rows: 1},
		protocol.GridCursorGoto{Grid: 7, Row: 0, Col: 0},
		protocol.Flush{},
	})
	if cell, _ := m.Root().Buffer().CellAt(0, 0); cell.Text != "" {
		t.Fatalf("command for unknown grid leaked into the root: %#v", cell)
	}
	if len(m.GridIDs()) != 1 {
		t.Fatalf("commands for an unknown grid must not create it")
	}
	if m.CursorGrid() != m.Root() {
		t.Fatalf("cursor grid moved to an unknown grid")
	}
}

func TestChildInheritsHighlightSnapshotAndConverges(t *testing.T) {
	m := NewManager(10, 20, Options{})
	m.Apply([]protocol.Command{
		protocol.HighlightDefine{ID: 6, Fg: 0x112233, Bg: -1, Sp: -1},
		protocol.WindowPosSet{Grid: 2, StartRow: 0, StartCol: 0, Rows: 4, Cols: 8},
	})
	child := m.Grid(2)
	if got := child.Highlights().Resolve(6).Fg; got != (Color{0x11, 0x22, 0x33}) {
		t.Fatalf("child missed snapshot state: %s", got.Hex())
	}

	// Defines after creation reach the child through routing.
	m.Apply([]protocol.Command{
		protocol.HighlightDefine{ID: 7, Fg: 0x445566, Bg: -1, Sp: -1},
	})
	if got := child.Highlights().Resolve(7).Fg; got != (Color{0x44, 0x55, 0x66}) {
		t.Fatalf("child missed routed define: %s", got.Hex())
	}

	// Child tables are snapshots: mutating one does not leak to the root.
	child.Highlights().Define(8, HighlightAttr{Bold: true})
	if m.Root().Highlights().Resolve(8).Bold {
		t.Fatalf("child table shares storage with root")
	}
}

func TestTitleIconAndBellBroadcasts(t *testing.T) {
	m := NewManager(5, 5, Options{})
	var l recordingListener
	m.Events().Subscribe(&l)

	m.Apply([]protocol.Command{
		protocol.TitleSet{Title: "main.go + (~/src)"},
		protocol.IconSet{Icon: "main.go"},
		protocol.Bell{},
		protocol.Bell{Visual: true},
	})
	if m.Title() != "main.go + (~/src)" {
		t.Fatalf("title %q", m.Title())
	}
	if m.Icon() != "main.go" {
		t.Fatalf("icon %q", m.Icon())
	}
	if l.count(EventTitleChanged) != 1 || l.count(EventIconChanged) != 1 {
		t.Fatalf("title/icon broadcasts wrong: %#v", l.events)
	}
	if l.count(EventBell) != 1 || l.count(EventVisualBell) != 1 {
		t.Fatalf("bell broadcasts wrong: %#v", l.events)
	}
}

func TestBackgroundChangedOnlyFromRoot(t *testing.T) {
	m := NewManager(5, 5, Options{})
	m.Apply([]protocol.Command{
		protocol.WindowPosSet{Grid: 2, StartRow: 0, StartCol: 0, Rows: 2, Cols: 2},
	})
	var l recordingListener
	m.Events().Subscribe(&l)

	m.Apply([]protocol.Command{
		protocol.DefaultColorsSet{Fg: 0xffffff, Bg: 0x101010, Sp: 0xff0000},
	})
	// The command is routed to both grids but only the root announces it.
	if got := l.count(EventBackgroundChanged); got != 1 {
		t.Fatalf("background broadcast %d times, want 1", got)
	}
}

func TestManagerTickDrainsInvalidations(t *testing.T) {
	now := time.Unix(100, 0)
	clock := func() time.Time { return now }
	m := NewManager(4, 4, Options{InvalidateWindow: 10 * time.Millisecond, Clock: clock})
	m.Root().Buffer().Dirty().Clear()

	m.Apply([]protocol.Command{
		protocol.HighlightDefine{ID: 1, Fg: 0x01, Bg: -1, Sp: -1},
	})
	if m.Tick(now) {
		t.Fatalf("tick inside the quiet window applied early")
	}

	now = now.Add(15 * time.Millisecond)
	if !m.Tick(now) {
		t.Fatalf("due invalidation not applied by tick")
	}
	if !m.Root().Buffer().Dirty().Covers(3, 3) {
		t.Fatalf("tick did not mark the grid")
	}
	if m.Tick(now) {
		t.Fatalf("tick reapplied a consumed invalidation")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	m := NewManager(4, 10, Options{})
	m.Apply([]protocol.Command{
		protocol.GridLine{Grid: 1, Row: 0, ColStart: 0, Cells: []protocol.CellRun{{Text: "héllo", HlID: 1}}},
		protocol.GridLine{Grid: 1, Row: 2, ColStart: 4, Cells: []protocol.CellRun{{Text: "x", HlID: 1}}},
		protocol.WindowPosSet{Grid: 2, StartRow: 1, StartCol: 2, Rows: 2, Cols: 5},
		protocol.GridLine{Grid: 2, Row: 1, ColStart: 0, Cells: []protocol.CellRun{{Text: "win", HlID: 1}}},
	})

	snaps := m.Snapshot()
	if len(snaps) != 2 {
		t.Fatalf("snapshot count %d, want 2", len(snaps))
	}
	if snaps[0].GridID != RootGridID {
		t.Fatalf("root must come first")
	}
	if snaps[0].Lines[0] != "héllo" {
		t.Fatalf("root line 0: %q", snaps[0].Lines[0])
	}
	if snaps[0].Lines[2] != "    x" {
		t.Fatalf("trailing spaces not trimmed: %q", snaps[0].Lines[2])
	}
	if snaps[1].Row != 1 || snaps[1].Col != 2 {
		t.Fatalf("child placement lost: %#v", snaps[1])
	}

	restored := NewManager(4, 10, Options{})
	restored.Restore(snaps)
	if cell, _ := restored.Root().Buffer().CellAt(0, 1); cell.Text != "é" {
		t.Fatalf("restored cell 0,1: %#v", cell)
	}
	child := restored.Grid(2)
	if child == nil {
		t.Fatalf("child not restored")
	}
	if cell, _ := child.Buffer().CellAt(1, 0); cell.Text != "w" {
		t.Fatalf("child content not restored: %#v", cell)
	}
	if !restored.Root().Buffer().Dirty().Covers(3, 9) {
		t.Fatalf("restored grid must be fully invalidated")
	}
}
