// Copyright © 2025 Neoview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: protocol/commands.go
// Summary: Decoded redraw commands consumed by the grid engine.
// Usage: The transport decodes editor redraw batches into these structs; the
//        grid manager applies them in order.

package protocol

// HlInherit marks a cell run that inherits the highlight id of the previous
// run within the same grid-line command.
const HlInherit = -1

// Command is one decoded redraw instruction. A batch is an ordered slice of
// commands terminated by Flush.
type Command interface {
	command()
}

// HighlightDefine registers or overwrites a highlight attribute by id.
// Channel values are packed 0xRRGGBB, or -1 when the channel is unset.
type HighlightDefine struct {
	ID            int
	Fg, Bg, Sp    int32
	Reverse       bool
	Italic        bool
	Bold          bool
	Underline     bool
	Undercurl     bool
	Strikethrough bool
}

// SemanticGroupSet maps a named highlight group (Pmenu, PmenuSel, ...) to a
// highlight id.
type SemanticGroupSet struct {
	Name string
	ID   int
}

// DefaultColorsSet sets the grid default foreground/background/special
// colors. Values are packed 0xRRGGBB, or -1 when unset.
type DefaultColorsSet struct {
	Fg, Bg, Sp int32
}

// ModeInfo describes the cursor for one editor mode.
type ModeInfo struct {
	Name           string
	Shape          string // "block", "horizontal", "vertical"
	CellPercentage int
	BlinkOnMs      int
	BlinkOffMs     int
	BlinkWaitMs    int
	AttrID         int
}

// ModeInfoSet replaces the mode table and toggles cursor styling.
type ModeInfoSet struct {
	CursorStyleEnabled bool
	Modes              []ModeInfo
}

// ModeChange selects the active mode by index.
type ModeChange struct {
	Name  string
	Index int
}

// GridResize resizes a grid, creating it on first sight.
type GridResize struct {
	Grid int
	Rows int
	Cols int
}

// GridClear empties a grid's cell buffer.
type GridClear struct {
	Grid int
}

// CellRun is one run-length compressed span of cells within a GridLine.
// HlID == HlInherit inherits the previous run's highlight; Repeat == 0 means
// the run covers a single cell.
type CellRun struct {
	Text   string
	HlID   int
	Repeat int
}

// GridLine writes a contiguous row segment starting at ColStart.
type GridLine struct {
	Grid     int
	Row      int
	ColStart int
	Cells    []CellRun
}

// GridCursorGoto moves the cursor to a grid position.
type GridCursorGoto struct {
	Grid int
	Row  int
	Col  int
}

// GridDestroy detaches a grid from the hierarchy and releases its buffer.
type GridDestroy struct {
	Grid int
}

// GridScroll blits the region [Top,Bot) x [Left,Right) by Rows. Cols is
// reserved by the protocol and always zero.
type GridScroll struct {
	Grid  int
	Top   int
	Bot   int
	Left  int
	Right int
	Rows  int
	Cols  int
}

// Flush ends a batch and makes accumulated state visible to the renderer.
type Flush struct{}

// Bell requests an audible or visual bell.
type Bell struct {
	Visual bool
}

// BusySet disables cursor display while the editor is busy.
type BusySet struct {
	Busy bool
}

// TitleSet forwards a window title change.
type TitleSet struct {
	Title string
}

// IconSet forwards an icon title change.
type IconSet struct {
	Icon string
}

// OptionSet carries a UI option change (guifont and friends).
type OptionSet struct {
	Name  string
	Value interface{}
}

// MouseEnableSet toggles mouse reporting.
type MouseEnableSet struct {
	Enabled bool
}

// WindowPosSet creates or repositions a child grid inside the root grid.
// Only the root grid acts on this command.
type WindowPosSet struct {
	Grid     int
	StartRow int
	StartCol int
	Rows     int
	Cols     int
}

// PopupItem is one completion entry.
type PopupItem struct {
	Word string
	Kind string
	Menu string
	Info string
}

// PopupMenuShow displays the completion popup anchored at a grid cell.
type PopupMenuShow struct {
	Items    []PopupItem
	Selected int
	Row      int
	Col      int
	Grid     int
}

// PopupMenuSelect moves the popup selection. Selected is -1 when nothing is
// selected.
type PopupMenuSelect struct {
	Selected int
}

// PopupMenuHide dismisses the completion popup.
type PopupMenuHide struct{}

// Unknown preserves a command tag this client does not understand. Handlers
// log and skip it; the protocol is forward-evolving.
type Unknown struct {
	Name string
}

func (HighlightDefine) command()  {}
func (SemanticGroupSet) command() {}
func (DefaultColorsSet) command() {}
func (ModeInfoSet) command()      {}
func (ModeChange) command()       {}
func (GridResize) command()       {}
func (GridClear) command()        {}
func (GridLine) command()         {}
func (GridCursorGoto) command()   {}
func (GridDestroy) command()      {}
func (GridScroll) command()       {}
func (Flush) command()            {}
func (Bell) command()             {}
func (BusySet) command()          {}
func (TitleSet) command()         {}
func (IconSet) command()          {}
func (OptionSet) command()        {}
func (MouseEnableSet) command()   {}
func (WindowPosSet) command()     {}
func (PopupMenuShow) command()    {}
func (PopupMenuSelect) command()  {}
func (PopupMenuHide) command()    {}
func (Unknown) command()          {}
