// Copyright © 2025 Neoview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: render/input.go
// Summary: Translation of tcell terminal events into editor input events.
// Usage: Feed screen.PollEvent results through a Translator; forward the
//        returned protocol events upstream.

package render

import (
	"github.com/gdamore/tcell/v2"

	"github.com/framegrace/neoview/grid"
	"github.com/framegrace/neoview/protocol"
)

// Translator converts tcell events into protocol input events. It keeps the
// pressed-button state needed to distinguish drags from motion and resolves
// the target grid by hit-testing child windows over the root.
type Translator struct {
	mgr  *grid.Manager
	held protocol.MouseButton
}

// NewTranslator builds a translator over the given hierarchy.
func NewTranslator(mgr *grid.Manager) *Translator {
	return &Translator{mgr: mgr}
}

// Translate converts one tcell event. ok is false for events with no editor
// counterpart (resize, paste boundaries, motion with no button held).
func (t *Translator) Translate(ev tcell.Event) (protocol.InputEvent, bool) {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return t.translateKey(e)
	case *tcell.EventMouse:
		return t.translateMouse(e)
	}
	return nil, false
}

func (t *Translator) translateKey(e *tcell.EventKey) (protocol.InputEvent, bool) {
	mods := translateMods(e.Modifiers())
	gridID := t.mgr.CursorGrid().ID()

	if e.Key() == tcell.KeyRune {
		if mods&(protocol.ModCtrl|protocol.ModAlt) == 0 {
			return protocol.TextEvent{Text: string(e.Rune()), Grid: gridID}, true
		}
		// Modified printables travel as key events so the editor sees the
		// chord, not the bare character.
		return protocol.KeyEvent{Key: string(e.Rune()), Mods: mods, Grid: gridID}, true
	}

	if name, ok := specialKeys[e.Key()]; ok {
		return protocol.KeyEvent{Key: name, Mods: mods, Grid: gridID}, true
	}

	// tcell folds Ctrl+letter into dedicated key codes; unfold them so the
	// chord reaches the editor. Tab, CR and BS shadow their Ctrl aliases
	// above, matching what a terminal can distinguish.
	if k := e.Key(); k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ {
		letter := string(rune('a' + int(k-tcell.KeyCtrlA)))
		return protocol.KeyEvent{Key: letter, Mods: mods | protocol.ModCtrl, Grid: gridID}, true
	}
	return nil, false
}

// specialKeys maps tcell keys to the editor's key notation.
var specialKeys = map[tcell.Key]string{
	tcell.KeyEnter:      "CR",
	tcell.KeyTab:        "Tab",
	tcell.KeyBacktab:    "Tab", // shift carried in Mods
	tcell.KeyEsc:        "Esc",
	tcell.KeyBackspace:  "BS",
	tcell.KeyBackspace2: "BS",
	tcell.KeyDelete:     "Del",
	tcell.KeyInsert:     "Insert",
	tcell.KeyUp:         "Up",
	tcell.KeyDown:       "Down",
	tcell.KeyLeft:       "Left",
	tcell.KeyRight:      "Right",
	tcell.KeyHome:       "Home",
	tcell.KeyEnd:        "End",
	tcell.KeyPgUp:       "PageUp",
	tcell.KeyPgDn:       "PageDown",
	tcell.KeyF1:         "F1",
	tcell.KeyF2:         "F2",
	tcell.KeyF3:         "F3",
	tcell.KeyF4:         "F4",
	tcell.KeyF5:         "F5",
	tcell.KeyF6:         "F6",
	tcell.KeyF7:         "F7",
	tcell.KeyF8:         "F8",
	tcell.KeyF9:         "F9",
	tcell.KeyF10:        "F10",
	tcell.KeyF11:        "F11",
	tcell.KeyF12:        "F12",
}

func (t *Translator) translateMouse(e *tcell.EventMouse) (protocol.InputEvent, bool) {
	x, y := e.Position()
	gridID, row, col := t.hitTest(y, x)
	mods := translateMods(e.Modifiers())

	switch {
	case e.Buttons()&tcell.WheelUp != 0:
		return protocol.MouseEvent{Action: protocol.MouseWheelUp, Mods: mods, Grid: gridID, Row: row, Col: col}, true
	case e.Buttons()&tcell.WheelDown != 0:
		return protocol.MouseEvent{Action: protocol.MouseWheelDown, Mods: mods, Grid: gridID, Row: row, Col: col}, true
	}

	button := buttonFrom(e.Buttons())
	switch {
	case button != protocol.ButtonNone && t.held == protocol.ButtonNone:
		t.held = button
		return protocol.MouseEvent{Action: protocol.MousePress, Button: button, Mods: mods, Grid: gridID, Row: row, Col: col}, true
	case button != protocol.ButtonNone && t.held == button:
		return protocol.MouseEvent{Action: protocol.MouseDrag, Button: button, Mods: mods, Grid: gridID, Row: row, Col: col}, true
	case button == protocol.ButtonNone && t.held != protocol.ButtonNone:
		released := t.held
		t.held = protocol.ButtonNone
		return protocol.MouseEvent{Action: protocol.MouseRelease, Button: released, Mods: mods, Grid: gridID, Row: row, Col: col}, true
	}
	return nil, false
}

// hitTest resolves a screen cell to the topmost grid containing it and the
// cell position local to that grid. Children win over the root; among
// children, higher ids are treated as more recently placed.
func (t *Translator) hitTest(row, col int) (gridID, localRow, localCol int) {
	ids := t.mgr.GridIDs()
	for i := len(ids) - 1; i >= 0; i-- {
		id := ids[i]
		if id == grid.RootGridID {
			continue
		}
		g := t.mgr.Grid(id)
		top, left := g.Position()
		if row >= top && row < top+g.Buffer().Rows() &&
			col >= left && col < left+g.Buffer().Cols() {
			return id, row - top, col - left
		}
	}
	return grid.RootGridID, row, col
}

func buttonFrom(mask tcell.ButtonMask) protocol.MouseButton {
	switch {
	case mask&tcell.Button1 != 0:
		return protocol.ButtonLeft
	case mask&tcell.Button2 != 0:
		// tcell's Button2 is the secondary (right) button.
		return protocol.ButtonRight
	case mask&tcell.Button3 != 0:
		return protocol.ButtonMiddle
	}
	return protocol.ButtonNone
}

func translateMods(mods tcell.ModMask) protocol.Modifiers {
	var out protocol.Modifiers
	if mods&tcell.ModShift != 0 {
		out |= protocol.ModShift
	}
	if mods&tcell.ModCtrl != 0 {
		out |= protocol.ModCtrl
	}
	if mods&tcell.ModAlt != 0 {
		out |= protocol.ModAlt
	}
	return out
}
