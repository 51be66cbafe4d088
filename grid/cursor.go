// Copyright © 2025 Neoview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: grid/cursor.go
// Summary: Mode table and derived cursor state.
//
// CursorState is a derived view: it is recomputed whenever the active mode,
// the highlight table, the cursor position, or the cell under the cursor
// changes. Blink transitions are driven by an external timer; this package
// only supplies the timing parameters and the visibility intent.

package grid

import (
	"time"

	"github.com/framegrace/neoview/protocol"
)

// CursorShape selects the cursor glyph.
type CursorShape int

const (
	CursorBlock CursorShape = iota
	CursorHorizontal
	CursorVertical
)

func shapeFrom(s string) CursorShape {
	switch s {
	case "horizontal":
		return CursorHorizontal
	case "vertical":
		return CursorVertical
	}
	return CursorBlock
}

// BlinkTimings groups the blink cycle parameters. Configured timings act as
// a fallback for modes that omit their own.
type BlinkTimings struct {
	On   time.Duration
	Off  time.Duration
	Wait time.Duration
}

// ModeInfo is one entry of the editor's mode table.
type ModeInfo struct {
	Name           string
	Shape          CursorShape
	CellPercentage int
	BlinkOn        time.Duration
	BlinkOff       time.Duration
	BlinkWait      time.Duration
	AttrID         int
}

func modeFromCommand(m protocol.ModeInfo) ModeInfo {
	return ModeInfo{
		Name:           m.Name,
		Shape:          shapeFrom(m.Shape),
		CellPercentage: m.CellPercentage,
		BlinkOn:        time.Duration(m.BlinkOnMs) * time.Millisecond,
		BlinkOff:       time.Duration(m.BlinkOffMs) * time.Millisecond,
		BlinkWait:      time.Duration(m.BlinkWaitMs) * time.Millisecond,
		AttrID:         m.AttrID,
	}
}

// CursorState is the renderer-ready cursor description.
type CursorState struct {
	GridID int
	Row    int
	Col    int

	Shape          CursorShape
	CellPercentage int
	Fg, Bg, Sp     Color

	BlinkOn   time.Duration
	BlinkOff  time.Duration
	BlinkWait time.Duration

	// Width is the cursor's pixel width: the display width of the cell under
	// it (minimum one cell) times the glyph width.
	Width int

	// Visible is the intent before blinking: false while the editor is busy
	// or cursor styling is disabled.
	Visible bool
}

// Blinking reports whether the cursor cycles; undefined blink timings yield
// a steady cursor.
func (c CursorState) Blinking() bool {
	return c.BlinkOn > 0 && c.BlinkOff > 0
}

// BlinkPhase is the externally driven blink cycle position.
type BlinkPhase int

const (
	BlinkSteady BlinkPhase = iota
	BlinkShown
	BlinkHidden
)

// NextBlink returns the phase to enter and how long to stay in it. The cycle
// starts shown for BlinkWait before the first toggle, then alternates
// BlinkOn shown / BlinkOff hidden. A non-blinking cursor stays steady with
// zero delay.
func (c CursorState) NextBlink(phase BlinkPhase) (BlinkPhase, time.Duration) {
	if !c.Blinking() {
		return BlinkSteady, 0
	}
	switch phase {
	case BlinkShown:
		return BlinkHidden, c.BlinkOff
	case BlinkHidden:
		return BlinkShown, c.BlinkOn
	default:
		wait := c.BlinkWait
		if wait <= 0 {
			wait = c.BlinkOn
		}
		return BlinkShown, wait
	}
}
