// Copyright © 2025 Neoview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: protocol/input.go
// Summary: Input events produced by the client for the transport to forward
//          upstream to the editor.

package protocol

// Modifiers is a bitmask of modifier keys held during an input event.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
)

// MouseAction distinguishes the kinds of mouse events.
type MouseAction uint8

const (
	MousePress MouseAction = iota
	MouseRelease
	MouseDrag
	MouseWheelUp
	MouseWheelDown
)

// MouseButton identifies which button an event concerns.
type MouseButton uint8

const (
	ButtonNone MouseButton = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
)

// InputEvent is a client-originated event forwarded to the editor.
type InputEvent interface {
	inputEvent()
}

// KeyEvent is a special key press in editor notation ("<CR>", "<C-w>", ...).
type KeyEvent struct {
	Key  string
	Mods Modifiers
	Grid int
}

// TextEvent is literal text input.
type TextEvent struct {
	Text string
	Grid int
}

// MouseEvent is a press/release/drag/wheel at a grid cell.
type MouseEvent struct {
	Action MouseAction
	Button MouseButton
	Mods   Modifiers
	Grid   int
	Row    int
	Col    int
}

func (KeyEvent) inputEvent()   {}
func (TextEvent) inputEvent()  {}
func (MouseEvent) inputEvent() {}

func (a MouseAction) String() string {
	switch a {
	case MousePress:
		return "press"
	case MouseRelease:
		return "release"
	case MouseDrag:
		return "drag"
	case MouseWheelUp:
		return "wheel_up"
	case MouseWheelDown:
		return "wheel_down"
	}
	return "unknown"
}

func (b MouseButton) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	}
	return "none"
}
