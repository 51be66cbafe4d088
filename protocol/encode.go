// Copyright © 2025 Neoview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: protocol/encode.go
// Summary: JSON encoder/decoder for input events forwarded to the editor.

package protocol

import (
	"errors"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var ErrUnknownInput = errors.New("protocol: unknown input event type")

// EncodeInput serialises an input event as a single JSON object for the
// transport to forward upstream.
func EncodeInput(ev InputEvent) ([]byte, error) {
	var (
		out = []byte(`{}`)
		err error
	)
	set := func(path string, value interface{}) {
		if err != nil {
			return
		}
		out, err = sjson.SetBytes(out, path, value)
	}

	switch e := ev.(type) {
	case KeyEvent:
		set("type", "key")
		set("key", e.Key)
		set("mods", int(e.Mods))
		set("grid", e.Grid)
	case TextEvent:
		set("type", "text")
		set("text", e.Text)
		set("grid", e.Grid)
	case MouseEvent:
		set("type", "mouse")
		set("action", e.Action.String())
		set("button", e.Button.String())
		set("mods", int(e.Mods))
		set("grid", e.Grid)
		set("row", e.Row)
		set("col", e.Col)
	default:
		return nil, ErrUnknownInput
	}
	return out, err
}

// DecodeInput reverses EncodeInput.
func DecodeInput(data []byte) (InputEvent, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	root := gjson.ParseBytes(data)
	switch root.Get("type").String() {
	case "key":
		return KeyEvent{
			Key:  root.Get("key").String(),
			Mods: Modifiers(root.Get("mods").Int()),
			Grid: int(root.Get("grid").Int()),
		}, nil
	case "text":
		return TextEvent{
			Text: root.Get("text").String(),
			Grid: int(root.Get("grid").Int()),
		}, nil
	case "mouse":
		return MouseEvent{
			Action: mouseActionFrom(root.Get("action").String()),
			Button: mouseButtonFrom(root.Get("button").String()),
			Mods:   Modifiers(root.Get("mods").Int()),
			Grid:   int(root.Get("grid").Int()),
			Row:    int(root.Get("row").Int()),
			Col:    int(root.Get("col").Int()),
		}, nil
	}
	return nil, ErrUnknownInput
}

func mouseActionFrom(s string) MouseAction {
	switch s {
	case "release":
		return MouseRelease
	case "drag":
		return MouseDrag
	case "wheel_up":
		return MouseWheelUp
	case "wheel_down":
		return MouseWheelDown
	}
	return MousePress
}

func mouseButtonFrom(s string) MouseButton {
	switch s {
	case "left":
		return ButtonLeft
	case "middle":
		return ButtonMiddle
	case "right":
		return ButtonRight
	}
	return ButtonNone
}
