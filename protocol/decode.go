// Copyright © 2025 Neoview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: protocol/decode.go
// Summary: JSON redraw-batch decoder used for replay streams and tests.
//
// The real editor transport hands the engine decoded commands directly; this
// decoder exists so batches can also be read from newline-delimited JSON in
// the editor's redraw notation: [["grid_line", [2,0,0,[["H",1],["i"]]]], ...].

package protocol

import (
	"errors"
	"log"

	"github.com/tidwall/gjson"
)

var (
	ErrInvalidJSON = errors.New("protocol: redraw batch is not valid JSON")
	ErrNotBatch    = errors.New("protocol: redraw batch must be a JSON array")
)

// DecodeBatch parses one redraw batch. Each batch entry is an array of a
// command tag followed by zero or more argument tuples; every tuple yields
// one Command. Unknown tags decode to Unknown, malformed tuples are logged
// and skipped, matching the skip-and-continue protocol error policy.
func DecodeBatch(data []byte) ([]Command, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, ErrNotBatch
	}

	var cmds []Command
	for _, entry := range root.Array() {
		parts := entry.Array()
		if len(parts) == 0 || parts[0].Type != gjson.String {
			log.Printf("protocol: skipping malformed redraw entry %s", entry.Raw)
			continue
		}
		name := parts[0].String()
		tuples := parts[1:]
		if len(tuples) == 0 {
			// Zero-argument commands may arrive as a bare tag.
			if cmd, ok := decodeTuple(name, gjson.Result{}); ok {
				cmds = append(cmds, cmd)
			}
			continue
		}
		for _, tuple := range tuples {
			if cmd, ok := decodeTuple(name, tuple); ok {
				cmds = append(cmds, cmd)
			}
		}
	}
	return cmds, nil
}

func decodeTuple(name string, args gjson.Result) (Command, bool) {
	a := args.Array()
	switch name {
	case "hl_attr_define":
		if len(a) < 2 {
			return logSkip(name, args)
		}
		attrs := a[1]
		return HighlightDefine{
			ID:            int(a[0].Int()),
			Fg:            colorField(attrs, "foreground"),
			Bg:            colorField(attrs, "background"),
			Sp:            colorField(attrs, "special"),
			Reverse:       attrs.Get("reverse").Bool(),
			Italic:        attrs.Get("italic").Bool(),
			Bold:          attrs.Get("bold").Bool(),
			Underline:     attrs.Get("underline").Bool(),
			Undercurl:     attrs.Get("undercurl").Bool(),
			Strikethrough: attrs.Get("strikethrough").Bool(),
		}, true
	case "hl_group_set":
		if len(a) < 2 {
			return logSkip(name, args)
		}
		return SemanticGroupSet{Name: a[0].String(), ID: int(a[1].Int())}, true
	case "default_colors_set":
		if len(a) < 3 {
			return logSkip(name, args)
		}
		return DefaultColorsSet{
			Fg: packedColor(a[0]),
			Bg: packedColor(a[1]),
			Sp: packedColor(a[2]),
		}, true
	case "mode_info_set":
		if len(a) < 2 {
			return logSkip(name, args)
		}
		cmd := ModeInfoSet{CursorStyleEnabled: a[0].Bool()}
		for _, m := range a[1].Array() {
			cmd.Modes = append(cmd.Modes, ModeInfo{
				Name:           m.Get("name").String(),
				Shape:          m.Get("cursor_shape").String(),
				CellPercentage: int(m.Get("cell_percentage").Int()),
				BlinkOnMs:      int(m.Get("blinkon").Int()),
				BlinkOffMs:     int(m.Get("blinkoff").Int()),
				BlinkWaitMs:    int(m.Get("blinkwait").Int()),
				AttrID:         int(m.Get("attr_id").Int()),
			})
		}
		return cmd, true
	case "mode_change":
		if len(a) < 2 {
			return logSkip(name, args)
		}
		return ModeChange{Name: a[0].String(), Index: int(a[1].Int())}, true
	case "grid_resize":
		if len(a) < 3 {
			return logSkip(name, args)
		}
		// Wire order is grid, width, height.
		return GridResize{Grid: int(a[0].Int()), Cols: int(a[1].Int()), Rows: int(a[2].Int())}, true
	case "grid_clear":
		if len(a) < 1 {
			return logSkip(name, args)
		}
		return GridClear{Grid: int(a[0].Int())}, true
	case "grid_line":
		if len(a) < 4 {
			return logSkip(name, args)
		}
		cmd := GridLine{
			Grid:     int(a[0].Int()),
			Row:      int(a[1].Int()),
			ColStart: int(a[2].Int()),
		}
		for _, cell := range a[3].Array() {
			c := cell.Array()
			if len(c) == 0 {
				continue
			}
			run := CellRun{Text: c[0].String(), HlID: HlInherit}
			if len(c) > 1 {
				run.HlID = int(c[1].Int())
			}
			if len(c) > 2 {
				run.Repeat = int(c[2].Int())
			}
			cmd.Cells = append(cmd.Cells, run)
		}
		return cmd, true
	case "grid_cursor_goto":
		if len(a) < 3 {
			return logSkip(name, args)
		}
		return GridCursorGoto{Grid: int(a[0].Int()), Row: int(a[1].Int()), Col: int(a[2].Int())}, true
	case "grid_destroy":
		if len(a) < 1 {
			return logSkip(name, args)
		}
		return GridDestroy{Grid: int(a[0].Int())}, true
	case "grid_scroll":
		if len(a) < 7 {
			return logSkip(name, args)
		}
		return GridScroll{
			Grid:  int(a[0].Int()),
			Top:   int(a[1].Int()),
			Bot:   int(a[2].Int()),
			Left:  int(a[3].Int()),
			Right: int(a[4].Int()),
			Rows:  int(a[5].Int()),
			Cols:  int(a[6].Int()),
		}, true
	case "flush":
		return Flush{}, true
	case "bell":
		return Bell{}, true
	case "visual_bell":
		return Bell{Visual: true}, true
	case "busy_start":
		return BusySet{Busy: true}, true
	case "busy_stop":
		return BusySet{Busy: false}, true
	case "set_title":
		if len(a) < 1 {
			return logSkip(name, args)
		}
		return TitleSet{Title: a[0].String()}, true
	case "set_icon":
		if len(a) < 1 {
			return logSkip(name, args)
		}
		return IconSet{Icon: a[0].String()}, true
	case "option_set":
		if len(a) < 2 {
			return logSkip(name, args)
		}
		return OptionSet{Name: a[0].String(), Value: a[1].Value()}, true
	case "mouse_on":
		return MouseEnableSet{Enabled: true}, true
	case "mouse_off":
		return MouseEnableSet{Enabled: false}, true
	case "win_pos":
		// With window handle: grid, win, start_row, start_col, width, height.
		// Without: grid, start_row, start_col, width, height.
		if len(a) >= 6 {
			return WindowPosSet{
				Grid:     int(a[0].Int()),
				StartRow: int(a[2].Int()),
				StartCol: int(a[3].Int()),
				Cols:     int(a[4].Int()),
				Rows:     int(a[5].Int()),
			}, true
		}
		if len(a) == 5 {
			return WindowPosSet{
				Grid:     int(a[0].Int()),
				StartRow: int(a[1].Int()),
				StartCol: int(a[2].Int()),
				Cols:     int(a[3].Int()),
				Rows:     int(a[4].Int()),
			}, true
		}
		return logSkip(name, args)
	case "popupmenu_show":
		if len(a) < 5 {
			return logSkip(name, args)
		}
		cmd := PopupMenuShow{
			Selected: int(a[1].Int()),
			Row:      int(a[2].Int()),
			Col:      int(a[3].Int()),
			Grid:     int(a[4].Int()),
		}
		for _, item := range a[0].Array() {
			f := item.Array()
			pi := PopupItem{}
			if len(f) > 0 {
				pi.Word = f[0].String()
			}
			if len(f) > 1 {
				pi.Kind = f[1].String()
			}
			if len(f) > 2 {
				pi.Menu = f[2].String()
			}
			if len(f) > 3 {
				pi.Info = f[3].String()
			}
			cmd.Items = append(cmd.Items, pi)
		}
		return cmd, true
	case "popupmenu_select":
		if len(a) < 1 {
			return logSkip(name, args)
		}
		return PopupMenuSelect{Selected: int(a[0].Int())}, true
	case "popupmenu_hide":
		return PopupMenuHide{}, true
	}
	return Unknown{Name: name}, true
}

func logSkip(name string, args gjson.Result) (Command, bool) {
	log.Printf("protocol: skipping short %s tuple %s", name, args.Raw)
	return nil, false
}

// colorField reads an optional 0xRRGGBB channel from an attribute map.
func colorField(attrs gjson.Result, key string) int32 {
	v := attrs.Get(key)
	if !v.Exists() {
		return -1
	}
	return int32(v.Int())
}

// packedColor reads a 0xRRGGBB value, mapping absent or negative to unset.
func packedColor(v gjson.Result) int32 {
	if !v.Exists() || v.Int() < 0 {
		return -1
	}
	return int32(v.Int())
}
