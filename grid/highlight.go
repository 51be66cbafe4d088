// Copyright © 2025 Neoview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: grid/highlight.go
// Summary: Highlight attribute table and color resolution.
// Usage: Grids resolve cell highlight ids through this table at read time;
//        storage keeps only the id.

package grid

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/framegrace/neoview/protocol"
)

// Color is a 24-bit RGB color.
type Color struct {
	R, G, B uint8
}

// ColorFromPacked converts a 0xRRGGBB value. Negative values mean "unset"
// and report ok=false.
func ColorFromPacked(v int32) (Color, bool) {
	if v < 0 {
		return Color{}, false
	}
	return Color{
		R: uint8(v >> 16 & 0xFF),
		G: uint8(v >> 8 & 0xFF),
		B: uint8(v & 0xFF),
	}, true
}

// Packed returns the 0xRRGGBB encoding.
func (c Color) Packed() int32 {
	return int32(c.R)<<16 | int32(c.G)<<8 | int32(c.B)
}

// Hex formats the color as "#rrggbb".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

func fromColorful(c colorful.Color) Color {
	clamped := c.Clamped()
	return Color{
		R: uint8(clamped.R*255 + 0.5),
		G: uint8(clamped.G*255 + 0.5),
		B: uint8(clamped.B*255 + 0.5),
	}
}

// ReverseVideo returns the reverse-video counterpart: each channel
// complemented, swapping the color's luminance role against the display's
// black/white axis.
func (c Color) ReverseVideo() Color {
	cf := c.colorful()
	return fromColorful(colorful.Color{R: 1 - cf.R, G: 1 - cf.G, B: 1 - cf.B})
}

// Blend mixes two colors in RGB space; t=0 yields c, t=1 yields other.
func (c Color) Blend(other Color, t float64) Color {
	return fromColorful(c.colorful().BlendRgb(other.colorful(), t))
}

// HighlightAttr is one stored highlight definition. Channel presence is
// tracked separately so unset channels fall back to the grid defaults at
// resolve time.
type HighlightAttr struct {
	Fg, Bg, Sp            Color
	HasFg, HasBg, HasSp   bool
	Reverse, Italic, Bold bool
	Underline, Undercurl  bool
	Strikethrough         bool
}

// AttrFromCommand converts a decoded highlight-define command.
func AttrFromCommand(cmd protocol.HighlightDefine) HighlightAttr {
	attr := HighlightAttr{
		Reverse:       cmd.Reverse,
		Italic:        cmd.Italic,
		Bold:          cmd.Bold,
		Underline:     cmd.Underline,
		Undercurl:     cmd.Undercurl,
		Strikethrough: cmd.Strikethrough,
	}
	attr.Fg, attr.HasFg = ColorFromPacked(cmd.Fg)
	attr.Bg, attr.HasBg = ColorFromPacked(cmd.Bg)
	attr.Sp, attr.HasSp = ColorFromPacked(cmd.Sp)
	return attr
}

// ResolvedAttr is a renderer-ready attribute set: concrete colors with the
// reverse flag already applied.
type ResolvedAttr struct {
	Fg, Bg, Sp           Color
	Italic, Bold         bool
	Underline, Undercurl bool
	Strikethrough        bool
}

// HighlightTable maps highlight ids to attributes. Id 0 is reserved as the
// default; storage grows on demand when an id exceeds capacity. Entries
// persist for the owning session, a reset is never partial.
type HighlightTable struct {
	attrs  []HighlightAttr
	groups map[string]int

	defFg, defBg, defSp Color
}

const initialTableSize = 64

// NewHighlightTable builds a table with conventional defaults (white on
// black, red special).
func NewHighlightTable() *HighlightTable {
	return &HighlightTable{
		attrs:  make([]HighlightAttr, initialTableSize),
		groups: make(map[string]int),
		defFg:  Color{0xff, 0xff, 0xff},
		defBg:  Color{},
		defSp:  Color{0xff, 0, 0},
	}
}

func (t *HighlightTable) grow(id int) {
	if id < len(t.attrs) {
		return
	}
	size := len(t.attrs)
	if size == 0 {
		size = initialTableSize
	}
	for size <= id {
		size *= 2
	}
	grown := make([]HighlightAttr, size)
	copy(grown, t.attrs)
	t.attrs = grown
}

// Define stores or overwrites an attribute. Id 0 additionally feeds the
// grid defaults.
func (t *HighlightTable) Define(id int, attr HighlightAttr) {
	if id < 0 {
		return
	}
	t.grow(id)
	t.attrs[id] = attr
	if id == 0 {
		fg, bg, sp := t.defFg, t.defBg, t.defSp
		if attr.HasFg {
			fg = attr.Fg
		}
		if attr.HasBg {
			bg = attr.Bg
		}
		if attr.HasSp {
			sp = attr.Sp
		}
		t.SetDefaults(fg, bg, sp)
	}
}

// SetDefaults installs the grid default colors. When all three channels are
// equal the background flips to its reverse-video color; otherwise default
// text and the cursor would be invisible.
func (t *HighlightTable) SetDefaults(fg, bg, sp Color) {
	if fg == bg && bg == sp {
		bg = bg.ReverseVideo()
	}
	t.defFg, t.defBg, t.defSp = fg, bg, sp
}

// Defaults returns the current default fg/bg/sp.
func (t *HighlightTable) Defaults() (fg, bg, sp Color) {
	return t.defFg, t.defBg, t.defSp
}

// Resolve produces renderer-ready colors for a highlight id. Unset channels
// fall back to the defaults; ids never defined resolve to the defaults with
// no style flags. The reverse flag replaces each channel by its
// reverse-video counterpart.
func (t *HighlightTable) Resolve(id int) ResolvedAttr {
	var attr HighlightAttr
	if id >= 0 && id < len(t.attrs) {
		attr = t.attrs[id]
	}

	out := ResolvedAttr{
		Fg:            t.defFg,
		Bg:            t.defBg,
		Sp:            t.defSp,
		Italic:        attr.Italic,
		Bold:          attr.Bold,
		Underline:     attr.Underline,
		Undercurl:     attr.Undercurl,
		Strikethrough: attr.Strikethrough,
	}
	if attr.HasFg {
		out.Fg = attr.Fg
	}
	if attr.HasBg {
		out.Bg = attr.Bg
	}
	if attr.HasSp {
		out.Sp = attr.Sp
	}
	if attr.Reverse {
		out.Fg = out.Fg.ReverseVideo()
		out.Bg = out.Bg.ReverseVideo()
		out.Sp = out.Sp.ReverseVideo()
	}
	return out
}

// IsItalic reports the stored italic flag without a full resolve. Used by
// the dirty-span backward walk.
func (t *HighlightTable) IsItalic(id int) bool {
	if id < 0 || id >= len(t.attrs) {
		return false
	}
	return t.attrs[id].Italic
}

// SetGroup remaps a named semantic role (Pmenu, PmenuSel, PmenuSbar,
// WinSeparator, ...) to a highlight id.
func (t *HighlightTable) SetGroup(name string, id int) {
	t.groups[name] = id
}

// GroupAttr resolves a semantic group; unset groups resolve like id 0.
func (t *HighlightTable) GroupAttr(name string) ResolvedAttr {
	return t.Resolve(t.groups[name])
}

// HasGroup reports whether the group name has been mapped.
func (t *HighlightTable) HasGroup(name string) bool {
	_, ok := t.groups[name]
	return ok
}

// Clone copies the table. Child grids receive a snapshot of their parent's
// table at creation time.
func (t *HighlightTable) Clone() *HighlightTable {
	out := &HighlightTable{
		attrs:  make([]HighlightAttr, len(t.attrs)),
		groups: make(map[string]int, len(t.groups)),
		defFg:  t.defFg,
		defBg:  t.defBg,
		defSp:  t.defSp,
	}
	copy(out.attrs, t.attrs)
	for k, v := range t.groups {
		out.groups[k] = v
	}
	return out
}
