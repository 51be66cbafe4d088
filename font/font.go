// Copyright © 2025 Neoview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: font/font.go
// Summary: Glyph cell measurement boundary and font option parsing.
//
// Measurement is a black box to the grid engine: it only needs a monospace
// cell size for a font name/size pair. The reference implementation derives
// metrics from the point size and a representative character; a GUI backend
// substitutes real shaping results through the same signature.

package font

import (
	"math"
	"strconv"
	"strings"

	runewidth "github.com/mattn/go-runewidth"
)

const (
	// DefaultSize is the point size used when none is configured.
	DefaultSize = 12.0
	// MinSize clamps size deltas so the grid never collapses.
	MinSize = 4.0

	advanceRatio    = 0.6
	lineHeightRatio = 1.25
)

// Options selects the font family and scaling for measurement.
type Options struct {
	Name     string
	WideName string
	Size     float64
	Scale    float64
}

// Metrics is the measured monospace cell geometry.
type Metrics struct {
	Width  int
	Height int
	Size   float64 // resolved point size after scaling
}

// Measure returns the cell metrics for a representative character under the
// given options. The character's display width normalises wide
// representatives to a single narrow cell.
func Measure(text string, opts Options) Metrics {
	size := opts.Size
	if size <= 0 {
		size = DefaultSize
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	pt := size * scale

	cells := runewidth.StringWidth(text)
	if cells < 1 {
		cells = 1
	}
	width := int(math.Round(pt*advanceRatio*float64(cells))) / cells
	if width < 1 {
		width = 1
	}
	height := int(math.Round(pt * lineHeightRatio))
	if height < 2 {
		height = 2
	}
	return Metrics{Width: width, Height: height, Size: pt}
}

// NewCondition builds a width condition resolving ambiguous East-Asian
// characters as wide or narrow per the configured profile.
func NewCondition(ambiguousWide bool) *runewidth.Condition {
	cond := runewidth.NewCondition()
	cond.EastAsianWidth = ambiguousWide
	return cond
}

// ApplySizeDelta interprets the relative size tokens of the font option:
// "+" and "-" adjust by a whole point, ".+" and ".-" by a tenth. Returns
// ok=false for any other token.
func ApplySizeDelta(current float64, token string) (float64, bool) {
	if current <= 0 {
		current = DefaultSize
	}
	var next float64
	switch token {
	case "+":
		next = current + 1.0
	case "-":
		next = current - 1.0
	case ".+":
		next = current + 0.1
	case ".-":
		next = current - 0.1
	default:
		return current, false
	}
	if next < MinSize {
		next = MinSize
	}
	return next, true
}

// ParseGuifont splits a "Family:h<size>" font specification. A missing or
// unparsable size yields size 0 (caller keeps its current size).
func ParseGuifont(value string) (name string, size float64, ok bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", 0, false
	}
	parts := strings.Split(value, ":")
	name = strings.TrimSpace(parts[0])
	for _, part := range parts[1:] {
		if strings.HasPrefix(part, "h") {
			if parsed, err := strconv.ParseFloat(part[1:], 64); err == nil && parsed > 0 {
				size = parsed
			}
		}
	}
	return name, size, true
}
