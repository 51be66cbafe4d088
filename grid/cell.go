// Copyright © 2025 Neoview contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: grid/cell.go
// Summary: Cell model and the ligature-bleed heuristic.

package grid

import (
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Cell is one character cell: a grapheme cluster plus a highlight id.
// The default cell has empty text and highlight 0. Cells are overwritten
// wholesale, never merged.
type Cell struct {
	Text string
	HlID int
}

// IsEmpty reports whether the cell renders as blank space.
func (c Cell) IsEmpty() bool {
	return c.Text == "" || c.Text == " "
}

const programmingSymbols = "=<>-+!&|~/*%?:;.#@$^\\"

// SymbolPredicate reports whether a cell's text looks like a ligature-forming
// programming symbol. Writes extend their dirty span backwards over cells
// matching this predicate so partially overdrawn ligatures get repainted.
// It is a best-effort heuristic, replaceable by embedders.
var SymbolPredicate = func(text string) bool {
	if text == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(text)
	return strings.ContainsRune(programmingSymbols, r)
}

// Graphemes splits a string into grapheme clusters. Cell text arrives one
// cluster per run from the editor, but replay files may pack several into a
// single run.
func Graphemes(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	state := -1
	for len(s) > 0 {
		var cluster string
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		out = append(out, cluster)
	}
	return out
}
