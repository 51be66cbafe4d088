package grid

import (
	"strings"
	"testing"

	runewidth "github.com/mattn/go-runewidth"

	"github.com/framegrace/neoview/protocol"
)

func popupItems(words ...string) []protocol.PopupItem {
	items := make([]protocol.PopupItem, len(words))
	for i, w := range words {
		items[i] = protocol.PopupItem{Word: w}
	}
	return items
}

func TestPopupPlacementBelowAnchor(t *testing.T) {
	var p PopupMenu
	p.Show(popupItems("foo", "barbaz"), -1, 5, 10, 24, 80, runewidth.StringWidth)

	b := p.Bounds()
	if b.Row != 6 || b.Col != 10 {
		t.Fatalf("box at %d,%d, want 6,10", b.Row, b.Col)
	}
	if b.Height != 2 {
		t.Fatalf("height %d, want 2", b.Height)
	}
	// Widest word plus padding on both sides.
	if b.Width != 6+2*popupPadding {
		t.Fatalf("width %d, want %d", b.Width, 6+2*popupPadding)
	}
}

func TestPopupFlipsAboveWhenBelowIsTight(t *testing.T) {
	var p PopupMenu
	words := make([]string, 8)
	for i := range words {
		words[i] = "item"
	}
	// Anchor near the bottom: 2 rows below, 21 above.
	p.Show(popupItems(words...), -1, 21, 0, 24, 80, runewidth.StringWidth)

	b := p.Bounds()
	if b.Row+b.Height > 21 {
		t.Fatalf("box %#v overlaps or passes the anchor row", b)
	}
	if b.Height != 8 {
		t.Fatalf("height %d, want the full list above", b.Height)
	}
}

func TestPopupHeightCapped(t *testing.T) {
	var p PopupMenu
	words := make([]string, 30)
	for i := range words {
		words[i] = "x"
	}
	p.Show(popupItems(words...), -1, 0, 0, 24, 80, runewidth.StringWidth)
	if got := p.Bounds().Height; got != maxPopupRows {
		t.Fatalf("height %d, want cap %d", got, maxPopupRows)
	}
	if !p.Overflows() {
		t.Fatalf("capped list must report overflow")
	}
}

func TestPopupClampedToGridEdge(t *testing.T) {
	var p PopupMenu
	p.Show(popupItems("longcompletion"), -1, 3, 78, 24, 80, runewidth.StringWidth)
	b := p.Bounds()
	if b.Col+b.Width > 80 {
		t.Fatalf("box %#v spills past the right edge", b)
	}
}

func TestPopupSelectionWindowFollows(t *testing.T) {
	var p PopupMenu
	words := make([]string, 25)
	for i := range words {
		words[i] = "w"
	}
	p.Show(popupItems(words...), 0, 0, 0, 24, 80, runewidth.StringWidth)

	p.Select(24)
	start, end := p.Window()
	if end != 25 {
		t.Fatalf("window [%d,%d) does not reach the selection", start, end)
	}
	if end-start != maxPopupRows {
		t.Fatalf("window size %d, want %d", end-start, maxPopupRows)
	}

	p.Select(0)
	if start, _ := p.Window(); start != 0 {
		t.Fatalf("window did not scroll back up: start %d", start)
	}

	p.Select(-1)
	if p.Selected != -1 {
		t.Fatalf("selection not cleared")
	}
	p.Select(99)
	if p.Selected != -1 {
		t.Fatalf("out-of-range selection must clear, got %d", p.Selected)
	}
}

func TestTruncateToWidth(t *testing.T) {
	width := runewidth.StringWidth
	if got := TruncateToWidth("short", 10, width); got != "short" {
		t.Fatalf("fitting label changed: %q", got)
	}
	if got := TruncateToWidth(strings.Repeat("a", 12), 5, width); got != "aaaaa" {
		t.Fatalf("ascii truncation: %q", got)
	}
	// A wide cluster that would straddle the limit is dropped whole.
	if got := TruncateToWidth("ab世界", 3, width); got != "ab" {
		t.Fatalf("wide cluster split: %q", got)
	}
	if got := TruncateToWidth("héllo", 3, width); got != "hél" {
		t.Fatalf("combining cluster handling: %q", got)
	}
}
