package grid

import "testing"

func TestDefaultEqualTripleFlipsBackground(t *testing.T) {
	table := NewHighlightTable()
	black := Color{0, 0, 0}
	table.SetDefaults(black, black, black)

	_, bg, _ := table.Defaults()
	if bg != (Color{0xff, 0xff, 0xff}) {
		t.Fatalf("equal default triple must flip bg to reverse video, got %s", bg.Hex())
	}
}

func TestDefineIDZeroFeedsDefaults(t *testing.T) {
	table := NewHighlightTable()
	table.Define(0, HighlightAttr{
		Fg: Color{0, 0, 0}, HasFg: true,
		Bg: Color{0, 0, 0}, HasBg: true,
		Sp: Color{0, 0, 0}, HasSp: true,
	})
	fg, bg, _ := table.Defaults()
	if fg != (Color{0, 0, 0}) {
		t.Fatalf("default fg not updated: %s", fg.Hex())
	}
	if bg != (Color{0xff, 0xff, 0xff}) {
		t.Fatalf("expected reversed bg #ffffff, got %s", bg.Hex())
	}
}

func TestResolveUndefinedFallsBackToDefaults(t *testing.T) {
	table := NewHighlightTable()
	table.SetDefaults(Color{1, 2, 3}, Color{4, 5, 6}, Color{7, 8, 9})

	got := table.Resolve(999)
	if got.Fg != (Color{1, 2, 3}) || got.Bg != (Color{4, 5, 6}) || got.Sp != (Color{7, 8, 9}) {
		t.Fatalf("undefined id must resolve to defaults: %#v", got)
	}
	if got.Italic || got.Bold || got.Underline || got.Undercurl || got.Strikethrough {
		t.Fatalf("undefined id must carry no style flags: %#v", got)
	}
}

func TestResolveMissingChannelsInherit(t *testing.T) {
	table := NewHighlightTable()
	table.SetDefaults(Color{10, 10, 10}, Color{20, 20, 20}, Color{30, 30, 30})
	table.Define(7, HighlightAttr{Fg: Color{200, 0, 0}, HasFg: true, Bold: true})

	got := table.Resolve(7)
	if got.Fg != (Color{200, 0, 0}) {
		t.Fatalf("explicit fg lost: %#v", got)
	}
	if got.Bg != (Color{20, 20, 20}) || got.Sp != (Color{30, 30, 30}) {
		t.Fatalf("missing channels must fall back to defaults: %#v", got)
	}
	if !got.Bold {
		t.Fatalf("bold flag lost")
	}
}

func TestResolveReverseFlag(t *testing.T) {
	table := NewHighlightTable()
	table.Define(3, HighlightAttr{
		Fg: Color{0, 0, 0}, HasFg: true,
		Bg: Color{0xff, 0xff, 0xff}, HasBg: true,
		Reverse: true,
	})
	got := table.Resolve(3)
	if got.Fg != (Color{0xff, 0xff, 0xff}) || got.Bg != (Color{0, 0, 0}) {
		t.Fatalf("reverse must complement each channel: fg=%s bg=%s", got.Fg.Hex(), got.Bg.Hex())
	}
}

func TestTableGrowsOnDemand(t *testing.T) {
	table := NewHighlightTable()
	table.Define(5000, HighlightAttr{Italic: true, Fg: Color{1, 1, 1}, HasFg: true})
	if !table.IsItalic(5000) {
		t.Fatalf("grown entry lost")
	}
	got := table.Resolve(5000)
	if got.Fg != (Color{1, 1, 1}) {
		t.Fatalf("grown entry resolves wrong: %#v", got)
	}
	// Earlier ids unaffected.
	if table.IsItalic(0) {
		t.Fatalf("growth corrupted id 0")
	}
}

func TestGroupMapping(t *testing.T) {
	table := NewHighlightTable()
	table.Define(12, HighlightAttr{Bg: Color{40, 40, 60}, HasBg: true})
	table.SetGroup("Pmenu", 12)

	if !table.HasGroup("Pmenu") {
		t.Fatalf("group not recorded")
	}
	if got := table.GroupAttr("Pmenu"); got.Bg != (Color{40, 40, 60}) {
		t.Fatalf("group resolves wrong: %#v", got)
	}
	// Unset groups resolve like the default id.
	fg, bg, _ := table.Defaults()
	got := table.GroupAttr("PmenuSel")
	if got.Fg != fg || got.Bg != bg {
		t.Fatalf("unset group must resolve to defaults: %#v", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	table := NewHighlightTable()
	table.Define(2, HighlightAttr{Bold: true})
	table.SetGroup("Pmenu", 2)

	clone := table.Clone()
	table.Define(2, HighlightAttr{Italic: true})
	table.SetGroup("Pmenu", 9)

	if clone.IsItalic(2) {
		t.Fatalf("clone tracked a later define")
	}
	if got := clone.Resolve(2); !got.Bold {
		t.Fatalf("clone lost snapshot state: %#v", got)
	}
	if clone.groups["Pmenu"] != 2 {
		t.Fatalf("clone tracked a later group change")
	}
}

func TestReverseVideoColor(t *testing.T) {
	if got := (Color{0, 0, 0}).ReverseVideo(); got != (Color{0xff, 0xff, 0xff}) {
		t.Fatalf("reverse of black should be white, got %s", got.Hex())
	}
	if got := (Color{0xff, 0x00, 0x80}).ReverseVideo(); got != (Color{0x00, 0xff, 0x7f}) {
		t.Fatalf("per-channel complement wrong: %s", got.Hex())
	}
}
