package font

import "testing"

func TestMeasureDefaults(t *testing.T) {
	m := Measure("W", Options{})
	if m.Size != DefaultSize {
		t.Fatalf("size %v, want default %v", m.Size, DefaultSize)
	}
	if m.Width < 1 || m.Height < 2 {
		t.Fatalf("degenerate metrics: %#v", m)
	}
}

func TestMeasureScalesWithSize(t *testing.T) {
	small := Measure("W", Options{Size: 10})
	large := Measure("W", Options{Size: 20})
	if large.Width <= small.Width || large.Height <= small.Height {
		t.Fatalf("metrics did not grow with size: %#v vs %#v", small, large)
	}
}

func TestMeasureNormalisesWideRepresentative(t *testing.T) {
	narrow := Measure("W", Options{Size: 14})
	wide := Measure("世", Options{Size: 14})
	if narrow.Width != wide.Width {
		t.Fatalf("wide representative skewed the cell: %d vs %d", narrow.Width, wide.Width)
	}
}

func TestMeasureAppliesScale(t *testing.T) {
	base := Measure("W", Options{Size: 12})
	scaled := Measure("W", Options{Size: 12, Scale: 2})
	if scaled.Size != 2*base.Size {
		t.Fatalf("scale not applied: %v", scaled.Size)
	}
}

func TestApplySizeDelta(t *testing.T) {
	cases := []struct {
		current float64
		token   string
		want    float64
		ok      bool
	}{
		{12, "+", 13, true},
		{12, "-", 11, true},
		{12, ".+", 12.1, true},
		{12, ".-", 11.9, true},
		{4, "-", MinSize, true},
		{4.05, ".-", MinSize, true},
		{0, "+", DefaultSize + 1, true},
		{12, "h14", 12, false},
		{12, "", 12, false},
	}
	for _, c := range cases {
		got, ok := ApplySizeDelta(c.current, c.token)
		if ok != c.ok {
			t.Fatalf("ApplySizeDelta(%v, %q) ok=%v, want %v", c.current, c.token, ok, c.ok)
		}
		if ok && got != c.want {
			t.Fatalf("ApplySizeDelta(%v, %q) = %v, want %v", c.current, c.token, got, c.want)
		}
	}
}

func TestParseGuifont(t *testing.T) {
	name, size, ok := ParseGuifont("Fira Code:h14")
	if !ok || name != "Fira Code" || size != 14 {
		t.Fatalf("got %q/%v/%v", name, size, ok)
	}

	name, size, ok = ParseGuifont("JetBrains Mono")
	if !ok || name != "JetBrains Mono" || size != 0 {
		t.Fatalf("size should stay 0 without a :h part, got %q/%v", name, size)
	}

	name, size, ok = ParseGuifont("Iosevka:h0:b")
	if !ok || size != 0 {
		t.Fatalf("non-positive size must be dropped: %v", size)
	}
	if name != "Iosevka" {
		t.Fatalf("name %q", name)
	}

	if _, _, ok := ParseGuifont("   "); ok {
		t.Fatalf("blank spec accepted")
	}
}
