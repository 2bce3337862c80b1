package vtcore

import "testing"

func TestDECGraphicsCharset(t *testing.T) {
	term, _ := newTestTerminal(t, 4, 20)
	term.WriteString("\x1b(0lqk\x1b(B")
	want := []rune{'┌', '─', '┐'}
	for i, w := range want {
		if got := term.screen.CellAt(i, 0).Rune(); got != w {
			t.Errorf("cell %d: expected %q, got %q", i, w, got)
		}
	}
	term.WriteString("x")
	if got := term.screen.CellAt(3, 0).Rune(); got != 'x' {
		t.Errorf("after ESC(B expected plain x, got %q", got)
	}
}

func TestSingleShift(t *testing.T) {
	term, _ := newTestTerminal(t, 4, 20)
	term.WriteString("\x1b*0")   // G2 = DEC graphics
	term.WriteString("\x1bNq-")  // SS2 applies to one character only
	if got := term.screen.CellAt(0, 0).Rune(); got != '─' {
		t.Errorf("SS2 char: got %q", got)
	}
	if got := term.screen.CellAt(1, 0).Rune(); got != '-' {
		t.Errorf("char after SS2 must use GL again: got %q", got)
	}
}

func TestNRCSDecodeTables(t *testing.T) {
	cases := []struct {
		cs   Charset
		b    byte
		want rune
	}{
		{CharsetGerman, '[', 'Ä'},
		{CharsetGerman, '~', 'ß'},
		{CharsetBritish, '#', '£'},
		{CharsetFrench, '{', 'é'},
		{CharsetSwedish, ']', 'Å'},
	}
	for _, c := range cases {
		if got := nrcsDecode(c.cs, c.b, true); got != c.want {
			t.Errorf("decode %v %q: expected %q, got %q", c.cs, c.b, c.want, got)
		}
	}
	// Without DECNRCM the national tables are inert.
	if got := nrcsDecode(CharsetGerman, '[', false); got != '[' {
		t.Errorf("nrcs off: got %q", got)
	}
}

func TestNRCSEncodeRoundTrip(t *testing.T) {
	for _, cs := range []Charset{CharsetGerman, CharsetFrench, CharsetSpanish} {
		tbl := nrcsTables[cs]
		for i, r := range tbl {
			b, ok := nrcsEncode(cs, r, true)
			if !ok {
				t.Errorf("%v: cannot encode %q", cs, r)
				continue
			}
			if got := nrcsDecode(cs, b, true); got != r {
				t.Errorf("%v: round trip %q -> %#x -> %q (index %d)", cs, r, b, got, i)
			}
		}
	}
}

func TestLatin1Charset(t *testing.T) {
	b, ok := nrcsEncode(CharsetLatin1, 'é', false)
	if !ok {
		t.Fatal("latin-1 must encode é")
	}
	if got := nrcsDecode(CharsetLatin1, b, false); got != 'é' {
		t.Errorf("latin-1 round trip: got %q", got)
	}
}

func TestCharsetDesignatorRoundTrip(t *testing.T) {
	sets := []Charset{CharsetASCII, CharsetDECGraph, CharsetGerman, CharsetFrench, CharsetDECTech}
	for _, cs := range sets {
		d := charsetDesignator(cs)
		var sel uint16
		if len(d) == 2 {
			sel = uint16(d[0])<<8 | uint16(d[1])
		} else {
			sel = uint16(d[0])
		}
		if got := nrcsParse(sel, false, 4, true); got != cs {
			t.Errorf("designator %q: expected %v, got %v", d, cs, got)
		}
	}
}
