package vtcore

import "testing"

func TestDECCRARectCopy(t *testing.T) {
	term, _ := newTestTerminal(t, 8, 20)
	// Fill columns 1-3 of rows 1-2 with X.
	term.WriteString("\x1b[88;1;1;2;3$x")
	if got := term.RowText(0); got != "XXX" {
		t.Fatalf("DECFRA fill: row 0 %q", got)
	}
	if got := term.RowText(1); got != "XXX" {
		t.Fatalf("DECFRA fill: row 1 %q", got)
	}

	// Copy the block to rows 4-5, columns 5-7.
	term.WriteString("\x1b[1;1;2;3;4;5$v")
	if got := term.RowText(0); got != "XXX" {
		t.Errorf("source row 0 should be intact, got %q", got)
	}
	if got := term.RowText(3); got != "    XXX" {
		t.Errorf("dest row 3: got %q", got)
	}
	if got := term.RowText(4); got != "    XXX" {
		t.Errorf("dest row 4: got %q", got)
	}
}

func TestDECERAAndDECSERA(t *testing.T) {
	term, _ := newTestTerminal(t, 4, 10)
	term.WriteString("aaaa\r\nbbbb\r\ncccc")
	term.WriteString("\x1b[1;2;2;3$z") // erase rect rows 1-2, cols 2-3
	if got := term.RowText(0); got != "a  a" {
		t.Errorf("DECERA row 0: %q", got)
	}
	if got := term.RowText(1); got != "b  b" {
		t.Errorf("DECERA row 1: %q", got)
	}
	if got := term.RowText(2); got != "cccc" {
		t.Errorf("DECERA row 2 untouched: %q", got)
	}

	// Protected cells survive DECSERA.
	term.WriteString("\x1b[3;1H\x1b[1\"qP\x1b[0\"q")
	term.WriteString("\x1b[3;1;3;4${")
	if got := term.screen.CellAt(0, 2).Rune(); got != 'P' {
		t.Errorf("expected protected cell to survive DECSERA, got %q", got)
	}
	if got := term.screen.CellAt(1, 2).Rune(); got != ' ' {
		t.Errorf("expected unprotected cell erased, got %q", got)
	}
}

func TestDECCARAAndDECRARA(t *testing.T) {
	term, _ := newTestTerminal(t, 4, 10)
	term.WriteString("abcd")
	term.WriteString("\x1b[2*x")        // exact-rectangle extent (DECSACE)
	term.WriteString("\x1b[1;1;1;4;1$r") // DECCARA: bold on cols 1-4 row 1
	if a := term.screen.AttrAt(0, 0); !a.Bold {
		t.Error("DECCARA should set bold")
	}
	term.WriteString("\x1b[1;1;1;2;1$t") // DECRARA: toggle bold cols 1-2
	if a := term.screen.AttrAt(0, 0); a.Bold {
		t.Error("DECRARA should have toggled bold off at col 1")
	}
	if a := term.screen.AttrAt(2, 0); !a.Bold {
		t.Error("DECRARA should not touch col 3")
	}
}

func TestDECRQCRAChecksumStable(t *testing.T) {
	term, out := newTestTerminal(t, 4, 10)
	term.WriteString("abc")
	term.WriteString("\x1b[1;1;1;1;1;3*y")
	first := out.String()
	if len(first) == 0 {
		t.Fatal("expected a checksum reply")
	}
	out.Reset()
	term.WriteString("\x1b[1;1;1;1;1;3*y")
	if out.String() != first {
		t.Error("checksum over unchanged cells should be stable")
	}
	out.Reset()
	term.WriteString("\x1b[1;1HX")
	term.WriteString("\x1b[1;1;1;1;1;3*y")
	if out.String() == first {
		t.Error("checksum should change when cells change")
	}
}

func TestInsertDeleteLines(t *testing.T) {
	term, _ := newTestTerminal(t, 4, 10)
	term.WriteString("aaa\r\nbbb\r\nccc\r\nddd")
	term.WriteString("\x1b[2;1H\x1b[1L")
	if got := term.ScreenText(); got != "aaa\n\nbbb\nccc" {
		t.Fatalf("IL: got %q", got)
	}
	term.WriteString("\x1b[2;1H\x1b[1M")
	if got := term.ScreenText(); got != "aaa\nbbb\nccc\n" {
		t.Errorf("DL: got %q", got)
	}
}

func TestInsertDeleteChars(t *testing.T) {
	term, _ := newTestTerminal(t, 2, 10)
	term.WriteString("abcdef\x1b[1;3H\x1b[2@")
	if got := term.RowText(0); got != "ab  cdef" {
		t.Fatalf("ICH: got %q", got)
	}
	term.WriteString("\x1b[1;3H\x1b[2P")
	if got := term.RowText(0); got != "abcdef" {
		t.Errorf("DCH: got %q", got)
	}
}

func TestEraseCharacters(t *testing.T) {
	term, _ := newTestTerminal(t, 2, 10)
	term.WriteString("abcdef\x1b[1;2H\x1b[3X")
	if got := term.RowText(0); got != "a   ef" {
		t.Errorf("ECH: got %q", got)
	}
}

func TestInsertDeleteColumns(t *testing.T) {
	term, _ := newTestTerminal(t, 3, 10)
	term.WriteString("abcd\r\nefgh")
	term.WriteString("\x1b[1;2H\x1b[2'}")
	if got := term.RowText(0); got != "a  bcd" {
		t.Errorf("DECIC row 0: %q", got)
	}
	if got := term.RowText(1); got != "e  fgh" {
		t.Errorf("DECIC row 1: %q", got)
	}
	term.WriteString("\x1b[1;2H\x1b[2'~")
	if got := term.RowText(0); got != "abcd" {
		t.Errorf("DECDC row 0: %q", got)
	}
}

func TestEraseDisplayBelow(t *testing.T) {
	term, _ := newTestTerminal(t, 3, 10)
	term.WriteString("aaa\r\nbbb\r\nccc")
	term.WriteString("\x1b[2;2H\x1b[J")
	if got := term.ScreenText(); got != "aaa\nb\n" {
		t.Errorf("ED 0: got %q", got)
	}
}

func TestEraseScrollback(t *testing.T) {
	term, _ := newTestTerminal(t, 2, 10)
	term.WriteString("a\r\nb\r\nc")
	if term.screen.ScrollbackLines() != 1 {
		t.Fatalf("expected scrollback before ED 3")
	}
	term.WriteString("\x1b[3J")
	if got := term.screen.ScrollbackLines(); got != 0 {
		t.Errorf("ED 3 should clear scrollback, got %d", got)
	}
	if got := term.ScreenText(); got != "b\nc" {
		t.Errorf("ED 3 must not touch the screen, got %q", got)
	}
}

func TestLeftRightMargins(t *testing.T) {
	term, _ := newTestTerminal(t, 4, 10)
	term.WriteString("0123456789\r\nabcdefghij")
	term.WriteString("\x1b[?69h")  // DECLRMM
	term.WriteString("\x1b[3;6s")  // DECSLRM: columns 3-6
	term.WriteString("\x1b[1;3H")
	// Scroll the margin box up by one.
	term.WriteString("\x1b[1S")
	if got := term.RowText(0); got != "01cdef6789" {
		t.Errorf("boxed scroll row 0: %q", got)
	}
	if got := term.RowText(1); got != "ab    ghij" {
		t.Errorf("boxed scroll row 1: %q", got)
	}
}

func TestScrollConservation(t *testing.T) {
	term, _ := newTestTerminal(t, 3, 10)
	term.WriteString("a\r\nb\r\nc")

	// Collect the visible lines before scrolling.
	var before []*Line
	for y := 0; y < 3; y++ {
		before = append(before, term.screen.Span(y).Line)
	}
	term.screen.scroll(0, 1, true)

	// The rotated-out line is now scrollback; the remaining lines are
	// still on screen, plus one fresh blank.
	if term.screen.top.Line != before[0] {
		// top still points at the oldest retained line
		t.Error("expected the first line at the top of scrollback")
	}
	if term.screen.Span(0).Line != before[1] || term.screen.Span(1).Line != before[2] {
		t.Error("surviving lines must keep their identity after scroll")
	}
	if got := term.RowText(2); got != "" {
		t.Errorf("expected fresh blank at the bottom, got %q", got)
	}
}
