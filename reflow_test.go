package vtcore

import "testing"

func TestReflowWrapThenWiden(t *testing.T) {
	term, _ := newTestTerminal(t, 3, 10)
	term.WriteString("The quick brown fox jumps\r\n")

	// At 10 columns the paragraph wraps twice and the trailing line
	// feed pushed the first fragment into scrollback.
	if got := term.ScreenText(); got != "brown fox\njumps\n" {
		t.Fatalf("pre-resize rows: %q", got)
	}
	if n := term.screen.ScrollbackLines(); n != 1 {
		t.Fatalf("expected 1 scrollback line, got %d", n)
	}

	term.Resize(15, 3)
	if got := term.RowText(0); got != "The quick brown" {
		t.Errorf("row 0: got %q", got)
	}
	if got := term.RowText(1); got != "fox jumps" {
		t.Errorf("row 1: got %q", got)
	}
	if x, y := term.screen.cursor.X, term.screen.cursor.Y; x != 0 || y != 2 {
		t.Errorf("expected cursor (0,2), got (%d,%d)", x, y)
	}
	if term.screen.Span(0).Line != term.screen.Span(1).Line {
		t.Error("rows 0 and 1 should map the same logical line")
	}
}

func TestReflowRoundTripStability(t *testing.T) {
	term, _ := newTestTerminal(t, 5, 10)
	term.WriteString("aaaa bbbb cccc dddd")

	before := term.ScreenText()
	term.Resize(7, 5)
	term.Resize(13, 5)
	term.Resize(10, 5)
	if got := term.ScreenText(); got != before {
		t.Errorf("resize round trip changed content:\nbefore %q\nafter  %q", before, got)
	}
	cx, cy := term.screen.cursor.X, term.screen.cursor.Y
	term.WriteString("!")
	_ = cx
	_ = cy
	// The cursor still appends at the end of the typed text.
	if got := term.RowText(1); got != "cccc dddd!" {
		t.Errorf("append after round trip: got rows %q", term.ScreenText())
	}
}

func TestReflowPreservesLineIdentity(t *testing.T) {
	term, _ := newTestTerminal(t, 4, 10)
	term.WriteString("0123456789ABCDE\x1b[1;1H")

	l0 := term.screen.Span(0).Line
	term.Resize(15, 4)
	if term.screen.Span(0).Line != l0 {
		t.Error("reflow should keep the same Line for the paragraph head")
	}
	if got := term.RowText(0); got != "0123456789ABCDE" {
		t.Errorf("row 0: got %q", got)
	}
}

func TestReflowShrinkHeight(t *testing.T) {
	term, _ := newTestTerminal(t, 5, 10)
	term.WriteString("a\r\nb\r\nc")
	term.Resize(10, 2)
	// The cursor row stays visible.
	if got := term.RowText(term.screen.cursor.Y); got != "c" {
		t.Errorf("cursor row after shrink: %q (screen %q)", got, term.ScreenText())
	}
}

func TestReflowGrowHeightRevealsNothingBogus(t *testing.T) {
	term, _ := newTestTerminal(t, 2, 10)
	term.WriteString("a\r\nb")
	term.Resize(10, 4)
	if got := term.RowText(0); got != "a" {
		t.Errorf("row 0 after grow: %q", got)
	}
	if got := term.RowText(1); got != "b" {
		t.Errorf("row 1 after grow: %q", got)
	}
}

func TestSoftWrapIdentityWalk(t *testing.T) {
	term, _ := newTestTerminal(t, 4, 8)
	term.WriteString("abcdefghijklmnop") // exactly two rows at width 8

	sp := term.screen.Span(0)
	l := sp.Line
	var out []rune
	off := 0
	for {
		next := l.advanceWidth(off, 8)
		for i := off; i < next; i++ {
			out = append(out, l.cells()[i].Rune())
		}
		if next >= l.size {
			break
		}
		off = next
	}
	if got := string(out); got != "abcdefghijklmnop" {
		t.Errorf("advanceWidth walk: got %q", got)
	}
}
