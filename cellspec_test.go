package vtcore

import "testing"

func TestCellSpecBrightBold(t *testing.T) {
	term, _ := newTestTerminal(t, 4, 20)
	term.WriteString("\x1b[1;31mA")
	spec := term.CellSpecAt(0, 0)
	if spec.Fg != term.palette[9] {
		t.Errorf("bold low-palette fg must map to bright: got %v", spec.Fg)
	}
	if spec.Face != FaceBold {
		t.Errorf("expected bold face, got %v", spec.Face)
	}
}

func TestCellSpecFaintHalving(t *testing.T) {
	term, _ := newTestTerminal(t, 4, 20)
	term.WriteString("\x1b[2;37mA")
	spec := term.CellSpecAt(0, 0)
	full := term.palette[7]
	if spec.Fg.R != full.R/2 || spec.Fg.G != full.G/2 || spec.Fg.B != full.B/2 {
		t.Errorf("faint must halve channels: got %v", spec.Fg)
	}
}

func TestCellSpecReverseSwap(t *testing.T) {
	term, _ := newTestTerminal(t, 4, 20)
	term.WriteString("\x1b[7mA")
	spec := term.CellSpecAt(0, 0)
	if spec.Fg != term.palette[SpecialBg] || spec.Bg != term.palette[SpecialFg] {
		t.Errorf("reverse must swap fg/bg: fg=%v bg=%v", spec.Fg, spec.Bg)
	}
}

func TestCellSpecBlinkPhase(t *testing.T) {
	term, _ := newTestTerminal(t, 4, 20)
	term.WriteString("\x1b[5mA")
	term.SetBlinkPhase(true)
	spec := term.CellSpecAt(0, 0)
	if spec.Fg != spec.Bg {
		t.Error("blink-off phase must hide the glyph")
	}
	term.SetBlinkPhase(false)
	spec = term.CellSpecAt(0, 0)
	if spec.Fg == spec.Bg {
		t.Error("blink-on phase must show the glyph")
	}
}

func TestCellSpecFullBlockOptimization(t *testing.T) {
	term, _ := newTestTerminal(t, 4, 20)
	term.WriteString("\x1b[31m█")
	spec := term.CellSpecAt(0, 0)
	if spec.Bg != spec.Fg {
		t.Error("U+2588 must paint bg=fg")
	}
}

func TestCellSpecSelectionOverride(t *testing.T) {
	selFg := RGBA{1, 2, 3, 255}
	term, _ := newTestTerminal(t, 4, 20, WithConfig(Config{SelectionFg: &selFg}))
	term.WriteString("hi")
	sel := term.Selection()
	sel.Begin(term.screen, 0, 0, SelectionChar)
	sel.Drag(term.screen, 1, 0)
	spec := term.CellSpecAt(0, 0)
	if spec.Fg != selFg {
		t.Errorf("selection palette override: got %v", spec.Fg)
	}
}

func TestCellSpecReverseVideoMode(t *testing.T) {
	term, _ := newTestTerminal(t, 4, 20)
	term.WriteString("A\x1b[?5h")
	spec := term.CellSpecAt(0, 0)
	if spec.Fg != term.palette[SpecialBg] {
		t.Errorf("DECSCNM must swap the whole screen: got %v", spec.Fg)
	}
}
