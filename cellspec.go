package vtcore

import "image/color"

// RGBA aliases the resolved color type handed to the renderer.
type RGBA = color.RGBA

// Face selects the font face variant for a cell.
type Face int

const (
	FaceRegular Face = iota
	FaceBold
	FaceItalic
	FaceBoldItalic
)

// CellSpec is the fully-derived description of one visible cell: what
// the renderer paints without knowing any terminal rules.
type CellSpec struct {
	Ch        rune
	Fg        RGBA
	Bg        RGBA
	Ul        RGBA
	Face      Face
	Underline Underline
	Stroke    bool // strikethrough
	Wide      bool
}

// SetBlinkPhase sets the blink phase; the package arms no blink timer
// of its own. In the "off" phase blinking cells render foreground as
// background.
func (t *Terminal) SetBlinkPhase(off bool) {
	if t.blinkPhaseOff != off {
		t.blinkPhaseOff = off
		t.screen.damageAll()
	}
}

// SetActiveURI marks the hyperlink under the pointer (and whether the
// button is held) so its cells highlight.
func (t *Terminal) SetActiveURI(ref URIRef, pressed bool) {
	if t.activeURI != ref || t.activeURIDown != pressed {
		t.activeURI = ref
		t.activeURIDown = pressed
		t.screen.damageAll()
	}
}

// CellSpecAt derives the renderer-facing spec for the cell at view
// position (x, y).
func (t *Terminal) CellSpecAt(x, y int) CellSpec {
	spans := t.screen.ViewSpans()
	if y < 0 || y >= len(spans) || spans[y].Line == nil {
		return CellSpec{Ch: ' ', Fg: t.palette[SpecialFg], Bg: t.palette[SpecialBg]}
	}
	sp := spans[y]
	l := sp.Line
	off := sp.Offset + x
	c := l.cellAt(off)
	a := l.attrs.at(c.attrID)
	selected := t.sel != nil && t.sel.selected(l, off)
	return t.deriveSpec(c, a, selected)
}

// deriveSpec applies the color and face rules in order: special-color
// overrides, bright-bold, faint halving, reverse/selection/URI swap,
// background alpha, blink phase, selection palette, active URI, and
// the full-block optimization.
func (t *Terminal) deriveSpec(c Cell, a Attribute, selected bool) CellSpec {
	cfg := &t.cfg
	fg := a.Fg.Resolve(t.palette)
	bg := a.Bg.Resolve(t.palette)
	ul := a.Ul.Resolve(t.palette)

	// Special-purpose overrides replace the resolved foreground.
	switch {
	case a.Bold && !a.Faint && cfg.SpecialBold != nil:
		fg = *cfg.SpecialBold
	case a.Underline != UnderlineNone && cfg.SpecialUnderline != nil:
		fg = *cfg.SpecialUnderline
	case a.Blink && cfg.SpecialBlink != nil:
		fg = *cfg.SpecialBlink
	case a.Reverse && cfg.SpecialReverse != nil:
		fg = *cfg.SpecialReverse
	case a.Italic && cfg.SpecialItalic != nil:
		fg = *cfg.SpecialItalic
	}

	// Bold maps the low palette half onto the bright half.
	if a.Bold && !cfg.DisableBrightBold {
		if idx := a.Fg.Index(); idx >= 0 && idx < 8 {
			fg = t.palette[idx+8]
		}
	}
	if a.Faint && !a.Bold {
		fg.R /= 2
		fg.G /= 2
		fg.B /= 2
	}

	uriPressed := a.URI != 0 && a.URI == t.activeURI && t.activeURIDown
	if a.Reverse != selected != uriPressed {
		fg, bg = bg, fg
	}
	if t.modes.reverseVideo {
		fg, bg = bg, fg
	}

	if cfg.BgAlpha != 0 && (a.Bg.Index() == SpecialBg || cfg.BlendAllBg) {
		bg.A = cfg.BgAlpha
	}

	if a.Blink && t.blinkPhaseOff {
		fg = bg
	}
	if a.Invisible {
		fg = bg
	}

	if selected {
		if cfg.SelectionFg != nil {
			fg = *cfg.SelectionFg
		}
		if cfg.SelectionBg != nil {
			bg = *cfg.SelectionBg
		}
	}

	underline := a.Underline
	if a.URI != 0 && a.URI == t.activeURI {
		if cfg.URIColor != nil {
			fg = *cfg.URIColor
		}
		if underline == UnderlineNone {
			underline = UnderlineSingle
		}
	}

	ch := c.Rune()
	if ch == 0 || ch == ' ' {
		ch = ' '
	}
	// Full-block cells paint as background-only rectangles.
	if ch == 0x2588 {
		bg = fg
	}

	face := FaceRegular
	switch {
	case a.Bold && a.Italic:
		face = FaceBoldItalic
	case a.Bold:
		face = FaceBold
	case a.Italic:
		face = FaceItalic
	}

	return CellSpec{
		Ch:        ch,
		Fg:        fg,
		Bg:        bg,
		Ul:        ul,
		Face:      face,
		Underline: underline,
		Stroke:    a.Strikethrough,
		Wide:      c.Wide(),
	}
}
