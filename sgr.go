package vtcore

// applySGR interprets the accumulated SGR parameters against the
// current rendition. Both ';' and ':' separated extended colors are
// accepted, including the leading-colorspace truecolor form
// (38:2:0:r:g:b) and styled underlines (4:n).
func (t *Terminal) applySGR() {
	p := &t.parser
	a := t.screen.sgr
	if p.nParams == 0 {
		a = t.resetSGRKeepURI(a)
	}
	for i := 0; i < p.nParams; i++ {
		switch v := p.param(i, 0); v {
		case 0:
			a = t.resetSGRKeepURI(a)
		case 1:
			a.Bold = true
		case 2:
			a.Faint = true
		case 3:
			a.Italic = true
		case 4:
			a.Underline = UnderlineSingle
			if p.isSub(i + 1) {
				i++
				switch p.param(i, 1) {
				case 0:
					a.Underline = UnderlineNone
				case 1:
					a.Underline = UnderlineSingle
				case 2:
					a.Underline = UnderlineDouble
				case 3, 4, 5:
					a.Underline = UnderlineCurly
				}
			}
		case 5, 6:
			a.Blink = true
		case 7:
			a.Reverse = true
		case 8:
			a.Invisible = true
		case 9:
			a.Strikethrough = true
		case 21:
			a.Underline = UnderlineDouble
		case 22:
			a.Bold, a.Faint = false, false
		case 23:
			a.Italic = false
		case 24:
			a.Underline = UnderlineNone
		case 25:
			a.Blink = false
		case 27:
			a.Reverse = false
		case 28:
			a.Invisible = false
		case 29:
			a.Strikethrough = false
		case 38:
			if c, adv, ok := t.extendedColor(i); ok {
				a.Fg = c
				i += adv
			} else {
				i = p.nParams
			}
		case 39:
			a.Fg = PaletteColor(SpecialFg)
		case 48:
			if c, adv, ok := t.extendedColor(i); ok {
				a.Bg = c
				i += adv
			} else {
				i = p.nParams
			}
		case 49:
			a.Bg = PaletteColor(SpecialBg)
		case 58:
			if c, adv, ok := t.extendedColor(i); ok {
				a.Ul = c
				i += adv
			} else {
				i = p.nParams
			}
		case 59:
			a.Ul = PaletteColor(SpecialFg)
		default:
			switch {
			case v >= 30 && v <= 37:
				a.Fg = PaletteColor(v - 30)
			case v >= 40 && v <= 47:
				a.Bg = PaletteColor(v - 40)
			case v >= 90 && v <= 97:
				a.Fg = PaletteColor(v - 90 + 8)
			case v >= 100 && v <= 107:
				a.Bg = PaletteColor(v - 100 + 8)
			default:
				t.trace.Trace("unknown SGR %d", v)
			}
		}
	}
	t.screen.sgr = a
}

// resetSGRKeepURI is SGR 0: everything resets except the protected bit
// (owned by DECSCA) and the explicit OSC 8 link.
func (t *Terminal) resetSGRKeepURI(a Attribute) Attribute {
	n := DefaultAttribute()
	n.Protected = a.Protected
	n.URI = a.URI
	return n
}

// extendedColor parses the parameter run after SGR 38/48/58 and
// returns the color plus how many parameters were consumed.
func (t *Terminal) extendedColor(i int) (Color, int, bool) {
	p := &t.parser
	if p.isSub(i + 1) {
		// Colon form: gather the subparameter run.
		subs := make([]int, 0, 6)
		j := i + 1
		for ; j < p.nParams && p.isSub(j); j++ {
			subs = append(subs, p.param(j, 0))
		}
		adv := len(subs)
		if len(subs) == 0 {
			return 0, 0, false
		}
		switch subs[0] {
		case 5:
			if len(subs) >= 2 {
				return PaletteColor(clampInt(subs[1], 0, 255)), adv, true
			}
		case 2:
			rgb := subs[1:]
			if len(rgb) >= 4 {
				// Leading colorspace id.
				rgb = rgb[1:]
			}
			if len(rgb) >= 3 {
				return DirectColor(uint8(clampInt(rgb[0], 0, 255)),
					uint8(clampInt(rgb[1], 0, 255)),
					uint8(clampInt(rgb[2], 0, 255)), 255), adv, true
			}
		}
		return 0, adv, false
	}

	// Semicolon form.
	switch p.param(i+1, -1) {
	case 5:
		return PaletteColor(clampInt(p.param(i+2, 0), 0, 255)), 2, true
	case 2:
		return DirectColor(uint8(clampInt(p.param(i+2, 0), 0, 255)),
			uint8(clampInt(p.param(i+3, 0), 0, 255)),
			uint8(clampInt(p.param(i+4, 0), 0, 255)), 255), 4, true
	}
	return 0, 0, false
}

// sgrRectApply builds the attribute-modifying closure for DECCARA from
// the trailing parameter list.
func sgrRectApply(params []int) func(Attribute) Attribute {
	return func(a Attribute) Attribute {
		for _, v := range params {
			switch v {
			case 0:
				a.Bold, a.Faint, a.Italic = false, false, false
				a.Underline = UnderlineNone
				a.Blink, a.Reverse, a.Strikethrough, a.Invisible = false, false, false, false
			case 1:
				a.Bold = true
			case 4:
				a.Underline = UnderlineSingle
			case 5:
				a.Blink = true
			case 7:
				a.Reverse = true
			case 22:
				a.Bold, a.Faint = false, false
			case 24:
				a.Underline = UnderlineNone
			case 25:
				a.Blink = false
			case 27:
				a.Reverse = false
			}
		}
		return a
	}
}

func sgrRectReverse(params []int) func(Attribute) Attribute {
	return func(a Attribute) Attribute {
		for _, v := range params {
			switch v {
			case 0:
				a.Bold = !a.Bold
				if a.Underline == UnderlineNone {
					a.Underline = UnderlineSingle
				} else {
					a.Underline = UnderlineNone
				}
				a.Blink = !a.Blink
				a.Reverse = !a.Reverse
			case 1:
				a.Bold = !a.Bold
			case 4:
				if a.Underline == UnderlineNone {
					a.Underline = UnderlineSingle
				} else {
					a.Underline = UnderlineNone
				}
			case 5:
				a.Blink = !a.Blink
			case 7:
				a.Reverse = !a.Reverse
			}
		}
		return a
	}
}
