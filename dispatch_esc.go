package vtcore

// dispatchEsc executes an ESC sequence once its final byte arrives.
// Intermediates live in the parser accumulator.
func (t *Terminal) dispatchEsc(final byte) {
	p := &t.parser
	s := t.screen

	switch p.i0 {
	case 0:
	case '#':
		switch final {
		case '8': // DECALN
			s.decaln()
		case '3', '4', '5', '6': // double-width/height line attributes
			t.trace.Trace("line attribute ESC #%c not supported", final)
		default:
			t.traceDropped("ESC#", final)
		}
		return
	case ' ':
		switch final {
		case 'F': // S7C1T
			t.modes.eightBit = false
		case 'G': // S8C1T
			if t.vtLevel >= 2 {
				t.modes.eightBit = true
			}
		default:
			t.traceDropped("ESC", final)
		}
		return
	case '%':
		switch final {
		case 'G': // select UTF-8
			t.modes.utf8 = true
		case '@': // select default (Latin-1)
			t.modes.utf8 = false
		default:
			t.traceDropped("ESC%%", final)
		}
		return
	case '(', ')', '*', '+':
		t.designateCharset(int(p.i0-'('), final, false)
		return
	case '-', '.', '/':
		t.designateCharset(int(p.i0-'-')+1, final, true)
		return
	default:
		t.traceDropped("ESC", final)
		return
	}

	switch final {
	case '7': // DECSC
		s.saveCursor()
	case '8': // DECRC
		s.restoreCursor()
	case 'D': // IND
		s.index(true)
	case 'E': // NEL
		s.index(true)
		s.cr()
	case 'H': // HTS
		s.setTab(s.cursor.X)
	case 'M': // RI
		s.rindex()
	case 'N': // SS2
		s.cursor.GLSS = 2
	case 'O': // SS3
		s.cursor.GLSS = 3
	case 'V': // SPA
		s.setProtected(true)
	case 'W': // EPA
		s.setProtected(false)
	case 'Z': // DECID
		t.reportDA1()
	case 'c': // RIS
		t.Reset()
	case '6': // DECBI
		t.backIndex()
	case '9': // DECFI
		t.forwardIndex()
	case '=': // DECKPAM
		t.modes.appKeypad = true
	case '>': // DECKPNM
		t.modes.appKeypad = false
	case 'n': // LS2
		s.cursor.GL = 2
	case 'o': // LS3
		s.cursor.GL = 3
	case '|': // LS3R
		s.cursor.GR = 3
	case '}': // LS2R
		s.cursor.GR = 2
	case '~': // LS1R
		s.cursor.GR = 1
	case '\\': // ST with no string open
	default:
		t.traceDropped("ESC", final)
	}
}

// designateCharset assigns a charset to a G slot from its selector.
func (t *Terminal) designateCharset(slot int, final byte, is96 bool) {
	p := &t.parser
	sel := uint16(final)
	if p.i1 != 0 {
		sel |= uint16(p.i1) << 8
	}
	cs := nrcsParse(sel, is96, t.vtLevel, t.modes.nrcs)
	if cs == CharsetInvalid {
		t.trace.Trace("invalid charset designation %q for G%d", string(rune(final)), slot)
		return
	}
	t.screen.cursor.GN[slot] = cs
}

// backIndex implements DECBI: step left, scrolling the margin box
// right at the left margin.
func (t *Terminal) backIndex() {
	s := t.screen
	if s.cursor.X == s.effLeft() {
		saveY := s.cursor.Y
		s.cursor.Y = s.topMargin
		s.insertColumns(1)
		s.cursor.Y = saveY
	} else {
		s.cursor.X--
	}
	s.cursor.PendingWrap = false
}

// forwardIndex implements DECFI.
func (t *Terminal) forwardIndex() {
	s := t.screen
	if s.cursor.X == s.effRight()-1 {
		saveX, saveY := s.cursor.X, s.cursor.Y
		s.cursor.X, s.cursor.Y = s.effLeft(), s.topMargin
		s.deleteColumns(1)
		s.cursor.X, s.cursor.Y = saveX, saveY
	} else {
		s.cursor.X++
	}
	s.cursor.PendingWrap = false
}

// dispatchVT52 interprets the byte after ESC in VT52 mode.
func (t *Terminal) dispatchVT52(b byte) {
	p := &t.parser
	s := t.screen
	switch b {
	case 'A':
		s.moveRel(0, -1)
	case 'B':
		s.moveRel(0, 1)
	case 'C':
		s.moveRel(1, 0)
	case 'D':
		s.moveRel(-1, 0)
	case 'F': // enter graphics mode
		s.cursor.GN[s.cursor.GL] = CharsetDECGraph
	case 'G': // exit graphics mode
		s.cursor.GN[s.cursor.GL] = CharsetASCII
	case 'H':
		s.moveTo(0, 0)
	case 'I': // reverse line feed
		s.rindex()
	case 'J':
		s.eraseScreen(0, false)
	case 'K':
		s.eraseLine(0, false)
	case 'Y':
		p.state = stateVT52CUP0
	case 'Z':
		t.writeResponseString("\x1b/Z")
	case '=':
		t.modes.appKeypad = true
	case '>':
		t.modes.appKeypad = false
	case '<': // exit VT52, return to ANSI
		t.modes.ansi = true
	default:
		t.traceDropped("VT52", b)
	}
}
