package vtcore

import "fmt"

// dispatchCSI executes a completed CSI sequence. The packed selector
// (final | private<<8 | i0<<16 | i1<<24) keys the dispatch; parameters
// stay in the parser accumulator.
func (t *Terminal) dispatchCSI(final byte) {
	p := &t.parser
	if t.hooks.CSI != nil {
		params := make([]int, p.nParams)
		copy(params, p.params[:p.nParams])
		called := false
		t.hooks.CSI(p.selector(final), params, func() {
			called = true
			t.dispatchCSIInternal(final)
		})
		if !called {
			return
		}
		return
	}
	t.dispatchCSIInternal(final)
}

func (t *Terminal) dispatchCSIInternal(final byte) {
	p := &t.parser
	s := t.screen

	switch p.priv {
	case '?':
		t.dispatchCSIPrivate(final)
		return
	case '>':
		t.dispatchCSIGt(final)
		return
	case '=':
		if final == 'c' {
			t.reportDA3()
			return
		}
		t.traceDropped("CSI", final)
		return
	}

	switch p.i0 {
	case 0:
	case ' ':
		switch final {
		case 'q': // DECSCUSR
			v := p.param(0, 0)
			if v >= 0 && v <= 6 {
				if v == 0 {
					v = 1
				}
				t.cursorStyle = CursorStyle(v - 1)
			}
		case '@': // SL: shift left
			t.shiftColumns(-p.param(0, 1))
		case 'A': // SR: shift right
			t.shiftColumns(p.param(0, 1))
		default:
			t.traceDropped("CSI", final)
		}
		return
	case '!':
		if final == 'p' { // DECSTR
			t.SoftReset()
			return
		}
		t.traceDropped("CSI", final)
		return
	case '"':
		switch final {
		case 'p': // DECSCL
			t.setConformanceLevel(p.param(0, 62), p.param(1, 0))
		case 'q': // DECSCA
			s.setProtected(p.param(0, 0) == 1)
		default:
			t.traceDropped("CSI", final)
		}
		return
	case '$':
		t.dispatchCSIDollar(final)
		return
	case '*':
		switch final {
		case 'y': // DECRQCRA
			t.reportChecksum()
		case 'x': // DECSACE
			t.rectByLine = p.param(0, 0) != 2
		default:
			t.traceDropped("CSI", final)
		}
		return
	case '\'':
		t.dispatchCSILocator(final)
		return
	default:
		t.traceDropped("CSI", final)
		return
	}

	switch final {
	case '@': // ICH
		s.insertCells(p.param(0, 1))
	case 'A': // CUU
		s.moveRel(0, -p.param(0, 1))
	case 'B': // CUD
		s.moveRel(0, p.param(0, 1))
	case 'C': // CUF
		s.moveRel(p.param(0, 1), 0)
	case 'D': // CUB
		s.moveRel(-p.param(0, 1), 0)
	case 'E': // CNL
		s.moveRel(0, p.param(0, 1))
		s.cr()
	case 'F': // CPL
		s.moveRel(0, -p.param(0, 1))
		s.cr()
	case 'G', '`': // CHA / HPA
		s.moveTo(s.originX(p.param(0, 1)-1), s.cursor.Y)
	case 'H', 'f': // CUP / HVP
		s.moveTo(s.originX(p.param(1, 1)-1), s.originY(p.param(0, 1)-1))
	case 'I': // CHT
		t.tab(p.param(0, 1))
	case 'J': // ED
		s.eraseScreen(p.param(0, 0), false)
	case 'K': // EL
		s.eraseLine(p.param(0, 0), false)
	case 'L': // IL
		s.insertLines(p.param(0, 1))
	case 'M': // DL
		s.deleteLines(p.param(0, 1))
	case 'P': // DCH
		s.deleteCells(p.param(0, 1))
	case 'S': // SU
		s.scroll(s.topMargin, p.param(0, 1), false)
	case 'T': // SD
		s.scroll(s.topMargin, -p.param(0, 1), false)
	case 'X': // ECH
		s.eraseChars(p.param(0, 1))
	case 'Z': // CBT
		t.backTab(p.param(0, 1))
	case 'a': // HPR
		s.moveRel(p.param(0, 1), 0)
	case 'b': // REP
		t.repeatLast(p.param(0, 1))
	case 'c': // DA1
		if p.param(0, 0) == 0 {
			t.reportDA1()
		}
	case 'd': // VPA
		s.moveTo(s.cursor.X, s.originY(p.param(0, 1)-1))
	case 'e': // VPR
		s.moveRel(0, p.param(0, 1))
	case 'g': // TBC
		switch p.param(0, 0) {
		case 0:
			s.clearTab(s.cursor.X)
		case 3:
			s.clearAllTabs()
		}
	case 'h': // SM
		for i := 0; i < maxInt(p.nParams, 1); i++ {
			t.setAnsiMode(p.param(i, 0), true)
		}
	case 'i': // MC
		t.mediaCopy(p.param(0, 0))
	case 'l': // RM
		for i := 0; i < maxInt(p.nParams, 1); i++ {
			t.setAnsiMode(p.param(i, 0), false)
		}
	case 'm': // SGR
		t.applySGR()
	case 'n': // DSR
		t.reportDSR(p.param(0, 0), false)
	case 'r': // DECSTBM
		s.setMargins(p.param(0, 1)-1, p.param(1, s.height))
	case 's':
		if s.lrmm { // DECSLRM
			s.setLRMargins(p.param(0, 1)-1, p.param(1, s.width))
		} else { // SCOSC
			s.saveCursor()
		}
	case 't': // XTWINOPS
		t.windowOps()
	case 'u': // SCORC
		s.restoreCursor()
	case 'x': // DECREQTPARM
		if v := p.param(0, 0); v == 0 || v == 1 {
			t.csiReply("%d;1;1;112;112;1;0x", v+2)
		}
	default:
		t.traceDropped("CSI", final)
	}
}

// dispatchCSIPrivate executes CSI ? sequences.
func (t *Terminal) dispatchCSIPrivate(final byte) {
	p := &t.parser
	s := t.screen
	switch {
	case p.i0 == '$' && final == 'p': // DECRQM private
		t.reportDECRQM(p.param(0, 0), true)
		return
	case p.i0 != 0:
		t.traceDropped("CSI?", final)
		return
	}
	switch final {
	case 'h':
		for i := 0; i < maxInt(p.nParams, 1); i++ {
			t.setPrivateMode(p.param(i, 0), true)
		}
	case 'l':
		for i := 0; i < maxInt(p.nParams, 1); i++ {
			t.setPrivateMode(p.param(i, 0), false)
		}
	case 'J': // DECSED
		s.eraseScreen(p.param(0, 0), true)
	case 'K': // DECSEL
		s.eraseLine(p.param(0, 0), true)
	case 'n': // DECDSR
		t.reportDSR(p.param(0, 0), true)
	case 'r': // XTRESTORE
		t.xtRestoreModes(p.params[:maxInt(p.nParams, 0)])
	case 's': // XTSAVE
		t.xtSaveModes(p.params[:maxInt(p.nParams, 0)])
	case 'W': // DECST8C
		if p.param(0, 0) == 5 {
			s.resetTabs()
		}
	default:
		t.traceDropped("CSI?", final)
	}
}

// dispatchCSIGt executes CSI > sequences.
func (t *Terminal) dispatchCSIGt(final byte) {
	p := &t.parser
	switch final {
	case 'c': // DA2
		if p.param(0, 0) == 0 {
			t.reportDA2()
		}
	case 'm': // XTMODKEYS
		t.keyboard.setModifyKeys(p.param(0, -1), p.param(1, -1))
	case 'n': // XTMODKEYS reset
		t.keyboard.resetModifyKeys(p.param(0, -1))
	case 'p': // XTSMPOINTER
		t.mouse.pointerMode = p.param(0, 1)
	case 't', 'T': // title mode set/reset
		// Title modes select hex/UTF-8 title transport; tracked as bits.
		for i := 0; i < p.nParams; i++ {
			t.setTitleMode(p.param(i, 0), final == 't')
		}
	default:
		t.traceDropped("CSI>", final)
	}
}

// dispatchCSIDollar executes the '$'-intermediate rectangle family.
func (t *Terminal) dispatchCSIDollar(final byte) {
	p := &t.parser
	s := t.screen
	switch final {
	case 'p': // DECRQM (ANSI)
		t.reportDECRQM(p.param(0, 0), false)
	case 'w': // DECRQPSR
		t.reportPresentationState(p.param(0, 0))
	case 'r': // DECCARA
		x0, y0, x1, y1 := t.rectArgs(0)
		t.screen.changeRectSGR(x0, y0, x1, y1, t.rectByLine, sgrRectApply(t.rectSGRParams()))
	case 't': // DECRARA
		x0, y0, x1, y1 := t.rectArgs(0)
		t.screen.changeRectSGR(x0, y0, x1, y1, t.rectByLine, sgrRectReverse(t.rectSGRParams()))
	case 'v': // DECCRA
		sy := p.param(0, 1) - 1
		sx := p.param(1, 1) - 1
		ey := p.param(2, s.height)
		ex := p.param(3, s.width)
		// Full form carries source and destination pages; clients that
		// omit the pages put the destination right after the rectangle.
		dy := p.param(5, 1) - 1
		dx := p.param(6, 1) - 1
		if p.nParams == 6 {
			dy = p.param(4, 1) - 1
			dx = p.param(5, 1) - 1
		}
		s.copyRect(sx, sy, ex, ey, dx, dy)
	case 'x': // DECFRA
		r := rune(p.param(0, 32))
		if r < 32 || (r > 126 && r < 160) {
			r = ' '
		}
		x0, y0, x1, y1 := t.rectArgs(1)
		s.fillRect(r, x0, y0, x1, y1)
	case 'z': // DECERA
		x0, y0, x1, y1 := t.rectArgs(0)
		s.eraseRect(x0, y0, x1, y1, false)
	case '{': // DECSERA
		x0, y0, x1, y1 := t.rectArgs(0)
		s.eraseRect(x0, y0, x1, y1, true)
	case '|': // DECSCPP
		if t.cfg.EnableColumns132 {
			cols := p.param(0, 80)
			if cols == 0 {
				cols = 80
			}
			s.Resize(cols, s.height)
		}
	default:
		t.traceDropped("CSI$", final)
	}
}

// rectArgs decodes the leading Pt;Pl;Pb;Pr quad starting at parameter
// base, applying origin mode, into a clamped [x0,x1) x [y0,y1) box.
func (t *Terminal) rectArgs(base int) (x0, y0, x1, y1 int) {
	p := &t.parser
	s := t.screen
	y0 = s.originY(p.param(base+0, 1) - 1)
	x0 = s.originX(p.param(base+1, 1) - 1)
	y1 = s.originY(p.param(base+2, s.height)-1) + 1
	x1 = s.originX(p.param(base+3, s.width)-1) + 1
	x0 = clampInt(x0, 0, s.width)
	x1 = clampInt(x1, 0, s.width)
	y0 = clampInt(y0, 0, s.height)
	y1 = clampInt(y1, 0, s.height)
	return
}

// rectSGRParams returns the SGR parameters trailing the rectangle quad
// of DECCARA/DECRARA.
func (t *Terminal) rectSGRParams() []int {
	p := &t.parser
	if p.nParams <= 4 {
		return []int{0}
	}
	out := make([]int, 0, p.nParams-4)
	for i := 4; i < p.nParams; i++ {
		out = append(out, p.param(i, 0))
	}
	return out
}

// reportChecksum answers DECRQCRA with the rectangle checksum.
func (t *Terminal) reportChecksum() {
	p := &t.parser
	id := p.param(0, 0)
	x0, y0, x1, y1 := t.rectArgs(2)
	sum := t.screen.checksumRect(x0, y0, x1, y1)
	t.dcsReply(fmt.Sprintf("%d!~%04X", id, sum))
}

// shiftColumns implements SL/SR: the content inside the margins moves
// horizontally.
func (t *Terminal) shiftColumns(n int) {
	s := t.screen
	saveX, saveY := s.cursor.X, s.cursor.Y
	s.cursor.X, s.cursor.Y = s.effLeft(), s.topMargin
	if n > 0 {
		s.insertColumns(n)
	} else if n < 0 {
		s.deleteColumns(-n)
	}
	s.cursor.X, s.cursor.Y = saveX, saveY
}

// setConformanceLevel applies DECSCL.
func (t *Terminal) setConformanceLevel(level, eightBit int) {
	switch {
	case level >= 61 && level <= 65:
		t.vtLevel = level - 60
	default:
		return
	}
	t.modes.eightBit = t.vtLevel >= 2 && eightBit != 1
	t.SoftReset()
}

// mediaCopy handles MC: print-screen and printer-controller entry.
func (t *Terminal) mediaCopy(op int) {
	switch op {
	case 0:
		t.printScreen()
	case 4:
		t.printerCtl.active = false
	case 5:
		t.printerCtl.active = true
	}
}

// windowOps executes XTWINOPS, gated by configuration.
func (t *Terminal) windowOps() {
	p := &t.parser
	if !t.cfg.AllowWindowOps {
		t.trace.Trace("XTWINOPS %d ignored: window ops disabled", p.param(0, 0))
		return
	}
	s := t.screen
	switch p.param(0, 0) {
	case 11: // report iconified
		t.csiReply("1t")
	case 13: // report position
		x, y := t.window.GetPosition()
		t.csiReply("3;%d;%dt", x, y)
	case 14: // report pixel size
		w, h := t.window.GetGridSize()
		t.csiReply("4;%d;%dt", h, w)
	case 16: // report cell size
		w, h := t.window.GetCellSize()
		t.csiReply("6;%d;%dt", h, w)
	case 18: // report grid size in cells
		t.csiReply("8;%d;%dt", s.height, s.width)
	case 19: // report screen size in cells
		t.csiReply("9;%d;%dt", s.height, s.width)
	case 20: // report icon title
		t.oscReply("L" + t.encodeTitle(t.iconTitle))
	case 21: // report title
		t.oscReply("l" + t.encodeTitle(t.title))
	case 22: // push title
		switch p.param(1, 0) {
		case 0, 1:
			t.iconStack = append(t.iconStack, t.iconTitle)
		}
		switch p.param(1, 0) {
		case 0, 2:
			t.titleStack = append(t.titleStack, t.title)
		}
	case 23: // pop title
		which := p.param(1, 0)
		if (which == 0 || which == 1) && len(t.iconStack) > 0 {
			t.iconTitle = t.iconStack[len(t.iconStack)-1]
			t.iconStack = t.iconStack[:len(t.iconStack)-1]
			t.titleProv.SetIconTitle(t.iconTitle)
		}
		if (which == 0 || which == 2) && len(t.titleStack) > 0 {
			t.title = t.titleStack[len(t.titleStack)-1]
			t.titleStack = t.titleStack[:len(t.titleStack)-1]
			t.titleProv.SetTitle(t.title)
		}
	default:
		t.trace.Trace("unsupported XTWINOPS %d", p.param(0, 0))
	}
}

// setTitleMode tracks the xterm title transport modes.
func (t *Terminal) setTitleMode(mode int, on bool) {
	switch mode {
	case 0:
		t.titleHexSet = on
	case 1:
		t.titleHexGet = on
	case 2:
		t.titleUTF8Set = on
	case 3:
		t.titleUTF8Get = on
	}
}
