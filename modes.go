package vtcore

// modeSet stores every ANSI and DEC private mode as an individual
// boolean (mouse reporting is a mode/format pair). The XTSAVE /
// XTRESTORE snapshot packs three contiguous number ranges into a
// 21-byte bit vector; modes outside those ranges are not snapshotted.
type modeSet struct {
	// ANSI modes.
	keyboardLocked bool // KAM (2)
	insert         bool // IRM (4)
	noLocalEcho    bool // SRM (12)
	newline        bool // LNM (20)

	// DEC private modes.
	appCursor      bool // 1 DECCKM
	ansi           bool // 2 DECANM; reset drops to VT52
	columns132     bool // 3 DECCOLM
	smoothScroll   bool // 4 DECSCLM
	reverseVideo   bool // 5 DECSCNM
	origin         bool // 6 DECOM (mirrored on the cursor)
	autowrap       bool // 7 DECAWM
	autorepeat     bool // 8 DECARM
	blinkCursor    bool // 12
	cursorVisible  bool // 25 DECTCEM
	allow132       bool // 40
	more1Hack      bool // 41
	nrcs           bool // 42 DECNRCM
	marginBell     bool // 44
	reverseWrap    bool // 45
	appKeypad      bool // 66 DECNKM
	backspaceBS    bool // 67 DECBKM
	lrmm           bool // 69 DECLRMM (mirrored on the screen)
	noAltClear     bool // 95 DECNCSM
	focusEvents    bool // 1004
	scrollOnOutput bool // 1010
	scrollOnInput  bool // 1011
	meta8Bit       bool // 1034
	numLock        bool // 1035
	metaEscape     bool // 1036
	deleteIsDel    bool // 1037
	allowClipRead  bool // 1040/1041
	allowClipWrite bool // 1044
	clipUrgent     bool // 1042
	clipRaise      bool // 1043
	enableAlt      bool // 1046
	saveCursorMode bool // 1048 bookkeeping bit
	bracketedPaste bool // 2004
	pasteQuote     bool // 2005
	pasteLiteralNL bool // 2006
	syncUpdates    bool // 2026

	mouseMode   MouseMode   // 9 / 1000 / 1002 / 1003
	mouseFormat MouseFormat // 1005 / 1006 / 1015 / 1016

	eightBit bool // S8C1T: reports use 8-bit C1 when vtLevel >= 2
	utf8     bool
}

func defaultModes() modeSet {
	return modeSet{
		ansi:           true,
		autowrap:       true,
		autorepeat:     true,
		cursorVisible:  true,
		enableAlt:      true,
		numLock:        true,
		utf8:           true,
		allowClipRead:  true,
		allowClipWrite: true,
	}
}

// xtSavedModes is the XTSAVE snapshot: 21 bytes covering mode numbers
// [0..96) | [1000..1064) | [2000..2008).
type xtSavedModes [21]byte

func xtModeBit(n int) (int, bool) {
	switch {
	case n >= 0 && n < 96:
		return n, true
	case n >= 1000 && n < 1064:
		return 96 + (n - 1000), true
	case n >= 2000 && n < 2008:
		return 160 + (n - 2000), true
	}
	return 0, false
}

func (v *xtSavedModes) set(n int, on bool) {
	bit, ok := xtModeBit(n)
	if !ok {
		return
	}
	if on {
		v[bit/8] |= 1 << uint(bit%8)
	} else {
		v[bit/8] &^= 1 << uint(bit%8)
	}
}

func (v *xtSavedModes) get(n int) bool {
	bit, ok := xtModeBit(n)
	if !ok {
		return false
	}
	return v[bit/8]&(1<<uint(bit%8)) != 0
}

// setAnsiMode applies SM/RM.
func (t *Terminal) setAnsiMode(n int, on bool) {
	switch n {
	case 2:
		t.modes.keyboardLocked = on
	case 4:
		t.modes.insert = on
	case 12:
		t.modes.noLocalEcho = on
	case 20:
		t.modes.newline = on
	default:
		t.trace.Trace("unknown ANSI mode %d", n)
	}
}

// ansiModeValue returns (value, known) for DECRQM of ANSI modes.
func (t *Terminal) ansiModeValue(n int) (bool, bool) {
	switch n {
	case 2:
		return t.modes.keyboardLocked, true
	case 4:
		return t.modes.insert, true
	case 12:
		return t.modes.noLocalEcho, true
	case 20:
		return t.modes.newline, true
	}
	return false, false
}

// setPrivateMode applies DECSET/DECRST.
func (t *Terminal) setPrivateMode(n int, on bool) {
	m := &t.modes
	switch n {
	case 1:
		m.appCursor = on
	case 2:
		m.ansi = on // DECANM reset enters VT52 mode
	case 3:
		if !t.cfg.EnableColumns132 {
			t.trace.Trace("DECCOLM ignored: 132-column support disabled")
			return
		}
		m.columns132 = on
		cols := 80
		if on {
			cols = 132
		}
		t.screen.Resize(cols, t.screen.height)
		if !m.noAltClear {
			t.screen.eraseRect(0, 0, t.screen.width, t.screen.height, false)
		}
		t.screen.resetMargins()
		t.screen.moveTo(0, 0)
	case 4:
		m.smoothScroll = on
		t.screen.smoothEnabled = on
	case 5:
		if m.reverseVideo != on {
			m.reverseVideo = on
			t.screen.damageAll()
		}
	case 6:
		m.origin = on
		t.screen.cursor.Origin = on
		t.screen.moveTo(t.screen.originX(0), t.screen.originY(0))
	case 7:
		m.autowrap = on
		if !on {
			t.screen.cursor.PendingWrap = false
		}
	case 8:
		m.autorepeat = on
	case 9:
		t.setMouseMode(MouseX10, on)
	case 12:
		m.blinkCursor = on
	case 25:
		m.cursorVisible = on
	case 40:
		m.allow132 = on
	case 41:
		m.more1Hack = on
	case 42:
		m.nrcs = on
	case 44:
		m.marginBell = on
	case 45:
		m.reverseWrap = on
	case 47:
		if m.enableAlt {
			t.screen.setAltScreen(on, false, false)
		}
	case 66:
		m.appKeypad = on
	case 67:
		m.backspaceBS = on
	case 69:
		m.lrmm = on
		t.screen.lrmm = on
		if !on {
			t.screen.leftMargin = 0
			t.screen.rightMargin = t.screen.width
		}
	case 95:
		m.noAltClear = on
	case 1000:
		t.setMouseMode(MouseButton, on)
	case 1002:
		t.setMouseMode(MouseDrag, on)
	case 1003:
		t.setMouseMode(MouseMotion, on)
	case 1004:
		m.focusEvents = on
	case 1005:
		t.setMouseFormat(MouseFormatUTF8, on)
	case 1006:
		t.setMouseFormat(MouseFormatSGR, on)
	case 1010:
		m.scrollOnOutput = on
	case 1011:
		m.scrollOnInput = on
	case 1015:
		t.setMouseFormat(MouseFormatURXVT, on)
	case 1016:
		t.setMouseFormat(MouseFormatSGRPixel, on)
	case 1034:
		m.meta8Bit = on
	case 1035:
		m.numLock = on
	case 1036:
		m.metaEscape = on
	case 1037:
		m.deleteIsDel = on
	case 1040, 1041:
		m.allowClipRead = on
	case 1042:
		m.clipUrgent = on
	case 1043:
		m.clipRaise = on
	case 1044:
		m.allowClipWrite = on
	case 1046:
		m.enableAlt = on
		if !on && t.screen.altMode {
			t.screen.setAltScreen(false, false, false)
		}
	case 1047:
		if m.enableAlt {
			if !on && t.screen.altMode {
				t.screen.eraseRect(0, 0, t.screen.width, t.screen.height, false)
			}
			t.screen.setAltScreen(on, on, false)
		}
	case 1048:
		m.saveCursorMode = on
		if on {
			t.screen.saveCursor()
		} else {
			t.screen.restoreCursor()
		}
	case 1049:
		if m.enableAlt {
			t.screen.setAltScreen(on, on, true)
		}
	case 1050, 1051, 1052, 1053, 1060, 1061:
		t.keyboard.setKeymapMode(n, on)
	case 2004:
		m.bracketedPaste = on
	case 2005:
		m.pasteQuote = on
	case 2006:
		m.pasteLiteralNL = on
	case 2026:
		t.setSyncUpdates(on)
	default:
		t.trace.Trace("unknown DEC mode %d", n)
	}
}

// privateModeValue returns (value, known) for DECRQM and XTSAVE.
func (t *Terminal) privateModeValue(n int) (bool, bool) {
	m := &t.modes
	switch n {
	case 1:
		return m.appCursor, true
	case 2:
		return m.ansi, true
	case 3:
		return m.columns132, true
	case 4:
		return m.smoothScroll, true
	case 5:
		return m.reverseVideo, true
	case 6:
		return m.origin, true
	case 7:
		return m.autowrap, true
	case 8:
		return m.autorepeat, true
	case 9:
		return m.mouseMode == MouseX10, true
	case 12:
		return m.blinkCursor, true
	case 25:
		return m.cursorVisible, true
	case 40:
		return m.allow132, true
	case 41:
		return m.more1Hack, true
	case 42:
		return m.nrcs, true
	case 44:
		return m.marginBell, true
	case 45:
		return m.reverseWrap, true
	case 47, 1047, 1049:
		return t.screen.altMode, true
	case 66:
		return m.appKeypad, true
	case 67:
		return m.backspaceBS, true
	case 69:
		return m.lrmm, true
	case 95:
		return m.noAltClear, true
	case 1000:
		return m.mouseMode == MouseButton, true
	case 1002:
		return m.mouseMode == MouseDrag, true
	case 1003:
		return m.mouseMode == MouseMotion, true
	case 1004:
		return m.focusEvents, true
	case 1005:
		return m.mouseFormat == MouseFormatUTF8, true
	case 1006:
		return m.mouseFormat == MouseFormatSGR, true
	case 1010:
		return m.scrollOnOutput, true
	case 1011:
		return m.scrollOnInput, true
	case 1015:
		return m.mouseFormat == MouseFormatURXVT, true
	case 1016:
		return m.mouseFormat == MouseFormatSGRPixel, true
	case 1034:
		return m.meta8Bit, true
	case 1035:
		return m.numLock, true
	case 1036:
		return m.metaEscape, true
	case 1037:
		return m.deleteIsDel, true
	case 1040, 1041:
		return m.allowClipRead, true
	case 1042:
		return m.clipUrgent, true
	case 1043:
		return m.clipRaise, true
	case 1044:
		return m.allowClipWrite, true
	case 1046:
		return m.enableAlt, true
	case 1048:
		return m.saveCursorMode, true
	case 1050, 1051, 1052, 1053, 1060, 1061:
		return t.keyboard.keymapModeValue(n), true
	case 2004:
		return m.bracketedPaste, true
	case 2005:
		return m.pasteQuote, true
	case 2006:
		return m.pasteLiteralNL, true
	case 2026:
		return m.syncUpdates, true
	}
	return false, false
}

// xtSaveModes records the listed private modes into the snapshot.
func (t *Terminal) xtSaveModes(params []int) {
	for _, n := range params {
		if v, ok := t.privateModeValue(n); ok {
			t.savedModes.set(n, v)
		}
	}
}

// xtRestoreModes restores the listed private modes from the snapshot.
func (t *Terminal) xtRestoreModes(params []int) {
	for _, n := range params {
		if _, ok := xtModeBit(n); !ok {
			continue
		}
		if _, known := t.privateModeValue(n); known {
			t.setPrivateMode(n, t.savedModes.get(n))
		}
	}
}
