package vtcore

import "fmt"

// Modifiers is the key modifier bitmask, xterm parameter order.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModAlt
	ModControl
	ModMeta
)

// modParam renders the xterm modifier parameter (modifiers + 1).
func (m Modifiers) modParam() int {
	return int(m) + 1
}

// KeySym identifies non-printable keys.
type KeySym int

const (
	KeyNone KeySym = iota
	KeyUp
	KeyDown
	KeyRight
	KeyLeft
	KeyHome
	KeyEnd
	KeyInsert
	KeyDelete
	KeyPageUp
	KeyPageDown
	KeyBackspace
	KeyTab
	KeyReturn
	KeyEscape
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyF13
	KeyF14
	KeyF15
	KeyF16
	KeyF17
	KeyF18
	KeyF19
	KeyF20
	KeyKP0
	KeyKP1
	KeyKP2
	KeyKP3
	KeyKP4
	KeyKP5
	KeyKP6
	KeyKP7
	KeyKP8
	KeyKP9
	KeyKPEnter
	KeyKPPlus
	KeyKPMinus
	KeyKPMultiply
	KeyKPDivide
	KeyKPDecimal
)

// KeyEvent is one key press as delivered by the window layer.
type KeyEvent struct {
	Rune rune // printable codepoint, 0 for special keys
	Sym  KeySym
	Mods Modifiers
}

// KeymapKind selects the function/keypad key encoding family.
type KeymapKind int

const (
	KeymapDefault KeymapKind = iota
	KeymapLegacy
	KeymapVT220
	KeymapHP
	KeymapSun
	KeymapSCO
)

// ModifyOtherFormat selects how modifyOtherKeys encodes combos.
type ModifyOtherFormat int

const (
	ModifyOtherXTerm ModifyOtherFormat = iota // CSI 27;M;K~
	ModifyOtherCSIu                           // CSI K;M u
)

// inputState is the key-translation configuration, mutated by
// XTMODKEYS and the 105x keymap modes.
type inputState struct {
	keymap KeymapKind

	modifyCursor   int // 0-4
	modifyFunction int // 0-4
	modifyKeypad   int // 0-4
	modifyOther    int // 0-2
	modifyOtherFmt ModifyOtherFormat

	backspaceIsDel bool
	deleteIsDel    bool
}

func newInputState(cfg *Config) inputState {
	return inputState{
		keymap:         cfg.Keymap,
		modifyCursor:   cfg.ModifyCursorKeys,
		modifyFunction: cfg.ModifyFunctionKeys,
		modifyKeypad:   cfg.ModifyKeypadKeys,
		modifyOther:    cfg.ModifyOtherKeys,
		modifyOtherFmt: cfg.ModifyOtherFmt,
		backspaceIsDel: cfg.BackspaceIsDel,
		deleteIsDel:    cfg.DeleteIsDel,
	}
}

// setModifyKeys applies XTMODKEYS (CSI > Pp;Pv m).
func (in *inputState) setModifyKeys(which, value int) {
	if value < -1 || value > 4 {
		return
	}
	switch which {
	case 1:
		in.modifyCursor = value
	case 2:
		in.modifyFunction = value
	case 3:
		in.modifyKeypad = value
	case 4:
		if value >= 0 && value <= 2 {
			in.modifyOther = value
		}
	}
}

// resetModifyKeys applies CSI > Pp n.
func (in *inputState) resetModifyKeys(which int) {
	in.setModifyKeys(which, 0)
}

// setKeymapMode applies the 105x keyboard mapping modes.
func (in *inputState) setKeymapMode(n int, on bool) {
	var k KeymapKind
	switch n {
	case 1051:
		k = KeymapSun
	case 1052:
		k = KeymapHP
	case 1053:
		k = KeymapSCO
	case 1060:
		k = KeymapLegacy
	case 1061:
		k = KeymapVT220
	default:
		return
	}
	if on {
		in.keymap = k
	} else if in.keymap == k {
		in.keymap = KeymapDefault
	}
}

func (in *inputState) keymapModeValue(n int) bool {
	switch n {
	case 1051:
		return in.keymap == KeymapSun
	case 1052:
		return in.keymap == KeymapHP
	case 1053:
		return in.keymap == KeymapSCO
	case 1060:
		return in.keymap == KeymapLegacy
	case 1061:
		return in.keymap == KeymapVT220
	}
	return false
}

// KeyEvent translates one key press into its byte sequence and sends
// it to the PTY, echoing locally when enabled.
func (t *Terminal) KeyEvent(ev KeyEvent) {
	if t.modes.keyboardLocked {
		return
	}
	out := t.translateKey(ev)
	if len(out) == 0 {
		return
	}
	if t.modes.scrollOnInput {
		t.screen.ResetView()
	}
	t.writeResponse(out)
	t.localEcho(out)
}

// translateKey is the translation pipeline: keymap re-encoding,
// modifyCursor/Keypad/Function levels, modifyOther, meta policy, the
// BS/DEL swap and NRCS round-trip.
func (t *Terminal) translateKey(ev KeyEvent) []byte {
	in := &t.keyboard

	if t.inVT52() {
		return t.vt52Key(ev)
	}

	switch {
	case ev.Sym >= KeyUp && ev.Sym <= KeyLeft:
		return t.cursorKey(ev)
	case ev.Sym >= KeyF1 && ev.Sym <= KeyF20:
		return t.functionKey(ev)
	case ev.Sym >= KeyKP0 && ev.Sym <= KeyKPDecimal:
		return t.keypadKey(ev)
	case ev.Sym >= KeyHome && ev.Sym <= KeyPageDown:
		return t.editingKey(ev)
	case ev.Sym == KeyBackspace:
		b := byte(0x7F)
		if t.modes.backspaceBS != in.backspaceIsDel {
			b = 0x08
		}
		return t.metaWrap([]byte{b}, ev.Mods)
	case ev.Sym == KeyTab:
		if ev.Mods&ModShift != 0 {
			return []byte("\x1b[Z")
		}
		return t.metaWrap([]byte{'\t'}, ev.Mods)
	case ev.Sym == KeyReturn:
		if t.modes.newline {
			return t.metaWrap([]byte("\r\n"), ev.Mods)
		}
		return t.metaWrap([]byte{'\r'}, ev.Mods)
	case ev.Sym == KeyEscape:
		return []byte{0x1B}
	case ev.Rune != 0:
		return t.printableKey(ev)
	}
	return nil
}

// cursorKey encodes the arrow keys per DECCKM and modifyCursorKeys.
func (t *Terminal) cursorKey(ev KeyEvent) []byte {
	letter := map[KeySym]byte{KeyUp: 'A', KeyDown: 'B', KeyRight: 'C', KeyLeft: 'D'}[ev.Sym]
	level := t.keyboard.modifyCursor
	if ev.Mods == 0 && level < 3 {
		if t.modes.appCursor {
			return []byte{0x1B, 'O', letter}
		}
		return []byte{0x1B, '[', letter}
	}
	prefix := ""
	if level >= 4 {
		prefix = ">"
	}
	return []byte(fmt.Sprintf("\x1b[%s1;%d%c", prefix, ev.Mods.modParam(), letter))
}

// functionKey encodes F1-F20 per the active keymap.
func (t *Terminal) functionKey(ev KeyEvent) []byte {
	n := int(ev.Sym-KeyF1) + 1
	switch t.keyboard.keymap {
	case KeymapSun:
		return []byte(fmt.Sprintf("\x1b[%dz", 223+n))
	case KeymapSCO:
		if n <= 12 {
			return []byte{0x1B, '[', scoFnLetters[n-1]}
		}
	case KeymapHP:
		if n <= 8 {
			return []byte{0x1B, hpFnLetters[n-1]}
		}
	}

	level := t.keyboard.modifyFunction
	if n <= 4 && t.keyboard.keymap != KeymapLegacy {
		letter := byte('P' + n - 1)
		if ev.Mods == 0 && level < 3 {
			return []byte{0x1B, 'O', letter}
		}
		prefix := ""
		if level >= 4 {
			prefix = ">"
		}
		return []byte(fmt.Sprintf("\x1b[%s1;%d%c", prefix, ev.Mods.modParam(), letter))
	}

	code := fnTildeCodes[n-1]
	if ev.Mods == 0 {
		return []byte(fmt.Sprintf("\x1b[%d~", code))
	}
	return []byte(fmt.Sprintf("\x1b[%d;%d~", code, ev.Mods.modParam()))
}

// fnTildeCodes maps F1-F20 to the xterm tilde codes.
var fnTildeCodes = [20]int{11, 12, 13, 14, 15, 17, 18, 19, 20, 21,
	23, 24, 25, 26, 28, 29, 31, 32, 33, 34}

var scoFnLetters = [12]byte{'M', 'N', 'O', 'P', 'Q', 'R', 'S', 'T', 'U', 'V', 'W', 'X'}

var hpFnLetters = [8]byte{'p', 'q', 'r', 's', 't', 'u', 'v', 'w'}

// keypadKey encodes the numeric keypad per DECNKM and NumLock.
func (t *Terminal) keypadKey(ev KeyEvent) []byte {
	app := t.modes.appKeypad && !t.modes.numLock
	if !app {
		return t.metaWrap([]byte{kpPlain[ev.Sym-KeyKP0]}, ev.Mods)
	}
	letter := kpApp[ev.Sym-KeyKP0]
	if ev.Mods == 0 {
		return []byte{0x1B, 'O', letter}
	}
	return []byte(fmt.Sprintf("\x1b[1;%d%c", ev.Mods.modParam(), letter))
}

var kpPlain = [...]byte{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', '\r', '+', '-', '*', '/', '.'}

var kpApp = [...]byte{'p', 'q', 'r', 's', 't', 'u', 'v', 'w', 'x', 'y', 'M', 'k', 'm', 'j', 'o', 'n'}

// editingKey encodes Home/End/Insert/Delete/PgUp/PgDn.
func (t *Terminal) editingKey(ev KeyEvent) []byte {
	var code int
	switch ev.Sym {
	case KeyHome, KeyEnd:
		if t.keyboard.keymap != KeymapVT220 {
			letter := byte('H')
			if ev.Sym == KeyEnd {
				letter = 'F'
			}
			if ev.Mods == 0 {
				if t.modes.appCursor {
					return []byte{0x1B, 'O', letter}
				}
				return []byte{0x1B, '[', letter}
			}
			return []byte(fmt.Sprintf("\x1b[1;%d%c", ev.Mods.modParam(), letter))
		}
		if ev.Sym == KeyHome {
			code = 1
		} else {
			code = 4
		}
	case KeyInsert:
		code = 2
	case KeyDelete:
		if t.keyboard.deleteIsDel || t.modes.deleteIsDel {
			return []byte{0x7F}
		}
		code = 3
	case KeyPageUp:
		code = 5
	case KeyPageDown:
		code = 6
	}
	if ev.Mods == 0 {
		return []byte(fmt.Sprintf("\x1b[%d~", code))
	}
	return []byte(fmt.Sprintf("\x1b[%d;%d~", code, ev.Mods.modParam()))
}

// printableKey encodes a printable codepoint with its modifiers.
func (t *Terminal) printableKey(ev KeyEvent) []byte {
	in := &t.keyboard
	r := ev.Rune

	// modifyOtherKeys covers otherwise-unreachable combinations.
	if in.modifyOther > 0 && ev.Mods&(ModControl|ModAlt|ModMeta) != 0 {
		reachable := ev.Mods == ModShift ||
			(ev.Mods == ModControl && ctrlEncode(r) != 0) ||
			(ev.Mods&(ModAlt|ModMeta) != 0 && ev.Mods&ModControl == 0)
		if in.modifyOther == 2 || !reachable {
			if in.modifyOtherFmt == ModifyOtherCSIu {
				return []byte(fmt.Sprintf("\x1b[%d;%du", r, ev.Mods.modParam()))
			}
			return []byte(fmt.Sprintf("\x1b[27;%d;%d~", ev.Mods.modParam(), r))
		}
	}

	if ev.Mods&ModControl != 0 {
		if c := ctrlEncode(r); c != 0 {
			return t.metaWrap([]byte{c}, ev.Mods&^ModControl)
		}
	}

	var payload []byte
	if t.utf8Enabled() {
		payload = []byte(string(r))
	} else {
		// Round-trip through the keyboard charset when UTF-8 is off.
		cur := &t.screen.cursor
		if b, ok := nrcsEncode(cur.GN[cur.GL], r, t.modes.nrcs); ok {
			payload = []byte{b}
		} else if r < 0x100 {
			payload = []byte{byte(r)}
		} else {
			return nil
		}
	}
	return t.metaWrap(payload, ev.Mods)
}

// ctrlEncode maps Ctrl+key onto its C0 byte, 0 when unreachable.
func ctrlEncode(r rune) byte {
	switch {
	case r >= 'a' && r <= 'z':
		return byte(r) - 'a' + 1
	case r >= 'A' && r <= 'Z':
		return byte(r) - 'A' + 1
	case r == ' ', r == '@', r == '2':
		return 0
	case r == '[', r == '3':
		return 0x1B
	case r == '\\', r == '4':
		return 0x1C
	case r == ']', r == '5':
		return 0x1D
	case r == '^', r == '6':
		return 0x1E
	case r == '_', r == '/', r == '7':
		return 0x1F
	case r == '?', r == '8':
		return 0x7F
	}
	return 0
}

// metaWrap applies the meta policy: 8-bit set or ESC prefix.
func (t *Terminal) metaWrap(payload []byte, mods Modifiers) []byte {
	if mods&(ModAlt|ModMeta) == 0 {
		return payload
	}
	if t.modes.meta8Bit && !t.modes.metaEscape && len(payload) == 1 && payload[0] < 0x80 {
		return []byte{payload[0] | 0x80}
	}
	return append([]byte{0x1B}, payload...)
}

// vt52Key suppresses all modifier encoding and emits VT52 forms.
func (t *Terminal) vt52Key(ev KeyEvent) []byte {
	switch ev.Sym {
	case KeyUp:
		return []byte("\x1bA")
	case KeyDown:
		return []byte("\x1bB")
	case KeyRight:
		return []byte("\x1bC")
	case KeyLeft:
		return []byte("\x1bD")
	case KeyBackspace:
		return []byte{0x08}
	case KeyReturn:
		return []byte{'\r'}
	case KeyTab:
		return []byte{'\t'}
	case KeyEscape:
		return []byte{0x1B}
	}
	if ev.Sym >= KeyKP0 && ev.Sym <= KeyKP9 && t.modes.appKeypad {
		return []byte{0x1B, '?', byte('p' + ev.Sym - KeyKP0)}
	}
	if ev.Rune != 0 {
		if ev.Mods&ModControl != 0 {
			if c := ctrlEncode(ev.Rune); c != 0 {
				return []byte{c}
			}
		}
		if ev.Rune < 0x80 {
			return []byte{byte(ev.Rune)}
		}
	}
	return nil
}

// FocusEvent reports window focus changes (mode 1004).
func (t *Terminal) FocusEvent(focused bool) {
	if !t.modes.focusEvents {
		return
	}
	if focused {
		t.writeResponseString("\x1b[I")
	} else {
		t.writeResponseString("\x1b[O")
	}
}
