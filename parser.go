package vtcore

// The escape-sequence parser is an explicit state machine over the
// C0/C1/CSI/OSC/DCS/ESC grammar with a VT52 fallback. It is
// restartable: when input ends mid-sequence the state and accumulated
// buffers persist on the Terminal until the next Advance call.

type parserState int

const (
	stateGround parserState = iota

	stateEscEntry
	stateEsc1
	stateEsc2
	stateEscIgnore

	stateCSIEntry
	stateCSI0
	stateCSI1
	stateCSI2
	stateCSIIgnore

	stateDCSEntry
	stateDCS0
	stateDCS1
	stateDCS2
	stateDCSString

	stateOSCEntry
	stateOSC1
	stateOSC2
	stateOSCString

	stateIgnEntry
	stateIgnString

	stateVT52Entry
	stateVT52CUP0
	stateVT52CUP1
)

const (
	maxParams = 32

	// String payloads live inline up to this size, then spill to a
	// growing heap buffer bounded by maxStringLen.
	inlineStringLen = 256
	maxStringLen    = 256 << 20

	paramUnset = -1
	paramMax   = 1 << 24
)

// parser holds the machine state and accumulators.
type parser struct {
	state parserState

	params  [maxParams]int
	nParams int
	subMask uint32 // bit i set: params[i] was ':'-separated

	priv   byte // private marker byte ('?', '>', '<', '=')
	i0, i1 byte // intermediates

	oscSelector int // numeric OSC selector
	oscHasSel   bool

	str    []byte
	inline [inlineStringLen]byte
	strEsc bool // saw ESC inside a string; '\' completes ST

	vt52Y byte

	lastPrinted rune // for REP
}

func (p *parser) reset() {
	*p = parser{}
}

// resetSeq clears per-sequence accumulators when a new sequence starts.
func (p *parser) resetSeq() {
	p.nParams = 0
	p.subMask = 0
	p.priv, p.i0, p.i1 = 0, 0, 0
	for i := range p.params {
		p.params[i] = paramUnset
	}
	p.str = p.inline[:0]
	p.strEsc = false
	p.oscSelector = 0
	p.oscHasSel = false
}

// selector packs the dispatch key: final | private<<8 | i0<<16 | i1<<24.
func (p *parser) selector(final byte) uint32 {
	return uint32(final) | uint32(p.priv)<<8 | uint32(p.i0)<<16 | uint32(p.i1)<<24
}

// param returns parameter i, substituting def when unset.
func (p *parser) param(i, def int) int {
	if i >= p.nParams || p.params[i] == paramUnset {
		return def
	}
	return p.params[i]
}

// accumDigit folds a digit into the current parameter.
func (p *parser) accumDigit(b byte) {
	if p.nParams == 0 {
		p.nParams = 1
		p.params[0] = 0
	}
	i := p.nParams - 1
	if p.params[i] == paramUnset {
		p.params[i] = 0
	}
	if v := p.params[i]*10 + int(b-'0'); v <= paramMax {
		p.params[i] = v
	} else {
		p.params[i] = paramMax
	}
}

// nextParam opens a new parameter slot; sub marks a ':'-separated one.
func (p *parser) nextParam(sub bool) {
	if p.nParams == 0 {
		p.nParams = 1
	}
	if p.nParams >= maxParams {
		return
	}
	if sub && p.nParams < 32 {
		p.subMask |= 1 << uint(p.nParams)
	}
	p.params[p.nParams] = paramUnset
	p.nParams++
}

// isSub reports whether parameter i was ':'-separated from i-1.
func (p *parser) isSub(i int) bool {
	return i < 32 && p.subMask&(1<<uint(i)) != 0
}

// putStr appends a string byte, honoring the hard cap. Returns false
// when the payload must be dropped.
func (p *parser) putStr(b byte) bool {
	if len(p.str) >= maxStringLen {
		return false
	}
	p.str = append(p.str, b)
	return true
}

// isStrEnd matches the bytes that terminate a string state.
func isStrEnd(b byte) bool {
	return b == 0x07 || b == 0x1B || b == 0x18 || b == 0x1A
}

// Advance feeds a chunk of PTY bytes through the state machine,
// dispatching into the screen, mode and report handlers as sequences
// complete. Arbitrary chunk boundaries are fine, including mid-UTF-8.
func (t *Terminal) Advance(data []byte) {
	p := &t.parser
	for i := 0; i < len(data); {
		b := data[i]

		// C1 controls act in every state at VT level >= 2 when not
		// masked by UTF-8 continuation bytes.
		if b >= 0x80 && b <= 0x9F && t.vtLevel >= 2 && !t.utf8Enabled() {
			i++
			t.execC1(b)
			continue
		}

		switch p.state {
		case stateGround:
			if b < 0x20 || b == 0x7F {
				i++
				t.execC0(b)
				continue
			}
			i += t.printRun(data[i:])

		case stateEscEntry, stateEsc1, stateEsc2, stateEscIgnore:
			i++
			t.stepEsc(b)

		case stateCSIEntry, stateCSI0, stateCSI1, stateCSI2, stateCSIIgnore:
			i++
			t.stepCSI(b)

		case stateDCSEntry, stateDCS0, stateDCS1, stateDCS2:
			i++
			t.stepDCSHeader(b)

		case stateOSCEntry, stateOSC1, stateOSC2:
			i++
			t.stepOSCHeader(b)

		case stateDCSString, stateOSCString, stateIgnString:
			i++
			t.stepString(b)

		case stateIgnEntry:
			i++
			p.state = stateIgnString
			t.stepString(b)

		case stateVT52Entry, stateVT52CUP0, stateVT52CUP1:
			i++
			t.stepVT52(b)
		}
	}
}

// execC0 interprets a C0 control byte (valid in all states).
func (t *Terminal) execC0(b byte) {
	if t.hooks.C0 != nil {
		h := t.hooks.C0
		t.hooks.C0 = nil
		h(b, t.execC0)
		t.hooks.C0 = h
		return
	}
	t.execC0Internal(b)
}

func (t *Terminal) execC0Internal(b byte) {
	p := &t.parser
	switch b {
	case 0x00: // NUL
	case 0x05: // ENQ
		t.answerback()
	case 0x07: // BEL
		t.bell()
	case 0x08: // BS
		t.backspace()
	case 0x09: // HT
		t.tab(1)
	case 0x0A, 0x0B, 0x0C: // LF, VT, FF
		t.lineFeed()
	case 0x0D: // CR
		t.screen.cr()
	case 0x0E: // SO: invoke G1 into GL
		t.screen.cursor.GL = 1
	case 0x0F: // SI: invoke G0 into GL
		t.screen.cursor.GL = 0
	case 0x11: // XON
	case 0x13: // XOFF
	case 0x18, 0x1A: // CAN, SUB abort any sequence
		p.state = stateGround
	case 0x1B: // ESC
		p.resetSeq()
		if t.inVT52() {
			p.state = stateVT52Entry
		} else {
			p.state = stateEscEntry
		}
	case 0x7F: // DEL ignored
	}
	t.uriControlSeen()
}

// execC1 interprets an 8-bit C1 control as its ESC-final equivalent.
func (t *Terminal) execC1(b byte) {
	p := &t.parser
	if b == 0x9C { // ST closes an open string state
		switch p.state {
		case stateOSCString, stateOSC1, stateOSC2, stateOSCEntry, stateDCSString, stateIgnString, stateIgnEntry:
			t.finishString(b)
		}
		return
	}
	p.resetSeq()
	switch b {
	case 0x84: // IND
		t.screen.index(true)
	case 0x85: // NEL
		t.screen.index(true)
		t.screen.cr()
	case 0x88: // HTS
		t.screen.setTab(t.screen.cursor.X)
	case 0x8D: // RI
		t.screen.rindex()
	case 0x8E: // SS2
		t.screen.cursor.GLSS = 2
	case 0x8F: // SS3
		t.screen.cursor.GLSS = 3
	case 0x90: // DCS
		p.state = stateDCSEntry
	case 0x96: // SPA
		t.screen.setProtected(true)
	case 0x97: // EPA
		t.screen.setProtected(false)
	case 0x98: // SOS
		p.state = stateIgnEntry
	case 0x9A: // DECID
		t.reportDA1()
	case 0x9B: // CSI
		p.state = stateCSIEntry
	case 0x9C: // ST
	case 0x9D: // OSC
		p.state = stateOSCEntry
	case 0x9E, 0x9F: // PM, APC
		p.state = stateIgnEntry
	}
}

// stepEsc handles the byte after ESC and any intermediates.
func (t *Terminal) stepEsc(b byte) {
	p := &t.parser
	if b < 0x20 {
		t.execC0(b)
		return
	}
	switch p.state {
	case stateEscEntry:
		switch {
		case b == '[':
			p.state = stateCSIEntry
		case b == ']':
			p.state = stateOSCEntry
		case b == 'P':
			p.state = stateDCSEntry
		case b == 'X', b == '^', b == '_': // SOS, PM, APC
			p.state = stateIgnEntry
		case b >= 0x20 && b <= 0x2F:
			p.i0 = b
			p.state = stateEsc1
		default:
			p.state = stateGround
			t.dispatchEsc(b)
		}
	case stateEsc1:
		if b >= 0x20 && b <= 0x2F {
			p.i1 = b
			p.state = stateEsc2
			return
		}
		p.state = stateGround
		t.dispatchEsc(b)
	case stateEsc2:
		if b >= 0x20 && b <= 0x2F {
			// Too many intermediates: ignore the rest of the sequence.
			p.state = stateEscIgnore
			return
		}
		p.state = stateGround
		t.dispatchEsc(b)
	case stateEscIgnore:
		if b >= 0x30 {
			p.state = stateGround
			t.traceDropped("ESC", b)
		}
	}
}

// stepCSI accumulates CSI parameters, intermediates and the final byte.
func (t *Terminal) stepCSI(b byte) {
	p := &t.parser
	switch {
	case b < 0x20:
		t.execC0(b)
	case b >= 0x40 && b <= 0x7E:
		final := b
		if p.state == stateCSIIgnore {
			p.state = stateGround
			t.traceDropped("CSI", b)
			return
		}
		p.state = stateGround
		t.dispatchCSI(final)
	case b >= '0' && b <= '9':
		if p.state == stateCSIIgnore {
			return
		}
		p.accumDigit(b)
	case b == ';':
		if p.state == stateCSIIgnore {
			return
		}
		p.nextParam(false)
	case b == ':':
		if p.state == stateCSIIgnore {
			return
		}
		p.nextParam(true)
	case b == '?' || b == '>' || b == '<' || b == '=':
		if p.state != stateCSIEntry || p.nParams > 0 {
			p.state = stateCSIIgnore
			return
		}
		p.priv = b
		p.state = stateCSI0
	case b >= 0x20 && b <= 0x2F:
		if p.i0 == 0 {
			p.i0 = b
			p.state = stateCSI1
		} else if p.i1 == 0 {
			p.i1 = b
			p.state = stateCSI2
		} else {
			p.state = stateCSIIgnore
		}
	default:
		p.state = stateCSIIgnore
	}
}

// stepDCSHeader parses the DCS parameter/intermediate section, then
// switches to the string payload state.
func (t *Terminal) stepDCSHeader(b byte) {
	p := &t.parser
	switch {
	case b < 0x20:
		if isStrEnd(b) {
			t.execC0(b)
		}
	case b >= 0x40 && b <= 0x7E:
		// Final byte: remember it in the selector slot and collect the
		// payload.
		p.oscSelector = int(p.selector(b))
		p.state = stateDCSString
	case b >= '0' && b <= '9':
		p.accumDigit(b)
	case b == ';':
		p.nextParam(false)
	case b == ':':
		p.nextParam(true)
	case b == '?' || b == '>' || b == '<' || b == '=':
		p.priv = b
	case b >= 0x20 && b <= 0x2F:
		if p.i0 == 0 {
			p.i0 = b
		} else {
			p.i1 = b
		}
	}
}

// stepOSCHeader parses the numeric OSC selector up to the first ';'.
func (t *Terminal) stepOSCHeader(b byte) {
	p := &t.parser
	switch {
	case b >= '0' && b <= '9':
		p.oscSelector = p.oscSelector*10 + int(b-'0')
		p.oscHasSel = true
		if p.state == stateOSCEntry {
			p.state = stateOSC1
		}
	case b == ';':
		p.state = stateOSCString
	case isStrEnd(b):
		t.finishString(b)
	default:
		// Non-numeric selector: treat the rest as an ignored string.
		p.state = stateIgnString
	}
}

// stepString accumulates a string payload until a terminator.
func (t *Terminal) stepString(b byte) {
	p := &t.parser
	if p.strEsc {
		p.strEsc = false
		if b == '\\' {
			t.finishString(0x1B)
			return
		}
		// Aborted string; the ESC starts a new sequence.
		t.traceDropped("STR", b)
		p.resetSeq()
		if t.inVT52() {
			p.state = stateVT52Entry
		} else {
			p.state = stateEscEntry
		}
		t.stepEsc(b)
		return
	}
	switch {
	case b == 0x1B:
		p.strEsc = true
	case b == 0x07:
		t.finishString(b)
	case b == 0x18 || b == 0x1A:
		p.state = stateGround
	case b < 0x20:
		// Other C0 bytes inside strings are discarded.
	default:
		if p.state == stateIgnString {
			return
		}
		if !p.putStr(b) {
			// Hard cap reached: drop the string, return to ground.
			t.traceDropped("STR", b)
			p.state = stateGround
		}
	}
}

// finishString dispatches a completed OSC/DCS/ignored string.
func (t *Terminal) finishString(term byte) {
	p := &t.parser
	state := p.state
	p.state = stateGround
	switch state {
	case stateOSCString, stateOSC1, stateOSC2, stateOSCEntry:
		t.dispatchOSC(p.oscSelector, p.str, term)
	case stateDCSString:
		t.dispatchDCS(uint32(p.oscSelector), p.str)
	}
}

// stepVT52 interprets the byte after ESC in VT52 mode.
func (t *Terminal) stepVT52(b byte) {
	p := &t.parser
	switch p.state {
	case stateVT52Entry:
		p.state = stateGround
		t.dispatchVT52(b)
	case stateVT52CUP0:
		p.vt52Y = b
		p.state = stateVT52CUP1
	case stateVT52CUP1:
		p.state = stateGround
		t.screen.moveTo(int(b)-0x20, int(p.vt52Y)-0x20)
	}
}
