package vtcore

import (
	"fmt"
	"strconv"
	"strings"
)

// reportDA1 answers the primary device attributes query for the
// current conformance level.
func (t *Terminal) reportDA1() {
	switch {
	case t.inVT52():
		t.writeResponseString("\x1b/Z")
	case t.vtLevel <= 1:
		t.csiReply("?1;2c")
	case t.vtLevel == 2:
		t.csiReply("?62;1;2;6;8;9;15;18;21;22;28;42c")
	case t.vtLevel == 3:
		t.csiReply("?63;1;2;6;8;9;15;18;21;22;28;42c")
	case t.vtLevel == 4:
		t.csiReply("?64;1;2;6;8;9;15;18;21;22;28;42c")
	default:
		t.csiReply("?65;1;2;6;8;9;15;18;21;22;28;42c")
	}
}

// reportDA2 answers the secondary device attributes query.
func (t *Terminal) reportDA2() {
	pp := 1
	switch t.vtLevel {
	case 3:
		pp = 24
	case 4:
		pp = 41
	case 5:
		pp = 64
	}
	t.csiReply(">%d;10;0c", pp)
}

// reportDA3 answers the tertiary device attributes query with the
// unit id.
func (t *Terminal) reportDA3() {
	t.dcsReply("!|00000000")
}

// reportDSR answers DSR and DECDSR queries.
func (t *Terminal) reportDSR(n int, private bool) {
	s := t.screen
	if !private {
		switch n {
		case 5: // operating status
			t.csiReply("0n")
		case 6: // CPR
			y := s.cursor.Y
			x := s.cursor.X
			if s.cursor.Origin {
				y -= s.topMargin
				x -= s.effLeft()
			}
			t.csiReply("%d;%dR", y+1, x+1)
		}
		return
	}
	switch n {
	case 6: // DECXCPR
		t.csiReply("?%d;%d;1R", s.cursor.Y+1, s.cursor.X+1)
	case 15: // printer status
		t.csiReply("?13n")
	case 25: // UDK status
		t.csiReply("?21n")
	case 26: // keyboard status
		t.csiReply("?27;1;0;0n")
	case 53, 55: // locator status
		t.csiReply("?50n")
	case 56: // locator type
		t.csiReply("?57;1n")
	case 62: // macro space
		t.csiReply("0*{")
	case 63: // memory checksum
		t.dcsReply(fmt.Sprintf("%d!~0000", t.parser.param(1, 0)))
	case 75: // data integrity
		t.csiReply("?70n")
	case 85: // multi-session
		t.csiReply("?83n")
	}
}

// reportDECRQM answers a mode query: CSI [?]Pd;Ps $ y.
func (t *Terminal) reportDECRQM(mode int, private bool) {
	var val int
	var on, known bool
	if private {
		on, known = t.privateModeValue(mode)
	} else {
		on, known = t.ansiModeValue(mode)
	}
	switch {
	case !known:
		val = 0
	case on:
		val = 1
	default:
		val = 2
	}
	if private {
		t.csiReply("?%d;%d$y", mode, val)
	} else {
		t.csiReply("%d;%d$y", mode, val)
	}
}

// reportDECRQSS answers a setting query. Unknown settings produce the
// explicit invalid form rather than silence.
func (t *Terminal) reportDECRQSS(setting string) {
	s := t.screen
	var value string
	switch setting {
	case "m":
		value = t.sgrString() + "m"
	case "r":
		value = fmt.Sprintf("%d;%dr", s.topMargin+1, s.bottomMargin)
	case "s":
		value = fmt.Sprintf("%d;%ds", s.effLeft()+1, s.effRight())
	case "\"p":
		value = fmt.Sprintf("6%d;%d\"p", t.vtLevel, boolToInt(!t.modes.eightBit))
	case " q":
		value = fmt.Sprintf("%d q", int(t.cursorStyle)+1)
	case "\"q":
		value = fmt.Sprintf("%d\"q", boolToInt(t.screen.sgr.Protected))
	case "t":
		value = fmt.Sprintf("%dt", s.height)
	case "$|":
		value = fmt.Sprintf("%d$|", s.width)
	case "*|":
		value = fmt.Sprintf("%d*|", s.height)
	default:
		t.dcsReply("0$r")
		return
	}
	t.dcsReply("1$r" + value)
}

// sgrString renders the current rendition as SGR parameters.
func (t *Terminal) sgrString() string {
	a := t.screen.sgr
	parts := []string{"0"}
	if a.Bold {
		parts = append(parts, "1")
	}
	if a.Faint {
		parts = append(parts, "2")
	}
	if a.Italic {
		parts = append(parts, "3")
	}
	switch a.Underline {
	case UnderlineSingle:
		parts = append(parts, "4")
	case UnderlineDouble:
		parts = append(parts, "21")
	case UnderlineCurly:
		parts = append(parts, "4:3")
	}
	if a.Blink {
		parts = append(parts, "5")
	}
	if a.Reverse {
		parts = append(parts, "7")
	}
	if a.Invisible {
		parts = append(parts, "8")
	}
	if a.Strikethrough {
		parts = append(parts, "9")
	}
	parts = append(parts, colorParams(a.Fg, 30)...)
	parts = append(parts, colorParams(a.Bg, 40)...)
	return strings.Join(parts, ";")
}

// colorParams renders one color as SGR parameters with the given base
// (30 foreground, 40 background).
func colorParams(c Color, base int) []string {
	if c.IsDirect() {
		d := c.Direct()
		return []string{fmt.Sprintf("%d;2;%d;%d;%d", base+8, d.R, d.G, d.B)}
	}
	idx := c.Index()
	switch {
	case idx == SpecialFg && base == 30, idx == SpecialBg && base == 40:
		return nil
	case idx < 8:
		return []string{strconv.Itoa(base + idx)}
	case idx < 16:
		return []string{strconv.Itoa(base + 60 + idx - 8)}
	case idx < 256:
		return []string{fmt.Sprintf("%d;5;%d", base+8, idx)}
	}
	return nil
}

// --- presentation state reports (DECRQPSR) and their decoders ---

// reportPresentationState answers DECRQPSR: 1 requests the cursor
// information report, 2 the tab stop report.
func (t *Terminal) reportPresentationState(kind int) {
	switch kind {
	case 1:
		t.dcsReply("1$u" + t.cursorReport())
	case 2:
		t.dcsReply("2$u" + t.tabsReport())
	default:
		t.dcsReply("0$r")
	}
}

// cursorReport encodes the DECCIR payload.
func (t *Terminal) cursorReport() string {
	s := t.screen
	a := s.sgr
	c := s.cursor

	sgr0 := byte(0x40)
	if a.Bold {
		sgr0 |= 1
	}
	if a.Underline != UnderlineNone {
		sgr0 |= 2
	}
	if a.Blink {
		sgr0 |= 4
	}
	if a.Reverse {
		sgr0 |= 8
	}
	sgr1 := byte(0x40)
	if a.Italic {
		sgr1 |= 1
	}
	if a.Faint {
		sgr1 |= 2
	}
	if a.Strikethrough {
		sgr1 |= 4
	}
	if a.Invisible {
		sgr1 |= 8
	}
	rend := string(rune(sgr0))
	if sgr1 != 0x40 {
		rend = string(rune(sgr0|0x20)) + string(rune(sgr1))
	}

	prot := byte(0x40)
	if a.Protected {
		prot |= 1
	}

	flags := byte(0x40)
	if c.Origin {
		flags |= 1
	}
	if c.GLSS == 2 {
		flags |= 2
	}
	if c.GLSS == 3 {
		flags |= 4
	}
	if c.PendingWrap {
		flags |= 8
	}

	c96 := byte(0x40)
	var desig strings.Builder
	for i, cs := range c.GN {
		if cs.is96() {
			c96 |= 1 << uint(i)
		}
		desig.WriteString(charsetDesignator(cs))
	}

	return fmt.Sprintf("%d;%d;1;%s;%c;%c;%d;%d;%c;%s",
		c.Y+1, c.X+1, rend, prot, flags, c.GL, c.GR, c96, desig.String())
}

// charsetDesignator returns the designation selector for a charset.
func charsetDesignator(cs Charset) string {
	switch cs {
	case CharsetASCII:
		return "B"
	case CharsetBritish:
		return "A"
	case CharsetDECGraph:
		return "0"
	case CharsetDECAltChars:
		return "1"
	case CharsetDECAltGraph:
		return "2"
	case CharsetDECSup:
		return "<"
	case CharsetDECSupGraph:
		return "%5"
	case CharsetDECTech:
		return ">"
	case CharsetDutch:
		return "4"
	case CharsetFinnish:
		return "5"
	case CharsetFrench:
		return "R"
	case CharsetFrenchCanadian:
		return "Q"
	case CharsetGerman:
		return "K"
	case CharsetItalian:
		return "Y"
	case CharsetNorwegianDanish:
		return "6"
	case CharsetSpanish:
		return "Z"
	case CharsetSwedish:
		return "7"
	case CharsetSwiss:
		return "="
	case CharsetPortuguese:
		return "%6"
	case CharsetTurkish:
		return "%2"
	case CharsetLatin1:
		return "A"
	case CharsetLatin5:
		return "M"
	}
	return "B"
}

// parseCursorReport decodes a DECCIR payload (DCS 1 $ t). Colors and
// the URI are left untouched: the report does not carry them.
func (t *Terminal) parseCursorReport(payload string) bool {
	s := t.screen
	fields := strings.SplitN(payload, ";", 10)
	if len(fields) != 10 {
		return false
	}
	y, err1 := strconv.Atoi(fields[0])
	x, err2 := strconv.Atoi(fields[1])
	if err1 != nil || err2 != nil || fields[2] != "1" {
		return false
	}

	rend := fields[3]
	if len(rend) == 0 || rend[0]&0xD0 != 0x40 {
		return false
	}
	sgr0 := rend[0]
	sgr1 := byte(0x40)
	if sgr0&0x20 != 0 {
		if len(rend) < 2 {
			return false
		}
		sgr1 = rend[1]
	}
	if sgr1&0xF0 != 0x40 {
		return false
	}

	if len(fields[4]) != 1 || fields[4][0]&0xFE != 0x40 {
		return false
	}
	prot := fields[4][0]

	if len(fields[5]) != 1 || fields[5][0]&0xF0 != 0x40 {
		return false
	}
	flags := fields[5][0]

	gl, err1 := strconv.Atoi(fields[6])
	gr, err2 := strconv.Atoi(fields[7])
	if err1 != nil || err2 != nil || gl > 3 || gr > 3 || gl < 0 || gr < 0 {
		return false
	}

	if len(fields[8]) != 1 {
		return false
	}
	c96 := fields[8][0]

	var gn [4]Charset
	desig := fields[9]
	for i := 0; i < 4; i++ {
		if len(desig) == 0 {
			return false
		}
		var sel uint16
		if desig[0] < 0x30 {
			if len(desig) < 2 {
				return false
			}
			sel = uint16(desig[0])<<8 | uint16(desig[1])
			desig = desig[2:]
		} else {
			sel = uint16(desig[0])
			desig = desig[1:]
		}
		gn[i] = nrcsParse(sel, c96>>uint(i)&1 != 0, t.vtLevel, t.modes.nrcs)
		if gn[i] == CharsetInvalid {
			return false
		}
	}

	cur := &s.cursor
	cur.X = minInt(x-1, s.width-1)
	cur.Y = minInt(y-1, s.height-1)
	cur.Origin = flags&1 != 0
	cur.PendingWrap = flags&8 != 0
	cur.GN = gn
	cur.GL = gl
	cur.GR = gr
	cur.GLSS = -1
	if flags&2 != 0 {
		cur.GLSS = 2
	}
	if flags&4 != 0 {
		cur.GLSS = 3
	}

	a := &s.sgr
	a.Bold = sgr0&1 != 0
	if sgr0&2 != 0 {
		a.Underline = UnderlineSingle
	} else {
		a.Underline = UnderlineNone
	}
	a.Blink = sgr0&4 != 0
	a.Reverse = sgr0&8 != 0
	a.Italic = sgr1&1 != 0
	a.Faint = sgr1&2 != 0
	a.Strikethrough = sgr1&4 != 0
	a.Invisible = sgr1&8 != 0
	a.Protected = prot&1 != 0
	return true
}

// tabsReport encodes the DECTABSR payload: 1-based tab columns joined
// with '/'.
func (t *Terminal) tabsReport() string {
	var b strings.Builder
	for x, set := range t.screen.tabs {
		if !set {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('/')
		}
		b.WriteString(strconv.Itoa(x + 1))
	}
	return b.String()
}

// parseTabsReport decodes a DECTABSR payload (DCS 2 $ t).
func (t *Terminal) parseTabsReport(payload string) bool {
	s := t.screen
	cols := make([]int, 0, 16)
	if payload != "" {
		for _, f := range strings.Split(payload, "/") {
			v, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil || v < 1 {
				return false
			}
			cols = append(cols, v-1)
		}
	}
	s.clearAllTabs()
	for _, c := range cols {
		s.setTab(c)
	}
	return true
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
