package vtcore

import (
	"encoding/hex"
	"strconv"
	"strings"
)

// dispatchOSC executes a completed OSC string. term is the byte that
// ended it (BEL or the ESC of ST); replies are terminated with ST
// whichever terminator the query used.
func (t *Terminal) dispatchOSC(selector int, payload []byte, term byte) {
	if t.hooks.OSC != nil {
		called := false
		t.hooks.OSC(selector, payload, func() {
			called = true
			t.dispatchOSCInternal(selector, payload)
		})
		if called {
			return
		}
		return
	}
	t.dispatchOSCInternal(selector, payload)
}

func (t *Terminal) dispatchOSCInternal(selector int, payload []byte) {
	body := string(payload)
	switch selector {
	case 0: // icon name + title
		title := t.decodeTitle(body)
		t.title, t.iconTitle = title, title
		t.titleProv.SetTitle(title)
		t.titleProv.SetIconTitle(title)
	case 1: // icon name
		t.iconTitle = t.decodeTitle(body)
		t.titleProv.SetIconTitle(t.iconTitle)
	case 2: // title
		t.title = t.decodeTitle(body)
		t.titleProv.SetTitle(t.title)

	case 4: // set/query indexed color: idx;spec pairs
		t.oscColorPairs(body, 0)
	case 5: // special colors, offset past the indexed range
		t.oscColorPairs(body, 256)

	case 7: // working directory
		t.workingDir = body

	case 8: // hyperlink
		t.oscHyperlink(body)

	case 10, 11, 12, 13, 14, 15, 16, 17, 18, 19:
		t.oscDynamicColor(selector, body)

	case 52:
		t.oscClipboard(body)

	case 104: // reset indexed colors
		t.oscResetColors(body, 0)
	case 105: // reset special colors
		t.oscResetColors(body, 256)
	case 110, 111, 112, 113, 114, 115, 116, 117, 118, 119:
		t.resetPaletteSlot(selector - 100)

	case 133: // shell integration marks
		t.oscShellIntegration(body)

	default:
		t.trace.Trace("unknown OSC %d", selector)
	}
}

// decodeTitle honors the hex title transport mode.
func (t *Terminal) decodeTitle(body string) string {
	if t.titleHexSet {
		if raw, err := hex.DecodeString(body); err == nil {
			return string(raw)
		}
	}
	return body
}

// encodeTitle renders a title for reporting, hex-encoded when the
// query transport mode asks for it.
func (t *Terminal) encodeTitle(title string) string {
	if t.titleHexGet {
		return hex.EncodeToString([]byte(title))
	}
	return title
}

// oscColorPairs handles OSC 4/5: alternating index;spec entries, where
// a "?" spec is a query.
func (t *Terminal) oscColorPairs(body string, offset int) {
	parts := strings.Split(body, ";")
	for i := 0; i+1 < len(parts); i += 2 {
		idx, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			continue
		}
		slot := idx + offset
		if slot < 0 || slot >= PaletteSize {
			continue
		}
		spec := parts[i+1]
		if spec == "?" {
			sel := 4
			if offset != 0 {
				sel = 5
			}
			t.oscReply(strconv.Itoa(sel) + ";" + strconv.Itoa(idx) + ";" + FormatColor(t.palette[slot]))
			continue
		}
		if c, ok := ParseColor(spec); ok {
			t.palette[slot] = c
			t.screen.damageAll()
		} else {
			t.trace.Trace("bad color spec %q for slot %d", spec, slot)
		}
	}
}

// dynamicColorSlot maps OSC 10-19 numbers to palette slots.
func dynamicColorSlot(sel int) (int, bool) {
	switch sel {
	case 10:
		return SpecialFg, true
	case 11:
		return SpecialBg, true
	case 12:
		return SpecialCursorBg, true
	}
	return 0, false
}

// oscDynamicColor handles OSC 10-19. Consecutive arguments advance the
// selector, per xterm.
func (t *Terminal) oscDynamicColor(selector int, body string) {
	for _, spec := range strings.Split(body, ";") {
		slot, ok := dynamicColorSlot(selector)
		selector++
		if !ok {
			continue
		}
		if spec == "?" {
			t.oscReply(strconv.Itoa(selector-1) + ";" + FormatColor(t.palette[slot]))
			continue
		}
		if c, ok := ParseColor(spec); ok {
			t.palette[slot] = c
			t.screen.damageAll()
		}
	}
}

func (t *Terminal) resetPaletteSlot(sel int) {
	if slot, ok := dynamicColorSlot(sel); ok {
		def := NewPalette()
		t.palette[slot] = def[slot]
		t.screen.damageAll()
	}
}

// oscResetColors handles OSC 104/105: listed slots, or everything in
// the range when the list is empty.
func (t *Terminal) oscResetColors(body string, offset int) {
	def := NewPalette()
	if strings.TrimSpace(body) == "" {
		hi := 256
		if offset != 0 {
			hi = PaletteSize - 256
		}
		for i := 0; i < hi; i++ {
			t.palette[i+offset] = def[i+offset]
		}
		t.screen.damageAll()
		return
	}
	for _, part := range strings.Split(body, ";") {
		idx, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		slot := idx + offset
		if slot >= 0 && slot < PaletteSize {
			t.palette[slot] = def[slot]
		}
	}
	t.screen.damageAll()
}

// oscHyperlink handles OSC 8: "params;uri". An empty URI ends the link.
func (t *Terminal) oscHyperlink(body string) {
	semi := strings.IndexByte(body, ';')
	if semi < 0 {
		return
	}
	params, uri := body[:semi], body[semi+1:]

	old := t.screen.sgr.URI
	if uri == "" {
		t.screen.sgr.URI = 0
		t.uris.unref(old)
		return
	}
	var id string
	for _, kv := range strings.Split(params, ":") {
		if v, ok := strings.CutPrefix(kv, "id="); ok {
			id = v
		}
	}
	ref := t.uris.intern(URI{URI: uri, ID: id})
	t.screen.sgr.URI = ref
	t.uris.unref(old)
}

// oscShellIntegration handles OSC 133 prompt marks: the current line
// remembers where the prompt and the command start.
func (t *Terminal) oscShellIntegration(body string) {
	kind := body
	if i := strings.IndexByte(body, ';'); i >= 0 {
		kind = body[:i]
	}
	s := t.screen
	sp := s.cur.spans[s.cursor.Y]
	if sp.Line == nil {
		return
	}
	off := sp.Offset + s.cursor.X
	switch kind {
	case "A": // prompt start
		sp.Line.shPs1Start = off
	case "B": // prompt end, command input starts
		sp.Line.shCmdStart = off
	case "C": // command output starts
	case "D": // command finished
	default:
		t.trace.Trace("unknown OSC 133 mark %q", kind)
	}
}
