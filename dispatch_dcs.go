package vtcore

import (
	"encoding/hex"
	"strings"
)

// dispatchDCS executes a completed DCS string. selector is the packed
// header key (final | private<<8 | i0<<16 | i1<<24); payload is the
// raw string body.
func (t *Terminal) dispatchDCS(selector uint32, payload []byte) {
	if t.hooks.DCS != nil {
		called := false
		t.hooks.DCS(selector, payload, func() {
			called = true
			t.dispatchDCSInternal(selector, payload)
		})
		if called {
			return
		}
		return
	}
	t.dispatchDCSInternal(selector, payload)
}

func (t *Terminal) dispatchDCSInternal(selector uint32, payload []byte) {
	p := &t.parser
	switch selector {
	case 'q' | '$'<<16: // DECRQSS
		t.reportDECRQSS(string(payload))

	case 't' | '$'<<16: // DECRSPS: restore presentation state
		switch p.param(0, 0) {
		case 1:
			if !t.parseCursorReport(string(payload)) {
				t.trace.Trace("malformed DECCIR restore %q", payload)
			}
		case 2:
			if !t.parseTabsReport(string(payload)) {
				t.trace.Trace("malformed DECTABSR restore %q", payload)
			}
		default:
			t.trace.Trace("unknown DECRSPS format %d", p.param(0, 0))
		}

	case 'q' | '+'<<16: // XTGETTCAP
		t.reportTermcap(string(payload))

	case 's' | '='<<8: // iTerm2 synchronized updates
		switch p.param(0, 0) {
		case 1:
			t.setSyncUpdates(true)
		case 2:
			t.setSyncUpdates(false)
		}

	case '|': // DECUDK: accepted, keys are not programmable here
		t.trace.Trace("DECUDK ignored (%d bytes)", len(payload))

	case 'u' | '!'<<16: // DECAUPSS: assign user-preferred supplemental set
		t.trace.Trace("DECAUPSS ignored")

	default:
		t.trace.Trace("unknown DCS selector %#x", selector)
	}
}

// reportTermcap answers XTGETTCAP for the capability names we publish.
// Names arrive hex-encoded and ';'-separated; each is answered
// individually.
func (t *Terminal) reportTermcap(query string) {
	for _, part := range strings.Split(query, ";") {
		raw, err := hex.DecodeString(part)
		if err != nil {
			t.dcsReply("0+r" + part)
			continue
		}
		name := string(raw)
		var value string
		switch name {
		case "Co", "colors":
			value = "256"
		case "TN", "name":
			value = "xterm"
		case "RGB":
			value = "8/8/8"
		default:
			t.dcsReply("0+r" + part)
			continue
		}
		t.dcsReply("1+r" + part + "=" + hex.EncodeToString([]byte(value)))
	}
}
