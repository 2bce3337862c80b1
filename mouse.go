package vtcore

import (
	"fmt"
	"strings"
)

// MouseMode is the event class the application asked for.
type MouseMode int

const (
	MouseNone MouseMode = iota
	MouseX10            // 9: presses only, no modifiers
	MouseButton         // 1000: presses and releases
	MouseDrag           // 1002: plus motion with a button held
	MouseMotion         // 1003: all motion
)

// MouseFormat is the wire encoding for mouse reports.
type MouseFormat int

const (
	MouseFormatDefault MouseFormat = iota // legacy CSI M b x y
	MouseFormatUTF8                       // 1005
	MouseFormatSGR                        // 1006
	MouseFormatURXVT                      // 1015
	MouseFormatSGRPixel                   // 1016
)

// MouseEventKind distinguishes presses, releases and motion.
type MouseEventKind int

const (
	MousePress MouseEventKind = iota
	MouseRelease
	MouseMove
)

// MouseEvent is one pointer event from the window layer. Button 0-2
// are left/middle/right; 3 none; 4-7 wheel.
type MouseEvent struct {
	Kind   MouseEventKind
	Button int
	X, Y   int // cell coordinates
	PX, PY int // pixel coordinates
	Mods   Modifiers
}

// mouseState tracks reporting state, duplicate suppression and the
// DEC locator.
type mouseState struct {
	lastX, lastY   int
	lastPX, lastPY int
	haveLast       bool
	buttonsDown    int

	pointerMode int // XTSMPOINTER

	// DEC locator.
	locatorEnabled bool
	locatorOneShot bool
	locatorPixels  bool
	reportPress    bool
	reportRelease  bool
	filterActive   bool
	filter         [4]int // top, left, bottom, right (cells, or pixels when locatorPixels)
}

func (t *Terminal) setMouseMode(m MouseMode, on bool) {
	if on {
		t.modes.mouseMode = m
	} else if t.modes.mouseMode == m {
		t.modes.mouseMode = MouseNone
	}
	t.mouse.haveLast = false
}

func (t *Terminal) setMouseFormat(f MouseFormat, on bool) {
	if on {
		t.modes.mouseFormat = f
	} else if t.modes.mouseFormat == f {
		t.modes.mouseFormat = MouseFormatDefault
	}
}

// MouseEvent routes one pointer event: the force-mouse modifier hands
// it to the selection engine; otherwise an enabled DEC locator takes
// it, then reporting being off hands it to the selection engine, and
// else it is encoded for the application. Returns true when the event
// was reported to the child.
func (t *Terminal) MouseEvent(ev MouseEvent) bool {
	forced := t.cfg.ForceMouseMod != 0 && ev.Mods&t.cfg.ForceMouseMod == t.cfg.ForceMouseMod
	if !forced && t.mouse.locatorEnabled {
		t.locatorEvent(ev)
		return true
	}
	if forced || t.modes.mouseMode == MouseNone {
		t.selectionPointer(ev, forced)
		return false
	}

	if !t.shouldReport(ev) {
		return false
	}
	t.writeResponse(t.encodeMouse(ev))
	return true
}

// shouldReport applies the mode matrix and duplicate-motion
// suppression in cell or pixel units.
func (t *Terminal) shouldReport(ev MouseEvent) bool {
	m := &t.mouse
	switch ev.Kind {
	case MousePress:
		m.buttonsDown++
	case MouseRelease:
		if m.buttonsDown > 0 {
			m.buttonsDown--
		}
		if t.modes.mouseMode == MouseX10 {
			return false
		}
	case MouseMove:
		switch t.modes.mouseMode {
		case MouseX10, MouseButton:
			return false
		case MouseDrag:
			if m.buttonsDown == 0 {
				return false
			}
		}
		pixel := t.modes.mouseFormat == MouseFormatSGRPixel
		if m.haveLast {
			if pixel && ev.PX == m.lastPX && ev.PY == m.lastPY {
				return false
			}
			if !pixel && ev.X == m.lastX && ev.Y == m.lastY {
				return false
			}
		}
	}
	m.lastX, m.lastY = ev.X, ev.Y
	m.lastPX, m.lastPY = ev.PX, ev.PY
	m.haveLast = true
	return true
}

// encodeMouse renders the event in the active format.
func (t *Terminal) encodeMouse(ev MouseEvent) []byte {
	b := ev.Button
	release := ev.Kind == MouseRelease
	code := 0
	switch {
	case b < 3:
		code = b
	case b >= 4 && b <= 7: // wheel
		code = 64 + (b - 4)
	default:
		code = 3
	}
	if ev.Kind == MouseMove {
		code += 32
		if ev.Button >= 3 {
			code = 32 + 3
		}
	}
	if t.modes.mouseMode != MouseX10 {
		if ev.Mods&ModShift != 0 {
			code += 4
		}
		if ev.Mods&ModMeta != 0 {
			code += 8
		}
		if ev.Mods&ModControl != 0 {
			code += 16
		}
	}

	switch t.modes.mouseFormat {
	case MouseFormatSGR:
		final := byte('M')
		if release {
			final = 'm'
		}
		return []byte(fmt.Sprintf("\x1b[<%d;%d;%d%c", code, ev.X+1, ev.Y+1, final))
	case MouseFormatSGRPixel:
		final := byte('M')
		if release {
			final = 'm'
		}
		return []byte(fmt.Sprintf("\x1b[<%d;%d;%d%c", code, ev.PX+1, ev.PY+1, final))
	case MouseFormatURXVT:
		if release {
			code = 3
		}
		return []byte(fmt.Sprintf("\x1b[%d;%d;%dM", code+32, ev.X+1, ev.Y+1))
	case MouseFormatUTF8:
		if release {
			code = 3
		}
		var sb strings.Builder
		sb.WriteString("\x1b[M")
		sb.WriteRune(rune(code + 32))
		sb.WriteRune(rune(clampInt(ev.X+1, 0, 2014) + 32))
		sb.WriteRune(rune(clampInt(ev.Y+1, 0, 2014) + 32))
		return []byte(sb.String())
	default:
		if release {
			code = (code &^ 3) | 3
		}
		x := clampInt(ev.X+1, 0, 222)
		y := clampInt(ev.Y+1, 0, 222)
		return []byte{0x1B, '[', 'M', byte(32 + code), byte(32 + x), byte(32 + y)}
	}
}

// --- DEC locator ---

// dispatchCSILocator executes the '\''-intermediate locator and
// column-editing family.
func (t *Terminal) dispatchCSILocator(final byte) {
	p := &t.parser
	m := &t.mouse
	switch final {
	case '}': // DECIC
		t.screen.insertColumns(p.param(0, 1))
	case '~': // DECDC
		t.screen.deleteColumns(p.param(0, 1))
	case 'z': // DECELR
		switch p.param(0, 0) {
		case 0:
			m.locatorEnabled = false
		case 1:
			m.locatorEnabled = true
			m.locatorOneShot = false
		case 2:
			m.locatorEnabled = true
			m.locatorOneShot = true
		}
		m.locatorPixels = p.param(1, 0) == 1
	case '{': // DECSLE
		for i := 0; i < maxInt(p.nParams, 1); i++ {
			switch p.param(i, 0) {
			case 0:
				m.reportPress, m.reportRelease = false, false
			case 1:
				m.reportPress = true
			case 2:
				m.reportPress = false
			case 3:
				m.reportRelease = true
			case 4:
				m.reportRelease = false
			}
		}
	case '|': // DECRQLP
		t.reportLocator()
	case 'w': // DECEFR
		m.filter = [4]int{p.param(0, 0), p.param(1, 0), p.param(2, 0), p.param(3, 0)}
		m.filterActive = true
	default:
		t.traceDropped("CSI'", final)
	}
}

// locatorEvent handles pointer traffic while the locator is on: press
// and release reports per DECSLE and the one-shot filter rectangle.
func (t *Terminal) locatorEvent(ev MouseEvent) {
	m := &t.mouse
	switch ev.Kind {
	case MousePress:
		if m.reportPress {
			t.locatorReport(2+ev.Button*2, ev)
		}
	case MouseRelease:
		if m.reportRelease {
			t.locatorReport(3+ev.Button*2, ev)
		}
	case MouseMove:
		if m.filterActive {
			y, x := ev.Y+1, ev.X+1
			if m.locatorPixels {
				y, x = ev.PY+1, ev.PX+1
			}
			if y < m.filter[0] || x < m.filter[1] || y > m.filter[2] || x > m.filter[3] {
				m.filterActive = false
				t.locatorReport(10, ev)
			}
		}
	}
	if m.locatorOneShot && !m.filterActive {
		m.locatorEnabled = false
	}
}

// reportLocator answers DECRQLP with the last known position.
func (t *Terminal) reportLocator() {
	m := &t.mouse
	if !m.locatorEnabled {
		t.csiReply("0&w")
		return
	}
	ev := MouseEvent{X: m.lastX, Y: m.lastY, PX: m.lastPX, PY: m.lastPY}
	t.locatorReport(1, ev)
	if m.locatorOneShot {
		m.locatorEnabled = false
	}
}

// locatorReport emits a DECLRP event record.
func (t *Terminal) locatorReport(event int, ev MouseEvent) {
	m := &t.mouse
	y, x := ev.Y+1, ev.X+1
	if m.locatorPixels {
		y, x = ev.PY+1, ev.PX+1
	}
	buttons := 0
	if m.buttonsDown > 0 {
		buttons = 1
	}
	t.csiReply("%d;%d;%d;%d;1&w", event, buttons, y, x)
}

// --- pointer-driven selection ---

// selectionPointer feeds pointer events into the selection engine.
func (t *Terminal) selectionPointer(ev MouseEvent, forced bool) {
	switch ev.Kind {
	case MousePress:
		switch ev.Button {
		case 0:
			mode := SelectionChar
			if ev.Mods&ModControl != 0 && !forced {
				mode = SelectionRect
			}
			t.sel.Begin(t.screen, ev.X, ev.Y, mode)
		case 4:
			t.screen.ScrollView(3)
		case 5:
			t.screen.ScrollView(-3)
		}
	case MouseMove:
		t.sel.Drag(t.screen, ev.X, ev.Y)
	case MouseRelease:
		if ev.Button == 0 && t.sel.inProgress {
			if text := t.sel.Release(); text != "" {
				t.clipboard.Write('p', []byte(text))
			}
		}
	}
}

// URIAt returns the hyperlink under a grid position, if any, for
// pointer hit-testing.
func (t *Terminal) URIAt(x, y int) (URI, bool) {
	spans := t.screen.ViewSpans()
	if y < 0 || y >= len(spans) || spans[y].Line == nil {
		return URI{}, false
	}
	a := spans[y].Line.attrAt(spans[y].Offset + x)
	if a.URI == 0 {
		return URI{}, false
	}
	return t.uris.get(a.URI), true
}
