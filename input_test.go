package vtcore

import (
	"bytes"
	"testing"
)

func keyBytes(t *testing.T, term *Terminal, out *bytes.Buffer, ev KeyEvent) string {
	t.Helper()
	out.Reset()
	term.KeyEvent(ev)
	return out.String()
}

func TestCursorKeys(t *testing.T) {
	term, out := newTestTerminal(t, 24, 80)

	if got := keyBytes(t, term, out, KeyEvent{Sym: KeyUp}); got != "\x1b[A" {
		t.Errorf("up: %q", got)
	}
	term.WriteString("\x1b[?1h")
	if got := keyBytes(t, term, out, KeyEvent{Sym: KeyUp}); got != "\x1bOA" {
		t.Errorf("app cursor up: %q", got)
	}
	if got := keyBytes(t, term, out, KeyEvent{Sym: KeyUp, Mods: ModShift}); got != "\x1b[1;2A" {
		t.Errorf("shift-up: %q", got)
	}
	if got := keyBytes(t, term, out, KeyEvent{Sym: KeyLeft, Mods: ModControl}); got != "\x1b[1;5D" {
		t.Errorf("ctrl-left: %q", got)
	}
}

func TestFunctionKeys(t *testing.T) {
	term, out := newTestTerminal(t, 24, 80)

	if got := keyBytes(t, term, out, KeyEvent{Sym: KeyF1}); got != "\x1bOP" {
		t.Errorf("F1: %q", got)
	}
	if got := keyBytes(t, term, out, KeyEvent{Sym: KeyF5}); got != "\x1b[15~" {
		t.Errorf("F5: %q", got)
	}
	if got := keyBytes(t, term, out, KeyEvent{Sym: KeyF5, Mods: ModShift}); got != "\x1b[15;2~" {
		t.Errorf("shift-F5: %q", got)
	}
	if got := keyBytes(t, term, out, KeyEvent{Sym: KeyF12}); got != "\x1b[24~" {
		t.Errorf("F12: %q", got)
	}
}

func TestKeymapVariants(t *testing.T) {
	term, out := newTestTerminal(t, 24, 80)

	term.WriteString("\x1b[?1051h") // sun
	if got := keyBytes(t, term, out, KeyEvent{Sym: KeyF1}); got != "\x1b[224z" {
		t.Errorf("sun F1: %q", got)
	}
	term.WriteString("\x1b[?1051l\x1b[?1053h") // sco
	if got := keyBytes(t, term, out, KeyEvent{Sym: KeyF1}); got != "\x1b[M" {
		t.Errorf("sco F1: %q", got)
	}
	term.WriteString("\x1b[?1053l\x1b[?1052h") // hp
	if got := keyBytes(t, term, out, KeyEvent{Sym: KeyF1}); got != "\x1bp" {
		t.Errorf("hp F1: %q", got)
	}
}

func TestKeypadApplicationMode(t *testing.T) {
	term, out := newTestTerminal(t, 24, 80)
	if got := keyBytes(t, term, out, KeyEvent{Sym: KeyKP5}); got != "5" {
		t.Errorf("numeric keypad: %q", got)
	}
	term.WriteString("\x1b=\x1b[?1035l") // DECKPAM, NumLock off
	if got := keyBytes(t, term, out, KeyEvent{Sym: KeyKP5}); got != "\x1bOu" {
		t.Errorf("application keypad: %q", got)
	}
}

func TestModifyOtherKeys(t *testing.T) {
	term, out := newTestTerminal(t, 24, 80)

	if got := keyBytes(t, term, out, KeyEvent{Rune: 'a', Mods: ModControl}); got != "\x01" {
		t.Errorf("plain ctrl-a: %q", got)
	}

	term.WriteString("\x1b[>4;2m") // modifyOtherKeys = 2
	if got := keyBytes(t, term, out, KeyEvent{Rune: 'a', Mods: ModControl}); got != "\x1b[27;5;97~" {
		t.Errorf("modifyOther xterm: %q", got)
	}

	term.keyboard.modifyOtherFmt = ModifyOtherCSIu
	if got := keyBytes(t, term, out, KeyEvent{Rune: 'a', Mods: ModControl}); got != "\x1b[97;5u" {
		t.Errorf("modifyOther csi-u: %q", got)
	}
}

func TestMetaPolicy(t *testing.T) {
	term, out := newTestTerminal(t, 24, 80)
	if got := keyBytes(t, term, out, KeyEvent{Rune: 'x', Mods: ModAlt}); got != "\x1bx" {
		t.Errorf("alt-x esc prefix: %q", got)
	}
	term.WriteString("\x1b[?1034h")
	if got := keyBytes(t, term, out, KeyEvent{Rune: 'x', Mods: ModAlt}); got != "\xf8" {
		t.Errorf("alt-x 8-bit: %q", got)
	}
}

func TestBackspaceModes(t *testing.T) {
	term, out := newTestTerminal(t, 24, 80)
	if got := keyBytes(t, term, out, KeyEvent{Sym: KeyBackspace}); got != "\x7f" {
		t.Errorf("default backspace: %q", got)
	}
	term.WriteString("\x1b[?67h") // DECBKM: send BS
	if got := keyBytes(t, term, out, KeyEvent{Sym: KeyBackspace}); got != "\x08" {
		t.Errorf("DECBKM backspace: %q", got)
	}
}

func TestVT52KeyForms(t *testing.T) {
	term, out := newTestTerminal(t, 24, 80)
	term.WriteString("\x1b[?2l")
	if got := keyBytes(t, term, out, KeyEvent{Sym: KeyUp, Mods: ModControl}); got != "\x1bA" {
		t.Errorf("VT52 suppresses modifiers: %q", got)
	}
}

func TestKeyboardActionMode(t *testing.T) {
	term, out := newTestTerminal(t, 24, 80)
	term.WriteString("\x1b[2h") // KAM: keyboard locked
	if got := keyBytes(t, term, out, KeyEvent{Rune: 'a'}); got != "" {
		t.Errorf("locked keyboard must send nothing, got %q", got)
	}
}

func TestNRCSKeyboardRoundTrip(t *testing.T) {
	term, out := newTestTerminal(t, 24, 80)
	term.WriteString("\x1b[?42h")  // DECNRCM
	term.WriteString("\x1b%@")     // UTF-8 off
	term.WriteString("\x1b(K")     // German NRCS in G0
	if got := keyBytes(t, term, out, KeyEvent{Rune: 'ä'}); got != "{" {
		t.Errorf("expected NRCS-encoded ä, got %q", got)
	}
}

func TestFocusReporting(t *testing.T) {
	term, out := newTestTerminal(t, 24, 80)
	term.FocusEvent(true)
	if out.Len() != 0 {
		t.Fatal("focus events must be off by default")
	}
	term.WriteString("\x1b[?1004h")
	term.FocusEvent(true)
	if got := out.String(); got != "\x1b[I" {
		t.Errorf("focus in: %q", got)
	}
	out.Reset()
	term.FocusEvent(false)
	if got := out.String(); got != "\x1b[O" {
		t.Errorf("focus out: %q", got)
	}
}
