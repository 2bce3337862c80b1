package vtcore

import (
	"bytes"
	"strings"
	"testing"
)

func newTestTerminal(tb testing.TB, rows, cols int, opts ...Option) (*Terminal, *bytes.Buffer) {
	tb.Helper()
	out := &bytes.Buffer{}
	all := append([]Option{WithSize(rows, cols), WithResponse(out)}, opts...)
	return New(all...), out
}

type memClipboard struct {
	data map[byte][]byte
}

func newMemClipboard() *memClipboard {
	return &memClipboard{data: make(map[byte][]byte)}
}

func (c *memClipboard) Read(clipboard byte) string {
	return string(c.data[clipboard])
}

func (c *memClipboard) Write(clipboard byte, b []byte) {
	c.data[clipboard] = b
}

func TestPrintBasic(t *testing.T) {
	term, _ := newTestTerminal(t, 24, 80)
	term.WriteString("Hello, World!")

	if got := term.RowText(0); got != "Hello, World!" {
		t.Errorf("expected %q, got %q", "Hello, World!", got)
	}
	if x, y := term.screen.cursor.X, term.screen.cursor.Y; x != 13 || y != 0 {
		t.Errorf("expected cursor (13,0), got (%d,%d)", x, y)
	}
}

func TestCursorMotion(t *testing.T) {
	term, _ := newTestTerminal(t, 24, 80)
	term.WriteString("\x1b[5;10H")
	if x, y := term.screen.cursor.X, term.screen.cursor.Y; x != 9 || y != 4 {
		t.Fatalf("CUP: expected (9,4), got (%d,%d)", x, y)
	}
	term.WriteString("\x1b[2A\x1b[3C")
	if x, y := term.screen.cursor.X, term.screen.cursor.Y; x != 12 || y != 2 {
		t.Errorf("CUU/CUF: expected (12,2), got (%d,%d)", x, y)
	}
}

func TestSGRColors(t *testing.T) {
	term, _ := newTestTerminal(t, 24, 80)
	term.WriteString("\x1b[1;31;44mA")

	a := term.screen.AttrAt(0, 0)
	if !a.Bold {
		t.Error("expected bold")
	}
	if a.Fg != PaletteColor(1) {
		t.Errorf("expected fg palette 1, got %v", a.Fg)
	}
	if a.Bg != PaletteColor(4) {
		t.Errorf("expected bg palette 4, got %v", a.Bg)
	}
}

func TestSGRTruecolorColonForms(t *testing.T) {
	term, _ := newTestTerminal(t, 24, 80)

	term.WriteString("\x1b[38:2:10:20:30mA")
	if a := term.screen.AttrAt(0, 0); a.Fg != DirectColor(10, 20, 30, 255) {
		t.Errorf("colon form: got %v", a.Fg)
	}

	term.WriteString("\r\x1b[38:2:0:40:50:60mB")
	if a := term.screen.AttrAt(0, 0); a.Fg != DirectColor(40, 50, 60, 255) {
		t.Errorf("leading-zero colon form: got %v", a.Fg)
	}

	term.WriteString("\r\x1b[38;2;1;2;3mC")
	if a := term.screen.AttrAt(0, 0); a.Fg != DirectColor(1, 2, 3, 255) {
		t.Errorf("semicolon form: got %v", a.Fg)
	}

	term.WriteString("\r\x1b[38;5;123mD")
	if a := term.screen.AttrAt(0, 0); a.Fg != PaletteColor(123) {
		t.Errorf("256-color form: got %v", a.Fg)
	}
}

func TestSGRUnderlineStyles(t *testing.T) {
	term, _ := newTestTerminal(t, 24, 80)
	term.WriteString("\x1b[4:3mA")
	if a := term.screen.AttrAt(0, 0); a.Underline != UnderlineCurly {
		t.Errorf("expected curly underline, got %v", a.Underline)
	}
	term.WriteString("\r\x1b[21mB")
	if a := term.screen.AttrAt(0, 0); a.Underline != UnderlineDouble {
		t.Errorf("expected double underline, got %v", a.Underline)
	}
}

func TestAutowrap(t *testing.T) {
	term, _ := newTestTerminal(t, 3, 10)
	term.WriteString("0123456789AB")

	if got := term.RowText(0); got != "0123456789" {
		t.Errorf("row 0: got %q", got)
	}
	if got := term.RowText(1); got != "AB" {
		t.Errorf("row 1: got %q", got)
	}
	if !term.screen.Span(0).Line.wrapped {
		t.Error("expected row 0 line to be wrapped")
	}
}

func TestPendingWrapInvariant(t *testing.T) {
	term, _ := newTestTerminal(t, 3, 10)
	term.WriteString("0123456789")
	c := term.screen.cursor
	if !c.PendingWrap || c.X != 9 {
		t.Errorf("expected pending wrap at x=9, got pending=%v x=%d", c.PendingWrap, c.X)
	}
	// CR clears the pending wrap.
	term.WriteString("\r")
	if term.screen.cursor.PendingWrap {
		t.Error("expected pending wrap cleared by CR")
	}
}

func TestScrollAndScrollback(t *testing.T) {
	term, _ := newTestTerminal(t, 3, 10)
	term.WriteString("a\r\nb\r\nc\r\nd")

	if got := term.ScreenText(); got != "b\nc\nd" {
		t.Errorf("expected rows b,c,d got %q", got)
	}
	if n := term.screen.ScrollbackLines(); n != 1 {
		t.Errorf("expected 1 scrollback line, got %d", n)
	}

	term.screen.ScrollView(1)
	spans := term.screen.ViewSpans()
	if txt := spanText(spans[0]); txt != "a" {
		t.Errorf("expected scrolled-back view to show a, got %q", txt)
	}
	term.screen.ResetView()
}

func spanText(sp LineSpan) string {
	if sp.Line == nil {
		return ""
	}
	var b strings.Builder
	for i := sp.Offset; i < sp.Line.size; i++ {
		c := sp.Line.cells()[i]
		if !c.IsSpacer() {
			b.WriteRune(c.Rune())
		}
	}
	return strings.TrimRight(b.String(), " ")
}

func TestAltScreenCursorSaveRestore(t *testing.T) {
	term, _ := newTestTerminal(t, 24, 80)
	term.WriteString("\x1b[6;6H")
	term.WriteString("\x1b[?1049h")
	if !term.screen.AltMode() {
		t.Fatal("expected altscreen")
	}
	term.WriteString("\x1b[Hx")
	if got := term.RowText(0); got != "x" {
		t.Fatalf("expected x on altscreen, got %q", got)
	}

	term.WriteString("\x1b[?1049l")
	if term.screen.AltMode() {
		t.Fatal("expected main screen")
	}
	if x, y := term.screen.cursor.X, term.screen.cursor.Y; x != 5 || y != 5 {
		t.Errorf("expected cursor restored to (5,5), got (%d,%d)", x, y)
	}
	if strings.Contains(term.ScreenText(), "x") {
		t.Error("altscreen content leaked onto main screen")
	}
}

func TestDecaln(t *testing.T) {
	term, _ := newTestTerminal(t, 3, 5)
	term.WriteString("\x1b#8")
	if got := term.ScreenText(); got != "EEEEE\nEEEEE\nEEEEE" {
		t.Errorf("DECALN: got %q", got)
	}
}

func TestTabStops(t *testing.T) {
	term, _ := newTestTerminal(t, 24, 80)
	term.WriteString("\tA")
	if got := term.screen.CellAt(8, 0).Rune(); got != 'A' {
		t.Errorf("expected A at column 8, got %q at 8", got)
	}

	// Clear all, set one at column 20.
	term.WriteString("\x1b[3g\x1b[1;21H\x1bH\x1b[1;1H\tB")
	if got := term.screen.CellAt(20, 0).Rune(); got != 'B' {
		t.Errorf("expected B at column 20, got %q", got)
	}
}

func TestRepeatLastCharacter(t *testing.T) {
	term, _ := newTestTerminal(t, 24, 80)
	term.WriteString("ab\x1b[3b")
	if got := term.RowText(0); got != "abbbb" {
		t.Errorf("REP: got %q", got)
	}
}

func TestWideCharacters(t *testing.T) {
	term, _ := newTestTerminal(t, 24, 80)
	term.WriteString("漢x")

	c0 := term.screen.CellAt(0, 0)
	c1 := term.screen.CellAt(1, 0)
	if !c0.Wide() || c0.Rune() != '漢' {
		t.Errorf("expected wide 漢 at 0, got %q wide=%v", c0.Rune(), c0.Wide())
	}
	if !c1.IsSpacer() {
		t.Error("expected spacer at column 1")
	}
	if got := term.screen.CellAt(2, 0).Rune(); got != 'x' {
		t.Errorf("expected x at column 2, got %q", got)
	}
}

func TestWideCharNeverStraddlesMargin(t *testing.T) {
	term, _ := newTestTerminal(t, 3, 5)
	term.WriteString("abcd漢")
	// No room at column 4: the wide glyph wraps.
	if got := term.RowText(1); got != "漢" {
		t.Errorf("expected 漢 wrapped to row 1, got %q", got)
	}
}

func TestDeviceAttributes(t *testing.T) {
	term, out := newTestTerminal(t, 24, 80)
	term.WriteString("\x1b[c")
	if got := out.String(); !strings.HasPrefix(got, "\x1b[?64;") {
		t.Errorf("DA1: got %q", got)
	}
	out.Reset()
	term.WriteString("\x1b[>c")
	if got := out.String(); !strings.HasPrefix(got, "\x1b[>41;") {
		t.Errorf("DA2: got %q", got)
	}
}

func TestCursorPositionReport(t *testing.T) {
	term, out := newTestTerminal(t, 24, 80)
	term.WriteString("\x1b[3;4H\x1b[6n")
	if got := out.String(); got != "\x1b[3;4R" {
		t.Errorf("CPR: got %q", got)
	}
}

func TestScrollRegion(t *testing.T) {
	term, _ := newTestTerminal(t, 4, 10)
	term.WriteString("aaa\r\nbbb\r\nccc\r\nddd")
	term.WriteString("\x1b[2;3r")   // region rows 1-2
	term.WriteString("\x1b[3;1H\n") // LF at region bottom scrolls the region only
	if got := term.RowText(0); got != "aaa" {
		t.Errorf("row 0 should be outside the region, got %q", got)
	}
	if got := term.RowText(1); got != "ccc" {
		t.Errorf("row 1 should hold scrolled content, got %q", got)
	}
	if got := term.RowText(2); got != "" {
		t.Errorf("row 2 should be blank after scroll, got %q", got)
	}
	if got := term.RowText(3); got != "ddd" {
		t.Errorf("row 3 should be outside the region, got %q", got)
	}
}

func TestModeSaveRestore(t *testing.T) {
	term, _ := newTestTerminal(t, 24, 80)
	// DECAWM on by default; save, flip, restore.
	term.WriteString("\x1b[?7;25s")
	term.WriteString("\x1b[?7l\x1b[?25l")
	if term.modes.autowrap || term.modes.cursorVisible {
		t.Fatal("modes should be off before restore")
	}
	term.WriteString("\x1b[?7;25r")
	if !term.modes.autowrap || !term.modes.cursorVisible {
		t.Error("XTRESTORE did not bring the saved values back")
	}
}

func TestModeSnapshotProperty(t *testing.T) {
	term, _ := newTestTerminal(t, 24, 80)
	modes := []int{1, 6, 7, 12, 25, 45, 69, 1004, 1010, 2004}
	var seq strings.Builder
	seq.WriteString("\x1b[?")
	for i, m := range modes {
		if i > 0 {
			seq.WriteByte(';')
		}
		seq.WriteString(itoa(m))
	}
	base := seq.String()
	term.WriteString(base + "s") // save all

	before := make(map[int]bool)
	for _, m := range modes {
		before[m], _ = term.privateModeValue(m)
	}

	// Arbitrary toggles.
	term.WriteString("\x1b[?1h\x1b[?7l\x1b[?25l\x1b[?2004h\x1b[?1010h")
	term.WriteString(base + "r") // restore all

	for _, m := range modes {
		if got, _ := term.privateModeValue(m); got != before[m] {
			t.Errorf("mode %d: expected %v after restore, got %v", m, before[m], got)
		}
	}
}

func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	var b [8]byte
	i := len(b)
	for v > 0 {
		i--
		b[i] = byte('0' + v%10)
		v /= 10
	}
	return string(b[i:])
}

func TestOSC52ClipboardEcho(t *testing.T) {
	clip := newMemClipboard()
	term, out := newTestTerminal(t, 24, 80, WithClipboard(clip))

	clip.Write('c', []byte("Hi"))
	term.WriteString("\x1b]52;c;?\x07")
	if got := out.String(); !strings.Contains(got, "52;c;SGk=") {
		t.Errorf("OSC 52 echo: got %q", got)
	}

	out.Reset()
	term.WriteString("\x1b]52;c;V29ybGQ=\x07")
	if got := clip.Read('c'); got != "World" {
		t.Errorf("OSC 52 store: got %q", got)
	}
}

func TestBracketedPasteCRLFRewrite(t *testing.T) {
	term, out := newTestTerminal(t, 24, 80)
	term.WriteString("\x1b[?2004h")
	term.Paste([]byte("a\nb"))
	if got := out.String(); got != "\x1b[200~a\rb\x1b[201~" {
		t.Errorf("bracketed paste: got %q", got)
	}

	out.Reset()
	term.WriteString("\x1b[?2006h")
	term.Paste([]byte("a\nb"))
	if got := out.String(); got != "\x1b[200~a\nb\x1b[201~" {
		t.Errorf("literal-NL paste: got %q", got)
	}
}

func TestPasteAbortSkipsSuffixWhenUnopened(t *testing.T) {
	term, out := newTestTerminal(t, 24, 80)
	// Bracketed paste off: no prefix buffered, so no suffix on abort.
	term.PasteBegin()
	term.PasteChunk([]byte("abc"))
	term.PasteAbort()
	if got := out.String(); got != "abc" {
		t.Errorf("aborted paste: got %q", got)
	}
}

func TestDECCIRRoundTrip(t *testing.T) {
	term, out := newTestTerminal(t, 24, 80)
	term.WriteString("\x1b[5;7H\x1b[1;31;44m")
	term.WriteString("\x1b[1$w")

	reply := out.String()
	const pre = "\x1bP1$u"
	const post = "\x1b\\"
	if !strings.HasPrefix(reply, pre) || !strings.HasSuffix(reply, post) {
		t.Fatalf("DECCIR reply framing: %q", reply)
	}
	payload := reply[len(pre) : len(reply)-len(post)]

	// Disturb what the report carries, keep the colors it does not.
	term.WriteString("\x1b[22m\x1b[H")
	if term.screen.sgr.Bold {
		t.Fatal("bold should be off before restore")
	}

	term.WriteString("\x1bP1$t" + payload + "\x1b\\")
	if x, y := term.screen.cursor.X, term.screen.cursor.Y; x != 6 || y != 4 {
		t.Errorf("expected cursor (6,4) restored, got (%d,%d)", x, y)
	}
	a := term.screen.sgr
	if !a.Bold {
		t.Error("expected bold restored")
	}
	if a.Fg != PaletteColor(1) || a.Bg != PaletteColor(4) {
		t.Errorf("expected red on blue preserved, got fg=%v bg=%v", a.Fg, a.Bg)
	}
}

func TestDECTABSRRoundTrip(t *testing.T) {
	term, out := newTestTerminal(t, 24, 40)
	term.WriteString("\x1b[2$w")
	reply := out.String()
	if !strings.Contains(reply, "9/17/25/33") {
		t.Fatalf("DECTABSR: got %q", reply)
	}

	term.WriteString("\x1b[3g") // clear all
	term.WriteString("\x1bP2$t9/21\x1b\\")
	if !term.screen.tabs[8] || !term.screen.tabs[20] {
		t.Error("expected tabs restored at columns 8 and 20")
	}
	if term.screen.tabs[16] {
		t.Error("expected no tab at column 16")
	}
}

func TestDECRQSS(t *testing.T) {
	term, out := newTestTerminal(t, 24, 80)
	term.WriteString("\x1b[3;10r")
	out.Reset()
	term.WriteString("\x1bP$qr\x1b\\")
	if got := out.String(); got != "\x1bP1$r3;10r\x1b\\" {
		t.Errorf("DECRQSS r: got %q", got)
	}

	out.Reset()
	term.WriteString("\x1bP$qz\x1b\\")
	if got := out.String(); got != "\x1bP0$r\x1b\\" {
		t.Errorf("DECRQSS invalid: got %q", got)
	}
}

func TestDECRQM(t *testing.T) {
	term, out := newTestTerminal(t, 24, 80)
	term.WriteString("\x1b[?7$p")
	if got := out.String(); got != "\x1b[?7;1$y" {
		t.Errorf("DECRQM set: got %q", got)
	}
	out.Reset()
	term.WriteString("\x1b[?7l\x1b[?7$p")
	if got := out.String(); got != "\x1b[?7;2$y" {
		t.Errorf("DECRQM reset: got %q", got)
	}
}

func TestXTGETTCAP(t *testing.T) {
	term, out := newTestTerminal(t, 24, 80)
	term.WriteString("\x1bP+q436f\x1b\\")
	if got := out.String(); !strings.Contains(got, "1+r436f=323536") {
		t.Errorf("XTGETTCAP Co: got %q", got)
	}
}

func TestWindowTitle(t *testing.T) {
	term, _ := newTestTerminal(t, 24, 80)
	term.WriteString("\x1b]2;hello title\x07")
	if got := term.Title(); got != "hello title" {
		t.Errorf("title: got %q", got)
	}
	term.WriteString("\x1b]0;both\x1b\\")
	if got := term.Title(); got != "both" {
		t.Errorf("title via OSC 0: got %q", got)
	}
}

func TestWorkingDirectory(t *testing.T) {
	term, _ := newTestTerminal(t, 24, 80)
	term.WriteString("\x1b]7;file://host/tmp/dir\x07")
	if got := term.WorkingDir(); got != "file://host/tmp/dir" {
		t.Errorf("OSC 7: got %q", got)
	}
}

func TestOSCColorQuery(t *testing.T) {
	term, out := newTestTerminal(t, 24, 80)
	term.WriteString("\x1b]4;1;?\x07")
	if got := out.String(); !strings.Contains(got, "4;1;rgb:cdcd/3131/3131") {
		t.Errorf("OSC 4 query: got %q", got)
	}

	out.Reset()
	term.WriteString("\x1b]4;1;#102030\x07\x1b]4;1;?\x07")
	if got := out.String(); !strings.Contains(got, "rgb:1010/2020/3030") {
		t.Errorf("OSC 4 set+query: got %q", got)
	}
}

func TestVT52Mode(t *testing.T) {
	term, out := newTestTerminal(t, 24, 80)
	term.WriteString("\x1b[?2l") // enter VT52
	if !term.inVT52() {
		t.Fatal("expected VT52 mode")
	}
	term.WriteString("\x1bY%(")
	// ESC Y row col with 0x20 bias: '%'-0x20=5, '('-0x20=8.
	if x, y := term.screen.cursor.X, term.screen.cursor.Y; x != 8 || y != 5 {
		t.Errorf("VT52 CUP: expected (8,5), got (%d,%d)", x, y)
	}
	term.WriteString("\x1bZ")
	if got := out.String(); got != "\x1b/Z" {
		t.Errorf("VT52 identify: got %q", got)
	}
	term.WriteString("\x1b<")
	if term.inVT52() {
		t.Error("expected return to ANSI mode")
	}
}

func TestChunkedParserRestartability(t *testing.T) {
	term, _ := newTestTerminal(t, 24, 80)
	term.Advance([]byte("\x1b[3"))
	term.Advance([]byte("1mA"))
	if a := term.screen.AttrAt(0, 0); a.Fg != PaletteColor(1) {
		t.Errorf("split CSI: got fg %v", a.Fg)
	}

	term.Advance([]byte{0xE6})
	term.Advance([]byte{0xBC, 0xA2})
	if got := term.screen.CellAt(1, 0).Rune(); got != '漢' {
		t.Errorf("split UTF-8: got %q", got)
	}

	term.Advance([]byte("\x1b]2;spl"))
	term.Advance([]byte("it\x07"))
	if got := term.Title(); got != "split" {
		t.Errorf("split OSC: got %q", got)
	}
}

func TestProtectedCells(t *testing.T) {
	term, _ := newTestTerminal(t, 24, 80)
	term.WriteString("A\x1b[1\"qB\x1b[0\"qC")
	term.WriteString("\x1b[?2K") // DECSEL: selective erase full line
	if got := term.RowText(0); got != " B" {
		t.Errorf("expected only protected B to survive, got %q", got)
	}
}

func TestSynchronizedUpdates(t *testing.T) {
	term, _ := newTestTerminal(t, 24, 80)
	term.WriteString("\x1b[?2026h")
	if !term.SyncActive() {
		t.Error("expected sync active via mode 2026")
	}
	term.WriteString("\x1b[?2026l")
	if term.SyncActive() {
		t.Error("expected sync inactive")
	}

	term.WriteString("\x1bP=1s\x1b\\")
	if !term.SyncActive() {
		t.Error("expected sync active via DCS")
	}
	term.WriteString("\x1bP=2s\x1b\\")
	if term.SyncActive() {
		t.Error("expected sync inactive via DCS")
	}
}

func TestLocalEchoCaretNotation(t *testing.T) {
	term, _ := newTestTerminal(t, 24, 80, WithConfig(Config{LocalEcho: true}))
	term.localEcho([]byte{0x01, 'a'})
	if got := term.RowText(0); got != "^Aa" {
		t.Errorf("local echo: got %q", got)
	}
}

func TestInsertMode(t *testing.T) {
	term, _ := newTestTerminal(t, 24, 80)
	term.WriteString("abc\x1b[1;1H\x1b[4hXY")
	if got := term.RowText(0); got != "XYabc" {
		t.Errorf("IRM: got %q", got)
	}
}

func TestAnswerback(t *testing.T) {
	term, out := newTestTerminal(t, 24, 80, WithConfig(Config{Answerback: "here"}))
	term.Advance([]byte{0x05})
	if got := out.String(); got != "here" {
		t.Errorf("ENQ: got %q", got)
	}
}

func TestHooksIntercept(t *testing.T) {
	var seen []rune
	term, _ := newTestTerminal(t, 24, 80, WithHooks(Hooks{
		Print: func(r rune, next func(rune)) {
			seen = append(seen, r)
			next(r)
		},
	}))
	term.WriteString("hi")
	if string(seen) != "hi" {
		t.Errorf("print hook saw %q", string(seen))
	}
	if got := term.RowText(0); got != "hi" {
		t.Errorf("hook next() should still print, got %q", got)
	}
}
