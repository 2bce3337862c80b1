package vtcore

import (
	"bytes"
	"testing"
)

func TestPrinterControllerSieve(t *testing.T) {
	sink := &bytes.Buffer{}
	term, _ := newTestTerminal(t, 4, 20, WithPrinter(sink))

	term.feedBytes([]byte("\x1b[5i"))
	if !term.printerCtl.active {
		t.Fatal("MC 5 must enter printer-controller mode")
	}
	term.feedBytes([]byte("raw \x11\x13\x00bytes\x1b[4iscreen"))
	if got := sink.String(); got != "raw bytes" {
		t.Errorf("printer sink: got %q", got)
	}
	if term.printerCtl.active {
		t.Error("CSI 4 i must exit printer-controller mode")
	}
	if got := term.RowText(0); got != "screen" {
		t.Errorf("bytes after exit must reach the screen: %q", got)
	}
}

func TestPrinterControllerNesting(t *testing.T) {
	sink := &bytes.Buffer{}
	term, _ := newTestTerminal(t, 4, 20, WithPrinter(sink))

	term.feedBytes([]byte("\x1b[5i"))
	// A nested enter/exit pair passes through to the printer.
	term.feedBytes([]byte("a\x1b[5ib\x1b[4ic\x1b[4id"))
	if got := sink.String(); got != "a\x1b[5ib\x1b[4ic" {
		t.Errorf("nested sieve: got %q", got)
	}
	if got := term.RowText(0); got != "d" {
		t.Errorf("after outer exit: %q", got)
	}
}

func TestPrinterSieveSplitSequence(t *testing.T) {
	sink := &bytes.Buffer{}
	term, _ := newTestTerminal(t, 4, 20, WithPrinter(sink))

	term.feedBytes([]byte("\x1b[5i"))
	term.feedBytes([]byte("x\x1b["))
	term.feedBytes([]byte("4"))
	term.feedBytes([]byte("i"))
	if got := sink.String(); got != "x" {
		t.Errorf("split exit sequence leaked: %q", got)
	}
	if term.printerCtl.active {
		t.Error("split CSI 4 i must still exit")
	}
}

func TestPrintScreenMediaCopy(t *testing.T) {
	sink := &bytes.Buffer{}
	term, _ := newTestTerminal(t, 2, 10, WithPrinter(sink))
	term.WriteString("one\r\ntwo\x1b[0i")
	if got := sink.String(); got != "one\ntwo\n" {
		t.Errorf("MC 0: got %q", got)
	}
}

func TestCRLFTranslate(t *testing.T) {
	if got := string(crlfTranslate([]byte("a\rb"))); got != "a\r\nb" {
		t.Errorf("crlf: got %q", got)
	}
	in := []byte("plain")
	if got := crlfTranslate(in); &got[0] != &in[0] {
		t.Error("translation-free input should not copy")
	}
}

func TestPasteQuoteMode(t *testing.T) {
	term, out := newTestTerminal(t, 24, 80)
	term.WriteString("\x1b[?2005h")
	term.Paste([]byte("a\x01b"))
	if got := out.String(); got != "a\x16\x01b" {
		t.Errorf("paste quote: got %q", got)
	}
}
