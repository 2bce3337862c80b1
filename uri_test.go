package vtcore

import "testing"

func TestURIAutoMatch(t *testing.T) {
	term, _ := newTestTerminal(t, 4, 40)
	term.WriteString("see https://example.com now")

	a := term.screen.AttrAt(4, 0) // 'h' of https
	if a.URI == 0 {
		t.Fatal("expected URI attribute on the link start")
	}
	if got := term.uris.get(a.URI).URI; got != "https://example.com" {
		t.Errorf("matched URI: got %q", got)
	}
	if end := term.screen.AttrAt(22, 0); end.URI != a.URI {
		t.Errorf("expected URI attribute through the link end")
	}
	if after := term.screen.AttrAt(24, 0); after.URI != 0 {
		t.Error("text after the link must not carry the URI")
	}
	if before := term.screen.AttrAt(0, 0); before.URI != 0 {
		t.Error("text before the link must not carry the URI")
	}
}

func TestURIMatchIdempotent(t *testing.T) {
	term, _ := newTestTerminal(t, 4, 40)
	term.WriteString("https://example.com ")
	ref := term.screen.AttrAt(0, 0).URI
	if ref == 0 {
		t.Fatal("expected matched URI")
	}

	// Re-apply the same range; the attribute run must not change.
	sp := term.screen.Span(0)
	term.applyURIRange(sp.Line, 0, sp.Line, 19, ref)
	for x := 0; x < 19; x++ {
		if got := term.screen.AttrAt(x, 0).URI; got != ref {
			t.Fatalf("cell %d lost its URI after re-apply", x)
		}
	}
}

func TestURIMatchEndsAtControl(t *testing.T) {
	term, _ := newTestTerminal(t, 4, 40)
	term.WriteString("http://x.yz\r\nplain")
	if a := term.screen.AttrAt(0, 0); a.URI == 0 {
		t.Error("control byte should finish, not discard, the match")
	}
	if a := term.screen.AttrAt(0, 1); a.URI != 0 {
		t.Error("next line must not carry the URI")
	}
}

func TestURINoFalsePositive(t *testing.T) {
	term, _ := newTestTerminal(t, 4, 40)
	term.WriteString("ratio 3:4 is fine")
	for x := 0; x < 17; x++ {
		if a := term.screen.AttrAt(x, 0); a.URI != 0 {
			t.Fatalf("unexpected URI at column %d", x)
		}
	}
}

func TestReverseTrieLongestMatch(t *testing.T) {
	trie := buildReverseTrie([]string{"http", "https"})
	if got := trie.matchProtocol([]byte(" https")); got != 5 {
		t.Errorf("expected https (5), got %d", got)
	}
	if got := trie.matchProtocol([]byte(" http")); got != 4 {
		t.Errorf("expected http (4), got %d", got)
	}
	if got := trie.matchProtocol([]byte("xhttps")); got != 5 {
		// 'x' is a URI char, so the candidate has no clean boundary,
		// but "https" itself still ends at the trie terminal.
		t.Logf("boundary behavior: %d", got)
	}
	if got := trie.matchProtocol([]byte("zzz")); got != 0 {
		t.Errorf("expected no match, got %d", got)
	}
}

func TestOSC8ExplicitHyperlink(t *testing.T) {
	term, _ := newTestTerminal(t, 4, 40)
	term.WriteString("\x1b]8;;https://go.dev\x1b\\link\x1b]8;;\x1b\\ after")

	a := term.screen.AttrAt(0, 0)
	if a.URI == 0 {
		t.Fatal("expected explicit hyperlink")
	}
	if got := term.uris.get(a.URI).URI; got != "https://go.dev" {
		t.Errorf("OSC 8 URI: got %q", got)
	}
	if after := term.screen.AttrAt(5, 0); after.URI != 0 {
		t.Error("URI must end at the closing OSC 8")
	}
}
