package vtcore

import "testing"

func newTestStore() (*lineStore, *uriTable) {
	uris := newURITable()
	return newLineStore(newMultipool(0, 0, 0), uris), uris
}

func fillLine(ls *lineStore, l *Line, s string) {
	id := ls.internAttr(l, DefaultAttribute())
	for i, r := range s {
		ls.setCell(l, i, makeCell(r, id, false))
	}
}

func TestLineSplitConcat(t *testing.T) {
	ls, _ := newTestStore()
	l := ls.newLine(DefaultAttribute(), 10)
	fillLine(ls, l, "abcdef")

	tail := ls.splitLine(l, 3)
	if l.size != 3 || tail.size != 3 {
		t.Fatalf("split sizes: %d and %d", l.size, tail.size)
	}
	if !l.wrapped {
		t.Error("head should continue into the tail after split")
	}
	if l.next != tail || tail.prev != l {
		t.Error("split must link head and tail")
	}
	if l.seq >= tail.seq {
		t.Error("seq must stay monotonic across split")
	}

	ls.concatLine(l, tail)
	if l.size != 6 {
		t.Fatalf("concat size: %d", l.size)
	}
	if got := lineText(l); got != "abcdef" {
		t.Errorf("concat content: %q", got)
	}
	if l.next != nil {
		t.Error("concat must unlink the merged line")
	}
}

func lineText(l *Line) string {
	out := make([]rune, 0, l.size)
	for i := 0; i < l.size; i++ {
		c := l.cells()[i]
		if !c.IsSpacer() {
			out = append(out, c.Rune())
		}
	}
	return string(out)
}

func TestLineHandlesFollowSplit(t *testing.T) {
	ls, _ := newTestStore()
	l := ls.newLine(DefaultAttribute(), 10)
	fillLine(ls, l, "abcdef")

	var h LineHandle
	h.rebind(l, 4)
	tail := ls.splitLine(l, 3)
	if h.Line != tail || h.Offset != 1 {
		t.Errorf("handle should follow the tail: line ok=%v offset=%d", h.Line == tail, h.Offset)
	}

	ls.concatLine(l, tail)
	if h.Line != l || h.Offset != 4 {
		t.Errorf("handle should follow concat back: offset=%d", h.Offset)
	}
	h.release()
}

func TestAdvanceWidthNeverSplitsWide(t *testing.T) {
	ls, _ := newTestStore()
	l := ls.newLine(DefaultAttribute(), 10)
	id := ls.internAttr(l, DefaultAttribute())
	// Cells: a b c 漢 [spacer] d
	ls.setCell(l, 0, makeCell('a', id, false))
	ls.setCell(l, 1, makeCell('b', id, false))
	ls.setCell(l, 2, makeCell('c', id, false))
	ls.setCell(l, 3, makeCell('漢', id, true))
	ls.setCell(l, 4, wideSpacer(id))
	ls.setCell(l, 5, makeCell('d', id, false))

	// A width-4 step would land on the spacer; it must back off.
	if got := l.advanceWidth(0, 4); got != 3 {
		t.Errorf("expected soft wrap at 3, got %d", got)
	}
	if got := l.advanceWidth(3, 4); got != 6 {
		t.Errorf("expected end of line, got %d", got)
	}
}

func TestAttrInterning(t *testing.T) {
	ls, uris := newTestStore()
	l := ls.newLine(DefaultAttribute(), 4)

	a := DefaultAttribute()
	a.Bold = true
	id1 := l.attrs.intern(a, uris)
	id2 := l.attrs.intern(a, uris)
	if id1 != id2 {
		t.Errorf("equal attributes must intern to one id: %d vs %d", id1, id2)
	}
	b := a
	b.Italic = true
	if id3 := l.attrs.intern(b, uris); id3 == id1 {
		t.Error("distinct attributes must get distinct ids")
	}
	if got := l.attrs.at(id1); got != a {
		t.Error("intern/at round trip failed")
	}
}

func TestURIRefcounting(t *testing.T) {
	uris := newURITable()
	ref := uris.intern(URI{URI: "https://example.com"})
	if ref == 0 {
		t.Fatal("expected nonzero ref")
	}
	ref2 := uris.intern(URI{URI: "https://example.com"})
	if ref2 != ref {
		t.Error("same URI must intern to the same ref")
	}
	uris.unref(ref)
	if got := uris.get(ref); got.URI != "https://example.com" {
		t.Error("one reference remains; the entry must survive")
	}
	uris.unref(ref)
	if got := uris.get(ref); got.URI != "" {
		t.Error("entry should be freed after the last unref")
	}
	// The slot is recycled.
	ref3 := uris.intern(URI{URI: "ftp://other"})
	if ref3 != ref {
		t.Errorf("expected slot reuse, got %d vs %d", ref3, ref)
	}
}

func TestLineFreeReleasesURIs(t *testing.T) {
	ls, uris := newTestStore()
	l := ls.newLine(DefaultAttribute(), 4)
	ref := uris.intern(URI{URI: "https://example.com"})
	a := DefaultAttribute()
	a.URI = ref
	id := ls.internAttr(l, a) // takes its own reference
	ls.setCell(l, 0, makeCell('x', id, false))
	uris.unref(ref) // drop ours; the line still holds one

	if uris.get(a.URI).URI == "" {
		t.Fatal("line-held reference must keep the URI alive")
	}
	ls.freeLine(l)
	if uris.get(a.URI).URI != "" {
		t.Error("freeing the line must release its URI references")
	}
}
