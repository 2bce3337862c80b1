package vtcore

import "unicode/utf8"

// printRun consumes a contiguous run of printable bytes from data into
// the current line and returns how many bytes it ate. The run is
// bounded by the next control byte or by four times the screen width
// (a wide-character upper bound), so the parser regains control often
// enough for C1 handling and restartability.
func (t *Terminal) printRun(data []byte) int {
	limit := minInt(len(data), 4*t.screen.width)
	n := 0
	for n < limit {
		b := data[n]
		if b < 0x20 || b == 0x7F {
			break
		}
		if b >= 0x80 && b <= 0x9F && t.vtLevel >= 2 && !t.utf8Enabled() {
			break
		}
		n++
	}
	if n == 0 {
		// Only reachable if the first byte is a control; the caller
		// handles those. Consume it so the parser always advances.
		return 1
	}
	run := data[:n]

	cur := &t.screen.cursor
	// Pure-ASCII fast path: active GL is ASCII, no single shift, no
	// pending UTF-8 tail.
	if t.utf8Enabled() && t.utf8TailLen == 0 && cur.GLSS < 0 &&
		cur.GN[cur.GL] == CharsetASCII && asciiOnly(run) {
		for _, b := range run {
			t.writeGlyph(rune(b))
			t.uriScanByte(b)
		}
		return n
	}

	// Slow path: UTF-8 decode with partial-tail deferral, then NRCS.
	i := 0
	for i < len(run) {
		b := run[i]
		if !t.utf8Enabled() {
			i++
			var r rune
			if b < 0x80 {
				if b < 0x20 {
					continue
				}
				r = nrcsDecode(cur.glCharset(), b, t.modes.nrcs)
			} else {
				r = nrcsDecodeGR(cur.GN[cur.GR], b, t.modes.nrcs)
			}
			t.writeGlyph(r)
			t.uriScanByte(b)
			continue
		}

		// Re-assemble a rune split across Advance calls.
		if t.utf8TailLen > 0 {
			t.utf8Tail[t.utf8TailLen] = b
			t.utf8TailLen++
			i++
			if utf8.FullRune(t.utf8Tail[:t.utf8TailLen]) {
				r, _ := utf8.DecodeRune(t.utf8Tail[:t.utf8TailLen])
				t.printRune(r)
				t.utf8TailLen = 0
			} else if t.utf8TailLen == 4 {
				t.printRune(utf8.RuneError)
				t.utf8TailLen = 0
			}
			continue
		}

		if b < 0x80 {
			i++
			r := rune(b)
			if cur.GLSS >= 0 || cur.GN[cur.GL] != CharsetASCII {
				r = nrcsDecode(cur.glCharset(), b, t.modes.nrcs)
			}
			t.writeGlyph(r)
			t.uriScanByte(b)
			continue
		}

		r, size := utf8.DecodeRune(run[i:])
		if r == utf8.RuneError && size <= 1 {
			if !utf8.FullRune(run[i:]) && len(run)-i < 4 {
				// Partial tail: defer until the next chunk.
				t.utf8TailLen = copy(t.utf8Tail[:], run[i:])
				i = len(run)
				continue
			}
			i++
			t.printRune(utf8.RuneError)
			continue
		}
		i += size
		t.printRune(r)
	}
	return n
}

// printRune routes a decoded rune through glyph writing and keeps the
// URI scanner in byte step for ASCII, aborting a match on multibyte.
func (t *Terminal) printRune(r rune) {
	t.writeGlyph(r)
	if r < 0x80 {
		t.uriScanByte(byte(r))
	} else {
		t.uriScanNonASCII()
	}
}

// writeGlyph places one decoded codepoint at the cursor, handling
// combining marks, wide glyphs, autowrap, insert mode, the margin bell
// and damage.
func (t *Terminal) writeGlyph(r rune) {
	if t.hooks.Print != nil {
		h := t.hooks.Print
		t.hooks.Print = nil
		h(r, t.writeGlyph)
		t.hooks.Print = h
		return
	}
	t.writeGlyphInternal(r)
}

func (t *Terminal) writeGlyphInternal(r rune) {
	s := t.screen
	cur := &s.cursor
	t.parser.lastPrinted = r

	if isCombiningRune(r) {
		t.attachCombining(r)
		return
	}

	w := runeWidth(r)
	if w <= 0 {
		w = 1
	}
	right := s.effRight()

	if cur.PendingWrap {
		if t.modes.autowrap {
			t.wrapLine()
		} else {
			cur.PendingWrap = false
		}
	}
	// A wide glyph never straddles the right margin.
	if cur.X+w > right {
		if t.modes.autowrap {
			t.wrapLine()
		} else {
			cur.X = maxInt(s.effLeft(), right-w)
		}
	}

	sp := s.cur.spans[cur.Y]
	l := sp.Line
	off := sp.Offset + cur.X

	if s.sel != nil && l.selectionIndex >= 0 {
		s.sel.damageLine(l)
	}

	if t.modes.insert {
		l = s.isolateRow(cur.Y)
		off = cur.X
		s.cur.ls.copyCells(l, off+w, l, off, right-cur.X-w)
	}

	id := s.cur.ls.internAttr(l, s.sgr)
	l.adjustWideAt(off)
	if w == 2 {
		s.cur.ls.setCell(l, off, makeCell(r, id, true))
		s.cur.ls.setCell(l, off+1, wideSpacer(id))
	} else {
		s.cur.ls.setCell(l, off, makeCell(r, id, false))
	}
	l.adjustWideAt(off + w)
	l.forceDamage = true

	// Margin bell on crossing the configured column.
	bellCol := right - 8
	if t.cfg.MarginBellColumn > 0 {
		bellCol = right - t.cfg.MarginBellColumn
	}
	if cur.X < bellCol && cur.X+w >= bellCol {
		t.marginBell()
	}

	if cur.X+w >= right {
		cur.X = right - 1
		cur.PendingWrap = true
	} else {
		cur.X += w
	}
}

// wrapLine performs the autowrap: the current row's line continues
// logically onto the next row.
func (t *Terminal) wrapLine() {
	s := t.screen
	if l := s.cur.spans[s.cursor.Y].Line; l != nil {
		l.wrapped = true
	}
	s.index(true)
	s.cr()
	s.cursor.PendingWrap = false
}

// attachCombining folds a combining mark into the preceding cell,
// preferring the NFC precomposed form; otherwise the mark is stored as
// a zero-width follower cell.
func (t *Terminal) attachCombining(mark rune) {
	s := t.screen
	cur := s.cursor
	sp := s.cur.spans[cur.Y]
	l := sp.Line

	// Locate the base cell: the one just written.
	baseOff := sp.Offset + cur.X - 1
	if cur.PendingWrap {
		baseOff = sp.Offset + cur.X
	}
	if baseOff < 0 || baseOff >= l.size {
		return
	}
	base := l.cells()[baseOff]
	if base.IsSpacer() && baseOff > 0 {
		baseOff--
		base = l.cells()[baseOff]
	}
	if base.IsSpacer() {
		return
	}

	if composed, ok := precompose(base.Rune(), mark); ok {
		base.ch = compactRune(composed)
		base.setDrawn(false)
		l.cells()[baseOff] = base
		l.forceDamage = true
		return
	}

	// Zero-width follower: the mark occupies the cell after its base
	// with a nonzero ch so it is distinguishable from a wide spacer.
	follow := baseOff + 1
	if base.Wide() {
		follow = baseOff + 2
	}
	if follow >= sp.Offset+s.width {
		return
	}
	id := s.cur.ls.internAttr(l, s.sgr)
	s.cur.ls.setCell(l, follow, makeCell(mark, id, false))
	l.forceDamage = true
}

// repeatLast implements REP: the last printed character is re-emitted
// through the print path.
func (t *Terminal) repeatLast(n int) {
	r := t.parser.lastPrinted
	if r == 0 {
		return
	}
	for i := 0; i < n; i++ {
		t.writeGlyph(r)
	}
}

func asciiOnly(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return false
		}
	}
	return true
}

// --- URI auto-match feeding ---

// uriScanByte advances the streaming URI matcher by one printed byte.
func (t *Terminal) uriScanByte(b byte) {
	switch t.uriMatcher.next(b) {
	case urimStarted:
		t.uriMatchStart()
	case urimFinished:
		t.uriMatchFinish(1)
	case urimAborted:
		t.uriMatchAbort()
	}
}

// uriScanNonASCII aborts any match in progress; URI bytes are ASCII.
func (t *Terminal) uriScanNonASCII() {
	t.uriMatcher.reset()
	t.uriMatchAbort()
}

// uriControlSeen ends a match at control input.
func (t *Terminal) uriControlSeen() {
	if !t.uriActive {
		return
	}
	switch t.uriMatcher.flush() {
	case urimFinished:
		t.uriMatchFinish(0)
	default:
		t.uriMatchAbort()
	}
}

// uriMatchStart places the bookmark handle at the protocol start.
func (t *Terminal) uriMatchStart() {
	s := t.screen
	sp := s.cur.spans[s.cursor.Y]
	line, off := t.walkBackCells(sp.Line, sp.Offset+s.cursor.X, t.uriMatcher.protoLen+1)
	t.uriBookmark.rebind(line, off)
	t.uriActive = true
}

// uriMatchFinish interns the matched URI and applies the uri attribute
// over [bookmark, cursor-trailing), in place.
func (t *Terminal) uriMatchFinish(trailing int) {
	if !t.uriActive || t.uriBookmark.Line == nil {
		t.uriMatchAbort()
		return
	}
	s := t.screen
	sp := s.cur.spans[s.cursor.Y]
	endLine, endOff := t.walkBackCells(sp.Line, sp.Offset+s.cursor.X, trailing)

	text := t.collectCells(t.uriBookmark.Line, t.uriBookmark.Offset, endLine, endOff)
	if text != "" {
		ref := t.uris.intern(URI{URI: text})
		t.applyURIRange(t.uriBookmark.Line, t.uriBookmark.Offset, endLine, endOff, ref)
		t.uris.unref(ref) // cells now hold the references
	}
	t.uriMatchAbort()
}

func (t *Terminal) uriMatchAbort() {
	t.uriBookmark.release()
	t.uriBookmark = LineHandle{}
	t.uriActive = false
}

// walkBackCells steps n cells backward from (line, off), following the
// wrapped chain.
func (t *Terminal) walkBackCells(line *Line, off, n int) (*Line, int) {
	for n > 0 && line != nil {
		if off >= n {
			return line, off - n
		}
		n -= off
		if line.prev == nil || !line.prev.wrapped {
			return line, 0
		}
		line = line.prev
		off = line.size
	}
	return line, off
}

// collectCells gathers the codepoints between two positions.
func (t *Terminal) collectCells(l0 *Line, o0 int, l1 *Line, o1 int) string {
	var out []rune
	line, off := l0, o0
	for line != nil {
		end := line.size
		if line == l1 {
			end = minInt(end, o1)
		}
		for ; off < end; off++ {
			c := line.cells()[off]
			if !c.IsSpacer() {
				out = append(out, c.Rune())
			}
		}
		if line == l1 {
			break
		}
		line = line.next
		off = 0
	}
	return string(out)
}

// applyURIRange rewrites the attributes of a cell range to carry ref.
// Applying the same match twice yields the same attribute run.
func (t *Terminal) applyURIRange(l0 *Line, o0 int, l1 *Line, o1 int, ref URIRef) {
	line, off := l0, o0
	for line != nil {
		end := line.size
		if line == l1 {
			end = minInt(end, o1)
		}
		for ; off < end; off++ {
			c := line.cells()[off]
			a := line.attrs.at(c.attrID)
			if a.URI == ref {
				continue
			}
			a.URI = ref
			c.attrID = line.attrs.intern(a, t.uris)
			c.setDrawn(false)
			line.cells()[off] = c
		}
		line.forceDamage = true
		if line == l1 {
			break
		}
		line = line.next
		off = 0
	}
}
