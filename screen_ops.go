package vtcore

// Row-level editing operates on isolated rows: the row's line is split
// at both span boundaries so the visual row owns a whole Line. The
// wrapped flag keeps the paragraph logically joined, so reflow is
// unaffected, while selection segments and handles follow the splits.

// isolateRow makes visual row y start at offset 0 of its own line and
// returns that line.
func (s *Screen) isolateRow(y int) *Line {
	s.splitAtRow(y)
	if y+1 < s.height && s.cur.spans[y+1].Line == s.cur.spans[y].Line {
		s.splitAtRow(y + 1)
	}
	return s.cur.spans[y].Line
}

// erasePad is the blank attribute erase operations paint with.
func (s *Screen) erasePad() Attribute {
	return s.padAttr()
}

// eraseRow blanks columns [x0, x1) of row y. With selective set,
// protected cells (DECSCA) survive.
func (s *Screen) eraseRow(y, x0, x1 int, selective bool) {
	if y < 0 || y >= s.height {
		return
	}
	x0 = clampInt(x0, 0, s.width)
	x1 = clampInt(x1, 0, s.width)
	if x0 >= x1 {
		return
	}
	l := s.isolateRow(y)
	if s.sel != nil {
		s.sel.damageLine(l)
	}
	pad := s.erasePad()
	padID := s.cur.ls.internAttr(l, pad)

	if !selective && x1 >= s.width {
		s.cur.ls.eraseTail(l, x0, padID)
		l.wrapped = false
		l.forceDamage = true
		return
	}

	l.adjustWideAt(x0)
	end := minInt(x1, maxInt(l.size, x1))
	for x := x0; x < end; x++ {
		if x >= l.size && padID == l.padAttrID {
			break
		}
		if selective && l.attrAt(x).Protected {
			continue
		}
		s.cur.ls.setCell(l, x, Cell{ch: ' ', attrID: padID})
	}
	l.adjustWideAt(x1)
	l.forceDamage = true
}

// eraseRect blanks the rectangle [x0,x1) x [y0,y1).
func (s *Screen) eraseRect(x0, y0, x1, y1 int, selective bool) {
	y0 = clampInt(y0, 0, s.height)
	y1 = clampInt(y1, 0, s.height)
	for y := y0; y < y1; y++ {
		s.eraseRow(y, x0, x1, selective)
	}
}

// eraseLine implements EL / DECSEL for the cursor row.
func (s *Screen) eraseLine(mode int, selective bool) {
	switch mode {
	case 0:
		s.eraseRow(s.cursor.Y, s.cursor.X, s.width, selective)
	case 1:
		s.eraseRow(s.cursor.Y, 0, s.cursor.X+1, selective)
	case 2:
		s.eraseRow(s.cursor.Y, 0, s.width, selective)
	}
	s.cursor.PendingWrap = false
}

// eraseScreen implements ED / DECSED.
func (s *Screen) eraseScreen(mode int, selective bool) {
	switch mode {
	case 0:
		s.eraseRow(s.cursor.Y, s.cursor.X, s.width, selective)
		s.eraseRect(0, s.cursor.Y+1, s.width, s.height, selective)
	case 1:
		s.eraseRect(0, 0, s.width, s.cursor.Y, selective)
		s.eraseRow(s.cursor.Y, 0, s.cursor.X+1, selective)
	case 2:
		s.eraseRect(0, 0, s.width, s.height, selective)
	case 3:
		s.clearScrollback()
	}
	s.cursor.PendingWrap = false
}

// clearScrollback drops every line retained above the live viewport.
func (s *Screen) clearScrollback() {
	if s.altMode {
		return
	}
	s.ResetView()
	for s.top.Line != nil && s.top.Line != s.main.anchor.Line {
		next := s.top.Line.next
		s.main.ls.freeLine(s.top.Line)
		s.top.rebind(next, 0)
	}
	if s.main.anchor.Offset > 0 {
		// The anchor sits mid-line: the head fragment is history too.
		s.main.ls.splitLine(s.main.anchor.Line, s.main.anchor.Offset)
		prev := s.main.anchor.Line.prev
		if prev != nil {
			s.main.ls.freeLine(prev)
		}
		s.rebuildSpans()
	}
	s.top.rebind(s.main.anchor.Line, 0)
	s.sbLines = 0
}

// eraseChars implements ECH: blank n cells at the cursor without shifting.
func (s *Screen) eraseChars(n int) {
	s.eraseRow(s.cursor.Y, s.cursor.X, s.cursor.X+n, false)
	s.cursor.PendingWrap = false
}

// insertCells implements ICH: shift the tail of the row right by n
// within the horizontal margins, blanking the gap.
func (s *Screen) insertCells(n int) {
	left, right := s.effLeft(), s.effRight()
	x := s.cursor.X
	if x < left || x >= right {
		return
	}
	n = minInt(n, right-x)
	l := s.isolateRow(s.cursor.Y)
	if s.sel != nil {
		s.sel.damageLine(l)
	}
	padID := s.cur.ls.internAttr(l, s.erasePad())
	l.adjustWideAt(x)
	l.adjustWideAt(right)
	s.cur.ls.copyCells(l, x+n, l, x, right-x-n)
	for i := x; i < x+n; i++ {
		s.cur.ls.setCell(l, i, Cell{ch: ' ', attrID: padID})
	}
	if l.size > right {
		l.adjustWideAt(right)
	}
	l.forceDamage = true
	s.cursor.PendingWrap = false
}

// deleteCells implements DCH: shift the tail left by n, padding at the
// right margin.
func (s *Screen) deleteCells(n int) {
	left, right := s.effLeft(), s.effRight()
	x := s.cursor.X
	if x < left || x >= right {
		return
	}
	n = minInt(n, right-x)
	l := s.isolateRow(s.cursor.Y)
	if s.sel != nil {
		s.sel.damageLine(l)
	}
	padID := s.cur.ls.internAttr(l, s.erasePad())
	l.adjustWideAt(x)
	l.adjustWideAt(x + n)
	s.cur.ls.copyCells(l, x, l, x+n, right-x-n)
	for i := right - n; i < right; i++ {
		if i >= l.size && padID == l.padAttrID {
			break
		}
		s.cur.ls.setCell(l, i, Cell{ch: ' ', attrID: padID})
	}
	l.forceDamage = true
	s.cursor.PendingWrap = false
}

// insertLines implements IL: blank lines appear at the cursor row,
// pushing the region tail down.
func (s *Screen) insertLines(n int) {
	if s.cursor.Y < s.topMargin || s.cursor.Y >= s.bottomMargin {
		return
	}
	s.scroll(s.cursor.Y, -n, false)
	s.cr()
}

// deleteLines implements DL: rows vanish at the cursor, the region tail
// moves up and blanks fill the bottom.
func (s *Screen) deleteLines(n int) {
	if s.cursor.Y < s.topMargin || s.cursor.Y >= s.bottomMargin {
		return
	}
	s.scroll(s.cursor.Y, n, false)
	s.cr()
}

// insertColumns implements DECIC: blank columns at the cursor within
// the margin box.
func (s *Screen) insertColumns(n int) {
	left, right := s.effLeft(), s.effRight()
	x := s.cursor.X
	if x < left || x >= right || s.cursor.Y < s.topMargin || s.cursor.Y >= s.bottomMargin {
		return
	}
	n = minInt(n, right-x)
	for y := s.topMargin; y < s.bottomMargin; y++ {
		l := s.isolateRow(y)
		padID := s.cur.ls.internAttr(l, s.erasePad())
		s.cur.ls.copyCells(l, x+n, l, x, right-x-n)
		for i := x; i < x+n; i++ {
			s.cur.ls.setCell(l, i, Cell{ch: ' ', attrID: padID})
		}
		l.forceDamage = true
		if s.sel != nil {
			s.sel.damageLine(l)
		}
	}
	s.cursor.PendingWrap = false
}

// deleteColumns implements DECDC.
func (s *Screen) deleteColumns(n int) {
	left, right := s.effLeft(), s.effRight()
	x := s.cursor.X
	if x < left || x >= right || s.cursor.Y < s.topMargin || s.cursor.Y >= s.bottomMargin {
		return
	}
	n = minInt(n, right-x)
	for y := s.topMargin; y < s.bottomMargin; y++ {
		l := s.isolateRow(y)
		padID := s.cur.ls.internAttr(l, s.erasePad())
		s.cur.ls.copyCells(l, x, l, x+n, right-x-n)
		for i := right - n; i < right; i++ {
			if i >= l.size && padID == l.padAttrID {
				break
			}
			s.cur.ls.setCell(l, i, Cell{ch: ' ', attrID: padID})
		}
		l.forceDamage = true
		if s.sel != nil {
			s.sel.damageLine(l)
		}
	}
	s.cursor.PendingWrap = false
}

// fillRect implements DECFRA: fill the rectangle with a character in
// the current rendition.
func (s *Screen) fillRect(r rune, x0, y0, x1, y1 int) {
	x0 = clampInt(x0, 0, s.width)
	x1 = clampInt(x1, 0, s.width)
	y0 = clampInt(y0, 0, s.height)
	y1 = clampInt(y1, 0, s.height)
	wide := isWideRune(r)
	for y := y0; y < y1; y++ {
		l := s.isolateRow(y)
		id := s.cur.ls.internAttr(l, s.sgr)
		l.adjustWideAt(x0)
		for x := x0; x < x1; x++ {
			if wide {
				if x+1 >= x1 {
					s.cur.ls.setCell(l, x, Cell{ch: ' ', attrID: id})
					break
				}
				s.cur.ls.setCell(l, x, makeCell(r, id, true))
				s.cur.ls.setCell(l, x+1, wideSpacer(id))
				x++
			} else {
				s.cur.ls.setCell(l, x, makeCell(r, id, false))
			}
		}
		l.adjustWideAt(x1)
		l.forceDamage = true
		if s.sel != nil {
			s.sel.damageLine(l)
		}
	}
}

// decaln fills the whole screen with the alignment pattern.
func (s *Screen) decaln() {
	s.resetMargins()
	s.cursor.Origin = false
	s.fillRect('E', 0, 0, s.width, s.height)
	s.moveTo(0, 0)
}

// copyRect implements DECCRA: copy a rectangle, source left intact.
// Source cells are captured first so overlapping regions are safe.
func (s *Screen) copyRect(sx0, sy0, sx1, sy1, dx, dy int) {
	sx0 = clampInt(sx0, 0, s.width)
	sx1 = clampInt(sx1, 0, s.width)
	sy0 = clampInt(sy0, 0, s.height)
	sy1 = clampInt(sy1, 0, s.height)
	w := sx1 - sx0
	h := sy1 - sy0
	if w <= 0 || h <= 0 {
		return
	}
	w = minInt(w, s.width-dx)
	h = minInt(h, s.height-dy)

	type cellCopy struct {
		r    rune
		a    Attribute
		wide bool
	}
	buf := make([]cellCopy, 0, w*h)
	for y := sy0; y < sy0+h; y++ {
		sp := s.cur.spans[y]
		for x := sx0; x < sx0+w; x++ {
			c := sp.Line.cellAt(sp.Offset + x)
			buf = append(buf, cellCopy{r: c.Rune(), a: sp.Line.attrs.at(c.attrID), wide: c.Wide()})
		}
	}
	i := 0
	for y := dy; y < dy+h; y++ {
		l := s.isolateRow(y)
		l.adjustWideAt(dx)
		for x := dx; x < dx+w; x++ {
			cc := buf[i]
			i++
			id := s.cur.ls.internAttr(l, cc.a)
			r := cc.r
			if r == 0 {
				r = ' ' // wide spacers materialize as blanks at rect edges
			}
			if cc.wide && x+1 < dx+w {
				s.cur.ls.setCell(l, x, makeCell(cc.r, id, true))
			} else if cc.r == 0 && x > dx {
				s.cur.ls.setCell(l, x, wideSpacer(id))
			} else {
				s.cur.ls.setCell(l, x, makeCell(r, id, false))
			}
		}
		l.adjustWideAt(dx + w)
		l.forceDamage = true
		if s.sel != nil {
			s.sel.damageLine(l)
		}
	}
}

// changeRectSGR applies fn to every cell attribute in the rectangle;
// it backs DECCARA and DECRARA. With byLine set the rectangle degrades
// to the stream of cells between its corners (rectangle mode off).
func (s *Screen) changeRectSGR(x0, y0, x1, y1 int, byLine bool, fn func(Attribute) Attribute) {
	x0 = clampInt(x0, 0, s.width)
	x1 = clampInt(x1, 0, s.width)
	y0 = clampInt(y0, 0, s.height)
	y1 = clampInt(y1, 0, s.height)
	for y := y0; y < y1; y++ {
		l := s.isolateRow(y)
		lo, hi := x0, x1
		if byLine {
			if y != y0 {
				lo = 0
			}
			if y != y1-1 {
				hi = s.width
			}
		}
		for x := lo; x < hi; x++ {
			c := l.cellAt(x)
			a := fn(l.attrs.at(c.attrID))
			c.attrID = s.cur.ls.internAttr(l, a)
			c.setDrawn(false)
			s.cur.ls.setCell(l, x, c)
		}
		l.forceDamage = true
		if s.sel != nil {
			s.sel.damageLine(l)
		}
	}
}

// checksumRect computes the DECRQCRA checksum of a rectangle. The
// algorithm is the xterm-derived negated sum of codepoints with
// attribute weights.
func (s *Screen) checksumRect(x0, y0, x1, y1 int) uint16 {
	x0 = clampInt(x0, 0, s.width)
	x1 = clampInt(x1, 0, s.width)
	y0 = clampInt(y0, 0, s.height)
	y1 = clampInt(y1, 0, s.height)
	var sum uint32
	for y := y0; y < y1; y++ {
		sp := s.cur.spans[y]
		if sp.Line == nil {
			continue
		}
		for x := x0; x < x1; x++ {
			c := sp.Line.cellAt(sp.Offset + x)
			r := c.Rune()
			if r == 0 {
				continue
			}
			v := uint32(r)
			a := sp.Line.attrs.at(c.attrID)
			if a.Underline != UnderlineNone {
				v += 0x10
			}
			if a.Reverse {
				v += 0x20
			}
			if a.Blink {
				v += 0x40
			}
			if a.Bold {
				v += 0x80
			}
			sum += v
		}
	}
	return uint16(-int32(sum))
}

// setProtected sets or clears the DECSCA guard on subsequent writes.
func (s *Screen) setProtected(on bool) {
	s.sgr.Protected = on
}
