package vtcore

// Resize changes the screen dimensions, reflowing soft-wrapped content
// at the new width instead of retyping it. Every Line keeps its
// identity: wrapped fragments are merged back into whole paragraphs,
// the viewport is re-anchored so the cursor keeps its distance from the
// top, and the cursor and saved-cursor handles are translated into the
// new grid. A scrolled-back view is not translated: it is reset to the
// live bottom before the reflow.
func (s *Screen) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if width == s.width && height == s.height {
		return
	}

	oldCursorY := s.cursor.Y
	s.ResetView()

	// 1. Save handles for the anchors that must survive.
	cursorH := s.handleAt(s.cursor.X, s.cursor.Y)
	cursorH.acquire()
	var savedH LineHandle
	if s.savedValid {
		savedH = s.handleAt(s.saved.X, s.saved.Y)
		savedH.acquire()
	}

	s.width, s.height = width, height

	// 2. Merge wrapped fragments so each paragraph is one Line again.
	s.mergeWrapped(s.main)
	s.mergeWrapped(s.alt)

	// 3. Walk backward from the cursor's line by its old row count to
	// find the new top-of-viewport; blank lines are prepended if the
	// walk runs off the top of history.
	st := s.cur
	if cursorH.Line != nil {
		line, off, missing := s.walkBackRows(cursorH.Line, cursorH.Offset, minInt(oldCursorY, height-1))
		for i := 0; i < missing; i++ {
			nl := st.ls.newLine(s.padAttr(), s.width)
			nl.next = line
			nl.seq = line.seq - seqGap
			line.prev = nl
			line = nl
			if !s.altMode && s.top.Line != nil {
				s.top.rebind(nl, 0)
			}
		}
		st.anchor.rebind(line, off)
	}

	// 4. Re-emit the span arrays at the new size.
	s.main.spans = make([]LineSpan, height)
	s.alt.spans = make([]LineSpan, height)
	inactive := s.main
	if !s.altMode {
		inactive = s.alt
	}
	s.normalizeAnchor(inactive)
	s.rebuildSpans()
	s.rebuildInactive(inactive)
	s.truncateBelow(st)
	if !s.altMode {
		s.recountScrollback()
	}

	// 5. Translate the anchors into grid coordinates.
	x, y, ok := s.locate(cursorH)
	if ok {
		s.cursor.X, s.cursor.Y = x, y
	} else {
		s.cursor.X = clampInt(s.cursor.X, 0, width-1)
		s.cursor.Y = clampInt(s.cursor.Y, 0, height-1)
	}
	if s.cursor.PendingWrap {
		s.cursor.X = width - 1
	}
	cursorH.release()
	if s.savedValid {
		if x, y, ok := s.locate(savedH); ok {
			s.saved.X, s.saved.Y = x, y
		} else {
			s.saved.X = clampInt(s.saved.X, 0, width-1)
			s.saved.Y = clampInt(s.saved.Y, 0, height-1)
		}
		savedH.release()
	}

	s.resizeTabs()
	s.resetMargins()
	s.damageAll()
	if s.sel != nil {
		s.sel.screenResized(s)
	}
}

// handleAt builds an unregistered handle for the cell under (x, y).
func (s *Screen) handleAt(x, y int) LineHandle {
	var h LineHandle
	y = clampInt(y, 0, len(s.cur.spans)-1)
	sp := s.cur.spans[y]
	if sp.Line == nil {
		return h
	}
	h.Line = sp.Line
	h.Offset = minInt(sp.Offset+x, sp.Line.size)
	return h
}

// mergeWrapped concatenates every wrapped fragment chain into a single
// logical line, walking the whole list of the store.
func (s *Screen) mergeWrapped(st *storeState) {
	head := st.anchor.Line
	if head == nil {
		return
	}
	for head.prev != nil {
		head = head.prev
	}
	for l := head; l != nil; {
		if l.wrapped && l.next != nil {
			st.ls.concatLine(l, l.next)
			continue // l may still be wrapped into the new next
		}
		l = l.next
	}
}

// recountScrollback re-derives the retained line count and the top
// handle from the final layout after a reflow.
func (s *Screen) recountScrollback() {
	head := s.main.anchor.Line
	if head == nil {
		s.sbLines = 0
		return
	}
	for head.prev != nil {
		head = head.prev
	}
	s.top.rebind(head, 0)
	n := 0
	for l := head; l != nil && l != s.main.anchor.Line; l = l.next {
		n++
	}
	s.sbLines = n
	s.drainScrollback()
}

// walkBackRows steps rows visual rows backward from (line, off) at the
// current width, snapping off to a span start first. missing reports
// how many rows ran off the top of history.
func (s *Screen) walkBackRows(line *Line, off, rows int) (*Line, int, int) {
	off = s.spanStart(line, off)
	for rows > 0 {
		if off > 0 {
			off = s.stepBack(line, off)
			rows--
		} else if line.prev != nil {
			line = line.prev
			off = s.lastSpanOffset(line)
			rows--
		} else {
			return line, 0, rows
		}
	}
	return line, off, 0
}

// spanStart snaps an arbitrary offset to the start of its visual row.
func (s *Screen) spanStart(l *Line, off int) int {
	step := 0
	for {
		next := l.advanceWidth(step, s.width)
		if next > off || next >= l.size {
			return step
		}
		step = next
	}
}

// normalizeAnchor pins a store's anchor back to a sane position after
// merging may have rebound it mid-line.
func (s *Screen) normalizeAnchor(st *storeState) {
	if st.anchor.Line == nil {
		return
	}
	st.anchor.rebind(st.anchor.Line, s.spanStart(st.anchor.Line, st.anchor.Offset))
}

// rebuildInactive re-derives the span array of the store not currently
// shown, appending blanks as needed.
func (s *Screen) rebuildInactive(st *storeState) {
	if st.anchor.Line == nil {
		st.anchor.rebind(st.ls.newLine(s.padAttr(), s.width), 0)
	}
	line := st.anchor.Line
	off := st.anchor.Offset
	for y := 0; y < s.height; y++ {
		if line == nil {
			l := st.ls.newLine(s.padAttr(), s.width)
			last := st.spans[y-1].Line
			linkAfter(last, l)
			line, off = l, 0
		}
		next := line.advanceWidth(off, s.width)
		st.spans[y] = LineSpan{Line: line, Offset: off, Width: next - off}
		if next < line.size {
			off = next
		} else {
			line = line.next
			off = 0
		}
	}
}

// truncateBelow erases content hanging below the last viewport row.
func (s *Screen) truncateBelow(st *storeState) {
	last := st.spans[s.height-1]
	if last.Line == nil {
		return
	}
	end := last.Line.advanceWidth(last.Offset, s.width)
	if end < last.Line.size {
		padID := last.Line.padAttrID
		st.ls.eraseTail(last.Line, end, padID)
		last.Line.wrapped = false
	}
	for l := last.Line.next; l != nil; {
		next := l.next
		st.ls.freeLine(l)
		l = next
	}
	last.Line.wrapped = false
}

// locate finds the grid coordinates of a handle in the rebuilt viewport.
func (s *Screen) locate(h LineHandle) (x, y int, ok bool) {
	if h.Line == nil {
		return 0, 0, false
	}
	for y := 0; y < s.height; y++ {
		sp := s.cur.spans[y]
		if sp.Line != h.Line {
			continue
		}
		next := sp.Line.advanceWidth(sp.Offset, s.width)
		if h.Offset >= sp.Offset && (h.Offset < next || next >= sp.Line.size) {
			return minInt(h.Offset-sp.Offset, s.width-1), y, true
		}
	}
	return 0, 0, false
}

// resizeTabs preserves explicit tab stops and extends the default grid.
func (s *Screen) resizeTabs() {
	old := s.tabs
	s.tabs = make([]bool, s.width)
	copy(s.tabs, old)
	start := len(old)
	if start < 8 {
		start = 8
	}
	for i := start - start%8; i < s.width; i += 8 {
		if i >= len(old) {
			s.tabs[i] = true
		}
	}
}
