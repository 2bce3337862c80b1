package vtcore

// storeState is one screen storage: its line pools, the doubly-linked
// line list reachable from the row-0 anchor, and the LineSpan array
// mapping the viewport.
type storeState struct {
	ls     *lineStore
	spans  []LineSpan
	anchor LineHandle // registered handle on the row-0 line
}

// Screen owns the main and alternate stores, the cursor and rendition
// state, margins, tab stops and the scrollback of the main store. All
// editing operations of the engine land here.
type Screen struct {
	width, height int

	uris *uriTable
	sel  *selectionEngine

	main, alt *storeState
	cur       *storeState
	altMode   bool

	// Scrollback (main store only).
	top     LineHandle // oldest retained line; has no prev
	sbLines int
	sbMax   int

	// view anchors the user's scrolled-back viewport; a nil Line
	// tracks the live bottom.
	view     LineHandle
	viewRows int // visual rows between view anchor and live top

	cursor Cursor
	sgr    Attribute

	saved      SavedCursor // DECSC slot of the active screen
	backSaved  SavedCursor // DECSC slot of the inactive screen
	lastScrC   SavedCursor // main cursor while the altscreen is shown
	savedValid bool

	topMargin, bottomMargin int // scroll region rows [top, bottom)
	leftMargin, rightMargin int // column margins [left, right)
	lrmm                    bool

	tabs []bool

	// Smooth-scroll accumulator: a flush is requested every
	// smoothStep scrolled lines when the mode is enabled and
	// onScrollFlush is set; nothing in the package sets it.
	scrolled      int
	smoothStep    int
	smoothEnabled bool
	onScrollFlush func(lines int)
}

func newScreen(width, height, sbMax int, uris *uriTable, sel *selectionEngine) *Screen {
	s := &Screen{
		width:  width,
		height: height,
		uris:   uris,
		sel:    sel,
		sbMax:  sbMax,
		sgr:    DefaultAttribute(),
		cursor: NewCursor(),
	}
	s.saved = SavedCursor{Cursor: NewCursor(), SGR: s.sgr}
	s.backSaved = s.saved
	s.lastScrC = s.saved
	s.main = s.newStore()
	s.alt = s.newStore()
	s.cur = s.main
	s.top.rebind(s.main.anchor.Line, 0)
	s.top.acquire()
	s.resetMargins()
	s.resetTabs()
	s.smoothStep = 1
	return s
}

func (s *Screen) newStore() *storeState {
	st := &storeState{
		ls:    newLineStore(newMultipool(0, 0, 0), s.uris),
		spans: make([]LineSpan, s.height),
	}
	if s.sel != nil {
		st.ls.observer = s.sel
	}
	var prev *Line
	for y := 0; y < s.height; y++ {
		l := st.ls.newLine(s.sgr, s.width)
		if prev != nil {
			linkAfter(prev, l)
		}
		st.spans[y] = LineSpan{Line: l, Offset: 0, Width: 0}
		prev = l
	}
	st.anchor.rebind(st.spans[0].Line, 0)
	st.anchor.acquire()
	return st
}

// Width returns the screen width in columns.
func (s *Screen) Width() int { return s.width }

// Height returns the screen height in rows.
func (s *Screen) Height() int { return s.height }

// AltMode returns true while the alternate screen is shown.
func (s *Screen) AltMode() bool { return s.altMode }

// Span returns the viewport mapping of visual row y.
func (s *Screen) Span(y int) LineSpan {
	if y < 0 || y >= s.height {
		return LineSpan{}
	}
	return s.cur.spans[y]
}

// CellAt returns the cell at grid position (x, y) of the live screen.
func (s *Screen) CellAt(x, y int) Cell {
	sp := s.Span(y)
	if sp.Line == nil {
		return Cell{ch: ' '}
	}
	return sp.Line.cellAt(sp.Offset + x)
}

// AttrAt resolves the attribute at grid position (x, y).
func (s *Screen) AttrAt(x, y int) Attribute {
	sp := s.Span(y)
	if sp.Line == nil {
		return DefaultAttribute()
	}
	return sp.Line.attrAt(sp.Offset + x)
}

// rebuildSpans re-derives the viewport span array by soft-wrap stepping
// forward from the row-0 anchor, appending blank lines when the list
// runs out before the last row.
func (s *Screen) rebuildSpans() {
	st := s.cur
	if st.anchor.Line == nil {
		st.anchor.rebind(st.ls.newLine(s.padAttr(), s.width), 0)
	}
	line := st.anchor.Line
	off := st.anchor.Offset
	for y := 0; y < s.height; y++ {
		if line == nil {
			line = s.appendBlankLine(st)
			off = 0
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

// appendBlankLine links a fresh blank line at the very end of the store's list.
func (s *Screen) appendBlankLine(st *storeState) *Line {
	l := st.ls.newLine(s.padAttr(), s.width)
	last := st.anchor.Line
	if last == nil {
		st.anchor.rebind(l, 0)
		return l
	}
	for last.next != nil {
		last = last.next
	}
	linkAfter(last, l)
	return l
}

// padAttr is the rendition used for implicit blanks: the current SGR
// background over default content attributes.
func (s *Screen) padAttr() Attribute {
	a := DefaultAttribute()
	a.Bg = s.sgr.Bg
	return a
}

// splitAtRow cuts the line under visual row y so the row starts at the
// line's offset 0. Registered handles and selection segments follow.
func (s *Screen) splitAtRow(y int) {
	if y < 0 || y >= s.height {
		return
	}
	sp := s.cur.spans[y]
	if sp.Line == nil || sp.Offset == 0 {
		return
	}
	s.cur.ls.splitLine(sp.Line, sp.Offset)
	s.rebuildSpans()
}

// --- margins and tabs ---

func (s *Screen) resetMargins() {
	s.topMargin = 0
	s.bottomMargin = s.height
	s.leftMargin = 0
	s.rightMargin = s.width
}

// setMargins applies DECSTBM. Values are 0-based, bottom exclusive.
func (s *Screen) setMargins(top, bottom int) {
	if bottom <= 0 || bottom > s.height {
		bottom = s.height
	}
	if top < 0 {
		top = 0
	}
	if bottom-top < 2 {
		return
	}
	s.topMargin = top
	s.bottomMargin = bottom
	s.moveTo(s.originX(0), s.originY(0))
}

// setLRMargins applies DECSLRM; active only while DECLRMM is set.
func (s *Screen) setLRMargins(left, right int) {
	if right <= 0 || right > s.width {
		right = s.width
	}
	if left < 0 {
		left = 0
	}
	if right-left < 2 {
		return
	}
	s.leftMargin = left
	s.rightMargin = right
	s.moveTo(s.originX(0), s.originY(0))
}

func (s *Screen) effLeft() int {
	if s.lrmm {
		return s.leftMargin
	}
	return 0
}

func (s *Screen) effRight() int {
	if s.lrmm {
		return s.rightMargin
	}
	return s.width
}

func (s *Screen) resetTabs() {
	s.tabs = make([]bool, s.width)
	for i := 8; i < s.width; i += 8 {
		s.tabs[i] = true
	}
}

func (s *Screen) setTab(x int) {
	if x >= 0 && x < s.width {
		s.tabs[x] = true
	}
}

func (s *Screen) clearTab(x int) {
	if x >= 0 && x < s.width {
		s.tabs[x] = false
	}
}

func (s *Screen) clearAllTabs() {
	for i := range s.tabs {
		s.tabs[i] = false
	}
}

// nextTab returns the column of the n-th tab stop right of x, clamped
// to the right margin.
func (s *Screen) nextTab(x, n int) int {
	for c := x + 1; c < s.effRight() && n > 0; c++ {
		if s.tabs[c] {
			n--
			x = c
		}
	}
	if n > 0 {
		x = s.effRight() - 1
	}
	return x
}

// prevTab returns the column of the n-th tab stop left of x.
func (s *Screen) prevTab(x, n int) int {
	for c := x - 1; c >= s.effLeft() && n > 0; c-- {
		if s.tabs[c] {
			n--
			x = c
		}
	}
	if n > 0 {
		x = s.effLeft()
	}
	return x
}

// --- cursor motion ---

// originX/originY translate origin-relative coordinates per DECOM.
func (s *Screen) originX(x int) int {
	if s.cursor.Origin {
		return x + s.effLeft()
	}
	return x
}

func (s *Screen) originY(y int) int {
	if s.cursor.Origin {
		return y + s.topMargin
	}
	return y
}

// moveTo places the cursor at absolute coordinates, clamping to the
// screen (or to the margins in origin mode) and clearing pending wrap.
func (s *Screen) moveTo(x, y int) {
	minX, maxX := 0, s.width-1
	minY, maxY := 0, s.height-1
	if s.cursor.Origin {
		minX, maxX = s.effLeft(), s.effRight()-1
		minY, maxY = s.topMargin, s.bottomMargin-1
	}
	s.cursor.X = clampInt(x, minX, maxX)
	s.cursor.Y = clampInt(y, minY, maxY)
	s.cursor.PendingWrap = false
}

// moveRel moves the cursor relative to its position, bounded by the
// margins when the cursor starts inside them.
func (s *Screen) moveRel(dx, dy int) {
	minX, maxX := 0, s.width-1
	minY, maxY := 0, s.height-1
	if s.cursor.Y >= s.topMargin && s.cursor.Y < s.bottomMargin {
		minY, maxY = s.topMargin, s.bottomMargin-1
	}
	if s.cursor.X >= s.effLeft() && s.cursor.X < s.effRight() {
		minX, maxX = s.effLeft(), s.effRight()-1
	}
	s.cursor.X = clampInt(s.cursor.X+dx, minX, maxX)
	s.cursor.Y = clampInt(s.cursor.Y+dy, minY, maxY)
	s.cursor.PendingWrap = false
}

// cr moves the cursor to the left margin.
func (s *Screen) cr() {
	if s.cursor.X < s.effLeft() {
		s.cursor.X = 0
	} else {
		s.cursor.X = s.effLeft()
	}
	s.cursor.PendingWrap = false
}

// index moves down one row, scrolling when the cursor sits on the
// bottom margin.
func (s *Screen) index(save bool) {
	if s.cursor.Y == s.bottomMargin-1 {
		s.scroll(s.topMargin, 1, save)
	} else if s.cursor.Y < s.height-1 {
		s.cursor.Y++
	}
	s.cursor.PendingWrap = false
}

// rindex moves up one row, scrolling down at the top margin.
func (s *Screen) rindex() {
	if s.cursor.Y == s.topMargin {
		s.scroll(s.topMargin, -1, false)
	} else if s.cursor.Y > 0 {
		s.cursor.Y--
	}
	s.cursor.PendingWrap = false
}

// --- scrolling ---

// scroll shifts the scroll region starting at row top by amount rows
// (positive scrolls up). With save set, on the main screen with the
// region anchored at the top, the rotated-out lines become scrollback;
// otherwise they are blanked and reused at the opposite edge.
func (s *Screen) scroll(top, amount int, save bool) {
	bottom := s.bottomMargin
	if top < 0 {
		top = s.topMargin
	}
	if amount == 0 || top >= bottom {
		return
	}

	if s.lrmm && (s.leftMargin > 0 || s.rightMargin < s.width) {
		s.scrollBox(top, amount)
		return
	}

	if amount > 0 {
		k := minInt(amount, bottom-top)
		if save && !s.altMode && top == 0 {
			s.scrollSave(bottom, k)
		} else {
			s.scrollRotate(top, bottom, k, true)
		}
		s.noteScrolled(k)
	} else {
		k := minInt(-amount, bottom-top)
		s.scrollRotate(top, bottom, k, false)
		s.noteScrolled(k)
	}
	if !s.altMode && s.top.Line == nil {
		// The old scrollback top was recycled by the rotation.
		head := s.main.anchor.Line
		for head.prev != nil {
			head = head.prev
		}
		s.top.rebind(head, 0)
	}
	if s.sel != nil {
		s.sel.screenScrolled(s)
	}
}

// scrollSave pushes the top k rows of [0, bottom) into scrollback and
// maps k fresh blank lines at the region bottom.
func (s *Screen) scrollSave(bottom, k int) {
	st := s.cur
	if k < s.height {
		s.splitAtRow(k)
	}
	if bottom < s.height {
		s.splitAtRow(bottom)
	}
	lastRegion := st.spans[bottom-1].Line

	// The window lines stay linked in place: everything above the new
	// row 0 is scrollback by definition.
	var newTop LineSpan
	if k < bottom {
		newTop = st.spans[k]
	}

	// Count whole lines leaving the viewport.
	pushed := 0
	for l := st.spans[0].Line; l != nil && l != newTop.Line; l = l.next {
		pushed++
		if l == lastRegion {
			break
		}
	}

	var firstBlank *Line
	prev := lastRegion
	for i := 0; i < k; i++ {
		nl := st.ls.newLine(s.padAttr(), s.width)
		linkAfter(prev, nl)
		st.ls.renumber(prev, nl)
		if firstBlank == nil {
			firstBlank = nl
		}
		prev = nl
	}

	if newTop.Line != nil {
		st.anchor.rebind(newTop.Line, newTop.Offset)
	} else {
		st.anchor.rebind(firstBlank, 0)
	}
	s.sbLines += pushed
	s.drainScrollback()
	s.rebuildSpans()
	s.adjustViewAfterScroll(k)
}

// scrollRotate blanks the k rotated-out rows and relinks them at the
// opposite edge of the region. up selects the direction.
func (s *Screen) scrollRotate(top, bottom, k int, up bool) {
	st := s.cur
	s.splitAtRow(top)
	if up {
		s.splitAtRow(top + k)
	} else {
		s.splitAtRow(bottom - k)
	}
	if bottom < s.height {
		s.splitAtRow(bottom)
	}

	var winFirst, winLast *Line
	if up {
		winFirst = st.spans[top].Line
		winLast = st.spans[top+k-1].Line
	} else {
		winFirst = st.spans[bottom-k].Line
		winLast = st.spans[bottom-1].Line
	}
	// Detach the window chain.
	before := winFirst.prev
	after := winLast.next
	if before != nil {
		before.next = after
	}
	if after != nil {
		after.prev = before
	}
	winFirst.prev = nil
	winLast.next = nil
	if before != nil && before.wrapped {
		before.wrapped = false
	}

	// Blank and recycle the window lines.
	for l := winFirst; l != nil; {
		next := l.next
		s.blankLineForReuse(st, l)
		l = next
	}

	// Relink at the opposite edge.
	if up {
		anchorLine := st.spans[bottom-1].Line
		if s.lineInChain(winFirst, anchorLine) {
			anchorLine = before
		}
		prev := anchorLine
		for l := winFirst; l != nil; {
			next := l.next
			l.prev, l.next = nil, nil
			if prev == nil {
				// The whole list was the window; it becomes the list again.
				if after != nil {
					l.next = after
					after.prev = l
				}
			} else {
				linkAfter(prev, l)
				st.ls.renumber(prev, l)
			}
			prev = l
			l = next
		}
		if top == 0 {
			if after != nil {
				st.anchor.rebind(after, 0)
			} else {
				st.anchor.rebind(winFirst, 0)
			}
		}
	} else {
		// Insert the blanks before the old region-top line.
		target := st.spans[top].Line
		if target == nil || s.lineInChain(winFirst, target) {
			target = after
		}
		prev := before
		if target != nil {
			prev = target.prev
		}
		for l := winFirst; l != nil; {
			next := l.next
			l.prev, l.next = nil, nil
			if prev == nil && target != nil {
				// New head of the list.
				l.next = target
				target.prev = l
				l.seq = target.seq - seqGap
			} else if prev != nil {
				linkAfter(prev, l)
				st.ls.renumber(prev, l)
			}
			if top == 0 && l == winFirst {
				st.anchor.rebind(l, 0)
			}
			prev = l
			l = next
		}
	}
	s.rebuildSpans()
}

func (s *Screen) lineInChain(first, l *Line) bool {
	for n := first; n != nil; n = n.next {
		if n == l {
			return true
		}
	}
	return false
}

// blankLineForReuse resets a detached line to an empty row with the
// current pad attribute.
func (s *Screen) blankLineForReuse(st *storeState, l *Line) {
	if s.sel != nil {
		s.sel.lineFreed(l)
	}
	for l.handles != nil {
		h := l.handles
		h.release()
		h.Line = nil
		h.Offset = 0
	}
	l.attrs.release(st.ls.uris)
	l.size = 0
	l.wrapped = false
	l.forceDamage = true
	l.shPs1Start, l.shCmdStart = -1, -1
	l.selectionIndex = -1
	l.padAttrID = l.attrs.intern(s.padAttr(), st.ls.uris)
}

// scrollBox is the slow path used when left/right margins are active:
// the rectangle bounded by the margins scrolls by copy and erase.
func (s *Screen) scrollBox(top, amount int) {
	bottom := s.bottomMargin
	left, right := s.effLeft(), s.effRight()
	k := minInt(absInt(amount), bottom-top)
	if amount > 0 {
		s.copyRect(left, top+k, right, bottom, left, top)
		s.eraseRect(left, bottom-k, right, bottom, false)
	} else {
		s.copyRect(left, top, right, bottom-k, left, top+k)
		s.eraseRect(left, top, right, top+k, false)
	}
	s.noteScrolled(k)
	if s.sel != nil {
		s.sel.screenScrolled(s)
	}
}

func (s *Screen) noteScrolled(k int) {
	s.scrolled += k
	if s.smoothEnabled && s.onScrollFlush != nil && s.scrolled >= s.smoothStep {
		s.onScrollFlush(s.scrolled)
		s.scrolled = 0
	}
}

// drainScrollback frees the oldest lines over the configured cap,
// keeping the top handle on a line with no predecessor.
func (s *Screen) drainScrollback() {
	for s.sbLines > s.sbMax {
		oldest := s.top.Line
		if oldest == nil || oldest == s.main.anchor.Line {
			break
		}
		next := oldest.next
		s.main.ls.freeLine(oldest)
		s.top.rebind(next, 0)
		s.sbLines--
	}
}

// adjustViewAfterScroll keeps a scrolled-back view anchored to the same
// content as output shifts the live screen.
func (s *Screen) adjustViewAfterScroll(k int) {
	if s.view.Line != nil {
		s.viewRows += k
	}
}

// --- scrollback view ---

// ScrollbackLines returns the number of whole lines currently retained
// above the live viewport.
func (s *Screen) ScrollbackLines() int { return s.sbLines }

// ScrollView moves the user's view up (delta>0) or down through
// scrollback; a view at the live bottom tracks output.
func (s *Screen) ScrollView(delta int) {
	if s.altMode {
		return
	}
	if s.view.Line == nil {
		if delta <= 0 {
			return
		}
		s.view.rebind(s.main.anchor.Line, s.main.anchor.Offset)
		s.view.acquire()
		s.viewRows = 0
	}
	line, off := s.view.Line, s.view.Offset
	for delta > 0 {
		if off > 0 {
			off = s.stepBack(line, off)
			delta--
			s.viewRows++
		} else if line.prev != nil {
			line = line.prev
			off = s.lastSpanOffset(line)
			delta--
			s.viewRows++
		} else {
			break
		}
	}
	for delta < 0 && s.viewRows > 0 {
		next := line.advanceWidth(off, s.width)
		if next < line.size {
			off = next
		} else if line.next != nil {
			line = line.next
			off = 0
		}
		delta++
		s.viewRows--
	}
	if s.viewRows <= 0 {
		s.view.release()
		s.view.Line = nil
		s.viewRows = 0
		return
	}
	s.view.rebind(line, off)
}

// ResetView snaps the view back to the live bottom.
func (s *Screen) ResetView() {
	s.view.release()
	s.view.Line = nil
	s.viewRows = 0
}

// ViewSpans returns the spans the renderer should paint: the live
// viewport, or the scrolled-back window when the user is in history.
func (s *Screen) ViewSpans() []LineSpan {
	if s.view.Line == nil {
		return s.cur.spans
	}
	out := make([]LineSpan, s.height)
	line, off := s.view.Line, s.view.Offset
	for y := 0; y < s.height; y++ {
		if line == nil {
			out[y] = LineSpan{}
			continue
		}
		next := line.advanceWidth(off, s.width)
		out[y] = LineSpan{Line: line, Offset: off, Width: next - off}
		if next < line.size {
			off = next
		} else {
			line = line.next
			off = 0
		}
	}
	return out
}

// stepBack walks one soft-wrap step backward within a line.
func (s *Screen) stepBack(l *Line, off int) int {
	step := 0
	for step < off {
		next := l.advanceWidth(step, s.width)
		if next >= off {
			return step
		}
		step = next
	}
	return 0
}

// lastSpanOffset returns the offset of the last visual row of a line.
func (s *Screen) lastSpanOffset(l *Line) int {
	off := 0
	for {
		next := l.advanceWidth(off, s.width)
		if next >= l.size {
			return off
		}
		off = next
	}
}

// --- altscreen ---

// setAltScreen switches between the main and alternate stores.
// saveCursor selects the 1049 behavior: the cursor is stashed on enter
// and restored on leave; clear wipes the altscreen on entry.
func (s *Screen) setAltScreen(enable, clear, saveCursor bool) {
	if enable == s.altMode {
		return
	}
	if enable {
		if saveCursor {
			s.saveCursor()
		}
		s.lastScrC = SavedCursor{Cursor: s.cursor, SGR: s.sgr}
		s.saved, s.backSaved = s.backSaved, s.saved
		s.altMode = true
		s.cur = s.alt
		s.ResetView()
		if clear {
			s.eraseRect(0, 0, s.width, s.height, false)
			s.moveTo(0, 0)
		}
	} else {
		s.altMode = false
		s.cur = s.main
		s.saved, s.backSaved = s.backSaved, s.saved
		s.cursor = s.lastScrC.Cursor
		s.sgr = s.lastScrC.SGR
		if saveCursor {
			s.restoreCursor()
		}
	}
	s.rebuildSpans()
	s.damageAll()
}

// saveCursor records the DECSC snapshot.
func (s *Screen) saveCursor() {
	s.saved = SavedCursor{Cursor: s.cursor, SGR: s.sgr}
	s.savedValid = true
}

// restoreCursor applies the DECSC snapshot; without one it homes the
// cursor and resets the rendition.
func (s *Screen) restoreCursor() {
	if !s.savedValid {
		s.cursor = NewCursor()
		s.sgr = DefaultAttribute()
		return
	}
	s.cursor = s.saved.Cursor
	s.sgr = s.saved.SGR
	s.cursor.X = clampInt(s.cursor.X, 0, s.width-1)
	s.cursor.Y = clampInt(s.cursor.Y, 0, s.height-1)
}

// damageAll forces a repaint of every visible line.
func (s *Screen) damageAll() {
	for y := 0; y < s.height; y++ {
		if l := s.cur.spans[y].Line; l != nil {
			l.forceDamage = true
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
