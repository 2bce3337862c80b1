package vtcore

// Line is one logical row of the terminal: a variable-length run of
// cells plus the attribute table those cells reference. Lines are owned
// by a screen store and linked in seq order; the viewport maps onto
// them through LineSpan views, so a soft-wrapped logical line keeps its
// identity no matter how many visual rows it spans.
type Line struct {
	ref  poolRef
	size int // logical length; cells beyond it are implied pad blanks

	padAttrID   uint16 // attribute of the implied blanks past size
	wrapped     bool   // continues onto the next line
	forceDamage bool

	// selectionIndex points into the selection engine's segment-head
	// array, -1 when the line holds no selected cells.
	selectionIndex int

	// Shell integration marks (OSC 133), -1 when absent.
	shPs1Start int
	shCmdStart int

	seq        uint64
	prev, next *Line

	attrs   attrTable
	handles *LineHandle // intrusive list of registered handles
}

func (l *Line) caps() int {
	return l.ref.size
}

func (l *Line) cells() []Cell {
	return l.ref.cells()
}

// cellAt returns the cell at offset i, substituting the pad blank for
// offsets past the logical size.
func (l *Line) cellAt(i int) Cell {
	if i < l.size {
		return l.cells()[i]
	}
	return Cell{ch: ' ', attrID: l.padAttrID}
}

// attrAt resolves the attribute of the cell at offset i.
func (l *Line) attrAt(i int) Attribute {
	return l.attrs.at(l.cellAt(i).attrID)
}

// advanceWidth walks forward from offset by up to screenWidth cells,
// never splitting a wide glyph, and returns the next span offset. This
// defines the soft-wrap column for a given screen width.
func (l *Line) advanceWidth(offset, screenWidth int) int {
	next := offset + screenWidth
	if next >= l.size {
		return l.size
	}
	if l.cells()[next].IsSpacer() {
		next--
	}
	return next
}

// LineSpan is a view of one visual row: width cells of line starting at
// column offset.
type LineSpan struct {
	Line   *Line
	Offset int
	Width  int
}

// LineHandle is a LineSpan registered on its line, so that splits,
// merges and reallocation rewrite it in place. Used for every stable
// anchor: scrollback top, view origin, cursor during reflow, selection
// endpoints, the URI match bookmark.
type LineHandle struct {
	LineSpan
	prevH, nextH *LineHandle
	registered   bool
}

// acquire registers the handle on its line. Registering twice is a
// no-op; a handle must be released on every exit path.
func (h *LineHandle) acquire() {
	if h.registered || h.Line == nil {
		return
	}
	h.nextH = h.Line.handles
	if h.Line.handles != nil {
		h.Line.handles.prevH = h
	}
	h.prevH = nil
	h.Line.handles = h
	h.registered = true
}

// release deregisters the handle.
func (h *LineHandle) release() {
	if !h.registered {
		return
	}
	if h.prevH != nil {
		h.prevH.nextH = h.nextH
	} else if h.Line != nil {
		h.Line.handles = h.nextH
	}
	if h.nextH != nil {
		h.nextH.prevH = h.prevH
	}
	h.prevH, h.nextH = nil, nil
	h.registered = false
}

// rebind moves a handle onto another line/offset, registering it there.
func (h *LineHandle) rebind(l *Line, offset int) {
	h.release()
	h.Line = l
	h.Offset = offset
	if l != nil {
		h.acquire()
	}
}

// lineMutationObserver is notified of destructive line restructuring so
// line-relative bookkeeping (selection segments) can be patched.
type lineMutationObserver interface {
	lineSplit(l, tail *Line, at int)
	lineConcat(dst, src *Line, at int)
	lineFreed(l *Line)
}

// lineStore allocates and restructures the lines of one screen store.
type lineStore struct {
	mp       *multipool
	uris     *uriTable
	seq      uint64
	observer lineMutationObserver
}

const seqGap = 1 << 20

func newLineStore(mp *multipool, uris *uriTable) *lineStore {
	return &lineStore{mp: mp, uris: uris}
}

// newLine allocates an empty line with capacity for width cells and the
// given pad attribute, appended at the end of the seq order.
func (s *lineStore) newLine(pad Attribute, width int) *Line {
	if width < 1 {
		width = 1
	}
	l := &Line{
		ref:            s.mp.alloc(width),
		selectionIndex: -1,
		shPs1Start:     -1,
		shCmdStart:     -1,
	}
	l.padAttrID = l.attrs.intern(pad, s.uris)
	s.seq += seqGap
	l.seq = s.seq
	return l
}

// freeLine destroys a line: handles are rebound to the successor,
// URIs are unreferenced, storage returns to the pool and the line is
// unlinked.
func (s *lineStore) freeLine(l *Line) {
	if s.observer != nil {
		s.observer.lineFreed(l)
	}
	for l.handles != nil {
		l.handles.rebind(l.next, 0)
	}
	l.attrs.release(s.uris)
	s.mp.freeRef(l.ref)
	unlinkLine(l)
}

// ensureCaps grows the line's storage to at least caps cells, pinning
// the pool so append-heavy lines keep growing in place.
func (s *lineStore) ensureCaps(l *Line, caps int) {
	if caps <= l.caps() {
		return
	}
	// Grow exponentially to amortize repeated single-cell appends.
	want := l.caps() * 2
	if want < caps {
		want = caps
	}
	l.ref = s.mp.realloc(l.ref, want, true)
}

// internAttr interns an attribute into the line's table.
func (s *lineStore) internAttr(l *Line, a Attribute) uint16 {
	return l.attrs.intern(a, s.uris)
}

// setCell writes a cell at offset i, growing the logical size over pad
// blanks when writing past it.
func (s *lineStore) setCell(l *Line, i int, c Cell) {
	if i >= l.size {
		s.ensureCaps(l, i+1)
		pad := Cell{ch: ' ', attrID: l.padAttrID}
		cells := l.cells()
		for j := l.size; j < i; j++ {
			cells[j] = pad
		}
		l.size = i + 1
	}
	l.cells()[i] = c
}

// copyCells copies n cells from src[srcOff:] into dst[dstOff:],
// translating attribute ids through dst's interning table.
func (s *lineStore) copyCells(dst *Line, dstOff int, src *Line, srcOff, n int) {
	if n <= 0 {
		return
	}
	end := dstOff + n
	s.ensureCaps(dst, end)
	if dst.size < dstOff {
		pad := Cell{ch: ' ', attrID: dst.padAttrID}
		cells := dst.cells()
		for j := dst.size; j < dstOff; j++ {
			cells[j] = pad
		}
	}
	if dst == src && dstOff > srcOff {
		for i := n - 1; i >= 0; i-- {
			dst.cells()[dstOff+i] = src.cellAt(srcOff + i)
		}
	} else {
		for i := 0; i < n; i++ {
			c := src.cellAt(srcOff + i)
			if dst != src {
				c.attrID = dst.attrs.intern(src.attrs.at(c.attrID), s.uris)
			}
			dst.cells()[dstOff+i] = c
		}
	}
	if end > dst.size {
		dst.size = end
	}
}

// splitLine cuts l at offset at: l keeps [0,at), the returned line
// receives [at,size) along with the wrapped flag, registered handles
// past the cut, and the seam in seq order.
func (s *lineStore) splitLine(l *Line, at int) *Line {
	if at >= l.size && !l.wrapped {
		// Nothing after the cut: the tail line starts out empty.
		at = l.size
	}
	tail := s.newLine(l.attrs.at(l.padAttrID), maxInt(1, l.size-at))
	tail.padAttrID = tail.attrs.intern(l.attrs.at(l.padAttrID), s.uris)
	s.copyCells(tail, 0, l, at, maxInt(0, l.size-at))

	tail.wrapped = l.wrapped
	// The head still flows into the tail: the two halves remain one
	// soft-wrapped paragraph until an edit breaks them apart.
	l.wrapped = at < l.size
	if l.shCmdStart >= at {
		tail.shCmdStart = l.shCmdStart - at
		l.shCmdStart = -1
	}
	if l.shPs1Start >= at {
		tail.shPs1Start = l.shPs1Start - at
		l.shPs1Start = -1
	}

	// Handles past the cut move to the tail.
	for h := l.handles; h != nil; {
		next := h.nextH
		if h.Offset >= at {
			h.rebind(tail, h.Offset-at)
		}
		h = next
	}

	if l.size > at {
		l.size = at
		l.ref = s.mp.realloc(l.ref, maxInt(1, at), false)
	}

	linkAfter(l, tail)
	s.renumber(l, tail)

	if s.observer != nil {
		s.observer.lineSplit(l, tail, at)
	}
	return tail
}

// concatLine merges b into a. Requires a.wrapped and a.next == b.
func (s *lineStore) concatLine(a, b *Line) {
	at := a.size
	s.copyCells(a, at, b, 0, b.size)
	a.wrapped = b.wrapped
	if b.shPs1Start >= 0 && a.shPs1Start < 0 {
		a.shPs1Start = at + b.shPs1Start
	}
	if b.shCmdStart >= 0 && a.shCmdStart < 0 {
		a.shCmdStart = at + b.shCmdStart
	}

	for b.handles != nil {
		h := b.handles
		off := h.Offset
		h.rebind(a, at+off)
	}

	if s.observer != nil {
		s.observer.lineConcat(a, b, at)
	}
	s.freeLine(b)
}

// eraseTail clears cells from offset on, shrinking the logical size
// when the new tail attribute equals the pad.
func (s *lineStore) eraseTail(l *Line, offset int, padID uint16) {
	if offset < 0 {
		offset = 0
	}
	if padID == l.padAttrID {
		if offset < l.size {
			l.size = offset
		}
		l.adjustWideAt(offset)
		return
	}
	blank := Cell{ch: ' ', attrID: padID}
	for i := offset; i < l.size; i++ {
		l.cells()[i] = blank
	}
	l.adjustWideAt(offset)
}

// adjustWideAt repairs a wide glyph straddling offset: if the cell at
// offset is a spacer its left half is blanked too, preserving the
// invariant that a spacer never stands alone.
func (l *Line) adjustWideAt(offset int) {
	if offset > 0 && offset < l.size && l.cells()[offset].IsSpacer() {
		left := &l.cells()[offset-1]
		left.ch = ' '
		left.flags &^= cellWide
		l.cells()[offset] = Cell{ch: ' ', attrID: l.cells()[offset].attrID}
	}
	if offset > 0 && offset == l.size && offset-1 < l.size && l.cells()[offset-1].Wide() {
		// A wide left half with its spacer erased is blanked.
		left := &l.cells()[offset-1]
		left.ch = ' '
		left.flags &^= cellWide
	}
}

// renumber assigns tail a seq strictly between l and its successor,
// renumbering the whole chain in the rare case the gap is exhausted.
func (s *lineStore) renumber(l, tail *Line) {
	var hi uint64
	if tail.next != nil {
		hi = tail.next.seq
	} else {
		s.seq += seqGap
		tail.seq = s.seq
		return
	}
	lo := l.seq
	if hi-lo >= 2 {
		tail.seq = lo + (hi-lo)/2
		return
	}
	// Gap exhausted: renumber forward from l.
	seq := l.seq
	for n := tail; n != nil; n = n.next {
		seq += seqGap
		n.seq = seq
	}
	if seq > s.seq {
		s.seq = seq
	}
}

func linkAfter(a, b *Line) {
	b.prev = a
	b.next = a.next
	if a.next != nil {
		a.next.prev = b
	}
	a.next = b
}

func unlinkLine(l *Line) {
	if l.prev != nil {
		l.prev.next = l.next
	}
	if l.next != nil {
		l.next.prev = l.prev
	}
	l.prev, l.next = nil, nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
