package vtcore

import "strings"

// SelectionMode is how a selection snaps and extends.
type SelectionMode int

const (
	SelectionNone SelectionMode = iota
	SelectionChar
	SelectionWord
	SelectionLine
	SelectionRect
)

// snapRight is the sentinel segment length meaning "through the end of
// the line and beyond".
const snapRight = -1

// segment is a contiguous run of selected cells within one line.
type segment struct {
	off, length int
}

// lineSel is the per-line segment list; lines point back at their entry
// through selectionIndex so splits, merges and frees patch in O(1).
type lineSel struct {
	line *Line
	segs []segment
}

// selectionEngine tracks the active selection across scroll, reflow and
// line restructuring, and serializes it on release.
type selectionEngine struct {
	heads []lineSel
	free  []int

	mode       SelectionMode
	inProgress bool
	anchor     LineHandle
	caret      LineHandle
	anchorX    int // rect-mode column anchors
	caretX     int

	screen *Screen // bound after construction
}

func newSelectionEngine() *selectionEngine {
	return &selectionEngine{}
}

// Active returns true when a selection exists.
func (e *selectionEngine) Active() bool {
	return e.mode != SelectionNone
}

// --- segment list bookkeeping ---

func (e *selectionEngine) entryFor(l *Line) *lineSel {
	if l.selectionIndex >= 0 && l.selectionIndex < len(e.heads) && e.heads[l.selectionIndex].line == l {
		return &e.heads[l.selectionIndex]
	}
	return nil
}

func (e *selectionEngine) setSegments(l *Line, segs []segment) {
	if len(segs) == 0 {
		e.dropSegments(l)
		return
	}
	if entry := e.entryFor(l); entry != nil {
		entry.segs = segs
		l.forceDamage = true
		return
	}
	var idx int
	if n := len(e.free); n > 0 {
		idx = e.free[n-1]
		e.free = e.free[:n-1]
		e.heads[idx] = lineSel{line: l, segs: segs}
	} else {
		idx = len(e.heads)
		e.heads = append(e.heads, lineSel{line: l, segs: segs})
	}
	l.selectionIndex = idx
	l.forceDamage = true
}

func (e *selectionEngine) dropSegments(l *Line) {
	if entry := e.entryFor(l); entry != nil {
		e.free = append(e.free, l.selectionIndex)
		*entry = lineSel{}
		l.selectionIndex = -1
		l.forceDamage = true
	}
}

// selected reports whether the cell at (line, off) lies in the selection.
func (e *selectionEngine) selected(l *Line, off int) bool {
	entry := e.entryFor(l)
	if entry == nil {
		return false
	}
	for _, sg := range entry.segs {
		if off < sg.off {
			continue
		}
		if sg.length == snapRight || off < sg.off+sg.length {
			return true
		}
	}
	return false
}

// --- pointer-driven selection ---

// Begin starts a selection at grid position (x, y) in the given mode.
func (e *selectionEngine) Begin(s *Screen, x, y int, mode SelectionMode) {
	e.Clear()
	e.screen = s
	e.mode = mode
	e.inProgress = true
	e.anchor = s.handleAt(x, y)
	e.anchor.acquire()
	e.caret = s.handleAt(x, y)
	e.caret.acquire()
	e.anchorX, e.caretX = x, x
	e.rebuild()
}

// Drag extends the selection to (x, y).
func (e *selectionEngine) Drag(s *Screen, x, y int) {
	if !e.inProgress {
		return
	}
	nh := s.handleAt(x, y)
	e.caret.rebind(nh.Line, nh.Offset)
	e.caretX = x
	e.rebuild()
}

// Release finishes the drag and returns the selected text.
func (e *selectionEngine) Release() string {
	e.inProgress = false
	return e.Text()
}

// Clear removes the selection entirely.
func (e *selectionEngine) Clear() {
	for i := range e.heads {
		if e.heads[i].line != nil {
			e.heads[i].line.selectionIndex = -1
			e.heads[i].line.forceDamage = true
		}
	}
	e.heads = e.heads[:0]
	e.free = e.free[:0]
	e.anchor.release()
	e.caret.release()
	e.anchor = LineHandle{}
	e.caret = LineHandle{}
	e.mode = SelectionNone
	e.inProgress = false
}

// ordered returns the endpoints in document order.
func (e *selectionEngine) ordered() (start, end LineHandle, startX, endX int) {
	a, c := e.anchor, e.caret
	ax, cx := e.anchorX, e.caretX
	if a.Line == nil || c.Line == nil {
		return a, c, ax, cx
	}
	if a.Line.seq > c.Line.seq || (a.Line == c.Line && a.Offset > c.Offset) {
		return c, a, cx, ax
	}
	return a, c, ax, cx
}

// rebuild recomputes every per-line segment list from the endpoints.
func (e *selectionEngine) rebuild() {
	if e.screen == nil || e.anchor.Line == nil || e.caret.Line == nil {
		return
	}
	// Drop previous segments; changed lines are damaged as they are
	// re-added (or not).
	prev := make(map[*Line]bool)
	for i := range e.heads {
		if e.heads[i].line != nil {
			prev[e.heads[i].line] = true
			e.heads[i].line.selectionIndex = -1
		}
	}
	e.heads = e.heads[:0]
	e.free = e.free[:0]

	start, end, startX, endX := e.ordered()
	switch e.mode {
	case SelectionRect:
		e.rebuildRect(start, end, startX, endX)
	case SelectionWord:
		start, end = e.snapWord(start, end)
		e.rebuildLinear(start, end)
	case SelectionLine:
		start, end = e.snapLine(start, end)
		e.rebuildLinear(start, end)
	default:
		e.rebuildLinear(start, end)
	}

	for l := range prev {
		if l.selectionIndex < 0 {
			l.forceDamage = true
		}
	}
}

func (e *selectionEngine) rebuildLinear(start, end LineHandle) {
	if start.Line == end.Line {
		e.setSegments(start.Line, []segment{{off: start.Offset, length: end.Offset - start.Offset + 1}})
		return
	}
	e.setSegments(start.Line, []segment{{off: start.Offset, length: snapRight}})
	for l := start.Line.next; l != nil && l != end.Line; l = l.next {
		e.setSegments(l, []segment{{off: 0, length: snapRight}})
	}
	e.setSegments(end.Line, []segment{{off: 0, length: end.Offset + 1}})
}

func (e *selectionEngine) rebuildRect(start, end LineHandle, startX, endX int) {
	s := e.screen
	x0, x1 := startX, endX
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	// Column-range slicing: every visual row between the endpoints
	// contributes one segment at [x0, x1] within its span.
	perLine := make(map[*Line][]segment)
	line, off := start.Line, s.spanStart(start.Line, start.Offset)
	for line != nil {
		next := line.advanceWidth(off, s.width)
		lo := off + x0
		hi := off + x1 + 1
		perLine[line] = append(perLine[line], segment{off: lo, length: hi - lo})
		if line == end.Line && (next > end.Offset || next >= line.size) {
			break
		}
		if next < line.size {
			off = next
		} else {
			line = line.next
			off = 0
		}
	}
	for l, segs := range perLine {
		e.setSegments(l, segs)
	}
}

// --- snapping ---

// charClass buckets codepoints for word snapping.
func charClass(r rune) int {
	switch {
	case r == ' ' || r == 0:
		return 0
	case r == '_' || r == '-' || (r >= '0' && r <= '9') ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r >= 0x80:
		return 1
	default:
		return 2
	}
}

func (e *selectionEngine) snapWord(start, end LineHandle) (LineHandle, LineHandle) {
	cls := charClass(start.Line.cellAt(start.Offset).Rune())
	for {
		if start.Offset > 0 {
			if charClass(start.Line.cellAt(start.Offset-1).Rune()) != cls {
				break
			}
			start.Offset--
		} else if start.Line.prev != nil && start.Line.prev.wrapped {
			p := start.Line.prev
			if p.size == 0 || charClass(p.cellAt(p.size-1).Rune()) != cls {
				break
			}
			start.Line = p
			start.Offset = p.size - 1
		} else {
			break
		}
	}
	cls = charClass(end.Line.cellAt(end.Offset).Rune())
	for {
		if end.Offset+1 < end.Line.size {
			if charClass(end.Line.cellAt(end.Offset+1).Rune()) != cls {
				break
			}
			end.Offset++
		} else if end.Line.wrapped && end.Line.next != nil {
			n := end.Line.next
			if n.size == 0 || charClass(n.cellAt(0).Rune()) != cls {
				break
			}
			end.Line = n
			end.Offset = 0
		} else {
			break
		}
	}
	return start, end
}

func (e *selectionEngine) snapLine(start, end LineHandle) (LineHandle, LineHandle) {
	for start.Line.prev != nil && start.Line.prev.wrapped {
		start.Line = start.Line.prev
	}
	start.Offset = 0
	for end.Line.wrapped && end.Line.next != nil {
		end.Line = end.Line.next
	}
	end.Offset = maxInt(end.Line.size-1, 0)
	return start, end
}

// --- serialization ---

// Text serializes the selection: segment cells in document order with
// paragraph breaks where the wrapped flag ends a logical line.
func (e *selectionEngine) Text() string {
	if !e.Active() {
		return ""
	}
	// Collect selected lines in seq order.
	lines := make([]*Line, 0, len(e.heads))
	for i := range e.heads {
		if e.heads[i].line != nil {
			lines = append(lines, e.heads[i].line)
		}
	}
	sortLinesBySeq(lines)

	var b strings.Builder
	for i, l := range lines {
		entry := e.entryFor(l)
		if entry == nil {
			continue
		}
		for _, sg := range entry.segs {
			end := sg.off + sg.length
			if sg.length == snapRight {
				end = l.size
			}
			end = minInt(end, l.size)
			for x := sg.off; x < end; x++ {
				c := l.cells()[x]
				if c.IsSpacer() {
					continue
				}
				b.WriteRune(c.Rune())
			}
		}
		if i < len(lines)-1 && !l.wrapped {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func sortLinesBySeq(lines []*Line) {
	// Insertion sort: the selection rarely spans many lines.
	for i := 1; i < len(lines); i++ {
		for j := i; j > 0 && lines[j-1].seq > lines[j].seq; j-- {
			lines[j-1], lines[j] = lines[j], lines[j-1]
		}
	}
}

// --- mutation notifications (lineMutationObserver) ---

func (e *selectionEngine) lineSplit(l, tail *Line, at int) {
	entry := e.entryFor(l)
	if entry == nil {
		return
	}
	var keep, moved []segment
	for _, sg := range entry.segs {
		end := sg.off + sg.length
		switch {
		case sg.length == snapRight && sg.off < at:
			keep = append(keep, sg)
			moved = append(moved, segment{off: 0, length: snapRight})
		case sg.length == snapRight:
			moved = append(moved, segment{off: sg.off - at, length: snapRight})
		case end <= at:
			keep = append(keep, sg)
		case sg.off >= at:
			moved = append(moved, segment{off: sg.off - at, length: sg.length})
		default:
			keep = append(keep, segment{off: sg.off, length: at - sg.off})
			moved = append(moved, segment{off: 0, length: end - at})
		}
	}
	e.setSegments(l, keep)
	if len(keep) == 0 {
		e.dropSegments(l)
	}
	e.setSegments(tail, moved)
}

func (e *selectionEngine) lineConcat(dst, src *Line, at int) {
	srcEntry := e.entryFor(src)
	if srcEntry == nil {
		return
	}
	moved := make([]segment, 0, len(srcEntry.segs))
	for _, sg := range srcEntry.segs {
		moved = append(moved, segment{off: sg.off + at, length: sg.length})
	}
	e.dropSegments(src)

	dstEntry := e.entryFor(dst)
	if dstEntry == nil {
		e.setSegments(dst, moved)
		return
	}
	segs := dstEntry.segs
	// Fuse a snap-right tail with an adjoining head segment.
	if n := len(segs); n > 0 && len(moved) > 0 {
		last := &segs[n-1]
		first := moved[0]
		if last.length == snapRight && first.off == at {
			if first.length == snapRight {
				moved = moved[1:]
			} else {
				last.length = first.off + first.length - last.off
				moved = moved[1:]
			}
		}
	}
	e.setSegments(dst, append(segs, moved...))
}

func (e *selectionEngine) lineFreed(l *Line) {
	if e.anchor.Line == l || e.caret.Line == l {
		// The anchor's content is going away; handles get rebound by
		// the store, but the selection geometry is no longer meaningful.
		e.Clear()
		return
	}
	e.dropSegments(l)
}

// damageLine is called for destructive edits; an edit intersecting the
// selection clears it.
func (e *selectionEngine) damageLine(l *Line) {
	if !e.Active() {
		return
	}
	if e.entryFor(l) != nil {
		e.Clear()
	}
}

// screenScrolled revalidates after the viewport shifted; segments
// travel with their lines, so only in-progress rect geometry needs a
// refresh.
func (e *selectionEngine) screenScrolled(s *Screen) {
	if e.inProgress && e.mode == SelectionRect {
		e.screen = s
		e.rebuild()
	}
}

// screenResized recomputes snap-derived segments at the new width.
func (e *selectionEngine) screenResized(s *Screen) {
	if !e.Active() {
		return
	}
	e.screen = s
	if e.mode == SelectionRect || e.mode == SelectionWord || e.mode == SelectionLine {
		e.rebuild()
	}
}

var _ lineMutationObserver = (*selectionEngine)(nil)
