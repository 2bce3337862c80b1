package vtcore

import (
	"fmt"
	"strings"
)

// SnapshotDetail specifies the level of detail in a snapshot.
type SnapshotDetail string

const (
	// SnapshotDetailText returns plain text only.
	SnapshotDetailText SnapshotDetail = "text"
	// SnapshotDetailStyled returns text with style segments per line.
	SnapshotDetailStyled SnapshotDetail = "styled"
	// SnapshotDetailFull returns full cell-by-cell data.
	SnapshotDetailFull SnapshotDetail = "full"
)

// Snapshot is a complete capture of the visible screen.
type Snapshot struct {
	Size   SnapshotSize   `json:"size"`
	Cursor SnapshotCursor `json:"cursor"`
	Lines  []SnapshotLine `json:"lines"`
}

// SnapshotSize holds terminal dimensions.
type SnapshotSize struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// SnapshotCursor holds cursor state.
type SnapshotCursor struct {
	Row     int    `json:"row"`
	Col     int    `json:"col"`
	Visible bool   `json:"visible"`
	Style   string `json:"style"`
}

// SnapshotLine is a single visual row.
type SnapshotLine struct {
	Text     string            `json:"text"`
	Wrapped  bool              `json:"wrapped,omitempty"`
	Segments []SnapshotSegment `json:"segments,omitempty"`
	Cells    []SnapshotCell    `json:"cells,omitempty"`
}

// SnapshotSegment is a run of identically-styled text within a line.
type SnapshotSegment struct {
	Text  string        `json:"text"`
	Fg    string        `json:"fg,omitempty"`
	Bg    string        `json:"bg,omitempty"`
	Attrs SnapshotAttrs `json:"attrs,omitempty"`
	URI   string        `json:"uri,omitempty"`
}

// SnapshotCell is one cell with full attributes.
type SnapshotCell struct {
	Char  string        `json:"char"`
	Fg    string        `json:"fg"`
	Bg    string        `json:"bg"`
	Attrs SnapshotAttrs `json:"attrs,omitempty"`
	URI   string        `json:"uri,omitempty"`
	Wide  bool          `json:"wide,omitempty"`
}

// SnapshotAttrs holds text formatting attributes.
type SnapshotAttrs struct {
	Bold          bool `json:"bold,omitempty"`
	Faint         bool `json:"faint,omitempty"`
	Italic        bool `json:"italic,omitempty"`
	Underline     bool `json:"underline,omitempty"`
	Blink         bool `json:"blink,omitempty"`
	Reverse       bool `json:"reverse,omitempty"`
	Invisible     bool `json:"invisible,omitempty"`
	Strikethrough bool `json:"strikethrough,omitempty"`
	Protected     bool `json:"protected,omitempty"`
}

func snapshotAttrs(a Attribute) SnapshotAttrs {
	return SnapshotAttrs{
		Bold:          a.Bold,
		Faint:         a.Faint,
		Italic:        a.Italic,
		Underline:     a.Underline != UnderlineNone,
		Blink:         a.Blink,
		Reverse:       a.Reverse,
		Invisible:     a.Invisible,
		Strikethrough: a.Strikethrough,
		Protected:     a.Protected,
	}
}

func colorString(c Color, p *Palette) string {
	rgba := c.Resolve(p)
	return fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)
}

// Snapshot captures the live viewport at the requested detail.
func (t *Terminal) Snapshot(detail SnapshotDetail) *Snapshot {
	s := t.screen
	snap := &Snapshot{
		Size: SnapshotSize{Rows: s.height, Cols: s.width},
		Cursor: SnapshotCursor{
			Row:     s.cursor.Y,
			Col:     s.cursor.X,
			Visible: t.modes.cursorVisible,
			Style:   cursorStyleName(t.cursorStyle),
		},
		Lines: make([]SnapshotLine, s.height),
	}
	for y := 0; y < s.height; y++ {
		sp := s.cur.spans[y]
		line := SnapshotLine{Text: t.RowText(y)}
		if sp.Line != nil {
			line.Wrapped = sp.Line.wrapped && sp.Offset+s.width >= sp.Line.size
		}
		switch detail {
		case SnapshotDetailStyled:
			line.Segments = t.rowSegments(y)
		case SnapshotDetailFull:
			line.Cells = t.rowCells(y)
		}
		snap.Lines[y] = line
	}
	return snap
}

// RowText returns the text of a visual row with trailing blanks
// trimmed and wide spacers skipped.
func (t *Terminal) RowText(y int) string {
	s := t.screen
	sp := s.cur.spans[y]
	if sp.Line == nil {
		return ""
	}
	runes := make([]rune, 0, s.width)
	for x := 0; x < s.width; x++ {
		c := sp.Line.cellAt(sp.Offset + x)
		if c.IsSpacer() {
			continue
		}
		runes = append(runes, c.Rune())
	}
	return strings.TrimRight(string(runes), " ")
}

// ScreenText returns the full visible screen joined with newlines,
// handy for tests and logging.
func (t *Terminal) ScreenText() string {
	rows := make([]string, t.screen.height)
	for y := range rows {
		rows[y] = t.RowText(y)
	}
	return strings.Join(rows, "\n")
}

func (t *Terminal) rowSegments(y int) []SnapshotSegment {
	s := t.screen
	sp := s.cur.spans[y]
	if sp.Line == nil {
		return nil
	}
	var segs []SnapshotSegment
	var cb strings.Builder
	var curID uint16
	started := false
	flush := func() {
		if !started || cb.Len() == 0 {
			return
		}
		a := sp.Line.attrs.at(curID)
		segs = append(segs, SnapshotSegment{
			Text:  cb.String(),
			Fg:    colorString(a.Fg, t.palette),
			Bg:    colorString(a.Bg, t.palette),
			Attrs: snapshotAttrs(a),
			URI:   t.uris.get(a.URI).URI,
		})
		cb.Reset()
	}
	for x := 0; x < s.width; x++ {
		c := sp.Line.cellAt(sp.Offset + x)
		if c.IsSpacer() {
			continue
		}
		if !started || c.attrID != curID {
			flush()
			curID = c.attrID
			started = true
		}
		cb.WriteRune(c.Rune())
	}
	flush()
	return segs
}

func (t *Terminal) rowCells(y int) []SnapshotCell {
	s := t.screen
	sp := s.cur.spans[y]
	if sp.Line == nil {
		return nil
	}
	cells := make([]SnapshotCell, 0, s.width)
	for x := 0; x < s.width; x++ {
		c := sp.Line.cellAt(sp.Offset + x)
		a := sp.Line.attrs.at(c.attrID)
		ch := " "
		if !c.IsSpacer() {
			ch = string(c.Rune())
		}
		cells = append(cells, SnapshotCell{
			Char:  ch,
			Fg:    colorString(a.Fg, t.palette),
			Bg:    colorString(a.Bg, t.palette),
			Attrs: snapshotAttrs(a),
			URI:   t.uris.get(a.URI).URI,
			Wide:  c.Wide(),
		})
	}
	return cells
}

func cursorStyleName(cs CursorStyle) string {
	switch cs {
	case CursorStyleSteadyBlock:
		return "steady-block"
	case CursorStyleBlinkingUnderline:
		return "blinking-underline"
	case CursorStyleSteadyUnderline:
		return "steady-underline"
	case CursorStyleBlinkingBar:
		return "blinking-bar"
	case CursorStyleSteadyBar:
		return "steady-bar"
	default:
		return "blinking-block"
	}
}
