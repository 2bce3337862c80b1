package vtcore

// CursorStyle determines how the cursor is rendered (DECSCUSR).
type CursorStyle int

const (
	CursorStyleBlinkingBlock CursorStyle = iota
	CursorStyleSteadyBlock
	CursorStyleBlinkingUnderline
	CursorStyleSteadyUnderline
	CursorStyleBlinkingBar
	CursorStyleSteadyBar
)

// Cursor tracks position, the pending-wrap state, origin mode and the
// character set machinery (G0-G3 slots with GL/GR mappings and single
// shift). Coordinates are 0-based grid positions.
type Cursor struct {
	X, Y int

	// PendingWrap is set only when the cursor sits at the right margin
	// and the previous write filled that cell; the next printable
	// wraps before being emitted.
	PendingWrap bool

	Origin bool

	GL   int // active GL slot index into GN
	GR   int // active GR slot index
	GLSS int // single-shift slot, -1 when none pending
	GN   [4]Charset
}

// NewCursor returns a cursor at the origin with ASCII in G0/G1 and
// Latin-1 in G2/G3, GL=G0, GR=G2.
func NewCursor() Cursor {
	return Cursor{
		GLSS: -1,
		GR:   2,
		GN:   [4]Charset{CharsetASCII, CharsetASCII, CharsetLatin1, CharsetLatin1},
	}
}

// glCharset returns the set to use for the next GL character, consuming
// a pending single shift.
func (c *Cursor) glCharset() Charset {
	if c.GLSS >= 0 {
		cs := c.GN[c.GLSS]
		c.GLSS = -1
		return cs
	}
	return c.GN[c.GL]
}

// SavedCursor is a complete cursor snapshot: position, charset state
// and the graphic rendition in effect. Three copies exist: DECSC, the
// save slot belonging to the other screen, and the main-screen cursor
// kept while the altscreen is shown.
type SavedCursor struct {
	Cursor
	SGR Attribute
}
