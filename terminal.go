package vtcore

import (
	"fmt"
	"strings"
)

const (
	// DEFAULT_ROWS is the default number of terminal rows.
	DEFAULT_ROWS = 24
	// DEFAULT_COLS is the default number of terminal columns.
	DEFAULT_COLS = 80

	// DefaultScrollback is the default scrollback capacity in lines.
	DefaultScrollback = 10000

	defaultVTLevel = 4
)

// Config carries the engine settings consumed at construction time.
// The caller owns loading them from wherever; the engine only reads.
type Config struct {
	Rows, Cols      int
	ScrollbackLines int

	VTLevel int // 1 through 5; 0 or out-of-range values select 4

	EnableColumns132 bool
	AllowWindowOps   bool

	// The bell and the margin bell are independent settings even
	// though historical configs spell both "bell".
	BellVolume       int
	MarginBellVolume int
	MarginBellColumn int // columns from the right margin; 0 = default 8

	SmoothScrollStep int

	Answerback string

	// URIProtocols overrides the auto-match scheme list.
	URIProtocols []string

	Keymap KeymapKind

	// BackspaceIsDel / DeleteIsDel configure the BS/DEL swap.
	BackspaceIsDel bool
	DeleteIsDel    bool

	ModifyCursorKeys   int // 0-4
	ModifyFunctionKeys int // 0-4
	ModifyKeypadKeys   int // 0-4
	ModifyOtherKeys    int // 0-2
	ModifyOtherFmt     ModifyOtherFormat

	// Rendering-side derivation knobs consumed by CellSpecAt.
	DisableBrightBold bool
	BgAlpha           uint8 // 0 means opaque
	BlendAllBg        bool
	SelectionFg       *RGBA
	SelectionBg       *RGBA
	SpecialBold       *RGBA
	SpecialUnderline  *RGBA
	SpecialBlink      *RGBA
	SpecialReverse    *RGBA
	SpecialItalic     *RGBA
	URIColor          *RGBA

	// ForceMouseMod short-circuits mouse reporting so local selection
	// still works while a TUI owns the mouse.
	ForceMouseMod Modifiers

	LocalEcho bool
}

// Terminal is the emulation engine: parser, screens, modes, input
// translation and all escape-sequence behavior. It is owned by a
// single event loop; see the package documentation.
type Terminal struct {
	cfg Config

	screen *Screen
	uris   *uriTable
	sel    *selectionEngine
	parser parser
	modes  modeSet

	savedModes xtSavedModes

	vtLevel int

	palette *Palette

	// Providers.
	response  ResponseProvider
	window    Window
	bellProv  BellProvider
	titleProv TitleProvider
	clipboard ClipboardProvider
	trace     TraceProvider
	printer   PrinterProvider
	hooks     Hooks

	title      string
	iconTitle  string
	titleStack []string
	iconStack  []string

	workingDir string

	// URI auto-match.
	uriMatcher  *uriMatcher
	uriBookmark LineHandle
	uriActive   bool

	// Keyboard encoding and mouse reporting state.
	keyboard inputState
	mouse    mouseState

	// Printer controller (MC 5) byte sieve.
	printerCtl printerSieve

	// Synchronized updates (mode 2026 / iTerm2 DCS).
	syncPending bool

	// Cursor shape (DECSCUSR).
	cursorStyle CursorStyle

	// DECSACE extent: rectangle SGR ops degrade to the cell stream
	// between the corners unless exact-rectangle mode is selected.
	rectByLine bool

	// xterm title transport modes (CSI > t / CSI > T).
	titleHexSet  bool
	titleHexGet  bool
	titleUTF8Set bool
	titleUTF8Get bool

	// utf8Tail defers a partial UTF-8 rune across Advance calls.
	utf8Tail    [4]byte
	utf8TailLen int

	paste pasteState

	// Render-phase state fed by the window layer (SetBlinkPhase,
	// SetActiveURI).
	blinkPhaseOff bool
	activeURI     URIRef
	activeURIDown bool
}

// Option configures a Terminal during construction.
type Option func(*Terminal)

// WithSize sets the terminal dimensions. Values <= 0 fall back to 24x80.
func WithSize(rows, cols int) Option {
	return func(t *Terminal) {
		if rows > 0 {
			t.cfg.Rows = rows
		}
		if cols > 0 {
			t.cfg.Cols = cols
		}
	}
}

// WithConfig replaces the whole configuration.
func WithConfig(cfg Config) Option {
	return func(t *Terminal) {
		rows, cols := t.cfg.Rows, t.cfg.Cols
		t.cfg = cfg
		if cfg.Rows <= 0 {
			t.cfg.Rows = rows
		}
		if cfg.Cols <= 0 {
			t.cfg.Cols = cols
		}
	}
}

// WithResponse sets the writer report bytes are sent to (usually the
// PTY). If nil, responses are discarded.
func WithResponse(w ResponseProvider) Option {
	return func(t *Terminal) {
		if w != nil {
			t.response = w
		}
	}
}

// WithWindow sets the rendering backend surface.
func WithWindow(w Window) Option {
	return func(t *Terminal) {
		if w != nil {
			t.window = w
		}
	}
}

// WithBell sets the bell handler.
func WithBell(p BellProvider) Option {
	return func(t *Terminal) {
		if p != nil {
			t.bellProv = p
		}
	}
}

// WithTitle sets the title handler.
func WithTitle(p TitleProvider) Option {
	return func(t *Terminal) {
		if p != nil {
			t.titleProv = p
		}
	}
}

// WithClipboard sets the clipboard handler (OSC 52, selection release).
func WithClipboard(p ClipboardProvider) Option {
	return func(t *Terminal) {
		if p != nil {
			t.clipboard = p
		}
	}
}

// WithTrace sets the diagnostic trace sink.
func WithTrace(p TraceProvider) Option {
	return func(t *Terminal) {
		if p != nil {
			t.trace = p
		}
	}
}

// WithPrinter sets the printer sink for MC sequences.
func WithPrinter(w PrinterProvider) Option {
	return func(t *Terminal) {
		if w != nil {
			t.printer = w
		}
	}
}

// WithHooks installs dispatch interception hooks.
func WithHooks(h Hooks) Option {
	return func(t *Terminal) {
		t.hooks.merge(h)
	}
}

// WithScrollback sets the scrollback capacity in lines.
func WithScrollback(lines int) Option {
	return func(t *Terminal) {
		if lines >= 0 {
			t.cfg.ScrollbackLines = lines
		}
	}
}

// New creates a terminal with the given options. Defaults: 24x80,
// VT level 4, autowrap on, cursor visible, 10000 lines of scrollback.
func New(opts ...Option) *Terminal {
	t := &Terminal{
		cfg: Config{
			Rows:            DEFAULT_ROWS,
			Cols:            DEFAULT_COLS,
			ScrollbackLines: DefaultScrollback,
			VTLevel:         defaultVTLevel,
		},
		response:  NoopResponse{},
		window:    NoopWindow{},
		bellProv:  NoopBell{},
		titleProv: NoopTitle{},
		clipboard: NoopClipboard{},
		trace:     NoopTrace{},
		printer:   NoopResponse{},
		palette:   NewPalette(),
	}
	for _, opt := range opts {
		opt(t)
	}

	t.vtLevel = t.cfg.VTLevel
	if t.vtLevel <= 0 || t.vtLevel > 5 {
		t.vtLevel = defaultVTLevel
	}
	t.modes = defaultModes()
	t.uris = newURITable()
	t.sel = newSelectionEngine()
	t.screen = newScreen(t.cfg.Cols, t.cfg.Rows, t.cfg.ScrollbackLines, t.uris, t.sel)
	t.sel.screen = t.screen
	if t.cfg.SmoothScrollStep > 0 {
		t.screen.smoothStep = t.cfg.SmoothScrollStep
	}
	t.uriMatcher = newURIMatcher(t.cfg.URIProtocols)
	t.keyboard = newInputState(&t.cfg)
	t.cursorStyle = CursorStyleBlinkingBlock
	t.rectByLine = true
	return t
}

// Write implements io.Writer: bytes are parsed as terminal output.
func (t *Terminal) Write(p []byte) (int, error) {
	t.Advance(p)
	return len(p), nil
}

// WriteString feeds a string through the parser.
func (t *Terminal) WriteString(s string) {
	t.Advance([]byte(s))
}

// Screen exposes the screen model to the rendering backend.
func (t *Terminal) Screen() *Screen { return t.screen }

// Selection exposes the selection engine.
func (t *Terminal) Selection() *selectionEngine { return t.sel }

// Palette returns the live palette.
func (t *Terminal) Palette() *Palette { return t.palette }

// Title returns the current window title.
func (t *Terminal) Title() string { return t.title }

// WorkingDir returns the directory reported by OSC 7, if any.
func (t *Terminal) WorkingDir() string { return t.workingDir }

// CursorStyle returns the DECSCUSR shape.
func (t *Terminal) CursorStyle() CursorStyle { return t.cursorStyle }

// CursorVisible reports DECTCEM.
func (t *Terminal) CursorVisible() bool { return t.modes.cursorVisible }

// Resize changes the grid size, reflowing soft-wrapped content.
func (t *Terminal) Resize(cols, rows int) {
	t.screen.Resize(cols, rows)
}

// --- small control helpers ---

func (t *Terminal) utf8Enabled() bool { return t.modes.utf8 }

func (t *Terminal) inVT52() bool { return !t.modes.ansi }

func (t *Terminal) bell() {
	t.bellProv.Ring(t.cfg.BellVolume)
	t.window.Bell(t.cfg.BellVolume)
}

func (t *Terminal) marginBell() {
	if t.modes.marginBell {
		t.bellProv.Ring(t.cfg.MarginBellVolume)
	}
}

func (t *Terminal) answerback() {
	if t.cfg.Answerback != "" {
		t.writeResponseString(t.cfg.Answerback)
	}
}

func (t *Terminal) backspace() {
	c := &t.screen.cursor
	if c.PendingWrap && t.modes.reverseWrap {
		c.PendingWrap = false
		return
	}
	if c.X > t.screen.effLeft() {
		c.X--
	} else if t.modes.reverseWrap && c.Y > t.screen.topMargin {
		// Reverse wraparound: climb to the end of the previous row.
		c.Y--
		c.X = t.screen.effRight() - 1
	}
	c.PendingWrap = false
}

func (t *Terminal) lineFeed() {
	t.screen.index(true)
	if t.modes.newline {
		t.screen.cr()
	}
	if t.modes.scrollOnOutput {
		t.screen.ResetView()
	}
}

func (t *Terminal) tab(n int) {
	t.screen.cursor.X = t.screen.nextTab(t.screen.cursor.X, n)
	t.screen.cursor.PendingWrap = false
}

func (t *Terminal) backTab(n int) {
	t.screen.cursor.X = t.screen.prevTab(t.screen.cursor.X, n)
	t.screen.cursor.PendingWrap = false
}

func (t *Terminal) traceDropped(kind string, b byte) {
	t.trace.Trace("dropped %s sequence at byte %#x", kind, b)
}

// --- responses ---

// writeResponse emits report bytes. Replies produced by a parser step
// are emitted after the step completes; buffering is the response
// writer's concern (Tty defers blocking writes rather than re-entering
// the parser).
func (t *Terminal) writeResponse(b []byte) {
	_, _ = t.response.Write(b)
}

func (t *Terminal) writeResponseString(s string) {
	t.writeResponse([]byte(s))
}

// csiReply formats a CSI reply honoring the 8-bit C1 reporting mode.
func (t *Terminal) csiReply(format string, args ...any) {
	t.writeResponseString(t.c1(0x9B) + fmt.Sprintf(format, args...))
}

// c1 renders a C1 control: a raw byte when 8-bit reports are enabled
// at VT level >= 2, the ESC-prefixed 7-bit form otherwise.
func (t *Terminal) c1(b byte) string {
	if t.modes.eightBit && t.vtLevel >= 2 {
		return string(rune(b))
	}
	return "\x1b" + string(rune(b-0x40))
}

// dcsReply wraps a payload in DCS ... ST.
func (t *Terminal) dcsReply(payload string) {
	t.writeResponseString(t.c1(0x90) + payload + t.c1(0x9C))
}

// oscReply wraps a payload in OSC ... ST.
func (t *Terminal) oscReply(payload string) {
	t.writeResponseString(t.c1(0x9D) + payload + t.c1(0x9C))
}

// --- synchronized updates ---

// setSyncUpdates enters or leaves synchronized-update mode: while
// active the renderer is told not to flush partial frames.
func (t *Terminal) setSyncUpdates(on bool) {
	if t.modes.syncUpdates == on {
		return
	}
	t.modes.syncUpdates = on
	if !on {
		t.screen.damageAll()
	}
}

// SyncActive reports whether a synchronized update is in progress.
func (t *Terminal) SyncActive() bool { return t.modes.syncUpdates }

// --- reset ---

// SoftReset implements DECSTR.
func (t *Terminal) SoftReset() {
	s := t.screen
	t.modes.insert = false
	t.modes.origin = false
	t.modes.autowrap = true
	t.modes.appCursor = false
	t.modes.appKeypad = false
	t.modes.cursorVisible = true
	s.cursor.Origin = false
	s.cursor.PendingWrap = false
	s.resetMargins()
	s.sgr = DefaultAttribute()
	s.savedValid = false
	s.cursor.GL, s.cursor.GR, s.cursor.GLSS = 0, 2, -1
	s.cursor.GN = NewCursor().GN
	s.setProtected(false)
}

// Reset implements RIS: full state reset short of the PTY.
func (t *Terminal) Reset() {
	t.modes = defaultModes()
	t.parser.reset()
	t.sel.Clear()
	t.palette = NewPalette()
	t.title, t.iconTitle = "", ""
	t.titleStack, t.iconStack = nil, nil
	t.cursorStyle = CursorStyleBlinkingBlock
	uris := t.uris
	sel := t.sel
	t.screen = newScreen(t.screen.width, t.screen.height, t.cfg.ScrollbackLines, uris, sel)
	sel.screen = t.screen
	if t.cfg.SmoothScrollStep > 0 {
		t.screen.smoothStep = t.cfg.SmoothScrollStep
	}
	t.uriMatcher.reset()
	t.uriActive = false
}

// --- local echo ---

// localEcho feeds input bytes back through the print path with control
// bytes shown in caret notation.
func (t *Terminal) localEcho(data []byte) {
	if !t.cfg.LocalEcho || t.modes.noLocalEcho {
		return
	}
	var b strings.Builder
	for _, c := range data {
		switch {
		case c < 0x20:
			b.WriteByte('^')
			b.WriteByte(c + 0x40)
		case c == 0x7F:
			b.WriteString("^?")
		case c >= 0x80 && c < 0xA0:
			b.WriteString("^[")
			b.WriteByte(c - 0x40)
		default:
			b.WriteByte(c)
		}
	}
	t.Advance([]byte(b.String()))
}
