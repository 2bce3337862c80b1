package vtcore

import "io"

// ResponseProvider receives report bytes destined for the PTY (DSR,
// DA, DECRQSS replies and the like). Typically the PTY writer.
type ResponseProvider = io.Writer

// NoopResponse discards all response data.
type NoopResponse struct{}

func (NoopResponse) Write(p []byte) (int, error) { return len(p), nil }

// BellProvider handles bell events.
type BellProvider interface {
	// Ring is called for BEL and the margin bell; volume is the
	// configured level for the source that fired.
	Ring(volume int)
}

// NoopBell ignores all bell events.
type NoopBell struct{}

func (NoopBell) Ring(volume int) {}

// TitleProvider handles window title changes (OSC 0/1/2 and the
// XTWINOPS title stack).
type TitleProvider interface {
	SetTitle(title string)
	SetIconTitle(title string)
}

// NoopTitle ignores all title operations.
type NoopTitle struct{}

func (NoopTitle) SetTitle(title string)     {}
func (NoopTitle) SetIconTitle(title string) {}

// ClipboardProvider handles clipboard traffic (OSC 52 and selection
// release). Payload ownership transfers to the provider.
type ClipboardProvider interface {
	// Read returns the content of the given clipboard ('c', 'p', 's',
	// or '0'-'7' for cut buffers).
	Read(clipboard byte) string
	// Write stores content into the given clipboard.
	Write(clipboard byte, data []byte)
}

// NoopClipboard ignores all clipboard operations.
type NoopClipboard struct{}

func (NoopClipboard) Read(clipboard byte) string      { return "" }
func (NoopClipboard) Write(clipboard byte, b []byte)  {}

// TraceProvider receives diagnostic dumps of dropped, malformed or
// unknown sequences. Parsing never fails hard; it traces and moves on.
type TraceProvider interface {
	Trace(format string, args ...any)
}

// NoopTrace discards all diagnostics.
type NoopTrace struct{}

func (NoopTrace) Trace(format string, args ...any) {}

// PrinterProvider is the sink for printer-controller mode (MC 5) and
// print-screen (MC 0) output.
type PrinterProvider = io.Writer

// Window is the rendering backend surface. The engine calls it to
// publish screen content and window-level state; the backend calls
// back into the Terminal with key, mouse, focus and resize events.
type Window interface {
	// SubmitScreen asks the backend to paint the current view. The
	// backend pulls spans and cell specs from the terminal. Returns
	// true if anything was drawn.
	SubmitScreen(curX, curY int, cursorVisible, onMargin bool) bool
	// Shift requests a damage-preserving blit of height rows from ys
	// to yd during scrolling.
	Shift(ys, yd, height int)
	// SetUrgency raises or clears the urgency hint.
	SetUrgency(urgent bool)
	// Bell rings the audible or visual bell at the given volume.
	Bell(volume int)
	// PasteClip asks the backend to initiate a paste of the given
	// clipboard target back into the terminal.
	PasteClip(target byte)
	// GetCellSize returns the glyph cell size in pixels.
	GetCellSize() (w, h int)
	// GetGridSize returns the window content size in pixels.
	GetGridSize() (w, h int)
	// GetBorder returns the inner border width in pixels.
	GetBorder() int
	// GetPosition returns the window position on screen.
	GetPosition() (x, y int)
}

// NoopWindow is a Window that does nothing; cell size defaults keep
// pixel-based reports meaningful.
type NoopWindow struct{}

func (NoopWindow) SubmitScreen(curX, curY int, cursorVisible, onMargin bool) bool { return false }
func (NoopWindow) Shift(ys, yd, height int)                                       {}
func (NoopWindow) SetUrgency(urgent bool)                                         {}
func (NoopWindow) Bell(volume int)                                                {}
func (NoopWindow) PasteClip(target byte)                                          {}
func (NoopWindow) GetCellSize() (int, int)                                        { return 8, 16 }
func (NoopWindow) GetGridSize() (int, int)                                        { return 640, 384 }
func (NoopWindow) GetBorder() int                                                 { return 0 }
func (NoopWindow) GetPosition() (int, int)                                        { return 0, 0 }

var (
	_ ResponseProvider  = NoopResponse{}
	_ BellProvider      = NoopBell{}
	_ TitleProvider     = NoopTitle{}
	_ ClipboardProvider = NoopClipboard{}
	_ TraceProvider     = NoopTrace{}
	_ Window            = NoopWindow{}
)
