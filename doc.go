// Package vtcore implements the core of an xterm-compatible terminal
// emulator: the escape-sequence parser, the screen and scrollback data
// model, cursor and attribute state, the selection engine, and the
// input-translation pipeline that turns key and mouse events into the
// byte sequences a child process expects.
//
// The package is headless: it owns no window. A rendering backend
// implements the [Window] interface and pulls per-cell [CellSpec]
// values; a PTY child is driven through [Tty]; everything in between -
// VT52 through VT520 sequences, DEC private modes, rectangular editing,
// NRCS character sets, soft-wrap reflow, synchronized updates, OSC
// color, title and clipboard traffic - happens in here.
//
// # Quick Start
//
// Create a terminal and feed it bytes:
//
//	term := vtcore.New(
//	    vtcore.WithSize(24, 80),
//	    vtcore.WithResponse(ptyWriter), // replies (DSR, DA, ...) go here
//	)
//	term.Advance(ptyBytes)
//
// The parser is restartable: Advance may be called with arbitrary chunk
// boundaries, including mid escape sequence and mid UTF-8 rune.
//
// # Data Model
//
// The screen is a window onto a doubly-linked list of variable-width
// [Line] values allocated from append-tuned pools. A visual row is a
// [LineSpan]: a view of one line at some offset. Soft-wrapped logical
// lines therefore keep their identity across resizes, and reflow is a
// re-mapping of spans rather than a retype of cells. Stable anchors
// (cursor, view origin, scrollback top, selection endpoints) are
// [LineHandle] values that are registered on their line and survive
// splits, merges and reallocation.
//
// Cells are compact: a 19-bit folded codepoint plus an attribute id
// interned per line. Colors are palette indices or direct RGBA; URIs
// (OSC 8 and auto-matched) are reference-counted and interned once per
// terminal.
//
// # Providers
//
// External collaborators are expressed as small interfaces with no-op
// defaults, configured through functional options:
//
//   - [Window]: the rendering backend surface
//   - [ResponseProvider]: where report bytes are written
//   - [BellProvider], [TitleProvider], [ClipboardProvider]
//   - [TraceProvider]: diagnostic dump of dropped or unknown sequences
//
// # Event Loop
//
// The engine is single-threaded and cooperative. [Poller] combines
// poll(2) over registered file descriptors with a monotonic timer heap.
// The package itself arms no timers: the blink phase is set from outside
// through [Terminal.SetBlinkPhase], and there is no smooth-scroll,
// visual-bell or synchronized-update timeout timer. [Tty] performs non-blocking PTY I/O with an
// interleaved drain so a blocking answerback can never deadlock against
// a full child pipe.
package vtcore
