package vtcore

import (
	"bytes"
	"encoding/base64"
	"strings"
)

// pasteState tracks an in-flight chunked paste. Closing the feeder
// aborts delivery; the bracketed-paste suffix is only sent when the
// prefix already went out.
type pasteState struct {
	active       bool
	sentBracket  bool
	canceled     bool
}

// oscClipboard handles OSC 52: "targets;?" queries, "targets;base64"
// stores, and anything undecodable clears the target.
func (t *Terminal) oscClipboard(body string) {
	target := byte('c')
	data := body
	if i := strings.IndexByte(body, ';'); i >= 0 {
		if i > 0 {
			target = body[0]
		}
		data = body[i+1:]
	}

	if data == "?" {
		if !t.modes.allowClipRead {
			t.trace.Trace("OSC 52 read denied")
			return
		}
		content := t.clipboard.Read(target)
		enc := base64.StdEncoding.EncodeToString([]byte(content))
		t.oscReply("52;" + string(rune(target)) + ";" + enc)
		return
	}

	if !t.modes.allowClipWrite {
		t.trace.Trace("OSC 52 write denied")
		return
	}
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		t.clipboard.Write(target, nil)
		return
	}
	t.clipboard.Write(target, decoded)
}

// Paste delivers a complete paste buffer through the paste pipeline.
func (t *Terminal) Paste(data []byte) {
	t.PasteBegin()
	t.PasteChunk(data)
	t.PasteEnd()
}

// PasteBegin opens a paste: the bracketed-paste prefix is emitted when
// mode 2004 is on.
func (t *Terminal) PasteBegin() {
	t.paste = pasteState{active: true}
	if t.modes.bracketedPaste {
		t.writeResponseString("\x1b[200~")
		t.paste.sentBracket = true
	}
	if t.modes.scrollOnInput {
		t.screen.ResetView()
	}
}

// PasteChunk feeds one chunk of paste data, applying the newline
// rewrite and quoting rules.
func (t *Terminal) PasteChunk(data []byte) {
	if !t.paste.active || t.paste.canceled {
		return
	}
	t.writeResponse(t.encodePaste(data))
}

// PasteEnd closes the paste, emitting the bracket suffix.
func (t *Terminal) PasteEnd() {
	if !t.paste.active {
		return
	}
	if t.paste.sentBracket && !t.paste.canceled {
		t.writeResponseString("\x1b[201~")
	}
	t.paste = pasteState{}
}

// PasteAbort cancels an in-flight paste. The suffix is not sent unless
// it was already buffered with the prefix.
func (t *Terminal) PasteAbort() {
	if !t.paste.active {
		return
	}
	t.paste.canceled = true
	if t.paste.sentBracket {
		t.writeResponseString("\x1b[201~")
	}
	t.paste = pasteState{}
}

// encodePaste rewrites newlines to CR (unless mode 2006 passes them
// literally) and applies mode 2005 control quoting.
func (t *Terminal) encodePaste(data []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(data))
	for i := 0; i < len(data); i++ {
		b := data[i]
		switch {
		case b == '\r' && i+1 < len(data) && data[i+1] == '\n':
			// CRLF collapses to a single CR.
			out.WriteByte('\r')
			i++
		case b == '\n':
			if t.modes.pasteLiteralNL {
				out.WriteByte('\n')
			} else {
				out.WriteByte('\r')
			}
		case b < 0x20 && b != '\r' && b != '\t':
			if t.modes.pasteQuote {
				// Literal-next quoting keeps control bytes from being
				// interpreted by line editors.
				out.WriteByte(0x16)
				out.WriteByte(b)
			} else {
				out.WriteByte(b)
			}
		default:
			out.WriteByte(b)
		}
	}
	return out.Bytes()
}

// CopySelection serializes the selection and hands ownership of the
// payload to the clipboard target.
func (t *Terminal) CopySelection(target byte) {
	text := t.sel.Text()
	if text == "" {
		return
	}
	t.clipboard.Write(target, []byte(text))
}
