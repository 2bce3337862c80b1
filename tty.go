package vtcore

import (
	"errors"
	"os"
	"os/exec"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
)

// ErrTtyHangup is returned once the child is gone; subsequent writes
// are silent no-ops.
var ErrTtyHangup = errors.New("vtcore: tty hangup")

const (
	ttyRingSize = 16 * 1024

	// A write that keeps blocking longer than this many drain rounds
	// is dropped; the child stopped reading entirely.
	ttyMaxDrainRounds = 64
)

// Tty drives the PTY child: non-blocking reads feeding the parser,
// non-blocking writes with interleaved drain (so a blocking answerback
// can never deadlock against a full child pipe), winsize updates and
// hangup bookkeeping.
//
// The read buffer guarantees that the last maxProtocolLen bytes of the
// previous chunk survive a refill, so URI matching can look backward
// across read boundaries.
type Tty struct {
	f    *os.File
	cmd  *exec.Cmd
	term *Terminal

	ring  [ttyRingSize]byte
	tail  int // preserved bytes at the start of ring
	wbuf  []byte
	hung  bool
	crlf  bool // translate outgoing \r to \r\n
}

// NewTty spawns the child command on a fresh PTY sized to the
// terminal.
func NewTty(term *Terminal, name string, args []string, env []string) (*Tty, error) {
	cmd := exec.Command(name, args...)
	if env != nil {
		cmd.Env = env
	}
	ws := &pty.Winsize{
		Rows: uint16(term.screen.height),
		Cols: uint16(term.screen.width),
	}
	f, err := pty.StartWithSize(cmd, ws)
	if err != nil {
		return nil, err
	}
	if err := unix.SetNonblock(int(f.Fd()), true); err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Tty{f: f, cmd: cmd, term: term}, nil
}

// Fd returns the PTY master descriptor for the poller.
func (t *Tty) Fd() int {
	if t.f == nil {
		return -1
	}
	return int(t.f.Fd())
}

// SetCRLF enables outgoing CR -> CRLF translation.
func (t *Tty) SetCRLF(on bool) { t.crlf = on }

// ReadAndParse drains readable PTY bytes into the parser. Returns
// ErrTtyHangup at end of stream.
func (t *Tty) ReadAndParse() error {
	if t.hung {
		return ErrTtyHangup
	}
	for {
		n, err := unix.Read(t.Fd(), t.ring[t.tail:])
		if n > 0 {
			chunk := t.ring[t.tail : t.tail+n]
			t.term.feedBytes(chunk)
			// Preserve the lookbehind window for the URI matcher.
			keep := minInt(t.tail+n, maxProtocolLen)
			copy(t.ring[:keep], t.ring[t.tail+n-keep:t.tail+n])
			t.tail = keep
		}
		if err != nil {
			if err == unix.EAGAIN {
				return nil
			}
			if err == unix.EINTR {
				continue
			}
			t.markHangup()
			return ErrTtyHangup
		}
		if n == 0 {
			t.markHangup()
			return ErrTtyHangup
		}
	}
}

// Write implements ResponseProvider: report and input bytes head to
// the child. Blocking writes poll POLLOUT|POLLIN and drain the read
// side in between, avoiding self-deadlock during long answerbacks.
func (t *Tty) Write(p []byte) (int, error) {
	if t.hung {
		return len(p), nil
	}
	if t.crlf {
		p = crlfTranslate(p)
	}
	t.wbuf = append(t.wbuf, p...)
	if err := t.Flush(); err != nil {
		return len(p), err
	}
	return len(p), nil
}

// Flush pushes pending output to the child.
func (t *Tty) Flush() error {
	rounds := 0
	for len(t.wbuf) > 0 {
		n, err := unix.Write(t.Fd(), t.wbuf)
		if n > 0 {
			t.wbuf = t.wbuf[n:]
			continue
		}
		switch err {
		case unix.EINTR:
			continue
		case unix.EAGAIN:
			rounds++
			if rounds > ttyMaxDrainRounds {
				// The child stopped reading; drop the reply.
				t.wbuf = t.wbuf[:0]
				return nil
			}
			fds := []unix.PollFd{{Fd: int32(t.Fd()), Events: unix.POLLOUT | unix.POLLIN}}
			if _, perr := unix.Poll(fds, 1000); perr != nil && perr != unix.EINTR {
				t.markHangup()
				return ErrTtyHangup
			}
			if fds[0].Revents&unix.POLLIN != 0 {
				if rerr := t.ReadAndParse(); rerr != nil {
					return rerr
				}
			}
			if fds[0].Revents&(unix.POLLHUP|unix.POLLERR) != 0 && fds[0].Revents&unix.POLLOUT == 0 {
				t.markHangup()
				return ErrTtyHangup
			}
		default:
			t.markHangup()
			return ErrTtyHangup
		}
	}
	return nil
}

// Resize propagates a grid change to the child via the winsize ioctl.
func (t *Tty) Resize(cols, rows, pixelW, pixelH int) error {
	if t.hung {
		return ErrTtyHangup
	}
	return pty.Setsize(t.f, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
		X:    uint16(pixelW),
		Y:    uint16(pixelH),
	})
}

// Hung reports whether the child side is gone.
func (t *Tty) Hung() bool { return t.hung }

func (t *Tty) markHangup() {
	t.hung = true
	t.wbuf = nil
}

// Close releases the PTY and reaps the child.
func (t *Tty) Close() error {
	t.markHangup()
	var err error
	if t.f != nil {
		err = t.f.Close()
		t.f = nil
	}
	if t.cmd != nil && t.cmd.Process != nil {
		_ = t.cmd.Wait()
	}
	return err
}

// crlfTranslate rewrites bare CR to CRLF.
func crlfTranslate(p []byte) []byte {
	n := 0
	for _, b := range p {
		if b == '\r' {
			n++
		}
	}
	if n == 0 {
		return p
	}
	out := make([]byte, 0, len(p)+n)
	for _, b := range p {
		out = append(out, b)
		if b == '\r' {
			out = append(out, '\n')
		}
	}
	return out
}

// --- printer controller ---

// printerSieve is the MC 5 byte interceptor: while active, bytes
// bypass the parser and go to the printer sink. Only CSI 4 i (exit)
// and CSI 5 i (nested enter) are recognized; XON, XOFF and NUL are
// consumed.
type printerSieve struct {
	active  bool
	pending []byte // partial CSI under examination
	depth   int
}

// feedBytes routes PTY bytes through the printer sieve when printer
// controller mode is on, otherwise straight into the parser.
func (t *Terminal) feedBytes(data []byte) {
	if !t.printerCtl.active {
		t.Advance(data)
		return
	}
	rest := t.printerCtl.sieve(t, data)
	if len(rest) > 0 {
		t.Advance(rest)
	}
}

// sieve scans data while in printer-controller mode and returns the
// unconsumed tail after the exit sequence, if it was seen.
func (ps *printerSieve) sieve(t *Terminal, data []byte) []byte {
	flush := func() {
		if len(ps.pending) > 0 {
			_, _ = t.printer.Write(ps.pending)
			ps.pending = ps.pending[:0]
		}
	}
	for i := 0; i < len(data); i++ {
		b := data[i]
		switch b {
		case 0x00, 0x11, 0x13: // NUL, XON, XOFF consumed
			continue
		}
		switch len(ps.pending) {
		case 0:
			if b == 0x1B {
				ps.pending = append(ps.pending, b)
			} else {
				_, _ = t.printer.Write([]byte{b})
			}
		case 1:
			if b == '[' {
				ps.pending = append(ps.pending, b)
			} else {
				flush()
				_, _ = t.printer.Write([]byte{b})
			}
		case 2:
			if b == '4' || b == '5' {
				ps.pending = append(ps.pending, b)
			} else {
				flush()
				_, _ = t.printer.Write([]byte{b})
			}
		case 3:
			if b == 'i' {
				if ps.pending[2] == '4' {
					if ps.depth > 0 {
						ps.depth--
						_, _ = t.printer.Write(append(ps.pending, b))
						ps.pending = ps.pending[:0]
					} else {
						ps.active = false
						ps.pending = ps.pending[:0]
						return data[i+1:]
					}
				} else {
					ps.depth++
					_, _ = t.printer.Write(append(ps.pending, b))
					ps.pending = ps.pending[:0]
				}
			} else {
				flush()
				_, _ = t.printer.Write([]byte{b})
			}
		}
	}
	return nil
}

// printScreen implements MC 0: the visible screen text goes to the
// printer sink.
func (t *Terminal) printScreen() {
	s := t.screen
	for y := 0; y < s.height; y++ {
		_, _ = t.printer.Write(append([]byte(t.RowText(y)), '\n'))
	}
}

var _ ResponseProvider = (*Tty)(nil)
