package vtcore

import (
	"container/heap"
	"errors"
	"time"

	"golang.org/x/sys/unix"
)

// ErrPollerClosed is returned from Run once Close is called.
var ErrPollerClosed = errors.New("vtcore: poller closed")

// TimerFunc runs when a timer fires. Returning true reschedules the
// timer at its period from now.
type TimerFunc func() bool

// FdFunc runs when a registered descriptor has events.
type FdFunc func(revents int16)

// Timer is a monotonic-clock timer owned by the poller heap. Timers are
// created with AddTimer; the package arms none of its own.
type Timer struct {
	when    time.Time
	period  time.Duration
	fn      TimerFunc
	index   int // heap position, -1 when disarmed
	stopped bool
}

// Stop disarms the timer. Safe to call from its own callback.
func (tm *Timer) Stop() {
	tm.stopped = true
}

type timerHeap []*Timer

func (h timerHeap) Len() int            { return len(h) }
func (h timerHeap) Less(i, j int) bool  { return h[i].when.Before(h[j].when) }
func (h timerHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *timerHeap) Push(x any)         { t := x.(*Timer); t.index = len(*h); *h = append(*h, t) }
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*h = old[:n-1]
	return t
}

type fdSlot struct {
	fd      int32
	events  int16
	cb      FdFunc
	enabled bool
	used    bool
}

// Poller is the single run loop of the engine: poll(2) over a
// compacted descriptor array combined with a timer min-heap. Events
// cache a stable slot so re-enable/disable is O(1). A periodic tick
// callback runs after every poll pass.
type Poller struct {
	slots  []fdSlot
	free   []int
	timers timerHeap
	tick   func()
	closed bool

	// scratch buffers reused across poll passes
	pollFds  []unix.PollFd
	pollMap  []int
}

// NewPoller creates an empty poller.
func NewPoller() *Poller {
	return &Poller{}
}

// SetTick installs the callback run after every poll pass.
func (p *Poller) SetTick(fn func()) { p.tick = fn }

// AddFd registers a descriptor and returns its stable slot.
func (p *Poller) AddFd(fd int, events int16, cb FdFunc) int {
	slot := fdSlot{fd: int32(fd), events: events, cb: cb, enabled: true, used: true}
	if n := len(p.free); n > 0 {
		idx := p.free[n-1]
		p.free = p.free[:n-1]
		p.slots[idx] = slot
		return idx
	}
	p.slots = append(p.slots, slot)
	return len(p.slots) - 1
}

// EnableFd re-enables a registered descriptor.
func (p *Poller) EnableFd(slot int) {
	if slot >= 0 && slot < len(p.slots) && p.slots[slot].used {
		p.slots[slot].enabled = true
	}
}

// DisableFd masks a registered descriptor without losing its slot.
func (p *Poller) DisableFd(slot int) {
	if slot >= 0 && slot < len(p.slots) && p.slots[slot].used {
		p.slots[slot].enabled = false
	}
}

// RemoveFd unregisters a descriptor; its slot goes on the free list.
func (p *Poller) RemoveFd(slot int) {
	if slot >= 0 && slot < len(p.slots) && p.slots[slot].used {
		p.slots[slot] = fdSlot{}
		p.free = append(p.free, slot)
	}
}

// AddTimer arms a timer firing after delay; a nonzero period with a
// callback returning true keeps it periodic.
func (p *Poller) AddTimer(delay, period time.Duration, fn TimerFunc) *Timer {
	tm := &Timer{when: time.Now().Add(delay), period: period, fn: fn, index: -1}
	heap.Push(&p.timers, tm)
	return tm
}

// Reschedule re-arms a timer at delay from now.
func (p *Poller) Reschedule(tm *Timer, delay time.Duration) {
	tm.stopped = false
	tm.when = time.Now().Add(delay)
	if tm.index >= 0 {
		heap.Fix(&p.timers, tm.index)
	} else {
		heap.Push(&p.timers, tm)
	}
}

// Close makes Run return after the current pass.
func (p *Poller) Close() { p.closed = true }

// Run loops Step until closed.
func (p *Poller) Run() error {
	for {
		if err := p.Step(); err != nil {
			return err
		}
	}
}

// Step performs one poll pass: expire due timers, wait for the nearest
// deadline, dispatch fd callbacks, then the periodic tick.
func (p *Poller) Step() error {
	if p.closed {
		return ErrPollerClosed
	}

	p.runDueTimers()

	timeout := -1
	if len(p.timers) > 0 {
		d := time.Until(p.timers[0].when)
		if d < 0 {
			d = 0
		}
		timeout = int(d / time.Millisecond)
		if timeout == 0 && d > 0 {
			timeout = 1
		}
	}

	p.pollFds = p.pollFds[:0]
	p.pollMap = p.pollMap[:0]
	for i := range p.slots {
		s := &p.slots[i]
		if !s.used || !s.enabled {
			continue
		}
		p.pollFds = append(p.pollFds, unix.PollFd{Fd: s.fd, Events: s.events})
		p.pollMap = append(p.pollMap, i)
	}

	if len(p.pollFds) == 0 && len(p.timers) == 0 {
		// Nothing to wait on; let the caller decide what is next.
		if p.tick != nil {
			p.tick()
		}
		return nil
	}

	n, err := unix.Poll(p.pollFds, timeout)
	if err != nil && err != unix.EINTR {
		return err
	}
	if n > 0 {
		for i := range p.pollFds {
			re := p.pollFds[i].Revents
			if re == 0 {
				continue
			}
			slot := p.pollMap[i]
			if p.slots[slot].used && p.slots[slot].cb != nil {
				p.slots[slot].cb(re)
			}
		}
	}

	p.runDueTimers()

	if p.tick != nil {
		p.tick()
	}
	return nil
}

// runDueTimers fires every expired timer; periodic handlers returning
// true are re-armed at period from now.
func (p *Poller) runDueTimers() {
	now := time.Now()
	for len(p.timers) > 0 && !p.timers[0].when.After(now) {
		tm := heap.Pop(&p.timers).(*Timer)
		if tm.stopped {
			continue
		}
		if tm.fn != nil && tm.fn() && tm.period > 0 && !tm.stopped {
			tm.when = time.Now().Add(tm.period)
			heap.Push(&p.timers, tm)
		}
	}
}
