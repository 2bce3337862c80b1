package vtcore

import (
	"testing"
	"time"
)

func TestPollerTimerFires(t *testing.T) {
	p := NewPoller()
	fired := 0
	p.AddTimer(0, 0, func() bool {
		fired++
		return false
	})
	if err := p.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if fired != 1 {
		t.Errorf("expected one firing, got %d", fired)
	}
}

func TestPollerPeriodicReschedule(t *testing.T) {
	p := NewPoller()
	fired := 0
	p.AddTimer(0, time.Millisecond, func() bool {
		fired++
		return fired < 3
	})
	deadline := time.Now().Add(2 * time.Second)
	for fired < 3 && time.Now().Before(deadline) {
		if err := p.Step(); err != nil {
			t.Fatalf("step: %v", err)
		}
	}
	if fired != 3 {
		t.Errorf("expected three firings, got %d", fired)
	}
}

func TestPollerTimerOrdering(t *testing.T) {
	p := NewPoller()
	var order []int
	p.AddTimer(20*time.Millisecond, 0, func() bool { order = append(order, 2); return false })
	p.AddTimer(5*time.Millisecond, 0, func() bool { order = append(order, 1); return false })
	deadline := time.Now().Add(2 * time.Second)
	for len(order) < 2 && time.Now().Before(deadline) {
		if err := p.Step(); err != nil {
			t.Fatalf("step: %v", err)
		}
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Errorf("timer ordering: %v", order)
	}
}

func TestPollerStopTimer(t *testing.T) {
	p := NewPoller()
	fired := false
	tm := p.AddTimer(time.Millisecond, 0, func() bool { fired = true; return false })
	tm.Stop()
	time.Sleep(5 * time.Millisecond)
	if err := p.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if fired {
		t.Error("stopped timer must not fire")
	}
}

func TestPollerFdSlotReuse(t *testing.T) {
	p := NewPoller()
	s1 := p.AddFd(0, 0, nil)
	p.RemoveFd(s1)
	s2 := p.AddFd(1, 0, nil)
	if s2 != s1 {
		t.Errorf("expected slot reuse, got %d and %d", s1, s2)
	}
	p.DisableFd(s2)
	p.EnableFd(s2)
	p.Close()
	if err := p.Step(); err != ErrPollerClosed {
		t.Errorf("expected ErrPollerClosed, got %v", err)
	}
}
