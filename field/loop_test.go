package field

import (
	"reflect"
	"testing"
	"time"
)

func newTestLoop() (*Loop, *time.Time) {
	now := time.Unix(0, 0)
	return NewLoop(func() time.Time { return now }), &now
}

func TestLoopRunFrameOrder(t *testing.T) {
	l, _ := newTestLoop()

	var got []int
	l.RequestFrame(func() { got = append(got, 1) })
	l.RequestFrame(func() { got = append(got, 2) })
	l.RequestFrame(func() {
		got = append(got, 3)
		l.RequestFrame(func() { got = append(got, 4) })
	})

	if ran := l.RunFrame(); ran != 3 {
		t.Fatalf("RunFrame ran %d callbacks, want 3", ran)
	}
	if !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("first frame ran %v, want [1 2 3]", got)
	}
	if l.PendingFrames() != 1 {
		t.Fatalf("PendingFrames = %d, want 1", l.PendingFrames())
	}

	l.RunFrame()
	if !reflect.DeepEqual(got, []int{1, 2, 3, 4}) {
		t.Errorf("second frame ran %v, want [1 2 3 4]", got)
	}
	if l.RunFrame() != 0 {
		t.Error("empty frame should run nothing")
	}
}

func TestLoopCancelFrame(t *testing.T) {
	l, _ := newTestLoop()

	ran := 0
	id := l.RequestFrame(func() { ran++ })
	l.CancelFrame(id)
	l.CancelFrame(id)
	l.CancelFrame(9999)

	l.RunFrame()
	if ran != 0 {
		t.Errorf("canceled frame ran %d times", ran)
	}
}

func TestLoopCancelWithinBatch(t *testing.T) {
	l, _ := newTestLoop()

	var second FrameID
	ran := 0
	l.RequestFrame(func() { l.CancelFrame(second) })
	second = l.RequestFrame(func() { ran++ })

	l.RunFrame()
	if ran != 0 {
		t.Error("callback canceled earlier in the same batch still ran")
	}
}

func TestLoopAfterFunc(t *testing.T) {
	l, now := newTestLoop()

	var got []string
	l.AfterFunc(50*time.Millisecond, func() { got = append(got, "b") })
	l.AfterFunc(20*time.Millisecond, func() { got = append(got, "a") })
	l.AfterFunc(time.Second, func() { got = append(got, "late") })

	*now = now.Add(19 * time.Millisecond)
	if n := l.RunTimers(); n != 0 {
		t.Fatalf("fired %d timers before any deadline", n)
	}

	*now = now.Add(31 * time.Millisecond)
	if n := l.RunTimers(); n != 2 {
		t.Fatalf("fired %d timers, want 2", n)
	}
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("fired %v, want deadline order [a b]", got)
	}
	if l.PendingTimers() != 1 {
		t.Errorf("PendingTimers = %d, want 1", l.PendingTimers())
	}
}

func TestLoopTimerStop(t *testing.T) {
	l, now := newTestLoop()

	ran := false
	timer := l.AfterFunc(10*time.Millisecond, func() { ran = true })
	if !timer.Stop() {
		t.Error("first Stop should report true")
	}
	if timer.Stop() {
		t.Error("second Stop should report false")
	}

	*now = now.Add(time.Second)
	l.RunFrame()
	if ran {
		t.Error("stopped timer fired")
	}
	if l.PendingTimers() != 0 {
		t.Errorf("PendingTimers = %d, want 0", l.PendingTimers())
	}
}

func TestLoopTimerStoppedByEarlierCallback(t *testing.T) {
	l, now := newTestLoop()

	ran := false
	var later Timer
	l.AfterFunc(time.Millisecond, func() { later.Stop() })
	later = l.AfterFunc(2*time.Millisecond, func() { ran = true })

	*now = now.Add(time.Second)
	if n := l.RunTimers(); n != 1 {
		t.Errorf("fired %d timers, want 1", n)
	}
	if ran {
		t.Error("timer stopped by an earlier callback still fired")
	}
	if later.Stop() {
		t.Error("Stop after the batch should report false")
	}
}

func TestLoopTimerStopAfterFire(t *testing.T) {
	l, now := newTestLoop()

	timer := l.AfterFunc(0, func() {})
	*now = now.Add(time.Millisecond)
	l.RunTimers()
	if timer.Stop() {
		t.Error("Stop on a fired timer should report false")
	}
}
