package field

import (
	"sort"
	"time"
)

// Loop is a single-goroutine scheduler for frame callbacks and timers.
// Hosts embed it and call RunFrame once per display refresh; nothing in
// Loop starts a goroutine.
type Loop struct {
	now    func() time.Time
	nextID FrameID
	frames []*pendingFrame
	batch  []*pendingFrame
	timers []*loopTimer
}

type pendingFrame struct {
	id       FrameID
	fn       func()
	canceled bool
}

type loopTimer struct {
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

// Stop prevents the timer from firing. Returns false if it already fired
// or was already stopped.
func (t *loopTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// NewLoop creates a loop reading time from now (time.Now when nil).
func NewLoop(now func() time.Time) *Loop {
	if now == nil {
		now = time.Now
	}
	return &Loop{now: now}
}

// Now returns the loop's current time.
func (l *Loop) Now() time.Time {
	return l.now()
}

// RequestFrame queues fn for the next RunFrame.
func (l *Loop) RequestFrame(fn func()) FrameID {
	l.nextID++
	l.frames = append(l.frames, &pendingFrame{id: l.nextID, fn: fn})
	return l.nextID
}

// CancelFrame drops a queued callback, including one in the batch that is
// currently running. Unknown ids are ignored.
func (l *Loop) CancelFrame(id FrameID) {
	for i, f := range l.frames {
		if f.id == id {
			f.canceled = true
			l.frames = append(l.frames[:i], l.frames[i+1:]...)
			return
		}
	}
	for _, f := range l.batch {
		if f.id == id {
			f.canceled = true
			return
		}
	}
}

// AfterFunc schedules fn to run from the first RunTimers call at or after
// Now()+d.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	t := &loopTimer{at: l.now().Add(d), fn: fn}
	l.timers = append(l.timers, t)
	return t
}

// PendingFrames returns the number of queued frame callbacks.
func (l *Loop) PendingFrames() int {
	return len(l.frames)
}

// PendingTimers returns the number of timers that have neither fired nor
// been stopped.
func (l *Loop) PendingTimers() int {
	n := 0
	for _, t := range l.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// RunTimers fires every timer that is due, earliest first, and returns how
// many fired. Timers created by a callback wait for the next call.
func (l *Loop) RunTimers() int {
	now := l.now()

	var due []*loopTimer
	kept := l.timers[:0]
	for _, t := range l.timers {
		switch {
		case t.stopped || t.fired:
		case !t.at.After(now):
			due = append(due, t)
		default:
			kept = append(kept, t)
		}
	}
	for i := len(kept); i < len(l.timers); i++ {
		l.timers[i] = nil
	}
	l.timers = kept

	sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })

	fired := 0
	for _, t := range due {
		// An earlier callback may have stopped this one
		if t.stopped {
			continue
		}
		t.fired = true
		t.fn()
		fired++
	}
	return fired
}

// RunFrame fires due timers, then runs the frame callbacks that were queued
// before this call. Callbacks requested while running land in the next
// frame. Returns the number of frame callbacks run.
func (l *Loop) RunFrame() int {
	l.RunTimers()

	l.batch = l.frames
	l.frames = nil

	ran := 0
	for _, f := range l.batch {
		if f.canceled {
			continue
		}
		f.canceled = true // an id runs at most once
		f.fn()
		ran++
	}
	l.batch = nil
	return ran
}
