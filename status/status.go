// Package status tracks the transient state of a user-triggered async action such as an
// export: idle, pending, then success or error.
package status

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type State int

const (
	Idle State = iota
	Pending
	Success
	Error
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "idle"
	}
}

// Tracker holds the state of one action. Success falls back to Idle after the display
// delay; Error stays until the next Begin.
type Tracker struct {
	clock clockwork.Clock
	delay time.Duration

	mu    sync.Mutex
	state State
	err   error
	gen   int
	timer clockwork.Timer
}

// NewTracker creates an idle tracker. A nil clock uses the real clock.
func NewTracker(clock clockwork.Clock, delay time.Duration) *Tracker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Tracker{clock: clock, delay: delay}
}

// Begin moves to Pending. It returns false if an attempt is already pending.
func (t *Tracker) Begin() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == Pending {
		return false
	}
	t.stopLocked()
	t.state = Pending
	t.err = nil
	return true
}

// Succeed moves to Success and schedules the reset to Idle.
func (t *Tracker) Succeed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	t.state = Success
	t.err = nil

	gen := t.gen
	t.timer = t.clock.AfterFunc(t.delay, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.gen == gen && t.state == Success {
			t.state = Idle
		}
	})
}

// Fail moves to Error and records err.
func (t *Tracker) Fail(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	t.state = Error
	t.err = err
}

func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Err returns the error of the last failed attempt while in Error.
func (t *Tracker) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// Stop cancels a pending reset.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Tracker) stopLocked() {
	t.gen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
