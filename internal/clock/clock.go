// Package clock abstracts wall-clock reads and deferred callbacks so the
// scheduler and the auction service can be driven deterministically in tests.
package clock

import "time"

// Timer is a pending callback that can be stopped before it fires
type Timer interface {
	// Stop prevents the callback from running. It returns false if the
	// callback already fired or the timer was already stopped.
	Stop() bool
}

// Clock reads the current time and schedules callbacks
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

// New returns a Clock backed by the time package, reporting UTC
func New() Clock {
	return realClock{}
}

func (realClock) Now() time.Time { return time.Now().UTC() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	if d < 0 {
		d = 0
	}
	return time.AfterFunc(d, f)
}
