package interact

import "time"

// Timer is a pending scheduled call.
type Timer interface {
	// Stop prevents the call if it has not run yet.
	Stop() bool
}

// Scheduler runs f once after d. Implementations used with a Machine must
// run f on the goroutine that feeds the Machine its events, or the Machine
// must be guarded by the caller.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// NoScheduler never runs anything, so long presses go undetected. It is
// the default: a Machine has no goroutine of its own to deliver timers on.
type NoScheduler struct{}

// AfterFunc implements Scheduler. It returns a nil Timer.
func (NoScheduler) AfterFunc(time.Duration, func()) Timer { return nil }

// PostScheduler delivers timer callbacks through Post, typically onto an
// event loop, so that they run on the same goroutine as pointer events.
type PostScheduler struct {
	Post func(f func())
}

// AfterFunc implements Scheduler.
func (s PostScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, func() { s.Post(f) })
}
