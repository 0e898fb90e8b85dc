package clock

import (
	"sync"
	"time"
)

// Clocker abstracts time so callers can replace real time in tests.
type Clocker interface {
	Now() time.Time
}

// TimeClocker is the production clock implementation backed by time.Now.
type TimeClocker struct{}

// New returns a TimeClocker that reads the current system time.
func New() *TimeClocker {
	return &TimeClocker{}
}

// Now returns the current system time.
func (*TimeClocker) Now() time.Time {
	return time.Now()
}

// Fixed is a manually driven clock.
type Fixed struct {
	mu sync.Mutex
	t  time.Time
}

// NewFixed returns a clock frozen at t.
func NewFixed(t time.Time) *Fixed {
	return &Fixed{t: t}
}

// Now returns the frozen time.
func (f *Fixed) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

// Advance moves the clock by d.
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	f.t = f.t.Add(d)
	f.mu.Unlock()
}
