package ledger

import (
	"sync"
	"time"

	"github.com/iov-one/timevault"
)

// Clock provides the time observed by programs. Every invocation reads it
// once.
type Clock interface {
	Now() timevault.UnixTime
}

// SystemClock reads the time of the host.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() timevault.UnixTime {
	return timevault.AsUnixTime(time.Now())
}

// ManualClock is a clock that moves only when told to.
type ManualClock struct {
	mu  sync.Mutex
	now timevault.UnixTime
}

// NewManualClock returns a clock stopped at given time.
func NewManualClock(now timevault.UnixTime) *ManualClock {
	return &ManualClock{now: now}
}

// Now returns the current clock reading.
func (c *ManualClock) Now() timevault.UnixTime {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to given time.
func (c *ManualClock) Set(now timevault.UnixTime) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

// Advance moves the clock forward by given duration.
func (c *ManualClock) Advance(d time.Duration) timevault.UnixTime {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}
