package core

import (
	"sync"
	"time"
)

// InsightTTL is how long a generated record stays fresh.
const InsightTTL = 7 * 24 * time.Hour

const millisPerDay = 86_400_000

// IsFresh reports whether a record created at createdAt is still fresh at now.
// Age is measured in wall-clock milliseconds, not calendar days. A record
// without a creation time is never fresh.
func IsFresh(createdAt, now time.Time) bool {
	if createdAt.IsZero() {
		return false
	}
	age := now.Sub(createdAt).Milliseconds()
	return age < InsightTTL.Milliseconds()
}

// AgeInDays returns the age of a record in fractional days.
func AgeInDays(createdAt, now time.Time) float64 {
	return float64(now.Sub(createdAt).Milliseconds()) / millisPerDay
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns time.Now in UTC.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock is a settable clock for tests.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFixedClock returns a clock stopped at t.
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{now: t}
}

// Now returns the current fixed time.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d.
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
