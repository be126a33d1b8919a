package library

import (
	"time"

	"github.com/sasha-s/go-deadlock"
)

// Clock is the source of "now" for everything that dates or ages a record.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// ManualClock only moves when told to.
type ManualClock struct {
	now time.Time
	mu  deadlock.Mutex
}

func NewManualClock(now time.Time) *ManualClock {
	return &ManualClock{now: now}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func ToMillis(t time.Time) Millis {
	return t.UnixMilli()
}

func FromMillis(m Millis) time.Time {
	return time.UnixMilli(m)
}

const Day = 24 * time.Hour

// Scheduler runs f once after d. Republication and challenge timeouts go through it so tests can
// fire timers by hand.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type Timer interface {
	Stop() bool
}

type RealScheduler struct{}

func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
