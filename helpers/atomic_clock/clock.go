// Package atomic_clock is int64 nanosecond clock safe for concurrent use.
// Tests install it as the time source of the polling loop and move it by hand.
package atomic_clock

import (
	"sync/atomic"
	"time"
)

type Clock struct{ v int64 }

func New(v int64) *Clock         { return &Clock{v: v} }
func At(t time.Time) *Clock      { return New(t.UnixNano()) }
func Now() *Clock                { return At(time.Now()) }
func (c *Clock) IsZero() bool    { return atomic.LoadInt64(&c.v) == 0 }
func (c *Clock) UnixNano() int64 { return atomic.LoadInt64(&c.v) }
func (c *Clock) Set(t time.Time) { atomic.StoreInt64(&c.v, t.UnixNano()) }
func (c *Clock) Reset()          { atomic.StoreInt64(&c.v, 0) }

// Add moves clock and returns new value. Negative d is allowed.
func (c *Clock) Add(d time.Duration) time.Time {
	return time.Unix(0, atomic.AddInt64(&c.v, int64(d))).UTC()
}

// Until is how far clock is ahead of t, negative when clock is behind.
func (c *Clock) Until(t time.Time) time.Duration { return time.Duration(c.UnixNano() - t.UnixNano()) }

// Time matches func() time.Time so method value works as clock source.
func (c *Clock) Time() time.Time { return time.Unix(0, c.UnixNano()).UTC() }

// Sleep matches time.Sleep, but only advances the clock.
func (c *Clock) Sleep(d time.Duration) { c.Add(d) }
