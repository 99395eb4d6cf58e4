package helpers

import (
	"sync/atomic"
	"time"

	"github.com/temoto/playreg/helpers/atomic_clock"
)

// Limited exponential backoff for retry delays.
// Polling loop asks Ready(now) instead of sleeping.
// Failure() increases next delay by K, Reset() returns to Min.
type Backoff struct {
	next int64 // atomic align
	last atomic_clock.Clock

	Min time.Duration
	Max time.Duration
	K   float32
	Res time.Duration // delay resolution for nice logs, default=1ms
}

// Use scenario:
// if backoff.Ready(now) {
//   err := op()
//   backoff.Update(now, err==nil)
// }
func (b *Backoff) Ready(now time.Time) bool {
	return b.Remaining(now) == 0
}

// Remaining delay before next attempt. First attempt is always immediate.
func (b *Backoff) Remaining(now time.Time) time.Duration {
	next := time.Duration(atomic.LoadInt64(&b.next))
	if next == 0 || b.last.IsZero() {
		return 0
	}
	delay := b.limit(next)
	since := -b.last.Until(now)
	if since >= delay {
		return 0
	}
	return b.round(delay - since)
}

func (b *Backoff) Failure(now time.Time) {
	next := time.Duration(atomic.LoadInt64(&b.next))
	if next == 0 {
		next = b.Min
	} else {
		next = time.Duration(float32(next) * b.K)
	}
	next = b.limit(next)
	b.last.Set(now)
	atomic.StoreInt64(&b.next, int64(next))
}

func (b *Backoff) Reset() {
	b.last.Reset()
	atomic.StoreInt64(&b.next, 0)
}

func (b *Backoff) Update(now time.Time, success bool) {
	if success {
		b.Reset()
	} else {
		b.Failure(now)
	}
}

func (b *Backoff) limit(d time.Duration) time.Duration {
	if d < b.Min {
		d = b.Min
	}
	if d > b.Max {
		d = b.Max
	}
	return b.round(d)
}

func (b *Backoff) round(d time.Duration) time.Duration {
	res := b.Res
	if res == 0 {
		res = 1 * time.Millisecond
	}
	return d / res * res
}
