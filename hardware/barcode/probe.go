package barcode

import (
	"fmt"
	"time"
)

const (
	DefaultProbeShortLimit = 3
	DefaultProbeIdle       = 3000 * time.Millisecond
)

var ProbeBauds = []int{9600, 115200, 19200, 38400, 57600}

type Candidate struct {
	Baud    int
	Swapped bool
}

func (c Candidate) String() string {
	wiring := "normal"
	if c.Swapped {
		wiring = "swapped"
	}
	return fmt.Sprintf("baud=%d wiring=%s", c.Baud, wiring)
}

// Prober rotates baud/wiring guesses until the line shows any sign of life.
// Once locked it never rotates again.
type Prober struct {
	Candidates []Candidate
	ShortLimit int
	Idle       time.Duration

	index  int
	short  int
	since  time.Time
	locked bool
}

// NewProber lists every baud with normal wiring first, then swapped when available.
func NewProber(swapAvailable bool, now time.Time) *Prober {
	self := &Prober{
		ShortLimit: DefaultProbeShortLimit,
		Idle:       DefaultProbeIdle,
		since:      now,
	}
	for _, baud := range ProbeBauds {
		self.Candidates = append(self.Candidates, Candidate{Baud: baud})
		if swapAvailable {
			self.Candidates = append(self.Candidates, Candidate{Baud: baud, Swapped: true})
		}
	}
	return self
}

func (self *Prober) Current() Candidate { return self.Candidates[self.index] }
func (self *Prober) Locked() bool       { return self.locked }

// Short counts one too-short frame. Valid resets the consecutive counter.
func (self *Prober) Short() { self.short++ }
func (self *Prober) Valid() { self.short = 0 }

// Settle is called once per poll after frames were classified.
// Returns true when caller must reopen port with Current().
// Any received byte locks the current candidate, even if every frame was short.
func (self *Prober) Settle(now time.Time, gotBytes bool) bool {
	if self.locked {
		return false
	}
	if gotBytes {
		self.locked = true
		return false
	}
	if self.ShortLimit > 0 && self.short >= self.ShortLimit {
		self.rotate(now)
		return true
	}
	if self.Idle > 0 && now.Sub(self.since) >= self.Idle {
		self.rotate(now)
		return true
	}
	return false
}

// Skip moves past a candidate whose port could not be opened.
func (self *Prober) Skip(now time.Time) {
	if !self.locked {
		self.rotate(now)
	}
}

func (self *Prober) rotate(now time.Time) {
	self.index = (self.index + 1) % len(self.Candidates)
	self.short = 0
	self.since = now
}
