// Package frame turns a noisy non-blocking byte stream into text frames.
// Frame ends at '\n' or, when Gap is set, after Gap of silence.
package frame

import (
	"io"
	"time"

	"github.com/juju/errors"
)

const MaxLen = 128

const (
	GapBarcode = 300 * time.Millisecond
	GapConsole = 0
)

// Reader keeps decode state of one channel. Not safe for concurrent use.
// Zero value is usable with inactivity fallback disabled.
type Reader struct {
	Gap       time.Duration
	EmitEmpty bool // bare "\n" yields empty frame

	buf      []byte
	pending  []byte
	last     time.Time
	received uint64
	scratch  [64]byte
}

func New(gap time.Duration) *Reader {
	return &Reader{Gap: gap}
}

// Next drains currently available bytes from src and returns at most one frame.
// src.Read must not block, (0, nil) and io.EOF both mean no data right now.
// Call again while ok is true to collect every terminated frame.
// src may be nil to only check inactivity fallback.
func (self *Reader) Next(src io.Reader, now time.Time) (string, bool, error) {
	var rerr error
	if src != nil {
		rerr = self.fill(src, now)
	}

	for i, b := range self.pending {
		switch {
		case b == '\r':
		case b == '\n':
			if len(self.buf) != 0 || self.EmitEmpty {
				self.pending = self.pending[i+1:]
				return self.take(), true, rerr
			}
		case b >= 0x20 && b <= 0x7e:
			self.buf = append(self.buf, b)
			if over := len(self.buf) - MaxLen; over > 0 {
				self.buf = self.buf[:copy(self.buf, self.buf[over:])]
			}
		}
	}
	self.pending = self.pending[:0]

	if self.Gap > 0 && len(self.buf) != 0 && now.Sub(self.last) >= self.Gap {
		return self.take(), true, rerr
	}
	return "", false, rerr
}

// Reset drops buffered bytes, e.g. after a port flush.
func (self *Reader) Reset() {
	self.buf = self.buf[:0]
	self.pending = self.pending[:0]
}

func (self *Reader) Buffered() int { return len(self.buf) }

// LastByte is receive time of the most recent raw byte, zero if none yet.
func (self *Reader) LastByte() time.Time { return self.last }

// Received counts raw bytes including dropped ones since creation.
func (self *Reader) Received() uint64 { return self.received }

func (self *Reader) take() string {
	s := string(self.buf)
	self.buf = self.buf[:0]
	return s
}

func (self *Reader) fill(src io.Reader, now time.Time) error {
	for {
		n, err := src.Read(self.scratch[:])
		if n > 0 {
			self.pending = append(self.pending, self.scratch[:n]...)
			self.received += uint64(n)
			self.last = now
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Annotate(err, "frame read")
		}
		if n < len(self.scratch) {
			return nil
		}
	}
}
