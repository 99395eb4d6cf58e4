// Package input provides polled, non-blocking input sources:
// evdev touch panel and line console (stdin or serial).
package input

import (
	"io"

	"golang.org/x/sys/unix"
)

type TouchState struct {
	X, Y int
	Down bool
}

// Toucher returns latest committed touch state, never blocks.
type Toucher interface {
	Sample() (TouchState, error)
	Close() error
}

// Console is byte source for debug lines. Read never blocks, (0, nil) means no data.
type Console interface {
	io.Reader
	Close() error
	String() string
}

// fdReader reads non-blocking descriptor, EAGAIN is reported as no data.
type fdReader struct{ fd int }

func (self fdReader) Read(p []byte) (int, error) {
	n, err := unix.Read(self.fd, p)
	switch err {
	case nil:
		if n == 0 && len(p) != 0 {
			return 0, io.EOF
		}
		return n, nil
	case unix.EAGAIN, unix.EINTR:
		return 0, nil
	}
	return 0, err
}
