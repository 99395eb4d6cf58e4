package helpers

import (
	"io"
)

// MaxStalledWrites bounds consecutive zero-length writes before WriteAll gives up.
// Non-blocking serial ports return (0, nil) when the TX buffer is full.
const MaxStalledWrites = 8

// WriteAll writes every byte of b or returns error.
// io.ErrShortWrite when w keeps accepting nothing.
func WriteAll(w io.Writer, b []byte) error {
	stalled := 0
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		if n == 0 {
			if stalled++; stalled >= MaxStalledWrites {
				return io.ErrShortWrite
			}
			continue
		}
		stalled = 0
		b = b[n:]
	}
	return nil
}
