package helpers

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteAll(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		chunks  []int // bytes accepted per Write call, last value repeats
		written int
		err     error
	}{
		{"whole", []int{64}, 20, nil},
		{"chunked", []int{7}, 20, nil},
		{"stall-then-go", []int{0, 0, 3, 0, 20}, 20, nil},
		{"stuck", []int{5, 0}, 5, io.ErrShortWrite},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			buf := bytes.NewBuffer(nil)
			w := &throttleWriter{w: buf, chunks: c.chunks}
			err := WriteAll(w, []byte("scanner-cmd-01234567"))
			assert.Equal(t, c.err, err)
			assert.Equal(t, c.written, buf.Len())
		})
	}
}

type throttleWriter struct {
	w      io.Writer
	chunks []int
}

func (tw *throttleWriter) Write(p []byte) (int, error) {
	limit := tw.chunks[0]
	if len(tw.chunks) > 1 {
		tw.chunks = tw.chunks[1:]
	}
	if limit > len(p) {
		limit = len(p)
	}
	return tw.w.Write(p[:limit])
}
