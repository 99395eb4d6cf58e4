package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIntDefault(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 7*time.Second, IntSecondDefault(0, 7*time.Second))
	assert.Equal(t, 2*time.Second, IntSecondDefault(2, 7*time.Second))
	assert.Equal(t, 3000*time.Millisecond, IntMillisecondDefault(0, 3*time.Second))
	assert.Equal(t, 120*time.Millisecond, IntMillisecondDefault(120, time.Second))
}

func TestMonotonicMillis(t *testing.T) {
	t.Parallel()
	t0 := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, int64(2999), MonotonicMillis(t0, t0.Add(2999*time.Millisecond+999*time.Microsecond)))
	assert.Equal(t, int64(3000), MonotonicMillis(t0, t0.Add(3*time.Second)))
	assert.Equal(t, int64(0), MonotonicMillis(t0, t0.Add(-time.Second)))
}
