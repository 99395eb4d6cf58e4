package atomic_clock

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNow(t *testing.T) {
	t.Parallel()
	c := Now()
	assert.InDelta(t, time.Now().UnixNano(), c.UnixNano(), float64(100*time.Millisecond))
}

func TestUntil(t *testing.T) {
	t.Parallel()
	t0 := time.Unix(1000, 0)
	var c Clock
	assert.True(t, c.IsZero())
	c.Set(t0.Add(120 * time.Millisecond))
	assert.Equal(t, 120*time.Millisecond, c.Until(t0))
	assert.Equal(t, -30*time.Millisecond, c.Until(t0.Add(150*time.Millisecond)))
	c.Reset()
	assert.True(t, c.IsZero())
}

func TestAddSleep(t *testing.T) {
	t.Parallel()
	t0 := time.Date(2024, 4, 1, 10, 0, 0, 0, time.UTC)
	c := At(t0)
	assert.Equal(t, t0.Add(2999*time.Millisecond), c.Add(2999*time.Millisecond))
	c.Sleep(time.Millisecond)
	assert.Equal(t, t0.Add(3*time.Second), c.Time())
	c.Add(-time.Second)
	assert.Equal(t, 2*time.Second, c.Time().Sub(t0))
}

func TestConcurrentAdd(t *testing.T) {
	t.Parallel()
	c := New(0)
	wg := sync.WaitGroup{}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Sleep(time.Microsecond)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(800*time.Microsecond), c.UnixNano())
}
