package helpers

import "time"

func IntSecondDefault(x int, def time.Duration) time.Duration {
	if x == 0 {
		return def
	}
	return time.Duration(x) * time.Second
}

func IntMillisecondDefault(x int, def time.Duration) time.Duration {
	if x == 0 {
		return def
	}
	return time.Duration(x) * time.Millisecond
}

// MonotonicMillis is elapsed time since begin, never negative.
// Polling loop compares dwell windows in whole milliseconds.
func MonotonicMillis(begin, now time.Time) int64 {
	d := now.Sub(begin)
	if d < 0 {
		return 0
	}
	return int64(d / time.Millisecond)
}
