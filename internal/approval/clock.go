package approval

import "time"

// Clock abstracts time for deterministic tests.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// After waits for the duration to elapse and delivers the current time.
	After(d time.Duration) <-chan time.Time
}

// SystemClock uses the system time.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// After waits on the system timer.
func (SystemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}
