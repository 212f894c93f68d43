package engine

import "time"

// Clock abstracts time.Now() to allow deterministic testing.
// "Today" is always derived from Now() in its own location, so the
// location of the returned time decides where local midnight falls.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}
