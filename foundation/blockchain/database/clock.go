package database

import "time"

// Clock represents the time source used to stamp new blocks.
type Clock interface {
	Now() time.Time
}

// ClockFunc is an adapter to allow an ordinary function to be used as a Clock.
type ClockFunc func() time.Time

// Now implements the Clock interface.
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// FixedClock returns a clock that always reports the specified time.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}
