package engine

import "time"

// Clock supplies the current instant. Reporting windows are computed from it.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time { return time.Time(c) }

// Date truncates t to midnight UTC of its calendar day.
func Date(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today is the calendar day of the clock's current instant.
func Today(c Clock) time.Time {
	return Date(c.Now())
}
