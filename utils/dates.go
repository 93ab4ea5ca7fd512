// utils/dates.go
package utils

import "time"

// SecondsFromMidnight returns the wall-clock seconds elapsed since the
// start of t's day.
func SecondsFromMidnight(t time.Time) int64 {
	return int64(t.Hour())*3600 + int64(t.Minute())*60 + int64(t.Second())
}

// DaysFromSunday indexes the weekday with Sunday = 0, matching the
// recurrence rules' weekday arithmetic.
func DaysFromSunday(t time.Time) int64 {
	return int64(t.Weekday())
}

// WithClock keeps t's date but replaces the time-of-day components.
func WithClock(t time.Time, hour, minute, second int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, second, t.Nanosecond(), t.Location())
}

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
